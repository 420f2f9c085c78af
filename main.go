// Package main provides the entry point for c8sim.
// c8sim is a CHIP-8 virtual machine with a cycle-level timing core.
//
// For the full CLI, use: go run ./cmd/c8sim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("c8sim - CHIP-8 Virtual Machine")
	fmt.Println("")
	fmt.Println("Usage: c8sim [options] <program.ch8>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config        Path to timing configuration JSON file")
	fmt.Println("  -save-config   Write the timing configuration and exit")
	fmt.Println("  -headless      Run without a terminal display")
	fmt.Println("  -frames        Frames to run in headless mode")
	fmt.Println("  -skip-unknown  Skip unknown opcodes instead of stopping")
	fmt.Println("  -v             Verbose output")
	fmt.Println("  -q             Only log errors")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/c8sim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/c8sim' instead.")
	}
}
