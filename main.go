// Package main provides the entry point for bpsim.
// bpsim is a cycle-level branch predictor simulator built on Akita.
//
// For the full CLI, use: go run ./cmd/bpsim
package main

import (
	"fmt"
	"os"

	"github.com/sarchlab/bpsim/timing/bpred"
)

func main() {
	fmt.Println("bpsim - Branch Predictor Simulator")
	fmt.Println("Built on Akita simulation framework")
	fmt.Println("")
	fmt.Println("Usage: bpsim <command> [options]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  run        Run one predictor on a trace")
	fmt.Println("  compare    Compare predictors on the benchmark workloads")
	fmt.Println("  gen        Generate a synthetic trace file")
	fmt.Println("")
	fmt.Printf("Predictors: %v\n", bpred.Names())
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/bpsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/bpsim' instead.")
	}
}
