// Package main provides the bpsim command-line tool.
// bpsim runs branch predictors on a five-stage pipeline model and compares
// how well they do.
package main

import (
	"log"
	"os"

	"github.com/tebeka/atexit"
)

var logger = log.New(os.Stderr, "bpsim: ", 0)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Print(err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
