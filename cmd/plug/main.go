// Package main provides the Plug probe-training CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/tatonetti-lab/Plug/probe"
)

const version = "v0.2.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "fit":
		err = runFit(os.Args[2:])
	case "cross-validate", "cv":
		err = runCrossValidate(os.Args[2:])
	case "predict":
		err = runPredict(os.Args[2:])
	case "version":
		fmt.Printf("Plug %s\n", version)
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "plug: unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "plug: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func usage() {
	fmt.Println("Plug - train and apply classifier probes over feature vectors")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  fit             Train a probe and save its artifacts")
	fmt.Println("  cross-validate  Estimate probe performance with stratified k-fold CV")
	fmt.Println("  predict         Apply saved artifacts to new feature rows")
	fmt.Println("  version         Show version")
	fmt.Println("")
	fmt.Println("Run 'plug <command> -h' for command options.")
}

// exitCode distinguishes user-input errors from everything else, so scripts
// can tell a bad invocation apart from a failed run.
func exitCode(err error) int {
	switch {
	case errors.Is(err, probe.ErrUnknownArchitecture),
		errors.Is(err, probe.ErrInvalidModelSpec),
		errors.Is(err, probe.ErrInvalidFoldCount),
		errors.Is(err, probe.ErrInvalidConfig):
		return 2
	default:
		return 1
	}
}
