package main

import (
	"errors"
	"os"
)

const (
	exitFailure          = 1
	exitConflictMismatch = 2
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode lets a build script tell a grammar whose conflict counts drifted from a broken one.
func exitCode(err error) int {
	var cerr *conflictCountError
	if errors.As(err, &cerr) {
		return exitConflictMismatch
	}
	return exitFailure
}
