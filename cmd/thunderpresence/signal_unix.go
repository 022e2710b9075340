//go:build !windows

package main

import (
	"os"
	"syscall"
)

// shutdownSignals stop the program gracefully. SIGTERM is what process
// managers send; SIGINT is Ctrl+C.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}
