//go:build !windows

package main

import (
	"os"
	"syscall"
)

// interruptSignals abort a running command. On Unix this includes SIGTERM
// as well as SIGINT.
var interruptSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}
