//go:build windows

package main

import "os"

// interruptSignals abort a running command. Windows only delivers
// os.Interrupt.
var interruptSignals = []os.Signal{os.Interrupt}
