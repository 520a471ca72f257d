//go:build !windows

package main

import (
	"os"

	"golang.org/x/sys/unix"
)

// detectTerminalWidth returns the stdout terminal width, falling back to
// $COLUMNS, or 0 when unknown.
func detectTerminalWidth() int {
	ws, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ)
	if err == nil && ws != nil && ws.Col > 0 {
		return int(ws.Col)
	}
	return columnsEnv()
}
