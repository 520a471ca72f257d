package main

import (
	"os"
	"strconv"
)

// columnsEnv reads $COLUMNS; 0 when unset or invalid.
func columnsEnv() int {
	if cols, ok := os.LookupEnv("COLUMNS"); ok {
		if n, err := strconv.Atoi(cols); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

// wrapWidth derives the column wrap width from a terminal width: a quarter
// of it, never narrower than 12. Unknown widths yield 0 (renderer default).
func wrapWidth(termWidth int) int {
	if termWidth <= 0 {
		return 0
	}
	return max(termWidth/4, 12)
}
