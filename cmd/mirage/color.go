package main

import (
	"os"

	"github.com/mattn/go-isatty"
)

// colorEnabled decides whether human-readable output may use ANSI color,
// per SPEC_FULL.md §6: only when stdout is a real terminal, so piped or
// redirected output stays plain.
func colorEnabled() bool {
	return outputFormat == "human" && isatty.IsTerminal(os.Stdout.Fd())
}

const (
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

func bold(s string) string {
	if !colorEnabled() {
		return s
	}
	return ansiBold + s + ansiReset
}
