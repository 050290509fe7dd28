//go:build !windows

package util

import (
	"golang.org/x/term"
)

// IsTty checks if the given fd is a tty
func IsTty(arg interface{}) bool {
	fdsrc, ok := arg.(fder)
	if !ok {
		return false
	}
	return term.IsTerminal(int(fdsrc.Fd()))
}
