//go:build !windows

package config

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// SanitizeFileName drops characters which cannot appear in a single path
// element, fallback is used when nothing is left.
func SanitizeFileName(in, fallback string) string {
	out := strings.TrimLeft(strings.Map(func(sym rune) rune {
		if sym == 0 || sym == os.PathSeparator || sym == os.PathListSeparator {
			return -1
		}
		return sym
	}, strings.TrimSpace(in)), ".")
	if len(out) == 0 {
		return fallback
	}
	return out
}

// EnableColorOutput checks if colorized output is possible.
func EnableColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}
