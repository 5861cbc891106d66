// Package cliutil provides small output helpers for the swaggen command.
package cliutil

import (
	"fmt"
	"io"
	"os"
)

// Writef writes formatted output to the writer.
// A failed write is reported on stderr.
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "write error: %v\n", err)
	}
}

// Mark returns a check mark for ok and a cross otherwise.
func Mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

// Plural returns "1 operation" or "3 operations".
func Plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
