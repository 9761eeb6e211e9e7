package perky

import (
	"fmt"
	"io"
	"log"
)

// IfThen returns a if condition is true, otherwise b. Both branches are
// evaluated eagerly; avoid calling with expensive or unsafe arguments.
func IfThen[T any](condition bool, a, b T) T {
	if condition {
		return a
	}
	return b
}

// MustFprintf writes a formatted string to w, logging and exiting on error.
func MustFprintf(w io.Writer, format string, args ...interface{}) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		log.Fatalf("Fprintf failed: %v", err)
	}
}

// MustFprintln writes args followed by a newline to w, logging and exiting on error.
func MustFprintln(w io.Writer, args ...interface{}) {
	if _, err := fmt.Fprintln(w, args...); err != nil {
		log.Fatalf("Fprintln failed: %v", err)
	}
}

// CloseFile closes c and logs any error instead of propagating it; used in
// defers where the read/write path already reported the error that matters.
func CloseFile(c io.Closer) {
	if err := c.Close(); err != nil {
		log.Printf("error closing file: %v", err)
	}
}
