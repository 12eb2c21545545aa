package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"scardoc/internal/errors"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitError carries an explicit process exit status.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func exitCode(err error) int {
	var ee *exitError
	if stderrors.As(err, &ee) {
		return ee.code
	}
	return 1
}

// printError writes err and, for typed errors, its code and suggested fixes.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)

	var de *errors.DocError
	if !stderrors.As(err, &de) {
		return
	}
	fmt.Fprintf(w, "Code: %s\n", de.Code)
	for _, fix := range de.SuggestedFixes {
		switch {
		case fix.Command != "" && fix.Description != "":
			fmt.Fprintf(w, "  Try: %s  (%s)\n", fix.Command, fix.Description)
		case fix.Command != "":
			fmt.Fprintf(w, "  Try: %s\n", fix.Command)
		default:
			fmt.Fprintf(w, "  Hint: %s\n", fix.Description)
		}
	}
}
