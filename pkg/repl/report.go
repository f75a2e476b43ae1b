package repl

import (
	"fmt"
	"io"
)

// CreditHint is the guidance shown after collaborator failures.
const CreditHint = "Please verify that your API key is valid and that your account has sufficient credit remaining."

// ReportFailure prints a session-ending error with guidance.
func ReportFailure(out io.Writer, err error, hint string) {
	if out == nil || err == nil {
		return
	}
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "--- Error occurred ---")
	_, _ = fmt.Fprintf(out, "error message: %v\n", err)
	if hint != "" {
		_, _ = fmt.Fprintln(out, hint)
	}
}
