package meshjoin

import (
	"errors"
	"fmt"
	"log"
)

// Error kinds surfaced by a run. Only a stream that cannot be opened stops a
// run; everything else is contained and reported through Diagnostics and
// Stats.
var (
	// ErrSourceUnavailable marks a reference relation that could not be
	// fetched (the run continues with an empty collection) or a transaction
	// stream that could not be opened.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrMalformedRecord marks a stream line that was skipped.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrMalformedMoney marks a price that could not be parsed; 0 is used.
	ErrMalformedMoney = errors.New("malformed money field")

	// ErrUnmatchedTransaction marks a transaction with no customer or no
	// product match. It is counted, never logged per row.
	ErrUnmatchedTransaction = errors.New("unmatched transaction")

	// ErrSinkWrite marks a failure writing results.
	ErrSinkWrite = errors.New("sink write failure")
)

// Diagnostic is one contained failure. Kind is one of the Err* values above.
type Diagnostic struct {
	Kind   error
	Line   int    // stream line, 0 when not tied to a line
	Detail string // human-readable context
	Raw    string // offending input, when available
}

func (d Diagnostic) Error() string {
	if d.Line > 0 {
		return fmt.Sprintf("row %d: %v: %s", d.Line, d.Kind, d.Detail)
	}
	return fmt.Sprintf("%v: %s", d.Kind, d.Detail)
}

func (d Diagnostic) Unwrap() error { return d.Kind }

// DiagnosticFunc receives contained failures. It is called from the worker
// goroutines and must be safe for concurrent use.
type DiagnosticFunc func(Diagnostic)

// LogDiagnostic is the default handler: it logs every kind except unmatched
// transactions, which are only counted.
func LogDiagnostic(d Diagnostic) {
	if errors.Is(d.Kind, ErrUnmatchedTransaction) {
		return
	}
	log.Printf("%v", d)
}
