package relay

import "fmt"

// TransactionFailedError is returned when an operation could not be relayed,
// either because its session key denied it or because the providers kept
// failing. Err is the underlying cause.
type TransactionFailedError struct {
	Reason string
	Err    error
}

func (e *TransactionFailedError) Error() string {
	return fmt.Sprintf("transaction failed: %s: %s", e.Reason, e.Err)
}

func (e *TransactionFailedError) Unwrap() error {
	return e.Err
}
