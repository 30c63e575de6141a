package payments

import (
	"errors"
	"fmt"
)

var (
	// ErrIntentNotFound: confirmation callback references an unknown intent.
	ErrIntentNotFound = errors.New("payment intent not found")
	// ErrUnknownOrders: the order-id set references orders that don't exist.
	ErrUnknownOrders = errors.New("one or more orders not found")
	// ErrIntentPending: confirmation arrived but the processor still reports
	// the intent as awaiting confirmation.
	ErrIntentPending = errors.New("payment intent is not confirmed yet")
)

// AmountMismatchError is the primary tampering defense: the caller-supplied
// amount disagreed with the server-side recomputation. Never silently
// corrected.
type AmountMismatchError struct {
	ExpectedMinor int64
	GotMinor      int64
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("amount mismatch: expected %d, got %d", e.ExpectedMinor, e.GotMinor)
}

// DeclinedError is a processor-declared decline, terminal for the attempt.
type DeclinedError struct {
	Code   string
	Reason string
}

func (e *DeclinedError) Error() string {
	if e.Reason != "" {
		return "payment declined: " + e.Reason
	}
	return "payment declined"
}

// TransientError wraps network/timeout failures talking to the processor;
// the caller should retry with the same order set.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return "payment processor unavailable: " + e.Err.Error()
}

func (e *TransientError) Unwrap() error { return e.Err }
