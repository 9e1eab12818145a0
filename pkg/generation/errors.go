package generation

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind tells callers whether a failed generation is worth retrying.
type Kind int

const (
	// Unknown failures are not retried.
	Unknown Kind = iota
	// Transient covers timeouts, rate limits and 5xx responses.
	Transient
	// Refused means the model declined on content grounds. Never retried.
	Refused
)

func (k Kind) String() string {
	switch k {
	case Transient:
		return "transient"
	case Refused:
		return "refused"
	default:
		return "unknown"
	}
}

// GenerationError is the only error shape the gateway returns.
type GenerationError struct {
	Kind     Kind
	Op       string
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("generation %s: %v", e.Kind, e.Err)
	}
	if e.Attempts > 0 {
		return fmt.Sprintf("%s %s after %d attempt(s): %v", e.Op, e.Kind, e.Attempts, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// NewTransient marks err as worth retrying. Capabilities use it for rate
// limits and server-side failures.
func NewTransient(err error) error {
	return &GenerationError{Kind: Transient, Err: err}
}

// NewRefused marks a content-policy refusal.
func NewRefused(reason string) error {
	return &GenerationError{Kind: Refused, Err: errors.New(reason)}
}

// KindOf classifies any error a capability may return.
func KindOf(err error) Kind {
	if err == nil {
		return Unknown
	}
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Transient
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Transient
	}
	return Unknown
}

// IsRefused reports whether err is a content refusal.
func IsRefused(err error) bool {
	return KindOf(err) == Refused
}
