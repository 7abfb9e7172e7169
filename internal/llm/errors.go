package llm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoStructuredData is returned by ExtractJSON when no parse
// strategy could recover structured data from the model output.
// Extractors treat this as "zero facts", not a hard failure.
var ErrNoStructuredData = errors.New("no structured data in model output")

// TransientError signals a throttling/quota condition from the
// backend. The gateway retries these with backoff; any other error
// propagates immediately.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("backend throttled: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is a retryable backend error
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// RetryExhaustedError is the terminal failure after the gateway has
// spent all retries on transient errors. Callers always receive this
// as an explicit error, never an empty result.
type RetryExhaustedError struct {
	Attempts int
	Last     error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("generation failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *RetryExhaustedError) Unwrap() error {
	return e.Last
}

// throttled classifies a raw provider error as transient. Provider
// SDKs don't share an error taxonomy, so this falls back to matching
// the signals both APIs put in their messages.
func throttled(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "resource exhausted")
}
