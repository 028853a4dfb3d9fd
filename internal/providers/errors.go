package providers

import "fmt"

// AuthError marks a 401/403 from a provider. Authorization failures are never
// retried.
type AuthError struct {
	Provider   string
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s authorization failed (status %d)", e.Provider, e.StatusCode)
}

// TransientError marks a retryable provider failure: timeouts, 5xx, network
// errors, or 4xx responses other than authorization failures.
type TransientError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *TransientError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s request failed (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// InvalidResponseError marks a payload the adapter could not transform. It
// triggers the same fallback as a transient failure but is logged distinctly.
type InvalidResponseError struct {
	Provider string
	Reason   string
	Err      error
}

func (e *InvalidResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s returned an invalid response: %s: %v", e.Provider, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s returned an invalid response: %s", e.Provider, e.Reason)
}

func (e *InvalidResponseError) Unwrap() error { return e.Err }

// ExhaustedRetriesError is returned when the retry budget runs out. It carries
// the last underlying error.
type ExhaustedRetriesError struct {
	Provider string
	Attempts int
	Last     error
}

func (e *ExhaustedRetriesError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Provider, e.Attempts, e.Last)
}

func (e *ExhaustedRetriesError) Unwrap() error { return e.Last }
