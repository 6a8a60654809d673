package intel

import "fmt"

type (
	// ValidationError rejects an address before any request is made
	ValidationError struct {
		IP string
	}

	// LookupError reports a failed request to the backend. StatusCode is zero
	// when no response was received.
	LookupError struct {
		IP         string
		StatusCode int
		Err        error
	}
)

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%q is not a valid IP address", e.IP)
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup of %s failed: %v", e.IP, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}
