package generation

import "fmt"

// APICallError indicates a failure calling the underlying LLM provider.
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation API error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("generation API error: %s", e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}
