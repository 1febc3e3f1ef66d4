package llm

import "fmt"

// InputError indicates a caller-fixable problem: empty inputs, empty
// evaluation text. Never retried.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input error: %s", e.Message)
}

// ProviderError indicates a transport or model failure after the provider
// adapter's retry policy is exhausted. The stub adapter never returns it.
type ProviderError struct {
	Adapter  string
	Message  string
	Attempts int
	Cause    error
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider error (%s, %d attempts): %s: %v", e.Adapter, e.Attempts, e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error (%s, %d attempts): %s", e.Adapter, e.Attempts, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}
