package broker

import "fmt"

// InvalidArgError indicates a tool invocation carried a URL the broker
// refuses: malformed, wrong scheme, or an internal host.
type InvalidArgError struct {
	URL    string
	Reason string
}

func (e *InvalidArgError) Error() string {
	return fmt.Sprintf("invalid tool argument %q: %s", e.URL, e.Reason)
}

// BudgetExceededError indicates the invocation or byte budget for this
// generation is spent. It fails the single invocation, not the generation.
type BudgetExceededError struct {
	Kind  string
	Limit int
	Used  int
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("tool budget exceeded: %s limit %d reached (%d used)", e.Kind, e.Limit, e.Used)
}
