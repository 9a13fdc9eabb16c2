package generator

import "fmt"

// GenerationError reports an invalid generation request. These are caller
// mistakes, not transient faults; nothing retries them.
type GenerationError struct {
	Reason string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("invalid generation request: %s", e.Reason)
}
