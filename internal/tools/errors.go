package tools

import (
	"errors"
	"fmt"
)

// ErrUnknownTool is returned when a name is not in the registry.
var ErrUnknownTool = errors.New("unknown tool")

// ValidationError reports a parameter a tool cannot accept.
type ValidationError struct {
	Tool   string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("tools: %s: invalid %s: %s", e.Tool, e.Field, e.Reason)
}
