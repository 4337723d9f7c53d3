package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Params is the flat parameter object every tool accepts. Each tool reads only the
// fields it declares; the rest are ignored.
type Params struct {
	Period      string `json:"period,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	PlanID      string `json:"planId,omitempty"`
	GroupBy     string `json:"groupBy,omitempty"`
	Sensitivity string `json:"sensitivity,omitempty"`
}

// ParamSpec describes one parameter for listings and function declarations.
type ParamSpec struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Required    bool     `json:"required,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Default     string   `json:"default,omitempty"`
}

// decodeParams parses raw JSON into Params. Empty input and "null" mean no parameters.
func decodeParams(tool string, raw json.RawMessage) (Params, error) {
	var p Params
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return p, nil
	}
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return Params{}, &ValidationError{Tool: tool, Field: "params", Reason: fmt.Sprintf("malformed JSON: %v", err)}
	}
	return p, nil
}

func oneOf(tool, field, value string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &ValidationError{Tool: tool, Field: field, Reason: fmt.Sprintf("%q is not one of %v", value, allowed)}
}

func orDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
