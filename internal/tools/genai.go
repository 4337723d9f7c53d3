package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"
)

// Declarations returns a function declaration per tool, in registration order, for
// use in a genai.Tool.
func (r *Registry) Declarations() []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(r.order))
	for _, d := range r.Describe() {
		schema := &genai.Schema{
			Type:       genai.TypeObject,
			Properties: make(map[string]*genai.Schema, len(d.Params)),
		}
		for _, p := range d.Params {
			schema.Properties[p.Name] = &genai.Schema{
				Type:        genai.TypeString,
				Description: p.Description,
				Enum:        p.Enum,
			}
			if p.Required {
				schema.Required = append(schema.Required, p.Name)
			}
		}
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  schema,
		})
	}
	return decls
}

// Dispatch runs a model-issued function call. Failures are reported to the model
// under the "error" key instead of being returned.
func (r *Registry) Dispatch(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse {
	resp := &genai.FunctionResponse{ID: call.ID, Name: call.Name}

	output, err := r.dispatch(ctx, call)
	if err != nil {
		resp.Response = map[string]any{"error": err.Error()}
		return resp
	}
	resp.Response = map[string]any{"output": output}
	return resp
}

func (r *Registry) dispatch(ctx context.Context, call *genai.FunctionCall) (map[string]any, error) {
	args, err := json.Marshal(call.Args)
	if err != nil {
		return nil, fmt.Errorf("Dispatch: marshal args: %w", err)
	}

	result, err := r.Invoke(ctx, call.Name, args)
	if err != nil {
		return nil, err
	}

	// FunctionResponse carries a plain map, so round-trip through JSON to apply the
	// result's tags and custom marshalers.
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("Dispatch: marshal result: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("Dispatch: decode result: %w", err)
	}
	return out, nil
}
