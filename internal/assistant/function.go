// Package assistant implements the conversation orchestration core: the
// capability contract, the function-call dispatcher, the turn controller
// driving one exchange with an LLM provider to completion, and the facade
// binding all of it to a persisted chat.
package assistant

import (
	"context"
	"encoding/json"

	"ledgerly/internal/llm"
	"ledgerly/internal/schema"
)

// Function is the uniform contract every capability the model may call
// satisfies. Implementations must return expected domain failures (e.g.
// "category not found") as an ErrorResult value rather than a Go error;
// only truly exceptional conditions are returned as errors.
type Function interface {
	// Name is the capability's unique identifier within a registry.
	Name() string

	// Description tells the model when and how to use the capability.
	Description() string

	// ParamsSchema returns the JSON parameter schema. Object nodes must
	// carry additionalProperties:false at every nesting level.
	ParamsSchema() *schema.Schema

	// Call executes the capability. The params map is the decoded JSON
	// argument payload from the model.
	Call(ctx context.Context, params map[string]any) (any, error)

	// OnProgress registers a callback invoked zero or more times during
	// Call with short human-readable status strings. At most one callback
	// per instance; the last registration wins.
	OnProgress(fn func(message string))
}

// ErrorResult is the structured value capabilities return for expected
// domain failures. It flows back to the model as tool output so the model
// can adapt its next action.
type ErrorResult struct {
	Error string `json:"error"`
}

// Definition derives the externally published shape of a capability. The
// strict flag is computed from the schema, never hand-maintained.
func Definition(fn Function) llm.FunctionDefinition {
	params := fn.ParamsSchema()
	return llm.FunctionDefinition{
		Name:        fn.Name(),
		Description: fn.Description(),
		Parameters:  params,
		Strict:      schema.IsStrict(params),
	}
}

// FunctionToolCall pairs a model-issued function request with its outcome.
// Exactly one is produced per request, success or error, in request order.
type FunctionToolCall struct {
	CallID       string `json:"call_id"`
	FunctionName string `json:"function_name"`
	FunctionArgs string `json:"function_args"`
	Result       any    `json:"result"`
}

// ToResult converts the call into the tool output replayed to the provider.
func (c FunctionToolCall) ToResult() llm.FunctionResult {
	output, err := json.Marshal(c.Result)
	if err != nil {
		output, _ = json.Marshal(ErrorResult{Error: "result could not be serialized"})
	}
	return llm.FunctionResult{CallID: c.CallID, Output: string(output)}
}
