package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"ledgerly/internal/llm"
)

// FunctionExecutionError wraps an unexpected capability failure with the
// function name and raw arguments for context.
type FunctionExecutionError struct {
	FunctionName string
	Arguments    string
	Err          error
}

func (e *FunctionExecutionError) Error() string {
	return fmt.Sprintf("calling function %s with arguments %s: %v", e.FunctionName, e.Arguments, e.Err)
}

func (e *FunctionExecutionError) Unwrap() error {
	return e.Err
}

// FunctionToolCaller holds the capability set for a turn, resolves the
// model's function requests to capability instances, executes them strictly
// sequentially in request order, and wraps outcomes uniformly.
type FunctionToolCaller struct {
	functions  []Function
	byName     map[string]Function
	onProgress func(message string)
	logger     *slog.Logger
}

// NewFunctionToolCaller creates a caller over the given capabilities.
// Names must be unique; a duplicate registration is a configuration defect
// and the later capability wins.
func NewFunctionToolCaller(logger *slog.Logger, functions ...Function) *FunctionToolCaller {
	byName := make(map[string]Function, len(functions))
	for _, fn := range functions {
		byName[fn.Name()] = fn
	}
	return &FunctionToolCaller{
		functions: functions,
		byName:    byName,
		logger:    logger,
	}
}

// OnProgress sets the turn-level progress callback. It is rebound into each
// capability before dispatch so progress messages are attributable to the
// currently executing capability.
func (c *FunctionToolCaller) OnProgress(fn func(message string)) {
	c.onProgress = fn
}

// FunctionDefinitions returns the published definitions for all registered
// capabilities, passed to the provider so it knows what it may call.
func (c *FunctionToolCaller) FunctionDefinitions() []llm.FunctionDefinition {
	defs := make([]llm.FunctionDefinition, len(c.functions))
	for i, fn := range c.functions {
		defs[i] = Definition(fn)
	}
	return defs
}

// FulfillRequests produces exactly one FunctionToolCall per request, in
// request order. A failing request yields an error-valued call; it never
// aborts sibling requests in the same batch.
func (c *FunctionToolCaller) FulfillRequests(ctx context.Context, requests []llm.FunctionRequest) []FunctionToolCall {
	calls := make([]FunctionToolCall, len(requests))
	for i, req := range requests {
		result, err := c.execute(ctx, req)
		if err != nil {
			c.logger.Error("function execution failed",
				"function", req.FunctionName,
				"error", err,
			)
			result = ErrorResult{Error: err.Error()}
		}
		calls[i] = FunctionToolCall{
			CallID:       req.CallID,
			FunctionName: req.FunctionName,
			FunctionArgs: req.FunctionArgs,
			Result:       result,
		}
	}
	return calls
}

// execute runs a single request. Lookup fails closed: an unregistered name
// is an implementation defect, not a user error.
func (c *FunctionToolCaller) execute(ctx context.Context, req llm.FunctionRequest) (any, error) {
	fn, ok := c.byName[req.FunctionName]
	if !ok {
		return nil, &FunctionExecutionError{
			FunctionName: req.FunctionName,
			Arguments:    req.FunctionArgs,
			Err:          fmt.Errorf("function not registered"),
		}
	}

	var params map[string]any
	if err := json.Unmarshal([]byte(req.FunctionArgs), &params); err != nil {
		return nil, &FunctionExecutionError{
			FunctionName: req.FunctionName,
			Arguments:    req.FunctionArgs,
			Err:          fmt.Errorf("parse arguments: %w", err),
		}
	}

	if c.onProgress != nil {
		fn.OnProgress(c.onProgress)
	}

	result, err := fn.Call(ctx, params)
	if err != nil {
		return nil, &FunctionExecutionError{
			FunctionName: req.FunctionName,
			Arguments:    req.FunctionArgs,
			Err:          err,
		}
	}
	return result, nil
}
