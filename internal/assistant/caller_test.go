package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"ledgerly/internal/llm"
	"ledgerly/internal/schema"
)

// fakeFunction is a scriptable capability for dispatcher tests.
type fakeFunction struct {
	name       string
	desc       string
	params     *schema.Schema
	call       func(ctx context.Context, params map[string]any) (any, error)
	onProgress func(message string)
}

func (f *fakeFunction) Name() string                 { return f.name }
func (f *fakeFunction) Description() string          { return f.desc }
func (f *fakeFunction) ParamsSchema() *schema.Schema { return f.params }
func (f *fakeFunction) OnProgress(fn func(message string)) {
	f.onProgress = fn
}

func (f *fakeFunction) Call(ctx context.Context, params map[string]any) (any, error) {
	return f.call(ctx, params)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFulfillRequestsPreservesOrderAndCount(t *testing.T) {
	echo := &fakeFunction{
		name:   "echo",
		params: schema.Object(nil),
		call: func(_ context.Context, params map[string]any) (any, error) {
			return params["value"], nil
		},
	}
	caller := NewFunctionToolCaller(testLogger(), echo)

	requests := []llm.FunctionRequest{
		{CallID: "call_1", FunctionName: "echo", FunctionArgs: `{"value":"first"}`},
		{CallID: "call_2", FunctionName: "echo", FunctionArgs: `{"value":"second"}`},
		{CallID: "call_3", FunctionName: "echo", FunctionArgs: `{"value":"third"}`},
	}

	calls := caller.FulfillRequests(context.Background(), requests)

	if len(calls) != len(requests) {
		t.Fatalf("expected %d calls, got %d", len(requests), len(calls))
	}
	for i, want := range []string{"first", "second", "third"} {
		if calls[i].CallID != requests[i].CallID {
			t.Errorf("call %d: expected id %s, got %s", i, requests[i].CallID, calls[i].CallID)
		}
		if calls[i].Result != want {
			t.Errorf("call %d: expected result %q, got %v", i, want, calls[i].Result)
		}
	}
}

func TestFulfillRequestsErrorDoesNotAbortSiblings(t *testing.T) {
	executed := []string{}
	ok := &fakeFunction{
		name:   "works",
		params: schema.Object(nil),
		call: func(_ context.Context, _ map[string]any) (any, error) {
			executed = append(executed, "works")
			return map[string]any{"status": "ok"}, nil
		},
	}
	broken := &fakeFunction{
		name:   "breaks",
		params: schema.Object(nil),
		call: func(_ context.Context, _ map[string]any) (any, error) {
			executed = append(executed, "breaks")
			return nil, errors.New("database unavailable")
		},
	}
	caller := NewFunctionToolCaller(testLogger(), ok, broken)

	calls := caller.FulfillRequests(context.Background(), []llm.FunctionRequest{
		{CallID: "c1", FunctionName: "breaks", FunctionArgs: `{}`},
		{CallID: "c2", FunctionName: "works", FunctionArgs: `{}`},
	})

	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	if len(executed) != 2 {
		t.Fatalf("expected both functions executed, got %v", executed)
	}
	errResult, ok2 := calls[0].Result.(ErrorResult)
	if !ok2 {
		t.Fatalf("expected ErrorResult for failing call, got %T", calls[0].Result)
	}
	if errResult.Error == "" {
		t.Error("expected non-empty error message")
	}
	if _, isErr := calls[1].Result.(ErrorResult); isErr {
		t.Error("sibling call should not be an error")
	}
}

func TestFulfillRequestsUnknownFunction(t *testing.T) {
	caller := NewFunctionToolCaller(testLogger())

	calls := caller.FulfillRequests(context.Background(), []llm.FunctionRequest{
		{CallID: "c1", FunctionName: "nonexistent", FunctionArgs: `{}`},
	})

	result, ok := calls[0].Result.(ErrorResult)
	if !ok {
		t.Fatalf("expected ErrorResult, got %T", calls[0].Result)
	}
	if result.Error == "" {
		t.Error("expected error message for unknown function")
	}
}

func TestFulfillRequestsMalformedArguments(t *testing.T) {
	fn := &fakeFunction{
		name:   "echo",
		params: schema.Object(nil),
		call: func(_ context.Context, _ map[string]any) (any, error) {
			t.Fatal("capability must not run with unparseable arguments")
			return nil, nil
		},
	}
	caller := NewFunctionToolCaller(testLogger(), fn)

	calls := caller.FulfillRequests(context.Background(), []llm.FunctionRequest{
		{CallID: "c1", FunctionName: "echo", FunctionArgs: `{not json`},
	})

	if _, ok := calls[0].Result.(ErrorResult); !ok {
		t.Fatalf("expected ErrorResult, got %T", calls[0].Result)
	}
}

func TestFulfillRequestsRebindsProgressPerCall(t *testing.T) {
	var messages []string
	reporter := func(name string) *fakeFunction {
		f := &fakeFunction{name: name, params: schema.Object(nil)}
		f.call = func(_ context.Context, _ map[string]any) (any, error) {
			if f.onProgress != nil {
				f.onProgress(fmt.Sprintf("running %s", name))
			}
			return "done", nil
		}
		return f
	}
	a, b := reporter("alpha"), reporter("beta")
	caller := NewFunctionToolCaller(testLogger(), a, b)
	caller.OnProgress(func(message string) {
		messages = append(messages, message)
	})

	caller.FulfillRequests(context.Background(), []llm.FunctionRequest{
		{CallID: "c1", FunctionName: "alpha", FunctionArgs: `{}`},
		{CallID: "c2", FunctionName: "beta", FunctionArgs: `{}`},
	})

	if len(messages) != 2 || messages[0] != "running alpha" || messages[1] != "running beta" {
		t.Errorf("unexpected progress messages: %v", messages)
	}
}

func TestFunctionDefinitionsComputeStrictFromSchema(t *testing.T) {
	strict := &fakeFunction{
		name: "strict_fn",
		params: schema.Object(map[string]*schema.Schema{
			"id": schema.String("identifier"),
		}, "id"),
	}
	loose := &fakeFunction{
		name: "loose_fn",
		params: schema.Object(map[string]*schema.Schema{
			"id": schema.String("identifier"),
		}),
	}
	caller := NewFunctionToolCaller(testLogger(), strict, loose)

	defs := caller.FunctionDefinitions()
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	if !defs[0].Strict {
		t.Error("fully-required schema should be strict")
	}
	if defs[1].Strict {
		t.Error("schema with optional property should not be strict")
	}
}

func TestFunctionExecutionErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &FunctionExecutionError{FunctionName: "f", Arguments: "{}", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to reach the cause")
	}
}
