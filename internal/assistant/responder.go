package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"ledgerly/internal/llm"
)

// MaxFunctionCalls caps function executions per conversation turn. The cap
// allows multi-step workflows and large bulk operations while preventing
// runaway provider usage.
const MaxFunctionCalls = 100

const budgetExhaustedMessage = "I've gathered the available data but need to stop here to manage costs. " +
	"Let me know if you'd like me to continue with additional queries."

// Patterns indicating the continuation token sent to the provider is stale
// or invalid. Providers return these when a stored response id has expired
// or was never valid for the account.
var staleResponsePatterns = []*regexp.Regexp{
	regexp.MustCompile(`previous_response.*not found`),
	regexp.MustCompile(`previous_response.*invalid`),
	regexp.MustCompile(`previous_response.*does not exist`),
	regexp.MustCompile(`previous_response.*expired`),
	regexp.MustCompile(`response.*id.*not found`),
	regexp.MustCompile(`response.*id.*invalid`),
	regexp.MustCompile(`no response found`),
	regexp.MustCompile(`conversation.*not found`),
}

func isStaleResponseError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range staleResponsePatterns {
		if pattern.MatchString(msg) {
			return true
		}
	}
	return false
}

// ResponseEvent is the payload of a response event. An intermediate event
// (one per executed function round) carries ToolCalls; the terminal event
// carries neither ToolCalls nor, unless the budget ran out, the
// HasPendingFunctions flag.
type ResponseEvent struct {
	// ID is the provider response id.
	ID string

	// ToolCalls lists the function calls executed for this response.
	ToolCalls []FunctionToolCall

	// HasPendingFunctions marks a terminal response that still expects
	// function output the turn will not provide. Its id must not be stored
	// as a continuation token.
	HasPendingFunctions bool
}

// ResponderConfig carries the per-turn inputs of a Responder.
type ResponderConfig struct {
	// Message is the user's message content for this turn.
	Message string

	// Model is the model identifier the user selected.
	Model string

	// Instructions is the system prompt.
	Instructions string

	// SessionID identifies the chat for provider-side grouping.
	SessionID string

	// UserIdentifier is an opaque per-user identifier for abuse monitoring.
	UserIdentifier string

	Caller   *FunctionToolCaller
	Provider llm.Provider

	// ClearStaleToken is invoked when the provider rejects the continuation
	// token, so the stored token is removed before the retry.
	ClearStaleToken func(ctx context.Context) error

	Logger *slog.Logger
}

// Responder drives one conversation turn to completion: it calls the
// provider, executes requested functions within the call budget, replays
// their results, and repeats until the provider returns a final reply.
// Observers subscribe to events; the Responder itself persists nothing.
type Responder struct {
	cfg            ResponderConfig
	totalCallsUsed int

	onOutputText        []func(text string)
	onFunctionsStarting []func(functionNames []string)
	onResponse          []func(event ResponseEvent)
}

func NewResponder(cfg ResponderConfig) *Responder {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Responder{cfg: cfg}
}

// OnOutputText subscribes to incremental text fragments. Listeners run
// synchronously in registration order.
func (r *Responder) OnOutputText(fn func(text string)) {
	r.onOutputText = append(r.onOutputText, fn)
}

// OnFunctionsStarting subscribes to the event fired immediately before a
// round of function calls executes.
func (r *Responder) OnFunctionsStarting(fn func(functionNames []string)) {
	r.onFunctionsStarting = append(r.onFunctionsStarting, fn)
}

// OnResponse subscribes to intermediate and terminal response events.
func (r *Responder) OnResponse(fn func(event ResponseEvent)) {
	r.onResponse = append(r.onResponse, fn)
}

// Respond runs the turn. previousResponseID is the stored continuation
// token from the prior turn, empty for a fresh conversation. Exactly one
// terminal response event is emitted on success.
func (r *Responder) Respond(ctx context.Context, previousResponseID string) error {
	resp, _, err := r.streamedCall(ctx, nil, previousResponseID)
	if err != nil {
		return err
	}

	hadText := false
	for round := 0; ; round++ {
		requests := resp.FunctionRequests
		if len(requests) == 0 {
			r.emitResponse(ResponseEvent{ID: resp.ID})
			return nil
		}

		remaining := MaxFunctionCalls - r.totalCallsUsed
		if len(requests) > remaining {
			r.cfg.Logger.Warn("function call budget exhausted",
				"used", r.totalCallsUsed,
				"budget", MaxFunctionCalls,
				"requested", len(requests),
			)
			if round == 0 || !hadText {
				r.emitOutputText(budgetExhaustedMessage)
			}
			r.emitResponse(ResponseEvent{ID: resp.ID, HasPendingFunctions: true})
			return nil
		}
		r.totalCallsUsed += len(requests)

		names := make([]string, len(requests))
		for i, req := range requests {
			names[i] = req.FunctionName
		}
		r.cfg.Logger.Info("functions starting",
			"used", r.totalCallsUsed,
			"budget", MaxFunctionCalls,
			"function_names", names,
		)
		r.emitFunctionsStarting(names)

		toolCalls := r.cfg.Caller.FulfillRequests(ctx, requests)

		// The intermediate response expects function output; its id becomes
		// the continuation token for the follow-up call only.
		r.emitResponse(ResponseEvent{ID: resp.ID, ToolCalls: toolCalls})

		results := make([]llm.FunctionResult, len(toolCalls))
		for i, call := range toolCalls {
			results[i] = call.ToResult()
		}

		resp, hadText, err = r.streamedCall(ctx, results, resp.ID)
		if err != nil {
			return err
		}
	}
}

// streamedCall performs one provider exchange, forwarding streamed text to
// listeners. When the provider rejects a stale continuation token the stored
// token is cleared and the call retried once without it.
func (r *Responder) streamedCall(ctx context.Context, functionResults []llm.FunctionResult, previousResponseID string) (resp *llm.Response, hadText bool, err error) {
	request := func(prevID string) *llm.ChatRequest {
		return &llm.ChatRequest{
			Message:            r.cfg.Message,
			Model:              r.cfg.Model,
			Instructions:       r.cfg.Instructions,
			Functions:          r.cfg.Caller.FunctionDefinitions(),
			FunctionResults:    functionResults,
			PreviousResponseID: prevID,
			SessionID:          r.cfg.SessionID,
			UserIdentifier:     r.cfg.UserIdentifier,
			Streamer: func(chunk llm.StreamChunk) {
				if chunk.Type == llm.ChunkOutputText {
					hadText = true
					r.emitOutputText(chunk.Text)
				}
			},
		}
	}

	resp, err = r.cfg.Provider.ChatResponse(ctx, request(previousResponseID))
	if err != nil && previousResponseID != "" && isStaleResponseError(err) {
		r.cfg.Logger.Warn("stale previous_response_id detected, clearing and retrying without it",
			"error", err,
		)
		if r.cfg.ClearStaleToken != nil {
			if clearErr := r.cfg.ClearStaleToken(ctx); clearErr != nil {
				return nil, hadText, fmt.Errorf("clear stale response id: %w", clearErr)
			}
		}
		resp, err = r.cfg.Provider.ChatResponse(ctx, request(""))
	}
	if err != nil {
		return nil, hadText, err
	}
	return resp, hadText, nil
}

func (r *Responder) emitOutputText(text string) {
	for _, fn := range r.onOutputText {
		fn(text)
	}
}

func (r *Responder) emitFunctionsStarting(names []string) {
	for _, fn := range r.onFunctionsStarting {
		fn(names)
	}
}

func (r *Responder) emitResponse(event ResponseEvent) {
	for _, fn := range r.onResponse {
		fn(event)
	}
}
