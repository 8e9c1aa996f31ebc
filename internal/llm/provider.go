// Package llm defines the provider abstraction the assistant core talks to,
// plus the wire types exchanged with providers: function definitions going
// out, function-call requests coming back, and streamed chunks in between.
package llm

import (
	"context"

	"ledgerly/internal/schema"
)

// Provider is implemented by each configured LLM backend.
type Provider interface {
	// Name returns the provider name (e.g. "openai", "lorem").
	Name() string

	// SupportsModel reports whether the provider can serve the given model.
	SupportsModel(model string) bool

	// SupportedModelsDescription is a short human-readable summary of the
	// models this provider serves, used in configuration error messages.
	SupportedModelsDescription() string

	// ChatResponse performs one exchange. The streamer, when set, is invoked
	// zero or more times with output_text chunks carrying incremental text
	// and exactly one terminal response chunk carrying the full Response.
	// The returned Response is the same object the terminal chunk carries.
	ChatResponse(ctx context.Context, req *ChatRequest) (*Response, error)
}

// ChatRequest carries everything a provider needs for one call.
type ChatRequest struct {
	// Message is the user's message content.
	Message string

	// Model is the model identifier requested by the user.
	Model string

	// Instructions is the system prompt for this conversation.
	Instructions string

	// Functions lists the capability definitions the model may call.
	Functions []FunctionDefinition

	// FunctionResults carries tool outputs for a follow-up call. Empty on
	// the initial call of a turn.
	FunctionResults []FunctionResult

	// PreviousResponseID is the continuation token from the prior exchange,
	// empty for a fresh conversation.
	PreviousResponseID string

	// SessionID identifies the chat for provider-side grouping.
	SessionID string

	// UserIdentifier is an opaque per-user identifier for abuse monitoring.
	UserIdentifier string

	// Streamer receives chunks as they arrive. May be nil.
	Streamer func(chunk StreamChunk)
}

// ChunkType discriminates StreamChunk payloads.
type ChunkType string

const (
	// ChunkOutputText carries an incremental text fragment.
	ChunkOutputText ChunkType = "output_text"
	// ChunkResponse is the terminal chunk carrying the full response.
	ChunkResponse ChunkType = "response"
)

// StreamChunk is one streamed event from a provider.
type StreamChunk struct {
	Type ChunkType

	// Text is set for ChunkOutputText.
	Text string

	// Response is set for ChunkResponse.
	Response *Response
}

// Response is a provider's reply to one call.
type Response struct {
	// ID is the provider-assigned response id; it doubles as the
	// continuation token for the next call.
	ID string

	// OutputText is the full text of the reply, if any.
	OutputText string

	// FunctionRequests lists the function calls the model wants executed
	// before it can finish. Empty when the reply is final.
	FunctionRequests []FunctionRequest
}

// FunctionRequest is one model-issued intent to call a capability.
type FunctionRequest struct {
	// CallID is the provider-assigned id pairing this request with its output.
	CallID string `json:"call_id"`

	// FunctionName names the capability to invoke.
	FunctionName string `json:"function_name"`

	// FunctionArgs is the raw JSON-encoded argument payload.
	FunctionArgs string `json:"function_args"`
}

// FunctionResult is a tool output replayed to the provider on a follow-up.
type FunctionResult struct {
	CallID string `json:"call_id"`

	// Output is the JSON-encoded result of the capability call.
	Output string `json:"output"`
}

// FunctionDefinition is the externally published shape of a capability.
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  *schema.Schema `json:"parameters"`

	// Strict mirrors the capability's computed strict-mode flag.
	Strict bool `json:"strict"`
}
