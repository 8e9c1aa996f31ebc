package models

import (
	"encoding/json"
	"time"
)

// Chat is one conversation between a user and the assistant.
type Chat struct {
	ID       string `json:"id"`
	LedgerID string `json:"ledger_id"`
	UserID   string `json:"user_id"`
	Title    string `json:"title"`

	// LatestAssistantResponseID is the continuation token from the last
	// completed assistant turn. Nil for a fresh conversation, and cleared
	// when the provider reports the stored id as stale.
	LatestAssistantResponseID *string `json:"latest_assistant_response_id,omitempty"`

	// Error holds the last turn-level failure, surfaced to the UI instead
	// of a stack trace. Cleared implicitly by the next successful turn.
	Error *string `json:"error,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one user or assistant message within a chat.
type Message struct {
	ID      string `json:"id"`
	ChatID  string `json:"chat_id"`
	Role    string `json:"role"`
	Content string `json:"content"`

	// AIModel is the model the user selected for this exchange.
	AIModel string `json:"ai_model,omitempty"`

	// ToolCalls records the function calls executed while producing an
	// assistant message, for display purposes only.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToolCall is the display subset of an executed function call persisted on
// an assistant message.
type ToolCall struct {
	CallID       string          `json:"call_id"`
	FunctionName string          `json:"function_name"`
	FunctionArgs string          `json:"function_args"`
	Result       json.RawMessage `json:"result,omitempty"`
}
