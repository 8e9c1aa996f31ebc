package repositories

import (
	"context"

	"ledgerly/internal/domain/models"
)

// ChatRepository persists chats and their turn-level state.
type ChatRepository interface {
	CreateChat(ctx context.Context, chat *models.Chat) error
	GetChat(ctx context.Context, chatID, userID string) (*models.Chat, error)
	ListChats(ctx context.Context, userID string) ([]models.Chat, error)

	// UpdateLatestResponseID stores the continuation token for the next
	// turn. A nil id clears a stale token.
	UpdateLatestResponseID(ctx context.Context, chatID string, responseID *string) error

	// RecordError persists a turn-level failure on the chat so the UI
	// reaches a terminal, inspectable state.
	RecordError(ctx context.Context, chatID, message string) error
}

// MessageRepository persists chat messages, including incremental content
// appends during streaming.
type MessageRepository interface {
	CreateMessage(ctx context.Context, msg *models.Message) error
	GetMessages(ctx context.Context, chatID string) ([]models.Message, error)

	// AppendContent appends a streamed text fragment to a message.
	AppendContent(ctx context.Context, messageID, delta string) error

	// SetToolCalls replaces the display tool calls on a message.
	SetToolCalls(ctx context.Context, messageID string, calls []models.ToolCall) error
}
