package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"ledgerly/internal/domain"
	"ledgerly/internal/domain/models"
	"ledgerly/internal/domain/repositories"
)

// PostgresMessageRepository implements the MessageRepository interface
type PostgresMessageRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(config *RepositoryConfig) repositories.MessageRepository {
	return &PostgresMessageRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// CreateMessage creates a new message
func (r *PostgresMessageRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	toolCalls, err := json.Marshal(msg.ToolCalls)
	if err != nil {
		return fmt.Errorf("marshal tool calls: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, chat_id, role, content, ai_model, tool_calls, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`, r.tables.Messages)

	err = GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		msg.ID,
		msg.ChatID,
		msg.Role,
		msg.Content,
		msg.AIModel,
		toolCalls,
	).Scan(&msg.CreatedAt, &msg.UpdatedAt)

	if err != nil {
		if isPgForeignKeyError(err) {
			return fmt.Errorf("chat %s: %w", msg.ChatID, domain.ErrNotFound)
		}
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// GetMessages retrieves all messages of a chat in conversation order
func (r *PostgresMessageRepository) GetMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	query := fmt.Sprintf(`
		SELECT id, chat_id, role, content, ai_model, tool_calls, created_at, updated_at
		FROM %s
		WHERE chat_id = $1
		ORDER BY created_at ASC
	`, r.tables.Messages)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		var toolCalls []byte
		if err := rows.Scan(
			&msg.ID,
			&msg.ChatID,
			&msg.Role,
			&msg.Content,
			&msg.AIModel,
			&toolCalls,
			&msg.CreatedAt,
			&msg.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if len(toolCalls) > 0 {
			if err := json.Unmarshal(toolCalls, &msg.ToolCalls); err != nil {
				return nil, fmt.Errorf("unmarshal tool calls: %w", err)
			}
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// AppendContent appends a streamed text fragment to a message
func (r *PostgresMessageRepository) AppendContent(ctx context.Context, messageID, delta string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET content = content || $2, updated_at = NOW()
		WHERE id = $1
	`, r.tables.Messages)

	tag, err := GetExecutor(ctx, r.pool).Exec(ctx, query, messageID, delta)
	if err != nil {
		return fmt.Errorf("append message content: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("message %s: %w", messageID, domain.ErrNotFound)
	}
	return nil
}

// SetToolCalls replaces the display tool calls on a message
func (r *PostgresMessageRepository) SetToolCalls(ctx context.Context, messageID string, calls []models.ToolCall) error {
	toolCalls, err := json.Marshal(calls)
	if err != nil {
		return fmt.Errorf("marshal tool calls: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET tool_calls = $2, updated_at = NOW()
		WHERE id = $1
	`, r.tables.Messages)

	tag, err := GetExecutor(ctx, r.pool).Exec(ctx, query, messageID, toolCalls)
	if err != nil {
		return fmt.Errorf("set tool calls: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("message %s: %w", messageID, domain.ErrNotFound)
	}
	return nil
}
