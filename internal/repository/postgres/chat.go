package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"ledgerly/internal/domain"
	"ledgerly/internal/domain/models"
	"ledgerly/internal/domain/repositories"
)

// PostgresChatRepository implements the ChatRepository interface
type PostgresChatRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewChatRepository creates a new chat repository
func NewChatRepository(config *RepositoryConfig) repositories.ChatRepository {
	return &PostgresChatRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// CreateChat creates a new chat
func (r *PostgresChatRepository) CreateChat(ctx context.Context, chat *models.Chat) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, ledger_id, user_id, title, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at, updated_at
	`, r.tables.Chats)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		chat.ID,
		chat.LedgerID,
		chat.UserID,
		chat.Title,
	).Scan(&chat.CreatedAt, &chat.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create chat: %w", err)
	}
	return nil
}

// GetChat retrieves a chat by ID, scoped to its owner
func (r *PostgresChatRepository) GetChat(ctx context.Context, chatID, userID string) (*models.Chat, error) {
	query := fmt.Sprintf(`
		SELECT id, ledger_id, user_id, title, latest_assistant_response_id, error,
		       created_at, updated_at, deleted_at
		FROM %s
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
	`, r.tables.Chats)

	var chat models.Chat
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, chatID, userID).Scan(
		&chat.ID,
		&chat.LedgerID,
		&chat.UserID,
		&chat.Title,
		&chat.LatestAssistantResponseID,
		&chat.Error,
		&chat.CreatedAt,
		&chat.UpdatedAt,
		&chat.DeletedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get chat: %w", err)
	}
	return &chat, nil
}

// ListChats retrieves all chats of a user, newest first
func (r *PostgresChatRepository) ListChats(ctx context.Context, userID string) ([]models.Chat, error) {
	query := fmt.Sprintf(`
		SELECT id, ledger_id, user_id, title, latest_assistant_response_id, error,
		       created_at, updated_at, deleted_at
		FROM %s
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY updated_at DESC
	`, r.tables.Chats)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	var chats []models.Chat
	for rows.Next() {
		var chat models.Chat
		if err := rows.Scan(
			&chat.ID,
			&chat.LedgerID,
			&chat.UserID,
			&chat.Title,
			&chat.LatestAssistantResponseID,
			&chat.Error,
			&chat.CreatedAt,
			&chat.UpdatedAt,
			&chat.DeletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan chat: %w", err)
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

// UpdateLatestResponseID stores (or clears, with nil) the continuation token
func (r *PostgresChatRepository) UpdateLatestResponseID(ctx context.Context, chatID string, responseID *string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET latest_assistant_response_id = $2, error = NULL, updated_at = NOW()
		WHERE id = $1
	`, r.tables.Chats)

	tag, err := GetExecutor(ctx, r.pool).Exec(ctx, query, chatID, responseID)
	if err != nil {
		return fmt.Errorf("update latest response id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}
	return nil
}

// RecordError persists a turn-level failure on the chat
func (r *PostgresChatRepository) RecordError(ctx context.Context, chatID, message string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET error = $2, updated_at = NOW()
		WHERE id = $1
	`, r.tables.Chats)

	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, chatID, message); err != nil {
		return fmt.Errorf("record chat error: %w", err)
	}
	return nil
}
