package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"ledgerly/internal/domain"
	"ledgerly/internal/domain/models"
	"ledgerly/internal/domain/repositories"
)

// PostgresTagRepository implements the TagRepository interface
type PostgresTagRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewTagRepository creates a new tag repository
func NewTagRepository(config *RepositoryConfig) repositories.TagRepository {
	return &PostgresTagRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// ListTags retrieves all tags of a ledger
func (r *PostgresTagRepository) ListTags(ctx context.Context, ledgerID string) ([]models.Tag, error) {
	query := fmt.Sprintf(`
		SELECT id, ledger_id, name, color, created_at, updated_at
		FROM %s
		WHERE ledger_id = $1
		ORDER BY name ASC
	`, r.tables.Tags)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.LedgerID, &tag.Name, &tag.Color, &tag.CreatedAt, &tag.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// FindByName retrieves a tag by name, matching case-insensitively
func (r *PostgresTagRepository) FindByName(ctx context.Context, ledgerID, name string) (*models.Tag, error) {
	query := fmt.Sprintf(`
		SELECT id, ledger_id, name, color, created_at, updated_at
		FROM %s
		WHERE ledger_id = $1 AND LOWER(name) = LOWER($2)
	`, r.tables.Tags)

	var tag models.Tag
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, ledgerID, name).Scan(
		&tag.ID, &tag.LedgerID, &tag.Name, &tag.Color, &tag.CreatedAt, &tag.UpdatedAt,
	)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("tag %q: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find tag by name: %w", err)
	}
	return &tag, nil
}

// CreateTag creates a new tag
func (r *PostgresTagRepository) CreateTag(ctx context.Context, tag *models.Tag) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, ledger_id, name, color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at, updated_at
	`, r.tables.Tags)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		tag.ID,
		tag.LedgerID,
		tag.Name,
		tag.Color,
	).Scan(&tag.CreatedAt, &tag.UpdatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("tag %q: %w", tag.Name, domain.ErrConflict)
		}
		return fmt.Errorf("create tag: %w", err)
	}
	return nil
}
