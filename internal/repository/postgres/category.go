package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"ledgerly/internal/domain"
	"ledgerly/internal/domain/models"
	"ledgerly/internal/domain/repositories"
)

// PostgresCategoryRepository implements the CategoryRepository interface
type PostgresCategoryRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(config *RepositoryConfig) repositories.CategoryRepository {
	return &PostgresCategoryRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const categoryColumns = "id, ledger_id, name, classification, parent_id, lucide_icon, color, created_at, updated_at"

func scanCategory(row interface{ Scan(...any) error }) (*models.Category, error) {
	var category models.Category
	err := row.Scan(
		&category.ID,
		&category.LedgerID,
		&category.Name,
		&category.Classification,
		&category.ParentID,
		&category.LucideIcon,
		&category.Color,
		&category.CreatedAt,
		&category.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// ListCategories retrieves all categories of a ledger
func (r *PostgresCategoryRepository) ListCategories(ctx context.Context, ledgerID string) ([]models.Category, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE ledger_id = $1
		ORDER BY name ASC
	`, categoryColumns, r.tables.Categories)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *category)
	}
	return categories, rows.Err()
}

// FindByName retrieves a category by name, matching case-insensitively
func (r *PostgresCategoryRepository) FindByName(ctx context.Context, ledgerID, name string) (*models.Category, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE ledger_id = $1 AND LOWER(name) = LOWER($2)
	`, categoryColumns, r.tables.Categories)

	category, err := scanCategory(GetExecutor(ctx, r.pool).QueryRow(ctx, query, ledgerID, name))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("category %q: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find category by name: %w", err)
	}
	return category, nil
}

// CreateCategory creates a new category
func (r *PostgresCategoryRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, ledger_id, name, classification, parent_id, lucide_icon, color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`, r.tables.Categories)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		category.ID,
		category.LedgerID,
		category.Name,
		category.Classification,
		category.ParentID,
		category.LucideIcon,
		category.Color,
	).Scan(&category.CreatedAt, &category.UpdatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("category %q: %w", category.Name, domain.ErrConflict)
		}
		if isPgForeignKeyError(err) {
			return fmt.Errorf("parent category: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// UpdateCategory updates an existing category
func (r *PostgresCategoryRepository) UpdateCategory(ctx context.Context, category *models.Category) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $3, classification = $4, parent_id = $5, lucide_icon = $6, color = $7, updated_at = NOW()
		WHERE id = $1 AND ledger_id = $2
		RETURNING updated_at
	`, r.tables.Categories)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		category.ID,
		category.LedgerID,
		category.Name,
		category.Classification,
		category.ParentID,
		category.LucideIcon,
		category.Color,
	).Scan(&category.UpdatedAt)

	if err != nil {
		if isPgNoRowsError(err) {
			return fmt.Errorf("category %s: %w", category.ID, domain.ErrNotFound)
		}
		if isPgDuplicateError(err) {
			return fmt.Errorf("category %q: %w", category.Name, domain.ErrConflict)
		}
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// DeleteCategory removes a category. Its transactions become uncategorized
// and child categories are re-parented to the deleted category's parent.
func (r *PostgresCategoryRepository) DeleteCategory(ctx context.Context, ledgerID, categoryID string) (int64, error) {
	executor := GetExecutor(ctx, r.pool)

	uncategorize := fmt.Sprintf(`
		UPDATE %s t
		SET category_id = NULL, updated_at = NOW()
		FROM %s a
		WHERE a.id = t.account_id AND a.ledger_id = $1 AND t.category_id = $2
	`, r.tables.Transactions, r.tables.Accounts)

	tag, err := executor.Exec(ctx, uncategorize, ledgerID, categoryID)
	if err != nil {
		return 0, fmt.Errorf("uncategorize transactions: %w", err)
	}
	uncategorized := tag.RowsAffected()

	reparent := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = (SELECT parent_id FROM %s WHERE id = $2), updated_at = NOW()
		WHERE ledger_id = $1 AND parent_id = $2
	`, r.tables.Categories, r.tables.Categories)

	if _, err := executor.Exec(ctx, reparent, ledgerID, categoryID); err != nil {
		return 0, fmt.Errorf("reparent child categories: %w", err)
	}

	remove := fmt.Sprintf(`DELETE FROM %s WHERE ledger_id = $1 AND id = $2`, r.tables.Categories)
	tag, err = executor.Exec(ctx, remove, ledgerID, categoryID)
	if err != nil {
		return 0, fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return 0, fmt.Errorf("category %s: %w", categoryID, domain.ErrNotFound)
	}
	return uncategorized, nil
}
