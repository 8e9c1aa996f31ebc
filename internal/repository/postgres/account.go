package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"ledgerly/internal/domain/models"
	"ledgerly/internal/domain/repositories"
)

// PostgresAccountRepository implements the AccountRepository interface
type PostgresAccountRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(config *RepositoryConfig) repositories.AccountRepository {
	return &PostgresAccountRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// ListAccounts retrieves all accounts of a ledger
func (r *PostgresAccountRepository) ListAccounts(ctx context.Context, ledgerID string) ([]models.Account, error) {
	query := fmt.Sprintf(`
		SELECT id, ledger_id, name, account_type, classification, balance, currency,
		       created_at, updated_at
		FROM %s
		WHERE ledger_id = $1
		ORDER BY name ASC
	`, r.tables.Accounts)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(
			&account.ID,
			&account.LedgerID,
			&account.Name,
			&account.AccountType,
			&account.Classification,
			&account.Balance,
			&account.Currency,
			&account.CreatedAt,
			&account.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}
