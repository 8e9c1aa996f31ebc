package postgres

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"ledgerly/internal/domain"
	"ledgerly/internal/domain/models"
	"ledgerly/internal/domain/repositories"
)

// PostgresTransactionRepository implements the TransactionRepository interface
type PostgresTransactionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(config *RepositoryConfig) repositories.TransactionRepository {
	return &PostgresTransactionRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// buildFilter translates a TransactionFilter into a WHERE clause over the
// aliased tables t (transactions), a (accounts) and c (categories). The
// ledger constraint is always the first condition.
func (r *PostgresTransactionRepository) buildFilter(ledgerID string, filter repositories.TransactionFilter) (string, []any) {
	conditions := []string{"a.ledger_id = $1"}
	args := []any{ledgerID}

	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	lowered := func(names []string) []string {
		out := make([]string, len(names))
		for i, name := range names {
			out[i] = strings.ToLower(name)
		}
		return out
	}

	if len(filter.IDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("t.id = ANY(%s)", arg(filter.IDs)))
	}
	if filter.Search != "" {
		pattern := arg("%" + filter.Search + "%")
		conditions = append(conditions, fmt.Sprintf("(t.name ILIKE %s OR t.merchant_name ILIKE %s OR t.notes ILIKE %s)", pattern, pattern, pattern))
	}
	if len(filter.AccountNames) > 0 {
		conditions = append(conditions, fmt.Sprintf("LOWER(a.name) = ANY(%s)", arg(lowered(filter.AccountNames))))
	}
	if len(filter.CategoryNames) > 0 {
		conditions = append(conditions, fmt.Sprintf("LOWER(c.name) = ANY(%s)", arg(lowered(filter.CategoryNames))))
	}
	if len(filter.MerchantNames) > 0 {
		conditions = append(conditions, fmt.Sprintf("LOWER(t.merchant_name) = ANY(%s)", arg(lowered(filter.MerchantNames))))
	}
	if len(filter.TagNames) > 0 {
		conditions = append(conditions, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM %s tt
			JOIN %s tg ON tg.id = tt.tag_id
			WHERE tt.transaction_id = t.id AND LOWER(tg.name) = ANY(%s)
		)`, r.tables.TransactionTags, r.tables.Tags, arg(lowered(filter.TagNames))))
	}
	if len(filter.Types) > 0 {
		var typeConditions []string
		for _, t := range filter.Types {
			switch t {
			case "income":
				typeConditions = append(typeConditions, "(t.amount < 0 AND NOT t.is_transfer)")
			case "expense":
				typeConditions = append(typeConditions, "(t.amount > 0 AND NOT t.is_transfer)")
			case "transfer":
				typeConditions = append(typeConditions, "t.is_transfer")
			}
		}
		if len(typeConditions) > 0 {
			conditions = append(conditions, "("+strings.Join(typeConditions, " OR ")+")")
		}
	}
	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("t.date >= %s", arg(*filter.StartDate)))
	}
	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("t.date <= %s", arg(*filter.EndDate)))
	}
	if filter.Amount != nil {
		// Amounts are signed internally, users think in magnitudes.
		placeholder := arg(math.Abs(*filter.Amount))
		switch filter.AmountOperator {
		case "less":
			conditions = append(conditions, fmt.Sprintf("ABS(t.amount) < %s", placeholder))
		case "greater":
			conditions = append(conditions, fmt.Sprintf("ABS(t.amount) > %s", placeholder))
		default:
			conditions = append(conditions, fmt.Sprintf("ABS(t.amount) = %s", placeholder))
		}
	}

	return strings.Join(conditions, " AND "), args
}

// fromClause joins transactions to their account and optional category.
func (r *PostgresTransactionRepository) fromClause() string {
	return fmt.Sprintf(`
		FROM %s t
		JOIN %s a ON a.id = t.account_id
		LEFT JOIN %s c ON c.id = t.category_id
	`, r.tables.Transactions, r.tables.Accounts, r.tables.Categories)
}

// Search retrieves one page of matching transactions plus totals over all
// matches
func (r *PostgresTransactionRepository) Search(ctx context.Context, ledgerID string, filter repositories.TransactionFilter, page, pageSize int, ascending bool) (*repositories.TransactionPage, error) {
	where, args := r.buildFilter(ledgerID, filter)
	executor := GetExecutor(ctx, r.pool)

	totalsQuery := fmt.Sprintf(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN t.amount < 0 AND NOT t.is_transfer THEN -t.amount ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN t.amount > 0 AND NOT t.is_transfer THEN t.amount ELSE 0 END), 0),
		       COALESCE(MIN(t.currency), 'USD')
		%s
		WHERE %s
	`, r.fromClause(), where)

	result := &repositories.TransactionPage{Page: page, PageSize: pageSize}
	err := executor.QueryRow(ctx, totalsQuery, args...).Scan(
		&result.TotalResults,
		&result.TotalIncome,
		&result.TotalExpenses,
		&result.Currency,
	)
	if err != nil {
		return nil, fmt.Errorf("transaction totals: %w", err)
	}
	result.TotalPages = (result.TotalResults + pageSize - 1) / pageSize

	direction := "DESC"
	if ascending {
		direction = "ASC"
	}

	pageQuery := fmt.Sprintf(`
		SELECT t.id, t.account_id, a.name, t.name, t.amount, t.currency, t.date,
		       COALESCE(t.notes, ''), t.category_id, c.name, t.merchant_name, t.is_transfer,
		       t.created_at, t.updated_at,
		       COALESCE((
		           SELECT ARRAY_AGG(tg.name ORDER BY tg.name)
		           FROM %s tt
		           JOIN %s tg ON tg.id = tt.tag_id
		           WHERE tt.transaction_id = t.id
		       ), '{}')
		%s
		WHERE %s
		ORDER BY t.date %s, t.created_at %s
		LIMIT %d OFFSET %d
	`, r.tables.TransactionTags, r.tables.Tags, r.fromClause(), where, direction, direction, pageSize, (page-1)*pageSize)

	rows, err := executor.Query(ctx, pageQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("search transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var txn models.Transaction
		if err := rows.Scan(
			&txn.ID,
			&txn.AccountID,
			&txn.AccountName,
			&txn.Name,
			&txn.Amount,
			&txn.Currency,
			&txn.Date,
			&txn.Notes,
			&txn.CategoryID,
			&txn.CategoryName,
			&txn.MerchantName,
			&txn.IsTransfer,
			&txn.CreatedAt,
			&txn.UpdatedAt,
			&txn.Tags,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		result.Transactions = append(result.Transactions, txn)
	}
	return result, rows.Err()
}

// FindIDs returns ids of matching transactions, newest first, capped at
// limit. The total reflects all matches, not the cap.
func (r *PostgresTransactionRepository) FindIDs(ctx context.Context, ledgerID string, filter repositories.TransactionFilter, limit int) ([]string, int, error) {
	where, args := r.buildFilter(ledgerID, filter)

	query := fmt.Sprintf(`
		SELECT t.id, COUNT(*) OVER ()
		%s
		WHERE %s
		ORDER BY t.date DESC, t.created_at DESC
		LIMIT %d
	`, r.fromClause(), where, limit)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("find transaction ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	var total int
	for rows.Next() {
		var id string
		if err := rows.Scan(&id, &total); err != nil {
			return nil, 0, fmt.Errorf("scan transaction id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, total, rows.Err()
}

// SetCategory assigns a category to the given transactions
func (r *PostgresTransactionRepository) SetCategory(ctx context.Context, ledgerID string, ids []string, categoryID string) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s t
		SET category_id = $3, updated_at = NOW()
		FROM %s a
		WHERE a.id = t.account_id AND a.ledger_id = $1 AND t.id = ANY($2)
	`, r.tables.Transactions, r.tables.Accounts)

	tag, err := GetExecutor(ctx, r.pool).Exec(ctx, query, ledgerID, ids, categoryID)
	if err != nil {
		if isPgForeignKeyError(err) {
			return 0, fmt.Errorf("category %s: %w", categoryID, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("set transaction category: %w", err)
	}
	return tag.RowsAffected(), nil
}

// AddTag tags the given transactions, skipping ones already tagged
func (r *PostgresTransactionRepository) AddTag(ctx context.Context, ledgerID string, ids []string, tagID string) (int64, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (transaction_id, tag_id)
		SELECT t.id, $3
		FROM %s t
		JOIN %s a ON a.id = t.account_id
		WHERE a.ledger_id = $1 AND t.id = ANY($2)
		ON CONFLICT (transaction_id, tag_id) DO NOTHING
	`, r.tables.TransactionTags, r.tables.Transactions, r.tables.Accounts)

	tag, err := GetExecutor(ctx, r.pool).Exec(ctx, query, ledgerID, ids, tagID)
	if err != nil {
		return 0, fmt.Errorf("tag transactions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// UpdateDetails sets name and/or notes on the given transactions. Nil
// pointers leave the column untouched.
func (r *PostgresTransactionRepository) UpdateDetails(ctx context.Context, ledgerID string, ids []string, name, notes *string) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s t
		SET name = COALESCE($3, t.name),
		    notes = COALESCE($4, t.notes),
		    updated_at = NOW()
		FROM %s a
		WHERE a.id = t.account_id AND a.ledger_id = $1 AND t.id = ANY($2)
	`, r.tables.Transactions, r.tables.Accounts)

	tag, err := GetExecutor(ctx, r.pool).Exec(ctx, query, ledgerID, ids, name, notes)
	if err != nil {
		return 0, fmt.Errorf("update transaction details: %w", err)
	}
	return tag.RowsAffected(), nil
}

// IncomeStatement aggregates income and expenses per category over a
// period. Transfers are excluded.
func (r *PostgresTransactionRepository) IncomeStatement(ctx context.Context, ledgerID string, start, end time.Time) (*repositories.IncomeStatement, error) {
	executor := GetExecutor(ctx, r.pool)

	statement := &repositories.IncomeStatement{StartDate: start, EndDate: end}

	totalsQuery := fmt.Sprintf(`
		SELECT COALESCE(SUM(CASE WHEN t.amount < 0 THEN -t.amount ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN t.amount > 0 THEN t.amount ELSE 0 END), 0),
		       COALESCE(MIN(t.currency), 'USD')
		FROM %s t
		JOIN %s a ON a.id = t.account_id
		WHERE a.ledger_id = $1 AND NOT t.is_transfer AND t.date >= $2 AND t.date <= $3
	`, r.tables.Transactions, r.tables.Accounts)

	err := executor.QueryRow(ctx, totalsQuery, ledgerID, start, end).Scan(
		&statement.TotalIncome,
		&statement.TotalExpenses,
		&statement.Currency,
	)
	if err != nil {
		return nil, fmt.Errorf("income statement totals: %w", err)
	}

	byCategoryQuery := fmt.Sprintf(`
		SELECT COALESCE(c.name, 'Uncategorized'),
		       CASE WHEN t.amount < 0 THEN 'income' ELSE 'expense' END,
		       SUM(ABS(t.amount)),
		       COUNT(*)
		FROM %s t
		JOIN %s a ON a.id = t.account_id
		LEFT JOIN %s c ON c.id = t.category_id
		WHERE a.ledger_id = $1 AND NOT t.is_transfer AND t.date >= $2 AND t.date <= $3
		GROUP BY 1, 2
		ORDER BY 3 DESC
	`, r.tables.Transactions, r.tables.Accounts, r.tables.Categories)

	rows, err := executor.Query(ctx, byCategoryQuery, ledgerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("income statement by category: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line repositories.CategoryTotal
		if err := rows.Scan(&line.CategoryName, &line.Classification, &line.Total, &line.Count); err != nil {
			return nil, fmt.Errorf("scan income statement line: %w", err)
		}
		statement.ByCategory = append(statement.ByCategory, line)
	}
	return statement, rows.Err()
}
