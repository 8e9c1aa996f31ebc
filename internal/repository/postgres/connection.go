package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ledgerly/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Chats           string
	Messages        string
	Accounts        string
	Transactions    string
	Categories      string
	Tags            string
	TransactionTags string
	Rules           string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Chats:           fmt.Sprintf("%schats", prefix),
		Messages:        fmt.Sprintf("%smessages", prefix),
		Accounts:        fmt.Sprintf("%saccounts", prefix),
		Transactions:    fmt.Sprintf("%stransactions", prefix),
		Categories:      fmt.Sprintf("%scategories", prefix),
		Tags:            fmt.Sprintf("%stags", prefix),
		TransactionTags: fmt.Sprintf("%stransaction_tags", prefix),
		Rules:           fmt.Sprintf("%srules", prefix),
	}
}

// CreateConnectionPool creates a new pgx connection pool.
//
// PgBouncer in transaction pooling mode (port 6543) does not support
// prepared statements, so when that port is detected and the user did not
// explicitly configure a query exec mode, QueryExecModeCacheDescribe is
// used: it keeps the extended protocol (needed for JSONB encoding of
// map values) while only caching statement descriptions.
//
// Dynamic table prefixes interpolated with fmt.Sprintf are safe here: the
// SQL string is built before being sent, so each prefix gets its own
// statements.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the transaction from the context when one exists,
// falling back to the pool. Repositories automatically participate in
// surrounding transactions this way.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
