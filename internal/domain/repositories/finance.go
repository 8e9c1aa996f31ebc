package repositories

import (
	"context"
	"time"

	"ledgerly/internal/domain/models"
)

// TransactionFilter narrows a transaction search. Zero values mean "no
// constraint". All name filters match case-insensitively.
type TransactionFilter struct {
	IDs            []string
	Search         string
	AccountNames   []string
	CategoryNames  []string
	MerchantNames  []string
	TagNames       []string
	Types          []string // "income", "expense", "transfer"
	StartDate      *time.Time
	EndDate        *time.Time
	Amount         *float64
	AmountOperator string // "equal", "less", "greater"
}

// TransactionPage is one page of search results with pre-computed totals
// over ALL matching rows, not just the page.
type TransactionPage struct {
	Transactions  []models.Transaction
	TotalResults  int
	Page          int
	PageSize      int
	TotalPages    int
	TotalIncome   float64
	TotalExpenses float64
	Currency      string
}

// CategoryTotal is one line of an income statement.
type CategoryTotal struct {
	CategoryName   string
	Classification string
	Total          float64
	Count          int
}

// IncomeStatement aggregates income and expenses over a period.
type IncomeStatement struct {
	StartDate     time.Time
	EndDate       time.Time
	TotalIncome   float64
	TotalExpenses float64
	Currency      string
	ByCategory    []CategoryTotal
}

// AccountRepository reads account data for a ledger.
type AccountRepository interface {
	ListAccounts(ctx context.Context, ledgerID string) ([]models.Account, error)
}

// TransactionRepository searches and mutates transactions for a ledger.
type TransactionRepository interface {
	Search(ctx context.Context, ledgerID string, filter TransactionFilter, page, pageSize int, ascending bool) (*TransactionPage, error)

	// FindIDs returns ids of transactions matching the filter, capped at
	// limit, along with the total match count.
	FindIDs(ctx context.Context, ledgerID string, filter TransactionFilter, limit int) (ids []string, total int, err error)

	// SetCategory assigns a category to the given transactions and reports
	// how many rows changed.
	SetCategory(ctx context.Context, ledgerID string, ids []string, categoryID string) (int64, error)

	// AddTag tags the given transactions, skipping ones already tagged,
	// and reports how many taggings were created.
	AddTag(ctx context.Context, ledgerID string, ids []string, tagID string) (int64, error)

	// UpdateDetails sets name and/or notes on the given transactions.
	UpdateDetails(ctx context.Context, ledgerID string, ids []string, name, notes *string) (int64, error)

	IncomeStatement(ctx context.Context, ledgerID string, start, end time.Time) (*IncomeStatement, error)
}

// CategoryRepository manages transaction categories.
type CategoryRepository interface {
	ListCategories(ctx context.Context, ledgerID string) ([]models.Category, error)

	// FindByName matches case-insensitively; returns ErrNotFound when the
	// category does not exist.
	FindByName(ctx context.Context, ledgerID, name string) (*models.Category, error)

	CreateCategory(ctx context.Context, category *models.Category) error
	UpdateCategory(ctx context.Context, category *models.Category) error

	// DeleteCategory removes the category and uncategorizes its
	// transactions, reporting how many were uncategorized.
	DeleteCategory(ctx context.Context, ledgerID, categoryID string) (int64, error)
}

// TagRepository manages transaction tags.
type TagRepository interface {
	ListTags(ctx context.Context, ledgerID string) ([]models.Tag, error)
	FindByName(ctx context.Context, ledgerID, name string) (*models.Tag, error)
	CreateTag(ctx context.Context, tag *models.Tag) error
}

// RuleRepository manages automation rules.
type RuleRepository interface {
	CreateRule(ctx context.Context, rule *models.Rule) error

	// CountMatching reports how many existing transactions a rule's
	// conditions would affect, for user-facing rule summaries.
	CountMatching(ctx context.Context, ledgerID string, conditions []models.RuleCondition) (int, error)
}
