package models

import "time"

// Account classifications.
const (
	ClassificationAsset     = "asset"
	ClassificationLiability = "liability"
)

// Account is a financial account belonging to a ledger.
type Account struct {
	ID             string    `json:"id"`
	LedgerID       string    `json:"ledger_id"`
	Name           string    `json:"name"`
	AccountType    string    `json:"account_type"`
	Classification string    `json:"classification"`
	Balance        float64   `json:"balance"`
	Currency       string    `json:"currency"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Transaction is one entry on an account. Amount follows the source
// convention: negative amounts are income, positive amounts are expenses.
type Transaction struct {
	ID           string    `json:"id"`
	AccountID    string    `json:"account_id"`
	AccountName  string    `json:"account_name"`
	Name         string    `json:"name"`
	Amount       float64   `json:"amount"`
	Currency     string    `json:"currency"`
	Date         time.Time `json:"date"`
	Notes        string    `json:"notes,omitempty"`
	CategoryID   *string   `json:"category_id,omitempty"`
	CategoryName *string   `json:"category_name,omitempty"`
	MerchantName *string   `json:"merchant_name,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	IsTransfer   bool      `json:"is_transfer"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Classification reports whether the transaction is income or an expense.
func (t *Transaction) Classification() string {
	if t.Amount < 0 {
		return "income"
	}
	return "expense"
}

// Category classifications.
const (
	CategoryIncome  = "income"
	CategoryExpense = "expense"
)

// Category organizes transactions. Categories are mutually exclusive per
// transaction, unlike tags.
type Category struct {
	ID             string    `json:"id"`
	LedgerID       string    `json:"ledger_id"`
	Name           string    `json:"name"`
	Classification string    `json:"classification"`
	ParentID       *string   `json:"parent_id,omitempty"`
	LucideIcon     string    `json:"lucide_icon,omitempty"`
	Color          string    `json:"color,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Tag is a flexible label; a transaction can carry any number of tags.
type Tag struct {
	ID        string    `json:"id"`
	LedgerID  string    `json:"ledger_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RuleCondition is one predicate of an automation rule.
type RuleCondition struct {
	Type     string `json:"type"`
	Operator string `json:"operator"`
	Value    string `json:"value,omitempty"`
}

// RuleAction is one effect of an automation rule.
type RuleAction struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Rule automatically processes transactions matching its conditions.
type Rule struct {
	ID            string          `json:"id"`
	LedgerID      string          `json:"ledger_id"`
	Name          string          `json:"name"`
	Conditions    []RuleCondition `json:"conditions"`
	Actions       []RuleAction    `json:"actions"`
	EffectiveDate *time.Time      `json:"effective_date,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
