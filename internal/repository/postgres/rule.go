package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"ledgerly/internal/domain"
	"ledgerly/internal/domain/models"
	"ledgerly/internal/domain/repositories"
)

// PostgresRuleRepository implements the RuleRepository interface
type PostgresRuleRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewRuleRepository creates a new rule repository
func NewRuleRepository(config *RepositoryConfig) repositories.RuleRepository {
	return &PostgresRuleRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// CreateRule creates a new automation rule. Conditions and actions are
// validated before persisting so a bad rule never reaches the database.
func (r *PostgresRuleRepository) CreateRule(ctx context.Context, rule *models.Rule) error {
	for _, condition := range rule.Conditions {
		if _, err := conditionSQL(condition, func(any) string { return "$1" }); err != nil {
			return err
		}
	}

	conditions, err := json.Marshal(rule.Conditions)
	if err != nil {
		return fmt.Errorf("marshal rule conditions: %w", err)
	}
	actions, err := json.Marshal(rule.Actions)
	if err != nil {
		return fmt.Errorf("marshal rule actions: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, ledger_id, name, conditions, actions, effective_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`, r.tables.Rules)

	err = GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		rule.ID,
		rule.LedgerID,
		rule.Name,
		conditions,
		actions,
		rule.EffectiveDate,
	).Scan(&rule.CreatedAt, &rule.UpdatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("rule %q: %w", rule.Name, domain.ErrConflict)
		}
		return fmt.Errorf("create rule: %w", err)
	}
	return nil
}

// CountMatching reports how many existing transactions the conditions would
// affect
func (r *PostgresRuleRepository) CountMatching(ctx context.Context, ledgerID string, conditions []models.RuleCondition) (int, error) {
	clauses := []string{"a.ledger_id = $1"}
	args := []any{ledgerID}

	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	for _, condition := range conditions {
		clause, err := conditionSQL(condition, arg)
		if err != nil {
			return 0, err
		}
		clauses = append(clauses, clause)
	}

	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s t
		JOIN %s a ON a.id = t.account_id
		WHERE %s
	`, r.tables.Transactions, r.tables.Accounts, strings.Join(clauses, " AND "))

	var count int
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count matching transactions: %w", err)
	}
	return count, nil
}

// conditionSQL translates one rule condition into a SQL clause over the
// aliased transactions table t. The arg callback registers a bind parameter
// and returns its placeholder.
func conditionSQL(condition models.RuleCondition, arg func(any) string) (string, error) {
	column, err := conditionColumn(condition.Type)
	if err != nil {
		return "", err
	}

	switch condition.Operator {
	case "like":
		return fmt.Sprintf("%s ILIKE %s", column, arg("%"+condition.Value+"%")), nil
	case "is_null":
		return fmt.Sprintf("%s IS NULL", column), nil
	case "=", ">", ">=", "<", "<=":
		if condition.Type == "transaction_amount" {
			amount, err := strconv.ParseFloat(condition.Value, 64)
			if err != nil {
				return "", &domain.ValidationError{Message: fmt.Sprintf("invalid amount %q in rule condition", condition.Value)}
			}
			return fmt.Sprintf("ABS(%s) %s %s", column, condition.Operator, arg(amount)), nil
		}
		return fmt.Sprintf("LOWER(%s) %s LOWER(%s)", column, condition.Operator, arg(condition.Value)), nil
	default:
		return "", &domain.ValidationError{Message: fmt.Sprintf("unsupported rule operator %q", condition.Operator)}
	}
}

func conditionColumn(conditionType string) (string, error) {
	switch conditionType {
	case "transaction_name":
		return "t.name", nil
	case "transaction_amount":
		return "t.amount", nil
	case "transaction_merchant":
		return "t.merchant_name", nil
	case "transaction_category":
		return "t.category_id", nil
	default:
		return "", &domain.ValidationError{Message: fmt.Sprintf("unsupported rule condition type %q", conditionType)}
	}
}
