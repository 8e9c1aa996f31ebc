package fn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ledgerly/internal/assistant"
	"ledgerly/internal/domain"
	"ledgerly/internal/domain/models"
	"ledgerly/internal/schema"
)

// CreateRule creates an automation rule from conditions and actions,
// resolving action values (category and tag names) to ids up front.
type CreateRule struct {
	base
}

func (f *CreateRule) Name() string { return "create_rule" }

func (f *CreateRule) Description() string {
	return `Use this to create an automation rule that automatically processes transactions.

Rules have CONDITIONS (when to apply) and ACTIONS (what to do).

## Condition Types:
- transaction_name: Match transaction name/description (operators: like, =, is_null)
- transaction_amount: Match transaction amount (operators: >, >=, <, <=, =)
- transaction_merchant: Match merchant name (operators: =, is_null)
- transaction_category: Match category (operators: =, is_null)

## Action Types:
- set_transaction_category: Set the category (value = category name)
- set_transaction_tags: Add tags (value = tag name)
- set_transaction_name: Rename transaction (value = new name)

Example - categorize Starbucks transactions:
` + "```" + `
create_rule({
  name: "Starbucks to Food & Drink",
  conditions: [
    { type: "transaction_name", operator: "like", value: "starbucks" }
  ],
  actions: [
    { type: "set_transaction_category", value: "Food & Drink" }
  ]
})
` + "```" + `

IMPORTANT: After creating a rule, inform the user how many transactions it would affect.`
}

func (f *CreateRule) ParamsSchema() *schema.Schema {
	condition := schema.Object(map[string]*schema.Schema{
		"type": schema.StringEnum("Type of condition",
			"transaction_name", "transaction_amount", "transaction_merchant", "transaction_category"),
		"operator": schema.StringEnum("Comparison operator",
			"like", "=", ">", ">=", "<", "<=", "is_null"),
		"value": schema.String("Value to compare against"),
	}, "type", "operator")

	action := schema.Object(map[string]*schema.Schema{
		"type": schema.StringEnum("Type of action",
			"set_transaction_category", "set_transaction_tags", "set_transaction_name"),
		"value": schema.String("Value for the action (category name, tag name, or new name)"),
	}, "type", "value")

	conditions := schema.Array("Conditions that must match for the rule to apply", condition)
	conditions.MinItems = 1
	actions := schema.Array("Actions to perform when conditions match", action)
	actions.MinItems = 1

	return schema.Object(map[string]*schema.Schema{
		"name":       schema.String("Name of the rule (optional, will auto-generate if not provided)"),
		"conditions": conditions,
		"actions":    actions,
		"include_past_transactions": schema.Boolean(
			"If true, the rule will also match past/historical transactions. Defaults to true."),
	}, "conditions", "actions")
}

func (f *CreateRule) Call(ctx context.Context, params map[string]any) (any, error) {
	f.report("Setting up automation rule...")

	conditions := parseRuleItems(params, "conditions", func(item map[string]any) models.RuleCondition {
		return models.RuleCondition{
			Type:     stringParam(item, "type"),
			Operator: stringParam(item, "operator"),
			Value:    stringParam(item, "value"),
		}
	})
	if len(conditions) == 0 {
		return errorf("At least one condition is required"), nil
	}

	rawActions := parseRuleItems(params, "actions", func(item map[string]any) models.RuleAction {
		return models.RuleAction{
			Type:  stringParam(item, "type"),
			Value: stringParam(item, "value"),
		}
	})
	if len(rawActions) == 0 {
		return errorf("At least one action is required"), nil
	}

	actions := make([]models.RuleAction, len(rawActions))
	for i, action := range rawActions {
		resolved, errResult := f.resolveActionValue(ctx, action)
		if errResult != nil {
			return *errResult, nil
		}
		actions[i] = resolved
	}

	// Default to matching past transactions unless explicitly disabled.
	effectiveDate := time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)
	if includePast, ok := params["include_past_transactions"].(bool); ok && !includePast {
		effectiveDate = time.Now().Truncate(24 * time.Hour)
	}

	f.report("Creating rule and checking affected transactions...")

	rule := &models.Rule{
		ID:            uuid.NewString(),
		LedgerID:      f.ledgerID,
		Name:          stringParam(params, "name"),
		Conditions:    conditions,
		Actions:       actions,
		EffectiveDate: &effectiveDate,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := f.deps.Rules.CreateRule(ctx, rule); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return errorf("%s", err.Error()), nil
		}
		return nil, fmt.Errorf("create rule: %w", err)
	}
	f.dataChanged()

	affected, err := f.deps.Rules.CountMatching(ctx, f.ledgerID, conditions)
	if err != nil {
		return nil, fmt.Errorf("count matching transactions: %w", err)
	}

	ruleName := rule.Name
	if ruleName == "" && len(conditions) > 0 {
		ruleName = fmt.Sprintf("%s %s %s", conditions[0].Type, conditions[0].Operator, conditions[0].Value)
	}

	return map[string]any{
		"success":               true,
		"rule_id":               rule.ID,
		"rule_name":             ruleName,
		"affected_transactions": affected,
	}, nil
}

func parseRuleItems[T any](params map[string]any, key string, build func(map[string]any) T) []T {
	raw, ok := params[key].([]any)
	if !ok {
		return nil
	}
	items := make([]T, 0, len(raw))
	for _, entry := range raw {
		if m, ok := entry.(map[string]any); ok {
			items = append(items, build(m))
		}
	}
	return items
}

// resolveActionValue swaps category and tag names for their ids so the rule
// engine never depends on display names.
func (f *CreateRule) resolveActionValue(ctx context.Context, action models.RuleAction) (models.RuleAction, *assistant.ErrorResult) {
	switch action.Type {
	case "set_transaction_category":
		category, err := f.deps.Categories.FindByName(ctx, f.ledgerID, action.Value)
		if errors.Is(err, domain.ErrNotFound) {
			result := errorf("Category '%s' not found. Create it first using create_category.", action.Value)
			return action, &result
		}
		if err != nil {
			result := errorf("Failed to look up category '%s'", action.Value)
			return action, &result
		}
		action.Value = category.ID
	case "set_transaction_tags":
		tag, err := f.deps.Tags.FindByName(ctx, f.ledgerID, action.Value)
		if errors.Is(err, domain.ErrNotFound) {
			result := errorf("Tag '%s' not found. Create it first using create_tag.", action.Value)
			return action, &result
		}
		if err != nil {
			result := errorf("Failed to look up tag '%s'", action.Value)
			return action, &result
		}
		action.Value = tag.ID
	}
	return action, nil
}
