package fn

import (
	"context"
	"fmt"

	"ledgerly/internal/schema"
)

// GetAccounts lists all of a ledger's accounts with balances.
type GetAccounts struct {
	base
}

func (f *GetAccounts) Name() string { return "get_accounts" }

func (f *GetAccounts) Description() string {
	return `Use this to get a list of the user's accounts with their current balances.

This function is great for things like:
- Answering "what accounts do I have?"
- Looking up an account's balance or type
- Finding which account names to use in other function calls

Accounts are classified as either "asset" (checking, savings, investments)
or "liability" (credit cards, loans).`
}

func (f *GetAccounts) ParamsSchema() *schema.Schema {
	return schema.Object(nil)
}

func (f *GetAccounts) Call(ctx context.Context, params map[string]any) (any, error) {
	f.report("Looking up your accounts...")

	accounts, err := f.deps.Accounts.ListAccounts(ctx, f.ledgerID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	normalized := make([]map[string]any, len(accounts))
	for i, account := range accounts {
		normalized[i] = map[string]any{
			"name":              account.Name,
			"type":              account.AccountType,
			"classification":    account.Classification,
			"balance":           account.Balance,
			"currency":          account.Currency,
			"formatted_balance": formatMoney(account.Balance, account.Currency),
		}
	}

	return map[string]any{
		"accounts":      normalized,
		"total_results": len(accounts),
	}, nil
}
