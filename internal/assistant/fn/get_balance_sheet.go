package fn

import (
	"context"
	"fmt"

	"ledgerly/internal/domain/models"
	"ledgerly/internal/schema"
)

// GetBalanceSheet summarizes the ledger's net worth: assets, liabilities,
// and per-account balances grouped by classification.
type GetBalanceSheet struct {
	base
}

func (f *GetBalanceSheet) Name() string { return "get_balance_sheet" }

func (f *GetBalanceSheet) Description() string {
	return `Use this to get the user's balance sheet: total assets, total
liabilities, and net worth, broken down by account.

This function is great for things like:
- Answering "what is my net worth?"
- Comparing assets against liabilities
- Summarizing the user's overall financial position`
}

func (f *GetBalanceSheet) ParamsSchema() *schema.Schema {
	return schema.Object(nil)
}

func (f *GetBalanceSheet) Call(ctx context.Context, params map[string]any) (any, error) {
	f.report("Calculating net worth...")

	accounts, err := f.deps.Accounts.ListAccounts(ctx, f.ledgerID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	var totalAssets, totalLiabilities float64
	currency := ""
	assets := []map[string]any{}
	liabilities := []map[string]any{}

	for _, account := range accounts {
		if currency == "" {
			currency = account.Currency
		}
		entry := map[string]any{
			"name":              account.Name,
			"type":              account.AccountType,
			"balance":           account.Balance,
			"formatted_balance": formatMoney(account.Balance, account.Currency),
		}
		if account.Classification == models.ClassificationLiability {
			totalLiabilities += account.Balance
			liabilities = append(liabilities, entry)
		} else {
			totalAssets += account.Balance
			assets = append(assets, entry)
		}
	}

	netWorth := totalAssets - totalLiabilities

	return map[string]any{
		"total_assets":      formatMoney(totalAssets, currency),
		"total_liabilities": formatMoney(totalLiabilities, currency),
		"net_worth":         formatMoney(netWorth, currency),
		"currency":          currency,
		"assets":            assets,
		"liabilities":       liabilities,
	}, nil
}
