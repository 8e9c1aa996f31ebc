package fn

import (
	"context"
	"fmt"
	"math"

	"ledgerly/internal/schema"
)

const defaultPageSize = 50

// GetTransactions searches a ledger's transactions with optional filters
// and returns one page of results plus totals over all matches.
type GetTransactions struct {
	base
}

func (f *GetTransactions) Name() string { return "get_transactions" }

func (f *GetTransactions) Description() string {
	return fmt.Sprintf(`Use this to search user's transactions by using various optional filters.

This function is great for things like:
- Finding specific transactions by name, merchant, or category
- Getting detailed transaction lists for analysis
- Finding specific payments or charges

IMPORTANT: For totals and aggregates, use get_income_statement instead!
This function returns paginated results (%d per page). If you need
accurate totals over a time period, ALWAYS use get_income_statement, not this function.

The response includes:
- `+"`transactions`"+`: Array of transactions for the current page only
- `+"`total_results`"+`: Count of ALL matching transactions (not just this page)
- `+"`total_income`"+`: Pre-calculated total income for ALL matching transactions
- `+"`total_expenses`"+`: Pre-calculated total expenses for ALL matching transactions
- `+"`total_pages`"+`: Number of pages available

CRITICAL: Use the provided `+"`total_income`"+` and `+"`total_expenses`"+` values!
DO NOT manually sum the transactions array - it only contains one page of data.

Example:
`+"```"+`
get_transactions({
  page: 1,
  order: "desc",
  start_date: "2026-08-01",
  end_date: "2026-08-31"
})
`+"```", defaultPageSize)
}

func (f *GetTransactions) ParamsSchema() *schema.Schema {
	return schema.Object(map[string]*schema.Schema{
		"page":  schema.Integer("Page number"),
		"order": schema.StringEnum("Order of the transactions by date", "asc", "desc"),
		"search": schema.String("Search for transactions by name"),
		"amount": schema.String("Amount for transactions (must be used with amount_operator)"),
		"amount_operator": schema.StringEnum("Operator for amount (must be used with amount)",
			"equal", "less", "greater"),
		"start_date": schema.String("Start date for transactions in YYYY-MM-DD format"),
		"end_date":   schema.String("End date for transactions in YYYY-MM-DD format"),
		"accounts":   nameListSchema("Filter transactions by account name"),
		"categories": nameListSchema("Filter transactions by category name"),
		"merchants":  nameListSchema("Filter transactions by merchant name"),
		"tags":       nameListSchema("Filter transactions by tag name"),
	}, "order", "page")
}

func nameListSchema(description string) *schema.Schema {
	s := schema.Array(description, schema.String(""))
	s.MinItems = 1
	s.UniqueItems = true
	return s
}

func (f *GetTransactions) Call(ctx context.Context, params map[string]any) (any, error) {
	f.report("Searching transactions...")

	filter, errResult := transactionFilterFromParams(params)
	if errResult != nil {
		return *errResult, nil
	}

	page := intParam(params, "page", 1)
	if page < 1 {
		page = 1
	}
	ascending := stringParam(params, "order") == "asc"

	result, err := f.deps.Transactions.Search(ctx, f.ledgerID, *filter, page, defaultPageSize, ascending)
	if err != nil {
		return nil, fmt.Errorf("search transactions: %w", err)
	}

	transactions := make([]map[string]any, len(result.Transactions))
	for i, txn := range result.Transactions {
		transactions[i] = map[string]any{
			"id":               txn.ID,
			"name":             txn.Name,
			"date":             txn.Date.Format("2006-01-02"),
			"amount":           math.Abs(txn.Amount),
			"currency":         txn.Currency,
			"formatted_amount": formatMoney(math.Abs(txn.Amount), txn.Currency),
			"classification":   txn.Classification(),
			"account":          txn.AccountName,
			"category":         txn.CategoryName,
			"merchant":         txn.MerchantName,
			"tags":             txn.Tags,
			"notes":            txn.Notes,
			"is_transfer":      txn.IsTransfer,
		}
	}

	return map[string]any{
		"transactions":   transactions,
		"total_results":  result.TotalResults,
		"page":           result.Page,
		"page_size":      result.PageSize,
		"total_pages":    result.TotalPages,
		"total_income":   formatMoney(result.TotalIncome, result.Currency),
		"total_expenses": formatMoney(result.TotalExpenses, result.Currency),
	}, nil
}
