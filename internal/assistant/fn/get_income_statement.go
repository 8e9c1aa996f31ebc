package fn

import (
	"context"
	"fmt"

	"ledgerly/internal/schema"
)

// GetIncomeStatement aggregates income and expenses over a period, broken
// down by category. This is the authoritative source for totals; the
// paginated search is not.
type GetIncomeStatement struct {
	base
}

func (f *GetIncomeStatement) Name() string { return "get_income_statement" }

func (f *GetIncomeStatement) Description() string {
	return `Use this to get accurate income and expense totals over a time period,
broken down by category.

This function is great for things like:
- Answering "how much did I spend last month?"
- Comparing income against expenses
- Finding the biggest spending categories

ALWAYS use this function for totals and aggregates instead of summing
get_transactions results, which are paginated.

Example:
` + "```" + `
get_income_statement({
  start_date: "2026-08-01",
  end_date: "2026-08-31"
})
` + "```"
}

func (f *GetIncomeStatement) ParamsSchema() *schema.Schema {
	return schema.Object(map[string]*schema.Schema{
		"start_date": schema.String("Start date in YYYY-MM-DD format"),
		"end_date":   schema.String("End date in YYYY-MM-DD format"),
	}, "start_date", "end_date")
}

func (f *GetIncomeStatement) Call(ctx context.Context, params map[string]any) (any, error) {
	f.report("Analyzing income & expenses...")

	start, ok := dateParam(params, "start_date")
	if !ok || start == nil {
		return errorf("Invalid or missing start_date, expected YYYY-MM-DD"), nil
	}
	end, ok := dateParam(params, "end_date")
	if !ok || end == nil {
		return errorf("Invalid or missing end_date, expected YYYY-MM-DD"), nil
	}
	if end.Before(*start) {
		return errorf("end_date must not be before start_date"), nil
	}

	statement, err := f.deps.Transactions.IncomeStatement(ctx, f.ledgerID, *start, *end)
	if err != nil {
		return nil, fmt.Errorf("income statement: %w", err)
	}

	byCategory := make([]map[string]any, len(statement.ByCategory))
	for i, line := range statement.ByCategory {
		byCategory[i] = map[string]any{
			"category":        line.CategoryName,
			"classification":  line.Classification,
			"total":           line.Total,
			"formatted_total": formatMoney(line.Total, statement.Currency),
			"count":           line.Count,
		}
	}

	return map[string]any{
		"start_date":     statement.StartDate.Format("2006-01-02"),
		"end_date":       statement.EndDate.Format("2006-01-02"),
		"total_income":   formatMoney(statement.TotalIncome, statement.Currency),
		"total_expenses": formatMoney(statement.TotalExpenses, statement.Currency),
		"net":            formatMoney(statement.TotalIncome-statement.TotalExpenses, statement.Currency),
		"currency":       statement.Currency,
		"by_category":    byCategory,
	}, nil
}
