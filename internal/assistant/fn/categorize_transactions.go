package fn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ledgerly/internal/domain"
	"ledgerly/internal/domain/models"
	"ledgerly/internal/schema"
)

// CategorizeTransactions assigns a category to transactions selected by id
// or search, optionally creating the category on the fly.
type CategorizeTransactions struct {
	base
}

func (f *CategorizeTransactions) Name() string { return "categorize_transactions" }

func (f *CategorizeTransactions) Description() string {
	return `Use this to categorize one or more transactions.

You can either:
1. Assign an existing category by name
2. Create a new category on the fly by providing a name that doesn't exist

Example - categorize specific transactions:
` + "```" + `
categorize_transactions({
  transaction_ids: ["a1b2", "c3d4"],
  category_name: "Food & Drink"
})
` + "```" + `

Example - categorize by search criteria:
` + "```" + `
categorize_transactions({
  search: "starbucks",
  category_name: "Food & Drink"
})
` + "```" + `

IMPORTANT: Always confirm with the user before categorizing large numbers of transactions.`
}

func (f *CategorizeTransactions) ParamsSchema() *schema.Schema {
	return schema.Object(map[string]*schema.Schema{
		"transaction_ids": schema.Array("Specific transaction IDs to categorize", schema.String("")),
		"search":          schema.String("Search term to find transactions to categorize (by name/merchant)"),
		"category_name":   schema.String("Name of the category to assign (existing or new)"),
		"create_if_missing": schema.Boolean(
			"If true, create the category if it doesn't exist. Defaults to false."),
	}, "category_name")
}

func (f *CategorizeTransactions) Call(ctx context.Context, params map[string]any) (any, error) {
	f.report("Finding matching transactions...")

	filter, errResult := transactionFilterFromParams(params)
	if errResult != nil {
		return *errResult, nil
	}

	ids, totalMatching, err := f.deps.Transactions.FindIDs(ctx, f.ledgerID, *filter, maxBatchSize)
	if err != nil {
		return nil, fmt.Errorf("find transactions: %w", err)
	}
	if totalMatching == 0 {
		return errorf("No transactions found matching criteria"), nil
	}
	f.report(fmt.Sprintf("Found %d transactions, applying category...", totalMatching))

	categoryName := stringParam(params, "category_name")
	category, err := f.findOrCreateCategory(ctx, categoryName, boolParam(params, "create_if_missing"))
	if err != nil {
		return nil, err
	}
	if category == nil {
		return errorf("Category '%s' not found. Set create_if_missing to true to create it.", categoryName), nil
	}

	f.report(fmt.Sprintf("Categorizing %d transactions as '%s'...", len(ids), category.Name))
	updated, err := f.deps.Transactions.SetCategory(ctx, f.ledgerID, ids, category.ID)
	if err != nil {
		return nil, fmt.Errorf("set category: %w", err)
	}
	f.dataChanged()

	result := map[string]any{
		"success":       true,
		"updated_count": updated,
		"category_name": category.Name,
		"category_id":   category.ID,
	}
	if totalMatching > maxBatchSize {
		result["warning"] = fmt.Sprintf("Processed %d of %d matching transactions. Run again to continue.",
			maxBatchSize, totalMatching)
		result["remaining"] = totalMatching - maxBatchSize
	}
	return result, nil
}

func (f *CategorizeTransactions) findOrCreateCategory(ctx context.Context, name string, createIfMissing bool) (*models.Category, error) {
	category, err := f.deps.Categories.FindByName(ctx, f.ledgerID, name)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find category: %w", err)
	}
	if !createIfMissing {
		return nil, nil
	}

	category = &models.Category{
		ID:             uuid.NewString(),
		LedgerID:       f.ledgerID,
		Name:           name,
		Classification: models.CategoryExpense,
		Color:          randomColor(),
		LucideIcon:     "tag",
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := f.deps.Categories.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}
