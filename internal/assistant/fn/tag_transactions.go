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

// TagTransactions adds a tag to transactions selected by id or filter,
// skipping transactions that already carry it.
type TagTransactions struct {
	base
}

func (f *TagTransactions) Name() string { return "tag_transactions" }

func (f *TagTransactions) Description() string {
	return `Use this to add tags to one or more transactions.

Unlike categories, transactions can have multiple tags.
You can either use an existing tag or create a new one.

Example - tag specific transactions:
` + "```" + `
tag_transactions({
  transaction_ids: ["a1b2", "c3d4"],
  tag_name: "Tax Deductible"
})
` + "```" + `

Example - tag by search criteria:
` + "```" + `
tag_transactions({
  search: "uber",
  tag_name: "Business"
})
` + "```" + `

Example - tag only income (refunds) from Amazon:
` + "```" + `
tag_transactions({
  search: "amazon",
  types: ["income"],
  tag_name: "Refund"
})
` + "```" + `

IMPORTANT: Always confirm with the user before tagging large numbers of transactions.`
}

func (f *TagTransactions) ParamsSchema() *schema.Schema {
	return schema.Object(map[string]*schema.Schema{
		"transaction_ids": schema.Array("Specific transaction IDs to tag", schema.String("")),
		"search":          schema.String("Search term to find transactions to tag (by name/merchant)"),
		"types": schema.Array(
			"Filter by transaction type: 'income' (positive cash flow like refunds/returns), 'expense' (purchases), or 'transfer'",
			schema.StringEnum("", "income", "expense", "transfer")),
		"categories": schema.Array("Filter to transactions currently in these categories", schema.String("")),
		"accounts":   schema.Array("Filter by account names", schema.String("")),
		"merchants":  schema.Array("Filter by merchant names", schema.String("")),
		"start_date": schema.String("Filter transactions on or after this date (YYYY-MM-DD)"),
		"end_date":   schema.String("Filter transactions on or before this date (YYYY-MM-DD)"),
		"tag_name":   schema.String("Name of the tag to apply (existing or new)"),
		"create_if_missing": schema.Boolean(
			"If true, create the tag if it doesn't exist. Defaults to false."),
	}, "tag_name")
}

func (f *TagTransactions) Call(ctx context.Context, params map[string]any) (any, error) {
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
	f.report(fmt.Sprintf("Found %d transactions, preparing tag...", totalMatching))

	tagName := stringParam(params, "tag_name")
	tag, err := f.findOrCreateTag(ctx, tagName, boolParam(params, "create_if_missing"))
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return errorf("Tag '%s' not found. Set create_if_missing to true to create it.", tagName), nil
	}

	f.report(fmt.Sprintf("Tagging %d transactions with '%s'...", len(ids), tag.Name))
	tagged, err := f.deps.Transactions.AddTag(ctx, f.ledgerID, ids, tag.ID)
	if err != nil {
		return nil, fmt.Errorf("add tag: %w", err)
	}
	if tagged > 0 {
		f.dataChanged()
	}

	result := map[string]any{
		"success":        true,
		"tagged_count":   tagged,
		"already_tagged": int64(len(ids)) - tagged,
		"tag_name":       tag.Name,
		"tag_id":         tag.ID,
	}
	if totalMatching > maxBatchSize {
		result["warning"] = fmt.Sprintf("Processed %d of %d matching transactions. Run again to continue.",
			maxBatchSize, totalMatching)
		result["remaining"] = totalMatching - maxBatchSize
	}
	return result, nil
}

func (f *TagTransactions) findOrCreateTag(ctx context.Context, name string, createIfMissing bool) (*models.Tag, error) {
	tag, err := f.deps.Tags.FindByName(ctx, f.ledgerID, name)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find tag: %w", err)
	}
	if !createIfMissing {
		return nil, nil
	}

	tag = &models.Tag{
		ID:        uuid.NewString(),
		LedgerID:  f.ledgerID,
		Name:      name,
		Color:     randomColor(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := f.deps.Tags.CreateTag(ctx, tag); err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return tag, nil
}
