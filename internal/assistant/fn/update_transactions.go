package fn

import (
	"context"
	"fmt"
	"strings"

	"ledgerly/internal/schema"
)

// UpdateTransactions edits the name and/or notes of transactions selected
// by id or search.
type UpdateTransactions struct {
	base
}

func (f *UpdateTransactions) Name() string { return "update_transactions" }

func (f *UpdateTransactions) Description() string {
	return `Use this to update the name or notes of one or more transactions.

You can either:
1. Update specific transactions by ID
2. Update transactions matching a search term

Example - rename specific transactions:
` + "```" + `
update_transactions({
  transaction_ids: ["a1b2", "c3d4"],
  name: "Netflix Subscription"
})
` + "```" + `

Example - add notes to transactions by search:
` + "```" + `
update_transactions({
  search: "AMZN",
  notes: "Amazon purchases - review for business expenses"
})
` + "```" + `

IMPORTANT: Always confirm with the user before updating large numbers of transactions.`
}

func (f *UpdateTransactions) ParamsSchema() *schema.Schema {
	return schema.Object(map[string]*schema.Schema{
		"transaction_ids": schema.Array("Specific transaction IDs to update", schema.String("")),
		"search":          schema.String("Search term to find transactions to update (by name/merchant)"),
		"name":            schema.String("New name/description for the transactions"),
		"notes":           schema.String("Notes to add to the transactions"),
	})
}

func (f *UpdateTransactions) Call(ctx context.Context, params map[string]any) (any, error) {
	name := stringParam(params, "name")
	notes := stringParam(params, "notes")
	if name == "" && notes == "" {
		return errorf("Must provide at least one field to update (name or notes)"), nil
	}
	if len(stringSliceParam(params, "transaction_ids")) == 0 && stringParam(params, "search") == "" {
		return errorf("Must provide transaction_ids or search term to find transactions"), nil
	}

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

	var namePtr, notesPtr *string
	applied := []string{}
	if name != "" {
		namePtr = &name
		applied = append(applied, "name")
	}
	if notes != "" {
		notesPtr = &notes
		applied = append(applied, "notes")
	}

	f.report(fmt.Sprintf("Updating %s for %d transactions...", strings.Join(applied, " and "), len(ids)))
	updated, err := f.deps.Transactions.UpdateDetails(ctx, f.ledgerID, ids, namePtr, notesPtr)
	if err != nil {
		return nil, fmt.Errorf("update transactions: %w", err)
	}
	f.dataChanged()

	result := map[string]any{
		"success":         true,
		"updated_count":   updated,
		"updates_applied": applied,
	}
	if totalMatching > maxBatchSize {
		result["warning"] = fmt.Sprintf("Processed %d of %d matching transactions. Run again to continue.",
			maxBatchSize, totalMatching)
		result["remaining"] = totalMatching - maxBatchSize
	}
	return result, nil
}
