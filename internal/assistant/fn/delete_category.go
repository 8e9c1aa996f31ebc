package fn

import (
	"context"
	"errors"
	"fmt"

	"ledgerly/internal/domain"
	"ledgerly/internal/schema"
)

// DeleteCategory removes categories; their transactions become
// uncategorized.
type DeleteCategory struct {
	base
}

func (f *DeleteCategory) Name() string { return "delete_category" }

func (f *DeleteCategory) Description() string {
	return `Use this to delete a category.

When a category is deleted:
- Transactions in that category become uncategorized
- Subcategories become top-level categories

You can delete multiple categories at once by providing an array of names.

Example - delete a single category:
` + "```" + `
delete_category({
  names: ["Old Category"]
})
` + "```" + `

IMPORTANT: Always confirm with the user before deleting categories,
especially if they contain transactions.`
}

func (f *DeleteCategory) ParamsSchema() *schema.Schema {
	return schema.Object(map[string]*schema.Schema{
		"names": schema.Array("Names of the categories to delete", schema.String("")),
	}, "names")
}

func (f *DeleteCategory) Call(ctx context.Context, params map[string]any) (any, error) {
	names := stringSliceParam(params, "names")
	if len(names) == 0 {
		return errorf("No category names provided"), nil
	}

	f.report("Finding categories to delete...")

	deleted := []string{}
	notFound := []string{}
	var uncategorized int64

	for _, name := range names {
		category, err := f.deps.Categories.FindByName(ctx, f.ledgerID, name)
		if errors.Is(err, domain.ErrNotFound) {
			notFound = append(notFound, name)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("find category: %w", err)
		}

		f.report(fmt.Sprintf("Deleting '%s'...", category.Name))
		count, err := f.deps.Categories.DeleteCategory(ctx, f.ledgerID, category.ID)
		if err != nil {
			return errorf("Failed to delete category: %s", err.Error()), nil
		}
		uncategorized += count
		deleted = append(deleted, category.Name)
	}

	if len(deleted) > 0 {
		f.dataChanged()
	}

	result := map[string]any{
		"success":                    len(deleted) > 0,
		"deleted_count":              len(deleted),
		"deleted":                    deleted,
		"transactions_uncategorized": uncategorized,
	}
	if len(notFound) > 0 {
		result["not_found"] = notFound
	}
	return result, nil
}
