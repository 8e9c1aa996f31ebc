package fn

import (
	"context"
	"errors"
	"fmt"

	"ledgerly/internal/domain"
	"ledgerly/internal/domain/models"
	"ledgerly/internal/schema"
)

// UpdateCategory renames, re-parents, or re-icons one or more categories.
type UpdateCategory struct {
	base
}

func (f *UpdateCategory) Name() string { return "update_category" }

func (f *UpdateCategory) Description() string {
	return `Use this to update an existing category's properties.

You can:
- Set or change the parent category (make it a subcategory)
- Change the icon
- Rename the category

Example - make a category a subcategory:
` + "```" + `
update_category({
  name: "Online Retail",
  parent_name: "Shopping"
})
` + "```" + `

Example - update multiple categories to have the same parent:
` + "```" + `
update_category({
  names: ["Online Retail", "Convenience", "Other Purchases"],
  parent_name: "Shopping"
})
` + "```" + `

Example - rename a category:
` + "```" + `
update_category({
  name: "Old Name",
  new_name: "New Name"
})
` + "```"
}

func (f *UpdateCategory) ParamsSchema() *schema.Schema {
	return schema.Object(map[string]*schema.Schema{
		"name":        schema.String("Name of the category to update (use this OR names, not both)"),
		"names":       schema.Array("Names of multiple categories to update with the same changes", schema.String("")),
		"parent_name": schema.String("Name of the new parent category"),
		"new_name":    schema.String("New name for the category (only works with single category, not bulk)"),
		"icon":        schema.String("New Lucide icon name for the category"),
	})
}

func (f *UpdateCategory) Call(ctx context.Context, params map[string]any) (any, error) {
	names := stringSliceParam(params, "names")
	if len(names) == 0 {
		if name := stringParam(params, "name"); name != "" {
			names = []string{name}
		}
	}
	if len(names) == 0 {
		return errorf("Must provide 'name' or 'names' of categories to update"), nil
	}

	var parent *models.Category
	if parentName := stringParam(params, "parent_name"); parentName != "" {
		var err error
		parent, err = f.deps.Categories.FindByName(ctx, f.ledgerID, parentName)
		if errors.Is(err, domain.ErrNotFound) {
			return errorf("Parent category '%s' not found", parentName), nil
		}
		if err != nil {
			return nil, fmt.Errorf("find parent category: %w", err)
		}
	}

	f.report(fmt.Sprintf("Updating %d %s...", len(names), pluralize(len(names), "category", "categories")))

	updated := []map[string]any{}
	notFound := []string{}
	updateErrors := []string{}

	for _, name := range names {
		category, err := f.deps.Categories.FindByName(ctx, f.ledgerID, name)
		if errors.Is(err, domain.ErrNotFound) {
			notFound = append(notFound, name)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("find category: %w", err)
		}

		if parent != nil {
			if parent.ID == category.ID || (parent.ParentID != nil && *parent.ParentID == category.ID) {
				updateErrors = append(updateErrors,
					fmt.Sprintf("Cannot set '%s' as parent of '%s' (circular reference)", parent.Name, category.Name))
				continue
			}
			category.ParentID = &parent.ID
		}
		if icon := stringParam(params, "icon"); icon != "" {
			category.LucideIcon = icon
		}
		if newName := stringParam(params, "new_name"); newName != "" && len(names) == 1 {
			category.Name = newName
		}

		if err := f.deps.Categories.UpdateCategory(ctx, category); err != nil {
			if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrConflict) {
				updateErrors = append(updateErrors, err.Error())
				continue
			}
			return nil, fmt.Errorf("update category: %w", err)
		}

		entry := map[string]any{
			"name": category.Name,
			"icon": category.LucideIcon,
		}
		if parent != nil {
			entry["parent"] = parent.Name
		}
		updated = append(updated, entry)
	}

	if len(updated) > 0 {
		f.dataChanged()
	}

	result := map[string]any{
		"success":       len(updated) > 0,
		"updated_count": len(updated),
		"updated":       updated,
	}
	if len(notFound) > 0 {
		result["not_found"] = notFound
	}
	if len(updateErrors) > 0 {
		result["errors"] = updateErrors
	}
	return result, nil
}
