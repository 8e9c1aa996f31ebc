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

// CreateCategory creates a new transaction category, optionally nested
// under a parent.
type CreateCategory struct {
	base
}

func (f *CreateCategory) Name() string { return "create_category" }

func (f *CreateCategory) Description() string {
	return `Use this to create a new category for organizing transactions.

Categories can be either "income" or "expense" classification.
You can optionally create subcategories by specifying a parent category.

Example - create a simple category:
` + "```" + `
create_category({
  name: "Subscriptions",
  classification: "expense",
  icon: "wifi"
})
` + "```" + `

Example - create a subcategory:
` + "```" + `
create_category({
  name: "Netflix",
  classification: "expense",
  parent_name: "Subscriptions"
})
` + "```" + `

Common icons: coffee, car, home, shopping-cart, utensils, plane, heart-pulse,
gift, gamepad-2, graduation-cap, briefcase, piggy-bank, credit-card, tag, zap`
}

func (f *CreateCategory) ParamsSchema() *schema.Schema {
	return schema.Object(map[string]*schema.Schema{
		"name": schema.String("Name of the category"),
		"classification": schema.StringEnum(
			"Whether this is an income or expense category", "income", "expense"),
		"icon":        schema.String("Lucide icon name for the category (e.g., 'coffee', 'car', 'home')"),
		"parent_name": schema.String("Name of parent category if creating a subcategory"),
	}, "name", "classification")
}

func (f *CreateCategory) Call(ctx context.Context, params map[string]any) (any, error) {
	name := stringParam(params, "name")
	if name == "" {
		return errorf("Category name is required"), nil
	}
	f.report(fmt.Sprintf("Creating category '%s'...", name))

	existing, err := f.deps.Categories.FindByName(ctx, f.ledgerID, name)
	if err == nil {
		return map[string]any{
			"error":       fmt.Sprintf("Category '%s' already exists", name),
			"category_id": existing.ID,
		}, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find category: %w", err)
	}

	var parent *models.Category
	if parentName := stringParam(params, "parent_name"); parentName != "" {
		parent, err = f.deps.Categories.FindByName(ctx, f.ledgerID, parentName)
		if errors.Is(err, domain.ErrNotFound) {
			return errorf("Parent category '%s' not found", parentName), nil
		}
		if err != nil {
			return nil, fmt.Errorf("find parent category: %w", err)
		}
	}

	icon := stringParam(params, "icon")
	if icon == "" {
		icon = "tag"
	}
	color := randomColor()
	var parentID *string
	var parentName *string
	if parent != nil {
		parentID = &parent.ID
		parentName = &parent.Name
		if parent.Color != "" {
			color = parent.Color
		}
	}

	category := &models.Category{
		ID:             uuid.NewString(),
		LedgerID:       f.ledgerID,
		Name:           name,
		Classification: stringParam(params, "classification"),
		ParentID:       parentID,
		LucideIcon:     icon,
		Color:          color,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := f.deps.Categories.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrConflict) {
			return errorf("%s", err.Error()), nil
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	f.dataChanged()

	result := map[string]any{
		"success":        true,
		"category_id":    category.ID,
		"name":           category.Name,
		"classification": category.Classification,
	}
	if parentName != nil {
		result["parent_name"] = *parentName
	}
	return result, nil
}
