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

// CreateTag creates a new tag for labeling transactions.
type CreateTag struct {
	base
}

func (f *CreateTag) Name() string { return "create_tag" }

func (f *CreateTag) Description() string {
	return `Use this to create a new tag for labeling transactions.

Tags are flexible labels that can be applied to any transaction.
Unlike categories (which are mutually exclusive), transactions can have multiple tags.

Example:
` + "```" + `
create_tag({
  name: "Tax Deductible"
})
` + "```" + `

Common tag ideas:
- "Tax Deductible" - for tracking deductible expenses
- "Reimbursable" - for expenses to be reimbursed
- "Business" - for business-related transactions
- "Vacation" - for trip-related spending
- "Recurring" - for regular payments`
}

func (f *CreateTag) ParamsSchema() *schema.Schema {
	return schema.Object(map[string]*schema.Schema{
		"name": schema.String("Name of the tag to create"),
	}, "name")
}

func (f *CreateTag) Call(ctx context.Context, params map[string]any) (any, error) {
	name := stringParam(params, "name")
	if name == "" {
		return errorf("Tag name is required"), nil
	}
	f.report(fmt.Sprintf("Creating tag '%s'...", name))

	existing, err := f.deps.Tags.FindByName(ctx, f.ledgerID, name)
	if err == nil {
		return map[string]any{
			"error":  fmt.Sprintf("Tag '%s' already exists", name),
			"tag_id": existing.ID,
		}, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find tag: %w", err)
	}

	tag := &models.Tag{
		ID:        uuid.NewString(),
		LedgerID:  f.ledgerID,
		Name:      name,
		Color:     randomColor(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := f.deps.Tags.CreateTag(ctx, tag); err != nil {
		if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrConflict) {
			return errorf("%s", err.Error()), nil
		}
		return nil, fmt.Errorf("create tag: %w", err)
	}
	f.dataChanged()

	return map[string]any{
		"success": true,
		"tag_id":  tag.ID,
		"name":    tag.Name,
	}, nil
}
