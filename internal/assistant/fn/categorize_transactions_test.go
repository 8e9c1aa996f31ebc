package fn

import (
	"context"
	"strings"
	"testing"

	"ledgerly/internal/assistant"
	"ledgerly/internal/domain/models"
)

func ids(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = string(rune('a' + i%26))
	}
	return out
}

func TestCategorizeTransactionsAssignsExistingCategory(t *testing.T) {
	f := newFixture()
	f.categories.categories = []*models.Category{
		{ID: "cat_1", LedgerID: "ledger_1", Name: "Food & Drink"},
	}
	f.transactions.matchingIDs = []string{"t1", "t2"}
	f.transactions.total = 2

	capability := &CategorizeTransactions{base: f.base()}
	result, err := capability.Call(context.Background(), map[string]any{
		"transaction_ids": []any{"t1", "t2"},
		"category_name":   "food & drink",
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}

	out := result.(map[string]any)
	if out["success"] != true || out["updated_count"] != int64(2) {
		t.Errorf("unexpected result: %v", out)
	}
	if f.transactions.categorized.categoryID != "cat_1" {
		t.Errorf("expected category cat_1, got %s", f.transactions.categorized.categoryID)
	}
	if f.notifier.changed != 1 {
		t.Errorf("expected data-changed broadcast, got %d", f.notifier.changed)
	}
}

func TestCategorizeTransactionsMissingCategoryWithoutCreateFlag(t *testing.T) {
	f := newFixture()
	f.transactions.matchingIDs = []string{"t1"}
	f.transactions.total = 1

	capability := &CategorizeTransactions{base: f.base()}
	result, err := capability.Call(context.Background(), map[string]any{
		"search":        "starbucks",
		"category_name": "Coffee",
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}

	errResult, ok := result.(assistant.ErrorResult)
	if !ok {
		t.Fatalf("expected ErrorResult, got %T", result)
	}
	if !strings.Contains(errResult.Error, "create_if_missing") {
		t.Errorf("error should hint at create_if_missing: %q", errResult.Error)
	}
	if len(f.categories.created) != 0 {
		t.Error("category must not be created without the flag")
	}
}

func TestCategorizeTransactionsCreatesCategoryWhenAsked(t *testing.T) {
	f := newFixture()
	f.transactions.matchingIDs = []string{"t1"}
	f.transactions.total = 1

	capability := &CategorizeTransactions{base: f.base()}
	result, err := capability.Call(context.Background(), map[string]any{
		"search":            "starbucks",
		"category_name":     "Coffee",
		"create_if_missing": true,
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}

	if len(f.categories.created) != 1 {
		t.Fatalf("expected created category, got %d", len(f.categories.created))
	}
	created := f.categories.created[0]
	if created.Name != "Coffee" || created.Classification != models.CategoryExpense {
		t.Errorf("unexpected created category: %+v", created)
	}
	out := result.(map[string]any)
	if out["category_id"] != created.ID {
		t.Errorf("result should reference the created category")
	}
}

func TestCategorizeTransactionsNoMatches(t *testing.T) {
	f := newFixture()

	capability := &CategorizeTransactions{base: f.base()}
	result, err := capability.Call(context.Background(), map[string]any{
		"search":        "nothing",
		"category_name": "Food",
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if _, ok := result.(assistant.ErrorResult); !ok {
		t.Fatalf("expected ErrorResult, got %T", result)
	}
}

func TestCategorizeTransactionsBatchWarning(t *testing.T) {
	f := newFixture()
	f.categories.categories = []*models.Category{
		{ID: "cat_1", LedgerID: "ledger_1", Name: "Food"},
	}
	f.transactions.matchingIDs = make([]string, maxBatchSize+100)
	for i := range f.transactions.matchingIDs {
		f.transactions.matchingIDs[i] = ids(1)[0]
	}
	f.transactions.total = maxBatchSize + 100

	capability := &CategorizeTransactions{base: f.base()}
	result, err := capability.Call(context.Background(), map[string]any{
		"search":        "x",
		"category_name": "Food",
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}

	out := result.(map[string]any)
	if _, ok := out["warning"]; !ok {
		t.Error("expected batch warning")
	}
	if out["remaining"] != 100 {
		t.Errorf("expected 100 remaining, got %v", out["remaining"])
	}
	if len(f.transactions.categorized.ids) != maxBatchSize {
		t.Errorf("expected batch capped at %d, got %d", maxBatchSize, len(f.transactions.categorized.ids))
	}
}
