package fn

import (
	"context"
	"strings"
	"time"

	"ledgerly/internal/domain"
	"ledgerly/internal/domain/models"
	"ledgerly/internal/domain/repositories"
)

// In-memory fakes shared by the capability tests.

type fakeAccountRepo struct {
	accounts []models.Account
}

func (r *fakeAccountRepo) ListAccounts(context.Context, string) ([]models.Account, error) {
	return r.accounts, nil
}

type fakeTransactionRepo struct {
	page        *repositories.TransactionPage
	matchingIDs []string
	total       int

	categorized struct {
		ids        []string
		categoryID string
	}
	tagged struct {
		ids   []string
		tagID string
	}
	updated struct {
		ids   []string
		name  *string
		notes *string
	}
	statement *repositories.IncomeStatement
}

func (r *fakeTransactionRepo) Search(_ context.Context, _ string, _ repositories.TransactionFilter, _, _ int, _ bool) (*repositories.TransactionPage, error) {
	return r.page, nil
}

func (r *fakeTransactionRepo) FindIDs(_ context.Context, _ string, _ repositories.TransactionFilter, limit int) ([]string, int, error) {
	ids := r.matchingIDs
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, r.total, nil
}

func (r *fakeTransactionRepo) SetCategory(_ context.Context, _ string, ids []string, categoryID string) (int64, error) {
	r.categorized.ids = ids
	r.categorized.categoryID = categoryID
	return int64(len(ids)), nil
}

func (r *fakeTransactionRepo) AddTag(_ context.Context, _ string, ids []string, tagID string) (int64, error) {
	r.tagged.ids = ids
	r.tagged.tagID = tagID
	return int64(len(ids)), nil
}

func (r *fakeTransactionRepo) UpdateDetails(_ context.Context, _ string, ids []string, name, notes *string) (int64, error) {
	r.updated.ids = ids
	r.updated.name = name
	r.updated.notes = notes
	return int64(len(ids)), nil
}

func (r *fakeTransactionRepo) IncomeStatement(context.Context, string, time.Time, time.Time) (*repositories.IncomeStatement, error) {
	return r.statement, nil
}

type fakeCategoryRepo struct {
	categories []*models.Category
	created    []*models.Category
	updates    []*models.Category
	deleted    []string
	// uncategorized per deleted category
	uncategorizedCount int64
}

func (r *fakeCategoryRepo) ListCategories(context.Context, string) ([]models.Category, error) {
	out := make([]models.Category, len(r.categories))
	for i, c := range r.categories {
		out[i] = *c
	}
	return out, nil
}

func (r *fakeCategoryRepo) FindByName(_ context.Context, _ string, name string) (*models.Category, error) {
	for _, c := range r.categories {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeCategoryRepo) CreateCategory(_ context.Context, category *models.Category) error {
	r.categories = append(r.categories, category)
	r.created = append(r.created, category)
	return nil
}

func (r *fakeCategoryRepo) UpdateCategory(_ context.Context, category *models.Category) error {
	r.updates = append(r.updates, category)
	return nil
}

func (r *fakeCategoryRepo) DeleteCategory(_ context.Context, _ string, categoryID string) (int64, error) {
	r.deleted = append(r.deleted, categoryID)
	return r.uncategorizedCount, nil
}

type fakeTagRepo struct {
	tags    []*models.Tag
	created []*models.Tag
}

func (r *fakeTagRepo) ListTags(context.Context, string) ([]models.Tag, error) {
	out := make([]models.Tag, len(r.tags))
	for i, t := range r.tags {
		out[i] = *t
	}
	return out, nil
}

func (r *fakeTagRepo) FindByName(_ context.Context, _ string, name string) (*models.Tag, error) {
	for _, t := range r.tags {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeTagRepo) CreateTag(_ context.Context, tag *models.Tag) error {
	r.tags = append(r.tags, tag)
	r.created = append(r.created, tag)
	return nil
}

type fakeRuleRepo struct {
	created  []*models.Rule
	matching int
}

func (r *fakeRuleRepo) CreateRule(_ context.Context, rule *models.Rule) error {
	r.created = append(r.created, rule)
	return nil
}

func (r *fakeRuleRepo) CountMatching(context.Context, string, []models.RuleCondition) (int, error) {
	return r.matching, nil
}

type fakeDataNotifier struct {
	changed int
}

func (n *fakeDataNotifier) UpdateThinking(string, string)       {}
func (n *fakeDataNotifier) StopThinking(string)                 {}
func (n *fakeDataNotifier) MessageDelta(string, string, string) {}
func (n *fakeDataNotifier) MessageDone(string, string)          {}
func (n *fakeDataNotifier) TurnError(string, string)            {}
func (n *fakeDataNotifier) DataChanged(string)                  { n.changed++ }

type fixture struct {
	accounts     *fakeAccountRepo
	transactions *fakeTransactionRepo
	categories   *fakeCategoryRepo
	tags         *fakeTagRepo
	rules        *fakeRuleRepo
	notifier     *fakeDataNotifier
}

func newFixture() *fixture {
	return &fixture{
		accounts:     &fakeAccountRepo{},
		transactions: &fakeTransactionRepo{},
		categories:   &fakeCategoryRepo{},
		tags:         &fakeTagRepo{},
		rules:        &fakeRuleRepo{},
		notifier:     &fakeDataNotifier{},
	}
}

func (f *fixture) base() base {
	return base{
		deps: Deps{
			Accounts:     f.accounts,
			Transactions: f.transactions,
			Categories:   f.categories,
			Tags:         f.tags,
			Rules:        f.rules,
			Notifier:     f.notifier,
		},
		ledgerID: "ledger_1",
	}
}
