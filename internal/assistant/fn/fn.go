// Package fn contains the assistant's capabilities: the functions the model
// may call to read and modify a ledger's financial data. Each capability
// implements assistant.Function and returns expected domain failures as
// assistant.ErrorResult values so the model can adapt.
package fn

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"ledgerly/internal/assistant"
	"ledgerly/internal/domain/repositories"
)

// Bulk write operations stop after this many rows to keep a single function
// call bounded; the result carries a warning with the remaining count.
const maxBatchSize = 500

var colors = []string{
	"#e99537", "#4da568", "#6471eb", "#db5a54", "#df4e92",
	"#c44fe9", "#eb5429", "#61c9ea", "#805dee", "#6ad28a",
}

func randomColor() string {
	return colors[rand.IntN(len(colors))]
}

// Deps carries the collaborators capabilities need.
type Deps struct {
	Accounts     repositories.AccountRepository
	Transactions repositories.TransactionRepository
	Categories   repositories.CategoryRepository
	Tags         repositories.TagRepository
	Rules        repositories.RuleRepository
	Notifier     assistant.Notifier
	Logger       *slog.Logger
}

// All builds the full capability set bound to a ledger.
func All(deps Deps, ledgerID string) []assistant.Function {
	b := base{deps: deps, ledgerID: ledgerID}
	return []assistant.Function{
		// Read functions
		&GetTransactions{base: b},
		&GetAccounts{base: b},
		&GetBalanceSheet{base: b},
		&GetIncomeStatement{base: b},
		// Write functions
		&CategorizeTransactions{base: b},
		&TagTransactions{base: b},
		&UpdateTransactions{base: b},
		&CreateCategory{base: b},
		&UpdateCategory{base: b},
		&DeleteCategory{base: b},
		&CreateTag{base: b},
		&CreateRule{base: b},
	}
}

// base holds the ledger binding and progress plumbing shared by all
// capabilities.
type base struct {
	deps     Deps
	ledgerID string
	progress func(message string)
}

func (b *base) OnProgress(fn func(message string)) {
	b.progress = fn
}

func (b *base) report(message string) {
	if b.progress != nil {
		b.progress(message)
	}
}

func (b *base) dataChanged() {
	if b.deps.Notifier != nil {
		b.deps.Notifier.DataChanged(b.ledgerID)
	}
}

func errorf(format string, args ...any) assistant.ErrorResult {
	return assistant.ErrorResult{Error: fmt.Sprintf(format, args...)}
}
