package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	loremgen "github.com/bozaro/golorem"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"ledgerly/internal/config"
	"ledgerly/internal/repository/postgres"
)

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed demo data")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	// SAFETY: prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("🚫 BLOCKED: Cannot run --drop-tables in production environment")
	}

	log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	log.Println("📋 Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	ledgerID := getDemoLedgerID()
	log.Printf("📝 Seeding demo ledger %s...", ledgerID)
	if err := seedDemoData(ctx, pool, tables, ledgerID); err != nil {
		log.Fatalf("Failed to seed demo data: %v", err)
	}

	log.Println("🎉 Seeding complete!")
}

// getDemoLedgerID returns a stable ledger id so re-seeding stays idempotent
func getDemoLedgerID() string {
	return "00000000-0000-0000-0000-000000000001"
}

func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	// Dependency order: children first.
	for _, table := range []string{
		tables.Messages,
		tables.Chats,
		tables.TransactionTags,
		tables.Rules,
		tables.Transactions,
		tables.Tags,
		tables.Categories,
		tables.Accounts,
	} {
		if _, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}

// runSchema creates tables if they don't exist
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			ledger_id UUID NOT NULL,
			name TEXT NOT NULL,
			account_type TEXT NOT NULL,
			classification TEXT NOT NULL CHECK (classification IN ('asset', 'liability')),
			balance NUMERIC(19, 4) NOT NULL DEFAULT 0,
			currency TEXT NOT NULL DEFAULT 'USD',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, tables.Accounts),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			ledger_id UUID NOT NULL,
			name TEXT NOT NULL,
			classification TEXT NOT NULL CHECK (classification IN ('income', 'expense')),
			parent_id UUID REFERENCES %s (id),
			lucide_icon TEXT NOT NULL DEFAULT '',
			color TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (ledger_id, name)
		)`, tables.Categories, tables.Categories),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			ledger_id UUID NOT NULL,
			name TEXT NOT NULL,
			color TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (ledger_id, name)
		)`, tables.Tags),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			account_id UUID NOT NULL REFERENCES %s (id),
			name TEXT NOT NULL,
			amount NUMERIC(19, 4) NOT NULL,
			currency TEXT NOT NULL DEFAULT 'USD',
			date DATE NOT NULL,
			notes TEXT,
			category_id UUID REFERENCES %s (id),
			merchant_name TEXT,
			is_transfer BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, tables.Transactions, tables.Accounts, tables.Categories),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			transaction_id UUID NOT NULL REFERENCES %s (id) ON DELETE CASCADE,
			tag_id UUID NOT NULL REFERENCES %s (id) ON DELETE CASCADE,
			PRIMARY KEY (transaction_id, tag_id)
		)`, tables.TransactionTags, tables.Transactions, tables.Tags),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			ledger_id UUID NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			conditions JSONB NOT NULL,
			actions JSONB NOT NULL,
			effective_date DATE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, tables.Rules),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			ledger_id UUID NOT NULL,
			user_id UUID NOT NULL,
			title TEXT NOT NULL,
			latest_assistant_response_id TEXT,
			error TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		)`, tables.Chats),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			chat_id UUID NOT NULL REFERENCES %s (id) ON DELETE CASCADE,
			role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
			content TEXT NOT NULL DEFAULT '',
			ai_model TEXT NOT NULL DEFAULT '',
			tool_calls JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, tables.Messages, tables.Chats),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

type seedAccount struct {
	id             string
	name           string
	accountType    string
	classification string
	balance        float64
}

type seedCategory struct {
	id             string
	name           string
	classification string
	color          string
}

func seedDemoData(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, ledgerID string) error {
	accounts := []seedAccount{
		{uuid.NewString(), "Checking", "depository", "asset", 4820.55},
		{uuid.NewString(), "Savings", "depository", "asset", 15200.00},
		{uuid.NewString(), "Credit Card", "credit_card", "liability", -1340.20},
	}
	for _, a := range accounts {
		query := fmt.Sprintf(`
			INSERT INTO %s (id, ledger_id, name, account_type, classification, balance)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, tables.Accounts)
		if _, err := pool.Exec(ctx, query, a.id, ledgerID, a.name, a.accountType, a.classification, a.balance); err != nil {
			return fmt.Errorf("seed account %s: %w", a.name, err)
		}
	}

	categories := []seedCategory{
		{uuid.NewString(), "Income", "income", "#e99537"},
		{uuid.NewString(), "Food & Drink", "expense", "#4da568"},
		{uuid.NewString(), "Rent", "expense", "#6471eb"},
		{uuid.NewString(), "Transportation", "expense", "#db5a54"},
		{uuid.NewString(), "Shopping", "expense", "#df4e92"},
	}
	for _, c := range categories {
		query := fmt.Sprintf(`
			INSERT INTO %s (id, ledger_id, name, classification, lucide_icon, color)
			VALUES ($1, $2, $3, $4, 'tag', $5)
		`, tables.Categories)
		if _, err := pool.Exec(ctx, query, c.id, ledgerID, c.name, c.classification, c.color); err != nil {
			return fmt.Errorf("seed category %s: %w", c.name, err)
		}
	}

	// Random everyday transactions over the last 90 days, lorem merchant
	// names so the assistant has something to search.
	gen := loremgen.New()
	checking := accounts[0].id
	expenseCategories := categories[1:]
	count := 0
	for day := 0; day < 90; day++ {
		date := time.Now().AddDate(0, 0, -day)
		for i := 0; i < rand.IntN(3); i++ {
			category := expenseCategories[rand.IntN(len(expenseCategories))]
			merchant := gen.Word(3, 10)
			amount := 5 + rand.Float64()*120
			query := fmt.Sprintf(`
				INSERT INTO %s (id, account_id, name, amount, date, category_id, merchant_name)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, tables.Transactions)
			name := fmt.Sprintf("%s purchase", merchant)
			if _, err := pool.Exec(ctx, query, uuid.NewString(), checking, name, amount, date, category.id, merchant); err != nil {
				return fmt.Errorf("seed transaction: %w", err)
			}
			count++
		}
	}

	// Monthly paycheck (negative amount = income).
	for month := 0; month < 3; month++ {
		date := time.Now().AddDate(0, -month, 0)
		query := fmt.Sprintf(`
			INSERT INTO %s (id, account_id, name, amount, date, category_id, merchant_name)
			VALUES ($1, $2, 'Paycheck', -5000, $3, $4, 'Employer Inc')
		`, tables.Transactions)
		if _, err := pool.Exec(ctx, query, uuid.NewString(), checking, date, categories[0].id); err != nil {
			return fmt.Errorf("seed paycheck: %w", err)
		}
		count++
	}

	log.Printf("✅ Seeded %d accounts, %d categories, %d transactions", len(accounts), len(categories), count)
	return nil
}
