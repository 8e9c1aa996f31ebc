package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"ledgerly/internal/assistant"
	"ledgerly/internal/assistant/fn"
	"ledgerly/internal/auth"
	"ledgerly/internal/broadcast"
	"ledgerly/internal/config"
	"ledgerly/internal/handler"
	"ledgerly/internal/httputil"
	"ledgerly/internal/llm"
	"ledgerly/internal/llm/lorem"
	"ledgerly/internal/llm/openai"
	"ledgerly/internal/middleware"
	"ledgerly/internal/repository/postgres"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// JWT verifier backed by the identity provider's JWKS endpoint
	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create repositories
	tables := postgres.NewTableNames(cfg.TablePrefix)
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	chatRepo := postgres.NewChatRepository(repoConfig)
	messageRepo := postgres.NewMessageRepository(repoConfig)
	accountRepo := postgres.NewAccountRepository(repoConfig)
	transactionRepo := postgres.NewTransactionRepository(repoConfig)
	categoryRepo := postgres.NewCategoryRepository(repoConfig)
	tagRepo := postgres.NewTagRepository(repoConfig)
	ruleRepo := postgres.NewRuleRepository(repoConfig)

	// Setup LLM providers. The lorem provider is always registered so local
	// development works without an API key.
	providers := []llm.Provider{lorem.NewProvider()}
	if cfg.OpenAIAPIKey != "" {
		openaiProvider, err := openai.New(cfg.OpenAIAPIKey)
		if err != nil {
			log.Fatalf("Failed to create OpenAI provider: %v", err)
		}
		providers = append([]llm.Provider{openaiProvider}, providers...)
	} else {
		logger.Warn("OPENAI_API_KEY not set, only lorem models available")
	}
	registry := llm.NewRegistry(providers...)

	// Event broadcasting for SSE clients
	hub := broadcast.NewHub(logger)
	notifier := broadcast.NewNotifier(hub)

	// Assistant setup
	assistantConfig, err := assistant.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load assistant config: %v", err)
	}

	ai := assistant.New(assistant.AssistantConfig{
		Registry: registry,
		Chats:    chatRepo,
		Messages: messageRepo,
		Notifier: notifier,
		Functions: func(ledgerID string) []assistant.Function {
			return fn.All(fn.Deps{
				Accounts:     accountRepo,
				Transactions: transactionRepo,
				Categories:   categoryRepo,
				Tags:         tagRepo,
				Rules:        ruleRepo,
				Notifier:     notifier,
				Logger:       logger,
			}, ledgerID)
		},
		Config: assistantConfig,
		Preferences: assistant.Preferences{
			CurrencySymbol: cfg.CurrencySymbol,
			CurrencyCode:   cfg.CurrencyCode,
			DateFormat:     cfg.DateFormat,
		},
		Logger: logger,
	})

	// Create handlers
	chatHandler := handler.NewChatHandler(chatRepo, messageRepo, ai, cfg.DefaultModel, logger)
	streamHandler := handler.NewStreamHandler(hub, chatRepo, logger)
	modelsHandler := handler.NewModelsHandler(registry, cfg.DefaultModel)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Chat routes
	mux.HandleFunc("POST /api/chats", chatHandler.CreateChat)
	mux.HandleFunc("GET /api/chats", chatHandler.ListChats)
	mux.HandleFunc("GET /api/chats/{id}", chatHandler.GetChat)
	mux.HandleFunc("GET /api/chats/{id}/messages", chatHandler.GetMessages)
	mux.HandleFunc("POST /api/chats/{id}/messages", chatHandler.CreateMessage)

	// Streaming routes
	mux.HandleFunc("GET /api/chats/{id}/stream", streamHandler.StreamChat)
	mux.HandleFunc("GET /api/events", streamHandler.StreamLedger)

	// Model routes
	mux.HandleFunc("GET /api/models", modelsHandler.GetProviders)

	// Build middleware chain
	// Order: CORS → Recovery → Auth → Routes
	var root http.Handler = mux
	root = middleware.Auth(jwtVerifier)(root)
	root = middleware.Recovery(logger)(root)

	// CORS - must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "Last-Event-ID"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // disabled to allow long-lived SSE streams
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
