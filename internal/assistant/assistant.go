package assistant

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"ledgerly/internal/domain/models"
	"ledgerly/internal/domain/repositories"
	"ledgerly/internal/llm"
)

// AssistantConfig wires the facade's collaborators.
type AssistantConfig struct {
	Registry *llm.Registry
	Chats    repositories.ChatRepository
	Messages repositories.MessageRepository
	Notifier Notifier

	// Functions builds the capability set bound to a ledger for one turn.
	Functions func(ledgerID string) []Function

	Config      *Config
	Preferences Preferences
	Logger      *slog.Logger
}

// Assistant is the entry point for producing an AI reply to a user message.
// It owns everything the turn controller does not: resolving the provider,
// persisting the streamed reply and tool calls, maintaining the thinking
// indicator, and recording turn-level failures on the chat.
type Assistant struct {
	cfg AssistantConfig
}

func New(cfg AssistantConfig) *Assistant {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Assistant{cfg: cfg}
}

// RespondTo produces the assistant reply for a user message. It never
// returns an error: failures are recorded on the chat so the UI reaches a
// terminal, inspectable state. Safe to run on its own goroutine.
func (a *Assistant) RespondTo(ctx context.Context, chat *models.Chat, message *models.Message) {
	logger := a.cfg.Logger.With("chat_id", chat.ID, "message_id", message.ID)

	defer a.cfg.Notifier.StopThinking(chat.ID)

	if err := a.respond(ctx, chat, message, logger); err != nil {
		logger.Error("assistant turn failed", "error", err)
		a.cfg.Notifier.TurnError(chat.ID, err.Error())
		if recordErr := a.cfg.Chats.RecordError(ctx, chat.ID, err.Error()); recordErr != nil {
			logger.Error("failed to record chat error", "error", recordErr)
		}
	}
}

func (a *Assistant) respond(ctx context.Context, chat *models.Chat, message *models.Message, logger *slog.Logger) error {
	provider := a.cfg.Registry.ProviderFor(message.AIModel)
	if provider == nil {
		return fmt.Errorf("%s", a.noProviderMessage(message.AIModel))
	}

	reply := &models.Message{
		ID:      uuid.NewString(),
		ChatID:  chat.ID,
		Role:    models.RoleAssistant,
		Content: "",
		AIModel: message.AIModel,
	}
	if err := a.cfg.Messages.CreateMessage(ctx, reply); err != nil {
		return fmt.Errorf("create assistant message: %w", err)
	}

	caller := NewFunctionToolCaller(logger, a.cfg.Functions(chat.LedgerID)...)
	caller.OnProgress(func(msg string) {
		a.cfg.Notifier.UpdateThinking(chat.ID, msg)
	})

	responder := NewResponder(ResponderConfig{
		Message:        message.Content,
		Model:          message.AIModel,
		Instructions:   a.cfg.Config.InstructionsFor(a.cfg.Preferences, time.Now()),
		SessionID:      chat.ID,
		UserIdentifier: hashUserID(chat.UserID),
		Caller:         caller,
		Provider:       provider,
		ClearStaleToken: func(ctx context.Context) error {
			return a.cfg.Chats.UpdateLatestResponseID(ctx, chat.ID, nil)
		},
		Logger: logger,
	})

	hasContent := false
	responder.OnOutputText(func(text string) {
		if !hasContent {
			hasContent = true
			a.cfg.Notifier.StopThinking(chat.ID)
		}
		if err := a.cfg.Messages.AppendContent(ctx, reply.ID, text); err != nil {
			logger.Error("failed to append message content", "error", err)
			return
		}
		a.cfg.Notifier.MessageDelta(chat.ID, reply.ID, text)
	})

	responder.OnFunctionsStarting(func(names []string) {
		a.cfg.Notifier.UpdateThinking(chat.ID, a.cfg.Config.ThinkingMessage(names))
	})

	var eventErr error
	responder.OnResponse(func(event ResponseEvent) {
		switch {
		case len(event.ToolCalls) > 0:
			// Intermediate response: record the executed calls, but keep the
			// stored continuation token untouched until the provider returns
			// a reply that no longer expects function output.
			if err := a.cfg.Messages.SetToolCalls(ctx, reply.ID, displayToolCalls(event.ToolCalls)); err != nil {
				logger.Error("failed to persist tool calls", "error", err)
			}
		case event.HasPendingFunctions:
			// This response id expects function output the turn will never
			// provide, so it must not become the continuation token.
			logger.Warn("not saving response id with pending function calls", "response_id", event.ID)
			a.cfg.Notifier.StopThinking(chat.ID)
		default:
			if err := a.cfg.Chats.UpdateLatestResponseID(ctx, chat.ID, &event.ID); err != nil {
				eventErr = fmt.Errorf("update latest response id: %w", err)
			}
		}
	})

	previousResponseID := ""
	if chat.LatestAssistantResponseID != nil {
		previousResponseID = *chat.LatestAssistantResponseID
	}

	if err := responder.Respond(ctx, previousResponseID); err != nil {
		return err
	}
	if eventErr != nil {
		return eventErr
	}

	a.cfg.Notifier.MessageDone(chat.ID, reply.ID)
	return nil
}

func (a *Assistant) noProviderMessage(requestedModel string) string {
	providers := a.cfg.Registry.Providers()
	if len(providers) == 0 {
		return fmt.Sprintf("No LLM provider configured that supports model '%s'. "+
			"Please configure an LLM provider (e.g., OpenAI) in settings.", requestedModel)
	}

	var details strings.Builder
	for _, p := range providers {
		fmt.Fprintf(&details, "  - %s: %s\n", p.Name(), p.SupportedModelsDescription())
	}
	return fmt.Sprintf("No LLM provider configured that supports model '%s'.\n\n"+
		"Available providers:\n%s\n"+
		"Please either:\n"+
		"  1. Use a supported model from the list above, or\n"+
		"  2. Configure a provider that supports '%s' in settings.",
		requestedModel, details.String(), requestedModel)
}

func displayToolCalls(calls []FunctionToolCall) []models.ToolCall {
	display := make([]models.ToolCall, len(calls))
	for i, call := range calls {
		result, err := json.Marshal(call.Result)
		if err != nil {
			result, _ = json.Marshal(ErrorResult{Error: "result could not be serialized"})
		}
		display[i] = models.ToolCall{
			CallID:       call.CallID,
			FunctionName: call.FunctionName,
			FunctionArgs: call.FunctionArgs,
			Result:       result,
		}
	}
	return display
}

func hashUserID(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])
}
