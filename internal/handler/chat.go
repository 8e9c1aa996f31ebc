package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"ledgerly/internal/assistant"
	"ledgerly/internal/domain/models"
	"ledgerly/internal/domain/repositories"
	"ledgerly/internal/httputil"
)

// turnTimeout bounds one assistant turn, including all function call
// rounds. Generous because a turn can make many provider calls.
const turnTimeout = 5 * time.Minute

// ChatHandler handles chat HTTP requests
type ChatHandler struct {
	chats        repositories.ChatRepository
	messages     repositories.MessageRepository
	assistant    *assistant.Assistant
	defaultModel string
	logger       *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(
	chats repositories.ChatRepository,
	messages repositories.MessageRepository,
	assistant *assistant.Assistant,
	defaultModel string,
	logger *slog.Logger,
) *ChatHandler {
	return &ChatHandler{
		chats:        chats,
		messages:     messages,
		assistant:    assistant,
		defaultModel: defaultModel,
		logger:       logger,
	}
}

// CreateChatRequest is the payload for creating a chat. When Content is
// present the first user message is created and an assistant turn starts
// immediately.
type CreateChatRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Model   string `json:"model"`
}

func (req CreateChatRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Title, validation.RuneLength(0, 255)),
		validation.Field(&req.Content, validation.RuneLength(0, 20000)),
	)
}

// CreateMessageRequest is the payload for sending a user message.
type CreateMessageRequest struct {
	Content string `json:"content"`
	Model   string `json:"model"`
}

func (req CreateMessageRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Content, validation.Required, validation.RuneLength(1, 20000)),
	)
}

// CreateChat creates a new chat session
// POST /api/chats
func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	ledgerID := httputil.GetLedgerID(r)

	var req CreateChatRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	title := req.Title
	if title == "" {
		title = "New chat"
	}

	chat := &models.Chat{
		ID:       uuid.NewString(),
		LedgerID: ledgerID,
		UserID:   userID,
		Title:    title,
	}
	if err := h.chats.CreateChat(r.Context(), chat); err != nil {
		handleError(w, err)
		return
	}

	if req.Content != "" {
		if _, err := h.startTurn(r.Context(), chat, req.Content, req.Model); err != nil {
			handleError(w, err)
			return
		}
	}

	httputil.RespondJSON(w, http.StatusCreated, chat)
}

// ListChats retrieves all chats of the authenticated user
// GET /api/chats
func (h *ChatHandler) ListChats(w http.ResponseWriter, r *http.Request) {
	chats, err := h.chats.ListChats(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, chats)
}

// GetChat retrieves a single chat by ID
// GET /api/chats/{id}
func (h *ChatHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	chatID, ok := PathParam(w, r, "id", "Chat ID")
	if !ok {
		return
	}

	chat, err := h.chats.GetChat(r.Context(), chatID, httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, chat)
}

// GetMessages retrieves all messages of a chat in conversation order
// GET /api/chats/{id}/messages
func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	chatID, ok := PathParam(w, r, "id", "Chat ID")
	if !ok {
		return
	}

	// Ownership check before exposing messages.
	if _, err := h.chats.GetChat(r.Context(), chatID, httputil.GetUserID(r)); err != nil {
		handleError(w, err)
		return
	}

	messages, err := h.messages.GetMessages(r.Context(), chatID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, messages)
}

// CreateMessage records a user message and starts an assistant turn in the
// background
// POST /api/chats/{id}/messages
func (h *ChatHandler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	chatID, ok := PathParam(w, r, "id", "Chat ID")
	if !ok {
		return
	}

	var req CreateMessageRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	chat, err := h.chats.GetChat(r.Context(), chatID, httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	message, err := h.startTurn(r.Context(), chat, req.Content, req.Model)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusAccepted, message)
}

// startTurn persists the user message and kicks off the assistant reply on
// its own goroutine, detached from the request context.
func (h *ChatHandler) startTurn(ctx context.Context, chat *models.Chat, content, model string) (*models.Message, error) {
	if model == "" {
		model = h.defaultModel
	}

	message := &models.Message{
		ID:      uuid.NewString(),
		ChatID:  chat.ID,
		Role:    models.RoleUser,
		Content: content,
		AIModel: model,
	}
	if err := h.messages.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	go func() {
		turnCtx, cancel := context.WithTimeout(context.Background(), turnTimeout)
		defer cancel()
		h.assistant.RespondTo(turnCtx, chat, message)
	}()

	return message, nil
}
