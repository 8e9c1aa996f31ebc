package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"ledgerly/internal/assistant"
	"ledgerly/internal/broadcast"
	"ledgerly/internal/domain"
	"ledgerly/internal/domain/models"
	"ledgerly/internal/httputil"
	"ledgerly/internal/llm"
	"ledgerly/internal/llm/lorem"
)

type fakeChatRepo struct {
	mu    sync.Mutex
	chats map[string]*models.Chat
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{chats: map[string]*models.Chat{}}
}

func (f *fakeChatRepo) CreateChat(_ context.Context, chat *models.Chat) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chats[chat.ID] = chat
	return nil
}

func (f *fakeChatRepo) GetChat(_ context.Context, chatID, userID string) (*models.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	chat, ok := f.chats[chatID]
	if !ok || chat.UserID != userID {
		return nil, fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}
	return chat, nil
}

func (f *fakeChatRepo) ListChats(_ context.Context, userID string) ([]models.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Chat
	for _, chat := range f.chats {
		if chat.UserID == userID {
			out = append(out, *chat)
		}
	}
	return out, nil
}

func (f *fakeChatRepo) UpdateLatestResponseID(_ context.Context, chatID string, responseID *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if chat, ok := f.chats[chatID]; ok {
		chat.LatestAssistantResponseID = responseID
	}
	return nil
}

func (f *fakeChatRepo) RecordError(_ context.Context, chatID, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if chat, ok := f.chats[chatID]; ok {
		chat.Error = &message
	}
	return nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*models.Message
}

func (f *fakeMessageRepo) CreateMessage(_ context.Context, msg *models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeMessageRepo) GetMessages(_ context.Context, chatID string) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Message
	for _, msg := range f.messages {
		if msg.ChatID == chatID {
			out = append(out, *msg)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) AppendContent(_ context.Context, messageID, delta string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, msg := range f.messages {
		if msg.ID == messageID {
			msg.Content += delta
		}
	}
	return nil
}

func (f *fakeMessageRepo) SetToolCalls(_ context.Context, messageID string, calls []models.ToolCall) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, msg := range f.messages {
		if msg.ID == messageID {
			msg.ToolCalls = calls
		}
	}
	return nil
}

func (f *fakeMessageRepo) userMessages() []models.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Message
	for _, msg := range f.messages {
		if msg.Role == models.RoleUser {
			out = append(out, *msg)
		}
	}
	return out
}

func testChatHandler(t *testing.T) (*ChatHandler, *fakeChatRepo, *fakeMessageRepo) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	chats := newFakeChatRepo()
	messages := &fakeMessageRepo{}

	cfg, err := assistant.LoadConfig()
	if err != nil {
		t.Fatalf("load assistant config: %v", err)
	}

	hub := broadcast.NewHub(logger)
	ai := assistant.New(assistant.AssistantConfig{
		Registry:  llm.NewRegistry(lorem.NewProvider()),
		Chats:     chats,
		Messages:  messages,
		Notifier:  broadcast.NewNotifier(hub),
		Functions: func(string) []assistant.Function { return nil },
		Config:    cfg,
		Logger:    logger,
	})

	return NewChatHandler(chats, messages, ai, "lorem-fast", logger), chats, messages
}

func authedRequest(method, target string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	return httputil.WithIdentity(req, "user_1", "ledger_1")
}

func TestCreateChat(t *testing.T) {
	h, chats, _ := testChatHandler(t)

	rec := httptest.NewRecorder()
	h.CreateChat(rec, authedRequest(http.MethodPost, "/api/chats", []byte(`{"title":"Budget questions"}`)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var chat models.Chat
	if err := json.Unmarshal(rec.Body.Bytes(), &chat); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if chat.Title != "Budget questions" || chat.UserID != "user_1" || chat.LedgerID != "ledger_1" {
		t.Errorf("unexpected chat %+v", chat)
	}
	if _, err := chats.GetChat(context.Background(), chat.ID, "user_1"); err != nil {
		t.Errorf("chat not persisted: %v", err)
	}
}

func TestCreateChatDefaultsTitle(t *testing.T) {
	h, _, _ := testChatHandler(t)

	rec := httptest.NewRecorder()
	h.CreateChat(rec, authedRequest(http.MethodPost, "/api/chats", []byte(`{}`)))

	var chat models.Chat
	if err := json.Unmarshal(rec.Body.Bytes(), &chat); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if chat.Title != "New chat" {
		t.Errorf("expected default title, got %q", chat.Title)
	}
}

func TestCreateChatRejectsInvalidJSON(t *testing.T) {
	h, _, _ := testChatHandler(t)

	rec := httptest.NewRecorder()
	h.CreateChat(rec, authedRequest(http.MethodPost, "/api/chats", []byte(`{not json`)))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestGetChatScopedToOwner(t *testing.T) {
	h, chats, _ := testChatHandler(t)
	chats.CreateChat(context.Background(), &models.Chat{ID: "chat_1", UserID: "someone_else", LedgerID: "ledger_2"})

	req := authedRequest(http.MethodGet, "/api/chats/chat_1", nil)
	req.SetPathValue("id", "chat_1")

	rec := httptest.NewRecorder()
	h.GetChat(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for another user's chat, got %d", rec.Code)
	}
}

func TestCreateMessageRequiresContent(t *testing.T) {
	h, chats, _ := testChatHandler(t)
	chats.CreateChat(context.Background(), &models.Chat{ID: "chat_1", UserID: "user_1", LedgerID: "ledger_1"})

	req := authedRequest(http.MethodPost, "/api/chats/chat_1/messages", []byte(`{"content":""}`))
	req.SetPathValue("id", "chat_1")

	rec := httptest.NewRecorder()
	h.CreateMessage(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty content, got %d", rec.Code)
	}
}

func TestCreateMessagePersistsUserMessage(t *testing.T) {
	h, chats, messages := testChatHandler(t)
	chats.CreateChat(context.Background(), &models.Chat{ID: "chat_1", UserID: "user_1", LedgerID: "ledger_1"})

	req := authedRequest(http.MethodPost, "/api/chats/chat_1/messages", []byte(`{"content":"How much did I spend on food?"}`))
	req.SetPathValue("id", "chat_1")

	rec := httptest.NewRecorder()
	h.CreateMessage(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	userMsgs := messages.userMessages()
	if len(userMsgs) != 1 {
		t.Fatalf("expected 1 user message, got %d", len(userMsgs))
	}
	if userMsgs[0].Content != "How much did I spend on food?" || userMsgs[0].AIModel != "lorem-fast" {
		t.Errorf("unexpected message %+v", userMsgs[0])
	}
}
