package assistant

import (
	"context"
	"strings"
	"sync"
	"testing"

	"ledgerly/internal/domain/models"
	"ledgerly/internal/llm"
)

// fakeChatRepo records chat state mutations.
type fakeChatRepo struct {
	mu               sync.Mutex
	latestResponseID *string
	latestUpdates    int
	recordedErrors   []string
}

func (r *fakeChatRepo) CreateChat(context.Context, *models.Chat) error { return nil }
func (r *fakeChatRepo) GetChat(context.Context, string, string) (*models.Chat, error) {
	return nil, nil
}
func (r *fakeChatRepo) ListChats(context.Context, string) ([]models.Chat, error) { return nil, nil }

func (r *fakeChatRepo) UpdateLatestResponseID(_ context.Context, _ string, responseID *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latestResponseID = responseID
	r.latestUpdates++
	return nil
}

func (r *fakeChatRepo) RecordError(_ context.Context, _ string, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recordedErrors = append(r.recordedErrors, message)
	return nil
}

// fakeMessageRepo accumulates created messages and appended content.
type fakeMessageRepo struct {
	mu        sync.Mutex
	created   []*models.Message
	content   map[string]string
	toolCalls map[string][]models.ToolCall
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{
		content:   make(map[string]string),
		toolCalls: make(map[string][]models.ToolCall),
	}
}

func (r *fakeMessageRepo) CreateMessage(_ context.Context, msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, msg)
	return nil
}

func (r *fakeMessageRepo) GetMessages(context.Context, string) ([]models.Message, error) {
	return nil, nil
}

func (r *fakeMessageRepo) AppendContent(_ context.Context, messageID, delta string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.content[messageID] += delta
	return nil
}

func (r *fakeMessageRepo) SetToolCalls(_ context.Context, messageID string, calls []models.ToolCall) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toolCalls[messageID] = calls
	return nil
}

// fakeNotifier records every broadcast in order.
type fakeNotifier struct {
	mu       sync.Mutex
	thinking []string
	stops    int
	deltas   []string
	done     []string
	errors   []string
	changed  int
}

func (n *fakeNotifier) UpdateThinking(_ string, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.thinking = append(n.thinking, message)
}

func (n *fakeNotifier) StopThinking(string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stops++
}

func (n *fakeNotifier) MessageDelta(_, _ string, delta string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deltas = append(n.deltas, delta)
}

func (n *fakeNotifier) MessageDone(_, messageID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.done = append(n.done, messageID)
}

func (n *fakeNotifier) TurnError(_ string, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, message)
}

func (n *fakeNotifier) DataChanged(string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed++
}

type assistantFixture struct {
	assistant *Assistant
	chats     *fakeChatRepo
	messages  *fakeMessageRepo
	notifier  *fakeNotifier
}

func newAssistantFixture(t *testing.T, provider llm.Provider, functions ...Function) *assistantFixture {
	t.Helper()
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	f := &assistantFixture{
		chats:    &fakeChatRepo{},
		messages: newFakeMessageRepo(),
		notifier: &fakeNotifier{},
	}
	f.assistant = New(AssistantConfig{
		Registry:    llm.NewRegistry(provider),
		Chats:       f.chats,
		Messages:    f.messages,
		Notifier:    f.notifier,
		Functions:   func(string) []Function { return functions },
		Config:      cfg,
		Preferences: Preferences{CurrencySymbol: "$", CurrencyCode: "USD", DateFormat: "%m-%d-%Y"},
		Logger:      testLogger(),
	})
	return f
}

func testChat() *models.Chat {
	return &models.Chat{ID: "chat_1", LedgerID: "ledger_1", UserID: "user_1"}
}

func testUserMessage() *models.Message {
	return &models.Message{
		ID:      "msg_user",
		ChatID:  "chat_1",
		Role:    models.RoleUser,
		Content: "How much did I spend on groceries?",
		AIModel: "gpt-4.1",
	}
}

func TestRespondToPersistsStreamedReply(t *testing.T) {
	provider := &scriptedProvider{script: []scriptedExchange{
		{
			textChunks: []string{"You spent ", "$120."},
			response:   &llm.Response{ID: "resp_1", OutputText: "You spent $120."},
		},
	}}
	f := newAssistantFixture(t, provider)

	f.assistant.RespondTo(context.Background(), testChat(), testUserMessage())

	if len(f.messages.created) != 1 {
		t.Fatalf("expected 1 assistant message, got %d", len(f.messages.created))
	}
	reply := f.messages.created[0]
	if reply.Role != models.RoleAssistant || reply.AIModel != "gpt-4.1" {
		t.Errorf("unexpected assistant message: %+v", reply)
	}
	if got := f.messages.content[reply.ID]; got != "You spent $120." {
		t.Errorf("expected accumulated content, got %q", got)
	}
	if f.chats.latestResponseID == nil || *f.chats.latestResponseID != "resp_1" {
		t.Errorf("expected latest response id resp_1, got %v", f.chats.latestResponseID)
	}
	if len(f.notifier.done) != 1 || f.notifier.done[0] != reply.ID {
		t.Errorf("expected message_done for the reply, got %v", f.notifier.done)
	}
	if len(f.chats.recordedErrors) != 0 {
		t.Errorf("unexpected chat errors: %v", f.chats.recordedErrors)
	}
}

func TestRespondToShowsThinkingForFunctionRound(t *testing.T) {
	executed := 0
	provider := &scriptedProvider{script: []scriptedExchange{
		{
			response: &llm.Response{
				ID:               "resp_1",
				FunctionRequests: functionRequests("get_transactions", 1),
			},
		},
		{
			textChunks: []string{"Done."},
			response:   &llm.Response{ID: "resp_2", OutputText: "Done."},
		},
	}}
	f := newAssistantFixture(t, provider, countingFunction("get_transactions", &executed))

	f.assistant.RespondTo(context.Background(), testChat(), testUserMessage())

	if len(f.notifier.thinking) == 0 || f.notifier.thinking[0] != "Searching transactions..." {
		t.Errorf("expected thinking message before execution, got %v", f.notifier.thinking)
	}
	reply := f.messages.created[0]
	calls := f.messages.toolCalls[reply.ID]
	if len(calls) != 1 || calls[0].FunctionName != "get_transactions" {
		t.Errorf("expected persisted tool call, got %+v", calls)
	}
	if f.chats.latestResponseID == nil || *f.chats.latestResponseID != "resp_2" {
		t.Errorf("expected final response id stored, got %v", f.chats.latestResponseID)
	}
	if f.chats.latestUpdates != 1 {
		t.Errorf("intermediate response ids must not be stored, got %d updates", f.chats.latestUpdates)
	}
	if f.notifier.stops == 0 {
		t.Error("thinking indicator should be cleared")
	}
}

func TestRespondToDoesNotStoreTokenWithPendingFunctions(t *testing.T) {
	executed := 0
	provider := &scriptedProvider{script: []scriptedExchange{
		{
			response: &llm.Response{
				ID:               "resp_1",
				FunctionRequests: functionRequests("get_transactions", 150),
			},
		},
	}}
	f := newAssistantFixture(t, provider, countingFunction("get_transactions", &executed))

	f.assistant.RespondTo(context.Background(), testChat(), testUserMessage())

	if executed != 0 {
		t.Errorf("expected no executions, got %d", executed)
	}
	if f.chats.latestUpdates != 0 {
		t.Errorf("pending-functions response id must not be stored, got %d updates", f.chats.latestUpdates)
	}
	reply := f.messages.created[0]
	if got := f.messages.content[reply.ID]; !strings.Contains(got, "manage costs") {
		t.Errorf("expected budget message persisted, got %q", got)
	}
	if len(f.chats.recordedErrors) != 0 {
		t.Errorf("budget exhaustion is not a turn failure, got %v", f.chats.recordedErrors)
	}
}

func TestRespondToClearsStaleTokenAndRetries(t *testing.T) {
	provider := &scriptedProvider{script: []scriptedExchange{
		{err: &staleError{}},
		{
			textChunks: []string{"Fresh."},
			response:   &llm.Response{ID: "resp_new", OutputText: "Fresh."},
		},
	}}
	f := newAssistantFixture(t, provider)

	chat := testChat()
	stale := "resp_stale"
	chat.LatestAssistantResponseID = &stale

	f.assistant.RespondTo(context.Background(), chat, testUserMessage())

	// Cleared once, then set to the fresh id.
	if f.chats.latestUpdates != 2 {
		t.Fatalf("expected clear + store, got %d updates", f.chats.latestUpdates)
	}
	if f.chats.latestResponseID == nil || *f.chats.latestResponseID != "resp_new" {
		t.Errorf("expected fresh response id stored, got %v", f.chats.latestResponseID)
	}
	if len(f.chats.recordedErrors) != 0 {
		t.Errorf("unexpected chat errors: %v", f.chats.recordedErrors)
	}
}

type staleError struct{}

func (*staleError) Error() string { return "previous_response with id 'resp_stale' not found" }

func TestRespondToRecordsErrorWhenNoProviderMatches(t *testing.T) {
	provider := &prefixProvider{name: "openai", prefix: "gpt-"}
	f := newAssistantFixture(t, provider)

	msg := testUserMessage()
	msg.AIModel = "claude-3"
	f.assistant.RespondTo(context.Background(), testChat(), msg)

	if len(f.chats.recordedErrors) != 1 {
		t.Fatalf("expected 1 recorded error, got %d", len(f.chats.recordedErrors))
	}
	errMsg := f.chats.recordedErrors[0]
	if !strings.Contains(errMsg, "claude-3") || !strings.Contains(errMsg, "openai") {
		t.Errorf("error should name the model and available providers: %q", errMsg)
	}
	if len(f.notifier.errors) != 1 {
		t.Errorf("expected turn error broadcast, got %v", f.notifier.errors)
	}
	if f.notifier.stops == 0 {
		t.Error("thinking indicator should be cleared on failure")
	}
}

func TestRespondToRecordsProviderFailure(t *testing.T) {
	provider := &scriptedProvider{script: []scriptedExchange{
		{err: &rateLimitError{}},
	}}
	f := newAssistantFixture(t, provider)

	f.assistant.RespondTo(context.Background(), testChat(), testUserMessage())

	if len(f.chats.recordedErrors) != 1 {
		t.Fatalf("expected 1 recorded error, got %d", len(f.chats.recordedErrors))
	}
	if !strings.Contains(f.chats.recordedErrors[0], "rate limit") {
		t.Errorf("unexpected error message: %q", f.chats.recordedErrors[0])
	}
}

type rateLimitError struct{}

func (*rateLimitError) Error() string { return "rate limit exceeded" }

// prefixProvider supports only models with a fixed prefix.
type prefixProvider struct {
	name   string
	prefix string
}

func (p *prefixProvider) Name() string { return p.name }
func (p *prefixProvider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, p.prefix)
}
func (p *prefixProvider) SupportedModelsDescription() string {
	return "models starting with " + p.prefix
}
func (p *prefixProvider) ChatResponse(context.Context, *llm.ChatRequest) (*llm.Response, error) {
	return nil, nil
}
