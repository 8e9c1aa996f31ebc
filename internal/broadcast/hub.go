// Package broadcast fans chat and ledger events out to connected SSE
// clients. Clients subscribe to a topic (a chat id or a ledger id) and
// receive JSON-encoded events over a buffered channel.
package broadcast

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Event types pushed to clients.
const (
	EventThinking     = "thinking"
	EventThinkingDone = "thinking_done"
	EventMessageDelta = "message_delta"
	EventMessageDone  = "message_done"
	EventTurnError    = "turn_error"
	EventDataChanged  = "data_changed"
)

// Event is one real-time update.
type Event struct {
	Type      string `json:"type"`
	ChatID    string `json:"chat_id,omitempty"`
	LedgerID  string `json:"ledger_id,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	Message   string `json:"message,omitempty"`
	Delta     string `json:"delta,omitempty"`
}

const clientBufferSize = 20

// Hub tracks subscribers per topic and broadcasts events to them.
// Thread-safe; slow clients are skipped rather than blocking the turn, and
// reconnect for catchup from persisted state.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[string]chan []byte // topic -> clientID -> events
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		topics: make(map[string]map[string]chan []byte),
		logger: logger,
	}
}

// Subscribe registers a client on a topic and returns its event channel.
func (h *Hub) Subscribe(topic, clientID string) <-chan []byte {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.topics[topic]
	if !ok {
		clients = make(map[string]chan []byte)
		h.topics[topic] = clients
	}

	ch := make(chan []byte, clientBufferSize)
	clients[clientID] = ch
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (h *Hub) Unsubscribe(topic, clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.topics[topic]
	if !ok {
		return
	}
	if ch, exists := clients[clientID]; exists {
		close(ch)
		delete(clients, clientID)
	}
	if len(clients) == 0 {
		delete(h.topics, topic)
	}
}

// Publish sends an event to every subscriber of a topic. Full client
// channels are skipped.
func (h *Hub) Publish(topic string, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to encode broadcast event", "type", event.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for clientID, ch := range h.topics[topic] {
		select {
		case ch <- payload:
		default:
			h.logger.Warn("dropping event for slow client", "topic", topic, "client_id", clientID)
		}
	}
}
