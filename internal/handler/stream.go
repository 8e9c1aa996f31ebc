package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"ledgerly/internal/broadcast"
	"ledgerly/internal/domain/repositories"
	"ledgerly/internal/httputil"
)

// keepAliveInterval is how often an SSE comment is written to keep
// intermediaries from timing out an idle stream.
const keepAliveInterval = 15 * time.Second

// StreamHandler serves assistant events over Server-Sent Events.
type StreamHandler struct {
	hub    *broadcast.Hub
	chats  repositories.ChatRepository
	logger *slog.Logger
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(hub *broadcast.Hub, chats repositories.ChatRepository, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{
		hub:    hub,
		chats:  chats,
		logger: logger,
	}
}

// StreamChat streams thinking, delta and done events of one chat
// GET /api/chats/{id}/stream
func (h *StreamHandler) StreamChat(w http.ResponseWriter, r *http.Request) {
	chatID, ok := PathParam(w, r, "id", "Chat ID")
	if !ok {
		return
	}

	// Ownership check before subscribing.
	if _, err := h.chats.GetChat(r.Context(), chatID, httputil.GetUserID(r)); err != nil {
		handleError(w, err)
		return
	}

	h.stream(w, r, chatID)
}

// StreamLedger streams data_changed events of the caller's ledger
// GET /api/events
func (h *StreamHandler) StreamLedger(w http.ResponseWriter, r *http.Request) {
	ledgerID := httputil.GetLedgerID(r)
	if ledgerID == "" {
		httputil.RespondError(w, http.StatusForbidden, "no ledger associated with token")
		return
	}
	h.stream(w, r, ledgerID)
}

func (h *StreamHandler) stream(w http.ResponseWriter, r *http.Request, topic string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // disable nginx buffering
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	clientID := uuid.NewString()
	events := h.hub.Subscribe(topic, clientID)
	defer h.hub.Unsubscribe(topic, clientID)

	h.logger.Debug("SSE stream established", "topic", topic, "client_id", clientID)

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.logger.Debug("SSE client disconnected", "topic", topic, "client_id", clientID)
			return

		case payload, open := <-events:
			if !open {
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				h.logger.Debug("SSE write failed", "topic", topic, "client_id", clientID, "error", err)
				return
			}
			flusher.Flush()

		case <-ticker.C:
			// SSE comment line, ignored by clients.
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
