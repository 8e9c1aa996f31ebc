package assistant

// Notifier pushes real-time chat updates to connected clients. Methods are
// fire-and-forget; delivery failures must not affect the turn.
type Notifier interface {
	// UpdateThinking shows or replaces the thinking indicator for a chat.
	UpdateThinking(chatID, message string)

	// StopThinking hides the thinking indicator.
	StopThinking(chatID string)

	// MessageDelta pushes a streamed content fragment of a message.
	MessageDelta(chatID, messageID, delta string)

	// MessageDone signals a message finished streaming.
	MessageDone(chatID, messageID string)

	// TurnError signals a turn-level failure.
	TurnError(chatID, message string)

	// DataChanged signals that a ledger's data was modified and views
	// should refresh.
	DataChanged(ledgerID string)
}
