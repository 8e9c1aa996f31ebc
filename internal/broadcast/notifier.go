package broadcast

// Notifier adapts the Hub to the assistant's notification interface. Chat
// events go to the chat topic; data-change events go to the ledger topic so
// every open view of the ledger refreshes.
type Notifier struct {
	hub *Hub
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

func (n *Notifier) UpdateThinking(chatID, message string) {
	n.hub.Publish(chatID, Event{Type: EventThinking, ChatID: chatID, Message: message})
}

func (n *Notifier) StopThinking(chatID string) {
	n.hub.Publish(chatID, Event{Type: EventThinkingDone, ChatID: chatID})
}

func (n *Notifier) MessageDelta(chatID, messageID, delta string) {
	n.hub.Publish(chatID, Event{Type: EventMessageDelta, ChatID: chatID, MessageID: messageID, Delta: delta})
}

func (n *Notifier) MessageDone(chatID, messageID string) {
	n.hub.Publish(chatID, Event{Type: EventMessageDone, ChatID: chatID, MessageID: messageID})
}

func (n *Notifier) TurnError(chatID, message string) {
	n.hub.Publish(chatID, Event{Type: EventTurnError, ChatID: chatID, Message: message})
}

func (n *Notifier) DataChanged(ledgerID string) {
	n.hub.Publish(ledgerID, Event{Type: EventDataChanged, LedgerID: ledgerID})
}
