package notify

import (
	"sync"
	"time"
)

// maxMessages bounds the history kept by a TUISink.
const maxMessages = 50

// Message is a stored notification.
type Message struct {
	Text      string
	Kind      Kind
	Timestamp time.Time
}

// TUISink stores notifications for the status bar. onMessage, when set, is
// called for each new message so the UI can schedule a redraw.
type TUISink struct {
	mu        sync.RWMutex
	messages  []Message
	onMessage func(msg Message)
}

// NewTUISink creates an empty sink.
func NewTUISink(onMessage func(msg Message)) *TUISink {
	return &TUISink{onMessage: onMessage}
}

// Notify records msg.
func (s *TUISink) Notify(kind Kind, msg string) {
	message := Message{Text: msg, Kind: kind, Timestamp: time.Now()}

	s.mu.Lock()
	s.messages = append(s.messages, message)
	if len(s.messages) > maxMessages {
		s.messages = s.messages[len(s.messages)-maxMessages:]
	}
	s.mu.Unlock()

	if s.onMessage != nil {
		s.onMessage(message)
	}
}

// Latest returns the most recent message.
func (s *TUISink) Latest() (Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.messages) == 0 {
		return Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}

// All returns a copy of the stored messages, oldest first.
func (s *TUISink) All() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	copied := make([]Message, len(s.messages))
	copy(copied, s.messages)
	return copied
}

// Clear drops every stored message.
func (s *TUISink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}
