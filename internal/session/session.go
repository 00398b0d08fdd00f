// Package session holds per-user conversational state. Sessions are process
// memory only: they are created on the user's first message and destroyed when
// the user confirms the conversation is finished.
package session

import (
	"saludbot/internal/topics"
)

// History roles. The history is handed verbatim to the reply generator.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one history entry.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session is the conversational state of one user.
type Session struct {
	// Name is the display name, set exactly once from the first text message
	// after the session was created, lower-cased.
	Name string
	// Topic is empty until the user picks one from the menu.
	Topic topics.Topic
	// History is append-only; an assistant entry is appended right after the
	// generation call that produced it, never before.
	History []Message
	// AwaitingConfirmation is true only between a detected farewell and the
	// user's confirm/deny choice.
	AwaitingConfirmation bool
}

// Append adds one entry to the history.
func (s *Session) Append(role, content string) {
	s.History = append(s.History, Message{Role: role, Content: content})
}

// DropLast removes the most recent history entry. The controller uses it to
// roll back the user append when the generation call fails.
func (s *Session) DropLast() {
	if n := len(s.History); n > 0 {
		s.History = s.History[:n-1]
	}
}
