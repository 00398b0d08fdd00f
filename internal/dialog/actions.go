package dialog

import (
	"context"

	"saludbot/internal/session"
	"saludbot/internal/topics"
)

// Action is an outbound effect the transport layer renders for the user.
// A single turn may produce several actions in order.
type Action interface{ isAction() }

// TextAction sends a plain text message.
type TextAction struct {
	Text string
}

// Option is one selectable entry of a MenuAction.
type Option struct {
	Label string
	Value SelectionValue
}

// MenuAction sends a text message with an inline selection keyboard.
type MenuAction struct {
	Text    string
	Options []Option
}

// LinkButton is a URL button attached below a media card.
type LinkButton struct {
	Label string
	URL   string
}

// MediaAction sends a photo with an optional caption and link buttons.
type MediaAction struct {
	PhotoURL string
	Caption  string
	Buttons  []LinkButton
}

func (TextAction) isAction()  {}
func (MenuAction) isAction()  {}
func (MediaAction) isAction() {}

// Card is one media result returned by a MediaSource lookup.
// Topic carries the tag the controller filters on; Title doubles as caption.
type Card struct {
	Topic    topics.Topic
	PhotoURL string
	Title    string
	Buttons  []LinkButton
}

// Generator produces a conversational reply from the accumulated history.
// The returned text is the assistant turn; history mutation is the caller's job.
type Generator interface {
	Generate(ctx context.Context, history []session.Message) (string, error)
}

// MediaSource resolves a user request for images or videos into cards.
type MediaSource interface {
	Lookup(ctx context.Context, query string) ([]Card, error)
}
