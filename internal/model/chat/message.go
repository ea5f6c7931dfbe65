package chat

import (
	"time"

	"github.com/google/uuid"
)

// Sender identifies the author of a message. The constant values double as
// the literal sender labels written into exported transcripts.
type Sender string

const (
	SenderSelf      Sender = "me"
	SenderAssistant Sender = "bot"
)

// Message is a single turn of the widget conversation. Text grows
// monotonically while an assistant reply is being revealed; IsTyping is true
// exactly for the duration of that reveal.
type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	IsTyping  bool      `json:"isTyping"`
	Failed    bool      `json:"failed,omitempty"`
	Likes     int       `json:"likes"`
	Dislikes  int       `json:"dislikes"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewMessage builds a fully revealed message from the given sender.
func NewMessage(sender Sender, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
}

// NewPlaceholder builds the empty assistant message inserted on send, to be
// filled in by the typing reveal.
func NewPlaceholder() Message {
	return Message{
		ID:        uuid.NewString(),
		Sender:    SenderAssistant,
		IsTyping:  true,
		CreatedAt: time.Now().UTC(),
	}
}
