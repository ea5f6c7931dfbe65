package collab

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// NoticeBoard records user-facing notices and fans them out to listeners.
// The HTTP surface drains it to show toast messages.
type NoticeBoard struct {
	mu        sync.Mutex
	notices   []string
	listeners []func(string)
}

// NewNoticeBoard returns an empty board.
func NewNoticeBoard() *NoticeBoard {
	return &NoticeBoard{}
}

// Notify records the message and invokes every listener.
func (b *NoticeBoard) Notify(message string) {
	b.mu.Lock()
	b.notices = append(b.notices, message)
	listeners := append([]func(string){}, b.listeners...)
	b.mu.Unlock()

	log.Info().Str("notice", message).Msg("user notice")
	for _, fn := range listeners {
		fn(message)
	}
}

// Listen registers a notice listener.
func (b *NoticeBoard) Listen(fn func(string)) {
	b.mu.Lock()
	b.listeners = append(b.listeners, fn)
	b.mu.Unlock()
}

// Drain returns and clears the accumulated notices.
func (b *NoticeBoard) Drain() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	notices := b.notices
	b.notices = nil
	return notices
}
