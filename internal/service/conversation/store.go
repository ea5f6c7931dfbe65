package conversation

import (
	"sync"

	"github.com/widgetlabs/chatbot-widget/internal/model/chat"
)

// Patch is a partial update applied to a stored message. Nil fields are left
// untouched.
type Patch struct {
	Text     *string
	IsTyping *bool
	Failed   *bool
}

// Store holds the ordered conversation of a single widget session. Positions
// are stable for the lifetime of the session; the only whole-sale mutation is
// Clear, which invalidates all previously issued indices. Every mutation is
// followed by a synchronous change notification so the presentation layer can
// re-render.
type Store struct {
	mu       sync.RWMutex
	messages []chat.Message
	onChange func()
}

// NewStore returns an empty store. onChange may be nil.
func NewStore(onChange func()) *Store {
	return &Store{onChange: onChange}
}

// Append adds a message at the end and returns its position.
func (s *Store) Append(msg chat.Message) int {
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	index := len(s.messages) - 1
	s.mu.Unlock()

	s.notify()
	return index
}

// AppendIf adds a message only when ok() still holds. The guard runs inside
// the store's critical section, so the decision and the append are one atomic
// step with respect to Clear: a caller whose session was reset while it was
// en route can never insert into the fresh conversation.
func (s *Store) AppendIf(msg chat.Message, ok func() bool) (int, bool) {
	s.mu.Lock()
	if !ok() {
		s.mu.Unlock()
		return -1, false
	}
	s.messages = append(s.messages, msg)
	index := len(s.messages) - 1
	s.mu.Unlock()

	s.notify()
	return index, true
}

// UpdateAt applies a partial update to the message at index. An out-of-bounds
// index is a silent no-op: a reveal tick may race against an intervening
// Clear, and the stale write must not crash or resurrect anything.
func (s *Store) UpdateAt(index int, patch Patch) {
	s.mu.Lock()
	if index < 0 || index >= len(s.messages) {
		s.mu.Unlock()
		return
	}
	msg := &s.messages[index]
	if patch.Text != nil {
		msg.Text = *patch.Text
	}
	if patch.IsTyping != nil {
		msg.IsTyping = *patch.IsTyping
	}
	if patch.Failed != nil {
		msg.Failed = *patch.Failed
	}
	s.mu.Unlock()

	s.notify()
}

// UpdateAtIf applies a partial update only when ok() still holds, deciding
// under the store lock like AppendIf. A reveal tick whose schedule was
// cancelled concurrently observes the failed guard and applies nothing.
func (s *Store) UpdateAtIf(index int, patch Patch, ok func() bool) bool {
	s.mu.Lock()
	if index < 0 || index >= len(s.messages) || !ok() {
		s.mu.Unlock()
		return false
	}
	msg := &s.messages[index]
	if patch.Text != nil {
		msg.Text = *patch.Text
	}
	if patch.IsTyping != nil {
		msg.IsTyping = *patch.IsTyping
	}
	if patch.Failed != nil {
		msg.Failed = *patch.Failed
	}
	s.mu.Unlock()

	s.notify()
	return true
}

// Clear empties the conversation.
func (s *Store) Clear() {
	s.mu.Lock()
	s.messages = nil
	s.mu.Unlock()

	s.notify()
}

// LikeAt increments the like counter of the assistant message at index.
// Invalid indices and self messages are no-ops.
func (s *Store) LikeAt(index int) {
	s.react(index, func(msg *chat.Message) { msg.Likes++ })
}

// DislikeAt increments the dislike counter of the assistant message at index.
// Invalid indices and self messages are no-ops.
func (s *Store) DislikeAt(index int) {
	s.react(index, func(msg *chat.Message) { msg.Dislikes++ })
}

func (s *Store) react(index int, apply func(*chat.Message)) {
	s.mu.Lock()
	if index < 0 || index >= len(s.messages) || s.messages[index].Sender != chat.SenderAssistant {
		s.mu.Unlock()
		return
	}
	apply(&s.messages[index])
	s.mu.Unlock()

	s.notify()
}

// Len returns the number of stored messages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Snapshot returns a copy of the conversation.
func (s *Store) Snapshot() []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]chat.Message, len(s.messages))
	copy(copied, s.messages)
	return copied
}

// notify runs outside the store lock so subscribers may read back state.
func (s *Store) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}
