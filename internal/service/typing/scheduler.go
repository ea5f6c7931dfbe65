// Package typing drives the character-by-character reveal of an assistant
// reply, simulating live typing at a fixed cadence.
package typing

import (
	"errors"
	"sync"
	"time"

	"github.com/widgetlabs/chatbot-widget/internal/service/conversation"
)

// ErrRevealActive is returned when a reveal is started while another one is
// still running. The session controller guarantees mutual exclusion, so
// hitting this is a programming error rather than a recoverable condition.
var ErrRevealActive = errors.New("typing: reveal already active")

// Target is the slice of store behaviour the scheduler mutates. The guard is
// evaluated inside the target's own critical section, so a cancelled tick is
// rejected atomically with respect to the write it would have made.
type Target interface {
	UpdateAtIf(index int, patch conversation.Patch, ok func() bool) bool
}

// Scheduler runs at most one reveal at a time. Cancellation is keyed by a
// generation counter: a tick that fires after Cancel observes a stale
// generation and exits without touching the target.
type Scheduler struct {
	mu     sync.Mutex
	gen    uint64
	active bool
}

// NewScheduler returns an idle scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Reveal starts writing fullText into target at index, one character per
// interval tick. onTick fires after every applied tick, including the
// terminal one, so the presentation layer can scroll to the bottom. onDone
// fires once after the terminal update clears the typing flag. Both callbacks
// may be nil.
func (s *Scheduler) Reveal(target Target, index int, fullText string, interval time.Duration, onTick, onDone func()) error {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return ErrRevealActive
	}
	s.active = true
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	go s.run(gen, target, index, fullText, interval, onTick, onDone)
	return nil
}

// Cancel stops the active reveal, if any. Ticks already queued by the runtime
// observe the bumped generation and do not apply.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	s.gen++
	s.active = false
	s.mu.Unlock()
}

// Active reports whether a reveal is currently running.
func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Scheduler) run(gen uint64, target Target, index int, fullText string, interval time.Duration, onTick, onDone func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	runes := []rune(fullText)
	revealed := 0
	alive := func() bool { return s.live(gen) }
	for range ticker.C {
		if revealed > len(runes) {
			typing := false
			if !target.UpdateAtIf(index, conversation.Patch{IsTyping: &typing}, alive) {
				s.retire(gen)
				return
			}
			if onTick != nil {
				onTick()
			}
			s.retire(gen)
			if onDone != nil {
				onDone()
			}
			return
		}

		text := string(runes[:revealed])
		if !target.UpdateAtIf(index, conversation.Patch{Text: &text}, alive) {
			s.retire(gen)
			return
		}
		revealed++
		if onTick != nil {
			onTick()
		}
	}
}

// live reports whether gen is still the current generation.
func (s *Scheduler) live(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen == gen
}

// retire marks the reveal finished unless a cancel superseded it already.
func (s *Scheduler) retire(gen uint64) {
	s.mu.Lock()
	if s.gen == gen {
		s.active = false
	}
	s.mu.Unlock()
}
