// Package session implements the widget state machine tying the conversation
// store, the typing scheduler and the external collaborators together.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/widgetlabs/chatbot-widget/internal/model/chat"
	"github.com/widgetlabs/chatbot-widget/internal/service/conversation"
	"github.com/widgetlabs/chatbot-widget/internal/service/typing"
)

type phase int

const (
	phaseIdle phase = iota
	phaseAwaiting
	phaseRevealing
)

// Controller owns the full state of one widget instance. All mutation goes
// through its methods; the presentation layer is a read-only subscriber.
//
// Deferred work (reply latency, welcome delay, pulse reset, reveal ticks) is
// keyed by a monotonically increasing epoch. ClearChat and NewSession bump
// the epoch, so a stale timer that fires afterwards observes the mismatch and
// no-ops instead of writing into a reset conversation.
type Controller struct {
	cfg   Config
	deps  Deps
	store *conversation.Store
	sched *typing.Scheduler

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.RWMutex
	input       string
	isOpen      bool
	isMinimized bool
	menuOpen    bool
	theme       chat.Theme
	fontSize    int
	newMessage  bool
	phase       phase
	revealIndex int
	epoch       uint64

	subMu   sync.Mutex
	subs    map[int]func(chat.Session)
	nextSub int
}

// New builds an idle, closed controller.
func New(cfg Config, deps Deps) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		cfg:         cfg.withDefaults(),
		deps:        deps.withDefaults(),
		sched:       typing.NewScheduler(),
		ctx:         ctx,
		cancel:      cancel,
		theme:       chat.ThemeLight,
		revealIndex: -1,
		subs:        make(map[int]func(chat.Session)),
	}
	c.fontSize = c.cfg.FontSize
	c.store = conversation.NewStore(c.broadcast)
	return c
}

// Stop tears the session down: cancels any in-flight reveal and releases the
// provider context. Meant for widget unmount.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.epoch++
	c.mu.Unlock()

	c.sched.Cancel()
	c.cancel()
}

// Subscribe registers a state listener and returns its unsubscribe func. The
// listener is invoked synchronously after every state change.
func (c *Controller) Subscribe(fn func(chat.Session)) func() {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

// Snapshot returns the current observable session state.
func (c *Controller) Snapshot() chat.Session {
	c.mu.RLock()
	snap := chat.Session{
		Input:       c.input,
		IsOpen:      c.isOpen,
		IsMinimized: c.isMinimized,
		Theme:       c.theme,
		FontSize:    c.fontSize,
		MenuOpen:    c.menuOpen,
		NewMessage:  c.newMessage,
	}
	c.mu.RUnlock()

	snap.Messages = c.store.Snapshot()
	return snap
}

// State names the conceptual state machine position, for logs and debugging.
func (c *Controller) State() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.isOpen {
		return "closed"
	}
	switch c.phase {
	case phaseAwaiting:
		return "open-awaiting-reply"
	case phaseRevealing:
		return "open-revealing"
	default:
		return "open-idle"
	}
}

// Open shows the panel. Opening an empty conversation triggers the welcome
// sequence.
func (c *Controller) Open() {
	// Read before taking c.mu: append guards evaluate under the store lock
	// and read controller state, so the reverse nesting is off limits.
	empty := c.store.Len() == 0

	c.mu.Lock()
	if c.isOpen && !c.isMinimized {
		c.mu.Unlock()
		return
	}
	c.isOpen = true
	c.isMinimized = false
	fresh := c.phase == phaseIdle && empty
	epoch := c.epoch
	c.mu.Unlock()

	c.broadcast()
	if fresh {
		c.welcome(epoch)
	}
}

// Close hides the panel. The conversation and any in-flight reveal are left
// untouched; reopening resumes mid-reveal state as-is.
func (c *Controller) Close() {
	c.mu.Lock()
	c.isOpen = false
	c.isMinimized = false
	c.menuOpen = false
	c.mu.Unlock()

	c.broadcast()
}

// Minimize collapses the panel to its header without unmounting it. Like
// Close it is non-destructive.
func (c *Controller) Minimize() {
	c.mu.Lock()
	if !c.isOpen {
		c.mu.Unlock()
		return
	}
	c.isMinimized = true
	c.menuOpen = false
	c.mu.Unlock()

	c.broadcast()
}

// Send appends the user's message followed by an assistant placeholder and
// requests a reply. Blank input is ignored; the text is stored untrimmed.
// Send is only accepted while the widget is open and idle, which is what
// guarantees the single-outstanding-reveal invariant.
func (c *Controller) Send(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	c.mu.Lock()
	if !c.isOpen || c.phase != phaseIdle {
		state := c.phase
		c.mu.Unlock()
		log.Debug().Int("phase", int(state)).Msg("send rejected: not idle")
		return
	}
	c.phase = phaseAwaiting
	c.input = ""
	epoch := c.epoch
	c.mu.Unlock()

	guard := c.epochGuard(epoch)
	c.store.AppendIf(chat.NewMessage(chat.SenderSelf, text), guard)
	index, ok := c.store.AppendIf(chat.NewPlaceholder(), guard)
	if !ok {
		// A reset raced the send; the reset owns the conversation now.
		return
	}

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return
	}
	c.revealIndex = index
	c.mu.Unlock()

	go c.requestReply(epoch, index)
}

// epochGuard returns a store guard that holds while the session has not been
// reset since epoch was read.
func (c *Controller) epochGuard(epoch uint64) func() bool {
	return func() bool {
		c.mu.RLock()
		defer c.mu.RUnlock()
		return c.epoch == epoch
	}
}

// SetInput mirrors the pending input field so subscribers stay in sync while
// the user types.
func (c *Controller) SetInput(text string) {
	c.mu.Lock()
	c.input = text
	c.mu.Unlock()

	c.broadcast()
}

// ClearChat empties the conversation after user confirmation, cancelling any
// active reveal first so no stale tick writes into the cleared store.
func (c *Controller) ClearChat() {
	if !c.deps.Confirmer.Confirm("Are you sure you want to clear the chat?") {
		return
	}

	c.mu.Lock()
	c.epoch++
	c.phase = phaseIdle
	c.revealIndex = -1
	c.newMessage = false
	c.mu.Unlock()

	c.sched.Cancel()
	c.store.Clear()
}

// NewSession unconditionally resets to an open, empty conversation and runs
// the welcome sequence again.
func (c *Controller) NewSession() {
	c.mu.Lock()
	c.epoch++
	epoch := c.epoch
	c.phase = phaseIdle
	c.revealIndex = -1
	c.newMessage = false
	c.input = ""
	c.isOpen = true
	c.isMinimized = false
	c.mu.Unlock()

	c.sched.Cancel()
	c.store.Clear()
	c.welcome(epoch)
}

// ToggleTheme flips between light and dark.
func (c *Controller) ToggleTheme() {
	c.mu.Lock()
	c.theme = c.theme.Toggle()
	c.mu.Unlock()

	c.broadcast()
}

// SetFontSize applies size clamped into the configured bounds.
func (c *Controller) SetFontSize(size int) {
	c.mu.Lock()
	if size < c.cfg.FontMin {
		size = c.cfg.FontMin
	}
	if size > c.cfg.FontMax {
		size = c.cfg.FontMax
	}
	changed := size != c.fontSize
	c.fontSize = size
	c.mu.Unlock()

	if changed {
		c.broadcast()
	}
}

// ToggleMenu shows or hides the header menu.
func (c *Controller) ToggleMenu() {
	c.mu.Lock()
	c.menuOpen = !c.menuOpen
	c.mu.Unlock()

	c.broadcast()
}

// Like increments the like counter of the assistant message at index.
func (c *Controller) Like(index int) {
	c.store.LikeAt(index)
}

// Dislike increments the dislike counter of the assistant message at index.
func (c *Controller) Dislike(index int) {
	c.store.DislikeAt(index)
}

// CopyText hands text to the clipboard collaborator and acknowledges the
// outcome to the user.
func (c *Controller) CopyText(text string) {
	if err := c.deps.Clipboard.WriteText(text); err != nil {
		log.Warn().Err(err).Msg("clipboard write failed")
		c.deps.Notifier.Notify("Could not copy message to clipboard")
		return
	}
	c.deps.Notifier.Notify("Message copied to clipboard!")
}

// Transcript renders the conversation in the export format.
func (c *Controller) Transcript() string {
	return chat.Transcript(c.store.Snapshot())
}

// ExportChat serializes the conversation and hands it to the download
// collaborator as chat.txt.
func (c *Controller) ExportChat() {
	data := []byte(c.Transcript())
	if err := c.deps.Downloader.Download("chat.txt", "text/plain;charset=utf-8", data); err != nil {
		log.Warn().Err(err).Msg("transcript download failed")
		c.deps.Notifier.Notify("Could not export the chat")
	}
}

// welcome inserts the assistant placeholder and, after the configured delay,
// reveals the greeting. Equivalent to an unprompted reply.
//
// The placeholder is appended through an epoch-guarded store operation: a
// welcome made stale by a concurrent reset (NewSession or ClearChat, possibly
// fired from inside a broadcast callback) fails the guard and never inserts
// an orphan typing bubble into the fresh conversation.
func (c *Controller) welcome(epoch uint64) {
	index, ok := c.store.AppendIf(chat.NewPlaceholder(), func() bool {
		c.mu.RLock()
		defer c.mu.RUnlock()
		return c.epoch == epoch && c.phase == phaseIdle
	})
	if !ok {
		return
	}

	c.mu.Lock()
	if c.epoch != epoch {
		// The reset that bumped the epoch also cleared the store, taking
		// the just-appended placeholder with it.
		c.mu.Unlock()
		return
	}
	c.phase = phaseAwaiting
	c.revealIndex = index
	c.mu.Unlock()

	time.AfterFunc(c.cfg.WelcomeDelay, func() {
		c.mu.Lock()
		if c.epoch != epoch || c.phase != phaseAwaiting {
			c.mu.Unlock()
			return
		}
		c.phase = phaseRevealing
		c.mu.Unlock()

		c.startReveal(epoch, index, c.cfg.WelcomeText)
	})
}

// requestReply awaits the provider and either starts the reveal or marks the
// placeholder failed. A bumped epoch means the conversation was reset while
// we waited, in which case the reply is dropped.
func (c *Controller) requestReply(epoch uint64, index int) {
	reply, err := c.deps.Provider.GetReply(c.ctx, c.store.Snapshot())

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return
	}
	if err != nil {
		c.phase = phaseIdle
		c.revealIndex = -1
		c.mu.Unlock()

		log.Warn().Err(err).Msg("response provider failed")
		c.failPlaceholder(epoch, index)
		return
	}
	c.phase = phaseRevealing
	c.mu.Unlock()

	c.startReveal(epoch, index, reply)
}

func (c *Controller) failPlaceholder(epoch uint64, index int) {
	text := "Sorry, I could not produce a reply. Please try again."
	typing := false
	failed := true
	patch := conversation.Patch{Text: &text, IsTyping: &typing, Failed: &failed}
	if !c.store.UpdateAtIf(index, patch, c.epochGuard(epoch)) {
		return
	}
	c.deps.Notifier.Notify("The assistant failed to reply")
}

func (c *Controller) startReveal(epoch uint64, index int, text string) {
	err := c.sched.Reveal(c.store, index, text, c.cfg.TickInterval, c.broadcast, func() {
		c.revealDone(epoch)
	})
	if err != nil {
		// The controller transitions guarantee mutual exclusion, so this is a
		// bug, not a runtime condition.
		log.Error().Err(err).Int("index", index).Msg("reveal refused")
	}
}

// revealDone returns to idle and raises the transient new-message pulse,
// scheduling its reset.
func (c *Controller) revealDone(epoch uint64) {
	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return
	}
	c.phase = phaseIdle
	c.revealIndex = -1
	c.newMessage = true
	c.mu.Unlock()

	c.broadcast()

	time.AfterFunc(c.cfg.PulseDuration, func() {
		c.mu.Lock()
		if c.epoch != epoch || !c.newMessage {
			c.mu.Unlock()
			return
		}
		c.newMessage = false
		c.mu.Unlock()

		c.broadcast()
	})
}

// broadcast pushes a fresh snapshot to every subscriber. It must never run
// while the state mutex is held.
func (c *Controller) broadcast() {
	snap := c.Snapshot()

	c.subMu.Lock()
	fns := make([]func(chat.Session), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
