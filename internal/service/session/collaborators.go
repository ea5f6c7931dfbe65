package session

import (
	"context"

	"github.com/widgetlabs/chatbot-widget/internal/model/chat"
)

// ResponseProvider produces the assistant reply for the conversation so far.
// Implementations own their latency and timeout behaviour; the controller
// only requires eventual resolution or an error.
type ResponseProvider interface {
	GetReply(ctx context.Context, conversation []chat.Message) (string, error)
}

// Clipboard receives text copied from a message bubble.
type Clipboard interface {
	WriteText(text string) error
}

// Confirmer asks the user a yes/no question before destructive operations.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Downloader receives the exported transcript.
type Downloader interface {
	Download(filename, mimeType string, data []byte) error
}

// Notifier surfaces non-fatal outcomes (copy results, failed replies) to the
// user.
type Notifier interface {
	Notify(message string)
}

// Deps bundles the controller's collaborators. Nil fields fall back to inert
// defaults so tests can supply only what they observe.
type Deps struct {
	Provider   ResponseProvider
	Clipboard  Clipboard
	Confirmer  Confirmer
	Downloader Downloader
	Notifier   Notifier
}

func (d Deps) withDefaults() Deps {
	if d.Provider == nil {
		d.Provider = noopProvider{}
	}
	if d.Clipboard == nil {
		d.Clipboard = noopClipboard{}
	}
	if d.Confirmer == nil {
		d.Confirmer = alwaysConfirm{}
	}
	if d.Downloader == nil {
		d.Downloader = noopDownloader{}
	}
	if d.Notifier == nil {
		d.Notifier = noopNotifier{}
	}
	return d
}

type noopProvider struct{}

func (noopProvider) GetReply(context.Context, []chat.Message) (string, error) { return "", nil }

type noopClipboard struct{}

func (noopClipboard) WriteText(string) error { return nil }

type alwaysConfirm struct{}

func (alwaysConfirm) Confirm(string) bool { return true }

type noopDownloader struct{}

func (noopDownloader) Download(string, string, []byte) error { return nil }

type noopNotifier struct{}

func (noopNotifier) Notify(string) {}
