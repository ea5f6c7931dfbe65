// Package provider supplies ResponseProvider implementations for the widget:
// a canned static responder and an Ark-backed LLM responder.
package provider

import (
	"context"
	"time"

	"github.com/widgetlabs/chatbot-widget/internal/model/chat"
)

// Reference simulation constants from the original widget.
const (
	DefaultStaticReply   = "Hello! This is a static response from the bot."
	DefaultStaticLatency = 2000 * time.Millisecond
)

// Static returns a fixed reply after a simulated network delay. It is the
// fallback when no LLM credentials are configured.
type Static struct {
	Reply   string
	Latency time.Duration
}

// NewStatic returns a Static with the reference reply and latency.
func NewStatic() *Static {
	return &Static{Reply: DefaultStaticReply, Latency: DefaultStaticLatency}
}

// GetReply waits out the simulated latency, honouring context cancellation.
func (p *Static) GetReply(ctx context.Context, _ []chat.Message) (string, error) {
	if p.Latency > 0 {
		timer := time.NewTimer(p.Latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return p.Reply, nil
}
