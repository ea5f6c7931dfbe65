package widget

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/widgetlabs/chatbot-widget/internal/model/chat"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// pushLatest delivers snap into a 1-slot channel, evicting a stale buffered
// snapshot if the consumer lags. Intermediate states may coalesce away, but
// the newest snapshot is always the one left to read, so a stalled client
// catches up to the final state of a burst instead of rendering a stale one.
func pushLatest(updates chan chat.Session, snap chat.Session) {
	for {
		select {
		case updates <- snap:
			return
		default:
		}
		select {
		case <-updates:
		default:
		}
	}
}

// handleWebSocket pushes one JSON session snapshot per state change. The
// connection is write-only; commands go through the REST routes.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	// Latest-value channel so a slow client cannot stall the controller's
	// synchronous broadcast.
	updates := make(chan chat.Session, 1)
	unsubscribe := h.ctrl.Subscribe(func(snap chat.Session) {
		pushLatest(updates, snap)
	})
	defer unsubscribe()

	// Reader goroutine only to observe the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(h.ctrl.Snapshot()); err != nil {
		return
	}

	for {
		select {
		case snap := <-updates:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(snap); err != nil {
				log.Debug().Err(err).Msg("websocket write failed, closing")
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
