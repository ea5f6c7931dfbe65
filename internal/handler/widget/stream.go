package widget

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/widgetlabs/chatbot-widget/internal/model/chat"
	"github.com/widgetlabs/chatbot-widget/pkg/utils"
)

// handleStream replays session snapshots over Server-Sent Events, for
// embedders that cannot hold a WebSocket.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	utils.SetupSSEHeaders(w)

	updates := make(chan chat.Session, 1)
	unsubscribe := h.ctrl.Subscribe(func(snap chat.Session) {
		pushLatest(updates, snap)
	})
	defer unsubscribe()

	log.Debug().Msg("opening widget state stream")
	utils.SendSSEEvent(w, flusher, "state", h.ctrl.Snapshot())

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("closing widget state stream")
			return
		case snap := <-updates:
			utils.SendSSEEvent(w, flusher, "state", snap)
		}
	}
}
