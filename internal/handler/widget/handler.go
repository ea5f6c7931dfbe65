// Package widget exposes the session controller over HTTP for the embedded
// demo page: one route per widget operation, plus WebSocket and SSE state
// push.
package widget

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/widgetlabs/chatbot-widget/internal/collab"
	"github.com/widgetlabs/chatbot-widget/internal/service/session"
	"github.com/widgetlabs/chatbot-widget/pkg/utils"
)

// Handler serves the widget API.
type Handler struct {
	ctrl    *session.Controller
	notices *collab.NoticeBoard
}

// New creates the widget handler.
func New(ctrl *session.Controller, notices *collab.NoticeBoard) *Handler {
	return &Handler{ctrl: ctrl, notices: notices}
}

// RegisterRoutes mounts the widget API onto r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/state", h.handleState)
	r.Get("/notices", h.handleNotices)
	r.Get("/export", h.handleExportDownload)
	r.Get("/ws", h.handleWebSocket)
	r.Get("/stream", h.handleStream)

	r.Post("/open", h.action(h.ctrl.Open))
	r.Post("/close", h.action(h.ctrl.Close))
	r.Post("/minimize", h.action(h.ctrl.Minimize))
	r.Post("/new-session", h.action(h.ctrl.NewSession))
	r.Post("/theme", h.action(h.ctrl.ToggleTheme))
	r.Post("/menu", h.action(h.ctrl.ToggleMenu))
	r.Post("/export", h.action(h.ctrl.ExportChat))

	r.Post("/send", h.handleSend)
	r.Post("/input", h.handleInput)
	r.Post("/clear", h.handleClear)
	r.Post("/font", h.handleFont)
	r.Post("/copy", h.handleCopy)
	r.Post("/messages/{index}/like", h.reaction(h.ctrl.Like))
	r.Post("/messages/{index}/dislike", h.reaction(h.ctrl.Dislike))
}

// action wraps a parameterless controller operation.
func (h *Handler) action(op func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		op()
		h.respondState(w)
	}
}

// reaction wraps a message-index controller operation.
func (h *Handler) reaction(op func(int)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "invalid message index")
			return
		}
		op(index)
		h.respondState(w)
	}
}

func (h *Handler) handleState(w http.ResponseWriter, _ *http.Request) {
	h.respondState(w)
}

func (h *Handler) handleNotices(w http.ResponseWriter, _ *http.Request) {
	notices := h.notices.Drain()
	if notices == nil {
		notices = []string{}
	}
	utils.RespondJSON(w, http.StatusOK, map[string][]string{"notices": notices})
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.ctrl.Send(payload.Text)
	utils.RespondJSON(w, http.StatusAccepted, h.ctrl.Snapshot())
}

func (h *Handler) handleInput(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.ctrl.SetInput(payload.Text)
	h.respondState(w)
}

// handleClear relays the client-side confirmation. The page asks the user
// before calling, so an unconfirmed call is answered without touching state.
func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Confirmed bool `json:"confirmed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !payload.Confirmed {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
		return
	}

	h.ctrl.ClearChat()
	h.respondState(w)
}

func (h *Handler) handleFont(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Size int `json:"size"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.ctrl.SetFontSize(payload.Size)
	h.respondState(w)
}

func (h *Handler) handleCopy(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.ctrl.CopyText(payload.Text)
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleExportDownload(w http.ResponseWriter, _ *http.Request) {
	transcript := h.ctrl.Transcript()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="chat.txt"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(transcript))
}

func (h *Handler) respondState(w http.ResponseWriter) {
	utils.RespondJSON(w, http.StatusOK, h.ctrl.Snapshot())
}
