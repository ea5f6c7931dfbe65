// Package handler wires HTTP routes to the widget session controller.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/widgetlabs/chatbot-widget/internal/collab"
	widgetHandler "github.com/widgetlabs/chatbot-widget/internal/handler/widget"
	middlewarePkg "github.com/widgetlabs/chatbot-widget/internal/middleware"
	"github.com/widgetlabs/chatbot-widget/internal/service/session"
)

// NewRouter builds the full HTTP surface: demo page at the root, widget API
// under /api/widget.
func NewRouter(ctrl *session.Controller, notices *collab.NoticeBoard) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	h := widgetHandler.New(ctrl, notices)

	r.Get("/", h.PageHandler())
	r.Route("/api/widget", func(api chi.Router) {
		h.RegisterRoutes(api)
	})

	return r
}
