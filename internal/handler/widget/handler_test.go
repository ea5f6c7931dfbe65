package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/widgetlabs/chatbot-widget/internal/collab"
	"github.com/widgetlabs/chatbot-widget/internal/model/chat"
	"github.com/widgetlabs/chatbot-widget/internal/service/session"
)

type cannedProvider struct{ reply string }

func (p cannedProvider) GetReply(context.Context, []chat.Message) (string, error) {
	return p.reply, nil
}

func setupRouter(t *testing.T) (*chi.Mux, *session.Controller, *collab.NoticeBoard) {
	t.Helper()
	notices := collab.NewNoticeBoard()
	ctrl := session.New(session.Config{
		TickInterval:  time.Millisecond,
		WelcomeDelay:  time.Millisecond,
		PulseDuration: 10 * time.Millisecond,
		FontMin:       12,
		FontMax:       20,
		FontSize:      14,
		WelcomeText:   "Hello!",
	}, session.Deps{
		Provider: cannedProvider{reply: "canned"},
		Notifier: notices,
	})
	t.Cleanup(ctrl.Stop)

	handler := New(ctrl, notices)
	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, ctrl, notices
}

func waitIdle(t *testing.T, ctrl *session.Controller) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if ctrl.State() == "open-idle" {
			idle := true
			for _, msg := range ctrl.Snapshot().Messages {
				if msg.IsTyping {
					idle = false
					break
				}
			}
			if idle {
				return
			}
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("controller never became idle")
}

func postJSON(r *chi.Mux, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func getState(t *testing.T, r *chi.Mux) chat.Session {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var snap chat.Session
	if err := json.Unmarshal(resp.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return snap
}

func TestStateInitiallyClosed(t *testing.T) {
	r, _, _ := setupRouter(t)

	snap := getState(t, r)
	if snap.IsOpen {
		t.Fatal("widget should start closed")
	}
	if len(snap.Messages) != 0 {
		t.Fatalf("expected empty conversation, got %d messages", len(snap.Messages))
	}
}

func TestOpenRunsWelcome(t *testing.T) {
	r, ctrl, _ := setupRouter(t)

	resp := postJSON(r, "/open", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	waitIdle(t, ctrl)
	snap := getState(t, r)
	if len(snap.Messages) != 1 || snap.Messages[0].Text != "Hello!" {
		t.Fatalf("expected revealed welcome, got %+v", snap.Messages)
	}
}

func TestSendAccepted(t *testing.T) {
	r, ctrl, _ := setupRouter(t)
	postJSON(r, "/open", nil)
	waitIdle(t, ctrl)

	resp := postJSON(r, "/send", map[string]string{"text": "hi"})
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.Code)
	}

	var snap chat.Session
	if err := json.Unmarshal(resp.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(snap.Messages) != 3 {
		t.Fatalf("expected welcome + message + placeholder, got %d", len(snap.Messages))
	}

	waitIdle(t, ctrl)
	snap = getState(t, r)
	if snap.Messages[2].Text != "canned" {
		t.Fatalf("expected revealed reply, got %q", snap.Messages[2].Text)
	}
}

func TestSendInvalidBody(t *testing.T) {
	r, _, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/send", strings.NewReader("not json"))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestClearUnconfirmed(t *testing.T) {
	r, ctrl, _ := setupRouter(t)
	postJSON(r, "/open", nil)
	waitIdle(t, ctrl)

	resp := postJSON(r, "/clear", map[string]bool{"confirmed": false})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !bytes.Contains(resp.Body.Bytes(), []byte("cancelled")) {
		t.Fatalf("expected cancelled status, got %s", resp.Body.String())
	}
	if len(getState(t, r).Messages) != 1 {
		t.Fatal("unconfirmed clear must not touch the conversation")
	}
}

func TestClearConfirmed(t *testing.T) {
	r, ctrl, _ := setupRouter(t)
	postJSON(r, "/open", nil)
	waitIdle(t, ctrl)

	resp := postJSON(r, "/clear", map[string]bool{"confirmed": true})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if len(getState(t, r).Messages) != 0 {
		t.Fatal("confirmed clear must empty the conversation")
	}
}

func TestReactionInvalidIndex(t *testing.T) {
	r, _, _ := setupRouter(t)

	resp := postJSON(r, "/messages/abc/like", nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestReactionOutOfRangeIsNoop(t *testing.T) {
	r, ctrl, _ := setupRouter(t)
	postJSON(r, "/open", nil)
	waitIdle(t, ctrl)

	resp := postJSON(r, "/messages/99/like", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	resp = postJSON(r, "/messages/0/like", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if likes := getState(t, r).Messages[0].Likes; likes != 1 {
		t.Fatalf("expected 1 like, got %d", likes)
	}
}

func TestFontClampedViaAPI(t *testing.T) {
	r, _, _ := setupRouter(t)

	resp := postJSON(r, "/font", map[string]int{"size": 99})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if size := getState(t, r).FontSize; size != 20 {
		t.Fatalf("expected clamp to 20, got %d", size)
	}
}

func TestExportDownload(t *testing.T) {
	r, ctrl, _ := setupRouter(t)
	postJSON(r, "/open", nil)
	waitIdle(t, ctrl)

	req := httptest.NewRequest(http.MethodGet, "/export", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Disposition"); !strings.Contains(got, "chat.txt") {
		t.Fatalf("expected chat.txt attachment, got %q", got)
	}
	if body := resp.Body.String(); body != "bot: Hello!" {
		t.Fatalf("unexpected transcript %q", body)
	}
}

func TestNoticesDrainOnce(t *testing.T) {
	r, _, notices := setupRouter(t)
	notices.Notify("Message copied to clipboard!")

	req := httptest.NewRequest(http.MethodGet, "/notices", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if !bytes.Contains(resp.Body.Bytes(), []byte("copied")) {
		t.Fatalf("expected notice in payload, got %s", resp.Body.String())
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/notices", nil))
	if bytes.Contains(resp.Body.Bytes(), []byte("copied")) {
		t.Fatal("notices must drain on read")
	}
}
