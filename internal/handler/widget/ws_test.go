package widget

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/widgetlabs/chatbot-widget/internal/model/chat"
)

func TestPushLatestKeepsNewest(t *testing.T) {
	updates := make(chan chat.Session, 1)

	pushLatest(updates, chat.Session{FontSize: 1})
	pushLatest(updates, chat.Session{FontSize: 2})
	pushLatest(updates, chat.Session{FontSize: 3})

	snap := <-updates
	if snap.FontSize != 3 {
		t.Fatalf("expected the newest snapshot to survive, got font size %d", snap.FontSize)
	}
	select {
	case extra := <-updates:
		t.Fatalf("expected the channel drained, got font size %d", extra.FontSize)
	default:
	}
}

func TestWebSocketDeliversTerminalSnapshot(t *testing.T) {
	r, ctrl, _ := setupRouter(t)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	var snap chat.Session
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("read initial snapshot: %v", err)
	}
	if snap.IsOpen {
		t.Fatal("initial snapshot should show the widget closed")
	}

	ctrl.Open()

	// A burst of reveal frames follows; the terminal isTyping=false state
	// must reach the subscriber even if intermediate frames coalesce.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if time.Now().After(deadline) {
			t.Fatal("terminal snapshot never arrived")
		}
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		if err := conn.ReadJSON(&snap); err != nil {
			t.Fatalf("read snapshot: %v", err)
		}
		if len(snap.Messages) == 1 && snap.Messages[0].Text == "Hello!" && !snap.Messages[0].IsTyping {
			return
		}
	}
}

func TestWebSocketReceivesSnapshotPerMutation(t *testing.T) {
	r, ctrl, _ := setupRouter(t)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	var snap chat.Session
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("read initial snapshot: %v", err)
	}

	ctrl.ToggleTheme()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("read theme snapshot: %v", err)
	}
	if snap.Theme != chat.ThemeDark {
		t.Fatalf("expected dark theme snapshot, got %q", snap.Theme)
	}

	ctrl.SetFontSize(16)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("read font snapshot: %v", err)
	}
	if snap.FontSize != 16 {
		t.Fatalf("expected font size 16 snapshot, got %d", snap.FontSize)
	}
}

func TestStreamEmitsStateEvents(t *testing.T) {
	r, ctrl, _ := setupRouter(t)
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/stream", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected text/event-stream, got %q", ct)
	}

	ctrl.Open()

	scanner := bufio.NewScanner(resp.Body)
	sawEvent := false
	for scanner.Scan() {
		line := scanner.Text()
		if line == "event: state" {
			sawEvent = true
			continue
		}
		if sawEvent && strings.HasPrefix(line, "data: ") && strings.Contains(line, `"isOpen":true`) {
			return
		}
	}
	t.Fatal("no open-state event observed on the stream")
}
