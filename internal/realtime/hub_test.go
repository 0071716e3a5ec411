package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yusufkecer/hospital-backend/internal/domain"
	"github.com/yusufkecer/hospital-backend/internal/middleware"
)

func newClient(accountID int64) *Client {
	return &Client{ID: "c", AccountID: accountID, Send: make(chan []byte, 4)}
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()
	c := newClient(1)
	hub.Register(c)

	if hub.ClientCount() != 1 || !hub.Online(1) {
		t.Fatalf("expected one online client, got %d", hub.ClientCount())
	}

	hub.Unregister(c)
	hub.Unregister(c)
	if hub.ClientCount() != 0 || hub.Online(1) {
		t.Fatal("expected no clients after unregister")
	}
	if _, ok := <-c.Send; ok {
		t.Error("expected send channel to be closed")
	}
}

func TestHub_PublishTargetsAccount(t *testing.T) {
	hub := NewHub()
	a1, a2, b := newClient(1), newClient(1), newClient(2)
	hub.Register(a1)
	hub.Register(a2)
	hub.Register(b)

	if err := hub.Publish(1, Event{Type: "message.created", Data: map[string]string{"content": "hi"}}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	for _, c := range []*Client{a1, a2} {
		select {
		case raw := <-c.Send:
			var evt Event
			if err := json.Unmarshal(raw, &evt); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if evt.Type != "message.created" || evt.Timestamp.IsZero() {
				t.Errorf("unexpected event %+v", evt)
			}
		default:
			t.Error("expected event for account 1 client")
		}
	}
	select {
	case <-b.Send:
		t.Error("account 2 must not receive account 1 events")
	default:
	}
}

func TestHub_PublishDoesNotBlockOnFullBuffer(t *testing.T) {
	hub := NewHub()
	c := &Client{AccountID: 1, Send: make(chan []byte)}
	hub.Register(c)

	done := make(chan struct{})
	go func() {
		hub.Publish(1, Event{Type: "x"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full client buffer")
	}
}

func TestHub_ConcurrentAccess(t *testing.T) {
	hub := NewHub()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			c := newClient(id % 5)
			hub.Register(c)
			hub.Publish(id%5, Event{Type: "ping"})
			hub.Unregister(c)
		}(int64(i))
	}
	wg.Wait()
	if hub.ClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", hub.ClientCount())
	}
}

func TestServeWS_DeliversEvents(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := middleware.WithPrincipal(r.Context(), middleware.Principal{AccountID: 9, Role: domain.RoleDoctor})
		hub.ServeWS(w, r.WithContext(ctx))
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for !hub.Online(9) {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.Publish(9, Event{Type: "message.created"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(raw), "message.created") {
		t.Errorf("unexpected payload %s", raw)
	}
}

func TestServeWS_RequiresPrincipal(t *testing.T) {
	hub := NewHub()
	rec := httptest.NewRecorder()
	hub.ServeWS(rec, httptest.NewRequest(http.MethodGet, "/api/messages/ws", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestTopic(t *testing.T) {
	if Topic(12) != "account/12" {
		t.Errorf("unexpected topic %s", Topic(12))
	}
}
