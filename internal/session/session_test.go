package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/autobattle/roomserver/internal/protocol"
)

type recordingDispatcher struct {
	mu       sync.Mutex
	received []protocol.Envelope
	closed   bool
	seen     chan struct{}
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{seen: make(chan struct{}, 16)}
}

func (d *recordingDispatcher) HandleEnvelope(s *Session, env protocol.Envelope) {
	d.mu.Lock()
	d.received = append(d.received, env)
	d.mu.Unlock()
	d.seen <- struct{}{}
}

func (d *recordingDispatcher) HandleClose(s *Session) {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
}

var upgrader = websocket.Upgrader{}

// newTestServer upgrades exactly one connection per test and hands the
// resulting server-side Session back over sessCh before blocking in Run.
func newTestServer(t *testing.T, d Dispatcher) (*httptest.Server, chan *Session) {
	t.Helper()
	sessCh := make(chan *Session, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		sess := New("sess-1", conn, 16, zap.NewNop())
		sessCh <- sess
		sess.Run(d)
	}))
	t.Cleanup(srv.Close)

	return srv, sessCh
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestReadLoopDispatchesDecodedEnvelope(t *testing.T) {
	d := newRecordingDispatcher()
	srv, _ := newTestServer(t, d)
	client := dial(t, srv)

	if err := client.WriteJSON(protocol.Envelope{Type: protocol.InSetName, Data: []byte(`{"name":"Alice"}`)}); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case <-d.seen:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for dispatcher to see the envelope")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.received) != 1 || d.received[0].Type != protocol.InSetName {
		t.Fatalf("received = %v, want one setName envelope", d.received)
	}
}

func TestSendDeliversQueuedFrameToClient(t *testing.T) {
	d := newRecordingDispatcher()
	srv, sessCh := newTestServer(t, d)
	client := dial(t, srv)

	sess := <-sessCh
	sess.Send(protocol.OutWelcome, protocol.WelcomePayload{ClientID: "c1"})

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env protocol.Envelope
	if err := client.ReadJSON(&env); err != nil {
		t.Fatalf("client read: %v", err)
	}
	if env.Type != protocol.OutWelcome {
		t.Fatalf("frame type = %q, want %q", env.Type, protocol.OutWelcome)
	}
	if !strings.Contains(string(env.Data), "c1") {
		t.Fatalf("payload = %s, expected clientId c1", string(env.Data))
	}
}

func TestCloseStopsDeliveringQueuedFrames(t *testing.T) {
	d := newRecordingDispatcher()
	srv, sessCh := newTestServer(t, d)
	_ = dial(t, srv)

	sess := <-sessCh
	sess.Close()
	sess.Send(protocol.OutError, protocol.ErrorPayload{Message: "should not send"})

	if !sess.IsClosed() {
		t.Fatalf("session should report closed after Close")
	}
	select {
	case env := <-sess.OutQueue:
		t.Fatalf("expected no queued frame after Close, got %v", env)
	default:
	}
}

func TestMalformedEnvelopeGetsErrorReply(t *testing.T) {
	d := newRecordingDispatcher()
	srv, _ := newTestServer(t, d)
	client := dial(t, srv)

	if err := client.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env protocol.Envelope
	if err := client.ReadJSON(&env); err != nil {
		t.Fatalf("client read: %v", err)
	}
	if env.Type != protocol.OutError {
		t.Fatalf("frame type = %q, want %q", env.Type, protocol.OutError)
	}
}
