package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ilyannn/bgvoicecoach/internal/asrengine"
	"github.com/ilyannn/bgvoicecoach/internal/coach"
	"github.com/ilyannn/bgvoicecoach/internal/contentstore"
	"github.com/ilyannn/bgvoicecoach/internal/grammar"
	"github.com/ilyannn/bgvoicecoach/internal/session"
	"github.com/ilyannn/bgvoicecoach/internal/vadgate"
)

type fakeBackend struct{ text string }

func (f *fakeBackend) Transcribe(ctx context.Context, samples []int16, opts asrengine.Options) (string, float64, float64, error) {
	return f.text, -0.1, 0.05, nil
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	store, err := contentstore.Load("../../../content")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	asr := asrengine.New(&fakeBackend{text: "Искам поръчвам кафе."}, asrengine.DefaultOptions())
	return NewHandler(Deps{
		ASR: asr,
		NewComposer: func() *coach.Composer {
			return coach.New(store, grammar.New(store), coach.DummyProvider{})
		},
		VADConfig: vadgate.Config{Aggressiveness: 0, TailMs: 40, MaxUtteranceMs: 15000, MinSpeechMs: 20},
		DefaultL1: "PL",
	})
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/asr"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func TestHandlerAutoStartsOnFirstBinaryFrame(t *testing.T) {
	h := newTestHandler(t)
	srv := httptest.NewServer(http.HandlerFunc(h.ServeHTTP))
	defer srv.Close()

	conn := dialWS(t, srv)
	defer conn.Close()

	// No start control frame sent: the session should still run to a
	// coach message, per the "absence implies auto-start" rule.
	silentFrame := make([]byte, vadgate.FrameBytes)
	loudFrame := make([]byte, vadgate.FrameBytes)
	for i := 0; i < len(loudFrame); i += 2 {
		loudFrame[i+1] = 0x7f
	}

	for i := 0; i < 2; i++ {
		mustWriteBinary(t, conn, silentFrame)
	}
	for i := 0; i < 3; i++ {
		mustWriteBinary(t, conn, loudFrame)
	}
	for i := 0; i < 3; i++ {
		mustWriteBinary(t, conn, silentFrame)
	}

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	sawCoach := false
	for i := 0; i < 10; i++ {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var m session.OutMessage
		if err := json.Unmarshal(data, &m); err != nil {
			continue
		}
		if m.Type == "coach" {
			sawCoach = true
			break
		}
	}
	if !sawCoach {
		t.Error("expected a coach message from an auto-started session")
	}
}

func TestHandlerRunsFullSessionToCoachMessage(t *testing.T) {
	h := newTestHandler(t)
	srv := httptest.NewServer(http.HandlerFunc(h.ServeHTTP))
	defer srv.Close()

	conn := dialWS(t, srv)
	defer conn.Close()

	mustWriteJSON(t, conn, map[string]string{"type": "start"})

	silentFrame := make([]byte, vadgate.FrameBytes)
	loudFrame := make([]byte, vadgate.FrameBytes)
	for i := 0; i < len(loudFrame); i += 2 {
		loudFrame[i+1] = 0x7f
	}

	for i := 0; i < 2; i++ {
		mustWriteBinary(t, conn, silentFrame)
	}
	for i := 0; i < 3; i++ {
		mustWriteBinary(t, conn, loudFrame)
	}
	for i := 0; i < 3; i++ {
		mustWriteBinary(t, conn, silentFrame)
	}

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	sawCoach := false
	for i := 0; i < 10; i++ {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var m session.OutMessage
		if err := json.Unmarshal(data, &m); err != nil {
			continue
		}
		if m.Type == "coach" {
			sawCoach = true
			break
		}
	}
	if !sawCoach {
		t.Error("expected a coach message from the full session")
	}
}

func mustWriteJSON(t *testing.T, conn *websocket.Conn, v interface{}) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func mustWriteBinary(t *testing.T, conn *websocket.Conn, data []byte) {
	t.Helper()
	if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		t.Fatalf("write: %v", err)
	}
}
