// Package ws implements the /ws/asr half of the transport layer (spec
// §4.8): binary PCM frame ingestion, a small JSON control-frame protocol
// (start/stop/set_l1), and JSON event emission (partial/final/coach/error).
//
// Grounded on the teacher's internal/ws/handler.go connection-upgrade and
// single-event-sender shape, recomposed around session.Session instead of
// pipeline.Pipeline.
package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ilyannn/bgvoicecoach/internal/asrengine"
	"github.com/ilyannn/bgvoicecoach/internal/coach"
	"github.com/ilyannn/bgvoicecoach/internal/diag"
	"github.com/ilyannn/bgvoicecoach/internal/session"
	"github.com/ilyannn/bgvoicecoach/internal/vadgate"
)

// Close codes used on /ws/asr (spec §4.8).
const (
	CloseNormal         = websocket.CloseNormalClosure     // 1000
	CloseInternalError  = websocket.CloseInternalServerErr // 1011
	CloseTryAgainLater  = websocket.CloseTryAgainLater      // 1013
)

const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Deps holds the shared, process-wide backends a Handler wires into every
// new session.
type Deps struct {
	ASR         *asrengine.Engine
	NewComposer func() *coach.Composer
	VADConfig   vadgate.Config
	DefaultL1   string
	Recorder    *diag.Recorder // optional; nil disables diagnostics
}

// Handler upgrades /ws/asr connections and runs one Session per connection.
type Handler struct {
	deps Deps
}

// NewHandler builds a Handler from shared backends.
func NewHandler(deps Deps) *Handler {
	return &Handler{deps: deps}
}

type controlFrame struct {
	Type string `json:"type"`
	L1   string `json:"l1,omitempty"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("ws: upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	h.runSession(conn)
}

func (h *Handler) runSession(conn *websocket.Conn) {
	sessionID := uuid.NewString()
	gate := vadgate.New(h.deps.VADConfig)
	composer := h.deps.NewComposer()

	var writeMu sync.Mutex
	send := func(m session.OutMessage) {
		writeMu.Lock()
		defer writeMu.Unlock()
		data, err := json.Marshal(m)
		if err != nil {
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			slog.Error("ws: write failed", "session_id", sessionID, "error", err)
		}
	}

	sess := session.New(sessionID, gate, h.deps.ASR, composer, h.deps.DefaultL1, send, h.deps.Recorder)
	defer sess.Close()

	slog.Info("ws: session started", "session_id", sessionID)

	started := false
	closeCode := CloseNormal
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}

		switch msgType {
		case websocket.TextMessage:
			h.handleControl(sess, data, &started)
		case websocket.BinaryMessage:
			if !started {
				// spec §4.7/§6: start is optional — absence implies
				// auto-start on the first audio frame.
				started = true
			}
			if err := sess.ProcessFrame(data); err != nil {
				send(session.OutMessage{Type: "error", Code: "bad_frame", Message: err.Error()})
				closeCode = CloseInternalError
			}
		}
	}

	sess.Flush()
	closeMsg := websocket.FormatCloseMessage(closeCode, "")
	_ = conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(writeWait))
	slog.Info("ws: session ended", "session_id", sessionID, "close_code", closeCode)
}

func (h *Handler) handleControl(sess *session.Session, data []byte, started *bool) {
	var ctrl controlFrame
	if err := json.Unmarshal(data, &ctrl); err != nil {
		return
	}
	switch ctrl.Type {
	case "start":
		*started = true
	case "stop":
		*started = false
		sess.Flush()
	case "set_l1":
		if ctrl.L1 != "" {
			sess.SetL1(ctrl.L1)
		}
	}
}
