package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/deskfolio/internal/domain/events"
	"github.com/GriffinCanCode/deskfolio/internal/domain/shell"
	"github.com/GriffinCanCode/deskfolio/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/deskfolio/internal/shared/id"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096
	eventBuffer    = 64
)

// Lookup returns the session a request is bound to.
type Lookup func(c *gin.Context) *shell.Shell

// Touch records activity on a session.
type Touch func(sid id.SessionID)

// unknownLabel stands in for intent types the stream rejects, keeping the
// message metric's label set closed.
const unknownLabel = "unknown"

// Frame is a server message that is not a bus event.
type Frame struct {
	Type    string `json:"type"`
	Intent  string `json:"intent,omitempty"`
	ConnID  string `json:"conn_id,omitempty"`
	Error   string `json:"error,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// Handler manages WebSocket connections
type Handler struct {
	lookup   Lookup
	touch    Touch
	metrics  *monitoring.Metrics
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a stream handler. touch is called for every intent
// read; touch and metrics may be nil.
func NewHandler(lookup Lookup, touch Touch, metrics *monitoring.Metrics, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if touch == nil {
		touch = func(id.SessionID) {}
	}
	return &Handler{
		lookup:  lookup,
		touch:   touch,
		metrics: metrics,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleConnection upgrades the request, then streams the session's events
// while applying intents read from the client.
func (h *Handler) HandleConnection(c *gin.Context) {
	s := h.lookup(c)
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	cid := id.NewConnID()
	logger := h.logger.With(
		zap.String("session_id", s.ID()),
		zap.String("conn_id", cid.String()),
	)
	h.connOpened()
	defer h.connClosed()

	ctx, cancel := context.WithCancel(context.WithoutCancel(c.Request.Context()))
	defer cancel()

	sub := s.Subscribe(eventBuffer)
	defer sub.Close()

	out := make(chan Frame, 16)
	out <- Frame{Type: "hello", ConnID: cid.String(), Payload: s.Snapshot()}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		h.writeLoop(ctx, conn, sub, out, logger)
	}()

	h.readLoop(ctx, conn, s, out, logger)
	cancel()
	<-done
	logger.Debug("stream closed")
}

func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, s *shell.Shell, out chan<- Frame, logger *zap.Logger) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	sid := id.SessionID(s.ID())

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}

		var in Intent
		if err := sonic.Unmarshal(data, &in); err != nil {
			if !h.enqueue(ctx, out, Frame{Type: "error", Error: "malformed intent"}) {
				return
			}
			continue
		}
		h.touch(sid)

		reply, err := dispatch(ctx, s, in)
		if errors.Is(err, ErrUnknownIntent) {
			h.recordMessage("in", unknownLabel)
		} else {
			h.recordMessage("in", in.Type)
		}
		var frame Frame
		switch {
		case err != nil:
			frame = Frame{Type: "error", Intent: in.Type, Error: err.Error()}
		case in.Type == "ping":
			frame = Frame{Type: "pong"}
		case reply != nil:
			frame = Frame{Type: "reply", Intent: in.Type, Payload: reply}
		default:
			continue
		}
		if !h.enqueue(ctx, out, frame) {
			return
		}
	}
}

func (h *Handler) enqueue(ctx context.Context, out chan<- Frame, f Frame) bool {
	select {
	case out <- f:
		return true
	case <-ctx.Done():
		return false
	}
}

func (h *Handler) writeLoop(ctx context.Context, conn *websocket.Conn, sub *events.Subscription, out <-chan Frame, logger *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeFrame(conn, websocket.CloseNormalClosure, "")
			return
		case ev, ok := <-sub.C:
			if !ok {
				// session ended
				h.closeFrame(conn, websocket.CloseGoingAway, "session ended")
				return
			}
			if err := h.write(conn, ev); err != nil {
				logger.Debug("websocket write failed", zap.Error(err))
				return
			}
			h.recordMessage("out", ev.Type)
		case f := <-out:
			if err := h.write(conn, f); err != nil {
				logger.Debug("websocket write failed", zap.Error(err))
				return
			}
			h.recordMessage("out", f.Type)
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Handler) write(conn *websocket.Conn, v any) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (h *Handler) closeFrame(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	// unblock the reader
	_ = conn.Close()
}

func (h *Handler) connOpened() {
	if h.metrics != nil {
		h.metrics.IncWSConnections()
	}
}

func (h *Handler) connClosed() {
	if h.metrics != nil {
		h.metrics.DecWSConnections()
	}
}

func (h *Handler) recordMessage(direction, typ string) {
	if h.metrics != nil {
		h.metrics.RecordWSMessage(direction, typ)
	}
}
