package ws

import (
	"encoding/base64"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/expectr/internal/daemon"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in dev
	},
}

// Message is one client-to-server frame.
type Message struct {
	Type   string `json:"type"`
	Data   string `json:"data,omitempty"`
	Base64 bool   `json:"base64,omitempty"`
	Rows   uint16 `json:"rows,omitempty"`
	Cols   uint16 `json:"cols,omitempty"`
}

// Handler bridges WebSocket connections to interact mode on a session.
type Handler struct {
	manager *daemon.Manager
	logger  *zap.Logger
}

// NewHandler creates a WebSocket handler.
func NewHandler(manager *daemon.Manager, logger *zap.Logger) *Handler {
	return &Handler{manager: manager, logger: logger}
}

// HandleConnection upgrades the request and attaches the client to the
// session named by the :id route param. While connected, subprocess output
// streams out as base64 frames and input/resize frames drive the PTY; on
// disconnect the session leaves interact mode and keeps running.
func (h *Handler) HandleConnection(c *gin.Context) {
	id := c.Param("id")
	sess, err := h.manager.Session(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	term, err := h.manager.Terminal(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	raw, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer raw.Close()
	conn := &conn{ws: raw}

	if err := term.Attach(outputWriter{conn}); err != nil {
		h.sendError(conn, "session already has an attached client")
		return
	}
	defer term.Detach()

	if err := sess.Interact(false); err != nil {
		h.sendError(conn, err.Error())
		return
	}
	defer sess.Leave()

	h.send(conn, gin.H{"type": "system", "message": "attached", "session_id": id})
	h.logger.Info("client attached", zap.String("id", id))

	for {
		var msg Message
		if err := raw.ReadJSON(&msg); err != nil {
			break
		}

		switch msg.Type {
		case "input":
			data, err := decodeInput(msg)
			if err != nil {
				h.sendError(conn, err.Error())
				continue
			}
			term.Push(data)
		case "resize":
			if msg.Rows == 0 || msg.Cols == 0 {
				h.sendError(conn, "resize requires rows and cols")
				continue
			}
			term.SetSize(msg.Rows, msg.Cols)
		case "ping":
			h.send(conn, gin.H{"type": "pong"})
		default:
			h.sendError(conn, "unknown message type")
		}
	}

	h.logger.Info("client detached", zap.String("id", id))
}

func decodeInput(msg Message) ([]byte, error) {
	if !msg.Base64 {
		return []byte(msg.Data), nil
	}
	data, err := base64.StdEncoding.DecodeString(msg.Data)
	if err != nil {
		return nil, errors.New("invalid base64 input")
	}
	return data, nil
}

func (h *Handler) send(c *conn, v any) {
	if err := c.writeJSON(v); err != nil {
		h.logger.Debug("websocket write failed", zap.Error(err))
	}
}

func (h *Handler) sendError(c *conn, message string) {
	h.send(c, gin.H{"type": "error", "message": message})
}

// conn serializes frame writes; the echo stream and the read loop both
// write to the socket.
type conn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *conn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(v)
}

// outputWriter adapts the echo stream to output frames. It satisfies
// io.Writer so it can attach to a daemon.RemoteTerminal.
type outputWriter struct {
	c *conn
}

func (w outputWriter) Write(p []byte) (int, error) {
	frame := gin.H{"type": "output", "data": base64.StdEncoding.EncodeToString(p)}
	if err := w.c.writeJSON(frame); err != nil {
		return 0, err
	}
	return len(p), nil
}
