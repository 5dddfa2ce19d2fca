package http

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/expectr"
	"github.com/GriffinCanCode/expectr/internal/daemon"
)

// Handlers contains all REST handlers for expectrd.
type Handlers struct {
	manager *daemon.Manager
	version string
}

// NewHandlers creates a new handler set.
func NewHandlers(manager *daemon.Manager, version string) *Handlers {
	return &Handlers{manager: manager, version: version}
}

// CreateSessionRequest is the body of POST /sessions.
type CreateSessionRequest struct {
	Command string   `json:"command" binding:"required"`
	Args    []string `json:"args"`
	Rows    uint16   `json:"rows"`
	Cols    uint16   `json:"cols"`
}

// SendRequest is the body of POST /sessions/:id/send. Base64 marks input
// that carries raw bytes (control characters, partial escapes).
type SendRequest struct {
	Input  string `json:"input" binding:"required"`
	Base64 bool   `json:"base64"`
}

// ExpectRequest is the body of POST /sessions/:id/expect. A literal
// pattern matches verbatim; set regex for regular-expression matching.
// A recoverable wait reports matched=false on timeout instead of failing.
type ExpectRequest struct {
	Pattern     string `json:"pattern" binding:"required"`
	Regex       bool   `json:"regex"`
	Recoverable bool   `json:"recoverable"`
}

// ResizeRequest is the body of POST /sessions/:id/resize.
type ResizeRequest struct {
	Rows uint16 `json:"rows" binding:"required"`
	Cols uint16 `json:"cols" binding:"required"`
}

// Root handles the service banner.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "expectrd",
		"version": h.version,
	})
}

// Health handles health checks.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"sessions": len(h.manager.List()),
	})
}

// CreateSession spawns a command and returns the new session.
func (h *Handlers) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	info, err := h.manager.Create(req.Command, req.Args, req.Rows, req.Cols)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, info)
}

// ListSessions lists all sessions.
func (h *Handlers) ListSessions(c *gin.Context) {
	infos := h.manager.List()
	c.JSON(http.StatusOK, gin.H{
		"sessions": infos,
		"count":    len(infos),
	})
}

// GetSession returns one session.
func (h *Handlers) GetSession(c *gin.Context) {
	info, err := h.manager.Get(c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, info)
}

// KillSession terminates a session's subprocess and removes the session.
func (h *Handlers) KillSession(c *gin.Context) {
	id := c.Param("id")
	if err := h.manager.Kill(id); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

// Send writes input to a session's subprocess.
func (h *Handlers) Send(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := []byte(req.Input)
	if req.Base64 {
		decoded, err := base64.StdEncoding.DecodeString(req.Input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid base64 input"})
			return
		}
		input = decoded
	}

	if err := h.manager.Send(c.Param("id"), input); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "bytes": len(input)})
}

// Expect blocks until the pattern appears in the session's output or the
// session timeout elapses.
func (h *Handlers) Expect(c *gin.Context) {
	var req ExpectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	match, err := h.manager.Expect(c.Param("id"), req.Pattern, req.Regex, req.Recoverable)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	if match == nil {
		c.JSON(http.StatusOK, gin.H{"matched": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"matched": true,
		"text":    match.Text,
		"groups":  match.Groups,
		"start":   match.Start,
		"end":     match.End,
	})
}

// Buffer returns the session's active and discard buffers. Both are
// base64-encoded since terminal output is arbitrary bytes.
func (h *Handlers) Buffer(c *gin.Context) {
	active, discard, err := h.manager.Snapshot(c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"buffer":  base64.StdEncoding.EncodeToString(active),
		"discard": base64.StdEncoding.EncodeToString(discard),
		"length":  len(active),
	})
}

// Clear empties a session's active buffer.
func (h *Handlers) Clear(c *gin.Context) {
	if err := h.manager.Clear(c.Param("id")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Resize sets a session's terminal size.
func (h *Handlers) Resize(c *gin.Context) {
	var req ResizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.manager.Resize(c.Param("id"), req.Rows, req.Cols); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// statusFor maps session errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, daemon.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, expectr.ErrInvalidPattern):
		return http.StatusBadRequest
	case errors.Is(err, expectr.ErrMatchTimeout):
		return http.StatusRequestTimeout
	case errors.Is(err, expectr.ErrExpectInFlight),
		errors.Is(err, expectr.ErrInteractActive):
		return http.StatusConflict
	case errors.Is(err, expectr.ErrProcessDead):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}
