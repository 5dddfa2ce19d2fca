// Package http provides the REST handlers for the expectrd API.
//
// Endpoints:
//   - Health: / and /health
//   - Sessions: /sessions, /sessions/:id
//   - I/O: /sessions/:id/send, /sessions/:id/expect, /sessions/:id/buffer
//   - Control: /sessions/:id/clear, /sessions/:id/resize
//
// Expect waits map onto HTTP status codes: a timeout is 408, a concurrent
// wait or an attached interact client is 409, a dead subprocess is 410.
package http
