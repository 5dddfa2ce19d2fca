// Package ws streams live terminal I/O over WebSocket.
//
// Each connection attaches to one session's remote terminal and puts the
// session into interact mode: subprocess output arrives as base64 output
// frames, and input/resize frames from the client feed the PTY. Only one
// client may be attached to a session at a time.
package ws
