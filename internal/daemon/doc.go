// Package daemon manages the live expect sessions behind expectrd.
//
// The manager spawns sessions through the expectr library, keys them by
// UUID, and exposes the operations the HTTP and WebSocket surfaces need:
// send, expect, buffer snapshots, resize, kill. Each session's controlling
// terminal is a RemoteTerminal, so a WebSocket client can attach later and
// drive interact mode as if it were the local console.
package daemon
