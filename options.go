package expectr

import (
	"time"

	"go.uber.org/zap"
)

// Stock session settings.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultBufferSize = 8192
	DefaultRows       = 24
	DefaultCols       = 80
)

// Config holds session configuration. It is immutable after construction;
// the session exposes read-only accessors for every field.
//
// The zero value fills in Timeout, BufferSize, Rows, Cols, Terminal, and
// Logger defaults but leaves FlushBuffer and Constrain off. Start from
// DefaultConfig to get the stock behavior (output echoed to the controlling
// terminal, no constrain cap).
type Config struct {
	// Timeout bounds every expect wait.
	Timeout time.Duration

	// BufferSize is the constrain bound in bytes.
	BufferSize int

	// Constrain caps the active buffer at the trailing BufferSize bytes
	// after every append. A soft, lossy cap: matching against content
	// older than the bound is explicitly not guaranteed.
	Constrain bool

	// FlushBuffer echoes subprocess output to the controlling terminal as
	// it is pumped into the buffer.
	FlushBuffer bool

	// Rows and Cols set the initial PTY size for spawned processes.
	Rows uint16
	Cols uint16

	// Terminal is the controlling-terminal handle used for echo and
	// interact mode. Defaults to the process's stdio.
	Terminal Terminal

	// Logger receives session diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger
}

// DefaultConfig returns the stock session configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:     DefaultTimeout,
		BufferSize:  DefaultBufferSize,
		FlushBuffer: true,
		Rows:        DefaultRows,
		Cols:        DefaultCols,
	}
}

// withDefaults fills unset fields so a zero Config is usable.
func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.BufferSize <= 0 {
		c.BufferSize = DefaultBufferSize
	}
	if c.Rows == 0 {
		c.Rows = DefaultRows
	}
	if c.Cols == 0 {
		c.Cols = DefaultCols
	}
	if c.Terminal == nil {
		c.Terminal = Stdio()
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}
