package expectr

import (
	"fmt"
	"io"
	"os"

	"github.com/creack/pty"
	"golang.org/x/term"
)

// Terminal is the controlling-terminal handle injected into a session. It
// receives echoed output, supplies interact-mode input, and reports its
// size for propagation to the subprocess PTY. Injecting the handle keeps
// sessions testable without a real terminal.
type Terminal interface {
	io.Reader
	io.Writer

	// Size reports the terminal dimensions.
	Size() (rows, cols uint16, err error)
}

// RawModer is an optional interface for terminals that can switch into raw
// mode. Interact uses it when present so keystrokes reach the subprocess
// unbuffered; terminals that cannot (pipes, test doubles) simply don't
// implement it.
type RawModer interface {
	// Raw switches the terminal into raw mode and returns the restore
	// function.
	Raw() (restore func() error, err error)
}

// TTY is a Terminal backed by a pair of open terminal files, normally the
// process's stdin and stdout.
type TTY struct {
	in  *os.File
	out *os.File
}

// Stdio returns a TTY over the process's stdin and stdout.
func Stdio() *TTY {
	return &TTY{in: os.Stdin, out: os.Stdout}
}

// NewTTY returns a TTY reading input from in and writing output to out.
func NewTTY(in, out *os.File) *TTY {
	return &TTY{in: in, out: out}
}

func (t *TTY) Read(p []byte) (int, error) {
	return t.in.Read(p)
}

func (t *TTY) Write(p []byte) (int, error) {
	return t.out.Write(p)
}

// Size reports the controlling terminal's dimensions.
func (t *TTY) Size() (rows, cols uint16, err error) {
	ws, err := pty.GetsizeFull(t.out)
	if err != nil {
		return 0, 0, fmt.Errorf("terminal size: %w", err)
	}
	return ws.Rows, ws.Cols, nil
}

// Raw puts the input terminal into raw mode. When in is not a terminal
// (tests, pipes) it is a no-op.
func (t *TTY) Raw() (func() error, error) {
	fd := int(t.in.Fd())
	if !term.IsTerminal(fd) {
		return func() error { return nil }, nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("raw mode: %w", err)
	}
	return func() error { return term.Restore(fd, state) }, nil
}
