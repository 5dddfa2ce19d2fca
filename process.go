package expectr

// Process is the narrow contract the engine requires from a subprocess.
// Three implementations ship with this package: a PTY-spawned child
// (SpawnedProcess), an adopted external process (AdoptedProcess), and a
// callback-driven stub for tests (StubProcess).
type Process interface {
	// Read fills p with available subprocess output. It returns io.EOF
	// once no more output will ever arrive (process exited and stream
	// closed).
	Read(p []byte) (n int, err error)

	// Write delivers input bytes to the subprocess. It fails once the
	// process is dead.
	Write(p []byte) (n int, err error)

	// Pid reports the process ID, 0 once the process is confirmed dead.
	Pid() int

	// Alive reports whether the process is still running.
	Alive() bool

	// Kill terminates the process. Idempotent: killing a dead process
	// succeeds trivially.
	Kill() error

	// Winsize reports the subprocess terminal size.
	Winsize() (rows, cols uint16, err error)

	// Resize sets the subprocess terminal size.
	Resize(rows, cols uint16) error
}
