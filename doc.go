// Package expectr automates interaction with programs that expect a
// terminal.
//
// A session spawns (or adopts) a subprocess attached to a pseudo-terminal,
// feeds it input, and lets the caller block until specific output patterns
// appear — the classic "expect" automation model for password prompts, login
// flows, and menu-driven CLIs.
//
// Architecture:
//   - A background output pump drains subprocess output into a shared,
//     guard-protected buffer, repairing malformed bytes and optionally
//     echoing to the controlling terminal
//   - Expect waits search the buffer under a watchdog and atomically split
//     it into a discarded prefix and an unconsumed remainder on success
//   - Procmaps compile several patterns into one combined wait and dispatch
//     to the handler whose pattern produced the match
//   - Interact mode bridges the controlling terminal to the subprocess while
//     the pump keeps the buffer consistent, so expect stays usable
//
// Example Usage:
//
//	sess, err := expectr.Spawn("ssh", []string{"host"}, expectr.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer sess.Kill()
//
//	if _, err := sess.Expect("password:"); err != nil {
//		return err
//	}
//	sess.Puts(password)
//
//	pm := expectr.NewProcmap().
//		On(regexp.MustCompile(`\$ $`), func() { loggedIn = true }).
//		On("Permission denied", func() { denied = true }).
//		OnDefault(func() { timedOut = true })
//	if err := sess.ExpectProcmap(pm); err != nil {
//		return err
//	}
//
// Process variants:
//   - Spawn: child process under a fresh PTY (creack/pty)
//   - Adopt: an already-running process addressed through its PTY master
//   - StubProcess: callback-driven stand-in for testing the engine without
//     a real process
package expectr
