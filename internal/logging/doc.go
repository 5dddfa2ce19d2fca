// Package logging provides the zap logger configuration shared by the
// expectrd daemon: JSON output in production, colored console output in
// development.
package logging
