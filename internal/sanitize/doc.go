// Package sanitize repairs malformed byte sequences in subprocess output.
//
// The repair is best-effort and never fails: invalid UTF-8 is dropped
// rather than propagated, and a rune split across read chunks is carried
// over until it completes. The output pump runs every chunk through a
// Stream before publishing it to the session buffer.
package sanitize
