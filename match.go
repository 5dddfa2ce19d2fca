package expectr

// Match describes a successful expect result.
type Match struct {
	// Text is the full matched text.
	Text string

	// Groups holds the capture groups; Groups[0] is the full match.
	// Unmatched optional groups are empty strings.
	Groups []string

	// Start and End are byte offsets of the match within the active
	// buffer as it stood when the match was found. After the call the
	// discard view holds the bytes before Start and the active view the
	// bytes after End.
	Start int
	End   int
}
