package sanitize

import (
	"unicode/utf8"

	"golang.org/x/text/transform"
)

// dropInvalid is a transform.Transformer that removes ill-formed UTF-8
// sequences instead of replacing them with U+FFFD.
type dropInvalid struct{ transform.NopResetter }

func (dropInvalid) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		r, size := utf8.DecodeRune(src[nSrc:])
		if r == utf8.RuneError && size <= 1 {
			if !atEOF && !utf8.FullRune(src[nSrc:]) {
				err = transform.ErrShortSrc
				return
			}
			// Drop the offending byte.
			nSrc++
			continue
		}
		if nDst+size > len(dst) {
			err = transform.ErrShortDst
			return
		}
		copy(dst[nDst:], src[nSrc:nSrc+size])
		nDst += size
		nSrc += size
	}
	return
}

// Bytes repairs a standalone byte slice, dropping every invalid sequence.
func Bytes(p []byte) []byte {
	out, _, _ := transform.Bytes(dropInvalid{}, p)
	return out
}

// Stream repairs a chunked byte stream. A rune split across two chunks is
// held back until its remaining bytes arrive, so valid multi-byte runes
// survive arbitrary chunk boundaries.
type Stream struct {
	pending []byte
}

// NewStream returns a stream repairer with no pending bytes.
func NewStream() *Stream {
	return &Stream{}
}

// Repair returns the valid portion of p, prefixed by any bytes held back
// from the previous chunk. It never fails.
func (s *Stream) Repair(p []byte) []byte {
	src := p
	if len(s.pending) > 0 {
		src = append(s.pending, p...)
		s.pending = nil
	}

	var t dropInvalid
	dst := make([]byte, len(src))
	nDst, nSrc, err := t.Transform(dst, src, false)
	if err == transform.ErrShortSrc {
		s.pending = append([]byte(nil), src[nSrc:]...)
	}
	return dst[:nDst]
}

// Flush drains any held-back bytes, dropping them if they never completed
// into a valid rune.
func (s *Stream) Flush() []byte {
	if len(s.pending) == 0 {
		return nil
	}
	out := Bytes(s.pending)
	s.pending = nil
	return out
}
