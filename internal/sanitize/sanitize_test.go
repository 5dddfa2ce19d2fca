package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBytes(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{
			name: "valid ascii untouched",
			in:   []byte("hello world"),
			want: "hello world",
		},
		{
			name: "valid multibyte untouched",
			in:   []byte("héllo wörld ☃"),
			want: "héllo wörld ☃",
		},
		{
			name: "lone continuation byte dropped",
			in:   []byte{'a', 0x80, 'b'},
			want: "ab",
		},
		{
			name: "truncated rune dropped",
			in:   []byte{'a', 0xE2, 0x98, 'b'},
			want: "ab",
		},
		{
			name: "overlong sequence dropped",
			in:   []byte{0xC0, 0xAF, 'x'},
			want: "x",
		},
		{
			name: "empty input",
			in:   nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(Bytes(tt.in)))
		})
	}
}

func TestStreamSplitRune(t *testing.T) {
	// A snowman (E2 98 83) split across three chunks must survive intact.
	s := NewStream()

	out := s.Repair([]byte{'a', 0xE2})
	assert.Equal(t, "a", string(out))

	out = s.Repair([]byte{0x98})
	assert.Empty(t, out)

	out = s.Repair([]byte{0x83, 'b'})
	assert.Equal(t, "☃b", string(out))

	assert.Empty(t, s.Flush())
}

func TestStreamFlushDropsIncomplete(t *testing.T) {
	s := NewStream()

	out := s.Repair([]byte{'x', 0xE2, 0x98})
	assert.Equal(t, "x", string(out))

	// The dangling prefix never completed; flushing drops it.
	assert.Empty(t, s.Flush())
	assert.Empty(t, s.Flush())
}

func TestStreamInvalidMidChunk(t *testing.T) {
	s := NewStream()

	out := s.Repair([]byte{'a', 0xFF, 0xFE, 'b', 'c'})
	assert.Equal(t, "abc", string(out))
	assert.Empty(t, s.Flush())
}
