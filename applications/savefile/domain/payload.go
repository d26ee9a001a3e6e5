package domain

import (
	"fmt"
	"strings"
)

// Payload exposes the raw bytes of a file part whatever representation the
// decoder chose for it.
type Payload interface {
	Bytes() ([]byte, error)
}

type RawBytes []byte

func (b RawBytes) Bytes() ([]byte, error) {
	return b, nil
}

// Latin1Text is a text representation of binary data where code point n
// stands for byte n, for every n in 0..255.
type Latin1Text string

// Latin1Decode maps each byte to the code point with the same value.
func Latin1Decode(b []byte) Latin1Text {
	var sb strings.Builder
	sb.Grow(len(b) * 2)
	for _, c := range b {
		sb.WriteRune(rune(c))
	}

	return Latin1Text(sb.String())
}

// Bytes recovers the raw bytes. A code point above 255 (invalid UTF-8 decodes
// to U+FFFD) has no byte and is an error rather than a lossy substitution.
func (t Latin1Text) Bytes() ([]byte, error) {
	s := string(t)
	out := make([]byte, 0, len(s))
	for i, r := range s {
		if r > 0xff {
			return nil, fmt.Errorf("code point %U at offset %d does not fit in a byte", r, i)
		}
		out = append(out, byte(r))
	}

	return out, nil
}
