package domain

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// FileField is the form field whose file part gets persisted.
const FileField = "file"

var ErrInvalidFilename = errors.New("invalid filename")

type Request struct {
	ContentType   string
	ContentLength int64
	Body          io.Reader
}

// Value is either a Text or a FilePart.
type Value interface {
	isValue()
}

type Text string

func (Text) isValue() {}

type FilePart struct {
	Filename    string
	Content     Payload
	ContentType string
}

func (FilePart) isValue() {}

// Submission holds the named parts of one decoded form body. A repeated name
// keeps the last part seen.
type Submission struct {
	Fields map[string]Value
}

func NewSubmission() Submission {
	return Submission{Fields: map[string]Value{}}
}

func (s Submission) Set(name string, v Value) {
	s.Fields[name] = v
}

// File returns the named field if it holds a file part.
func (s Submission) File(name string) (FilePart, bool) {
	fp, ok := s.Fields[name].(FilePart)
	return fp, ok
}

// SafeFilename keeps only the final path segment of a client supplied name.
// Both slash and backslash count as separators.
func SafeFilename(declared string) (string, error) {
	name := strings.ReplaceAll(declared, `\`, "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}

	switch name {
	case "", ".", "..":
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, declared)
	}

	if strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, declared)
	}

	return name, nil
}
