package services

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/require"
)

type formPart struct {
	name        string
	filename    string
	hasFilename bool
	contentType string
	content     []byte
}

func fileField(filename, contentType string, content []byte) formPart {
	return formPart{
		name:        "file",
		filename:    filename,
		hasFilename: true,
		contentType: contentType,
		content:     content,
	}
}

// buildForm encodes parts as a multipart/form-data body.
func buildForm(t *testing.T, parts ...formPart) (string, []byte) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		h := textproto.MIMEHeader{}
		disposition := fmt.Sprintf("form-data; name=%q", p.name)
		if p.hasFilename {
			disposition += fmt.Sprintf("; filename=%q", p.filename)
		}
		h.Set("Content-Disposition", disposition)
		if p.contentType != "" {
			h.Set("Content-Type", p.contentType)
		}

		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write(p.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return w.FormDataContentType(), buf.Bytes()
}

func allBytes() []byte {
	b := make([]byte, 256)
	for i := range b {
		b[i] = byte(i)
	}

	return b
}
