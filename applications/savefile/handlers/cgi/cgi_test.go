package cgi

import (
	"bytes"
	"context"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donmikel/savefile/applications/savefile/adapters/disk"
	"github.com/donmikel/savefile/applications/savefile/handlers/page"
	"github.com/donmikel/savefile/applications/savefile/services"
)

func env(vars map[string]string) Getenv {
	return func(key string) string {
		return vars[key]
	}
}

func TestParseContentLength(t *testing.T) {
	tests := map[string]int64{
		"":      0,
		"42":    42,
		" 7 ":   7,
		"-1":    0,
		"abc":   0,
		"1e3":   0,
		"10000": 10000,
	}

	for in, want := range tests {
		assert.Equal(t, want, parseContentLength(in), "CONTENT_LENGTH=%q", in)
	}
}

func TestServe(t *testing.T) {
	dir := t.TempDir()
	svc := services.NewService(disk.NewStorage(dir, log.NewNopLogger()), log.NewNopLogger())

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("file", "report.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	vars := map[string]string{
		"REQUEST_METHOD": "POST",
		"CONTENT_TYPE":   w.FormDataContentType(),
		"CONTENT_LENGTH": strconv.Itoa(body.Len()),
	}
	var out bytes.Buffer

	err = Serve(context.Background(), svc, env(vars), &body, &out, page.Options{}, log.NewNopLogger())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out.String(), "Content-Type: text/html; charset=utf-8\r\n\r\n"))
	assert.Contains(t, out.String(), "<p>read "+vars["CONTENT_LENGTH"]+" bytes of request body</p>")
	assert.Contains(t, out.String(), "<p>found part name=file, filename=report.txt</p>")
	assert.Contains(t, out.String(), "<p>Filename received: report.txt</p>")
	assert.Contains(t, out.String(), "uploaded successfully.")

	data, err := os.ReadFile(filepath.Join(dir, "report.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
}

func TestServeWithoutBody(t *testing.T) {
	svc := services.NewService(disk.NewStorage(t.TempDir(), log.NewNopLogger()), log.NewNopLogger())
	var out bytes.Buffer

	err := Serve(context.Background(), svc, env(nil), strings.NewReader(""), &out, page.Options{SeparateDiagnostics: true},
		log.NewNopLogger())
	require.NoError(t, err)

	assert.Equal(t, "Content-Type: text/html; charset=utf-8\r\n\r\n<p>No file was submitted.</p>\n", out.String())
}
