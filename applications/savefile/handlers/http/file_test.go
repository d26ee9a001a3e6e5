package http

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donmikel/savefile/applications/savefile/adapters/inmemory"
	"github.com/donmikel/savefile/applications/savefile/handlers/page"
	"github.com/donmikel/savefile/applications/savefile/services"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	storage := inmemory.NewStorage("memory", inmemory.DefaultCapacityInBytes, log.NewNopLogger())
	svc := services.NewService(storage, log.NewNopLogger())
	srv := httptest.NewServer(NewRouter(svc, page.Options{}, log.NewNopLogger()))
	t.Cleanup(srv.Close)

	return srv
}

func postFile(t *testing.T, srv *httptest.Server, filename string, content []byte) string {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	resp, err := http.Post(srv.URL+"/upload", w.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return string(data)
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(data)
}

func TestUploadAndDownload(t *testing.T) {
	srv := newTestServer(t)

	out := postFile(t, srv, "report.txt", []byte("hello"))
	assert.Contains(t, out, "<p>File &#39;report.txt&#39; uploaded successfully.</p>")

	status, body := get(t, srv.URL+"/files/report.txt")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "hello", body)
}

func TestUploadNotMultipart(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/upload", "text/plain", strings.NewReader("hello"))
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "<p>not multipart/form-data</p>")
	assert.Contains(t, string(data), "<p>No file was submitted.</p>")
}

func TestUploadForm(t *testing.T) {
	srv := newTestServer(t)

	status, body := get(t, srv.URL+"/upload")

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `enctype="multipart/form-data"`)
}

func TestGetFileErrors(t *testing.T) {
	srv := newTestServer(t)

	status, _ := get(t, srv.URL+"/files/missing.txt")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = get(t, srv.URL+"/files/..")
	assert.NotEqual(t, http.StatusOK, status)
}

type failingWriter struct {
	httptest.ResponseRecorder
}

func (*failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestWriteErrLogsWriteFailure(t *testing.T) {
	var buf bytes.Buffer
	w := &failingWriter{ResponseRecorder: *httptest.NewRecorder()}

	writeErr(w, errors.New("file not found"), http.StatusNotFound, log.NewLogfmtLogger(&buf))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, buf.String(), "can't write response")
	assert.Contains(t, buf.String(), "connection reset")
}
