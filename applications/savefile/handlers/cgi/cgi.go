// Package cgi serves a single upload request through the CGI/1.1 interface:
// meta variables from the environment, the body on stdin and the response on
// stdout.
package cgi

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/donmikel/savefile/applications/savefile"
	"github.com/donmikel/savefile/applications/savefile/domain"
	"github.com/donmikel/savefile/applications/savefile/handlers/page"
)

// Getenv looks up a CGI meta variable, os.Getenv in production.
type Getenv func(key string) string

// ReadRequest builds the upload request from CONTENT_TYPE and CONTENT_LENGTH.
// A missing, malformed or negative length counts as zero.
func ReadRequest(getenv Getenv, stdin io.Reader) domain.Request {
	return domain.Request{
		ContentType:   getenv("CONTENT_TYPE"),
		ContentLength: parseContentLength(getenv("CONTENT_LENGTH")),
		Body:          stdin,
	}
}

func parseContentLength(v string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || n < 0 {
		return 0
	}

	return n
}

// Serve handles exactly one request. The only error returned is a failure to
// write the response.
func Serve(ctx context.Context, svc savefile.FileService, getenv Getenv, stdin io.Reader, stdout io.Writer,
	opts page.Options, logger log.Logger) error {
	req := ReadRequest(getenv, stdin)

	level.Debug(logger).Log("msg", "cgi request",
		"method", getenv("REQUEST_METHOD"),
		"script", getenv("SCRIPT_NAME"),
		"content_length", req.ContentLength,
	)

	report := svc.SaveFile(ctx, req)

	w := bufio.NewWriter(stdout)
	if _, err := fmt.Fprintf(w, "Content-Type: %s\r\n\r\n", page.ContentType); err != nil {
		return fmt.Errorf("can't write cgi header: %w", err)
	}

	if err := page.Write(w, report, opts); err != nil {
		return err
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("can't flush response: %w", err)
	}

	return nil
}
