// Package page renders upload reports as HTML paragraph lines.
package page

import (
	"fmt"
	"html"
	"io"

	"github.com/donmikel/savefile/applications/savefile/domain"
)

const ContentType = "text/html; charset=utf-8"

// Options controls which report lines reach the response body.
type Options struct {
	// SeparateDiagnostics keeps diagnostics out of the body; they are still
	// logged by the service.
	SeparateDiagnostics bool
}

func Fragments(report domain.Report, opts Options) []string {
	var lines []string
	if !opts.SeparateDiagnostics {
		lines = append(lines, report.Diagnostics...)
	}

	return append(lines, report.Outcome.Fragments()...)
}

func Write(w io.Writer, report domain.Report, opts Options) error {
	for _, line := range Fragments(report, opts) {
		if _, err := fmt.Fprintf(w, "<p>%s</p>\n", html.EscapeString(line)); err != nil {
			return fmt.Errorf("can't write response: %w", err)
		}
	}

	return nil
}

const uploadForm = `<!DOCTYPE html>
<html>
<head><title>Upload</title></head>
<body>
<form action="%s" method="post" enctype="multipart/form-data">
<input type="file" name="file">
<input type="submit" value="Upload">
</form>
</body>
</html>
`

// WriteForm writes a minimal page posting a single "file" field to action.
func WriteForm(w io.Writer, action string) error {
	_, err := fmt.Fprintf(w, uploadForm, html.EscapeString(action))
	return err
}
