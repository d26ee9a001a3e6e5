package services

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strings"

	"github.com/donmikel/savefile/applications/savefile/domain"
)

const formDataType = "multipart/form-data"

type diagnoseFunc func(format string, args ...interface{})

// decodeSubmission reads exactly req.ContentLength bytes of a multipart form
// body and returns its named parts. A non multipart content type gives an
// empty submission and no error.
func decodeSubmission(req domain.Request, diagnose diagnoseFunc) (domain.Submission, error) {
	submission := domain.NewSubmission()

	diagnose("CONTENT_TYPE=%s, CONTENT_LENGTH=%d", req.ContentType, req.ContentLength)

	if !strings.HasPrefix(strings.ToLower(req.ContentType), formDataType) {
		diagnose("not %s", formDataType)
		return submission, nil
	}

	raw, err := readBody(req)
	if err != nil {
		return domain.NewSubmission(), err
	}
	diagnose("read %d bytes of request body", len(raw))

	_, params, err := mime.ParseMediaType(req.ContentType)
	if err != nil {
		return domain.NewSubmission(), fmt.Errorf("can't parse content type: %w", err)
	}

	boundary := params["boundary"]
	if boundary == "" {
		return domain.NewSubmission(), errors.New("no boundary in content type")
	}

	if len(raw) == 0 {
		return domain.NewSubmission(), errors.New("empty multipart body")
	}

	mr := multipart.NewReader(bytes.NewReader(raw), boundary)
	for {
		part, err := mr.NextPart()
		// only the final delimiter yields a bare io.EOF; a wrapped one means
		// the body ended mid-frame
		if err == io.EOF {
			break
		}
		if err != nil {
			return domain.NewSubmission(), fmt.Errorf("can't read next part: %w", err)
		}

		if err = decodePart(part, submission, diagnose); err != nil {
			return domain.NewSubmission(), err
		}
	}

	return submission, nil
}

func readBody(req domain.Request) ([]byte, error) {
	if req.Body == nil || req.ContentLength <= 0 {
		return nil, nil
	}

	raw, err := io.ReadAll(io.LimitReader(req.Body, req.ContentLength))
	if err != nil {
		return nil, fmt.Errorf("can't read request body: %w", err)
	}

	return raw, nil
}

func decodePart(part *multipart.Part, submission domain.Submission, diagnose diagnoseFunc) error {
	defer part.Close()

	// Part.FileName would already strip directories; the raw parameter is
	// kept so the persister decides on the stored name.
	disposition, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	if err != nil {
		diagnose("skipped part with invalid Content-Disposition: %v", err)
		return nil
	}
	if disposition != "form-data" {
		return nil
	}

	name := params["name"]
	filename, isFile := params["filename"]
	diagnose("found part name=%s, filename=%s", name, describeFilename(filename, isFile))

	if name == "" {
		return nil
	}

	content, err := readPartBody(part)
	if err != nil {
		return fmt.Errorf("can't read part %q: %w", name, err)
	}

	if !isFile {
		submission.Set(name, domain.Text(content))
		return nil
	}

	contentType := part.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain"
	}

	submission.Set(name, domain.FilePart{
		Filename:    filename,
		Content:     payloadFor(contentType, content),
		ContentType: contentType,
	})

	return nil
}

// readPartBody undoes a base64 transfer encoding. The multipart reader
// already decodes quoted-printable.
func readPartBody(part *multipart.Part) ([]byte, error) {
	var r io.Reader = part
	if strings.EqualFold(strings.TrimSpace(part.Header.Get("Content-Transfer-Encoding")), "base64") {
		r = base64.NewDecoder(base64.StdEncoding, part)
	}

	return io.ReadAll(r)
}

// payloadFor exposes declared text parts as Latin-1 text, which keeps every
// byte; everything else stays raw.
func payloadFor(contentType string, content []byte) domain.Payload {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err == nil && strings.HasPrefix(mediaType, "text/") {
		return domain.Latin1Decode(content)
	}

	return domain.RawBytes(content)
}

func describeFilename(filename string, present bool) string {
	if !present {
		return "<none>"
	}

	return filename
}
