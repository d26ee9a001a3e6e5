package http

import (
	"errors"
	"io"
	"io/fs"
	"net/http"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/mux"

	"github.com/donmikel/savefile/applications/savefile"
	"github.com/donmikel/savefile/applications/savefile/domain"
	"github.com/donmikel/savefile/applications/savefile/handlers/page"
)

const uploadPath = "/upload"

func NewRouter(svc savefile.FileService, opts page.Options, logger log.Logger) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc(uploadPath, UploadFormHandler(logger)).Methods(http.MethodGet)
	r.HandleFunc(uploadPath, SaveFileHandler(svc, opts, logger)).Methods(http.MethodPost)
	r.HandleFunc("/files/{filename}", GetFileHandler(svc, logger)).Methods(http.MethodGet)
	return r
}

func UploadFormHandler(logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", page.ContentType)
		if err := page.WriteForm(w, uploadPath); err != nil {
			level.Error(logger).Log("msg", "can't write upload form", "err", err)
		}
	}
}

// SaveFileHandler always answers 200; the outcome is in the page.
func SaveFileHandler(svc savefile.FileService, opts page.Options, logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contentLength := r.ContentLength
		if contentLength < 0 {
			contentLength = 0
		}

		report := svc.SaveFile(r.Context(), domain.Request{
			ContentType:   r.Header.Get("Content-Type"),
			ContentLength: contentLength,
			Body:          r.Body,
		})

		w.Header().Set("Content-Type", page.ContentType)
		if err := page.Write(w, report, opts); err != nil {
			level.Error(logger).Log("msg", "can't write report", "err", err)
		}
	}
}

func GetFileHandler(svc savefile.FileService, logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename := mux.Vars(r)["filename"]

		body, err := svc.GetFile(r.Context(), filename)
		switch {
		case errors.Is(err, domain.ErrInvalidFilename):
			writeErr(w, err, http.StatusBadRequest, logger)
			return
		case errors.Is(err, fs.ErrNotExist):
			writeErr(w, errors.New("file not found"), http.StatusNotFound, logger)
			return
		case err != nil:
			level.Error(logger).Log("msg", "GetFile error", "err", err)
			writeErr(w, err, http.StatusInternalServerError, logger)
			return
		}
		defer body.Close()

		w.Header().Set("Content-Type", "application/octet-stream")
		if _, err = io.Copy(w, body); err != nil {
			level.Error(logger).Log("msg", "error body copy", "err", err)
			return
		}
	}
}

func writeErr(w http.ResponseWriter, err error, status int, logger log.Logger) {
	w.WriteHeader(status)
	_, err = w.Write([]byte(err.Error()))
	if err != nil {
		level.Error(logger).Log("msg", "can't write response", "err", err)
	}
}
