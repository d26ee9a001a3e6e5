package http

import (
	"net/http"

	"github.com/go-kit/log"

	"github.com/donmikel/savefile/applications/savefile"
	"github.com/donmikel/savefile/applications/savefile/config"
	"github.com/donmikel/savefile/applications/savefile/handlers/page"
)

func NewHTTPServer(conf config.Api, fileService savefile.FileService, opts page.Options, logger log.Logger) *http.Server {
	mux := NewRouter(fileService, opts, logger)
	return &http.Server{
		Addr:    conf.HTTPAddr,
		Handler: mux,
	}
}
