package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/sync/errgroup"

	"github.com/donmikel/savefile/applications/savefile"
	"github.com/donmikel/savefile/applications/savefile/adapters/disk"
	"github.com/donmikel/savefile/applications/savefile/adapters/inmemory"
	"github.com/donmikel/savefile/applications/savefile/config"
	"github.com/donmikel/savefile/applications/savefile/handlers/cgi"
	"github.com/donmikel/savefile/applications/savefile/handlers/http"
	"github.com/donmikel/savefile/applications/savefile/handlers/page"
	"github.com/donmikel/savefile/applications/savefile/interfaces"
	"github.com/donmikel/savefile/applications/savefile/services"
)

// exitCode is a process termination code.
type exitCode int

// Possible process termination codes are listed below.
const (
	// exitSuccess is code for successful program termination.
	exitSuccess exitCode = 0
	// exitFailure is code for unsuccessful program termination.
	exitFailure exitCode = 1
)

const (
	modeCGI  = "cgi"
	modeHTTP = "http"
)

// Environment variables read when the binary runs as a CGI script and gets no
// arguments.
const (
	envConfigPath = "SAVEFILE_CONFIG"
	envStorageDir = "SAVEFILE_STORAGE_DIR"
)

// It's recommended to wait for 5 seconds before terminating the program; see references
// https://github.com/kubernetes-retired/contrib/issues/1140, https://youtu.be/me5iyiheOC8?t=1797.
const preStopWait = 5 * time.Second

// Shutdown timeout for http servers.
const shutdownTimeout = 5 * time.Second

var (
	// version is the service version from git tag.
	version = ""
)

func main() {
	os.Exit(int(gracefulMain()))
}

// gracefulMain releases resources gracefully upon termination.
// When we call os.Exit defer statements do not run resulting in unclean process shutdown.
// nolint
func gracefulMain() exitCode {
	var logger log.Logger
	{
		logger = log.NewJSONLogger(log.NewSyncWriter(os.Stderr))
		logger = log.With(logger, "ts", log.DefaultTimestampUTC)
		logger = log.With(logger, "caller", log.DefaultCaller)
	}
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv(envConfigPath), "path to the config file")
	mode := fs.String("mode", defaultMode(), "serve a single CGI request (cgi) or run an HTTP server (http)")
	v := fs.Bool("v", false, "Show version")

	err := fs.Parse(os.Args[1:])
	if err == flag.ErrHelp {
		return exitSuccess
	}
	if err != nil {
		logger.Log("msg", "parsing cli flags failed", "err", err)
		return exitFailure
	}

	if *v {
		if version == "" {
			level.Error(logger).Log("msg", "version not set")
		} else {
			level.Info(logger).Log("version", version)
		}

		return exitSuccess
	}

	cfg, err := config.Parse(*configPath)
	if err != nil {
		logger.Log("msg", "cannot parse service config", "err", err)
		return exitFailure
	}

	if dir := os.Getenv(envStorageDir); dir != "" {
		cfg.Storage.Dir = dir
	}

	err = cfg.Validate()
	if err != nil {
		logger.Log("msg", "config validation failed", "err", err)
		return exitFailure
	}

	logger = level.NewFilter(logger, levelOption(cfg.Log.Level))

	// It's nice to be able to see panics in Logs, hence we monitor for panics after
	// logger has been bootstrapped.
	defer monitorPanic(logger)
	ctx := context.Background()

	var storage interfaces.Storage
	{
		storage, err = newStorage(cfg.Storage, logger)
		if err != nil {
			level.Error(logger).Log("msg", "can't create storage", "err", err)
			return exitFailure
		}
	}

	var fileService savefile.FileService
	{
		fileService = services.NewService(storage, logger)
	}

	opts := page.Options{SeparateDiagnostics: cfg.Response.SeparateDiagnostics}

	switch *mode {
	case modeCGI:
		if err = cgi.Serve(ctx, fileService, os.Getenv, os.Stdin, os.Stdout, opts, logger); err != nil {
			level.Error(logger).Log("msg", "can't serve cgi request", "err", err)
			return exitFailure
		}

		return exitSuccess
	case modeHTTP:
		return serveHTTP(ctx, cfg.API, fileService, opts, logger)
	default:
		level.Error(logger).Log("msg", "unknown mode", "mode", *mode)
		return exitFailure
	}
}

func serveHTTP(ctx context.Context, conf config.Api, fileService savefile.FileService, opts page.Options, logger log.Logger) exitCode {
	hServer := http.NewHTTPServer(conf, fileService, opts, logger)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s := <-sig:
			level.Info(logger).Log("msg", fmt.Sprintf("signal received (waiting %v before terminating): %v", preStopWait, s))
			time.Sleep(preStopWait)
			level.Info(logger).Log("msg", "terminating...")

			return fmt.Errorf("signal received: %s", s)
		}
	})

	group.Go(func() error {
		level.Info(logger).Log("msg", "listening", "addr", conf.HTTPAddr)
		if err := hServer.ListenAndServe(); err != nil {
			return fmt.Errorf("listen and server error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()

		level.Info(logger).Log("msg", "graceful shutdown of server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := hServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}

		return ctx.Err()
	})

	if err := group.Wait(); err != nil {
		level.Error(logger).Log("msg", fmt.Sprintf("actors stopped with err: %v", err))
		return exitFailure
	}

	level.Info(logger).Log("msg", "actors stopped without errors")

	return exitSuccess
}

// defaultMode picks cgi when a web server started us as a CGI script.
func defaultMode() string {
	if os.Getenv("GATEWAY_INTERFACE") != "" {
		return modeCGI
	}

	return modeHTTP
}

func newStorage(conf config.Storage, logger log.Logger) (interfaces.Storage, error) {
	switch conf.Type {
	case config.StorageMemory:
		capacity, err := conf.CapacityBytes()
		if err != nil {
			return nil, err
		}

		return inmemory.NewStorage("memory", capacity, logger), nil
	case config.StorageDisk:
		return disk.NewStorage(conf.Dir, logger), nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", conf.Type)
	}
}

func levelOption(lvl string) level.Option {
	switch lvl {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}

// monitorPanic monitors panics and reports them somewhere (e.g. logs, ...).
func monitorPanic(logger log.Logger) {
	if rec := recover(); rec != nil {
		err := fmt.Sprintf("panic: %v \n stack trace: %s", rec, debug.Stack())
		level.Error(logger).Log("err", err)
		panic(err)
	}
}
