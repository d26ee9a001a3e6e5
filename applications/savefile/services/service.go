package services

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/donmikel/savefile/applications/savefile"
	"github.com/donmikel/savefile/applications/savefile/domain"
	"github.com/donmikel/savefile/applications/savefile/interfaces"
)

type service struct {
	storage interfaces.Storage
	logger  log.Logger
}

func NewService(storage interfaces.Storage, logger log.Logger) savefile.FileService {
	return &service{
		storage: storage,
		logger:  logger,
	}
}

// SaveFile never fails: decode and storage errors end up in the report
// outcome.
func (s *service) SaveFile(ctx context.Context, req domain.Request) domain.Report {
	var report domain.Report

	diagnose := func(format string, args ...interface{}) {
		msg := report.Diagnose(format, args...)
		level.Debug(s.logger).Log("msg", msg)
	}

	submission, err := decodeSubmission(req, diagnose)
	if err != nil {
		level.Warn(s.logger).Log("msg", "can't decode form data", "err", err)
		report.Outcome = domain.ParseFailed(err)
		return report
	}

	report.Outcome = persistSubmission(ctx, s.storage, submission)

	switch report.Outcome.Kind {
	case domain.Success:
		level.Info(s.logger).Log("msg", "file uploaded",
			"filename", report.Outcome.Filename,
			"stored_as", report.Outcome.StoredAs,
			"size", humanize.Bytes(uint64(report.Outcome.Size)),
			"storage", s.storage.GetStorageURL(),
		)
	case domain.StorageError:
		level.Error(s.logger).Log("msg", "can't save file",
			"filename", report.Outcome.Filename,
			"err", report.Outcome.Err,
		)
	default:
		level.Info(s.logger).Log("msg", "nothing to save", "outcome", report.Outcome.Kind)
	}

	return report
}

func (s *service) GetFile(ctx context.Context, name string) (io.ReadCloser, error) {
	safe, err := domain.SafeFilename(name)
	if err != nil {
		return nil, err
	}
	if safe != name {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidFilename, name)
	}

	body, err := s.storage.ReadFile(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("can't read file: %w", err)
	}

	return body, nil
}
