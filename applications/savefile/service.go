package savefile

import (
	"context"
	"io"

	"github.com/donmikel/savefile/applications/savefile/domain"
)

type FileService interface {
	SaveFile(ctx context.Context, req domain.Request) domain.Report
	GetFile(ctx context.Context, name string) (io.ReadCloser, error)
}
