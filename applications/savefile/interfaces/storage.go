package interfaces

import (
	"context"
	"io"
)

// Storage keeps uploaded files by their sanitized name. Writing a name that
// already exists replaces the previous content.
type Storage interface {
	UploadFile(ctx context.Context, name string, body io.Reader) (int64, error)
	ReadFile(ctx context.Context, name string) (io.ReadCloser, error)
	GetStorageURL() string
}
