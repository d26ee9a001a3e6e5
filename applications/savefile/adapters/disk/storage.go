package disk

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/donmikel/savefile/applications/savefile/domain"
	"github.com/donmikel/savefile/applications/savefile/interfaces"
)

const filePerm = 0o644

type diskStorage struct {
	dir string
	log log.Logger
}

// NewStorage stores files directly under dir. The directory is resolved to an
// absolute path on every access, so a relative dir follows the working
// directory of the process.
func NewStorage(dir string, logger log.Logger) interfaces.Storage {
	return &diskStorage{
		dir: dir,
		log: logger,
	}
}

func (d *diskStorage) GetStorageURL() string {
	return "file://" + filepath.ToSlash(d.dir)
}

func (d *diskStorage) path(name string) (string, error) {
	if safe, err := domain.SafeFilename(name); err != nil || safe != name {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidFilename, name)
	}

	dir, err := filepath.Abs(d.dir)
	if err != nil {
		return "", fmt.Errorf("can't resolve storage dir %s: %w", d.dir, err)
	}

	return filepath.Join(dir, name), nil
}

// UploadFile truncates any existing file of the same name. Concurrent writers
// of one name are not coordinated; the last one to finish wins.
func (d *diskStorage) UploadFile(ctx context.Context, name string, body io.Reader) (n int64, err error) {
	path, err := d.path(name)
	if err != nil {
		return 0, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return 0, fmt.Errorf("can't open file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("can't close file: %w", cerr)
		}
	}()

	n, err = io.Copy(f, body)
	if err != nil {
		return n, fmt.Errorf("can't write file: %w", err)
	}

	level.Info(d.log).Log("msg", "file stored",
		"path", path,
		"size", humanize.Bytes(uint64(n)),
	)

	return n, nil
}

func (d *diskStorage) ReadFile(ctx context.Context, name string) (io.ReadCloser, error) {
	path, err := d.path(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("can't open file: %w", err)
	}

	return f, nil
}
