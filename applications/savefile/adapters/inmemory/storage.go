package inmemory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/donmikel/savefile/applications/savefile/interfaces"
)

const DefaultCapacityInBytes = 100_000_000 // 100 MB, as humanize parses it

type inMemoryStorage struct {
	dataByName map[string][]byte
	freeSpace  int64
	url        string
	log        log.Logger
	mutex      sync.RWMutex
}

func NewStorage(url string, capacity int64, logger log.Logger) interfaces.Storage {
	return &inMemoryStorage{
		url:        url,
		log:        logger,
		dataByName: map[string][]byte{},
		freeSpace:  capacity,
	}
}

func (m *inMemoryStorage) GetStorageURL() string {
	return m.url
}

func (m *inMemoryStorage) UploadFile(ctx context.Context, name string, body io.Reader) (int64, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return 0, err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	dataLen := int64(len(data))
	// an overwrite gives back the space of the old content
	available := m.freeSpace + int64(len(m.dataByName[name]))
	if dataLen > available {
		return 0, fmt.Errorf("not enough free space: need %s, have %s",
			humanize.Bytes(uint64(dataLen)), humanize.Bytes(uint64(available)))
	}

	m.dataByName[name] = data
	m.freeSpace = available - dataLen

	level.Info(m.log).Log("msg", "file stored",
		"name", name,
		"storage", m.url,
		"size", humanize.Bytes(uint64(dataLen)),
		"free_space", humanize.Bytes(uint64(m.freeSpace)),
	)

	return dataLen, nil
}

func (m *inMemoryStorage) ReadFile(ctx context.Context, name string) (io.ReadCloser, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	data, ok := m.dataByName[name]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", name, fs.ErrNotExist)
	}

	level.Info(m.log).Log("msg", "file read",
		"name", name,
		"storage", m.url,
	)

	return io.NopCloser(bytes.NewReader(data)), nil
}
