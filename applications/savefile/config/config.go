package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v2"
)

const (
	StorageDisk   = "disk"
	StorageMemory = "memory"
)

const (
	defaultStorageDir      = "uploads"
	defaultStorageCapacity = "100 MB"
	defaultLogLevel        = "info"
)

type Server struct {
	API      Api      `yaml:"api"`
	Storage  Storage  `yaml:"storage"`
	Response Response `yaml:"response"`
	Log      Log      `yaml:"log"`
}

type Api struct {
	HTTPAddr string `yaml:"http_addr"`
}

type Storage struct {
	Type string `yaml:"type"`
	Dir  string `yaml:"dir"`
	// Capacity bounds the memory storage, e.g. "100 MB".
	Capacity string `yaml:"capacity"`
}

type Response struct {
	SeparateDiagnostics bool `yaml:"separate_diagnostics"`
}

type Log struct {
	Level string `yaml:"level"`
}

// Default is the configuration used when no config file is given.
func Default() Server {
	return Server{
		Storage: Storage{
			Type:     StorageDisk,
			Dir:      defaultStorageDir,
			Capacity: defaultStorageCapacity,
		},
		Log: Log{Level: defaultLogLevel},
	}
}

// Parse reads a YAML config over the defaults. An empty path returns the
// defaults.
func Parse(path string) (Server, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Server{}, fmt.Errorf("can't read config file: %w", err)
	}

	if err = yaml.UnmarshalStrict(data, &cfg); err != nil {
		return Server{}, fmt.Errorf("can't unmarshal config: %w", err)
	}

	return cfg, nil
}

func (s Server) Validate() error {
	switch s.Storage.Type {
	case StorageDisk:
		if s.Storage.Dir == "" {
			return errors.New("storage.dir is required for disk storage")
		}
	case StorageMemory:
		if _, err := s.Storage.CapacityBytes(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown storage.type %q", s.Storage.Type)
	}

	switch s.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log.level %q", s.Log.Level)
	}

	return nil
}

func (s Storage) CapacityBytes() (int64, error) {
	n, err := humanize.ParseBytes(s.Capacity)
	if err != nil {
		return 0, fmt.Errorf("invalid storage.capacity %q: %w", s.Capacity, err)
	}

	return int64(n), nil
}
