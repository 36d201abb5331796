package store

import (
	"fmt"

	"github.com/ayoisaiah/studyblocks/internal/config"
)

// Open opens the storage driver selected by cfg at path.
func Open(cfg config.StorageConfig, path string, opts ...Option) (Store, error) {
	switch cfg.Driver {
	case config.DriverBolt, "":
		return NewBolt(path, opts...)
	case config.DriverSQLite:
		return NewSQLite(path, opts...)
	}

	return nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
}
