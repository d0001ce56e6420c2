// internal/storage/factory.go
package storage

import (
	"fmt"
	"path/filepath"

	"github.com/OCAP2/wheelsim/internal/config"
	"github.com/OCAP2/wheelsim/internal/storage/gormstore"
	"github.com/OCAP2/wheelsim/internal/storage/influx"
	"github.com/OCAP2/wheelsim/internal/storage/memory"
	"github.com/rs/zerolog"
)

// Dependencies carries the settings shared by the database backed stores.
type Dependencies struct {
	DB        config.DBConfig
	Influx    config.InfluxConfig
	Logger    zerolog.Logger
	BackupDir string // influx line-protocol backups
	DumpPath  string // sqlite file written when the database lives in memory
}

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, deps Dependencies) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		return gormstore.New(gormstore.Config{Postgres: &deps.DB, DumpPath: deps.DumpPath}, deps.Logger), nil
	case "sqlite":
		return gormstore.New(gormstore.Config{SQLitePath: cfg.SQLite.Path, DumpPath: deps.DumpPath}, deps.Logger), nil
	case "influx":
		backup := filepath.Join(deps.BackupDir, "influx_backup.log.gz")
		return influx.New(deps.Influx, backup, deps.Logger), nil
	case "memory":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
