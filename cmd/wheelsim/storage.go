package main

import (
	"fmt"

	"github.com/OCAP2/wheelsim/internal/config"
	"github.com/OCAP2/wheelsim/internal/logging"
	"github.com/OCAP2/wheelsim/internal/storage"
	"github.com/spf13/viper"
)

func createStorageBackend(storageCfg config.StorageConfig) (storage.Backend, error) {
	influxCfg := config.GetInfluxConfig()
	backupDir := influxCfg.BackupDir
	if backupDir == "" {
		backupDir = viper.GetString("logsDir")
	}

	backend, err := storage.NewBackend(storageCfg, storage.Dependencies{
		DB:        config.GetDBConfig(),
		Influx:    influxCfg,
		Logger:    logging.NewZerolog(logWriter(), viper.GetString("logLevel")),
		BackupDir: backupDir,
		DumpPath:  defaultDumpPath(),
	})
	if err != nil {
		Logger.Error("Failed to create storage backend", "error", err)
		return nil, fmt.Errorf("failed to create storage backend: %w", err)
	}
	Logger.Info("Storage backend created", "type", storageCfg.Type)
	return backend, nil
}
