// internal/storage/storage_test.go
package storage_test

import (
	"io"
	"testing"

	"github.com/OCAP2/wheelsim/internal/config"
	"github.com/OCAP2/wheelsim/internal/logging"
	"github.com/OCAP2/wheelsim/internal/storage"
	"github.com/OCAP2/wheelsim/internal/storage/gormstore"
	"github.com/OCAP2/wheelsim/internal/storage/influx"
	"github.com/OCAP2/wheelsim/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDeps(t *testing.T) storage.Dependencies {
	return storage.Dependencies{
		Logger:    logging.NewZerolog(io.Discard, "info"),
		BackupDir: t.TempDir(),
	}
}

func TestNewBackend(t *testing.T) {
	tests := []struct {
		kind  string
		check func(t *testing.T, b storage.Backend)
	}{
		{"memory", func(t *testing.T, b storage.Backend) {
			assert.IsType(t, &memory.Backend{}, b)
			_, ok := b.(storage.Exporter)
			assert.True(t, ok)
		}},
		{"sqlite", func(t *testing.T, b storage.Backend) { assert.IsType(t, &gormstore.Backend{}, b) }},
		{"postgres", func(t *testing.T, b storage.Backend) { assert.IsType(t, &gormstore.Backend{}, b) }},
		{"influx", func(t *testing.T, b storage.Backend) { assert.IsType(t, &influx.Backend{}, b) }},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			b, err := storage.NewBackend(config.StorageConfig{Type: tt.kind}, testDeps(t))
			require.NoError(t, err)
			tt.check(t, b)
		})
	}
}

func TestNewBackend_Unknown(t *testing.T) {
	_, err := storage.NewBackend(config.StorageConfig{Type: "tape"}, testDeps(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage type: tape")
}
