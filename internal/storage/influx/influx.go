// Package influx implements the storage.Backend interface by writing one
// InfluxDB point per created vehicle and per tick.
package influx

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/OCAP2/wheelsim/internal/config"
	influxmgr "github.com/OCAP2/wheelsim/internal/influx"
	"github.com/OCAP2/wheelsim/pkg/core"
	"github.com/rs/zerolog"
)

const connectTimeout = 5 * time.Second

// Backend writes telemetry through an influx Manager.
type Backend struct {
	mgr   *influxmgr.Manager
	log   zerolog.Logger
	names map[uint]string // vehicle ID to name, used as the tick tag

	nextID uint
	mu     sync.Mutex
}

// New creates an influx backend. backupPath receives gzip line protocol
// whenever the server cannot be reached.
func New(cfg config.InfluxConfig, backupPath string, log zerolog.Logger) *Backend {
	return &Backend{
		mgr:   influxmgr.NewManager(log, cfg, backupPath),
		log:   log,
		names: make(map[uint]string),
	}
}

// Manager exposes the underlying connection manager.
func (b *Backend) Manager() *influxmgr.Manager {
	return b.mgr
}

// Init connects to InfluxDB. A disabled config writes straight to the backup file.
func (b *Backend) Init() error {
	if !b.mgr.Config.Enabled {
		b.log.Info().Msg("InfluxDB disabled, writing telemetry to backup file")
		return b.mgr.OpenBackup()
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return b.mgr.Connect(ctx)
}

// Close flushes and releases the writer.
func (b *Backend) Close() error {
	return b.mgr.Close()
}

// AddVehicle assigns a process-local ID and writes the vehicle point.
func (b *Backend) AddVehicle(v *core.VehicleSummary) error {
	b.mu.Lock()
	b.nextID++
	v.ID = b.nextID
	b.names[v.ID] = v.Name
	b.mu.Unlock()

	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	return b.mgr.WritePoint(influxmgr.VehiclePoint(v))
}

// RecordTick writes one tick point tagged with the vehicle name.
func (b *Backend) RecordTick(s *core.TickSample) error {
	b.mu.Lock()
	name, ok := b.names[s.VehicleID]
	b.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown vehicle id %d", s.VehicleID)
	}
	return b.mgr.WritePoint(influxmgr.TickPoint(name, s))
}
