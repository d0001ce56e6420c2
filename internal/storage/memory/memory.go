// internal/storage/memory/memory.go
package memory

import (
	"fmt"
	"sync"

	"github.com/OCAP2/wheelsim/internal/config"
	"github.com/OCAP2/wheelsim/pkg/core"
)

// VehicleRecord groups a vehicle with all its tick samples
type VehicleRecord struct {
	Vehicle core.VehicleSummary
	Ticks   []core.TickSample
}

// Backend keeps telemetry in memory and exports one JSON file per vehicle on Close
type Backend struct {
	cfg config.MemoryConfig

	vehicles map[uint]*VehicleRecord // keyed by assigned ID
	order    []uint

	idCounter     uint
	exportedPaths []string
	closed        bool
	mu            sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:      cfg,
		vehicles: make(map[uint]*VehicleRecord),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close exports every recorded vehicle. Calling it again is a no-op.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	return b.exportJSON()
}

// AddVehicle registers a new vehicle
func (b *Backend) AddVehicle(v *core.VehicleSummary) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	v.ID = b.idCounter

	rec := &VehicleRecord{Vehicle: *v, Ticks: make([]core.TickSample, 0)}
	rec.Vehicle.Warnings = append([]string(nil), v.Warnings...)
	b.vehicles[v.ID] = rec
	b.order = append(b.order, v.ID)
	return nil
}

// RecordTick appends a tick sample to its vehicle
func (b *Backend) RecordTick(s *core.TickSample) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.vehicles[s.VehicleID]
	if !ok {
		return fmt.Errorf("unknown vehicle id %d", s.VehicleID)
	}
	rec.Ticks = append(rec.Ticks, *s)
	return nil
}

// GetVehicle looks up a vehicle record by ID
func (b *Backend) GetVehicle(id uint) (*VehicleRecord, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, ok := b.vehicles[id]
	return rec, ok
}

// ExportedFilePaths returns the files written by Close
func (b *Backend) ExportedFilePaths() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return append([]string(nil), b.exportedPaths...)
}
