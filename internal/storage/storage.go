// internal/storage/storage.go
package storage

import "github.com/OCAP2/wheelsim/pkg/core"

// Backend is the interface all telemetry storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// AddVehicle registers a created vehicle and assigns its ID
	AddVehicle(v *core.VehicleSummary) error

	// RecordTick stores one tick sample of a registered vehicle
	RecordTick(s *core.TickSample) error
}

// Exporter is an optional interface for backends that write files on Close.
type Exporter interface {
	ExportedFilePaths() []string
}
