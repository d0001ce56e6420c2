// pkg/core/telemetry.go
package core

import "time"

// VehicleSummary is recorded once when a vehicle has been created.
// ID is assigned by the storage backend.
type VehicleSummary struct {
	ID            uint
	Name          string
	CreatedAt     time.Time
	Config        VehicleConfig
	Wheels        [WheelCount]WheelSpec
	Wheelbase     float64
	FrontLeverArm float64
	RearLeverArm  float64
	FootprintArea float64
	Footprint     [][2]float64 // contact polygon in the XY plane, FL, FR, BR, BL
	Warnings      []string
}

// TickSample captures the inputs and issued torques of one tick.
type TickSample struct {
	VehicleID    uint
	Tick         uint64
	Time         time.Time
	Controlled   bool
	Skipped      bool
	SkipReason   string
	Accelerator  float64
	Steering     float64
	Brake        float64
	EngineTorque float64
	BrakeTorque  float64
	SteerAngle   float64
}
