// pkg/core/control.go
package core

import "math"

// Clamp limits v to [lo, hi]. NaN is treated as the neutral input 0, then limited.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		v = 0
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ControlInputState is the per-vehicle record of normalized driver inputs and the
// torque requests produced by the last control mapping.
type ControlInputState struct {
	Accelerator float64 // [-1, 1], negative requests reverse
	Steering    float64 // [-1, 1]
	Brake       float64 // [0, 1]

	EngineTorque float64 // last engine torque request (N*m)
	BrakeTorque  float64 // last brake torque request (N*m)
}

// Set stores the three normalized inputs, clamped to their ranges.
func (s *ControlInputState) Set(accelerator, steering, brake float64) {
	s.Accelerator = Clamp(accelerator, -1, 1)
	s.Steering = Clamp(steering, -1, 1)
	s.Brake = Clamp(brake, 0, 1)
}

// Reset zeroes the inputs. Cached torque requests are kept until the next mapping.
func (s *ControlInputState) Reset() {
	s.Accelerator, s.Steering, s.Brake = 0, 0, 0
}

// WheelCommand is the actuator command for one wheel in one tick.
// Only the values whose capability bit is set in Apply are issued to the engine.
type WheelCommand struct {
	Handle      WheelHandle
	Index       WheelIndex
	Apply       Capability
	MotorTorque float64
	BrakeTorque float64
	SteerAngle  float64
}
