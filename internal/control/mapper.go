// Package control maps normalized driver inputs onto per-wheel actuator commands.
package control

import (
	"math"

	"github.com/OCAP2/wheelsim/pkg/core"
)

// Limits are the physical maxima the normalized inputs are scaled to.
type Limits struct {
	MaxSteerAngle   float64 // radians
	MaxBrakeTorque  float64 // N*m
	MaxEngineTorque float64 // N*m
}

// LimitsFromDegrees builds Limits with the steer angle given in degrees.
func LimitsFromDegrees(maxSteerDeg, maxBrakeTorque, maxEngineTorque float64) Limits {
	return Limits{
		MaxSteerAngle:   maxSteerDeg * math.Pi / 180,
		MaxBrakeTorque:  maxBrakeTorque,
		MaxEngineTorque: maxEngineTorque,
	}
}

// Wheel is what the mapper needs to know about one built wheel.
type Wheel struct {
	Index        core.WheelIndex
	Handle       core.WheelHandle
	Capabilities core.Capability
}

// Output is the result of one Control call.
type Output struct {
	EngineTorque float64 // torque sent to powered wheels
	BrakeTorque  float64 // torque sent to braked wheels
	SteerAngle   float64 // angle sent to steered wheels
	Commands     [core.WheelCount]core.WheelCommand
}

// Mapper converts inputs to commands for a fixed set of wheels.
type Mapper struct {
	limits Limits
	wheels [core.WheelCount]Wheel
}

// NewMapper creates a Mapper for the given wheels.
func NewMapper(limits Limits, wheels [core.WheelCount]Wheel) *Mapper {
	return &Mapper{limits: limits, wheels: wheels}
}

// Limits returns the configured limits.
func (m *Mapper) Limits() Limits {
	return m.limits
}

// Control computes the commands for one tick. Inputs are clamped, never rejected.
// The engine's torque convention is opposite to the accelerator's, and the wheel
// steer convention is opposite to the steering input's; both flips are applied here.
func (m *Mapper) Control(accelerator, steering, brake float64) Output {
	accelerator = core.Clamp(accelerator, -1, 1)
	steering = core.Clamp(steering, -1, 1)
	brake = core.Clamp(brake, 0, 1)

	steerAngle := m.limits.MaxSteerAngle * steering
	out := Output{
		EngineTorque: -accelerator * m.limits.MaxEngineTorque,
		BrakeTorque:  brake * m.limits.MaxBrakeTorque,
		SteerAngle:   -steerAngle,
	}

	for i, w := range m.wheels {
		cmd := core.WheelCommand{
			Handle: w.Handle,
			Index:  w.Index,
		}
		if w.Capabilities.Has(core.Braked) {
			cmd.Apply |= core.Braked
			cmd.BrakeTorque = out.BrakeTorque
		}
		if w.Capabilities.Has(core.Powered) {
			cmd.Apply |= core.Powered
			cmd.MotorTorque = out.EngineTorque
		}
		if w.Capabilities.Has(core.Steered) {
			cmd.Apply |= core.Steered
			cmd.SteerAngle = out.SteerAngle
		}
		out.Commands[i] = cmd
	}
	return out
}

// Apply forwards one tick's commands to the engine. Engines implementing
// core.BatchApplier receive a single call; otherwise the per-wheel setters are
// issued for every capability in each command's Apply mask.
func Apply(engine core.PhysicsEngine, cmds []core.WheelCommand) {
	if b, ok := engine.(core.BatchApplier); ok {
		b.ApplyWheelCommands(cmds)
		return
	}
	for _, c := range cmds {
		if c.Apply.Has(core.Braked) {
			engine.SetWheelBrakeTorque(c.Handle, c.BrakeTorque)
		}
		if c.Apply.Has(core.Powered) {
			engine.SetWheelMotorTorque(c.Handle, c.MotorTorque)
		}
		if c.Apply.Has(core.Steered) {
			engine.SetWheelSteerAngle(c.Handle, c.SteerAngle)
		}
	}
}
