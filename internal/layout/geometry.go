package layout

import (
	"fmt"

	"github.com/OCAP2/wheelsim/pkg/core"
)

// StaticGeometry is a GeometrySource backed by fixed attachment offsets, for
// vehicles configured from a data file instead of a visual model.
type StaticGeometry map[core.WheelIndex]core.Vec3

// GetWheelAttachmentOffset implements core.GeometrySource.
func (g StaticGeometry) GetWheelAttachmentOffset(i core.WheelIndex) (core.Vec3, bool) {
	v, ok := g[i]
	return v, ok
}

// SymmetricGeometry places four attachment points at +-halfTrack laterally,
// frontArm ahead of and rearArm behind the centre of mass, height z.
func SymmetricGeometry(halfTrack, frontArm, rearArm, z float64) StaticGeometry {
	return StaticGeometry{
		core.FrontLeft:  {-halfTrack, frontArm, z},
		core.FrontRight: {halfTrack, frontArm, z},
		core.BackLeft:   {-halfTrack, -rearArm, z},
		core.BackRight:  {halfTrack, -rearArm, z},
	}
}

// Capabilities returns the actuator flags of wheel i for the drivetrain.
// Front wheels steer, every wheel brakes. ok is false for an unknown drivetrain,
// in which case rear-wheel drive is assumed.
func Capabilities(d core.Drivetrain, i core.WheelIndex) (caps core.Capability, ok bool) {
	caps = core.Braked
	if i.IsFront() {
		caps |= core.Steered
	}

	ok = true
	switch d {
	case core.FrontWheelDrive:
		if i.IsFront() {
			caps |= core.Powered
		}
	case core.AllWheelDrive:
		caps |= core.Powered
	case core.RearWheelDrive:
		if !i.IsFront() {
			caps |= core.Powered
		}
	default:
		ok = false
		if !i.IsFront() {
			caps |= core.Powered
		}
	}
	return caps, ok
}

func missingWheelsError(missing []core.WheelIndex) error {
	names := make([]string, len(missing))
	for i, m := range missing {
		names[i] = m.String()
	}
	return fmt.Errorf("%w: %v", ErrMissingAttachment, names)
}
