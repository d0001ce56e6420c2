// Package tire holds the per-axle tire parameters handed to wheel creation.
// Values pass through unmodified; plausibility checks belong to the config layer.
package tire

import "github.com/OCAP2/wheelsim/pkg/core"

// AxleSet pairs the front and rear tire parameters of one vehicle.
type AxleSet struct {
	Front core.WheelTire
	Rear  core.WheelTire
}

// NewAxleSet copies the tire curve and wheel dimensions of both axles out of cfg.
func NewAxleSet(cfg core.VehicleConfig) AxleSet {
	return AxleSet{
		Front: fromAxle(cfg.Front),
		Rear:  fromAxle(cfg.Rear),
	}
}

func fromAxle(a core.AxleConfig) core.WheelTire {
	return core.WheelTire{
		Curve:  a.Tire,
		Mass:   a.WheelMass,
		Radius: a.WheelRadius,
		Width:  a.WheelWidth,
	}
}

// ForWheel returns the front set for front wheels and the rear set otherwise.
func (s AxleSet) ForWheel(i core.WheelIndex) core.WheelTire {
	if i.IsFront() {
		return s.Front
	}
	return s.Rear
}
