package convert

import (
	"encoding/json"
	"fmt"

	"github.com/OCAP2/wheelsim/internal/model"
	"github.com/OCAP2/wheelsim/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// pointToVec3 converts a geom.Point back to a chassis offset
func pointToVec3(p geom.Point) core.Vec3 {
	c, ok := p.Coordinates()
	if !ok {
		return core.Vec3{}
	}
	return core.Vec3{c.XY.X, c.XY.Y, c.Z}
}

// polygonToFootprint returns the exterior ring without its closing point
func polygonToFootprint(p geom.Polygon) [][2]float64 {
	if p.IsEmpty() {
		return nil
	}
	seq := p.ExteriorRing().Coordinates()
	n := seq.Length() - 1
	out := make([][2]float64, 0, n)
	for i := 0; i < n; i++ {
		xy := seq.GetXY(i)
		out = append(out, [2]float64{xy.X, xy.Y})
	}
	return out
}

// VehicleToCore converts a GORM model.Vehicle (with wheels preloaded) to a core.VehicleSummary.
func VehicleToCore(v model.Vehicle) (core.VehicleSummary, error) {
	s := core.VehicleSummary{
		ID:            v.ID,
		Name:          v.Name,
		CreatedAt:     v.CreatedAt,
		Wheelbase:     v.Wheelbase,
		FrontLeverArm: v.FrontLeverArm,
		RearLeverArm:  v.RearLeverArm,
		FootprintArea: v.FootprintArea,
		Footprint:     polygonToFootprint(v.Footprint),
	}
	if len(v.Config) > 0 {
		if err := json.Unmarshal(v.Config, &s.Config); err != nil {
			return s, fmt.Errorf("unmarshal vehicle config: %w", err)
		}
	}
	if len(v.Warnings) > 0 {
		if err := json.Unmarshal(v.Warnings, &s.Warnings); err != nil {
			return s, fmt.Errorf("unmarshal warnings: %w", err)
		}
	}
	for _, w := range v.Wheels {
		if int(w.Position) >= core.WheelCount {
			return s, fmt.Errorf("wheel %d: position %d out of range", w.ID, w.Position)
		}
		spec, err := WheelToCore(w)
		if err != nil {
			return s, err
		}
		s.Wheels[w.Position] = spec
	}
	return s, nil
}

// WheelToCore converts a GORM model.Wheel to a core.WheelSpec.
func WheelToCore(w model.Wheel) (core.WheelSpec, error) {
	spec := core.WheelSpec{
		Index:  core.WheelIndex(w.Position),
		Offset: pointToVec3(w.Offset),
		Suspension: core.SuspensionParams{
			RestLength: w.RestLength,
			Travel:     w.Travel,
			SpringRate: w.SpringRate,
			Damper:     w.Damper,
		},
	}
	if w.Powered {
		spec.Capabilities |= core.Powered
	}
	if w.Steered {
		spec.Capabilities |= core.Steered
	}
	if w.Braked {
		spec.Capabilities |= core.Braked
	}
	if len(w.Tire) > 0 {
		if err := json.Unmarshal(w.Tire, &spec.Tire); err != nil {
			return spec, fmt.Errorf("unmarshal tire: %w", err)
		}
	}
	return spec, nil
}

// TickSampleToCore converts a GORM model.TickSample to a core.TickSample.
func TickSampleToCore(s model.TickSample) core.TickSample {
	return core.TickSample{
		VehicleID:    s.VehicleID,
		Tick:         s.Tick,
		Time:         s.Time,
		Controlled:   s.Controlled,
		Skipped:      s.Skipped,
		SkipReason:   s.SkipReason,
		Accelerator:  s.Accelerator,
		Steering:     s.Steering,
		Brake:        s.Brake,
		EngineTorque: s.EngineTorque,
		BrakeTorque:  s.BrakeTorque,
		SteerAngle:   s.SteerAngle,
	}
}
