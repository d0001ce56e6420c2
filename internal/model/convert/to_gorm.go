// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"
	"fmt"

	"github.com/OCAP2/wheelsim/internal/model"
	"github.com/OCAP2/wheelsim/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

// vec3ToPoint converts a chassis offset to an XYZ geom.Point
func vec3ToPoint(v core.Vec3) geom.Point {
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: v.X(), Y: v.Y()},
		Z:    v.Z(),
		Type: geom.DimXYZ,
	})
}

// footprintToPolygon converts an open ring of XY pairs to a closed polygon
func footprintToPolygon(ring [][2]float64) geom.Polygon {
	if len(ring) < 3 {
		return geom.Polygon{}
	}
	coords := make([]float64, 0, (len(ring)+1)*2)
	for _, p := range ring {
		coords = append(coords, p[0], p[1])
	}
	coords = append(coords, ring[0][0], ring[0][1])
	ls := geom.NewLineString(geom.NewSequence(coords, geom.DimXY))
	return geom.NewPolygon([]geom.LineString{ls})
}

func toJSON(v any, empty string) (datatypes.JSON, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return datatypes.JSON(empty), nil
	}
	return datatypes.JSON(data), nil
}

// CoreToVehicle converts a core.VehicleSummary to a GORM model.Vehicle with its wheels.
func CoreToVehicle(s core.VehicleSummary) (model.Vehicle, error) {
	cfg, err := toJSON(s.Config, "{}")
	if err != nil {
		return model.Vehicle{}, fmt.Errorf("marshal vehicle config: %w", err)
	}
	warnings, err := toJSON(s.Warnings, "[]")
	if err != nil {
		return model.Vehicle{}, fmt.Errorf("marshal warnings: %w", err)
	}

	v := model.Vehicle{
		ID:            s.ID,
		CreatedAt:     s.CreatedAt,
		Name:          s.Name,
		Drivetrain:    string(s.Config.Drivetrain),
		ChassisMass:   s.Config.ChassisMass,
		Wheelbase:     s.Wheelbase,
		FrontLeverArm: s.FrontLeverArm,
		RearLeverArm:  s.RearLeverArm,
		FootprintArea: s.FootprintArea,
		Footprint:     footprintToPolygon(s.Footprint),
		Config:        cfg,
		Warnings:      warnings,
	}
	for _, w := range s.Wheels {
		mw, err := CoreToWheel(w)
		if err != nil {
			return model.Vehicle{}, err
		}
		mw.VehicleID = s.ID
		v.Wheels = append(v.Wheels, mw)
	}
	return v, nil
}

// CoreToWheel converts a core.WheelSpec to a GORM model.Wheel.
func CoreToWheel(w core.WheelSpec) (model.Wheel, error) {
	tire, err := toJSON(w.Tire, "{}")
	if err != nil {
		return model.Wheel{}, fmt.Errorf("marshal tire %s: %w", w.Index, err)
	}
	return model.Wheel{
		Position:   uint8(w.Index),
		Offset:     vec3ToPoint(w.Offset),
		Powered:    w.Capabilities.Has(core.Powered),
		Steered:    w.Capabilities.Has(core.Steered),
		Braked:     w.Capabilities.Has(core.Braked),
		RestLength: w.Suspension.RestLength,
		Travel:     w.Suspension.Travel,
		SpringRate: w.Suspension.SpringRate,
		Damper:     w.Suspension.Damper,
		Tire:       tire,
	}, nil
}

// CoreToTickSample converts a core.TickSample to a GORM model.TickSample.
func CoreToTickSample(s core.TickSample) model.TickSample {
	return model.TickSample{
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
