// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/OCAP2/wheelsim/pkg/core"
)

// ExportVersion is bumped whenever the file layout changes.
const ExportVersion = 1

// VehicleExport is the root JSON structure of one exported vehicle
type VehicleExport struct {
	Version       int                `json:"version"`
	ID            uint               `json:"id"`
	Name          string             `json:"name"`
	CreatedAt     time.Time          `json:"createdAt"`
	Config        core.VehicleConfig `json:"config"`
	Wheels        []WheelJSON        `json:"wheels"`
	Wheelbase     float64            `json:"wheelbase"`
	FrontLeverArm float64            `json:"frontLeverArm"`
	RearLeverArm  float64            `json:"rearLeverArm"`
	FootprintArea float64            `json:"footprintArea"`
	Footprint     [][2]float64       `json:"footprint"`
	Warnings      []string           `json:"warnings"`
	EndTick       uint64             `json:"endTick"`
	// Format: [tick, accelerator, steering, brake, engineTorque, brakeTorque, steerAngle, controlled, skipReason]
	Ticks [][]any `json:"ticks"`
}

// WheelJSON is one wheel with its capabilities spelled out
type WheelJSON struct {
	Position     string                `json:"position"`
	Offset       [3]float64            `json:"offset"`
	Capabilities string                `json:"capabilities"`
	Tire         core.WheelTire        `json:"tire"`
	Suspension   core.SuspensionParams `json:"suspension"`
}

// exportJSON writes one file per vehicle to the output directory
func (b *Backend) exportJSON() error {
	if len(b.order) == 0 {
		return nil
	}

	outputDir := b.cfg.OutputDir
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	used := make(map[string]bool, len(b.order))
	var errs []error
	for _, id := range b.order {
		rec := b.vehicles[id]

		base := fileBaseName(rec.Vehicle)
		if used[base] {
			base = fmt.Sprintf("%s_%d", base, id)
		}
		used[base] = true

		filename := base + ".json"
		if b.cfg.CompressOutput {
			filename += ".gz"
		}
		outputPath := filepath.Join(outputDir, filename)

		if err := writeJSON(outputPath, buildExport(rec), b.cfg.CompressOutput); err != nil {
			errs = append(errs, fmt.Errorf("vehicle %d: %w", id, err))
			continue
		}
		b.exportedPaths = append(b.exportedPaths, outputPath)
	}
	return errors.Join(errs...)
}

func fileBaseName(v core.VehicleSummary) string {
	name := strings.TrimSpace(v.Name)
	if name == "" {
		return fmt.Sprintf("vehicle_%d", v.ID)
	}
	return strings.NewReplacer(" ", "_", ":", "_", "/", "_", "\\", "_").Replace(name)
}

func buildExport(rec *VehicleRecord) VehicleExport {
	v := rec.Vehicle
	export := VehicleExport{
		Version:       ExportVersion,
		ID:            v.ID,
		Name:          v.Name,
		CreatedAt:     v.CreatedAt,
		Config:        v.Config,
		Wheels:        make([]WheelJSON, 0, core.WheelCount),
		Wheelbase:     v.Wheelbase,
		FrontLeverArm: v.FrontLeverArm,
		RearLeverArm:  v.RearLeverArm,
		FootprintArea: v.FootprintArea,
		Footprint:     v.Footprint,
		Warnings:      v.Warnings,
		Ticks:         make([][]any, 0, len(rec.Ticks)),
	}
	if export.Warnings == nil {
		export.Warnings = []string{}
	}

	for _, w := range v.Wheels {
		export.Wheels = append(export.Wheels, WheelJSON{
			Position:     w.Index.String(),
			Offset:       [3]float64(w.Offset),
			Capabilities: w.Capabilities.String(),
			Tire:         w.Tire,
			Suspension:   w.Suspension,
		})
	}

	for _, s := range rec.Ticks {
		export.Ticks = append(export.Ticks, []any{
			s.Tick,
			s.Accelerator,
			s.Steering,
			s.Brake,
			s.EngineTorque,
			s.BrakeTorque,
			s.SteerAngle,
			boolToInt(s.Controlled),
			s.SkipReason,
		})
		if s.Tick > export.EndTick {
			export.EndTick = s.Tick
		}
	}

	return export
}

func writeJSON(path string, data VehicleExport, compress bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if !compress {
		return json.NewEncoder(f).Encode(data)
	}

	gzWriter := gzip.NewWriter(f)
	if err := json.NewEncoder(gzWriter).Encode(data); err != nil {
		gzWriter.Close()
		return err
	}
	return gzWriter.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
