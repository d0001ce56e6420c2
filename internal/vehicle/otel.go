package vehicle

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/OCAP2/wheelsim/internal/vehicle"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type metrics struct {
	applied       metric.Int64Counter
	skipped       metric.Int64Counter
	wheelsCreated metric.Int64Counter
}

// newMetrics uses the global OTel meter (no-op if not configured).
func newMetrics() (*metrics, error) {
	m := meter()
	mt := &metrics{}

	var err error
	mt.applied, err = m.Int64Counter(
		"vehicle.ticks.applied",
		metric.WithDescription("Ticks whose wheel commands reached the physics engine"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating applied counter: %w", err)
	}

	mt.skipped, err = m.Int64Counter(
		"vehicle.ticks.skipped",
		metric.WithDescription("Ticks skipped without issuing wheel commands"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating skipped counter: %w", err)
	}

	mt.wheelsCreated, err = m.Int64Counter(
		"vehicle.wheels.created",
		metric.WithDescription("Wheels created in the physics engine"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating wheels counter: %w", err)
	}

	return mt, nil
}
