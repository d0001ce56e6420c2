package layout

import (
	"errors"
	"fmt"

	"github.com/OCAP2/wheelsim/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// ErrDegenerateFootprint is returned when the four contact points do not enclose an area.
var ErrDegenerateFootprint = errors.New("wheel footprint is degenerate")

// footprintOrder walks the contact points around the chassis without crossing.
var footprintOrder = [core.WheelCount]core.WheelIndex{core.FrontLeft, core.FrontRight, core.BackRight, core.BackLeft}

// Footprint is the polygon spanned by the wheel attachment points in the ground (XY) plane.
type Footprint struct {
	Polygon geom.Polygon
	Area    float64
}

// NewFootprint builds the contact polygon of the given offsets and validates it.
// A self-intersecting or zero-area polygon returns ErrDegenerateFootprint.
func NewFootprint(offsets [core.WheelCount]core.Vec3) (Footprint, error) {
	flat := make([]float64, 0, (core.WheelCount+1)*2)
	for _, idx := range footprintOrder {
		flat = append(flat, offsets[idx].X(), offsets[idx].Y())
	}
	// close the ring
	first := offsets[footprintOrder[0]]
	flat = append(flat, first.X(), first.Y())

	ring := geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
	poly := geom.NewPolygon([]geom.LineString{ring})
	if err := poly.Validate(); err != nil {
		return Footprint{Polygon: poly}, fmt.Errorf("%w: %v", ErrDegenerateFootprint, err)
	}

	area := poly.Area()
	if area <= 0 {
		return Footprint{Polygon: poly}, ErrDegenerateFootprint
	}
	return Footprint{Polygon: poly, Area: area}, nil
}

// Coordinates returns the polygon's exterior ring as XY pairs, without the closing point.
func (f Footprint) Coordinates() [][2]float64 {
	if f.Polygon.IsEmpty() {
		return nil
	}
	seq := f.Polygon.ExteriorRing().Coordinates()
	n := seq.Length()
	if n > 0 {
		n--
	}
	out := make([][2]float64, n)
	for i := 0; i < n; i++ {
		xy := seq.GetXY(i)
		out[i] = [2]float64{xy.X, xy.Y}
	}
	return out
}
