package layout

import "github.com/matzehuels/jumpmat/pkg/config"

// Side is the long edge a fiducial is placed along.
type Side string

const (
	// SideFar is the edge at transverse 0 (top of the raster).
	SideFar Side = "far"
	// SideNear is the edge at transverse TotalWidth (bottom of the raster).
	SideNear Side = "near"
)

// Rect is an axis-aligned rectangle in meters: X along the mat, Y across it.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Overlaps reports whether r and o share interior area.
func (r Rect) Overlaps(o Rect) bool {
	return r.X0 < o.X1 && o.X0 < r.X1 && r.Y0 < o.Y1 && o.Y0 < r.Y1
}

// OverlapsX reports whether the longitudinal extents of r and o overlap.
func (r Rect) OverlapsX(o Rect) bool {
	return r.X0 < o.X1 && o.X0 < r.X1
}

// Placement binds a dictionary ID to a slot on the mat.
type Placement struct {
	ID       int
	Index    int // index into MarkerSpec.Positions
	Position float64
	Side     Side
	// Footprint is the light quiet-zone square; the marker core is centered in it.
	Footprint Rect
	// Core is the area covered by the encoded marker.
	Core Rect
}

// Placements returns two placements per configured position, far side
// first. Footprints are centered on the position and pushed in from their
// edge by the margin.
func Placements(cfg config.MetricConfig) []Placement {
	m := cfg.Markers
	fp := m.Footprint()
	out := make([]Placement, 0, 2*len(m.Positions))
	for i, pos := range m.Positions {
		for _, side := range []Side{SideFar, SideNear} {
			y0 := m.Margin
			id := m.FarIDBase + i
			if side == SideNear {
				y0 = cfg.TotalWidth - m.Margin - fp
				id = m.NearIDBase + i
			}
			foot := Rect{X0: pos - fp/2, Y0: y0, X1: pos + fp/2, Y1: y0 + fp}
			out = append(out, Placement{
				ID:        id,
				Index:     i,
				Position:  pos,
				Side:      side,
				Footprint: foot,
				Core: Rect{
					X0: foot.X0 + m.QuietZone, Y0: foot.Y0 + m.QuietZone,
					X1: foot.X1 - m.QuietZone, Y1: foot.Y1 - m.QuietZone,
				},
			})
		}
	}
	return out
}
