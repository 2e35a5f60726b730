package layout

import (
	"image"

	"github.com/matzehuels/jumpmat/pkg/config"
	"github.com/matzehuels/jumpmat/pkg/errors"
	"github.com/matzehuels/jumpmat/pkg/pixelspace"
)

// Plan is everything the drawing engine needs, computed once from a
// validated configuration.
type Plan struct {
	Config     config.MetricConfig
	Space      pixelspace.Space
	Width      int // raster columns
	Height     int // raster rows
	Origin     OriginLine
	Coarse     []Tick
	Fine       []Tick
	Labels     []Label
	Placements []Placement
}

// NewPlan validates cfg and lays it out. A density whose raster sides
// cannot be represented fails with RESOURCE_EXHAUSTED.
func NewPlan(cfg config.MetricConfig) (*Plan, error) {
	cfg = cfg.Clone()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	space := pixelspace.New(cfg.PixelsPerMeter, cfg.LeadingOffset)
	wf, hf := space.Extent(cfg.TotalLength, cfg.TotalWidth)
	if wf > pixelspace.MaxSide || hf > pixelspace.MaxSide {
		return nil, errors.New(errors.ErrCodeResourceExhausted,
			"raster of %.0fx%.0f px at %g px/m exceeds the %d px side limit",
			wf, hf, cfg.PixelsPerMeter, pixelspace.MaxSide)
	}
	w, h := space.SurfaceSize(cfg.TotalLength, cfg.TotalWidth)
	origin, coarse := CoarseTicks(cfg)

	return &Plan{
		Config:     cfg,
		Space:      space,
		Width:      w,
		Height:     h,
		Origin:     origin,
		Coarse:     coarse,
		Fine:       FineTicks(cfg),
		Labels:     Labels(cfg),
		Placements: Placements(cfg),
	}, nil
}

// IDs returns the fiducial IDs in placement order.
func (p *Plan) IDs() []int {
	ids := make([]int, len(p.Placements))
	for i, pl := range p.Placements {
		ids[i] = pl.ID
	}
	return ids
}

// Pixels returns the width times height of the raster, computed in floating
// point so it cannot overflow.
func (p *Plan) Pixels() float64 {
	return float64(p.Width) * float64(p.Height)
}

// MarkerPixels returns the raster squares of a placement: the light
// footprint and the marker core centered in it. The footprint and core
// sides are rounded once, so every marker has the same pixel size and the
// core offset is an integer.
func (p *Plan) MarkerPixels(pl Placement) (foot, core image.Rectangle) {
	m := p.Config.Markers
	x0 := pixelspace.Px(p.Space.LongitudinalToColumn(pl.Footprint.X0))
	y0 := pixelspace.Px(p.Space.TransverseToRow(pl.Footprint.Y0))
	n := pixelspace.Px(p.Space.ToPixels(m.Footprint()))
	foot = image.Rect(x0, y0, x0+n, y0+n)

	c := pixelspace.Px(p.Space.ToPixels(m.CoreSize))
	at := foot.Min.Add(image.Pt((n-c)/2, (n-c)/2))
	return foot, image.Rectangle{Min: at, Max: at.Add(image.Pt(c, c))}
}
