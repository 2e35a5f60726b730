package render

import (
	"image/color"

	"golang.org/x/image/font"

	"github.com/matzehuels/jumpmat/pkg/config"
	"github.com/matzehuels/jumpmat/pkg/fonts"
	"github.com/matzehuels/jumpmat/pkg/layout"
	"github.com/matzehuels/jumpmat/pkg/pixelspace"
)

// Scene is the read-only input shared by all layers during one pass.
type Scene struct {
	Plan *layout.Plan
	// Seed drives the speckle pattern.
	Seed uint64

	face   font.Face
	colors map[string]color.NRGBA
}

// NewScene prepares a scene for plan. The label face is sized from the
// configured label height at the plan's pixel density.
func NewScene(plan *layout.Plan, seed uint64) (*Scene, error) {
	sc := &Scene{Plan: plan, Seed: seed, colors: make(map[string]color.NRGBA)}
	face, err := fonts.LabelFace(plan.Space.ToPixels(plan.Config.Labels.Size))
	if err != nil {
		return nil, err
	}
	sc.face = face
	return sc, nil
}

// Close releases the label face.
func (sc *Scene) Close() error {
	if sc.face == nil {
		return nil
	}
	err := sc.face.Close()
	sc.face = nil
	return err
}

// Config returns the validated configuration being drawn.
func (sc *Scene) Config() config.MetricConfig { return sc.Plan.Config }

// Color parses a configured color once per scene. Colors were validated
// with the plan, so parse failures cannot happen here.
func (sc *Scene) Color(s string) color.NRGBA {
	if c, ok := sc.colors[s]; ok {
		return c
	}
	c := config.MustColor(s)
	sc.colors[s] = c
	return c
}

// Px converts a metric length to whole pixels.
func (sc *Scene) Px(meters float64) int {
	return pixelspace.Px(sc.Plan.Space.ToPixels(meters))
}

// Column returns the raster column of a longitudinal position.
func (sc *Scene) Column(position float64) float64 {
	return sc.Plan.Space.LongitudinalToColumn(position)
}
