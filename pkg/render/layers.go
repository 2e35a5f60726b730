package render

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/fogleman/gg"

	"github.com/matzehuels/jumpmat/pkg/config"
	"github.com/matzehuels/jumpmat/pkg/fiducial"
	"github.com/matzehuels/jumpmat/pkg/layout"
	"github.com/matzehuels/jumpmat/pkg/pixelspace"
)

// Layer is one named drawing pass.
type Layer struct {
	Name string
	Draw func(s *Surface, sc *Scene)
}

// Layer names, in drawing order.
const (
	LayerBackground  = "background"
	LayerSpeckle     = "speckle"
	LayerInset       = "inset"
	LayerCoarseTicks = "coarse-ticks"
	LayerFineTicks   = "fine-ticks"
	LayerLabels      = "labels"
	LayerBorder      = "border"
	LayerFiducials   = "fiducials"
)

// Layers returns the ordered layer list. The speckle pass is included only
// when opts.Speckle is set.
func Layers(opts Options) []Layer {
	layers := []Layer{{LayerBackground, DrawBackground}}
	if opts.Speckle {
		layers = append(layers, Layer{LayerSpeckle, DrawSpeckle})
	}
	return append(layers,
		Layer{LayerInset, DrawInset},
		Layer{LayerCoarseTicks, DrawCoarseTicks},
		Layer{LayerFineTicks, DrawFineTicks},
		Layer{LayerLabels, DrawLabels},
		Layer{LayerBorder, DrawBorder},
		Layer{LayerFiducials, DrawFiducials},
	)
}

// Compose allocates a surface for sc and applies layers left to right.
func Compose(sc *Scene, layers []Layer) (*Surface, error) {
	p := sc.Plan
	s, err := NewSurface(p.Width, p.Height, p.Config.MaxPixels)
	if err != nil {
		return nil, err
	}
	for _, l := range layers {
		l.Draw(s, sc)
	}
	return s, nil
}

// =============================================================================
// Background and texture
// =============================================================================

// DrawBackground fills the surface with the background color.
func DrawBackground(s *Surface, sc *Scene) {
	s.Fill(sc.Color(sc.Config().Background))
}

// DrawSpeckle scatters small translucent dots over the whole surface. The
// pattern is a pure function of the scene seed.
func DrawSpeckle(s *Surface, sc *Scene) {
	cfg := sc.Config().Speckle
	if cfg.Count <= 0 {
		return
	}
	rng := rand.New(rand.NewPCG(sc.Seed, sc.Seed^0xdeadbeef))
	b := s.Bounds()
	maxR := math.Max(0.5, sc.Plan.Space.ToPixels(cfg.MaxRadius))
	c := sc.Color(cfg.Color)

	dc := s.Context()
	for range cfg.Count {
		x := rng.Float64() * float64(b.Dx())
		y := rng.Float64() * float64(b.Dy())
		r := 0.5 + rng.Float64()*(maxR-0.5)
		a := cfg.Opacity * (0.5 + 0.5*rng.Float64())
		dc.SetRGBA(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, a*float64(c.A)/255)
		dc.DrawCircle(x, y, r)
		dc.Fill()
	}
}

// =============================================================================
// Graduations
// =============================================================================

// DrawCoarseTicks draws the full-height origin line and the takeoff and
// flight ticks.
func DrawCoarseTicks(s *Surface, sc *Scene) {
	o := sc.Plan.Origin
	lo, hi := pixelspace.Span(sc.Column(o.Position), sc.Plan.Space.ToPixels(o.Width))
	s.FillRect(image.Rect(lo, 0, hi, s.Bounds().Dy()), sc.Color(o.Color))
	drawTicks(s, sc, sc.Plan.Coarse)
}

// DrawFineTicks draws the tiered precision ticks and the extension.
func DrawFineTicks(s *Surface, sc *Scene) {
	drawTicks(s, sc, sc.Plan.Fine)
}

// drawTicks draws each tick inward from both long edges so the scale reads
// from either side of the mat.
func drawTicks(s *Surface, sc *Scene, ticks []layout.Tick) {
	h := s.Bounds().Dy()
	for _, t := range ticks {
		lo, hi := pixelspace.Span(sc.Column(t.Position), sc.Plan.Space.ToPixels(t.Tier.LineWidth))
		n := max(1, sc.Px(t.Tier.LineLength))
		c := sc.Color(t.Tier.Color)
		s.FillRect(image.Rect(lo, 0, hi, n), c)
		s.FillRect(image.Rect(lo, h-n, hi, h), c)
	}
}

// =============================================================================
// Labels
// =============================================================================

// DrawLabels annotates the mat using the configured strategy.
func DrawLabels(s *Surface, sc *Scene) {
	cfg := sc.Config().Labels
	if len(sc.Plan.Labels) == 0 || sc.face == nil {
		return
	}
	dc := s.Context()
	dc.SetFontFace(sc.face)
	dc.SetColor(sc.Color(cfg.Color))

	switch cfg.Strategy {
	case config.LabelsInline:
		drawInlineLabels(dc, sc)
	default:
		drawRotatedLabels(dc, sc)
	}
}

// drawRotatedLabels writes each label along the mat's transverse axis,
// reading bottom to top, just past its tick line and centered across the
// width.
func drawRotatedLabels(dc *gg.Context, sc *Scene) {
	off := sc.Plan.Space.ToPixels(sc.Config().Labels.Offset)
	y := float64(sc.Plan.Height) / 2
	for _, l := range sc.Plan.Labels {
		x := sc.Column(l.Position) + off
		dc.Push()
		dc.RotateAbout(gg.Radians(-90), x, y)
		dc.DrawStringAnchored(l.Text, x, y, 0.5, 1)
		dc.Pop()
	}
}

// drawInlineLabels writes upright labels centered under the longest far-edge
// tick.
func drawInlineLabels(dc *gg.Context, sc *Scene) {
	cfg := sc.Config()
	longest := 0.0
	for _, t := range cfg.Tiers {
		longest = math.Max(longest, t.LineLength)
	}
	y := sc.Plan.Space.ToPixels(longest + cfg.Labels.Offset)
	for _, l := range sc.Plan.Labels {
		dc.DrawStringAnchored(l.Text, sc.Column(l.Position), y, 0.5, 1)
	}
}

// =============================================================================
// Border
// =============================================================================

// DrawInset strokes the lighter inset rectangle. It runs before any mark
// is drawn, so ticks and labels cross it without being cut.
func DrawInset(s *Surface, sc *Scene) {
	b := sc.Config().Border
	if b.Inset <= 0 || b.InsetWidth <= 0 {
		return
	}
	r := s.Bounds().Inset(sc.Px(b.Inset))
	s.StrokeRect(r, max(1, sc.Px(b.InsetWidth)), sc.Color(b.InsetColor))
}

// DrawBorder strokes the outer frame. It runs after the graduations and
// overwrites any tick overrun at the edges.
func DrawBorder(s *Surface, sc *Scene) {
	b := sc.Config().Border
	s.StrokeRect(s.Bounds(), max(1, sc.Px(b.Width)), sc.Color(b.Color))
}

// =============================================================================
// Fiducials
// =============================================================================

// DrawFiducials clears each marker footprint to the light color and places
// the encoded marker at its center. The quiet zone is the cleared footprint
// itself, so markers are encoded without a border of their own.
func DrawFiducials(s *Surface, sc *Scene) {
	m := sc.Config().Markers
	dark, light := sc.Color(m.Dark), sc.Color(m.Light)
	for _, p := range sc.Plan.Placements {
		foot, core := sc.Plan.MarkerPixels(p)
		s.FillRect(foot, light)
		stamp(s, fiducial.Encode(p.ID, core.Dx(), 0), core.Min, dark, light)
	}
}

// stamp copies a marker patch onto the surface, mapping its black and white
// cells to the configured colors.
func stamp(s *Surface, patch *image.Gray, at image.Point, dark, light color.Color) {
	d := color.RGBAModel.Convert(dark).(color.RGBA)
	l := color.RGBAModel.Convert(light).(color.RGBA)
	b := patch.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p := image.Pt(at.X+x-b.Min.X, at.Y+y-b.Min.Y)
			if !p.In(s.img.Bounds()) {
				continue
			}
			if patch.GrayAt(x, y) == fiducial.Dark {
				s.img.SetRGBA(p.X, p.Y, d)
			} else {
				s.img.SetRGBA(p.X, p.Y, l)
			}
		}
	}
}
