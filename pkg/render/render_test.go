package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/matzehuels/jumpmat/pkg/config"
	"github.com/matzehuels/jumpmat/pkg/errors"
	"github.com/matzehuels/jumpmat/pkg/export"
	"github.com/matzehuels/jumpmat/pkg/fiducial"
)

func newGenerator(t *testing.T, cfg config.MetricConfig, opts Options) *Generator {
	t.Helper()
	g, err := NewGenerator(cfg, opts)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	t.Cleanup(func() { g.Close() })
	return g
}

func surface(t *testing.T, g *Generator) *image.RGBA {
	t.Helper()
	img, err := g.Surface()
	if err != nil {
		t.Fatalf("Surface() error = %v", err)
	}
	return img
}

func rgba(s string) color.RGBA {
	return color.RGBAModel.Convert(config.MustColor(s)).(color.RGBA)
}

func TestNewSurface(t *testing.T) {
	s, err := NewSurface(30, 20, 600)
	if err != nil {
		t.Fatalf("NewSurface() error = %v", err)
	}
	if got := s.Bounds(); got != image.Rect(0, 0, 30, 20) {
		t.Errorf("Bounds() = %v, want 30x20", got)
	}

	if _, err := NewSurface(30, 21, 600); !errors.Is(err, errors.ErrCodeResourceExhausted) {
		t.Errorf("NewSurface(over limit) error = %v, want RESOURCE_EXHAUSTED", err)
	}
	if _, err := NewSurface(0, 10, 0); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("NewSurface(0, 10) error = %v, want INVALID_INPUT", err)
	}
}

func TestLayers(t *testing.T) {
	tests := []struct {
		speckle bool
		want    []string
	}{
		{false, []string{LayerBackground, LayerInset, LayerCoarseTicks, LayerFineTicks, LayerLabels, LayerBorder, LayerFiducials}},
		{true, []string{LayerBackground, LayerSpeckle, LayerInset, LayerCoarseTicks, LayerFineTicks, LayerLabels, LayerBorder, LayerFiducials}},
	}
	for _, tt := range tests {
		layers := Layers(Options{Speckle: tt.speckle})
		if len(layers) != len(tt.want) {
			t.Fatalf("Layers(speckle=%v) has %d layers, want %d", tt.speckle, len(layers), len(tt.want))
		}
		for i, l := range layers {
			if l.Name != tt.want[i] {
				t.Errorf("Layers(speckle=%v)[%d] = %q, want %q", tt.speckle, i, l.Name, tt.want[i])
			}
		}
	}
}

func TestGeneratorDimensions(t *testing.T) {
	g := newGenerator(t, config.Reference(), Options{})
	img := surface(t, g)
	if got := img.Bounds(); got.Dx() != 3960 || got.Dy() != 1080 {
		t.Errorf("Surface() size = %dx%d, want 3960x1080", got.Dx(), got.Dy())
	}
	if got := len(g.Plan().Placements); got != 8 {
		t.Errorf("placements = %d, want 8", got)
	}
}

func TestGeneratorMemoizes(t *testing.T) {
	g := newGenerator(t, config.Reference(), Options{})
	a := surface(t, g)
	b := surface(t, g)
	if a != b {
		t.Error("Surface() regenerated instead of returning the memoized raster")
	}

	c, err := g.Regenerate()
	if err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}
	if c == a {
		t.Error("Regenerate() returned the previous raster")
	}
	if !bytes.Equal(a.Pix, c.Pix) {
		t.Error("Regenerate() without speckle changed the raster")
	}
}

func TestGeneratorDeterminism(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"no speckle", Options{}},
		{"fixed seed", Options{Speckle: true, Seed: 42}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.opts.Deterministic() {
				t.Fatal("Deterministic() = false, want true")
			}
			a := surface(t, newGenerator(t, config.Reference(), tt.opts))
			b := surface(t, newGenerator(t, config.Reference(), tt.opts))
			if !bytes.Equal(a.Pix, b.Pix) {
				t.Error("two generations differ")
			}
		})
	}
}

func TestSpeckleSeed(t *testing.T) {
	layers := []Layer{{LayerBackground, DrawBackground}, {LayerSpeckle, DrawSpeckle}}
	a := surface(t, newGenerator(t, config.Reference(), Options{Speckle: true, Seed: 1, Layers: layers}))
	b := surface(t, newGenerator(t, config.Reference(), Options{Speckle: true, Seed: 2, Layers: layers}))
	if bytes.Equal(a.Pix, b.Pix) {
		t.Error("different seeds produced identical speckle")
	}
	if (Options{Speckle: true}).Deterministic() {
		t.Error("Deterministic() = true for speckle without seed")
	}
}

func TestOriginLine(t *testing.T) {
	g := newGenerator(t, config.Reference(), Options{})
	img := surface(t, g)
	want := rgba("#c62828")
	col := 360 // (0 + 0.3) m * 1200 px/m
	for _, y := range []int{300, 540, 800} {
		if got := img.RGBAAt(col, y); got != want {
			t.Errorf("origin pixel (%d, %d) = %v, want %v", col, y, got, want)
		}
	}
}

func TestTicksFromBothEdges(t *testing.T) {
	g := newGenerator(t, config.Reference(), Options{})
	img := surface(t, g)
	h := img.Bounds().Dy()
	ink := rgba("#000000")
	bg := rgba("#f4f1e8")
	col := 2760 // meter tick at 2.0 m

	for _, y := range []int{100, h - 100} {
		if got := img.RGBAAt(col, y); got != ink {
			t.Errorf("tick pixel (%d, %d) = %v, want %v", col, y, got, ink)
		}
	}
	// 0.20 m tick is 240 px long; mid-width is clear.
	if got := img.RGBAAt(col, 400); got != bg {
		t.Errorf("pixel (%d, 400) = %v, want background %v", col, got, bg)
	}
}

func TestBorder(t *testing.T) {
	g := newGenerator(t, config.Reference(), Options{})
	img := surface(t, g)
	b := img.Bounds()
	ink := rgba("#000000")
	for _, p := range []image.Point{{0, 0}, {b.Max.X - 1, b.Max.Y - 1}, {2000, 2}, {3, 500}} {
		if got := img.RGBAAt(p.X, p.Y); got != ink {
			t.Errorf("border pixel %v = %v, want %v", p, got, ink)
		}
	}
	// The inset line passes under a meter tick without cutting it.
	inset := 14 // 0.012 m
	if got := img.RGBAAt(2760, inset); got != ink {
		t.Errorf("tick under inset = %v, want %v", got, ink)
	}
	if got := img.RGBAAt(3780, inset); got != rgba("#9e9e9e") {
		t.Errorf("inset pixel = %v, want #9e9e9e", got)
	}
}

// Speckle lies under the inset line, so a speckled mat and a plain one agree
// on every inset pixel. Ticks cross the line in both.
func TestInsetIsSolidOverSpeckle(t *testing.T) {
	cfg := config.Reference()
	cfg.PixelsPerMeter = 600
	plain := surface(t, newGenerator(t, cfg, Options{}))
	speckled := surface(t, newGenerator(t, cfg, Options{Speckle: true, Seed: 7}))

	in := int(math.Round(cfg.Border.Inset * cfg.PixelsPerMeter))
	w := max(1, int(math.Round(cfg.Border.InsetWidth*cfg.PixelsPerMeter)))
	r := plain.Bounds().Inset(in)
	gaps := 0
	for _, y := range []int{r.Min.Y, r.Min.Y + w - 1, r.Max.Y - w, r.Max.Y - 1} {
		for x := r.Min.X; x < r.Max.X; x++ {
			if plain.RGBAAt(x, y) != speckled.RGBAAt(x, y) {
				gaps++
			}
		}
	}
	if gaps > 0 {
		t.Errorf("inset line differs from the plain render at %d pixels", gaps)
	}
	if got := plain.RGBAAt(r.Min.X+w, r.Min.Y); got == rgba(cfg.Background) {
		t.Errorf("inset pixel = %v, want inset color", got)
	}
}

// The quiet zone is the light footprint drawn by the fiducial layer, not a
// border baked into the patch. At densities where the footprint, core and
// quiet zone are not whole pixels the core must still be centered and its
// pixels must match the encoder.
func TestFiducialFootprintMatchesEncoder(t *testing.T) {
	for _, ppm := range []float64{1200, 1010, 1111, 997, 613} {
		t.Run(fmt.Sprintf("%g", ppm), func(t *testing.T) {
			cfg := config.Reference()
			cfg.PixelsPerMeter = ppm
			g := newGenerator(t, cfg, Options{})
			img := surface(t, g)
			m := cfg.Markers
			wantCore := int(math.Round(m.CoreSize * ppm))
			wantQuiet := m.QuietZone * ppm
			light := rgba(m.Light)

			for _, p := range g.Plan().Placements {
				foot, core := g.Plan().MarkerPixels(p)
				if core.Dx() != wantCore || core.Dy() != wantCore {
					t.Fatalf("marker %d: core %v, want side %d", p.ID, core, wantCore)
				}
				left, right := core.Min.X-foot.Min.X, foot.Max.X-core.Max.X
				top, bottom := core.Min.Y-foot.Min.Y, foot.Max.Y-core.Max.Y
				if abs(left-right) > 1 || abs(top-bottom) > 1 {
					t.Errorf("marker %d: core not centered, margins l=%d r=%d t=%d b=%d", p.ID, left, right, top, bottom)
				}
				if math.Abs(float64(left)-wantQuiet) > 1 || math.Abs(float64(top)-wantQuiet) > 1 {
					t.Errorf("marker %d: quiet zone %dx%d px, want %.1f", p.ID, left, top, wantQuiet)
				}

				want := fiducial.Encode(p.ID, wantCore, 0)
				mismatches, dirty := 0, 0
				for y := foot.Min.Y; y < foot.Max.Y; y++ {
					for x := foot.Min.X; x < foot.Max.X; x++ {
						got := img.RGBAAt(x, y)
						if !image.Pt(x, y).In(core) {
							if got != light {
								dirty++
							}
							continue
						}
						if got.R != want.GrayAt(x-core.Min.X, y-core.Min.Y).Y {
							mismatches++
						}
					}
				}
				if mismatches > 0 {
					t.Errorf("marker %d (%s, %.2f m): %d core pixels differ from encoder", p.ID, p.Side, p.Position, mismatches)
				}
				if dirty > 0 {
					t.Errorf("marker %d: %d quiet zone pixels are not light", p.ID, dirty)
				}
			}
		})
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func countInk(img *image.RGBA, r image.Rectangle, bg color.RGBA) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.RGBAAt(x, y) != bg {
				n++
			}
		}
	}
	return n
}

func TestLabelStrategies(t *testing.T) {
	layers := []Layer{{LayerBackground, DrawBackground}, {LayerLabels, DrawLabels}}
	bg := rgba("#f4f1e8")
	col := 2160 // 1.5 m

	rotated := surface(t, newGenerator(t, config.Reference(), Options{Layers: layers}))
	if n := countInk(rotated, image.Rect(col, 340, col+100, 740), bg); n == 0 {
		t.Error("rotated label at 1.5 m drew nothing right of its tick")
	}

	cfg := config.Reference()
	cfg.Labels.Strategy = config.LabelsInline
	inline := surface(t, newGenerator(t, cfg, Options{Layers: layers}))
	if n := countInk(inline, image.Rect(col-60, 250, col+60, 310), bg); n == 0 {
		t.Error("inline label 150 drew nothing under the tick")
	}
	if n := countInk(inline, image.Rect(col, 340, col+100, 740), bg); n != 0 {
		t.Errorf("inline strategy drew %d pixels in the rotated label area", n)
	}
}

func TestGeneratorResourceExhausted(t *testing.T) {
	cfg := config.Reference()
	cfg.MaxPixels = 1000
	g := newGenerator(t, cfg, Options{})
	if _, err := g.Surface(); !errors.Is(err, errors.ErrCodeResourceExhausted) {
		t.Errorf("Surface() error = %v, want RESOURCE_EXHAUSTED", err)
	}
}

// Densities that pass validation can still ask for rasters whose pixel
// count or sides do not fit an int. They must fail with a resource error
// rather than reach the allocator.
func TestGeneratorResourceExhaustedAtExtremeDensity(t *testing.T) {
	tests := []struct {
		name string
		ppm  float64
	}{
		{"over budget", 1e6},
		{"pixel count overflows int64", 1.763267917e9},
		{"side overflows int32", 1e12},
		{"side overflows int64", 1e300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Reference()
			cfg.PixelsPerMeter = tt.ppm
			g, err := NewGenerator(cfg, Options{})
			if err == nil {
				defer g.Close()
				_, err = g.Surface()
			}
			if !errors.Is(err, errors.ErrCodeResourceExhausted) {
				t.Errorf("ppm %g: error = %v, want RESOURCE_EXHAUSTED", tt.ppm, err)
			}
		})
	}
}

func TestNewSurfaceLargeProduct(t *testing.T) {
	_, err := NewSurface(1<<31-1, 1<<31-1, 1000)
	if !errors.Is(err, errors.ErrCodeResourceExhausted) {
		t.Errorf("NewSurface() error = %v, want RESOURCE_EXHAUSTED", err)
	}
}

func TestGeneratorRejectsInvalidConfig(t *testing.T) {
	cfg := config.Reference()
	cfg.TotalWidth = 0
	if _, err := NewGenerator(cfg, Options{}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("NewGenerator() error = %v, want INVALID_CONFIG", err)
	}
}

func TestRegenerateDisposesMesh(t *testing.T) {
	g := newGenerator(t, config.Reference(), Options{})
	m, err := g.Mesh()
	if err != nil {
		t.Fatalf("Mesh() error = %v", err)
	}
	again, _ := g.Mesh()
	if again != m {
		t.Error("Mesh() built a second mesh for the same raster")
	}

	if _, err := g.Regenerate(); err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}
	if !m.Disposed() {
		t.Error("old mesh not disposed by Regenerate()")
	}
	if _, err := m.Texture(); !errors.Is(err, errors.ErrCodeDisposed) {
		t.Errorf("Texture() after dispose error = %v, want DISPOSED", err)
	}

	fresh, err := g.Mesh()
	if err != nil {
		t.Fatalf("Mesh() error = %v", err)
	}
	if fresh.ID == m.ID {
		t.Error("new mesh reuses the old ID")
	}
}

func TestGeneratorClose(t *testing.T) {
	g := newGenerator(t, config.Reference(), Options{})
	m, _ := g.Mesh()
	if err := g.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !m.Disposed() {
		t.Error("Close() did not dispose the mesh")
	}
	if _, err := g.Surface(); !errors.Is(err, errors.ErrCodeDisposed) {
		t.Errorf("Surface() after Close error = %v, want DISPOSED", err)
	}
}

func TestGeneratorEncode(t *testing.T) {
	g := newGenerator(t, config.Reference(), Options{})
	data, err := g.Encode(export.FormatPNG, 0)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("Encode(png) did not produce a PNG")
	}
	url, err := g.DataURL(export.FormatJPEG, 80)
	if err != nil {
		t.Fatalf("DataURL() error = %v", err)
	}
	if !bytes.HasPrefix([]byte(url), []byte("data:image/jpeg;base64,")) {
		t.Errorf("DataURL() prefix = %.30q", url)
	}
}

func TestScaleFollowsPixelsPerMeter(t *testing.T) {
	cfg := config.Reference()
	cfg.PixelsPerMeter = 600
	g := newGenerator(t, cfg, Options{})
	img := surface(t, g)
	if got := img.Bounds(); got.Dx() != 1980 || got.Dy() != 540 {
		t.Errorf("Surface() at 600 px/m = %dx%d, want 1980x540", got.Dx(), got.Dy())
	}
	if got := img.RGBAAt(180, 270); got != rgba("#c62828") {
		t.Errorf("origin pixel at 600 px/m = %v", got)
	}
}
