package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"image/color"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jumpmat/pkg/cache"
	"github.com/matzehuels/jumpmat/pkg/config"
	"github.com/matzehuels/jumpmat/pkg/errors"
	"github.com/matzehuels/jumpmat/pkg/observability"
	"github.com/matzehuels/jumpmat/pkg/render"
)

// smallConfig renders quickly: the reference mat at a quarter of the
// print density.
func smallConfig() config.MetricConfig {
	cfg := config.Reference()
	cfg.PixelsPerMeter = 300
	return cfg
}

func newTestRunner(t *testing.T, c cache.Cache) *Runner {
	t.Helper()
	return NewRunner(c, nil, log.New(io.Discard))
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"png", false},
		{"jpeg", false},
		{"bmp", false},
		{"tiff", false},
		{"obj", false},
		{"mtl", false},
		{"txt", false},
		{"json", false},
		{"svg", true},
		{"PNG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"png", "txt"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"png", "invalid"}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Invalid format error = %v, want INVALID_FORMAT", err)
	}
	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{"", []string{"png"}, false},
		{"png", []string{"png"}, false},
		{"jpg, TIF,png", []string{"jpeg", "tiff", "png"}, false},
		{"png,png,txt", []string{"png", "txt"}, false},
		{"png,svg", nil, true},
	}
	for _, tt := range tests {
		got, err := ParseFormats(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormats(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("ParseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Config: config.Reference()}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatPNG {
		t.Errorf("Formats = %v, want [png]", opts.Formats)
	}
	if opts.Quality != DefaultQuality {
		t.Errorf("Quality = %d, want %d", opts.Quality, DefaultQuality)
	}
	if opts.Name != DefaultName {
		t.Errorf("Name = %q, want %q", opts.Name, DefaultName)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"quality", Options{Quality: 101}},
		{"format", Options{Formats: []string{"gif"}}},
		{"name", Options{Name: "out/mat"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); err == nil {
				t.Error("ValidateAndSetDefaults() error = nil, want error")
			}
		})
	}
}

func TestDeterministic(t *testing.T) {
	tests := []struct {
		opts Options
		want bool
	}{
		{Options{}, true},
		{Options{Speckle: true, Seed: 9}, true},
		{Options{Speckle: true}, false},
	}
	for _, tt := range tests {
		if got := tt.opts.Deterministic(); got != tt.want {
			t.Errorf("Options{Speckle: %v, Seed: %d}.Deterministic() = %v, want %v",
				tt.opts.Speckle, tt.opts.Seed, got, tt.want)
		}
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Quality: 80, Seed: 5, Name: "mat"}
	if k := opts.ArtifactKeyOpts(FormatPNG); k.Quality != 0 || k.Seed != 0 {
		t.Errorf("png key opts = %+v, want quality and seed ignored", k)
	}
	if k := opts.ArtifactKeyOpts(FormatJPEG); k.Quality != 80 {
		t.Errorf("jpeg key opts quality = %d, want 80", k.Quality)
	}
	opts.Speckle = true
	if k := opts.ArtifactKeyOpts(FormatPNG); k.Seed != 5 {
		t.Errorf("speckled key opts seed = %d, want 5", k.Seed)
	}
	if k := opts.ArtifactKeyOpts(FormatOBJ); k.Format != "obj:mat" {
		t.Errorf("obj key opts format = %q, want obj:mat", k.Format)
	}
}

func TestExecute(t *testing.T) {
	r := newTestRunner(t, nil)
	res, err := r.Execute(context.Background(), Options{
		Config:  smallConfig(),
		Formats: []string{FormatPNG, FormatJPEG, FormatOBJ, FormatMTL, FormatTXT, FormatJSON},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !bytes.HasPrefix(res.Artifacts[FormatPNG], []byte("\x89PNG")) {
		t.Error("png artifact is not a PNG")
	}
	if !bytes.HasPrefix(res.Artifacts[FormatJPEG], []byte{0xff, 0xd8}) {
		t.Error("jpeg artifact is not a JPEG")
	}
	if !bytes.Contains(res.Artifacts[FormatOBJ], []byte("mtllib mat.mtl")) {
		t.Error("obj artifact does not reference mat.mtl")
	}
	if !bytes.Contains(res.Artifacts[FormatMTL], []byte("map_Kd mat.png")) {
		t.Error("mtl artifact does not reference mat.png")
	}
	if !bytes.Contains(res.Artifacts[FormatTXT], []byte("JUMP MAT SPECIFICATION")) {
		t.Error("txt artifact is not the report")
	}

	var m Manifest
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &m); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if m.Width != 990 || m.Height != 270 || len(m.Markers) != 8 {
		t.Errorf("manifest = %dx%d with %d markers, want 990x270 with 8", m.Width, m.Height, len(m.Markers))
	}

	if res.Stats.Width != 990 || res.Stats.Markers != 8 || res.Stats.Bytes == 0 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if res.ConfigHash == "" {
		t.Error("ConfigHash is empty")
	}
}

func TestExecuteInvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.Zones[1].End = 1.4 // gap before the landing zone
	_, err := newTestRunner(t, nil).Execute(context.Background(), Options{Config: cfg})
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Execute() error = %v, want INVALID_CONFIG", err)
	}
}

func TestExecuteCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestRunner(t, nil).Execute(ctx, Options{Config: smallConfig()})
	if err != context.Canceled {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
}

func TestExecuteReportSkipsRaster(t *testing.T) {
	res, err := newTestRunner(t, nil).Execute(context.Background(), Options{
		Config:  smallConfig(),
		Formats: []string{FormatTXT},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Stats.GenerateTime != 0 {
		t.Error("text report should not draw the raster")
	}
}

type countingCacheHooks struct {
	observability.NoopCacheHooks
	mu           sync.Mutex
	hits, misses int
}

func (h *countingCacheHooks) OnCacheHit(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits++
}

func (h *countingCacheHooks) OnCacheMiss(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.misses++
}

func TestExecuteCaches(t *testing.T) {
	hooks := &countingCacheHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := newTestRunner(t, fc)
	opts := Options{Config: smallConfig(), Formats: []string{FormatPNG, FormatTXT}}

	first, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}
	if first.CacheInfo.Hits != 0 || first.CacheInfo.Misses != 2 {
		t.Errorf("first CacheInfo = %+v, want 0 hits 2 misses", first.CacheInfo)
	}

	second, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if !second.CacheInfo.AllHit {
		t.Errorf("second CacheInfo = %+v, want all hits", second.CacheInfo)
	}
	if second.Stats.GenerateTime != 0 {
		t.Error("cached run drew the raster")
	}
	if !bytes.Equal(first.Artifacts[FormatPNG], second.Artifacts[FormatPNG]) {
		t.Error("cached png differs from rendered png")
	}
	if hooks.hits != 2 || hooks.misses != 2 {
		t.Errorf("hooks saw %d hits %d misses, want 2 and 2", hooks.hits, hooks.misses)
	}

	opts.Refresh = true
	third, _ := r.Execute(context.Background(), opts)
	if third.CacheInfo.Hits != 0 {
		t.Errorf("refresh run hit the cache %d times", third.CacheInfo.Hits)
	}
}

func TestExecuteBypassesCacheForRandomSpeckle(t *testing.T) {
	fc, _ := cache.NewFileCache(t.TempDir())
	r := newTestRunner(t, fc)
	opts := Options{Config: smallConfig(), Speckle: true}

	for i := 0; i < 2; i++ {
		res, err := r.Execute(context.Background(), opts)
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if !res.CacheInfo.Skipped || res.CacheInfo.Hits != 0 {
			t.Errorf("run %d CacheInfo = %+v, want skipped", i, res.CacheInfo)
		}
		if res.Seed == 0 {
			t.Errorf("run %d Seed = 0, want the drawn seed", i)
		}
	}
}

func TestExecuteSeededSpeckleIsReproducible(t *testing.T) {
	r := newTestRunner(t, nil)
	opts := Options{Config: smallConfig(), Speckle: true, Seed: 11}
	a, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	b, _ := r.Execute(context.Background(), opts)
	if !bytes.Equal(a.Artifacts[FormatPNG], b.Artifacts[FormatPNG]) {
		t.Error("seeded renders differ")
	}
}

// The manifest points calibration tools at the marker cores in the printed
// raster, so its pixel rectangles must land on the drawn border cells at
// densities where the metric geometry is not whole pixels.
func TestManifestMatchesRaster(t *testing.T) {
	for _, ppm := range []float64{1010, 997, 1200} {
		cfg := config.Reference()
		cfg.PixelsPerMeter = ppm
		gen, err := render.NewGenerator(cfg, render.Options{})
		if err != nil {
			t.Fatalf("NewGenerator() error = %v", err)
		}
		img, err := gen.Surface()
		if err != nil {
			t.Fatalf("Surface() error = %v", err)
		}
		dark := color.RGBA{A: 255}
		light := color.RGBA{R: 255, G: 255, B: 255, A: 255}

		for _, mk := range NewManifest(gen.Plan()).Markers {
			x0, y0, x1, y1 := mk.CorePx[0], mk.CorePx[1], mk.CorePx[2], mk.CorePx[3]
			checks := []struct {
				x, y int
				want color.RGBA
			}{
				{x0, y0, dark},
				{x1 - 1, y0, dark},
				{x0, y1 - 1, dark},
				{x1 - 1, y1 - 1, dark},
				{x0 - 1, y0, light},
				{x0, y0 - 1, light},
				{x1, y1 - 1, light},
				{x1 - 1, y1, light},
			}
			for _, c := range checks {
				if got := img.RGBAAt(c.x, c.y); got != c.want {
					t.Errorf("ppm %g marker %d: pixel (%d,%d) = %v, want %v", ppm, mk.ID, c.x, c.y, got, c.want)
				}
			}
		}
		gen.Close()
	}
}
