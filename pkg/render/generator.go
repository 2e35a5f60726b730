package render

import (
	"fmt"
	"image"
	"io"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jumpmat/pkg/config"
	"github.com/matzehuels/jumpmat/pkg/errors"
	"github.com/matzehuels/jumpmat/pkg/export"
	"github.com/matzehuels/jumpmat/pkg/layout"
)

// Options configures a Generator.
type Options struct {
	// Speckle enables the texture pass.
	Speckle bool
	// Seed fixes the speckle pattern. Zero draws a fresh seed for every
	// generation, so only non-zero seeds give reproducible output.
	Seed uint64
	// Layers overrides the layer list. Nil uses Layers(opts).
	Layers []Layer
	// Logger receives per-layer timings. Nil discards them.
	Logger *log.Logger
}

// Deterministic reports whether two generations with these options produce
// identical rasters.
func (o Options) Deterministic() bool {
	return !o.Speckle || o.Seed != 0
}

// Generator renders one mat configuration and hands out artifacts built
// from the current raster. It is not safe for concurrent use.
type Generator struct {
	plan   *layout.Plan
	opts   Options
	logger *log.Logger

	surface *image.RGBA
	seed    uint64
	mesh    *export.Mesh
	closed  bool
}

// NewGenerator validates cfg and prepares a generator. Nothing is drawn
// until the raster is first requested.
func NewGenerator(cfg config.MetricConfig, opts Options) (*Generator, error) {
	plan, err := layout.NewPlan(cfg)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Generator{plan: plan, opts: opts, logger: logger}, nil
}

// Plan returns the layout being drawn.
func (g *Generator) Plan() *layout.Plan { return g.plan }

// Config returns the validated configuration.
func (g *Generator) Config() config.MetricConfig { return g.plan.Config }

// Seed returns the speckle seed used for the current raster, or zero if
// nothing has been generated yet.
func (g *Generator) Seed() uint64 { return g.seed }

// Surface returns the current raster, generating it on first use. The
// returned image must not be modified.
func (g *Generator) Surface() (*image.RGBA, error) {
	if g.closed {
		return nil, errors.New(errors.ErrCodeDisposed, "generator is closed")
	}
	if g.surface != nil {
		return g.surface, nil
	}
	return g.generate()
}

// Regenerate releases the mesh built from the current raster, discards the
// raster and draws a new one.
func (g *Generator) Regenerate() (*image.RGBA, error) {
	if g.closed {
		return nil, errors.New(errors.ErrCodeDisposed, "generator is closed")
	}
	g.release()
	return g.generate()
}

func (g *Generator) generate() (*image.RGBA, error) {
	if err := checkBudget(g.plan); err != nil {
		return nil, err
	}
	seed := g.opts.Seed
	if seed == 0 {
		seed = rand.Uint64() | 1
	}
	sc, err := NewScene(g.plan, seed)
	if err != nil {
		return nil, err
	}
	defer sc.Close()

	layers := g.opts.Layers
	if layers == nil {
		layers = Layers(g.opts)
	}

	start := time.Now()
	s, err := Compose(sc, g.timed(layers))
	if err != nil {
		return nil, err
	}
	g.logger.Info("generated mat",
		"size", fmt.Sprintf("%dx%d", g.plan.Width, g.plan.Height),
		"layers", len(layers),
		"duration", time.Since(start))

	g.surface = s.Image()
	g.seed = seed
	return g.surface, nil
}

// checkBudget refuses plans whose raster exceeds the configured pixel
// limit, before the label face or the surface is allocated.
func checkBudget(p *layout.Plan) error {
	limit := p.Config.MaxPixels
	if n := p.Pixels(); n > float64(limit) {
		return errors.New(errors.ErrCodeResourceExhausted,
			"mat raster %dx%d needs %.0f pixels, limit is %d", p.Width, p.Height, n, limit)
	}
	return nil
}

// timed wraps each layer so its duration is logged at debug level.
func (g *Generator) timed(layers []Layer) []Layer {
	out := make([]Layer, len(layers))
	for i, l := range layers {
		out[i] = Layer{Name: l.Name, Draw: func(s *Surface, sc *Scene) {
			t := time.Now()
			l.Draw(s, sc)
			g.logger.Debug("drew layer", "layer", l.Name, "duration", time.Since(t))
		}}
	}
	return out
}

// release disposes the mesh and drops the raster.
func (g *Generator) release() {
	if g.mesh != nil {
		g.mesh.Dispose()
		g.mesh = nil
	}
	g.surface = nil
	g.seed = 0
}

// Encode encodes the current raster.
func (g *Generator) Encode(f export.Format, quality int) ([]byte, error) {
	img, err := g.Surface()
	if err != nil {
		return nil, err
	}
	return export.Encode(img, f, quality)
}

// DataURL encodes the current raster as a data URL.
func (g *Generator) DataURL(f export.Format, quality int) (string, error) {
	img, err := g.Surface()
	if err != nil {
		return "", err
	}
	return export.DataURL(img, f, quality)
}

// Save encodes the current raster and writes it to path.
func (g *Generator) Save(path string, f export.Format, quality int) error {
	data, err := g.Encode(f, quality)
	if err != nil {
		return err
	}
	return export.Save(path, data)
}

// Mesh returns a textured plane carrying the current raster. The mesh is
// built once per raster and disposed by Regenerate and Close.
func (g *Generator) Mesh() (*export.Mesh, error) {
	img, err := g.Surface()
	if err != nil {
		return nil, err
	}
	if g.mesh == nil {
		m, err := export.NewMesh(g.plan.Config, img)
		if err != nil {
			return nil, err
		}
		g.mesh = m
	}
	return g.mesh, nil
}

// Close releases the mesh and raster. Further calls fail with DISPOSED.
func (g *Generator) Close() error {
	if g.closed {
		return nil
	}
	g.release()
	g.closed = true
	return nil
}
