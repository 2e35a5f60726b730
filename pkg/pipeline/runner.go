package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jumpmat/pkg/cache"
	"github.com/matzehuels/jumpmat/pkg/observability"
	"github.com/matzehuels/jumpmat/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options; each run builds its own generator.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute validates opts, renders the mat if any requested artifact is not
// cached, and returns every requested artifact.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	gen, err := render.NewGenerator(opts.Config, opts.RenderOptions())
	if err != nil {
		return nil, err
	}
	defer gen.Close()

	plan := gen.Plan()
	result := &Result{
		Artifacts: make(map[string][]byte),
		Plan:      plan,
		Stats: Stats{
			Width:   plan.Width,
			Height:  plan.Height,
			Markers: len(plan.Placements),
		},
	}
	if result.ConfigHash, err = cache.HashJSON(plan.Config); err != nil {
		return nil, err
	}

	useCache := opts.Deterministic()
	result.CacheInfo.Skipped = !useCache
	if !useCache {
		r.Logger.Debug("speckle without seed, bypassing cache")
	}

	// Stage 1: cache lookup
	var missing []string
	for _, format := range opts.Formats {
		if useCache && !opts.Refresh {
			if data, ok := r.lookup(ctx, result.ConfigHash, format, opts); ok {
				result.Artifacts[format] = data
				result.CacheInfo.Hits++
				continue
			}
		}
		missing = append(missing, format)
	}
	result.CacheInfo.Misses = len(missing)
	result.CacheInfo.AllHit = len(missing) == 0

	// Stage 2: generate
	if needsAnyRaster(missing) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		observability.Pipeline().OnGenerateStart(ctx, plan.Width, plan.Height)
		_, err := gen.Surface()
		result.Stats.GenerateTime = time.Since(start)
		observability.Pipeline().OnGenerateComplete(ctx, result.Stats.GenerateTime, err)
		if err != nil {
			return nil, err
		}
		if opts.Speckle {
			result.Seed = gen.Seed()
		}
	}

	// Stage 3: encode
	if len(missing) > 0 {
		start := time.Now()
		observability.Pipeline().OnEncodeStart(ctx, missing)
		err := r.encode(ctx, gen, missing, opts, result, useCache)
		result.Stats.EncodeTime = time.Since(start)
		observability.Pipeline().OnEncodeComplete(ctx, missing, result.Stats.EncodeTime, err)
		if err != nil {
			return nil, err
		}
	}

	for _, data := range result.Artifacts {
		result.Stats.Bytes += len(data)
	}
	r.Logger.Info("rendered artifacts",
		"formats", opts.Formats,
		"cached", result.CacheInfo.Hits,
		"duration", result.Stats.GenerateTime+result.Stats.EncodeTime)

	return result, nil
}

func (r *Runner) encode(ctx context.Context, gen *render.Generator, formats []string, opts Options, result *Result, store bool) error {
	for _, format := range formats {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := Encode(gen, format, opts)
		if err != nil {
			return err
		}
		result.Artifacts[format] = data
		r.Logger.Debug("encoded artifact", "format", format, "bytes", len(data))
		if store {
			r.store(ctx, result.ConfigHash, format, opts, data)
		}
	}
	return nil
}

func (r *Runner) key(configHash, format string, opts Options) (string, string) {
	if format == FormatTXT {
		return r.Keyer.ReportKey(configHash), "report"
	}
	return r.Keyer.ArtifactKey(configHash, opts.ArtifactKeyOpts(format)), "artifact"
}

func (r *Runner) lookup(ctx context.Context, configHash, format string, opts Options) ([]byte, bool) {
	key, kind := r.key(configHash, format, opts)
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "format", format, "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, kind)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, kind)
	return data, true
}

func (r *Runner) store(ctx context.Context, configHash, format string, opts Options, data []byte) {
	key, kind := r.key(configHash, format, opts)
	ttl := cache.TTLArtifact
	if kind == "report" {
		ttl = cache.TTLReport
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "format", format, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, kind, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func needsAnyRaster(formats []string) bool {
	for _, f := range formats {
		if needsRaster(f) {
			return true
		}
	}
	return false
}
