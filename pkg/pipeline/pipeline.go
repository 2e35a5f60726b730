// Package pipeline renders mat artifacts from a configuration.
//
// This package is the single entry point used by the CLI and the HTTP
// server. It validates a configuration, draws the raster once, encodes every
// requested format from it, and caches the results when the render is
// deterministic.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Config:  config.Reference(),
//	    Formats: []string{"png", "txt"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	png := result.Artifacts["png"]
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jumpmat/pkg/cache"
	"github.com/matzehuels/jumpmat/pkg/config"
	"github.com/matzehuels/jumpmat/pkg/errors"
	"github.com/matzehuels/jumpmat/pkg/export"
	"github.com/matzehuels/jumpmat/pkg/layout"
	"github.com/matzehuels/jumpmat/pkg/render"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultName is the base name artifacts refer to each other by.
	DefaultName = "mat"

	// DefaultQuality is the JPEG quality used when none is given.
	DefaultQuality = export.DefaultJPEGQuality
)

// Format constants for output formats.
const (
	FormatPNG  = string(export.FormatPNG)
	FormatJPEG = string(export.FormatJPEG)
	FormatBMP  = string(export.FormatBMP)
	FormatTIFF = string(export.FormatTIFF)
	FormatOBJ  = "obj"
	FormatMTL  = "mtl"
	FormatTXT  = "txt"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG:  true,
	FormatJPEG: true,
	FormatBMP:  true,
	FormatTIFF: true,
	FormatOBJ:  true,
	FormatMTL:  true,
	FormatTXT:  true,
	FormatJSON: true,
}

// FormatNames lists ValidFormats in a stable order for messages and flags.
func FormatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	Config  config.MetricConfig `json:"config"`
	Formats []string            `json:"formats,omitempty"`
	Quality int                 `json:"quality,omitempty"`
	Speckle bool                `json:"speckle,omitempty"`
	Seed    uint64              `json:"seed,omitempty"`
	// Name is the base file name the OBJ and MTL artifacts reference.
	Name    string `json:"name,omitempty"`
	Refresh bool   `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Artifacts contains encoded outputs keyed by format.
	Artifacts map[string][]byte

	// ConfigHash is the content hash of the validated configuration.
	ConfigHash string

	// Plan is the computed layout.
	Plan *layout.Plan

	// Seed is the speckle seed of the raster, zero when nothing was drawn
	// or speckle was off.
	Seed uint64

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which artifacts came from the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Width        int
	Height       int
	Markers      int
	Bytes        int
	GenerateTime time.Duration
	EncodeTime   time.Duration
}

// CacheInfo tracks cache use for one run.
type CacheInfo struct {
	Hits   int  // Artifacts read from the cache
	Misses int  // Artifacts produced by this run
	AllHit bool // Whether every artifact came from cache
	// Skipped is set when the render was not deterministic and the cache
	// was bypassed.
	Skipped bool
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)",
			format, strings.Join(FormatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated list, normalizing aliases such as
// jpg and tif.
func ParseFormats(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return []string{FormatPNG}, nil
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if img, err := export.ParseFormat(f); err == nil {
			f = string(img)
		}
		if err := ValidateFormat(f); err != nil {
			return nil, err
		}
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out, nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills unset options.
func (o *Options) SetDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatPNG}
	}
	if o.Quality == 0 {
		o.Quality = DefaultQuality
	}
	if o.Name == "" {
		o.Name = DefaultName
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.Config.SetDefaults()
}

// Validate checks options after defaults are applied. The configuration
// itself is validated when the plan is built.
func (o *Options) Validate() error {
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Quality < 1 || o.Quality > 100 {
		return errors.New(errors.ErrCodeInvalidInput, "quality must be in 1..100, got %d", o.Quality)
	}
	if strings.ContainsAny(o.Name, `/\`) {
		return errors.New(errors.ErrCodeInvalidInput, "name must be a bare file name, got %q", o.Name)
	}
	return nil
}

// ValidateAndSetDefaults applies defaults and validates.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	return o.Validate()
}

// Deterministic reports whether the raster is a pure function of the
// options, which is what makes it cacheable.
func (o *Options) Deterministic() bool {
	return o.RenderOptions().Deterministic()
}

// RenderOptions returns the generator options.
func (o *Options) RenderOptions() render.Options {
	return render.Options{Speckle: o.Speckle, Seed: o.Seed, Logger: o.Logger}
}

// ArtifactKeyOpts returns cache key options for one format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format, Speckle: o.Speckle}
	if o.Speckle {
		k.Seed = o.Seed
	}
	if format == FormatJPEG {
		k.Quality = o.Quality
	}
	if format == FormatOBJ || format == FormatMTL {
		k.Format += ":" + o.Name
	}
	return k
}
