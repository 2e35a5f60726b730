// Package pkg provides the core libraries for jumpmat calibration mats.
//
// # Overview
//
// Jumpmat renders printable mats for measuring jump distances from video. A
// mat carries a takeoff (origin) line, tiered metric graduations that get
// denser in the precision landing zone, distance labels, a border, and
// square fiducial markers a camera pipeline can locate to recover the mat's
// plane. The pkg directory is organized into three areas:
//
//  1. Geometry - metric configuration and pure layout
//  2. Rendering - raster drawing and artifact encoding
//  3. Orchestration - caching, hooks and the render pipeline
//
// # Architecture
//
// The typical data flow through jumpmat:
//
//	Mat configuration (TOML or [config.Reference])
//	         ↓
//	    [layout] package (ticks, labels, marker placements in meters)
//	         ↓
//	    [render] package (layered raster in pixels)
//	         ↓
//	    [export] package (PNG/JPEG/BMP/TIFF, textured OBJ plane)
//
// # Quick Start
//
// Render the reference mat to PNG:
//
//	gen, _ := render.NewGenerator(config.Reference(), render.Options{})
//	defer gen.Close()
//	_ = gen.Save("mat.png", export.FormatPNG, 0)
//
// # Main Packages
//
// ## Geometry
//
// [config] - Metric description of a mat: zones, tick tiers, labels, border,
// markers and speckle, with TOML loading and validation.
//
// [pixelspace] - The single conversion between meters and raster pixels.
//
// [fiducial] - The 4x4 marker dictionary and its bitmap encoder.
//
// [layout] - Pure layout: coarse and fine ticks, labels and marker
// placements computed from a validated configuration.
//
// ## Rendering
//
// [render] - Layered drawing engine producing an RGBA raster.
//
// [fonts] - Embedded label font.
//
// [export] - Image encoders, data URLs and the textured plane mesh with
// OBJ/MTL writers.
//
// [report] - Plain-text specification of a mat for print shops.
//
// ## Orchestration
//
// [pipeline] - Render pipeline (config → raster → artifacts) used by the CLI
// and the HTTP server. Ensures consistent behavior across entry points.
//
// [cache] - Artifact caches: file (CLI), Redis (shared) and null.
//
// [observability] - Hooks for pipeline, cache and HTTP events.
//
// [errors] - Code-tagged errors shared by every package.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/render/...             # Specific package
//	go test -run Example                 # Examples only
//
// [config]: https://pkg.go.dev/github.com/matzehuels/jumpmat/pkg/config
// [pixelspace]: https://pkg.go.dev/github.com/matzehuels/jumpmat/pkg/pixelspace
// [fiducial]: https://pkg.go.dev/github.com/matzehuels/jumpmat/pkg/fiducial
// [layout]: https://pkg.go.dev/github.com/matzehuels/jumpmat/pkg/layout
// [render]: https://pkg.go.dev/github.com/matzehuels/jumpmat/pkg/render
// [fonts]: https://pkg.go.dev/github.com/matzehuels/jumpmat/pkg/fonts
// [export]: https://pkg.go.dev/github.com/matzehuels/jumpmat/pkg/export
// [report]: https://pkg.go.dev/github.com/matzehuels/jumpmat/pkg/report
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/jumpmat/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/jumpmat/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/jumpmat/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/jumpmat/pkg/errors
//
// [config.Reference]: https://pkg.go.dev/github.com/matzehuels/jumpmat/pkg/config#Reference
package pkg
