// Package render draws the calibration mat raster.
//
// # Overview
//
// Rendering is a fixed sequence of named layers applied to one [Surface]:
//
//  1. background: flat fill
//  2. speckle: low-opacity dots that give feature trackers texture (optional)
//  3. inset: the lighter decorative rectangle, under every mark
//  4. coarse ticks: origin line plus takeoff and flight graduations
//  5. fine ticks: tiered precision-zone graduations and the extension
//  6. labels: distance annotations
//  7. border: outer frame, overwriting tick overrun at the edges
//  8. fiducials: light quiet-zone squares with the encoded markers
//
// Later layers paint over earlier ones. Reference geometry (ticks, inset,
// border, fiducials) is filled with exact pixel rectangles; only speckle and labels
// are antialiased, through [github.com/fogleman/gg] on the same pixels.
//
// # Generator
//
// [Generator] owns a validated plan and the current raster. The raster is
// generated lazily on first use and is immutable afterwards; [Generator.Regenerate]
// releases the mesh built from the previous raster and draws a new one.
//
//	gen, err := render.NewGenerator(config.Reference(), render.Options{Seed: 7, Speckle: true})
//	img, err := gen.Surface()
//	png, err := gen.Encode(export.FormatPNG, 0)
package render
