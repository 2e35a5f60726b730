// Package pixelspace maps metric mat coordinates to raster pixels.
//
// A Space is the single affine transform shared by every drawing pass: one
// scale factor and a fixed leading offset that shifts the takeoff margin
// into positive columns. Routing all geometry through one Space keeps ticks,
// labels, border and fiducials registered to each other.
package pixelspace

import "math"

// Space converts meters to pixels.
type Space struct {
	PixelsPerMeter float64
	LeadingOffset  float64
}

// New returns a Space for the given density and takeoff margin.
func New(pixelsPerMeter, leadingOffset float64) Space {
	return Space{PixelsPerMeter: pixelsPerMeter, LeadingOffset: leadingOffset}
}

// ToPixels converts a length in meters to pixels. No offset is applied.
func (s Space) ToPixels(meters float64) float64 {
	return meters * s.PixelsPerMeter
}

// LongitudinalToColumn converts a position along the mat (0 = origin line,
// negative = takeoff margin) to a pixel column.
func (s Space) LongitudinalToColumn(position float64) float64 {
	return s.ToPixels(position + s.LeadingOffset)
}

// TransverseToRow converts a distance from the far edge to a pixel row.
func (s Space) TransverseToRow(y float64) float64 {
	return s.ToPixels(y)
}

// MaxSide is the longest raster side a Space sizes. Callers must check
// Extent against it before converting to int.
const MaxSide = math.MaxInt32

// Extent returns the unrounded raster size for a mat of the given length
// and width.
func (s Space) Extent(totalLength, totalWidth float64) (w, h float64) {
	return s.ToPixels(totalLength + s.LeadingOffset), s.ToPixels(totalWidth)
}

// SurfaceSize returns the raster size for a mat of the given length and width.
func (s Space) SurfaceSize(totalLength, totalWidth float64) (w, h int) {
	wf, hf := s.Extent(totalLength, totalWidth)
	return Px(wf), Px(hf)
}

// Px rounds a pixel coordinate to the nearest integer.
func Px(v float64) int {
	return int(math.Round(v))
}

// Span returns the integer pixel interval [lo, hi) of a stroke of width w
// centered on c. Strokes are at least one pixel wide.
func Span(c, w float64) (lo, hi int) {
	n := max(Px(w), 1)
	lo = Px(c - float64(n)/2)
	return lo, lo + n
}
