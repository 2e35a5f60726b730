package render

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/matzehuels/jumpmat/pkg/errors"
)

// Surface is the raster being drawn. It is only mutated while layers run.
type Surface struct {
	img *image.RGBA
}

// NewSurface allocates a w×h raster. It refuses to allocate more than
// maxPixels pixels.
func NewSurface(w, h int, maxPixels int64) (*Surface, error) {
	if w <= 0 || h <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "surface size must be positive, got %dx%d", w, h)
	}
	if n := float64(w) * float64(h); maxPixels > 0 && n > float64(maxPixels) {
		return nil, errors.New(errors.ErrCodeResourceExhausted,
			"surface %dx%d needs %.0f pixels, limit is %d", w, h, n, maxPixels)
	}
	return &Surface{img: image.NewRGBA(image.Rect(0, 0, w, h))}, nil
}

// Image returns the underlying raster.
func (s *Surface) Image() *image.RGBA { return s.img }

// Bounds returns the raster bounds.
func (s *Surface) Bounds() image.Rectangle { return s.img.Bounds() }

// Fill paints the whole surface.
func (s *Surface) Fill(c color.Color) {
	s.FillRect(s.img.Bounds(), c)
}

// FillRect paints r, clipped to the surface, with c composited over the
// existing pixels.
func (s *Surface) FillRect(r image.Rectangle, c color.Color) {
	r = r.Intersect(s.img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(s.img, r, image.NewUniform(c), image.Point{}, draw.Over)
}

// StrokeRect paints a frame of width w just inside r.
func (s *Surface) StrokeRect(r image.Rectangle, w int, c color.Color) {
	if w <= 0 {
		return
	}
	s.FillRect(image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+w), c)
	s.FillRect(image.Rect(r.Min.X, r.Max.Y-w, r.Max.X, r.Max.Y), c)
	s.FillRect(image.Rect(r.Min.X, r.Min.Y, r.Min.X+w, r.Max.Y), c)
	s.FillRect(image.Rect(r.Max.X-w, r.Min.Y, r.Max.X, r.Max.Y), c)
}

// Context returns a gg context drawing onto the surface pixels.
func (s *Surface) Context() *gg.Context {
	return gg.NewContextForRGBA(s.img)
}
