// Package fonts provides the label typeface for raster rendering.
//
// Labels use Go Regular from golang.org/x/image, embedded in the binary, so
// rendering never depends on fonts installed on the host.
package fonts

import (
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/matzehuels/jumpmat/pkg/errors"
)

// FontFamily is the family name of the label font.
const FontFamily = "Go Regular"

// Parsed font (computed once on first access).
var (
	labelFont     *opentype.Font
	labelFontErr  error
	labelFontOnce sync.Once
)

// LabelTTF returns the raw TTF data of the label font.
func LabelTTF() []byte {
	return goregular.TTF
}

func parsed() (*opentype.Font, error) {
	labelFontOnce.Do(func() {
		labelFont, labelFontErr = opentype.Parse(goregular.TTF)
	})
	return labelFont, labelFontErr
}

// LabelFace returns a face whose em size is sizePx pixels. Faces are not
// safe for concurrent use; callers create one per rendering.
func LabelFace(sizePx float64) (font.Face, error) {
	if sizePx <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "font size must be positive, got %g", sizePx)
	}
	f, err := parsed()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse %s", FontFamily)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    sizePx,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create %s face at %gpx", FontFamily, sizePx)
	}
	return face, nil
}
