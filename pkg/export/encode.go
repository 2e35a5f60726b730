package export

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/matzehuels/jumpmat/pkg/errors"
)

// Format is an image encoding.
type Format string

// Supported image formats.
const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

// DefaultJPEGQuality is used when quality is 0.
const DefaultJPEGQuality = 92

// Formats lists the supported image formats.
var Formats = []Format{FormatPNG, FormatJPEG, FormatBMP, FormatTIFF}

// ParseFormat accepts a format name or common file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "bmp":
		return FormatBMP, nil
	case "tiff", "tif":
		return FormatTIFF, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported image format %q", s)
}

// MIMEType returns the media type of f.
func (f Format) MIMEType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatBMP:
		return "image/bmp"
	case FormatTIFF:
		return "image/tiff"
	default:
		return "image/png"
	}
}

// Ext returns the file extension of f, without the dot.
func (f Format) Ext() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return string(f)
}

// Encode encodes img as f. quality applies to JPEG only and must be in
// 1..100; 0 selects DefaultJPEGQuality.
func Encode(img image.Image, f Format, quality int) ([]byte, error) {
	if img == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nothing to encode")
	}
	var buf bytes.Buffer
	var err error
	switch f {
	case FormatPNG:
		err = png.Encode(&buf, img)
	case FormatJPEG:
		if quality == 0 {
			quality = DefaultJPEGQuality
		}
		if quality < 1 || quality > 100 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "jpeg quality must be in 1..100, got %d", quality)
		}
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	case FormatBMP:
		err = bmp.Encode(&buf, img)
	case FormatTIFF:
		err = tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported image format %q", f)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode %s", f)
	}
	return buf.Bytes(), nil
}

// DataURL encodes img as f and wraps it in a base64 data URL.
func DataURL(img image.Image, f Format, quality int) (string, error) {
	data, err := Encode(img, f, quality)
	if err != nil {
		return "", err
	}
	return "data:" + f.MIMEType() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
