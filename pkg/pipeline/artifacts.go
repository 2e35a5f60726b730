package pipeline

import (
	"bytes"
	"encoding/json"

	"github.com/matzehuels/jumpmat/pkg/errors"
	"github.com/matzehuels/jumpmat/pkg/export"
	"github.com/matzehuels/jumpmat/pkg/layout"
	"github.com/matzehuels/jumpmat/pkg/render"
	"github.com/matzehuels/jumpmat/pkg/report"
)

// needsRaster reports whether producing format requires drawing the mat.
func needsRaster(format string) bool {
	return format != FormatTXT && format != FormatJSON
}

// Encode produces one artifact from gen.
func Encode(gen *render.Generator, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatPNG, FormatJPEG, FormatBMP, FormatTIFF:
		return gen.Encode(export.Format(format), opts.Quality)
	case FormatOBJ:
		mesh, err := gen.Mesh()
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		err = export.WriteOBJ(&buf, mesh, opts.Name+"."+FormatMTL)
		return buf.Bytes(), err
	case FormatMTL:
		mesh, err := gen.Mesh()
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		err = export.WriteMTL(&buf, mesh, opts.Name+"."+FormatPNG)
		return buf.Bytes(), err
	case FormatTXT:
		return []byte(report.String(gen.Plan())), nil
	case FormatJSON:
		return MarshalManifest(gen.Plan())
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
}

// Manifest is the machine-readable summary of a mat: its raster size and
// where every marker sits, for calibration tools that consume the print.
type Manifest struct {
	Width          int              `json:"width_px"`
	Height         int              `json:"height_px"`
	PixelsPerMeter float64          `json:"pixels_per_meter"`
	TotalLength    float64          `json:"total_length_m"`
	TotalWidth     float64          `json:"total_width_m"`
	LeadingOffset  float64          `json:"leading_offset_m"`
	Markers        []ManifestMarker `json:"markers"`
	Plane          export.Geometry  `json:"plane"`
}

// ManifestMarker locates one fiducial in meters and pixels.
type ManifestMarker struct {
	ID       int         `json:"id"`
	Side     layout.Side `json:"side"`
	Position float64     `json:"position_m"`
	Core     layout.Rect `json:"core_m"`
	CorePx   [4]int      `json:"core_px"` // x0, y0, x1, y1
}

// NewManifest builds the manifest of p.
func NewManifest(p *layout.Plan) Manifest {
	cfg := p.Config
	m := Manifest{
		Width:          p.Width,
		Height:         p.Height,
		PixelsPerMeter: cfg.PixelsPerMeter,
		TotalLength:    cfg.TotalLength,
		TotalWidth:     cfg.TotalWidth,
		LeadingOffset:  cfg.LeadingOffset,
		Plane:          export.Plane(cfg),
	}
	for _, pl := range p.Placements {
		_, core := p.MarkerPixels(pl)
		m.Markers = append(m.Markers, ManifestMarker{
			ID:       pl.ID,
			Side:     pl.Side,
			Position: pl.Position,
			Core:     pl.Core,
			CorePx:   [4]int{core.Min.X, core.Min.Y, core.Max.X, core.Max.Y},
		})
	}
	return m
}

// MarshalManifest returns the indented JSON manifest of p.
func MarshalManifest(p *layout.Plan) ([]byte, error) {
	data, err := json.MarshalIndent(NewManifest(p), "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "marshal manifest")
	}
	return append(data, '\n'), nil
}
