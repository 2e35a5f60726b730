// Package report writes the printable text specification of a mat.
//
// The document is a pure function of the layout plan: two plans built from
// the same configuration always produce byte-identical reports.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/matzehuels/jumpmat/pkg/config"
	"github.com/matzehuels/jumpmat/pkg/fiducial"
	"github.com/matzehuels/jumpmat/pkg/layout"
)

const metersPerInch = 0.0254

// String returns the report for p.
func String(p *layout.Plan) string {
	var b strings.Builder
	(&writer{w: &b}).document(p)
	return b.String()
}

// Write writes the report for p to w.
func Write(w io.Writer, p *layout.Plan) error {
	r := &writer{w: w}
	r.document(p)
	return r.err
}

type writer struct {
	w   io.Writer
	err error
}

func (r *writer) document(p *layout.Plan) {
	cfg := p.Config
	r.title("JUMP MAT SPECIFICATION")
	r.dimensions(p)
	r.zones(cfg)
	r.tiers(p)
	r.labels(p)
	r.markers(p)
	r.colors(cfg)
	r.tolerance(p)
}

func (r *writer) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, args...)
}

func (r *writer) title(s string) {
	r.printf("%s\n%s\n", s, strings.Repeat("=", len(s)))
}

func (r *writer) section(s string) {
	r.printf("\n%s\n%s\n", s, strings.Repeat("-", len(s)))
}

// table writes tab-separated rows aligned in columns.
func (r *writer) table(rows [][]string) {
	if r.err != nil {
		return
	}
	tw := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		fmt.Fprintf(tw, "  %s\n", strings.Join(row, "\t"))
	}
	r.err = tw.Flush()
}

func (r *writer) dimensions(p *layout.Plan) {
	cfg := p.Config
	r.section("Dimensions")
	r.table([][]string{
		{"Measured length", m(cfg.TotalLength), "from the origin line"},
		{"Takeoff margin", m(cfg.LeadingOffset), "before the origin line"},
		{"Overall length", m(cfg.Span()), ""},
		{"Width", m(cfg.TotalWidth), ""},
		{"Resolution", fmt.Sprintf("%g px/m", cfg.PixelsPerMeter), fmt.Sprintf("%.2f dpi", cfg.PixelsPerMeter*metersPerInch)},
		{"Raster", fmt.Sprintf("%d x %d px", p.Width, p.Height), ""},
		{"Pixel size", mm(1 / cfg.PixelsPerMeter), ""},
	})
}

func (r *writer) zones(cfg config.MetricConfig) {
	r.section("Zones")
	rows := [][]string{{"NAME", "ROLE", "START", "END", "LENGTH"}}
	for _, z := range cfg.Zones {
		rows = append(rows, []string{z.Name, string(z.Role), m(z.Start), m(z.End), m(z.Length())})
	}
	r.table(rows)
}

func (r *writer) tiers(p *layout.Plan) {
	cfg := p.Config
	counts := make(map[string]int)
	for _, t := range p.Coarse {
		counts[t.Zone+"/"+t.Tier.Name]++
	}
	for _, t := range p.Fine {
		counts[t.Zone+"/"+t.Tier.Name]++
	}

	r.section("Graduations")
	r.printf("  Origin line at %s, %s wide, %s, full width\n\n", m(p.Origin.Position), mm(p.Origin.Width), p.Origin.Color)
	rows := [][]string{{"ZONE", "TIER", "SPACING", "LENGTH", "WIDTH", "COLOR", "COUNT"}}
	for _, z := range cfg.Zones {
		for _, t := range config.SortedTiers(cfg.TiersFor(z.Name)) {
			rows = append(rows, []string{
				z.Name, t.Name, cm(t.Spacing), mm(t.LineLength), mm(t.LineWidth), t.Color,
				fmt.Sprint(counts[z.Name+"/"+t.Name]),
			})
		}
	}
	r.table(rows)
	r.printf("  Ticks run inward from both long edges. A tick takes the coarsest tier whose spacing divides it.\n")
}

func (r *writer) labels(p *layout.Plan) {
	cfg := p.Config.Labels
	r.section("Labels")
	r.printf("  Strategy %s, %s text, offset %s from the tick\n", cfg.Strategy, mm(cfg.Size), mm(cfg.Offset))
	texts := make([]string, len(p.Labels))
	for i, l := range p.Labels {
		texts[i] = fmt.Sprintf("%q@%s", l.Text, m(l.Position))
	}
	r.printf("  %s\n", strings.Join(texts, ", "))
}

func (r *writer) markers(p *layout.Plan) {
	mk := p.Config.Markers
	r.section("Fiducial markers")
	r.printf("  %d markers, 4x4 dictionary of %d patterns, 6x6 cells with a dark border ring\n",
		len(p.Placements), fiducial.Default.Size())
	r.printf("  Core %s, quiet zone %s, footprint %s, edge margin %s\n\n",
		mm(mk.CoreSize), mm(mk.QuietZone), mm(mk.Footprint()), mm(mk.Margin))
	rows := [][]string{{"ID", "SIDE", "CENTER", "FOOTPRINT X", "FOOTPRINT Y", "PATTERN"}}
	for _, pl := range p.Placements {
		f := pl.Footprint
		rows = append(rows, []string{
			fmt.Sprint(pl.ID), string(pl.Side), m(pl.Position),
			fmt.Sprintf("%s .. %s", m(f.X0), m(f.X1)),
			fmt.Sprintf("%s .. %s", m(f.Y0), m(f.Y1)),
			fiducial.Default.Lookup(pl.ID).String(),
		})
	}
	r.table(rows)
}

func (r *writer) colors(cfg config.MetricConfig) {
	r.section("Colors")
	r.table([][]string{
		{"Background", cfg.Background},
		{"Origin line", cfg.Origin.Color},
		{"Labels", cfg.Labels.Color},
		{"Border", cfg.Border.Color},
		{"Inset line", cfg.Border.InsetColor},
		{"Marker dark", cfg.Markers.Dark},
		{"Marker light", cfg.Markers.Light},
		{"Speckle", fmt.Sprintf("%s at %.0f%% opacity", cfg.Speckle.Color, cfg.Speckle.Opacity*100)},
	})
}

func (r *writer) tolerance(p *layout.Plan) {
	cfg := p.Config
	precision, _ := cfg.ZoneByRole(config.RolePrecision)
	r.section("Tolerance")
	r.printf("  Printed positions must be within ±%s of nominal over the full %s.\n", mm(cfg.Tolerance), m(cfg.Span()))
	r.printf("  Check: origin line to the %s tick must measure %s.\n", m(precision.End), m(precision.End))
	r.printf("  Print at 100%% scale with no fit-to-page. Markers must print square to within ±%s.\n", mm(cfg.Tolerance))
	if px := 1 / cfg.PixelsPerMeter; cfg.Tolerance > 0 && px > cfg.Tolerance {
		r.printf("  WARNING: pixel size %s exceeds the tolerance; raise the resolution.\n", mm(px))
	}
}

func m(v float64) string  { return fmt.Sprintf("%.3f m", v) }
func cm(v float64) string { return fmt.Sprintf("%g cm", float64(config.Centimeters(v))) }
func mm(v float64) string { return fmt.Sprintf("%.2f mm", v*1000) }
