// Package config defines the metric description of a calibration mat.
//
// Every distance is in meters. The longitudinal axis runs along the jump
// direction with the takeoff (origin) line at 0; positions left of the origin
// are negative and belong to the takeoff margin of width LeadingOffset. The
// transverse axis runs across the mat from the far edge (0) to the near edge
// (TotalWidth).
//
// A MetricConfig carries no logic beyond validation; the layout and render
// packages consume it.
package config

import (
	"math"
	"sort"
)

// DefaultPixelsPerMeter is the raster density used when none is configured.
const DefaultPixelsPerMeter = 1200.0

// DefaultMaxPixels bounds raster allocation (about 1 GB of RGBA).
const DefaultMaxPixels = 250_000_000

// Role is the semantic purpose of a zone.
type Role string

// Zone roles, in the order they appear along the mat.
const (
	RoleTakeoff   Role = "takeoff"
	RoleFlight    Role = "flight"
	RolePrecision Role = "precision"
	RoleExtended  Role = "extended"
)

// LabelStrategy selects how distance annotations are drawn.
type LabelStrategy string

const (
	// LabelsRotated draws labels turned 90 degrees along the mat's center line.
	LabelsRotated LabelStrategy = "rotated"
	// LabelsInline draws upright labels next to the far-edge ticks.
	LabelsInline LabelStrategy = "inline"
)

// MetricConfig is the full metric specification of a mat.
type MetricConfig struct {
	TotalLength    float64 `toml:"total_length" json:"total_length"`
	TotalWidth     float64 `toml:"total_width" json:"total_width"`
	LeadingOffset  float64 `toml:"leading_offset" json:"leading_offset"`
	PixelsPerMeter float64 `toml:"pixels_per_meter" json:"pixels_per_meter"`
	MaxPixels      int64   `toml:"max_pixels" json:"max_pixels"`
	Tolerance      float64 `toml:"tolerance" json:"tolerance"`
	Background     string  `toml:"background" json:"background"`

	Origin  LineSpec    `toml:"origin" json:"origin"`
	Zones   []Zone      `toml:"zones" json:"zones"`
	Tiers   []Tier      `toml:"tiers" json:"tiers"`
	Labels  LabelSpec   `toml:"labels" json:"labels"`
	Border  BorderSpec  `toml:"border" json:"border"`
	Markers MarkerSpec  `toml:"markers" json:"markers"`
	Speckle SpeckleSpec `toml:"speckle" json:"speckle"`
}

// LineSpec is a stroke width and color.
type LineSpec struct {
	Width float64 `toml:"width" json:"width"`
	Color string  `toml:"color" json:"color"`
}

// Zone is the half-open interval [Start, End) tagged with a role.
type Zone struct {
	Name  string  `toml:"name" json:"name"`
	Role  Role    `toml:"role" json:"role"`
	Start float64 `toml:"start" json:"start"`
	End   float64 `toml:"end" json:"end"`
}

// Length returns End - Start.
func (z Zone) Length() float64 { return z.End - z.Start }

// Contains reports whether p lies in [Start, End).
func (z Zone) Contains(p float64) bool { return p >= z.Start && p < z.End }

// Tier is one rung of the tick hierarchy. A tick at a position divisible by
// Spacing (in whole centimeters) is drawn with this tier's line unless a
// coarser tier of the same zone already claims it.
type Tier struct {
	Name       string   `toml:"name" json:"name"`
	Spacing    float64  `toml:"spacing" json:"spacing"`
	LineLength float64  `toml:"line_length" json:"line_length"`
	LineWidth  float64  `toml:"line_width" json:"line_width"`
	Color      string   `toml:"color" json:"color"`
	Zones      []string `toml:"zones" json:"zones"`
}

// SpacingCM returns the spacing in whole centimeters.
func (t Tier) SpacingCM() int { return Centimeters(t.Spacing) }

// AppliesTo reports whether the tier is used in the named zone.
func (t Tier) AppliesTo(zone string) bool {
	for _, z := range t.Zones {
		if z == zone {
			return true
		}
	}
	return false
}

// LabelSpec configures distance annotations.
type LabelSpec struct {
	Strategy LabelStrategy `toml:"strategy" json:"strategy"`
	Size     float64       `toml:"size" json:"size"`
	Offset   float64       `toml:"offset" json:"offset"`
	Step     float64       `toml:"step" json:"step"`
	Color    string        `toml:"color" json:"color"`
}

// BorderSpec configures the outer frame and the lighter inset rectangle.
type BorderSpec struct {
	Width      float64 `toml:"width" json:"width"`
	Color      string  `toml:"color" json:"color"`
	Inset      float64 `toml:"inset" json:"inset"`
	InsetWidth float64 `toml:"inset_width" json:"inset_width"`
	InsetColor string  `toml:"inset_color" json:"inset_color"`
}

// MarkerSpec configures fiducial placement. Each position carries one marker
// on the far side (ID FarIDBase+i) and one on the near side (NearIDBase+i).
type MarkerSpec struct {
	CoreSize   float64   `toml:"core_size" json:"core_size"`
	QuietZone  float64   `toml:"quiet_zone" json:"quiet_zone"`
	Margin     float64   `toml:"margin" json:"margin"`
	Positions  []float64 `toml:"positions" json:"positions"`
	NearIDBase int       `toml:"near_id_base" json:"near_id_base"`
	FarIDBase  int       `toml:"far_id_base" json:"far_id_base"`
	Dark       string    `toml:"dark" json:"dark"`
	Light      string    `toml:"light" json:"light"`
}

// Footprint is the side of the light square holding one marker.
func (m MarkerSpec) Footprint() float64 { return m.CoreSize + 2*m.QuietZone }

// SpeckleSpec configures the matte background texture.
type SpeckleSpec struct {
	Count     int     `toml:"count" json:"count"`
	MaxRadius float64 `toml:"max_radius" json:"max_radius"`
	Opacity   float64 `toml:"opacity" json:"opacity"`
	Color     string  `toml:"color" json:"color"`
}

// Reference returns the reference mat: 3.0 x 0.9 m with a 0.3 m takeoff margin,
// a 1 cm precision landing zone and eight fiducials.
func Reference() MetricConfig {
	return MetricConfig{
		TotalLength:    3.0,
		TotalWidth:     0.9,
		LeadingOffset:  0.3,
		PixelsPerMeter: DefaultPixelsPerMeter,
		MaxPixels:      DefaultMaxPixels,
		Tolerance:      0.0005,
		Background:     "#f4f1e8",
		Origin:         LineSpec{Width: 0.005, Color: "#c62828"},
		Zones: []Zone{
			{Name: "takeoff", Role: RoleTakeoff, Start: -0.3, End: 0},
			{Name: "flight", Role: RoleFlight, Start: 0, End: 1.5},
			{Name: "landing", Role: RolePrecision, Start: 1.5, End: 2.7},
			{Name: "extended", Role: RoleExtended, Start: 2.7, End: 3.0},
		},
		Tiers: []Tier{
			{Name: "flight-major", Spacing: 0.50, LineLength: 0.12, LineWidth: 0.003, Color: "#1a1a1a", Zones: []string{"flight"}},
			{Name: "flight-minor", Spacing: 0.10, LineLength: 0.06, LineWidth: 0.002, Color: "#1a1a1a", Zones: []string{"flight"}},
			{Name: "meter", Spacing: 1.00, LineLength: 0.20, LineWidth: 0.004, Color: "#000000", Zones: []string{"landing"}},
			{Name: "half-meter", Spacing: 0.50, LineLength: 0.15, LineWidth: 0.003, Color: "#000000", Zones: []string{"landing"}},
			{Name: "decimeter", Spacing: 0.10, LineLength: 0.10, LineWidth: 0.002, Color: "#1a1a1a", Zones: []string{"landing"}},
			{Name: "centimeter", Spacing: 0.01, LineLength: 0.04, LineWidth: 0.001, Color: "#333333", Zones: []string{"landing"}},
			{Name: "extended", Spacing: 0.10, LineLength: 0.06, LineWidth: 0.002, Color: "#555555", Zones: []string{"extended"}},
		},
		Labels: LabelSpec{
			Strategy: LabelsRotated,
			Size:     0.025,
			Offset:   0.012,
			Step:     0.5,
			Color:    "#000000",
		},
		Border: BorderSpec{
			Width:      0.004,
			Color:      "#000000",
			Inset:      0.012,
			InsetWidth: 0.001,
			InsetColor: "#9e9e9e",
		},
		Markers: MarkerSpec{
			CoreSize:   0.10,
			QuietZone:  0.02,
			Margin:     0.03,
			Positions:  []float64{0, 1.0, 1.8, 2.4},
			NearIDBase: 0,
			FarIDBase:  8,
			Dark:       "#000000",
			Light:      "#ffffff",
		},
		Speckle: SpeckleSpec{
			Count:     4000,
			MaxRadius: 0.0015,
			Opacity:   0.06,
			Color:     "#000000",
		},
	}
}

// SetDefaults fills the optional fields left at their zero value.
func (c *MetricConfig) SetDefaults() {
	if c.PixelsPerMeter == 0 {
		c.PixelsPerMeter = DefaultPixelsPerMeter
	}
	if c.MaxPixels == 0 {
		c.MaxPixels = DefaultMaxPixels
	}
	if c.Labels.Strategy == "" {
		c.Labels.Strategy = LabelsRotated
	}
}

// ZoneByRole returns the first zone with the given role.
func (c MetricConfig) ZoneByRole(r Role) (Zone, bool) {
	for _, z := range c.Zones {
		if z.Role == r {
			return z, true
		}
	}
	return Zone{}, false
}

// TiersFor returns the tiers applicable to the named zone, in declaration order.
func (c MetricConfig) TiersFor(zone string) []Tier {
	var out []Tier
	for _, t := range c.Tiers {
		if t.AppliesTo(zone) {
			out = append(out, t)
		}
	}
	return out
}

// SortedTiers returns a copy of tiers ordered coarsest first. Ties keep
// declaration order.
func SortedTiers(tiers []Tier) []Tier {
	out := append([]Tier(nil), tiers...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SpacingCM() > out[j].SpacingCM()
	})
	return out
}

// Span is the full longitudinal extent of the mat including the takeoff margin.
func (c MetricConfig) Span() float64 { return c.TotalLength + c.LeadingOffset }

// Clone returns a deep copy.
func (c MetricConfig) Clone() MetricConfig {
	out := c
	out.Zones = append([]Zone(nil), c.Zones...)
	out.Tiers = make([]Tier, len(c.Tiers))
	for i, t := range c.Tiers {
		t.Zones = append([]string(nil), t.Zones...)
		out.Tiers[i] = t
	}
	out.Markers.Positions = append([]float64(nil), c.Markers.Positions...)
	return out
}

// Centimeters converts meters to the nearest whole centimeter.
func Centimeters(m float64) int {
	return int(math.Round(m * 100))
}

// isWholeCM reports whether m is a whole number of centimeters.
func isWholeCM(m float64) bool {
	return math.Abs(m*100-math.Round(m*100)) < 1e-6
}
