package config

import (
	"math"

	"github.com/matzehuels/jumpmat/pkg/errors"
	"github.com/matzehuels/jumpmat/pkg/fiducial"
)

// eps is the tolerance for comparing boundaries given in meters.
const eps = 1e-9

// Validate reports every problem in c as a single INVALID_CONFIG error.
// A configuration that passes can be drawn without runtime faults.
func (c MetricConfig) Validate() error {
	var v errors.ValidationError

	if c.TotalLength <= 0 {
		v.Add("total_length must be positive, got %g", c.TotalLength)
	}
	if c.TotalWidth <= 0 {
		v.Add("total_width must be positive, got %g", c.TotalWidth)
	}
	if c.LeadingOffset < 0 {
		v.Add("leading_offset must not be negative, got %g", c.LeadingOffset)
	}
	if c.PixelsPerMeter <= 0 || math.IsInf(c.PixelsPerMeter, 0) || math.IsNaN(c.PixelsPerMeter) {
		v.Add("pixels_per_meter must be positive, got %g", c.PixelsPerMeter)
	}
	if c.MaxPixels <= 0 {
		v.Add("max_pixels must be positive, got %d", c.MaxPixels)
	}
	if c.Tolerance < 0 {
		v.Add("tolerance must not be negative, got %g", c.Tolerance)
	}

	c.validateColors(&v)
	c.validateZones(&v)
	c.validateTiers(&v)
	c.validateLabels(&v)
	c.validateBorder(&v)
	c.validateMarkers(&v)

	if err := v.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid mat configuration")
	}
	return nil
}

func (c MetricConfig) validateColors(v *errors.ValidationError) {
	check := func(field, s string) {
		if _, err := ParseColor(s); err != nil {
			v.Add("%s: %s", field, errors.UserMessage(err))
		}
	}
	check("background", c.Background)
	check("origin.color", c.Origin.Color)
	check("labels.color", c.Labels.Color)
	check("border.color", c.Border.Color)
	check("border.inset_color", c.Border.InsetColor)
	check("markers.dark", c.Markers.Dark)
	check("markers.light", c.Markers.Light)
	if c.Speckle.Count > 0 {
		check("speckle.color", c.Speckle.Color)
	}
	for _, t := range c.Tiers {
		check("tier "+t.Name+" color", t.Color)
	}
}

func (c MetricConfig) validateZones(v *errors.ValidationError) {
	if len(c.Zones) == 0 {
		v.Add("at least one zone is required")
		return
	}
	if math.Abs(c.Zones[0].Start+c.LeadingOffset) > eps {
		v.Add("first zone %q must start at %g (-leading_offset), got %g",
			c.Zones[0].Name, -c.LeadingOffset, c.Zones[0].Start)
	}
	if last := c.Zones[len(c.Zones)-1]; math.Abs(last.End-c.TotalLength) > eps {
		v.Add("last zone %q must end at total_length %g, got %g", last.Name, c.TotalLength, last.End)
	}

	names := make(map[string]bool, len(c.Zones))
	roles := make(map[Role]int)
	for i, z := range c.Zones {
		if z.Name == "" {
			v.Add("zone %d has no name", i)
		} else if names[z.Name] {
			v.Add("zone name %q is used twice", z.Name)
		}
		names[z.Name] = true
		roles[z.Role]++

		switch z.Role {
		case RoleTakeoff, RoleFlight, RolePrecision, RoleExtended:
		default:
			v.Add("zone %q has unknown role %q", z.Name, z.Role)
		}
		if z.End <= z.Start {
			v.Add("zone %q is not increasing: [%g, %g)", z.Name, z.Start, z.End)
		}
		if i > 0 {
			prev := c.Zones[i-1]
			if math.Abs(z.Start-prev.End) > eps {
				v.Add("zone %q starts at %g but %q ends at %g", z.Name, z.Start, prev.Name, prev.End)
			}
		}
		if z.Role != RoleTakeoff && !isWholeCM(z.Start) {
			v.Add("zone %q start %g is not a whole centimeter", z.Name, z.Start)
		}
	}
	if roles[RoleFlight] != 1 {
		v.Add("exactly one flight zone is required, got %d", roles[RoleFlight])
	}
	if roles[RolePrecision] != 1 {
		v.Add("exactly one precision zone is required, got %d", roles[RolePrecision])
	}
	if roles[RoleExtended] > 1 {
		v.Add("at most one extended zone is allowed, got %d", roles[RoleExtended])
	}
}

func (c MetricConfig) validateTiers(v *errors.ValidationError) {
	zones := make(map[string]bool, len(c.Zones))
	for _, z := range c.Zones {
		zones[z.Name] = true
	}

	for _, t := range c.Tiers {
		if t.Spacing <= 0 {
			v.Add("tier %q spacing must be positive, got %g", t.Name, t.Spacing)
		} else if !isWholeCM(t.Spacing) {
			v.Add("tier %q spacing %g is not a whole number of centimeters", t.Name, t.Spacing)
		}
		if t.LineLength <= 0 {
			v.Add("tier %q line_length must be positive, got %g", t.Name, t.LineLength)
		}
		if t.LineWidth <= 0 {
			v.Add("tier %q line_width must be positive, got %g", t.Name, t.LineWidth)
		}
		if len(t.Zones) == 0 {
			v.Add("tier %q applies to no zone", t.Name)
		}
		for _, z := range t.Zones {
			if !zones[z] {
				v.Add("tier %q references unknown zone %q", t.Name, z)
			}
		}
	}

	for _, z := range c.Zones {
		tiers := SortedTiers(c.TiersFor(z.Name))
		if (z.Role == RoleFlight || z.Role == RolePrecision) && len(tiers) == 0 {
			v.Add("zone %q needs at least one tier", z.Name)
		}
		for i := 1; i < len(tiers); i++ {
			coarse, fine := tiers[i-1].SpacingCM(), tiers[i].SpacingCM()
			if fine <= 0 {
				continue
			}
			if coarse == fine {
				v.Add("zone %q: tiers %q and %q share spacing %g", z.Name, tiers[i-1].Name, tiers[i].Name, tiers[i].Spacing)
			} else if coarse%fine != 0 {
				v.Add("zone %q: tier %q spacing %g is not a multiple of %q spacing %g",
					z.Name, tiers[i-1].Name, tiers[i-1].Spacing, tiers[i].Name, tiers[i].Spacing)
			}
		}
	}
}

func (c MetricConfig) validateLabels(v *errors.ValidationError) {
	switch c.Labels.Strategy {
	case LabelsRotated, LabelsInline:
	default:
		v.Add("labels.strategy must be %q or %q, got %q", LabelsRotated, LabelsInline, c.Labels.Strategy)
	}
	if c.Labels.Size <= 0 {
		v.Add("labels.size must be positive, got %g", c.Labels.Size)
	}
	if c.Labels.Step <= 0 {
		v.Add("labels.step must be positive, got %g", c.Labels.Step)
	}
}

func (c MetricConfig) validateBorder(v *errors.ValidationError) {
	b := c.Border
	if b.Width <= 0 {
		v.Add("border.width must be positive, got %g", b.Width)
	}
	if b.InsetWidth < 0 || b.Inset < 0 {
		v.Add("border inset and inset_width must not be negative")
	}
	if 2*(b.Inset+b.InsetWidth) >= c.TotalWidth {
		v.Add("border inset %g does not fit a %g m wide mat", b.Inset, c.TotalWidth)
	}
}

func (c MetricConfig) validateMarkers(v *errors.ValidationError) {
	m := c.Markers
	if m.CoreSize <= 0 {
		v.Add("markers.core_size must be positive, got %g", m.CoreSize)
		return
	}
	if m.QuietZone < 0 || m.Margin < 0 {
		v.Add("markers.quiet_zone and markers.margin must not be negative")
	}
	fp := m.Footprint()
	if 2*(m.Margin+fp) > c.TotalWidth+eps {
		v.Add("two %g m marker footprints with %g m margins do not fit a %g m wide mat", fp, m.Margin, c.TotalWidth)
	}

	for i, p := range m.Positions {
		if p-fp/2 < -c.LeadingOffset-eps || p+fp/2 > c.TotalLength+eps {
			v.Add("marker at %g m extends past the mat", p)
		}
		if i > 0 {
			prev := m.Positions[i-1]
			if p <= prev {
				v.Add("marker positions must increase: %g after %g", p, prev)
			} else if p-prev < fp-eps {
				v.Add("markers at %g and %g overlap (footprint %g m)", prev, p, fp)
			}
		}
	}

	n := len(m.Positions)
	if n == 0 {
		return
	}
	if m.NearIDBase < m.FarIDBase+n && m.FarIDBase < m.NearIDBase+n {
		v.Add("near ids [%d,%d) and far ids [%d,%d) overlap",
			m.NearIDBase, m.NearIDBase+n, m.FarIDBase, m.FarIDBase+n)
		return
	}
	ids := make([]int, 0, 2*n)
	for i := 0; i < n; i++ {
		ids = append(ids, m.NearIDBase+i, m.FarIDBase+i)
	}
	if err := fiducial.Default.Validate(ids); err != nil {
		v.Add("markers: %v", err)
	}
}
