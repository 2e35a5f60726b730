package layout

import "github.com/matzehuels/jumpmat/pkg/config"

// Tick is one graduation mark.
type Tick struct {
	CM       int         // position in centimeters from the origin line
	Position float64     // position in meters
	Zone     string      // zone the tick belongs to
	Tier     config.Tier // tier that sets length, width and color
}

// ClassifyTick returns the first tier in tiers whose spacing divides cm.
// tiers must be ordered coarsest first (see config.SortedTiers).
func ClassifyTick(cm int, tiers []config.Tier) (config.Tier, bool) {
	for _, t := range tiers {
		if s := t.SpacingCM(); s > 0 && cm%s == 0 {
			return t, true
		}
	}
	return config.Tier{}, false
}

// ZoneTicks enumerates the ticks of one zone over [Start, End). When
// skipStart is set the tick at the zone start is omitted; the flight zone
// uses it because the origin line occupies that position.
func ZoneTicks(cfg config.MetricConfig, z config.Zone, skipStart bool) []Tick {
	tiers := config.SortedTiers(cfg.TiersFor(z.Name))
	if len(tiers) == 0 {
		return nil
	}
	step := tiers[len(tiers)-1].SpacingCM()
	if step <= 0 {
		return nil
	}

	start, end := config.Centimeters(z.Start), config.Centimeters(z.End)
	first := ceilDiv(start, step) * step
	var ticks []Tick
	for cm := first; cm < end; cm += step {
		if skipStart && cm == start {
			continue
		}
		tier, ok := ClassifyTick(cm, tiers)
		if !ok {
			continue
		}
		ticks = append(ticks, Tick{
			CM:       cm,
			Position: float64(cm) / 100,
			Zone:     z.Name,
			Tier:     tier,
		})
	}
	return ticks
}

// OriginLine is the full-height takeoff line at the start of the flight zone.
type OriginLine struct {
	Position float64
	Width    float64
	Color    string
}

// CoarseTicks returns the origin line and the ticks of every zone up to and
// including the flight zone.
func CoarseTicks(cfg config.MetricConfig) (OriginLine, []Tick) {
	flight, _ := cfg.ZoneByRole(config.RoleFlight)
	origin := OriginLine{Position: flight.Start, Width: cfg.Origin.Width, Color: cfg.Origin.Color}

	var ticks []Tick
	for _, z := range cfg.Zones {
		switch z.Role {
		case config.RoleTakeoff:
			ticks = append(ticks, ZoneTicks(cfg, z, false)...)
		case config.RoleFlight:
			ticks = append(ticks, ZoneTicks(cfg, z, true)...)
		}
	}
	return origin, ticks
}

// FineTicks returns the ticks of the precision zone followed by the sparse
// ticks of the extended zone.
func FineTicks(cfg config.MetricConfig) []Tick {
	var ticks []Tick
	for _, role := range []config.Role{config.RolePrecision, config.RoleExtended} {
		for _, z := range cfg.Zones {
			if z.Role == role {
				ticks = append(ticks, ZoneTicks(cfg, z, false)...)
			}
		}
	}
	return ticks
}

func ceilDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a > 0) == (b > 0) {
		q++
	}
	return q
}
