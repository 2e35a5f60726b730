package layout

import (
	"fmt"

	"github.com/matzehuels/jumpmat/pkg/config"
)

// Label is a distance annotation.
type Label struct {
	CM       int
	Position float64
	Text     string
}

// Labels returns the annotations for the configured strategy.
func Labels(cfg config.MetricConfig) []Label {
	if cfg.Labels.Strategy == config.LabelsInline {
		return InlineLabels(cfg)
	}
	return RotatedLabels(cfg)
}

// RotatedLabels marks the origin line, the start of the precision zone and
// every Step after it, in meters.
func RotatedLabels(cfg config.MetricConfig) []Label {
	flight, _ := cfg.ZoneByRole(config.RoleFlight)
	precision, _ := cfg.ZoneByRole(config.RolePrecision)

	labels := []Label{meterLabel(config.Centimeters(flight.Start))}
	start := config.Centimeters(precision.Start)
	step := config.Centimeters(cfg.Labels.Step)
	if step <= 0 {
		return labels
	}
	end := config.Centimeters(cfg.TotalLength)
	for cm := start; cm < end; cm += step {
		if cm == labels[0].CM {
			continue
		}
		labels = append(labels, meterLabel(cm))
	}
	return labels
}

// InlineLabels marks the origin line and every decimeter of the precision
// zone, in centimeters.
func InlineLabels(cfg config.MetricConfig) []Label {
	flight, _ := cfg.ZoneByRole(config.RoleFlight)
	precision, _ := cfg.ZoneByRole(config.RolePrecision)

	labels := []Label{cmLabel(config.Centimeters(flight.Start))}
	start, end := config.Centimeters(precision.Start), config.Centimeters(precision.End)
	for cm := ceilDiv(start, 10) * 10; cm <= end; cm += 10 {
		if cm == labels[0].CM {
			continue
		}
		labels = append(labels, cmLabel(cm))
	}
	return labels
}

func meterLabel(cm int) Label {
	return Label{CM: cm, Position: float64(cm) / 100, Text: fmt.Sprintf("%.2f m", float64(cm)/100)}
}

func cmLabel(cm int) Label {
	return Label{CM: cm, Position: float64(cm) / 100, Text: fmt.Sprintf("%d", cm)}
}
