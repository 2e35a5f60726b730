package report

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/matzehuels/jumpmat/pkg/config"
	"github.com/matzehuels/jumpmat/pkg/layout"
)

func plan(t *testing.T, cfg config.MetricConfig) *layout.Plan {
	t.Helper()
	p, err := layout.NewPlan(cfg)
	if err != nil {
		t.Fatalf("NewPlan() error = %v", err)
	}
	return p
}

func TestStringDeterministic(t *testing.T) {
	a := String(plan(t, config.Reference()))
	b := String(plan(t, config.Reference()))
	if a != b {
		t.Error("two reports of the same configuration differ")
	}
}

func TestStringContents(t *testing.T) {
	out := String(plan(t, config.Reference()))
	for _, want := range []string{
		"JUMP MAT SPECIFICATION",
		"3.000 m",
		"3960 x 1080 px",
		"0.83 mm",
		"landing",
		"precision",
		"centimeter",
		"#c62828",
		"±0.50 mm",
		`"1.50 m"@1.500 m`,
		"1011", // first row of some pattern
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
	if strings.Contains(out, "WARNING") {
		t.Error("reference report warns about resolution")
	}
}

func TestTickCounts(t *testing.T) {
	out := String(plan(t, config.Reference()))
	for _, line := range strings.Split(out, "\n") {
		f := strings.Fields(line)
		if len(f) < 2 || f[0] != "landing" || f[1] != "centimeter" {
			continue
		}
		if got := f[len(f)-1]; got != "108" {
			t.Errorf("centimeter count = %s, want 108", got)
		}
		return
	}
	t.Error("no centimeter tier row")
}

func TestMarkerRows(t *testing.T) {
	p := plan(t, config.Reference())
	out := String(p)
	for _, pl := range p.Placements {
		found := false
		for _, line := range strings.Split(out, "\n") {
			f := strings.Fields(line)
			if len(f) > 2 && f[0] == strconv.Itoa(pl.ID) && f[1] == string(pl.Side) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("no row for marker %d (%s)", pl.ID, pl.Side)
		}
	}
}

func TestResolutionWarning(t *testing.T) {
	cfg := config.Reference()
	cfg.PixelsPerMeter = 1000 // 1 mm pixels against 0.5 mm tolerance
	if out := String(plan(t, cfg)); !strings.Contains(out, "WARNING: pixel size 1.00 mm") {
		t.Error("low-resolution report has no warning")
	}
}

type failingWriter struct{ n int }

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.n == 0 {
		return 0, errors.New("disk full")
	}
	w.n--
	return len(p), nil
}

func TestWrite(t *testing.T) {
	p := plan(t, config.Reference())
	var b strings.Builder
	if err := Write(&b, p); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got := String(p); got != b.String() {
		t.Error("String() differs from Write() output")
	}

	for _, n := range []int{0, 3} {
		if err := Write(&failingWriter{n: n}, p); err == nil {
			t.Errorf("Write() after %d writes error = nil, want disk full", n)
		}
	}
}
