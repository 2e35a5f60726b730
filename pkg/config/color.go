package config

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/jumpmat/pkg/errors"
)

// ParseColor parses "#rgb", "#rrggbb", "#rrggbbaa", "rgb(r, g, b)" and
// "rgba(r, g, b, a)" where a is in [0, 1].
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHex(s)
	case strings.HasPrefix(s, "rgba(") || strings.HasPrefix(s, "rgb("):
		return parseFunc(s)
	}
	return color.NRGBA{}, errors.New(errors.ErrCodeInvalidColor, "unrecognized color %q", s)
}

// MustColor is ParseColor for values already checked by Validate.
func MustColor(s string) color.NRGBA {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

func parseHex(s string) (color.NRGBA, error) {
	alpha := uint8(255)
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, errors.Wrap(errors.ErrCodeInvalidColor, err, "bad alpha in %q", s)
		}
		alpha = uint8(a)
		s = s[:7]
	}
	if len(s) != 4 && len(s) != 7 {
		return color.NRGBA{}, errors.New(errors.ErrCodeInvalidColor, "bad hex color %q", s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, errors.Wrap(errors.ErrCodeInvalidColor, err, "bad hex color %q", s)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

func parseFunc(s string) (color.NRGBA, error) {
	lp, rp := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if rp < lp {
		return color.NRGBA{}, errors.New(errors.ErrCodeInvalidColor, "unterminated color %q", s)
	}
	parts := strings.Split(s[lp+1:rp], ",")
	wantAlpha := strings.HasPrefix(s, "rgba(")
	if (wantAlpha && len(parts) != 4) || (!wantAlpha && len(parts) != 3) {
		return color.NRGBA{}, errors.New(errors.ErrCodeInvalidColor, "wrong component count in %q", s)
	}

	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || v < 0 || v > 255 {
			return color.NRGBA{}, errors.New(errors.ErrCodeInvalidColor, "component %d out of range in %q", i, s)
		}
		ch[i] = uint8(v)
	}
	alpha := uint8(255)
	if wantAlpha {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 || a > 1 {
			return color.NRGBA{}, errors.New(errors.ErrCodeInvalidColor, "alpha out of range in %q", s)
		}
		alpha = uint8(a*255 + 0.5)
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: alpha}, nil
}
