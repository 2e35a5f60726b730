package config

import (
	"image/color"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"#000000", color.NRGBA{0, 0, 0, 255}, false},
		{"#FFFFFF", color.NRGBA{255, 255, 255, 255}, false},
		{"#c62828", color.NRGBA{0xc6, 0x28, 0x28, 255}, false},
		{"#fff", color.NRGBA{255, 255, 255, 255}, false},
		{"#00000080", color.NRGBA{0, 0, 0, 0x80}, false},
		{"rgb(10, 20, 30)", color.NRGBA{10, 20, 30, 255}, false},
		{"rgba(0,0,0,0.5)", color.NRGBA{0, 0, 0, 128}, false},
		{" rgba(255, 0, 0, 1) ", color.NRGBA{255, 0, 0, 255}, false},
		{"red", color.NRGBA{}, true},
		{"#12345", color.NRGBA{}, true},
		{"#gggggg", color.NRGBA{}, true},
		{"rgb(300, 0, 0)", color.NRGBA{}, true},
		{"rgba(0, 0, 0)", color.NRGBA{}, true},
		{"rgba(0, 0, 0, 2)", color.NRGBA{}, true},
		{"", color.NRGBA{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
