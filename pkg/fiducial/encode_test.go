package fiducial

import (
	"bytes"
	"testing"
)

func TestEncodeSize(t *testing.T) {
	tests := []struct {
		core, quiet int
		want        int
	}{
		{120, 24, 168},
		{120, 0, 120},
		{7, 3, 13},
		{0, 5, 10},
		{-4, -1, 0},
	}
	for _, tt := range tests {
		img := Encode(0, tt.core, tt.quiet)
		b := img.Bounds()
		if b.Dx() != tt.want || b.Dy() != tt.want {
			t.Errorf("Encode(0, %d, %d) size = %dx%d, want %dx%d",
				tt.core, tt.quiet, b.Dx(), b.Dy(), tt.want, tt.want)
		}
	}
}

func TestEncodeStructure(t *testing.T) {
	const core, quiet = 60, 12 // 10 px cells
	for id := 0; id < Default.Size(); id++ {
		img := Encode(id, core, quiet)
		p := Default.Lookup(id)
		side := core + 2*quiet

		for y := 0; y < side; y++ {
			for x := 0; x < side; x++ {
				got := img.GrayAt(x, y).Y
				var want uint8
				cx, cy := x-quiet, y-quiet
				switch {
				case cx < 0 || cy < 0 || cx >= core || cy >= core:
					want = Light.Y
				case cx < 10 || cy < 10 || cx >= 50 || cy >= 50:
					want = Dark.Y
				case p[cy/10-1][cx/10-1] == 1:
					want = Dark.Y
				default:
					want = Light.Y
				}
				if got != want {
					t.Fatalf("id %d pixel (%d,%d) = %d, want %d", id, x, y, got, want)
				}
			}
		}
	}
}

func TestEncodeZeroQuietOmitsRing(t *testing.T) {
	img := Encode(5, 36, 0)
	for i := 0; i < 36; i++ {
		for _, pt := range [][2]int{{i, 0}, {0, i}, {i, 35}, {35, i}} {
			if got := img.GrayAt(pt[0], pt[1]).Y; got != Dark.Y {
				t.Fatalf("edge pixel %v = %d, want dark", pt, got)
			}
		}
	}
}

func TestEncodeWrapAroundIsPixelIdentical(t *testing.T) {
	n := Default.Size()
	for id := 0; id < n; id++ {
		a := Encode(id, 96, 0)
		b := Encode(id+n, 96, 0)
		c := Encode(id-n, 96, 0)
		if !bytes.Equal(a.Pix, b.Pix) || !bytes.Equal(a.Pix, c.Pix) {
			t.Errorf("Encode(%d) differs from its wrapped IDs", id)
		}
	}
}

func TestEncodeUnevenCells(t *testing.T) {
	// 100 px core: cells split at 0,17,34,50,67,84.
	img := Encode(0, 100, 0)
	dark := 0
	for x := 0; x < 100; x++ {
		if img.GrayAt(x, 0).Y == Dark.Y {
			dark++
		}
	}
	if dark != 100 {
		t.Errorf("top row dark pixels = %d, want 100", dark)
	}
	// Border column ends at x=16, data starts at x=17.
	if img.GrayAt(16, 50).Y != Dark.Y {
		t.Error("pixel (16,50) should be inside the border ring")
	}
}

func TestCellsMatchEncode(t *testing.T) {
	cells := Default.Cells(9)
	img := Encode(9, 6, 0)
	for r := 0; r < GridCells; r++ {
		for c := 0; c < GridCells; c++ {
			dark := img.GrayAt(c, r).Y == Dark.Y
			if dark != cells[r][c] {
				t.Errorf("cell (%d,%d) dark = %v, Encode says %v", r, c, cells[r][c], dark)
			}
		}
	}
}
