package fiducial

import (
	"image"
	"image/color"
)

// Cell colors in a rendered marker.
var (
	Dark  = color.Gray{Y: 0}
	Light = color.Gray{Y: 255}
)

// GridCells is the number of cells along one side of the marker core: one
// border cell on each side plus the 4 data cells.
const GridCells = 6

// Encode renders id from the default dictionary. See Dictionary.Encode.
func Encode(id, corePx, quietPx int) *image.Gray {
	return Default.Encode(id, corePx, quietPx)
}

// Encode renders the marker for id as a square bitmap of side
// corePx+2*quietPx. The quiet ring is omitted when quietPx is 0. Cell
// boundaries fall on floor(i*corePx/6), so the six cells differ in width by
// at most one pixel when corePx is not a multiple of 6. Non-positive sizes
// are clamped to 0.
func (d *Dictionary) Encode(id, corePx, quietPx int) *image.Gray {
	corePx = max(corePx, 0)
	quietPx = max(quietPx, 0)
	side := corePx + 2*quietPx
	img := image.NewGray(image.Rect(0, 0, side, side))
	if side == 0 {
		return img
	}

	p := d.Lookup(id)
	cell := make([]int, corePx)
	for i := range cell {
		cell[i] = i * GridCells / corePx
	}

	for y := 0; y < side; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+side]
		cy := y - quietPx
		for x := 0; x < side; x++ {
			cx := x - quietPx
			if cx < 0 || cy < 0 || cx >= corePx || cy >= corePx {
				row[x] = Light.Y
				continue
			}
			if cellDark(p, cell[cy], cell[cx]) {
				row[x] = Dark.Y
			} else {
				row[x] = Light.Y
			}
		}
	}
	return img
}

// cellDark reports whether grid cell (r, c) of the 6x6 core is dark.
func cellDark(p Pattern, r, c int) bool {
	if r == 0 || c == 0 || r == GridCells-1 || c == GridCells-1 {
		return true
	}
	return p[r-1][c-1] == 1
}

// Cells returns the 6x6 dark/light grid for id, border included. It is the
// resolution-independent form of Encode.
func (d *Dictionary) Cells(id int) [GridCells][GridCells]bool {
	p := d.Lookup(id)
	var out [GridCells][GridCells]bool
	for r := range out {
		for c := range out[r] {
			out[r][c] = cellDark(p, r, c)
		}
	}
	return out
}
