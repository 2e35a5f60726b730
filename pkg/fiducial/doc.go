// Package fiducial holds the fixed 4x4 marker dictionary and renders markers
// as bitmaps.
//
// A rendered marker is a square of side core+2*quiet pixels:
//
//	+---------------------------+
//	|        quiet (light)      |
//	|   +-------------------+   |
//	|   | border ring (dark)|   |
//	|   |   +-----------+   |   |
//	|   |   | 4x4 bits  |   |   |
//	|   |   +-----------+   |   |
//	|   +-------------------+   |
//	+---------------------------+
//
// The core is split into a 6x6 grid: the outer ring of cells is the dark
// border and the inner 4x4 cells carry the pattern, dark where the bit is 1.
// IDs are reduced modulo the dictionary size, so Encode never fails on an
// out-of-range ID.
package fiducial
