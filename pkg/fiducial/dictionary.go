package fiducial

import (
	"fmt"
	"slices"

	"github.com/matzehuels/jumpmat/pkg/errors"
)

// Pattern is a 4x4 bit matrix, row-major, top row first.
type Pattern [4][4]uint8

// Rotate returns p turned 90 degrees clockwise.
func Rotate(p Pattern) Pattern {
	var out Pattern
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[r][c] = p[3-c][r]
		}
	}
	return out
}

// Rotations returns p and its three clockwise rotations.
func Rotations(p Pattern) [4]Pattern {
	var out [4]Pattern
	out[0] = p
	for i := 1; i < 4; i++ {
		out[i] = Rotate(out[i-1])
	}
	return out
}

// Ones returns the number of set bits.
func (p Pattern) Ones() int {
	n := 0
	for _, row := range p {
		for _, b := range row {
			n += int(b)
		}
	}
	return n
}

// String renders the pattern as four rows of 0/1.
func (p Pattern) String() string {
	var b []byte
	for r, row := range p {
		if r > 0 {
			b = append(b, ' ')
		}
		for _, v := range row {
			b = append(b, '0'+v)
		}
	}
	return string(b)
}

// Dictionary is an immutable table of patterns indexed by ID.
type Dictionary struct {
	patterns []Pattern
}

// NewDictionary copies patterns into a dictionary after checking that it is
// non-empty and every cell is 0 or 1.
func NewDictionary(patterns []Pattern) (*Dictionary, error) {
	if len(patterns) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidPattern, "dictionary is empty")
	}
	for id, p := range patterns {
		for r, row := range p {
			for c, v := range row {
				if v > 1 {
					return nil, errors.New(errors.ErrCodeInvalidPattern,
						"pattern %d cell (%d,%d) = %d, want 0 or 1", id, r, c, v)
				}
			}
		}
	}
	return &Dictionary{patterns: append([]Pattern(nil), patterns...)}, nil
}

// Size returns the number of patterns.
func (d *Dictionary) Size() int { return len(d.patterns) }

// Normalize reduces id modulo the dictionary size into [0, Size).
func (d *Dictionary) Normalize(id int) int {
	n := len(d.patterns)
	return ((id % n) + n) % n
}

// Lookup returns the pattern for id. Out-of-range IDs wrap.
func (d *Dictionary) Lookup(id int) Pattern {
	return d.patterns[d.Normalize(id)]
}

// Validate checks that the patterns behind ids can coexist on one surface:
// no pattern may equal a rotation of another (including a repeated ID after
// wrap-around), and none may be symmetric under rotation, since either would
// make a marker ambiguous when viewed from the opposite direction.
func (d *Dictionary) Validate(ids []int) error {
	var problems errors.ValidationError
	seen := make(map[int]int, len(ids))
	for _, id := range ids {
		n := d.Normalize(id)
		if prev, ok := seen[n]; ok {
			problems.Add("ids %d and %d map to the same pattern %d", prev, id, n)
			continue
		}
		seen[n] = id

		rots := Rotations(d.patterns[n])
		for i := 1; i < 4; i++ {
			if rots[i] == rots[0] {
				problems.Add("pattern %d is symmetric under a %d degree rotation", n, 90*i)
				break
			}
		}
	}

	norm := make([]int, 0, len(seen))
	for n := range seen {
		norm = append(norm, n)
	}
	slices.Sort(norm)
	for i, a := range norm {
		rots := Rotations(d.patterns[a])
		for _, b := range norm[i+1:] {
			for k, rot := range rots {
				if rot == d.patterns[b] {
					problems.Add("pattern %d equals pattern %d rotated by %d degrees", b, a, 90*k)
					break
				}
			}
		}
	}

	if err := problems.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPattern, err, "dictionary rejects ids %v", ids)
	}
	return nil
}

// ValidateAll validates every ID in the dictionary against each other.
func (d *Dictionary) ValidateAll() error {
	ids := make([]int, d.Size())
	for i := range ids {
		ids[i] = i
	}
	return d.Validate(ids)
}

// defaultPatterns is the compiled-in dictionary. Every entry has a distinct
// rotation class and no entry is rotationally symmetric.
var defaultPatterns = []Pattern{
	{{1, 0, 1, 1}, {0, 1, 0, 0}, {0, 1, 1, 0}, {1, 0, 0, 1}},
	{{0, 1, 1, 0}, {1, 1, 0, 1}, {0, 0, 1, 1}, {1, 0, 0, 0}},
	{{1, 1, 0, 0}, {0, 1, 0, 1}, {1, 1, 1, 0}, {0, 0, 1, 0}},
	{{0, 0, 0, 1}, {1, 0, 1, 1}, {0, 1, 0, 0}, {1, 1, 1, 0}},
	{{1, 1, 1, 0}, {0, 0, 1, 1}, {1, 0, 0, 1}, {0, 1, 0, 0}},
	{{0, 1, 0, 1}, {1, 1, 0, 0}, {0, 1, 1, 1}, {1, 0, 1, 0}},
	{{1, 0, 0, 1}, {0, 1, 1, 1}, {1, 0, 1, 0}, {0, 0, 0, 1}},
	{{0, 0, 1, 1}, {1, 0, 0, 0}, {1, 1, 0, 1}, {0, 1, 1, 0}},
	{{1, 1, 0, 1}, {0, 0, 1, 0}, {0, 1, 1, 1}, {1, 0, 0, 0}},
	{{0, 1, 0, 0}, {1, 1, 1, 0}, {1, 0, 1, 1}, {0, 0, 0, 1}},
	{{1, 0, 0, 0}, {0, 1, 1, 0}, {1, 1, 0, 1}, {1, 0, 1, 1}},
	{{0, 1, 1, 1}, {1, 0, 0, 1}, {0, 0, 1, 0}, {1, 1, 0, 0}},
}

// Default is the compiled-in dictionary, validated at package init.
var Default = mustDefault()

func mustDefault() *Dictionary {
	d, err := NewDictionary(defaultPatterns)
	if err != nil {
		panic(fmt.Sprintf("fiducial: %v", err))
	}
	if err := d.ValidateAll(); err != nil {
		panic(fmt.Sprintf("fiducial: %v", err))
	}
	return d
}
