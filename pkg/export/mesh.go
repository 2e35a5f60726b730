package export

import (
	"image"
	"sync"

	"github.com/google/uuid"

	"github.com/matzehuels/jumpmat/pkg/config"
	"github.com/matzehuels/jumpmat/pkg/errors"
)

// Vertex is a mesh corner in world meters with its texture coordinate.
type Vertex struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	U float64 `json:"u"`
	V float64 `json:"v"`
}

// Geometry is a flat rectangle lying in the XZ plane, facing +Y.
//
// X runs along the mat with the origin line at X = 0, so the takeoff
// extension occupies negative X. Z runs across the mat from the far edge
// (-Width/2) to the near edge (+Width/2). Texture coordinates map the raster
// 1:1 onto the plane with V = 1 at the far edge (raster row 0).
type Geometry struct {
	Width    float64    `json:"width"` // along X
	Depth    float64    `json:"depth"` // along Z
	Vertices [4]Vertex  `json:"vertices"`
	Normal   [3]float64 `json:"normal"`
	Faces    [2][3]int  `json:"faces"` // counter-clockwise seen from +Y
}

// Plane builds the mat geometry for cfg.
func Plane(cfg config.MetricConfig) Geometry {
	x0, x1 := -cfg.LeadingOffset, cfg.TotalLength
	z := cfg.TotalWidth / 2
	return Geometry{
		Width: cfg.Span(),
		Depth: cfg.TotalWidth,
		Vertices: [4]Vertex{
			{X: x0, Z: -z, U: 0, V: 1},
			{X: x1, Z: -z, U: 1, V: 1},
			{X: x1, Z: z, U: 1, V: 0},
			{X: x0, Z: z, U: 0, V: 0},
		},
		Normal: [3]float64{0, 1, 0},
		Faces:  [2][3]int{{0, 2, 1}, {0, 3, 2}},
	}
}

// Texture is the raster applied to a mesh. It owns the image.
type Texture struct {
	img image.Image
}

// Image returns the texture raster, or nil once released.
func (t *Texture) Image() image.Image { return t.img }

// Material describes how the texture is shaded.
type Material struct {
	Name    string   `json:"name"`
	Texture *Texture `json:"-"`
	// Unlit materials show the raster colors exactly.
	Unlit bool `json:"unlit"`
}

// Mesh is a textured plane carrying one rendered mat.
type Mesh struct {
	ID       string   `json:"id"`
	Geometry Geometry `json:"geometry"`
	Material Material `json:"material"`

	mu       sync.Mutex
	disposed bool
}

// NewMesh builds a mesh for cfg textured with img. The mesh takes
// ownership of img; callers must not modify it afterwards.
func NewMesh(cfg config.MetricConfig, img image.Image) (*Mesh, error) {
	if img == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "mesh needs a texture")
	}
	return &Mesh{
		ID:       uuid.NewString(),
		Geometry: Plane(cfg),
		Material: Material{Name: "mat", Texture: &Texture{img: img}, Unlit: true},
	}, nil
}

// Texture returns the mesh texture raster.
func (m *Mesh) Texture() (image.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return nil, errDisposed(m.ID)
	}
	return m.Material.Texture.img, nil
}

// Disposed reports whether Dispose has been called.
func (m *Mesh) Disposed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disposed
}

// Dispose releases the geometry and texture. It is safe to call more than
// once.
func (m *Mesh) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return
	}
	m.disposed = true
	m.Material.Texture.img = nil
	m.Geometry = Geometry{}
}

func errDisposed(id string) error {
	return errors.New(errors.ErrCodeDisposed, "mesh %s has been disposed", id)
}
