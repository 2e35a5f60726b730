package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// WriteOBJ writes m as a Wavefront OBJ that references mtlName for its
// material library.
func WriteOBJ(w io.Writer, m *Mesh, mtlName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return errDisposed(m.ID)
	}

	bw := bufio.NewWriter(w)
	g := m.Geometry
	fmt.Fprintf(bw, "# jumpmat mesh %s\n", m.ID)
	fmt.Fprintf(bw, "# %s x %s m, origin line at x = 0\n", num(g.Width), num(g.Depth))
	if mtlName != "" {
		fmt.Fprintf(bw, "mtllib %s\n", mtlName)
	}
	fmt.Fprintln(bw, "o mat")
	for _, v := range g.Vertices {
		fmt.Fprintf(bw, "v %s %s %s\n", num(v.X), num(v.Y), num(v.Z))
	}
	for _, v := range g.Vertices {
		fmt.Fprintf(bw, "vt %s %s\n", num(v.U), num(v.V))
	}
	fmt.Fprintf(bw, "vn %s %s %s\n", num(g.Normal[0]), num(g.Normal[1]), num(g.Normal[2]))
	fmt.Fprintf(bw, "usemtl %s\n", m.Material.Name)
	for _, f := range g.Faces {
		fmt.Fprintf(bw, "f %d/%d/1 %d/%d/1 %d/%d/1\n", f[0]+1, f[0]+1, f[1]+1, f[1]+1, f[2]+1, f[2]+1)
	}
	return bw.Flush()
}

// WriteMTL writes the material library for m. texture is the file name of
// the encoded raster.
func WriteMTL(w io.Writer, m *Mesh, texture string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return errDisposed(m.ID)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "newmtl %s\n", m.Material.Name)
	fmt.Fprintln(bw, "Ka 1 1 1")
	fmt.Fprintln(bw, "Kd 1 1 1")
	fmt.Fprintln(bw, "Ks 0 0 0")
	fmt.Fprintln(bw, "d 1")
	if m.Material.Unlit {
		fmt.Fprintln(bw, "illum 0")
	} else {
		fmt.Fprintln(bw, "illum 1")
	}
	if texture != "" {
		fmt.Fprintf(bw, "map_Kd %s\n", texture)
	}
	return bw.Flush()
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
