// Package mesh assembles label quads into one textured triangle mesh.
package mesh

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/Faultbox/labelmesh/pkg/math"
	"github.com/Faultbox/labelmesh/pkg/quad"
)

// Mesh errors.
var (
	ErrInvalidBuffers = errors.New("mesh buffers are not index-aligned")
	ErrMissingTexture = errors.New("mesh material has no texture image")
	ErrEmptyMesh      = errors.New("mesh has no quads")
)

// Part is one label quad with its texture coordinates, in corner order.
type Part struct {
	ID   string
	Quad quad.Quad
	UVs  [4]math.Vec2
}

// Material is the single material shared by every quad.
type Material struct {
	Name        string
	Image       image.Image
	DoubleSided bool
}

// Mesh holds flat buffers ready for export. Normals are per face.
type Mesh struct {
	Name     string
	Vertices []math.Vec3
	Normals  []math.Vec3
	Faces    [][3]uint32
	UVs      []math.Vec2
	Material Material

	// IDs lists the annotation of each quad in buffer order.
	IDs []string
}

// Exporter writes a mesh in some container format.
type Exporter interface {
	Export(w io.Writer, m *Mesh) error
}

// Assemble concatenates parts in order. Face indices are offset by the
// running vertex count so no vertex is shared between quads.
func Assemble(name string, parts []Part, mat Material) *Mesh {
	m := &Mesh{
		Name:     name,
		Vertices: make([]math.Vec3, 0, 4*len(parts)),
		Normals:  make([]math.Vec3, 0, 2*len(parts)),
		Faces:    make([][3]uint32, 0, 2*len(parts)),
		UVs:      make([]math.Vec2, 0, 4*len(parts)),
		Material: mat,
		IDs:      make([]string, 0, len(parts)),
	}

	for _, p := range parts {
		base := uint32(len(m.Vertices))
		m.Vertices = append(m.Vertices, p.Quad.Vertices[:]...)
		m.UVs = append(m.UVs, p.UVs[:]...)
		for _, f := range quad.Faces {
			m.Faces = append(m.Faces, [3]uint32{base + f[0], base + f[1], base + f[2]})
			m.Normals = append(m.Normals, p.Quad.Normal)
		}
		m.IDs = append(m.IDs, p.ID)
	}
	return m
}

// QuadCount returns the number of assembled quads.
func (m *Mesh) QuadCount() int {
	return len(m.Vertices) / 4
}

// Validate checks the buffer invariants exporters rely on.
func (m *Mesh) Validate() error {
	quads := len(m.Vertices) / 4
	if quads == 0 {
		return ErrEmptyMesh
	}
	if len(m.Vertices) != 4*quads || len(m.UVs) != 4*quads {
		return fmt.Errorf("%w: %d quads, %d vertices, %d uvs", ErrInvalidBuffers, quads, len(m.Vertices), len(m.UVs))
	}
	if len(m.Faces) != 2*quads || len(m.Normals) != 2*quads {
		return fmt.Errorf("%w: %d quads, %d faces, %d normals", ErrInvalidBuffers, quads, len(m.Faces), len(m.Normals))
	}
	if len(m.IDs) != quads {
		return fmt.Errorf("%w: %d quads, %d ids", ErrInvalidBuffers, quads, len(m.IDs))
	}
	for i, f := range m.Faces {
		lo := uint32(i/2) * 4
		for _, idx := range f {
			if idx < lo || idx >= lo+4 {
				return fmt.Errorf("%w: face %d index %d outside quad %d", ErrInvalidBuffers, i, idx, i/2)
			}
		}
	}
	if m.Material.Image == nil {
		return ErrMissingTexture
	}
	return nil
}

// VertexNormals spreads each face normal to the vertices of that face.
// Formats without per-face normals use this.
func (m *Mesh) VertexNormals() []math.Vec3 {
	normals := make([]math.Vec3, len(m.Vertices))
	for i, f := range m.Faces {
		for _, idx := range f {
			if int(idx) < len(normals) {
				normals[idx] = m.Normals[i]
			}
		}
	}
	return normals
}

// Bounds returns the box around all vertices.
func (m *Mesh) Bounds() math.Box {
	b := math.EmptyBox()
	for _, v := range m.Vertices {
		b = b.Extend(v)
	}
	return b
}

// Translate returns a copy of the mesh with every vertex moved by -offset.
func (m *Mesh) Translate(offset math.Vec3) *Mesh {
	out := *m
	out.Vertices = make([]math.Vec3, len(m.Vertices))
	for i, v := range m.Vertices {
		out.Vertices[i] = v.Sub(offset)
	}
	return &out
}

// ExportFile validates m and writes it to path, creating parent directories.
func ExportFile(path string, m *Mesh, e Exporter) error {
	if err := m.Validate(); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if err := e.Export(f, m); err != nil {
		f.Close()
		return fmt.Errorf("exporting mesh: %w", err)
	}
	return f.Close()
}
