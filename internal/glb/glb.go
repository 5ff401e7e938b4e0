// Package glb writes assembled label meshes as binary glTF.
package glb

import (
	"bytes"
	"fmt"
	"io"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/labelmesh/internal/texture"
	"github.com/Faultbox/labelmesh/pkg/math"
	"github.com/Faultbox/labelmesh/pkg/mesh"
)

const generator = "labelmesh"

// Options controls GLB output.
type Options struct {
	// Recenter stores positions relative to the mesh centre and moves the
	// node back by a float64 translation. Keeps float32 precision for
	// georeferenced coordinates.
	Recenter bool
}

// Exporter implements mesh.Exporter for GLB.
type Exporter struct {
	opts Options
}

var _ mesh.Exporter = (*Exporter)(nil)

// New creates a GLB exporter.
func New(opts Options) *Exporter {
	return &Exporter{opts: opts}
}

// Export encodes m as a self-contained GLB with the atlas embedded.
func (e *Exporter) Export(w io.Writer, m *mesh.Mesh) error {
	doc, err := e.Document(m)
	if err != nil {
		return err
	}
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding GLB: %w", err)
	}
	return nil
}

// Document builds the glTF document for m: one node, one mesh with one
// triangle primitive, one material textured by the atlas.
func (e *Exporter) Document(m *mesh.Mesh) (*gltf.Document, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	var offset math.Vec3
	src := m
	if e.opts.Recenter {
		offset = m.Bounds().Center()
		src = m.Translate(offset)
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = generator

	pngData, err := texture.PNGBytes(m.Material.Image)
	if err != nil {
		return nil, err
	}
	imageIdx, err := modeler.WriteImage(doc, imageName(m), texture.PNGMimeType, bytes.NewReader(pngData))
	if err != nil {
		return nil, fmt.Errorf("embedding atlas: %w", err)
	}

	// No mipmaps: the atlas is sampled linearly at its own resolution.
	doc.Samplers = append(doc.Samplers, &gltf.Sampler{
		MagFilter: gltf.MagLinear,
		MinFilter: gltf.MinLinear,
		WrapS:     gltf.WrapClampToEdge,
		WrapT:     gltf.WrapClampToEdge,
	})
	doc.Textures = append(doc.Textures, &gltf.Texture{
		Sampler: gltf.Index(len(doc.Samplers) - 1),
		Source:  gltf.Index(imageIdx),
	})
	doc.Materials = append(doc.Materials, &gltf.Material{
		Name:        m.Material.Name,
		DoubleSided: m.Material.DoubleSided,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorTexture: &gltf.TextureInfo{Index: len(doc.Textures) - 1},
			MetallicFactor:   gltf.Float(0),
			RoughnessFactor:  gltf.Float(1),
		},
	})

	positionIdx := modeler.WritePosition(doc, positions(src))
	normalIdx := modeler.WriteNormal(doc, normals(src))
	uvIdx := modeler.WriteTextureCoord(doc, textureCoords(src))
	indicesIdx := modeler.WriteIndices(doc, indices(src))

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: m.Name,
		Primitives: []*gltf.Primitive{{
			Indices: gltf.Index(indicesIdx),
			Attributes: map[string]int{
				gltf.POSITION:   positionIdx,
				gltf.NORMAL:     normalIdx,
				gltf.TEXCOORD_0: uvIdx,
			},
			Material: gltf.Index(len(doc.Materials) - 1),
		}},
	})

	node := &gltf.Node{Name: m.Name, Mesh: gltf.Index(len(doc.Meshes) - 1)}
	if e.opts.Recenter {
		node.Translation = [3]float64{offset.X, offset.Y, offset.Z}
	}
	doc.Nodes = append(doc.Nodes, node)
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)

	return doc, nil
}

func imageName(m *mesh.Mesh) string {
	if m.Material.Name == "" {
		return "atlas"
	}
	return m.Material.Name
}

func positions(m *mesh.Mesh) [][3]float32 {
	out := make([][3]float32, len(m.Vertices))
	for i, v := range m.Vertices {
		out[i] = v.Float32()
	}
	return out
}

// normals spreads the per-face normals to vertices; glTF has no face normals.
func normals(m *mesh.Mesh) [][3]float32 {
	vn := m.VertexNormals()
	out := make([][3]float32, len(vn))
	for i, n := range vn {
		out[i] = n.Float32()
	}
	return out
}

// textureCoords flips V: glTF puts the UV origin at the image's top-left.
func textureCoords(m *mesh.Mesh) [][2]float32 {
	out := make([][2]float32, len(m.UVs))
	for i, uv := range m.UVs {
		out[i] = math.Vec2{X: uv.X, Y: 1 - uv.Y}.Float32()
	}
	return out
}

func indices(m *mesh.Mesh) []uint32 {
	out := make([]uint32, 0, 3*len(m.Faces))
	for _, f := range m.Faces {
		out = append(out, f[0], f[1], f[2])
	}
	return out
}
