package glb

import (
	"bytes"
	"errors"
	"image"
	"testing"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/labelmesh/pkg/annotation"
	"github.com/Faultbox/labelmesh/pkg/atlas"
	"github.com/Faultbox/labelmesh/pkg/math"
	"github.com/Faultbox/labelmesh/pkg/mesh"
	"github.com/Faultbox/labelmesh/pkg/quad"
	"github.com/Faultbox/labelmesh/pkg/uvmap"
)

func testMesh(t *testing.T) *mesh.Mesh {
	t.Helper()
	rects := []atlas.Rect{
		{X: 0, Y: 0, Width: 100, Height: 40},
		{X: 0, Y: 40, Width: 200, Height: 40},
		{X: 200, Y: 40, Width: 50, Height: 40},
	}
	rots := []annotation.Rotation{annotation.Rotate0, annotation.Rotate90, annotation.Rotate270}

	var parts []mesh.Part
	for i, r := range rects {
		a := &annotation.Annotation{
			ID:       string(rune('a' + i)),
			Rotation: rots[i],
			Base:     math.Vec3{Z: 10},
			Bounds: math.Box{
				Min: math.Vec3{X: 1000 + float64(i), Y: 2000},
				Max: math.Vec3{X: 1001 + float64(i), Y: 2001},
			},
		}
		q, err := quad.Build(a)
		if err != nil {
			t.Fatalf("quad.Build failed: %v", err)
		}
		parts = append(parts, mesh.Part{ID: a.ID, Quad: q, UVs: uvmap.Map(r, 256, 256)})
	}
	img := image.NewRGBA(image.Rect(0, 0, 256, 256))
	return mesh.Assemble("annotations", parts, mesh.Material{Name: "annotations", Image: img})
}

func TestExportRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := New(Options{}).Export(&buf, testMesh(t)); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("glTF")) {
		t.Fatalf("output does not start with GLB magic")
	}

	var doc gltf.Document
	if err := gltf.NewDecoder(bytes.NewReader(buf.Bytes())).Decode(&doc); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if len(doc.Meshes) != 1 || len(doc.Meshes[0].Primitives) != 1 {
		t.Fatalf("expected 1 mesh with 1 primitive, got %d meshes", len(doc.Meshes))
	}
	prim := doc.Meshes[0].Primitives[0]

	counts := map[string]int{
		gltf.POSITION:   12,
		gltf.NORMAL:     12,
		gltf.TEXCOORD_0: 12,
	}
	for attr, want := range counts {
		idx, ok := prim.Attributes[attr]
		if !ok {
			t.Errorf("missing attribute %s", attr)
			continue
		}
		if got := doc.Accessors[idx].Count; got != want {
			t.Errorf("%s count = %d, want %d", attr, got, want)
		}
	}
	if prim.Indices == nil {
		t.Fatal("primitive has no indices")
	}
	if got := doc.Accessors[*prim.Indices].Count; got != 18 {
		t.Errorf("index count = %d, want 18", got)
	}

	if len(doc.Images) != 1 || doc.Images[0].MimeType != "image/png" {
		t.Errorf("expected one embedded PNG image, got %+v", doc.Images)
	}
	if len(doc.Materials) != 1 {
		t.Fatalf("expected 1 material, got %d", len(doc.Materials))
	}
	pbr := doc.Materials[0].PBRMetallicRoughness
	if pbr == nil || pbr.BaseColorTexture == nil || pbr.BaseColorTexture.Index != 0 {
		t.Errorf("material does not reference the atlas texture: %+v", pbr)
	}
	if prim.Material == nil || *prim.Material != 0 {
		t.Error("primitive does not use the atlas material")
	}
}

func TestDocumentRecenter(t *testing.T) {
	m := testMesh(t)
	center := m.Bounds().Center()

	doc, err := New(Options{Recenter: true}).Document(m)
	if err != nil {
		t.Fatalf("Document failed: %v", err)
	}
	got := doc.Nodes[0].Translation
	want := [3]float64{center.X, center.Y, center.Z}
	if got != want {
		t.Errorf("node translation = %v, want %v", got, want)
	}

	pos := doc.Accessors[doc.Meshes[0].Primitives[0].Attributes[gltf.POSITION]]
	if len(pos.Min) != 3 || len(pos.Max) != 3 {
		t.Fatalf("position accessor has no min/max")
	}
	if pos.Min[0] != -pos.Max[0] || pos.Min[1] != -pos.Max[1] {
		t.Errorf("positions not centred: min %v max %v", pos.Min, pos.Max)
	}
}

func TestDocumentNoRecenter(t *testing.T) {
	doc, err := New(Options{}).Document(testMesh(t))
	if err != nil {
		t.Fatalf("Document failed: %v", err)
	}
	if doc.Nodes[0].Translation != ([3]float64{}) {
		t.Errorf("unexpected translation %v", doc.Nodes[0].Translation)
	}
	if doc.Asset.Generator != "labelmesh" {
		t.Errorf("generator = %q", doc.Asset.Generator)
	}
}

func TestTextureCoordsFlipV(t *testing.T) {
	m := testMesh(t)
	uvs := textureCoords(m)
	// First quad: rect (0,0,100,40) in a 256 px atlas. Its bottom-left UV
	// (V up) is at pixel row 40, which is V=40/256 in glTF's top-left space.
	want := [2]float32{0, 40.0 / 256}
	if uvs[0] != want {
		t.Errorf("uv[0] = %v, want %v", uvs[0], want)
	}
	if uvs[3] != ([2]float32{0, 0}) {
		t.Errorf("uv[3] = %v, want top-left origin", uvs[3])
	}
}

func TestIndicesFlatten(t *testing.T) {
	got := indices(testMesh(t))
	want := []uint32{0, 2, 3, 0, 1, 2, 4, 6, 7, 4, 5, 6, 8, 10, 11, 8, 9, 10}
	if len(got) != len(want) {
		t.Fatalf("expected %d indices, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestExportInvalidMesh(t *testing.T) {
	m := testMesh(t)
	m.Faces = m.Faces[:1]
	err := New(Options{}).Export(&bytes.Buffer{}, m)
	if !errors.Is(err, mesh.ErrInvalidBuffers) {
		t.Errorf("Export() error = %v, want ErrInvalidBuffers", err)
	}
}
