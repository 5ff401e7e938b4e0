package uvmap

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/labelmesh/pkg/atlas"
	"github.com/Faultbox/labelmesh/pkg/math"
)

const eps = 1e-9

func near(a, b math.Vec2) bool {
	return gomath.Abs(a.X-b.X) < eps && gomath.Abs(a.Y-b.Y) < eps
}

func TestMap(t *testing.T) {
	r := atlas.Rect{X: 100, Y: 40, Width: 200, Height: 40}

	got := Map(r, 400, 200)
	want := [4]math.Vec2{
		{X: 0.25, Y: 0.6},
		{X: 0.75, Y: 0.6},
		{X: 0.75, Y: 0.8},
		{X: 0.25, Y: 0.8},
	}
	for i := range want {
		if !near(got[i], want[i]) {
			t.Errorf("Map()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMapTopLeftRect(t *testing.T) {
	got := Map(atlas.Rect{X: 0, Y: 0, Width: 256, Height: 256}, 256, 256)
	want := [4]math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	if got != want {
		t.Errorf("Map() = %v, want %v", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	rects := []atlas.Rect{
		{X: 0, Y: 0, Width: 100, Height: 40},
		{X: 0, Y: 40, Width: 200, Height: 40},
		{X: 200, Y: 40, Width: 50, Height: 40},
		{X: 511, Y: 511, Width: 1, Height: 1},
		{X: 37, Y: 129, Width: 0, Height: 0},
	}
	for _, r := range rects {
		uvs := Map(r, 512, 512)
		// (left,top) maps back to the pixel top-left corner and
		// (right,bottom) to the exclusive bottom-right corner.
		topLeft := ToPixel(uvs[3], 512, 512)
		if !near(topLeft, math.Vec2{X: float64(r.X), Y: float64(r.Y)}) {
			t.Errorf("rect %+v: top-left round trip = %v", r, topLeft)
		}
		bottomRight := ToPixel(uvs[1], 512, 512)
		if !near(bottomRight, math.Vec2{X: float64(r.Right()), Y: float64(r.Bottom())}) {
			t.Errorf("rect %+v: bottom-right round trip = %v", r, bottomRight)
		}
	}
}

func TestMapNonSquare(t *testing.T) {
	uvs := Map(atlas.Rect{X: 10, Y: 5, Width: 20, Height: 10}, 100, 50)
	for i, uv := range uvs {
		if uv.X < 0 || uv.X > 1 || uv.Y < 0 || uv.Y > 1 {
			t.Errorf("uv %d = %v outside [0,1]", i, uv)
		}
	}
	if uvs[0].Y >= uvs[3].Y {
		t.Errorf("bottom V %v should be below top V %v", uvs[0].Y, uvs[3].Y)
	}
}
