package atlas

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math/rand"
	"testing"
)

// fakeRenderer measures text from a table and records draw calls.
// Draw paints the measured rect solid black so tests can inspect pixels.
type fakeRenderer struct {
	sizes map[string][2]int
	draws []drawCall
}

type drawCall struct {
	text string
	x, y int
}

func (f *fakeRenderer) Measure(text string) (int, int) {
	s := f.sizes[text]
	return s[0], s[1]
}

func (f *fakeRenderer) Draw(dst draw.Image, text string, x, y int) {
	f.draws = append(f.draws, drawCall{text, x, y})
	s := f.sizes[text]
	r := image.Rect(x, y, x+s[0], y+s[1]).Intersect(dst.Bounds())
	draw.Draw(dst, r, image.NewUniform(color.Black), image.Point{}, draw.Src)
}

func labels(texts ...string) []Label {
	out := make([]Label, len(texts))
	for i, t := range texts {
		out[i] = Label{ID: t, Text: t}
	}
	return out
}

func TestPackShelfWrap(t *testing.T) {
	r := &fakeRenderer{sizes: map[string][2]int{
		"a": {100, 40},
		"b": {200, 40},
		"c": {50, 40},
	}}

	a, err := Pack(labels("a", "b", "c"), Options{Size: 256}, r)
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}

	want := []Rect{
		{X: 0, Y: 0, Width: 100, Height: 40},
		{X: 0, Y: 40, Width: 200, Height: 40},
		{X: 200, Y: 40, Width: 50, Height: 40},
	}
	got := a.Rects()
	if len(got) != len(want) {
		t.Fatalf("expected %d rects, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("rect %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	if a.Extent() != 80 {
		t.Errorf("Extent() = %d, want 80", a.Extent())
	}
	if err := a.CheckOverflow(); err != nil {
		t.Errorf("CheckOverflow() = %v, want nil", err)
	}

	// Draw calls happen at the placed positions in input order.
	for i, d := range r.draws {
		if d.x != want[i].X || d.y != want[i].Y {
			t.Errorf("draw %d at (%d,%d), want (%d,%d)", i, d.x, d.y, want[i].X, want[i].Y)
		}
	}
}

func TestPackRowHeightIsTallestInRow(t *testing.T) {
	r := &fakeRenderer{sizes: map[string][2]int{
		"short": {60, 20},
		"tall":  {60, 50},
		"next":  {60, 10},
	}}

	a, err := Pack(labels("short", "tall", "next"), Options{Size: 130}, r)
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	rects := a.Rects()
	if rects[2].Y != 50 {
		t.Errorf("third label Y = %d, want 50 (below tallest of first row)", rects[2].Y)
	}
	if a.Extent() != 60 {
		t.Errorf("Extent() = %d, want 60", a.Extent())
	}
}

func TestPackNoOverlap(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	sizes := make(map[string][2]int)
	var ls []Label
	for i := 0; i < 200; i++ {
		text := string(rune('A'+i%26)) + string(rune('a'+i/26))
		sizes[text] = [2]int{1 + rng.Intn(120), 1 + rng.Intn(40)}
		ls = append(ls, Label{ID: text, Text: text})
	}

	a, err := Pack(ls, Options{Size: 4096}, &fakeRenderer{sizes: sizes})
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	if err := a.CheckOverflow(); err != nil {
		t.Fatalf("CheckOverflow() = %v", err)
	}

	rects := a.Rects()
	for i := range rects {
		for j := i + 1; j < len(rects); j++ {
			if rects[i].Overlaps(rects[j]) {
				t.Fatalf("rect %d %+v overlaps rect %d %+v", i, rects[i], j, rects[j])
			}
		}
	}
}

func TestPackOverflow(t *testing.T) {
	r := &fakeRenderer{sizes: map[string][2]int{
		"a": {60, 40},
		"b": {60, 40},
		"c": {60, 40},
	}}

	a, err := Pack(labels("a", "b", "c"), Options{Size: 64}, r)
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	// Rows keep going past the bottom edge.
	if got := a.Rects()[2].Y; got != 80 {
		t.Errorf("third label Y = %d, want 80", got)
	}
	if err := a.CheckOverflow(); !errors.Is(err, ErrAtlasOverflow) {
		t.Errorf("CheckOverflow() = %v, want ErrAtlasOverflow", err)
	}
}

func TestPackTooWide(t *testing.T) {
	r := &fakeRenderer{sizes: map[string][2]int{"wide": {300, 10}}}

	a, err := Pack(labels("wide"), Options{Size: 256}, r)
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	if err := a.CheckOverflow(); !errors.Is(err, ErrAtlasOverflow) {
		t.Errorf("CheckOverflow() = %v, want ErrAtlasOverflow", err)
	}
}

func TestPackBackground(t *testing.T) {
	r := &fakeRenderer{sizes: map[string][2]int{"a": {4, 4}}}
	bg := color.RGBA{R: 10, G: 20, B: 30, A: 255}

	a, err := Pack(labels("a"), Options{Size: 16, Background: bg}, r)
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	if got := a.Image.RGBAAt(15, 15); got != bg {
		t.Errorf("background pixel = %v, want %v", got, bg)
	}
	if got := a.Image.RGBAAt(1, 1); got != (color.RGBA{A: 255}) {
		t.Errorf("label pixel = %v, want black", got)
	}
	if a.Size() != 16 || a.Image.Bounds().Dx() != 16 || a.Image.Bounds().Dy() != 16 {
		t.Errorf("atlas size = %d, image %v", a.Size(), a.Image.Bounds())
	}
}

func TestPackInvalidArgs(t *testing.T) {
	if _, err := Pack(nil, Options{Size: 0}, &fakeRenderer{}); err == nil {
		t.Error("expected error for zero size")
	}
	if _, err := Pack(nil, Options{Size: 8}, nil); err == nil {
		t.Error("expected error for nil renderer")
	}
}

func TestPackEmpty(t *testing.T) {
	a, err := Pack(nil, DefaultOptions(), &fakeRenderer{})
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	if len(a.Placements) != 0 || a.Extent() != 0 {
		t.Errorf("empty pack: %d placements, extent %d", len(a.Placements), a.Extent())
	}
	if err := a.CheckOverflow(); err != nil {
		t.Errorf("CheckOverflow() = %v, want nil", err)
	}
}

func TestRectOverlaps(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	tests := []struct {
		b    Rect
		want bool
	}{
		{Rect{X: 10, Y: 0, Width: 5, Height: 10}, false},
		{Rect{X: 0, Y: 10, Width: 10, Height: 5}, false},
		{Rect{X: 9, Y: 9, Width: 5, Height: 5}, true},
		{Rect{X: 2, Y: 2, Width: 0, Height: 0}, false},
	}
	for _, tt := range tests {
		if got := a.Overlaps(tt.b); got != tt.want {
			t.Errorf("Overlaps(%+v) = %v, want %v", tt.b, got, tt.want)
		}
	}
}
