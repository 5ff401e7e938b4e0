// Package atlas packs rendered label texts into one square texture atlas.
//
// Packing is a deterministic single-pass shelf layout: labels are placed left
// to right in input order and a new row starts when the next label would
// cross the right edge. Rows are as tall as the tallest label seen while the
// row was open.
package atlas

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// ErrAtlasOverflow means the packed labels do not fit in the atlas.
var ErrAtlasOverflow = errors.New("atlas overflow")

// TextRenderer measures and draws label text.
type TextRenderer interface {
	// Measure returns the pixel size of the rendered text.
	Measure(text string) (width, height int)
	// Draw renders text with its top-left corner at (x, y).
	Draw(dst draw.Image, text string, x, y int)
}

// Rect is the pixel rectangle of one label inside the atlas.
// X and Y are the top-left corner; Y grows downward.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Empty reports whether the rect covers no pixels.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Overlaps reports whether two rects share any pixel.
func (r Rect) Overlaps(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Label is one entry to pack.
type Label struct {
	ID   string
	Text string
}

// Placement is the packed location of one label.
type Placement struct {
	Label
	Rect Rect
}

// Options controls atlas appearance.
type Options struct {
	Size       int
	Background color.Color
}

// DefaultOptions returns a 512 px white atlas.
func DefaultOptions() Options {
	return Options{Size: 512, Background: color.White}
}

// Atlas is a packed texture atlas.
type Atlas struct {
	Image      *image.RGBA
	Placements []Placement

	size int
	// extent is the lowest pixel row reached by any closed or open shelf.
	extent int
	// widest is the largest right edge of any placement.
	widest int
}

// Size returns the side length in pixels.
func (a *Atlas) Size() int { return a.size }

// Extent returns the height actually used by the shelves.
func (a *Atlas) Extent() int { return a.extent }

// Rects returns the placement rectangles in input order.
func (a *Atlas) Rects() []Rect {
	rects := make([]Rect, len(a.Placements))
	for i, p := range a.Placements {
		rects[i] = p.Rect
	}
	return rects
}

// CheckOverflow returns ErrAtlasOverflow if any shelf reaches past the bottom
// edge or any label is wider than the atlas.
func (a *Atlas) CheckOverflow() error {
	if a.extent > a.size {
		return fmt.Errorf("%w: shelves need %d px of %d px height", ErrAtlasOverflow, a.extent, a.size)
	}
	if a.widest > a.size {
		return fmt.Errorf("%w: widest label reaches %d px of %d px width", ErrAtlasOverflow, a.widest, a.size)
	}
	return nil
}

// packer is the shelf cursor threaded through one Pack call.
type packer struct {
	size      int
	cx, cy    int
	rowHeight int
}

// place returns the rect for a w x h label and advances the cursor.
func (p *packer) place(w, h int) Rect {
	p.rowHeight = max(p.rowHeight, h)
	if p.cx+w > p.size {
		p.cx = 0
		p.cy += p.rowHeight
		p.rowHeight = h
	}
	r := Rect{X: p.cx, Y: p.cy, Width: w, Height: h}
	p.cx += w
	return r
}

// extent is the bottom of the currently open shelf.
func (p *packer) extent() int {
	return p.cy + p.rowHeight
}

// Pack lays out and renders labels in input order. It never fails on
// overflow; call CheckOverflow on the result.
func Pack(labels []Label, opts Options, renderer TextRenderer) (*Atlas, error) {
	if opts.Size <= 0 {
		return nil, fmt.Errorf("invalid atlas size %d", opts.Size)
	}
	if renderer == nil {
		return nil, errors.New("nil text renderer")
	}
	bg := opts.Background
	if bg == nil {
		bg = color.White
	}

	img := image.NewRGBA(image.Rect(0, 0, opts.Size, opts.Size))
	xdraw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, xdraw.Src)

	a := &Atlas{
		Image:      img,
		Placements: make([]Placement, 0, len(labels)),
		size:       opts.Size,
	}

	p := &packer{size: opts.Size}
	for _, l := range labels {
		w, h := renderer.Measure(l.Text)
		r := p.place(max(w, 0), max(h, 0))
		renderer.Draw(img, l.Text, r.X, r.Y)
		a.Placements = append(a.Placements, Placement{Label: l, Rect: r})
		a.widest = max(a.widest, r.Right())
	}
	a.extent = p.extent()

	return a, nil
}
