// Package textrender measures and rasterizes label text with OpenType fonts.
package textrender

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// ErrUnknownHinting is returned for hinting names other than none/vertical/full.
var ErrUnknownHinting = errors.New("unknown font hinting")

// Options selects the font face.
type Options struct {
	// Path is a .ttf/.otf file or a .ttc/.otc collection. Empty uses Go Regular.
	Path string
	// Index selects the face inside a collection.
	Index   int
	Size    float64
	DPI     float64
	Hinting string
	Color   color.Color
}

// DefaultOptions returns 32 pt black text at 72 DPI.
func DefaultOptions() Options {
	return Options{
		Size:    32,
		DPI:     72,
		Hinting: "full",
		Color:   color.Black,
	}
}

// Renderer draws text with one font face. It is not safe for concurrent use.
type Renderer struct {
	face    font.Face
	src     image.Image
	metrics font.Metrics
}

// New loads the font and builds a face.
func New(opts Options) (*Renderer, error) {
	f, err := loadFont(opts.Path, opts.Index)
	if err != nil {
		return nil, err
	}

	hinting, err := ParseHinting(opts.Hinting)
	if err != nil {
		return nil, err
	}
	if opts.Size <= 0 {
		return nil, fmt.Errorf("invalid font size %v", opts.Size)
	}
	dpi := opts.DPI
	if dpi <= 0 {
		dpi = 72
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    opts.Size,
		DPI:     dpi,
		Hinting: hinting,
	})
	if err != nil {
		return nil, fmt.Errorf("creating font face: %w", err)
	}

	col := opts.Color
	if col == nil {
		col = color.Black
	}
	return &Renderer{
		face:    face,
		src:     image.NewUniform(col),
		metrics: face.Metrics(),
	}, nil
}

// Measure returns the advance width and the ascent+descent height of text.
func (r *Renderer) Measure(text string) (width, height int) {
	width = font.MeasureString(r.face, text).Ceil()
	height = (r.metrics.Ascent + r.metrics.Descent).Ceil()
	return width, height
}

// Draw renders text with its top-left corner at (x, y).
func (r *Renderer) Draw(dst draw.Image, text string, x, y int) {
	if text == "" {
		return
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  r.src,
		Face: r.face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y) + r.metrics.Ascent},
	}
	d.DrawString(text)
}

// Close releases the face.
func (r *Renderer) Close() error {
	return r.face.Close()
}

// ParseHinting maps a config name to a font.Hinting.
func ParseHinting(name string) (font.Hinting, error) {
	switch strings.ToLower(name) {
	case "", "full":
		return font.HintingFull, nil
	case "vertical":
		return font.HintingVertical, nil
	case "none":
		return font.HintingNone, nil
	default:
		return font.HintingNone, fmt.Errorf("%w: %q", ErrUnknownHinting, name)
	}
}

func loadFont(path string, index int) (*opentype.Font, error) {
	if path == "" {
		return opentype.Parse(goregular.TTF)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading font: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttc", ".otc":
		coll, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, fmt.Errorf("parsing font collection %s: %w", path, err)
		}
		if index < 0 || index >= coll.NumFonts() {
			return nil, fmt.Errorf("font index %d out of range (collection has %d)", index, coll.NumFonts())
		}
		f, err := coll.Font(index)
		if err != nil {
			return nil, fmt.Errorf("loading face %d of %s: %w", index, path, err)
		}
		return f, nil
	default:
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parsing font %s: %w", path, err)
		}
		return f, nil
	}
}
