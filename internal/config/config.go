// Package config handles labelmesh configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/Faultbox/labelmesh/internal/textrender"
	"github.com/Faultbox/labelmesh/pkg/encoding"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all conversion settings.
type Config struct {
	Input   InputConfig   `yaml:"input"`
	Atlas   AtlasConfig   `yaml:"atlas"`
	Font    FontConfig    `yaml:"font"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// InputConfig describes the annotation source.
type InputConfig struct {
	Path     string `yaml:"path"`
	Encoding string `yaml:"encoding"` // utf-8, shift_jis, euc-jp, euc-kr, utf-16
}

// AtlasConfig holds texture atlas settings.
type AtlasConfig struct {
	Size       int    `yaml:"size"`       // Side length in pixels
	Background string `yaml:"background"` // #rrggbb
	TextColor  string `yaml:"text_color"` // #rrggbb
}

// FontConfig selects the label font.
type FontConfig struct {
	Path    string  `yaml:"path"`  // Empty uses the bundled Go Regular
	Index   int     `yaml:"index"` // Face index inside .ttc collections
	Size    float64 `yaml:"size"`  // Points
	DPI     float64 `yaml:"dpi"`
	Hinting string  `yaml:"hinting"` // none, vertical, full
}

// OutputConfig holds output artifact settings.
type OutputConfig struct {
	GLB         string `yaml:"glb"`
	AtlasPNG    string `yaml:"atlas_png"` // Empty skips the inspection image
	MeshName    string `yaml:"mesh_name"`
	Recenter    bool   `yaml:"recenter"`
	DoubleSided bool   `yaml:"double_sided"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	JSON    bool   `yaml:"json"`
}

// Default returns a Config with the values the FME workflow expects.
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Path:     "fme_workflow/json/annotations.json",
			Encoding: "utf-8",
		},
		Atlas: AtlasConfig{
			Size:       512,
			Background: "#ffffff",
			TextColor:  "#000000",
		},
		Font: FontConfig{
			Size:    32,
			DPI:     72,
			Hinting: "full",
		},
		Output: OutputConfig{
			GLB:      "output/annotations.glb",
			AtlasPNG: "texture/annotations.png",
			MeshName: "annotations",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks value ranges and names.
func (c *Config) Validate() error {
	if c.Input.Path == "" {
		return fmt.Errorf("%w: input.path is empty", ErrInvalid)
	}
	if _, err := encoding.Lookup(c.Input.Encoding); err != nil {
		return fmt.Errorf("%w: input.encoding: %v", ErrInvalid, err)
	}
	if c.Atlas.Size <= 0 {
		return fmt.Errorf("%w: atlas.size must be positive, got %d", ErrInvalid, c.Atlas.Size)
	}
	if _, err := ParseColor(c.Atlas.Background); err != nil {
		return fmt.Errorf("%w: atlas.background: %v", ErrInvalid, err)
	}
	if _, err := ParseColor(c.Atlas.TextColor); err != nil {
		return fmt.Errorf("%w: atlas.text_color: %v", ErrInvalid, err)
	}
	if c.Font.Size <= 0 {
		return fmt.Errorf("%w: font.size must be positive, got %v", ErrInvalid, c.Font.Size)
	}
	if c.Font.Index < 0 {
		return fmt.Errorf("%w: font.index must not be negative", ErrInvalid)
	}
	if _, err := textrender.ParseHinting(c.Font.Hinting); err != nil {
		return fmt.Errorf("%w: font.hinting: %v", ErrInvalid, err)
	}
	if c.Output.GLB == "" {
		return fmt.Errorf("%w: output.glb is empty", ErrInvalid)
	}
	return nil
}

// ParseColor parses "#rrggbb" or "rrggbb" into an opaque color.
func ParseColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("color %q is not #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q is not #rrggbb", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// TextOptions converts the font section to renderer options.
func (c *Config) TextOptions() (textrender.Options, error) {
	col, err := ParseColor(c.Atlas.TextColor)
	if err != nil {
		return textrender.Options{}, err
	}
	opts := textrender.DefaultOptions()
	opts.Path = c.Font.Path
	opts.Index = c.Font.Index
	if c.Font.Size > 0 {
		opts.Size = c.Font.Size
	}
	if c.Font.DPI > 0 {
		opts.DPI = c.Font.DPI
	}
	if c.Font.Hinting != "" {
		opts.Hinting = c.Font.Hinting
	}
	opts.Color = col
	return opts, nil
}
