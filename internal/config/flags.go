package config

import "flag"

// Flags holds command-line overrides. Zero values leave the config untouched.
type Flags struct {
	Config   string
	Input    string
	Encoding string
	Output   string
	AtlasPNG string
	Size     int
	Font     string
	FontSize float64
	Recenter bool
	Debug    bool
}

// RegisterFlags defines the shared flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.StringVar(&f.Input, "input", "", "Annotations JSON file")
	fs.StringVar(&f.Encoding, "encoding", "", "Input text encoding (utf-8, shift_jis, euc-jp, euc-kr, utf-16)")
	fs.StringVar(&f.Output, "o", "", "Output GLB path")
	fs.StringVar(&f.AtlasPNG, "atlas", "", "Output atlas PNG path")
	fs.IntVar(&f.Size, "size", 0, "Atlas side length in pixels")
	fs.StringVar(&f.Font, "font", "", "Font file (.ttf, .otf, .ttc)")
	fs.Float64Var(&f.FontSize, "font-size", 0, "Font size in points")
	fs.BoolVar(&f.Recenter, "recenter", false, "Store positions relative to the mesh centre")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	return f
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Input != "" {
		cfg.Input.Path = f.Input
	}
	if f.Encoding != "" {
		cfg.Input.Encoding = f.Encoding
	}
	if f.Output != "" {
		cfg.Output.GLB = f.Output
	}
	if f.AtlasPNG != "" {
		cfg.Output.AtlasPNG = f.AtlasPNG
	}
	if f.Size > 0 {
		cfg.Atlas.Size = f.Size
	}
	if f.Font != "" {
		cfg.Font.Path = f.Font
	}
	if f.FontSize > 0 {
		cfg.Font.Size = f.FontSize
	}
	if f.Recenter {
		cfg.Output.Recenter = true
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
}
