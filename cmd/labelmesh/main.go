// labelmesh converts text-label annotations into a single textured GLB mesh.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Faultbox/labelmesh/internal/config"
	"github.com/Faultbox/labelmesh/internal/glb"
	"github.com/Faultbox/labelmesh/internal/logger"
	"github.com/Faultbox/labelmesh/internal/pipeline"
	"github.com/Faultbox/labelmesh/internal/textrender"
	"github.com/Faultbox/labelmesh/internal/texture"
	"github.com/Faultbox/labelmesh/pkg/annotation"
	"github.com/Faultbox/labelmesh/pkg/atlas"
	"github.com/Faultbox/labelmesh/pkg/math"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "build":
		cmdBuild(args)
	case "atlas":
		cmdAtlas(args)
	case "info":
		cmdInfo(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`labelmesh - text annotations to textured GLB

Usage:
  labelmesh <command> [options] [annotations.json]

Commands:
  build             Pack the atlas, build quads and write the GLB
  atlas             Pack and write only the atlas PNG
  info              Show annotation counts per rotation class
  config init [p]   Write the default config (to p or the user config dir)

Options (build, atlas, info):
  -config <file>    YAML config (default ./labelmesh.yaml or user config dir)
  -input <file>     Annotations JSON
  -encoding <name>  utf-8, shift_jis, euc-jp, euc-kr, utf-16
  -o <file>         Output GLB
  -atlas <file>     Output atlas PNG
  -size <px>        Atlas side length
  -font <file>      .ttf/.otf/.ttc font
  -font-size <pt>   Font size
  -recenter         Store positions relative to the mesh centre
  -debug            Debug logging

Examples:
  labelmesh build fme_workflow/json/annotations.json
  labelmesh build -font C:/Windows/Fonts/meiryob.ttc -size 1024 -encoding shift_jis
  labelmesh atlas -atlas texture/annotations.png
  labelmesh info annotations.json`)
}

func fatal(err error) {
	logger.Sync()
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// setup parses the shared flags, loads config and starts logging.
// A single positional argument overrides the input path.
func setup(name string, args []string) *config.Config {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	fs.Parse(args)

	if fs.NArg() > 0 {
		flags.Input = fs.Arg(0)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fatal(err)
	}

	if err := logger.InitWithFileConfig(cfg.Logging.Level, logFileConfig(cfg), true); err != nil {
		fatal(err)
	}
	return cfg
}

func logFileConfig(cfg *config.Config) logger.FileConfig {
	if cfg.Logging.LogFile == "" {
		return logger.FileConfig{}
	}
	fc := logger.DefaultFileConfig(cfg.Logging.LogFile)
	fc.JSON = cfg.Logging.JSON
	return fc
}

func newRenderer(cfg *config.Config) *textrender.Renderer {
	opts, err := cfg.TextOptions()
	if err != nil {
		fatal(err)
	}
	r, err := textrender.New(opts)
	if err != nil {
		fatal(err)
	}
	return r
}

func cmdBuild(args []string) {
	cfg := setup("build", args)
	defer logger.Sync()

	renderer := newRenderer(cfg)
	defer renderer.Close()

	report, err := pipeline.Run(cfg, renderer, glb.New(glb.Options{Recenter: cfg.Output.Recenter}))
	if err != nil {
		fatal(err)
	}

	fmt.Printf("Annotations: %d\n", report.Total)
	fmt.Printf("Quads:       %d\n", report.Meshed)
	if len(report.Skipped) > 0 {
		fmt.Printf("Skipped:     %d (unsupported rotation)\n", len(report.Skipped))
	}
	if report.Degenerate > 0 {
		fmt.Printf("Degenerate:  %d (zero-area footprint)\n", report.Degenerate)
	}
	fmt.Printf("Atlas:       %d px, %d px used\n", report.AtlasSize, report.AtlasExtent)
	fmt.Printf("GLB:         %s\n", report.GLBPath)
	if report.AtlasPath != "" {
		fmt.Printf("Atlas PNG:   %s\n", report.AtlasPath)
	}
}

func cmdAtlas(args []string) {
	cfg := setup("atlas", args)
	defer logger.Sync()

	if cfg.Output.AtlasPNG == "" {
		fatal(fmt.Errorf("no atlas output path (set output.atlas_png or -atlas)"))
	}

	annotations, err := annotation.Load(cfg.Input.Path, cfg.Input.Encoding)
	if err != nil {
		fatal(err)
	}
	kept, skipped := pipeline.Supported(annotations)

	bg, err := config.ParseColor(cfg.Atlas.Background)
	if err != nil {
		fatal(err)
	}
	renderer := newRenderer(cfg)
	defer renderer.Close()

	at, err := pipeline.PackAtlas(kept, atlas.Options{Size: cfg.Atlas.Size, Background: bg}, renderer)
	if err != nil {
		fatal(err)
	}
	if err := texture.SavePNG(cfg.Output.AtlasPNG, at.Image); err != nil {
		fatal(err)
	}

	fmt.Printf("Labels:  %d (%d skipped)\n", len(at.Placements), len(skipped))
	fmt.Printf("Used:    %d of %d px\n", at.Extent(), at.Size())
	fmt.Printf("Written: %s\n", cfg.Output.AtlasPNG)
}

func cmdInfo(args []string) {
	cfg := setup("info", args)
	defer logger.Sync()

	annotations, err := annotation.Load(cfg.Input.Path, cfg.Input.Encoding)
	if err != nil {
		fatal(err)
	}

	byClass := make(map[annotation.Rotation]int)
	unsupported := make(map[float64]int)
	degenerate := 0
	bounds := math.EmptyBox()
	for i := range annotations {
		a := &annotations[i]
		byClass[a.Rotation]++
		if !a.Rotation.Supported() {
			unsupported[a.RotationDegrees]++
		}
		if a.Degenerate() {
			degenerate++
		}
		bounds = bounds.Extend(a.Bounds.Min).Extend(a.Bounds.Max)
	}

	fmt.Printf("File:        %s\n", cfg.Input.Path)
	fmt.Printf("Annotations: %d\n", len(annotations))
	fmt.Printf("Degenerate:  %d\n", degenerate)
	if bounds.Valid() {
		size := bounds.Size()
		fmt.Printf("Extent:      %.3f x %.3f x %.3f\n", size.X, size.Y, size.Z)
		fmt.Printf("Min:         %.3f %.3f %.3f\n", bounds.Min.X, bounds.Min.Y, bounds.Min.Z)
		fmt.Printf("Max:         %.3f %.3f %.3f\n", bounds.Max.X, bounds.Max.Y, bounds.Max.Z)
	}
	fmt.Println()
	fmt.Println("By rotation:")
	for _, r := range []annotation.Rotation{annotation.Rotate0, annotation.Rotate90, annotation.Rotate180, annotation.Rotate270} {
		fmt.Printf("  %-6s %d\n", r, byClass[r])
	}

	if len(unsupported) > 0 {
		angles := make([]float64, 0, len(unsupported))
		for deg := range unsupported {
			angles = append(angles, deg)
		}
		sort.Float64s(angles)
		fmt.Println()
		fmt.Println("Unsupported angles (skipped by build):")
		for _, deg := range angles {
			fmt.Printf("  %-8g %d\n", deg, unsupported[deg])
		}
	}
}

func cmdConfig(args []string) {
	if len(args) < 1 || args[0] != "init" {
		fmt.Fprintln(os.Stderr, "Usage: labelmesh config init [path]")
		os.Exit(1)
	}

	cfg := config.Default()
	var err error
	path := ""
	if len(args) > 1 {
		path = args[1]
		err = cfg.SaveTo(path)
	} else {
		err = cfg.Save()
	}
	if err != nil {
		fatal(err)
	}
	if path == "" {
		path = filepath.Join(config.ConfigDir(), "config.yaml")
	}
	fmt.Printf("Wrote %s\n", path)
}
