// Package pipeline runs the annotation-to-GLB conversion end to end.
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/labelmesh/internal/config"
	"github.com/Faultbox/labelmesh/internal/logger"
	"github.com/Faultbox/labelmesh/internal/texture"
	"github.com/Faultbox/labelmesh/pkg/annotation"
	"github.com/Faultbox/labelmesh/pkg/atlas"
	"github.com/Faultbox/labelmesh/pkg/mesh"
	"github.com/Faultbox/labelmesh/pkg/quad"
	"github.com/Faultbox/labelmesh/pkg/uvmap"
)

// ErrNoAnnotations means nothing was left to mesh after filtering.
var ErrNoAnnotations = errors.New("no annotations with a supported rotation")

// Options controls Build.
type Options struct {
	Atlas       atlas.Options
	MeshName    string
	DoubleSided bool
}

// Report summarizes one conversion.
type Report struct {
	Total      int
	Meshed     int
	Degenerate int
	// Skipped lists the IDs dropped for unsupported rotation, in input order.
	Skipped     []string
	AtlasSize   int
	AtlasExtent int

	GLBPath   string
	AtlasPath string
	Elapsed   time.Duration
}

// Result is the in-memory output of Build.
type Result struct {
	Atlas  *atlas.Atlas
	Mesh   *mesh.Mesh
	Report Report
}

// Supported splits annotations into those with a quad-able rotation and
// the IDs of the rest. Order is preserved.
func Supported(annotations []annotation.Annotation) (kept []annotation.Annotation, skipped []string) {
	kept = make([]annotation.Annotation, 0, len(annotations))
	for _, a := range annotations {
		if !quad.Supports(a.Rotation) {
			logger.Warn("skipping annotation with unsupported rotation",
				zap.String("id", a.ID),
				zap.Float64("rotation", a.RotationDegrees))
			skipped = append(skipped, a.ID)
			continue
		}
		kept = append(kept, a)
	}
	return kept, skipped
}

// PackAtlas renders the labels of annotations into an atlas and fails on
// overflow.
func PackAtlas(annotations []annotation.Annotation, opts atlas.Options, renderer atlas.TextRenderer) (*atlas.Atlas, error) {
	labels := make([]atlas.Label, len(annotations))
	for i, a := range annotations {
		labels[i] = atlas.Label{ID: a.ID, Text: a.Text}
	}

	at, err := atlas.Pack(labels, opts, renderer)
	if err != nil {
		return nil, fmt.Errorf("packing atlas: %w", err)
	}
	for _, p := range at.Placements {
		logger.Debug("placed label",
			zap.String("id", p.ID),
			zap.Int("x", p.Rect.X), zap.Int("y", p.Rect.Y),
			zap.Int("w", p.Rect.Width), zap.Int("h", p.Rect.Height))
	}
	if err := at.CheckOverflow(); err != nil {
		return nil, fmt.Errorf("%w (raise atlas.size or lower font.size)", err)
	}
	return at, nil
}

// Build packs the atlas and assembles the mesh without touching the disk.
func Build(annotations []annotation.Annotation, opts Options, renderer atlas.TextRenderer) (*Result, error) {
	kept, skipped := Supported(annotations)
	if len(kept) == 0 {
		return nil, ErrNoAnnotations
	}

	at, err := PackAtlas(kept, opts.Atlas, renderer)
	if err != nil {
		return nil, err
	}
	logger.Info("packed atlas",
		zap.Int("labels", len(at.Placements)),
		zap.Int("size", at.Size()),
		zap.Int("extent", at.Extent()))

	report := Report{
		Total:       len(annotations),
		Skipped:     skipped,
		AtlasSize:   at.Size(),
		AtlasExtent: at.Extent(),
	}

	parts := make([]mesh.Part, 0, len(kept))
	for i := range kept {
		a := &kept[i]
		q, err := quad.Build(a)
		if err != nil {
			return nil, err
		}
		if a.Degenerate() {
			logger.Debug("degenerate label footprint", zap.String("id", a.ID))
			report.Degenerate++
		}
		parts = append(parts, mesh.Part{
			ID:   a.ID,
			Quad: q,
			UVs:  uvmap.Map(at.Placements[i].Rect, at.Size(), at.Size()),
		})
	}

	m := mesh.Assemble(opts.MeshName, parts, mesh.Material{
		Name:        opts.MeshName,
		Image:       at.Image,
		DoubleSided: opts.DoubleSided,
	})
	if err := m.Validate(); err != nil {
		return nil, err
	}
	report.Meshed = m.QuadCount()

	return &Result{Atlas: at, Mesh: m, Report: report}, nil
}

// Run loads the configured input, builds the mesh and writes the outputs.
func Run(cfg *config.Config, renderer atlas.TextRenderer, exporter mesh.Exporter) (*Report, error) {
	start := time.Now()

	annotations, err := annotation.Load(cfg.Input.Path, cfg.Input.Encoding)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded annotations",
		zap.String("path", cfg.Input.Path),
		zap.Int("count", len(annotations)))

	bg, err := config.ParseColor(cfg.Atlas.Background)
	if err != nil {
		return nil, err
	}
	res, err := Build(annotations, Options{
		Atlas:       atlas.Options{Size: cfg.Atlas.Size, Background: bg},
		MeshName:    cfg.Output.MeshName,
		DoubleSided: cfg.Output.DoubleSided,
	}, renderer)
	if err != nil {
		return nil, err
	}

	if err := mesh.ExportFile(cfg.Output.GLB, res.Mesh, exporter); err != nil {
		return nil, err
	}
	res.Report.GLBPath = cfg.Output.GLB

	if cfg.Output.AtlasPNG != "" {
		if err := texture.SavePNG(cfg.Output.AtlasPNG, res.Atlas.Image); err != nil {
			return nil, fmt.Errorf("saving atlas: %w", err)
		}
		res.Report.AtlasPath = cfg.Output.AtlasPNG
	}

	res.Report.Elapsed = time.Since(start)
	logger.Info("wrote mesh",
		zap.String("glb", res.Report.GLBPath),
		zap.String("atlas", res.Report.AtlasPath),
		zap.Int("quads", res.Report.Meshed),
		zap.Int("skipped", len(res.Report.Skipped)),
		zap.Duration("elapsed", res.Report.Elapsed))

	return &res.Report, nil
}
