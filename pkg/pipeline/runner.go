package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/hwaldner/pinout/pkg/cache"
	"github.com/hwaldner/pinout/pkg/command"
	"github.com/hwaldner/pinout/pkg/document"
	"github.com/hwaldner/pinout/pkg/observability"
	"github.com/hwaldner/pinout/pkg/render"
	"github.com/hwaldner/pinout/pkg/render/diagram"
	"github.com/hwaldner/pinout/pkg/render/diagram/sink"
	"github.com/hwaldner/pinout/pkg/resource"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger, so multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete parse → interpret → assemble → render pipeline
// with artifact caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger

	sourceKey := r.Keyer.SourceKey(opts.Source)
	result := &Result{
		RunID:      uuid.NewString(),
		SourceHash: cache.Hash(opts.Source),
		Artifacts:  make(map[string][]byte),
	}

	// A warm cache can satisfy the whole run without parsing.
	if !opts.Refresh {
		if artifacts, ok := r.cachedArtifacts(ctx, sourceKey, opts); ok {
			result.Artifacts = artifacts
			result.CacheInfo.ArtifactHit = true
			logger.Debug("all artifacts cached", "run", result.RunID, "formats", opts.Formats)
			return result, nil
		}
	}

	// Stage 1+2: Parse and interpret
	parseStart := time.Now()
	observability.Pipeline().OnInterpretStart(ctx, len(opts.Source))
	doc, cmds, err := r.Interpret(opts)
	observability.Pipeline().OnInterpretComplete(ctx, stepCount(doc), time.Since(parseStart), err)
	if err != nil {
		return nil, err
	}
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.CommandCount = len(cmds)
	result.Stats.StepCount = len(doc.Steps)
	result.CanvasWidthPx = doc.Canvas.WidthPx
	result.CanvasHeightPx = doc.Canvas.HeightPx

	logger.Info("interpreted document",
		"commands", len(cmds),
		"steps", len(doc.Steps),
		"duration", result.Stats.ParseTime)

	// Stage 3: Assemble
	assembleStart := time.Now()
	observability.Pipeline().OnAssembleStart(ctx, len(doc.Steps))
	d, err := r.Assemble(doc, opts)
	observability.Pipeline().OnAssembleComplete(ctx, primitiveCount(d), time.Since(assembleStart), err)
	if err != nil {
		return nil, err
	}
	result.Stats.AssembleTime = time.Since(assembleStart)
	result.Stats.PrimitiveCount = len(d.Primitives)

	logger.Info("assembled diagram",
		"primitives", len(d.Primitives),
		"duration", result.Stats.AssembleTime)

	// Stage 4: Render
	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	artifacts, err := r.RenderArtifacts(d, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), err)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(sourceKey, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, key, artifacts[format], cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, "artifact", len(artifacts[format]))
	}

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Interpret parses the source and interprets it into a validated document.
func (r *Runner) Interpret(opts Options) (*document.Document, []command.Command, error) {
	cmds, err := command.Parse(bytes.NewReader(opts.Source))
	if err != nil {
		return nil, nil, err
	}

	doc := document.New()
	doc.SetCanvasDefaults(opts.Page, opts.DPI)
	doc.SetFontDefault(opts.FontFamily)
	for _, c := range cmds {
		if err := doc.Append(c); err != nil {
			return nil, nil, err
		}
	}
	return doc, cmds, nil
}

// Assemble runs the layout engine over a document's draw steps.
func (r *Runner) Assemble(doc *document.Document, opts Options) (*diagram.Diagram, error) {
	loader := resource.FileLoader{Base: opts.BaseDir}
	return diagram.Assemble(doc, loader)
}

// RenderArtifacts serializes the diagram into every requested format. The
// raster and print formats reuse the SVG serialization as their input.
func (r *Runner) RenderArtifacts(d *diagram.Diagram, opts Options) (map[string][]byte, error) {
	var svgOpts []sink.SVGOption
	if opts.Background != "" {
		svgOpts = append(svgOpts, sink.WithBackground(opts.Background))
	}
	svg := sink.RenderSVG(d, svgOpts...)

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		switch format {
		case FormatSVG:
			artifacts[format] = svg
		case FormatPNG:
			data, err := render.ToPNG(svg, d.Canvas.DPI)
			if err != nil {
				return nil, err
			}
			artifacts[format] = data
		case FormatPDF:
			data, err := render.ToPDF(svg)
			if err != nil {
				return nil, err
			}
			artifacts[format] = data
		case FormatJSON:
			data, err := sink.RenderJSON(d)
			if err != nil {
				return nil, err
			}
			artifacts[format] = data
		default:
			return nil, fmt.Errorf("invalid format: %q", format)
		}
	}
	return artifacts, nil
}

// cachedArtifacts tries to satisfy every requested format from the cache.
func (r *Runner) cachedArtifacts(ctx context.Context, sourceKey string, opts Options) (map[string][]byte, bool) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(sourceKey, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			observability.Cache().OnCacheMiss(ctx, "artifact")
			return nil, false
		}
		observability.Cache().OnCacheHit(ctx, "artifact")
		artifacts[format] = data
	}
	return artifacts, true
}

func stepCount(doc *document.Document) int {
	if doc == nil {
		return 0
	}
	return len(doc.Steps)
}

func primitiveCount(d *diagram.Diagram) int {
	if d == nil {
		return 0
	}
	return len(d.Primitives)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
