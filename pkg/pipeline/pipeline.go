// Package pipeline provides the core rendering pipeline for pinout diagrams.
//
// This package implements the complete parse → interpret → assemble → render
// pipeline shared by every entry point, so CLI commands and library callers
// behave identically.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Parse: Read the tabular command document into a command list
//  2. Interpret: Validate phases and references, build the theme store
//  3. Assemble: Run the layout engine and produce drawing primitives
//  4. Render: Serialize primitives into output formats (SVG, PNG, PDF, JSON)
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Source:  sourceBytes,
//	    Formats: []string{"svg", "png"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hwaldner/pinout/pkg/cache"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Options contains all configuration for a pipeline run.
type Options struct {
	// Source is the tabular command document.
	Source []byte `json:"-"`

	// BaseDir resolves relative image and icon paths. Empty means the
	// working directory.
	BaseDir string `json:"base_dir,omitempty"`

	// Page seeds the page identifier used when the document sets none.
	// A PAGE command in the document takes precedence.
	Page string `json:"page,omitempty"`

	// DPI seeds the pixel density used when the document sets none.
	// A DPI command in the document takes precedence.
	DPI int `json:"dpi,omitempty"`

	// Formats lists the outputs to produce. Defaults to SVG.
	Formats []string `json:"formats,omitempty"`

	// Background fills the canvas behind all primitives when set.
	Background string `json:"background,omitempty"`

	// FontFamily seeds the default font family used when the document sets
	// none. FONT style rows in the document take precedence.
	FontFamily string `json:"font_family,omitempty"`

	// Refresh bypasses the artifact cache and re-renders.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this pipeline run in logs.
	RunID string

	// SourceHash is the content hash of the source document.
	SourceHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Canvas describes the resolved page in pixels and millimeters.
	CanvasWidthPx  float64
	CanvasHeightPx float64

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks whether artifacts came from the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	CommandCount   int
	StepCount      int
	PrimitiveCount int
	ParseTime      time.Duration
	AssembleTime   time.Duration
	RenderTime     time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	ArtifactHit bool // Whether all artifacts came from cache
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Source) == 0 {
		return fmt.Errorf("source is required")
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:     format,
		Page:       o.Page,
		DPI:        o.DPI,
		Background: o.Background,
		FontFamily: o.FontFamily,
	}
}
