package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hwaldner/pinout/pkg/config"
	"github.com/hwaldner/pinout/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string // output file (single format) or base path (multiple)
	page       string // page identifier, e.g. "A4-L"
	dpi        int    // pixel density
	background string // canvas background color
	overwrite  bool   // allow overwriting existing output files
	noCache    bool   // disable the artifact cache
	refresh    bool   // bypass the cache and re-render
}

// renderCommand creates the render command for generating diagrams.
//
// The page, DPI and format defaults come from pinout.toml next to the input
// document when present. PAGE and DPI commands inside the document always
// take precedence over flags and config.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <file> [output]",
		Short: "Render a command document to SVG, PNG, PDF or JSON",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				if opts.output != "" {
					return fmt.Errorf("output given both as argument and --output flag")
				}
				opts.output = args[1]
			}
			return c.runRender(cmd, args[0], parseFormats(formatsStr), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.output, "output", "", "output file (single format) or base path (multiple formats)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().StringVar(&opts.page, "page", "", "page size when the document sets none: A5, A4, A3, LETTER with -P or -L suffix")
	cmd.Flags().IntVar(&opts.dpi, "dpi", 0, "pixel density when the document sets none (50-1200)")
	cmd.Flags().StringVar(&opts.background, "background", "", "canvas background color")
	cmd.Flags().BoolVarP(&opts.overwrite, "overwrite", "o", false, "overwrite existing output files")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the cache and re-render")

	return cmd
}

// runRender loads the document, executes the pipeline and writes one file
// per requested format.
func (c *CLI) runRender(cmd *cobra.Command, input string, formats []string, opts *renderOpts) error {
	logger := loggerFromContext(cmd.Context())

	cfg, err := config.LoadNear(input)
	if err != nil {
		return err
	}
	applyConfig(cfg, &formats, opts)
	logger.Debug("resolved render options", "formats", formats, "page", opts.page, "dpi", opts.dpi)

	source, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	pipeOpts := pipeline.Options{
		Source:     source,
		BaseDir:    filepath.Dir(input),
		Page:       opts.page,
		DPI:        opts.dpi,
		Formats:    formats,
		Background: opts.background,
		FontFamily: cfg.Fonts.Family,
		Refresh:    opts.refresh,
		Logger:     logger,
	}

	// Check all destinations before rendering so a refused overwrite does
	// not waste a render.
	paths := outputPaths(opts.output, input, formats)
	if !opts.overwrite {
		for _, p := range paths {
			if _, err := os.Stat(p); err == nil {
				return fmt.Errorf("%s already exists (use --overwrite to replace it)", p)
			}
		}
	}

	spinner := newSpinnerWithContext(cmd.Context(), "Rendering "+input)
	spinner.Start()
	result, err := runner.Execute(cmd.Context(), pipeOpts)
	spinner.Stop()
	if err != nil {
		printError("%v", err)
		return err
	}

	for _, format := range formats {
		path := paths[format]
		if err := os.WriteFile(path, result.Artifacts[format], 0644); err != nil {
			return err
		}
		printFile(path)
	}

	printSuccess("Rendered %s", input)
	printStats(result.Stats.StepCount, result.Stats.PrimitiveCount, result.CacheInfo.ArtifactHit)
	return nil
}

// applyConfig fills unset flags from the project config.
func applyConfig(cfg config.Config, formats *[]string, opts *renderOpts) {
	if len(*formats) == 0 {
		*formats = cfg.Render.Formats
	}
	if len(*formats) == 0 {
		*formats = []string{pipeline.FormatSVG}
	}
	if opts.page == "" {
		opts.page = cfg.Render.Page
	}
	if opts.dpi == 0 {
		opts.dpi = cfg.Render.DPI
	}
	if opts.background == "" {
		opts.background = cfg.Render.Background
	}
}

// outputPaths maps each format to its destination file.
//
// With a single format, an explicit output path is used verbatim. With
// multiple formats the output (or the input stem) acts as a base path and
// each format appends its extension.
func outputPaths(output, input string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))

	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}

	base := basePath(output, input)
	for _, format := range formats {
		paths[format] = base + "." + format
	}
	return paths
}

// basePath derives the base output path from the output and input paths.
// A known format extension on the output path is stripped.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
