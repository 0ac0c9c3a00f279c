package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowscope/pkg/config"
	"github.com/matzehuels/flowscope/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output      string   // output file path (or base path for multiple formats)
	formats     []string // output formats: "svg", "pdf", "png", "dot", "json"
	hierarchy   string   // hierarchy choice id (empty uses the document default)
	collapse    []string // container ids to collapse before layout
	collapseAll bool     // collapse every container
	engine      string   // graphviz layout engine
	detailed    bool     // use full node labels in rendered output
	legend      bool     // append a node-type legend
	fullLabels  bool     // build the state with full labels
	scale       float64  // PNG export scale factor
	noCache     bool     // disable the layout/artifact cache
	refresh     bool     // recompute and overwrite cached entries
	redisAddr   string   // redis cache backend (host:port)
	configPath  string   // config file path
}

// renderCommand creates the render command for generating visualizations.
//
// Default settings:
//   - format: svg
//   - engine: dot (from config)
//   - scale: 2.0 for PNG export
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var collapseList []string
	opts := renderOpts{
		scale: pipeline.DefaultScale,
	}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a graph document to SVG, PDF, PNG, DOT, or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			opts.collapse = parseCollapseList(collapseList)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, json, pdf, png (comma-separated)")
	cmd.Flags().StringVar(&opts.hierarchy, "hierarchy", "", "hierarchy choice id (default: document selection)")
	cmd.Flags().StringArrayVar(&collapseList, "collapse", nil, "container id to collapse (repeatable or comma-separated)")
	cmd.Flags().BoolVar(&opts.collapseAll, "collapse-all", false, "collapse every container")
	cmd.Flags().StringVar(&opts.engine, "engine", "", "graphviz engine: dot (default), neato, fdp, circo, twopi")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "use full node labels in rendered output")
	cmd.Flags().BoolVar(&opts.legend, "legend", false, "append a node-type legend")
	cmd.Flags().BoolVar(&opts.fullLabels, "full-labels", false, "build the graph with full labels")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG export scale factor")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the layout and artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute and overwrite cached entries")
	cmd.Flags().StringVar(&opts.redisAddr, "redis", "", "use a redis cache backend at host:port instead of the file cache")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file path (default: XDG config dir)")

	return cmd
}

// runRender executes the full pipeline and writes the resulting artifacts.
func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache, opts.redisAddr)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	sp := newSpinnerWithContext(ctx, "Rendering "+filepath.Base(input))
	sp.Start()
	result, err := runner.Execute(ctx, pipeline.Options{
		Input:       input,
		Hierarchy:   opts.hierarchy,
		FullLabels:  opts.fullLabels,
		Collapse:    opts.collapse,
		CollapseAll: opts.collapseAll,
		Engine:      opts.engine,
		Formats:     opts.formats,
		Detailed:    opts.detailed,
		Legend:      opts.legend,
		Scale:       opts.scale,
		Refresh:     opts.refresh,
		Config:      cfg,
		Logger:      logger,
	})
	sp.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %d artifact(s)", len(result.Artifacts)))

	paths, err := writeArtifacts(input, opts.output, opts.formats, result.Artifacts)
	if err != nil {
		return err
	}
	for _, format := range opts.formats {
		if _, ok := result.Artifacts[format]; !ok {
			printWarning("No %s artifact produced", format)
		}
	}

	printSuccess("Generated %d file(s)", len(paths))
	for _, p := range paths {
		printFile(p)
	}
	st := result.Stats.State
	printStats(st.VisibleNodes, st.VisibleEdges, st.VisibleContainers, result.CacheInfo.LayoutHit)
	return nil
}

// writeArtifacts writes one file per format and returns the written paths.
// Format order from the command line is preserved.
func writeArtifacts(input, output string, formats []string, artifacts map[string][]byte) ([]string, error) {
	base := basePath(output, input)

	var paths []string
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := base + "." + format
		if output != "" && len(formats) == 1 {
			path = output
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .pdf, etc.), it strips that extension.
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

// loadConfig resolves the config: an explicit path must parse, the default
// path is optional.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
