// Package pipeline provides the core visualization pipeline for Flowscope.
//
// This package implements the complete ingest → layout → render pipeline
// that can be used by CLI, API, and worker components. By centralizing this
// logic, we ensure consistent behavior across all entry points and avoid
// code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Ingest: Parse and validate a graph document, build the visibility
//     state, and apply the requested collapses
//  2. Layout: Compute geometry for the visible projection with Graphviz
//  3. Render: Generate output in various formats (DOT, SVG, PNG, PDF, JSON)
//
// Layout and render results are cached by content hash; ingest is cheap and
// always runs.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:   "graph.json",
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowscope/pkg/config"
	"github.com/matzehuels/flowscope/pkg/errors"
	"github.com/matzehuels/flowscope/pkg/graphio"
)

// Format constants for output formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// ValidEngines is the set of supported Graphviz layout engines.
var ValidEngines = map[string]bool{
	"dot":   true,
	"neato": true,
	"fdp":   true,
	"circo": true,
	"twopi": true,
}

// DefaultScale is the PNG export scale factor.
const DefaultScale = 2.0

// Options contains all configuration for the visualization pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Input is the path of the graph document to ingest.
	Input string `json:"input"`

	// Hierarchy selects the hierarchy choice. Empty means the document's
	// selected hierarchy.
	Hierarchy string `json:"hierarchy,omitempty"`

	// FullLabels uses full node labels instead of short ones.
	FullLabels bool `json:"full_labels,omitempty"`

	// Collapse lists container ids to collapse after building the state.
	Collapse []string `json:"collapse,omitempty"`

	// CollapseAll collapses every container. Combined with Collapse, the
	// explicit list is ignored.
	CollapseAll bool `json:"collapse_all,omitempty"`

	// Engine overrides the configured Graphviz engine.
	Engine string `json:"engine,omitempty"`

	// Formats lists the artifacts to produce.
	Formats []string `json:"formats,omitempty"`

	// Detailed uses full labels in rendered output.
	Detailed bool `json:"detailed,omitempty"`

	// Legend appends a node-type legend to rendered output.
	Legend bool `json:"legend,omitempty"`

	// Scale is the PNG export scale factor. Zero means DefaultScale.
	Scale float64 `json:"scale,omitempty"`

	// Refresh bypasses the cache and overwrites stored entries.
	Refresh bool `json:"refresh,omitempty"`

	// Config carries style and layout settings. Nil means config.Default().
	Config *config.Config `json:"-"`

	// Logger receives stage progress. Nil means the runner's logger.
	Logger *log.Logger `json:"-"`
}

// ValidateAndSetDefaults checks the options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Input == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "input document required")
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Engine != "" && !ValidEngines[o.Engine] {
		return errors.New(errors.ErrCodeInvalidConfig, "unsupported engine %q", o.Engine)
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	return nil
}

// ValidateFormat checks a single output format.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidConfig, "unsupported format %q", format)
	}
	return nil
}

// ValidateFormats checks a list of output formats. An empty list is valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// labelMode converts the option flag to the graphio label mode.
func (o *Options) labelMode() graphio.LabelMode {
	if o.FullLabels {
		return graphio.LabelFull
	}
	return graphio.LabelShort
}

// collapseTargets resolves the containers to collapse against the document's
// chosen hierarchy, sorted for deterministic cache keys.
func (o *Options) collapseTargets(containerIDs []string) []string {
	if o.CollapseAll {
		out := slices.Clone(containerIDs)
		slices.Sort(out)
		return out
	}
	out := slices.Clone(o.Collapse)
	slices.Sort(out)
	return slices.Compact(out)
}
