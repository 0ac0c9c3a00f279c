// Package config loads Flowscope configuration from TOML.
//
// Configuration is optional: every field has a default, and a missing config
// file is not an error. The file controls how semantic edge tags map onto
// visual styles, the node-type color legend, and the Graphviz engine used
// for layout.
//
// Example ~/.config/flowscope/config.toml:
//
//	[layout]
//	engine = "dot"
//
//	[styles.tags]
//	Cycle = "warning"
//	Network = "thick"
//	Unbounded = "highlighted"
//
//	[colors]
//	Transform = "#2563eb"
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/flowscope/pkg/errors"
	"github.com/matzehuels/flowscope/pkg/vizstate"
)

// Config holds all user-tunable settings.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Styles StylesConfig `toml:"styles"`

	// Colors maps node type tags to hex colors for the legend and renderer.
	Colors map[string]string `toml:"colors"`
}

// LayoutConfig controls the external geometry solver.
type LayoutConfig struct {
	// Engine is the Graphviz layout engine ("dot", "neato", "fdp").
	Engine string `toml:"engine"`
}

// StylesConfig controls how edge semantics map to visual styles.
type StylesConfig struct {
	// Tags maps a semantic tag (e.g. "Network") to a style name
	// ("plain", "highlighted", "thick", "warning").
	Tags map[string]string `toml:"tags"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layout: LayoutConfig{Engine: "dot"},
		Styles: StylesConfig{
			Tags: map[string]string{
				"Cycle":     "warning",
				"Network":   "thick",
				"Unbounded": "highlighted",
			},
		},
		Colors: map[string]string{
			"Source":      "#059669",
			"Transform":   "#2563eb",
			"Join":        "#7c3aed",
			"Aggregation": "#d97706",
			"Network":     "#dc2626",
			"Sink":        "#475569",
			"Tee":         "#0891b2",
		},
	}
}

// Load reads a TOML config file and merges it over the defaults. A missing
// file returns the defaults without error; a malformed file returns
// ErrCodeInvalidConfig.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	var file Config
	if _, err := toml.DecodeFile(path, &file); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}

	if file.Layout.Engine != "" {
		cfg.Layout.Engine = file.Layout.Engine
	}
	for tag, style := range file.Styles.Tags {
		if _, err := ParseStyle(style); err != nil {
			return cfg, err
		}
		cfg.Styles.Tags[tag] = style
	}
	for typ, color := range file.Colors {
		cfg.Colors[typ] = color
	}
	return cfg, nil
}

// DefaultPath returns the XDG config file location
// (~/.config/flowscope/config.toml), or "" if no home directory is known.
func DefaultPath() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "flowscope", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "flowscope", "config.toml")
}

// ParseStyle converts a style name to its EdgeStyle value.
func ParseStyle(name string) (vizstate.EdgeStyle, error) {
	switch name {
	case "", "plain":
		return vizstate.StylePlain, nil
	case "highlighted":
		return vizstate.StyleHighlighted, nil
	case "thick":
		return vizstate.StyleThick, nil
	case "warning":
		return vizstate.StyleWarning, nil
	default:
		return vizstate.StylePlain, errors.New(errors.ErrCodeInvalidConfig, "unknown style %q", name)
	}
}

// StyleForTags resolves the style of an edge from its semantic tags: each
// tag is looked up in the mapping and the highest-priority style wins.
func (c Config) StyleForTags(tags []string) vizstate.EdgeStyle {
	styles := make([]vizstate.EdgeStyle, 0, len(tags))
	for _, tag := range tags {
		if name, ok := c.Styles.Tags[tag]; ok {
			if st, err := ParseStyle(name); err == nil {
				styles = append(styles, st)
			}
		}
	}
	return vizstate.AggregateStyle(styles)
}

// ColorFor returns the configured color for a node type, or "" when the type
// has no entry.
func (c Config) ColorFor(nodeType string) string {
	return c.Colors[nodeType]
}
