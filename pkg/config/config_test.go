package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/flowscope/pkg/errors"
	"github.com/matzehuels/flowscope/pkg/vizstate"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if cfg.Layout.Engine != "dot" {
		t.Errorf("Engine = %q, want dot", cfg.Layout.Engine)
	}
	if cfg.Styles.Tags["Cycle"] != "warning" {
		t.Errorf("Tags[Cycle] = %q, want warning", cfg.Styles.Tags["Cycle"])
	}
	if cfg.ColorFor("Transform") == "" {
		t.Error("expected default color for Transform")
	}
	if cfg.ColorFor("nonexistent") != "" {
		t.Error("expected empty color for unknown type")
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Layout.Engine != "dot" {
		t.Errorf("Engine = %q, want default", cfg.Layout.Engine)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Styles.Tags["Network"] != "thick" {
		t.Error("expected defaults for empty path")
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[layout]
engine = "neato"

[styles.tags]
Retry = "highlighted"

[colors]
Transform = "#000000"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Layout.Engine != "neato" {
		t.Errorf("Engine = %q, want neato", cfg.Layout.Engine)
	}
	if cfg.Styles.Tags["Retry"] != "highlighted" {
		t.Error("expected new tag mapping merged in")
	}
	if cfg.Styles.Tags["Cycle"] != "warning" {
		t.Error("expected default tag mapping preserved")
	}
	if cfg.ColorFor("Transform") != "#000000" {
		t.Errorf("ColorFor(Transform) = %q, want override", cfg.ColorFor("Transform"))
	}
	if cfg.ColorFor("Source") == "" {
		t.Error("expected default color preserved")
	}
}

func TestLoadRejectsBadStyle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[styles.tags]
Cycle = "blinking"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Fatalf("expected invalid config error, got %v", err)
	}
}

func TestLoadMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[layout\nengine="), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Fatalf("expected invalid config error, got %v", err)
	}
}

func TestParseStyle(t *testing.T) {
	tests := []struct {
		name  string
		want  vizstate.EdgeStyle
		isErr bool
	}{
		{"", vizstate.StylePlain, false},
		{"plain", vizstate.StylePlain, false},
		{"highlighted", vizstate.StyleHighlighted, false},
		{"thick", vizstate.StyleThick, false},
		{"warning", vizstate.StyleWarning, false},
		{"bogus", vizstate.StylePlain, true},
	}
	for _, tt := range tests {
		got, err := ParseStyle(tt.name)
		if (err != nil) != tt.isErr {
			t.Errorf("ParseStyle(%q) err = %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("ParseStyle(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestStyleForTags(t *testing.T) {
	cfg := Default()

	if got := cfg.StyleForTags(nil); got != vizstate.StylePlain {
		t.Errorf("no tags = %v, want plain", got)
	}
	if got := cfg.StyleForTags([]string{"Unknown"}); got != vizstate.StylePlain {
		t.Errorf("unmapped tag = %v, want plain", got)
	}
	if got := cfg.StyleForTags([]string{"Unbounded"}); got != vizstate.StyleHighlighted {
		t.Errorf("Unbounded = %v, want highlighted", got)
	}
	if got := cfg.StyleForTags([]string{"Unbounded", "Cycle", "Network"}); got != vizstate.StyleWarning {
		t.Errorf("mixed tags = %v, want warning", got)
	}
}
