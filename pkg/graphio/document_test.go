package graphio

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/flowscope/pkg/errors"
)

const sampleDoc = `{
  "nodes": [
    {"id": "n1", "nodeType": "Source", "label": "source_iter", "shortLabel": "src", "fullLabel": "source_iter([1,2,3])"},
    {"id": "n2", "nodeType": "Transform", "label": "map"},
    {"id": "n3", "nodeType": "Sink", "label": "for_each"}
  ],
  "edges": [
    {"id": "e1", "source": "n1", "target": "n2", "semanticTags": ["Unbounded"]},
    {"id": "e2", "source": "n2", "target": "n3", "semanticTags": ["Network", "Cycle"]}
  ],
  "hierarchyChoices": [
    {"id": "location", "name": "Location", "children": [
      {"id": "loc0", "name": "Process 0", "children": []},
      {"id": "loc1", "name": "Process 1", "children": []}
    ]},
    {"id": "backtrace", "name": "Backtrace", "children": [
      {"id": "bt_root", "name": "main", "children": [
        {"id": "bt_inner", "name": "pipeline", "children": []}
      ]}
    ]}
  ],
  "nodeAssignments": {
    "location": {"n1": "loc0", "n2": "loc0", "n3": "loc1"},
    "backtrace": {"n1": "bt_root", "n2": "bt_inner", "n3": "bt_inner"}
  },
  "selectedHierarchy": "location"
}`

func TestParse_Sample(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Nodes) != 3 || len(doc.Edges) != 2 {
		t.Fatalf("got %d nodes %d edges", len(doc.Nodes), len(doc.Edges))
	}
	if doc.SelectedHierarchy != "location" {
		t.Errorf("SelectedHierarchy = %q", doc.SelectedHierarchy)
	}
	if got := doc.Nodes[0].DisplayLabel(); got != "src" {
		t.Errorf("DisplayLabel = %q, want short label", got)
	}
	if doc.Summary() != "3 nodes, 2 edges, 2 hierarchies" {
		t.Errorf("Summary = %q", doc.Summary())
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse(strings.NewReader("{nodes: ["))
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Fatalf("expected file not found, got %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code errors.Code
	}{
		{
			"duplicate node",
			`{"nodes":[{"id":"a"},{"id":"a"}]}`,
			errors.ErrCodeInvalidDocument,
		},
		{
			"empty node id",
			`{"nodes":[{"id":""}]}`,
			errors.ErrCodeInvalidDocument,
		},
		{
			"duplicate edge",
			`{"nodes":[{"id":"a"},{"id":"b"}],"edges":[{"id":"e","source":"a","target":"b"},{"id":"e","source":"b","target":"a"}]}`,
			errors.ErrCodeInvalidDocument,
		},
		{
			"dangling source",
			`{"nodes":[{"id":"a"}],"edges":[{"id":"e","source":"ghost","target":"a"}]}`,
			errors.ErrCodeUnknownNode,
		},
		{
			"dangling target",
			`{"nodes":[{"id":"a"}],"edges":[{"id":"e","source":"a","target":"ghost"}]}`,
			errors.ErrCodeUnknownNode,
		},
		{
			"duplicate choice",
			`{"nodes":[],"hierarchyChoices":[{"id":"h"},{"id":"h"}]}`,
			errors.ErrCodeInvalidHierarchy,
		},
		{
			"container twice in one choice",
			`{"nodes":[],"hierarchyChoices":[{"id":"h","children":[{"id":"c"},{"id":"c"}]}]}`,
			errors.ErrCodeInvalidHierarchy,
		},
		{
			"container collides with node",
			`{"nodes":[{"id":"x"}],"hierarchyChoices":[{"id":"h","children":[{"id":"x"}]}]}`,
			errors.ErrCodeInvalidHierarchy,
		},
		{
			"selected hierarchy missing",
			`{"nodes":[],"selectedHierarchy":"ghost"}`,
			errors.ErrCodeInvalidHierarchy,
		},
		{
			"assignment to unknown choice",
			`{"nodes":[{"id":"a"}],"nodeAssignments":{"ghost":{"a":"c"}}}`,
			errors.ErrCodeInvalidHierarchy,
		},
		{
			"assignment of unknown node",
			`{"nodes":[{"id":"a"}],"hierarchyChoices":[{"id":"h","children":[{"id":"c"}]}],"nodeAssignments":{"h":{"ghost":"c"}}}`,
			errors.ErrCodeUnknownNode,
		},
		{
			"assignment to unknown container",
			`{"nodes":[{"id":"a"}],"hierarchyChoices":[{"id":"h","children":[{"id":"c"}]}],"nodeAssignments":{"h":{"a":"ghost"}}}`,
			errors.ErrCodeInvalidHierarchy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			if !errors.Is(err, tt.code) {
				t.Fatalf("got %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestHierarchyNode_KeyAlias(t *testing.T) {
	doc, err := Parse(strings.NewReader(`{
		"nodes":[{"id":"a"}],
		"hierarchyChoices":[{"id":"h","children":[{"key":"loc0","name":"Process 0"}]}],
		"nodeAssignments":{"h":{"a":"loc0"}}
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := doc.HierarchyChoices[0].Children[0].EffectiveID(); got != "loc0" {
		t.Errorf("EffectiveID = %q, want loc0", got)
	}
}

func TestChoice_Selection(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if c, ok := doc.Choice(""); !ok || c.ID != "location" {
		t.Errorf("Choice(\"\") = %v %v, want selected hierarchy", c.ID, ok)
	}
	if c, ok := doc.Choice("backtrace"); !ok || c.ID != "backtrace" {
		t.Errorf("Choice(backtrace) = %v %v", c.ID, ok)
	}
	if _, ok := doc.Choice("ghost"); ok {
		t.Error("expected unknown choice to report false")
	}

	// Without a selected hierarchy, the first choice wins.
	doc.SelectedHierarchy = ""
	if c, ok := doc.Choice(""); !ok || c.ID != "location" {
		t.Errorf("first-choice fallback = %v %v", c.ID, ok)
	}
}
