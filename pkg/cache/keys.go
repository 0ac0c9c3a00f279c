package cache

import "strings"

// Keyer builds cache keys for the pipeline's cacheable stages. Keys must be
// deterministic: equal inputs and options yield equal keys.
type Keyer interface {
	// LayoutKey keys computed geometry for a document hash under the given
	// layout options.
	LayoutKey(docHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered artifact derived from a laid-out state.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts captures everything that changes computed geometry.
type LayoutKeyOpts struct {
	// Engine is the Graphviz layout engine.
	Engine string `json:"engine"`

	// Hierarchy is the selected hierarchy choice.
	Hierarchy string `json:"hierarchy"`

	// Collapsed lists the collapsed container ids, sorted.
	Collapsed []string `json:"collapsed"`
}

// ArtifactKeyOpts captures everything that changes rendered output.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed"`
	Legend   bool   `json:"legend"`
}

// DefaultKeyer hashes options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// LayoutKey generates a key for layout caching.
func (k *DefaultKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", docHash, opts.Engine, opts.Hierarchy, strings.Join(opts.Collapsed, ","))
}

// ArtifactKey generates a key for artifact caching.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts.Format, opts.Detailed, opts.Legend)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
