package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation. Useful
// when several documents or users share one Redis instance and need
// separate cache namespaces.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(docHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}

// Ensure ScopedKeyer implements Keyer.
var _ Keyer = (*ScopedKeyer)(nil)
