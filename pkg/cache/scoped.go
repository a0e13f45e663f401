package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// This is useful in server deployments where different projects or users
// need separate cache namespaces.
//
// Example usage:
//
//	// Project-specific keys
//	projectKeyer := NewScopedKeyer(NewDefaultKeyer(), "project:abc123:")
//
//	// Global keys
//	globalKeyer := NewDefaultKeyer()
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

// RouteKey generates a prefixed key for routed-path results.
func (k *ScopedKeyer) RouteKey(diagramHash string, opts any) string {
	return k.prefix + k.inner.RouteKey(diagramHash, opts)
}

// BundleKey generates a prefixed key for bundling results.
func (k *ScopedKeyer) BundleKey(diagramHash string, opts any) string {
	return k.prefix + k.inner.BundleKey(diagramHash, opts)
}

// StyleKey generates a prefixed key for styling results.
func (k *ScopedKeyer) StyleKey(diagramHash string, opts any) string {
	return k.prefix + k.inner.StyleKey(diagramHash, opts)
}

// ResultKey generates a prefixed key for complete pipeline results.
func (k *ScopedKeyer) ResultKey(diagramHash string, opts any) string {
	return k.prefix + k.inner.ResultKey(diagramHash, opts)
}
