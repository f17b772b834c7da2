package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// The serve command uses it to keep caches of different datasets apart
// when they share one Redis instance.
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

// NetworkKey generates a prefixed key for a built network.
func (k *ScopedKeyer) NetworkKey(batchHash string, opts NetworkKeyOpts) string {
	return k.prefix + k.inner.NetworkKey(batchHash, opts)
}

// ProjectionKey generates a prefixed key for a projection result.
func (k *ScopedKeyer) ProjectionKey(networkKey string, opts ProjectionKeyOpts) string {
	return k.prefix + k.inner.ProjectionKey(networkKey, opts)
}
