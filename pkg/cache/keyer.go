package cache

import "fmt"

// Keyer builds cache keys.
type Keyer interface {
	// ThumbnailKey identifies a rendered thumbnail by the hash of its source.
	ThumbnailKey(sourceHash string, opts ThumbnailKeyOpts) string
}

// ThumbnailKeyOpts are the render settings that change thumbnail bytes.
type ThumbnailKeyOpts struct {
	Format string  `json:"format"`
	DPI    float64 `json:"dpi,omitempty"`
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ThumbnailKey returns "thumbnail:<sha256>" over the source hash and options.
func (DefaultKeyer) ThumbnailKey(sourceHash string, opts ThumbnailKeyOpts) string {
	return hashKey("thumbnail", sourceHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix, so several deployments can share one
// Redis or MongoDB instance.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "mindpack:staging:")
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
	if prefix == "" {
		return inner
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ThumbnailKey generates a prefixed thumbnail key.
func (k *ScopedKeyer) ThumbnailKey(sourceHash string, opts ThumbnailKeyOpts) string {
	return k.prefix + k.inner.ThumbnailKey(sourceHash, opts)
}

// String reports the prefix, for logging.
func (k *ScopedKeyer) String() string {
	return fmt.Sprintf("scoped(%q)", k.prefix)
}
