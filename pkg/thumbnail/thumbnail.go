package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/mindpack/pkg/cache"
	"github.com/matzehuels/mindpack/pkg/errors"
	"github.com/matzehuels/mindpack/pkg/mindmap"
	"github.com/matzehuels/mindpack/pkg/observability"
)

// Renderer produces thumbnail bytes for a document.
type Renderer interface {
	Render(ctx context.Context, doc *mindmap.Document) ([]byte, error)
}

// RendererFunc adapts a function to [Renderer].
type RendererFunc func(ctx context.Context, doc *mindmap.Document) ([]byte, error)

// Render calls f.
func (f RendererFunc) Render(ctx context.Context, doc *mindmap.Document) ([]byte, error) {
	return f(ctx, doc)
}

// Empty renders nothing. Its output is written as a zero-length entry.
type Empty struct{}

// Render returns no bytes.
func (Empty) Render(context.Context, *mindmap.Document) ([]byte, error) {
	return nil, nil
}

// Graphviz renders the topic tree to PNG with go-graphviz.
type Graphviz struct {
	// DPI sets the output resolution. Zero uses the Graphviz default (96).
	DPI float64
}

// NewGraphviz returns a Graphviz renderer at the given resolution.
func NewGraphviz(dpi float64) *Graphviz {
	return &Graphviz{DPI: dpi}
}

// Render draws doc as a PNG.
func (g *Graphviz) Render(ctx context.Context, doc *mindmap.Document) ([]byte, error) {
	return RenderPNG(ctx, ToDOT(doc, g.DPI))
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
// A Graphviz instance that cannot be created is reported as RENDERER_UNAVAILABLE.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRendererUnavailable, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// Cached memoizes an inner renderer. Keys hash the DOT source of the document,
// so two conversions of the same tree share one entry.
type Cached struct {
	Inner Renderer
	Cache cache.Cache
	Keyer cache.Keyer
	TTL   time.Duration
	DPI   float64
}

// NewCached wraps inner. A nil keyer uses [cache.DefaultKeyer]; a nil cache
// disables caching.
func NewCached(inner Renderer, c cache.Cache, keyer cache.Keyer, dpi float64) *Cached {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Cached{Inner: inner, Cache: c, Keyer: keyer, TTL: cache.TTLThumbnail, DPI: dpi}
}

// Render returns the cached thumbnail or renders and stores it.
// Cache failures fall through to rendering; render errors are not cached.
func (c *Cached) Render(ctx context.Context, doc *mindmap.Document) ([]byte, error) {
	source := cache.Hash([]byte(ToDOT(doc, c.DPI)))
	key := c.Keyer.ThumbnailKey(source, cache.ThumbnailKeyOpts{Format: "png", DPI: c.DPI})
	hooks := observability.Cache()

	if data, hit, err := c.Cache.Get(ctx, key); err == nil && hit {
		hooks.OnCacheHit(ctx, "thumbnail")
		return data, nil
	}
	hooks.OnCacheMiss(ctx, "thumbnail")

	data, err := c.Inner.Render(ctx, doc)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		if err := c.Cache.Set(ctx, key, data, c.TTL); err == nil {
			hooks.OnCacheSet(ctx, "thumbnail", len(data))
		}
	}
	return data, nil
}

var (
	_ Renderer = Empty{}
	_ Renderer = (*Graphviz)(nil)
	_ Renderer = (*Cached)(nil)
	_ Renderer = RendererFunc(nil)
)
