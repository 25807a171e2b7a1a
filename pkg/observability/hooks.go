// Package observability provides hooks for metrics, tracing, and logging.
//
// Nothing here depends on a metrics or tracing backend. A binary that wants
// instrumentation registers its own implementations at startup; until then
// every hook is a no-op.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetConvertHooks(&myConvertHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Convert().OnConvertStart(ctx, "modern")
//	// ... convert ...
//	observability.Convert().OnConvertComplete(ctx, "modern", topics, duration, err)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// =============================================================================
// Convert Hooks
// =============================================================================

// ConvertHooks receives events from the conversion pipeline.
type ConvertHooks interface {
	OnConvertStart(ctx context.Context, mode string)
	OnConvertComplete(ctx context.Context, mode string, topics int, duration time.Duration, err error)

	// OnThumbnailComplete fires after every render attempt, cached or not.
	OnThumbnailComplete(ctx context.Context, size int, duration time.Duration, err error)

	// OnRetry records the single retry after the renderer was unavailable.
	OnRetry(ctx context.Context, reason error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the API server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records a completed response.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopConvertHooks is a no-op implementation of ConvertHooks.
type NoopConvertHooks struct{}

func (NoopConvertHooks) OnConvertStart(context.Context, string) {}
func (NoopConvertHooks) OnConvertComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopConvertHooks) OnThumbnailComplete(context.Context, int, time.Duration, error) {}
func (NoopConvertHooks) OnRetry(context.Context, error)                                 {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Registry
// =============================================================================

// slot holds one registered hook set. Reads are lock-free so hot paths such as
// the HTTP middleware never contend with registration.
type slot[T any] struct {
	v    atomic.Pointer[T]
	noop T
}

func (s *slot[T]) get() T {
	if p := s.v.Load(); p != nil {
		return *p
	}
	return s.noop
}

func (s *slot[T]) set(h T) { s.v.Store(&h) }

func (s *slot[T]) reset() { s.v.Store(nil) }

var (
	convertSlot = slot[ConvertHooks]{noop: NoopConvertHooks{}}
	cacheSlot   = slot[CacheHooks]{noop: NoopCacheHooks{}}
	httpSlot    = slot[HTTPHooks]{noop: NoopHTTPHooks{}}
)

// SetConvertHooks registers conversion hooks. A nil h is ignored.
func SetConvertHooks(h ConvertHooks) {
	if h != nil {
		convertSlot.set(h)
	}
}

// SetCacheHooks registers thumbnail cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cacheSlot.set(h)
	}
}

// SetHTTPHooks registers API server hooks. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		httpSlot.set(h)
	}
}

// Convert returns the registered conversion hooks.
func Convert() ConvertHooks { return convertSlot.get() }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return cacheSlot.get() }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return httpSlot.get() }

// Reset restores the no-op hooks.
func Reset() {
	convertSlot.reset()
	cacheSlot.reset()
	httpSlot.reset()
}
