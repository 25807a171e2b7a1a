package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mindpack/pkg/archive"
	"github.com/matzehuels/mindpack/pkg/cache"
	"github.com/matzehuels/mindpack/pkg/errors"
	"github.com/matzehuels/mindpack/pkg/manifest"
	"github.com/matzehuels/mindpack/pkg/markup"
	"github.com/matzehuels/mindpack/pkg/mindmap"
	"github.com/matzehuels/mindpack/pkg/observability"
	"github.com/matzehuels/mindpack/pkg/record"
	"github.com/matzehuels/mindpack/pkg/thumbnail"
)

// Runner encapsulates conversion with a cached thumbnail renderer.
// Both CLI and API use this to share the conversion and recovery logic.
//
// The Runner holds no per-conversion state. Multiple goroutines can safely
// use the same Runner with different options.
type Runner struct {
	Cache    cache.Cache
	Renderer thumbnail.Renderer
	Logger   *log.Logger
}

// NewRunner creates a runner whose thumbnails are rendered with Graphviz and
// memoized in c.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Renderer: NewThumbnailRenderer(c, keyer, DefaultThumbnailDPI),
		Logger:   logger,
	}
}

// NewThumbnailRenderer returns a Graphviz renderer at dpi wrapped in a cache.
func NewThumbnailRenderer(c cache.Cache, keyer cache.Keyer, dpi float64) thumbnail.Renderer {
	return thumbnail.NewCached(thumbnail.NewGraphviz(dpi), c, keyer, dpi)
}

// Close releases the runner's cache.
func (r *Runner) Close() error {
	return r.Cache.Close()
}

// Convert turns a decoded document into container entries.
//
// If the thumbnail renderer reports RENDERER_UNAVAILABLE, the conversion is
// logged, retried once with an empty thumbnail and marked as retried.
func (r *Runner) Convert(ctx context.Context, raw any, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	hooks := observability.Convert()
	hooks.OnConvertStart(ctx, opts.Mode)
	start := time.Now()

	result, err := r.convert(ctx, raw, opts, r.renderer())
	if errors.Is(err, errors.ErrCodeRendererUnavailable) {
		opts.Logger.Warn("thumbnail renderer unavailable, retrying with empty thumbnail", "err", err)
		hooks.OnRetry(ctx, err)
		result, err = r.convert(ctx, raw, opts, thumbnail.Empty{})
		if result != nil {
			result.Stats.Retried = true
		}
	}

	duration := time.Since(start)
	topics := 0
	if result != nil {
		topics = result.Stats.Topics
	}
	hooks.OnConvertComplete(ctx, opts.Mode, topics, duration, err)
	if err != nil {
		return nil, err
	}
	result.Stats.Duration = duration

	opts.Logger.Info("converted document",
		"mode", opts.Mode,
		"topics", result.Stats.Topics,
		"relationships", result.Stats.Relationships,
		"thumbnail", result.Stats.ThumbnailBytes,
		"duration", duration)

	return result, nil
}

// ConvertFile converts the document at in and writes the container to out.
// A missing input is reported before any conversion work, so no output file
// is created for it.
func (r *Runner) ConvertFile(ctx context.Context, in, out string, opts Options) (*Result, error) {
	if err := errors.ValidateInputPath(in); err != nil {
		return nil, err
	}
	if err := errors.ValidateOutputPath(out); err != nil {
		return nil, err
	}

	raw, err := mindmap.Import(in)
	if err != nil {
		return nil, err
	}

	result, err := r.Convert(ctx, raw, opts)
	if err != nil {
		return nil, err
	}

	if err := archive.WriteFile(out, result.Entries, result.Modified); err != nil {
		return nil, err
	}
	result.Output = out

	r.Logger.Debug("wrote container", "path", out, "entries", len(result.Entries))
	return result, nil
}

// Check runs schema validation and normalization only.
func (r *Runner) Check(raw any, opts Options) (*mindmap.Document, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return r.normalize(raw, opts, opts.idGenerator())
}

// convert runs one conversion attempt with the given renderer.
func (r *Runner) convert(ctx context.Context, raw any, opts Options, renderer thumbnail.Renderer) (*Result, error) {
	ids := opts.idGenerator()
	doc, err := r.normalize(raw, opts, ids)
	if err != nil {
		return nil, err
	}

	now := opts.Clock()
	result := &Result{
		Document: doc,
		Modified: now,
		Stats: Stats{
			Topics:        doc.TopicCount(),
			Relationships: len(doc.Relationships),
		},
	}

	contentXML, err := markup.Emit(doc, ids)
	if err != nil {
		return nil, fmt.Errorf("emit markup: %w", err)
	}
	meta := manifest.NewMetadata(now, opts.Creator)

	if opts.IsLegacy() {
		manifestXML, err := manifest.ManifestXML(manifest.LegacyManifestPaths())
		if err != nil {
			return nil, fmt.Errorf("manifest: %w", err)
		}
		metaXML, err := manifest.MetaXML(meta)
		if err != nil {
			return nil, fmt.Errorf("metadata: %w", err)
		}
		result.Entries = archive.LegacyEntries(archive.LegacyBundle{
			ContentXML:  contentXML,
			ManifestXML: manifestXML,
			MetaXML:     metaXML,
		})
		return result, nil
	}

	contentJSON, err := record.Emit(doc, record.Options{IDs: ids, Now: now, SheetTitle: opts.SheetTitle})
	if err != nil {
		return nil, fmt.Errorf("emit records: %w", err)
	}
	manifestJSON, err := manifest.ManifestJSON(manifest.ModernManifestPaths())
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	metadataJSON, err := manifest.MetadataJSON(meta)
	if err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}

	var thumb []byte
	if opts.WantsThumbnail() {
		thumbStart := time.Now()
		thumb, err = renderer.Render(ctx, doc)
		result.Stats.ThumbnailTime = time.Since(thumbStart)
		observability.Convert().OnThumbnailComplete(ctx, len(thumb), result.Stats.ThumbnailTime, err)
		if err != nil {
			return nil, fmt.Errorf("thumbnail: %w", err)
		}
		result.Stats.ThumbnailBytes = len(thumb)
		opts.Logger.Debug("rendered thumbnail", "bytes", len(thumb), "duration", result.Stats.ThumbnailTime)
	}

	result.Entries = archive.ModernEntries(archive.Bundle{
		ContentJSON:  contentJSON,
		ManifestJSON: manifestJSON,
		MetadataJSON: metadataJSON,
		ContentXML:   contentXML,
		Thumbnail:    thumb,
	})
	return result, nil
}

func (r *Runner) normalize(raw any, opts Options, ids mindmap.IDGenerator) (*mindmap.Document, error) {
	if !opts.SkipSchema {
		if err := mindmap.Validate(raw); err != nil {
			return nil, err
		}
	}
	doc, err := opts.normalizer(ids).Normalize(raw)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("normalized document", "topics", doc.TopicCount(), "relationships", len(doc.Relationships))
	return doc, nil
}

func (r *Runner) renderer() thumbnail.Renderer {
	if r.Renderer == nil {
		return thumbnail.Empty{}
	}
	return r.Renderer
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
