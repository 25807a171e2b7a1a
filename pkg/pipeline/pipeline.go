// Package pipeline provides the conversion pipeline shared by the CLI and the
// HTTP API.
//
// A conversion turns a decoded mind-map document into the entries of an
// .xmind container:
//
//  1. Validate: check the input shape against the document schema
//  2. Normalize: build the canonical topic tree with identifiers assigned
//  3. Emit: produce the structured record form and the legacy markup form
//  4. Describe: produce the manifest and metadata files
//  5. Thumbnail: render a preview image (modern layout only)
//
// The Runner ties the stages together and owns the single recovery rule: when
// the thumbnail renderer is unavailable the whole conversion is retried once
// with an empty thumbnail.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.ConvertFile(ctx, "map.json", "map.xmind", pipeline.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Stats.Topics)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mindpack/pkg/archive"
	"github.com/matzehuels/mindpack/pkg/errors"
	"github.com/matzehuels/mindpack/pkg/manifest"
	"github.com/matzehuels/mindpack/pkg/mindmap"
	"github.com/matzehuels/mindpack/pkg/record"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultMaxDepth bounds topic nesting.
	DefaultMaxDepth = mindmap.DefaultMaxDepth

	// DefaultThumbnailDPI is the preview resolution.
	DefaultThumbnailDPI = 72.0

	// DeterministicPrefix prefixes sequential identifiers.
	DeterministicPrefix = "id"
)

// Container layouts.
const (
	ModeModern = "modern"
	ModeLegacy = "legacy"
)

// DefaultMode is the container layout used when none is requested.
const DefaultMode = ModeModern

// ValidModes is the set of supported container layouts.
var ValidModes = map[string]bool{
	ModeModern: true,
	ModeLegacy: true,
}

// =============================================================================
// Options - Conversion Configuration
// =============================================================================

// Options contains all configuration for one conversion.
// This struct supports JSON serialization for API requests.
type Options struct {
	Mode             string `json:"mode,omitempty"`
	NoThumbnail      bool   `json:"no_thumbnail,omitempty"`
	MaxDepth         int    `json:"max_depth,omitempty"`
	PlaceholderTitle string `json:"placeholder_title,omitempty"`
	SheetTitle       string `json:"sheet_title,omitempty"`
	DefaultStructure string `json:"default_structure,omitempty"`
	DeterministicIDs bool   `json:"deterministic_ids,omitempty"`
	SkipSchema       bool   `json:"skip_schema,omitempty"`

	Creator manifest.Creator `json:"creator"`

	// Runtime options (not serialized)
	Logger *log.Logger         `json:"-"`
	IDs    mindmap.IDGenerator `json:"-"` // overrides DeterministicIDs when set
	Clock  func() time.Time    `json:"-"`
}

// Result contains the outputs of a conversion.
type Result struct {
	// Entries are the container files in write order.
	Entries []archive.Entry

	// Document is the normalized topic tree.
	Document *mindmap.Document

	// Modified is the generation time stamped on every entry.
	Modified time.Time

	// Output is the container path, set by ConvertFile.
	Output string

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains conversion statistics.
type Stats struct {
	Topics         int
	Relationships  int
	ThumbnailBytes int
	Retried        bool // thumbnail renderer was unavailable
	ThumbnailTime  time.Duration
	Duration       time.Duration
}

// Write writes the result as a ZIP container to w.
func (r *Result) Write(w io.Writer) error {
	return archive.Write(w, r.Entries, r.Modified)
}

// Names returns the entry names in write order.
func (r *Result) Names() []string {
	return archive.Names(r.Entries)
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateMode checks that a container layout is valid.
func ValidateMode(mode string) error {
	if !ValidModes[mode] {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid mode: %q (must be one of: modern, legacy)", mode)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills unset fields with their defaults.
func (o *Options) SetDefaults() {
	if o.Mode == "" {
		o.Mode = DefaultMode
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.PlaceholderTitle == "" {
		o.PlaceholderTitle = mindmap.DefaultTitle
	}
	if o.SheetTitle == "" {
		o.SheetTitle = record.DefaultSheetTitle
	}
	if o.DefaultStructure == "" {
		o.DefaultStructure = mindmap.DefaultStructureClass
	}
	if o.Creator.Name == "" {
		o.Creator.Name = manifest.DefaultAuthor
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks option values. Call SetDefaults first.
func (o *Options) Validate() error {
	if err := ValidateMode(o.Mode); err != nil {
		return err
	}
	if o.MaxDepth < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_depth must not be negative, got %d", o.MaxDepth)
	}
	return nil
}

// ValidateAndSetDefaults applies defaults and validates.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	if err := o.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

// IsLegacy returns true if the legacy container layout is requested.
func (o *Options) IsLegacy() bool {
	return o.Mode == ModeLegacy
}

// WantsThumbnail returns whether a preview is rendered for this conversion.
func (o *Options) WantsThumbnail() bool {
	return !o.IsLegacy() && !o.NoThumbnail
}

// idGenerator returns the identifier source for one conversion attempt.
// Sequential generators start fresh on every attempt.
func (o *Options) idGenerator() mindmap.IDGenerator {
	switch {
	case o.IDs != nil:
		return o.IDs
	case o.DeterministicIDs:
		return mindmap.NewSequenceGenerator(DeterministicPrefix)
	default:
		return mindmap.NewUUIDGenerator()
	}
}

// normalizer builds a Normalizer for the given identifier source.
func (o *Options) normalizer(ids mindmap.IDGenerator) *mindmap.Normalizer {
	n := mindmap.NewNormalizer(ids)
	n.PlaceholderTitle = o.PlaceholderTitle
	n.DefaultStructure = o.DefaultStructure
	n.MaxDepth = o.MaxDepth
	return n
}
