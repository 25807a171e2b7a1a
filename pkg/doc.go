// Package pkg provides the core libraries for mindpack mind-map conversion.
//
// # Overview
//
// mindpack turns a mind-map document (JSON or YAML) into an .xmind container
// that mind-mapping applications can open. The pkg directory is organized into
// three areas:
//
//  1. Document model: [mindmap] decodes, validates and normalizes input
//  2. Emitters: [markup], [record], [manifest] and [thumbnail] produce the
//     container entries
//  3. Orchestration: [pipeline] runs the stages and [archive] packs the result
//
// # Architecture
//
// The data flow through mindpack:
//
//	JSON / YAML document
//	         ↓
//	    [mindmap] package (schema check + normalization)
//	         ↓
//	    [markup] / [record] packages (content.xml, content.json)
//	         ↓
//	    [manifest] + [thumbnail] packages (manifests, metadata, preview)
//	         ↓
//	    [archive] package (ZIP container)
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/mindpack/pkg/mindmap"
//	    "github.com/matzehuels/mindpack/pkg/pipeline"
//	)
//
//	raw, _ := mindmap.Import("roadmap.json")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	defer runner.Close()
//
//	result, _ := runner.Convert(context.Background(), raw, pipeline.Options{})
//	_ = result.Write(out)
//
// # Main Packages
//
// ## Document Model
//
// [mindmap] - Decoding (JSON and YAML), JSON Schema validation with located
// issues, and normalization into a fully populated topic tree with generated
// identifiers and resolved relationships.
//
// ## Emitters
//
// [markup] - The content.xml workbook, written by both container layouts.
//
// [record] - The content.json sheet record used by current applications.
//
// [manifest] - manifest.json, metadata.json, and the legacy
// META-INF/manifest.xml and meta.xml entries.
//
// [thumbnail] - Preview rendering through Graphviz, with a cache decorator and
// an empty fallback.
//
// ## Infrastructure
//
// [archive] - ZIP container writing and reading.
//
// [cache] - Thumbnail cache backends: file, Redis, MongoDB and a no-op cache.
//
// [config] - TOML configuration with defaults and validation.
//
// [watch] - Debounced file watching for `mindpack --watch`.
//
// [errors] - Coded errors shared by the CLI and the HTTP API.
//
// [observability] - Conversion and HTTP hooks.
//
// [buildinfo] - Version information set at build time.
package pkg
