// Package thumbnail renders the preview image stored at
// Thumbnails/thumbnail.png inside a modern XMind container.
//
// The image is an external collaborator of the conversion: the pipeline only
// needs opaque PNG bytes. [Graphviz] draws the topic tree as a left-to-right
// node-link diagram with relationships as dashed edges. [Empty] produces no
// bytes and is the fallback when Graphviz cannot start. [Cached] memoizes any
// renderer in a [cache.Cache] keyed by the diagram source.
//
// A renderer that cannot run at all reports RENDERER_UNAVAILABLE, which the
// pipeline recovers from by retrying once with [Empty].
package thumbnail
