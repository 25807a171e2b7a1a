// Package mindmap defines the normalized mind-map model shared by every
// emitter, and the Normalizer that produces it from decoded JSON or YAML.
//
// # Overview
//
// A [Document] holds one root [Topic] and a flat list of [Relationship]
// cross-links. Input documents are loosely shaped: most fields are optional,
// identifiers may be missing and several legacy spellings are accepted. The
// [Normalizer] resolves all of that once, so emitters never re-check optional
// keys:
//
//	n := mindmap.NewNormalizer(mindmap.NewUUIDGenerator())
//	doc, err := n.Normalize(raw)
//
// Missing identifiers are assigned during normalization in pre-order. Every
// emitter reads the same identifier, so a topic keeps one identity across the
// markup and record forms.
//
// # Input shape
//
//	{
//	  "title": "Plan",
//	  "rootTopic": {
//	    "id": "root", "title": "Project", "structure": "org.xmind.ui.logic.right",
//	    "children": {"attached": [{"title": "Scope", "labels": ["q1"]}]},
//	    "notes": {"plain": "kick-off notes"},
//	    "markers": ["priority-high"],
//	    "style": {"svgFill": "#2E86AB", "fo:font-weight": "bold"}
//	  },
//	  "relationships": [{"end1": {"topicId": "a"}, "end2": {"topicId": "b"}, "title": "blocks"}]
//	}
//
// # Traversal
//
// [Walk] folds a tree bottom-up through a [TopicVisitor]; [Each] visits topics
// in pre-order. Both visit each topic exactly once and preserve child order.
// Recursion depth equals tree depth, which the Normalizer bounds with
// [Normalizer.MaxDepth].
package mindmap
