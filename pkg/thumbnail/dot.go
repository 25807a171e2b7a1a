package thumbnail

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/mindpack/pkg/mindmap"
)

// DefaultRootFill colours the root node when its style has no fill.
const DefaultRootFill = "#E8F1F8"

// ToDOT converts a document to Graphviz DOT.
//
// Nodes are named t0, t1, ... in pre-order so the output depends only on the
// tree's shape and titles, not on generated identifiers. This keeps cache keys
// stable across conversions of the same input.
func ToDOT(doc *mindmap.Document, dpi float64) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"white\";\n")
	if dpi > 0 {
		fmt.Fprintf(&buf, "  dpi=%g;\n", dpi)
	}
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowhead=none, color=\"#5B6770\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	if doc == nil || doc.Root == nil {
		buf.WriteString("}\n")
		return buf.String()
	}

	names := make(map[*mindmap.Topic]string)
	byID := make(map[string]string)
	var edges []string

	mindmap.Each(doc.Root, func(t, parent *mindmap.Topic, _ int) bool {
		name := fmt.Sprintf("t%d", len(names))
		names[t] = name
		byID[t.ID] = name

		attrs := []string{"label=" + quote(t.Title)}
		if parent == nil {
			attrs = append(attrs, "fillcolor="+quote(rootFill(t)), "fontsize=18", "penwidth=2")
		} else {
			edges = append(edges, fmt.Sprintf("  %s -> %s;\n", names[parent], name))
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", name, strings.Join(attrs, ", "))
		return true
	})

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}

	for _, r := range doc.Relationships {
		from, ok1 := byID[r.End1]
		to, ok2 := byID[r.End2]
		if !ok1 || !ok2 {
			continue
		}
		attrs := []string{"style=dashed", "constraint=false", "arrowhead=normal", "color=\"#A0A8AE\""}
		if r.Title != nil && *r.Title != "" {
			attrs = append(attrs, "label="+quote(*r.Title), "fontsize=10")
		}
		fmt.Fprintf(&buf, "  %s -> %s [%s];\n", from, to, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func rootFill(t *mindmap.Topic) string {
	for _, p := range t.Style {
		if p.Namespace == mindmap.NamespaceSVG && p.Name == "fill" && p.Value != "" {
			return p.Value
		}
	}
	return DefaultRootFill
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", "")

func quote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}
