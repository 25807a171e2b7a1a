package markup

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/matzehuels/mindpack/pkg/mindmap"
)

// Namespace declarations carried by the root element.
const (
	NamespaceContent = "urn:xmind:xmap:xmlns:content:2.0"
	NamespaceFO      = "http://www.w3.org/1999/XSL/Format"
	NamespaceSVG     = "http://www.w3.org/2000/svg"
	Version          = "2.0"
)

type xmapContent struct {
	XMLName  xml.Name `xml:"xmap-content"`
	Xmlns    string   `xml:"xmlns,attr"`
	XmlnsFO  string   `xml:"xmlns:fo,attr"`
	XmlnsSVG string   `xml:"xmlns:svg,attr"`
	Version  string   `xml:"version,attr"`
	Sheet    sheet    `xml:"sheet"`
}

type sheet struct {
	ID            string         `xml:"id,attr"`
	RootTopic     *topic         `xml:"root-topic"`
	Relationships []relationship `xml:"relationship"`
}

// topic is rendered as <root-topic> or <topic> depending on XMLName.
type topic struct {
	XMLName        xml.Name
	ID             string    `xml:"id,attr"`
	StructureClass string    `xml:"structure-class,attr,omitempty"`
	Title          string    `xml:"title"`
	Children       *children `xml:"children"`
	Notes          *notes    `xml:"notes"`
	Labels         *labels   `xml:"labels"`
	Markers        *markers  `xml:"markers"`
	Style          *style    `xml:"style"`
}

type children struct {
	Topics topics `xml:"topics"`
}

type topics struct {
	Type   string   `xml:"type,attr"`
	Topics []*topic `xml:"topic"`
}

type notes struct {
	Plain string `xml:"plain"`
}

// labels and markers are pointers so topics without any omit the wrapper.
type labels struct {
	Label []string `xml:"label"`
}

type markers struct {
	Marker []marker `xml:"marker"`
}

type marker struct {
	ID string `xml:"marker-id,attr"`
}

type style struct {
	Properties []styleProperty `xml:"property"`
}

// styleProperty is a prefixed leaf such as <svg:fill> or <fo:font-size>.
type styleProperty struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

type relationship struct {
	ID    string   `xml:"id,attr"`
	End1  endpoint `xml:"end1"`
	End2  endpoint `xml:"end2"`
	Title *string  `xml:"title"`
}

type endpoint struct {
	Topic struct {
		ID string `xml:"id,attr"`
	} `xml:"topic"`
}

// visitor builds markup topics bottom-up.
type visitor struct{}

func (visitor) VisitTopic(t, parent *mindmap.Topic, kids []*topic) *topic {
	el := &topic{
		XMLName: xml.Name{Local: "topic"},
		ID:      t.ID,
		Title:   t.Title,
	}
	if parent == nil {
		el.XMLName.Local = "root-topic"
		el.StructureClass = t.StructureClass
		if el.StructureClass == "" {
			el.StructureClass = mindmap.DefaultStructureClass
		}
	}
	if len(kids) > 0 {
		el.Children = &children{Topics: topics{Type: "attached", Topics: kids}}
	}
	if t.Notes != nil {
		el.Notes = &notes{Plain: *t.Notes}
	}
	if len(t.Labels) > 0 {
		el.Labels = &labels{Label: t.Labels}
	}
	if len(t.Markers) > 0 {
		el.Markers = &markers{Marker: make([]marker, 0, len(t.Markers))}
		for _, id := range t.Markers {
			el.Markers.Marker = append(el.Markers.Marker, marker{ID: id})
		}
	}
	if t.Style != nil {
		el.Style = &style{Properties: make([]styleProperty, 0, len(t.Style))}
		for _, p := range t.Style {
			el.Style.Properties = append(el.Style.Properties, styleProperty{
				XMLName: xml.Name{Local: p.QualifiedName()},
				Value:   p.Value,
			})
		}
	}
	return el
}

// Write encodes doc as content.xml to w. The sheet identifier comes from ids;
// topic and relationship identifiers are taken from the document.
func Write(doc *mindmap.Document, ids mindmap.IDGenerator, w io.Writer) error {
	if doc == nil || doc.Root == nil {
		return fmt.Errorf("markup: document has no root topic")
	}
	out := xmapContent{
		Xmlns:    NamespaceContent,
		XmlnsFO:  NamespaceFO,
		XmlnsSVG: NamespaceSVG,
		Version:  Version,
		Sheet: sheet{
			ID:        ids.NewID(),
			RootTopic: mindmap.Walk[*topic](doc.Root, visitor{}),
		},
	}
	for _, r := range doc.Relationships {
		rel := relationship{ID: r.ID, Title: r.Title}
		rel.End1.Topic.ID = r.End1
		rel.End2.Topic.ID = r.End2
		out.Sheet.Relationships = append(out.Sheet.Relationships, rel)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	enc := xml.NewEncoder(w)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// Emit returns the content.xml bytes for doc.
func Emit(doc *mindmap.Document, ids mindmap.IDGenerator) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(doc, ids, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
