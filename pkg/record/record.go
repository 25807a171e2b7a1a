package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/matzehuels/mindpack/pkg/mindmap"
)

// DefaultSheetTitle names the sheet when the document has no title.
const DefaultSheetTitle = "Sheet 1"

// Record class discriminators.
const (
	ClassSheet        = "sheet"
	ClassTopic        = "topic"
	ClassRelationship = "relationship"
)

// Options configures a single emission.
type Options struct {
	// IDs issues the sheet and style identifiers. Defaults to UUIDs.
	IDs mindmap.IDGenerator

	// Now is the generation timestamp. Defaults to time.Now().
	Now time.Time

	// SheetTitle is used when the document has no title. Defaults to [DefaultSheetTitle].
	SheetTitle string
}

type sheetRecord struct {
	ID            string               `json:"id"`
	Class         string               `json:"class"`
	Title         string               `json:"title"`
	ParentID      *string              `json:"parentId"`
	Timestamp     int64                `json:"timestamp"`
	RootTopic     *topicRecord         `json:"rootTopic"`
	Relationships []relationshipRecord `json:"relationships"`
}

type topicRecord struct {
	ID             string          `json:"id"`
	Class          string          `json:"class"`
	Title          string          `json:"title"`
	StructureClass string          `json:"structureClass,omitempty"`
	ParentID       string          `json:"parentId,omitempty"`
	Children       *childrenRecord `json:"children,omitempty"`
	Notes          *notesRecord    `json:"notes,omitempty"`
	Labels         []string        `json:"labels,omitempty"`
	Markers        []markerRecord  `json:"markers,omitempty"`
	Style          *styleRecord    `json:"style,omitempty"`
}

type childrenRecord struct {
	Attached []*topicRecord `json:"attached"`
}

type notesRecord struct {
	Plain struct {
		Content string `json:"content"`
	} `json:"plain"`
}

type markerRecord struct {
	MarkerID string `json:"markerId"`
}

type styleRecord struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}

type relationshipRecord struct {
	ID    string         `json:"id"`
	Class string         `json:"class"`
	Title *string        `json:"title,omitempty"`
	End1  endpointRecord `json:"end1"`
	End2  endpointRecord `json:"end2"`
}

type endpointRecord struct {
	TopicID string `json:"topicId"`
}

// visitor builds topic records bottom-up, linking each child to its parent.
type visitor struct {
	ids mindmap.IDGenerator
}

func (v visitor) VisitTopic(t, parent *mindmap.Topic, kids []*topicRecord) *topicRecord {
	rec := &topicRecord{
		ID:     t.ID,
		Class:  ClassTopic,
		Title:  t.Title,
		Labels: t.Labels,
	}
	if parent == nil {
		rec.StructureClass = t.StructureClass
		if rec.StructureClass == "" {
			rec.StructureClass = mindmap.DefaultStructureClass
		}
	} else {
		rec.ParentID = parent.ID
	}
	if len(kids) > 0 {
		rec.Children = &childrenRecord{Attached: kids}
	}
	if t.Notes != nil {
		rec.Notes = &notesRecord{}
		rec.Notes.Plain.Content = *t.Notes
	}
	for _, id := range t.Markers {
		rec.Markers = append(rec.Markers, markerRecord{MarkerID: id})
	}
	if t.Style != nil {
		rec.Style = &styleRecord{ID: v.ids.NewID(), Properties: make(map[string]string, len(t.Style))}
		for _, p := range t.Style {
			rec.Style.Properties[p.QualifiedName()] = p.Value
		}
	}
	return rec
}

// Write encodes doc as content.json to w, pretty-printed with two-space
// indentation and without HTML escaping.
func Write(doc *mindmap.Document, opts Options, w io.Writer) error {
	if doc == nil || doc.Root == nil {
		return fmt.Errorf("record: document has no root topic")
	}
	if opts.IDs == nil {
		opts.IDs = mindmap.NewUUIDGenerator()
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.SheetTitle == "" {
		opts.SheetTitle = DefaultSheetTitle
	}

	sheet := sheetRecord{
		ID:            opts.IDs.NewID(),
		Class:         ClassSheet,
		Title:         doc.Title,
		Timestamp:     opts.Now.UnixMilli(),
		RootTopic:     mindmap.Walk[*topicRecord](doc.Root, visitor{ids: opts.IDs}),
		Relationships: make([]relationshipRecord, 0, len(doc.Relationships)),
	}
	if sheet.Title == "" {
		sheet.Title = opts.SheetTitle
	}
	for _, r := range doc.Relationships {
		sheet.Relationships = append(sheet.Relationships, relationshipRecord{
			ID:    r.ID,
			Class: ClassRelationship,
			Title: r.Title,
			End1:  endpointRecord{TopicID: r.End1},
			End2:  endpointRecord{TopicID: r.End2},
		})
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode([]sheetRecord{sheet}); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Emit returns the content.json bytes for doc.
func Emit(doc *mindmap.Document, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(doc, opts, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
