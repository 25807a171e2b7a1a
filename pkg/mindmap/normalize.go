package mindmap

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/matzehuels/mindpack/pkg/errors"
)

// Normalizer converts decoded input into a [Document].
type Normalizer struct {
	// IDs issues identifiers for topics and relationships without one.
	IDs IDGenerator

	// PlaceholderTitle replaces missing topic titles.
	PlaceholderTitle string

	// DefaultStructure is the root structure class when the input has none.
	DefaultStructure string

	// MaxDepth bounds topic nesting; the root is depth 1. Zero disables the guard.
	MaxDepth int
}

// NewNormalizer returns a Normalizer with default titles and depth guard.
// A nil generator falls back to [UUIDGenerator].
func NewNormalizer(ids IDGenerator) *Normalizer {
	if ids == nil {
		ids = NewUUIDGenerator()
	}
	return &Normalizer{
		IDs:              ids,
		PlaceholderTitle: DefaultTitle,
		DefaultStructure: DefaultStructureClass,
		MaxDepth:         DefaultMaxDepth,
	}
}

// state carries per-call bookkeeping so a Normalizer can be shared.
type state struct {
	*Normalizer
	seen map[string]string // topic id -> path of first use
}

// Normalize converts a decoded document (a JSON object) into a Document.
// raw is not modified. Structural problems are reported as MALFORMED_INPUT
// errors naming the offending path, and excessive nesting as TREE_TOO_DEEP.
func (n *Normalizer) Normalize(raw any) (*Document, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, malformed("document", "expected object, got %s", kindOf(raw))
	}

	s := &state{Normalizer: n, seen: make(map[string]string)}
	doc := &Document{}

	title, err := optString(obj, "title", "document")
	if err != nil {
		return nil, err
	}
	doc.Title = title

	rootRaw, ok := obj["rootTopic"]
	if !ok || rootRaw == nil {
		return nil, malformed("rootTopic", "required field is missing")
	}
	if doc.Root, err = s.topic(rootRaw, "rootTopic", 1); err != nil {
		return nil, err
	}

	if doc.Relationships, err = s.relationships(obj["relationships"]); err != nil {
		return nil, err
	}
	return doc, nil
}

// NormalizeTopic converts a single topic subtree. When root is true the topic
// receives a structure class.
func (n *Normalizer) NormalizeTopic(raw any, root bool) (*Topic, error) {
	s := &state{Normalizer: n, seen: make(map[string]string)}
	path, depth := "topic", 2
	if root {
		path, depth = "rootTopic", 1
	}
	return s.topic(raw, path, depth)
}

func (s *state) topic(raw any, path string, depth int) (*Topic, error) {
	if s.MaxDepth > 0 && depth > s.MaxDepth {
		return nil, errors.New(errors.ErrCodeTreeTooDeep, "%s: topic nesting exceeds %d levels", path, s.MaxDepth)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, malformed(path, "expected topic object, got %s", kindOf(raw))
	}

	t := &Topic{}
	var err error

	if t.ID, err = optString(obj, "id", path); err != nil {
		return nil, err
	}
	// An explicit "" counts as missing for both id and title.
	if t.ID == "" {
		t.ID = s.IDs.NewID()
	}
	if first, dup := s.seen[t.ID]; dup {
		return nil, malformed(path+".id", "duplicate topic id %q (first used at %s)", t.ID, first)
	}
	s.seen[t.ID] = path

	if t.Title, err = optString(obj, "title", path); err != nil {
		return nil, err
	}
	if t.Title == "" {
		t.Title = s.PlaceholderTitle
	}

	if depth == 1 {
		if t.StructureClass, err = structureClass(obj, path); err != nil {
			return nil, err
		}
		if t.StructureClass == "" {
			t.StructureClass = s.DefaultStructure
		}
	}

	if t.Notes, err = notes(obj["notes"], path+".notes"); err != nil {
		return nil, err
	}
	if t.Labels, err = stringList(obj["labels"], path+".labels"); err != nil {
		return nil, err
	}
	if t.Markers, err = markers(obj["markers"], path+".markers"); err != nil {
		return nil, err
	}
	if t.Style, err = style(obj["style"], path+".style"); err != nil {
		return nil, err
	}

	attached, childPath, err := childList(obj["children"], path+".children")
	if err != nil {
		return nil, err
	}
	t.Children = make([]*Topic, 0, len(attached))
	for i, c := range attached {
		child, err := s.topic(c, fmt.Sprintf("%s[%d]", childPath, i), depth+1)
		if err != nil {
			return nil, err
		}
		t.Children = append(t.Children, child)
	}
	return t, nil
}

// childList accepts {"attached": [...]} or a bare list.
func childList(raw any, path string) ([]any, string, error) {
	switch v := raw.(type) {
	case nil:
		return nil, path, nil
	case []any:
		return v, path, nil
	case map[string]any:
		attached, ok := v["attached"]
		if !ok || attached == nil {
			return nil, path, nil
		}
		list, ok := attached.([]any)
		if !ok {
			return nil, path, malformed(path+".attached", "expected list, got %s", kindOf(attached))
		}
		return list, path + ".attached", nil
	default:
		return nil, path, malformed(path, "expected object or list, got %s", kindOf(raw))
	}
}

func structureClass(obj map[string]any, path string) (string, error) {
	for _, key := range []string{"structureClass", "structure"} {
		v, err := optString(obj, key, path)
		if err != nil || v != "" {
			return v, err
		}
	}
	return "", nil
}

// notes accepts "text", {"plain": "text"} or {"plain": {"content": "text"}}.
func notes(raw any, path string) (*string, error) {
	var text string
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		text = v
	case map[string]any:
		switch plain := v["plain"].(type) {
		case nil:
		case string:
			text = plain
		case map[string]any:
			content, err := optString(plain, "content", path+".plain")
			if err != nil {
				return nil, err
			}
			text = content
		default:
			return nil, malformed(path+".plain", "expected string or object, got %s", kindOf(plain))
		}
	default:
		return nil, malformed(path, "expected string or object, got %s", kindOf(raw))
	}
	return &text, nil
}

// markers accepts marker ids as strings or {"markerId": "..."} records.
func markers(raw any, path string) ([]string, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, malformed(path, "expected list, got %s", kindOf(raw))
	}
	out := make([]string, 0, len(list))
	for i, item := range list {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case map[string]any:
			id, err := optString(v, "markerId", itemPath)
			if err != nil {
				return nil, err
			}
			if id == "" {
				return nil, malformed(itemPath, "marker record without markerId")
			}
			out = append(out, id)
		default:
			return nil, malformed(itemPath, "expected string, got %s", kindOf(item))
		}
	}
	return out, nil
}

// style keeps the fill property and fo-namespaced properties; other keys are
// dropped. Output order is fill first, then fo properties by name.
func style(raw any, path string) ([]StyleProperty, error) {
	if raw == nil {
		return nil, nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, malformed(path, "expected object, got %s", kindOf(raw))
	}

	var fill *StyleProperty
	var fo []StyleProperty
	for key, v := range obj {
		value, ok := v.(string)
		if !ok {
			return nil, malformed(path+"."+key, "expected string, got %s", kindOf(v))
		}
		switch {
		case key == "svgFill" || key == "svg:fill":
			fill = &StyleProperty{Namespace: NamespaceSVG, Name: "fill", Value: value}
		case strings.HasPrefix(key, "fo:"):
			name := strings.TrimPrefix(key, "fo:")
			if !isNCName(name) {
				return nil, malformed(path+"."+key, "%q is not a valid property name", name)
			}
			fo = append(fo, StyleProperty{Namespace: NamespaceFO, Name: name, Value: value})
		}
	}
	sort.Slice(fo, func(i, j int) bool { return fo[i].Name < fo[j].Name })

	out := make([]StyleProperty, 0, len(fo)+1)
	if fill != nil {
		out = append(out, *fill)
	}
	return append(out, fo...), nil
}

// isNCName reports whether name can be used as an unprefixed XML element name.
func isNCName(name string) bool {
	for i, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && (r == '-' || r == '.' || unicode.IsDigit(r)):
		default:
			return false
		}
	}
	return name != ""
}

func (s *state) relationships(raw any) ([]Relationship, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, malformed("relationships", "expected list, got %s", kindOf(raw))
	}
	out := make([]Relationship, 0, len(list))
	for i, item := range list {
		path := fmt.Sprintf("relationships[%d]", i)
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, malformed(path, "expected object, got %s", kindOf(item))
		}
		rel := Relationship{}
		var err error
		if rel.ID, err = optString(obj, "id", path); err != nil {
			return nil, err
		}
		if rel.ID == "" {
			rel.ID = s.IDs.NewID()
		}
		if title, ok := obj["title"]; ok && title != nil {
			str, ok := title.(string)
			if !ok {
				return nil, malformed(path+".title", "expected string, got %s", kindOf(title))
			}
			rel.Title = &str
		}
		if rel.End1, err = endpoint(obj, "end1", path); err != nil {
			return nil, err
		}
		if rel.End2, err = endpoint(obj, "end2", path); err != nil {
			return nil, err
		}
		out = append(out, rel)
	}
	return out, nil
}

// endpoint reads {"end1": {"topicId": "..."}} or the flat "end1Id" form.
// Any other endpoint keys are discarded.
func endpoint(obj map[string]any, key, path string) (string, error) {
	if flat, err := optString(obj, key+"Id", path); err != nil || flat != "" {
		return flat, err
	}
	switch v := obj[key].(type) {
	case nil:
		return "", nil
	case map[string]any:
		return optString(v, "topicId", path+"."+key)
	default:
		return "", malformed(path+"."+key, "expected object, got %s", kindOf(v))
	}
}

func stringList(raw any, path string) ([]string, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, malformed(path, "expected list, got %s", kindOf(raw))
	}
	out := make([]string, 0, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, malformed(fmt.Sprintf("%s[%d]", path, i), "expected string, got %s", kindOf(item))
		}
		out = append(out, s)
	}
	return out, nil
}

func optString(obj map[string]any, key, path string) (string, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", malformed(path+"."+key, "expected string, got %s", kindOf(v))
	}
	return s, nil
}

func malformed(path, format string, args ...any) error {
	return errors.New(errors.ErrCodeMalformedInput, "%s: %s", path, fmt.Sprintf(format, args...))
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64, uint64:
		return "number"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
