package mindmap

import (
	"strings"
	"testing"

	"github.com/matzehuels/mindpack/pkg/errors"
)

func mustDecode(t *testing.T, src string) any {
	t.Helper()
	raw, err := ReadJSON(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	return raw
}

func TestNormalizeDefaults(t *testing.T) {
	n := NewNormalizer(NewSequenceGenerator("t"))
	doc, err := n.Normalize(mustDecode(t, `{"rootTopic":{"children":{"attached":[{}]}}}`))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	root := doc.Root
	if root.ID != "t-1" {
		t.Errorf("root ID = %q, want %q", root.ID, "t-1")
	}
	if root.Title != DefaultTitle {
		t.Errorf("root Title = %q, want %q", root.Title, DefaultTitle)
	}
	if root.StructureClass != DefaultStructureClass {
		t.Errorf("root StructureClass = %q, want %q", root.StructureClass, DefaultStructureClass)
	}
	if len(root.Children) != 1 {
		t.Fatalf("len(Children) = %d, want 1", len(root.Children))
	}

	child := root.Children[0]
	if child.ID != "t-2" {
		t.Errorf("child ID = %q, want %q", child.ID, "t-2")
	}
	if child.StructureClass != "" {
		t.Errorf("child StructureClass = %q, want empty", child.StructureClass)
	}
	if child.Children == nil || len(child.Children) != 0 {
		t.Errorf("child Children = %v, want empty non-nil slice", child.Children)
	}
	if child.Notes != nil || child.Labels != nil || child.Markers != nil || child.Style != nil {
		t.Error("optional fields should be absent")
	}
	if doc.Title != "" {
		t.Errorf("doc Title = %q, want empty", doc.Title)
	}
}

func TestNormalizeEmptyTitleAndID(t *testing.T) {
	n := NewNormalizer(NewSequenceGenerator("t"))
	doc, err := n.Normalize(mustDecode(t, `{"rootTopic":{"id":"","title":"","children":[{"id":"","title":""},{"id":null,"title":null}]}}`))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	want := []string{"t-1", "t-2", "t-3"}
	topics := append([]*Topic{doc.Root}, doc.Root.Children...)
	for i, topic := range topics {
		if topic.ID != want[i] {
			t.Errorf("topic %d ID = %q, want %q", i, topic.ID, want[i])
		}
		if topic.Title != DefaultTitle {
			t.Errorf("topic %d Title = %q, want %q", i, topic.Title, DefaultTitle)
		}
	}
}

func TestNormalizePreservesExplicitIDsAndOrder(t *testing.T) {
	src := `{"rootTopic":{"id":"root","title":"R","structure":"org.xmind.ui.map",
		"children":{"attached":[{"id":"c","title":"C"},{"title":"A"},{"id":"b","title":"B"}]}}}`
	doc, err := NewNormalizer(NewSequenceGenerator("gen")).Normalize(mustDecode(t, src))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if doc.Root.ID != "root" {
		t.Errorf("root ID = %q, want %q", doc.Root.ID, "root")
	}
	if doc.Root.StructureClass != "org.xmind.ui.map" {
		t.Errorf("StructureClass = %q, want %q", doc.Root.StructureClass, "org.xmind.ui.map")
	}

	var titles, ids []string
	for _, c := range doc.Root.Children {
		titles = append(titles, c.Title)
		ids = append(ids, c.ID)
	}
	if got := strings.Join(titles, ","); got != "C,A,B" {
		t.Errorf("child titles = %s, want C,A,B", got)
	}
	if got := strings.Join(ids, ","); got != "c,gen-1,b" {
		t.Errorf("child ids = %s, want c,gen-1,b", got)
	}
}

func TestNormalizeChildrenAsList(t *testing.T) {
	doc, err := NewNormalizer(nil).Normalize(mustDecode(t, `{"rootTopic":{"children":[{"title":"x"},{"title":"y"}]}}`))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(doc.Root.Children) != 2 || doc.Root.Children[1].Title != "y" {
		t.Errorf("children = %+v, want [x y]", doc.Root.Children)
	}
}

func TestNormalizeFields(t *testing.T) {
	src := `{"title":"Plan","rootTopic":{"title":"Root",
		"notes":{"plain":"remember"},
		"labels":["one","two"],
		"markers":["priority-high",{"markerId":"flag-red"}],
		"style":{"fo:font-weight":"bold","svgFill":"#2E86AB","fo:font-size":"20pt","shape":"ignored"}}}`
	doc, err := NewNormalizer(nil).Normalize(mustDecode(t, src))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	root := doc.Root

	if doc.Title != "Plan" {
		t.Errorf("Title = %q, want Plan", doc.Title)
	}
	if root.Notes == nil || *root.Notes != "remember" {
		t.Errorf("Notes = %v, want remember", root.Notes)
	}
	if strings.Join(root.Labels, ",") != "one,two" {
		t.Errorf("Labels = %v", root.Labels)
	}
	if strings.Join(root.Markers, ",") != "priority-high,flag-red" {
		t.Errorf("Markers = %v", root.Markers)
	}

	want := []StyleProperty{
		{Namespace: NamespaceSVG, Name: "fill", Value: "#2E86AB"},
		{Namespace: NamespaceFO, Name: "font-size", Value: "20pt"},
		{Namespace: NamespaceFO, Name: "font-weight", Value: "bold"},
	}
	if len(root.Style) != len(want) {
		t.Fatalf("Style = %+v, want %+v", root.Style, want)
	}
	for i := range want {
		if root.Style[i] != want[i] {
			t.Errorf("Style[%d] = %+v, want %+v", i, root.Style[i], want[i])
		}
	}
}

func TestNormalizeNotesForms(t *testing.T) {
	tests := []struct {
		name  string
		notes string
		want  string
	}{
		{"bare string", `"text"`, "text"},
		{"plain string", `{"plain":"text"}`, "text"},
		{"plain content", `{"plain":{"content":"text"}}`, "text"},
		{"empty object", `{}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := NewNormalizer(nil).Normalize(mustDecode(t, `{"rootTopic":{"notes":`+tt.notes+`}}`))
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if doc.Root.Notes == nil || *doc.Root.Notes != tt.want {
				t.Errorf("Notes = %v, want %q", doc.Root.Notes, tt.want)
			}
		})
	}
}

func TestNormalizeRelationships(t *testing.T) {
	src := `{"rootTopic":{"id":"a","children":[{"id":"b"}]},
		"relationships":[
			{"id":"r1","title":"depends","end1":{"topicId":"a","role":"source"},"end2":{"topicId":"b"}},
			{"end1Id":"b","end2Id":"a"}
		]}`
	doc, err := NewNormalizer(NewSequenceGenerator("rel")).Normalize(mustDecode(t, src))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(doc.Relationships) != 2 {
		t.Fatalf("len(Relationships) = %d, want 2", len(doc.Relationships))
	}

	r1 := doc.Relationships[0]
	if r1.ID != "r1" || r1.End1 != "a" || r1.End2 != "b" {
		t.Errorf("r1 = %+v", r1)
	}
	if r1.Title == nil || *r1.Title != "depends" {
		t.Errorf("r1 Title = %v, want depends", r1.Title)
	}

	r2 := doc.Relationships[1]
	if r2.ID != "rel-1" || r2.End1 != "b" || r2.End2 != "a" || r2.Title != nil {
		t.Errorf("r2 = %+v", r2)
	}
}

func TestNormalizeMalformed(t *testing.T) {
	tests := []struct {
		name string
		src  string
		path string
	}{
		{"not an object", `[1,2]`, "document"},
		{"missing root", `{"title":"x"}`, "rootTopic"},
		{"root not object", `{"rootTopic":"x"}`, "rootTopic"},
		{"children scalar", `{"rootTopic":{"children":5}}`, "rootTopic.children"},
		{"attached not list", `{"rootTopic":{"children":{"attached":{}}}}`, "rootTopic.children.attached"},
		{"child not object", `{"rootTopic":{"children":{"attached":["x"]}}}`, "rootTopic.children.attached[0]"},
		{"title number", `{"rootTopic":{"title":5}}`, "rootTopic.title"},
		{"labels not list", `{"rootTopic":{"labels":"x"}}`, "rootTopic.labels"},
		{"style value number", `{"rootTopic":{"style":{"fo:font-size":12}}}`, "rootTopic.style.fo:font-size"},
		{"style name with markup", `{"rootTopic":{"style":{"fo:font size\"/><x":"1"}}}`, "rootTopic.style.fo:font size"},
		{"style name leading digit", `{"rootTopic":{"children":[{"style":{"fo:1st":"x"}}]}}`, "rootTopic.children[0].style.fo:1st"},
		{"duplicate id", `{"rootTopic":{"id":"a","children":[{"id":"a"}]}}`, "rootTopic.children[0].id"},
		{"relationships object", `{"rootTopic":{},"relationships":{}}`, "relationships"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewNormalizer(nil).Normalize(mustDecode(t, tt.src))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errors.ErrCodeMalformedInput) {
				t.Errorf("error code = %q, want %q", errors.GetCode(err), errors.ErrCodeMalformedInput)
			}
			if !strings.Contains(err.Error(), tt.path) {
				t.Errorf("error %q should mention %q", err, tt.path)
			}
		})
	}
}

func TestNormalizeDepthGuard(t *testing.T) {
	var b strings.Builder
	b.WriteString(`{"rootTopic":`)
	for i := 0; i < 5; i++ {
		b.WriteString(`{"children":[`)
	}
	b.WriteString(`{}`)
	for i := 0; i < 5; i++ {
		b.WriteString(`]}`)
	}
	b.WriteString(`}`)
	raw := mustDecode(t, b.String())

	n := NewNormalizer(nil)
	n.MaxDepth = 6
	if _, err := n.Normalize(raw); err != nil {
		t.Fatalf("depth 6 within limit: %v", err)
	}

	n.MaxDepth = 5
	_, err := n.Normalize(raw)
	if errors.GetCode(err) != errors.ErrCodeTreeTooDeep {
		t.Errorf("code = %q, want %q", errors.GetCode(err), errors.ErrCodeTreeTooDeep)
	}

	n.MaxDepth = 0
	if _, err := n.Normalize(raw); err != nil {
		t.Errorf("disabled guard: %v", err)
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	raw := mustDecode(t, `{"rootTopic":{"children":[{"title":"x"}]}}`)
	if _, err := NewNormalizer(nil).Normalize(raw); err != nil {
		t.Fatal(err)
	}
	root := raw.(map[string]any)["rootTopic"].(map[string]any)
	if _, ok := root["id"]; ok {
		t.Error("Normalize must not write generated ids into the input")
	}
}

func TestNormalizeTopic(t *testing.T) {
	n := NewNormalizer(NewSequenceGenerator("x"))

	root, err := n.NormalizeTopic(map[string]any{"title": "r"}, true)
	if err != nil {
		t.Fatal(err)
	}
	if root.StructureClass != DefaultStructureClass {
		t.Errorf("root StructureClass = %q", root.StructureClass)
	}

	sub, err := n.NormalizeTopic(map[string]any{"title": "s", "structure": "ignored"}, false)
	if err != nil {
		t.Fatal(err)
	}
	if sub.StructureClass != "" {
		t.Errorf("non-root StructureClass = %q, want empty", sub.StructureClass)
	}
}
