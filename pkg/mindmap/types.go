package mindmap

const (
	// DefaultTitle is used for topics without a title.
	DefaultTitle = "Untitled"

	// DefaultStructureClass is the layout applied to root topics without one.
	DefaultStructureClass = "org.xmind.ui.logic.right"

	// DefaultMaxDepth bounds topic nesting during normalization.
	DefaultMaxDepth = 512
)

// Style property namespaces.
const (
	NamespaceSVG = "svg"
	NamespaceFO  = "fo"
)

// Document is a normalized mind-map. It is never mutated after normalization.
type Document struct {
	Title         string // empty when the input had none
	Root          *Topic
	Relationships []Relationship
}

// Topic is a node in the mind-map tree.
type Topic struct {
	ID             string
	Title          string
	StructureClass string // root topic only
	Children       []*Topic
	Notes          *string
	Labels         []string
	Markers        []string
	Style          []StyleProperty
}

// StyleProperty is one formatting property of a topic.
// Namespace is either [NamespaceSVG] (Name "fill") or [NamespaceFO].
type StyleProperty struct {
	Namespace string
	Name      string
	Value     string
}

// QualifiedName returns the prefixed property name, e.g. "svg:fill".
func (p StyleProperty) QualifiedName() string {
	return p.Namespace + ":" + p.Name
}

// Relationship is a titled cross-link between two topics.
type Relationship struct {
	ID    string
	Title *string
	End1  string
	End2  string
}

// Index returns topics keyed by identifier.
func (d *Document) Index() map[string]*Topic {
	idx := make(map[string]*Topic)
	Each(d.Root, func(t, _ *Topic, _ int) bool {
		idx[t.ID] = t
		return true
	})
	return idx
}

// TopicCount returns the number of topics in the document.
func (d *Document) TopicCount() int {
	return Count(d.Root)
}
