package mindmap

// TopicVisitor converts topics into emitter-specific values.
// VisitTopic receives the topic, its parent (nil for the root) and the already
// converted children in input order.
type TopicVisitor[T any] interface {
	VisitTopic(t *Topic, parent *Topic, children []T) T
}

// VisitorFunc adapts a function to [TopicVisitor].
type VisitorFunc[T any] func(t *Topic, parent *Topic, children []T) T

// VisitTopic calls f.
func (f VisitorFunc[T]) VisitTopic(t *Topic, parent *Topic, children []T) T {
	return f(t, parent, children)
}

// Walk folds the tree rooted at root through v, children before parents.
func Walk[T any](root *Topic, v TopicVisitor[T]) T {
	return walk(root, nil, v)
}

func walk[T any](t, parent *Topic, v TopicVisitor[T]) T {
	children := make([]T, 0, len(t.Children))
	for _, c := range t.Children {
		children = append(children, walk(c, t, v))
	}
	return v.VisitTopic(t, parent, children)
}

// Each visits topics in pre-order with their parent and depth (root is 0).
// Returning false from fn skips the topic's descendants.
func Each(root *Topic, fn func(t, parent *Topic, depth int) bool) {
	if root == nil {
		return
	}
	each(root, nil, 0, fn)
}

func each(t, parent *Topic, depth int, fn func(t, parent *Topic, depth int) bool) {
	if !fn(t, parent, depth) {
		return
	}
	for _, c := range t.Children {
		each(c, t, depth+1, fn)
	}
}

// Count returns the number of topics in the tree rooted at root.
func Count(root *Topic) int {
	n := 0
	Each(root, func(*Topic, *Topic, int) bool {
		n++
		return true
	})
	return n
}
