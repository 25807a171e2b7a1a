package mindmap

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces identifiers that are unique within a process.
// Implementations must be safe for concurrent use.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues random version 4 UUIDs.
type UUIDGenerator struct{}

// NewUUIDGenerator returns the default generator.
func NewUUIDGenerator() UUIDGenerator { return UUIDGenerator{} }

// NewID returns a fresh UUID string.
func (UUIDGenerator) NewID() string { return uuid.NewString() }

// SequenceGenerator issues "<prefix>-1", "<prefix>-2", ... in call order.
// It makes emitted documents reproducible.
type SequenceGenerator struct {
	Prefix string
	n      atomic.Uint64
}

// NewSequenceGenerator creates a sequence generator. An empty prefix becomes "id".
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &SequenceGenerator{Prefix: prefix}
}

// NewID returns the next identifier in the sequence.
func (g *SequenceGenerator) NewID() string {
	return fmt.Sprintf("%s-%d", g.Prefix, g.n.Add(1))
}

var (
	_ IDGenerator = UUIDGenerator{}
	_ IDGenerator = (*SequenceGenerator)(nil)
)
