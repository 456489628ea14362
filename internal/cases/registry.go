package cases

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrDraftNotFound is returned when a draft id is unknown or already discarded.
var ErrDraftNotFound = errors.New("draft not found")

// Registry tracks in-flight drafts by id. Drafts live only in memory: an
// abandoned draft is simply discarded, and a submitted one is removed once its
// rows are committed.
type Registry struct {
	mu                 sync.RWMutex
	drafts             map[string]*Builder
	aggregateThreshold int
}

// NewRegistry creates an empty draft registry.
func NewRegistry(aggregateThreshold int) *Registry {
	return &Registry{
		drafts:             make(map[string]*Builder),
		aggregateThreshold: aggregateThreshold,
	}
}

// Open creates a new draft, optionally seeded with the previous case's
// inspector name, and returns its id.
func (r *Registry) Open(inspectorSeed string) (string, *Builder) {
	id := uuid.NewString()
	builder := NewBuilder(inspectorSeed, r.aggregateThreshold)

	r.mu.Lock()
	r.drafts[id] = builder
	r.mu.Unlock()

	return id, builder
}

// Get fetches an open draft.
func (r *Registry) Get(id string) (*Builder, error) {
	r.mu.RLock()
	builder, ok := r.drafts[id]
	r.mu.RUnlock()

	if !ok {
		return nil, ErrDraftNotFound
	}
	return builder, nil
}

// Discard drops a draft without persisting anything.
func (r *Registry) Discard(id string) {
	r.mu.Lock()
	delete(r.drafts, id)
	r.mu.Unlock()
}
