// Package catalog maps catalog values such as game modes and dimension kinds
// to the server-local integers ("internal ids") that represent them on the
// wire.
package catalog

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/Zereker/gamewire/internal/sync"
)

// ErrDuplicate is returned when a value or an internal id is registered twice.
var ErrDuplicate = errors.New("catalog: duplicate registration")

// Type is a catalog value with a namespaced key such as "minecraft:creative".
type Type interface {
	comparable
	Key() string
}

// Registry assigns internal ids to catalog values. It is safe for
// concurrent use.
type Registry[T Type] struct {
	mu   sync.RWMutex
	ids  map[T]int32
	byID map[int32]T
}

// NewRegistry creates an empty registry.
func NewRegistry[T Type]() *Registry[T] {
	return &Registry[T]{
		ids:  make(map[T]int32),
		byID: make(map[int32]T),
	}
}

// Register assigns id to v.
func (r *Registry[T]) Register(v T, id int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.ids[v]; ok {
		return errors.Wrapf(ErrDuplicate, "%s already has internal id %d", v.Key(), prev)
	}
	if prev, ok := r.byID[id]; ok {
		return errors.Wrapf(ErrDuplicate, "internal id %d already taken by %s", id, prev.Key())
	}
	r.ids[v] = id
	r.byID[id] = v
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry[T]) MustRegister(v T, id int32) {
	if err := r.Register(v, id); err != nil {
		panic(err)
	}
}

// InternalID returns the id of v.
func (r *Registry[T]) InternalID(v T) (int32, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.ids[v]
	return id, ok
}

// ByInternalID returns the value registered under id.
func (r *Registry[T]) ByInternalID(id int32) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.byID[id]
	return v, ok
}

// All returns the registered values ordered by internal id.
func (r *Registry[T]) All() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int32, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	all := make([]T, len(ids))
	for i, id := range ids {
		all[i] = r.byID[id]
	}
	return all
}
