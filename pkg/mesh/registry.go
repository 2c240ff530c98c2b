package mesh

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownMesh is returned when a lookup references a mesh id the registry
// does not track.
var ErrUnknownMesh = errors.New("unknown mesh")

// Registry retains built meshes so they can be listed and counted after the
// mesh call returns.
type Registry struct {
	mu     sync.RWMutex
	meshes map[string]*Mesh
}

// NewRegistry creates an empty mesh registry.
func NewRegistry() *Registry {
	return &Registry{meshes: make(map[string]*Mesh)}
}

// Put retains a built mesh.
func (r *Registry) Put(m *Mesh) {
	r.mu.Lock()
	r.meshes[m.ID] = m
	r.mu.Unlock()
}

// Get returns the mesh with the given id.
func (r *Registry) Get(id string) (*Mesh, error) {
	r.mu.RLock()
	m, ok := r.meshes[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMesh, id)
	}
	return m, nil
}

// List returns all retained meshes, oldest first.
func (r *Registry) List() []*Mesh {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Mesh, 0, len(r.meshes))
	for _, m := range r.meshes {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Count returns the number of retained meshes.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.meshes)
}
