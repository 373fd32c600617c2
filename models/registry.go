package models

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/bytedance/sonic"
)

// Registry holds all registered entity types. Registration happens once at
// startup; lookups are read-only afterwards.
type Registry struct {
	entities map[string]*EntityType
	mu       sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{entities: make(map[string]*EntityType)}
}

// LoadRegistry reads entity definitions from a JSON file, validates them and
// returns a populated registry.
func LoadRegistry(path, defaultIndex string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read entities file: %w", err)
	}

	var entities []*EntityType
	if err := sonic.Unmarshal(data, &entities); err != nil {
		return nil, fmt.Errorf("failed to parse entities file: %w", err)
	}

	r := NewRegistry()
	for _, e := range entities {
		if err := e.Validate(defaultIndex); err != nil {
			return nil, err
		}
		if err := r.Register(e); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds an entity type to the registry
func (r *Registry) Register(e *EntityType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entities[e.Name]; exists {
		return fmt.Errorf("entity %s already registered", e.Name)
	}
	r.entities[e.Name] = e
	return nil
}

// Get returns an entity type by name
func (r *Registry) Get(name string) (*EntityType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entities[name]
	return e, ok
}

// All returns every registered entity type, sorted by name.
func (r *Registry) All() []*EntityType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*EntityType, 0, len(r.entities))
	for _, e := range r.entities {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Indexable returns every entity type opted into indexing, sorted by name.
func (r *Registry) Indexable() []*EntityType {
	all := r.All()
	result := make([]*EntityType, 0, len(all))
	for _, e := range all {
		if e.Indexable() {
			result = append(result, e)
		}
	}
	return result
}
