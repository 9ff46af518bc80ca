package methodology

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rshade/carbon-credit-engine/internal/calcerr"
)

// Factory returns a new methodology instance.
type Factory func() Methodology

type entry struct {
	factory Factory
	desc    Descriptor
}

// Registry maps methodology identifiers to their factories.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// New builds a registry holding the given factories.
func New(factories ...Factory) (*Registry, error) {
	r := &Registry{entries: make(map[string]entry, len(factories))}
	for _, f := range factories {
		if err := r.Register(f); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a factory keyed by the identifier of the methodology it
// builds. An empty or already registered identifier is a configuration error.
func (r *Registry) Register(f Factory) error {
	if f == nil {
		return calcerr.Configuration("methodology factory is nil")
	}
	m := f()
	if m == nil {
		return calcerr.Configuration("methodology factory returned nil")
	}
	desc := m.Descriptor()
	if desc.ID == "" {
		return calcerr.Configuration("methodology %q has an empty id", desc.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[desc.ID]; exists {
		return calcerr.Configuration("methodology %s already registered", desc.ID)
	}
	r.entries[desc.ID] = entry{factory: f, desc: desc}
	return nil
}

// Get returns a fresh instance of the methodology with the given id.
func (r *Registry) Get(id string) (Methodology, error) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		ids := r.IDs()
		return nil, calcerr.NotFound("methodology",
			fmt.Sprintf("Unknown methodology: %s. Available: %s", id, strings.Join(ids, ", ")), ids)
	}
	return e.factory(), nil
}

// IDs returns the registered identifiers, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ListAll returns every descriptor, sorted by id.
func (r *Registry) ListAll() []Descriptor {
	return r.list(func(Descriptor) bool { return true })
}

// ListForProjectType returns the descriptors applicable to projectType,
// ignoring case.
func (r *Registry) ListForProjectType(projectType string) []Descriptor {
	return r.list(func(d Descriptor) bool { return d.AppliesTo(projectType) })
}

// ListForRegistry returns the descriptors of one crediting standard,
// ignoring case.
func (r *Registry) ListForRegistry(registry string) []Descriptor {
	return r.list(func(d Descriptor) bool { return strings.EqualFold(d.Registry, registry) })
}

func (r *Registry) list(match func(Descriptor) bool) []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.entries))
	for _, e := range r.entries {
		if match(e.desc) {
			out = append(out, e.desc.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Builtins returns the factories of every methodology shipped with the engine.
func Builtins() []Factory {
	return []Factory{
		func() Methodology { return NewAMSID() },
		func() Methodology { return NewACM0002() },
		func() Methodology { return NewAMSIIID() },
		func() Methodology { return NewAM0123() },
		func() Methodology { return NewGCCM001() },
		func() Methodology { return NewGoldStandardRE() },
	}
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the process-wide registry of built-in methodologies. It is
// constructed on first use; later calls return the same registry.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		r, err := New(Builtins()...)
		if err != nil {
			panic(fmt.Sprintf("building built-in methodology registry: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}
