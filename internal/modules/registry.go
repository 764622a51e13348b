package modules

import (
	"sort"
	"strings"
	"sync"
)

// Registry maps module names to their folders on disk.
type Registry struct {
	mu    sync.RWMutex
	root  string
	paths map[string]string // keyed by lower-cased module name
}

func NewRegistry(root string) *Registry {
	return &Registry{
		root:  root,
		paths: make(map[string]string),
	}
}

// Root returns the folder unregistered modules resolve under.
func (r *Registry) Root() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.root
}

// Load replaces all registered module folders.
// Called during startup with the configured module paths.
func (r *Registry) Load(paths map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.paths = make(map[string]string, len(paths))
	for name, p := range paths {
		r.paths[strings.ToLower(name)] = p
	}
}

// Lookup returns the explicit folder for a module, if one was registered.
func (r *Registry) Lookup(module string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.paths[strings.ToLower(module)]
	return p, ok
}

// Names returns the registered module names (lower-cased, sorted).
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.paths))
	for n := range r.paths {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
