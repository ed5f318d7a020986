package dashboard

import (
	"fmt"
	"sort"
)

type Registry struct {
	defs map[string]func() Definition
}

// NewRegistry returns a registry holding the builtin dashboards.
func NewRegistry() *Registry {
	r := &Registry{defs: make(map[string]func() Definition)}

	r.defs["hello"] = Hello
	r.defs["iris"] = Iris
	r.defs["gapminder"] = Gapminder

	return r
}

// Register adds or replaces a dashboard.
func (r *Registry) Register(name string, fn func() Definition) {
	r.defs[name] = fn
}

func (r *Registry) Get(name string) (Definition, error) {
	fn, ok := r.defs[name]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrUnknownDashboard, name)
	}
	return fn(), nil
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
