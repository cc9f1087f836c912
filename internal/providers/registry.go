package providers

import "strings"

// Registry holds providers in registration order.
type Registry struct {
	providers []Provider
	byName    map[string]Provider
}

func NewRegistry(ps ...Provider) *Registry {
	r := &Registry{byName: make(map[string]Provider, len(ps))}
	for _, p := range ps {
		r.Register(p)
	}
	return r
}

// Register adds p. A later provider with the same name replaces the earlier
// one in lookups but keeps the earlier position for detection.
func (r *Registry) Register(p Provider) {
	name := strings.ToLower(p.Name())
	if _, ok := r.byName[name]; ok {
		for i := range r.providers {
			if strings.EqualFold(r.providers[i].Name(), name) {
				r.providers[i] = p
			}
		}
	} else {
		r.providers = append(r.providers, p)
	}
	r.byName[name] = p
}

// Get returns the provider registered under name, or nil.
func (r *Registry) Get(name string) Provider {
	return r.byName[strings.ToLower(strings.TrimSpace(name))]
}

// Detect returns the first registered provider that claims rawURL, or nil.
func (r *Registry) Detect(rawURL string) Provider {
	for _, p := range r.providers {
		if p.CanHandle(rawURL) {
			return p
		}
	}
	return nil
}

// ForURL resolves the provider for rawURL. With an explicit name the named
// provider is returned only if it also claims the URL; a mismatch yields nil.
func (r *Registry) ForURL(rawURL, name string) Provider {
	if strings.TrimSpace(name) != "" {
		p := r.Get(name)
		if p == nil || !p.CanHandle(rawURL) {
			return nil
		}
		return p
	}
	return r.Detect(rawURL)
}

func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		out = append(out, p.Name())
	}
	return out
}
