package domain

import (
	"fmt"
	"strings"
)

// ServiceDescriptor describes one target service and what a healthy page looks like.
type ServiceDescriptor struct {
	Name            string   `yaml:"name"             json:"name"`
	Address         string   `yaml:"address"          json:"address"`
	DisplayName     string   `yaml:"display_name"     json:"displayName,omitempty"`
	Description     string   `yaml:"description"      json:"description,omitempty"`
	Features        string   `yaml:"features"         json:"features,omitempty"`
	ExpectedMarkers []string `yaml:"expected_markers" json:"expectedMarkers,omitempty"`
	Landmarks       []string `yaml:"landmarks"        json:"landmarks,omitempty"`
	Skip            bool     `yaml:"skip"             json:"skip,omitempty"`
	APIPath         string   `yaml:"api_path"         json:"apiPath,omitempty"`
	APIKeyFile      string   `yaml:"api_key_file"     json:"apiKeyFile,omitempty"`
}

// Label is the human-facing service name used by the title relevance check.
func (d ServiceDescriptor) Label() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return d.Name
}

// APICapable reports whether the service exposes a status endpoint.
func (d ServiceDescriptor) APICapable() bool {
	return d.APIPath != ""
}

func (d ServiceDescriptor) clone() ServiceDescriptor {
	c := d
	c.ExpectedMarkers = append([]string(nil), d.ExpectedMarkers...)
	c.Landmarks = append([]string(nil), d.Landmarks...)
	return c
}

func (d ServiceDescriptor) validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: service name must not be empty", ErrInvalidDescriptor)
	}
	if strings.TrimSpace(d.Address) == "" {
		return fmt.Errorf("%w: service %q has no address", ErrInvalidDescriptor, d.Name)
	}
	return nil
}

// Registry is the ordered, read-only set of services for one run.
type Registry struct {
	services []ServiceDescriptor
	index    map[string]int
}

// NewRegistry validates descriptors and freezes them in the given order.
func NewRegistry(descriptors []ServiceDescriptor) (*Registry, error) {
	if len(descriptors) == 0 {
		return nil, ErrEmptyRegistry
	}

	r := &Registry{
		services: make([]ServiceDescriptor, 0, len(descriptors)),
		index:    make(map[string]int, len(descriptors)),
	}
	for _, d := range descriptors {
		if err := d.validate(); err != nil {
			return nil, err
		}
		if _, dup := r.index[d.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateService, d.Name)
		}
		r.index[d.Name] = len(r.services)
		r.services = append(r.services, d.clone())
	}
	return r, nil
}

// Len returns the number of registered services.
func (r *Registry) Len() int { return len(r.services) }

// All returns every descriptor in registry order.
func (r *Registry) All() []ServiceDescriptor {
	out := make([]ServiceDescriptor, len(r.services))
	for i, d := range r.services {
		out[i] = d.clone()
	}
	return out
}

// Lookup finds a descriptor by name.
func (r *Registry) Lookup(name string) (ServiceDescriptor, bool) {
	i, ok := r.index[name]
	if !ok {
		return ServiceDescriptor{}, false
	}
	return r.services[i].clone(), true
}

// Select returns the descriptors evaluated by the given suite, in registry order.
// The api suite only evaluates services that expose a status endpoint.
func (r *Registry) Select(suite Suite) []ServiceDescriptor {
	var out []ServiceDescriptor
	for _, d := range r.services {
		if suite == SuiteAPI && !d.APICapable() {
			continue
		}
		out = append(out, d.clone())
	}
	return out
}

// Only narrows the registry to the named services, keeping registry order.
func (r *Registry) Only(names []string) (*Registry, error) {
	if len(names) == 0 {
		return r, nil
	}
	keep := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := r.index[n]; !ok {
			return nil, fmt.Errorf("service %q not found in registry", n)
		}
		keep[n] = true
	}
	var subset []ServiceDescriptor
	for _, d := range r.services {
		if keep[d.Name] {
			subset = append(subset, d)
		}
	}
	return NewRegistry(subset)
}
