package rules

import (
	"fmt"
	"strings"
)

// Registry maps ruleset ids to implementations. Unknown ids resolve to the
// default ruleset, so content referencing a system this build does not ship
// still plays.
type Registry struct {
	byID     map[string]Ruleset
	fallback Ruleset
}

// NewRegistry creates a registry with the given default ruleset.
func NewRegistry(fallback Ruleset, others ...Ruleset) (*Registry, error) {
	if fallback == nil {
		return nil, fmt.Errorf("default ruleset is required")
	}
	registry := &Registry{
		byID:     map[string]Ruleset{fallback.ID(): fallback},
		fallback: fallback,
	}
	for _, ruleset := range others {
		if err := registry.Register(ruleset); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Register adds a ruleset to the registry.
func (r *Registry) Register(ruleset Ruleset) error {
	if r == nil {
		return fmt.Errorf("registry is not configured")
	}
	if ruleset == nil {
		return fmt.Errorf("ruleset is required")
	}
	id := strings.TrimSpace(ruleset.ID())
	if id == "" {
		return fmt.Errorf("ruleset id is required")
	}
	if _, exists := r.byID[id]; exists {
		return fmt.Errorf("ruleset %q is already registered", id)
	}
	r.byID[id] = ruleset
	return nil
}

// Resolve returns the ruleset for id, falling back to the default when the
// id is unknown or blank.
func (r *Registry) Resolve(id string) Ruleset {
	if r == nil {
		return nil
	}
	if ruleset, ok := r.byID[strings.TrimSpace(id)]; ok {
		return ruleset
	}
	return r.fallback
}

// Default returns the fallback ruleset.
func (r *Registry) Default() Ruleset {
	if r == nil {
		return nil
	}
	return r.fallback
}
