package core

import (
	stderrors "errors"
	"sort"
	"strconv"
	"sync"

	"github.com/go-tether/tether/pkg/errors"
	"github.com/go-tether/tether/pkg/schema"
)

// Registry maps controller identifiers to their definitions. Safe for
// concurrent use.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register installs a definition for identifier, replacing any existing one.
// It rejects invalid identifiers and nil constructors.
//
// Replacing a definition does not touch instances already constructed from
// the old one; a running application tears those down and reconnects when it
// observes the replacement.
func (r *Registry) Register(identifier string, ctor Constructor) error {
	if !schema.ValidIdentifier(identifier) {
		return &errors.TetherError{
			Op:   "core.Register",
			Kind: errors.KindRegister,
			Err:  stderrors.New("invalid identifier " + strconv.Quote(identifier)),
		}
	}
	if ctor == nil {
		return &errors.TetherError{
			Op:   "core.Register",
			Kind: errors.KindRegister,
			Err:  stderrors.New("nil constructor for identifier " + strconv.Quote(identifier)),
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[identifier] = Definition{Identifier: identifier, New: ctor}
	return nil
}

// Lookup returns the definition for identifier.
func (r *Registry) Lookup(identifier string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[identifier]
	return def, ok
}

// Unregister removes the definition for identifier and reports whether one
// was present.
func (r *Registry) Unregister(identifier string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.defs[identifier]
	delete(r.defs, identifier)
	return ok
}

// Identifiers returns the registered identifiers in sorted order.
func (r *Registry) Identifiers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.defs))
	for id := range r.defs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered identifiers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}
