package core

import (
	"github.com/go-tether/tether/pkg/dom"
	"github.com/go-tether/tether/pkg/schema"
)

// Scope is the subtree a connected controller owns: its root element, the
// identifier it is bound as, and the schema naming its attributes.
//
// Target resolution is bounded by nesting: an element inside a descendant
// that declares the same identifier belongs to that inner controller, not to
// this one. The scope element itself is always in scope.
type Scope struct {
	Element    dom.Element
	Identifier string
	Schema     schema.Schema
}

// NewScope builds a scope rooted at el for identifier.
func NewScope(el dom.Element, identifier string, s schema.Schema) Scope {
	return Scope{Element: el, Identifier: identifier, Schema: s}
}

// IsZero reports whether the scope has no element.
func (s Scope) IsZero() bool { return s.Element.IsZero() }

// Owns reports whether el belongs to this scope: el sits in the scope
// element's subtree and no closer element declares the same identifier.
func (s Scope) Owns(el dom.Element) bool {
	if s.IsZero() || el.IsZero() || !s.Element.Contains(el) {
		return false
	}
	owner, ok := el.Closest(func(e dom.Element) bool {
		return e == s.Element || e.HasToken(s.Schema.ControllerAttribute, s.Identifier)
	})
	return ok && owner == s.Element
}

// Target returns the first element in scope declaring the target name, in
// document order.
func (s Scope) Target(name string) (dom.Element, bool) {
	var (
		found dom.Element
		ok    bool
	)
	s.eachTarget(name, func(el dom.Element) bool {
		found, ok = el, true
		return false
	})
	return found, ok
}

// Targets returns every element in scope declaring the target name, in
// document order.
func (s Scope) Targets(name string) []dom.Element {
	var out []dom.Element
	s.eachTarget(name, func(el dom.Element) bool {
		out = append(out, el)
		return true
	})
	return out
}

// HasTarget reports whether at least one target with the name is in scope.
func (s Scope) HasTarget(name string) bool {
	_, ok := s.Target(name)
	return ok
}

// TargetNames returns the distinct target names declared in scope, in first
// appearance (document) order.
func (s Scope) TargetNames() []string {
	if s.IsZero() {
		return nil
	}
	attr := s.Schema.TargetAttribute(s.Identifier)
	seen := make(map[string]bool)
	var names []string
	s.Element.Walk(func(el dom.Element) bool {
		if !el.HasAttr(attr) || !s.Owns(el) {
			return true
		}
		for _, name := range el.Tokens(attr) {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
		return true
	})
	return names
}

func (s Scope) eachTarget(name string, visit func(dom.Element) bool) {
	if s.IsZero() || name == "" {
		return
	}
	attr := s.Schema.TargetAttribute(s.Identifier)
	s.Element.Walk(func(el dom.Element) bool {
		if el.HasToken(attr, name) && s.Owns(el) {
			return visit(el)
		}
		return true
	})
}

// Values returns the typed accessors for the scope's value attributes.
func (s Scope) Values() Values { return Values{scope: s} }

// Classes returns the accessors for the scope's class attributes.
func (s Scope) Classes() Classes { return Classes{scope: s} }
