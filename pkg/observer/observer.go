// Package observer turns the document's mutation records into match and
// unmatch callbacks.
//
// An ElementObserver tracks the set of elements satisfying a Matcher and
// tells its delegate when elements enter or leave that set. The engine owns
// the record pipeline: it drains Document.TakeMutations and feeds the batch
// to every observer's ProcessMutations in turn. Observers never pull records
// themselves, so one batch can drive many observers.
package observer

import "github.com/go-tether/tether/pkg/dom"

// Matcher decides which elements an ElementObserver tracks.
type Matcher interface {
	// Matches reports whether the element belongs to the observed set.
	Matches(el dom.Element) bool
	// MatchAffectedBy reports whether a change of the named attribute can
	// change Matches for an element.
	MatchAffectedBy(attr string) bool
}

// AttributeMatcher matches elements carrying a given attribute, present with
// any value.
type AttributeMatcher struct {
	Name string
}

func (m AttributeMatcher) Matches(el dom.Element) bool { return el.HasAttr(m.Name) }

func (m AttributeMatcher) MatchAffectedBy(attr string) bool { return attr == m.Name }

// ElementDelegate receives match transitions from an ElementObserver.
type ElementDelegate interface {
	// ElementMatched fires when an element enters the matched set.
	ElementMatched(el dom.Element)
	// ElementUnmatched fires when a matched element leaves the set,
	// including when an ancestor removal takes it out of the tree.
	ElementUnmatched(el dom.Element)
	// AttributeValueChanged fires for attribute changes on matched
	// elements, after any match transition for the same record.
	AttributeValueChanged(el dom.Element, name, old string)
}

// ElementObserver maintains the matched element set for one matcher.
// It is not safe for concurrent use; the engine serializes all calls.
type ElementObserver struct {
	doc      *dom.Document
	matcher  Matcher
	delegate ElementDelegate
	matched  map[dom.Element]bool
	started  bool
	stopped  bool
}

// NewElementObserver builds an observer over doc. Nothing fires until Start.
func NewElementObserver(doc *dom.Document, matcher Matcher, delegate ElementDelegate) *ElementObserver {
	return &ElementObserver{
		doc:      doc,
		matcher:  matcher,
		delegate: delegate,
		matched:  make(map[dom.Element]bool),
	}
}

// Start performs the initial full-tree scan, firing ElementMatched in
// document order.
func (o *ElementObserver) Start() {
	if o.started || o.stopped {
		return
	}
	o.started = true
	o.doc.Walk(func(el dom.Element) bool {
		if o.matcher.Matches(el) {
			o.match(el)
		}
		return true
	})
}

// Stop silences the observer permanently. No callbacks fire afterwards; the
// matched set is dropped without unmatch callbacks, since teardown order is
// the engine's responsibility.
func (o *ElementObserver) Stop() {
	o.stopped = true
	o.matched = make(map[dom.Element]bool)
}

// Matched reports whether el is currently in the matched set.
func (o *ElementObserver) Matched(el dom.Element) bool {
	return o.matched[el]
}

// Refresh reconciles the matched set against the current tree: elements that
// vanished or stopped matching unmatch first, new matches fire in document
// order. Useful after out-of-band mutations whose records were discarded.
func (o *ElementObserver) Refresh() {
	if !o.started || o.stopped {
		return
	}
	for el := range o.matched {
		if !o.doc.Contains(el) || !o.matcher.Matches(el) {
			o.unmatch(el)
		}
	}
	o.doc.Walk(func(el dom.Element) bool {
		if o.matcher.Matches(el) && !o.matched[el] {
			o.match(el)
		}
		return true
	})
}

// ProcessMutations routes one drained record batch. Records arrive in
// mutation order; subtree additions and removals carry one record per
// element, already in document order.
func (o *ElementObserver) ProcessMutations(records []dom.MutationRecord) {
	if !o.started || o.stopped {
		return
	}
	for _, r := range records {
		switch r.Kind {
		case dom.ElementAdded:
			if !o.matched[r.Element] && o.matcher.Matches(r.Element) {
				o.match(r.Element)
			}
		case dom.ElementRemoved:
			if o.matched[r.Element] {
				o.unmatch(r.Element)
			}
		case dom.AttributeChanged:
			o.processAttribute(r)
		}
		if o.stopped {
			return
		}
	}
}

func (o *ElementObserver) processAttribute(r dom.MutationRecord) {
	el := r.Element
	if o.matcher.MatchAffectedBy(r.AttrName) {
		switch matches := o.matcher.Matches(el); {
		case matches && !o.matched[el]:
			o.match(el)
			return
		case !matches && o.matched[el]:
			o.unmatch(el)
			return
		}
	}
	if o.matched[el] {
		o.delegate.AttributeValueChanged(el, r.AttrName, r.OldValue)
	}
}

func (o *ElementObserver) match(el dom.Element) {
	o.matched[el] = true
	o.delegate.ElementMatched(el)
}

func (o *ElementObserver) unmatch(el dom.Element) {
	delete(o.matched, el)
	o.delegate.ElementUnmatched(el)
}
