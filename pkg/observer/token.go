package observer

import "github.com/go-tether/tether/pkg/dom"

// TokenDelegate receives per-token transitions from a TokenListObserver.
type TokenDelegate interface {
	// TokenMatched fires once per (element, token) pair as tokens appear.
	TokenMatched(el dom.Element, token string)
	// TokenUnmatched fires once per pair as tokens disappear, including
	// when the element leaves the tree.
	TokenUnmatched(el dom.Element, token string)
}

// TokenListObserver layers token-level tracking over an ElementObserver for
// a whitespace separated attribute such as data-controller="gallery modal".
// A token present in both the old and new attribute values fires nothing.
type TokenListObserver struct {
	inner    *ElementObserver
	attr     string
	delegate TokenDelegate
	tokens   map[dom.Element][]string
}

// NewTokenListObserver builds a token observer for the named attribute.
func NewTokenListObserver(doc *dom.Document, attr string, delegate TokenDelegate) *TokenListObserver {
	t := &TokenListObserver{
		attr:     attr,
		delegate: delegate,
		tokens:   make(map[dom.Element][]string),
	}
	t.inner = NewElementObserver(doc, AttributeMatcher{Name: attr}, t)
	return t
}

// Start scans the tree, firing TokenMatched for every present token in
// document and attribute order.
func (t *TokenListObserver) Start() { t.inner.Start() }

// Stop silences the observer permanently without unmatch callbacks.
func (t *TokenListObserver) Stop() {
	t.inner.Stop()
	t.tokens = make(map[dom.Element][]string)
}

// Refresh reconciles against the current tree, as ElementObserver.Refresh.
func (t *TokenListObserver) Refresh() { t.inner.Refresh() }

// ProcessMutations routes one drained record batch.
func (t *TokenListObserver) ProcessMutations(records []dom.MutationRecord) {
	t.inner.ProcessMutations(records)
}

// Tokens returns the tokens currently tracked for el, in attribute order.
func (t *TokenListObserver) Tokens(el dom.Element) []string {
	return t.tokens[el]
}

// ElementMatched implements ElementDelegate.
func (t *TokenListObserver) ElementMatched(el dom.Element) {
	current := el.Tokens(t.attr)
	t.tokens[el] = current
	for _, token := range current {
		t.delegate.TokenMatched(el, token)
	}
}

// ElementUnmatched implements ElementDelegate.
func (t *TokenListObserver) ElementUnmatched(el dom.Element) {
	known := t.tokens[el]
	delete(t.tokens, el)
	for _, token := range known {
		t.delegate.TokenUnmatched(el, token)
	}
}

// AttributeValueChanged implements ElementDelegate. For the observed
// attribute it diffs the known tokens against the current value; other
// attributes are ignored here.
func (t *TokenListObserver) AttributeValueChanged(el dom.Element, name, old string) {
	if name != t.attr {
		return
	}
	known := t.tokens[el]
	current := el.Tokens(t.attr)
	t.tokens[el] = current

	for _, token := range known {
		if !containsToken(current, token) {
			t.delegate.TokenUnmatched(el, token)
		}
	}
	for _, token := range current {
		if !containsToken(known, token) {
			t.delegate.TokenMatched(el, token)
		}
	}
}

func containsToken(tokens []string, token string) bool {
	for _, t := range tokens {
		if t == token {
			return true
		}
	}
	return false
}
