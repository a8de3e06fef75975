package testing

import (
	"fmt"
	"strings"

	"github.com/go-tether/tether/pkg/dom"
	"github.com/go-tether/tether/pkg/schema"
)

// Page is what finders evaluate against: the document plus the
// attribute schema in effect, so controller and target finders honor
// custom prefixes.
type Page struct {
	Doc    *dom.Document
	Schema schema.Schema
}

// Finder locates elements in the document.
type Finder interface {
	// Evaluate returns all matching elements in document order.
	Evaluate(page Page) []dom.Element
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	elements []dom.Element
	finder   Finder
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() dom.Element {
	if len(r.elements) == 0 {
		panic(fmt.Sprintf("Finder found no elements: %s", r.describe()))
	}
	return r.elements[0]
}

// FirstOrZero returns the first match, or a zero Element if none.
func (r FinderResult) FirstOrZero() dom.Element {
	if len(r.elements) == 0 {
		return dom.Element{}
	}
	return r.elements[0]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) dom.Element {
	if index < 0 || index >= len(r.elements) {
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.elements), r.describe()))
	}
	return r.elements[index]
}

// All returns all matches in document order.
func (r FinderResult) All() []dom.Element {
	return r.elements
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.elements)
}

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool {
	return len(r.elements) > 0
}

func (r FinderResult) describe() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// --- Concrete finders ---

// idFinder matches the element carrying the given id attribute.
type idFinder struct {
	id string
}

func (f *idFinder) Evaluate(page Page) []dom.Element {
	el, ok := page.Doc.GetElementByID(f.id)
	if !ok {
		return nil
	}
	return []dom.Element{el}
}

func (f *idFinder) Description() string {
	return fmt.Sprintf("ByID(%q)", f.id)
}

// ByID returns a finder that matches the element with the given id.
func ByID(id string) Finder {
	return &idFinder{id: id}
}

// tagFinder matches elements by tag name.
type tagFinder struct {
	tag string
}

func (f *tagFinder) Evaluate(page Page) []dom.Element {
	return page.Doc.FindAll(func(e dom.Element) bool {
		return e.Tag() == f.tag
	})
}

func (f *tagFinder) Description() string {
	return fmt.Sprintf("ByTag(%q)", f.tag)
}

// ByTag returns a finder that matches elements with the given tag name
// (lowercase, e.g. "button").
func ByTag(tag string) Finder {
	return &tagFinder{tag: strings.ToLower(tag)}
}

// attrFinder matches elements by attribute presence or exact value.
type attrFinder struct {
	name  string
	value string
	any   bool
}

func (f *attrFinder) Evaluate(page Page) []dom.Element {
	return page.Doc.FindAll(func(e dom.Element) bool {
		if !e.HasAttr(f.name) {
			return false
		}
		return f.any || e.Attr(f.name) == f.value
	})
}

func (f *attrFinder) Description() string {
	if f.any {
		return fmt.Sprintf("ByAttr(%q)", f.name)
	}
	return fmt.Sprintf("ByAttr(%q, %q)", f.name, f.value)
}

// ByAttr returns a finder that matches elements carrying the attribute
// with exactly the given value.
func ByAttr(name, value string) Finder {
	return &attrFinder{name: name, value: value}
}

// ByAttrPresent returns a finder that matches elements carrying the
// attribute regardless of value.
func ByAttrPresent(name string) Finder {
	return &attrFinder{name: name, any: true}
}

// controllerFinder matches elements whose controller attribute lists
// the identifier.
type controllerFinder struct {
	identifier string
}

func (f *controllerFinder) Evaluate(page Page) []dom.Element {
	return page.Doc.FindAll(func(e dom.Element) bool {
		return e.HasToken(page.Schema.ControllerAttribute, f.identifier)
	})
}

func (f *controllerFinder) Description() string {
	return fmt.Sprintf("ByController(%q)", f.identifier)
}

// ByController returns a finder that matches elements declaring the
// given controller identifier.
func ByController(identifier string) Finder {
	return &controllerFinder{identifier: identifier}
}

// targetFinder matches elements declared as a named target of a
// controller.
type targetFinder struct {
	identifier string
	name       string
}

func (f *targetFinder) Evaluate(page Page) []dom.Element {
	attr := page.Schema.TargetAttribute(f.identifier)
	return page.Doc.FindAll(func(e dom.Element) bool {
		return e.HasToken(attr, f.name)
	})
}

func (f *targetFinder) Description() string {
	return fmt.Sprintf("ByTarget(%q, %q)", f.identifier, f.name)
}

// ByTarget returns a finder that matches elements declaring themselves
// as the named target of the given controller.
func ByTarget(identifier, name string) Finder {
	return &targetFinder{identifier: identifier, name: name}
}

// textFinder matches elements by exact trimmed text content.
type textFinder struct {
	text string
}

func (f *textFinder) Evaluate(page Page) []dom.Element {
	return page.Doc.FindAll(func(e dom.Element) bool {
		return strings.TrimSpace(e.Text()) == f.text
	})
}

func (f *textFinder) Description() string {
	return fmt.Sprintf("ByText(%q)", f.text)
}

// ByText returns a finder that matches elements whose trimmed text
// content equals text. Ancestors of a matching element usually match
// too; combine with ByTag to narrow.
func ByText(text string) Finder {
	return &textFinder{text: text}
}

// textContainingFinder matches elements containing a substring.
type textContainingFinder struct {
	substring string
}

func (f *textContainingFinder) Evaluate(page Page) []dom.Element {
	return page.Doc.FindAll(func(e dom.Element) bool {
		return strings.Contains(e.Text(), f.substring)
	})
}

func (f *textContainingFinder) Description() string {
	return fmt.Sprintf("ByTextContaining(%q)", f.substring)
}

// ByTextContaining returns a finder that matches elements whose text
// content contains the given substring.
func ByTextContaining(substring string) Finder {
	return &textContainingFinder{substring: substring}
}

// predicateFinder matches elements satisfying a predicate.
type predicateFinder struct {
	fn   func(dom.Element) bool
	desc string
}

func (f *predicateFinder) Evaluate(page Page) []dom.Element {
	return page.Doc.FindAll(f.fn)
}

func (f *predicateFinder) Description() string {
	return f.desc
}

// ByPredicate returns a finder that matches elements satisfying fn.
func ByPredicate(fn func(dom.Element) bool) Finder {
	return &predicateFinder{fn: fn, desc: "ByPredicate(...)"}
}

// descendantFinder finds elements matching 'matching' that are
// descendants of elements matching 'of'.
type descendantFinder struct {
	of       Finder
	matching Finder
}

func (f *descendantFinder) Evaluate(page Page) []dom.Element {
	ancestors := f.of.Evaluate(page)
	if len(ancestors) == 0 {
		return nil
	}
	candidates := f.matching.Evaluate(page)
	var results []dom.Element
	for _, c := range candidates {
		for _, a := range ancestors {
			if a != c && a.Contains(c) {
				results = append(results, c)
				break
			}
		}
	}
	return results
}

func (f *descendantFinder) Description() string {
	return fmt.Sprintf("Descendant(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Descendant returns a finder that matches elements satisfying
// 'matching' that are descendants of elements matching 'of'.
func Descendant(of, matching Finder) Finder {
	return &descendantFinder{of: of, matching: matching}
}

// ancestorFinder finds elements matching 'matching' that are ancestors
// of elements matching 'of'.
type ancestorFinder struct {
	of       Finder
	matching Finder
}

func (f *ancestorFinder) Evaluate(page Page) []dom.Element {
	descendants := f.of.Evaluate(page)
	if len(descendants) == 0 {
		return nil
	}
	candidates := f.matching.Evaluate(page)
	var results []dom.Element
	for _, c := range candidates {
		for _, d := range descendants {
			if c != d && c.Contains(d) {
				results = append(results, c)
				break
			}
		}
	}
	return results
}

func (f *ancestorFinder) Description() string {
	return fmt.Sprintf("Ancestor(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Ancestor returns a finder that matches elements satisfying
// 'matching' that are ancestors of elements matching 'of'.
func Ancestor(of, matching Finder) Finder {
	return &ancestorFinder{of: of, matching: matching}
}
