package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document owns a mutable HTML tree plus the mutation log and event
// listener table layered over it.
//
// Document is not safe for concurrent use; callers (normally the engine)
// must serialize access.
type Document struct {
	root      *html.Node
	listeners map[*html.Node][]*listenerEntry
	records   []MutationRecord
	revision  uint64
}

// Parse reads an HTML document from r.
//
// The parser applies the standard HTML5 tree construction rules, so partial
// markup is normalized into a full html/head/body document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse document: %w", err)
	}
	return &Document{
		root:      root,
		listeners: make(map[*html.Node][]*listenerEntry),
	}, nil
}

// ParseString parses an HTML document from a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// MustParse parses an HTML document from a string and panics on error.
// Intended for tests and fixtures with known-good markup.
func MustParse(s string) *Document {
	doc, err := ParseString(s)
	if err != nil {
		panic(err)
	}
	return doc
}

// ParseFragment parses markup in the context of the given parent element and
// returns the resulting top-level elements, detached. Text-only nodes in the
// fragment are dropped; use SetText for text content.
func (d *Document) ParseFragment(markup string, context Element) ([]Element, error) {
	if context.n == nil {
		return nil, fmt.Errorf("dom: parse fragment: zero context element")
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context.n)
	if err != nil {
		return nil, fmt.Errorf("dom: parse fragment: %w", err)
	}
	var elements []Element
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			elements = append(elements, Element{d: d, n: n})
		}
	}
	return elements, nil
}

// Render writes the serialized document to w.
func (d *Document) Render(w io.Writer) error {
	if err := html.Render(w, d.root); err != nil {
		return fmt.Errorf("dom: render document: %w", err)
	}
	return nil
}

// HTML returns the serialized document.
func (d *Document) HTML() string {
	var sb strings.Builder
	// Rendering an in-memory tree cannot fail on a strings.Builder.
	_ = html.Render(&sb, d.root)
	return sb.String()
}

// Root returns the document node itself. The root participates in event
// dispatch (global listeners attach here) but is not an element: it has no
// tag or attributes.
func (d *Document) Root() Element {
	return Element{d: d, n: d.root}
}

// DocumentElement returns the <html> element.
func (d *Document) DocumentElement() (Element, bool) {
	return d.childByAtom(d.root, atom.Html)
}

// Head returns the <head> element.
func (d *Document) Head() (Element, bool) {
	if root, ok := d.DocumentElement(); ok {
		return d.childByAtom(root.n, atom.Head)
	}
	return Element{}, false
}

// Body returns the <body> element.
func (d *Document) Body() (Element, bool) {
	if root, ok := d.DocumentElement(); ok {
		return d.childByAtom(root.n, atom.Body)
	}
	return Element{}, false
}

func (d *Document) childByAtom(parent *html.Node, a atom.Atom) (Element, bool) {
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			return Element{d: d, n: c}, true
		}
	}
	return Element{}, false
}

// GetElementByID returns the first element in document order whose id
// attribute equals id.
func (d *Document) GetElementByID(id string) (Element, bool) {
	var found Element
	ok := false
	d.Root().walkSubtree(func(e Element) bool {
		if e.ID() == id {
			found = e
			ok = true
			return false
		}
		return true
	})
	return found, ok
}

// CreateElement creates a detached element with the given tag name.
// Attach it with AppendChild or InsertBefore.
func (d *Document) CreateElement(tag string) Element {
	tag = strings.ToLower(strings.TrimSpace(tag))
	a := atom.Lookup([]byte(tag))
	data := tag
	if a != 0 {
		data = a.String()
	}
	n := &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     data,
	}
	return Element{d: d, n: n}
}

// Revision returns a counter that increments on every mutation. Useful for
// cheap change detection in tools and tests.
func (d *Document) Revision() uint64 {
	return d.revision
}

func (d *Document) bumpRevision() {
	d.revision++
}

// Contains reports whether el is attached to this document's tree.
func (d *Document) Contains(el Element) bool {
	if el.d != d || el.n == nil {
		return false
	}
	for n := el.n; n != nil; n = n.Parent {
		if n == d.root {
			return true
		}
	}
	return false
}

// Walk visits every element in the document in depth-first document order.
// Returning false from the visitor stops the walk.
func (d *Document) Walk(visit func(Element) bool) {
	d.Root().walkSubtree(visit)
}

// FindAll returns every element matching the predicate, in document order.
func (d *Document) FindAll(pred func(Element) bool) []Element {
	var out []Element
	d.Walk(func(e Element) bool {
		if pred(e) {
			out = append(out, e)
		}
		return true
	})
	return out
}

// Find returns the first element matching the predicate in document order.
func (d *Document) Find(pred func(Element) bool) (Element, bool) {
	var found Element
	ok := false
	d.Walk(func(e Element) bool {
		if pred(e) {
			found = e
			ok = true
			return false
		}
		return true
	})
	return found, ok
}
