package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Element is a handle onto one node of a Document. The zero Element is
// invalid. Elements are values; two handles are the same element when they
// wrap the same underlying node, so Element is usable as a map key.
//
// Structural misuse (cross-document surgery, cycles, zero handles) panics,
// matching the behavior of the underlying html.Node methods. Runtime
// conditions such as dispatching on a detached element are reported through
// pkg/errors instead.
type Element struct {
	d *Document
	n *html.Node
}

// IsZero reports whether the handle is the zero Element.
func (e Element) IsZero() bool {
	return e.n == nil
}

// IsRoot reports whether the handle wraps the document node itself rather
// than an element.
func (e Element) IsRoot() bool {
	return e.n != nil && e.n.Type == html.DocumentNode
}

// Document returns the owning document.
func (e Element) Document() *Document {
	return e.d
}

// Node exposes the underlying parsed node. Mutating the node directly
// bypasses the document's mutation log; prefer the Element methods.
func (e Element) Node() *html.Node {
	return e.n
}

// Tag returns the lowercase tag name, or "" for the document root.
func (e Element) Tag() string {
	if e.n == nil || e.n.Type != html.ElementNode {
		return ""
	}
	return e.n.Data
}

// ID returns the value of the id attribute, or "".
func (e Element) ID() string {
	return e.Attr("id")
}

// Attr returns the value of the named attribute, or "" when absent.
func (e Element) Attr(name string) string {
	if e.n == nil {
		return ""
	}
	for _, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val
		}
	}
	return ""
}

// HasAttr reports whether the named attribute is present.
func (e Element) HasAttr(name string) bool {
	if e.n == nil {
		return false
	}
	for _, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == name {
			return true
		}
	}
	return false
}

// Attrs returns a copy of the element's attributes in source order.
func (e Element) Attrs() []html.Attribute {
	if e.n == nil || len(e.n.Attr) == 0 {
		return nil
	}
	attrs := make([]html.Attribute, len(e.n.Attr))
	copy(attrs, e.n.Attr)
	return attrs
}

// SetAttr sets the named attribute. Setting an attribute to its current
// value records nothing.
func (e Element) SetAttr(name, value string) {
	e.mustElement("SetAttr")
	name = strings.ToLower(name)
	for i, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == name {
			if a.Val == value {
				return
			}
			e.n.Attr[i].Val = value
			e.recordAttrChange(name, a.Val)
			return
		}
	}
	e.n.Attr = append(e.n.Attr, html.Attribute{Key: name, Val: value})
	e.recordAttrChange(name, "")
}

// RemoveAttr removes the named attribute. Removing an absent attribute
// records nothing.
func (e Element) RemoveAttr(name string) {
	e.mustElement("RemoveAttr")
	name = strings.ToLower(name)
	for i, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == name {
			old := a.Val
			e.n.Attr = append(e.n.Attr[:i], e.n.Attr[i+1:]...)
			e.recordAttrChange(name, old)
			return
		}
	}
}

// recordAttrChange logs an attribute mutation when the element is attached
// to the document tree. Attribute edits on detached subtrees are invisible
// to observers until the subtree enters the tree.
func (e Element) recordAttrChange(name, old string) {
	e.d.bumpRevision()
	if e.d.Contains(e) {
		e.d.recordAttribute(e, name, old)
	}
}

// Tokens returns the whitespace-separated tokens of the named attribute, in
// attribute order.
func (e Element) Tokens(name string) []string {
	return strings.Fields(e.Attr(name))
}

// HasToken reports whether the named attribute contains the given token.
func (e Element) HasToken(name, token string) bool {
	for _, t := range e.Tokens(name) {
		if t == token {
			return true
		}
	}
	return false
}

// AddToken appends a token to the named attribute if not already present.
func (e Element) AddToken(name, token string) {
	if token == "" || e.HasToken(name, token) {
		return
	}
	current := e.Attr(name)
	if current == "" {
		e.SetAttr(name, token)
		return
	}
	e.SetAttr(name, current+" "+token)
}

// RemoveToken removes a token from the named attribute. The attribute is
// removed entirely when its last token goes.
func (e Element) RemoveToken(name, token string) {
	tokens := e.Tokens(name)
	kept := tokens[:0]
	for _, t := range tokens {
		if t != token {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(tokens) {
		return
	}
	if len(kept) == 0 {
		e.RemoveAttr(name)
		return
	}
	e.SetAttr(name, strings.Join(kept, " "))
}

// Parent returns the parent element. ok is false for the document element,
// the root, detached top-level elements, and the zero Element.
func (e Element) Parent() (Element, bool) {
	if e.n == nil || e.n.Parent == nil || e.n.Parent.Type != html.ElementNode {
		return Element{}, false
	}
	return Element{d: e.d, n: e.n.Parent}, true
}

// Children returns the element children in document order.
func (e Element) Children() []Element {
	if e.n == nil {
		return nil
	}
	var out []Element
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, Element{d: e.d, n: c})
		}
	}
	return out
}

// FirstChildElement returns the first element child.
func (e Element) FirstChildElement() (Element, bool) {
	if e.n == nil {
		return Element{}, false
	}
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return Element{d: e.d, n: c}, true
		}
	}
	return Element{}, false
}

// NextSiblingElement returns the next sibling element.
func (e Element) NextSiblingElement() (Element, bool) {
	if e.n == nil {
		return Element{}, false
	}
	for s := e.n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return Element{d: e.d, n: s}, true
		}
	}
	return Element{}, false
}

// Closest returns the nearest element, starting with e itself and walking
// ancestors, for which the predicate returns true.
func (e Element) Closest(pred func(Element) bool) (Element, bool) {
	for n := e.n; n != nil && n.Type == html.ElementNode; n = n.Parent {
		candidate := Element{d: e.d, n: n}
		if pred(candidate) {
			return candidate, true
		}
	}
	return Element{}, false
}

// Contains reports whether other is e or a descendant of e.
func (e Element) Contains(other Element) bool {
	if e.n == nil || other.n == nil || e.d != other.d {
		return false
	}
	for n := other.n; n != nil; n = n.Parent {
		if n == e.n {
			return true
		}
	}
	return false
}

// Walk visits e (when it is an element) and every descendant element in
// depth-first document order. Returning false stops the walk.
func (e Element) Walk(visit func(Element) bool) {
	e.walkSubtree(visit)
}

func (e Element) walkSubtree(visit func(Element) bool) bool {
	if e.n == nil {
		return true
	}
	if e.n.Type == html.ElementNode {
		if !visit(e) {
			return false
		}
	}
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if !(Element{d: e.d, n: c}).walkSubtree(visit) {
			return false
		}
	}
	return true
}

// Text returns the concatenated text content of the subtree.
func (e Element) Text() string {
	if e.n == nil {
		return ""
	}
	var sb strings.Builder
	var collect func(n *html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(e.n)
	return sb.String()
}

// SetText replaces the element's children with a single text node. Element
// children being discarded produce removal records.
func (e Element) SetText(text string) {
	e.mustElement("SetText")
	attached := e.d.Contains(e)
	for c := e.n.FirstChild; c != nil; {
		next := c.NextSibling
		if attached && c.Type == html.ElementNode {
			e.d.recordSubtree(ElementRemoved, Element{d: e.d, n: c})
		}
		e.n.RemoveChild(c)
		c = next
	}
	if text != "" {
		e.n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
	e.d.bumpRevision()
}

// AppendChild attaches child as the last child of e. A child attached
// elsewhere is detached first (producing removal records when it leaves the
// document tree). Records additions when the child thereby enters the
// document tree.
func (e Element) AppendChild(child Element) {
	e.prepareInsert(child, "AppendChild")
	e.n.AppendChild(child.n)
	e.finishInsert(child)
}

// InsertBefore attaches child immediately before reference, which must be a
// current child of e.
func (e Element) InsertBefore(child, reference Element) {
	if reference.n == nil || reference.n.Parent != e.n {
		panic("dom: InsertBefore reference is not a child of the target element")
	}
	e.prepareInsert(child, "InsertBefore")
	e.n.InsertBefore(child.n, reference.n)
	e.finishInsert(child)
}

// prepareInsert validates a structural insertion and detaches the child from
// its current position, recording removals if it leaves the document tree.
func (e Element) prepareInsert(child Element, op string) {
	e.mustElement(op)
	if child.n == nil {
		panic("dom: " + op + " called with a zero child element")
	}
	if child.d != e.d {
		panic("dom: " + op + " called with a child from another document")
	}
	if child.n == e.n || child.Contains(e) {
		panic("dom: " + op + " would create a cycle")
	}
	if child.n.Parent != nil {
		if e.d.Contains(child) {
			e.d.recordSubtree(ElementRemoved, child)
		}
		child.n.Parent.RemoveChild(child.n)
	}
}

// finishInsert records additions when the child just entered the document
// tree.
func (e Element) finishInsert(child Element) {
	if e.d.Contains(child) {
		e.d.recordSubtree(ElementAdded, child)
	}
	e.d.bumpRevision()
}

// RemoveChild detaches child from e, recording removals for the subtree.
func (e Element) RemoveChild(child Element) {
	e.mustElement("RemoveChild")
	if child.n == nil || child.n.Parent != e.n {
		panic("dom: RemoveChild called with a non-child element")
	}
	if e.d.Contains(child) {
		e.d.recordSubtree(ElementRemoved, child)
	}
	e.n.RemoveChild(child.n)
	e.d.bumpRevision()
}

// Remove detaches e from its parent. Detached elements keep their listeners
// and may be re-attached later.
func (e Element) Remove() {
	if e.n == nil || e.n.Parent == nil {
		return
	}
	if e.d.Contains(e) {
		e.d.recordSubtree(ElementRemoved, e)
	}
	e.n.Parent.RemoveChild(e.n)
	e.d.bumpRevision()
}

// Path returns a readable location of the element for error and log output,
// e.g. "html > body > div#cart > button[1]".
func (e Element) Path() string {
	if e.n == nil {
		return "<zero>"
	}
	if e.n.Type == html.DocumentNode {
		return "#document"
	}
	var segs []string
	for n := e.n; n != nil && n.Type == html.ElementNode; n = n.Parent {
		seg := n.Data
		id := ""
		for _, a := range n.Attr {
			if a.Namespace == "" && a.Key == "id" {
				id = a.Val
				break
			}
		}
		if id != "" {
			seg += "#" + id
		} else {
			idx := 0
			for s := n.PrevSibling; s != nil; s = s.PrevSibling {
				if s.Type == html.ElementNode && s.Data == n.Data {
					idx++
				}
			}
			if idx > 0 {
				seg += fmt.Sprintf("[%d]", idx)
			}
		}
		segs = append(segs, seg)
	}
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return strings.Join(segs, " > ")
}

func (e Element) mustElement(op string) {
	if e.n == nil {
		panic("dom: " + op + " called on a zero element")
	}
	if e.n.Type != html.ElementNode {
		panic("dom: " + op + " called on a non-element node")
	}
}
