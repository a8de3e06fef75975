package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-tether/tether/pkg/tether"
)

// session drives one running demo. Its helpers look elements up by id,
// fire events through the application, and narrate results to the
// output writer.
type session struct {
	app *tether.Application
	out io.Writer
}

// say writes one indented narration line.
func (s *session) say(format string, args ...any) {
	fmt.Fprintf(s.out, "  "+format+"\n", args...)
}

// elem returns the element with the given id.
func (s *session) elem(id string) (tether.Element, error) {
	el, ok := s.app.Document().GetElementByID(id)
	if !ok {
		return tether.Element{}, fmt.Errorf("no element with id %q", id)
	}
	return el, nil
}

// click fires a click event on the element with the given id.
func (s *session) click(id string) error {
	return s.fire(id, "click")
}

// fire dispatches a fresh event of the given type on the element.
func (s *session) fire(id, eventType string) error {
	el, err := s.elem(id)
	if err != nil {
		return err
	}
	s.app.DispatchEvent(el, tether.NewEvent(eventType))
	return nil
}

// press fires a keydown for the logical key on the document root, where
// @document and @window actions listen.
func (s *session) press(key string) {
	ev := tether.NewEvent("keydown")
	ev.Key = key
	s.app.DispatchEvent(s.app.Document().Root(), ev)
}

// typeInto replaces the input's value attribute and fires its input
// event, approximating a user typing.
func (s *session) typeInto(id, value string) error {
	if err := s.setAttr(id, "value", value); err != nil {
		return err
	}
	return s.fire(id, "input")
}

// setAttr writes one attribute through the application.
func (s *session) setAttr(id, name, value string) error {
	el, err := s.elem(id)
	if err != nil {
		return err
	}
	s.app.Update(func(*tether.Document) {
		el.SetAttr(name, value)
	})
	return nil
}

// append parses the fragment in the context of the identified parent
// and appends the resulting elements to it.
func (s *session) append(parentID, fragment string) error {
	parent, err := s.elem(parentID)
	if err != nil {
		return err
	}
	var perr error
	s.app.Update(func(doc *tether.Document) {
		els, err := doc.ParseFragment(fragment, parent)
		if err != nil {
			perr = fmt.Errorf("parse fragment: %w", err)
			return
		}
		for _, el := range els {
			parent.AppendChild(el)
		}
	})
	return perr
}

// remove detaches the identified element from the document.
func (s *session) remove(id string) error {
	el, err := s.elem(id)
	if err != nil {
		return err
	}
	s.app.Update(func(*tether.Document) {
		el.Remove()
	})
	return nil
}

// textOf returns the element's trimmed text, "" when the element is
// missing.
func (s *session) textOf(id string) string {
	el, ok := s.app.Document().GetElementByID(id)
	if !ok {
		return ""
	}
	return strings.TrimSpace(el.Text())
}

// attrOf returns the element's attribute value, "" when missing.
func (s *session) attrOf(id, name string) string {
	el, ok := s.app.Document().GetElementByID(id)
	if !ok {
		return ""
	}
	return el.Attr(name)
}

// visibleTexts returns the trimmed texts of the elements matching pred
// that do not carry the hidden attribute, in document order.
func (s *session) visibleTexts(pred func(tether.Element) bool) []string {
	var out []string
	for _, el := range s.app.Document().FindAll(pred) {
		if el.HasAttr("hidden") {
			continue
		}
		out = append(out, strings.TrimSpace(el.Text()))
	}
	return out
}
