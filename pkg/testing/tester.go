package testing

import (
	"fmt"
	"testing"

	"github.com/go-tether/tether/pkg/core"
	"github.com/go-tether/tether/pkg/dom"
	"github.com/go-tether/tether/pkg/engine"
	"github.com/go-tether/tether/pkg/schema"
)

// ControllerTester drives an Application against a test document. It
// wraps every mutation in an Update so controllers connect, disconnect,
// and receive notifications before the next assertion runs.
//
// Create one with NewTesterWithT, load markup, register controllers,
// Start, then interact. Misuse (loading bad markup, finding nothing,
// starting twice) fails the test immediately.
type ControllerTester struct {
	t        testing.TB
	registry *core.Registry
	schema   schema.Schema
	app      *engine.Application
	started  bool
}

// NewTester creates a tester without an attached testing.TB; harness
// errors panic instead of failing a test. Call Cleanup when done, or
// use NewTesterWithT instead.
func NewTester() *ControllerTester {
	return &ControllerTester{
		registry: core.NewRegistry(),
		schema:   schema.DefaultSchema(),
	}
}

// NewTesterWithT creates a tester that fails t on misuse and stops the
// application via t.Cleanup. This is the recommended constructor.
func NewTesterWithT(t *testing.T) *ControllerTester {
	tester := NewTester()
	tester.t = t
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup stops the running application. Safe to call more than once.
func (ct *ControllerTester) Cleanup() {
	if ct.app != nil && ct.started {
		ct.app.Stop()
		ct.started = false
	}
}

func (ct *ControllerTester) fatalf(format string, args ...any) {
	if ct.t != nil {
		ct.t.Helper()
		ct.t.Fatalf(format, args...)
		return
	}
	panic(fmt.Sprintf(format, args...))
}

// SetSchema replaces the attribute schema. Must be called before
// LoadHTML.
func (ct *ControllerTester) SetSchema(s schema.Schema) {
	if ct.app != nil {
		ct.fatalf("SetSchema must be called before LoadHTML")
	}
	ct.schema = s
}

// LoadHTML parses markup and builds a fresh application over it,
// keeping registered controllers. A previously loaded application is
// stopped first.
func (ct *ControllerTester) LoadHTML(markup string) {
	ct.Cleanup()
	doc, err := dom.ParseString(markup)
	if err != nil {
		ct.fatalf("LoadHTML: %v", err)
		return
	}
	ct.app = engine.New(doc, engine.WithSchema(ct.schema), engine.WithRegistry(ct.registry))
}

// Register adds a controller. Works before or after LoadHTML and
// Start.
func (ct *ControllerTester) Register(identifier string, ctor core.Constructor) {
	if ct.app != nil {
		if err := ct.app.Register(identifier, ctor); err != nil {
			ct.fatalf("Register(%s): %v", identifier, err)
		}
		return
	}
	if err := ct.registry.Register(identifier, ctor); err != nil {
		ct.fatalf("Register(%s): %v", identifier, err)
	}
}

// Start connects controllers for the loaded document.
func (ct *ControllerTester) Start() {
	if ct.app == nil {
		ct.fatalf("Start called before LoadHTML")
		return
	}
	if err := ct.app.Start(); err != nil {
		ct.fatalf("Start: %v", err)
		return
	}
	ct.started = true
}

// App returns the application. Nil before LoadHTML.
func (ct *ControllerTester) App() *engine.Application {
	return ct.app
}

// Document returns the loaded document.
func (ct *ControllerTester) Document() *dom.Document {
	if ct.app == nil {
		ct.fatalf("Document called before LoadHTML")
		return nil
	}
	return ct.app.Document()
}

// HTML returns the serialized current document.
func (ct *ControllerTester) HTML() string {
	return ct.Document().HTML()
}

// Find evaluates a finder against the current document.
func (ct *ControllerTester) Find(finder Finder) FinderResult {
	page := Page{Doc: ct.Document(), Schema: ct.schema}
	return FinderResult{elements: finder.Evaluate(page), finder: finder}
}

// ControllerFor returns the connected controller bound to the first
// element the finder matches. The test fails when the finder matches
// nothing or the element has no such controller.
func (ct *ControllerTester) ControllerFor(finder Finder, identifier string) core.Controller {
	el := ct.Find(finder).First()
	c, ok := ct.app.ControllerFor(el, identifier)
	if !ok {
		ct.fatalf("no connected %q controller on %s", identifier, el.Path())
		return nil
	}
	return c
}

// Click dispatches a click event on the first matched element and
// flushes.
func (ct *ControllerTester) Click(finder Finder) bool {
	return ct.Fire(finder, "click")
}

// Fire dispatches an event of the given type on the first matched
// element and flushes. It reports false when a listener prevented the
// default.
func (ct *ControllerTester) Fire(finder Finder, eventType string) bool {
	return ct.FireEvent(finder, dom.NewEvent(eventType))
}

// FireKey dispatches a keyboard-style event carrying a logical key
// name, for exercising key-filtered actions.
func (ct *ControllerTester) FireKey(finder Finder, eventType, key string) bool {
	ev := dom.NewEvent(eventType)
	ev.Key = key
	return ct.FireEvent(finder, ev)
}

// FireEvent dispatches a prepared event on the first matched element
// and flushes.
func (ct *ControllerTester) FireEvent(finder Finder, ev *dom.Event) bool {
	el := ct.Find(finder).First()
	return ct.app.DispatchEvent(el, ev)
}

// SetAttr sets an attribute on the first matched element and flushes.
func (ct *ControllerTester) SetAttr(finder Finder, name, value string) {
	el := ct.Find(finder).First()
	ct.app.Update(func(*dom.Document) { el.SetAttr(name, value) })
}

// RemoveAttr removes an attribute from the first matched element and
// flushes.
func (ct *ControllerTester) RemoveAttr(finder Finder, name string) {
	el := ct.Find(finder).First()
	ct.app.Update(func(*dom.Document) { el.RemoveAttr(name) })
}

// SetText replaces the text content of the first matched element and
// flushes.
func (ct *ControllerTester) SetText(finder Finder, text string) {
	el := ct.Find(finder).First()
	ct.app.Update(func(*dom.Document) { el.SetText(text) })
}

// Append parses markup in the context of the first matched element,
// appends the resulting elements to it, and flushes.
func (ct *ControllerTester) Append(finder Finder, markup string) {
	parent := ct.Find(finder).First()
	ct.app.Update(func(doc *dom.Document) {
		els, err := doc.ParseFragment(markup, parent)
		if err != nil {
			ct.fatalf("Append: %v", err)
			return
		}
		for _, el := range els {
			parent.AppendChild(el)
		}
	})
}

// Remove detaches every matched element and flushes. Unlike the other
// mutators it requires at least one match rather than exactly one, so
// tests can clear repeated rows in one call.
func (ct *ControllerTester) Remove(finder Finder) {
	els := ct.Find(finder).All()
	if len(els) == 0 {
		ct.fatalf("Remove matched nothing: %s", finder.Description())
		return
	}
	ct.app.Update(func(*dom.Document) {
		for _, el := range els {
			el.Remove()
		}
	})
}

// Flush drains pending dispatch callbacks and document mutations.
// The interaction helpers flush on their own; Flush is for work queued
// through Application.Dispatch.
func (ct *ControllerTester) Flush() {
	if ct.app != nil {
		ct.app.Flush()
	}
}
