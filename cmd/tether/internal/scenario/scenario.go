// Package scenario applies scripted interaction steps to a running
// application. Scenarios are YAML files used by "tether run" to
// exercise a document before its final state is rendered:
//
//	steps:
//	  - fire: click
//	    on: "#next"
//	  - fire: keydown
//	    key: enter
//	    on: "#search"
//	  - set: data-gallery-index-value
//	    value: "2"
//	    on: "#deck"
//	  - append: '<li data-controller="item"></li>'
//	    on: "#list"
//	  - text: "Sold out"
//	    on: "#status"
//	  - remove-attr: disabled
//	    on: "#buy"
//	  - remove: "#banner"
//
// Element references are "#id" or a tag name (first match in document
// order).
package scenario

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/go-tether/tether/pkg/dom"
	"github.com/go-tether/tether/pkg/engine"
	"github.com/go-tether/tether/pkg/errors"
)

// Scenario is an ordered list of interaction steps.
type Scenario struct {
	Steps []Step `yaml:"steps"`
}

// Step is one interaction. Exactly one verb field must be set.
type Step struct {
	// Fire dispatches an event of this type on the referenced element.
	Fire string `yaml:"fire,omitempty"`
	// Key carries a logical key name for fired keyboard events.
	Key string `yaml:"key,omitempty"`

	// Set writes the named attribute (with Value) on the referenced
	// element.
	Set   string `yaml:"set,omitempty"`
	Value string `yaml:"value,omitempty"`

	// RemoveAttr removes the named attribute from the referenced
	// element.
	RemoveAttr string `yaml:"remove-attr,omitempty"`

	// Append parses this markup and appends it to the referenced
	// element.
	Append string `yaml:"append,omitempty"`

	// Remove detaches the element referenced by its own value; no On
	// field is used.
	Remove string `yaml:"remove,omitempty"`

	// Text replaces the text content of the referenced element.
	Text string `yaml:"text,omitempty"`

	// On references the element a verb acts on: "#id" or a tag name.
	On string `yaml:"on,omitempty"`
}

func (s *Step) verbs() []string {
	var v []string
	if s.Fire != "" {
		v = append(v, "fire")
	}
	if s.Set != "" {
		v = append(v, "set")
	}
	if s.RemoveAttr != "" {
		v = append(v, "remove-attr")
	}
	if s.Append != "" {
		v = append(v, "append")
	}
	if s.Remove != "" {
		v = append(v, "remove")
	}
	if s.Text != "" {
		v = append(v, "text")
	}
	return v
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, parseError(fmt.Errorf("read %s: %w", path, err))
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Parse decodes scenario YAML and validates every step.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, parseError(err)
	}
	for i := range sc.Steps {
		step := &sc.Steps[i]
		verbs := step.verbs()
		switch {
		case len(verbs) == 0:
			return nil, parseError(fmt.Errorf("step %d: no verb (fire, set, remove-attr, append, remove, text)", i+1))
		case len(verbs) > 1:
			return nil, parseError(fmt.Errorf("step %d: multiple verbs %v", i+1, verbs))
		}
		verb := verbs[0]
		if verb == "remove" {
			if step.On != "" {
				return nil, parseError(fmt.Errorf("step %d: remove takes its element reference directly, not via on", i+1))
			}
			continue
		}
		if step.On == "" {
			return nil, parseError(fmt.Errorf("step %d: %s requires on", i+1, verb))
		}
		if step.Key != "" && verb != "fire" {
			return nil, parseError(fmt.Errorf("step %d: key only applies to fire", i+1))
		}
	}
	return &sc, nil
}

func parseError(err error) error {
	return &errors.TetherError{Op: "scenario.Parse", Kind: errors.KindParse, Err: err}
}

// Apply runs every step against the application in order. The
// application flushes after each step, so later steps observe the
// settled effects of earlier ones.
func (sc *Scenario) Apply(app *engine.Application) error {
	for i := range sc.Steps {
		if err := applyStep(app, &sc.Steps[i]); err != nil {
			return fmt.Errorf("scenario step %d: %w", i+1, err)
		}
	}
	return nil
}

func applyStep(app *engine.Application, step *Step) error {
	if step.Remove != "" {
		el, err := resolve(app.Document(), step.Remove)
		if err != nil {
			return err
		}
		app.Update(func(*dom.Document) { el.Remove() })
		return nil
	}

	el, err := resolve(app.Document(), step.On)
	if err != nil {
		return err
	}
	switch {
	case step.Fire != "":
		ev := dom.NewEvent(step.Fire)
		ev.Key = step.Key
		app.DispatchEvent(el, ev)
	case step.Set != "":
		app.Update(func(*dom.Document) { el.SetAttr(step.Set, step.Value) })
	case step.RemoveAttr != "":
		app.Update(func(*dom.Document) { el.RemoveAttr(step.RemoveAttr) })
	case step.Append != "":
		var perr error
		app.Update(func(doc *dom.Document) {
			els, err := doc.ParseFragment(step.Append, el)
			if err != nil {
				perr = err
				return
			}
			for _, child := range els {
				el.AppendChild(child)
			}
		})
		if perr != nil {
			return fmt.Errorf("append markup: %w", perr)
		}
	case step.Text != "":
		app.Update(func(*dom.Document) { el.SetText(step.Text) })
	}
	return nil
}

// resolve finds the element a reference names: "#id" looks up by id,
// anything else is a tag name matched in document order.
func resolve(doc *dom.Document, ref string) (dom.Element, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return dom.Element{}, stderrors.New("empty element reference")
	}
	if strings.HasPrefix(ref, "#") {
		id := strings.TrimPrefix(ref, "#")
		el, ok := doc.GetElementByID(id)
		if !ok {
			return dom.Element{}, fmt.Errorf("no element with id %q", id)
		}
		return el, nil
	}
	tag := strings.ToLower(ref)
	el, ok := doc.Find(func(e dom.Element) bool { return e.Tag() == tag })
	if !ok {
		return dom.Element{}, fmt.Errorf("no <%s> element", tag)
	}
	return el, nil
}
