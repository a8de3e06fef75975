package observer

import "github.com/go-tether/tether/pkg/dom"

// AttributeDelegate receives attribute changes from an AttributeObserver.
type AttributeDelegate interface {
	AttributeValueChanged(el dom.Element, name, old string)
}

// AttributeObserver forwards attribute change records for a single element,
// typically a controller's scope root for its value attributes. The delegate
// filters by name; the observer only scopes by element.
type AttributeObserver struct {
	element  dom.Element
	delegate AttributeDelegate
	stopped  bool
}

// NewAttributeObserver watches attribute changes on el.
func NewAttributeObserver(el dom.Element, delegate AttributeDelegate) *AttributeObserver {
	return &AttributeObserver{element: el, delegate: delegate}
}

// Stop silences the observer permanently.
func (o *AttributeObserver) Stop() { o.stopped = true }

// ProcessMutations routes the element's attribute change records.
func (o *AttributeObserver) ProcessMutations(records []dom.MutationRecord) {
	if o.stopped {
		return
	}
	for _, r := range records {
		if r.Kind == dom.AttributeChanged && r.Element == o.element {
			o.delegate.AttributeValueChanged(r.Element, r.AttrName, r.OldValue)
			if o.stopped {
				return
			}
		}
	}
}
