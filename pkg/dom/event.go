package dom

import (
	stderrors "errors"

	"golang.org/x/net/html"

	"github.com/go-tether/tether/pkg/errors"
)

// EventPhase identifies where in the dispatch sequence an event currently is.
type EventPhase int

const (
	// PhaseNone means the event has not been dispatched.
	PhaseNone EventPhase = iota
	// PhaseCapture runs listeners from the root down to the target's parent.
	PhaseCapture
	// PhaseTarget runs listeners on the target itself.
	PhaseTarget
	// PhaseBubble runs listeners from the target's parent up to the root.
	PhaseBubble
)

func (p EventPhase) String() string {
	switch p {
	case PhaseCapture:
		return "capture"
	case PhaseTarget:
		return "target"
	case PhaseBubble:
		return "bubble"
	default:
		return "none"
	}
}

// Event is a synthetic DOM event. Events are single-use: create a fresh one
// for every Dispatch call.
//
// The exported fields may be adjusted between NewEvent and Dispatch;
// afterwards they are read-only.
type Event struct {
	// Type is the event name ("click", "submit", "gallery:selected", ...).
	Type string
	// Target is the element the event was dispatched on. Set by Dispatch.
	Target Element
	// CurrentTarget is the element whose listeners are currently running.
	CurrentTarget Element
	// Detail carries arbitrary payload data for custom events.
	Detail any
	// Bubbles controls whether the bubble phase runs. Default true.
	Bubbles bool
	// Cancelable controls whether PreventDefault has any effect. Default true.
	Cancelable bool
	// Key carries the logical key name for keyboard events ("enter", "esc").
	Key string

	phase      EventPhase
	dispatched bool
	stopped    bool
	stoppedNow bool
	prevented  bool
}

// NewEvent creates an event that bubbles and is cancelable.
func NewEvent(eventType string) *Event {
	return &Event{Type: eventType, Bubbles: true, Cancelable: true}
}

// NewCustomEvent creates a bubbling, cancelable event carrying detail data.
func NewCustomEvent(eventType string, detail any) *Event {
	ev := NewEvent(eventType)
	ev.Detail = detail
	return ev
}

// Phase returns the current dispatch phase.
func (ev *Event) Phase() EventPhase {
	return ev.phase
}

// StopPropagation prevents any further elements from seeing the event.
// Remaining listeners on the current element still run.
func (ev *Event) StopPropagation() {
	ev.stopped = true
}

// StopImmediatePropagation prevents all remaining listeners from seeing the
// event, including those on the current element.
func (ev *Event) StopImmediatePropagation() {
	ev.stopped = true
	ev.stoppedNow = true
}

// PreventDefault marks the event's default action as prevented. No-op when
// the event is not cancelable.
func (ev *Event) PreventDefault() {
	if ev.Cancelable {
		ev.prevented = true
	}
}

// DefaultPrevented reports whether PreventDefault was called.
func (ev *Event) DefaultPrevented() bool {
	return ev.prevented
}

// ListenerOptions configures a listener registration.
type ListenerOptions struct {
	// Capture runs the listener during the capture phase instead of the
	// target/bubble phases.
	Capture bool
	// Once unbinds the listener before its first invocation.
	Once bool
}

type listenerEntry struct {
	eventType string
	fn        func(*Event)
	opts      ListenerOptions
	removed   bool
}

// AddListener registers a callback for events of the given type on el and
// returns an unbind function. Listeners survive detach/re-attach of the
// element; they fire only while the element participates in dispatch.
func (d *Document) AddListener(el Element, eventType string, fn func(*Event), opts ListenerOptions) func() {
	if el.n == nil {
		panic("dom: AddListener called on a zero element")
	}
	if el.d != d {
		panic("dom: AddListener called with an element from another document")
	}
	if eventType == "" {
		panic("dom: AddListener called with an empty event type")
	}
	if fn == nil {
		panic("dom: AddListener called with a nil callback")
	}
	entry := &listenerEntry{eventType: eventType, fn: fn, opts: opts}
	d.listeners[el.n] = append(d.listeners[el.n], entry)
	node := el.n
	return func() {
		d.unbindEntry(node, entry)
	}
}

// unbindEntry marks the entry removed and splices it out of the node's list.
// Marking first keeps in-flight dispatch snapshots correct.
func (d *Document) unbindEntry(node *html.Node, entry *listenerEntry) {
	if entry.removed {
		return
	}
	entry.removed = true
	entries := d.listeners[node]
	for i, candidate := range entries {
		if candidate == entry {
			d.listeners[node] = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	if len(d.listeners[node]) == 0 {
		delete(d.listeners, node)
	}
}

// ListenerCount returns the number of live listeners on el. Useful for
// verifying engine teardown in tests.
func (d *Document) ListenerCount(el Element) int {
	count := 0
	for _, entry := range d.listeners[el.n] {
		if !entry.removed {
			count++
		}
	}
	return count
}

// Dispatch runs ev through the capture, target, and bubble phases over the
// ancestor chain of target. It returns false when a listener called
// PreventDefault, mirroring the browser dispatchEvent contract.
//
// Dispatching on a detached element or reusing an event reports a dispatch
// error and runs no listeners.
func (d *Document) Dispatch(target Element, ev *Event) bool {
	if target.n == nil {
		panic("dom: Dispatch called on a zero element")
	}
	if target.d != d {
		panic("dom: Dispatch called with an element from another document")
	}
	if ev == nil || ev.Type == "" {
		panic("dom: Dispatch called with an empty event")
	}
	if ev.dispatched {
		errors.Report(&errors.TetherError{
			Op:      "dom.Dispatch",
			Kind:    errors.KindDispatch,
			Err:     stderrors.New("event reused across Dispatch calls"),
			Element: target.Path(),
		})
		return true
	}
	ev.dispatched = true
	if !d.Contains(target) {
		errors.Report(&errors.TetherError{
			Op:      "dom.Dispatch",
			Kind:    errors.KindDispatch,
			Err:     stderrors.New("target element is detached from the document"),
			Element: target.Path(),
		})
		return true
	}

	ev.Target = target

	// Ancestor chain from target up to and including the document node.
	chain := []Element{target}
	for n := target.n.Parent; n != nil; n = n.Parent {
		chain = append(chain, Element{d: d, n: n})
	}

	// Capture phase: root down to the target's parent.
	for i := len(chain) - 1; i >= 1 && !ev.stopped; i-- {
		d.invokeListeners(chain[i], ev, PhaseCapture)
	}

	// Target phase: all listeners in registration order.
	if !ev.stopped {
		d.invokeListeners(chain[0], ev, PhaseTarget)
	}

	// Bubble phase: target's parent up to the root.
	if ev.Bubbles {
		for i := 1; i < len(chain) && !ev.stopped; i++ {
			d.invokeListeners(chain[i], ev, PhaseBubble)
		}
	}

	ev.CurrentTarget = Element{}
	return !ev.prevented
}

// invokeListeners runs the matching listeners registered on el for the given
// phase. The entry list is snapshotted per element, so listeners added to el
// while its listeners run do not see the in-flight event.
func (d *Document) invokeListeners(el Element, ev *Event, phase EventPhase) {
	entries := d.listeners[el.n]
	if len(entries) == 0 {
		return
	}
	snapshot := make([]*listenerEntry, len(entries))
	copy(snapshot, entries)

	ev.CurrentTarget = el
	ev.phase = phase
	for _, entry := range snapshot {
		if entry.removed || entry.eventType != ev.Type {
			continue
		}
		switch phase {
		case PhaseCapture:
			if !entry.opts.Capture {
				continue
			}
		case PhaseBubble:
			if entry.opts.Capture {
				continue
			}
		}
		if entry.opts.Once {
			d.unbindEntry(el.n, entry)
		}
		entry.fn(ev)
		if ev.stoppedNow {
			return
		}
	}
}
