package core

import (
	"github.com/go-tether/tether/pkg/dom"
	"github.com/go-tether/tether/pkg/errors"
)

// Application is the slice of the running engine a controller may touch from
// its callbacks.
type Application interface {
	// Document returns the document the application drives.
	Document() *dom.Document
	// Dispatch enqueues fn to run under the engine lock at the next flush.
	// Safe to call from any goroutine; the only safe way to touch the
	// document from outside a controller callback.
	Dispatch(fn func())
}

// controllerBase is satisfied by any struct that embeds ControllerBase.
// The engine uses it to wire the scope before Connect.
type controllerBase interface {
	base() *ControllerBase
}

func (b *ControllerBase) base() *ControllerBase { return b }

// ControllerBase provides common functionality for controllers. Embed it to
// eliminate boilerplate:
//
//	type gallery struct {
//	    core.ControllerBase
//	}
//
//	func (g *gallery) Next() {
//	    if slide, ok := g.Target("slide"); ok {
//	        slide.SetAttr("aria-current", "true")
//	    }
//	}
//
// The zero base is unbound; accessors return zero values until the engine
// binds the scope, which happens before Initialize and Connect.
type ControllerBase struct {
	scope Scope
	app   Application
	bound bool
}

// Connect is a no-op default implementation.
// Override this method to run behavior when the controller connects.
func (b *ControllerBase) Connect() {}

// Disconnect is a no-op default implementation.
// Override this method to release resources when the controller disconnects.
func (b *ControllerBase) Disconnect() {}

// bind stores the scope and application.
// Called automatically by the engine before Initialize and Connect.
func (b *ControllerBase) bind(scope Scope, app Application) {
	b.scope = scope
	b.app = app
	b.bound = true
}

// release clears the binding. Called automatically by the engine after
// Disconnect. Accessors revert to zero values.
func (b *ControllerBase) release() {
	b.scope = Scope{}
	b.app = nil
	b.bound = false
}

// Bound reports whether the engine has wired the scope. False before the
// first Connect and after the final Disconnect.
func (b *ControllerBase) Bound() bool { return b.bound }

// Element returns the element this controller is bound to.
func (b *ControllerBase) Element() dom.Element { return b.scope.Element }

// Identifier returns the identifier this controller is bound as.
func (b *ControllerBase) Identifier() string { return b.scope.Identifier }

// Application returns the running application, or nil when unbound.
func (b *ControllerBase) Application() Application { return b.app }

// Scope returns the controller's scope.
func (b *ControllerBase) Scope() Scope { return b.scope }

// Target returns the first target with the given name in scope.
func (b *ControllerBase) Target(name string) (dom.Element, bool) {
	return b.scope.Target(name)
}

// Targets returns all targets with the given name in document order.
func (b *ControllerBase) Targets(name string) []dom.Element {
	return b.scope.Targets(name)
}

// HasTarget reports whether at least one target with the name is in scope.
func (b *ControllerBase) HasTarget(name string) bool {
	return b.scope.HasTarget(name)
}

// Values returns the typed accessors for the controller's value attributes.
func (b *ControllerBase) Values() Values { return b.scope.Values() }

// Classes returns the accessors for the controller's class attributes.
func (b *ControllerBase) Classes() Classes { return b.scope.Classes() }

// DispatchOption adjusts an event emitted through Dispatch.
type DispatchOption func(*dom.Event)

// WithDetail attaches payload data to the dispatched event.
func WithDetail(detail any) DispatchOption {
	return func(ev *dom.Event) { ev.Detail = detail }
}

// NoBubble keeps the dispatched event on the controller element.
func NoBubble() DispatchOption {
	return func(ev *dom.Event) { ev.Bubbles = false }
}

// NotCancelable makes PreventDefault a no-op on the dispatched event.
func NotCancelable() DispatchOption {
	return func(ev *dom.Event) { ev.Cancelable = false }
}

// Dispatch emits a namespaced custom event ("<identifier>:<eventName>") on
// the controller element and returns false when a listener prevented the
// default. Dispatching on an unbound controller reports an error and
// returns true.
func (b *ControllerBase) Dispatch(eventName string, opts ...DispatchOption) bool {
	if !b.bound {
		errors.Report(&errors.TetherError{
			Op:   "core.Dispatch",
			Kind: errors.KindDispatch,
			Err:  errors.ErrUnboundController,
		})
		return true
	}
	ev := dom.NewCustomEvent(b.scope.Identifier+":"+eventName, nil)
	for _, opt := range opts {
		opt(ev)
	}
	return b.scope.Element.Document().Dispatch(b.scope.Element, ev)
}

// BindScope wires scope and app into c when it embeds ControllerBase.
// It reports whether the wiring happened. The engine calls this before
// Initialize and Connect; tests may call it to exercise controllers without
// an engine.
func BindScope(c Controller, scope Scope, app Application) bool {
	if h, ok := c.(controllerBase); ok {
		h.base().bind(scope, app)
		return true
	}
	return false
}

// ReleaseScope clears the wiring installed by BindScope.
// Called automatically by the engine after Disconnect.
func ReleaseScope(c Controller) {
	if h, ok := c.(controllerBase); ok {
		h.base().release()
	}
}
