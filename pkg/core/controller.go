package core

import "github.com/go-tether/tether/pkg/dom"

// Controller is the behavior bound to an element while its identifier
// appears in the element's controller attribute. Connect runs after the
// controller's scope is wired; Disconnect runs when the element leaves the
// document or the identifier token is removed.
//
// Embed ControllerBase to get no-op defaults plus scope accessors.
type Controller interface {
	Connect()
	Disconnect()
}

// Initializer is implemented by controllers that want a one-time hook before
// their first Connect. Initialize runs once per instance; Connect may run
// again if the same element is detached and re-attached while the instance
// is retained.
type Initializer interface {
	Initialize()
}

// TargetObserver is implemented by controllers that track their targets.
// TargetConnected fires for every target present at connect time and for
// each one added later; TargetDisconnected fires as targets leave the scope.
type TargetObserver interface {
	TargetConnected(name string, el dom.Element)
	TargetDisconnected(name string, el dom.Element)
}

// ValueObserver is implemented by controllers that react to value attribute
// changes. ValueChanged fires with the previous and current raw attribute
// values; a vanished attribute reports newValue "".
type ValueObserver interface {
	ValueChanged(name, oldValue, newValue string)
}

// ActionResolver is implemented by controllers whose action methods are not
// part of their Go method set, such as interpreted or table-driven
// controllers. The engine consults it with the method name exactly as
// written in markup before falling back to reflection; returning false
// hands resolution back to the method set.
type ActionResolver interface {
	ResolveAction(method string) (func(*dom.Event), bool)
}

// Constructor builds a fresh controller instance for one (element,
// identifier) binding.
type Constructor func() Controller

// Definition pairs an identifier with its constructor. Definitions are
// immutable once registered; re-registering an identifier installs a new
// Definition rather than mutating the old one.
type Definition struct {
	// Identifier is the token elements use in the controller attribute.
	Identifier string
	// New constructs instances. Must not be nil.
	New Constructor
}
