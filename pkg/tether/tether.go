// Package tether is the single-import facade over the engine, core,
// dom, and schema packages. Programs that register controllers and
// start an application can depend on this package alone; the
// subpackages remain available when finer control is needed.
package tether

import (
	"github.com/go-tether/tether/pkg/core"
	"github.com/go-tether/tether/pkg/dom"
	"github.com/go-tether/tether/pkg/engine"
	"github.com/go-tether/tether/pkg/schema"
)

// Aliases for the types a typical controller program touches.
type (
	// Application binds controllers to a document. See engine.Application.
	Application = engine.Application
	// Option configures an Application at construction time.
	Option = engine.Option
	// InstanceInfo describes one connected controller instance.
	InstanceInfo = engine.InstanceInfo

	// Controller is the interface every controller satisfies by
	// embedding ControllerBase.
	Controller = core.Controller
	// ControllerBase supplies the element, scope, targets, values, and
	// classes plumbing. Embed it as the first field of a controller.
	ControllerBase = core.ControllerBase
	// Constructor builds one fresh controller value per matched element.
	Constructor = core.Constructor
	// Scope is a controller's slice of the document.
	Scope = core.Scope
	// Registry maps identifiers to controller definitions.
	Registry = core.Registry

	// Document is a parsed HTML document.
	Document = dom.Document
	// Element is a handle to one element node.
	Element = dom.Element
	// Event is a synthetic DOM event.
	Event = dom.Event

	// Schema names the attributes the engine watches.
	Schema = schema.Schema

	// DispatchOption adjusts an event emitted through
	// ControllerBase.Dispatch.
	DispatchOption = core.DispatchOption
)

// Construction options, re-exported from the engine package.
var (
	WithSchema       = engine.WithSchema
	WithRegistry     = engine.WithRegistry
	WithDebug        = engine.WithDebug
	WithErrorHandler = engine.WithErrorHandler
)

// Dispatch options, re-exported from the core package.
var (
	WithDetail    = core.WithDetail
	NoBubble      = core.NoBubble
	NotCancelable = core.NotCancelable
)

// New creates an application over an already parsed document. It does
// not observe anything until Start is called.
func New(doc *dom.Document, opts ...Option) *Application {
	return engine.New(doc, opts...)
}

// Parse parses src as HTML and creates an application over the result.
func Parse(src string, opts ...Option) (*Application, error) {
	doc, err := dom.ParseString(src)
	if err != nil {
		return nil, err
	}
	return engine.New(doc, opts...), nil
}

// MustParse is Parse for markup known to be well formed; it panics on
// a parse error. Intended for fixtures and examples.
func MustParse(src string, opts ...Option) *Application {
	return engine.New(dom.MustParse(src), opts...)
}

// DefaultSchema returns the data-* attribute schema.
func DefaultSchema() Schema { return schema.DefaultSchema() }

// NewRegistry creates an empty registry, for sharing definitions across
// applications via WithRegistry.
func NewRegistry() *Registry { return core.NewRegistry() }

// NewEvent creates a bubbling, cancelable event of the given type.
func NewEvent(eventType string) *Event { return dom.NewEvent(eventType) }

// NewCustomEvent creates a bubbling, cancelable event carrying detail
// payload data.
func NewCustomEvent(eventType string, detail any) *Event {
	return dom.NewCustomEvent(eventType, detail)
}
