// Package script loads controllers written as interpreted Go files.
//
// A controller script is a plain .go file evaluated with yaegi at
// startup. It declares its controllers through a single entry point:
//
//	package main
//
//	import (
//	    "tether/dom"
//	    "tether/script"
//	)
//
//	func Controllers() []map[string]any {
//	    return []map[string]any{{
//	        "identifier": "greeter",
//	        "connect": func(ctx *script.Context) { ... },
//	        "methods": map[string]any{
//	            "greet": func(ctx *script.Context, ev *dom.Event) { ... },
//	        },
//	    }}
//	}
//
// The virtual import paths "tether/script" and "tether/dom" are served
// from the host binary; scripts may also import the Go standard
// library.
package script

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/go-tether/tether/pkg/core"
	"github.com/go-tether/tether/pkg/dom"
	"github.com/go-tether/tether/pkg/errors"
	"github.com/go-tether/tether/pkg/schema"
)

const entryFuncName = "Controllers"

// Definition is one controller declared by a script. Callback fields
// are nil when the script omits them.
type Definition struct {
	Identifier         string
	Path               string
	Initialize         func(*Context)
	Connect            func(*Context)
	Disconnect         func(*Context)
	TargetConnected    func(*Context, string, dom.Element)
	TargetDisconnected func(*Context, string, dom.Element)
	ValueChanged       func(*Context, string, string, string)
	Methods            map[string]func(*Context, *dom.Event)
}

// Constructor returns a core.Constructor producing adapter controllers
// that dispatch into the interpreted callbacks.
func (d *Definition) Constructor() core.Constructor {
	return func() core.Controller {
		c := &Controller{def: d}
		c.ctx = &Context{c: c}
		return c
	}
}

// LoadDir evaluates every .go file in dir (sorted by name) and
// collects the controllers they declare. A missing directory is not an
// error; it loads nothing.
func LoadDir(dir string) ([]*Definition, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, scriptError("script.LoadDir", fmt.Errorf("read %s: %w", trimmed, err))
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".go" {
			continue
		}
		if strings.HasSuffix(entry.Name(), "_test.go") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var defs []*Definition
	seen := make(map[string]string)
	for _, name := range names {
		path := filepath.Join(trimmed, name)
		fileDefs, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		for _, def := range fileDefs {
			if prev, dup := seen[def.Identifier]; dup {
				return nil, scriptError("script.LoadDir",
					fmt.Errorf("controller %q declared by both %s and %s", def.Identifier, prev, path))
			}
			seen[def.Identifier] = path
			defs = append(defs, def)
		}
	}
	return defs, nil
}

// LoadFile evaluates one script file and returns its controllers.
func LoadFile(path string) ([]*Definition, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, scriptError("script.LoadFile", fmt.Errorf("read %s: %w", path, err))
	}
	if len(strings.TrimSpace(string(code))) == 0 {
		return nil, scriptError("script.LoadFile", fmt.Errorf("%s is empty", path))
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, scriptError("script.LoadFile", fmt.Errorf("load stdlib symbols: %w", err))
	}
	if err := i.Use(Symbols); err != nil {
		return nil, scriptError("script.LoadFile", fmt.Errorf("load tether symbols: %w", err))
	}
	if _, err := i.EvalPath(path); err != nil {
		return nil, scriptError("script.LoadFile", fmt.Errorf("interpret %s: %w", path, err))
	}

	entry, err := i.Eval(entryFuncName)
	if err != nil {
		return nil, scriptError("script.LoadFile",
			fmt.Errorf("%s must define %s() []map[string]any: %w", path, entryFuncName, err))
	}
	fn, ok := entry.Interface().(func() []map[string]any)
	if !ok {
		return nil, scriptError("script.LoadFile",
			fmt.Errorf("%s: %s has signature %T, want func() []map[string]any", path, entryFuncName, entry.Interface()))
	}

	raws := fn()
	defs := make([]*Definition, 0, len(raws))
	for idx, raw := range raws {
		def, err := parseDefinition(raw)
		if err != nil {
			return nil, scriptError("script.LoadFile", fmt.Errorf("%s controller[%d]: %w", path, idx, err))
		}
		def.Path = path
		defs = append(defs, def)
	}
	return defs, nil
}

func parseDefinition(raw map[string]any) (*Definition, error) {
	def := &Definition{}

	id, ok := raw["identifier"].(string)
	if !ok || strings.TrimSpace(id) == "" {
		return nil, stderrors.New(`missing "identifier" string`)
	}
	def.Identifier = strings.TrimSpace(id)
	if !schema.ValidIdentifier(def.Identifier) {
		return nil, fmt.Errorf("invalid identifier %q", def.Identifier)
	}

	for key, value := range raw {
		switch key {
		case "identifier":
		case "initialize", "connect", "disconnect":
			fn, ok := value.(func(*Context))
			if !ok {
				return nil, fmt.Errorf("%q must be func(*script.Context), have %T", key, value)
			}
			switch key {
			case "initialize":
				def.Initialize = fn
			case "connect":
				def.Connect = fn
			case "disconnect":
				def.Disconnect = fn
			}
		case "targetConnected", "targetDisconnected":
			fn, ok := value.(func(*Context, string, dom.Element))
			if !ok {
				return nil, fmt.Errorf("%q must be func(*script.Context, string, dom.Element), have %T", key, value)
			}
			if key == "targetConnected" {
				def.TargetConnected = fn
			} else {
				def.TargetDisconnected = fn
			}
		case "valueChanged":
			fn, ok := value.(func(*Context, string, string, string))
			if !ok {
				return nil, fmt.Errorf("%q must be func(*script.Context, name, old, new string), have %T", key, value)
			}
			def.ValueChanged = fn
		case "methods":
			methods, ok := value.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%q must be map[string]any, have %T", key, value)
			}
			def.Methods = make(map[string]func(*Context, *dom.Event), len(methods))
			for name, m := range methods {
				switch fn := m.(type) {
				case func(*Context, *dom.Event):
					def.Methods[name] = fn
				case func(*Context):
					def.Methods[name] = func(ctx *Context, _ *dom.Event) { fn(ctx) }
				default:
					return nil, fmt.Errorf("method %q must be func(*script.Context) or func(*script.Context, *dom.Event), have %T", name, m)
				}
			}
		default:
			return nil, fmt.Errorf("unknown key %q", key)
		}
	}
	return def, nil
}

func scriptError(op string, err error) error {
	return &errors.TetherError{Op: op, Kind: errors.KindScript, Err: err}
}

// Controller adapts a scripted Definition to the engine's controller
// interfaces. Lifecycle callbacks and action methods run interpreted
// code; panics inside them are contained by the engine's usual
// callback boundaries.
type Controller struct {
	core.ControllerBase
	def  *Definition
	ctx  *Context
	data map[string]any
}

// Definition returns the script definition backing this controller.
func (c *Controller) Definition() *Definition { return c.def }

func (c *Controller) Initialize() {
	if c.def.Initialize != nil {
		c.def.Initialize(c.ctx)
	}
}

func (c *Controller) Connect() {
	if c.def.Connect != nil {
		c.def.Connect(c.ctx)
	}
}

func (c *Controller) Disconnect() {
	if c.def.Disconnect != nil {
		c.def.Disconnect(c.ctx)
	}
}

func (c *Controller) TargetConnected(name string, el dom.Element) {
	if c.def.TargetConnected != nil {
		c.def.TargetConnected(c.ctx, name, el)
	}
}

func (c *Controller) TargetDisconnected(name string, el dom.Element) {
	if c.def.TargetDisconnected != nil {
		c.def.TargetDisconnected(c.ctx, name, el)
	}
}

func (c *Controller) ValueChanged(name, old, now string) {
	if c.def.ValueChanged != nil {
		c.def.ValueChanged(c.ctx, name, old, now)
	}
}

// ResolveAction exposes the script's method table to the action
// dispatcher. Method names match the attribute text exactly.
func (c *Controller) ResolveAction(method string) (func(*dom.Event), bool) {
	fn, ok := c.def.Methods[method]
	if !ok {
		return nil, false
	}
	return func(ev *dom.Event) { fn(c.ctx, ev) }, true
}

// Context is the handle interpreted callbacks receive. It exposes the
// bound element, scope lookups, values, classes, and event dispatch,
// plus a per-instance data bag so scripts can keep state without
// sharing it across instances.
type Context struct {
	c *Controller
}

// Element returns the element the controller is bound to.
func (ctx *Context) Element() dom.Element { return ctx.c.Element() }

// Identifier returns the controller identifier.
func (ctx *Context) Identifier() string { return ctx.c.Identifier() }

// Document returns the document owning the bound element.
func (ctx *Context) Document() *dom.Document { return ctx.c.Element().Document() }

// Target returns the first target with the given name in scope.
func (ctx *Context) Target(name string) (dom.Element, bool) { return ctx.c.Target(name) }

// Targets returns all targets with the given name in scope.
func (ctx *Context) Targets(name string) []dom.Element { return ctx.c.Targets(name) }

// HasTarget reports whether a target with the given name is in scope.
func (ctx *Context) HasTarget(name string) bool { return ctx.c.HasTarget(name) }

// Value returns the named value attribute, or "" when absent.
func (ctx *Context) Value(name string) string { return ctx.c.Values().Get(name) }

// SetValue writes the named value attribute through the document.
func (ctx *Context) SetValue(name, value string) { ctx.c.Values().Set(name, value) }

// Class returns the first class token configured under name, or "".
func (ctx *Context) Class(name string) string {
	cls, _ := ctx.c.Classes().Class(name)
	return cls
}

// Classes returns all class tokens configured under name.
func (ctx *Context) Classes(name string) []string { return ctx.c.Classes().List(name) }

// Dispatch emits an "identifier:eventName" custom event from the bound
// element.
func (ctx *Context) Dispatch(eventName string, detail any) bool {
	if detail == nil {
		return ctx.c.Dispatch(eventName)
	}
	return ctx.c.Dispatch(eventName, core.WithDetail(detail))
}

// Set stores an instance-scoped value. Script globals are shared by
// every instance of the controller; the data bag is not.
func (ctx *Context) Set(key string, value any) {
	if ctx.c.data == nil {
		ctx.c.data = make(map[string]any)
	}
	ctx.c.data[key] = value
}

// Get reads an instance-scoped value stored with Set.
func (ctx *Context) Get(key string) (any, bool) {
	v, ok := ctx.c.data[key]
	return v, ok
}
