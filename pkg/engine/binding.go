package engine

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-tether/tether/pkg/action"
	"github.com/go-tether/tether/pkg/core"
	"github.com/go-tether/tether/pkg/dom"
	"github.com/go-tether/tether/pkg/errors"
	"github.com/go-tether/tether/pkg/observer"
	"github.com/go-tether/tether/pkg/schema"
)

var eventArgType = reflect.TypeOf((*dom.Event)(nil))

// bindingKey identifies one action binding: the annotated element plus
// the raw descriptor token. The same token on two elements, or two
// tokens on one element, are distinct bindings.
type bindingKey struct {
	element dom.Element
	token   string
}

// targetKey identifies one connected target within an instance.
type targetKey struct {
	element dom.Element
	name    string
}

// actionFunc is a resolved action method, normalized to take the event.
type actionFunc func(*dom.Event)

// binding is one installed action listener.
type binding struct {
	descriptor action.ActionDescriptor
	unbind     func()
}

// instance is one controller bound to one element. It lives in its
// module's table from first connect until the module shuts down;
// connected flips as the element enters and leaves the tree.
type instance struct {
	token       string
	identifier  string
	element     dom.Element
	controller  core.Controller
	module      *module
	scope       core.Scope
	connected   bool
	initialized bool

	bindings    map[bindingKey]*binding
	failed      map[bindingKey]bool
	targets     map[targetKey]bool
	targetOrder []targetKey

	attrObs  *observer.AttributeObserver
	sawValue map[string]bool
}

// guard runs a user callback inside a panic boundary. Panics become
// reported callback errors; the engine keeps going.
func (inst *instance) guard(phase, method string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			errors.ReportCallbackError(&errors.CallbackError{
				Controller: fmt.Sprintf("%T", inst.controller),
				Identifier: inst.identifier,
				Phase:      phase,
				Method:     method,
				Element:    inst.element.Path(),
				Recovered:  r,
				StackTrace: errors.CaptureStack(),
			})
		}
	}()
	fn()
}

// scanBindings walks the scope and installs bindings for every action
// token that names this instance's identifier and is owned by its
// scope. Malformed tokens are skipped here; the action observer reports
// them once on its own pass.
func (inst *instance) scanBindings() {
	attr := inst.module.app.schema.ActionAttribute
	inst.scope.Element.Walk(func(el dom.Element) bool {
		if !el.HasAttr(attr) {
			return true
		}
		for _, token := range el.Tokens(attr) {
			d, err := action.ParseActionToken(token, el.Tag())
			if err != nil || d.Identifier != inst.identifier {
				continue
			}
			if inst.module.app.instanceFor(el, inst.identifier) != inst {
				continue
			}
			inst.bind(el, token, d)
		}
		return true
	})
}

// bind installs the listener for one action token on el. Unknown or
// wrongly shaped methods are reported once and the binding is skipped
// until the attribute is rewritten.
func (inst *instance) bind(el dom.Element, token string, d action.ActionDescriptor) {
	key := bindingKey{element: el, token: token}
	if inst.bindings[key] != nil || inst.failed[key] {
		return
	}
	method, err := inst.resolveMethod(d)
	if err != nil {
		inst.failed[key] = true
		errors.Report(&errors.TetherError{
			Op:      "engine.BindAction",
			Kind:    errors.KindAction,
			Element: el.Path(),
			Err:     err,
		})
		return
	}

	listenOn := el
	if d.Listen != action.ListenElement {
		listenOn = inst.module.app.doc.Root()
	}
	opts := dom.ListenerOptions{Capture: d.Options.Capture, Once: d.Options.Once}
	handler := func(ev *dom.Event) {
		if d.Options.Once {
			// The dom layer already removed the listener; drop the
			// bookkeeping so a later attribute rewrite can rebind.
			inst.drop(key)
		}
		if d.KeyFilter != "" && ev.Key != d.KeyFilter {
			return
		}
		if d.Options.Self && ev.Target != el {
			return
		}
		if d.Options.Prevent {
			ev.PreventDefault()
		}
		if d.Options.Stop {
			ev.StopPropagation()
		}
		inst.module.app.debugf("action %s#%s on %s", inst.identifier, d.MethodName, el.Path())
		inst.invoke(method, d, ev)
	}
	inst.bindings[key] = &binding{
		descriptor: d,
		unbind:     inst.module.app.doc.AddListener(listenOn, d.EventName, handler, opts),
	}
}

// resolveMethod maps the markup method name onto the controller. An
// ActionResolver controller gets first claim with the name as written;
// otherwise "next" and "add-item" resolve to Next and AddItem on the
// method set, which must take no arguments or a single *dom.Event.
func (inst *instance) resolveMethod(d action.ActionDescriptor) (actionFunc, error) {
	if resolver, ok := inst.controller.(core.ActionResolver); ok {
		if fn, ok := resolver.ResolveAction(d.MethodName); ok {
			return fn, nil
		}
	}
	camel := schema.KebabToCamel(d.MethodName)
	name := strings.ToUpper(camel[:1]) + camel[1:]
	method := reflect.ValueOf(inst.controller).MethodByName(name)
	if !method.IsValid() {
		return nil, fmt.Errorf("controller %T has no method %s for action %q", inst.controller, name, d.MethodName)
	}
	t := method.Type()
	switch {
	case t.NumIn() == 0:
		return func(*dom.Event) { method.Call(nil) }, nil
	case t.NumIn() == 1 && t.In(0) == eventArgType:
		return func(ev *dom.Event) { method.Call([]reflect.Value{reflect.ValueOf(ev)}) }, nil
	default:
		return nil, fmt.Errorf("method %s must be func() or func(*dom.Event), have %s", name, t)
	}
}

// invoke calls the bound method inside the action panic boundary.
func (inst *instance) invoke(method actionFunc, d action.ActionDescriptor, ev *dom.Event) {
	defer func() {
		if r := recover(); r != nil {
			errors.ReportCallbackError(&errors.CallbackError{
				Controller: fmt.Sprintf("%T", inst.controller),
				Identifier: inst.identifier,
				Phase:      "action",
				Method:     d.MethodName,
				Element:    inst.element.Path(),
				Recovered:  r,
				StackTrace: errors.CaptureStack(),
			})
		}
	}()
	method(ev)
}

// unbind removes one binding if present and forgets any failed bind for
// the same token, so an attribute rewrite gets a fresh attempt.
func (inst *instance) unbind(key bindingKey) {
	delete(inst.failed, key)
	if b := inst.bindings[key]; b != nil {
		b.unbind()
		delete(inst.bindings, key)
	}
}

// drop forgets a binding without touching the dom listener. Used when
// the dom layer already removed it (once options).
func (inst *instance) drop(key bindingKey) {
	delete(inst.bindings, key)
}

// unbindAll removes every installed listener.
func (inst *instance) unbindAll() {
	for _, b := range inst.bindings {
		b.unbind()
	}
	inst.bindings = make(map[bindingKey]*binding)
	inst.failed = make(map[bindingKey]bool)
}

// targetConnected notifies the controller of a target entering its
// scope, once per (element, name) pair.
func (inst *instance) targetConnected(to core.TargetObserver, name string, el dom.Element) {
	key := targetKey{element: el, name: name}
	if inst.targets[key] {
		return
	}
	inst.targets[key] = true
	inst.targetOrder = append(inst.targetOrder, key)
	inst.guard("targetConnected", name, func() { to.TargetConnected(name, el) })
}

// targetDisconnected notifies the controller of a target leaving its
// scope. A target that never connected is ignored.
func (inst *instance) targetDisconnected(to core.TargetObserver, name string, el dom.Element) {
	key := targetKey{element: el, name: name}
	if !inst.targets[key] {
		return
	}
	delete(inst.targets, key)
	for i, candidate := range inst.targetOrder {
		if candidate == key {
			inst.targetOrder = append(inst.targetOrder[:i], inst.targetOrder[i+1:]...)
			break
		}
	}
	inst.guard("targetDisconnected", name, func() { to.TargetDisconnected(name, el) })
}

// knownTargets returns the connected targets in connect order.
func (inst *instance) knownTargets() []targetKey {
	keys := make([]targetKey, len(inst.targetOrder))
	copy(keys, inst.targetOrder)
	return keys
}

// primeValues marks the value attributes already present on the
// element, so their later edits report true old values while the first
// write of a missing value stays silent.
func (inst *instance) primeValues() {
	for _, a := range inst.element.Attrs() {
		if name, ok := inst.scope.Schema.ValueName(inst.identifier, a.Key); ok {
			inst.sawValue[name] = true
		}
	}
}

// AttributeValueChanged implements observer.AttributeDelegate for the
// instance's value attributes. Non-value attributes and no-op rewrites
// are ignored; the first appearance of a value is treated as its
// default and does not notify.
func (inst *instance) AttributeValueChanged(el dom.Element, attrName, old string) {
	name, ok := inst.scope.Schema.ValueName(inst.identifier, attrName)
	if !ok {
		return
	}
	current := el.Attr(attrName)
	if current == old {
		return
	}
	if !inst.sawValue[name] {
		inst.sawValue[name] = true
		if old == "" {
			return
		}
	}
	vo, ok := inst.controller.(core.ValueObserver)
	if !ok {
		return
	}
	inst.guard("valueChanged", name, func() { vo.ValueChanged(name, old, current) })
}
