package engine

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/go-tether/tether/pkg/core"
	"github.com/go-tether/tether/pkg/dom"
	"github.com/go-tether/tether/pkg/errors"
	"github.com/go-tether/tether/pkg/observer"
)

// module manages every instance of one registered identifier. It owns
// the target observer for the identifier's target attribute and the
// instance table keyed by element.
//
// Instances survive disconnect: when an element is detached and later
// re-attached, the same controller reconnects and Initialize does not
// run again. Retained instances are dropped when the identifier is
// re-registered or the application stops.
type module struct {
	app        *Application
	identifier string
	def        core.Definition
	instances  map[dom.Element]*instance
	targetObs  *observer.TokenListObserver
}

func newModule(a *Application, def core.Definition) *module {
	m := &module{
		app:        a,
		identifier: def.Identifier,
		def:        def,
		instances:  make(map[dom.Element]*instance),
	}
	m.targetObs = observer.NewTokenListObserver(a.doc, a.schema.TargetAttribute(def.Identifier), m)
	return m
}

// connect builds or revives the instance for el and runs the connect
// sequence. A second call for a connected element is a no-op, so one
// element never carries two instances of the same identifier.
func (m *module) connect(el dom.Element) {
	inst := m.instances[el]
	if inst != nil && inst.connected {
		return
	}
	if inst == nil {
		controller := m.construct(el)
		if controller == nil {
			return
		}
		inst = &instance{
			token:      uuid.NewString(),
			identifier: m.identifier,
			element:    el,
			controller: controller,
			module:     m,
			bindings:   make(map[bindingKey]*binding),
			failed:     make(map[bindingKey]bool),
			targets:    make(map[targetKey]bool),
			sawValue:   make(map[string]bool),
		}
		m.instances[el] = inst
	}

	inst.scope = core.NewScope(el, m.identifier, m.app.schema)
	core.BindScope(inst.controller, inst.scope, m.app)
	inst.primeValues()
	if !inst.initialized {
		inst.initialized = true
		if init, ok := inst.controller.(core.Initializer); ok {
			inst.guard("initialize", "", init.Initialize)
		}
	}
	inst.connected = true
	inst.attrObs = observer.NewAttributeObserver(el, inst)
	m.app.order = append(m.app.order, inst)
	m.app.debugf("connect %s on %s", m.identifier, el.Path())

	inst.scanBindings()
	inst.guard("connect", "", inst.controller.Connect)
	if to, ok := inst.controller.(core.TargetObserver); ok {
		for _, name := range inst.scope.TargetNames() {
			for _, target := range inst.scope.Targets(name) {
				inst.targetConnected(to, name, target)
			}
		}
	}
}

// disconnect runs the teardown sequence for el's instance and moves it
// to the retained state.
func (m *module) disconnect(el dom.Element) {
	inst := m.instances[el]
	if inst == nil || !inst.connected {
		return
	}
	if to, ok := inst.controller.(core.TargetObserver); ok {
		for _, key := range inst.knownTargets() {
			inst.targetDisconnected(to, key.name, key.element)
		}
	}
	inst.unbindAll()
	inst.guard("disconnect", "", inst.controller.Disconnect)
	core.ReleaseScope(inst.controller)
	if inst.attrObs != nil {
		inst.attrObs.Stop()
		inst.attrObs = nil
	}
	inst.connected = false
	m.app.removeFromOrder(inst)
	m.app.debugf("disconnect %s on %s", m.identifier, el.Path())
}

// construct calls the registered constructor inside a panic boundary.
// A panicking or nil-returning constructor is reported and the element
// stays unconnected.
func (m *module) construct(el dom.Element) (controller core.Controller) {
	defer func() {
		if r := recover(); r != nil {
			controller = nil
			errors.ReportCallbackError(&errors.CallbackError{
				Controller: m.identifier,
				Identifier: m.identifier,
				Phase:      "construct",
				Element:    el.Path(),
				Recovered:  r,
				StackTrace: errors.CaptureStack(),
			})
		}
	}()
	controller = m.def.New()
	if controller == nil {
		errors.Report(&errors.TetherError{
			Op:      "engine.Connect",
			Kind:    errors.KindConnect,
			Element: el.Path(),
			Err:     fmt.Errorf("constructor for %q returned nil", m.identifier),
		})
	}
	return controller
}

// replaceDefinition tears down every live instance in reverse connect
// order, drops the retained ones, and reconnects matching elements with
// the new constructor.
func (m *module) replaceDefinition(def core.Definition) {
	live := m.liveInOrder()
	for i := len(live) - 1; i >= 0; i-- {
		m.disconnect(live[i].element)
	}
	m.instances = make(map[dom.Element]*instance)
	m.def = def
	m.app.doc.Walk(func(el dom.Element) bool {
		if el.HasToken(m.app.schema.ControllerAttribute, m.identifier) {
			m.connect(el)
		}
		return true
	})
}

// shutdown disconnects live instances in reverse connect order and
// releases everything the module holds.
func (m *module) shutdown() {
	live := m.liveInOrder()
	for i := len(live) - 1; i >= 0; i-- {
		m.disconnect(live[i].element)
	}
	m.targetObs.Stop()
	m.instances = make(map[dom.Element]*instance)
}

// liveInOrder returns this module's connected instances in application
// connect order.
func (m *module) liveInOrder() []*instance {
	var live []*instance
	for _, inst := range m.app.order {
		if inst.module == m && inst.connected {
			live = append(live, inst)
		}
	}
	return live
}

// processValueRecords forwards one mutation batch to the per-instance
// attribute observers that drive ValueChanged notifications.
func (m *module) processValueRecords(records []dom.MutationRecord) {
	for _, inst := range m.liveInOrder() {
		if inst.attrObs != nil {
			inst.attrObs.ProcessMutations(records)
		}
	}
}

// unbindToken removes the action binding for (el, token) from whichever
// instance holds it.
func (m *module) unbindToken(el dom.Element, token string) {
	for _, inst := range m.instances {
		inst.unbind(bindingKey{element: el, token: token})
	}
}

// TokenMatched implements observer.TokenDelegate for the module's
// target attribute. A new target is routed to the live instance whose
// scope owns the element.
func (m *module) TokenMatched(el dom.Element, name string) {
	inst := m.app.instanceFor(el, m.identifier)
	if inst == nil {
		return
	}
	if to, ok := inst.controller.(core.TargetObserver); ok {
		inst.targetConnected(to, name, el)
	}
}

// TokenUnmatched routes a departed target to the instance that saw it
// connect. Ownership is resolved from the instance's own target table:
// a removed element has left the tree, so the ancestor walk that
// TokenMatched uses would come up empty.
func (m *module) TokenUnmatched(el dom.Element, name string) {
	key := targetKey{element: el, name: name}
	for _, inst := range m.instances {
		if !inst.connected || !inst.targets[key] {
			continue
		}
		if to, ok := inst.controller.(core.TargetObserver); ok {
			inst.targetDisconnected(to, name, el)
		}
		return
	}
}

func (a *Application) removeFromOrder(inst *instance) {
	for i, candidate := range a.order {
		if candidate == inst {
			a.order = append(a.order[:i], a.order[i+1:]...)
			return
		}
	}
}
