// Package engine wires controllers to a document. An Application owns
// the registry, the observers, and every controller instance created
// while it runs. All engine state is guarded by a single mutex per
// Application; entry points (Start, Stop, Update, DispatchEvent, Flush)
// take the lock, drain document mutations to a fixed point, and return.
//
// Controller callbacks run while the engine lock is held, so callbacks
// must not call back into locked entry points. To touch the engine from
// a callback or from another goroutine, use Dispatch, which queues a
// function for the next flush.
package engine

import (
	stderrors "errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/go-tether/tether/pkg/action"
	"github.com/go-tether/tether/pkg/core"
	"github.com/go-tether/tether/pkg/dom"
	"github.com/go-tether/tether/pkg/errors"
	"github.com/go-tether/tether/pkg/observer"
	"github.com/go-tether/tether/pkg/schema"
)

// maxFlushCycles bounds the mutation drain loop. Callbacks may mutate
// the document, which schedules further callbacks; a cycle that never
// settles is reported and the remaining records are dropped.
const maxFlushCycles = 64

// Option configures an Application at construction time.
type Option func(*Application)

// WithSchema replaces the default attribute schema.
func WithSchema(s schema.Schema) Option {
	return func(a *Application) { a.schema = s }
}

// WithRegistry uses a pre-populated registry instead of an empty one.
// The application takes ownership; registering through the application
// after Start keeps the running state in sync, registering directly on
// the registry does not.
func WithRegistry(r *core.Registry) Option {
	return func(a *Application) {
		if r != nil {
			a.registry = r
		}
	}
}

// WithDebug enables the debug log from the start.
func WithDebug(enabled bool) Option {
	return func(a *Application) { a.debug = enabled }
}

// WithErrorHandler installs the process-wide error handler before the
// application starts. Passing nil restores the default handler.
func WithErrorHandler(h errors.ErrorHandler) Option {
	return func(a *Application) { errors.SetHandler(h) }
}

// Application binds registered controllers to a document and keeps the
// bindings current as the document changes.
type Application struct {
	mu       sync.Mutex
	doc      *dom.Document
	schema   schema.Schema
	registry *core.Registry

	modules map[string]*module
	order   []*instance // connect order, for reverse teardown

	controllerObs *observer.TokenListObserver
	actionObs     *observer.TokenListObserver

	started bool
	debug   bool
	logf    func(format string, args ...any)

	dispatchMu    sync.Mutex
	dispatchQueue []func()

	inspect *inspectServer
}

// New creates an application over doc. The application does not observe
// anything until Start is called.
func New(doc *dom.Document, opts ...Option) *Application {
	a := &Application{
		doc:      doc,
		schema:   schema.DefaultSchema(),
		registry: core.NewRegistry(),
		modules:  make(map[string]*module),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.controllerObs = observer.NewTokenListObserver(doc, a.schema.ControllerAttribute, (*controllerTokens)(a))
	a.actionObs = observer.NewTokenListObserver(doc, a.schema.ActionAttribute, (*actionTokens)(a))
	return a
}

// Document returns the document the application is bound to.
func (a *Application) Document() *dom.Document { return a.doc }

// Schema returns the attribute schema in effect.
func (a *Application) Schema() schema.Schema { return a.schema }

// Registry returns the application's registry.
func (a *Application) Registry() *core.Registry { return a.registry }

// SetDebug toggles the debug log at runtime.
func (a *Application) SetDebug(enabled bool) {
	a.mu.Lock()
	a.debug = enabled
	a.mu.Unlock()
}

// SetLogf redirects the debug log. The default writes through the
// standard library logger.
func (a *Application) SetLogf(logf func(format string, args ...any)) {
	a.mu.Lock()
	a.logf = logf
	a.mu.Unlock()
}

func (a *Application) debugf(format string, args ...any) {
	if !a.debug {
		return
	}
	if a.logf != nil {
		a.logf(format, args...)
		return
	}
	log.Printf("tether: "+format, args...)
}

// Register adds or replaces a controller definition. When the
// application is running, matching elements connect immediately; if the
// identifier was already registered, its live instances are torn down
// first and rebuilt with the new constructor.
func (a *Application) Register(identifier string, ctor core.Constructor) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.registry.Register(identifier, ctor); err != nil {
		return err
	}
	def, _ := a.registry.Lookup(identifier)
	if !a.started {
		return nil
	}
	if m, ok := a.modules[identifier]; ok {
		m.replaceDefinition(def)
	} else {
		a.installModule(def)
	}
	a.flushLocked()
	return nil
}

// Unregister removes a controller definition. Live instances for the
// identifier disconnect; elements keep their attributes and reconnect
// if the identifier is registered again.
func (a *Application) Unregister(identifier string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	removed := a.registry.Unregister(identifier)
	if m, ok := a.modules[identifier]; ok {
		m.shutdown()
		delete(a.modules, identifier)
	}
	if a.started {
		a.flushLocked()
	}
	return removed
}

// Start scans the document and connects controllers for every element
// carrying a registered identifier, in document order. Starting an
// already started application is an error.
func (a *Application) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return &errors.TetherError{
			Op:   "engine.Start",
			Kind: errors.KindConnect,
			Err:  fmt.Errorf("application already started"),
		}
	}
	a.started = true
	a.doc.TakeMutations() // pre-start edits are the baseline, not changes
	for _, identifier := range a.registry.Identifiers() {
		def, ok := a.registry.Lookup(identifier)
		if !ok {
			continue
		}
		a.modules[identifier] = newModule(a, def)
	}
	// The controller observer's initial scan drives the first connects,
	// so elements connect in document order regardless of identifier.
	a.controllerObs.Start()
	a.actionObs.Start()
	for _, identifier := range a.moduleOrder() {
		a.modules[identifier].targetObs.Start()
	}
	a.flushLocked()
	a.debugf("started with %d controller(s)", len(a.modules))
	return nil
}

// Stop disconnects every live instance in reverse connect order, stops
// the observers, and shuts down the inspect server if one is running.
// The application can be started again afterwards.
func (a *Application) Stop() {
	a.mu.Lock()
	if !a.started {
		a.mu.Unlock()
		return
	}
	a.flushLocked()
	order := make([]*instance, len(a.order))
	copy(order, a.order)
	for i := len(order) - 1; i >= 0; i-- {
		inst := order[i]
		if m, ok := a.modules[inst.identifier]; ok {
			m.disconnect(inst.element)
		}
	}
	for _, m := range a.modules {
		m.shutdown()
	}
	a.modules = make(map[string]*module)
	a.order = nil
	a.controllerObs.Stop()
	a.actionObs.Stop()
	a.started = false
	srv := a.inspect
	a.inspect = nil
	a.mu.Unlock()
	if srv != nil {
		srv.stop()
	}
	a.debugf("stopped")
}

// Update applies fn to the document under the engine lock, then drains
// the resulting mutations so controller connects, disconnects, and
// value notifications happen before Update returns. Must not be called
// from a controller callback; use Dispatch there instead.
func (a *Application) Update(fn func(doc *dom.Document)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if fn != nil {
		fn(a.doc)
	}
	if a.started {
		a.flushLocked()
	}
}

// Flush drains queued Dispatch callbacks and pending document
// mutations. It is a no-op when nothing is pending.
func (a *Application) Flush() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		a.flushLocked()
	}
}

// DispatchEvent delivers ev to el through the document's capture,
// target, and bubble phases, then flushes any mutations the handlers
// made. It reports false if a handler canceled the event. Must not be
// called from a controller callback.
func (a *Application) DispatchEvent(el dom.Element, ev *dom.Event) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	result := a.doc.Dispatch(el, ev)
	if a.started {
		a.flushLocked()
	}
	return result
}

// Dispatch queues fn to run under the engine lock at the next flush.
// Safe to call from any goroutine and from controller callbacks; this
// is the only way for a callback to reach the locked entry points.
func (a *Application) Dispatch(fn func()) {
	if fn == nil {
		return
	}
	a.dispatchMu.Lock()
	a.dispatchQueue = append(a.dispatchQueue, fn)
	a.dispatchMu.Unlock()
}

func (a *Application) drainDispatchQueue() []func() {
	a.dispatchMu.Lock()
	queue := a.dispatchQueue
	a.dispatchQueue = nil
	a.dispatchMu.Unlock()
	return queue
}

// flushLocked drains dispatch callbacks and document mutations until
// both are empty. Caller holds a.mu.
func (a *Application) flushLocked() {
	for cycle := 0; ; cycle++ {
		if cycle >= maxFlushCycles {
			a.doc.TakeMutations()
			errors.Report(&errors.TetherError{
				Op:   "engine.Flush",
				Kind: errors.KindDispatch,
				Err:  fmt.Errorf("mutations did not settle after %d cycles; remaining records dropped", maxFlushCycles),
			})
			return
		}
		callbacks := a.drainDispatchQueue()
		records := a.doc.TakeMutations()
		if len(callbacks) == 0 && len(records) == 0 {
			return
		}
		for _, fn := range callbacks {
			fn()
		}
		if len(records) > 0 {
			a.routeRecords(records)
		}
	}
}

// routeRecords feeds one batch of mutation records through the observer
// layers: controller lifecycle first, then targets, then actions, then
// value attributes. Later layers see the instance table the earlier
// layers left behind, so a removed controller does not receive target
// or value callbacks for the same batch.
func (a *Application) routeRecords(records []dom.MutationRecord) {
	a.controllerObs.ProcessMutations(records)
	for _, identifier := range a.moduleOrder() {
		a.modules[identifier].targetObs.ProcessMutations(records)
	}
	a.actionObs.ProcessMutations(records)
	for _, identifier := range a.moduleOrder() {
		a.modules[identifier].processValueRecords(records)
	}
}

func (a *Application) moduleOrder() []string {
	identifiers := make([]string, 0, len(a.modules))
	for identifier := range a.modules {
		identifiers = append(identifiers, identifier)
	}
	sort.Strings(identifiers)
	return identifiers
}

// installModule creates the module for def and connects every matching
// element already in the document, in document order. Caller holds a.mu.
func (a *Application) installModule(def core.Definition) {
	m := newModule(a, def)
	a.modules[def.Identifier] = m
	a.doc.Walk(func(el dom.Element) bool {
		if el.HasToken(a.schema.ControllerAttribute, def.Identifier) {
			m.connect(el)
		}
		return true
	})
	m.targetObs.Start()
}

// instanceFor returns the live instance owning el for identifier: the
// closest ancestor-or-self carrying the identifier token. Nested scopes
// with the same identifier shadow their ancestors.
func (a *Application) instanceFor(el dom.Element, identifier string) *instance {
	m, ok := a.modules[identifier]
	if !ok {
		return nil
	}
	owner, found := el.Closest(func(e dom.Element) bool {
		return e.HasToken(a.schema.ControllerAttribute, identifier)
	})
	if !found {
		return nil
	}
	inst := m.instances[owner]
	if inst == nil || !inst.connected {
		return nil
	}
	return inst
}

// ControllerFor returns the connected controller for the (element,
// identifier) pair. Must not be called from a controller callback.
func (a *Application) ControllerFor(el dom.Element, identifier string) (core.Controller, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	m, ok := a.modules[identifier]
	if !ok {
		return nil, false
	}
	inst := m.instances[el]
	if inst == nil || !inst.connected {
		return nil, false
	}
	return inst.controller, true
}

// InstanceInfo describes one connected controller instance.
type InstanceInfo struct {
	Token      string `json:"token"`
	Identifier string `json:"identifier"`
	Element    string `json:"element"`
	Controller string `json:"controller"`
}

// Instances returns a snapshot of connected instances in connect order.
// Must not be called from a controller callback.
func (a *Application) Instances() []InstanceInfo {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.instancesLocked()
}

func (a *Application) instancesLocked() []InstanceInfo {
	infos := make([]InstanceInfo, 0, len(a.order))
	for _, inst := range a.order {
		infos = append(infos, InstanceInfo{
			Token:      inst.token,
			Identifier: inst.identifier,
			Element:    inst.element.Path(),
			Controller: fmt.Sprintf("%T", inst.controller),
		})
	}
	return infos
}

// controllerTokens adapts the Application to the token delegate for the
// controller attribute.
type controllerTokens Application

func (t *controllerTokens) TokenMatched(el dom.Element, token string) {
	a := (*Application)(t)
	if m, ok := a.modules[token]; ok {
		m.connect(el)
	}
}

func (t *controllerTokens) TokenUnmatched(el dom.Element, token string) {
	a := (*Application)(t)
	if m, ok := a.modules[token]; ok {
		m.disconnect(el)
	}
}

// actionTokens adapts the Application to the token delegate for the
// action attribute.
type actionTokens Application

func (t *actionTokens) TokenMatched(el dom.Element, token string) {
	a := (*Application)(t)
	d, err := action.ParseActionToken(token, el.Tag())
	if err != nil {
		var derr *errors.DescriptorError
		if stderrors.As(err, &derr) {
			derr.Attribute = a.schema.ActionAttribute
		}
		errors.Report(&errors.TetherError{
			Op:      "engine.BindAction",
			Kind:    errors.KindParse,
			Element: el.Path(),
			Err:     err,
		})
		return
	}
	inst := a.instanceFor(el, d.Identifier)
	if inst == nil {
		// The owner may connect later and pick this binding up in its
		// connect scan. Report only when an ancestor names the
		// identifier but nothing is registered for it.
		_, found := el.Closest(func(e dom.Element) bool {
			return e.HasToken(a.schema.ControllerAttribute, d.Identifier)
		})
		if found {
			if _, registered := a.modules[d.Identifier]; !registered {
				errors.Report(&errors.TetherError{
					Op:      "engine.BindAction",
					Kind:    errors.KindAction,
					Element: el.Path(),
					Err:     fmt.Errorf("action %q references unregistered controller %q", token, d.Identifier),
				})
			}
		}
		return
	}
	inst.bind(el, token, d)
}

func (t *actionTokens) TokenUnmatched(el dom.Element, token string) {
	a := (*Application)(t)
	for _, identifier := range a.moduleOrder() {
		a.modules[identifier].unbindToken(el, token)
	}
}
