package core

import (
	stderrors "errors"
	"testing"

	"github.com/go-tether/tether/pkg/dom"
	"github.com/go-tether/tether/pkg/errors"
	"github.com/go-tether/tether/pkg/schema"
)

// ControllerBase alone satisfies Controller; embedders override what they
// need.
var _ Controller = (*ControllerBase)(nil)

type bareController struct{}

func (bareController) Connect()    {}
func (bareController) Disconnect() {}

func baseScope(t *testing.T) Scope {
	t.Helper()
	doc := dom.MustParse(`<html><body><div id="host" data-controller="counter"></div></body></html>`)
	el, _ := doc.GetElementByID("host")
	return NewScope(el, "counter", schema.DefaultSchema())
}

func TestBindScope(t *testing.T) {
	scope := baseScope(t)
	c := &nullController{}

	if !BindScope(c, scope, nil) {
		t.Fatal("BindScope should wire a ControllerBase embedder")
	}
	if !c.Bound() {
		t.Error("controller should report bound")
	}
	if c.Element() != scope.Element {
		t.Error("Element() should return the scope element")
	}
	if c.Identifier() != "counter" {
		t.Errorf("Identifier() = %q", c.Identifier())
	}
	if c.Scope() != scope {
		t.Error("Scope() should round-trip")
	}

	ReleaseScope(c)
	if c.Bound() {
		t.Error("controller should report unbound after release")
	}
	if !c.Element().IsZero() {
		t.Error("Element() should be zero after release")
	}
}

func TestBindScopeWithoutBase(t *testing.T) {
	if BindScope(bareController{}, baseScope(t), nil) {
		t.Error("BindScope should report false for controllers without the base")
	}
}

func TestBaseDispatch(t *testing.T) {
	scope := baseScope(t)
	doc := scope.Element.Document()
	c := &nullController{}
	BindScope(c, scope, nil)

	var got *dom.Event
	doc.AddListener(scope.Element, "counter:ping", func(ev *dom.Event) { got = ev }, dom.ListenerOptions{})

	if !c.Dispatch("ping", WithDetail(5)) {
		t.Error("undefaulted Dispatch should return true")
	}
	if got == nil {
		t.Fatal("listener did not fire")
	}
	if got.Type != "counter:ping" || got.Detail != 5 {
		t.Errorf("event = %+v", got)
	}
}

func TestBaseDispatchBubblesToAncestors(t *testing.T) {
	scope := baseScope(t)
	doc := scope.Element.Document()
	body, _ := doc.Body()
	c := &nullController{}
	BindScope(c, scope, nil)

	heard := 0
	doc.AddListener(body, "counter:ping", func(*dom.Event) { heard++ }, dom.ListenerOptions{})

	c.Dispatch("ping")
	c.Dispatch("ping", NoBubble())
	if heard != 1 {
		t.Errorf("body heard %d events, want 1 (NoBubble suppresses the second)", heard)
	}
}

func TestBaseDispatchPrevented(t *testing.T) {
	scope := baseScope(t)
	doc := scope.Element.Document()
	c := &nullController{}
	BindScope(c, scope, nil)

	doc.AddListener(scope.Element, "counter:save", func(ev *dom.Event) { ev.PreventDefault() }, dom.ListenerOptions{})
	if c.Dispatch("save") {
		t.Error("Dispatch should return false when a listener prevented the default")
	}
	if c.Dispatch("save", NotCancelable()) != true {
		t.Error("NotCancelable should neutralize PreventDefault")
	}
}

func TestUnboundDispatchReported(t *testing.T) {
	h := &recordingHandler{}
	errors.SetHandler(h)
	defer errors.SetHandler(nil)

	c := &nullController{}
	if !c.Dispatch("ping") {
		t.Error("unbound Dispatch should return true")
	}
	if len(h.errs) != 1 {
		t.Fatalf("expected one reported error, got %d", len(h.errs))
	}
	if !stderrors.Is(h.errs[0], errors.ErrUnboundController) {
		t.Errorf("error = %v, want ErrUnboundController", h.errs[0])
	}
}
