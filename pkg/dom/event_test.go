package dom

import (
	"testing"

	"github.com/go-tether/tether/pkg/errors"
)

// dispatchHandler captures reported errors so dispatch tests can assert on
// them without writing to stderr.
type dispatchHandler struct {
	reported []*errors.TetherError
}

func (h *dispatchHandler) HandleError(err *errors.TetherError) {
	h.reported = append(h.reported, err)
}

func (h *dispatchHandler) HandlePanic(err *errors.PanicError) {}

func (h *dispatchHandler) HandleCallbackError(err *errors.CallbackError) {}

func dispatchFixture(t *testing.T) (*Document, Element, Element, Element) {
	t.Helper()
	doc := MustParse(`<html><body><div id="list"><button id="add">Add</button></div></body></html>`)
	body, _ := doc.Body()
	list, _ := doc.GetElementByID("list")
	button, _ := doc.GetElementByID("add")
	return doc, body, list, button
}

func TestDispatchPhaseOrder(t *testing.T) {
	doc, body, list, button := dispatchFixture(t)

	var order []string
	log := func(name string) func(*Event) {
		return func(ev *Event) { order = append(order, name) }
	}
	doc.AddListener(body, "click", log("body-capture"), ListenerOptions{Capture: true})
	doc.AddListener(body, "click", log("body-bubble"), ListenerOptions{})
	doc.AddListener(list, "click", log("list-capture"), ListenerOptions{Capture: true})
	doc.AddListener(list, "click", log("list-bubble"), ListenerOptions{})
	doc.AddListener(button, "click", log("button-a"), ListenerOptions{})
	doc.AddListener(button, "click", log("button-b"), ListenerOptions{Capture: true})

	if !doc.Dispatch(button, NewEvent("click")) {
		t.Fatal("undefaulted dispatch should return true")
	}

	want := []string{"body-capture", "list-capture", "button-a", "button-b", "list-bubble", "body-bubble"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestDispatchPhasesAndTargets(t *testing.T) {
	doc, body, _, button := dispatchFixture(t)

	checked := 0
	doc.AddListener(body, "click", func(ev *Event) {
		checked++
		if ev.Phase() != PhaseCapture {
			t.Errorf("body capture listener saw phase %v", ev.Phase())
		}
		if ev.CurrentTarget != body || ev.Target != button {
			t.Error("capture listener saw wrong targets")
		}
	}, ListenerOptions{Capture: true})
	doc.AddListener(button, "click", func(ev *Event) {
		checked++
		if ev.Phase() != PhaseTarget {
			t.Errorf("target listener saw phase %v", ev.Phase())
		}
		if ev.CurrentTarget != button || ev.Target != button {
			t.Error("target listener saw wrong targets")
		}
	}, ListenerOptions{})
	doc.AddListener(body, "click", func(ev *Event) {
		checked++
		if ev.Phase() != PhaseBubble {
			t.Errorf("body bubble listener saw phase %v", ev.Phase())
		}
	}, ListenerOptions{})

	doc.Dispatch(button, NewEvent("click"))
	if checked != 3 {
		t.Errorf("expected 3 listener invocations, got %d", checked)
	}
}

func TestDispatchTypeFilter(t *testing.T) {
	doc, _, _, button := dispatchFixture(t)

	var got []string
	doc.AddListener(button, "click", func(*Event) { got = append(got, "click") }, ListenerOptions{})
	doc.AddListener(button, "focus", func(*Event) { got = append(got, "focus") }, ListenerOptions{})

	doc.Dispatch(button, NewEvent("focus"))
	if len(got) != 1 || got[0] != "focus" {
		t.Errorf("dispatch ran listeners for the wrong type: %v", got)
	}
}

func TestStopPropagationDuringCapture(t *testing.T) {
	doc, body, list, button := dispatchFixture(t)

	var order []string
	doc.AddListener(body, "click", func(*Event) { order = append(order, "body") }, ListenerOptions{Capture: true})
	doc.AddListener(list, "click", func(ev *Event) {
		order = append(order, "list")
		ev.StopPropagation()
	}, ListenerOptions{Capture: true})
	doc.AddListener(button, "click", func(*Event) { order = append(order, "button") }, ListenerOptions{})
	doc.AddListener(body, "click", func(*Event) { order = append(order, "body-bubble") }, ListenerOptions{})

	doc.Dispatch(button, NewEvent("click"))
	if len(order) != 2 || order[0] != "body" || order[1] != "list" {
		t.Errorf("StopPropagation in capture should skip target and bubble, got %v", order)
	}
}

func TestStopImmediatePropagation(t *testing.T) {
	doc, body, _, button := dispatchFixture(t)

	var order []string
	doc.AddListener(button, "click", func(ev *Event) {
		order = append(order, "first")
		ev.StopImmediatePropagation()
	}, ListenerOptions{})
	doc.AddListener(button, "click", func(*Event) { order = append(order, "second") }, ListenerOptions{})
	doc.AddListener(body, "click", func(*Event) { order = append(order, "body") }, ListenerOptions{})

	doc.Dispatch(button, NewEvent("click"))
	if len(order) != 1 || order[0] != "first" {
		t.Errorf("StopImmediatePropagation should halt remaining listeners, got %v", order)
	}
}

func TestOnceListener(t *testing.T) {
	doc, _, _, button := dispatchFixture(t)

	fired := 0
	doc.AddListener(button, "click", func(*Event) {
		fired++
		// Once unbinds before the callback runs.
		if doc.ListenerCount(button) != 0 {
			t.Error("once listener should already be unbound when it fires")
		}
	}, ListenerOptions{Once: true})

	doc.Dispatch(button, NewEvent("click"))
	doc.Dispatch(button, NewEvent("click"))
	if fired != 1 {
		t.Errorf("once listener fired %d times", fired)
	}
	if doc.ListenerCount(button) != 0 {
		t.Errorf("listener count = %d after once dispatch", doc.ListenerCount(button))
	}
}

func TestPreventDefault(t *testing.T) {
	doc, _, _, button := dispatchFixture(t)
	doc.AddListener(button, "submit", func(ev *Event) { ev.PreventDefault() }, ListenerOptions{})

	if doc.Dispatch(button, NewEvent("submit")) {
		t.Error("Dispatch should return false when a listener prevented the default")
	}

	ev := NewEvent("submit")
	ev.Cancelable = false
	if !doc.Dispatch(button, ev) {
		t.Error("PreventDefault on a non-cancelable event should not affect the result")
	}
	if ev.DefaultPrevented() {
		t.Error("non-cancelable event reported DefaultPrevented")
	}
}

func TestNonBubblingEvent(t *testing.T) {
	doc, body, _, button := dispatchFixture(t)

	var order []string
	doc.AddListener(body, "toggle", func(*Event) { order = append(order, "body") }, ListenerOptions{})
	doc.AddListener(button, "toggle", func(*Event) { order = append(order, "button") }, ListenerOptions{})

	ev := NewEvent("toggle")
	ev.Bubbles = false
	doc.Dispatch(button, ev)
	if len(order) != 1 || order[0] != "button" {
		t.Errorf("non-bubbling event reached ancestors: %v", order)
	}
}

func TestCustomEventDetail(t *testing.T) {
	doc, _, _, button := dispatchFixture(t)

	var got any
	doc.AddListener(button, "cart:updated", func(ev *Event) { got = ev.Detail }, ListenerOptions{})
	doc.Dispatch(button, NewCustomEvent("cart:updated", 42))
	if got != 42 {
		t.Errorf("Detail = %v, want 42", got)
	}
}

func TestListenerAddedDuringDispatchDeferred(t *testing.T) {
	doc, _, _, button := dispatchFixture(t)

	var order []string
	doc.AddListener(button, "click", func(*Event) {
		order = append(order, "outer")
		doc.AddListener(button, "click", func(*Event) { order = append(order, "inner") }, ListenerOptions{})
	}, ListenerOptions{})

	doc.Dispatch(button, NewEvent("click"))
	if len(order) != 1 {
		t.Fatalf("listener added mid-dispatch ran for the same event: %v", order)
	}
	doc.Dispatch(button, NewEvent("click"))
	if len(order) != 3 {
		t.Errorf("listener added mid-dispatch should run on the next event: %v", order)
	}
}

func TestUnbindDuringDispatch(t *testing.T) {
	doc, _, _, button := dispatchFixture(t)

	var order []string
	var unbindSecond func()
	doc.AddListener(button, "click", func(*Event) {
		order = append(order, "first")
		unbindSecond()
	}, ListenerOptions{})
	unbindSecond = doc.AddListener(button, "click", func(*Event) { order = append(order, "second") }, ListenerOptions{})

	doc.Dispatch(button, NewEvent("click"))
	if len(order) != 1 || order[0] != "first" {
		t.Errorf("listener unbound mid-dispatch still ran: %v", order)
	}
}

func TestUnbindIsIdempotent(t *testing.T) {
	doc, _, _, button := dispatchFixture(t)
	unbind := doc.AddListener(button, "click", func(*Event) {}, ListenerOptions{})
	doc.AddListener(button, "click", func(*Event) {}, ListenerOptions{})

	unbind()
	unbind()
	if got := doc.ListenerCount(button); got != 1 {
		t.Errorf("listener count = %d after double unbind, want 1", got)
	}
}

func TestDispatchOnDetachedElementReportsError(t *testing.T) {
	doc, _, _, button := dispatchFixture(t)

	h := &dispatchHandler{}
	errors.SetHandler(h)
	defer errors.SetHandler(nil)

	fired := false
	doc.AddListener(button, "click", func(*Event) { fired = true }, ListenerOptions{})
	button.Remove()

	if !doc.Dispatch(button, NewEvent("click")) {
		t.Error("detached dispatch should return true")
	}
	if fired {
		t.Error("detached dispatch ran listeners")
	}
	if len(h.reported) != 1 || h.reported[0].Kind != errors.KindDispatch {
		t.Errorf("expected one dispatch error, got %v", h.reported)
	}
}

func TestReusedEventReportsError(t *testing.T) {
	doc, _, _, button := dispatchFixture(t)

	h := &dispatchHandler{}
	errors.SetHandler(h)
	defer errors.SetHandler(nil)

	fired := 0
	doc.AddListener(button, "click", func(*Event) { fired++ }, ListenerOptions{})

	ev := NewEvent("click")
	doc.Dispatch(button, ev)
	doc.Dispatch(button, ev)

	if fired != 1 {
		t.Errorf("reused event ran listeners %d times, want 1", fired)
	}
	if len(h.reported) != 1 || h.reported[0].Kind != errors.KindDispatch {
		t.Errorf("expected one dispatch error, got %v", h.reported)
	}
}

func TestListenersSurviveReattach(t *testing.T) {
	doc, body, list, button := dispatchFixture(t)

	fired := 0
	doc.AddListener(button, "click", func(*Event) { fired++ }, ListenerOptions{})

	list.RemoveChild(button)
	body.AppendChild(button)
	doc.Dispatch(button, NewEvent("click"))
	if fired != 1 {
		t.Errorf("listener did not survive re-attach, fired = %d", fired)
	}
}
