package observer

import (
	"testing"

	"github.com/go-tether/tether/pkg/dom"
)

// elementRecorder captures delegate callbacks as readable strings.
type elementRecorder struct {
	events []string
}

func (r *elementRecorder) ElementMatched(el dom.Element) {
	r.events = append(r.events, "match:"+label(el))
}

func (r *elementRecorder) ElementUnmatched(el dom.Element) {
	r.events = append(r.events, "unmatch:"+label(el))
}

func (r *elementRecorder) AttributeValueChanged(el dom.Element, name, old string) {
	r.events = append(r.events, "attr:"+label(el)+":"+name+"="+old)
}

func (r *elementRecorder) take() []string {
	events := r.events
	r.events = nil
	return events
}

func label(el dom.Element) string {
	if id := el.ID(); id != "" {
		return "#" + id
	}
	return el.Tag()
}

const observerPage = `<html><body>
<div id="first" data-controller="gallery"></div>
<section id="frame">
  <div id="second" data-controller="modal"></div>
</section>
<div id="plain"></div>
</body></html>`

func startObserver(t *testing.T) (*dom.Document, *ElementObserver, *elementRecorder) {
	t.Helper()
	doc := dom.MustParse(observerPage)
	rec := &elementRecorder{}
	obs := NewElementObserver(doc, AttributeMatcher{Name: "data-controller"}, rec)
	obs.Start()
	return doc, obs, rec
}

func assertEvents(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func flush(doc *dom.Document, obs interface {
	ProcessMutations([]dom.MutationRecord)
}) {
	obs.ProcessMutations(doc.TakeMutations())
}

func TestInitialScanDocumentOrder(t *testing.T) {
	_, _, rec := startObserver(t)
	assertEvents(t, rec.take(), []string{"match:#first", "match:#second"})
}

func TestNothingFiresBeforeStart(t *testing.T) {
	doc := dom.MustParse(observerPage)
	rec := &elementRecorder{}
	obs := NewElementObserver(doc, AttributeMatcher{Name: "data-controller"}, rec)

	obs.ProcessMutations(doc.TakeMutations())
	if len(rec.events) != 0 {
		t.Errorf("events before Start: %v", rec.events)
	}
}

func TestAddedSubtreeMatchesDescendants(t *testing.T) {
	doc, obs, rec := startObserver(t)
	rec.take()

	frame, _ := doc.GetElementByID("frame")
	wrapper := doc.CreateElement("div")
	inner := doc.CreateElement("div")
	inner.SetAttr("id", "late")
	inner.SetAttr("data-controller", "cart")
	wrapper.AppendChild(inner)
	frame.AppendChild(wrapper)

	flush(doc, obs)
	assertEvents(t, rec.take(), []string{"match:#late"})
}

func TestRemovedSubtreeUnmatchesEachOnce(t *testing.T) {
	doc, obs, rec := startObserver(t)
	rec.take()

	frame, _ := doc.GetElementByID("frame")
	frame.Remove()

	flush(doc, obs)
	assertEvents(t, rec.take(), []string{"unmatch:#second"})

	// A second flush has nothing left to report.
	flush(doc, obs)
	if len(rec.take()) != 0 {
		t.Error("removal reported twice")
	}
}

func TestAttributeTransitions(t *testing.T) {
	doc, obs, rec := startObserver(t)
	rec.take()

	plain, _ := doc.GetElementByID("plain")
	plain.SetAttr("data-controller", "tabs")
	flush(doc, obs)
	assertEvents(t, rec.take(), []string{"match:#plain"})

	plain.SetAttr("data-controller", "tabs cart")
	flush(doc, obs)
	assertEvents(t, rec.take(), []string{"attr:#plain:data-controller=tabs"})

	plain.RemoveAttr("data-controller")
	flush(doc, obs)
	assertEvents(t, rec.take(), []string{"unmatch:#plain"})
}

func TestUnrelatedAttributeChangeOnMatched(t *testing.T) {
	doc, obs, rec := startObserver(t)
	rec.take()

	first, _ := doc.GetElementByID("first")
	first.SetAttr("class", "active")
	flush(doc, obs)
	assertEvents(t, rec.take(), []string{"attr:#first:class="})

	plain, _ := doc.GetElementByID("plain")
	plain.SetAttr("class", "active")
	flush(doc, obs)
	if len(rec.take()) != 0 {
		t.Error("attribute change on unmatched element reported")
	}
}

func TestMoveUnmatchesThenRematches(t *testing.T) {
	doc, obs, rec := startObserver(t)
	rec.take()

	second, _ := doc.GetElementByID("second")
	body, _ := doc.Body()
	body.AppendChild(second)

	flush(doc, obs)
	assertEvents(t, rec.take(), []string{"unmatch:#second", "match:#second"})
}

func TestStopSilences(t *testing.T) {
	doc, obs, rec := startObserver(t)
	rec.take()

	obs.Stop()
	plain, _ := doc.GetElementByID("plain")
	plain.SetAttr("data-controller", "tabs")
	flush(doc, obs)
	obs.Refresh()

	if len(rec.take()) != 0 {
		t.Error("observer fired after Stop")
	}
	if obs.Matched(plain) {
		t.Error("Matched reported an element after Stop")
	}
}

func TestRefreshReconciles(t *testing.T) {
	doc, obs, rec := startObserver(t)
	rec.take()

	// Mutate and throw the records away; Refresh must still converge.
	first, _ := doc.GetElementByID("first")
	first.RemoveAttr("data-controller")
	plain, _ := doc.GetElementByID("plain")
	plain.SetAttr("data-controller", "tabs")
	doc.TakeMutations()

	obs.Refresh()
	events := rec.take()
	if len(events) != 2 {
		t.Fatalf("events = %v", events)
	}
	if !contains(events, "unmatch:#first") || !contains(events, "match:#plain") {
		t.Errorf("events = %v", events)
	}
	if obs.Matched(first) || !obs.Matched(plain) {
		t.Error("matched set did not reconcile")
	}
}

func contains(events []string, want string) bool {
	for _, e := range events {
		if e == want {
			return true
		}
	}
	return false
}

func TestMatchedQuery(t *testing.T) {
	doc, obs, _ := startObserver(t)
	first, _ := doc.GetElementByID("first")
	plain, _ := doc.GetElementByID("plain")

	if !obs.Matched(first) {
		t.Error("first should be matched")
	}
	if obs.Matched(plain) {
		t.Error("plain should not be matched")
	}
}
