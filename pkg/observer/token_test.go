package observer

import (
	"testing"

	"github.com/go-tether/tether/pkg/dom"
)

type tokenRecorder struct {
	events []string
}

func (r *tokenRecorder) TokenMatched(el dom.Element, token string) {
	r.events = append(r.events, "+"+token+"@"+label(el))
}

func (r *tokenRecorder) TokenUnmatched(el dom.Element, token string) {
	r.events = append(r.events, "-"+token+"@"+label(el))
}

func (r *tokenRecorder) take() []string {
	events := r.events
	r.events = nil
	return events
}

func startTokenObserver(t *testing.T) (*dom.Document, *TokenListObserver, *tokenRecorder) {
	t.Helper()
	doc := dom.MustParse(`<html><body>
<div id="multi" data-controller="gallery modal"></div>
<div id="solo" data-controller="cart"></div>
</body></html>`)
	rec := &tokenRecorder{}
	obs := NewTokenListObserver(doc, "data-controller", rec)
	obs.Start()
	return doc, obs, rec
}

func TestTokenInitialScan(t *testing.T) {
	_, _, rec := startTokenObserver(t)
	assertEvents(t, rec.take(), []string{"+gallery@#multi", "+modal@#multi", "+cart@#solo"})
}

func TestTokenDiffOnValueChange(t *testing.T) {
	doc, obs, rec := startTokenObserver(t)
	rec.take()

	multi, _ := doc.GetElementByID("multi")
	multi.SetAttr("data-controller", "modal cart")
	flush(doc, obs)

	// gallery left, cart arrived; modal appears in both values and is silent.
	assertEvents(t, rec.take(), []string{"-gallery@#multi", "+cart@#multi"})
}

func TestTokenReorderIsSilent(t *testing.T) {
	doc, obs, rec := startTokenObserver(t)
	rec.take()

	multi, _ := doc.GetElementByID("multi")
	multi.SetAttr("data-controller", "modal gallery")
	flush(doc, obs)

	if events := rec.take(); len(events) != 0 {
		t.Errorf("reorder fired %v", events)
	}
}

func TestTokenAttributeRemoval(t *testing.T) {
	doc, obs, rec := startTokenObserver(t)
	rec.take()

	multi, _ := doc.GetElementByID("multi")
	multi.RemoveAttr("data-controller")
	flush(doc, obs)

	assertEvents(t, rec.take(), []string{"-gallery@#multi", "-modal@#multi"})
	if obs.Tokens(multi) != nil {
		t.Errorf("Tokens after removal = %v", obs.Tokens(multi))
	}
}

func TestTokenElementRemoval(t *testing.T) {
	doc, obs, rec := startTokenObserver(t)
	rec.take()

	multi, _ := doc.GetElementByID("multi")
	multi.Remove()
	flush(doc, obs)

	assertEvents(t, rec.take(), []string{"-gallery@#multi", "-modal@#multi"})
}

func TestTokenLateAttribute(t *testing.T) {
	doc, obs, rec := startTokenObserver(t)
	rec.take()

	body, _ := doc.Body()
	late := doc.CreateElement("div")
	late.SetAttr("id", "late")
	body.AppendChild(late)
	flush(doc, obs)
	if events := rec.take(); len(events) != 0 {
		t.Fatalf("element without the attribute fired %v", events)
	}

	late.SetAttr("data-controller", "tabs")
	flush(doc, obs)
	assertEvents(t, rec.take(), []string{"+tabs@#late"})
	if tokens := obs.Tokens(late); len(tokens) != 1 || tokens[0] != "tabs" {
		t.Errorf("Tokens = %v", tokens)
	}
}

func TestTokenStop(t *testing.T) {
	doc, obs, rec := startTokenObserver(t)
	rec.take()

	obs.Stop()
	multi, _ := doc.GetElementByID("multi")
	multi.SetAttr("data-controller", "other")
	flush(doc, obs)

	if events := rec.take(); len(events) != 0 {
		t.Errorf("token observer fired after Stop: %v", events)
	}
}

type attrRecorder struct {
	events []string
}

func (r *attrRecorder) AttributeValueChanged(el dom.Element, name, old string) {
	r.events = append(r.events, label(el)+":"+name+"="+old)
}

func TestAttributeObserverScopesByElement(t *testing.T) {
	doc := dom.MustParse(`<html><body>
<div id="watched" data-gallery-index-value="1"></div>
<div id="other"></div>
</body></html>`)
	watched, _ := doc.GetElementByID("watched")
	other, _ := doc.GetElementByID("other")

	rec := &attrRecorder{}
	obs := NewAttributeObserver(watched, rec)

	watched.SetAttr("data-gallery-index-value", "2")
	other.SetAttr("data-gallery-index-value", "9")
	obs.ProcessMutations(doc.TakeMutations())

	assertEvents(t, rec.events, []string{"#watched:data-gallery-index-value=1"})

	obs.Stop()
	watched.SetAttr("data-gallery-index-value", "3")
	obs.ProcessMutations(doc.TakeMutations())
	if len(rec.events) != 1 {
		t.Error("attribute observer fired after Stop")
	}
}
