package scenario

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-tether/tether/pkg/errors"
	tethertest "github.com/go-tether/tether/pkg/testing"
)

func TestParse_Valid(t *testing.T) {
	sc, err := Parse([]byte(`steps:
  - fire: click
    on: "#next"
  - fire: keydown
    key: enter
    on: input
  - set: data-gallery-index-value
    value: "2"
    on: "#deck"
  - remove-attr: disabled
    on: "#buy"
  - append: "<li></li>"
    on: "#list"
  - text: "Done"
    on: "#status"
  - remove: "#banner"
`))
	if err != nil {
		t.Fatal(err)
	}
	if len(sc.Steps) != 7 {
		t.Fatalf("expected 7 steps, got %d", len(sc.Steps))
	}
	if sc.Steps[1].Key != "enter" || sc.Steps[1].On != "input" {
		t.Errorf("key step decoded wrong: %+v", sc.Steps[1])
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"malformed yaml", "steps: [", "scenario.Parse"},
		{"no verb", "steps:\n  - on: \"#a\"\n", "no verb"},
		{"two verbs", "steps:\n  - fire: click\n    text: hi\n    on: \"#a\"\n", "multiple verbs"},
		{"missing on", "steps:\n  - fire: click\n", "requires on"},
		{"key on non-fire", "steps:\n  - text: hi\n    key: enter\n    on: \"#a\"\n", "key only applies"},
		{"remove with on", "steps:\n  - remove: \"#a\"\n    on: \"#b\"\n", "remove takes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
			var terr *errors.TetherError
			if !stderrors.As(err, &terr) || terr.Kind != errors.KindParse {
				t.Errorf("expected parse-kind error, got %T", err)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/steps.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestApply(t *testing.T) {
	tester := tethertest.NewTesterWithT(t)
	ctor, log := tethertest.NewRecorder()
	tester.Register("item", ctor)
	tester.LoadHTML(`<html><body>
<ul id="list">
  <li id="first" data-controller="item" data-item-size-value="1">
    <button id="go" data-action="click->item#record"></button>
  </li>
</ul>
<p id="status">waiting</p>
</body></html>`)
	tester.Start()
	log.Reset()

	sc, err := Parse([]byte(`steps:
  - fire: click
    on: "#go"
  - set: data-item-size-value
    value: "4"
    on: "#first"
  - append: '<li id="second" data-controller="item"></li>'
    on: "#list"
  - text: "done"
    on: "#status"
  - remove: "#first"
`))
	if err != nil {
		t.Fatal(err)
	}
	if err := sc.Apply(tester.App()); err != nil {
		t.Fatal(err)
	}

	want := []string{
		"action:item@#first",
		"value:size 1->4",
		"initialize:item@#second",
		"connect:item@#second",
		"disconnect:item@#first",
	}
	if diff := cmp.Diff(want, log.Entries()); diff != "" {
		t.Errorf("step effects mismatch (-want +got):\n%s", diff)
	}
	if got := tester.Find(tethertest.ByID("status")).First().Text(); got != "done" {
		t.Errorf("status text = %q", got)
	}
	if tester.Find(tethertest.ByID("first")).Exists() {
		t.Error("removed element still present")
	}
}

func TestApply_UnresolvableElement(t *testing.T) {
	tester := tethertest.NewTesterWithT(t)
	tester.LoadHTML(`<html><body></body></html>`)
	tester.Start()

	sc, err := Parse([]byte("steps:\n  - fire: click\n    on: \"#ghost\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	err = sc.Apply(tester.App())
	if err == nil || !strings.Contains(err.Error(), "step 1") {
		t.Fatalf("expected step-indexed error, got %v", err)
	}
}
