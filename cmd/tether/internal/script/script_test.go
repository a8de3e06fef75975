package script

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-tether/tether/pkg/errors"
	tethertest "github.com/go-tether/tether/pkg/testing"
)

const counterScript = `package main

import (
	"strconv"

	"tether/dom"
	"tether/script"
)

func Controllers() []map[string]any {
	return []map[string]any{{
		"identifier": "counter",
		"connect": func(ctx *script.Context) {
			ctx.SetValue("count", "0")
		},
		"valueChanged": func(ctx *script.Context, name, old, now string) {
			if out, ok := ctx.Target("output"); ok {
				out.SetText(now)
			}
		},
		"methods": map[string]any{
			"increment": func(ctx *script.Context, ev *dom.Event) {
				n, _ := strconv.Atoi(ctx.Value("count"))
				ctx.SetValue("count", strconv.Itoa(n+1))
			},
		},
	}}
}`

func writeScript(t *testing.T, dir, name, source string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "counter.go", counterScript)

	defs, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("load scripts: %v", err)
	}
	if len(defs) != 1 {
		t.Fatalf("expected 1 controller, got %d", len(defs))
	}
	def := defs[0]
	if def.Identifier != "counter" {
		t.Errorf("identifier = %q", def.Identifier)
	}
	if def.Connect == nil || def.ValueChanged == nil {
		t.Error("lifecycle callbacks not wired")
	}
	if def.Initialize != nil || def.Disconnect != nil {
		t.Error("omitted callbacks should stay nil")
	}
	if _, ok := def.Methods["increment"]; !ok {
		t.Error("method table missing increment")
	}
}

func TestLoadDir_Missing(t *testing.T) {
	defs, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
	if defs != nil {
		t.Fatalf("expected no definitions, got %d", len(defs))
	}
}

func TestLoadDir_MissingEntryFunc(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "broken.go", "package main\n")

	_, err := LoadDir(dir)
	if err == nil {
		t.Fatal("expected error for missing Controllers function")
	}
	var terr *errors.TetherError
	if !stderrors.As(err, &terr) || terr.Kind != errors.KindScript {
		t.Fatalf("expected script-kind error, got %v", err)
	}
}

func TestLoadDir_DuplicateIdentifier(t *testing.T) {
	dir := t.TempDir()
	decl := `package main

import "tether/script"

func Controllers() []map[string]any {
	return []map[string]any{{
		"identifier": "dup",
		"connect":    func(ctx *script.Context) {},
	}}
}`
	writeScript(t, dir, "a.go", decl)
	writeScript(t, dir, "b.go", decl)

	_, err := LoadDir(dir)
	if err == nil || !strings.Contains(err.Error(), `controller "dup"`) {
		t.Fatalf("expected duplicate identifier error, got %v", err)
	}
}

func TestParseDefinition_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
	}{
		{"missing identifier", map[string]any{"connect": func(*Context) {}}},
		{"invalid identifier", map[string]any{"identifier": "Bad_Name"}},
		{"wrong lifecycle type", map[string]any{"identifier": "x", "connect": "nope"}},
		{"wrong method type", map[string]any{"identifier": "x", "methods": map[string]any{"go": 42}}},
		{"unknown key", map[string]any{"identifier": "x", "mount": func(*Context) {}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseDefinition(tt.raw); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}

func TestParseDefinition_NormalizesEventlessMethods(t *testing.T) {
	called := false
	def, err := parseDefinition(map[string]any{
		"identifier": "x",
		"methods": map[string]any{
			"go": func(*Context) { called = true },
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	def.Methods["go"](nil, nil)
	if !called {
		t.Error("normalized method did not reach the script func")
	}
}

func TestScriptControllerDrivesDocument(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "counter.go", counterScript)

	defs, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("load scripts: %v", err)
	}

	tester := tethertest.NewTesterWithT(t)
	for _, def := range defs {
		tester.Register(def.Identifier, def.Constructor())
	}
	tester.LoadHTML(`<html><body>
<div id="root" data-controller="counter">
  <span id="out" data-counter-target="output">-</span>
  <button id="inc" data-action="click->counter#increment"></button>
</div>
</body></html>`)
	tester.Start()

	root := tester.Find(tethertest.ByController("counter")).First()
	if root.Attr("data-counter-count-value") != "0" {
		t.Fatalf("connect did not prime the count value: %q", root.Attr("data-counter-count-value"))
	}

	tester.Click(tethertest.ByID("inc"))
	tester.Click(tethertest.ByID("inc"))

	if got := tester.Find(tethertest.ByID("out")).First().Text(); got != "2" {
		t.Errorf("output text = %q, want %q", got, "2")
	}
	if got := root.Attr("data-counter-count-value"); got != "2" {
		t.Errorf("count value = %q, want %q", got, "2")
	}
}
