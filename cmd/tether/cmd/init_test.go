package cmd

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/go-tether/tether/cmd/tether/internal/config"
	"github.com/go-tether/tether/cmd/tether/internal/scenario"
	"github.com/go-tether/tether/cmd/tether/internal/script"
)

func TestValidateDirectory(t *testing.T) {
	type tc struct {
		name    string
		dir     string
		wantErr bool
	}
	tests := []tc{
		{"simple name", "myapp", false},
		{"relative path", "projects/myapp", false},
		{"deep relative", "a/b/c/myapp", false},

		{"empty", "", true},
		{"root slash", "/", true},
		{"dot", ".", true},
		{"dotdot", "..", true},
	}

	if runtime.GOOS == "windows" {
		tests = append(tests,
			tc{"drive root", `C:\`, true},
			tc{"root-level C:\\Users", `C:\Users`, true},
			tc{"nested windows path", `C:\Users\me\projects\myapp`, false},
		)
	} else {
		tests = append(tests,
			tc{"absolute nested", "/home/user/projects/myapp", false},
			tc{"root-level /etc", "/etc", true},
			tc{"root-level /tmp", "/tmp", true},
		)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateDirectory(tt.dir)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateDirectory(%q) error = %v, wantErr %v", tt.dir, err, tt.wantErr)
			}
		})
	}
}

func TestValidateProjectName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "myapp", false},
		{"with hyphen", "my-app", false},
		{"with underscore", "my_app", false},
		{"with numbers", "app2", false},

		{"empty", "", true},
		{"starts with dot", ".hidden", true},
		{"starts with hyphen", "-bad", true},
		{"starts with number", "1app", true},
		{"has spaces", "my app", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateProjectName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateProjectName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestSafeRemoveAll(t *testing.T) {
	t.Run("removes normal directory", func(t *testing.T) {
		dir := t.TempDir()
		target := filepath.Join(dir, "myapp")
		if err := os.Mkdir(target, 0o755); err != nil {
			t.Fatal(err)
		}
		safeRemoveAll(target)
		if _, err := os.Stat(target); !os.IsNotExist(err) {
			t.Error("expected directory to be removed, but it still exists")
		}
	})

	t.Run("no-ops on dangerous paths", func(t *testing.T) {
		dangerous := []string{"", "/", ".", ".."}
		for _, d := range dangerous {
			safeRemoveAll(d) // must not panic
		}
	})
}

func TestScaffoldProject_Files(t *testing.T) {
	tmp := t.TempDir()
	dir := filepath.Join(tmp, "projects", "myapp")

	if err := scaffoldProject(dir, "myapp"); err != nil {
		t.Fatalf("scaffoldProject(%q) unexpected error: %v", dir, err)
	}

	cfgData, err := os.ReadFile(filepath.Join(dir, "tether.yaml"))
	if err != nil {
		t.Fatalf("failed to read tether.yaml: %v", err)
	}
	if got := string(cfgData); !strings.Contains(got, "name: myapp") {
		t.Errorf("tether.yaml should contain 'name: myapp', got:\n%s", got)
	}

	for _, name := range []string{"index.html", filepath.Join("controllers", "greeter.go")} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s should exist: %v", name, err)
		}
	}
}

func TestScaffoldProject_RejectsExistingDirectory(t *testing.T) {
	tmp := t.TempDir()
	dir := filepath.Join(tmp, "myapp")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	if err := scaffoldProject(dir, "myapp"); err == nil {
		t.Fatal("expected error for existing directory, got nil")
	}
}

// The scaffold must produce a project the run command can execute
// as-is: config resolves, the sample script loads, and the sample
// page's controller responds to the scenario click.
func TestScaffoldProject_ProducesRunnableProject(t *testing.T) {
	tmp := t.TempDir()
	dir := filepath.Join(tmp, "myapp")

	if err := scaffoldProject(dir, "myapp"); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Resolve(dir)
	if err != nil {
		t.Fatalf("resolve scaffolded config: %v", err)
	}
	defs, err := script.LoadDir(cfg.ControllersDir)
	if err != nil {
		t.Fatalf("load scaffolded scripts: %v", err)
	}
	if len(defs) != 1 || defs[0].Identifier != "greeter" {
		t.Fatalf("expected greeter controller, got %+v", defs)
	}

	sc, err := scenario.Parse([]byte("steps:\n  - fire: click\n    on: button\n"))
	if err != nil {
		t.Fatal(err)
	}
	html, err := runDocument(filepath.Join(dir, "index.html"), cfg, defs, sc, false)
	if err != nil {
		t.Fatalf("run scaffolded project: %v", err)
	}
	if !strings.Contains(html, "Hello, myapp!") {
		t.Errorf("output should contain greeting, got:\n%s", html)
	}
}

func TestRunInit_RejectsDangerousDirectory(t *testing.T) {
	for _, dir := range []string{"/", ".", ".."} {
		if err := runInit([]string{dir}); err == nil {
			t.Errorf("expected error for dangerous directory %q, got nil", dir)
		}
	}
}

func TestRunInit_RejectsTilde(t *testing.T) {
	err := runInit([]string{"~/myapp"})
	if err == nil {
		t.Fatal("expected error for tilde path, got nil")
	}
	if !strings.Contains(err.Error(), "tilde") {
		t.Errorf("expected tilde-specific error, got: %v", err)
	}
}

func TestRunInit_NoArgs(t *testing.T) {
	if err := runInit(nil); err == nil {
		t.Fatal("expected error for missing directory, got nil")
	}
}
