package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-tether/tether/cmd/tether/internal/templates"
)

func init() {
	RegisterCommand(&Command{
		Name:  "init",
		Short: "Create a new Tether project",
		Long: `Create a new Tether project in a new directory.

This command creates:
  - A new directory at the specified path
  - tether.yaml with the project configuration
  - index.html with a starter page
  - controllers/greeter.go with a sample controller script

The project name is derived from the directory basename.

Examples:
  tether init myapp
  tether init ./projects/myapp`,
		Usage: "tether init <directory>",
		Run:   runInit,
	})
}

func runInit(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("directory is required\n\nUsage: tether init <directory>")
	}

	raw := args[0]
	if strings.HasPrefix(raw, "~") {
		return fmt.Errorf("tilde (~) is not expanded by tether; use an absolute path or $HOME instead")
	}

	dir := filepath.Clean(raw)

	// Validate directory path before deriving anything from it
	if err := validateDirectory(dir); err != nil {
		return err
	}

	projectName := filepath.Base(dir)
	if err := validateProjectName(projectName); err != nil {
		return fmt.Errorf("invalid project name %q (derived from directory basename): %w", projectName, err)
	}

	if err := scaffoldProject(dir, projectName); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("Project created successfully!\n\n")
	fmt.Printf("Next steps:\n")
	fmt.Printf("  cd %s\n", dir)
	fmt.Printf("  tether run index.html      # Connect controllers, print the result\n")
	fmt.Printf("  tether watch index.html    # Re-run on every change\n")

	return nil
}

// scaffoldProject creates the project directory and writes the template
// files. Filesystem-only, so tests can call it directly.
func scaffoldProject(dir, projectName string) error {
	// Check if directory already exists
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("directory %q already exists", dir)
	}

	fmt.Printf("Creating new Tether project: %s\n", projectName)

	if err := os.MkdirAll(filepath.Join(dir, "controllers"), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data := &templates.TemplateData{AppName: projectName}

	initFiles := []struct {
		templatePath string
		destName     string
	}{
		{"init/tether.yaml.tmpl", "tether.yaml"},
		{"init/index.html.tmpl", "index.html"},
		{"init/greeter.go.tmpl", filepath.Join("controllers", "greeter.go")},
	}

	for _, f := range initFiles {
		if err := writeInitTemplate(dir, f.templatePath, f.destName, data); err != nil {
			safeRemoveAll(dir)
			return err
		}
		fmt.Printf("  Created %s\n", f.destName)
	}

	return nil
}

func writeInitTemplate(projectDir, templatePath, destName string, data *templates.TemplateData) error {
	content, err := templates.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read template %s: %w", templatePath, err)
	}

	rendered, err := templates.ProcessTemplate(string(content), data)
	if err != nil {
		return fmt.Errorf("failed to render template %s: %w", templatePath, err)
	}

	destPath := filepath.Join(projectDir, destName)
	if err := os.WriteFile(destPath, []byte(rendered), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", destName, err)
	}

	return nil
}

// validateDirectory rejects directory paths that would be dangerous to
// create or clean up: filesystem roots, the current/parent directory,
// and root-level absolute paths (e.g. /etc).
func validateDirectory(dir string) error {
	switch dir {
	case "", "/", ".", "..":
		return fmt.Errorf("directory %q is not a valid project location", dir)
	}
	if isVolumeRoot(dir) {
		return fmt.Errorf("directory %q is not a valid project location", dir)
	}
	if filepath.IsAbs(dir) && isVolumeRoot(filepath.Dir(dir)) {
		return fmt.Errorf("refusing to create project at root-level path %q", dir)
	}
	return nil
}

// isVolumeRoot reports whether dir is a filesystem root. On Unix this
// is "/", on Windows it covers drive roots like "C:\".
func isVolumeRoot(dir string) bool {
	return dir == filepath.VolumeName(dir)+string(filepath.Separator)
}

// safeRemoveAll removes a directory only if the path passes
// validateDirectory. Dangerous paths no-op silently; this runs on
// cleanup paths where the original error should not be masked.
func safeRemoveAll(dir string) {
	if validateDirectory(dir) != nil {
		return
	}
	os.RemoveAll(dir)
}

var validProjectName = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// validateProjectName checks that a project name (derived from the
// directory basename) starts with a letter and contains only letters,
// digits, underscores, and hyphens.
func validateProjectName(name string) error {
	if name == "" {
		return fmt.Errorf("project name cannot be empty")
	}
	if strings.HasPrefix(name, ".") {
		return fmt.Errorf("project name cannot start with a dot")
	}
	if strings.HasPrefix(name, "-") {
		return fmt.Errorf("project name cannot start with a hyphen")
	}
	if !validProjectName.MatchString(name) {
		return fmt.Errorf("project name must start with a letter and contain only letters, numbers, underscores, and hyphens")
	}
	return nil
}
