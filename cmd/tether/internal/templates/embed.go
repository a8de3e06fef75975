// Package templates provides embedded template files for project creation.
package templates

import (
	"embed"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed init/*
var FS embed.FS

// TemplateData contains the data for init template substitution.
type TemplateData struct {
	AppName string
}

// ProcessTemplate processes a template string with the given data.
func ProcessTemplate(content string, data *TemplateData) (string, error) {
	tmpl, err := template.New("").Parse(content)
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// ReadFile reads a file from the embedded filesystem.
func ReadFile(path string) ([]byte, error) {
	return FS.ReadFile(path)
}

// InitFiles returns the init template paths.
func InitFiles() ([]string, error) {
	var files []string
	err := fs.WalkDir(FS, "init", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}
