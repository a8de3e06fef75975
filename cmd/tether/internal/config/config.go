package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"

	"github.com/go-tether/tether/pkg/schema"
)

// ConfigFile is the project configuration file name.
const ConfigFile = "tether.yaml"

// Config represents the optional tether.yaml configuration.
type Config struct {
	App    AppConfig    `yaml:"app"`
	Schema SchemaConfig `yaml:"schema"`
	Engine EngineConfig `yaml:"engine"`
}

// AppConfig contains application metadata.
type AppConfig struct {
	Name        string `yaml:"name,omitempty"`
	Controllers string `yaml:"controllers,omitempty"`
}

// SchemaConfig overrides the attribute schema. Empty fields keep the
// defaults (data-controller, data-action, data- prefix).
type SchemaConfig struct {
	Controller string `yaml:"controller,omitempty"`
	Action     string `yaml:"action,omitempty"`
	Prefix     string `yaml:"prefix,omitempty"`
}

// EngineConfig contains engine settings.
type EngineConfig struct {
	Debug   bool   `yaml:"debug,omitempty"`
	Inspect string `yaml:"inspect,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root           string
	AppName        string
	ControllersDir string
	Schema         schema.Schema
	Debug          bool
	InspectAddr    string
}

// LoadOptional reads tether.yaml in dir if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", ConfigFile, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ConfigFile, err)
	}

	return &cfg, nil
}

// Resolve loads tether.yaml (if present) and resolves defaults.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}

	appName := strings.TrimSpace(cfg.App.Name)
	if appName == "" {
		appName = defaultAppName(dir)
	}

	controllers := strings.TrimSpace(cfg.App.Controllers)
	if controllers == "" {
		controllers = "controllers"
	}
	if !filepath.IsAbs(controllers) {
		controllers = filepath.Join(dir, controllers)
	}

	s, err := resolveSchema(cfg.Schema)
	if err != nil {
		return nil, err
	}

	return &Resolved{
		Root:           dir,
		AppName:        appName,
		ControllersDir: controllers,
		Schema:         s,
		Debug:          cfg.Engine.Debug,
		InspectAddr:    strings.TrimSpace(cfg.Engine.Inspect),
	}, nil
}

func resolveSchema(sc SchemaConfig) (schema.Schema, error) {
	s := schema.DefaultSchema()
	if v := strings.TrimSpace(sc.Controller); v != "" {
		s.ControllerAttribute = v
	}
	if v := strings.TrimSpace(sc.Action); v != "" {
		s.ActionAttribute = v
	}
	if v := strings.TrimSpace(sc.Prefix); v != "" {
		if !strings.HasSuffix(v, "-") {
			v += "-"
		}
		s.Prefix = v
	}
	if s.ControllerAttribute == s.ActionAttribute {
		return s, fmt.Errorf("schema.controller and schema.action must differ (both %q)", s.ControllerAttribute)
	}
	return s, nil
}

// FindProjectRoot walks up from the current directory to the nearest
// directory containing tether.yaml or go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for d := dir; ; {
		if _, err := os.Stat(filepath.Join(d, ConfigFile)); err == nil {
			return d, nil
		}
		if _, err := os.Stat(filepath.Join(d, "go.mod")); err == nil {
			return d, nil
		}
		parent := filepath.Dir(d)
		if parent == d {
			return "", fmt.Errorf("not in a tether project (no %s or go.mod found)", ConfigFile)
		}
		d = parent
	}
}

// defaultAppName derives a name from the enclosing go.mod module path
// when present, else from the directory name.
func defaultAppName(dir string) string {
	base := filepath.Base(dir)
	if data, err := os.ReadFile(filepath.Join(dir, "go.mod")); err == nil {
		if path := modfile.ModulePath(data); path != "" {
			modName, _, ok := module.SplitPathVersion(path)
			if !ok {
				modName = path
			}
			parts := strings.Split(modName, "/")
			if last := parts[len(parts)-1]; last != "" {
				base = last
			}
		}
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "tether_app"
	}
	return base
}
