package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/go-tether/tether/cmd/tether/internal/config"
	"github.com/go-tether/tether/cmd/tether/internal/scenario"
	"github.com/go-tether/tether/cmd/tether/internal/script"
	"github.com/go-tether/tether/pkg/core"
	"github.com/go-tether/tether/pkg/dom"
	"github.com/go-tether/tether/pkg/engine"
)

func init() {
	RegisterCommand(&Command{
		Name:  "run",
		Short: "Run controllers against HTML documents",
		Long: `Load one or more HTML documents, connect the controllers declared in
their data attributes, and print the resulting documents.

Controllers come from interpreted Go scripts in the project's
controllers directory (see "tether init" for the script format).
An optional scenario file fires events and edits the document after
the controllers connect, so the printed output reflects the
interactions.

Flags:
  --controllers DIR   Controller script directory (default: from tether.yaml)
  --scenario FILE     Apply scenario steps after connecting
  --out DIR           Write results to DIR instead of stdout
  --jobs N            Process up to N documents concurrently (default 4)
  --debug             Log connects, disconnects, and actions to stderr

Examples:
  tether run index.html
  tether run index.html --scenario steps.yaml
  tether run pages/*.html --out dist/`,
		Usage: "tether run <file.html>... [--controllers DIR] [--scenario FILE] [--out DIR] [--jobs N] [--debug]",
		Run:   runRun,
	})
}

type runOptions struct {
	controllers string
	scenario    string
	out         string
	jobs        int
	debug       bool
}

func parseRunArgs(args []string) ([]string, runOptions, error) {
	opts := runOptions{jobs: 4}
	var files []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--debug":
			opts.debug = true
		case arg == "--controllers" || arg == "--scenario" || arg == "--out" || arg == "--jobs":
			if i+1 >= len(args) {
				return nil, opts, fmt.Errorf("%s requires a value", arg)
			}
			i++
			switch arg {
			case "--controllers":
				opts.controllers = args[i]
			case "--scenario":
				opts.scenario = args[i]
			case "--out":
				opts.out = args[i]
			case "--jobs":
				n, err := strconv.Atoi(args[i])
				if err != nil || n < 1 {
					return nil, opts, fmt.Errorf("--jobs needs a positive integer, got %q", args[i])
				}
				opts.jobs = n
			}
		case strings.HasPrefix(arg, "--"):
			return nil, opts, fmt.Errorf("unknown flag %s", arg)
		default:
			files = append(files, arg)
		}
	}
	return files, opts, nil
}

func runRun(args []string) error {
	files, opts, err := parseRunArgs(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("at least one HTML file is required\n\nUsage: tether run <file.html>...")
	}

	cfg, err := resolveProject(opts.controllers)
	if err != nil {
		return err
	}

	defs, err := script.LoadDir(cfg.ControllersDir)
	if err != nil {
		return err
	}

	var sc *scenario.Scenario
	if opts.scenario != "" {
		sc, err = scenario.Load(opts.scenario)
		if err != nil {
			return err
		}
	}

	results := make([]string, len(files))
	eg, _ := errgroup.WithContext(context.Background())
	eg.SetLimit(opts.jobs)
	for i, file := range files {
		eg.Go(func() error {
			html, err := runDocument(file, cfg, defs, sc, opts.debug)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			results[i] = html
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	if opts.out != "" {
		if err := os.MkdirAll(opts.out, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		for i, file := range files {
			dest := filepath.Join(opts.out, filepath.Base(file))
			if err := os.WriteFile(dest, []byte(results[i]), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", dest, err)
			}
			fmt.Printf("wrote %s\n", dest)
		}
		return nil
	}

	for i, file := range files {
		if len(files) > 1 {
			fmt.Printf("==> %s\n", file)
		}
		fmt.Print(results[i])
		if !strings.HasSuffix(results[i], "\n") {
			fmt.Println()
		}
	}
	return nil
}

// runDocument loads one document, connects controllers, applies the
// scenario, and returns the settled document HTML.
func runDocument(path string, cfg *config.Resolved, defs []*script.Definition, sc *scenario.Scenario, debug bool) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	doc, err := dom.ParseString(string(data))
	if err != nil {
		return "", fmt.Errorf("parse: %w", err)
	}

	registry := core.NewRegistry()
	for _, def := range defs {
		if err := registry.Register(def.Identifier, def.Constructor()); err != nil {
			return "", err
		}
	}

	app := engine.New(doc,
		engine.WithSchema(cfg.Schema),
		engine.WithRegistry(registry),
		engine.WithDebug(debug || cfg.Debug),
	)
	if err := app.Start(); err != nil {
		return "", err
	}
	defer app.Stop()

	if sc != nil {
		if err := sc.Apply(app); err != nil {
			return "", err
		}
	}
	app.Flush()
	return doc.HTML(), nil
}

// resolveProject locates the project and applies a controllers-dir
// override. Running outside any project is allowed; scripts are then
// loaded only from the override, if given.
func resolveProject(controllersOverride string) (*config.Resolved, error) {
	root, err := config.FindProjectRoot()
	if err != nil {
		cwd, werr := os.Getwd()
		if werr != nil {
			return nil, werr
		}
		cfg, rerr := config.Resolve(cwd)
		if rerr != nil {
			return nil, rerr
		}
		cfg.ControllersDir = ""
		if controllersOverride != "" {
			cfg.ControllersDir = controllersOverride
		}
		return cfg, nil
	}
	cfg, err := config.Resolve(root)
	if err != nil {
		return nil, err
	}
	if controllersOverride != "" {
		if !filepath.IsAbs(controllersOverride) {
			if cwd, err := os.Getwd(); err == nil {
				controllersOverride = filepath.Join(cwd, controllersOverride)
			}
		}
		cfg.ControllersDir = controllersOverride
	}
	return cfg, nil
}
