package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/go-tether/tether/cmd/tether/internal/script"
	"github.com/go-tether/tether/pkg/core"
	"github.com/go-tether/tether/pkg/dom"
	"github.com/go-tether/tether/pkg/engine"
)

func init() {
	RegisterCommand(&Command{
		Name:  "inspect",
		Short: "Show controllers bound to a document",
		Long: `Load a document, connect its controllers, and print the instance
table: every connected controller with its identifier, element path,
and instance token.

With --serve the command keeps the application alive and serves the
inspection endpoints over HTTP until interrupted:

  /controllers   instance table as JSON
  /document      serialized document tree
  /health        liveness probe

Flags:
  --controllers DIR   Controller script directory (default: from tether.yaml)
  --json              Print the instance table as JSON
  --serve ADDR        Serve inspection endpoints (e.g. --serve 127.0.0.1:8077)
  --debug             Log connects, disconnects, and actions to stderr`,
		Usage: "tether inspect <file.html> [--json] [--serve ADDR]",
		Run:   runInspect,
	})
}

type inspectOptions struct {
	controllers string
	serve       string
	jsonOut     bool
	debug       bool
}

func parseInspectArgs(args []string) ([]string, inspectOptions, error) {
	opts := inspectOptions{}
	var files []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--json":
			opts.jsonOut = true
		case arg == "--debug":
			opts.debug = true
		case arg == "--controllers" || arg == "--serve":
			if i+1 >= len(args) {
				return nil, opts, fmt.Errorf("%s requires a value", arg)
			}
			i++
			if arg == "--controllers" {
				opts.controllers = args[i]
			} else {
				opts.serve = args[i]
			}
		case strings.HasPrefix(arg, "--"):
			return nil, opts, fmt.Errorf("unknown flag %s", arg)
		default:
			files = append(files, arg)
		}
	}
	return files, opts, nil
}

func runInspect(args []string) error {
	files, opts, err := parseInspectArgs(args)
	if err != nil {
		return err
	}
	if len(files) != 1 {
		return fmt.Errorf("inspect takes exactly one HTML file\n\nUsage: tether inspect <file.html>")
	}
	file := files[0]

	cfg, err := resolveProject(opts.controllers)
	if err != nil {
		return err
	}
	defs, err := script.LoadDir(cfg.ControllersDir)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	doc, err := dom.ParseString(string(data))
	if err != nil {
		return fmt.Errorf("%s: parse: %w", file, err)
	}

	registry := core.NewRegistry()
	for _, def := range defs {
		if err := registry.Register(def.Identifier, def.Constructor()); err != nil {
			return err
		}
	}

	app := engine.New(doc,
		engine.WithSchema(cfg.Schema),
		engine.WithRegistry(registry),
		engine.WithDebug(opts.debug || cfg.Debug),
	)
	if err := app.Start(); err != nil {
		return err
	}
	defer app.Stop()

	instances := app.Instances()
	if opts.jsonOut {
		out, err := json.MarshalIndent(instances, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	} else {
		printInstanceTable(file, instances)
	}

	addr := opts.serve
	if addr == "" {
		addr = cfg.InspectAddr
	}
	if addr == "" {
		return nil
	}
	port, err := app.ServeInspect(addr)
	if err != nil {
		return err
	}
	defer app.StopInspect()
	fmt.Fprintf(os.Stderr, "inspect server on http://127.0.0.1:%d (Ctrl-C to stop)\n", port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	fmt.Fprintln(os.Stderr, "stopped")
	return nil
}

func printInstanceTable(file string, instances []engine.InstanceInfo) {
	if len(instances) == 0 {
		fmt.Printf("%s: no controllers connected\n", file)
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "IDENTIFIER\tELEMENT\tCONTROLLER\tTOKEN")
	for _, inst := range instances {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", inst.Identifier, inst.Element, inst.Controller, inst.Token)
	}
	w.Flush()
}
