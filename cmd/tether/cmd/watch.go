package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/go-tether/tether/cmd/tether/internal/scenario"
	"github.com/go-tether/tether/cmd/tether/internal/script"
)

func init() {
	RegisterCommand(&Command{
		Name:  "watch",
		Short: "Re-run on every document or script change",
		Long: `Run controllers against a document like "tether run", then keep
watching the document and the controller script directory. Any change
re-loads the scripts, re-runs the document, and prints the refreshed
output. Stop with Ctrl-C.

Flags:
  --controllers DIR   Controller script directory (default: from tether.yaml)
  --scenario FILE     Apply scenario steps on every run
  --debug             Log connects, disconnects, and actions to stderr`,
		Usage: "tether watch <file.html> [--controllers DIR] [--scenario FILE] [--debug]",
		Run:   runWatch,
	})
}

// debounceDelay batches rapid editor saves into one re-run.
const debounceDelay = 100 * time.Millisecond

func runWatch(args []string) error {
	files, opts, err := parseRunArgs(args)
	if err != nil {
		return err
	}
	if len(files) != 1 {
		return fmt.Errorf("watch takes exactly one HTML file\n\nUsage: tether watch <file.html>")
	}
	file, err := filepath.Abs(files[0])
	if err != nil {
		return err
	}

	cfg, err := resolveProject(opts.controllers)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch directories, not files: editors replace files by rename,
	// which drops a direct file watch.
	if err := watcher.Add(filepath.Dir(file)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(file), err)
	}
	if cfg.ControllersDir != "" {
		if _, err := os.Stat(cfg.ControllersDir); err == nil {
			if err := watcher.Add(cfg.ControllersDir); err != nil {
				return fmt.Errorf("watch %s: %w", cfg.ControllersDir, err)
			}
		}
	}

	rerun := func() {
		defs, err := script.LoadDir(cfg.ControllersDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		var sc *scenario.Scenario
		if opts.scenario != "" {
			sc, err = scenario.Load(opts.scenario)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return
			}
		}
		html, err := runDocument(file, cfg, defs, sc, opts.debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", file, err)
			return
		}
		fmt.Printf("==> %s (%s)\n", file, time.Now().Format("15:04:05"))
		fmt.Print(html)
		if !strings.HasSuffix(html, "\n") {
			fmt.Println()
		}
	}

	rerun()
	fmt.Fprintf(os.Stderr, "watching %s (Ctrl-C to stop)\n", filepath.Base(file))

	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr, "stopped")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watchRelevant(event, file, cfg.ControllersDir) {
				continue
			}
			timer.Reset(debounceDelay)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		case <-timer.C:
			rerun()
		}
	}
}

// watchRelevant reports whether a filesystem event should trigger a
// re-run: the watched document itself or a .go script in the
// controllers directory.
func watchRelevant(event fsnotify.Event, file, controllersDir string) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	if name == file {
		return true
	}
	if controllersDir != "" && filepath.Dir(name) == controllersDir && filepath.Ext(name) == ".go" {
		return true
	}
	return false
}
