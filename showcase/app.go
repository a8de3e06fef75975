// Package main provides the Tether showcase application.
// Each demo binds controllers to a markup fragment and replays a short
// interaction script against it, narrating what the controllers do to
// the document along the way.
package main

import (
	"fmt"
	"io"

	"github.com/go-tether/tether/pkg/tether"
)

// runDemo parses the demo markup, connects its controllers, and runs
// the interaction script.
func runDemo(w io.Writer, demo Demo) error {
	app, err := tether.Parse(demo.Markup)
	if err != nil {
		return fmt.Errorf("%s: parse markup: %w", demo.Slug, err)
	}
	for identifier, ctor := range demo.Controllers {
		if err := app.Register(identifier, ctor); err != nil {
			return fmt.Errorf("%s: register %s: %w", demo.Slug, identifier, err)
		}
	}
	if err := app.Start(); err != nil {
		return fmt.Errorf("%s: start: %w", demo.Slug, err)
	}
	defer app.Stop()

	fmt.Fprintf(w, "=== %s ===\n", demo.Title)

	s := &session{app: app, out: w}
	if demo.Script != nil {
		if err := demo.Script(s); err != nil {
			return fmt.Errorf("%s: %w", demo.Slug, err)
		}
	}
	app.Flush()
	return nil
}
