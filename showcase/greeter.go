package main

import (
	"github.com/go-tether/tether/pkg/tether"
)

// GreeterController greets whoever is named in the input field.
type GreeterController struct {
	tether.ControllerBase
}

func (g *GreeterController) Connect() {
	if out, ok := g.Target("output"); ok {
		out.SetText("Ready.")
	}
}

// Greet reads the name target's value and writes the greeting to the
// output target.
func (g *GreeterController) Greet() {
	name := "World"
	if input, ok := g.Target("name"); ok {
		if v := input.Attr("value"); v != "" {
			name = v
		}
	}
	if out, ok := g.Target("output"); ok {
		out.SetText("Hello, " + name + "!")
	}
}

func greeterDemo() Demo {
	return Demo{
		Slug:     "greeter",
		Title:    "Greeter",
		Subtitle: "Targets and a click action",
		Category: CategoryBasics,
		Markup: `<div data-controller="greeter">
  <input id="name" data-greeter-target="name" value="Tether">
  <button id="greet" data-action="click->greeter#greet">Greet</button>
  <span id="output" data-greeter-target="output"></span>
</div>`,
		Controllers: map[string]tether.Constructor{
			"greeter": func() tether.Controller { return &GreeterController{} },
		},
		Script: func(s *session) error {
			s.say("on connect: %s", s.textOf("output"))
			if err := s.click("greet"); err != nil {
				return err
			}
			s.say("after click: %s", s.textOf("output"))
			if err := s.setAttr("name", "value", "Gopher"); err != nil {
				return err
			}
			if err := s.click("greet"); err != nil {
				return err
			}
			s.say("after rename: %s", s.textOf("output"))
			return nil
		},
	}
}
