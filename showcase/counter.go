package main

import (
	"strconv"

	"github.com/go-tether/tether/pkg/tether"
)

// CounterController keeps a count value in sync with its display
// target. The count lives in the document, so anything that rewrites
// the attribute drives the same render path as the buttons.
type CounterController struct {
	tether.ControllerBase
}

func (c *CounterController) Connect() { c.render() }

func (c *CounterController) Increment() { c.add(1) }

func (c *CounterController) Decrement() { c.add(-1) }

// Reset zeroes the count. Also bound to the r key at document level.
func (c *CounterController) Reset() {
	c.Values().SetInt("count", 0)
}

func (c *CounterController) add(delta int) {
	c.Values().SetInt("count", c.Values().GetInt("count", 0)+delta)
}

func (c *CounterController) ValueChanged(name, _, _ string) {
	if name == "count" {
		c.render()
	}
}

func (c *CounterController) render() {
	if out, ok := c.Target("display"); ok {
		out.SetText(strconv.Itoa(c.Values().GetInt("count", 0)))
	}
}

func counterDemo() Demo {
	return Demo{
		Slug:     "counter",
		Title:    "Counter",
		Subtitle: "Typed values with change callbacks",
		Category: CategoryBasics,
		Markup: `<div data-controller="counter" data-counter-count-value="0">
  <button id="inc" data-action="click->counter#increment">+</button>
  <button id="dec" data-action="click->counter#decrement">-</button>
  <button id="reset" data-action="click->counter#reset keydown.r@document->counter#reset">Reset</button>
  <span id="display" data-counter-target="display"></span>
</div>`,
		Controllers: map[string]tether.Constructor{
			"counter": func() tether.Controller { return &CounterController{} },
		},
		Script: func(s *session) error {
			s.say("on connect: %s", s.textOf("display"))
			for range 3 {
				if err := s.click("inc"); err != nil {
					return err
				}
			}
			if err := s.click("dec"); err != nil {
				return err
			}
			s.say("after 3 up, 1 down: %s", s.textOf("display"))
			s.press("r")
			s.say("after pressing r: %s", s.textOf("display"))
			return nil
		},
	}
}
