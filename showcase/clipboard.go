package main

import (
	"strings"

	"github.com/go-tether/tether/pkg/tether"
)

// ClipboardController copies the source target's text into a value
// attribute, standing in for a real clipboard, and announces the copy
// with a namespaced event other controllers can bind to.
type ClipboardController struct {
	tether.ControllerBase
}

func (c *ClipboardController) Copy() {
	src, ok := c.Target("source")
	if !ok {
		return
	}
	text := strings.TrimSpace(src.Text())
	c.Values().Set("copied", text)
	if class, ok := c.Classes().Class("success"); ok {
		if btn, ok := c.Target("button"); ok {
			btn.AddToken("class", class)
		}
	}
	c.Dispatch("copied", tether.WithDetail(text))
}

// NotifierController shows a status line for copy events bubbling up
// from nested controllers.
type NotifierController struct {
	tether.ControllerBase
}

func (n *NotifierController) Show(ev *tether.Event) {
	text, _ := ev.Detail.(string)
	if out, ok := n.Target("status"); ok {
		out.SetText("copied: " + text)
	}
}

func clipboardDemo() Demo {
	return Demo{
		Slug:     "clipboard",
		Title:    "Clipboard",
		Subtitle: "Custom events between controllers",
		Category: CategoryDynamic,
		Markup: `<div data-controller="notifier" data-action="clipboard:copied->notifier#show">
  <div id="cb" data-controller="clipboard" data-clipboard-success-class="copied">
    <pre id="source" data-clipboard-target="source">tether run index.html</pre>
    <button id="copy" data-action="click->clipboard#copy" data-clipboard-target="button">Copy</button>
  </div>
  <p id="status" data-notifier-target="status"></p>
</div>`,
		Controllers: map[string]tether.Constructor{
			"clipboard": func() tether.Controller { return &ClipboardController{} },
			"notifier":  func() tether.Controller { return &NotifierController{} },
		},
		Script: func(s *session) error {
			if err := s.click("copy"); err != nil {
				return err
			}
			s.say("status: %s", s.textOf("status"))
			s.say("copied value: %q", s.attrOf("cb", "data-clipboard-copied-value"))
			s.say("button class: %q", s.attrOf("copy", "class"))
			return nil
		},
	}
}
