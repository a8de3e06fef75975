package main

import (
	"strings"

	"github.com/go-tether/tether/pkg/tether"
)

// SlideshowController shows one slide at a time, tracked by an index
// value and clamped to the slide range.
type SlideshowController struct {
	tether.ControllerBase
}

func (s *SlideshowController) Connect() { s.showCurrent() }

func (s *SlideshowController) Next() { s.move(1) }

func (s *SlideshowController) Previous() { s.move(-1) }

func (s *SlideshowController) move(delta int) {
	slides := s.Targets("slide")
	if len(slides) == 0 {
		return
	}
	index := s.Values().GetInt("index", 0) + delta
	if index < 0 {
		index = 0
	}
	if index > len(slides)-1 {
		index = len(slides) - 1
	}
	s.Values().SetInt("index", index)
}

func (s *SlideshowController) ValueChanged(name, _, _ string) {
	if name == "index" {
		s.showCurrent()
	}
}

// showCurrent marks the slide at the current index with the configured
// class and hides the rest.
func (s *SlideshowController) showCurrent() {
	class, ok := s.Classes().Class("current")
	if !ok {
		class = "current"
	}
	index := s.Values().GetInt("index", 0)
	for i, slide := range s.Targets("slide") {
		if i == index {
			slide.AddToken("class", class)
			slide.RemoveAttr("hidden")
		} else {
			slide.RemoveToken("class", class)
			slide.SetAttr("hidden", "")
		}
	}
}

func slideshowDemo() Demo {
	return Demo{
		Slug:     "slideshow",
		Title:    "Slideshow",
		Subtitle: "Index value, classes, and clamping",
		Category: CategoryBasics,
		Markup: `<div data-controller="slideshow" data-slideshow-index-value="0" data-slideshow-current-class="is-current">
  <button id="prev" data-action="slideshow#previous">Prev</button>
  <button id="next" data-action="slideshow#next">Next</button>
  <figure data-slideshow-target="slide">One</figure>
  <figure data-slideshow-target="slide">Two</figure>
  <figure data-slideshow-target="slide">Three</figure>
</div>`,
		Controllers: map[string]tether.Constructor{
			"slideshow": func() tether.Controller { return &SlideshowController{} },
		},
		Script: func(s *session) error {
			showing := func() string {
				texts := s.visibleTexts(func(el tether.Element) bool {
					return el.HasToken("data-slideshow-target", "slide")
				})
				return strings.Join(texts, ", ")
			}
			s.say("on connect: %s", showing())
			for range 2 {
				if err := s.click("next"); err != nil {
					return err
				}
			}
			s.say("after next, next: %s", showing())
			if err := s.click("next"); err != nil {
				return err
			}
			s.say("next at the end stays: %s", showing())
			if err := s.click("prev"); err != nil {
				return err
			}
			s.say("after prev: %s", showing())
			return nil
		},
	}
}
