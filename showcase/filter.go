package main

import (
	"fmt"
	"strings"

	"github.com/go-tether/tether/pkg/tether"
)

// FilterController hides list items that do not match the query input
// and keeps a visible count current as items come and go.
type FilterController struct {
	tether.ControllerBase
}

func (f *FilterController) Connect() { f.apply() }

// Filter re-applies the query. Bound to the input's input event.
func (f *FilterController) Filter() { f.apply() }

// TargetConnected re-filters so items added later respect the current
// query.
func (f *FilterController) TargetConnected(name string, _ tether.Element) {
	if name == "item" {
		f.apply()
	}
}

func (f *FilterController) TargetDisconnected(name string, _ tether.Element) {
	if name == "item" {
		f.apply()
	}
}

func (f *FilterController) apply() {
	query := ""
	if input, ok := f.Target("query"); ok {
		query = strings.ToLower(strings.TrimSpace(input.Attr("value")))
	}
	visible := 0
	items := f.Targets("item")
	for _, item := range items {
		if query == "" || strings.Contains(strings.ToLower(item.Text()), query) {
			item.RemoveAttr("hidden")
			visible++
		} else {
			item.SetAttr("hidden", "")
		}
	}
	if count, ok := f.Target("count"); ok {
		count.SetText(fmt.Sprintf("%d of %d", visible, len(items)))
	}
}

func filterDemo() Demo {
	return Demo{
		Slug:     "filter",
		Title:    "Filter",
		Subtitle: "Live filtering and dynamic targets",
		Category: CategoryDynamic,
		Markup: `<div data-controller="filter">
  <input id="query" data-filter-target="query" data-action="filter#filter">
  <span id="count" data-filter-target="count"></span>
  <ul id="fruits">
    <li id="apple" data-filter-target="item">Apple</li>
    <li id="banana" data-filter-target="item">Banana</li>
    <li id="cherry" data-filter-target="item">Cherry</li>
  </ul>
</div>`,
		Controllers: map[string]tether.Constructor{
			"filter": func() tether.Controller { return &FilterController{} },
		},
		Script: func(s *session) error {
			items := func() string {
				texts := s.visibleTexts(func(el tether.Element) bool {
					return el.HasToken("data-filter-target", "item")
				})
				return strings.Join(texts, ", ")
			}
			s.say("on connect: %s (%s)", items(), s.textOf("count"))
			if err := s.typeInto("query", "an"); err != nil {
				return err
			}
			s.say("query %q: %s (%s)", "an", items(), s.textOf("count"))
			if err := s.append("fruits", `<li id="mango" data-filter-target="item">Mango</li>`); err != nil {
				return err
			}
			s.say("mango added: %s (%s)", items(), s.textOf("count"))
			if err := s.remove("banana"); err != nil {
				return err
			}
			s.say("banana removed: %s (%s)", items(), s.textOf("count"))
			return nil
		},
	}
}
