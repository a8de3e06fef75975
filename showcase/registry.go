package main

import (
	"github.com/go-tether/tether/pkg/tether"
)

// Demo represents one showcase page: a markup fragment, the controllers
// it declares, and a script of interactions to replay against it.
type Demo struct {
	Slug        string
	Title       string
	Subtitle    string
	Category    string
	Markup      string
	Controllers map[string]tether.Constructor
	Script      func(s *session) error
}

// Category constants for demo organization.
const (
	CategoryBasics  = "basics"
	CategoryDynamic = "dynamic"
)

// demos is the registry of all showcase demo pages.
// Add new demos here to automatically update listing and selection.
var demos = []Demo{
	// Basics: targets, actions, values, classes
	greeterDemo(),
	counterDemo(),
	slideshowDemo(),

	// Dynamic documents and cross-controller events
	clipboardDemo(),
	filterDemo(),
}

// demoBySlug returns the registered demo with the given slug.
func demoBySlug(slug string) (Demo, bool) {
	for _, demo := range demos {
		if demo.Slug == slug {
			return demo, true
		}
	}
	return Demo{}, false
}

// demosForCategory returns the demos in a category, in registry order.
func demosForCategory(category string) []Demo {
	var out []Demo
	for _, demo := range demos {
		if demo.Category == category {
			out = append(out, demo)
		}
	}
	return out
}
