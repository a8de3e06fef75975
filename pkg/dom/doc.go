// Package dom provides the mutable HTML document substrate for the Tether
// engine.
//
// A Document owns a tree parsed by golang.org/x/net/html and layers three
// things over it: a mutation log, an event listener table, and traversal
// helpers. Element is a lightweight handle onto a node of that tree; two
// Elements are the same element when they wrap the same underlying node.
//
// # Mutations
//
// All mutations flow through Document and Element methods (SetAttr,
// AppendChild, Remove, ...). Each structural or attribute change appends
// MutationRecords that observers consume via TakeMutations. Editing the
// underlying html.Node tree directly bypasses the log; holders of raw nodes
// should not do that while an engine is attached.
//
//	doc := dom.MustParse(`<html><body><div id="cart"></div></body></html>`)
//	cart, _ := doc.GetElementByID("cart")
//	cart.SetAttr("data-controller", "cart")
//	records := doc.TakeMutations()
//
// # Events
//
// Dispatch runs the usual capture, target, and bubble phases over the
// ancestor chain of the target. Listeners are registered per element and
// per event type; registration returns an unbind function:
//
//	unbind := doc.AddListener(button, "click", func(e *dom.Event) {
//	    // ...
//	}, dom.ListenerOptions{})
//	defer unbind()
//
//	doc.Dispatch(button, dom.NewEvent("click"))
//
// An Event is single-use: create a fresh one per Dispatch call.
//
// # Concurrency
//
// Document is not safe for concurrent use. The engine package serializes all
// access; tests and tools that use a Document directly must do the same.
package dom
