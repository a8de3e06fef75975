// Package core defines the controller model: the Controller contract and its
// optional extension interfaces, the embeddable ControllerBase, the
// identifier Registry, and the Scope through which a connected controller
// reaches its targets, values and classes.
//
// The package is deliberately engine-free. Constructing a Scope or Registry
// does not start observation; the engine package owns lifecycle and event
// wiring and calls into core when elements match.
package core
