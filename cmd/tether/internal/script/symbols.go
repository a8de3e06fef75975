package script

import (
	"reflect"

	"github.com/go-tether/tether/pkg/dom"
)

// Symbols maps the virtual import paths served to interpreted scripts.
// Keys follow yaegi's "importpath/packagename" convention.
var Symbols = map[string]map[string]reflect.Value{
	"tether/script/script": {
		"Context": reflect.ValueOf((*Context)(nil)),
	},
	"tether/dom/dom": {
		"Document":       reflect.ValueOf((*dom.Document)(nil)),
		"Element":        reflect.ValueOf((*dom.Element)(nil)),
		"Event":          reflect.ValueOf((*dom.Event)(nil)),
		"NewEvent":       reflect.ValueOf(dom.NewEvent),
		"NewCustomEvent": reflect.ValueOf(dom.NewCustomEvent),
	},
}
