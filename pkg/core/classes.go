package core

// Classes resolves logical class names to the CSS classes configured on the
// scope element (data-<identifier>-<name>-class). Markup stays in charge of
// presentation; controllers refer to classes by role:
//
//	<div data-controller="clipboard" data-clipboard-success-class="copied flash">
//
//	if class, ok := c.Classes().Class("success"); ok {
//	    c.Element().AddToken("class", class)
//	}
type Classes struct {
	scope Scope
}

// Has reports whether the named class attribute is present on the scope
// element.
func (c Classes) Has(name string) bool {
	return c.scope.Element.HasAttr(c.attr(name))
}

// Class returns the first configured class for the name.
func (c Classes) Class(name string) (string, bool) {
	list := c.List(name)
	if len(list) == 0 {
		return "", false
	}
	return list[0], true
}

// List returns all configured classes for the name in attribute order.
func (c Classes) List(name string) []string {
	return c.scope.Element.Tokens(c.attr(name))
}

func (c Classes) attr(name string) string {
	return c.scope.Schema.ClassAttribute(c.scope.Identifier, name)
}
