// Package schema defines the data-attribute conventions that connect markup
// to controllers.
//
// The engine never hard-codes attribute names; every lookup goes through a
// Schema value. The default schema uses the data-controller / data-action
// family:
//
//	data-controller="gallery"
//	data-action="click->gallery#next"
//	data-gallery-target="slide"
//	data-gallery-index-value="3"
//	data-gallery-active-class="is-active"
//
// A Schema is a plain value; copy it to clone it. Applications capture their
// schema at start, so changing a Schema after wiring it into a running
// application has no effect.
package schema

import "strings"

// Schema maps engine concepts to attribute names.
type Schema struct {
	// ControllerAttribute names the attribute whose tokens are controller
	// identifiers. Default "data-controller".
	ControllerAttribute string

	// ActionAttribute names the attribute whose tokens are action
	// descriptors. Default "data-action".
	ActionAttribute string

	// Prefix starts every derived per-identifier attribute
	// (targets, values, classes). Default "data-".
	Prefix string
}

// DefaultSchema returns the standard data-attribute conventions.
func DefaultSchema() Schema {
	return Schema{
		ControllerAttribute: "data-controller",
		ActionAttribute:     "data-action",
		Prefix:              "data-",
	}
}

// TargetAttribute returns the attribute marking elements as targets of the
// identifier, e.g. "data-gallery-target".
func (s Schema) TargetAttribute(identifier string) string {
	return s.Prefix + identifier + "-target"
}

// ValueAttribute returns the attribute carrying the named value for the
// identifier, e.g. "data-gallery-index-value".
func (s Schema) ValueAttribute(identifier, name string) string {
	return s.Prefix + identifier + "-" + name + "-value"
}

// ClassAttribute returns the attribute carrying the named class list for the
// identifier, e.g. "data-gallery-active-class".
func (s Schema) ClassAttribute(identifier, name string) string {
	return s.Prefix + identifier + "-" + name + "-class"
}

// ValueName reports whether attr is a value attribute of the identifier and
// returns the value name. Identifiers may contain hyphens, so the match is
// only unambiguous when the identifier is known.
func (s Schema) ValueName(identifier, attr string) (string, bool) {
	return s.scopedName(identifier, attr, "-value")
}

// ClassName reports whether attr is a class attribute of the identifier and
// returns the class name.
func (s Schema) ClassName(identifier, attr string) (string, bool) {
	return s.scopedName(identifier, attr, "-class")
}

func (s Schema) scopedName(identifier, attr, suffix string) (string, bool) {
	head := s.Prefix + identifier + "-"
	if len(attr) <= len(head)+len(suffix) {
		return "", false
	}
	if !strings.HasPrefix(attr, head) || !strings.HasSuffix(attr, suffix) {
		return "", false
	}
	return attr[len(head) : len(attr)-len(suffix)], true
}

// ValidIdentifier reports whether identifier is usable as a controller
// identifier: one or more kebab-case segments of lowercase letters and
// digits, each starting with a letter, optionally joined by the "--"
// namespace separator ("users--list-item").
func ValidIdentifier(identifier string) bool {
	if identifier == "" {
		return false
	}
	for _, part := range strings.Split(identifier, "--") {
		if !validKebab(part) {
			return false
		}
	}
	return true
}

func validKebab(s string) bool {
	if s == "" {
		return false
	}
	for _, seg := range strings.Split(s, "-") {
		if seg == "" {
			return false
		}
		if seg[0] < 'a' || seg[0] > 'z' {
			return false
		}
		for i := 1; i < len(seg); i++ {
			c := seg[i]
			if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
				return false
			}
		}
	}
	return true
}

// CamelToKebab converts a camelCase name to its kebab-case attribute form:
// "indexValue" becomes "index-value".
func CamelToKebab(name string) string {
	var sb strings.Builder
	sb.Grow(len(name) + 2)
	for _, r := range name {
		if r >= 'A' && r <= 'Z' {
			sb.WriteByte('-')
			sb.WriteByte(byte(r - 'A' + 'a'))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// KebabToCamel converts a kebab-case attribute form to camelCase:
// "index-value" becomes "indexValue". Empty segments are dropped.
func KebabToCamel(name string) string {
	segs := strings.Split(name, "-")
	var sb strings.Builder
	sb.Grow(len(name))
	first := true
	for _, seg := range segs {
		if seg == "" {
			continue
		}
		if first || seg[0] < 'a' || seg[0] > 'z' {
			sb.WriteString(seg)
			first = false
			continue
		}
		sb.WriteByte(seg[0] - 'a' + 'A')
		sb.WriteString(seg[1:])
	}
	return sb.String()
}
