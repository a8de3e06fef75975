package core

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-tether/tether/pkg/errors"
)

// Values reads and writes the scope's value attributes
// (data-<identifier>-<name>-value) with type coercion. Writes go through the
// document, so value observers and inspectors see them.
//
// The typed getters return the fallback when the attribute is absent or does
// not parse; parse failures are additionally reported as value errors.
type Values struct {
	scope Scope
}

// Has reports whether the named value attribute is present.
func (v Values) Has(name string) bool {
	return v.scope.Element.HasAttr(v.attr(name))
}

// Get returns the raw attribute value, "" when absent.
func (v Values) Get(name string) string {
	return v.scope.Element.Attr(v.attr(name))
}

// GetString returns the value, or fallback when the attribute is absent.
// An explicitly empty attribute is returned as is.
func (v Values) GetString(name, fallback string) string {
	if !v.Has(name) {
		return fallback
	}
	return v.Get(name)
}

// GetInt returns the value parsed as a base-10 integer.
func (v Values) GetInt(name string, fallback int) int {
	raw, ok := v.raw(name)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		v.reportParse(name, raw, "int")
		return fallback
	}
	return n
}

// GetFloat returns the value parsed as a float64.
func (v Values) GetFloat(name string, fallback float64) float64 {
	raw, ok := v.raw(name)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		v.reportParse(name, raw, "float")
		return fallback
	}
	return f
}

// GetBool returns the value parsed with strconv.ParseBool ("true", "1",
// "false", ...).
func (v Values) GetBool(name string, fallback bool) bool {
	raw, ok := v.raw(name)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		v.reportParse(name, raw, "bool")
		return fallback
	}
	return b
}

// GetDuration returns the value parsed with time.ParseDuration ("250ms",
// "2s", ...).
func (v Values) GetDuration(name string, fallback time.Duration) time.Duration {
	raw, ok := v.raw(name)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		v.reportParse(name, raw, "duration")
		return fallback
	}
	return d
}

// Set writes the raw value attribute.
func (v Values) Set(name, value string) {
	v.scope.Element.SetAttr(v.attr(name), value)
}

// SetInt writes the value formatted as a base-10 integer.
func (v Values) SetInt(name string, value int) {
	v.Set(name, strconv.Itoa(value))
}

// SetFloat writes the value formatted with the shortest round-trip form.
func (v Values) SetFloat(name string, value float64) {
	v.Set(name, strconv.FormatFloat(value, 'g', -1, 64))
}

// SetBool writes "true" or "false".
func (v Values) SetBool(name string, value bool) {
	v.Set(name, strconv.FormatBool(value))
}

// SetDuration writes the duration in time.Duration string form.
func (v Values) SetDuration(name string, value time.Duration) {
	v.Set(name, value.String())
}

// Unset removes the value attribute.
func (v Values) Unset(name string) {
	v.scope.Element.RemoveAttr(v.attr(name))
}

func (v Values) attr(name string) string {
	return v.scope.Schema.ValueAttribute(v.scope.Identifier, name)
}

func (v Values) raw(name string) (string, bool) {
	if v.scope.IsZero() || !v.Has(name) {
		return "", false
	}
	return v.Get(name), true
}

func (v Values) reportParse(name, raw, want string) {
	errors.Report(&errors.TetherError{
		Op:      "core.Values",
		Kind:    errors.KindValue,
		Err:     fmt.Errorf("value %q of %s does not parse as %s", raw, v.attr(name), want),
		Element: v.scope.Element.Path(),
	})
}
