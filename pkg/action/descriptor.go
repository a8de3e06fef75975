// Package action parses the descriptor tokens that wire events to controller
// methods.
//
// An action token has the form
//
//	event[.keyFilter][@window|@document]->identifier#method[:option...]
//
// as in "click->gallery#next", "keydown.esc@document->modal#close:prevent" or
// the short form "gallery#next", which infers the event from the element's
// tag. Target tokens pair a target name with the identifier owning it.
package action

import (
	"strings"

	"github.com/go-tether/tether/pkg/errors"
	"github.com/go-tether/tether/pkg/schema"
)

// ListenScope says where the engine installs the listener for an action.
type ListenScope int

const (
	// ListenElement binds the listener on the annotated element itself.
	ListenElement ListenScope = iota
	// ListenDocument binds the listener on the document root ("@document").
	ListenDocument
	// ListenWindow binds the listener on the document root as well; a
	// served tree has no separate window object ("@window").
	ListenWindow
)

func (s ListenScope) String() string {
	switch s {
	case ListenDocument:
		return "document"
	case ListenWindow:
		return "window"
	default:
		return "element"
	}
}

// Options are the per-action modifiers accepted after the method name.
type Options struct {
	// Prevent calls PreventDefault before invoking the method.
	Prevent bool
	// Stop calls StopPropagation before invoking the method.
	Stop bool
	// Once unbinds the action after its first invocation.
	Once bool
	// Self invokes the method only when the event target is the annotated
	// element itself.
	Self bool
	// Capture binds the listener for the capture phase.
	Capture bool
}

// ActionDescriptor is one parsed action token.
type ActionDescriptor struct {
	// EventName is the event to listen for.
	EventName string
	// KeyFilter restricts keyboard events to one logical key ("enter",
	// "esc"). Empty means no filter.
	KeyFilter string
	// Listen says which element receives the listener.
	Listen ListenScope
	// Identifier is the controller identifier the method belongs to.
	Identifier string
	// MethodName is the controller method to invoke, as written in markup.
	MethodName string
	// Options are the parsed modifiers.
	Options Options
}

// DefaultEventName returns the event assumed when a token omits the
// "event->" part, based on the element's tag.
func DefaultEventName(tag string) string {
	switch tag {
	case "form":
		return "submit"
	case "input", "textarea":
		return "input"
	case "select":
		return "change"
	case "details":
		return "toggle"
	default:
		return "click"
	}
}

// ParseActionToken parses a single action token. tag is the annotated
// element's tag name, used when the token omits the event. The returned error
// is a *errors.DescriptorError.
func ParseActionToken(token, tag string) (ActionDescriptor, error) {
	var d ActionDescriptor

	rest := token
	if idx := strings.Index(token, "->"); idx >= 0 {
		eventSpec := token[:idx]
		rest = token[idx+2:]
		if err := d.parseEventSpec(eventSpec, token); err != nil {
			return ActionDescriptor{}, err
		}
	} else {
		d.EventName = DefaultEventName(tag)
	}

	hash := strings.Index(rest, "#")
	if hash < 0 {
		return ActionDescriptor{}, parseErr(token, "missing '#' between identifier and method")
	}
	d.Identifier = rest[:hash]
	methodSpec := rest[hash+1:]

	if !schema.ValidIdentifier(d.Identifier) {
		return ActionDescriptor{}, parseErr(token, "invalid controller identifier "+quote(d.Identifier))
	}

	parts := strings.Split(methodSpec, ":")
	d.MethodName = parts[0]
	if d.MethodName == "" {
		return ActionDescriptor{}, parseErr(token, "missing method name")
	}
	for _, opt := range parts[1:] {
		switch opt {
		case "prevent":
			d.Options.Prevent = true
		case "stop":
			d.Options.Stop = true
		case "once":
			d.Options.Once = true
		case "self":
			d.Options.Self = true
		case "capture":
			d.Options.Capture = true
		case "":
			return ActionDescriptor{}, parseErr(token, "empty option")
		default:
			return ActionDescriptor{}, parseErr(token, "unknown option "+quote(opt))
		}
	}
	return d, nil
}

// parseEventSpec fills EventName, KeyFilter and Listen from the part before
// "->". The key filter is the segment after the last dot; the listen scope is
// the suffix after '@'.
func (d *ActionDescriptor) parseEventSpec(spec, token string) error {
	if at := strings.LastIndex(spec, "@"); at >= 0 {
		switch spec[at+1:] {
		case "window":
			d.Listen = ListenWindow
		case "document":
			d.Listen = ListenDocument
		default:
			return parseErr(token, "unknown listen scope "+quote(spec[at+1:]))
		}
		spec = spec[:at]
	}
	if dot := strings.LastIndex(spec, "."); dot >= 0 {
		d.KeyFilter = spec[dot+1:]
		spec = spec[:dot]
		if d.KeyFilter == "" {
			return parseErr(token, "empty key filter")
		}
	}
	if spec == "" {
		return parseErr(token, "empty event name")
	}
	d.EventName = spec
	return nil
}

// ParseActionAttribute parses a whitespace separated action attribute value.
// Good tokens are returned in order; each malformed token contributes an
// error and is skipped.
func ParseActionAttribute(value, tag string) ([]ActionDescriptor, []error) {
	var (
		descriptors []ActionDescriptor
		errs        []error
	)
	for _, token := range strings.Fields(value) {
		d, err := ParseActionToken(token, tag)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		descriptors = append(descriptors, d)
	}
	return descriptors, errs
}

// String renders the descriptor back into token form. Parsing the result
// yields an equal descriptor.
func (d ActionDescriptor) String() string {
	var sb strings.Builder
	sb.WriteString(d.EventName)
	if d.KeyFilter != "" {
		sb.WriteByte('.')
		sb.WriteString(d.KeyFilter)
	}
	switch d.Listen {
	case ListenWindow:
		sb.WriteString("@window")
	case ListenDocument:
		sb.WriteString("@document")
	}
	sb.WriteString("->")
	sb.WriteString(d.Identifier)
	sb.WriteByte('#')
	sb.WriteString(d.MethodName)
	if d.Options.Prevent {
		sb.WriteString(":prevent")
	}
	if d.Options.Stop {
		sb.WriteString(":stop")
	}
	if d.Options.Once {
		sb.WriteString(":once")
	}
	if d.Options.Self {
		sb.WriteString(":self")
	}
	if d.Options.Capture {
		sb.WriteString(":capture")
	}
	return sb.String()
}

// parseErr leaves Attribute empty; callers that know the source attribute
// fill it in before reporting.
func parseErr(token, reason string) error {
	return &errors.DescriptorError{Token: token, Reason: reason}
}

func quote(s string) string {
	return `"` + s + `"`
}
