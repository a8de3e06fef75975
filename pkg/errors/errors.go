// Package errors provides structured error handling for the Tether engine.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrUnboundController reports use of a ControllerBase accessor that needs
// an element before the engine bound the scope.
var ErrUnboundController = stderrors.New("controller is not bound to an element")

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindParse indicates a document, descriptor, or scenario parse failure.
	KindParse
	// KindRegister indicates a controller registration error.
	KindRegister
	// KindConnect indicates a controller lifecycle error.
	KindConnect
	// KindAction indicates an action binding or invocation error.
	KindAction
	// KindValue indicates a typed value read/write error.
	KindValue
	// KindDispatch indicates an event dispatch or flush error.
	KindDispatch
	// KindScript indicates an interpreted controller script error.
	KindScript
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindRegister:
		return "register"
	case KindConnect:
		return "connect"
	case KindAction:
		return "action"
	case KindValue:
		return "value"
	case KindDispatch:
		return "dispatch"
	case KindScript:
		return "script"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// TetherError represents a structured error in the Tether engine.
type TetherError struct {
	// Op is the operation that failed (e.g., "engine.Register").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Element is the path of the document element involved, if applicable.
	Element string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *TetherError) Error() string {
	if e.Element != "" {
		return fmt.Sprintf("%s [%s] element=%s: %v", e.Op, e.Kind, e.Element, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *TetherError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "engine.Flush").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// DescriptorError represents a failure to parse an attribute descriptor.
type DescriptorError struct {
	// Attribute is the attribute the token came from (e.g., "data-action").
	Attribute string
	// Token is the descriptor token that failed to parse.
	Token string
	// Reason describes what is wrong with the token.
	Reason string
}

func (e *DescriptorError) Error() string {
	attr := e.Attribute
	if attr == "" {
		attr = "descriptor"
	}
	return fmt.Sprintf("invalid %s token %q: %s", attr, e.Token, e.Reason)
}

// CallbackError represents a failure inside a user controller callback.
// Phase names the lifecycle or action hook that failed ("connect",
// "disconnect", "action", "targetConnected", ...).
type CallbackError struct {
	// Controller is the type name of the controller that failed.
	Controller string
	// Identifier is the controller identifier bound to the element.
	Identifier string
	// Phase is the callback that failed.
	Phase string
	// Method is the action method name, for Phase "action".
	Method string
	// Element is the path of the bound element.
	Element string
	// Recovered is the panic value (nil for regular errors).
	Recovered any
	// Err is the underlying error (nil for panics).
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *CallbackError) Error() string {
	hook := e.Phase
	if e.Method != "" {
		hook = fmt.Sprintf("%s %q", e.Phase, e.Method)
	}
	if e.Recovered != nil {
		return fmt.Sprintf("panic in %s (%s) during %s: %v", e.Controller, e.Identifier, hook, e.Recovered)
	}
	if e.Err != nil {
		return fmt.Sprintf("error in %s (%s) during %s: %v", e.Controller, e.Identifier, hook, e.Err)
	}
	return fmt.Sprintf("unknown error in %s (%s) during %s", e.Controller, e.Identifier, hook)
}

func (e *CallbackError) Unwrap() error {
	return e.Err
}

// ErrorHandler receives errors reported by the Tether engine.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *TetherError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleCallbackError is called when a user controller callback fails.
	HandleCallbackError(err *CallbackError)
}
