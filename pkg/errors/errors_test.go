package errors

import (
	"strings"
	"testing"
	"time"
)

func TestTetherErrorString(t *testing.T) {
	err := &TetherError{
		Op:   "test.operation",
		Kind: KindAction,
		Err:  &DescriptorError{Attribute: "data-action", Token: "bogus", Reason: "missing method"},
	}
	got := err.Error()
	if got == "" {
		t.Error("expected non-empty error string")
	}
}

func TestTetherErrorWithElement(t *testing.T) {
	err := &TetherError{
		Op:      "test.operation",
		Kind:    KindConnect,
		Element: "html > body > div#cart",
		Err:     &DescriptorError{Attribute: "data-controller", Token: "", Reason: "empty token"},
	}
	got := err.Error()
	if got == "" {
		t.Error("expected non-empty error string")
	}
	// Should contain element info
	want := "element=html > body > div#cart"
	if !contains(got, want) {
		t.Errorf("error string %q should contain %q", got, want)
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindParse, "parse"},
		{KindRegister, "register"},
		{KindConnect, "connect"},
		{KindAction, "action"},
		{KindValue, "value"},
		{KindDispatch, "dispatch"},
		{KindScript, "script"},
		{KindPanic, "panic"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{
		Value:     "test panic",
		Timestamp: time.Now(),
	}
	got := err.Error()
	want := "panic: test panic"
	if got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
}

func TestPanicErrorStringWithOp(t *testing.T) {
	err := &PanicError{
		Op:        "engine.Flush",
		Value:     "test panic",
		Timestamp: time.Now(),
	}
	got := err.Error()
	want := "panic in engine.Flush: test panic"
	if got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
}

func TestDescriptorErrorString(t *testing.T) {
	err := &DescriptorError{
		Attribute: "data-action",
		Token:     "click->gallery",
		Reason:    "missing '#method'",
	}
	got := err.Error()
	if !contains(got, "data-action") || !contains(got, "click->gallery") {
		t.Errorf("DescriptorError.Error() = %q, should name attribute and token", got)
	}
}

func TestCallbackErrorString(t *testing.T) {
	err := &CallbackError{
		Controller: "gallery.Controller",
		Identifier: "gallery",
		Phase:      "action",
		Method:     "Next",
		Recovered:  "boom",
	}
	got := err.Error()
	if !contains(got, "gallery") || !contains(got, "Next") || !contains(got, "boom") {
		t.Errorf("CallbackError.Error() = %q, should name controller, method, and panic value", got)
	}
}

func TestReport(t *testing.T) {
	var capturedErr *TetherError
	handler := &testHandler{
		onError: func(err *TetherError) {
			capturedErr = err
		},
	}
	SetHandler(handler)
	defer SetHandler(nil)

	reported := &TetherError{Op: "test.report", Kind: KindDispatch}
	Report(reported)

	if capturedErr != reported {
		t.Fatal("expected handler to receive the reported error")
	}
	if capturedErr.Timestamp.IsZero() {
		t.Error("expected Report to fill in a zero timestamp")
	}
}

func TestReportNilIsNoOp(t *testing.T) {
	called := false
	handler := &testHandler{
		onError: func(err *TetherError) { called = true },
	}
	SetHandler(handler)
	defer SetHandler(nil)

	Report(nil)
	if called {
		t.Error("Report(nil) should not invoke the handler")
	}
}

func TestRecoverReportsPanic(t *testing.T) {
	var captured *PanicError
	handler := &testHandler{
		onPanic: func(err *PanicError) { captured = err },
	}
	SetHandler(handler)
	defer SetHandler(nil)

	func() {
		defer Recover("test.op")
		panic("recovered panic")
	}()

	if captured == nil {
		t.Fatal("expected panic to be reported")
	}
	if captured.Op != "test.op" {
		t.Errorf("expected Op 'test.op', got %q", captured.Op)
	}
	if captured.Value != "recovered panic" {
		t.Errorf("expected panic value 'recovered panic', got %v", captured.Value)
	}
	if captured.StackTrace == "" {
		t.Error("expected a captured stack trace")
	}
}

func TestRecoverWithCallback(t *testing.T) {
	SetHandler(&testHandler{})
	defer SetHandler(nil)

	var got any
	func() {
		defer RecoverWithCallback("test.op", func(r any) { got = r })
		panic("with callback")
	}()
	if got != "with callback" {
		t.Errorf("expected callback to receive panic value, got %v", got)
	}
}

func TestSetHandlerNilRestoresDefault(t *testing.T) {
	SetHandler(&testHandler{})
	SetHandler(nil)
	if _, ok := DefaultHandler.(*LogHandler); !ok {
		t.Errorf("expected default LogHandler after SetHandler(nil), got %T", DefaultHandler)
	}
}

func TestItoa(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{7, "7"},
		{42, "42"},
		{-13, "-13"},
		{100000, "100000"},
	}
	for _, tt := range tests {
		if got := itoa(tt.in); got != tt.want {
			t.Errorf("itoa(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// testHandler captures reported errors for assertions.
type testHandler struct {
	onError    func(*TetherError)
	onPanic    func(*PanicError)
	onCallback func(*CallbackError)
}

func (h *testHandler) HandleError(err *TetherError) {
	if h.onError != nil {
		h.onError(err)
	}
}

func (h *testHandler) HandlePanic(err *PanicError) {
	if h.onPanic != nil {
		h.onPanic(err)
	}
}

func (h *testHandler) HandleCallbackError(err *CallbackError) {
	if h.onCallback != nil {
		h.onCallback(err)
	}
}

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}
