package testing

import (
	"fmt"
	"sync"

	"github.com/go-tether/tether/pkg/core"
	"github.com/go-tether/tether/pkg/dom"
)

// RecorderLog collects lifecycle entries from Recorder controllers.
// One log is shared by every instance its constructor produces, so a
// test sees callbacks across all matched elements in order.
type RecorderLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *RecorderLog) add(entry string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

// Entries returns a copy of the recorded entries in order.
func (l *RecorderLog) Entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

// Reset discards recorded entries.
func (l *RecorderLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// Len returns the number of recorded entries.
func (l *RecorderLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Recorder is a stock controller that records every callback it
// receives. Register it under any identifier and assert on the log:
//
//	ctor, log := tethertest.NewRecorder()
//	tester.Register("item", ctor)
//	tester.Start()
//	// log.Entries() => ["initialize:item@#row-1", "connect:item@#row-1", ...]
//
// Entries use the form "event:identifier@#id" where id is the bound
// element's id attribute. Target entries use "target+:name@#id" and
// "target-:name@#id", value entries "value:name old->new". The action
// methods Record and RecordEvent may be referenced from action
// attributes ("click->item#record").
type Recorder struct {
	core.ControllerBase
	log *RecorderLog
}

// NewRecorder returns a constructor producing Recorder instances that
// share the returned log.
func NewRecorder() (core.Constructor, *RecorderLog) {
	log := &RecorderLog{}
	ctor := func() core.Controller { return &Recorder{log: log} }
	return ctor, log
}

func (r *Recorder) entry(event string) string {
	return fmt.Sprintf("%s:%s@#%s", event, r.Identifier(), r.Element().ID())
}

func (r *Recorder) Initialize() { r.log.add(r.entry("initialize")) }

func (r *Recorder) Connect() { r.log.add(r.entry("connect")) }

func (r *Recorder) Disconnect() { r.log.add(r.entry("disconnect")) }

func (r *Recorder) TargetConnected(name string, el dom.Element) {
	r.log.add(fmt.Sprintf("target+:%s@#%s", name, el.ID()))
}

func (r *Recorder) TargetDisconnected(name string, el dom.Element) {
	r.log.add(fmt.Sprintf("target-:%s@#%s", name, el.ID()))
}

func (r *Recorder) ValueChanged(name, old, now string) {
	r.log.add(fmt.Sprintf("value:%s %s->%s", name, old, now))
}

// Record is an action method that logs "action:identifier@#id".
func (r *Recorder) Record() { r.log.add(r.entry("action")) }

// RecordEvent is an action method that logs the event type as
// "event:type@#id" with the id of the event target.
func (r *Recorder) RecordEvent(ev *dom.Event) {
	r.log.add(fmt.Sprintf("event:%s@#%s", ev.Type, ev.Target.ID()))
}
