package event

import (
	"fmt"
	"log/slog"
)

// Event is one published battle event. Seq is assigned by the Bus and is
// strictly increasing within a battle.
type Event struct {
	Seq     int
	Round   int
	Kind    Kind
	Payload any
}

func (e Event) String() string {
	return fmt.Sprintf("#%d r%d %s %+v", e.Seq, e.Round, e.Kind, e.Payload)
}

// Sink receives every published event in order.
type Sink interface {
	Publish(ev Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ev Event)

// Publish implements Sink.
func (f SinkFunc) Publish(ev Event) { f(ev) }

// Handler reacts to one kind of event.
type Handler func(ev Event)

// Bus dispatches events synchronously to per-kind handlers and to attached
// sinks. Handlers run in subscription order, all on the publishing goroutine.
//
// Bus is not safe for concurrent use; each battle owns its own Bus.
type Bus struct {
	handlers map[Kind][]Handler
	sinks    []Sink
	seq      int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[Kind][]Handler)}
}

// Subscribe registers h for kind.
func (b *Bus) Subscribe(kind Kind, h Handler) {
	b.handlers[kind] = append(b.handlers[kind], h)
}

// Attach adds a sink that receives every event.
func (b *Bus) Attach(s Sink) {
	if s != nil {
		b.sinks = append(b.sinks, s)
	}
}

// Publish stamps and dispatches an event and returns it.
// A panicking handler is logged and does not stop dispatch.
func (b *Bus) Publish(kind Kind, round int, payload any) Event {
	b.seq++
	ev := Event{Seq: b.seq, Round: round, Kind: kind, Payload: payload}

	for _, s := range b.sinks {
		s.Publish(ev)
	}
	for _, h := range b.handlers[kind] {
		dispatch(h, ev)
	}
	return ev
}

// Reset clears the sequence counter. Subscriptions and sinks are kept.
func (b *Bus) Reset() {
	b.seq = 0
}

// HandlerCount returns the number of handlers subscribed to kind.
func (b *Bus) HandlerCount(kind Kind) int {
	return len(b.handlers[kind])
}

func dispatch(h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event handler panicked",
				"kind", ev.Kind,
				"seq", ev.Seq,
				"panic", r)
		}
	}()
	h(ev)
}

// Recorder is a Sink that keeps every event in memory.
type Recorder struct {
	events []Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Publish implements Sink.
func (r *Recorder) Publish(ev Event) {
	r.events = append(r.events, ev)
}

// Events returns the recorded events. The slice must not be modified.
func (r *Recorder) Events() []Event {
	return r.events
}

// OfKind returns the recorded events of one kind, in order.
func (r *Recorder) OfKind(kind Kind) []Event {
	var out []Event
	for _, ev := range r.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

// Count returns how many events of kind were recorded.
func (r *Recorder) Count(kind Kind) int {
	n := 0
	for _, ev := range r.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

// Reset discards recorded events. Slices returned earlier by Events stay
// valid.
func (r *Recorder) Reset() {
	r.events = nil
}
