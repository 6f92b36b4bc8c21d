package domain

import (
	"sync"
	"time"
)

type Event interface {
	Type() string
	PublishedAt() time.Time
}

// EventBase implements Event for embedding in concrete events.
type EventBase struct {
	Kind string
	At   time.Time
}

func NewEventBase(kind string, at time.Time) EventBase {
	return EventBase{Kind: kind, At: at}
}

func (e EventBase) Type() string {
	return e.Kind
}

func (e EventBase) PublishedAt() time.Time {
	return e.At
}

// Evented is implemented by aggregates that record events for the message bus.
type Evented interface {
	PopEvents() []Event
}

type NoCopy struct {
	sync.Mutex
}

type Aggregate struct {
	NoCopy
	events []Event
}

func (a *Aggregate) PopEvents() []Event {
	a.Lock()
	defer a.Unlock()
	events := a.events
	a.events = make([]Event, 0)
	return events
}

func (a *Aggregate) PushEvent(e Event) {
	a.Lock()
	defer a.Unlock()
	a.events = append(a.events, e)
}
