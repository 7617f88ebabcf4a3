package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"quicky/internal/domain"
)

// Display durations per notification kind.
const (
	SuccessTTL = 3 * time.Second
	ErrorTTL   = 5 * time.Second
)

// EventType classifies notification lifecycle events.
type EventType string

const (
	EventTypeAdded   EventType = "added"
	EventTypeRemoved EventType = "removed"
)

// Event is a sequenced notification change consumed by UI subscribers.
type Event struct {
	Seq          int64               `json:"seq"`
	Timestamp    time.Time           `json:"timestamp"`
	Type         EventType           `json:"type"`
	Notification domain.Notification `json:"notification"`
}

// Center owns transient user-facing messages. Posting never blocks and
// never fails; each notification is removed by its own one-shot timer.
type Center struct {
	mu        sync.RWMutex
	nextSeq   int64
	maxEvents int
	events    []Event
	active    []domain.Notification
	after     func(time.Duration, func())
	sink      func(Event)
	now       func() time.Time
}

// NewCenter creates a center with real timers and a bounded event buffer.
func NewCenter(maxEvents int) *Center {
	if maxEvents <= 0 {
		maxEvents = 200
	}

	return &Center{
		maxEvents: maxEvents,
		events:    make([]Event, 0, maxEvents),
		after:     func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
		now:       time.Now,
	}
}

// SetSink registers a callback invoked for every published event.
func (c *Center) SetSink(sink func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sink = sink
}

// Success posts a transient success message.
func (c *Center) Success(message string) domain.Notification {
	return c.post(domain.NotificationSuccess, message, SuccessTTL)
}

// Error posts a transient error message.
func (c *Center) Error(message string) domain.Notification {
	return c.post(domain.NotificationError, message, ErrorTTL)
}

// Active returns notifications whose display timer has not fired yet.
func (c *Center) Active() []domain.Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Notification, len(c.active))
	copy(out, c.active)
	return out
}

// Events returns events with sequence strictly greater than seq.
func (c *Center) Events(seq int64) []Event {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.events) == 0 {
		return nil
	}

	out := make([]Event, 0, len(c.events))
	for _, event := range c.events {
		if event.Seq > seq {
			out = append(out, event)
		}
	}
	return out
}

// post appends the notification, publishes one added event, and schedules
// its removal. Stacking is deliberate: every call is independent.
func (c *Center) post(kind domain.NotificationKind, message string, ttl time.Duration) domain.Notification {
	now := c.now()
	notification := domain.Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	c.mu.Lock()
	c.active = append(c.active, notification)
	sink := c.publishLocked(Event{Type: EventTypeAdded, Notification: notification})
	after := c.after
	c.mu.Unlock()

	if sink != nil {
		sink()
	}

	after(ttl, func() { c.remove(notification.ID) })
	return notification
}

// remove drops an expired notification and publishes the removed event.
func (c *Center) remove(id string) {
	c.mu.Lock()
	var removed domain.Notification
	found := false
	for idx, notification := range c.active {
		if notification.ID == id {
			removed = notification
			c.active = append(c.active[:idx], c.active[idx+1:]...)
			found = true
			break
		}
	}
	if !found {
		c.mu.Unlock()
		return
	}
	sink := c.publishLocked(Event{Type: EventTypeRemoved, Notification: removed})
	c.mu.Unlock()

	if sink != nil {
		sink()
	}
}

// publishLocked assigns sequence and timestamp, stores the event, and
// returns a closure delivering it to the sink outside the lock.
func (c *Center) publishLocked(event Event) func() {
	c.nextSeq++
	event.Seq = c.nextSeq
	event.Timestamp = c.now().UTC()

	c.events = append(c.events, event)
	if len(c.events) > c.maxEvents {
		trim := len(c.events) - c.maxEvents
		c.events = append([]Event(nil), c.events[trim:]...)
	}

	if c.sink == nil {
		return nil
	}
	sink := c.sink
	return func() { sink(event) }
}

// NewCenterForTests creates a center with an injectable timer scheduler.
func NewCenterForTests(maxEvents int, after func(time.Duration, func())) *Center {
	center := NewCenter(maxEvents)
	center.after = after
	return center
}
