// Package notify tells interested views that item state changed.
package notify

import (
	"context"
	"sync"
	"time"
)

type EventType string

const (
	ItemOccupancyChanged EventType = "item_occupancy_changed"
	QueueChanged         EventType = "queue_changed"
)

type Event struct {
	Type   EventType `json:"type"`
	ItemID int64     `json:"itemId"`
	At     int64     `json:"at"`
}

// Notifier publishes change events after a mutation has committed.
// Delivery is best-effort; a failed publish never undoes the mutation.
type Notifier interface {
	Publish(ctx context.Context, events ...Event) error
}

func Occupancy(itemID int64) Event {
	return Event{Type: ItemOccupancyChanged, ItemID: itemID, At: time.Now().Unix()}
}

func Queue(itemID int64) Event {
	return Event{Type: QueueChanged, ItemID: itemID, At: time.Now().Unix()}
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, ...Event) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, events ...Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Has reports whether an event of the given type was published for the item.
func (r *Recorder) Has(t EventType, itemID int64) bool {
	for _, e := range r.Events() {
		if e.Type == t && e.ItemID == itemID {
			return true
		}
	}
	return false
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
