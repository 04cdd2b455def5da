// Package event is an in-process publish/subscribe bus for torrent
// lifecycle events.
package event

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pokerjest/qbittorrent-go/pkg/torrentclient"
)

type EventType string

const (
	EventTorrentAdded        EventType = "torrent_added"
	EventTorrentStateChanged EventType = "torrent_state_changed"
	EventTorrentRemoved      EventType = "torrent_removed"
	EventTorrentCompleted    EventType = "torrent_completed"
)

// Types lists every event the monitor publishes.
var Types = []EventType{
	EventTorrentAdded,
	EventTorrentStateChanged,
	EventTorrentRemoved,
	EventTorrentCompleted,
}

type Event struct {
	ID      string      `json:"id"`
	Type    EventType   `json:"type"`
	Time    time.Time   `json:"time"`
	Payload interface{} `json:"payload"`
}

// TorrentChange is the payload of every torrent event. Previous is empty
// for torrent_added.
type TorrentChange struct {
	Hash     string                           `json:"hash"`
	Name     string                           `json:"name"`
	Previous torrentclient.State              `json:"previous,omitempty"`
	Current  torrentclient.State              `json:"current,omitempty"`
	Torrent  *torrentclient.NormalizedTorrent `json:"torrent,omitempty"`
}

type Handler func(event Event)

type Bus interface {
	Subscribe(topic EventType, handler Handler) string // returns the subscription id
	Unsubscribe(topic EventType, subID string)
	Publish(topic EventType, payload interface{})
}

type handlerWrapper struct {
	ID      string
	Handler Handler
}

// InMemoryBus runs every handler on its own goroutine, so Publish never
// blocks on a subscriber.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[EventType][]handlerWrapper
	now      func() time.Time
}

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[EventType][]handlerWrapper),
		now:      time.Now,
	}
}

func (b *InMemoryBus) Subscribe(topic EventType, handler Handler) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.New().String()
	b.handlers[topic] = append(b.handlers[topic], handlerWrapper{ID: id, Handler: handler})
	return id
}

func (b *InMemoryBus) Unsubscribe(topic EventType, subID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	wrappers := b.handlers[topic]
	for i, w := range wrappers {
		if w.ID == subID {
			// Copy so a concurrent Publish keeps its snapshot intact.
			kept := make([]handlerWrapper, 0, len(wrappers)-1)
			kept = append(kept, wrappers[:i]...)
			b.handlers[topic] = append(kept, wrappers[i+1:]...)
			break
		}
	}
}

func (b *InMemoryBus) Publish(topic EventType, payload interface{}) {
	b.mu.RLock()
	wrappers := b.handlers[topic]
	b.mu.RUnlock()

	evt := Event{
		ID:      uuid.New().String(),
		Type:    topic,
		Time:    b.now(),
		Payload: payload,
	}
	for _, w := range wrappers {
		go w.Handler(evt)
	}
}

// SubscribeAll subscribes handler to every type in Types and returns a
// function that removes all of those subscriptions.
func SubscribeAll(b Bus, handler Handler) (unsubscribe func()) {
	ids := make(map[EventType]string, len(Types))
	for _, t := range Types {
		ids[t] = b.Subscribe(t, handler)
	}
	return func() {
		for t, id := range ids {
			b.Unsubscribe(t, id)
		}
	}
}
