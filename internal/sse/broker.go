// Package sse streams sync events to HTTP clients as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/starford/autotag/internal/models"
)

// TagsUpdated is broadcast, throttled, after backlink changes so clients can
// refresh tag listings.
const TagsUpdated = "tags.updated"

// DefaultKeepAlive is the interval of comment frames on idle streams.
const DefaultKeepAlive = 25 * time.Second

// clientBuffer is the number of frames a client may lag behind before
// frames are dropped for it.
const clientBuffer = 64

// Event is one named SSE message. Data is sent as JSON.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type envelope struct {
	event Event
	// touchesTags marks backlink changes, which trigger tags.updated.
	touchesTags bool
}

// Broker fans events out to connected clients. The client set, the frame
// sequence and the throttle clock belong to the run loop.
type Broker struct {
	tagsEvery time.Duration
	keepAlive time.Duration

	join   chan chan []byte
	leave  chan chan []byte
	events chan envelope

	done    chan struct{}
	stopped chan struct{}
	closing sync.Once
}

// NewBroker starts a broker that emits tags.updated at most once per
// tagsEvery.
func NewBroker(tagsEvery time.Duration) *Broker {
	if tagsEvery <= 0 {
		tagsEvery = 2 * time.Second
	}
	b := &Broker{
		tagsEvery: tagsEvery,
		keepAlive: DefaultKeepAlive,
		join:      make(chan chan []byte),
		leave:     make(chan chan []byte),
		events:    make(chan envelope, 256),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var seq uint64
	var lastTags time.Time

	send := func(ev Event) {
		data, err := json.Marshal(ev.Data)
		if err != nil {
			return
		}
		seq++
		frame := []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", seq, ev.Type, data))
		for ch := range clients {
			select {
			case ch <- frame:
			default:
			}
		}
	}

	for {
		select {
		case <-b.done:
			for ch := range clients {
				close(ch)
			}
			return
		case ch := <-b.join:
			clients[ch] = struct{}{}
		case ch := <-b.leave:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}
		case env := <-b.events:
			send(env.event)
			if env.touchesTags && time.Since(lastTags) >= b.tagsEvery {
				lastTags = time.Now()
				send(Event{Type: TagsUpdated, Data: struct{}{}})
			}
		}
	}
}

// Close stops the broker and ends every stream. It is safe to call twice.
func (b *Broker) Close() {
	b.closing.Do(func() { close(b.done) })
	<-b.stopped
}

// Subscribe registers a client. The channel yields encoded frames and is
// closed by cancel or Close.
func (b *Broker) Subscribe() (frames <-chan []byte, cancel func()) {
	ch := make(chan []byte, clientBuffer)
	select {
	case b.join <- ch:
	case <-b.stopped:
		close(ch)
		return ch, func() {}
	}
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			select {
			case b.leave <- ch:
			case <-b.stopped:
			}
		})
	}
}

// Publish broadcasts ev as is.
func (b *Broker) Publish(ev Event) {
	b.enqueue(envelope{event: ev})
}

// PublishSyncEvent broadcasts a sync event under its kind. Backlink changes
// also yield a throttled tags.updated. It satisfies autotag.Subscriber.
func (b *Broker) PublishSyncEvent(ev models.Event) {
	touches := ev.Kind != models.EventDocumentProcessed && ev.Kind != models.EventDocumentForgotten
	b.enqueue(envelope{event: Event{Type: string(ev.Kind), Data: ev}, touchesTags: touches})
}

func (b *Broker) enqueue(env envelope) {
	select {
	case <-b.done:
		return
	default:
	}
	select {
	case b.events <- env:
	case <-b.stopped:
	}
}

// ServeHTTP streams events to one client (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	frames, cancel := b.Subscribe()
	defer cancel()

	ticker := time.NewTicker(b.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			_, _ = w.Write([]byte(": keep-alive\n\n"))
			flusher.Flush()
		case frame, ok := <-frames:
			if !ok {
				return
			}
			_, _ = w.Write(frame)
			flusher.Flush()
		}
	}
}
