// Package sse streams record index changes to browsers as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Record event types. They match the kinds reported by the index and the
// record service.
const (
	TypeRecordUpserted = "record.upserted"
	TypeRecordDeleted  = "record.deleted"
	TypeLinksSynced    = "links.synced"
	TypeGraphUpdated   = "graph.updated"
)

func isRecordType(t string) bool {
	switch t {
	case TypeRecordUpserted, TypeRecordDeleted, TypeLinksSynced:
		return true
	}
	return false
}

// RecordRef identifies the record an event is about.
type RecordRef struct {
	Source   string `json:"source"`
	SourceID string `json:"sourceId"`
}

// subscriber is one connected stream. A nil sources set receives every
// event; otherwise record events are filtered by their source.
type subscriber struct {
	ch      chan []byte
	sources map[string]struct{}
}

func (s subscriber) wants(ev Event) bool {
	if s.sources == nil {
		return true
	}
	ref, ok := ev.Data.(RecordRef)
	if !ok {
		return true
	}
	_, ok = s.sources[ref.Source]
	return ok
}

// Option configures a Broker.
type Option func(*Broker)

// WithKeepAlive sets how often idle streams receive a comment line.
// Zero disables keep-alives.
func WithKeepAlive(d time.Duration) Option {
	return func(b *Broker) { b.keepAlive = d }
}

// Broker fans record events out to SSE subscribers.
//
// A single loop goroutine owns the subscriber set and the graph throttle
// timestamp; every public method talks to it over channels.
type Broker struct {
	graphMin  time.Duration
	keepAlive time.Duration

	joinCh   chan subscriber
	leaveCh  chan chan []byte
	eventCh  chan Event
	countCh  chan chan int
	stopCh   chan struct{}
	stopped  chan struct{}
	isClosed atomic.Bool
}

// NewBroker creates a broker that emits graph.updated at most once per
// graphThrottle.
func NewBroker(graphThrottle time.Duration, opts ...Option) *Broker {
	if graphThrottle <= 0 {
		graphThrottle = 2 * time.Second
	}

	b := &Broker{
		graphMin:  graphThrottle,
		keepAlive: 25 * time.Second,
		joinCh:    make(chan subscriber),
		leaveCh:   make(chan chan []byte),
		eventCh:   make(chan Event, 256),
		countCh:   make(chan chan int),
		stopCh:    make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}

	go b.loop()
	return b
}

func (b *Broker) loop() {
	defer close(b.stopped)

	subs := make(map[chan []byte]subscriber)
	var lastGraph time.Time

	send := func(ev Event) {
		payload, err := json.Marshal(ev.Data)
		if err != nil {
			return
		}
		frame := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", ev.Type, payload))
		for ch, s := range subs {
			if !s.wants(ev) {
				continue
			}
			select {
			case ch <- frame:
			default:
				// Slow reader; drop rather than stall every stream.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range subs {
				close(ch)
			}
			return

		case s := <-b.joinCh:
			subs[s.ch] = s

		case ch := <-b.leaveCh:
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}

		case ev := <-b.eventCh:
			send(ev)
			if !isRecordType(ev.Type) {
				continue
			}
			// Titles and edges both feed the graph view.
			if now := time.Now(); now.Sub(lastGraph) >= b.graphMin {
				lastGraph = now
				send(Event{Type: TypeGraphUpdated, Data: map[string]string{}})
			}

		case resp := <-b.countCh:
			resp <- len(subs)
		}
	}
}

// Close stops the loop and closes every subscriber channel. It is safe to
// call more than once.
func (b *Broker) Close() {
	if b.isClosed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a stream. With no sources it receives every event;
// otherwise only record events whose source is listed, plus graph.updated.
func (b *Broker) Subscribe(sources ...string) chan []byte {
	s := subscriber{ch: make(chan []byte, 64)}
	if len(sources) > 0 {
		s.sources = make(map[string]struct{}, len(sources))
		for _, src := range sources {
			s.sources[src] = struct{}{}
		}
	}
	if b.isClosed.Load() {
		close(s.ch)
		return s.ch
	}

	select {
	case b.joinCh <- s:
	case <-b.stopped:
		close(s.ch)
	}
	return s.ch
}

// Unsubscribe removes a stream and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.isClosed.Load() {
		return
	}
	select {
	case b.leaveCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected streams.
func (b *Broker) ClientCount() int {
	if b.isClosed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all matching streams. Record event types also
// count toward graph.updated.
func (b *Broker) Publish(ev Event) {
	if b.isClosed.Load() {
		return
	}
	select {
	case b.eventCh <- ev:
	case <-b.stopped:
	}
}

// PublishRecordEvent matches index.EventCallback. Unknown kinds are dropped.
func (b *Broker) PublishRecordEvent(kind, source, sourceID string) {
	if !isRecordType(kind) {
		return
	}
	b.Publish(Event{Type: kind, Data: RecordRef{Source: source, SourceID: sourceID}})
}

// ServeHTTP is the SSE endpoint handler (GET /api/events). An optional
// ?source=task,note query narrows the record events sent.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	var sources []string
	for _, s := range strings.Split(r.URL.Query().Get("source"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			sources = append(sources, s)
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe(sources...)
	defer b.Unsubscribe(ch)

	var tick <-chan time.Time
	if b.keepAlive > 0 {
		t := time.NewTicker(b.keepAlive)
		defer t.Stop()
		tick = t.C
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			_, _ = w.Write([]byte(": keep-alive\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
