package queue

import (
	"context"
	"sync"
)

// Message is a published event as seen by a Recorder.
type Message struct {
	Key   string
	Event any
}

// Recorder keeps published events in memory. It backs tests and local runs
// that want to inspect the event stream.
type Recorder struct {
	mu   sync.Mutex
	msgs []Message
	// Err, when set, is returned by every Publish.
	Err error
}

func (r *Recorder) Publish(_ context.Context, key string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.msgs = append(r.msgs, Message{Key: key, Event: event})
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.msgs...)
}

// Keys returns the routing keys in publish order.
func (r *Recorder) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, len(r.msgs))
	for i, m := range r.msgs {
		keys[i] = m.Key
	}
	return keys
}
