// Package eventstest provides an in-memory events.Publisher for tests.
package eventstest

import (
	"context"
	"encoding/json"
	"sync"
)

// Recorder keeps published events in memory. Err, when set, fails every Publish.
type Recorder struct {
	mu     sync.Mutex
	Err    error
	Events []Recorded
}

type Recorded struct {
	Key  string
	Body []byte
}

func (r *Recorder) Publish(ctx context.Context, key string, v any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	r.Events = append(r.Events, Recorded{Key: key, Body: b})
	return nil
}

// Keys returns the routing keys seen so far.
func (r *Recorder) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Key)
	}
	return out
}
