package mykafka

import (
	"context"
	"encoding/json"
	"sync"
)

type RecordedEvent struct {
	Topic string
	Key   string
	Data  map[string]any
}

// Recorder keeps published events in memory, the way a consumer would see
// them after JSON decoding.
type Recorder struct {
	mu     sync.Mutex
	events []RecordedEvent
}

func (r *Recorder) PublishEvent(_ context.Context, topic, key string, event any) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, RecordedEvent{Topic: topic, Key: key, Data: data})
	return nil
}

func (r *Recorder) Events(topic string) []RecordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []RecordedEvent
	for _, e := range r.events {
		if topic == "" || e.Topic == topic {
			out = append(out, e)
		}
	}
	return out
}

func (r *Recorder) Last(topic string) (RecordedEvent, bool) {
	ev := r.Events(topic)
	if len(ev) == 0 {
		return RecordedEvent{}, false
	}
	return ev[len(ev)-1], true
}
