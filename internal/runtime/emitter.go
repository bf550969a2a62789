package runtime

import (
	"sync/atomic"
	"time"

	"github.com/webpilot-ai/webpilot/pkg/models"
)

// emitter stamps lifecycle events with version, time, and a monotonic
// sequence number before forwarding them to the sink.
//
// The sequence is shared across all tasks so a subscriber can totally order
// everything it receives from one runtime.
type emitter struct {
	seq  atomic.Uint64
	sink func(models.Event)
}

func newEmitter(sink func(models.Event)) *emitter {
	if sink == nil {
		sink = func(models.Event) {}
	}
	return &emitter{sink: sink}
}

func (e *emitter) emit(eventType models.EventType, payload models.EventPayload) {
	e.sink(models.Event{
		Version: 1,
		Type:    eventType,
		Time:    time.Now().UTC(),
		Seq:     e.seq.Add(1),
		Payload: payload,
	})
}
