package hub

import (
	"fmt"
	"testing"
	"time"

	"github.com/webpilot-ai/webpilot/pkg/models"
)

func TestSubscribeReceivesSnapshotFirst(t *testing.T) {
	h := New(nil, nil)
	h.SetSnapshot(func() ([]*models.Task, []models.ToolDefinition) {
		return []*models.Task{{ID: "t1", Status: models.TaskStatusSucceeded}},
			[]models.ToolDefinition{{Name: "navigate"}}
	})

	sub := h.Subscribe()
	defer h.Unsubscribe(sub)

	select {
	case event := <-sub.Events():
		if event.Type != models.EventSnapshot {
			t.Fatalf("first event type = %s, want snapshot", event.Type)
		}
		if len(event.Payload.Tasks) != 1 || event.Payload.Tasks[0].ID != "t1" {
			t.Errorf("snapshot tasks = %+v", event.Payload.Tasks)
		}
		if len(event.Payload.Tools) != 1 || event.Payload.Tools[0].Name != "navigate" {
			t.Errorf("snapshot tools = %+v", event.Payload.Tools)
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot received")
	}
}

func TestPublishPreservesOrder(t *testing.T) {
	h := New(nil, nil)
	h.SetSnapshot(func() ([]*models.Task, []models.ToolDefinition) { return nil, nil })

	sub := h.Subscribe()
	defer h.Unsubscribe(sub)
	<-sub.Events() // snapshot

	for i := 0; i < 20; i++ {
		h.Publish(models.Event{
			Type:    models.EventTaskUpdated,
			Seq:     uint64(i + 1),
			Payload: models.EventPayload{TaskID: fmt.Sprintf("t%d", i)},
		})
	}

	for i := 0; i < 20; i++ {
		select {
		case event := <-sub.Events():
			if event.Seq != uint64(i+1) {
				t.Fatalf("event %d has seq %d, want %d", i, event.Seq, i+1)
			}
		case <-time.After(time.Second):
			t.Fatalf("missing event %d", i)
		}
	}
}

func TestSlowSubscriberDropsWithoutBlocking(t *testing.T) {
	h := New(nil, nil)
	h.SetSnapshot(func() ([]*models.Task, []models.ToolDefinition) { return nil, nil })

	sub := h.Subscribe()
	defer h.Unsubscribe(sub)

	done := make(chan struct{})
	go func() {
		// Nobody drains sub: publishing past the buffer must not block.
		for i := 0; i < subscriberBuffer*2; i++ {
			h.Publish(models.Event{Type: models.EventTaskUpdated})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	h := New(nil, nil)
	h.SetSnapshot(func() ([]*models.Task, []models.ToolDefinition) { return nil, nil })

	sub := h.Subscribe()
	if h.SubscriberCount() != 1 {
		t.Fatalf("SubscriberCount = %d, want 1", h.SubscriberCount())
	}

	h.Unsubscribe(sub)
	h.Unsubscribe(sub) // idempotent

	if h.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount = %d, want 0", h.SubscriberCount())
	}

	// Drain snapshot, then expect close.
	for {
		if _, ok := <-sub.Events(); !ok {
			return
		}
	}
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	h := New(nil, nil)
	h.SetSnapshot(func() ([]*models.Task, []models.ToolDefinition) { return nil, nil })

	a := h.Subscribe()
	b := h.Subscribe()
	defer h.Unsubscribe(a)
	defer h.Unsubscribe(b)
	<-a.Events()
	<-b.Events()

	h.Publish(models.Event{Type: models.EventTaskCreated, Payload: models.EventPayload{TaskID: "t1"}})

	for _, sub := range []*Subscriber{a, b} {
		select {
		case event := <-sub.Events():
			if event.Payload.TaskID != "t1" {
				t.Errorf("TaskID = %q", event.Payload.TaskID)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber missed event")
		}
	}
}
