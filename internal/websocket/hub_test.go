package websocket

import (
	"context"
	"sync"
	"testing"
	"time"

	"intelliview-be/internal/pkg/logger"
	pkgEvents "intelliview-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func watch(t *testing.T, hub *Hub, sessionID string) (*fakeClient, chan struct{}) {
	t.Helper()
	client := newFakeClient()
	done := make(chan struct{})
	before := hub.Count()
	go func() {
		ServeMonitor(hub, client, sessionID)
		close(done)
	}()
	require.Eventually(t, func() bool { return hub.Count() == before+1 }, time.Second, 5*time.Millisecond)
	return client, done
}

func lifecycleEvent(eventType, sessionID string) pkgEvents.Event {
	return pkgEvents.BaseEvent{
		Type:       eventType,
		Data:       map[string]interface{}{"session_id": sessionID},
		OccurredAt: time.Now().UTC(),
	}
}

func TestHubRoutesEventsBySession(t *testing.T) {
	hub := startHub(t)
	all, _ := watch(t, hub, "")
	one, _ := watch(t, hub, "s1")

	hub.Publish(lifecycleEvent(pkgEvents.InterviewStarted, "s1"))
	hub.Publish(lifecycleEvent(pkgEvents.ProctoringAlert, "s2"))

	require.Eventually(t, func() bool { return len(all.events()) == 2 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return len(one.events()) == 1 }, time.Second, 5*time.Millisecond)

	got := one.events()[0]
	assert.Equal(t, pkgEvents.InterviewStarted, got["type"])
	assert.Equal(t, "s1", got["session_id"])
	assert.Equal(t, []string{pkgEvents.InterviewStarted, pkgEvents.ProctoringAlert}, all.types())
}

func TestHubDropsDisconnectedWatcher(t *testing.T) {
	hub := startHub(t)
	client, done := watch(t, hub, "s1")

	_ = client.SetReadDeadline(time.Now())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not return after disconnect")
	}
	assert.Equal(t, 0, hub.Count())

	// publishing with nobody listening is a no-op
	hub.Publish(lifecycleEvent(pkgEvents.InterviewEnded, "s1"))
}

func TestDeliverAndRemoveDoNotRace(t *testing.T) {
	hub := NewHub(nil, logger.NewNopLogger())

	for round := 0; round < 200; round++ {
		watchers := make([]*Watcher, 8)
		for i := range watchers {
			watchers[i] = &Watcher{hub: hub, sessionID: "s1", send: make(chan []byte, 1)}
		}
		hub.mu.Lock()
		hub.watchers["s1"] = append([]*Watcher(nil), watchers...)
		hub.mu.Unlock()

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 20; j++ {
					hub.deliver("s1", []byte(`{}`))
				}
			}()
		}
		for _, w := range watchers {
			wg.Add(1)
			go func(w *Watcher) {
				defer wg.Done()
				hub.remove(w)
			}(w)
		}
		wg.Wait()

		require.Equal(t, 0, hub.Count())
	}
}
