package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"intelliview-be/internal/pkg/logger"
	"intelliview-be/pkg/events"

	"github.com/redis/go-redis/v9"
)

// MonitorChannel is the Redis channel the hubs of all instances share.
const MonitorChannel = "interview_monitor"

// allSessions is the watcher key for dashboards that follow every interview.
const allSessions = "*"

// MonitorEvent is what a dashboard receives for each lifecycle event.
type MonitorEvent struct {
	Type       string                 `json:"type"`
	SessionID  string                 `json:"session_id"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// Watcher is one connected HR dashboard.
type Watcher struct {
	hub       *Hub
	conn      ClientConn
	sessionID string
	send      chan []byte
}

// Hub fans interview lifecycle events out to dashboards. With Redis configured
// every event goes through MonitorChannel so watchers on other instances see it too.
type Hub struct {
	// session id (or allSessions) -> watchers
	watchers map[string][]*Watcher

	register chan *Watcher

	mu sync.RWMutex

	rdb    redis.UniversalClient
	logger logger.ILogger
}

func NewHub(rdb redis.UniversalClient, log logger.ILogger) *Hub {
	return &Hub{
		watchers: make(map[string][]*Watcher),
		register: make(chan *Watcher),
		rdb:      rdb,
		logger:   log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case w := <-h.register:
			h.mu.Lock()
			h.watchers[w.sessionID] = append(h.watchers[w.sessionID], w)
			h.mu.Unlock()
			h.logger.Info("Hub", "Watcher registered", map[string]interface{}{"session_id": w.sessionID})

		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// Count returns the number of connected watchers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, ws := range h.watchers {
		n += len(ws)
	}
	return n
}

// Publish forwards a lifecycle event to the watchers of its session.
func (h *Hub) Publish(event events.Event) {
	sessionID := events.SessionID(event)
	data, err := json.Marshal(MonitorEvent{
		Type:       event.EventType(),
		SessionID:  sessionID,
		Data:       event.Payload(),
		OccurredAt: event.Timestamp(),
	})
	if err != nil {
		h.logger.Error("Hub", "Failed to encode monitor event", map[string]interface{}{"error": err.Error()})
		return
	}

	if h.rdb != nil {
		payload, _ := json.Marshal(clusterMessage{SessionID: sessionID, Message: data})
		if err := h.rdb.Publish(context.Background(), MonitorChannel, payload).Err(); err == nil {
			return
		}
		h.logger.Warn("Hub", "Redis publish failed, delivering locally", map[string]interface{}{"session_id": sessionID})
	}
	h.deliver(sessionID, data)
}

type clusterMessage struct {
	SessionID string          `json:"session_id"`
	Message   json.RawMessage `json:"message"`
}

// deliver sends while holding the read lock so remove cannot close a queue
// mid-send. Watchers with a full queue are removed afterwards.
func (h *Hub) deliver(sessionID string, data []byte) {
	var slow []*Watcher

	h.mu.RLock()
	slow = offer(h.watchers[allSessions], data, slow)
	if sessionID != "" && sessionID != allSessions {
		slow = offer(h.watchers[sessionID], data, slow)
	}
	h.mu.RUnlock()

	for _, w := range slow {
		h.logger.Warn("Hub", "Watcher send buffer full, dropping watcher", map[string]interface{}{"session_id": w.sessionID})
		h.remove(w)
	}
}

func offer(watchers []*Watcher, data []byte, slow []*Watcher) []*Watcher {
	for _, w := range watchers {
		select {
		case w.send <- data:
		default:
			slow = append(slow, w)
		}
	}
	return slow
}

// remove unregisters w and closes its queue. Safe to call more than once.
func (h *Hub) remove(w *Watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ws := h.watchers[w.sessionID]
	for i, c := range ws {
		if c != w {
			continue
		}
		h.watchers[w.sessionID] = append(ws[:i], ws[i+1:]...)
		close(w.send)
		break
	}
	if len(h.watchers[w.sessionID]) == 0 {
		delete(h.watchers, w.sessionID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key, ws := range h.watchers {
		for _, w := range ws {
			close(w.send)
		}
		delete(h.watchers, key)
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, MonitorChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var payload clusterMessage
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				h.logger.Warn("Hub", "Malformed cluster message", map[string]interface{}{"error": err.Error()})
				continue
			}
			h.deliver(payload.SessionID, payload.Message)
		case <-ctx.Done():
			return
		}
	}
}
