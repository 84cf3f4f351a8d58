package service

import (
	"context"
	"fmt"
	"strings"

	"intelliview-be/internal/pkg/logger"
	"intelliview-be/pkg/events"
)

// MonitorFeed is satisfied by the websocket hub.
type MonitorFeed interface {
	Publish(event events.Event)
}

var monitoredEvents = []string{
	events.InterviewStarted,
	events.InterviewEnded,
	events.ProctoringAlert,
	events.ReportGenerated,
}

// MonitorService relays interview lifecycle events to the HR live dashboard.
type MonitorService struct {
	subscriber EventSubscriber
	feed       MonitorFeed
	logger     logger.ILogger
}

func NewMonitorService(sub EventSubscriber, feed MonitorFeed, log logger.ILogger) *MonitorService {
	return &MonitorService{subscriber: sub, feed: feed, logger: log}
}

// Start subscribes with one durable per event type, shared by all instances.
func (s *MonitorService) Start(ctx context.Context) error {
	for _, eventType := range monitoredEvents {
		durable := "monitor-" + strings.ToLower(strings.ReplaceAll(eventType, "_", "-"))
		if err := s.subscriber.Subscribe(ctx, eventType, durable, s.forward); err != nil {
			return fmt.Errorf("subscribe to %s: %w", eventType, err)
		}
	}
	s.logger.Info("MonitorService", "Live monitor feed started", map[string]interface{}{"events": len(monitoredEvents)})
	return nil
}

func (s *MonitorService) forward(ctx context.Context, event events.Event) error {
	s.feed.Publish(event)
	return nil
}
