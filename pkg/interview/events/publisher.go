package events

import (
	"context"
	"time"

	"intelliview-be/internal/pkg/logger"
	"intelliview-be/pkg/interview/model"
	pkgEvents "intelliview-be/pkg/events"
)

// Bus is satisfied by the NATS publisher.
type Bus interface {
	Publish(ctx context.Context, event pkgEvents.Event) error
}

// Publisher abstracts event publishing for interview lifecycle changes
type Publisher interface {
	PublishInterviewStarted(ctx context.Context, sessionID, jobTitle string)
	PublishInterviewEnded(ctx context.Context, snapshot model.Snapshot, reason string)
	PublishProctoringAlert(ctx context.Context, sessionID string, analysis model.VisionAnalysis)
	PublishReportGenerated(ctx context.Context, sessionID string, finalScore float64, decision string)
}

// BusPublisher implements Publisher on a Bus. A nil bus turns every call into a no-op.
type BusPublisher struct {
	bus    Bus
	logger logger.ILogger
	now    func() time.Time
}

func NewBusPublisher(bus Bus, logger logger.ILogger) *BusPublisher {
	return &BusPublisher{bus: bus, logger: logger, now: time.Now}
}

func (p *BusPublisher) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if p.bus == nil {
		return
	}

	evt := pkgEvents.New(eventType, data, p.now())
	if err := p.bus.Publish(ctx, evt); err != nil {
		p.logger.Error("INTERVIEW", "Failed to publish "+eventType+" event", map[string]interface{}{"error": err.Error()})
	}
}

func (p *BusPublisher) PublishInterviewStarted(ctx context.Context, sessionID, jobTitle string) {
	p.publish(ctx, pkgEvents.InterviewStarted, map[string]interface{}{
		"session_id":  sessionID,
		"job_title":   jobTitle,
		"entity_type": "interview",
		"entity_id":   sessionID,
	})
}

func (p *BusPublisher) PublishInterviewEnded(ctx context.Context, snapshot model.Snapshot, reason string) {
	p.publish(ctx, pkgEvents.InterviewEnded, map[string]interface{}{
		"session_id":        snapshot.SessionID,
		"job_title":         snapshot.JobTitle,
		"phase":             string(snapshot.Phase),
		"reason":            reason,
		"transcript_size":   len(snapshot.Transcript),
		"proctoring_events": len(snapshot.ProctoringEvents),
		"vision_analyses":   len(snapshot.VisionAnalyses),
		"code_submitted":    snapshot.CodingResult != nil,
		"entity_type":       "interview",
		"entity_id":         snapshot.SessionID,
	})
}

func (p *BusPublisher) PublishProctoringAlert(ctx context.Context, sessionID string, analysis model.VisionAnalysis) {
	p.publish(ctx, pkgEvents.ProctoringAlert, map[string]interface{}{
		"session_id":      sessionID,
		"source":          model.SourceGeminiVision,
		"suspicion_level": string(analysis.OverallSuspicionLevel),
		"summary":         analysis.Summary,
		"entity_type":     "interview",
		"entity_id":       sessionID,
	})
}

func (p *BusPublisher) PublishReportGenerated(ctx context.Context, sessionID string, finalScore float64, decision string) {
	p.publish(ctx, pkgEvents.ReportGenerated, map[string]interface{}{
		"session_id":  sessionID,
		"final_score": finalScore,
		"decision":    decision,
		"entity_type": "report",
		"entity_id":   sessionID,
	})
}
