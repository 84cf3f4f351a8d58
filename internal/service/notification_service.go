package service

import (
	"context"
	"fmt"

	"intelliview-be/internal/pkg/logger"
	"intelliview-be/internal/pkg/mailer"
	"intelliview-be/internal/repository/contract"
	"intelliview-be/internal/repository/specification"
	"intelliview-be/pkg/events"
	pktNats "intelliview-be/pkg/nats"
)

const hrMailerDurable = "hr-report-mailer"

// EventSubscriber is satisfied by the NATS subscriber.
type EventSubscriber interface {
	Subscribe(ctx context.Context, eventType, durableName string, handler pktNats.EventHandler) error
}

// NotificationService emails HR when a report has been generated.
type NotificationService struct {
	repo       contract.InterviewReportRepository
	subscriber EventSubscriber
	mailer     mailer.IEmailService
	hrEmail    string
	logger     logger.ILogger
}

func NewNotificationService(
	repo contract.InterviewReportRepository,
	sub EventSubscriber,
	emailService mailer.IEmailService,
	hrEmail string,
	log logger.ILogger,
) *NotificationService {
	return &NotificationService{
		repo:       repo,
		subscriber: sub,
		mailer:     emailService,
		hrEmail:    hrEmail,
		logger:     log,
	}
}

// Start begins listening for REPORT_GENERATED events. It is a no-op without an HR address.
func (s *NotificationService) Start(ctx context.Context) error {
	if s.hrEmail == "" {
		s.logger.Info("NotificationService", "HR notification email not configured, report mailer disabled", nil)
		return nil
	}
	if err := s.subscriber.Subscribe(ctx, events.ReportGenerated, hrMailerDurable, s.handleReportGenerated); err != nil {
		return fmt.Errorf("subscribe to %s: %w", events.ReportGenerated, err)
	}
	s.logger.Info("NotificationService", "Report mailer started", map[string]interface{}{"durable": hrMailerDurable})
	return nil
}

func (s *NotificationService) handleReportGenerated(ctx context.Context, event events.Event) error {
	sessionID := events.SessionID(event)
	if sessionID == "" {
		s.logger.Warn("NotificationService", "REPORT_GENERATED without session_id", map[string]interface{}{"payload": event.Payload()})
		return nil
	}

	report, err := s.repo.FindOne(ctx, specification.BySessionID{SessionID: sessionID})
	if err != nil {
		return err
	}
	if report == nil {
		s.logger.Warn("NotificationService", "Report vanished before notification", map[string]interface{}{"session_id": sessionID})
		return nil
	}

	notice := mailer.ReportNotice{
		SessionID:      report.SessionId,
		JobTitle:       report.JobTitle,
		FinalScore:     report.FinalScore,
		Decision:       string(report.Decision),
		Recommendation: report.Recommendation,
	}
	if err := s.mailer.SendReportReady(s.hrEmail, notice); err != nil {
		return err
	}

	s.logger.Info("NotificationService", "HR notified", map[string]interface{}{
		"session_id": sessionID,
		"decision":   notice.Decision,
	})
	return nil
}
