package service

import (
	"context"
	"encoding/json"
	"time"

	"intelliview-be/internal/pkg/logger"
	interviewModel "intelliview-be/pkg/interview/model"

	"github.com/ThreeDotsLabs/watermill/message"
)

const reportGenerationTimeout = 3 * time.Minute

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	reports    IReportService
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	reports IReportService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		reports:    reports,
		logger:     log,
	}
}

// Consume starts generating reports for finished interviews in the background.
func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage always acks. Failed generations are retried through the regenerate endpoint.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var snapshot interviewModel.Snapshot
	if err := json.Unmarshal(msg.Payload, &snapshot); err != nil {
		cs.logger.Error("REPORT_CONSUMER", "Failed to decode snapshot", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	cs.logger.Info("REPORT_CONSUMER", "Generating report", map[string]interface{}{
		"session_id": snapshot.SessionID,
		"transcript": len(snapshot.Transcript),
		"proctoring": len(snapshot.ProctoringEvents),
		"has_coding": snapshot.CodingResult != nil,
		"analyses":   len(snapshot.VisionAnalyses),
	})

	genCtx, cancel := context.WithTimeout(ctx, reportGenerationTimeout)
	defer cancel()

	if _, err := cs.reports.Generate(genCtx, snapshot); err != nil {
		cs.logger.Error("REPORT_CONSUMER", "Report generation failed", map[string]interface{}{
			"session_id": snapshot.SessionID,
			"error":      err.Error(),
		})
	}
}
