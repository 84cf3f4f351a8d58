package service

import (
	"context"
	"encoding/json"
	"fmt"

	interviewModel "intelliview-be/pkg/interview/model"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// FinishedInterviewTopic carries finalized session snapshots to the report pipeline.
const FinishedInterviewTopic = "interview.finished"

type IPublisherService interface {
	SubmitSnapshot(ctx context.Context, snapshot interviewModel.Snapshot) error
}

type publisherService struct {
	topicName string
	publisher message.Publisher
}

func NewPublisherService(topicName string, publisher message.Publisher) IPublisherService {
	return &publisherService{
		topicName: topicName,
		publisher: publisher,
	}
}

func (ps *publisherService) SubmitSnapshot(ctx context.Context, snapshot interviewModel.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("session_id", snapshot.SessionID)
	if err := ps.publisher.Publish(ps.topicName, msg); err != nil {
		return fmt.Errorf("publish snapshot %s: %w", snapshot.SessionID, err)
	}
	return nil
}
