package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"intelliview-be/internal/dto"
	"intelliview-be/internal/entity"
	"intelliview-be/internal/pkg/logger"
	"intelliview-be/internal/pkg/mailer"
	"intelliview-be/pkg/events"
	interviewModel "intelliview-be/pkg/interview/model"
	"intelliview-be/pkg/interview/scoring"
	pktNats "intelliview-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingReports struct {
	IReportService
	mu        sync.Mutex
	snapshots []interviewModel.Snapshot
	err       error
	done      chan struct{}
}

func (c *capturingReports) Generate(ctx context.Context, snapshot interviewModel.Snapshot) (*entity.InterviewReport, error) {
	c.mu.Lock()
	c.snapshots = append(c.snapshots, snapshot)
	c.mu.Unlock()
	c.done <- struct{}{}
	return nil, c.err
}

func TestSnapshotHandOff(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	reports := &capturingReports{err: errors.New("first one fails"), done: make(chan struct{}, 2)}
	consumer := NewConsumerService(pubSub, FinishedInterviewTopic, reports, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService(FinishedInterviewTopic, pubSub)
	snapshot := interviewModel.Snapshot{
		SessionID:  "s1",
		JobTitle:   "Backend",
		Transcript: []interviewModel.TranscriptEntry{{Role: interviewModel.RoleUser, Text: "hi"}},
	}
	require.NoError(t, publisher.SubmitSnapshot(ctx, snapshot))
	require.NoError(t, publisher.SubmitSnapshot(ctx, interviewModel.Snapshot{SessionID: "s2"}))

	for i := 0; i < 2; i++ {
		select {
		case <-reports.done:
		case <-time.After(2 * time.Second):
			t.Fatal("report generation was not triggered")
		}
	}

	reports.mu.Lock()
	defer reports.mu.Unlock()
	require.Len(t, reports.snapshots, 2)
	assert.Equal(t, "Backend", reports.snapshots[0].JobTitle)
	assert.Equal(t, "hi", reports.snapshots[0].Transcript[0].Text)
	assert.Equal(t, "s2", reports.snapshots[1].SessionID, "failed generation must not block the next message")
}

type fakeEventSubscriber struct {
	eventType string
	durable   string
	handler   pktNats.EventHandler
}

func (f *fakeEventSubscriber) Subscribe(ctx context.Context, eventType, durableName string, handler pktNats.EventHandler) error {
	f.eventType, f.durable, f.handler = eventType, durableName, handler
	return nil
}

type fakeMailer struct {
	to      string
	notices []mailer.ReportNotice
	err     error
}

func (m *fakeMailer) SendReportReady(toEmail string, notice mailer.ReportNotice) error {
	m.to = toEmail
	m.notices = append(m.notices, notice)
	return m.err
}

func TestNotificationServiceEmailsHR(t *testing.T) {
	repo := newFakeReportRepo()
	repo.reports["s1"] = &entity.InterviewReport{
		SessionId:      "s1",
		JobTitle:       "Backend",
		FinalScore:     81,
		Decision:       scoring.DecisionPass,
		Recommendation: scoring.RecommendPass,
	}
	sub := &fakeEventSubscriber{}
	mail := &fakeMailer{}
	svc := NewNotificationService(repo, sub, mail, "hr@example.com", logger.NewNopLogger())

	require.NoError(t, svc.Start(context.Background()))
	assert.Equal(t, events.ReportGenerated, sub.eventType)
	assert.Equal(t, hrMailerDurable, sub.durable)
	require.NotNil(t, sub.handler)

	evt := events.BaseEvent{Type: events.ReportGenerated, Data: map[string]interface{}{"session_id": "s1"}}
	require.NoError(t, sub.handler(context.Background(), evt))

	assert.Equal(t, "hr@example.com", mail.to)
	require.Len(t, mail.notices, 1)
	assert.Equal(t, 81, mail.notices[0].FinalScore)
	assert.Equal(t, "PASS", mail.notices[0].Decision)

	// unknown sessions and malformed payloads are dropped, not retried
	require.NoError(t, sub.handler(context.Background(), events.BaseEvent{Data: map[string]interface{}{"session_id": "nope"}}))
	require.NoError(t, sub.handler(context.Background(), events.BaseEvent{Data: map[string]interface{}{}}))
	assert.Len(t, mail.notices, 1)

	mail.err = errors.New("smtp down")
	assert.Error(t, sub.handler(context.Background(), evt))
}

func TestNotificationServiceDisabledWithoutAddress(t *testing.T) {
	sub := &fakeEventSubscriber{}
	svc := NewNotificationService(newFakeReportRepo(), sub, &fakeMailer{}, "", logger.NewNopLogger())

	require.NoError(t, svc.Start(context.Background()))
	assert.Nil(t, sub.handler)
}

func TestRenderReportMarkdown(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	report := &entity.InterviewReport{
		SessionId:        "s1",
		JobTitle:         "Backend Engineer",
		FinalScore:       74,
		Decision:         scoring.DecisionPass,
		Recommendation:   scoring.RecommendPass,
		ExecutiveSummary: "Strong systems knowledge.",
		Breakdown:        scoring.Decide(scoring.Inputs{QA: scoring.Score(80), Coding: scoring.Score(70), Communication: scoring.Score(60)}),
		Evaluations: entity.Evaluations{
			QA: entity.QAEvaluation{
				Score:       80,
				Strengths:   []string{"clear examples"},
				PerQuestion: []entity.QuestionEvaluation{{Question: "Describe an outage", Score: 75}},
			},
		},
		Integrity: scoring.IntegrityResult{Score: 90, CriticalFlags: []string{"Second face detected"}},
		Interview: interviewModel.Snapshot{StartTime: start, EndTime: start.Add(32 * time.Minute)},
	}

	md, err := RenderReportMarkdown(report)
	require.NoError(t, err)

	assert.Contains(t, md, "# IntelliView Interview Report")
	assert.Contains(t, md, "Strong systems knowledge.")
	assert.Contains(t, md, "| **Position** | Backend Engineer |")
	assert.Contains(t, md, "| **Duration** | 32 minutes |")
	assert.Contains(t, md, "✅ **PASS**")
	assert.Contains(t, md, "| Interview Q&A | 80 | 40% | 32.0 |")
	assert.Contains(t, md, "**Q1: Describe an outage**")
	assert.Contains(t, md, "- clear examples")
	assert.Contains(t, md, "- 🔴 Second face detected")
}

func TestReportResponseCarriesCodeResults(t *testing.T) {
	report := &entity.InterviewReport{
		SessionId: "s1",
		Interview: interviewModel.Snapshot{
			Transcript:   make([]interviewModel.TranscriptEntry, 3),
			CodingResult: &interviewModel.CodingSubmission{Results: &interviewModel.CodeResults{Passed: 1, Total: 2}},
		},
	}

	res := dto.NewInterviewReportResponse(report)
	assert.Equal(t, 3, res.TranscriptSize)
	require.NotNil(t, res.CodeResults)
	assert.Equal(t, 2, res.CodeResults.Total)
}

type multiSubscriber struct {
	handlers map[string]pktNats.EventHandler
	durables []string
}

func (m *multiSubscriber) Subscribe(ctx context.Context, eventType, durableName string, handler pktNats.EventHandler) error {
	if m.handlers == nil {
		m.handlers = map[string]pktNats.EventHandler{}
	}
	m.handlers[eventType] = handler
	m.durables = append(m.durables, durableName)
	return nil
}

type feedRecorder struct {
	got []string
}

func (f *feedRecorder) Publish(event events.Event) {
	f.got = append(f.got, event.EventType())
}

func TestMonitorServiceForwardsLifecycleEvents(t *testing.T) {
	sub := &multiSubscriber{}
	feed := &feedRecorder{}
	svc := NewMonitorService(sub, feed, logger.NewNopLogger())

	require.NoError(t, svc.Start(context.Background()))
	assert.Len(t, sub.handlers, 4)
	assert.Contains(t, sub.durables, "monitor-proctoring-alert")

	alert := events.BaseEvent{Type: events.ProctoringAlert, Data: map[string]interface{}{"session_id": "s1"}}
	require.NoError(t, sub.handlers[events.ProctoringAlert](context.Background(), alert))
	assert.Equal(t, []string{events.ProctoringAlert}, feed.got)
}
