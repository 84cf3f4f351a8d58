package mailer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type captureSender struct {
	sent []*gomail.Message
	err  error
}

func (c *captureSender) DialAndSend(m ...*gomail.Message) error {
	c.sent = append(c.sent, m...)
	return c.err
}

func TestSendReportReady(t *testing.T) {
	capture := &captureSender{}
	svc := &emailService{dialer: capture, senderEmail: "noreply@intelliview.dev", senderName: "IntelliView", frontendURL: "https://hr.example.com"}

	err := svc.SendReportReady("hr@example.com", ReportNotice{
		SessionID:  "abc",
		JobTitle:   "Backend Engineer",
		FinalScore: 74,
		Decision:   "PASS",
	})
	require.NoError(t, err)
	require.Len(t, capture.sent, 1)

	msg := capture.sent[0]
	assert.Equal(t, []string{"hr@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Interview report ready: Backend Engineer (PASS)"}, msg.GetHeader("Subject"))
}

func TestSendReportReadyWrapsError(t *testing.T) {
	svc := &emailService{dialer: &captureSender{err: errors.New("smtp down")}}
	err := svc.SendReportReady("hr@example.com", ReportNotice{SessionID: "abc"})
	assert.ErrorContains(t, err, "smtp down")
}
