package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// ReportNotice is what HR needs to find a freshly generated report.
type ReportNotice struct {
	SessionID      string
	JobTitle       string
	FinalScore     int
	Decision       string
	Recommendation string
}

type IEmailService interface {
	SendReportReady(toEmail string, notice ReportNotice) error
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	dialer      sender
	senderEmail string
	senderName  string
	frontendURL string
}

func NewEmailService(host string, port int, username, password, senderName, frontendURL string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)
	return &emailService{
		dialer:      d,
		senderEmail: username,
		senderName:  senderName,
		frontendURL: frontendURL,
	}
}

func (s *emailService) SendReportReady(toEmail string, notice ReportNotice) error {
	m := s.buildReportReady(toEmail, notice)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send report email to %s: %w", toEmail, err)
	}
	return nil
}

func (s *emailService) buildReportReady(toEmail string, notice ReportNotice) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Interview report ready: %s (%s)", notice.JobTitle, notice.Decision))

	reportLink := fmt.Sprintf("%s/reports/%s", s.frontendURL, notice.SessionID)

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Interview Report Ready</h2>
			<p>Position: <strong>%s</strong></p>
			<p>Final score: <strong>%d / 100</strong></p>
			<p>Decision: <strong>%s</strong></p>
			<p>%s</p>
			<a href="%s" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Open Report</a>
			<p>Session: %s</p>
		</div>
	`, notice.JobTitle, notice.FinalScore, notice.Decision, notice.Recommendation, reportLink, notice.SessionID)

	m.SetBody("text/html", body)
	return m
}
