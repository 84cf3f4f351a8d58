package events

import "time"

// Interview lifecycle event types
const (
	InterviewStarted = "INTERVIEW_STARTED"
	InterviewEnded   = "INTERVIEW_ENDED"
	ProctoringAlert  = "PROCTORING_ALERT"
	ReportGenerated  = "REPORT_GENERATED"
)

// Event is what travels over the broker. Every interview event carries
// "session_id" in its payload.
type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func New(eventType string, data map[string]interface{}, at time.Time) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: at.UTC()}
}

func (e BaseEvent) EventType() string               { return e.Type }
func (e BaseEvent) Payload() map[string]interface{} { return e.Data }
func (e BaseEvent) Timestamp() time.Time            { return e.OccurredAt }

// SessionID returns the interview an event belongs to, or "" when absent.
func SessionID(e Event) string {
	id, _ := e.Payload()["session_id"].(string)
	return id
}
