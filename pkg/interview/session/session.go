package session

import (
	"errors"
	"sync"
	"time"

	"intelliview-be/pkg/interview/model"
)

// ErrFinalized is returned by mutators once the session has been torn down.
var ErrFinalized = errors.New("session finalized")

// Persona configures the interviewer for one session.
type Persona struct {
	JobTitle      string
	ResumeSummary string
}

// Session is the mutable log of one live interview. The relay loops and the
// analysis tasks all write through its methods, which serialize on one mutex.
type Session struct {
	ID        string
	Persona   Persona
	CreatedAt time.Time

	mu         sync.RWMutex
	endedAt    time.Time
	phase      model.Phase
	transcript []model.TranscriptEntry
	proctoring []model.ProctoringEvent
	analyses   []model.VisionAnalysis
	assessment *model.CodingAssessment
	coding     *model.CodingSubmission
	active     bool
	finalized  bool

	now func() time.Time
}

func New(id string, persona Persona) *Session {
	return &Session{
		ID:        id,
		Persona:   persona,
		CreatedAt: time.Now().UTC(),
		phase:     model.PhaseInit,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Session) Activate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.finalized {
		s.active = true
	}
}

func (s *Session) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *Session) Phase() model.Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

func (s *Session) SetPhase(p model.Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.finalized {
		s.phase = p
	}
}

func (s *Session) AppendTranscript(role, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return ErrFinalized
	}
	s.transcript = append(s.transcript, model.TranscriptEntry{Role: role, Text: text, Timestamp: s.now()})
	return nil
}

// AppendProctoringEvent stamps and records a proctoring event.
func (s *Session) AppendProctoringEvent(event model.ProctoringEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return ErrFinalized
	}
	event.Timestamp = s.now()
	s.proctoring = append(s.proctoring, event)
	return nil
}

// RecordAnalysis stores a vision analysis. High and critical findings are mirrored
// into the proctoring log under the same lock so scoring sees both or neither.
func (s *Session) RecordAnalysis(analysis model.VisionAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return ErrFinalized
	}
	s.analyses = append(s.analyses, analysis)
	if analysis.AnalysisSuccess && analysis.OverallSuspicionLevel.IsAlert() {
		s.proctoring = append(s.proctoring, model.ProctoringEvent{
			Source:    model.SourceGeminiVision,
			Type:      "vision",
			Severity:  string(analysis.OverallSuspicionLevel),
			Message:   analysis.Summary,
			Timestamp: s.now(),
		})
	}
	return nil
}

func (s *Session) SetCodingAssessment(difficulty, topic string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.finalized {
		s.assessment = &model.CodingAssessment{Difficulty: difficulty, Topic: topic}
	}
}

func (s *Session) CodingAssessment() *model.CodingAssessment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.assessment == nil {
		return nil
	}
	a := *s.assessment
	return &a
}

// SubmitCode stores a coding submission, replacing any earlier one.
func (s *Session) SubmitCode(code, language string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return ErrFinalized
	}
	s.coding = &model.CodingSubmission{Code: code, Language: language, SubmittedAt: s.now()}
	return nil
}

// AttachCodeResults records judge results, creating the submission if the code
// arrived over REST rather than the websocket.
func (s *Session) AttachCodeResults(code, language string, results model.CodeResults) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return ErrFinalized
	}
	if s.coding == nil || s.coding.Code != code || s.coding.Language != language {
		s.coding = &model.CodingSubmission{Code: code, Language: language, SubmittedAt: s.now()}
	}
	s.coding.Results = &results
	return nil
}

// Finalize marks the end of the session. Later writes are rejected. Returns false
// if the session was already finalized.
func (s *Session) Finalize() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return false
	}
	s.finalized = true
	s.active = false
	s.endedAt = s.now()
	return true
}

func (s *Session) Finalized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.finalized
}

// Snapshot returns a deep copy of the session log.
func (s *Session) Snapshot() model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := model.Snapshot{
		SessionID:        s.ID,
		JobTitle:         s.Persona.JobTitle,
		StartTime:        s.CreatedAt,
		EndTime:          s.endedAt,
		Phase:            s.phase,
		Transcript:       append([]model.TranscriptEntry(nil), s.transcript...),
		ProctoringEvents: make([]model.ProctoringEvent, len(s.proctoring)),
		VisionAnalyses:   append([]model.VisionAnalysis(nil), s.analyses...),
	}
	if snap.EndTime.IsZero() {
		snap.EndTime = s.now()
	}
	for i, e := range s.proctoring {
		if e.Details != nil {
			details := make(map[string]interface{}, len(e.Details))
			for k, v := range e.Details {
				details[k] = v
			}
			e.Details = details
		}
		snap.ProctoringEvents[i] = e
	}
	if s.assessment != nil {
		a := *s.assessment
		snap.CodingAssessment = &a
	}
	if s.coding != nil {
		c := *s.coding
		if c.Results != nil {
			r := *c.Results
			r.TestResults = append([]model.TestResult(nil), r.TestResults...)
			c.Results = &r
		}
		snap.CodingResult = &c
	}
	return snap
}
