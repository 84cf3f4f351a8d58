package model

import "time"

// Phase is a discrete stage of the interview lifecycle.
type Phase string

const (
	PhaseInit     Phase = "init"
	PhaseGreeting Phase = "greeting"
	PhaseQA       Phase = "qa"
	PhaseCoding   Phase = "coding"
	PhaseComplete Phase = "complete"
)

const (
	RoleAI     = "ai"
	RoleUser   = "user"
	RoleSystem = "system"
)

// Proctoring event sources and severities understood by the integrity scorer.
const (
	SourceBrowser      = "browser"
	SourceMediapipe    = "mediapipe"
	SourceGeminiVision = "gemini_vision"

	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

type TranscriptEntry struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type ProctoringEvent struct {
	Source    string                 `json:"source,omitempty"`
	Severity  string                 `json:"severity,omitempty"`
	Type      string                 `json:"type,omitempty"`
	Message   string                 `json:"message,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// CodingAssessment holds the parameters chosen when the coding phase started.
type CodingAssessment struct {
	Difficulty string `json:"difficulty"`
	Topic      string `json:"topic"`
}

type CodingSubmission struct {
	Code        string       `json:"code"`
	Language    string       `json:"language"`
	SubmittedAt time.Time    `json:"submitted_at"`
	Results     *CodeResults `json:"test_results,omitempty"`
}

// CodeResults is what the code-execution judge reports for a submission.
type CodeResults struct {
	ProblemTitle string       `json:"problem_title,omitempty"`
	Passed       int          `json:"passed"`
	Total        int          `json:"total"`
	Score        float64      `json:"score"`
	TestResults  []TestResult `json:"test_results"`
	Error        string       `json:"error,omitempty"`
}

type TestResult struct {
	TestCase int     `json:"test_case"`
	Passed   bool    `json:"passed"`
	Stdout   string  `json:"stdout"`
	Expected string  `json:"expected"`
	Stderr   string  `json:"stderr,omitempty"`
	Time     string  `json:"time,omitempty"`
	Memory   float64 `json:"memory,omitempty"`
	Status   string  `json:"status,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// Snapshot is the plain, read-only copy of a session handed to the report pipeline.
type Snapshot struct {
	SessionID        string            `json:"session_id"`
	JobTitle         string            `json:"job_title"`
	StartTime        time.Time         `json:"start_time"`
	EndTime          time.Time         `json:"end_time"`
	Phase            Phase             `json:"phase"`
	Transcript       []TranscriptEntry `json:"transcript"`
	ProctoringEvents []ProctoringEvent `json:"proctoring_events"`
	VisionAnalyses   []VisionAnalysis  `json:"vision_analyses"`
	CodingAssessment *CodingAssessment `json:"coding_assessment,omitempty"`
	CodingResult     *CodingSubmission `json:"coding_result,omitempty"`
}
