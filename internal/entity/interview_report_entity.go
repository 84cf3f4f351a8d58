package entity

import (
	"time"

	interviewModel "intelliview-be/pkg/interview/model"
	"intelliview-be/pkg/interview/scoring"

	"github.com/google/uuid"
)

type QuestionEvaluation struct {
	Question      string `json:"question"`
	AnswerSummary string `json:"answer_summary"`
	Score         int    `json:"score"`
	Feedback      string `json:"feedback"`
}

type QAEvaluation struct {
	Score       int                  `json:"score"`
	Strengths   []string             `json:"strengths"`
	Weaknesses  []string             `json:"weaknesses"`
	PerQuestion []QuestionEvaluation `json:"per_question"`
}

type CodingEvaluation struct {
	Submitted        bool   `json:"submitted"`
	CorrectnessScore int    `json:"correctness_score"`
	QualityScore     int    `json:"quality_score"`
	CombinedScore    int    `json:"combined_score"`
	Feedback         string `json:"feedback"`
	TimeComplexity   string `json:"time_complexity"`
	SpaceComplexity  string `json:"space_complexity"`
}

type CommunicationEvaluation struct {
	Score           int    `json:"score"`
	Clarity         int    `json:"clarity"`
	Confidence      int    `json:"confidence"`
	Professionalism int    `json:"professionalism"`
	Feedback        string `json:"feedback"`
}

// Evaluations groups the LLM-backed assessments of one interview.
type Evaluations struct {
	QA            QAEvaluation            `json:"qa"`
	Coding        CodingEvaluation        `json:"coding"`
	Communication CommunicationEvaluation `json:"communication"`
}

type InterviewReport struct {
	Id               uuid.UUID
	SessionId        string
	JobTitle         string
	FinalScore       int
	Decision         scoring.Decision
	Recommendation   string
	ExecutiveSummary string
	Breakdown        scoring.ScoreBreakdown
	Evaluations      Evaluations
	Integrity        scoring.IntegrityResult
	Interview        interviewModel.Snapshot
	GeneratedAt      time.Time
	UpdatedAt        *time.Time
}

// DurationMinutes is the whole minutes between the start and end of the interview.
func (r *InterviewReport) DurationMinutes() int {
	start, end := r.Interview.StartTime, r.Interview.EndTime
	if start.IsZero() || !end.After(start) {
		return 0
	}
	return int(end.Sub(start).Minutes())
}
