package dto

import (
	"time"

	"intelliview-be/internal/entity"
	interviewModel "intelliview-be/pkg/interview/model"
	"intelliview-be/pkg/interview/scoring"
)

type CodingProblemRequest struct {
	Difficulty string `query:"difficulty"`
	Topic      string `query:"topic"`
}

type CodingProblemResponse struct {
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	StarterCode     map[string]string `json:"starter_code"`
	LanguageOptions []string          `json:"language_options"`
}

type SubmitCodeRequest struct {
	SessionId  string `json:"session_id"`
	Code       string `json:"code" validate:"required"`
	Language   string `json:"language" validate:"omitempty,oneof=python python3 javascript typescript java cpp c"`
	Difficulty string `json:"difficulty"`
	Topic      string `json:"topic"`
}

type AnalyzeFrameRequest struct {
	SessionId string `json:"session_id"`
	Frame     string `json:"frame" validate:"required"`
}

type AnalyzeFrameResponse struct {
	SuspicionLevel  interviewModel.SuspicionLevel `json:"suspicion_level"`
	Summary         string                        `json:"summary"`
	AnalysisSuccess bool                          `json:"analysis_success"`
}

type HealthResponse struct {
	Status         string `json:"status"`
	Service        string `json:"service"`
	ActiveSessions int    `json:"active_sessions"`
}

type ListReportsRequest struct {
	Decision string `query:"decision" validate:"omitempty,oneof=PASS BORDERLINE FAIL pass borderline fail"`
	Limit    int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset   int    `query:"offset" validate:"omitempty,min=0"`
}

type InterviewReportResponse struct {
	Id             string                      `json:"id"`
	SessionId      string                      `json:"session_id"`
	JobTitle       string                      `json:"job_title"`
	FinalScore     int                         `json:"final_score"`
	Decision       scoring.Decision            `json:"decision"`
	Recommendation string                      `json:"recommendation"`
	Summary        string                      `json:"executive_summary"`
	Breakdown      scoring.ScoreBreakdown      `json:"breakdown"`
	Evaluations    entity.Evaluations          `json:"evaluations"`
	Integrity      scoring.IntegrityResult     `json:"integrity"`
	CodeResults    *interviewModel.CodeResults `json:"code_results,omitempty"`
	Duration       int                         `json:"interview_duration_minutes"`
	TranscriptSize int                         `json:"transcript_entries_count"`
	EventsCount    int                         `json:"proctoring_events_count"`
	GeneratedAt    time.Time                   `json:"generated_at"`
}

func NewInterviewReportResponse(r *entity.InterviewReport) *InterviewReportResponse {
	res := &InterviewReportResponse{
		Id:             r.Id.String(),
		SessionId:      r.SessionId,
		JobTitle:       r.JobTitle,
		FinalScore:     r.FinalScore,
		Decision:       r.Decision,
		Recommendation: r.Recommendation,
		Summary:        r.ExecutiveSummary,
		Breakdown:      r.Breakdown,
		Evaluations:    r.Evaluations,
		Integrity:      r.Integrity,
		Duration:       r.DurationMinutes(),
		TranscriptSize: len(r.Interview.Transcript),
		EventsCount:    len(r.Interview.ProctoringEvents),
		GeneratedAt:    r.GeneratedAt,
	}
	if r.Interview.CodingResult != nil {
		res.CodeResults = r.Interview.CodingResult.Results
	}
	return res
}
