package mapper

import (
	"time"

	"intelliview-be/internal/entity"
	"intelliview-be/internal/model"
	"intelliview-be/pkg/interview/scoring"

	"gorm.io/datatypes"
)

type InterviewReportMapper struct{}

func NewInterviewReportMapper() *InterviewReportMapper {
	return &InterviewReportMapper{}
}

func (m *InterviewReportMapper) ToEntity(r *model.InterviewReport) *entity.InterviewReport {
	if r == nil {
		return nil
	}

	var updatedAt *time.Time
	if !r.UpdatedAt.IsZero() {
		t := r.UpdatedAt
		updatedAt = &t
	}

	return &entity.InterviewReport{
		Id:               r.Id,
		SessionId:        r.SessionId,
		JobTitle:         r.JobTitle,
		FinalScore:       r.FinalScore,
		Decision:         scoring.Decision(r.Decision),
		Recommendation:   r.Recommendation,
		ExecutiveSummary: r.Summary,
		Breakdown:        r.Breakdown.Data(),
		Evaluations:      r.Evaluations.Data(),
		Integrity:        r.Integrity.Data(),
		Interview:        r.Interview.Data(),
		GeneratedAt:      r.GeneratedAt,
		UpdatedAt:        updatedAt,
	}
}

func (m *InterviewReportMapper) ToModel(r *entity.InterviewReport) *model.InterviewReport {
	if r == nil {
		return nil
	}
	return &model.InterviewReport{
		Id:             r.Id,
		SessionId:      r.SessionId,
		JobTitle:       r.JobTitle,
		FinalScore:     r.FinalScore,
		Decision:       string(r.Decision),
		Recommendation: r.Recommendation,
		Summary:        r.ExecutiveSummary,
		Breakdown:      datatypes.NewJSONType(r.Breakdown),
		Evaluations:    datatypes.NewJSONType(r.Evaluations),
		Integrity:      datatypes.NewJSONType(r.Integrity),
		Interview:      datatypes.NewJSONType(r.Interview),
		GeneratedAt:    r.GeneratedAt,
	}
}
