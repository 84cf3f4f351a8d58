package model

import (
	"time"

	"intelliview-be/internal/entity"
	interviewModel "intelliview-be/pkg/interview/model"
	"intelliview-be/pkg/interview/scoring"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type InterviewReport struct {
	Id             uuid.UUID                                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId      string                                      `gorm:"type:text;not null;uniqueIndex"`
	JobTitle       string                                      `gorm:"type:text"`
	FinalScore     int                                         `gorm:"not null"`
	Decision       string                                      `gorm:"type:varchar(20);not null;index"`
	Recommendation string                                      `gorm:"type:text"`
	Summary        string                                      `gorm:"column:executive_summary;type:text"`
	Breakdown      datatypes.JSONType[scoring.ScoreBreakdown]  `gorm:"type:jsonb"`
	Evaluations    datatypes.JSONType[entity.Evaluations]      `gorm:"type:jsonb"`
	Integrity      datatypes.JSONType[scoring.IntegrityResult] `gorm:"type:jsonb"`
	Interview      datatypes.JSONType[interviewModel.Snapshot] `gorm:"type:jsonb"`
	GeneratedAt    time.Time                                   `gorm:"not null"`
	CreatedAt      time.Time                                   `gorm:"autoCreateTime"`
	UpdatedAt      time.Time                                   `gorm:"autoUpdateTime"`
}

func (InterviewReport) TableName() string {
	return "interview_reports"
}
