package contract

import (
	"context"

	"intelliview-be/internal/entity"
	"intelliview-be/internal/repository/specification"
)

type InterviewReportRepository interface {
	// Upsert inserts the report or replaces the one already stored for its session.
	Upsert(ctx context.Context, report *entity.InterviewReport) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.InterviewReport, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.InterviewReport, error)
}
