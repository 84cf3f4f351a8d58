package implementation

import (
	"context"
	"errors"

	"intelliview-be/internal/entity"
	"intelliview-be/internal/mapper"
	"intelliview-be/internal/model"
	"intelliview-be/internal/repository/contract"
	"intelliview-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InterviewReportRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.InterviewReportMapper
}

func NewInterviewReportRepository(db *gorm.DB) contract.InterviewReportRepository {
	return &InterviewReportRepositoryImpl{
		db:     db,
		mapper: mapper.NewInterviewReportMapper(),
	}
}

func (r *InterviewReportRepositoryImpl) Upsert(ctx context.Context, report *entity.InterviewReport) error {
	m := r.mapper.ToModel(report)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"job_title", "final_score", "decision", "recommendation", "executive_summary",
				"breakdown", "evaluations", "integrity", "interview",
				"generated_at", "updated_at",
			}),
		}).Create(m).Error
		if err != nil {
			return err
		}

		// On conflict the returned id is the new one, not the stored row's
		var stored model.InterviewReport
		if err := tx.Where("session_id = ?", m.SessionId).First(&stored).Error; err != nil {
			return err
		}
		*report = *r.mapper.ToEntity(&stored)
		return nil
	})
}

func (r *InterviewReportRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.InterviewReport, error) {
	var m model.InterviewReport
	query := specification.Apply(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *InterviewReportRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.InterviewReport, error) {
	var models []*model.InterviewReport
	query := specification.Apply(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	reports := make([]*entity.InterviewReport, 0, len(models))
	for _, m := range models {
		reports = append(reports, r.mapper.ToEntity(m))
	}
	return reports, nil
}
