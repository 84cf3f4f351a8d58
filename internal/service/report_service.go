package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"intelliview-be/internal/dto"
	"intelliview-be/internal/entity"
	"intelliview-be/internal/pkg/logger"
	"intelliview-be/internal/repository/contract"
	"intelliview-be/internal/repository/specification"
	interviewEvents "intelliview-be/pkg/interview/events"
	interviewModel "intelliview-be/pkg/interview/model"
	"intelliview-be/pkg/interview/scoring"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const defaultReportPageSize = 20

// ReportCacheStore is the read-through cache in front of the report table.
type ReportCacheStore interface {
	Get(ctx context.Context, sessionID string) (*entity.InterviewReport, error)
	Set(ctx context.Context, report *entity.InterviewReport) error
	Delete(ctx context.Context, sessionID string) error
}

// SnapshotSource returns the finished snapshot of a recently ended session.
type SnapshotSource interface {
	Get(sessionID string) (interviewModel.Snapshot, bool)
}

type IReportService interface {
	Generate(ctx context.Context, snapshot interviewModel.Snapshot) (*entity.InterviewReport, error)
	GetReport(ctx context.Context, sessionID string) (*dto.InterviewReportResponse, error)
	GetReportMarkdown(ctx context.Context, sessionID string) (string, error)
	ListReports(ctx context.Context, req *dto.ListReportsRequest) ([]*dto.InterviewReportResponse, error)
	Regenerate(ctx context.Context, sessionID string) (*dto.InterviewReportResponse, error)
}

type reportService struct {
	evaluator IEvaluationService
	repo      contract.InterviewReportRepository
	cache     ReportCacheStore
	snapshots SnapshotSource
	publisher interviewEvents.Publisher
	logger    logger.ILogger
	now       func() time.Time
}

func NewReportService(
	evaluator IEvaluationService,
	repo contract.InterviewReportRepository,
	cache ReportCacheStore,
	snapshots SnapshotSource,
	publisher interviewEvents.Publisher,
	log logger.ILogger,
) IReportService {
	return &reportService{
		evaluator: evaluator,
		repo:      repo,
		cache:     cache,
		snapshots: snapshots,
		publisher: publisher,
		logger:    log,
		now:       time.Now,
	}
}

// Generate scores a finished interview and persists the report. Evaluator
// failures degrade to fallback scores. A cancelled ctx aborts before anything
// is written, so fallback scores from an interrupted run never reach the store.
func (s *reportService) Generate(ctx context.Context, snapshot interviewModel.Snapshot) (*entity.InterviewReport, error) {
	ctx, span := otel.Tracer("intelliview/report").Start(ctx, "report.Generate")
	defer span.End()
	span.SetAttributes(attribute.String("interview.session_id", snapshot.SessionID))

	var evals entity.Evaluations
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		evals.QA = s.evaluator.EvaluateQA(gctx, snapshot.Transcript)
		return gctx.Err()
	})
	g.Go(func() error {
		evals.Coding = s.evaluator.EvaluateCode(gctx, snapshot.CodingResult)
		return gctx.Err()
	})
	g.Go(func() error {
		evals.Communication = s.evaluator.EvaluateCommunication(gctx, snapshot.Transcript)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("evaluate interview %s: %w", snapshot.SessionID, err)
	}

	integrity := scoring.ScoreIntegrity(snapshot.ProctoringEvents, snapshot.VisionAnalyses)

	inputs := scoring.Inputs{
		QA:            scoring.Score(float64(evals.QA.Score)),
		Integrity:     scoring.Score(float64(integrity.Score)),
		Communication: scoring.Score(float64(evals.Communication.Score)),
	}
	if evals.Coding.Submitted {
		inputs.Coding = scoring.Score(float64(evals.Coding.CombinedScore))
	}
	breakdown := scoring.Decide(inputs)

	report := &entity.InterviewReport{
		Id:               uuid.New(),
		SessionId:        snapshot.SessionID,
		JobTitle:         snapshot.JobTitle,
		FinalScore:       breakdown.FinalScore,
		Decision:         breakdown.Decision,
		Recommendation:   breakdown.Recommendation,
		ExecutiveSummary: s.evaluator.Summarize(ctx, snapshot.JobTitle, breakdown, evals, integrity),
		Breakdown:        breakdown,
		Evaluations:      evals,
		Integrity:        integrity,
		Interview:        snapshot,
		GeneratedAt:      s.now().UTC(),
	}

	if err := s.repo.Upsert(ctx, report); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("persist report for %s: %w", snapshot.SessionID, err)
	}
	if err := s.cache.Set(ctx, report); err != nil {
		s.logger.Warn("REPORT", "Failed to cache report", map[string]interface{}{
			"session_id": snapshot.SessionID,
			"error":      err.Error(),
		})
	}

	span.SetAttributes(
		attribute.Int("report.final_score", report.FinalScore),
		attribute.String("report.decision", string(report.Decision)),
	)
	s.logger.Info("REPORT", "Report generated", map[string]interface{}{
		"session_id":  report.SessionId,
		"final_score": report.FinalScore,
		"decision":    string(report.Decision),
	})
	s.publisher.PublishReportGenerated(ctx, report.SessionId, float64(report.FinalScore), string(report.Decision))
	return report, nil
}

func (s *reportService) find(ctx context.Context, sessionID string) (*entity.InterviewReport, error) {
	cached, err := s.cache.Get(ctx, sessionID)
	if err != nil {
		s.logger.Warn("REPORT", "Report cache unavailable", map[string]interface{}{"error": err.Error()})
	}
	if cached != nil {
		return cached, nil
	}

	report, err := s.repo.FindOne(ctx, specification.BySessionID{SessionID: sessionID})
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Report not found. The interview may still be processing.")
	}
	if err := s.cache.Set(ctx, report); err != nil {
		s.logger.Warn("REPORT", "Failed to cache report", map[string]interface{}{"error": err.Error()})
	}
	return report, nil
}

func (s *reportService) GetReport(ctx context.Context, sessionID string) (*dto.InterviewReportResponse, error) {
	report, err := s.find(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return dto.NewInterviewReportResponse(report), nil
}

func (s *reportService) GetReportMarkdown(ctx context.Context, sessionID string) (string, error) {
	report, err := s.find(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return RenderReportMarkdown(report)
}

func (s *reportService) ListReports(ctx context.Context, req *dto.ListReportsRequest) ([]*dto.InterviewReportResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultReportPageSize
	}

	specs := []specification.Specification{specification.OrderBy{Field: "generated_at", Desc: true}}
	if req.Decision != "" {
		specs = append(specs, specification.ByDecision{Decision: strings.ToUpper(req.Decision)})
	}
	specs = append(specs, specification.Pagination{Limit: limit, Offset: req.Offset})

	reports, err := s.repo.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.InterviewReportResponse, 0, len(reports))
	for _, r := range reports {
		res = append(res, dto.NewInterviewReportResponse(r))
	}
	return res, nil
}

// Regenerate re-scores an interview from its retained snapshot, falling back to
// the snapshot embedded in the stored report once the in-memory copy expired.
func (s *reportService) Regenerate(ctx context.Context, sessionID string) (*dto.InterviewReportResponse, error) {
	snapshot, ok := s.snapshots.Get(sessionID)
	if !ok {
		stored, err := s.repo.FindOne(ctx, specification.BySessionID{SessionID: sessionID})
		if err != nil {
			return nil, err
		}
		if stored == nil {
			return nil, fiber.NewError(fiber.StatusNotFound, "Session not found.")
		}
		snapshot = stored.Interview
	}

	if err := s.cache.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("REPORT", "Failed to evict cached report", map[string]interface{}{"error": err.Error()})
	}
	report, err := s.Generate(ctx, snapshot)
	if err != nil {
		return nil, err
	}
	return dto.NewInterviewReportResponse(report), nil
}
