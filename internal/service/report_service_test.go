package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"intelliview-be/internal/dto"
	"intelliview-be/internal/entity"
	"intelliview-be/internal/pkg/logger"
	"intelliview-be/internal/repository/specification"
	interviewModel "intelliview-be/pkg/interview/model"
	"intelliview-be/pkg/interview/scoring"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEvaluator struct {
	qa      int
	coding  entity.CodingEvaluation
	comm    int
	summary string
}

func (f *fakeEvaluator) EvaluateQA(ctx context.Context, transcript []interviewModel.TranscriptEntry) entity.QAEvaluation {
	return entity.QAEvaluation{Score: f.qa}
}

func (f *fakeEvaluator) EvaluateCode(ctx context.Context, submission *interviewModel.CodingSubmission) entity.CodingEvaluation {
	if submission == nil {
		return entity.CodingEvaluation{}
	}
	return f.coding
}

func (f *fakeEvaluator) EvaluateCommunication(ctx context.Context, transcript []interviewModel.TranscriptEntry) entity.CommunicationEvaluation {
	return entity.CommunicationEvaluation{Score: f.comm}
}

func (f *fakeEvaluator) Summarize(ctx context.Context, jobTitle string, breakdown scoring.ScoreBreakdown, evals entity.Evaluations, integrity scoring.IntegrityResult) string {
	return f.summary
}

// fakeReportRepo keys reports by session and only understands the session/decision specs.
type fakeReportRepo struct {
	mu        sync.Mutex
	reports   map[string]*entity.InterviewReport
	upsertErr error
	finds     int
	page      specification.Pagination
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{reports: map[string]*entity.InterviewReport{}}
}

func (r *fakeReportRepo) Upsert(ctx context.Context, report *entity.InterviewReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.reports[report.SessionId] = report
	return nil
}

func (r *fakeReportRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.InterviewReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	for _, spec := range specs {
		if s, ok := spec.(specification.BySessionID); ok {
			return r.reports[s.SessionID], nil
		}
	}
	return nil, nil
}

func (r *fakeReportRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.InterviewReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	decision := ""
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByDecision:
			decision = s.Decision
		case specification.Pagination:
			r.page = s
		}
	}
	out := []*entity.InterviewReport{}
	for _, report := range r.reports {
		if decision == "" || string(report.Decision) == decision {
			out = append(out, report)
		}
	}
	return out, nil
}

type fakeReportCache struct {
	mu      sync.Mutex
	items   map[string]*entity.InterviewReport
	getErr  error
	deleted []string
}

func newFakeReportCache() *fakeReportCache {
	return &fakeReportCache{items: map[string]*entity.InterviewReport{}}
}

func (c *fakeReportCache) Get(ctx context.Context, sessionID string) (*entity.InterviewReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.items[sessionID], nil
}

func (c *fakeReportCache) Set(ctx context.Context, report *entity.InterviewReport) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[report.SessionId] = report
	return nil
}

func (c *fakeReportCache) Delete(ctx context.Context, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, sessionID)
	c.deleted = append(c.deleted, sessionID)
	return nil
}

type fakeSnapshots map[string]interviewModel.Snapshot

func (f fakeSnapshots) Get(sessionID string) (interviewModel.Snapshot, bool) {
	s, ok := f[sessionID]
	return s, ok
}

type recordingPublisher struct {
	mu        sync.Mutex
	generated []string
	alerts    []string
}

func (p *recordingPublisher) PublishInterviewStarted(ctx context.Context, sessionID, jobTitle string) {}

func (p *recordingPublisher) PublishInterviewEnded(ctx context.Context, snapshot interviewModel.Snapshot, reason string) {
}

func (p *recordingPublisher) PublishProctoringAlert(ctx context.Context, sessionID string, analysis interviewModel.VisionAnalysis) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, sessionID)
}

func (p *recordingPublisher) PublishReportGenerated(ctx context.Context, sessionID string, finalScore float64, decision string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generated = append(p.generated, sessionID+":"+decision)
}

type reportFixture struct {
	svc       IReportService
	evaluator *fakeEvaluator
	repo      *fakeReportRepo
	cache     *fakeReportCache
	snapshots fakeSnapshots
	publisher *recordingPublisher
}

func newReportFixture() *reportFixture {
	f := &reportFixture{
		evaluator: &fakeEvaluator{qa: 80, comm: 70, summary: "Solid candidate."},
		repo:      newFakeReportRepo(),
		cache:     newFakeReportCache(),
		snapshots: fakeSnapshots{},
		publisher: &recordingPublisher{},
	}
	f.svc = NewReportService(f.evaluator, f.repo, f.cache, f.snapshots, f.publisher, logger.NewNopLogger())
	return f
}

func TestGenerateWithoutCodingSubmission(t *testing.T) {
	f := newReportFixture()

	report, err := f.svc.Generate(context.Background(), interviewModel.Snapshot{SessionID: "s1", JobTitle: "Backend"})
	require.NoError(t, err)

	// 80*40 + 0*30 + 100*20 + 70*10 = 5900
	assert.Equal(t, 59, report.FinalScore)
	assert.Equal(t, scoring.DecisionBorderline, report.Decision)
	assert.Equal(t, scoring.RecommendBorderline, report.Recommendation)
	assert.Equal(t, 100, report.Integrity.Score)
	assert.Equal(t, "Solid candidate.", report.ExecutiveSummary)
	assert.False(t, report.Evaluations.Coding.Submitted)
	assert.Equal(t, "Backend", report.Interview.JobTitle)

	assert.Same(t, report, f.repo.reports["s1"])
	assert.Same(t, report, f.cache.items["s1"])
	assert.Equal(t, []string{"s1:BORDERLINE"}, f.publisher.generated)
}

func TestGenerateWithCodingAndViolations(t *testing.T) {
	f := newReportFixture()
	f.evaluator.coding = entity.CodingEvaluation{Submitted: true, CombinedScore: 90}

	snapshot := interviewModel.Snapshot{
		SessionID:    "s2",
		CodingResult: &interviewModel.CodingSubmission{Code: "x"},
		ProctoringEvents: []interviewModel.ProctoringEvent{
			{Source: interviewModel.SourceBrowser, Type: "fullscreen"},
			{Source: interviewModel.SourceBrowser, Type: "visibility"},
		},
	}
	report, err := f.svc.Generate(context.Background(), snapshot)
	require.NoError(t, err)

	// integrity 100-10-5 = 85; 80*40 + 90*30 + 85*20 + 70*10 = 8300
	assert.Equal(t, 85, report.Integrity.Score)
	assert.Equal(t, 83, report.FinalScore)
	assert.Equal(t, scoring.DecisionPass, report.Decision)
}

func TestGeneratePersistenceFailure(t *testing.T) {
	f := newReportFixture()
	f.repo.upsertErr = errors.New("db down")

	_, err := f.svc.Generate(context.Background(), interviewModel.Snapshot{SessionID: "s3"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.Empty(t, f.cache.items)
	assert.Empty(t, f.publisher.generated)
}

func TestGenerateAbortsWhenCancelled(t *testing.T) {
	f := newReportFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Generate(ctx, interviewModel.Snapshot{SessionID: "s5"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.repo.reports)
	assert.Empty(t, f.cache.items)
	assert.Empty(t, f.publisher.generated)
}

func TestGetReportReadsThroughCache(t *testing.T) {
	f := newReportFixture()
	f.repo.reports["s4"] = &entity.InterviewReport{SessionId: "s4", FinalScore: 72, Decision: scoring.DecisionPass}

	res, err := f.svc.GetReport(context.Background(), "s4")
	require.NoError(t, err)
	assert.Equal(t, 72, res.FinalScore)
	assert.Equal(t, 1, f.repo.finds)
	require.Contains(t, f.cache.items, "s4")

	_, err = f.svc.GetReport(context.Background(), "s4")
	require.NoError(t, err)
	assert.Equal(t, 1, f.repo.finds, "second read served from cache")
}

func TestGetReportCacheErrorFallsBackToRepo(t *testing.T) {
	f := newReportFixture()
	f.cache.getErr = errors.New("redis down")
	f.repo.reports["s5"] = &entity.InterviewReport{SessionId: "s5", FinalScore: 40, Decision: scoring.DecisionFail}

	res, err := f.svc.GetReport(context.Background(), "s5")
	require.NoError(t, err)
	assert.Equal(t, scoring.DecisionFail, res.Decision)
}

func TestGetReportNotFound(t *testing.T) {
	f := newReportFixture()

	_, err := f.svc.GetReport(context.Background(), "missing")
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusNotFound, fe.Code)
}

func TestListReportsFiltersDecision(t *testing.T) {
	f := newReportFixture()
	f.repo.reports["a"] = &entity.InterviewReport{SessionId: "a", Decision: scoring.DecisionPass}
	f.repo.reports["b"] = &entity.InterviewReport{SessionId: "b", Decision: scoring.DecisionFail}

	all, err := f.svc.ListReports(context.Background(), &dto.ListReportsRequest{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, specification.Pagination{Limit: 20}, f.repo.page)

	passed, err := f.svc.ListReports(context.Background(), &dto.ListReportsRequest{Decision: "pass", Limit: 5, Offset: 5})
	require.NoError(t, err)
	require.Len(t, passed, 1)
	assert.Equal(t, "a", passed[0].SessionId)
	assert.Equal(t, specification.Pagination{Limit: 5, Offset: 5}, f.repo.page)
}

func TestRegenerate(t *testing.T) {
	t.Run("uses retained snapshot", func(t *testing.T) {
		f := newReportFixture()
		f.snapshots["s6"] = interviewModel.Snapshot{SessionID: "s6", JobTitle: "SRE"}
		f.cache.items["s6"] = &entity.InterviewReport{SessionId: "s6", FinalScore: 1}

		res, err := f.svc.Regenerate(context.Background(), "s6")
		require.NoError(t, err)
		assert.Equal(t, 59, res.FinalScore)
		assert.Equal(t, []string{"s6"}, f.cache.deleted)
		assert.Equal(t, 59, f.cache.items["s6"].FinalScore)
	})

	t.Run("falls back to stored snapshot", func(t *testing.T) {
		f := newReportFixture()
		f.repo.reports["s7"] = &entity.InterviewReport{
			SessionId: "s7",
			Interview: interviewModel.Snapshot{SessionID: "s7", JobTitle: "Data"},
		}

		res, err := f.svc.Regenerate(context.Background(), "s7")
		require.NoError(t, err)
		assert.Equal(t, "Data", res.JobTitle)
	})

	t.Run("unknown session", func(t *testing.T) {
		f := newReportFixture()

		_, err := f.svc.Regenerate(context.Background(), "nope")
		var fe *fiber.Error
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, fiber.StatusNotFound, fe.Code)
	})
}
