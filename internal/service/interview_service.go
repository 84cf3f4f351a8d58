package service

import (
	"context"
	"strings"

	"intelliview-be/internal/dto"
	"intelliview-be/internal/pkg/logger"
	interviewEvents "intelliview-be/pkg/interview/events"
	interviewModel "intelliview-be/pkg/interview/model"
	"intelliview-be/pkg/interview/session"
	"intelliview-be/pkg/interview/vision"
	"intelliview-be/pkg/judge"

	"github.com/gofiber/fiber/v2"
)

// LiveSessions looks up sessions that are still connected.
type LiveSessions interface {
	Get(sessionID string) (*session.Session, bool)
	Count() int
}

// FinishedSnapshots gives REST calls access to sessions that already ended.
type FinishedSnapshots interface {
	Update(sessionID string, fn func(*interviewModel.Snapshot)) bool
}

type IInterviewService interface {
	GetCodingProblem(ctx context.Context, req *dto.CodingProblemRequest) (*dto.CodingProblemResponse, error)
	SubmitCode(ctx context.Context, req *dto.SubmitCodeRequest) (*interviewModel.CodeResults, error)
	AnalyzeFrame(ctx context.Context, req *dto.AnalyzeFrameRequest) (*dto.AnalyzeFrameResponse, error)
	Health(ctx context.Context) *dto.HealthResponse
}

type interviewService struct {
	bank      *judge.Bank
	executor  judge.Executor
	analyzer  vision.Analyzer
	sessions  LiveSessions
	snapshots FinishedSnapshots
	publisher interviewEvents.Publisher
	logger    logger.ILogger
}

func NewInterviewService(
	bank *judge.Bank,
	executor judge.Executor,
	analyzer vision.Analyzer,
	sessions LiveSessions,
	snapshots FinishedSnapshots,
	publisher interviewEvents.Publisher,
	log logger.ILogger,
) IInterviewService {
	return &interviewService{
		bank:      bank,
		executor:  executor,
		analyzer:  analyzer,
		sessions:  sessions,
		snapshots: snapshots,
		publisher: publisher,
		logger:    log,
	}
}

func (s *interviewService) GetCodingProblem(ctx context.Context, req *dto.CodingProblemRequest) (*dto.CodingProblemResponse, error) {
	problem, ok := s.bank.Find(orDefault(req.Difficulty, judge.DifficultyMedium), orDefault(req.Topic, "arrays"))
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, "No problem found for the given difficulty and topic.")
	}
	return &dto.CodingProblemResponse{
		Title:           problem.Title,
		Description:     problem.Description,
		StarterCode:     problem.StarterCode,
		LanguageOptions: problem.Languages(),
	}, nil
}

// SubmitCode judges the code and attaches the results to the live session, or
// to the retained snapshot when the interview has already ended.
func (s *interviewService) SubmitCode(ctx context.Context, req *dto.SubmitCodeRequest) (*interviewModel.CodeResults, error) {
	language := strings.ToLower(orDefault(req.Language, "python"))
	problem, ok := s.bank.Find(orDefault(req.Difficulty, judge.DifficultyMedium), orDefault(req.Topic, "arrays"))
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, "Problem not found.")
	}

	results := s.executor.Execute(ctx, req.Code, language, problem)

	if req.SessionId == "" {
		return &results, nil
	}
	if sess, live := s.sessions.Get(req.SessionId); live {
		if err := sess.AttachCodeResults(req.Code, language, results); err == nil {
			return &results, nil
		}
	}

	attached := s.snapshots.Update(req.SessionId, func(snap *interviewModel.Snapshot) {
		if snap.CodingResult == nil || snap.CodingResult.Code != req.Code {
			snap.CodingResult = &interviewModel.CodingSubmission{Code: req.Code, Language: language}
		}
		r := results
		snap.CodingResult.Results = &r
	})
	if !attached {
		s.logger.Debug("INTERVIEW", "Code results not attached to any session", map[string]interface{}{"session_id": req.SessionId})
	}
	return &results, nil
}

func (s *interviewService) AnalyzeFrame(ctx context.Context, req *dto.AnalyzeFrameRequest) (*dto.AnalyzeFrameResponse, error) {
	analysis := s.analyzer.Analyze(ctx, req.Frame)

	if sess, live := s.sessions.Get(req.SessionId); live {
		if err := sess.RecordAnalysis(analysis); err == nil && analysis.AnalysisSuccess && analysis.OverallSuspicionLevel.IsAlert() {
			s.publisher.PublishProctoringAlert(ctx, req.SessionId, analysis)
		}
	}

	return &dto.AnalyzeFrameResponse{
		SuspicionLevel:  analysis.OverallSuspicionLevel,
		Summary:         analysis.Summary,
		AnalysisSuccess: analysis.AnalysisSuccess,
	}, nil
}

func (s *interviewService) Health(ctx context.Context) *dto.HealthResponse {
	return &dto.HealthResponse{
		Status:         "ok",
		Service:        "intelliview",
		ActiveSessions: s.sessions.Count(),
	}
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
