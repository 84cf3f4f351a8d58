package service

import (
	"context"
	"fmt"
	"strings"

	"intelliview-be/internal/entity"
	"intelliview-be/internal/pkg/logger"
	interviewModel "intelliview-be/pkg/interview/model"
	"intelliview-be/pkg/interview/scoring"
	"intelliview-be/pkg/llm"
)

// Scores used when the model cannot be reached or answers garbage.
const (
	fallbackEvaluationScore = 50

	correctnessPercent = 60
	qualityPercent     = 40
)

type IEvaluationService interface {
	EvaluateQA(ctx context.Context, transcript []interviewModel.TranscriptEntry) entity.QAEvaluation
	EvaluateCode(ctx context.Context, submission *interviewModel.CodingSubmission) entity.CodingEvaluation
	EvaluateCommunication(ctx context.Context, transcript []interviewModel.TranscriptEntry) entity.CommunicationEvaluation
	Summarize(ctx context.Context, jobTitle string, breakdown scoring.ScoreBreakdown, evals entity.Evaluations, integrity scoring.IntegrityResult) string
}

type evaluationService struct {
	llm    llm.LLMProvider
	logger logger.ILogger
}

func NewEvaluationService(provider llm.LLMProvider, log logger.ILogger) IEvaluationService {
	return &evaluationService{llm: provider, logger: log}
}

const qaPrompt = `You are an expert interview evaluator. Analyze the following interview transcript
and evaluate the candidate's performance.

TRANSCRIPT:
%s

Evaluate and return a JSON object with this exact structure:
{
    "score": <int 0-100>,
    "strengths": ["strength1", "strength2"],
    "weaknesses": ["weakness1", "weakness2"],
    "per_question": [
        {
            "question": "The question asked",
            "answer_summary": "Brief summary of candidate's answer",
            "score": <int 0-100>,
            "feedback": "Specific feedback"
        }
    ]
}

Scoring criteria:
- Relevance and depth of answers (40%%)
- Technical accuracy (30%%)
- Use of specific examples (STAR method) (20%%)
- Clarity of explanation (10%%)

Return ONLY valid JSON, no markdown formatting.`

const codePrompt = `You are a code review expert. Evaluate the following code submission.

PROBLEM: %s
TEST RESULTS: %d/%d test cases passed

CODE:
` + "```" + `
%s
` + "```" + `

Evaluate and return a JSON object:
{
    "quality_score": <int 0-100>,
    "feedback": "Detailed feedback on code quality",
    "time_complexity": "O(n) or similar",
    "space_complexity": "O(n) or similar"
}

Quality criteria:
- Code readability and style (30%%)
- Algorithm efficiency (40%%)
- Best practices and edge case handling (30%%)

Return ONLY valid JSON, no markdown formatting.`

const communicationPrompt = `Evaluate the communication skills of this interview candidate based on their responses.

CANDIDATE'S RESPONSES:
%s

Return a JSON object:
{
    "score": <int 0-100>,
    "clarity": <int 0-100>,
    "confidence": <int 0-100>,
    "professionalism": <int 0-100>,
    "feedback": "Brief feedback on communication"
}

Return ONLY valid JSON, no markdown formatting.`

const summaryPrompt = `Write a concise executive summary (3-4 sentences) for an HR interview report.

Data:
- Position: %s
- Final Score: %d/100
- Decision: %s
- Q&A Score: %d/100
- Coding Score: %d/100
- Integrity Score: %d/100
- Communication Score: %d/100
- Q&A Strengths: %s
- Q&A Weaknesses: %s
- Integrity Flags: %s

Write in a professional, objective tone suitable for an HR manager.
Return ONLY the summary text, no formatting.`

func (s *evaluationService) EvaluateQA(ctx context.Context, transcript []interviewModel.TranscriptEntry) entity.QAEvaluation {
	var b strings.Builder
	for _, entry := range transcript {
		switch entry.Role {
		case interviewModel.RoleAI:
			fmt.Fprintf(&b, "Interviewer: %s\n\n", entry.Text)
		case interviewModel.RoleUser:
			fmt.Fprintf(&b, "Candidate: %s\n\n", entry.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return entity.QAEvaluation{
			Strengths:   []string{},
			Weaknesses:  []string{"No Q&A data available"},
			PerQuestion: []entity.QuestionEvaluation{},
		}
	}

	var out entity.QAEvaluation
	err := llm.GenerateJSON(ctx, s.llm, fmt.Sprintf(qaPrompt, b.String()), &out,
		llm.WithTemperature(0.1), llm.WithMaxTokens(2048))
	if err != nil {
		s.logger.Warn("EVALUATION", "Q&A evaluation failed", map[string]interface{}{"error": err.Error()})
		return entity.QAEvaluation{
			Score:       fallbackEvaluationScore,
			Strengths:   []string{},
			Weaknesses:  []string{"Evaluation error: " + err.Error()},
			PerQuestion: []entity.QuestionEvaluation{},
		}
	}
	out.Score = clampScore(out.Score)
	return out
}

// EvaluateCode combines judge correctness with a model review of the source.
// A missing submission scores zero and is marked as not submitted.
func (s *evaluationService) EvaluateCode(ctx context.Context, submission *interviewModel.CodingSubmission) entity.CodingEvaluation {
	if submission == nil || strings.TrimSpace(submission.Code) == "" {
		return entity.CodingEvaluation{
			Feedback:        "No code was submitted.",
			TimeComplexity:  "Unknown",
			SpaceComplexity: "Unknown",
		}
	}

	var (
		correctness   int
		passed, total int
		title         = "Unknown problem"
	)
	if res := submission.Results; res != nil {
		correctness = int(res.Score * 100)
		passed, total = res.Passed, res.Total
		if res.ProblemTitle != "" {
			title = res.ProblemTitle
		}
	}

	var review struct {
		QualityScore    int    `json:"quality_score"`
		Feedback        string `json:"feedback"`
		TimeComplexity  string `json:"time_complexity"`
		SpaceComplexity string `json:"space_complexity"`
	}
	err := llm.GenerateJSON(ctx, s.llm, fmt.Sprintf(codePrompt, title, passed, total, submission.Code), &review,
		llm.WithTemperature(0.1), llm.WithMaxTokens(1024))
	if err != nil {
		s.logger.Warn("EVALUATION", "Code quality evaluation failed", map[string]interface{}{"error": err.Error()})
		return entity.CodingEvaluation{
			Submitted:        true,
			CorrectnessScore: correctness,
			QualityScore:     fallbackEvaluationScore,
			CombinedScore:    combineCodingScore(correctness, fallbackEvaluationScore),
			Feedback:         "Quality evaluation error: " + err.Error(),
			TimeComplexity:   "Unknown",
			SpaceComplexity:  "Unknown",
		}
	}

	quality := clampScore(review.QualityScore)
	return entity.CodingEvaluation{
		Submitted:        true,
		CorrectnessScore: correctness,
		QualityScore:     quality,
		CombinedScore:    combineCodingScore(correctness, quality),
		Feedback:         review.Feedback,
		TimeComplexity:   orUnknown(review.TimeComplexity),
		SpaceComplexity:  orUnknown(review.SpaceComplexity),
	}
}

func (s *evaluationService) EvaluateCommunication(ctx context.Context, transcript []interviewModel.TranscriptEntry) entity.CommunicationEvaluation {
	lines := make([]string, 0, len(transcript))
	for _, entry := range transcript {
		if entry.Role == interviewModel.RoleUser {
			lines = append(lines, entry.Text)
		}
	}
	text := strings.Join(lines, "\n")
	if strings.TrimSpace(text) == "" {
		return entity.CommunicationEvaluation{Feedback: "No candidate speech data available."}
	}

	var out entity.CommunicationEvaluation
	err := llm.GenerateJSON(ctx, s.llm, fmt.Sprintf(communicationPrompt, text), &out,
		llm.WithTemperature(0.1), llm.WithMaxTokens(512))
	if err != nil {
		s.logger.Warn("EVALUATION", "Communication evaluation failed", map[string]interface{}{"error": err.Error()})
		return entity.CommunicationEvaluation{
			Score:           fallbackEvaluationScore,
			Clarity:         fallbackEvaluationScore,
			Confidence:      fallbackEvaluationScore,
			Professionalism: fallbackEvaluationScore,
			Feedback:        "Communication evaluation error: " + err.Error(),
		}
	}
	out.Score = clampScore(out.Score)
	return out
}

func (s *evaluationService) Summarize(ctx context.Context, jobTitle string, breakdown scoring.ScoreBreakdown, evals entity.Evaluations, integrity scoring.IntegrityResult) string {
	prompt := fmt.Sprintf(summaryPrompt,
		jobTitle,
		breakdown.FinalScore,
		breakdown.Decision,
		evals.QA.Score,
		evals.Coding.CombinedScore,
		integrity.Score,
		evals.Communication.Score,
		strings.Join(evals.QA.Strengths, ", "),
		strings.Join(evals.QA.Weaknesses, ", "),
		strings.Join(integrity.CriticalFlags, ", "),
	)

	text, err := s.llm.Generate(ctx, prompt, llm.WithTemperature(0.3), llm.WithMaxTokens(300))
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			s.logger.Warn("EVALUATION", "Executive summary failed", map[string]interface{}{"error": err.Error()})
		}
		return fmt.Sprintf("Interview completed with a final score of %d/100. Decision: %s.", breakdown.FinalScore, breakdown.Decision)
	}
	return strings.TrimSpace(text)
}

func combineCodingScore(correctness, quality int) int {
	return (correctness*correctnessPercent + quality*qualityPercent) / 100
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
