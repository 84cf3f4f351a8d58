package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"intelliview-be/internal/entity"
	"intelliview-be/internal/pkg/logger"
	interviewModel "intelliview-be/pkg/interview/model"
	"intelliview-be/pkg/interview/scoring"
	"intelliview-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedLLM answers by matching a marker in the prompt.
type scriptedLLM struct {
	answers map[string]string
	err     error
	prompts []string
}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	prompt := history[len(history)-1].Content
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	for marker, answer := range s.answers {
		if strings.Contains(prompt, marker) {
			return answer, nil
		}
	}
	return "", errors.New("unexpected prompt")
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

var sampleTranscript = []interviewModel.TranscriptEntry{
	{Role: interviewModel.RoleAI, Text: "Tell me about a hard bug."},
	{Role: interviewModel.RoleUser, Text: "I traced a race in our cache layer."},
	{Role: interviewModel.RoleSystem, Text: "Interview ended. Summary: ok"},
}

func TestEvaluateQA(t *testing.T) {
	model := &scriptedLLM{answers: map[string]string{
		"expert interview evaluator": "```json\n{\"score\": 78, \"strengths\": [\"depth\"], \"weaknesses\": [], \"per_question\": [{\"question\": \"bug\", \"score\": 80}]}\n```",
	}}
	svc := NewEvaluationService(model, logger.NewNopLogger())

	out := svc.EvaluateQA(context.Background(), sampleTranscript)

	assert.Equal(t, 78, out.Score)
	assert.Equal(t, []string{"depth"}, out.Strengths)
	require.Len(t, out.PerQuestion, 1)
	assert.Equal(t, 80, out.PerQuestion[0].Score)

	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "Interviewer: Tell me about a hard bug.")
	assert.Contains(t, model.prompts[0], "Candidate: I traced a race in our cache layer.")
	assert.NotContains(t, model.prompts[0], "Interview ended")
}

func TestEvaluateQAFallbacks(t *testing.T) {
	svc := NewEvaluationService(&scriptedLLM{err: errors.New("quota")}, logger.NewNopLogger())

	empty := svc.EvaluateQA(context.Background(), nil)
	assert.Equal(t, 0, empty.Score)
	assert.Equal(t, []string{"No Q&A data available"}, empty.Weaknesses)

	failed := svc.EvaluateQA(context.Background(), sampleTranscript)
	assert.Equal(t, 50, failed.Score)
	require.Len(t, failed.Weaknesses, 1)
	assert.Contains(t, failed.Weaknesses[0], "quota")
}

func TestEvaluateCode(t *testing.T) {
	model := &scriptedLLM{answers: map[string]string{
		"code review expert": `{"quality_score": 90, "feedback": "clean", "time_complexity": "O(n)"}`,
	}}
	svc := NewEvaluationService(model, logger.NewNopLogger())

	out := svc.EvaluateCode(context.Background(), &interviewModel.CodingSubmission{
		Code:     "def f(): pass",
		Language: "python",
		Results:  &interviewModel.CodeResults{ProblemTitle: "Two Sum", Passed: 2, Total: 3, Score: 2.0 / 3.0},
	})

	assert.True(t, out.Submitted)
	assert.Equal(t, 66, out.CorrectnessScore)
	assert.Equal(t, 90, out.QualityScore)
	// (66*60 + 90*40) / 100
	assert.Equal(t, 75, out.CombinedScore)
	assert.Equal(t, "O(n)", out.TimeComplexity)
	assert.Equal(t, "Unknown", out.SpaceComplexity)
	assert.Contains(t, model.prompts[0], "PROBLEM: Two Sum")
	assert.Contains(t, model.prompts[0], "TEST RESULTS: 2/3 test cases passed")
}

func TestEvaluateCodeFallbacks(t *testing.T) {
	svc := NewEvaluationService(&scriptedLLM{err: errors.New("down")}, logger.NewNopLogger())

	none := svc.EvaluateCode(context.Background(), nil)
	assert.False(t, none.Submitted)
	assert.Zero(t, none.CombinedScore)

	unjudged := svc.EvaluateCode(context.Background(), &interviewModel.CodingSubmission{Code: "x"})
	assert.True(t, unjudged.Submitted)
	assert.Equal(t, 0, unjudged.CorrectnessScore)
	assert.Equal(t, 50, unjudged.QualityScore)
	assert.Equal(t, 20, unjudged.CombinedScore)
}

func TestEvaluateCommunication(t *testing.T) {
	model := &scriptedLLM{answers: map[string]string{
		"communication skills": `{"score": 120, "clarity": 70, "confidence": 60, "professionalism": 80, "feedback": "fine"}`,
	}}
	svc := NewEvaluationService(model, logger.NewNopLogger())

	out := svc.EvaluateCommunication(context.Background(), sampleTranscript)
	assert.Equal(t, 100, out.Score)
	assert.Equal(t, 70, out.Clarity)
	assert.Contains(t, model.prompts[0], "I traced a race")
	assert.NotContains(t, model.prompts[0], "Tell me about a hard bug")

	silent := svc.EvaluateCommunication(context.Background(), sampleTranscript[:1])
	assert.Equal(t, 0, silent.Score)
	assert.Equal(t, "No candidate speech data available.", silent.Feedback)
}

func TestSummarizeFallsBackToTemplate(t *testing.T) {
	svc := NewEvaluationService(&scriptedLLM{err: errors.New("down")}, logger.NewNopLogger())

	text := svc.Summarize(context.Background(), "SRE",
		scoring.ScoreBreakdown{FinalScore: 64, Decision: scoring.DecisionBorderline},
		entity.Evaluations{}, scoring.IntegrityResult{Score: 100})

	assert.Equal(t, "Interview completed with a final score of 64/100. Decision: BORDERLINE.", text)
}
