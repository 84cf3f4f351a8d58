package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence("  {\"a\":1}  "))
}

type stubProvider struct {
	answer string
	err    error
	opts   Options
}

func (s *stubProvider) Chat(ctx context.Context, history []Message, opts ...Option) (string, error) {
	s.opts = Apply(Options{}, opts...)
	return s.answer, s.err
}

func (s *stubProvider) Generate(ctx context.Context, prompt string, opts ...Option) (string, error) {
	return s.Chat(ctx, []Message{{Role: "user", Content: prompt}}, opts...)
}

func TestGenerateJSON(t *testing.T) {
	p := &stubProvider{answer: "```json\n{\"score\": 82}\n```"}

	var out struct {
		Score int `json:"score"`
	}
	require.NoError(t, GenerateJSON(context.Background(), p, "rate", &out, WithMaxTokens(512)))
	assert.Equal(t, 82, out.Score)
	assert.True(t, p.opts.JSON)
	assert.Equal(t, 512, p.opts.MaxTokens)
}

func TestGenerateJSONErrors(t *testing.T) {
	var out map[string]interface{}

	err := GenerateJSON(context.Background(), &stubProvider{err: errors.New("quota")}, "p", &out)
	assert.EqualError(t, err, "quota")

	err = GenerateJSON(context.Background(), &stubProvider{answer: "not json"}, "p", &out)
	assert.ErrorContains(t, err, "parse model answer")
}
