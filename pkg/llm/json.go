package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// StripCodeFence removes a surrounding ``` or ```json fence from model output.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if i := strings.Index(text, "\n"); i >= 0 {
		text = text[i+1:]
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// DecodeJSON unmarshals a model answer into v, tolerating markdown fences.
func DecodeJSON(text string, v interface{}) error {
	clean := StripCodeFence(text)
	if err := json.Unmarshal([]byte(clean), v); err != nil {
		return fmt.Errorf("parse model answer: %w", err)
	}
	return nil
}

// GenerateJSON runs a single-prompt generation and decodes the answer into v.
func GenerateJSON(ctx context.Context, p LLMProvider, prompt string, v interface{}, opts ...Option) error {
	text, err := p.Generate(ctx, prompt, append([]Option{WithJSON()}, opts...)...)
	if err != nil {
		return err
	}
	return DecodeJSON(text, v)
}
