package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"intelliview-be/pkg/llm"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.0-flash"

	RoleUser  = "user"
	RoleModel = "model"
)

type GeminiProvider struct {
	BaseURL   string
	ModelName string
	APIKey    string
	Client    *http.Client
}

var _ llm.LLMProvider = &GeminiProvider{}

func NewGeminiProvider(apiKey, modelName string) *GeminiProvider {
	if modelName == "" {
		modelName = DefaultModel
	}
	return &GeminiProvider{
		BaseURL:   DefaultBaseURL,
		ModelName: modelName,
		APIKey:    apiKey,
		Client:    &http.Client{Timeout: 60 * time.Second},
	}
}

// Part is one piece of a turn: text or inline media.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// InlineData carries base64 media such as a JPEG webcam frame.
type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type chatContent struct {
	Parts []Part `json:"parts"`
	Role  string `json:"role,omitempty"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type chatRequest struct {
	Contents          []chatContent    `json:"contents"`
	SystemInstruction *chatContent     `json:"systemInstruction,omitempty"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type chatResponse struct {
	Candidates []struct {
		Content chatContent `json:"content"`
	} `json:"candidates"`
}

func configFor(options llm.Options) generationConfig {
	cfg := generationConfig{
		Temperature:     options.Temperature,
		MaxOutputTokens: options.MaxTokens,
	}
	if options.JSON {
		cfg.ResponseMimeType = "application/json"
	}
	return cfg
}

func textPart(text string) []Part { return []Part{{Text: text}} }

func (g *GeminiProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.Apply(llm.Options{Temperature: 0.1, Model: g.ModelName}, opts...)

	payload := chatRequest{GenerationConfig: configFor(options)}
	for _, msg := range history {
		switch msg.Role {
		case "system":
			payload.SystemInstruction = &chatContent{Parts: textPart(msg.Content)}
		case "assistant", RoleModel:
			payload.Contents = append(payload.Contents, chatContent{Role: RoleModel, Parts: textPart(msg.Content)})
		default:
			payload.Contents = append(payload.Contents, chatContent{Role: RoleUser, Parts: textPart(msg.Content)})
		}
	}
	return g.generateContent(ctx, options.Model, payload)
}

func (g *GeminiProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return g.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

// GenerateWithMedia sends a prompt together with one inline media part in a single user turn.
func (g *GeminiProvider) GenerateWithMedia(ctx context.Context, prompt string, media InlineData, opts ...llm.Option) (string, error) {
	options := llm.Apply(llm.Options{Temperature: 0.1, Model: g.ModelName}, opts...)

	payload := chatRequest{
		Contents: []chatContent{{
			Role:  RoleUser,
			Parts: []Part{{Text: prompt}, {InlineData: &media}},
		}},
		GenerationConfig: configFor(options),
	}
	return g.generateContent(ctx, options.Model, payload)
}

func (g *GeminiProvider) generateContent(ctx context.Context, modelName string, payload chatRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(g.BaseURL, "/"), modelName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-goog-api-key", g.APIKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := g.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	// The body can echo request details; keep it out of the error.
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini error: status %d", res.StatusCode)
	}

	var geminiRes chatResponse
	if err := json.Unmarshal(resBody, &geminiRes); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(geminiRes.Candidates) == 0 || len(geminiRes.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini returned no candidates")
	}
	return geminiRes.Candidates[0].Content.Parts[0].Text, nil
}
