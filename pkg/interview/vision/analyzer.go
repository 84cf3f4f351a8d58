package vision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"intelliview-be/pkg/interview/model"
	"intelliview-be/pkg/llm"
	"intelliview-be/pkg/llm/gemini"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const frameTimeout = 30 * time.Second

const analysisPrompt = `You are an AI proctoring system analyzing a webcam frame from a remote technical interview.

Analyze this image carefully and report in JSON format:

{
  "devices_detected": {"found": true/false, "description": "Electronic devices (phones, earphones, tablets, secondary monitors)", "confidence": 0.0-1.0},
  "other_people": {"found": true/false, "description": "Any other people visible", "confidence": 0.0-1.0},
  "notes_or_screens": {"found": true/false, "description": "Notes, books, papers, or secondary screens", "confidence": 0.0-1.0},
  "reading_off_screen": {"found": true/false, "description": "Whether the person appears to be reading from something off-camera", "confidence": 0.0-1.0},
  "face_visible": true/false,
  "overall_suspicion_level": "none" | "low" | "medium" | "high" | "critical",
  "summary": "One-sentence summary of findings"
}

IMPORTANT:
- Only report what you can actually see with reasonable confidence.
- Do not make assumptions about things outside the frame.
- A confidence below 0.3 should be treated as "not found".
- Return ONLY valid JSON, no markdown formatting.`

// AnalysisError describes why a frame could not be analyzed. It never leaves the
// analyzer; it is folded into a degraded VisionAnalysis.
type AnalysisError struct {
	Stage string
	Err   error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("vision analysis failed at %s: %v", e.Stage, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// Analyzer inspects one webcam frame.
type Analyzer interface {
	Analyze(ctx context.Context, frameBase64 string) model.VisionAnalysis
}

// GeminiAnalyzer asks a Gemini vision model about each frame.
type GeminiAnalyzer struct {
	provider *gemini.GeminiProvider
	model    string

	now func() time.Time
}

var _ Analyzer = &GeminiAnalyzer{}

func NewGeminiAnalyzer(apiKey, modelName string) *GeminiAnalyzer {
	if modelName == "" {
		modelName = gemini.DefaultModel
	}
	provider := gemini.NewGeminiProvider(apiKey, modelName)
	provider.Client.Timeout = frameTimeout
	return &GeminiAnalyzer{provider: provider, model: modelName, now: time.Now}
}

// rawAnalysis mirrors the JSON the model is asked to produce. Pointers let us
// tell a missing field from a false one.
type rawAnalysis struct {
	DevicesDetected       rawFinding `json:"devices_detected"`
	OtherPeople           rawFinding `json:"other_people"`
	NotesOrScreens        rawFinding `json:"notes_or_screens"`
	ReadingOffScreen      rawFinding `json:"reading_off_screen"`
	FaceVisible           *bool      `json:"face_visible"`
	OverallSuspicionLevel string     `json:"overall_suspicion_level"`
	Summary               string     `json:"summary"`
}

type rawFinding struct {
	Found       bool    `json:"found"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}

// Analyze never returns an error: any failure yields a degraded analysis with
// analysis_success=false and level unknown.
func (g *GeminiAnalyzer) Analyze(ctx context.Context, frameBase64 string) model.VisionAnalysis {
	ctx, span := otel.Tracer("intelliview/vision").Start(ctx, "vision.Analyze")
	defer span.End()

	text, err := g.generate(ctx, frameBase64)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return g.degraded(err)
	}

	analysis, err := ParseAnalysis(text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return g.degraded(err)
	}
	analysis.Timestamp = g.now().UTC()
	span.SetAttributes(attribute.String("vision.suspicion_level", string(analysis.OverallSuspicionLevel)))
	return analysis
}

func (g *GeminiAnalyzer) generate(ctx context.Context, frameBase64 string) (string, error) {
	if frameBase64 == "" {
		return "", &AnalysisError{Stage: "input", Err: errors.New("empty frame")}
	}

	text, err := g.provider.GenerateWithMedia(ctx, analysisPrompt,
		gemini.InlineData{MimeType: "image/jpeg", Data: frameBase64},
		llm.WithModel(g.model),
		llm.WithTemperature(0.1),
		llm.WithMaxTokens(1024),
	)
	if err != nil {
		return "", &AnalysisError{Stage: "upstream", Err: err}
	}
	return text, nil
}

func (g *GeminiAnalyzer) degraded(err error) model.VisionAnalysis {
	return Degraded(err, g.now())
}

// Degraded builds the fail-closed result for a frame that could not be analyzed.
func Degraded(err error, at time.Time) model.VisionAnalysis {
	return model.VisionAnalysis{
		FaceVisible:           true,
		OverallSuspicionLevel: model.SuspicionUnknown,
		AnalysisSuccess:       false,
		Error:                 err.Error(),
		Timestamp:             at.UTC(),
	}
}

// ParseAnalysis decodes the model's JSON answer, tolerating markdown fences.
func ParseAnalysis(text string) (model.VisionAnalysis, error) {
	var raw rawAnalysis
	if err := json.Unmarshal([]byte(llm.StripCodeFence(text)), &raw); err != nil {
		return model.VisionAnalysis{}, &AnalysisError{Stage: "parse", Err: err}
	}

	level, ok := model.ParseSuspicionLevel(raw.OverallSuspicionLevel)
	if !ok || level == model.SuspicionUnknown {
		return model.VisionAnalysis{}, &AnalysisError{
			Stage: "parse",
			Err:   fmt.Errorf("unexpected suspicion level %q", raw.OverallSuspicionLevel),
		}
	}

	faceVisible := true
	if raw.FaceVisible != nil {
		faceVisible = *raw.FaceVisible
	}

	return model.VisionAnalysis{
		DevicesDetected:       normalizeFinding(raw.DevicesDetected),
		OtherPeople:           normalizeFinding(raw.OtherPeople),
		NotesOrScreens:        normalizeFinding(raw.NotesOrScreens),
		ReadingOffScreen:      normalizeFinding(raw.ReadingOffScreen),
		FaceVisible:           faceVisible,
		OverallSuspicionLevel: level,
		Summary:               raw.Summary,
		AnalysisSuccess:       true,
	}, nil
}

func normalizeFinding(f rawFinding) model.Finding {
	conf := f.Confidence
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	return model.Finding{
		Found:       f.Found && conf >= model.MinFindingConfidence,
		Description: f.Description,
		Confidence:  conf,
	}
}
