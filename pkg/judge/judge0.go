package judge

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"intelliview-be/pkg/interview/model"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBaseURL = "https://judge0-ce.p.rapidapi.com"
	DefaultHost    = "judge0-ce.p.rapidapi.com"

	statusAccepted = 3

	cpuTimeLimit = 5
	memoryLimit  = 128000
)

// Judge0 language ids. Anything not listed runs as Python 3.
var languageIDs = map[string]int{
	"python":     71,
	"python3":    71,
	"javascript": 63,
	"java":       62,
	"cpp":        54,
	"c":          50,
	"typescript": 74,
}

var languageOrder = []string{"python", "javascript", "typescript", "java", "cpp", "c"}

const defaultLanguageID = 71

// LanguageID maps a language name to its Judge0 id.
func LanguageID(language string) int {
	if id, ok := languageIDs[strings.ToLower(language)]; ok {
		return id
	}
	return defaultLanguageID
}

// Executor runs candidate code against a problem's test cases.
type Executor interface {
	Execute(ctx context.Context, code, language string, problem *Problem) model.CodeResults
}

type Judge0Client struct {
	BaseURL string
	APIKey  string
	Host    string
	Client  *http.Client
}

var _ Executor = &Judge0Client{}

func NewJudge0Client(baseURL, apiKey, host string, timeout time.Duration) *Judge0Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if host == "" {
		host = DefaultHost
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Judge0Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Host:    host,
		Client:  &http.Client{Timeout: timeout},
	}
}

type submissionRequest struct {
	SourceCode     string `json:"source_code"`
	LanguageID     int    `json:"language_id"`
	Stdin          string `json:"stdin"`
	ExpectedOutput string `json:"expected_output"`
	CPUTimeLimit   int    `json:"cpu_time_limit"`
	MemoryLimit    int    `json:"memory_limit"`
}

type submissionResponse struct {
	Stdout *string  `json:"stdout"`
	Stderr *string  `json:"stderr"`
	Time   *string  `json:"time"`
	Memory *float64 `json:"memory"`
	Status struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"status"`
}

// Execute runs every test case concurrently. Per-case failures are reported in
// the case's result and never fail the whole submission.
func (j *Judge0Client) Execute(ctx context.Context, code, language string, problem *Problem) model.CodeResults {
	ctx, span := otel.Tracer("intelliview/judge").Start(ctx, "judge.Execute")
	defer span.End()

	source := problem.Wrap(code, language)
	langID := LanguageID(language)

	results := make([]model.TestResult, len(problem.TestCases))
	g, gctx := errgroup.WithContext(ctx)
	for i, tc := range problem.TestCases {
		i, tc := i, tc
		g.Go(func() error {
			results[i] = j.runCase(gctx, i, source, langID, tc)
			return nil
		})
	}
	_ = g.Wait()

	out := model.CodeResults{
		ProblemTitle: problem.Title,
		Total:        len(problem.TestCases),
		TestResults:  results,
	}
	for _, r := range results {
		if r.Passed {
			out.Passed++
		}
	}
	if out.Total > 0 {
		out.Score = float64(out.Passed) / float64(out.Total)
	}
	span.SetAttributes(
		attribute.Int("judge.passed", out.Passed),
		attribute.Int("judge.total", out.Total),
	)
	return out
}

func (j *Judge0Client) runCase(ctx context.Context, i int, source string, langID int, tc TestCase) model.TestResult {
	failed := func(err error) model.TestResult {
		return model.TestResult{TestCase: i + 1, Expected: tc.Expected, Error: err.Error()}
	}

	body, err := json.Marshal(submissionRequest{
		SourceCode:     encode(source),
		LanguageID:     langID,
		Stdin:          encode(tc.Input),
		ExpectedOutput: encode(tc.Expected),
		CPUTimeLimit:   cpuTimeLimit,
		MemoryLimit:    memoryLimit,
	})
	if err != nil {
		return failed(err)
	}

	url := j.BaseURL + "/submissions?base64_encoded=true&wait=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return failed(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if j.APIKey != "" {
		req.Header.Set("X-RapidAPI-Key", j.APIKey)
		req.Header.Set("X-RapidAPI-Host", j.Host)
	}

	res, err := j.Client.Do(req)
	if err != nil {
		return failed(err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated {
		return failed(fmt.Errorf("judge0 http status %d", res.StatusCode))
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return failed(err)
	}
	var sub submissionResponse
	if err := json.Unmarshal(raw, &sub); err != nil {
		return failed(fmt.Errorf("decode submission: %w", err))
	}

	stdout := decode(sub.Stdout)
	result := model.TestResult{
		TestCase: i + 1,
		Passed:   sub.Status.ID == statusAccepted || stdout == strings.TrimSpace(tc.Expected),
		Stdout:   stdout,
		Expected: tc.Expected,
		Stderr:   decode(sub.Stderr),
		Status:   sub.Status.Description,
	}
	if result.Status == "" {
		result.Status = "Unknown"
	}
	if sub.Time != nil {
		result.Time = *sub.Time
	}
	if sub.Memory != nil {
		result.Memory = *sub.Memory
	}
	return result
}

func encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// decode returns the trimmed plain text of a base64 field. Undecodable output reads as empty.
func decode(s *string) string {
	if s == nil || *s == "" {
		return ""
	}
	// Judge0 wraps base64 output at 60 columns
	b, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(*s, "\n", ""))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
