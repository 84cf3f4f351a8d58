package judge

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBankFind(t *testing.T) {
	bank := DefaultBank()

	tests := []struct {
		name       string
		difficulty string
		topic      string
		want       string
	}{
		{"exact", "easy", "strings", "Valid Palindrome"},
		{"case insensitive", "EASY", "Arrays", "Two Sum"},
		{"unknown difficulty uses medium", "impossible", "strings", "Longest Substring Without Repeating Characters"},
		{"unknown topic uses first topic", "medium", "graphs", "Maximum Subarray"},
		{"hard has one topic", "hard", "strings", "Merge K Sorted Lists (Array Version)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := bank.Find(tt.difficulty, tt.topic)
			require.True(t, ok)
			assert.Equal(t, tt.want, p.Title)
		})
	}
}

func TestProblemWrapAndLanguages(t *testing.T) {
	p, _ := DefaultBank().Find("easy", "arrays")

	wrapped := p.Wrap("def two_sum(n, t): return [0, 1]", "Python")
	assert.True(t, strings.HasPrefix(wrapped, "def two_sum(n, t): return [0, 1]\n\nimport sys"))
	assert.Equal(t, "raw", p.Wrap("raw", "rust"))
	assert.Equal(t, []string{"python", "javascript"}, p.Languages())
}

func TestLanguageID(t *testing.T) {
	assert.Equal(t, 71, LanguageID("python"))
	assert.Equal(t, 63, LanguageID("JavaScript"))
	assert.Equal(t, 74, LanguageID("typescript"))
	assert.Equal(t, 71, LanguageID("cobol"))
}

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestExecuteScoresEachCase(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/submissions", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("base64_encoded"))
		assert.Equal(t, "secret", r.Header.Get("X-RapidAPI-Key"))

		var req submissionRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			return
		}
		assert.Equal(t, 71, req.LanguageID)
		stdin, _ := base64.StdEncoding.DecodeString(req.Stdin)

		switch string(stdin) {
		case "1":
			// accepted by status
			_, _ = w.Write([]byte(`{"stdout":"` + b64("1\n") + `","status":{"id":3,"description":"Accepted"},"time":"0.01","memory":3100}`))
		case "5 4 -1 7 8":
			// accepted by output match despite a wrong-answer status
			_, _ = w.Write([]byte(`{"stdout":"` + b64("23") + `","status":{"id":4,"description":"Wrong Answer"}}`))
		default:
			_, _ = w.Write([]byte(`{"stdout":"` + b64("0") + `","stderr":"` + b64("boom") + `","status":{"id":4,"description":"Wrong Answer"}}`))
		}
	}))
	defer srv.Close()

	client := NewJudge0Client(srv.URL, "secret", "", time.Second)
	problem, _ := DefaultBank().Find("medium", "arrays")

	res := client.Execute(context.Background(), "def max_subarray(nums): pass", "python", problem)

	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
	assert.Equal(t, "Maximum Subarray", res.ProblemTitle)
	assert.Equal(t, 2, res.Passed)
	assert.Equal(t, 3, res.Total)
	assert.InDelta(t, 2.0/3.0, res.Score, 1e-9)

	require.Len(t, res.TestResults, 3)
	first := res.TestResults[0]
	assert.Equal(t, 1, first.TestCase)
	assert.False(t, first.Passed)
	assert.Equal(t, "boom", first.Stderr)

	second := res.TestResults[1]
	assert.True(t, second.Passed)
	assert.Equal(t, "0.01", second.Time)
	assert.Equal(t, float64(3100), second.Memory)
	assert.Equal(t, "Accepted", second.Status)

	assert.True(t, res.TestResults[2].Passed)
}

func TestExecuteReportsHTTPFailuresPerCase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewJudge0Client(srv.URL, "", "", time.Second)
	problem, _ := DefaultBank().Find("easy", "strings")

	res := client.Execute(context.Background(), "x", "javascript", problem)

	assert.Equal(t, 0, res.Passed)
	assert.Equal(t, 3, res.Total)
	assert.Zero(t, res.Score)
	for i, r := range res.TestResults {
		assert.Equal(t, i+1, r.TestCase)
		assert.Contains(t, r.Error, "429")
		assert.Equal(t, problem.TestCases[i].Expected, r.Expected)
	}
}
