package service

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"intelliview-be/internal/entity"
)

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"inc":      func(i int) int { return i + 1 },
	"weighted": func(v float64) string { return fmt.Sprintf("%.1f", v) },
	"date":     func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
	"badge": func(decision string) string {
		switch decision {
		case "PASS":
			return "✅"
		case "BORDERLINE":
			return "⚠️"
		case "FAIL":
			return "❌"
		}
		return "❓"
	},
}).Parse(`# IntelliView Interview Report

**Report ID**: {{.Id}}
**Generated**: {{date .GeneratedAt}}

---

## 1. Executive Summary

{{if .ExecutiveSummary}}{{.ExecutiveSummary}}{{else}}No summary available.{{end}}

---

## 2. Candidate Information

| Field | Value |
|---|---|
| **Session ID** | {{.SessionId}} |
| **Position** | {{.JobTitle}} |
| **Interview Date** | {{date .Interview.StartTime}} |
| **Duration** | {{.DurationMinutes}} minutes |

---

## 3. Final Score & Decision

| | |
|---|---|
| **Final Score** | **{{.FinalScore}} / 100** |
| **Decision** | {{badge (printf "%s" .Decision)}} **{{.Decision}}** |
| **Recommendation** | {{.Recommendation}} |

### Score Breakdown

| Dimension | Raw Score | Weight | Weighted Score |
|---|---|---|---|
| Interview Q&A | {{.Breakdown.QA.Raw}} | 40% | {{weighted .Breakdown.QA.Weighted}} |
| Coding Assessment | {{.Breakdown.Coding.Raw}} | 30% | {{weighted .Breakdown.Coding.Weighted}} |
| Proctoring Integrity | {{.Breakdown.Integrity.Raw}} | 20% | {{weighted .Breakdown.Integrity.Weighted}} |
| Communication Skills | {{.Breakdown.Communication.Raw}} | 10% | {{weighted .Breakdown.Communication.Weighted}} |

---

## 4. Interview Q&A Performance

**Score: {{.Evaluations.QA.Score}} / 100**

### Strengths
{{range .Evaluations.QA.Strengths}}- {{.}}
{{end}}
### Areas for Improvement
{{range .Evaluations.QA.Weaknesses}}- {{.}}
{{end}}
### Per-Question Analysis
{{range $i, $q := .Evaluations.QA.PerQuestion}}
**Q{{inc $i}}: {{$q.Question}}**
- **Answer Summary**: {{$q.AnswerSummary}}
- **Score**: {{$q.Score}}/100
- **Feedback**: {{$q.Feedback}}
{{end}}
---

## 5. Coding Assessment

**Combined Score: {{.Evaluations.Coding.CombinedScore}} / 100**

| Metric | Value |
|---|---|
| **Correctness** | {{.Evaluations.Coding.CorrectnessScore}}/100 |
| **Code Quality** | {{.Evaluations.Coding.QualityScore}}/100 |
| **Time Complexity** | {{.Evaluations.Coding.TimeComplexity}} |
| **Space Complexity** | {{.Evaluations.Coding.SpaceComplexity}} |

**Feedback**: {{.Evaluations.Coding.Feedback}}

---

## 6. Proctoring & Integrity Report

**Integrity Score: {{.Integrity.Score}} / 100**

| Metric | Value |
|---|---|
| **Total Violations** | {{.Integrity.ViolationsCount}} |
| **Browser Deductions** | -{{.Integrity.Breakdown.BrowserDeductions}} |
| **Facial Tracking Deductions** | -{{.Integrity.Breakdown.MediapipeDeductions}} |
| **Vision Analysis Deductions** | -{{.Integrity.Breakdown.VisionDeductions}} |
{{if .Integrity.CriticalFlags}}
### Critical Flags
{{range .Integrity.CriticalFlags}}- 🔴 {{.}}
{{end}}{{end}}
---

## 7. Communication Skills

**Score: {{.Evaluations.Communication.Score}} / 100**

| Aspect | Score |
|---|---|
| **Clarity** | {{.Evaluations.Communication.Clarity}}/100 |
| **Confidence** | {{.Evaluations.Communication.Confidence}}/100 |
| **Professionalism** | {{.Evaluations.Communication.Professionalism}}/100 |

**Feedback**: {{.Evaluations.Communication.Feedback}}

---

*This report was generated automatically by IntelliView AI Interview System.*
*All scores are AI-generated and should be reviewed by a human HR professional.*
`))

// RenderReportMarkdown renders the HR-facing markdown version of a report.
func RenderReportMarkdown(report *entity.InterviewReport) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, report); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return buf.String(), nil
}
