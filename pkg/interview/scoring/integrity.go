package scoring

import "intelliview-be/pkg/interview/model"

const maxIntegrityScore = 100

// Browser event deductions by type.
const (
	deductFullscreen   = 10
	deductVisibility   = 5
	deductOtherBrowser = 3
)

type IntegrityBreakdown struct {
	BrowserDeductions   int `json:"browser_deductions"`
	MediapipeDeductions int `json:"mediapipe_deductions"`
	VisionDeductions    int `json:"vision_deductions"`
	TotalDeductions     int `json:"total_deductions"`
}

type IntegrityResult struct {
	Score           int                `json:"score"`
	ViolationsCount int                `json:"violations_count"`
	CriticalFlags   []string           `json:"critical_flags"`
	Breakdown       IntegrityBreakdown `json:"breakdown"`
}

// ScoreIntegrity derives a 0-100 integrity score from the proctoring log and the
// vision analyses of a session. Degraded analyses are skipped. Deductions are summed
// first and the floor at zero is applied once.
func ScoreIntegrity(events []model.ProctoringEvent, analyses []model.VisionAnalysis) IntegrityResult {
	var (
		breakdown  IntegrityBreakdown
		violations int
		flags      = make([]string, 0)
	)

	for _, event := range events {
		violations++
		switch event.Type {
		case "fullscreen":
			breakdown.BrowserDeductions += deductFullscreen
		case "visibility", "focus":
			breakdown.BrowserDeductions += deductVisibility
		default:
			breakdown.BrowserDeductions += deductOtherBrowser
		}

		if event.Source != model.SourceMediapipe {
			continue
		}
		violations++
		severity := event.Severity
		if severity == "" {
			severity = model.SeverityMedium
		}
		switch severity {
		case model.SeverityCritical:
			breakdown.MediapipeDeductions += 15
			flags = append(flags, orDefault(event.Message, "Critical MediaPipe event"))
		case model.SeverityHigh:
			breakdown.MediapipeDeductions += 8
		case model.SeverityMedium:
			breakdown.MediapipeDeductions += 3
		}
	}

	for _, analysis := range analyses {
		if !analysis.AnalysisSuccess {
			continue
		}
		switch analysis.OverallSuspicionLevel {
		case model.SuspicionCritical:
			breakdown.VisionDeductions += 30
			flags = append(flags, orDefault(analysis.Summary, "Critical vision flag"))
		case model.SuspicionHigh:
			breakdown.VisionDeductions += 20
			flags = append(flags, orDefault(analysis.Summary, "High vision flag"))
		case model.SuspicionMedium:
			breakdown.VisionDeductions += 10
		case model.SuspicionLow:
			breakdown.VisionDeductions += 5
		}
	}

	breakdown.TotalDeductions = breakdown.BrowserDeductions + breakdown.MediapipeDeductions + breakdown.VisionDeductions
	score := maxIntegrityScore - breakdown.TotalDeductions
	if score < 0 {
		score = 0
	}

	return IntegrityResult{
		Score:           score,
		ViolationsCount: violations,
		CriticalFlags:   flags,
		Breakdown:       breakdown,
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
