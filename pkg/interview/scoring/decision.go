package scoring

import "math"

type Decision string

const (
	DecisionPass       Decision = "PASS"
	DecisionBorderline Decision = "BORDERLINE"
	DecisionFail       Decision = "FAIL"
)

const (
	PassThreshold       = 70
	BorderlineThreshold = 50

	// CriticalIntegrityThreshold forces a FAIL when the integrity score is below it.
	CriticalIntegrityThreshold = 30
)

// Weights in whole percent so the weighted sum stays exact before flooring.
const (
	weightQA            = 40
	weightCoding        = 30
	weightIntegrity     = 20
	weightCommunication = 10
)

const (
	RecommendPass       = "Recommend for next round or hire."
	RecommendBorderline = "Flag for HR manual review with detailed notes."
	RecommendFail       = "Auto-reject. Candidate did not meet minimum requirements."
	RecommendIntegrity  = "Auto-reject due to critical integrity violations."
)

type Dimension struct {
	Raw      float64 `json:"raw"`
	Weight   float64 `json:"weight"`
	Weighted float64 `json:"weighted"`
}

type ScoreBreakdown struct {
	QA             Dimension `json:"qa"`
	Coding         Dimension `json:"coding"`
	Integrity      Dimension `json:"integrity"`
	Communication  Dimension `json:"communication"`
	FinalScore     int       `json:"final_score"`
	Decision       Decision  `json:"decision"`
	Recommendation string    `json:"recommendation"`
}

// Inputs are the four raw sub-scores. A nil QA, Coding or Communication counts as 0;
// a nil Integrity counts as 100 so an evaluation that never ran is not read as a violation.
type Inputs struct {
	QA            *float64
	Coding        *float64
	Integrity     *float64
	Communication *float64
}

// Score returns a pointer to v, for building Inputs.
func Score(v float64) *float64 {
	return &v
}

// Decide computes the weighted final score and the hiring decision.
func Decide(in Inputs) ScoreBreakdown {
	qa := valueOr(in.QA, 0)
	coding := valueOr(in.Coding, 0)
	integrity := valueOr(in.Integrity, maxIntegrityScore)
	comm := valueOr(in.Communication, 0)

	out := ScoreBreakdown{
		QA:            dimension(qa, weightQA),
		Coding:        dimension(coding, weightCoding),
		Integrity:     dimension(integrity, weightIntegrity),
		Communication: dimension(comm, weightCommunication),
	}

	sum := qa*weightQA + coding*weightCoding + integrity*weightIntegrity + comm*weightCommunication
	out.FinalScore = int(math.Floor(sum / 100))

	switch {
	case out.FinalScore >= PassThreshold:
		out.Decision, out.Recommendation = DecisionPass, RecommendPass
	case out.FinalScore >= BorderlineThreshold:
		out.Decision, out.Recommendation = DecisionBorderline, RecommendBorderline
	default:
		out.Decision, out.Recommendation = DecisionFail, RecommendFail
	}

	if integrity < CriticalIntegrityThreshold {
		out.Decision, out.Recommendation = DecisionFail, RecommendIntegrity
	}
	return out
}

func dimension(raw float64, percent int) Dimension {
	return Dimension{
		Raw:      raw,
		Weight:   float64(percent) / 100,
		Weighted: raw * float64(percent) / 100,
	}
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
