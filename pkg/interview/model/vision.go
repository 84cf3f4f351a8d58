package model

import "time"

type SuspicionLevel string

const (
	SuspicionNone     SuspicionLevel = "none"
	SuspicionLow      SuspicionLevel = "low"
	SuspicionMedium   SuspicionLevel = "medium"
	SuspicionHigh     SuspicionLevel = "high"
	SuspicionCritical SuspicionLevel = "critical"
	SuspicionUnknown  SuspicionLevel = "unknown"
)

// MinFindingConfidence is the confidence below which a finding counts as not found.
const MinFindingConfidence = 0.3

// ParseSuspicionLevel maps a raw level to a known one. ok is false for anything unrecognized.
func ParseSuspicionLevel(raw string) (SuspicionLevel, bool) {
	switch SuspicionLevel(raw) {
	case SuspicionNone, SuspicionLow, SuspicionMedium, SuspicionHigh, SuspicionCritical, SuspicionUnknown:
		return SuspicionLevel(raw), true
	}
	return SuspicionUnknown, false
}

// IsAlert reports whether the level must be mirrored into the proctoring log.
func (l SuspicionLevel) IsAlert() bool {
	return l == SuspicionHigh || l == SuspicionCritical
}

type Finding struct {
	Found       bool    `json:"found"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}

// VisionAnalysis is the result of analyzing a single webcam frame. Treat as immutable.
type VisionAnalysis struct {
	DevicesDetected       Finding        `json:"devices_detected"`
	OtherPeople           Finding        `json:"other_people"`
	NotesOrScreens        Finding        `json:"notes_or_screens"`
	ReadingOffScreen      Finding        `json:"reading_off_screen"`
	FaceVisible           bool           `json:"face_visible"`
	OverallSuspicionLevel SuspicionLevel `json:"overall_suspicion_level"`
	Summary               string         `json:"summary"`
	AnalysisSuccess       bool           `json:"analysis_success"`
	Error                 string         `json:"error,omitempty"`
	Timestamp             time.Time      `json:"timestamp"`
}
