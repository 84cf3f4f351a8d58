package protocol

import "intelliview-be/pkg/interview/model"

// Server event types
const (
	TypeSessionReady = "session_ready"
	TypeTranscript   = "transcript"
	TypeTurnComplete = "turn_complete"
	TypePhaseChange  = "phase_change"
	TypeVisionResult = "vision_result"
	TypeError        = "error"
)

// GenericErrorMessage is the only error text a client ever sees for a failed session.
const GenericErrorMessage = "The interview session ended unexpectedly. Please try again later."

type SessionReadyEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

type AudioEvent struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

type TranscriptEvent struct {
	Type string `json:"type"`
	Role string `json:"role"`
	Text string `json:"text"`
}

type TurnCompleteEvent struct {
	Type string `json:"type"`
}

type PhaseChangeEvent struct {
	Type       string `json:"type"`
	Phase      string `json:"phase"`
	Difficulty string `json:"difficulty,omitempty"`
	Topic      string `json:"topic,omitempty"`
	Summary    string `json:"summary,omitempty"`
}

type VisionResultEvent struct {
	Type             string        `json:"type"`
	SuspicionLevel   string        `json:"suspicion_level"`
	Summary          string        `json:"summary"`
	DevicesDetected  model.Finding `json:"devices_detected"`
	OtherPeople      model.Finding `json:"other_people"`
	NotesOrScreens   model.Finding `json:"notes_or_screens"`
	ReadingOffScreen model.Finding `json:"reading_off_screen"`
	FaceVisible      bool          `json:"face_visible"`
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewSessionReady(sessionID string) SessionReadyEvent {
	return SessionReadyEvent{Type: TypeSessionReady, SessionID: sessionID}
}

func NewAudio(data string) AudioEvent {
	return AudioEvent{Type: TypeAudio, Data: data}
}

func NewTranscript(role, text string) TranscriptEvent {
	return TranscriptEvent{Type: TypeTranscript, Role: role, Text: text}
}

func NewTurnComplete() TurnCompleteEvent {
	return TurnCompleteEvent{Type: TypeTurnComplete}
}

func NewPhaseChange(phase model.Phase, difficulty, topic, summary string) PhaseChangeEvent {
	return PhaseChangeEvent{
		Type:       TypePhaseChange,
		Phase:      string(phase),
		Difficulty: difficulty,
		Topic:      topic,
		Summary:    summary,
	}
}

func NewVisionResult(a model.VisionAnalysis) VisionResultEvent {
	return VisionResultEvent{
		Type:             TypeVisionResult,
		SuspicionLevel:   string(a.OverallSuspicionLevel),
		Summary:          a.Summary,
		DevicesDetected:  a.DevicesDetected,
		OtherPeople:      a.OtherPeople,
		NotesOrScreens:   a.NotesOrScreens,
		ReadingOffScreen: a.ReadingOffScreen,
		FaceVisible:      a.FaceVisible,
	}
}

func NewError(message string) ErrorEvent {
	return ErrorEvent{Type: TypeError, Message: message}
}
