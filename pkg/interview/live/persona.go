package live

import (
	"fmt"

	"intelliview-be/pkg/interview/phase"
)

const (
	DefaultURL   = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"
	DefaultModel = "models/gemini-2.5-flash-native-audio-preview-12-2025"
	DefaultVoice = "Aoede"

	AudioInputMimeType = "audio/pcm;rate=16000"

	kickoffPrompt   = "The candidate has just joined the interview. Please greet them warmly and introduce yourself, then begin with your first question."
	submittedPrompt = "I have submitted my coding solution. Please acknowledge and wrap up the interview without discussing or explaining the solution."
)

const systemInstructionTemplate = `You are an AI technical interviewer for the position of %s.
You are professional, friendly, and thorough. Your goal is to evaluate the candidate's
technical skills, problem-solving ability, and communication.

RESUME CONTEXT:
%s

INTERVIEW STRUCTURE:
1. Start with a brief greeting and introduction (30 seconds).
2. Ask 3-4 behavioral/technical questions based on the resume (8 minutes).
   - Focus on verifying claims made in the resume.
   - Ask follow-up questions if answers are vague.
3. When you are done with Q&A, call the function ` + "`start_coding_assessment`" + ` to transition.
4. After coding, call ` + "`end_interview`" + ` to wrap up.

RULES:
- Keep each question concise and clear.
- If the candidate seems stuck, provide a gentle hint after 30 seconds.
- Evaluate answers internally but do NOT share scores with the candidate.
- Be encouraging but do not give false praise.
- Speak naturally, as if in a real conversation.
- After the coding assessment is submitted, do NOT explain the solution, do NOT discuss whether it is correct or incorrect. Simply acknowledge the submission and call end_interview.
- Coding evaluation results are confidential and visible only to HR.
`

// SetupConfig selects the model and persona for one live session.
type SetupConfig struct {
	Model         string
	Voice         string
	JobTitle      string
	ResumeSummary string
}

func SystemInstruction(jobTitle, resumeSummary string) string {
	return fmt.Sprintf(systemInstructionTemplate, jobTitle, resumeSummary)
}

// BuildSetup assembles the handshake message: persona, audio output, both
// interview functions and transcription of both audio directions.
func BuildSetup(cfg SetupConfig) SetupMessage {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Voice == "" {
		cfg.Voice = DefaultVoice
	}

	return SetupMessage{Setup: Setup{
		Model: cfg.Model,
		GenerationConfig: GenerationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: SpeechConfig{VoiceConfig: VoiceConfig{
				PrebuiltVoiceConfig: PrebuiltVoiceConfig{VoiceName: cfg.Voice},
			}},
		},
		SystemInstruction: Content{Parts: []Part{{Text: SystemInstruction(cfg.JobTitle, cfg.ResumeSummary)}}},
		Tools:             []Tool{{FunctionDeclarations: interviewFunctions()}},

		InputAudioTranscription:  &AudioTranscription{},
		OutputAudioTranscription: &AudioTranscription{},
	}}
}

func interviewFunctions() []FunctionDeclaration {
	return []FunctionDeclaration{
		{
			Name:        phase.NameStartCodingAssessment,
			Description: "Transition the interview to the coding assessment phase. Call this when you have finished asking all behavioral and technical questions.",
			Parameters: Parameters{
				Type: "object",
				Properties: map[string]Property{
					"difficulty": {
						Type:        "string",
						Enum:        []string{"easy", "medium", "hard"},
						Description: "The difficulty level of the coding problem to present.",
					},
					"topic": {
						Type:        "string",
						Description: "The topic area for the coding problem (e.g., arrays, strings, trees).",
					},
				},
				Required: []string{"difficulty", "topic"},
			},
		},
		{
			Name:        phase.NameEndInterview,
			Description: "End the interview session. Call this after the coding assessment is complete and you have said goodbye.",
			Parameters: Parameters{
				Type: "object",
				Properties: map[string]Property{
					"summary": {
						Type:        "string",
						Description: "A brief summary of the interview for the transcript log.",
					},
				},
				Required: []string{"summary"},
			},
		},
	}
}

func userTurn(text string) ClientContentMessage {
	return ClientContentMessage{ClientContent: ClientContent{
		Turns:        []Content{{Role: "user", Parts: []Part{{Text: text}}}},
		TurnComplete: true,
	}}
}

// KickoffTurn makes the interviewer speak first.
func KickoffTurn() ClientContentMessage {
	return userTurn(kickoffPrompt)
}

// CodingSubmittedTurn tells the interviewer code was submitted, asking for acknowledgement only.
func CodingSubmittedTurn() ClientContentMessage {
	return userTurn(submittedPrompt)
}

func AudioChunk(data string) RealtimeInputMessage {
	return RealtimeInputMessage{RealtimeInput: RealtimeInput{
		MediaChunks: []MediaChunk{{Data: data, MimeType: AudioInputMimeType}},
	}}
}

func ToolAck(ack phase.Acknowledgement) ToolResponseMessage {
	return ToolResponseMessage{ToolResponse: ToolResponse{
		FunctionResponses: []FunctionResponse{{ID: ack.ID, Name: ack.Name, Response: ack.Response}},
	}}
}
