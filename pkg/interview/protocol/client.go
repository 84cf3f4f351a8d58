package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Client message types
const (
	TypeAudio           = "audio"
	TypeVisionFrame     = "vision_frame"
	TypeProctoringEvent = "proctoring_event"
	TypeCodingSubmit    = "coding_submit"
	TypeEnd             = "end"
)

// Envelope is used for the first decode pass to find the message type.
type Envelope struct {
	Type string `json:"type"`
}

// ClientMessage is one of AudioMessage, VisionFrameMessage, ProctoringEventMessage,
// CodingSubmitMessage, EndMessage or UnknownMessage.
type ClientMessage interface {
	clientMessage()
}

type AudioMessage struct {
	Data string `json:"data"`
}

type VisionFrameMessage struct {
	Data string `json:"data"`
}

// ProctoringEventMessage carries a browser or face-tracking event. Fields the
// server does not know are kept in Details.
type ProctoringEventMessage struct {
	Type     string
	Severity string
	Source   string
	Message  string
	Details  map[string]interface{}
}

type CodingSubmitMessage struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

type EndMessage struct{}

// UnknownMessage is returned for a well-formed message of a type this server
// does not handle, so newer clients keep working.
type UnknownMessage struct {
	Type string
}

func (AudioMessage) clientMessage()           {}
func (VisionFrameMessage) clientMessage()     {}
func (ProctoringEventMessage) clientMessage() {}
func (CodingSubmitMessage) clientMessage()    {}
func (EndMessage) clientMessage()             {}
func (UnknownMessage) clientMessage()         {}

const defaultLanguage = "python"

// DecodeClientMessage parses one client frame. Malformed input yields a *ProtocolError.
func DecodeClientMessage(raw []byte) (ClientMessage, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &ProtocolError{Err: fmt.Errorf("decode envelope: %w", err)}
	}

	switch env.Type {
	case TypeAudio:
		var m AudioMessage
		if err := decodeInto(raw, &m); err != nil {
			return nil, err
		}
		if m.Data == "" {
			return nil, &ProtocolError{Type: env.Type, Err: errors.New("missing data")}
		}
		return m, nil

	case TypeVisionFrame:
		var m VisionFrameMessage
		if err := decodeInto(raw, &m); err != nil {
			return nil, err
		}
		if m.Data == "" {
			return nil, &ProtocolError{Type: env.Type, Err: errors.New("missing data")}
		}
		return m, nil

	case TypeProctoringEvent:
		var body struct {
			Event map[string]interface{} `json:"event"`
		}
		if err := decodeInto(raw, &body); err != nil {
			return nil, err
		}
		return proctoringFromMap(body.Event), nil

	case TypeCodingSubmit:
		var m CodingSubmitMessage
		if err := decodeInto(raw, &m); err != nil {
			return nil, err
		}
		if m.Language == "" {
			m.Language = defaultLanguage
		}
		return m, nil

	case TypeEnd:
		return EndMessage{}, nil

	case "":
		return nil, &ProtocolError{Err: errors.New("missing message type")}

	default:
		return UnknownMessage{Type: env.Type}, nil
	}
}

func decodeInto(raw []byte, v interface{}) error {
	if err := json.Unmarshal(raw, v); err != nil {
		var env Envelope
		_ = json.Unmarshal(raw, &env)
		return &ProtocolError{Type: env.Type, Err: err}
	}
	return nil
}

func proctoringFromMap(event map[string]interface{}) ProctoringEventMessage {
	m := ProctoringEventMessage{}
	if event == nil {
		return m
	}
	details := make(map[string]interface{})
	for k, v := range event {
		s, isString := v.(string)
		switch {
		case k == "type" && isString:
			m.Type = s
		case k == "severity" && isString:
			m.Severity = s
		case k == "source" && isString:
			m.Source = s
		case k == "message" && isString:
			m.Message = s
		default:
			details[k] = v
		}
	}
	if len(details) > 0 {
		m.Details = details
	}
	return m
}
