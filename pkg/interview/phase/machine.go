package phase

import (
	"fmt"
	"sync"

	"intelliview-be/pkg/interview/model"
)

const (
	DefaultDifficulty = "medium"
	DefaultTopic      = "arrays"
)

var validDifficulties = map[string]bool{"easy": true, "medium": true, "hard": true}

// CallKind enumerates the function calls the interviewer model may make.
type CallKind int

const (
	CallUnknown CallKind = iota
	CallStartCodingAssessment
	CallEndInterview
)

const (
	NameStartCodingAssessment = "start_coding_assessment"
	NameEndInterview          = "end_interview"
)

func ParseCallKind(name string) CallKind {
	switch name {
	case NameStartCodingAssessment:
		return CallStartCodingAssessment
	case NameEndInterview:
		return CallEndInterview
	default:
		return CallUnknown
	}
}

func (k CallKind) String() string {
	switch k {
	case CallStartCodingAssessment:
		return NameStartCodingAssessment
	case CallEndInterview:
		return NameEndInterview
	default:
		return "unknown"
	}
}

// FunctionCall is a tool call received from the upstream backend.
type FunctionCall struct {
	Kind CallKind
	Name string
	Args map[string]interface{}
	ID   string
}

func NewFunctionCall(id, name string, args map[string]interface{}) FunctionCall {
	return FunctionCall{Kind: ParseCallKind(name), Name: name, Args: args, ID: id}
}

// Change describes a completed transition; it becomes the client's phase_change event.
type Change struct {
	From       model.Phase
	To         model.Phase
	Difficulty string
	Topic      string
	Summary    string
}

// Acknowledgement is the single tool response owed for a function call.
type Acknowledgement struct {
	ID       string
	Name     string
	Response map[string]interface{}
}

// Outcome is the result of handling a function call. Change is nil when the call was rejected.
type Outcome struct {
	Change   *Change
	Ack      Acknowledgement
	Accepted bool
	Reason   string
}

// Terminal reports whether the outcome moved the interview to COMPLETE.
func (o Outcome) Terminal() bool {
	return o.Change != nil && o.Change.To == model.PhaseComplete
}

type callHandler func(m *Machine, call FunctionCall) (*Change, string, error)

var handlers = map[CallKind]callHandler{
	CallStartCodingAssessment: (*Machine).startCoding,
	CallEndInterview:          (*Machine).endInterview,
}

// Machine tracks the interview phase. Safe for concurrent use.
type Machine struct {
	mu    sync.Mutex
	phase model.Phase
}

func NewMachine() *Machine {
	return &Machine{phase: model.PhaseInit}
}

func (m *Machine) Phase() model.Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Begin enters GREETING once the upstream handshake has completed.
func (m *Machine) Begin() (*Change, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.moveLocked(model.PhaseInit, model.PhaseGreeting)
}

// TurnComplete ends the greeting after the first completed AI turn.
func (m *Machine) TurnComplete() (*Change, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.moveLocked(model.PhaseGreeting, model.PhaseQA)
}

// Handle validates and executes a function call. Every call, accepted or not,
// yields exactly one acknowledgement tagged with the call id.
func (m *Machine) Handle(call FunctionCall) Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()

	ack := Acknowledgement{ID: call.ID, Name: call.Name}

	handler, ok := handlers[call.Kind]
	if !ok {
		reason := fmt.Sprintf("unknown function %q", call.Name)
		ack.Response = map[string]interface{}{"error": reason}
		return Outcome{Ack: ack, Reason: reason}
	}

	change, result, err := handler(m, call)
	if err != nil {
		ack.Response = map[string]interface{}{"error": err.Error()}
		return Outcome{Ack: ack, Reason: err.Error()}
	}

	ack.Response = map[string]interface{}{"result": result}
	return Outcome{Change: change, Ack: ack, Accepted: true}
}

func (m *Machine) startCoding(call FunctionCall) (*Change, string, error) {
	change, ok := m.moveLocked(model.PhaseQA, model.PhaseCoding)
	if !ok {
		return nil, "", fmt.Errorf("%s not allowed in phase %s", call.Name, m.phase)
	}
	change.Difficulty = stringArg(call.Args, "difficulty")
	if !validDifficulties[change.Difficulty] {
		change.Difficulty = DefaultDifficulty
	}
	change.Topic = stringArg(call.Args, "topic")
	if change.Topic == "" {
		change.Topic = DefaultTopic
	}
	return change, "Coding assessment has been presented to the candidate. Please wait for them to complete it.", nil
}

func (m *Machine) endInterview(call FunctionCall) (*Change, string, error) {
	change, ok := m.moveLocked(model.PhaseCoding, model.PhaseComplete)
	if !ok {
		return nil, "", fmt.Errorf("%s not allowed in phase %s", call.Name, m.phase)
	}
	change.Summary = stringArg(call.Args, "summary")
	return change, "Interview session has been ended. Goodbye.", nil
}

func (m *Machine) moveLocked(from, to model.Phase) (*Change, bool) {
	if m.phase != from {
		return nil, false
	}
	m.phase = to
	return &Change{From: from, To: to}, true
}

func stringArg(args map[string]interface{}, key string) string {
	if args == nil {
		return ""
	}
	s, _ := args[key].(string)
	return s
}
