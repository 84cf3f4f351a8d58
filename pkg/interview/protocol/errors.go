package protocol

import (
	"errors"
	"fmt"
)

// ErrSessionEnded signals a normal end of the session (client "end" or end_interview).
var ErrSessionEnded = errors.New("interview session ended")

// TransportError means a connection was refused or dropped.
type TransportError struct {
	Peer string // "client" or "upstream"
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport: %v", e.Peer, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError means a single message could not be parsed.
type ProtocolError struct {
	Type string
	Err  error
}

func (e *ProtocolError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("malformed message: %v", e.Err)
	}
	return fmt.Sprintf("malformed %q message: %v", e.Type, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// UpstreamError means the AI backend answered with something unusable.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

func IsUpstreamError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
