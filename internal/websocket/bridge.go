package websocket

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"intelliview-be/internal/pkg/logger"
	"intelliview-be/pkg/interview/events"
	"intelliview-be/pkg/interview/live"
	"intelliview-be/pkg/interview/model"
	"intelliview-be/pkg/interview/phase"
	"intelliview-be/pkg/interview/protocol"
	"intelliview-be/pkg/interview/session"
	"intelliview-be/pkg/interview/vision"

	"golang.org/x/sync/errgroup"
)

const module = "INTERVIEW_BRIDGE"

// End reasons reported in logs and lifecycle events.
const (
	ReasonClientEnd    = "client_end"
	ReasonEndInterview = "end_interview"
	ReasonError        = "error"
	ReasonCancelled    = "cancelled"
)

// SessionIndex is the process-wide lookup the bridge registers sessions in.
type SessionIndex interface {
	Register(s *session.Session) error
	Remove(sessionID string)
}

// SnapshotStore keeps finished sessions for late REST calls.
type SnapshotStore interface {
	Save(snapshot model.Snapshot)
}

// ReportSubmitter receives every finished session for scoring.
type ReportSubmitter interface {
	SubmitSnapshot(ctx context.Context, snapshot model.Snapshot) error
}

type Options struct {
	LiveModel             string
	Voice                 string
	HandshakeTimeout      time.Duration
	MaxConcurrentAnalyses int
	MaxPendingAnalyses    int // per-session cap on queued frames; 0 queues every frame
}

// Bridge opens interview sessions between candidates and the live backend.
// One Bridge serves the whole process.
type Bridge struct {
	dialer    live.Dialer
	analyzer  vision.Analyzer
	sessions  SessionIndex
	snapshots SnapshotStore
	reports   ReportSubmitter
	events    events.Publisher
	logger    logger.ILogger
	opts      Options
}

func NewBridge(
	dialer live.Dialer,
	analyzer vision.Analyzer,
	sessions SessionIndex,
	snapshots SnapshotStore,
	reports ReportSubmitter,
	publisher events.Publisher,
	log logger.ILogger,
	opts Options,
) *Bridge {
	return &Bridge{
		dialer:    dialer,
		analyzer:  analyzer,
		sessions:  sessions,
		snapshots: snapshots,
		reports:   reports,
		events:    publisher,
		logger:    log,
		opts:      opts,
	}
}

// Relay is one open interview: the two connections, the phase machine and the
// analysis tasks of a single session.
type Relay struct {
	bridge   *Bridge
	session  *session.Session
	machine  *phase.Machine
	client   ClientConn
	writer   *clientWriter
	upstream live.Conn
	tasks    *vision.TaskGroup

	teardownOnce sync.Once
	cancel       context.CancelFunc

	reasonMu  sync.Mutex
	endReason string
}

// Serve opens a session on an accepted client connection and relays until it ends.
func (b *Bridge) Serve(ctx context.Context, client ClientConn, sessionID string, persona session.Persona) error {
	relay, err := b.Open(ctx, client, sessionID, persona)
	if err != nil {
		_ = newClientWriter(client).writeNow(protocol.NewError(protocol.GenericErrorMessage))
		return err
	}
	return relay.Run(ctx)
}

// Open registers the session, connects upstream and completes the handshake. No
// client traffic is relayed until it returns. On failure nothing is left behind:
// the upstream is closed and the session unregistered.
func (b *Bridge) Open(ctx context.Context, client ClientConn, sessionID string, persona session.Persona) (*Relay, error) {
	s := session.New(sessionID, persona)
	if err := b.sessions.Register(s); err != nil {
		return nil, fmt.Errorf("register session %s: %w", sessionID, err)
	}

	upstream, err := b.dialer.Dial(ctx)
	if err != nil {
		b.sessions.Remove(sessionID)
		b.logger.Error(module, "Upstream connect failed", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
		return nil, err
	}

	setup := live.BuildSetup(live.SetupConfig{
		Model:         b.opts.LiveModel,
		Voice:         b.opts.Voice,
		JobTitle:      persona.JobTitle,
		ResumeSummary: persona.ResumeSummary,
	})
	if err := live.Handshake(ctx, upstream, setup, b.opts.HandshakeTimeout); err != nil {
		_ = upstream.Close()
		b.sessions.Remove(sessionID)
		b.logger.Error(module, "Upstream handshake failed", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
		return nil, err
	}

	r := &Relay{
		bridge:   b,
		session:  s,
		machine:  phase.NewMachine(),
		client:   client,
		writer:   newClientWriter(client),
		upstream: upstream,
	}

	s.Activate()
	if err := r.writer.writeNow(protocol.NewSessionReady(sessionID)); err != nil {
		r.abortOpen()
		return nil, err
	}
	// every transition is announced, the greeting included
	if change, ok := r.machine.Begin(); ok {
		s.SetPhase(change.To)
		if err := r.writer.writeNow(protocol.NewPhaseChange(change.To, "", "", "")); err != nil {
			r.abortOpen()
			return nil, err
		}
	}
	if err := upstream.Send(live.KickoffTurn()); err != nil {
		r.abortOpen()
		return nil, err
	}

	b.events.PublishInterviewStarted(ctx, sessionID, persona.JobTitle)
	b.logger.Info(module, "Interview session opened", map[string]interface{}{"session_id": sessionID, "job_title": persona.JobTitle})
	return r, nil
}

func (r *Relay) abortOpen() {
	_ = r.upstream.Close()
	r.session.Finalize()
	r.bridge.sessions.Remove(r.session.ID)
}

func (r *Relay) Session() *session.Session {
	return r.session
}

// Run relays in both directions until the first termination trigger, then tears
// the session down exactly once. It returns nil for a normal end.
func (r *Relay) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	r.tasks = vision.NewTaskGroup(gctx, r.bridge.opts.MaxConcurrentAnalyses, r.bridge.opts.MaxPendingAnalyses)

	g.Go(func() error { return r.writer.pump(gctx) })
	g.Go(func() error { return r.inbound(gctx) })
	g.Go(func() error { return r.outbound(gctx) })

	// Whichever loop fails first cancels gctx; unblock the others
	go func() {
		<-gctx.Done()
		r.teardown()
	}()

	err := g.Wait()
	r.teardown()
	return r.finish(err)
}

// teardown closes the upstream and unblocks the client reader. Idempotent.
func (r *Relay) teardown() {
	r.teardownOnce.Do(func() {
		if r.cancel != nil {
			r.cancel()
		}
		if err := r.upstream.Close(); err != nil {
			r.bridge.logger.Debug(module, "Upstream close", map[string]interface{}{"session_id": r.session.ID, "error": err.Error()})
		}
		_ = r.client.SetReadDeadline(time.Now())
	})
}

func (r *Relay) finish(runErr error) error {
	// No analysis may write after this point
	r.tasks.Shutdown()

	reason := r.reason()
	var result error
	switch {
	case runErr == nil || errors.Is(runErr, protocol.ErrSessionEnded):
		if reason == "" {
			reason = ReasonCancelled
		}
	default:
		reason = ReasonError
		result = runErr
		r.bridge.logger.Error(module, "Interview session failed", map[string]interface{}{"session_id": r.session.ID, "error": runErr.Error()})
		if err := r.writer.writeNow(protocol.NewError(protocol.GenericErrorMessage)); err != nil {
			r.bridge.logger.Debug(module, "Client unreachable for error event", map[string]interface{}{"session_id": r.session.ID})
		}
	}

	r.session.Finalize()
	r.bridge.sessions.Remove(r.session.ID)

	snapshot := r.session.Snapshot()
	r.bridge.snapshots.Save(snapshot)

	ctx := context.Background()
	if err := r.bridge.reports.SubmitSnapshot(ctx, snapshot); err != nil {
		r.bridge.logger.Error(module, "Failed to submit session for report", map[string]interface{}{"session_id": r.session.ID, "error": err.Error()})
	}
	r.bridge.events.PublishInterviewEnded(ctx, snapshot, reason)

	r.bridge.logger.Info(module, "Interview session ended", map[string]interface{}{
		"session_id":        r.session.ID,
		"reason":            reason,
		"phase":             string(snapshot.Phase),
		"transcript_size":   len(snapshot.Transcript),
		"proctoring_events": len(snapshot.ProctoringEvents),
		"vision_analyses":   len(snapshot.VisionAnalyses),
	})
	return result
}

func (r *Relay) setReason(reason string) {
	r.reasonMu.Lock()
	defer r.reasonMu.Unlock()
	if r.endReason == "" {
		r.endReason = reason
	}
}

func (r *Relay) reason() string {
	r.reasonMu.Lock()
	defer r.reasonMu.Unlock()
	return r.endReason
}

// inbound relays client messages upstream, one at a time.
func (r *Relay) inbound(ctx context.Context) error {
	for {
		_, raw, err := r.client.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return &protocol.TransportError{Peer: "client", Err: err}
		}

		msg, err := protocol.DecodeClientMessage(raw)
		if err != nil {
			r.bridge.logger.Warn(module, "Ignoring malformed client message", map[string]interface{}{"session_id": r.session.ID, "error": err.Error()})
			continue
		}
		if err := r.handleClient(ctx, msg); err != nil {
			return err
		}
	}
}

func (r *Relay) handleClient(ctx context.Context, msg protocol.ClientMessage) error {
	switch m := msg.(type) {
	case protocol.AudioMessage:
		return r.upstream.Send(live.AudioChunk(m.Data))

	case protocol.VisionFrameMessage:
		r.dispatchFrame(m.Data)

	case protocol.ProctoringEventMessage:
		err := r.session.AppendProctoringEvent(model.ProctoringEvent{
			Source:   m.Source,
			Severity: m.Severity,
			Type:     m.Type,
			Message:  m.Message,
			Details:  m.Details,
		})
		if err != nil {
			return nil
		}

	case protocol.CodingSubmitMessage:
		if err := r.session.SubmitCode(m.Code, m.Language); err != nil {
			return nil
		}
		r.bridge.logger.Info(module, "Coding solution submitted", map[string]interface{}{"session_id": r.session.ID, "language": m.Language, "size": len(m.Code)})
		return r.upstream.Send(live.CodingSubmittedTurn())

	case protocol.EndMessage:
		r.setReason(ReasonClientEnd)
		return protocol.ErrSessionEnded

	case protocol.UnknownMessage:
		r.bridge.logger.Debug(module, "Ignoring unknown client message type", map[string]interface{}{"session_id": r.session.ID, "type": m.Type})
	}
	return nil
}

// dispatchFrame starts a detached analysis. Every frame is queued unless the
// session is tearing down or MaxPendingAnalyses was set and is reached.
func (r *Relay) dispatchFrame(frame string) {
	accepted := r.tasks.Go(func(ctx context.Context) {
		analysis := r.bridge.analyzer.Analyze(ctx, frame)
		if ctx.Err() != nil {
			return
		}
		if err := r.session.RecordAnalysis(analysis); err != nil {
			return
		}
		if !analysis.AnalysisSuccess {
			r.bridge.logger.Warn(module, "Frame analysis degraded", map[string]interface{}{"session_id": r.session.ID, "error": analysis.Error})
		}
		if analysis.AnalysisSuccess && analysis.OverallSuspicionLevel.IsAlert() {
			r.bridge.events.PublishProctoringAlert(context.WithoutCancel(ctx), r.session.ID, analysis)
		}
		_ = r.writer.enqueue(ctx, protocol.NewVisionResult(analysis))
	})
	if !accepted {
		r.bridge.logger.Warn(module, "Vision frame not analyzed", map[string]interface{}{"session_id": r.session.ID, "pending": r.tasks.Pending()})
	}
}

// outbound relays upstream messages to the client in receipt order.
func (r *Relay) outbound(ctx context.Context) error {
	for {
		msg, err := r.upstream.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if err := r.handleUpstream(ctx, msg); err != nil {
			return err
		}
	}
}

func (r *Relay) handleUpstream(ctx context.Context, msg *live.ServerMessage) error {
	if msg.GoAway != nil {
		r.bridge.logger.Warn(module, "Upstream announced disconnect", map[string]interface{}{"session_id": r.session.ID})
	}
	if sc := msg.ServerContent; sc != nil {
		if err := r.handleContent(ctx, sc); err != nil {
			return err
		}
	}
	if msg.ToolCall != nil {
		return r.handleToolCall(ctx, msg.ToolCall)
	}
	return nil
}

func (r *Relay) handleContent(ctx context.Context, sc *live.ServerContent) error {
	if sc.ModelTurn != nil {
		for _, part := range sc.ModelTurn.Parts {
			if part.InlineData != nil && strings.HasPrefix(part.InlineData.MimeType, "audio/") {
				if err := r.writer.enqueue(ctx, protocol.NewAudio(part.InlineData.Data)); err != nil {
					return err
				}
			}
			if part.Text != "" {
				if err := r.transcribe(ctx, model.RoleAI, part.Text); err != nil {
					return err
				}
			}
		}
	}
	if sc.InputTranscription != nil && sc.InputTranscription.Text != "" {
		if err := r.transcribe(ctx, model.RoleUser, sc.InputTranscription.Text); err != nil {
			return err
		}
	}
	if sc.OutputTranscription != nil && sc.OutputTranscription.Text != "" {
		if err := r.transcribe(ctx, model.RoleAI, sc.OutputTranscription.Text); err != nil {
			return err
		}
	}

	if sc.TurnComplete {
		if err := r.writer.enqueue(ctx, protocol.NewTurnComplete()); err != nil {
			return err
		}
		if change, ok := r.machine.TurnComplete(); ok {
			return r.applyChange(ctx, change)
		}
	}
	return nil
}

func (r *Relay) transcribe(ctx context.Context, role, text string) error {
	if err := r.session.AppendTranscript(role, text); err != nil {
		return nil
	}
	return r.writer.enqueue(ctx, protocol.NewTranscript(role, text))
}

// handleToolCall acknowledges every call before the next upstream message is read.
func (r *Relay) handleToolCall(ctx context.Context, tc *live.ToolCall) error {
	ended := false
	for _, fc := range tc.FunctionCalls {
		outcome := r.machine.Handle(phase.NewFunctionCall(fc.ID, fc.Name, fc.Args))
		if !outcome.Accepted {
			r.bridge.logger.Warn(module, "Rejected function call", map[string]interface{}{"session_id": r.session.ID, "name": fc.Name, "reason": outcome.Reason})
		}

		if outcome.Change != nil {
			if err := r.applyChange(ctx, outcome.Change); err != nil {
				return err
			}
		}
		if err := r.upstream.Send(live.ToolAck(outcome.Ack)); err != nil {
			return err
		}
		if outcome.Terminal() {
			ended = true
		}
	}

	if ended {
		r.setReason(ReasonEndInterview)
		return protocol.ErrSessionEnded
	}
	return nil
}

func (r *Relay) applyChange(ctx context.Context, change *phase.Change) error {
	r.session.SetPhase(change.To)

	switch change.To {
	case model.PhaseCoding:
		r.session.SetCodingAssessment(change.Difficulty, change.Topic)
	case model.PhaseComplete:
		_ = r.session.AppendTranscript(model.RoleSystem, "Interview ended. Summary: "+change.Summary)
	}

	r.bridge.logger.Info(module, "Phase changed", map[string]interface{}{"session_id": r.session.ID, "from": string(change.From), "to": string(change.To)})
	return r.writer.enqueue(ctx, protocol.NewPhaseChange(change.To, change.Difficulty, change.Topic, change.Summary))
}
