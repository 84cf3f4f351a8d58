package session

import (
	"sync"
	"testing"

	"intelliview-be/pkg/interview/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrentAppendsAreAllRecorded(t *testing.T) {
	s := New("s-1", Persona{JobTitle: "Backend Engineer"})

	const writers = 20
	const perWriter = 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_ = s.AppendTranscript(model.RoleAI, "hello")
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_ = s.AppendProctoringEvent(model.ProctoringEvent{Type: "focus"})
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_ = s.RecordAnalysis(model.VisionAnalysis{AnalysisSuccess: true, OverallSuspicionLevel: model.SuspicionNone})
			}
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	assert.Len(t, snap.Transcript, writers*perWriter)
	assert.Len(t, snap.ProctoringEvents, writers*perWriter)
	assert.Len(t, snap.VisionAnalyses, writers*perWriter)
}

func TestRecordAnalysisMirrorsAlerts(t *testing.T) {
	s := New("s-2", Persona{})

	require.NoError(t, s.RecordAnalysis(model.VisionAnalysis{AnalysisSuccess: true, OverallSuspicionLevel: model.SuspicionMedium}))
	require.NoError(t, s.RecordAnalysis(model.VisionAnalysis{AnalysisSuccess: true, OverallSuspicionLevel: model.SuspicionHigh, Summary: "phone on desk"}))
	require.NoError(t, s.RecordAnalysis(model.VisionAnalysis{AnalysisSuccess: true, OverallSuspicionLevel: model.SuspicionCritical, Summary: "second person"}))

	snap := s.Snapshot()
	require.Len(t, snap.VisionAnalyses, 3)
	require.Len(t, snap.ProctoringEvents, 2)
	assert.Equal(t, model.SourceGeminiVision, snap.ProctoringEvents[0].Source)
	assert.Equal(t, "high", snap.ProctoringEvents[0].Severity)
	assert.Equal(t, "phone on desk", snap.ProctoringEvents[0].Message)
	assert.Equal(t, "critical", snap.ProctoringEvents[1].Severity)
}

func TestFinalizeRejectsLateWrites(t *testing.T) {
	s := New("s-3", Persona{})
	s.Activate()
	require.True(t, s.Active())

	assert.True(t, s.Finalize())
	assert.False(t, s.Finalize())
	assert.False(t, s.Active())

	assert.ErrorIs(t, s.AppendTranscript(model.RoleAI, "late"), ErrFinalized)
	assert.ErrorIs(t, s.AppendProctoringEvent(model.ProctoringEvent{}), ErrFinalized)
	assert.ErrorIs(t, s.RecordAnalysis(model.VisionAnalysis{}), ErrFinalized)
	assert.ErrorIs(t, s.SubmitCode("x", "python"), ErrFinalized)

	snap := s.Snapshot()
	assert.Empty(t, snap.Transcript)
	assert.False(t, snap.EndTime.IsZero())
}

func TestSubmitCodeOverwrites(t *testing.T) {
	s := New("s-4", Persona{})
	require.NoError(t, s.SubmitCode("print(1)", "python"))
	require.NoError(t, s.SubmitCode("console.log(2)", "javascript"))

	snap := s.Snapshot()
	require.NotNil(t, snap.CodingResult)
	assert.Equal(t, "console.log(2)", snap.CodingResult.Code)
	assert.Equal(t, "javascript", snap.CodingResult.Language)
	assert.Equal(t, model.PhaseInit, snap.Phase)
}

func TestAttachCodeResults(t *testing.T) {
	s := New("s-5", Persona{})
	require.NoError(t, s.SubmitCode("def f(): pass", "python"))
	require.NoError(t, s.AttachCodeResults("def f(): pass", "python", model.CodeResults{Passed: 2, Total: 3, Score: 2.0 / 3}))

	snap := s.Snapshot()
	require.NotNil(t, snap.CodingResult.Results)
	assert.Equal(t, 2, snap.CodingResult.Results.Passed)

	// A different program replaces the stored submission.
	require.NoError(t, s.AttachCodeResults("def g(): pass", "python", model.CodeResults{Passed: 3, Total: 3, Score: 1}))
	snap = s.Snapshot()
	assert.Equal(t, "def g(): pass", snap.CodingResult.Code)
	assert.Equal(t, 3, snap.CodingResult.Results.Passed)
}

func TestSnapshotIsDetached(t *testing.T) {
	s := New("s-6", Persona{JobTitle: "SRE"})
	require.NoError(t, s.AppendProctoringEvent(model.ProctoringEvent{Type: "tab", Details: map[string]interface{}{"count": 1}}))
	s.SetCodingAssessment("easy", "strings")

	snap := s.Snapshot()
	snap.ProctoringEvents[0].Details["count"] = 99
	snap.CodingAssessment.Topic = "trees"

	again := s.Snapshot()
	assert.Equal(t, 1, again.ProctoringEvents[0].Details["count"])
	assert.Equal(t, "strings", again.CodingAssessment.Topic)
	assert.Equal(t, "SRE", again.JobTitle)
}
