package engine_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"cadence/internal/engine"
	"cadence/internal/logging"
	"cadence/internal/records"
	"cadence/internal/routine"
)

type captureRecorder struct {
	mu     sync.Mutex
	drafts []records.Draft
	notes  []records.Note
}

func (c *captureRecorder) Append(_ context.Context, _ string, draft records.Draft) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drafts = append(c.drafts, draft)
	return nil
}

func (c *captureRecorder) SaveNote(_ context.Context, _ string, note records.Note) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes = append(c.notes, note)
	return nil
}

func (c *captureRecorder) List(context.Context, string) ([]records.Draft, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]records.Draft(nil), c.drafts...), nil
}

func newSession(t *testing.T, queue []engine.QueueItem, recorder records.Recorder) *engine.Session {
	t.Helper()
	cfg := engine.SessionConfig{UserID: "alice", DayBoundaryHour: 4}
	session := engine.NewSession(queue, recorder, cfg, logging.NewNop())
	t.Cleanup(session.Exit)
	return session
}

func waitDone(t *testing.T, session *engine.Session) {
	t.Helper()
	select {
	case <-session.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session did not exit")
	}
}

func TestSessionEmptyQueue(t *testing.T) {
	session := newSession(t, nil, &captureRecorder{})
	if err := session.Begin(); err != engine.ErrNothingToRun {
		t.Fatalf("expected ErrNothingToRun, got %v", err)
	}
}

func TestSessionDraftAndExit(t *testing.T) {
	recorder := &captureRecorder{}
	queue := engine.SingleQueue(routine.Template{ID: "focus", Title: "Focus Block", Steps: steps(25, 5)}, 2)
	session := newSession(t, queue, recorder)

	if err := session.Begin(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	session.Start()
	session.DraftAndExit(context.Background())
	waitDone(t, session)

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if len(recorder.drafts) != 1 {
		t.Fatalf("drafts = %d, want exactly 1", len(recorder.drafts))
	}
	draft := recorder.drafts[0]
	if draft.Status != records.StatusDraft || draft.CheckIn != nil {
		t.Fatalf("unexpected draft: %+v", draft)
	}
	if draft.PlannedMinutes != 60 || draft.Title != "Focus Block" {
		t.Fatalf("draft lost item fields: %+v", draft)
	}
	if session.State().QueueIndex != 0 {
		t.Fatal("draft-and-exit must not advance the queue")
	}
}

func TestSessionConfirmCheckInAdvancesThenExits(t *testing.T) {
	recorder := &captureRecorder{}
	queue := []engine.QueueItem{
		{PlanID: "p1", Title: "Warmup", Steps: steps(5), SetCount: 1, StartAtMinutes: 390},
		{PlanID: "p2", Title: "Drills", Steps: steps(10), SetCount: 1, StartAtMinutes: engine.Unscheduled},
	}
	session := newSession(t, queue, recorder)
	ctx := context.Background()

	if err := session.Begin(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	session.Start()
	session.SkipStep() // single step: straight to check-in
	if phase := session.State().Phase; phase != engine.PhaseCheckingIn {
		t.Fatalf("phase = %v, want checking-in", phase)
	}
	if err := session.ConfirmCheckIn(ctx, records.CheckIn{Mood: 0, Focus: 3}); err == nil {
		t.Fatal("out-of-range check-in must be rejected")
	}
	if err := session.ConfirmCheckIn(ctx, records.CheckIn{Mood: 4, Focus: 5, GoalAchieved: true}); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	state := session.State()
	if state.Phase != engine.PhaseReady || state.QueueIndex != 1 {
		t.Fatalf("expected next item ready, got %+v", state)
	}

	session.Start()
	session.SkipStep()
	if err := session.ConfirmCheckIn(ctx, records.CheckIn{Mood: 3, Focus: 3}); err != nil {
		t.Fatalf("final confirm: %v", err)
	}
	waitDone(t, session)

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if len(recorder.drafts) != 2 {
		t.Fatalf("final records = %d, want 2", len(recorder.drafts))
	}
	for _, draft := range recorder.drafts {
		if draft.Status != records.StatusFinal || draft.CheckIn == nil {
			t.Fatalf("unexpected record: %+v", draft)
		}
	}
	if len(recorder.notes) != 2 {
		t.Fatalf("notes = %d, want 2", len(recorder.notes))
	}
	if recorder.notes[0].Day == "" || recorder.notes[0].Title != "Warmup" {
		t.Fatalf("note not day-scoped: %+v", recorder.notes[0])
	}
}

func TestSessionConfirmWithoutCheckInPending(t *testing.T) {
	session := newSession(t, engine.SingleQueue(routine.Template{ID: "x", Title: "X", Steps: steps(5)}, 1), &captureRecorder{})
	if err := session.Begin(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := session.ConfirmCheckIn(context.Background(), records.CheckIn{Mood: 3, Focus: 3}); err == nil {
		t.Fatal("confirm outside checking-in must fail")
	}
}
