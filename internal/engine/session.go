package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"cadence/internal/logging"
	"cadence/internal/records"
)

// ErrNothingToRun is returned when a session starts with an empty queue.
var ErrNothingToRun = errors.New("no runnable routines in today's queue")

// SessionConfig carries the knobs a session needs beyond its queue.
type SessionConfig struct {
	UserID          string
	Rules           Rules
	DayBoundaryHour int
}

// Session drives one run through a queue. The one-second timer is the single
// driver of state: it is stopped before a transition is computed and only
// re-armed afterwards, so transitions never interleave.
type Session struct {
	cfg      SessionConfig
	queue    []QueueItem
	recorder records.Recorder
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	state    RunState
	timer    *time.Timer
	done     chan struct{}
	finished bool
	onChange func(RunState)
}

// NewSession builds a session over an already materialized queue.
func NewSession(queue []QueueItem, recorder records.Recorder, cfg SessionConfig, logger *slog.Logger) *Session {
	if recorder == nil {
		recorder = records.Noop{}
	}
	return &Session{
		cfg:      cfg,
		queue:    queue,
		recorder: recorder,
		logger:   logging.WithComponent(logger, "session"),
		now:      time.Now,
		state:    NewRunState(),
		done:     make(chan struct{}),
	}
}

// OnChange registers a state observer, called after every transition while
// holding no locks the callback could re-enter.
func (s *Session) OnChange(fn func(RunState)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Done closes when the session has exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// State returns a snapshot of the current run state.
func (s *Session) State() RunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Queue returns the session's queue.
func (s *Session) Queue() []QueueItem {
	return s.queue
}

// Current returns the queue item the state points at.
func (s *Session) Current() (QueueItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked()
}

func (s *Session) currentLocked() (QueueItem, bool) {
	if s.state.QueueIndex < 0 || s.state.QueueIndex >= len(s.queue) {
		return QueueItem{}, false
	}
	return s.queue[s.state.QueueIndex], true
}

// Begin moves the session from listing to the first item's ready screen.
func (s *Session) Begin() error {
	if len(s.queue) == 0 {
		return ErrNothingToRun
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Phase != PhaseListing {
		return nil
	}
	s.applyLocked(EventStart)
	return nil
}

// Start begins the countdown for the current item.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Phase != PhaseReady {
		return
	}
	s.applyLocked(EventStart)
	s.armLocked()
}

// Pause stops accrual entirely until Resume.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
	s.applyLocked(EventPause)
}

// Resume restarts the countdown after a pause.
func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Phase != PhaseRunning || !s.state.Paused {
		return
	}
	s.applyLocked(EventResume)
	s.armLocked()
}

// SkipStep forces the next step or set without crediting unelapsed time.
func (s *Session) SkipStep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Phase != PhaseRunning {
		return
	}
	s.stopTimerLocked()
	s.applyLocked(EventSkipStep)
	s.armLocked()
}

// DraftAndExit snapshots the current progress as a draft record and ends the
// session without advancing the queue. The append is best-effort.
func (s *Session) DraftAndExit(ctx context.Context) {
	s.mu.Lock()
	if s.state.Phase != PhaseRunning {
		s.mu.Unlock()
		s.Exit()
		return
	}
	s.stopTimerLocked()
	item, _ := s.currentLocked()
	draft := records.Draft{
		Status:         records.StatusDraft,
		Title:          item.Title,
		SetCount:       item.SetCount,
		PlannedMinutes: item.PlannedMinutes(),
		ElapsedSeconds: s.state.ElapsedSeconds,
		CompletedAt:    s.now().UTC(),
	}
	s.mu.Unlock()

	if err := s.recorder.Append(ctx, s.cfg.UserID, draft); err != nil {
		s.logger.Warn("draft append failed",
			logging.String(logging.FieldUserID, s.cfg.UserID),
			logging.Error(err),
			logging.String(logging.FieldEventType, "draft_append_failed"),
		)
	}
	s.Exit()
}

// ConfirmCheckIn appends the final record and the day-scoped note, then
// advances to the next item's ready screen or exits when the queue is done.
// Record appends never block the transition.
func (s *Session) ConfirmCheckIn(ctx context.Context, checkIn records.CheckIn) error {
	if !checkIn.Valid() {
		return errors.New("check-in scores must be between 1 and 5")
	}
	s.mu.Lock()
	if s.state.Phase != PhaseCheckingIn {
		s.mu.Unlock()
		return errors.New("no check-in pending")
	}
	item, _ := s.currentLocked()
	completed := s.now()
	final := records.Draft{
		Status:         records.StatusFinal,
		Title:          item.Title,
		SetCount:       item.SetCount,
		PlannedMinutes: item.PlannedMinutes(),
		ElapsedSeconds: s.state.ElapsedSeconds,
		CompletedAt:    completed.UTC(),
		CheckIn:        &checkIn,
	}
	note := records.Note{
		Day:          records.NoteDay(s.logicalDay(completed)),
		Title:        item.Title,
		Mood:         checkIn.Mood,
		Focus:        checkIn.Focus,
		GoalAchieved: checkIn.GoalAchieved,
	}
	s.applyLocked(EventConfirmCheckIn)
	hasNext := s.state.QueueIndex+1 < len(s.queue)
	if hasNext {
		s.applyLocked(EventNextItem)
	}
	s.mu.Unlock()

	if err := s.recorder.Append(ctx, s.cfg.UserID, final); err != nil {
		s.logger.Warn("final record append failed",
			logging.String(logging.FieldUserID, s.cfg.UserID),
			logging.Error(err),
			logging.String(logging.FieldEventType, "record_append_failed"),
		)
	}
	if err := s.recorder.SaveNote(ctx, s.cfg.UserID, note); err != nil {
		s.logger.Warn("check-in note save failed",
			logging.String(logging.FieldUserID, s.cfg.UserID),
			logging.Error(err),
		)
	}
	if !hasNext {
		s.Exit()
	}
	return nil
}

// Exit cancels the timer immediately and ends the session.
func (s *Session) Exit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
	if !s.finished {
		s.finished = true
		close(s.done)
	}
}

func (s *Session) tick() {
	s.mu.Lock()
	if s.finished || s.state.Phase != PhaseRunning || s.state.Paused {
		s.mu.Unlock()
		return
	}
	s.applyLocked(EventTick)
	if s.state.Phase == PhaseRunning && !s.state.Paused {
		s.armLocked()
	}
	s.mu.Unlock()
}

// applyLocked runs one transition and notifies the observer. Callers hold mu.
func (s *Session) applyLocked(event Event) {
	index := s.state.QueueIndex
	if event == EventNextItem {
		index++
	}
	var item QueueItem
	if index >= 0 && index < len(s.queue) {
		item = s.queue[index]
	}
	s.state = s.cfg.Rules.Advance(s.state, event, item)
	if s.onChange != nil {
		go s.onChange(s.state)
	}
}

func (s *Session) armLocked() {
	if s.timer == nil {
		s.timer = time.AfterFunc(time.Second, s.tick)
		return
	}
	s.timer.Reset(time.Second)
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
}

// logicalDay shifts timestamps before the day boundary onto the previous
// calendar day, matching how the run queue resolves "today".
func (s *Session) logicalDay(t time.Time) time.Time {
	if t.Hour() < s.cfg.DayBoundaryHour {
		return t.AddDate(0, 0, -1)
	}
	return t
}
