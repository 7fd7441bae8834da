package engine

// Phase is the session state machine's coarse position.
type Phase int

const (
	PhaseListing Phase = iota
	PhaseReady
	PhaseRunning
	PhaseCheckingIn
)

func (p Phase) String() string {
	switch p {
	case PhaseListing:
		return "listing"
	case PhaseReady:
		return "ready"
	case PhaseRunning:
		return "running"
	case PhaseCheckingIn:
		return "checking-in"
	default:
		return "unknown"
	}
}

// Event is an input to the transition function.
type Event int

const (
	EventStart Event = iota
	EventTick
	EventPause
	EventResume
	EventSkipStep
	EventConfirmCheckIn
	EventNextItem
)

// RunState is the transient position of a session. It is never persisted;
// durable checkpoints are draft records, not state snapshots.
type RunState struct {
	Phase            Phase
	QueueIndex       int
	SetIndex         int
	StepIndex        int
	RemainingSeconds int
	ElapsedSeconds   int
	Paused           bool
	SettleSeconds    int
}

// NewRunState returns the initial listing state.
func NewRunState() RunState {
	return RunState{Phase: PhaseListing}
}

// Rules carries the timing configuration the transition function needs.
type Rules struct {
	SettleDelaySeconds int
}

// Advance is the pure transition function. Every event either fully applies
// or leaves the state untouched; there is no partial transition. The item is
// the queue entry the resulting state points at, so EventNextItem receives
// the next item, every other event the current one.
func (r Rules) Advance(state RunState, event Event, item QueueItem) RunState {
	switch event {
	case EventStart:
		switch state.Phase {
		case PhaseListing:
			return loadItem(state, state.QueueIndex, item)
		case PhaseReady:
			state.Phase = PhaseRunning
			state.Paused = false
			return state
		}
		return state

	case EventTick:
		if state.Phase != PhaseRunning || state.Paused {
			return state
		}
		if state.SettleSeconds > 0 {
			state.SettleSeconds--
			return state
		}
		state.RemainingSeconds--
		state.ElapsedSeconds++
		if state.RemainingSeconds > 0 {
			return state
		}
		return r.advanceStep(state, item, true)

	case EventSkipStep:
		if state.Phase != PhaseRunning {
			return state
		}
		// Skipping never credits the unelapsed remainder, and a skip into
		// the final transition must not clamp elapsed up to planned.
		return r.advanceStep(state, item, false)

	case EventPause:
		if state.Phase == PhaseRunning {
			state.Paused = true
		}
		return state

	case EventResume:
		if state.Phase == PhaseRunning {
			state.Paused = false
		}
		return state

	case EventConfirmCheckIn:
		// Confirmation's side effects (record appends) live outside the
		// transition; the phase change arrives as EventNextItem or exit.
		return state

	case EventNextItem:
		if state.Phase != PhaseCheckingIn {
			return state
		}
		return loadItem(state, state.QueueIndex+1, item)
	}
	return state
}

func (r Rules) advanceStep(state RunState, item QueueItem, clamp bool) RunState {
	if state.StepIndex < len(item.Steps)-1 {
		state.StepIndex++
		state.RemainingSeconds = stepSeconds(item, state.StepIndex)
		state.SettleSeconds = r.SettleDelaySeconds
		return state
	}
	if state.SetIndex < item.SetCount-1 {
		state.SetIndex++
		state.StepIndex = 0
		state.RemainingSeconds = stepSeconds(item, 0)
		return state
	}
	state.Phase = PhaseCheckingIn
	state.Paused = false
	state.RemainingSeconds = 0
	state.SettleSeconds = 0
	if clamp {
		// Guards against timer drift under-counting a fully run session.
		if planned := item.PlannedMinutes() * 60; state.ElapsedSeconds < planned {
			state.ElapsedSeconds = planned
		}
	}
	return state
}

func loadItem(state RunState, index int, item QueueItem) RunState {
	return RunState{
		Phase:            PhaseReady,
		QueueIndex:       index,
		RemainingSeconds: stepSeconds(item, 0),
	}
}

func stepSeconds(item QueueItem, stepIndex int) int {
	if stepIndex < 0 || stepIndex >= len(item.Steps) {
		return 0
	}
	seconds := item.Steps[stepIndex].DurationMinutes * 60
	if seconds < 0 {
		return 0
	}
	return seconds
}
