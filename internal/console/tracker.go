package console

import (
	"log/slog"
	"time"
)

// Phase status values
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Tracker records the phases of a multi-step command
type Tracker interface {
	Start(phase string) *Phase
	Complete()
	Error(err error)
}

// Phase is one tracked step
type Phase struct {
	Name      string
	StartTime time.Time
	Duration  time.Duration
	Status    string
	Err       error
}

// PhaseTracker logs each phase with its duration and keeps the history
type PhaseTracker struct {
	logger  *slog.Logger
	current *Phase
	history []Phase
	now     func() time.Time
}

// NewTracker creates a tracker logging to logger
func NewTracker(logger *slog.Logger) *PhaseTracker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PhaseTracker{logger: logger, now: time.Now}
}

// Start begins a new phase. A phase still open is completed first.
func (t *PhaseTracker) Start(phase string) *Phase {
	if t.current != nil {
		t.Complete()
	}
	t.current = &Phase{Name: phase, StartTime: t.now(), Status: StatusInProgress}
	t.logger.Debug("phase started", "phase", phase)
	return t.current
}

// Complete marks the current phase as completed
func (t *PhaseTracker) Complete() {
	t.finish(StatusCompleted, nil)
}

// Error marks the current phase as failed
func (t *PhaseTracker) Error(err error) {
	t.finish(StatusFailed, err)
}

func (t *PhaseTracker) finish(status string, err error) {
	if t.current == nil {
		return
	}
	p := t.current
	p.Status = status
	p.Err = err
	p.Duration = t.now().Sub(p.StartTime)
	if err != nil {
		t.logger.Debug("phase failed", "phase", p.Name, "duration", p.Duration, "error", err)
	} else {
		t.logger.Debug("phase completed", "phase", p.Name, "duration", p.Duration)
	}
	t.history = append(t.history, *p)
	t.current = nil
}

// Current returns the open phase, or nil
func (t *PhaseTracker) Current() *Phase {
	return t.current
}

// History returns finished phases in order
func (t *PhaseTracker) History() []Phase {
	return append([]Phase(nil), t.history...)
}
