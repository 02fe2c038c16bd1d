// Package arbiter turns raw switch events into a single lane decision.
package arbiter

import (
	"errors"

	"github.com/verte-zerg/spacelane/internal/clock"
	"github.com/verte-zerg/spacelane/internal/model"
)

// DefaultAutoDelayMs is how long auto mode waits before answering.
const DefaultAutoDelayMs = 1000

// NoSelection is the highlight value when nothing is selected.
const NoSelection = -1

// ErrReentrantDecision is returned when a decision is requested while another is pending.
var ErrReentrantDecision = errors.New("decision already pending")

// SelectionView displays the highlighted choice. index is NoSelection to clear it.
type SelectionView interface {
	SetSelected(index int)
}

// Continuation receives the resolved decision exactly once.
type Continuation func(model.Decision)

type request struct {
	correct     int
	choiceCount int
	resolve     Continuation
	requestedAt float64
	auto        *clock.Task
}

// Arbiter holds at most one pending decision.
type Arbiter struct {
	mode        model.AccessMode
	autoDelayMs float64
	sched       *clock.Scheduler
	view        SelectionView

	pending  *request
	selected int
}

// New returns an Arbiter for mode. sched drives auto-mode resolution and latency
// measurement; view may be nil.
func New(mode model.AccessMode, autoDelayMs float64, sched *clock.Scheduler, view SelectionView) *Arbiter {
	if autoDelayMs <= 0 {
		autoDelayMs = DefaultAutoDelayMs
	}
	return &Arbiter{
		mode:        mode,
		autoDelayMs: autoDelayMs,
		sched:       sched,
		view:        view,
		selected:    NoSelection,
	}
}

// Mode returns the configured access mode.
func (a *Arbiter) Mode() model.AccessMode {
	return a.mode
}

// Waiting reports whether a decision is pending.
func (a *Arbiter) Waiting() bool {
	return a.pending != nil
}

// Selected returns the highlighted choice or NoSelection.
func (a *Arbiter) Selected() int {
	return a.selected
}

// Request starts a decision with choiceCount options whose right answer is correct.
func (a *Arbiter) Request(correct, choiceCount int, fn Continuation) error {
	if a.pending != nil {
		return ErrReentrantDecision
	}
	if choiceCount < 2 {
		choiceCount = 2
	}
	req := &request{
		correct:     correct,
		choiceCount: choiceCount,
		resolve:     fn,
		requestedAt: a.sched.Now(),
	}
	a.pending = req
	if a.mode == model.ModeAuto {
		req.auto = a.sched.After(a.autoDelayMs, func() {
			if a.pending == req {
				a.Resolve(req.correct)
			}
		})
	}
	return nil
}

// OnDirectSelect handles a press of the switch bound to choice index.
func (a *Arbiter) OnDirectSelect(index int) {
	if a.pending == nil || index < 0 || index >= a.pending.choiceCount {
		return
	}
	if a.mode == model.ModeCycleScan {
		return
	}
	a.Resolve(index)
}

// OnCycleAdvance moves the highlight to the next choice.
func (a *Arbiter) OnCycleAdvance() {
	if a.pending == nil {
		return
	}
	next := 0
	if a.selected != NoSelection {
		next = (a.selected + 1) % a.pending.choiceCount
	}
	a.setSelected(next)
}

// OnCycleConfirm resolves with the highlighted choice, if any.
func (a *Arbiter) OnCycleConfirm() {
	if a.pending == nil || a.selected == NoSelection {
		return
	}
	a.Resolve(a.selected)
}

// Resolve answers the pending decision. The player's literal choice stays
// highlighted; one-switch mode substitutes the correct answer in the result.
func (a *Arbiter) Resolve(index int) {
	req := a.pending
	if req == nil {
		return
	}
	a.setSelected(index)
	chosen := index
	if a.mode == model.ModeOneSwitch {
		chosen = req.correct
	}
	req.auto.Cancel()
	a.pending = nil
	decision := model.Decision{
		Mode:      a.mode,
		Correct:   req.correct,
		Displayed: index,
		Chosen:    chosen,
		LatencyMs: a.sched.Now() - req.requestedAt,
	}
	if req.resolve != nil {
		req.resolve(decision)
	}
}

// ClearSelection removes the highlight.
func (a *Arbiter) ClearSelection() {
	a.setSelected(NoSelection)
}

// Cancel drops the pending decision without invoking its continuation.
func (a *Arbiter) Cancel() {
	if a.pending != nil {
		a.pending.auto.Cancel()
		a.pending = nil
	}
	a.ClearSelection()
}

func (a *Arbiter) setSelected(index int) {
	a.selected = index
	if a.view != nil {
		a.view.SetSelected(index)
	}
}
