// Package wave runs the attack-wave state machine.
package wave

import (
	"errors"
	"io"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/verte-zerg/spacelane/internal/arbiter"
	"github.com/verte-zerg/spacelane/internal/clock"
	"github.com/verte-zerg/spacelane/internal/flight"
	"github.com/verte-zerg/spacelane/internal/generator"
	"github.com/verte-zerg/spacelane/internal/model"
	"github.com/verte-zerg/spacelane/internal/score"
)

// DefaultPeriodMs is the flight time of one attack.
const DefaultPeriodMs = 2000

const choiceCount = 2

// Options configure a Controller.
type Options struct {
	PeriodMs float64
	Field    Field
	Sound    bool
	Logger   *log.Logger
	Recorder Recorder
}

// State is a snapshot of the live wave.
type State struct {
	Phase     model.Phase
	ElapsedMs float64
	PeriodMs  float64
	Lane      int
	Correct   int
	Kind      model.TargetKind
	Path      flight.Params
	TargetX   float64
	TargetY   float64
}

type waveState struct {
	elapsed    float64
	reposition float64
	lane       int
	correct    int
	kind       model.TargetKind
	path       flight.Params
	x, y       float64
	decision   *model.Decision
}

// Controller owns the live wave. It is driven by Advance from the host's
// update loop and is not safe for concurrent use.
type Controller struct {
	host    Host
	decider Decider
	keeper  *score.Keeper
	gen     Spawner
	sched   *clock.Scheduler
	opts    Options
	logger  *log.Logger

	phase    model.Phase
	wave     *waveState
	collided bool
	waves    int
}

// New builds a Controller. sched must be the scheduler the decider uses; the
// controller advances it every tick.
func New(host Host, decider Decider, keeper *score.Keeper, gen Spawner, sched *clock.Scheduler, opts Options) *Controller {
	if opts.PeriodMs <= 0 {
		opts.PeriodMs = DefaultPeriodMs
	}
	if opts.Field.Width <= 0 || opts.Field.Height <= 0 {
		opts.Field = DefaultField()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Controller{
		host:    host,
		decider: decider,
		keeper:  keeper,
		gen:     gen,
		sched:   sched,
		opts:    opts,
		logger:  logger,
		phase:   model.PhaseIdle,
	}
}

// Phase returns the current phase.
func (c *Controller) Phase() model.Phase {
	return c.phase
}

// Score returns the current score.
func (c *Controller) Score() int {
	return c.keeper.Value()
}

// Waves returns the number of waves started.
func (c *Controller) Waves() int {
	return c.waves
}

// PeriodMs returns the flight time of one attack.
func (c *Controller) PeriodMs() float64 {
	return c.opts.PeriodMs
}

// Field returns the play area.
func (c *Controller) Field() Field {
	return c.opts.Field
}

// State returns a snapshot of the live wave.
func (c *Controller) State() State {
	st := State{Phase: c.phase, PeriodMs: c.opts.PeriodMs}
	if w := c.wave; w != nil {
		st.ElapsedMs = w.elapsed
		st.Lane = w.lane
		st.Correct = w.correct
		st.Kind = w.kind
		st.Path = w.path
		st.TargetX = w.x
		st.TargetY = w.y
	}
	return st
}

// Start begins the first wave. It is a no-op unless the controller is idle.
func (c *Controller) Start() {
	if c.phase != model.PhaseIdle {
		return
	}
	c.host.SetScoreDisplay(strconv.Itoa(c.keeper.Value()))
	c.host.SetVisible(EntityDefender, true)
	c.host.PlayAnimation(EntityDefender, generator.DefenderAnimation)
	c.startWave()
}

// Stop tears the loop down. A pending decision is dropped without firing.
func (c *Controller) Stop() {
	c.decider.Cancel()
	c.wave = nil
	c.collided = false
	c.phase = model.PhaseIdle
}

// OnCollision records that the host saw the defender overlap the target. It
// takes effect on the next Advance, before any time-based transition.
func (c *Controller) OnCollision() {
	switch c.phase {
	case model.PhaseAdvancing, model.PhaseResuming:
		c.collided = true
	}
}

// Advance moves the wave forward by deltaMs of host time.
func (c *Controller) Advance(deltaMs float64) {
	if deltaMs < 0 {
		deltaMs = 0
	}
	if c.collided {
		c.collided = false
		if c.phase == model.PhaseAdvancing || c.phase == model.PhaseResuming {
			c.finish(model.OutcomeHit)
			c.sched.Advance(deltaMs)
			return
		}
	}

	switch c.phase {
	case model.PhaseRepositioning:
		c.wave.reposition -= deltaMs
		if c.wave.reposition <= 0 {
			c.beginAttack()
		}
	case model.PhaseAdvancing:
		half := c.opts.PeriodMs / 2
		prev := c.wave.elapsed
		c.wave.elapsed += deltaMs
		if prev < half && c.wave.elapsed >= half {
			c.wave.elapsed = half
			c.place()
			c.requestDecision()
		} else {
			c.place()
		}
	case model.PhaseResuming:
		c.wave.elapsed += deltaMs
		if c.wave.elapsed >= c.opts.PeriodMs {
			c.wave.elapsed = c.opts.PeriodMs
			c.place()
			c.finish(model.OutcomeMiss)
		} else {
			c.place()
		}
	}

	c.sched.Advance(deltaMs)
}

func (c *Controller) startWave() {
	c.decider.ClearSelection()
	draw := c.gen.Wave(c.keeper.SecondaryChance())
	correct := draw.Lane
	if draw.Kind == model.TargetSecondary {
		correct = 1 - draw.Lane
	}
	c.wave = &waveState{
		reposition: c.opts.PeriodMs / 4,
		lane:       draw.Lane,
		correct:    correct,
		kind:       draw.Kind,
		path: flight.Params{
			Sign:           draw.Sign,
			Frequency:      draw.Frequency,
			AmplitudeScale: c.keeper.Amplitude(),
		},
	}
	c.collided = false
	c.waves++
	c.phase = model.PhaseRepositioning
	c.host.MoveDefender(c.opts.Field.Width/2, c.opts.Field.DefenderY())
	c.host.PlayAnimation(EntityTarget, draw.Animation)
	c.logger.Debug("wave started", "wave", c.waves, "lane", draw.Lane, "kind", draw.Kind, "correct", correct, "freq", draw.Frequency)
}

func (c *Controller) beginAttack() {
	c.wave.elapsed = 0
	c.phase = model.PhaseAdvancing
	c.place()
	c.host.SetVisible(EntityTarget, true)
	if c.wave.kind == model.TargetPrimary {
		c.playSound(SoundAlien)
	}
}

// place computes the target position for the current elapsed time.
func (c *Controller) place() {
	w := c.wave
	f := c.opts.Field
	progress := w.elapsed / c.opts.PeriodMs
	w.y = f.SpawnY + (f.Height-f.SpawnY)*progress
	pathProgress := w.y / f.DefenderY()
	if pathProgress < 0 {
		pathProgress = 0
	}
	if pathProgress > 1 {
		pathProgress = 1
	}
	w.x = flight.LanePosition(pathProgress, w.lane, w.path, f.Width)
	c.host.MoveTarget(w.x, w.y)
}

func (c *Controller) requestDecision() {
	w := c.wave
	c.phase = model.PhaseAwaitingInput
	onResolved := func(d model.Decision) {
		if c.wave != w || c.phase != model.PhaseAwaitingInput {
			return
		}
		c.resume(d)
	}
	err := c.decider.Request(w.correct, choiceCount, onResolved)
	if errors.Is(err, arbiter.ErrReentrantDecision) {
		c.logger.Error("decision requested while another was pending; dropping the stale one", "wave", c.waves)
		c.decider.Cancel()
		err = c.decider.Request(w.correct, choiceCount, onResolved)
	}
	if err != nil {
		c.logger.Error("failed to request decision", "err", err)
	}
}

func (c *Controller) resume(d model.Decision) {
	c.wave.decision = &d
	c.host.MoveDefender(flight.LaneGoalX(d.Chosen, c.opts.Field.Width), c.opts.Field.DefenderY())
	c.phase = model.PhaseResuming
	c.logger.Debug("decision resolved", "chosen", d.Chosen, "correct", d.Correct, "latency_ms", d.LatencyMs)
}

func (c *Controller) finish(outcome model.Outcome) {
	w := c.wave
	c.phase = model.PhaseResolved
	value := c.keeper.Apply(outcome, w.kind)
	c.host.SetVisible(EntityTarget, false)
	if outcome == model.OutcomeHit {
		if w.kind == model.TargetSecondary {
			c.host.FlashScreen(FlashHazard)
			c.playSound(SoundExplode)
		} else {
			c.host.FlashScreen("")
			c.playSound(SoundPop)
		}
	}
	c.host.SetScoreDisplay(strconv.Itoa(value))
	if c.opts.Recorder != nil {
		c.opts.Recorder.RecordWave(model.WaveResult{
			Kind:       w.kind,
			Lane:       w.lane,
			Outcome:    outcome,
			ScoreAfter: value,
			Decision:   w.decision,
		})
	}
	c.logger.Debug("wave resolved", "outcome", outcome, "kind", w.kind, "score", value)
	c.phase = model.PhaseIdle
	c.startWave()
}

func (c *Controller) playSound(cue Sound) {
	if c.opts.Sound {
		c.host.PlaySound(cue)
	}
}
