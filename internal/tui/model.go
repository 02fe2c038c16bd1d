// Package tui provides the Bubble Tea game host.
package tui

import (
	"context"
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/verte-zerg/spacelane/internal/arbiter"
	"github.com/verte-zerg/spacelane/internal/clock"
	"github.com/verte-zerg/spacelane/internal/model"
	"github.com/verte-zerg/spacelane/internal/score"
	"github.com/verte-zerg/spacelane/internal/store"
	"github.com/verte-zerg/spacelane/internal/wave"
)

const (
	tickInterval = time.Second / 30
	// maxStepMs caps a single step so a stalled terminal does not teleport the target.
	maxStepMs  = 100.0
	flashTicks = 6

	// Overlap box half-sizes in field units.
	hitRadiusX = 45.0
	hitRadiusY = 30.0

	defenderSpeed = 1.2 // field units per ms
	starCount     = 40
)

type tickMsg time.Time

// Options configure a game Model.
type Options struct {
	Config model.Config
	// Store persists the session on quit. Nil disables persistence.
	Store  *store.Store
	Logger *log.Logger
	// Bell receives the terminal bell for sound cues. Nil mutes them.
	Bell  io.Writer
	Field wave.Field
}

type star struct {
	x, y, speed float64
}

type tally struct {
	waves      int
	hits       int
	hazardHits int
	escapes    int
	dodges     int
	decisions  []model.Decision
}

// Model implements the Bubble Tea game UI. It is the rendering host of the wave
// controller and the selection view of the arbiter.
type Model struct {
	cfg    model.Config
	store  *store.Store
	logger *log.Logger
	bell   io.Writer

	sched  *clock.Scheduler
	arb    *arbiter.Arbiter
	keeper *score.Keeper
	ctrl   *wave.Controller
	field  wave.Field
	help   help.Model

	width  int
	height int

	targetX, targetY     float64
	targetVisible        bool
	targetAnim           string
	defenderX, defenderY float64
	defenderGoalX        float64
	defenderPlaced       bool
	defenderVisible      bool
	defenderAnim         string
	scoreText            string
	selected             int
	flashColor           string
	flashLeft            int
	cues                 []wave.Sound

	stars    []star
	frame    int
	paused   bool
	lastTick time.Time

	startedAt time.Time
	session   tally
	bestScore int
	saved     bool
}

// NewModel wires an arbiter, score keeper and wave controller around a new Model.
func NewModel(opts Options, gen wave.Spawner) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	field := opts.Field
	if field.Width <= 0 || field.Height <= 0 {
		field = wave.DefaultField()
	}
	m := &Model{
		cfg:      opts.Config,
		store:    opts.Store,
		logger:   logger,
		bell:     opts.Bell,
		sched:    clock.NewScheduler(),
		keeper:   score.NewKeeper(opts.Config.Hazards),
		field:    field,
		help:     help.New(),
		selected: arbiter.NoSelection,
	}
	m.arb = arbiter.New(opts.Config.Mode, opts.Config.AutoDelayMs, m.sched, m)
	m.ctrl = wave.New(m, m.arb, m.keeper, gen, m.sched, wave.Options{
		PeriodMs: opts.Config.PeriodMs,
		Field:    field,
		Sound:    opts.Config.Sound,
		Logger:   logger,
		Recorder: m,
	})
	m.stars = newStars(opts.Config.Seed, field)
	m.loadBestScore()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	m.startedAt = time.Now()
	m.ctrl.Start()
	return tick()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tickMsg:
		m.step(time.Time(msg))
		return m, tea.Batch(tick(), m.flushCues())
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.Close()
		return m, tea.Quit
	case key.Matches(msg, keys.Pause):
		m.paused = !m.paused
		return m, nil
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	if m.paused {
		return m, nil
	}
	switch {
	case key.Matches(msg, keys.Left):
		m.arb.OnDirectSelect(0)
	case key.Matches(msg, keys.Right):
		m.arb.OnDirectSelect(1)
	case key.Matches(msg, keys.Cycle):
		m.arb.OnCycleAdvance()
	case key.Matches(msg, keys.Confirm):
		m.arb.OnCycleConfirm()
	}
	return m, nil
}

func (m *Model) step(now time.Time) {
	delta := 0.0
	if !m.lastTick.IsZero() {
		delta = math.Min(float64(now.Sub(m.lastTick).Microseconds())/1000, maxStepMs)
	}
	m.lastTick = now
	m.frame++
	if m.flashLeft > 0 {
		m.flashLeft--
	}
	if m.paused || delta <= 0 {
		return
	}
	m.ctrl.Advance(delta)
	m.easeDefender(delta)
	m.driftStars(delta)
	if m.overlapping() {
		m.ctrl.OnCollision()
	}
}

func (m *Model) easeDefender(deltaMs float64) {
	diff := m.defenderGoalX - m.defenderX
	stepX := defenderSpeed * deltaMs
	if math.Abs(diff) <= stepX {
		m.defenderX = m.defenderGoalX
		return
	}
	m.defenderX += math.Copysign(stepX, diff)
}

func (m *Model) overlapping() bool {
	if !m.targetVisible || !m.defenderVisible {
		return false
	}
	return math.Abs(m.targetX-m.defenderX) < hitRadiusX && math.Abs(m.targetY-m.defenderY) < hitRadiusY
}

func newStars(seed int64, field wave.Field) []star {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rnd := rand.New(rand.NewSource(seed))
	stars := make([]star, starCount)
	for i := range stars {
		stars[i] = star{
			x:     rnd.Float64() * field.Width,
			y:     rnd.Float64() * field.Height,
			speed: 0.02 + rnd.Float64()*0.06,
		}
	}
	return stars
}

func (m *Model) driftStars(deltaMs float64) {
	for i := range m.stars {
		m.stars[i].y = math.Mod(m.stars[i].y+m.stars[i].speed*deltaMs, m.field.Height)
	}
}

func (m *Model) flushCues() tea.Cmd {
	if len(m.cues) == 0 {
		return nil
	}
	m.cues = m.cues[:0]
	w := m.bell
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		if _, err := io.WriteString(w, "\a"); err != nil {
			// Best-effort bell.
			_ = err
		}
		return nil
	}
}

// Close stops the wave loop and persists the session once. It is safe to call
// more than once.
func (m *Model) Close() {
	m.ctrl.Stop()
	if m.saved {
		return
	}
	m.saved = true
	if m.store == nil || m.session.waves == 0 {
		return
	}
	endedAt := time.Now()
	stats := model.SessionStats{
		StartedAt:  m.startedAt,
		EndedAt:    endedAt,
		Mode:       m.cfg.Mode.String(),
		Hazards:    m.cfg.Hazards,
		PeriodMs:   m.ctrl.PeriodMs(),
		Waves:      m.session.waves,
		Hits:       m.session.hits,
		HazardHits: m.session.hazardHits,
		Escapes:    m.session.escapes,
		Dodges:     m.session.dodges,
		FinalScore: m.keeper.Value(),
		PeakScore:  m.keeper.Peak(),
		DurationMs: endedAt.Sub(m.startedAt).Milliseconds(),
	}
	if _, err := m.store.InsertSession(context.Background(), stats, m.session.decisions); err != nil {
		m.logger.Error("failed to save session", "err", err)
		return
	}
	m.logger.Info("session saved", "mode", stats.Mode, "waves", stats.Waves, "score", stats.FinalScore)
}

func (m *Model) loadBestScore() {
	if m.store == nil {
		return
	}
	best, err := m.store.BestScore(context.Background(), m.cfg.Mode.String())
	if err != nil {
		m.logger.Warn("failed to load best score", "err", err)
		return
	}
	m.bestScore = best
}

// MoveTarget implements wave.Host.
func (m *Model) MoveTarget(x, y float64) {
	m.targetX, m.targetY = x, y
}

// MoveDefender implements wave.Host. The first placement snaps; later moves ease.
func (m *Model) MoveDefender(x, y float64) {
	m.defenderGoalX, m.defenderY = x, y
	if !m.defenderPlaced {
		m.defenderX = x
		m.defenderPlaced = true
	}
}

// SetVisible implements wave.Host.
func (m *Model) SetVisible(e wave.Entity, visible bool) {
	if e == wave.EntityDefender {
		m.defenderVisible = visible
		return
	}
	m.targetVisible = visible
}

// PlayAnimation implements wave.Host.
func (m *Model) PlayAnimation(e wave.Entity, name string) {
	if e == wave.EntityDefender {
		m.defenderAnim = name
		return
	}
	m.targetAnim = name
}

// SetScoreDisplay implements wave.Host.
func (m *Model) SetScoreDisplay(text string) {
	m.scoreText = text
}

// FlashScreen implements wave.Host.
func (m *Model) FlashScreen(color string) {
	m.flashColor = color
	m.flashLeft = flashTicks
}

// PlaySound implements wave.Host.
func (m *Model) PlaySound(cue wave.Sound) {
	m.cues = append(m.cues, cue)
}

// SetSelected implements arbiter.SelectionView.
func (m *Model) SetSelected(index int) {
	m.selected = index
}

// RecordWave implements wave.Recorder.
func (m *Model) RecordWave(result model.WaveResult) {
	m.session.waves++
	switch {
	case result.Outcome == model.OutcomeHit && result.Kind == model.TargetSecondary:
		m.session.hazardHits++
	case result.Outcome == model.OutcomeHit:
		m.session.hits++
	case result.Kind == model.TargetSecondary:
		m.session.dodges++
	default:
		m.session.escapes++
	}
	if result.Decision != nil {
		m.session.decisions = append(m.session.decisions, *result.Decision)
	}
	if result.ScoreAfter > m.bestScore {
		m.bestScore = result.ScoreAfter
	}
}
