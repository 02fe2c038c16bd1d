// Package model defines shared data structures.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidMode is returned for an unrecognized access mode.
var ErrInvalidMode = errors.New("invalid access mode")

// AccessMode selects how a lane decision is collected from the player.
type AccessMode int

const (
	// ModeAuto resolves every decision with the correct lane after a fixed delay.
	ModeAuto AccessMode = iota
	// ModeOneSwitch highlights whatever the player picks but always answers correctly.
	ModeOneSwitch
	// ModeTwoChoice resolves immediately with the lane the player picks.
	ModeTwoChoice
	// ModeCycleScan moves a highlight with one switch and confirms with another.
	ModeCycleScan
)

var modeNames = map[AccessMode]string{
	ModeAuto:      "auto",
	ModeOneSwitch: "one",
	ModeTwoChoice: "two",
	ModeCycleScan: "scan",
}

// Modes lists the access modes in display order.
func Modes() []AccessMode {
	return []AccessMode{ModeAuto, ModeOneSwitch, ModeTwoChoice, ModeCycleScan}
}

// String returns the configuration name of the mode.
func (m AccessMode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Description explains the mode for help output.
func (m AccessMode) Description() string {
	switch m {
	case ModeAuto:
		return "decisions are made for you after one second"
	case ModeOneSwitch:
		return "any switch press confirms; the defender always goes the right way"
	case ModeTwoChoice:
		return "left and right pick the lane directly"
	case ModeCycleScan:
		return "space moves the highlight, enter confirms it"
	default:
		return ""
	}
}

// ParseMode maps a configuration string onto an AccessMode.
func ParseMode(s string) (AccessMode, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for mode, name := range modeNames {
		if name == key {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("%w %q (valid: auto, one, two, scan)", ErrInvalidMode, s)
}

// Phase is the state of the live wave.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRepositioning
	PhaseAdvancing
	PhaseAwaitingInput
	PhaseResuming
	PhaseResolved
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRepositioning:
		return "repositioning"
	case PhaseAdvancing:
		return "advancing"
	case PhaseAwaitingInput:
		return "awaiting-input"
	case PhaseResuming:
		return "resuming"
	case PhaseResolved:
		return "resolved"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// TargetKind distinguishes rewarded attackers from hazards.
type TargetKind int

const (
	// TargetPrimary is intercepted for points.
	TargetPrimary TargetKind = iota
	// TargetSecondary is a hazard that must be dodged.
	TargetSecondary
)

func (k TargetKind) String() string {
	if k == TargetSecondary {
		return "hazard"
	}
	return "ship"
}

// Outcome is how a wave ended.
type Outcome int

const (
	// OutcomeHit means the defender collided with the target.
	OutcomeHit Outcome = iota
	// OutcomeMiss means the target left the field untouched.
	OutcomeMiss
)

func (o Outcome) String() string {
	if o == OutcomeMiss {
		return "miss"
	}
	return "hit"
}

// Config defines play settings.
type Config struct {
	Mode        AccessMode
	Sound       bool
	Hazards     bool
	PeriodMs    float64
	AutoDelayMs float64
	Seed        int64
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Mode        string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// Decision is one resolved lane choice.
type Decision struct {
	Mode      AccessMode
	Correct   int
	Displayed int
	Chosen    int
	LatencyMs float64
}

// IsCorrect reports whether the logical answer matched the correct lane.
func (d Decision) IsCorrect() bool {
	return d.Chosen == d.Correct
}

// WaveResult summarizes a finished wave.
type WaveResult struct {
	Kind       TargetKind
	Lane       int
	Outcome    Outcome
	ScoreAfter int
	Decision   *Decision
}

// SessionStats captures a completed play session.
type SessionStats struct {
	StartedAt  time.Time
	EndedAt    time.Time
	Mode       string
	Hazards    bool
	PeriodMs   float64
	Waves      int
	Hits       int
	HazardHits int
	Escapes    int
	Dodges     int
	FinalScore int
	PeakScore  int
	DurationMs int64
}

// SessionAggregate summarizes a session for reporting.
type SessionAggregate struct {
	SessionID      int64
	EndedAt        time.Time
	Mode           string
	Waves          int
	Hits           int
	HazardHits     int
	FinalScore     int
	PeakScore      int
	Decisions      int
	CorrectChoices int
	LatencySumMs   float64
	DurationMs     int64
}

// ModeAggregate aggregates decision stats per access mode.
type ModeAggregate struct {
	Mode         string
	Sessions     int
	Decisions    int
	Correct      int
	LatencySumMs float64
}
