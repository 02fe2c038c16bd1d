// Package score applies wave outcomes and derives difficulty from the score.
package score

import (
	"math"

	"github.com/verte-zerg/spacelane/internal/model"
)

const (
	amplitudeCap      = 10
	hazardStartScore  = 20
	hazardMaxChance   = 0.5
	hazardScoreDivide = 200
	penaltyDivisor    = 10
)

// Keeper holds the running score.
type Keeper struct {
	value   int
	peak    int
	hazards bool
}

// NewKeeper returns a Keeper at zero. hazards=false disables secondary targets.
func NewKeeper(hazards bool) *Keeper {
	return &Keeper{hazards: hazards}
}

// Value returns the current score.
func (k *Keeper) Value() int {
	return k.value
}

// Peak returns the highest score reached.
func (k *Keeper) Peak() int {
	return k.peak
}

// Apply updates the score for a finished wave and returns the new value.
func (k *Keeper) Apply(outcome model.Outcome, kind model.TargetKind) int {
	k.value = Next(k.value, outcome, kind)
	if k.value > k.peak {
		k.peak = k.value
	}
	return k.value
}

// Amplitude returns the wiggle scale for the current score.
func (k *Keeper) Amplitude() float64 {
	return DifficultyAmplitude(k.value)
}

// SecondaryChance returns the hazard probability for the current score.
func (k *Keeper) SecondaryChance() float64 {
	if !k.hazards {
		return 0
	}
	return SecondaryProbability(k.value)
}

// Next maps a score and a wave outcome to the following score. Intercepting a
// ship scores one; hitting a hazard costs a tenth of the score, rounded down.
// Escapes leave the score unchanged. The result never drops below zero.
func Next(current int, outcome model.Outcome, kind model.TargetKind) int {
	if outcome != model.OutcomeHit {
		return current
	}
	next := current
	switch kind {
	case model.TargetPrimary:
		next++
	case model.TargetSecondary:
		next -= current / penaltyDivisor
	}
	if next < 0 {
		next = 0
	}
	return next
}

// DifficultyAmplitude scales the wiggle with score, capped at 1 from score 10.
func DifficultyAmplitude(score int) float64 {
	if score < 0 {
		return 0
	}
	return math.Min(amplitudeCap, float64(score)) / amplitudeCap
}

// SecondaryProbability is zero below score 20 and grows to 0.5 at score 100.
func SecondaryProbability(score int) float64 {
	if score < hazardStartScore {
		return 0
	}
	return math.Min(hazardMaxChance, float64(score)/hazardScoreDivide)
}
