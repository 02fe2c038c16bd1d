// Package generator draws the random parameters of each attack wave.
package generator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/verte-zerg/spacelane/internal/model"
)

const (
	minFrequency = 0.5
	maxFrequency = 2.5
	shipVariants = 10
)

// Draw holds the randomized parameters of one wave.
type Draw struct {
	Lane      int
	Sign      float64
	Frequency float64
	Kind      model.TargetKind
	Animation string
}

// Generator produces randomized waves.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// ForSeed returns a seeded Generator, or a time-seeded one when seed is 0.
func ForSeed(seed int64) *Generator {
	if seed == 0 {
		return New()
	}
	return NewSeeded(seed)
}

// Wave draws lane, direction, curviness and target kind. secondaryChance is
// the probability of drawing a hazard instead of a ship.
func (g *Generator) Wave(secondaryChance float64) Draw {
	d := Draw{
		Lane:      g.rnd.Intn(2),
		Sign:      float64(2*g.rnd.Intn(2) - 1),
		Frequency: minFrequency + g.rnd.Float64()*(maxFrequency-minFrequency),
		Kind:      model.TargetPrimary,
	}
	if secondaryChance > 0 && g.rnd.Float64() < secondaryChance {
		d.Kind = model.TargetSecondary
		d.Animation = HazardAnimation
		return d
	}
	d.Animation = ShipAnimation(g.rnd.Intn(shipVariants))
	return d
}

// HazardAnimation is played on secondary targets.
const HazardAnimation = "spin"

// DefenderAnimation is played on the defender.
const DefenderAnimation = "flicker"

// ShipAnimation names one of the primary ship animations.
func ShipAnimation(variant int) string {
	return fmt.Sprintf("ship%d", variant)
}
