package wave

import (
	"github.com/verte-zerg/spacelane/internal/arbiter"
	"github.com/verte-zerg/spacelane/internal/generator"
	"github.com/verte-zerg/spacelane/internal/model"
)

// Entity identifies a rendered object.
type Entity int

const (
	EntityTarget Entity = iota
	EntityDefender
)

func (e Entity) String() string {
	if e == EntityDefender {
		return "defender"
	}
	return "target"
}

// Sound is an audio cue name.
type Sound string

const (
	SoundPop     Sound = "pop"
	SoundAlien   Sound = "alien"
	SoundExplode Sound = "explode"
)

// FlashHazard is the flash color used when a hazard is hit. The empty color is
// the host's default flash.
const FlashHazard = "red"

// Host renders the commands the controller emits. Coordinates are in field units.
type Host interface {
	MoveTarget(x, y float64)
	MoveDefender(x, y float64)
	SetVisible(e Entity, visible bool)
	PlayAnimation(e Entity, name string)
	SetScoreDisplay(text string)
	FlashScreen(color string)
	PlaySound(cue Sound)
}

// Decider is the part of the input arbiter the controller depends on.
type Decider interface {
	Request(correct, choiceCount int, fn arbiter.Continuation) error
	Cancel()
	ClearSelection()
}

// Spawner draws the parameters of the next wave. *generator.Generator is the
// production implementation.
type Spawner interface {
	Wave(secondaryChance float64) generator.Draw
}

// Recorder receives every finished wave.
type Recorder interface {
	RecordWave(result model.WaveResult)
}

// Field is the logical play area.
type Field struct {
	Width  float64
	Height float64
	// SpawnY is where targets enter, usually just above the top edge.
	SpawnY float64
	// DefenderRow is the defender's y as a fraction of Height.
	DefenderRow float64
}

// DefaultField matches a 600x800 portrait play area.
func DefaultField() Field {
	return Field{Width: 600, Height: 800, SpawnY: -20, DefenderRow: 0.9}
}

// DefenderY returns the defender's y coordinate.
func (f Field) DefenderY() float64 {
	return f.DefenderRow * f.Height
}
