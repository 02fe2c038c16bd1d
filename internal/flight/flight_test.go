package flight

import (
	"math"
	"testing"
)

func TestPositionConvergesToLaneGoal(t *testing.T) {
	const width = 600.0
	for lane := 0; lane <= 1; lane++ {
		for _, sign := range []float64{-1, 1} {
			for _, freq := range []float64{0.5, 1.3, 2.5} {
				for _, amp := range []float64{0, 0.4, 1} {
					p := Params{Sign: sign, Frequency: freq, AmplitudeScale: amp}
					goal := LaneGoalX(lane, width)
					if got := Position(1, p, goal, width); got != goal {
						t.Fatalf("lane %d sign %v freq %v amp %v: expected %v at progress 1, got %v", lane, sign, freq, amp, goal, got)
					}
				}
			}
		}
	}
}

func TestPositionStartsAtWiggle(t *testing.T) {
	p := Params{Sign: 1, Frequency: 1, AmplitudeScale: 1}
	if got := Position(0, p, LaneGoalX(0, 600), 600); got != 300 {
		t.Fatalf("expected center at progress 0, got %v", got)
	}
}

func TestPositionBlend(t *testing.T) {
	p := Params{Sign: -1, Frequency: 0.25, AmplitudeScale: 0.5}
	const width = 400.0
	goal := LaneGoalX(1, width)
	// sin(2π * 0.25 * 0.5) = sin(π/4)
	w := width/2 - 0.5*width/2*math.Sin(math.Pi/4)
	want := 0.5*w + 0.5*goal
	if got := Position(0.5, p, goal, width); math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestPositionClampsProgress(t *testing.T) {
	p := Params{Sign: 1, Frequency: 2, AmplitudeScale: 1}
	goal := LaneGoalX(0, 600)
	if got := Position(1.7, p, goal, 600); got != goal {
		t.Fatalf("expected clamp to goal, got %v", got)
	}
	if got := Position(-0.3, p, goal, 600); got != Position(0, p, goal, 600) {
		t.Fatalf("expected clamp to start, got %v", got)
	}
}

func TestLaneGoalX(t *testing.T) {
	if got := LaneGoalX(0, 800); got != 200 {
		t.Fatalf("expected 200, got %v", got)
	}
	if got := LaneGoalX(1, 800); got != 600 {
		t.Fatalf("expected 600, got %v", got)
	}
	if got := LanePosition(1, 1, Params{Sign: 1, Frequency: 1, AmplitudeScale: 1}, 800); got != 600 {
		t.Fatalf("expected lane position 600, got %v", got)
	}
}
