package score

import (
	"testing"

	"github.com/verte-zerg/spacelane/internal/model"
)

func TestSecondaryProbability(t *testing.T) {
	if got := SecondaryProbability(19); got != 0 {
		t.Fatalf("expected 0 at 19, got %v", got)
	}
	if got := SecondaryProbability(20); got != 0.1 {
		t.Fatalf("expected 0.1 at 20, got %v", got)
	}
	if got := SecondaryProbability(200); got != 0.5 {
		t.Fatalf("expected 0.5 at 200, got %v", got)
	}
	prev := 0.0
	for s := 20; s <= 400; s++ {
		p := SecondaryProbability(s)
		if p < prev {
			t.Fatalf("probability decreased at %d: %v < %v", s, p, prev)
		}
		prev = p
	}
}

func TestDifficultyAmplitude(t *testing.T) {
	cases := map[int]float64{0: 0, 5: 0.5, 10: 1, 42: 1, -3: 0}
	for in, want := range cases {
		if got := DifficultyAmplitude(in); got != want {
			t.Fatalf("score %d: expected %v, got %v", in, want, got)
		}
	}
}

func TestNext(t *testing.T) {
	cases := []struct {
		name    string
		current int
		outcome model.Outcome
		kind    model.TargetKind
		want    int
	}{
		{"ship hit", 0, model.OutcomeHit, model.TargetPrimary, 1},
		{"ship escape", 7, model.OutcomeMiss, model.TargetPrimary, 7},
		{"hazard hit penalty", 37, model.OutcomeHit, model.TargetSecondary, 34},
		{"hazard hit small score", 9, model.OutcomeHit, model.TargetSecondary, 9},
		{"hazard dodge", 50, model.OutcomeMiss, model.TargetSecondary, 50},
	}
	for _, tc := range cases {
		if got := Next(tc.current, tc.outcome, tc.kind); got != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, got)
		}
	}
}

func TestKeeperTracksPeakAndHazardToggle(t *testing.T) {
	k := NewKeeper(false)
	for i := 0; i < 30; i++ {
		k.Apply(model.OutcomeHit, model.TargetPrimary)
	}
	if k.Value() != 30 || k.Peak() != 30 {
		t.Fatalf("expected 30/30, got %d/%d", k.Value(), k.Peak())
	}
	if k.SecondaryChance() != 0 {
		t.Fatalf("expected hazards disabled")
	}
	k.Apply(model.OutcomeHit, model.TargetSecondary)
	if k.Value() != 27 || k.Peak() != 30 {
		t.Fatalf("expected 27/30, got %d/%d", k.Value(), k.Peak())
	}
	if k.Amplitude() != 1 {
		t.Fatalf("expected full amplitude, got %v", k.Amplitude())
	}

	on := NewKeeper(true)
	for i := 0; i < 40; i++ {
		on.Apply(model.OutcomeHit, model.TargetPrimary)
	}
	if on.SecondaryChance() != 0.2 {
		t.Fatalf("expected 0.2, got %v", on.SecondaryChance())
	}
}
