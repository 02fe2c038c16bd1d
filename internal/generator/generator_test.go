package generator

import (
	"strings"
	"testing"

	"github.com/verte-zerg/spacelane/internal/model"
)

func TestWaveRanges(t *testing.T) {
	g := NewSeeded(7)
	lanes := map[int]int{}
	signs := map[float64]int{}
	for i := 0; i < 500; i++ {
		d := g.Wave(0)
		if d.Lane != 0 && d.Lane != 1 {
			t.Fatalf("unexpected lane %d", d.Lane)
		}
		if d.Sign != -1 && d.Sign != 1 {
			t.Fatalf("unexpected sign %v", d.Sign)
		}
		if d.Frequency < 0.5 || d.Frequency > 2.5 {
			t.Fatalf("frequency out of range: %v", d.Frequency)
		}
		if d.Kind != model.TargetPrimary {
			t.Fatalf("expected only ships with zero hazard chance")
		}
		if !strings.HasPrefix(d.Animation, "ship") {
			t.Fatalf("unexpected animation %q", d.Animation)
		}
		lanes[d.Lane]++
		signs[d.Sign]++
	}
	if len(lanes) != 2 || len(signs) != 2 {
		t.Fatalf("expected both lanes and signs to be drawn: %v %v", lanes, signs)
	}
}

func TestWaveAlwaysHazardAtFullChance(t *testing.T) {
	g := NewSeeded(1)
	for i := 0; i < 50; i++ {
		d := g.Wave(1)
		if d.Kind != model.TargetSecondary || d.Animation != HazardAnimation {
			t.Fatalf("expected hazard, got %+v", d)
		}
	}
}

func TestSeededGeneratorsRepeat(t *testing.T) {
	a := NewSeeded(42)
	b := NewSeeded(42)
	for i := 0; i < 20; i++ {
		if a.Wave(0.3) != b.Wave(0.3) {
			t.Fatalf("seeded generators diverged at draw %d", i)
		}
	}
}
