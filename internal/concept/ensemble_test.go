package concept

import (
	"math"
	"testing"

	"github.com/google/uuid"
)

func TestDecayComposition(t *testing.T) {
	tests := []struct {
		name   string
		f1, f2 float64
	}{
		{name: "small fractions", f1: 0.1, f2: 0.3},
		{name: "zero then half", f1: 0.0, f2: 0.5},
		{name: "clamped above one", f1: 1.5, f2: 0.2},
		{name: "clamped below zero", f1: -0.4, f2: 0.2},
	}

	clamp := func(f float64) float64 {
		return math.Min(1, math.Max(0, f))
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewFeatureEnsemble("a", "vision", []float64{1, 0})
			a.Activation = 0.8
			a.Decay(tt.f1)
			a.Decay(tt.f2)

			b := NewFeatureEnsemble("b", "vision", []float64{1, 0})
			b.Activation = 0.8
			b.Decay(tt.f2)
			b.Decay(tt.f1)

			want := 0.8 * (1 - clamp(tt.f1)) * (1 - clamp(tt.f2))
			if math.Abs(a.Activation-want) > 1e-12 {
				t.Errorf("decay(%v) then decay(%v) = %v, want %v", tt.f1, tt.f2, a.Activation, want)
			}
			if math.Abs(a.Activation-b.Activation) > 1e-12 {
				t.Errorf("decay order changed result: %v vs %v", a.Activation, b.Activation)
			}
		})
	}
}

func TestSimilarityDegradesToZero(t *testing.T) {
	e := NewFeatureEnsemble("e", "vision", []float64{1, 0})

	tests := []struct {
		name string
		cue  []float64
		want float64
	}{
		{name: "identical", cue: []float64{1, 0}, want: 1.0},
		{name: "orthogonal", cue: []float64{0, 1}, want: 0.0},
		{name: "opposite", cue: []float64{-1, 0}, want: -1.0},
		{name: "length mismatch", cue: []float64{1, 0, 0}, want: 0.0},
		{name: "empty cue", cue: nil, want: 0.0},
		{name: "zero cue", cue: []float64{0, 0}, want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Similarity(tt.cue); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Similarity(%v) = %v, want %v", tt.cue, got, tt.want)
			}
		})
	}
}

func TestAddLinkAccumulates(t *testing.T) {
	e := NewFeatureEnsemble("e", "vision", nil)
	target := uuid.New()

	e.AddLink(target, 0.2)
	e.AddLink(target, 0.3)

	if got := e.Links[target]; math.Abs(got-0.5) > 1e-12 {
		t.Errorf("link weight = %v, want 0.5", got)
	}
}

func TestHebbianSkipsSelfAndIsUncapped(t *testing.T) {
	e := NewFeatureEnsemble("e", "vision", nil)
	e.Activation = 2.0
	peer := uuid.New()

	for i := 0; i < 100; i++ {
		e.Hebbian([]uuid.UUID{e.ID, peer}, 0.5)
	}

	if _, ok := e.Links[e.ID]; ok {
		t.Error("hebbian created a self-link")
	}
	// 100 * 0.5 * 2.0 = 100, well past any unit cap.
	if got := e.Links[peer]; math.Abs(got-100.0) > 1e-9 {
		t.Errorf("peer weight = %v, want 100", got)
	}
}
