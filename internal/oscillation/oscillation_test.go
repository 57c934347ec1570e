package oscillation

import (
	"math"
	"sort"
	"testing"
)

func TestPhaseSequence(t *testing.T) {
	tests := []struct {
		name          string
		totalTime     float64
		thetaHz       float64
		gammaPerTheta int
		wantLen       int
	}{
		{name: "five theta of four gamma", totalTime: 1.0, thetaHz: 5, gammaPerTheta: 4, wantLen: 20},
		{name: "single cycle", totalTime: 0.2, thetaHz: 5, gammaPerTheta: 3, wantLen: 3},
		{name: "zero total time", totalTime: 0, thetaHz: 5, gammaPerTheta: 4, wantLen: 0},
		{name: "negative theta", totalTime: 1, thetaHz: -1, gammaPerTheta: 4, wantLen: 0},
		{name: "zero gamma", totalTime: 1, thetaHz: 5, gammaPerTheta: 0, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PhaseSequence(tt.totalTime, tt.thetaHz, tt.gammaPerTheta)
			if len(got) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(got), tt.wantLen)
			}
			if !sort.Float64sAreSorted(got) {
				t.Errorf("phases not in increasing order: %v", got)
			}
		})
	}
}

func TestPhaseSequenceTimestamps(t *testing.T) {
	// theta 5 Hz => period 0.2; 2 gammas => dt 0.1.
	got := PhaseSequence(0.4, 5, 2)
	want := []float64{0.1, 0.2, 0.3, 0.4}
	if len(got) != len(want) {
		t.Fatalf("phases = %v, want %v", got, want)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("phase %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRunPhased(t *testing.T) {
	var seen []float64
	RunPhased(0.4, 5, 2, func(ts float64) {
		seen = append(seen, ts)
	})
	if len(seen) != 4 {
		t.Fatalf("callback invoked %d times, want 4", len(seen))
	}
	if !sort.Float64sAreSorted(seen) {
		t.Errorf("callbacks out of order: %v", seen)
	}
}
