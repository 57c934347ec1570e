// Package oscillation generates theta/gamma-like phase timestamps that
// drivers use to gate stimulate/learn/decay calls into packets.
package oscillation

// PhaseCallback receives one phase timestamp per invocation.
type PhaseCallback func(t float64)

// PhaseSequence returns phase times (in seconds) for theta cycles subdivided
// into gamma packets: each theta period contributes gammaPerTheta timestamps
// at t + (i+1)*gammaDt. Degenerate inputs (any of totalTime, thetaHz,
// gammaPerTheta non-positive) yield an empty sequence, never an error.
//
// Theta cycles start strictly below totalTime, so the final cycle's packets
// may land past it.
func PhaseSequence(totalTime, thetaHz float64, gammaPerTheta int) []float64 {
	if thetaHz <= 0 || gammaPerTheta <= 0 || totalTime <= 0 {
		return nil
	}
	thetaPeriod := 1.0 / thetaHz
	gammaDt := thetaPeriod / float64(gammaPerTheta)

	var phases []float64
	for t := 0.0; t < totalTime; t += thetaPeriod {
		for i := 0; i < gammaPerTheta; i++ {
			phases = append(phases, t+float64(i+1)*gammaDt)
		}
	}
	return phases
}

// RunPhased invokes onPhase once per gamma packet timestamp, synchronously
// and in increasing time order.
func RunPhased(totalTime, thetaHz float64, gammaPerTheta int, onPhase PhaseCallback) {
	for _, t := range PhaseSequence(totalTime, thetaHz, gammaPerTheta) {
		onPhase(t)
	}
}
