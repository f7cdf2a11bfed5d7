package ladder

import "math"

// validateProb accepts only open-interval probabilities; 0 and 1 make the chain
// degenerate (never absorbs, or absorbs without losses).
func validateProb(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return ErrInvalidProb
	}
	if p <= 0 || p >= 1 {
		return ErrInvalidProb
	}
	return nil
}
