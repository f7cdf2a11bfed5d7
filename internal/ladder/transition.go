package ladder

import "fmt"

// Rules is the transition rule of one rank under one match format. Gain and
// Loss are per match, already scaled by the format's step multiplier.
//
// Both the linear system and the simulator advance states only through Next.
type Rules struct {
	Geometry
	Gain          int
	Loss          int
	ProtectionMax int
}

// WithProtection returns a copy granting n protected matches on promotion.
// Zero turns tier protection off.
func (r Rules) WithProtection(n int) Rules {
	r.ProtectionMax = n
	return r
}

func (r Rules) validate() error {
	s := r.StepsPerTier
	if s < ProtectedSteps || r.Gain <= 0 || r.Gain > s || r.Loss < 0 || r.Loss > s {
		return fmt.Errorf("%w: %d steps per tier, gain %d, loss %d", ErrInvalidTable, s, r.Gain, r.Loss)
	}
	if r.ProtectionMax < 0 || r.ProtectionMax > MaxProtection {
		return fmt.Errorf("%w: protection %d outside [0,%d]", ErrInvalidTable, r.ProtectionMax, MaxProtection)
	}
	return nil
}

// Next applies one match outcome to s. promoted is true when the win carries
// the player out of the rank; next is then meaningless.
func (r Rules) Next(s State, won bool) (next State, promoted bool) {
	if won {
		return r.win(s)
	}
	return r.loss(s), false
}

// Absorbing reports whether a win from s leaves the rank.
func (r Rules) Absorbing(s State) bool {
	return s.Tier == 1 && s.Step+r.Gain >= r.StepsPerTier
}

func (r Rules) win(s State) (State, bool) {
	n := s.Step + r.Gain
	if n < r.StepsPerTier {
		p := 0
		if s.Protection > 0 && n < ProtectedSteps {
			p = s.Protection - 1
		}
		return State{Tier: s.Tier, Step: n, Protection: p}, false
	}
	if s.Tier == 1 {
		return State{}, true
	}
	return r.promote(s.Tier-1, n-r.StepsPerTier), false
}

// promote enters tier at step, granting protection only inside the
// protected window.
func (r Rules) promote(tier, step int) State {
	p := r.ProtectionMax
	if step >= ProtectedSteps {
		p = 0
	}
	return State{Tier: tier, Step: step, Protection: p}
}

func (r Rules) loss(s State) State {
	if s.Protection > 0 {
		return State{Tier: s.Tier, Step: max(0, s.Step-r.Loss), Protection: s.Protection - 1}
	}
	if s.Step >= r.Loss {
		return State{Tier: s.Tier, Step: s.Step - r.Loss}
	}
	if s.Tier == Tiers {
		return Start
	}
	return State{Tier: s.Tier + 1, Step: r.StepsPerTier + s.Step - r.Loss}
}
