package ladder

import "fmt"

const (
	// Tiers per rank. Tier 4 is the entry tier, tier 1 the last before promotion.
	Tiers = 4

	// MaxProtection is the largest protection count the encoding can hold.
	MaxProtection = 3

	// ProtectedSteps is the width of the window, starting at step 0, in which
	// a state may still carry protection.
	ProtectedSteps = 2

	protectedTiers = Tiers - 1
	protectedBlock = protectedTiers * MaxProtection
)

// State is a position inside a rank.
type State struct {
	Tier       int
	Step       int
	Protection int
}

// Start is the state of a player who has just entered the rank.
var Start = State{Tier: Tiers}

func (s State) String() string {
	return fmt.Sprintf("tier %d, step %d, protection %d", s.Tier, s.Step, s.Protection)
}

// Geometry maps states of one rank to dense indices and back.
//
// Indices [0, 4S) hold unprotected states, tier 4 first, step ascending.
// Indices [4S, 4S+9) hold step 0 with protection, tier 3 first and protection
// descending inside each tier; [4S+9, 4S+18) repeat that layout for step 1.
// Tier 4 never carries protection.
type Geometry struct {
	StepsPerTier int
}

// NumStates is the size of the encoded state space.
func (g Geometry) NumStates() int {
	return Tiers*g.StepsPerTier + ProtectedSteps*protectedBlock
}

// Valid reports whether s is representable.
func (g Geometry) Valid(s State) bool {
	if s.Tier < 1 || s.Tier > Tiers || s.Step < 0 || s.Step >= g.StepsPerTier {
		return false
	}
	if s.Protection == 0 {
		return true
	}
	return s.Protection > 0 && s.Protection <= MaxProtection &&
		s.Step < ProtectedSteps && s.Tier < Tiers
}

// Encode returns the index of s.
func (g Geometry) Encode(s State) (int, error) {
	if !g.Valid(s) {
		return 0, fmt.Errorf("%w: %s with %d steps per tier", ErrInvalidState, s, g.StepsPerTier)
	}
	if s.Protection == 0 {
		return (Tiers-s.Tier)*g.StepsPerTier + s.Step, nil
	}
	return Tiers*g.StepsPerTier + s.Step*protectedBlock +
		(protectedTiers-s.Tier)*MaxProtection + MaxProtection - s.Protection, nil
}

// Decode returns the state at index i.
func (g Geometry) Decode(i int) (State, error) {
	if g.StepsPerTier <= 0 || i < 0 || i >= g.NumStates() {
		return State{}, fmt.Errorf("%w: index %d outside [0,%d)", ErrInvalidState, i, g.NumStates())
	}
	unprotected := Tiers * g.StepsPerTier
	if i < unprotected {
		return State{Tier: Tiers - i/g.StepsPerTier, Step: i % g.StepsPerTier}, nil
	}
	off := i - unprotected
	step := off / protectedBlock
	off %= protectedBlock
	return State{
		Tier:       protectedTiers - off/MaxProtection,
		Step:       step,
		Protection: MaxProtection - off%MaxProtection,
	}, nil
}
