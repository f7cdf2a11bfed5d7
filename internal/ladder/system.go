package ladder

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"
)

// maxCondition is the largest LU condition estimate Solve trusts. Past it
// the chain is solved by state reduction instead.
const maxCondition = 1e8

// System is the linear system A·x = b whose solution x[i] is the expected
// number of matches to leave the rank from state i.
//
// Row i reads x[i] - w·x[win(i)] - l·x[loss(i)] = 1. A win that leaves the
// rank contributes nothing, so that row keeps only its loss term.
type System struct {
	A *mat.Dense
	B *mat.VecDense

	// P holds the transition probabilities between states and Exit the
	// probability of leaving the rank from each state, so A = I - P.
	// Optional; without them Solve can only use LU.
	P    *mat.Dense
	Exit *mat.VecDense
}

func newSystem(n int) *System {
	sys := &System{
		A:    mat.NewDense(n, n, nil),
		B:    mat.NewVecDense(n, nil),
		P:    mat.NewDense(n, n, nil),
		Exit: mat.NewVecDense(n, nil),
	}
	for i := 0; i < n; i++ {
		sys.A.Set(i, i, 1)
		sys.B.SetVec(i, 1)
	}
	return sys
}

// move records a transition from i with probability prob. j < 0 leaves the rank.
func (sys *System) move(i, j int, prob float64) {
	if j < 0 {
		sys.Exit.SetVec(i, sys.Exit.AtVec(i)+prob)
		return
	}
	sys.P.Set(i, j, sys.P.At(i, j)+prob)
	sys.A.Set(i, j, sys.A.At(i, j)-prob)
}

// BuildSystem fills the transition system for rules at the given per-match
// win rate. The result depends only on its arguments.
func BuildSystem(r Rules, winrate float64, log *slog.Logger) (*System, error) {
	if err := validateProb(winrate); err != nil {
		return nil, err
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = discard
	}
	lossrate := 1 - winrate
	n := r.NumStates()
	sys := newSystem(n)

	for i := 0; i < n; i++ {
		s, err := r.Decode(i)
		if err != nil {
			return nil, err
		}

		attrs := []any{"index", i, "state", s.String()}
		if next, promoted := r.Next(s, true); !promoted {
			j, err := r.Encode(next)
			if err != nil {
				return nil, fmt.Errorf("win from %s: %w", s, err)
			}
			sys.move(i, j, winrate)
			attrs = append(attrs, "win", next.String())
		} else {
			sys.move(i, -1, winrate)
			attrs = append(attrs, "win", "promoted")
		}

		next, _ := r.Next(s, false)
		j, err := r.Encode(next)
		if err != nil {
			return nil, fmt.Errorf("loss from %s: %w", s, err)
		}
		sys.move(i, j, lossrate)
		attrs = append(attrs, "loss", next.String())

		log.Debug("transition", attrs...)
	}
	return sys, nil
}

// BuildNoProtectionSystem fills the reduced 4·S system of a ladder without
// tier protection. Progress is a single step counter over the whole rank:
// losses clamp at the rank floor, and reaching 4·S leaves the rank.
func BuildNoProtectionSystem(r Rules, winrate float64) (*System, error) {
	if err := validateProb(winrate); err != nil {
		return nil, err
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	lossrate := 1 - winrate
	n := Tiers * r.StepsPerTier
	sys := newSystem(n)
	for i := 0; i < n; i++ {
		sys.move(i, max(0, i-r.Loss), lossrate)
		up := i + r.Gain
		if up >= n {
			up = -1
		}
		sys.move(i, up, winrate)
	}
	return sys, nil
}

// Solve returns x with A·x = b.
//
// Low win rates make A nearly singular, and LU then loses every digit. When
// the condition estimate passes maxCondition and the system carries P and
// Exit, x comes from reduceChain instead.
func Solve(sys *System, log *slog.Logger) (*mat.VecDense, error) {
	if log == nil {
		log = discard
	}
	var lu mat.LU
	lu.Factorize(sys.A)
	cond := lu.Cond()

	var x *mat.VecDense
	if cond > maxCondition && sys.P != nil && sys.Exit != nil {
		log.Debug("solving by state reduction", "condition", cond)
		var err error
		if x, err = reduceChain(sys); err != nil {
			return nil, err
		}
	} else {
		if math.IsInf(cond, 1) || math.IsNaN(cond) {
			return nil, fmt.Errorf("%w: matrix is singular", ErrSingularSystem)
		}
		x = new(mat.VecDense)
		if err := lu.SolveVecTo(x, false, sys.B); err != nil {
			return nil, fmt.Errorf("%w: condition number %g", ErrIllConditioned, cond)
		}
	}
	for i := 0; i < x.Len(); i++ {
		if v := x.AtVec(i); math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite solution at %d", ErrSingularSystem, i)
		}
	}
	return x, nil
}

// reduceChain eliminates states from the highest index down, folding each
// one's transitions into the states that reach it, then back-substitutes.
// Exit rates are summed, never computed as 1 - P[k][k], and every update adds
// non-negative terms, so the result keeps full relative precision.
func reduceChain(sys *System) (*mat.VecDense, error) {
	n := sys.B.Len()
	p := mat.DenseCopyOf(sys.P)
	exit := mat.VecDenseCopyOf(sys.Exit)
	reward := mat.VecDenseCopyOf(sys.B)
	leave := make([]float64, n)

	for k := n - 1; k >= 0; k-- {
		out := exit.AtVec(k)
		for j := 0; j < k; j++ {
			out += p.At(k, j)
		}
		if out <= 0 {
			return nil, fmt.Errorf("%w: state %d never leaves", ErrSingularSystem, k)
		}
		leave[k] = out
		for i := 0; i < k; i++ {
			f := p.At(i, k)
			if f == 0 {
				continue
			}
			f /= out
			for j := 0; j < k; j++ {
				if v := p.At(k, j); v != 0 {
					p.Set(i, j, p.At(i, j)+f*v)
				}
			}
			exit.SetVec(i, exit.AtVec(i)+f*exit.AtVec(k))
			reward.SetVec(i, reward.AtVec(i)+f*reward.AtVec(k))
			p.Set(i, k, 0)
		}
	}

	x := mat.NewVecDense(n, nil)
	for k := 0; k < n; k++ {
		v := reward.AtVec(k)
		for j := 0; j < k; j++ {
			v += p.At(k, j) * x.AtVec(j)
		}
		x.SetVec(k, v/leave[k])
	}
	return x, nil
}
