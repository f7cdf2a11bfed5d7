package ladder

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState is a programming error: a (tier, step, protection) triple
	// or a state index outside the encoding.
	ErrInvalidState = errors.New("ladder: invalid state")

	// ErrInvalidInput is returned for bad caller input; no partial result is produced.
	ErrInvalidInput = errors.New("ladder: invalid input")

	// ErrSingularSystem means the transition system had no unique solution.
	// A well formed absorbing chain never triggers it.
	ErrSingularSystem = errors.New("ladder: singular linear system")

	// ErrIllConditioned is returned when LU cannot give a usable answer and
	// the system carries no chain to reduce.
	ErrIllConditioned = errors.New("ladder: ill-conditioned linear system")
)

var (
	ErrInvalidProb   = fmt.Errorf("%w: win probability must be in (0,1)", ErrInvalidInput)
	ErrUnknownRank   = fmt.Errorf("%w: unknown rank", ErrInvalidInput)
	ErrUnknownMode   = fmt.Errorf("%w: unknown game mode", ErrInvalidInput)
	ErrUnknownFormat = fmt.Errorf("%w: unknown match format", ErrInvalidInput)
	ErrInvalidTable  = fmt.Errorf("%w: invalid step table", ErrInvalidInput)
)
