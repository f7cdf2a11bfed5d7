package ladder

import (
	"fmt"
	"strings"
)

// Format is the match format: a single game or a race to two wins.
type Format int

const (
	Single Format = iota
	BestOfThree
)

func (f Format) String() string {
	switch f {
	case Single:
		return "bo1"
	case BestOfThree:
		return "bo3"
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// ParseFormat accepts bo1/single/1 and bo3/best_of_three/3.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bo1", "single", "1", "best_of_one":
		return Single, nil
	case "bo3", "best_of_three", "bestofthree", "3":
		return BestOfThree, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) valid() bool { return f == Single || f == BestOfThree }

// StepMultiplier scales steps won or lost per match; a best-of-three match
// counts as two single-game steps.
func (f Format) StepMultiplier() int {
	if f == BestOfThree {
		return 2
	}
	return 1
}

// MatchWinRate converts a per-game win probability into a per-match one.
// For best-of-three it is the chance of two wins before two losses.
func (f Format) MatchWinRate(p float64) float64 {
	if f == BestOfThree {
		return p*p + 2*p*p*(1-p)
	}
	return p
}

// GamesPerMatchWon is the mean number of games in a best-of-three match the
// player wins: 2-0 takes two games, 2-1 takes three.
func GamesPerMatchWon(p float64) float64 {
	return (2*p*p + 6*p*p*(1-p)) / BestOfThree.MatchWinRate(p)
}

// GamesPerMatchLost is the mean number of games in a lost best-of-three match.
func GamesPerMatchLost(p float64) float64 {
	q := 1 - p
	return (2*q*q + 6*q*q*p) / (1 - BestOfThree.MatchWinRate(p))
}

// DefaultGamesPerMatch is the flat best-of-three conversion used by the
// exact model. It ignores that won and lost matches have different lengths,
// so best-of-three exact results are an approximation.
const DefaultGamesPerMatch = 2.5
