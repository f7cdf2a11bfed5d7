package ladder

import (
	"fmt"
	"strings"
)

// Rank is a major ladder division made of four tiers.
type Rank int

const (
	Bronze Rank = iota
	Silver
	Gold
	Platinum
	Diamond
)

// Ranks lists every rank a player can climb out of, lowest first.
var Ranks = []Rank{Bronze, Silver, Gold, Platinum, Diamond}

var rankNames = [...]string{"bronze", "silver", "gold", "platinum", "diamond"}

func (r Rank) String() string {
	if r < 0 || int(r) >= len(rankNames) {
		return fmt.Sprintf("rank(%d)", int(r))
	}
	return rankNames[r]
}

// Next names the rank reached on promotion; diamond promotes to mythic.
func (r Rank) Next() string {
	if r == Diamond {
		return "mythic"
	}
	if r < 0 || r > Diamond {
		return ""
	}
	return (r + 1).String()
}

// ParseRank accepts a case-insensitive rank name.
func ParseRank(s string) (Rank, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range rankNames {
		if n == name {
			return Rank(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRank, s)
}

// Mode is a game mode; each mode carries its own steps-per-tier table.
type Mode string

const (
	ModeLimited     Mode = "limited"
	ModeConstructed Mode = "constructed"
)

// ParseMode accepts "limited" or "constructed".
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeLimited:
		return ModeLimited, nil
	case ModeConstructed:
		return ModeConstructed, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}
