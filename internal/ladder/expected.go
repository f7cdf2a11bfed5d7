package ladder

// ExpectedGamesToPromotion solves the absorbing chain with tier protection
// and returns the expected number of games to reach the next rank.
//
// The value is exact for Single. For BestOfThree every match is charged a
// flat GamesPerMatch (2.5 by default), which ignores that won and lost matches
// differ in length; RunSimulation gives the weighted figure.
func (t *Table) ExpectedGamesToPromotion(p float64, r Rank, f Format) (float64, error) {
	rules, err := t.Rules(r, f)
	if err != nil {
		return 0, err
	}
	return t.expectedGames(rules, p, f)
}

// ExpectedGamesWithProtection is ExpectedGamesToPromotion with the protection
// granted on promotion forced to protection matches instead of the table's value.
func (t *Table) ExpectedGamesWithProtection(p float64, r Rank, f Format, protection int) (float64, error) {
	rules, err := t.Rules(r, f)
	if err != nil {
		return 0, err
	}
	return t.expectedGames(rules.WithProtection(protection), p, f)
}

// ExpectedGamesNoProtection solves the reduced model of a ladder without
// tier protection. It shares the best-of-three approximation of
// ExpectedGamesToPromotion.
func (t *Table) ExpectedGamesNoProtection(p float64, r Rank, f Format) (float64, error) {
	if err := validateProb(p); err != nil {
		return 0, err
	}
	rules, err := t.Rules(r, f)
	if err != nil {
		return 0, err
	}
	sys, err := BuildNoProtectionSystem(rules, f.MatchWinRate(p))
	if err != nil {
		return 0, err
	}
	x, err := Solve(sys, t.logger())
	if err != nil {
		return 0, err
	}
	return t.matchesToGames(x.AtVec(0), f), nil
}

// ExpectedMatches returns the expected number of matches to leave the rank
// from the entry state, for a per-match win rate.
func ExpectedMatches(rules Rules, winrate float64) (float64, error) {
	return expectedMatches(rules, winrate, nil)
}

func expectedMatches(rules Rules, winrate float64, t *Table) (float64, error) {
	log := discard
	if t != nil {
		log = t.logger()
	}
	sys, err := BuildSystem(rules, winrate, log)
	if err != nil {
		return 0, err
	}
	x, err := Solve(sys, log)
	if err != nil {
		return 0, err
	}
	start, err := rules.Encode(Start)
	if err != nil {
		return 0, err
	}
	return x.AtVec(start), nil
}

func (t *Table) expectedGames(rules Rules, p float64, f Format) (float64, error) {
	if err := validateProb(p); err != nil {
		return 0, err
	}
	matches, err := expectedMatches(rules, f.MatchWinRate(p), t)
	if err != nil {
		return 0, err
	}
	return t.matchesToGames(matches, f), nil
}

func (t *Table) matchesToGames(matches float64, f Format) float64 {
	if f == BestOfThree {
		return matches * t.gamesPerMatch()
	}
	return matches
}
