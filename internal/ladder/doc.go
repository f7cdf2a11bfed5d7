// Package ladder computes how many games a player needs to climb out of a
// ranked ladder division when tier promotions grant protection against
// demotion.
//
// Progress inside a rank is a (tier, step, protection) State. Geometry maps
// states to dense indices so that the climb can be written as an absorbing
// Markov chain; BuildSystem and Solve give the exact expectation, and
// RunSimulation replays the same Rules.Next transitions with random match
// outcomes as an independent check.
//
//	tbl, _ := ladder.DefaultTable(ladder.ModeConstructed)
//	games, err := tbl.ExpectedGamesToPromotion(0.55, ladder.Gold, ladder.Single)
package ladder
