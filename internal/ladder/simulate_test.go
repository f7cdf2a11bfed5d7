package ladder

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

func TestSimulationMatchesExact(t *testing.T) {
	tbl := mustTable(t, ModeConstructed)
	exact, err := tbl.ExpectedGamesToPromotion(0.5, Gold, Single)
	if err != nil {
		t.Fatal(err)
	}
	sim, err := tbl.RunSimulation(t.Context(), 0.5, Gold, Single, 5000, NewSeededRNG(42))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(sim-exact) > 0.05*exact {
		t.Fatalf("simulated %v, exact %v", sim, exact)
	}
}

func TestSimulationMatchesExactAcrossRanks(t *testing.T) {
	for _, mode := range []Mode{ModeLimited, ModeConstructed} {
		tbl := mustTable(t, mode)
		for i, r := range Ranks {
			exact, err := tbl.ExpectedGamesToPromotion(0.6, r, Single)
			if err != nil {
				t.Fatal(err)
			}
			st, err := tbl.RunMonteCarlo(t.Context(), 0.6, r, Single, 4000, NewSeededRNG(uint64(100+i)))
			if err != nil {
				t.Fatal(err)
			}
			// five standard errors
			if math.Abs(st.Mean-exact) > 5*st.StdErr {
				t.Fatalf("%s %s: mean %v ± %v, exact %v", mode, r, st.Mean, st.StdErr, exact)
			}
		}
	}
}

func TestSimulationBestOfThreeCloseToFlatApproximation(t *testing.T) {
	tbl := mustTable(t, ModeConstructed)
	exact, err := tbl.ExpectedGamesToPromotion(0.5, Gold, BestOfThree)
	if err != nil {
		t.Fatal(err)
	}
	sim, err := tbl.RunSimulation(t.Context(), 0.5, Gold, BestOfThree, 5000, NewSeededRNG(7))
	if err != nil {
		t.Fatal(err)
	}
	// at 50% both match lengths average 2.5 games, so the two agree
	if math.Abs(sim-exact) > 0.1*exact {
		t.Fatalf("simulated %v, flat approximation %v", sim, exact)
	}
}

func TestSimulationSeededDeterminism(t *testing.T) {
	tbl := mustTable(t, ModeLimited)
	a, err := tbl.RunSimulation(t.Context(), 0.55, Silver, BestOfThree, 500, NewSeededRNG(9))
	if err != nil {
		t.Fatal(err)
	}
	b, _ := tbl.RunSimulation(t.Context(), 0.55, Silver, BestOfThree, 500, NewSeededRNG(9))
	if a != b {
		t.Fatalf("same seed gave %v and %v", a, b)
	}
}

func TestSimulateOneRun(t *testing.T) {
	tbl := mustTable(t, ModeConstructed)
	rng := NewSeededRNG(3)
	for i := 0; i < 200; i++ {
		out, err := tbl.SimulateOneRun(t.Context(), 0.5, Gold, Single, rng)
		if err != nil {
			t.Fatal(err)
		}
		if out.Matches != out.Wins+out.Losses || out.Games != float64(out.Matches) {
			t.Fatalf("inconsistent outcome %+v", out)
		}
		// 24 steps at 2 per win
		if out.Wins < 12 {
			t.Fatalf("promoted after %d wins", out.Wins)
		}
	}

	out, err := tbl.SimulateOneRun(t.Context(), 0.6, Gold, BestOfThree, rng)
	if err != nil {
		t.Fatal(err)
	}
	want := float64(out.Wins)*GamesPerMatchWon(0.6) + float64(out.Losses)*GamesPerMatchLost(0.6)
	if math.Abs(out.Games-want) > 1e-9 {
		t.Fatalf("games %v, want %v", out.Games, want)
	}
}

func TestSimulationInvalidInput(t *testing.T) {
	tbl := mustTable(t, ModeConstructed)
	if _, err := tbl.RunSimulation(t.Context(), 0, Gold, Single, 10, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("p=0: %v", err)
	}
	if _, err := tbl.SimulateOneRun(t.Context(), 0.5, Rank(-1), Single, nil); !errors.Is(err, ErrUnknownRank) {
		t.Fatalf("rank -1: %v", err)
	}
}

func TestCalcStats(t *testing.T) {
	st := calcStats([]float64{4, 1, 3, 2})
	if st.Mean != 2.5 || st.Var != 1.25 || st.Trials != 4 {
		t.Fatalf("unexpected stats %+v", st)
	}
	if st.P50 != 2.5 {
		t.Fatalf("P50=%v, want 2.5", st.P50)
	}
	if empty := calcStats(nil); empty.Trials != 0 || empty.Mean != 0 {
		t.Fatal("empty samples should give zero stats")
	}
}

func TestWonBounds(t *testing.T) {
	rng := NewSeededRNG(1)
	for i := 0; i < 1000; i++ {
		if won(0, rng) {
			t.Fatal("winrate 0 won")
		}
		if !won(1, rng) {
			t.Fatal("winrate 1 lost")
		}
	}
}

func TestWonFrequency(t *testing.T) {
	const p = 0.3
	const n = 100000
	rng := NewSeededRNG(42)
	hit := 0
	for i := 0; i < n; i++ {
		if won(p, rng) {
			hit++
		}
	}
	freq := float64(hit) / float64(n)
	if diff := freq - p; diff > 0.01 || diff < -0.01 {
		t.Fatalf("freq=%f not close to p=%f", freq, p)
	}
}

func TestSimulationStopsWhenContextDone(t *testing.T) {
	tbl := mustTable(t, ModeConstructed)

	// around 1e30 matches per climb; only the deadline can end it
	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := tbl.RunMonteCarlo(ctx, 0.05, Diamond, Single, 1, NewSeededRNG(1))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err=%v, want DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("returned %v after the deadline", elapsed)
	}

	done, cancel2 := context.WithCancel(t.Context())
	cancel2()
	if _, err := tbl.RunSimulation(done, 0.5, Gold, Single, 100, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v, want Canceled", err)
	}
	if _, err := tbl.SimulateOneRun(ctx, 0.05, Platinum, Single, nil); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("single run: err=%v, want DeadlineExceeded", err)
	}
}

func TestSimulationUnseededRunsDiffer(t *testing.T) {
	tbl := mustTable(t, ModeConstructed)
	a, err := tbl.RunSimulation(t.Context(), 0.5, Gold, Single, 200, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := tbl.RunSimulation(t.Context(), 0.5, Gold, Single, 200, DefaultRNG())
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatalf("two unseeded simulations both gave %v", a)
	}

	x, y := DefaultRNG(), DefaultRNG()
	same := 0
	for i := 0; i < 16; i++ {
		if x.Float64() == y.Float64() {
			same++
		}
	}
	if same == 16 {
		t.Fatal("independent default sources produced one stream")
	}
}

func TestTableWithProtection(t *testing.T) {
	tbl := mustTable(t, ModeConstructed)
	off := tbl.WithProtection(Single, 0)
	if tbl.Protection[Single] != DefaultProtection(Single) {
		t.Fatalf("original table changed: %v", tbl.Protection)
	}
	if off.Protection[Single] != 0 || off.Protection[BestOfThree] != DefaultProtection(BestOfThree) {
		t.Fatalf("copy protection %v", off.Protection)
	}
	exact, err := tbl.ExpectedGamesNoProtection(0.5, Gold, Single)
	if err != nil {
		t.Fatal(err)
	}
	sim, err := off.RunSimulation(t.Context(), 0.5, Gold, Single, 5000, NewSeededRNG(42))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(sim-exact) > 0.05*exact {
		t.Fatalf("simulated %v without protection, exact %v", sim, exact)
	}
	if _, err := tbl.WithProtection(Single, 4).RunSimulation(t.Context(), 0.5, Gold, Single, 10, nil); !errors.Is(err, ErrInvalidTable) {
		t.Fatalf("protection 4: err=%v, want ErrInvalidTable", err)
	}
}
