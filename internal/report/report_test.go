package report

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/rank-ladder/internal/ladder"
)

func newReporter(t *testing.T, m ladder.Mode) *Reporter {
	t.Helper()
	tbl, err := ladder.DefaultTable(m)
	require.NoError(t, err)
	return &Reporter{Table: tbl, Trials: 300, Seed: 11, Workers: 4}
}

func TestRange(t *testing.T) {
	r := Range(0.40, 0.02, 16)
	require.Len(t, r, 16)
	assert.InDelta(t, 0.40, r[0], 1e-12)
	assert.InDelta(t, 0.70, r[15], 1e-12)
	assert.Len(t, LimitedPlotProbs, 161)
	assert.InDelta(t, 0.64, LimitedPlotProbs[160], 1e-12)
}

func TestLimitedTable(t *testing.T) {
	r := newReporter(t, ladder.ModeLimited)
	var buf bytes.Buffer
	require.NoError(t, r.LimitedTable(context.Background(), &buf, []float64{0.5, 0.6}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "LIMITED win_prob; bronze to silver; silver to gold; gold to platinum; platinum to diamond; diamond to mythic", lines[0])
	fields := strings.Split(lines[1], "; ")
	require.Len(t, fields, 6)
	assert.Equal(t, "0.500", fields[0])
	assert.Equal(t, "32.831", fields[3])
}

func TestConstructedTable(t *testing.T) {
	r := newReporter(t, ladder.ModeConstructed)
	var buf bytes.Buffer
	require.NoError(t, r.ConstructedTable(context.Background(), &buf, ladder.Gold, []float64{0.5}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "CONSTRUCTED win_prob in rank gold; bo1; bo3; bo1 sim check; bo3 exact check", lines[0])
	fields := strings.Split(lines[1], "; ")
	require.Len(t, fields, 5)
	assert.Equal(t, "40.204", fields[1])

	// same seed, same table
	var again bytes.Buffer
	require.NoError(t, r.ConstructedTable(context.Background(), &again, ladder.Gold, []float64{0.5}))
	assert.Equal(t, buf.String(), again.String())
}

func TestProtectionImpact(t *testing.T) {
	r := newReporter(t, ladder.ModeConstructed)
	var buf bytes.Buffer
	require.NoError(t, r.ProtectionImpact(&buf, ladder.Gold, []float64{0.5}))
	out := buf.String()
	assert.Contains(t, out, "Constructed best-of-one from gold to platinum at a 50.0% winrate")
	assert.Contains(t, out, "45.528 games without tier protection")
	assert.Contains(t, out, "40.204 with it")
}

func TestCurveKeepsOrderAndFails(t *testing.T) {
	r := newReporter(t, ladder.ModeConstructed)
	probs := Range(0.5, 0.05, 6)
	pts, err := r.Curve(context.Background(), 0, probs, func(_ context.Context, p float64, _ ladder.RandomSource) (float64, error) {
		return p * 10, nil
	})
	require.NoError(t, err)
	for i, pt := range pts {
		assert.InDelta(t, probs[i], pt.P, 1e-12)
		assert.InDelta(t, probs[i]*10, pt.Games, 1e-12)
	}

	_, err = r.Curve(context.Background(), 0, []float64{0.5, 1.5}, r.Exact(ladder.Gold, ladder.Single))
	assert.True(t, errors.Is(err, ladder.ErrInvalidProb))
}

func TestCurveCancelled(t *testing.T) {
	r := newReporter(t, ladder.ModeConstructed)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Curve(ctx, 0, []float64{0.5}, r.Exact(ladder.Gold, ladder.Single))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCurveStreams(t *testing.T) {
	r := newReporter(t, ladder.ModeConstructed)
	draw := func(_ context.Context, _ float64, rng ladder.RandomSource) (float64, error) {
		return rng.Float64(), nil
	}
	probs := Range(0.5, 0.01, 8)
	bo1 := SimStream(ladder.Gold, ladder.Single)
	bo3 := SimStream(ladder.Gold, ladder.BestOfThree)
	require.NotEqual(t, bo1, bo3)

	a, err := r.Curve(context.Background(), bo1, probs, draw)
	require.NoError(t, err)
	again, err := r.Curve(context.Background(), bo1, probs, draw)
	require.NoError(t, err)
	b, err := r.Curve(context.Background(), bo3, probs, draw)
	require.NoError(t, err)

	assert.Equal(t, a, again)
	for i := range probs {
		assert.NotEqual(t, a[i].Games, b[i].Games, "point %d shares draws across streams", i)
	}
}

func TestSimulatedCurveStopsOnDeadline(t *testing.T) {
	r := newReporter(t, ladder.ModeConstructed)
	r.Trials = 1
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := r.Curve(ctx, SimStream(ladder.Diamond, ladder.Single), []float64{0.05}, r.Simulated(ladder.Diamond, ladder.Single))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPlots(t *testing.T) {
	dir := t.TempDir()
	r := newReporter(t, ladder.ModeLimited)
	limited := filepath.Join(dir, "limited.png")
	require.NoError(t, r.PlotLimited(context.Background(), limited, Range(0.48, 0.04, 5)))

	rank := filepath.Join(dir, "gold.png")
	r.Trials = 50
	require.NoError(t, r.PlotRank(context.Background(), rank, ladder.Gold, Range(0.5, 0.05, 3)))

	for _, path := range []string{limited, rank} {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")), path)
	}
}
