package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/rank-ladder/internal/ladder"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestSettingsFallsBackToBuiltins(t *testing.T) {
	l := NewLoader(t.TempDir())
	s, err := l.Settings(ladder.ModeLimited)
	require.NoError(t, err)

	def, err := ladder.DefaultTable(ladder.ModeLimited)
	require.NoError(t, err)
	assert.Equal(t, def.Ranks, s.Table.Ranks)
	assert.Equal(t, ladder.DefaultTrials, s.Trials)
	assert.Zero(t, s.Seed)
}

func TestSettingsMergesModeOverDefault(t *testing.T) {
	dir := t.TempDir()
	l := NewLoader(dir)
	writeFile(t, l.Paths().DefaultPath(), `
version: "v1"
steps_gained: {gold: 1}
protection: {single: 2, best_of_three: 1}
simulation: {trials: 100, seed: 7}
`)
	writeFile(t, l.Paths().ModePath(ladder.ModeConstructed), `
version: "v2"
steps_per_tier: {gold: 8}
protection: {single: 1}
`)

	s, err := l.Settings(ladder.ModeConstructed)
	require.NoError(t, err)
	assert.Equal(t, "v2", s.Version)
	assert.Equal(t, ladder.RankRules{StepsPerTier: 8, StepsGained: 1, StepsLost: 1}, s.Table.Ranks[ladder.Gold])
	assert.Equal(t, 6, s.Table.Ranks[ladder.Silver].StepsPerTier)
	assert.Equal(t, 1, s.Table.Protection[ladder.Single])
	assert.Equal(t, 1, s.Table.Protection[ladder.BestOfThree])
	assert.Equal(t, 100, s.Trials)
	assert.Equal(t, uint64(7), s.Seed)
}

func TestShippedConfigMatchesBuiltins(t *testing.T) {
	l := NewLoader(filepath.Join("..", "..", "configs"))
	for _, m := range []ladder.Mode{ladder.ModeLimited, ladder.ModeConstructed} {
		s, err := l.Settings(m)
		require.NoError(t, err)
		def, _ := ladder.DefaultTable(m)
		assert.Equal(t, def.Ranks, s.Table.Ranks, m)
		assert.Equal(t, def.Protection, s.Table.Protection, m)
		assert.InDelta(t, ladder.DefaultGamesPerMatch, s.Table.GamesPerMatch, 1e-12)
	}
}

func TestSettingsRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	l := NewLoader(dir)
	writeFile(t, l.Paths().DefaultPath(), `
steps_per_tier: {gold: 1, mythic: 4}
steps_gained: {silver: 0}
protection: {single: 5}
simulation: {trials: 0}
`)
	_, err := l.Settings(ladder.ModeLimited)
	require.ErrorIs(t, err, ladder.ErrInvalidInput)
	msg := err.Error()
	for _, want := range []string{
		"steps_per_tier.gold must be >= 2",
		`unknown rank "mythic"`,
		"steps_gained.silver must be >= 1",
		"protection.single",
		"simulation.trials",
	} {
		assert.Contains(t, msg, want)
	}
}

func TestSettingsRejectsTierSkippingGain(t *testing.T) {
	l := NewLoader(t.TempDir())
	writeFile(t, l.Paths().ModePath(ladder.ModeLimited), "steps_gained: {bronze: 3}\n")
	_, err := l.Settings(ladder.ModeLimited)
	require.ErrorIs(t, err, ladder.ErrInvalidTable)
}

func TestSettingsBadYAML(t *testing.T) {
	l := NewLoader(t.TempDir())
	writeFile(t, l.Paths().DefaultPath(), "steps_per_tier: [1, 2\n")
	_, err := l.Settings(ladder.ModeLimited)
	require.Error(t, err)
}

func TestInvalidateReloads(t *testing.T) {
	l := NewLoader(t.TempDir())
	path := l.Paths().ModePath(ladder.ModeLimited)
	writeFile(t, path, "steps_per_tier: {gold: 7}\n")
	s, err := l.Settings(ladder.ModeLimited)
	require.NoError(t, err)
	require.Equal(t, 7, s.Table.Ranks[ladder.Gold].StepsPerTier)

	writeFile(t, path, "steps_per_tier: {gold: 9}\n")
	s, _ = l.Settings(ladder.ModeLimited)
	assert.Equal(t, 7, s.Table.Ranks[ladder.Gold].StepsPerTier, "cached")

	l.Invalidate()
	s, err = l.Settings(ladder.ModeLimited)
	require.NoError(t, err)
	assert.Equal(t, 9, s.Table.Ranks[ladder.Gold].StepsPerTier)
}

func TestOverridesApply(t *testing.T) {
	s, err := Resolve(ladder.ModeConstructed, RawConfig{})
	require.NoError(t, err)
	trials, seed, gpm := 42, uint64(5), 2.2
	o := s.Apply(Overrides{Trials: &trials, Seed: &seed, GamesPerMatch: &gpm})
	assert.Equal(t, 42, o.Trials)
	assert.Equal(t, uint64(5), o.Seed)
	assert.InDelta(t, 2.2, o.Table.GamesPerMatch, 1e-12)
	assert.InDelta(t, ladder.DefaultGamesPerMatch, s.Table.GamesPerMatch, 1e-12, "cached settings untouched")

	a, b := o.RNG(), o.RNG()
	assert.Equal(t, a.Float64(), b.Float64(), "seeded sources repeat")
}

func TestFileWatcherNotifiesOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.yaml")
	writeFile(t, path, "a: 1\n")

	changed := make(chan string, 4)
	w := NewFileWatcher([]string{path}, 10*time.Millisecond, func(p string) { changed <- p }, nil)
	w.Start()
	defer w.Stop()

	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	select {
	case p := <-changed:
		assert.Equal(t, path, p)
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification")
	}
	w.Stop()
}
