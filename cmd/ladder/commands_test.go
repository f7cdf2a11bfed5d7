package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "ERROR")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", "../../configs"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestExpectedCommand(t *testing.T) {
	out, err := run(t, "expected", "--p", "0.5", "--rank", "gold")
	require.NoError(t, err)
	assert.Equal(t, "40.204\n", out)

	out, err = run(t, "expected", "--p", "0.5", "--rank", "gold", "--no-protection")
	require.NoError(t, err)
	assert.Equal(t, "45.528\n", out)

	out, err = run(t, "expected", "--p", "0.5", "--rank", "gold", "--protection", "0")
	require.NoError(t, err)
	assert.Equal(t, "45.528\n", out)

	out, err = run(t, "expected", "--p", "0.5", "--rank", "bronze", "--mode", "limited", "--format", "bo3")
	require.NoError(t, err)
	assert.Equal(t, "20.000\n", out)
}

func TestExpectedCommandRejectsInput(t *testing.T) {
	_, err := run(t, "expected", "--p", "1", "--rank", "gold")
	assert.Error(t, err)
	_, err = run(t, "expected", "--rank", "mythic")
	assert.Error(t, err)
	_, err = run(t, "table", "draft")
	assert.Error(t, err)
}

func TestTableCommands(t *testing.T) {
	out, err := run(t, "table", "limited", "--probs", "0.5")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "LIMITED win_prob; bronze to silver"))
	assert.Contains(t, lines[1], "32.831")

	out, err = run(t, "--trials", "200", "--seed", "3", "table", "constructed", "--rank", "gold", "--probs", "0.5,0.6")
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "CONSTRUCTED win_prob in rank gold; bo1; bo3; bo1 sim check; bo3 exact check", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "0.500; 40.204; "))
}

func TestImpactCommand(t *testing.T) {
	out, err := run(t, "impact", "--mode", "constructed", "--probs", "0.5")
	require.NoError(t, err)
	assert.Contains(t, out, "45.528 games without tier protection, 40.204 with it.")
}

func TestSimulateCommandSeeded(t *testing.T) {
	a, err := run(t, "--trials", "500", "--seed", "5", "simulate", "--p", "0.6", "--rank", "silver")
	require.NoError(t, err)
	b, err := run(t, "--trials", "500", "--seed", "5", "simulate", "--p", "0.6", "--rank", "silver")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "mean "))
	assert.Contains(t, a, "trials 500")
}

func TestPlotCommand(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "--trials", "50", "--seed", "1", "plot", "constructed", "--rank", "gold", "--out", dir)
	require.NoError(t, err)
	info, err := os.Stat(filepath.Join(dir, "Expected_number_of_games_Constructed_Gold.png"))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
