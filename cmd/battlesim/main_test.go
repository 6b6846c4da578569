package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QirangMilco/TSAuto/internal/config"
	"github.com/QirangMilco/TSAuto/internal/testutil"
)

func TestSimulate(t *testing.T) {
	store := testutil.NewStore(t)
	cfg := config.DefaultSimulator()
	cfg.Simulation.Encounter = testutil.EncounterDuel
	cfg.Simulation.Runs = 8
	cfg.Simulation.Concurrency = 3

	sum, err := simulate(context.Background(), store, cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 8, sum.runs)
	assert.Equal(t, 8, sum.victories+sum.defeats+sum.unfinished)
	assert.Positive(t, sum.avgRounds())
}

func TestSimulateRolledEquipment(t *testing.T) {
	store := testutil.NewStore(t)
	cfg := config.DefaultSimulator()
	cfg.Simulation.Encounter = testutil.EncounterArmed
	cfg.Simulation.Runs = 4
	cfg.Simulation.Concurrency = 2

	sum, err := simulate(context.Background(), store, cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, sum.runs)

	_, ok := store.Equipment(testutil.TemplateBlade + "#1")
	assert.False(t, ok, "shared store untouched by concurrent runs")
}

func TestSimulateUnknownEncounter(t *testing.T) {
	store := testutil.NewStore(t)
	cfg := config.DefaultSimulator()
	cfg.Simulation.Encounter = "ENC_MISSING"

	_, err := simulate(context.Background(), store, cfg, nil)
	require.Error(t, err)
}

func TestRunBattleNeedsAutoPlayers(t *testing.T) {
	store := testutil.NewStore(t)
	cfg := config.DefaultSimulator()
	cfg.Simulation.Encounter = testutil.EncounterDuel
	cfg.Battle.AutoPlayers = false

	_, err := simulate(context.Background(), store, cfg, nil)
	assert.ErrorContains(t, err, "waiting for input")
}

func TestRunBattleDeterministic(t *testing.T) {
	store := testutil.NewStore(t)
	cfg := config.DefaultSimulator()
	cfg.Simulation.Encounter = testutil.EncounterDuel

	a, err := simulate(context.Background(), store, cfg, nil)
	require.NoError(t, err)
	b, err := simulate(context.Background(), store, cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, a.totalRounds, b.totalRounds)
	assert.Equal(t, a.victories, b.victories)
}
