package battle

import (
	"github.com/QirangMilco/TSAuto/internal/config"
	"github.com/QirangMilco/TSAuto/internal/constants"
	"github.com/QirangMilco/TSAuto/internal/model"
)

// Config holds the per-battle settings of an Engine.
type Config struct {
	BattleID    string
	EncounterID string
	Seed        int64
	// MaxTurns bounds the number of turns of any type. 0 disables the limit.
	MaxTurns    int
	AutoPlayers bool
	Speed       config.Speed
	Resource    model.ResourceRules
	Elements    config.Elements
}

// DefaultConfig returns a config with seed 1, the default turn limit and
// manual player input.
func DefaultConfig() Config {
	return Config{
		BattleID: "battle",
		Seed:     1,
		MaxTurns: constants.DefaultMaxTurns,
		Speed: config.Speed{
			Min: constants.MinEffectiveSpeed,
			Max: constants.MaxEffectiveSpeed,
		},
		Resource: model.DefaultResourceRules(),
		Elements: config.DefaultElements(),
	}
}

// ConfigFrom builds a battle config from the simulator config.
func ConfigFrom(sim config.Simulator) Config {
	return Config{
		BattleID:    "battle",
		EncounterID: sim.Simulation.Encounter,
		Seed:        sim.Battle.Seed,
		MaxTurns:    sim.Battle.MaxTurns,
		AutoPlayers: sim.Battle.AutoPlayers,
		Speed:       sim.Speed,
		Resource:    sim.Resource,
		Elements:    sim.Elements,
	}
}
