package battle

import (
	"errors"
	"fmt"
	"slices"

	"github.com/QirangMilco/TSAuto/internal/data"
	"github.com/QirangMilco/TSAuto/internal/game/equipment"
	"github.com/QirangMilco/TSAuto/internal/model"
)

var (
	// ErrUnknownCharacter is returned for a roster entry whose character is
	// not defined.
	ErrUnknownCharacter = errors.New("unknown character")
	// ErrUnknownEncounter is returned for an undefined encounter id.
	ErrUnknownEncounter = errors.New("unknown encounter")
	// ErrNoArmory is returned for a roster entry with rolled equipment when
	// no armory was given to forge it.
	ErrNoArmory = errors.New("rolled equipment needs an armory")
)

// Definitions is the lookup needed to build rosters from encounters.
type Definitions interface {
	data.Lookup
	Encounter(id string) (*data.Encounter, bool)
	Growth() *data.GrowthTable
}

// RosterOption configures roster building.
type RosterOption func(*rosterBuilder)

type rosterBuilder struct {
	armory *equipment.Armory
}

// WithArmory forges the rolled equipment of roster entries in a. The
// engine must then read definitions through a so the pieces resolve.
func WithArmory(a *equipment.Armory) RosterOption {
	return func(b *rosterBuilder) { b.armory = a }
}

func newRosterBuilder(opts []RosterOption) rosterBuilder {
	var b rosterBuilder
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// BuildUnit creates a unit from a roster entry. Base stats come from the
// character's growth at the entry's level and grade. Level 0 means level 1.
// Rolled equipment is forged after the listed pieces, in entry order.
func BuildUnit(defs Definitions, spec data.UnitSpec, instanceID string, opts ...RosterOption) (*model.Unit, error) {
	return newRosterBuilder(opts).unit(defs, spec, instanceID)
}

func (b rosterBuilder) unit(defs Definitions, spec data.UnitSpec, instanceID string) (*model.Unit, error) {
	c, ok := defs.Character(spec.CharacterID)
	if !ok {
		return nil, fmt.Errorf("%s: %w", spec.CharacterID, ErrUnknownCharacter)
	}
	if spec.InstanceID != "" {
		instanceID = spec.InstanceID
	}
	level := spec.Level
	if level <= 0 {
		level = 1
	}
	name := spec.Name
	if name == "" {
		name = c.Name
	}

	base := data.BaseStats(c, level, spec.Grade, spec.Awakened, defs.Growth())
	u := model.NewUnit(instanceID, c.ID, name, base)
	u.Level = level
	u.Grade = spec.Grade
	u.Awakened = spec.Awakened
	u.EquipmentIDs = slices.Clone(spec.Equipment)
	if len(spec.RolledEquipment) > 0 && b.armory == nil {
		return nil, fmt.Errorf("%s: %w", instanceID, ErrNoArmory)
	}
	for _, roll := range spec.RolledEquipment {
		piece, err := b.armory.Forge(roll)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", instanceID, err)
		}
		u.EquipmentIDs = append(u.EquipmentIDs, piece.ID)
	}
	u.Skills = slices.Clone(c.Skills)
	u.GambitID = spec.GambitID
	if u.GambitID == "" {
		u.GambitID = c.GambitID
	}
	return u, nil
}

// BuildEncounter creates both rosters of encounter id. Entries without an
// instance id are numbered p1, p2, ... and e1, e2, ...
func BuildEncounter(defs Definitions, id string, opts ...RosterOption) (players, enemies []*model.Unit, err error) {
	enc, ok := defs.Encounter(id)
	if !ok {
		return nil, nil, fmt.Errorf("%s: %w", id, ErrUnknownEncounter)
	}
	b := newRosterBuilder(opts)
	if players, err = b.side(defs, enc.Players, "p"); err != nil {
		return nil, nil, fmt.Errorf("encounter %s players: %w", id, err)
	}
	if enemies, err = b.side(defs, enc.Enemies, "e"); err != nil {
		return nil, nil, fmt.Errorf("encounter %s enemies: %w", id, err)
	}
	return players, enemies, nil
}

func (b rosterBuilder) side(defs Definitions, specs []data.UnitSpec, prefix string) ([]*model.Unit, error) {
	units := make([]*model.Unit, 0, len(specs))
	for i, spec := range specs {
		u, err := b.unit(defs, spec, fmt.Sprintf("%s%d", prefix, i+1))
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, nil
}
