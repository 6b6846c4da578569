package model

import (
	"fmt"
	"slices"
)

// StatusInstance is a status currently active on a unit.
type StatusInstance struct {
	StatusID string
	// RemainingTurns decrements only during end-of-turn processing.
	// Zero with Permanent set means the status never decays.
	RemainingTurns int
	Permanent      bool
	StackCount     int
	// Group makes statuses mutually exclusive per stat: only the strongest
	// modifier inside a group applies. Empty means it stacks additively.
	Group    string
	SourceID string
}

// Stacks returns StackCount, treating zero as a single stack.
func (s StatusInstance) Stacks() int {
	if s.StackCount < 1 {
		return 1
	}
	return s.StackCount
}

// Unit is the runtime snapshot of one combatant.
// BattleState owns every Unit; components receive *Unit pointers into it.
type Unit struct {
	InstanceID  string
	CharacterID string
	Name        string
	Level       float64
	Grade       int
	Awakened    bool

	// BaseStats is derived from growth at creation and never edited.
	BaseStats StatTable
	// CurrentStats is recomputed by the stats aggregator; do not edit directly.
	CurrentStats StatTable

	HP    int64
	MaxHP int64

	ActionBarPosition float64

	Statuses     []StatusInstance
	EquipmentIDs []string
	Skills       []string
	GambitID     string

	IsDead bool
}

// NewUnit creates a unit with the given base stats. Current stats start as a
// copy of the base stats and HP starts full; callers normally run the stats
// aggregator right after.
func NewUnit(instanceID, characterID, name string, base StatTable) *Unit {
	maxHP := max(int64(base.Get(StatHP)), 1)
	return &Unit{
		InstanceID:   instanceID,
		CharacterID:  characterID,
		Name:         name,
		BaseStats:    base,
		CurrentStats: base,
		HP:           maxHP,
		MaxHP:        maxHP,
	}
}

// String implements fmt.Stringer for log output.
func (u *Unit) String() string {
	return fmt.Sprintf("%s(%s)", u.Name, u.InstanceID)
}

// Alive reports whether the unit can still act.
func (u *Unit) Alive() bool {
	return !u.IsDead
}

// HPRatio returns HP/MaxHP in [0, 1].
func (u *Unit) HPRatio() float64 {
	if u.MaxHP <= 0 {
		return 0
	}
	return float64(u.HP) / float64(u.MaxHP)
}

// Stat returns the current value of s.
func (u *Unit) Stat(s Stat) float64 {
	return u.CurrentStats.Get(s)
}

// TakeDamage reduces HP by amount and marks the unit dead at zero.
// Returns the HP actually removed.
func (u *Unit) TakeDamage(amount int64) int64 {
	if amount <= 0 || u.IsDead {
		return 0
	}
	dealt := min(amount, u.HP)
	u.HP -= dealt
	if u.HP <= 0 {
		u.HP = 0
		u.IsDead = true
	}
	return dealt
}

// Heal restores HP up to MaxHP. Dead units are not healed.
// Returns the HP actually restored.
func (u *Unit) Heal(amount int64) int64 {
	if amount <= 0 || u.IsDead {
		return 0
	}
	healed := min(amount, u.MaxHP-u.HP)
	if healed < 0 {
		healed = 0
	}
	u.HP += healed
	return healed
}

// HasStatus reports whether a status with statusID is active.
func (u *Unit) HasStatus(statusID string) bool {
	return u.StatusIndex(statusID) >= 0
}

// StatusIndex returns the index of statusID in Statuses, or -1.
func (u *Unit) StatusIndex(statusID string) int {
	return slices.IndexFunc(u.Statuses, func(s StatusInstance) bool {
		return s.StatusID == statusID
	})
}

// HasSkill reports whether skillID is in the unit's skill list.
func (u *Unit) HasSkill(skillID string) bool {
	return slices.Contains(u.Skills, skillID)
}

// Clone returns a deep copy of u.
func (u *Unit) Clone() *Unit {
	c := *u
	c.Statuses = slices.Clone(u.Statuses)
	c.EquipmentIDs = slices.Clone(u.EquipmentIDs)
	c.Skills = slices.Clone(u.Skills)
	return &c
}
