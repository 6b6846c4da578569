package model

import "fmt"

// Result is the battle outcome from the player side's point of view.
type Result uint8

const (
	ResultInProgress Result = iota
	ResultVictory
	ResultDefeat
)

func (r Result) String() string {
	switch r {
	case ResultInProgress:
		return "IN_PROGRESS"
	case ResultVictory:
		return "VICTORY"
	case ResultDefeat:
		return "DEFEAT"
	}
	return fmt.Sprintf("Result(%d)", uint8(r))
}

// BattleState is the full mutable state of one battle.
// It is owned by a single engine; nothing else mutates it concurrently.
type BattleState struct {
	BattleID     string
	Seed         int64
	Players      []*Unit
	Enemies      []*Unit
	Round        int
	ActiveUnitID string
	Resource     ResourcePool
	Result       Result
	TotalActions int
}

// Clone returns a deep copy of s.
func (s *BattleState) Clone() *BattleState {
	c := *s
	c.Players = cloneUnits(s.Players)
	c.Enemies = cloneUnits(s.Enemies)
	return &c
}

func cloneUnits(units []*Unit) []*Unit {
	if units == nil {
		return nil
	}
	out := make([]*Unit, len(units))
	for i, u := range units {
		out[i] = u.Clone()
	}
	return out
}

// Finished reports whether the battle has a result.
func (s *BattleState) Finished() bool {
	return s.Result != ResultInProgress
}

// AllUnits returns players followed by enemies.
func (s *BattleState) AllUnits() []*Unit {
	out := make([]*Unit, 0, len(s.Players)+len(s.Enemies))
	out = append(out, s.Players...)
	return append(out, s.Enemies...)
}

// FindUnit returns the unit with instanceID, or nil.
func (s *BattleState) FindUnit(instanceID string) *Unit {
	for _, u := range s.Players {
		if u.InstanceID == instanceID {
			return u
		}
	}
	for _, u := range s.Enemies {
		if u.InstanceID == instanceID {
			return u
		}
	}
	return nil
}

// IsPlayer reports whether instanceID belongs to the player roster.
func (s *BattleState) IsPlayer(instanceID string) bool {
	for _, u := range s.Players {
		if u.InstanceID == instanceID {
			return true
		}
	}
	return false
}

// Allies returns the roster u belongs to, including u.
func (s *BattleState) Allies(u *Unit) []*Unit {
	if s.IsPlayer(u.InstanceID) {
		return s.Players
	}
	return s.Enemies
}

// Opponents returns the roster opposing u.
func (s *BattleState) Opponents(u *Unit) []*Unit {
	if s.IsPlayer(u.InstanceID) {
		return s.Enemies
	}
	return s.Players
}

// AliveUnits filters units that are not dead, preserving order.
func AliveUnits(units []*Unit) []*Unit {
	out := make([]*Unit, 0, len(units))
	for _, u := range units {
		if u.Alive() {
			out = append(out, u)
		}
	}
	return out
}

// CountAlive returns the number of alive units.
func CountAlive(units []*Unit) int {
	n := 0
	for _, u := range units {
		if u.Alive() {
			n++
		}
	}
	return n
}
