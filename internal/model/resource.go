package model

import (
	"errors"
	"fmt"
)

// ErrInsufficientResource is returned when a cost exceeds the current pool.
var ErrInsufficientResource = errors.New("insufficient resource")

// TurnType tells resource and scheduling code which kind of turn is running.
type TurnType uint8

const (
	// TurnNormal is a turn earned on the action bar. Only normal turns
	// advance the resource pool and reset the bar.
	TurnNormal TurnType = iota
	// TurnExtra is a granted extra turn.
	TurnExtra
	// TurnPseudo is a triggered pseudo turn that casts a fixed skill.
	TurnPseudo
)

func (t TurnType) String() string {
	switch t {
	case TurnNormal:
		return "NORMAL"
	case TurnExtra:
		return "EXTRA"
	case TurnPseudo:
		return "PSEUDO"
	default:
		return fmt.Sprintf("TurnType(%d)", uint8(t))
	}
}

// IsExtra reports whether the turn was granted outside the action bar.
func (t TurnType) IsExtra() bool {
	return t == TurnExtra || t == TurnPseudo
}

// ResourcePool is the shared battle resource (one pool per battle).
type ResourcePool struct {
	Current     int
	Max         int
	BarProgress int
}

// ResourceRules controls how the pool fills on normal turns.
type ResourceRules struct {
	Start       int `yaml:"start" env:"START"`
	Max         int `yaml:"max" env:"MAX"`
	PerTurn     int `yaml:"per_turn" env:"PER_TURN"`
	BarSegments int `yaml:"bar_segments" env:"BAR_SEGMENTS"`
	BarReward   int `yaml:"bar_reward" env:"BAR_REWARD"`
}

// DefaultResourceRules returns the standard 4/8 pool gaining one per turn.
func DefaultResourceRules() ResourceRules {
	return ResourceRules{
		Start:       4,
		Max:         8,
		PerTurn:     1,
		BarSegments: 5,
		BarReward:   0,
	}
}

// NewResourcePool creates a pool from rules, clamped to [0, Max].
func NewResourcePool(rules ResourceRules) ResourcePool {
	p := ResourcePool{Max: max(rules.Max, 0)}
	p.Current = clampInt(rules.Start, 0, p.Max)
	return p
}

// AdvanceResource returns the pool after a turn of the given type ends.
// Extra and pseudo turns leave the pool unchanged.
func AdvanceResource(pool ResourcePool, rules ResourceRules, turn TurnType) ResourcePool {
	if turn != TurnNormal {
		return pool
	}

	pool.Current += rules.PerTurn
	if rules.BarSegments > 0 {
		pool.BarProgress++
		if pool.BarProgress >= rules.BarSegments {
			pool.BarProgress = 0
			pool.Current += rules.BarReward
		}
	}
	pool.Current = clampInt(pool.Current, 0, pool.Max)
	return pool
}

// ConsumeResource returns the pool after paying amount.
// The input pool is returned unchanged together with ErrInsufficientResource
// when amount exceeds Current.
func ConsumeResource(pool ResourcePool, amount int) (ResourcePool, error) {
	if amount < 0 {
		return pool, fmt.Errorf("negative cost %d", amount)
	}
	if amount > pool.Current {
		return pool, fmt.Errorf("need %d, have %d: %w", amount, pool.Current, ErrInsufficientResource)
	}
	pool.Current -= amount
	return pool, nil
}

// AddResource returns the pool with delta added, clamped to [0, Max].
func AddResource(pool ResourcePool, delta int) ResourcePool {
	pool.Current = clampInt(pool.Current+delta, 0, pool.Max)
	return pool
}

// CanAfford reports whether amount can be paid from the pool.
func (p ResourcePool) CanAfford(amount int) bool {
	return amount <= p.Current
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
