// Package turn implements the conditional-turn-based (CTB) action bar.
//
// Every alive unit fills its bar at its effective speed. The threshold a
// unit must reach equals the fastest effective speed on the field, so the
// fastest unit needs exactly one time unit per turn. Overflow past the
// threshold is kept between turns: a unit twice as fast as another acts
// twice as often.
package turn

import (
	"cmp"
	"log/slog"
	"math"
	"slices"

	"github.com/QirangMilco/TSAuto/internal/config"
	"github.com/QirangMilco/TSAuto/internal/constants"
	"github.com/QirangMilco/TSAuto/internal/model"
)

// Ready is a unit whose turn has come.
type Ready struct {
	Unit *model.Unit
	Type model.TurnType
	// SkillID is set for pseudo turns only.
	SkillID string
}

// TieBreak orders two ready units with equal bar position.
// Negative means a acts first.
type TieBreak func(a, b *model.Unit) int

// SlowerFirst is the default tie-break: the unit with lower raw SPD acts
// first on an exact tie.
func SlowerFirst(a, b *model.Unit) int {
	return cmp.Compare(a.Stat(model.StatSPD), b.Stat(model.StatSPD))
}

type queued struct {
	unitID  string
	turn    model.TurnType
	skillID string
}

// Scheduler tracks the extra-turn queue and the last threshold.
// Action bar positions live on the units themselves.
// Not safe for concurrent use.
type Scheduler struct {
	minSpeed  float64
	maxSpeed  float64
	tieBreak  TieBreak
	extra     []queued
	threshold float64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithSpeedLimits overrides the effective speed clamp.
func WithSpeedLimits(cfg config.Speed) Option {
	return func(s *Scheduler) {
		if cfg.Min > 0 && cfg.Max >= cfg.Min {
			s.minSpeed = cfg.Min
			s.maxSpeed = cfg.Max
		}
	}
}

// WithTieBreak replaces SlowerFirst.
func WithTieBreak(fn TieBreak) Option {
	return func(s *Scheduler) {
		if fn != nil {
			s.tieBreak = fn
		}
	}
}

// NewScheduler creates a scheduler with an empty extra-turn queue.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		minSpeed: constants.MinEffectiveSpeed,
		maxSpeed: constants.MaxEffectiveSpeed,
		tieBreak: SlowerFirst,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EffectiveSpeed returns SPD × (1 + SPD_P/100) clamped to the speed limits.
func (s *Scheduler) EffectiveSpeed(u *model.Unit) float64 {
	v := u.Stat(model.StatSPD) * (1 + u.Stat(model.StatSPDPercent)/100)
	if math.IsNaN(v) {
		return s.minSpeed
	}
	return min(max(v, s.minSpeed), s.maxSpeed)
}

// Threshold returns the threshold computed by the last Prime or bar
// advance. Before either it is the maximum effective speed.
func (s *Scheduler) Threshold() float64 {
	if s.threshold <= 0 {
		return s.maxSpeed
	}
	return s.threshold
}

// Prime sets the threshold from the alive units without moving any bar,
// so bar adjustments before the first Advance use the real threshold.
func (s *Scheduler) Prime(units []*model.Unit) {
	threshold := 0.0
	for _, u := range units {
		if u.Alive() {
			threshold = max(threshold, s.EffectiveSpeed(u))
		}
	}
	s.threshold = threshold
}

// Advance moves the battle clock to the next turn.
//
// A queued extra or pseudo turn for an alive unit is returned alone and no
// bar moves. Otherwise every alive unit advances by the time the closest
// one needs to reach the threshold, and all units at the threshold are
// returned, furthest first. Returns nil when no unit is alive.
func (s *Scheduler) Advance(units []*model.Unit) []Ready {
	for len(s.extra) > 0 {
		q := s.extra[0]
		s.extra = s.extra[1:]
		u := findAlive(units, q.unitID)
		if u == nil {
			slog.Debug("dropping queued turn for missing or dead unit", "unit", q.unitID, "type", q.turn)
			continue
		}
		return []Ready{{Unit: u, Type: q.turn, SkillID: q.skillID}}
	}

	alive := model.AliveUnits(units)
	if len(alive) == 0 {
		return nil
	}

	speeds := make([]float64, len(alive))
	threshold := 0.0
	for i, u := range alive {
		speeds[i] = s.EffectiveSpeed(u)
		threshold = max(threshold, speeds[i])
	}
	s.threshold = threshold

	minTime := math.Inf(1)
	for i, u := range alive {
		minTime = min(minTime, (threshold-u.ActionBarPosition)/speeds[i])
	}
	minTime = max(minTime, 0)

	var ready []Ready
	for i, u := range alive {
		u.ActionBarPosition += speeds[i] * minTime
		if u.ActionBarPosition >= threshold-constants.ReadyEpsilon {
			ready = append(ready, Ready{Unit: u, Type: model.TurnNormal})
		}
	}

	slices.SortStableFunc(ready, func(a, b Ready) int {
		if c := cmp.Compare(b.Unit.ActionBarPosition, a.Unit.ActionBarPosition); c != 0 {
			return c
		}
		return s.tieBreak(a.Unit, b.Unit)
	})
	return ready
}

// CompleteTurn consumes a normal turn: the threshold is subtracted from the
// unit's position so overflow carries into its next turn.
func (s *Scheduler) CompleteTurn(u *model.Unit) {
	u.ActionBarPosition = max(u.ActionBarPosition-s.Threshold(), 0)
}

// GrantExtraTurn queues an immediate extra turn for unitID.
func (s *Scheduler) GrantExtraTurn(unitID string) {
	s.extra = append(s.extra, queued{unitID: unitID, turn: model.TurnExtra})
}

// TriggerPseudoTurn queues a turn in which unitID casts skillID for free.
func (s *Scheduler) TriggerPseudoTurn(unitID, skillID string) {
	s.extra = append(s.extra, queued{unitID: unitID, turn: model.TurnPseudo, skillID: skillID})
}

// Pending returns the number of queued extra and pseudo turns.
func (s *Scheduler) Pending() int {
	return len(s.extra)
}

// AdjustActionBar moves u's bar by fraction of the threshold, clamped to
// [0, threshold].
func (s *Scheduler) AdjustActionBar(u *model.Unit, fraction float64) {
	t := s.Threshold()
	u.ActionBarPosition = min(max(u.ActionBarPosition+fraction*t, 0), t)
}

// Reset clears the queue and the cached threshold.
func (s *Scheduler) Reset() {
	s.extra = nil
	s.threshold = 0
}

func findAlive(units []*model.Unit, id string) *model.Unit {
	for _, u := range units {
		if u.InstanceID == id && u.Alive() {
			return u
		}
	}
	return nil
}
