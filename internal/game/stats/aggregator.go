package stats

import (
	"log/slog"
	"maps"
	"math"
	"slices"

	"github.com/QirangMilco/TSAuto/internal/config"
	"github.com/QirangMilco/TSAuto/internal/data"
	"github.com/QirangMilco/TSAuto/internal/model"
)

// Aggregator resolves a unit's effective stats from its base stats,
// equipment, set bonuses, element bonuses and active statuses.
type Aggregator struct {
	lookup   data.Lookup
	elements config.Elements
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithElements enables the five-elements bonus with the given parameters.
func WithElements(cfg config.Elements) Option {
	return func(a *Aggregator) {
		a.elements = cfg
	}
}

// NewAggregator creates an aggregator reading definitions from lookup.
func NewAggregator(lookup data.Lookup, opts ...Option) *Aggregator {
	a := &Aggregator{lookup: lookup, elements: config.DefaultElements()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate computes the effective stat table of u without modifying it.
// Calling it twice on identical input yields identical output.
func (a *Aggregator) Aggregate(u *model.Unit) model.StatTable {
	total := u.BaseStats

	pieces := a.equipment(u)
	total.Merge(EquipmentStats(pieces, a.lookup))

	if a.elements.Enabled {
		total.Merge(AnalyzeElements(pieces, a.elements).Bonus(a.elements))
	}

	total.Merge(a.statusStats(u))

	return finalize(total)
}

// Refresh recomputes CurrentStats and MaxHP together. When MaxHP changes,
// HP keeps its ratio to the maximum. A living unit never drops to 0 HP here.
func (a *Aggregator) Refresh(u *model.Unit) {
	oldMax := u.MaxHP
	u.CurrentStats = a.Aggregate(u)
	newMax := MaxHP(u.CurrentStats)
	u.MaxHP = newMax

	if oldMax == newMax {
		return
	}
	if u.IsDead {
		u.HP = 0
		return
	}
	if oldMax <= 0 {
		u.HP = newMax
		return
	}

	hp := int64(math.Round(float64(u.HP) * float64(newMax) / float64(oldMax)))
	u.HP = min(max(hp, 1), newMax)
}

// MaxHP derives maximum HP from a stat table.
func MaxHP(t model.StatTable) int64 {
	v := math.Round(t.Get(model.StatHP) * (1 + t.Get(model.StatHPPercent)/100))
	return max(int64(v), 1)
}

func (a *Aggregator) equipment(u *model.Unit) []*data.Equipment {
	pieces := make([]*data.Equipment, 0, len(u.EquipmentIDs))
	for _, id := range u.EquipmentIDs {
		eq, ok := a.lookup.Equipment(id)
		if !ok {
			slog.Warn("equipment definition not found", "unit", u.InstanceID, "equipment", id)
			continue
		}
		pieces = append(pieces, eq)
	}
	return pieces
}

// EquipmentStats sums main stats, sub stats and set stat bonuses of pieces.
// Per set only the stat bonus with the largest reached threshold applies.
func EquipmentStats(pieces []*data.Equipment, lookup data.Lookup) model.StatTable {
	var t model.StatTable
	for _, eq := range pieces {
		if eq.MainStat != nil {
			t.Add(eq.MainStat.Stat, eq.MainStat.Value)
		}
		for _, sub := range eq.SubStats {
			t.Add(sub.Stat, sub.Value)
		}
	}

	counts := SetCounts(pieces)
	for _, setID := range slices.Sorted(maps.Keys(counts)) {
		set, ok := lookup.EquipmentSet(setID)
		if !ok {
			slog.Warn("equipment set definition not found", "set", setID)
			continue
		}
		if b, ok := set.StatBonus(counts[setID]); ok {
			t.Add(*b.Stat, b.Value)
		}
	}
	return t
}

// SetCounts counts equipped pieces per set id.
func SetCounts(pieces []*data.Equipment) map[string]int {
	counts := make(map[string]int)
	for _, eq := range pieces {
		if eq.SetID != "" {
			counts[eq.SetID]++
		}
	}
	return counts
}

// statusStats sums status modifiers. Ungrouped statuses add modifier×stacks;
// inside a group only the largest-magnitude value per stat applies.
func (a *Aggregator) statusStats(u *model.Unit) model.StatTable {
	var ungrouped model.StatTable
	groups := make(map[string]*model.StatTable)

	for _, inst := range u.Statuses {
		def, ok := a.lookup.Status(inst.StatusID)
		if !ok {
			slog.Warn("status definition not found", "unit", u.InstanceID, "status", inst.StatusID)
			continue
		}

		stacks := float64(inst.Stacks())
		group := inst.Group
		if group == "" {
			group = def.Group
		}
		if group == "" {
			for stat, v := range def.StatModifiers {
				ungrouped.Add(stat, v*stacks)
			}
			continue
		}

		g, ok := groups[group]
		if !ok {
			g = &model.StatTable{}
			groups[group] = g
		}
		for stat, v := range def.StatModifiers {
			v *= stacks
			if math.Abs(v) > math.Abs(g.Get(stat)) {
				g.Set(stat, v)
			}
		}
	}

	total := ungrouped
	for _, name := range slices.Sorted(maps.Keys(groups)) {
		total.Merge(*groups[name])
	}
	return total
}

func finalize(t model.StatTable) model.StatTable {
	for _, s := range model.AllStats() {
		v := t.Get(s)
		switch {
		case s.IsPercent():
			v = max(v, 0)
		case s == model.StatHP:
			v = math.Round(v)
		default:
			v = max(math.Round(v), 0)
		}
		t.Set(s, v)
	}
	return t
}
