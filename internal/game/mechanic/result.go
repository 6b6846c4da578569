package mechanic

import "github.com/QirangMilco/TSAuto/internal/game/combat"

// Assist asks UnitID to cast SkillID for free against the current target.
type Assist struct {
	UnitID  string
	SkillID string
}

// Result is one mechanic's contribution. Zero fields contribute nothing.
type Result struct {
	// DamageMultiplier scales the hit. Zero means no change.
	DamageMultiplier float64
	// ExtraDamage is flat damage added to the hit; IgnoreDefense makes it
	// bypass mitigation.
	ExtraDamage   float64
	IgnoreDefense bool
	// LifeSteal heals the attacker by this fraction of the final damage.
	LifeSteal float64
	// ReflectDamage returns this fraction of the final damage to the attacker.
	ReflectDamage float64
	// SpreadStatus is a status id copied onto the attacker's other opponents.
	SpreadStatus string
	Assist       *Assist
	// Hits repeats the skill's damage effects. Zero or one means a single hit.
	Hits    int
	Message string
}

// Empty reports whether r contributes nothing.
func (r Result) Empty() bool {
	return r.DamageMultiplier == 0 && r.ExtraDamage == 0 && r.LifeSteal == 0 &&
		r.ReflectDamage == 0 && r.SpreadStatus == "" && r.Assist == nil && r.Hits <= 1
}

// Folded is the combination of several results.
type Folded struct {
	Multiplier    float64
	Extra         float64
	IgnoreDefense float64
	LifeSteal     float64
	Reflect       float64
	Spread        []string
	Assists       []Assist
	Hits          int
	Messages      []string
}

// Fold combines results left to right. Multipliers compound, extra damage
// sums into the mitigated and ignore-defense parts, ratios add, and the
// largest hit count wins.
func Fold(results []Result) Folded {
	f := Folded{Multiplier: 1, Hits: 1}
	for _, r := range results {
		if r.DamageMultiplier != 0 {
			f.Multiplier *= r.DamageMultiplier
		}
		if r.IgnoreDefense {
			f.IgnoreDefense += r.ExtraDamage
		} else {
			f.Extra += r.ExtraDamage
		}
		f.LifeSteal += r.LifeSteal
		f.Reflect += r.ReflectDamage
		if r.SpreadStatus != "" {
			f.Spread = append(f.Spread, r.SpreadStatus)
		}
		if r.Assist != nil {
			f.Assists = append(f.Assists, *r.Assist)
		}
		f.Hits = max(f.Hits, r.Hits)
		if r.Message != "" {
			f.Messages = append(f.Messages, r.Message)
		}
	}
	return f
}

// Outcome returns the damage part of f for combat.Hit.Apply.
func (f Folded) Outcome() combat.Outcome {
	return combat.Outcome{
		Multiplier:    f.Multiplier,
		Extra:         f.Extra,
		IgnoreDefense: f.IgnoreDefense,
	}
}
