package combat

import (
	"math"

	"github.com/QirangMilco/TSAuto/internal/constants"
	"github.com/QirangMilco/TSAuto/internal/model"
)

// Rand is the random source the engine rolls criticals with.
// *rng.Source satisfies it.
type Rand interface {
	Float64() float64
}

// Engine computes damage and healing. It holds no battle state; the only
// dependency is the random source used for critical rolls.
type Engine struct {
	rand Rand
}

// NewEngine creates an engine rolling criticals from r.
func NewEngine(r Rand) *Engine {
	return &Engine{rand: r}
}

// Hit is the result of one damage computation.
type Hit struct {
	// Amount is the HP the hit removes, in [1, defender MaxHP].
	Amount   int64
	Critical bool
	// Raw is the damage after critical and bonus multipliers, before defense.
	Raw float64
	// Mitigation is the defense factor K/(K+effectiveDefense) in (0, 1].
	Mitigation float64
	// Mitigated is Raw × Mitigation before clamping.
	Mitigated float64
}

// Outcome is the folded contribution of set effects and skill mechanics
// to a single hit.
type Outcome struct {
	// Multiplier scales the mitigated damage. Zero means 1.
	Multiplier float64
	// Extra is flat damage that still goes through defense.
	Extra float64
	// IgnoreDefense is flat damage added after defense.
	IgnoreDefense float64
}

// Apply returns h re-finalized with o:
// clamp(Mitigated × Multiplier + Extra × Mitigation + IgnoreDefense, 1, maxHP).
func (h Hit) Apply(o Outcome, maxHP int64) Hit {
	mult := o.Multiplier
	if mult == 0 {
		mult = 1
	}
	total := h.Mitigated*mult + o.Extra*h.Mitigation + o.IgnoreDefense
	h.Amount = finalDamage(total, maxHP)
	return h
}

// EffectiveStat returns stat × (1 + percent companion / 100).
// Stats without a percent companion are returned unchanged.
func EffectiveStat(u *model.Unit, stat model.Stat) float64 {
	v := u.Stat(stat)
	if pct, ok := stat.Percent(); ok {
		v *= 1 + u.Stat(pct)/100
	}
	return v
}

// EffectiveDefense returns the defender's DEF after the attacker's
// penetration and the defender's DEF_P:
// max(0, (DEF - IGNORE_DEF_FLAT) × (1 - IGNORE_DEF_P/100) × (1 + DEF_P/100)).
func EffectiveDefense(attacker, defender *model.Unit) float64 {
	def := max(defender.Stat(model.StatDEF)-attacker.Stat(model.StatIgnoreDefFlat), 0)
	def *= 1 - attacker.Stat(model.StatIgnoreDefPercent)/100
	def *= 1 + defender.Stat(model.StatDEFPercent)/100
	return max(def, 0)
}

// MitigationFactor returns K/(K+effectiveDefense).
func MitigationFactor(effectiveDefense float64) float64 {
	return constants.DefenseCurve / (constants.DefenseCurve + max(effectiveDefense, 0))
}

// ComputeDamage rolls one hit of multiplier × baseStat from attacker
// against defender.
//
//	raw       = EffectiveStat(baseStat) × multiplier
//	raw      *= 1 + CRIT_DMG                       (on critical)
//	raw      *= 1 + DMG_BONUS/100 + DMG_TAKEN_BONUS/100
//	mitigated = raw × 300 / (300 + EffectiveDefense)
//	amount    = round(clamp(mitigated, 1, defender.MaxHP))
func (e *Engine) ComputeDamage(attacker, defender *model.Unit, multiplier float64, baseStat model.Stat) Hit {
	raw := EffectiveStat(attacker, baseStat) * multiplier

	crit := e.rollCritical(attacker)
	if crit {
		raw *= 1 + attacker.Stat(model.StatCritDmg)
	}

	raw *= 1 + attacker.Stat(model.StatDmgBonus)/100 + defender.Stat(model.StatDmgTakenBonus)/100
	raw = max(raw, 0)

	mitigation := MitigationFactor(EffectiveDefense(attacker, defender))
	mitigated := raw * mitigation

	return Hit{
		Amount:     finalDamage(mitigated, defender.MaxHP),
		Critical:   crit,
		Raw:        raw,
		Mitigation: mitigation,
		Mitigated:  mitigated,
	}
}

// Heal is the result of one heal computation.
type Heal struct {
	Amount   int64
	Critical bool
	Raw      float64
}

// ComputeHeal mirrors ComputeDamage without defense. Heals can crit and
// are scaled by 1 + HEAL_BONUS/100 + RECEIVE_HEAL_BONUS/100. The amount
// never exceeds the target's missing HP.
func (e *Engine) ComputeHeal(healer, target *model.Unit, multiplier float64, baseStat model.Stat) Heal {
	raw := EffectiveStat(healer, baseStat) * multiplier

	crit := e.rollCritical(healer)
	if crit {
		raw *= 1 + healer.Stat(model.StatCritDmg)
	}

	raw *= 1 + healer.Stat(model.StatHealBonus)/100 + target.Stat(model.StatReceiveHealBonus)/100
	raw = max(raw, 0)

	missing := max(target.MaxHP-target.HP, 0)
	amount := min(int64(math.Round(raw)), missing)

	return Heal{Amount: amount, Critical: crit, Raw: raw}
}

// rollCritical draws from the source only when the chance is strictly
// between 0 and 1.
func (e *Engine) rollCritical(u *model.Unit) bool {
	chance := u.Stat(model.StatCrit)
	switch {
	case chance <= 0:
		return false
	case chance >= 1:
		return true
	}
	return e.rand.Float64() < chance
}

func finalDamage(v float64, maxHP int64) int64 {
	if math.IsNaN(v) {
		v = 0
	}
	upper := float64(max(maxHP, constants.MinDamage))
	return int64(math.Round(min(max(v, constants.MinDamage), upper)))
}
