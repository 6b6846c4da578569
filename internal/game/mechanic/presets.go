package mechanic

import (
	"fmt"

	"github.com/QirangMilco/TSAuto/internal/constants"
	"github.com/QirangMilco/TSAuto/internal/model"
)

// Set effect ids.
const (
	EffectPoShi   = "EFF_POSHI"
	EffectZhenNv  = "EFF_ZHENNV"
	EffectKuangGu = "EFF_KUANGGU"
	EffectXinYan  = "EFF_XINYAN"
)

// Skill mechanic ids.
const (
	MechAssist         = "MECH_ASSIST"
	MechMultiHit       = "MECH_MULTI_HIT"
	MechDamageReflect  = "MECH_DAMAGE_REFLECT"
	MechLifeSteal      = "MECH_LIFE_STEAL"
	MechStatusSpread   = "MECH_STATUS_SPREAD"
	MechSpiritFireCost = "MECH_SPIRIT_FIRE_COST"
)

// NewSetEffectRegistry returns a registry holding the preset set effects.
func NewSetEffectRegistry() *Registry {
	r := NewRegistry("set_effect")
	r.Register(EffectPoShi, poShi)
	r.Register(EffectZhenNv, zhenNv)
	r.Register(EffectKuangGu, kuangGu)
	r.Register(EffectXinYan, xinYan)
	return r
}

// NewSkillMechanicRegistry returns a registry holding the preset skill
// mechanics.
func NewSkillMechanicRegistry() *Registry {
	r := NewRegistry("skill_mechanic")
	r.Register(MechAssist, assist)
	r.Register(MechMultiHit, multiHit)
	r.Register(MechDamageReflect, damageReflect)
	r.Register(MechLifeSteal, lifeSteal)
	r.Register(MechStatusSpread, statusSpread)
	r.Register(MechSpiritFireCost, spiritFireCost)
	return r
}

// poShi: +40% damage against targets above 70% HP.
func poShi(ctx *Context) Result {
	if ctx.Trigger != model.TriggerDamageDealt || ctx.Other == nil {
		return Result{}
	}
	if ctx.Other.HPRatio() <= constants.PoShiHPThreshold {
		return Result{}
	}
	return Result{
		DamageMultiplier: constants.PoShiMultiplier,
		Message:          fmt.Sprintf("%s breaks through %s", ctx.Owner.Name, ctx.Other.Name),
	}
}

// zhenNv: critical hits have a 40% chance to add 10% of the target's max HP
// as damage ignoring defense.
func zhenNv(ctx *Context) Result {
	if ctx.Trigger != model.TriggerDamageDealt || ctx.Other == nil || ctx.Hit == nil || !ctx.Hit.Critical {
		return Result{}
	}
	if ctx.Rand.Float64() >= constants.ZhenNvChance {
		return Result{}
	}
	return Result{
		ExtraDamage:   float64(ctx.Other.MaxHP) * constants.ZhenNvMaxHPRatio,
		IgnoreDefense: true,
		Message:       fmt.Sprintf("%s pierces %s", ctx.Owner.Name, ctx.Other.Name),
	}
}

// kuangGu: +8% damage per resource point, up to +40%.
func kuangGu(ctx *Context) Result {
	if ctx.Trigger != model.TriggerDamageDealt || ctx.State == nil {
		return Result{}
	}
	boost := min(float64(ctx.State.Resource.Current)*constants.KuangGuPerResource, constants.KuangGuCap)
	if boost <= 0 {
		return Result{}
	}
	return Result{DamageMultiplier: 1 + boost/100}
}

// xinYan: +10/20/30% damage against targets at or below 70/50/30% HP.
func xinYan(ctx *Context) Result {
	if ctx.Trigger != model.TriggerDamageDealt || ctx.Other == nil {
		return Result{}
	}
	var boost float64
	switch ratio := ctx.Other.HPRatio(); {
	case ratio <= 0.3:
		boost = 0.3
	case ratio <= 0.5:
		boost = 0.2
	case ratio <= 0.7:
		boost = 0.1
	default:
		return Result{}
	}
	return Result{DamageMultiplier: 1 + boost}
}

// assist: a random living ally joins in with its first skill.
func assist(ctx *Context) Result {
	if ctx.Trigger != model.TriggerSkillUsed || ctx.State == nil || ctx.Other == nil {
		return Result{}
	}
	var allies []*model.Unit
	for _, u := range ctx.State.Allies(ctx.Owner) {
		if u.Alive() && u.InstanceID != ctx.Owner.InstanceID && len(u.Skills) > 0 {
			allies = append(allies, u)
		}
	}
	if len(allies) == 0 {
		return Result{}
	}
	ally := allies[ctx.Rand.IntN(len(allies))]
	return Result{
		Assist:  &Assist{UnitID: ally.InstanceID, SkillID: ally.Skills[0]},
		Message: fmt.Sprintf("%s calls %s to assist", ctx.Owner.Name, ally.Name),
	}
}

func multiHit(ctx *Context) Result {
	if ctx.Trigger != model.TriggerSkillUsed {
		return Result{}
	}
	return Result{Hits: constants.MultiHitCount}
}

func damageReflect(ctx *Context) Result {
	if ctx.Trigger != model.TriggerDamageReceived || ctx.Hit == nil {
		return Result{}
	}
	return Result{ReflectDamage: constants.ReflectRatio}
}

func lifeSteal(ctx *Context) Result {
	if ctx.Trigger != model.TriggerDamageDealt || ctx.Hit == nil {
		return Result{}
	}
	return Result{LifeSteal: constants.LifeStealRatio}
}

// statusSpread copies one decaying status of the target to the attacker's
// other opponents.
func statusSpread(ctx *Context) Result {
	if ctx.Trigger != model.TriggerDamageDealt || ctx.Other == nil {
		return Result{}
	}
	var candidates []string
	for _, st := range ctx.Other.Statuses {
		if st.RemainingTurns > 0 && !st.Permanent {
			candidates = append(candidates, st.StatusID)
		}
	}
	if len(candidates) == 0 {
		return Result{}
	}
	return Result{SpreadStatus: candidates[ctx.Rand.IntN(len(candidates))]}
}

// spiritFireCost: +10% damage per resource point held.
func spiritFireCost(ctx *Context) Result {
	if ctx.Trigger != model.TriggerDamageDealt || ctx.State == nil || ctx.State.Resource.Current <= 0 {
		return Result{}
	}
	return Result{DamageMultiplier: 1 + float64(ctx.State.Resource.Current)*constants.SpiritFireBoostPerPt}
}
