package skill

import (
	"maps"
	"slices"

	"github.com/QirangMilco/TSAuto/internal/data"
	"github.com/QirangMilco/TSAuto/internal/event"
	"github.com/QirangMilco/TSAuto/internal/game/combat"
	"github.com/QirangMilco/TSAuto/internal/game/mechanic"
	"github.com/QirangMilco/TSAuto/internal/game/stats"
	"github.com/QirangMilco/TSAuto/internal/model"
)

// dealDamage resolves one Damage effect against one alive target.
func (in *Interpreter) dealDamage(c Cast, target *model.Unit, e model.Damage) {
	attacker := c.Caster
	hit := in.damage.ComputeDamage(attacker, target, e.Multiplier, e.BaseStat)

	folded := mechanic.Fold(nil)
	if c.Source.consultsRegistries() {
		folded = mechanic.Fold(in.damageResults(c, target, &hit))
		hit = hit.Apply(folded.Outcome(), target.MaxHP)
	}

	dealt := target.TakeDamage(hit.Amount)
	in.publish(event.DamageDealt, event.DamagePayload{
		SourceID: attacker.InstanceID,
		TargetID: target.InstanceID,
		Amount:   dealt,
		Critical: hit.Critical,
		Reason:   c.reason(),
		TargetHP: target.HP,
	})

	if target.IsDead {
		in.publishDeath(target, attacker)
	} else if target != attacker {
		in.reactToDamage(target, attacker, c.Depth)
	}

	if dealt <= 0 {
		return
	}
	if c.Source.consultsRegistries() && attacker.Alive() {
		in.FirePassives(attacker, model.TriggerDamageDealt, target, c.Depth)
	}

	if folded.LifeSteal > 0 && attacker.Alive() {
		healed := attacker.Heal(roundInt(float64(dealt) * folded.LifeSteal))
		if healed > 0 {
			in.publish(event.HealReceived, event.HealPayload{
				SourceID: attacker.InstanceID,
				TargetID: attacker.InstanceID,
				Amount:   healed,
				Reason:   "life_steal",
				TargetHP: attacker.HP,
			})
		}
	}

	if folded.Reflect > 0 && attacker.Alive() && attacker != target {
		amount := min(max(roundInt(float64(dealt)*folded.Reflect), 1), attacker.MaxHP)
		reflected := attacker.TakeDamage(amount)
		in.publish(event.DamageDealt, event.DamagePayload{
			SourceID: target.InstanceID,
			TargetID: attacker.InstanceID,
			Amount:   reflected,
			Reason:   "reflect",
			TargetHP: attacker.HP,
		})
		if attacker.IsDead {
			in.publishDeath(attacker, target)
		}
	}

	for _, statusID := range folded.Spread {
		in.spread(attacker, target, statusID)
	}
}

// damageResults collects registry results for one hit: the attacker's set
// effects, the cast's skill mechanics, then the defender's set effects and
// the mechanics of the defender's own skills under TriggerDamageReceived.
func (in *Interpreter) damageResults(c Cast, target *model.Unit, hit *combat.Hit) []mechanic.Result {
	dealt := &mechanic.Context{
		Trigger: model.TriggerDamageDealt,
		Owner:   c.Caster,
		Other:   target,
		Targets: []*model.Unit{target},
		SkillID: c.SkillID,
		Hit:     hit,
		State:   in.state,
		Rand:    in.rand,
	}
	results := in.setEffectResults(c.Caster, dealt)
	results = append(results, in.invokeMechanics(c.mechanics, dealt)...)

	received := *dealt
	received.Trigger = model.TriggerDamageReceived
	received.Owner = target
	received.Other = c.Caster
	results = append(results, in.setEffectResults(target, &received)...)
	results = append(results, in.invokeMechanics(in.unitMechanics(target), &received)...)
	return results
}

// setEffectResults invokes the set effects owner's equipment has reached,
// sets in id order and thresholds highest first.
func (in *Interpreter) setEffectResults(owner *model.Unit, ctx *mechanic.Context) []mechanic.Result {
	if len(owner.EquipmentIDs) == 0 {
		return nil
	}
	pieces := make([]*data.Equipment, 0, len(owner.EquipmentIDs))
	for _, id := range owner.EquipmentIDs {
		if eq, ok := in.lookup.Equipment(id); ok {
			pieces = append(pieces, eq)
		}
	}

	var results []mechanic.Result
	counts := stats.SetCounts(pieces)
	for _, setID := range slices.Sorted(maps.Keys(counts)) {
		set, ok := in.lookup.EquipmentSet(setID)
		if !ok {
			continue
		}
		for _, effectID := range set.EffectIDs(counts[setID]) {
			if res, ok := in.sets.Invoke(effectID, ctx); ok && !res.Empty() {
				results = append(results, res)
			}
		}
	}
	return results
}

func (in *Interpreter) invokeMechanics(ids []string, ctx *mechanic.Context) []mechanic.Result {
	var results []mechanic.Result
	for _, id := range ids {
		if res, ok := in.mechs.Invoke(id, ctx); ok && !res.Empty() {
			results = append(results, res)
		}
	}
	return results
}

// unitMechanics lists the mechanics of every skill u knows.
func (in *Interpreter) unitMechanics(u *model.Unit) []string {
	var ids []string
	for _, skillID := range u.Skills {
		if sk, ok := in.lookup.Skill(skillID); ok {
			ids = append(ids, sk.Mechanics...)
		}
	}
	return ids
}

// reactToDamage runs the defender's OnReceiveDamage status effects and its
// ON_RECEIVE_DAMAGE passives.
func (in *Interpreter) reactToDamage(defender, attacker *model.Unit, depth int) {
	for _, inst := range slices.Clone(defender.Statuses) {
		def, ok := in.lookup.Status(inst.StatusID)
		if !ok || len(def.OnReceiveDamage) == 0 {
			continue
		}
		in.ExecuteAll(Cast{
			Caster: defender,
			Target: attacker,
			Source: SourceStatus,
			Depth:  depth + 1,
		}, def.OnReceiveDamage)
		if !defender.Alive() {
			return
		}
	}
	in.FirePassives(defender, model.TriggerDamageReceived, attacker, depth)
}

// spread copies statusID from target onto every other alive opponent of
// attacker, keeping the target's remaining duration.
func (in *Interpreter) spread(attacker, target *model.Unit, statusID string) {
	idx := target.StatusIndex(statusID)
	if idx < 0 {
		return
	}
	inst := target.Statuses[idx]
	def, ok := in.lookup.Status(statusID)
	if !ok {
		return
	}
	for _, u := range model.AliveUnits(in.state.Opponents(attacker)) {
		if u != target {
			in.AddStatus(u, def, inst.RemainingTurns, attacker.InstanceID)
		}
	}
}

func (in *Interpreter) publishDeath(dead, killer *model.Unit) {
	killerID := ""
	if killer != nil && killer != dead {
		killerID = killer.InstanceID
	}
	in.publish(event.CharacterDeath, event.DeathPayload{UnitID: dead.InstanceID, KillerID: killerID})
}

// FirePassives runs the passive listeners of owner's skills that match
// trigger. other becomes the TARGET of the passive's effects.
func (in *Interpreter) FirePassives(owner *model.Unit, trigger model.Trigger, other *model.Unit, depth int) {
	for _, skillID := range owner.Skills {
		sk, ok := in.lookup.Skill(skillID)
		if !ok {
			continue
		}
		for _, p := range sk.Passives {
			if p.Trigger != trigger || !owner.Alive() {
				continue
			}
			in.ExecuteAll(Cast{
				Caster:  owner,
				Target:  other,
				SkillID: skillID,
				Source:  SourcePassive,
				Depth:   depth + 1,
			}, p.Effects)
		}
	}
}
