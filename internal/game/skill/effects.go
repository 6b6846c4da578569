package skill

import (
	"log/slog"
	"math"

	"github.com/QirangMilco/TSAuto/internal/event"
	"github.com/QirangMilco/TSAuto/internal/model"
)

// run executes one effect for one cast.
type run struct {
	in      *Interpreter
	cast    Cast
	targets []*model.Unit
}

var _ model.EffectVisitor = (*run)(nil)

func (r *run) VisitDamage(e model.Damage) {
	for _, t := range r.targets {
		if !r.cast.Caster.Alive() {
			return
		}
		if t.Alive() {
			r.in.dealDamage(r.cast, t, e)
		}
	}
}

func (r *run) VisitHeal(e model.Heal) {
	for _, t := range r.targets {
		if !t.Alive() {
			continue
		}
		h := r.in.damage.ComputeHeal(r.cast.Caster, t, e.Multiplier, e.BaseStat)
		healed := t.Heal(h.Amount)
		r.in.publish(event.HealReceived, event.HealPayload{
			SourceID: r.cast.Caster.InstanceID,
			TargetID: t.InstanceID,
			Amount:   healed,
			Reason:   r.cast.reason(),
			TargetHP: t.HP,
		})
	}
}

func (r *run) VisitApplyStatus(e model.ApplyStatus) {
	def, ok := r.in.lookup.Status(e.StatusID)
	if !ok {
		slog.Warn("status definition not found", "status", e.StatusID, "caster", r.cast.Caster.InstanceID)
		return
	}
	for _, t := range r.targets {
		if !t.Alive() || !r.in.rollApply(r.cast.Caster, t, e.Chance) {
			continue
		}
		r.in.AddStatus(t, def, e.Duration, r.cast.Caster.InstanceID)
	}
}

func (r *run) VisitRemoveStatus(e model.RemoveStatus) {
	for _, t := range r.targets {
		r.in.RemoveStatus(t, e.StatusID)
	}
}

func (r *run) VisitModifyActionBar(e model.ModifyActionBar) {
	for _, t := range r.targets {
		if t.Alive() {
			r.in.sched.AdjustActionBar(t, e.Fraction)
		}
	}
}

func (r *run) VisitModifyResource(e model.ModifyResource) {
	r.in.ModifyResource(e.Amount, "effect")
}

func (r *run) VisitGrantExtraTurn(model.GrantExtraTurn) {
	for _, t := range r.targets {
		if t.Alive() {
			r.in.sched.GrantExtraTurn(t.InstanceID)
		}
	}
}

func (r *run) VisitTriggerPseudoTurn(e model.TriggerPseudoTurn) {
	for _, t := range r.targets {
		if t.Alive() {
			r.in.sched.TriggerPseudoTurn(t.InstanceID, e.SkillID)
		}
	}
}

// rollApply decides whether a status with base chance lands.
// The chance is scaled by (1 + EFFECT_HIT/100) / (1 + EFFECT_RESIST/100);
// a base chance of 0 or at least 1 always lands.
func (in *Interpreter) rollApply(caster, target *model.Unit, chance float64) bool {
	if chance <= 0 || chance >= 1 {
		return true
	}
	resist := max(1+target.Stat(model.StatEffectResist)/100, 0.01)
	p := chance * (1 + caster.Stat(model.StatEffectHit)/100) / resist
	return in.rand.Float64() < p
}

// ModifyResource adds delta to the shared pool, clamped, and publishes the
// change.
func (in *Interpreter) ModifyResource(delta int, reason string) {
	before := in.state.Resource
	in.state.Resource = model.AddResource(before, delta)
	if in.state.Resource == before {
		return
	}
	in.publish(event.ResourceChanged, event.ResourcePayload{
		Before:      before.Current,
		After:       in.state.Resource.Current,
		BarProgress: in.state.Resource.BarProgress,
		Reason:      reason,
	})
}

func roundInt(v float64) int64 {
	return int64(math.Round(v))
}
