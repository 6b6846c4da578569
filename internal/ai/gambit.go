// Package ai decides actions for AI-controlled units from gambits.
//
// A gambit is an ordered rule list. Rules are tried by ascending priority;
// the first rule whose condition holds, whose target resolves and whose
// skill the actor knows and can afford becomes the action.
package ai

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/QirangMilco/TSAuto/internal/data"
	"github.com/QirangMilco/TSAuto/internal/model"
)

// Rand is the random source RANDOM targeting draws from.
type Rand interface {
	IntN(n int) int
}

// Evaluator evaluates gambits against a battle state.
type Evaluator struct {
	lookup data.Lookup
	rand   Rand
}

// NewEvaluator creates an evaluator resolving skills through lookup.
func NewEvaluator(lookup data.Lookup, rand Rand) *Evaluator {
	return &Evaluator{lookup: lookup, rand: rand}
}

// Decide returns the action of the first matching rule of g for actor.
// The second result is false when no rule matches.
func (e *Evaluator) Decide(actor *model.Unit, state *model.BattleState, g *model.Gambit) (model.Action, bool) {
	if g == nil || !actor.Alive() {
		return model.Action{}, false
	}

	for _, rule := range g.SortedRules() {
		if !e.holds(rule.Condition, actor, state) {
			e.trace(actor, rule, "condition false")
			continue
		}
		target := e.resolveTarget(rule.Target, actor, state)
		if target == nil {
			e.trace(actor, rule, "no target")
			continue
		}
		if !actor.HasSkill(rule.SkillID) {
			e.trace(actor, rule, "skill not known")
			continue
		}
		sk, ok := e.lookup.Skill(rule.SkillID)
		if !ok {
			slog.Warn("gambit skill not found",
				"gambit", g.ID,
				"rule", rule.ID,
				"skill", rule.SkillID)
			continue
		}
		if sk.Cost > 0 && !state.Resource.CanAfford(sk.Cost) {
			e.trace(actor, rule, "cannot afford")
			continue
		}

		if IsDebugEnabled() {
			slog.Debug("gambit rule matched",
				"unit", actor.InstanceID,
				"rule", rule.ID,
				"skill", rule.SkillID,
				"target", target.InstanceID)
		}
		return model.Action{SkillID: rule.SkillID, TargetID: target.InstanceID}, true
	}
	return model.Action{}, false
}

func (e *Evaluator) trace(actor *model.Unit, rule model.Rule, reason string) {
	if !IsDebugEnabled() {
		return
	}
	slog.Debug("gambit rule skipped",
		"unit", actor.InstanceID,
		"rule", rule.ID,
		"reason", reason)
}

func (e *Evaluator) holds(c model.Condition, actor *model.Unit, state *model.BattleState) bool {
	switch c.Type {
	case model.CondAlways:
		return true
	case model.CondHPBelow:
		threshold := c.Value
		if threshold == 0 {
			threshold = 1
		}
		return actor.HPRatio() < threshold
	case model.CondHPAbove:
		return actor.HPRatio() > c.Value
	case model.CondResourceBelow:
		return float64(state.Resource.Current) < c.Value
	case model.CondEnemyCountAbove:
		return float64(model.CountAlive(state.Opponents(actor))) > c.Value
	case model.CondHasStatus:
		return actor.HasStatus(c.StatusID)
	case model.CondAllyDead:
		return slices.ContainsFunc(state.Allies(actor), func(u *model.Unit) bool { return u.IsDead })
	}
	return false
}

func (e *Evaluator) resolveTarget(spec model.TargetSpec, actor *model.Unit, state *model.BattleState) *model.Unit {
	if spec.Type == model.GambitTargetSelf || spec.Strategy == model.StrategySelf {
		return actor
	}

	var pool []*model.Unit
	switch spec.Type {
	case model.GambitTargetAlly:
		pool = state.Allies(actor)
	case model.GambitTargetEnemy:
		pool = state.Opponents(actor)
	}
	candidates := model.AliveUnits(pool)
	if len(candidates) == 0 {
		return nil
	}

	switch spec.Strategy {
	case model.StrategyRandom:
		return candidates[e.rand.IntN(len(candidates))]
	case model.StrategyLowestHPPercent:
		return slices.MinFunc(candidates, func(a, b *model.Unit) int {
			return cmp.Compare(a.HPRatio(), b.HPRatio())
		})
	case model.StrategyHighestATK:
		// MaxFunc returns the first maximal element, keeping roster order on ties.
		return slices.MaxFunc(candidates, func(a, b *model.Unit) int {
			return cmp.Compare(a.Stat(model.StatATK), b.Stat(model.StatATK))
		})
	}
	return candidates[0]
}
