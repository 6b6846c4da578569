package battle

import (
	"log/slog"

	"github.com/QirangMilco/TSAuto/internal/data"
	"github.com/QirangMilco/TSAuto/internal/event"
	"github.com/QirangMilco/TSAuto/internal/game/skill"
	"github.com/QirangMilco/TSAuto/internal/game/turn"
	"github.com/QirangMilco/TSAuto/internal/model"
)

// playTurn runs one turn of r. It reports true when the turn is paused
// waiting for player input; the caller then returns from the loop.
func (e *Engine) playTurn(r turn.Ready) bool {
	actor := r.Unit
	e.state.ActiveUnitID = actor.InstanceID
	e.stats.Refresh(actor)

	startKind := event.TurnStart
	if r.Type == model.TurnPseudo {
		startKind = event.PseudoTurnStart
	}
	e.publish(startKind, event.TurnPayload{UnitID: actor.InstanceID, TurnType: r.Type, SkillID: r.SkillID})
	if IsDebugEnabled() {
		slog.Debug("turn started",
			"battle", e.state.BattleID,
			"unit", actor.InstanceID,
			"type", r.Type,
			"round", e.state.Round,
			"resource", e.state.Resource.Current)
	}

	e.interp.StartOfTurn(actor)
	if actor.Alive() {
		e.interp.FirePassives(actor, model.TriggerTurnStart, nil, 0)
	}
	if !actor.Alive() {
		e.finishTurn(r)
		return false
	}

	if r.Type != model.TurnPseudo && e.state.IsPlayer(actor.InstanceID) && !e.cfg.AutoPlayers {
		e.pending = &r
		return true
	}

	sk, target := e.decide(r)
	if sk != nil {
		e.cast(r, sk, target)
	}
	e.finishTurn(r)
	return false
}

// decide picks the skill and target for an AI-driven turn. Pseudo turns
// cast their fixed skill at the first alive opponent. Otherwise the
// actor's gambit is asked first, then the first skill against the first
// alive opponent is used. A nil skill passes the turn.
func (e *Engine) decide(r turn.Ready) (*data.Skill, *model.Unit) {
	actor := r.Unit
	firstOpponent := func() *model.Unit {
		alive := model.AliveUnits(e.state.Opponents(actor))
		if len(alive) == 0 {
			return nil
		}
		return alive[0]
	}

	if r.Type == model.TurnPseudo {
		sk, ok := e.lookup.Skill(r.SkillID)
		if !ok {
			slog.Warn("pseudo turn skill not found", "unit", actor.InstanceID, "skill", r.SkillID)
			return nil, nil
		}
		return sk, firstOpponent()
	}

	if g, ok := e.lookup.Gambit(actor.GambitID); ok {
		if action, ok := e.eval.Decide(actor, e.state, g); ok {
			sk, _ := e.lookup.Skill(action.SkillID)
			return sk, e.state.FindUnit(action.TargetID)
		}
	} else if actor.GambitID != "" {
		slog.Warn("gambit not found", "unit", actor.InstanceID, "gambit", actor.GambitID)
	}

	if len(actor.Skills) == 0 {
		return nil, nil
	}
	sk, ok := e.lookup.Skill(actor.Skills[0])
	if !ok {
		slog.Warn("skill not found", "unit", actor.InstanceID, "skill", actor.Skills[0])
		return nil, nil
	}
	if !e.state.Resource.CanAfford(sk.Cost) {
		if IsDebugEnabled() {
			slog.Debug("fallback skill unaffordable, passing",
				"unit", actor.InstanceID,
				"skill", sk.ID,
				"cost", sk.Cost)
		}
		return nil, nil
	}
	return sk, firstOpponent()
}

// cast pays the skill cost (pseudo turns are free) and executes the skill.
func (e *Engine) cast(r turn.Ready, sk *data.Skill, target *model.Unit) {
	cost := sk.Cost
	if r.Type == model.TurnPseudo {
		cost = 0
	}
	if cost > 0 {
		if !e.state.Resource.CanAfford(cost) {
			slog.Warn("skill unaffordable at cast time",
				"unit", r.Unit.InstanceID,
				"skill", sk.ID,
				"cost", cost)
			return
		}
		e.interp.ModifyResource(-cost, "skill_cost")
	}

	e.interp.CastSkill(skill.Cast{
		Caster: r.Unit,
		Target: target,
		Cost:   cost,
		Source: skill.SourceSkill,
	}, sk)
}

// finishTurn runs end-of-turn statuses, publishes the end event and, for
// normal turns, consumes the action bar and advances resource and round.
func (e *Engine) finishTurn(r turn.Ready) {
	actor := r.Unit
	if actor.Alive() {
		e.interp.EndOfTurn(actor)
	}
	if actor.Alive() {
		e.interp.FirePassives(actor, model.TriggerTurnEnd, nil, 0)
	}

	endKind := event.TurnEnd
	if r.Type == model.TurnPseudo {
		endKind = event.PseudoTurnEnd
	}
	e.publish(endKind, event.TurnPayload{UnitID: actor.InstanceID, TurnType: r.Type, SkillID: r.SkillID})

	if r.Type == model.TurnNormal {
		e.sched.CompleteTurn(actor)
		e.advanceResource()
		e.state.TotalActions++
		alive := max(model.CountAlive(e.state.AllUnits()), 1)
		e.state.Round = e.state.TotalActions/alive + 1
	}

	e.state.ActiveUnitID = ""
	e.turns++
	e.checkResult()
}

func (e *Engine) advanceResource() {
	before := e.state.Resource
	e.state.Resource = model.AdvanceResource(before, e.cfg.Resource, model.TurnNormal)
	if e.state.Resource == before {
		return
	}
	e.publish(event.ResourceChanged, event.ResourcePayload{
		Before:      before.Current,
		After:       e.state.Resource.Current,
		BarProgress: e.state.Resource.BarProgress,
		Reason:      "turn",
	})
}

// checkResult ends the battle when a side is wiped out. Players are checked
// first, so a mutual wipe is a defeat.
func (e *Engine) checkResult() {
	if e.state.Finished() {
		return
	}
	switch {
	case model.CountAlive(e.state.Players) == 0:
		e.state.Result = model.ResultDefeat
	case model.CountAlive(e.state.Enemies) == 0:
		e.state.Result = model.ResultVictory
	default:
		return
	}

	e.phase = PhaseFinished
	e.publish(event.BattleEnd, event.BattleEndPayload{
		Result:       e.state.Result.String(),
		Rounds:       e.state.Round,
		TotalActions: e.state.TotalActions,
	})
	slog.Debug("battle ended",
		"battle", e.state.BattleID,
		"result", e.state.Result,
		"rounds", e.state.Round,
		"turns", e.turns)
}
