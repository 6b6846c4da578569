package skill

import "github.com/QirangMilco/TSAuto/internal/model"

// ResolveTargets returns the alive units sel picks for c.
// TARGET yields the chosen target only while it is alive.
func (in *Interpreter) ResolveTargets(c Cast, sel model.TargetType) []*model.Unit {
	switch sel {
	case model.TargetSelf:
		return []*model.Unit{c.Caster}
	case model.TargetTarget:
		if c.Target == nil || !c.Target.Alive() {
			return nil
		}
		return []*model.Unit{c.Target}
	case model.TargetAllAllies:
		return model.AliveUnits(in.state.Allies(c.Caster))
	case model.TargetAllEnemies:
		return model.AliveUnits(in.state.Opponents(c.Caster))
	case model.TargetRandomEnemy:
		return in.pickOne(model.AliveUnits(in.state.Opponents(c.Caster)))
	case model.TargetRandomAlly:
		return in.pickOne(model.AliveUnits(in.state.Allies(c.Caster)))
	}
	return nil
}

func (in *Interpreter) pickOne(units []*model.Unit) []*model.Unit {
	if len(units) == 0 {
		return nil
	}
	return []*model.Unit{units[in.rand.IntN(len(units))]}
}
