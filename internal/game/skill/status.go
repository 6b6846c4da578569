package skill

import (
	"slices"

	"github.com/QirangMilco/TSAuto/internal/data"
	"github.com/QirangMilco/TSAuto/internal/event"
	"github.com/QirangMilco/TSAuto/internal/model"
)

// AddStatus applies def to u for duration turns (0 uses the definition's
// duration; a resulting 0 is permanent). Re-applying an active status
// refreshes its duration and adds a stack up to the definition's limit.
// Stats are refreshed before StatusApplied is published.
func (in *Interpreter) AddStatus(u *model.Unit, def *data.Status, duration int, sourceID string) model.StatusInstance {
	if duration <= 0 {
		duration = def.Duration
	}
	permanent := duration <= 0

	var inst model.StatusInstance
	if idx := u.StatusIndex(def.ID); idx >= 0 {
		existing := &u.Statuses[idx]
		existing.RemainingTurns = max(duration, 0)
		existing.Permanent = permanent
		existing.StackCount = min(existing.Stacks()+1, def.StackLimit())
		existing.SourceID = sourceID
		inst = *existing
	} else {
		inst = model.StatusInstance{
			StatusID:       def.ID,
			RemainingTurns: max(duration, 0),
			Permanent:      permanent,
			StackCount:     1,
			Group:          def.Group,
			SourceID:       sourceID,
		}
		u.Statuses = append(u.Statuses, inst)
	}

	in.stats.Refresh(u)
	in.publish(event.StatusApplied, event.StatusPayload{
		UnitID:         u.InstanceID,
		StatusID:       def.ID,
		SourceID:       sourceID,
		RemainingTurns: inst.RemainingTurns,
		Stacks:         inst.Stacks(),
	})
	return inst
}

// RemoveStatus strips statusID from u. Reports whether anything was removed.
func (in *Interpreter) RemoveStatus(u *model.Unit, statusID string) bool {
	before := len(u.Statuses)
	u.Statuses = slices.DeleteFunc(u.Statuses, func(s model.StatusInstance) bool {
		return s.StatusID == statusID
	})
	if len(u.Statuses) == before {
		return false
	}
	in.stats.Refresh(u)
	in.publish(event.StatusRemoved, event.StatusPayload{UnitID: u.InstanceID, StatusID: statusID})
	return true
}

// StartOfTurn runs the OnTurnStart effects of u's statuses. Nothing decays.
func (in *Interpreter) StartOfTurn(u *model.Unit) {
	in.tick(u, func(def *data.Status) data.EffectList { return def.OnTurnStart })
}

// EndOfTurn runs the OnTurnEnd effects of u's statuses, then decrements
// every non-permanent status and removes the ones that reach zero.
func (in *Interpreter) EndOfTurn(u *model.Unit) {
	in.tick(u, func(def *data.Status) data.EffectList { return def.OnTurnEnd })
	if !u.Alive() {
		return
	}
	in.decay(u)
}

func (in *Interpreter) tick(u *model.Unit, effects func(*data.Status) data.EffectList) {
	for _, inst := range slices.Clone(u.Statuses) {
		if !u.Alive() {
			return
		}
		def, ok := in.lookup.Status(inst.StatusID)
		if !ok {
			continue
		}
		list := effects(def)
		if len(list) == 0 {
			continue
		}
		for range inst.Stacks() {
			in.ExecuteAll(Cast{Caster: u, Target: u, Source: SourceStatus, Depth: 1}, list)
		}
	}
}

func (in *Interpreter) decay(u *model.Unit) {
	var expired []string
	kept := u.Statuses[:0]
	for _, inst := range u.Statuses {
		if !inst.Permanent {
			inst.RemainingTurns--
			if inst.RemainingTurns <= 0 {
				expired = append(expired, inst.StatusID)
				continue
			}
		}
		kept = append(kept, inst)
	}
	u.Statuses = kept

	if len(expired) == 0 {
		return
	}
	in.stats.Refresh(u)
	for _, id := range expired {
		in.publish(event.StatusRemoved, event.StatusPayload{UnitID: u.InstanceID, StatusID: id})
	}
}
