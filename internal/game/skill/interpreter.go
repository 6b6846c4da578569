// Package skill executes skill and status effects against a battle state.
//
// The Interpreter is the only component that turns effect definitions into
// state changes: HP loss and gain, status instances, action bar pushes,
// resource changes and queued extra turns. Every change is published on the
// battle's event bus.
package skill

import (
	"log/slog"

	"github.com/QirangMilco/TSAuto/internal/constants"
	"github.com/QirangMilco/TSAuto/internal/data"
	"github.com/QirangMilco/TSAuto/internal/event"
	"github.com/QirangMilco/TSAuto/internal/game/combat"
	"github.com/QirangMilco/TSAuto/internal/game/mechanic"
	"github.com/QirangMilco/TSAuto/internal/game/stats"
	"github.com/QirangMilco/TSAuto/internal/game/turn"
	"github.com/QirangMilco/TSAuto/internal/model"
)

// Source tells the interpreter what started an effect chain.
type Source uint8

const (
	// SourceSkill is an actively cast skill.
	SourceSkill Source = iota
	// SourceAssist is a free cast requested by an assist mechanic.
	SourceAssist
	// SourceStatus is a status tick or reaction.
	SourceStatus
	// SourcePassive is a passive listener of one of the owner's skills.
	SourcePassive
)

func (s Source) String() string {
	switch s {
	case SourceSkill:
		return "skill"
	case SourceAssist:
		return "assist"
	case SourceStatus:
		return "status"
	case SourcePassive:
		return "passive"
	}
	return "unknown"
}

// consultsRegistries reports whether damage from this source runs set
// effects and skill mechanics.
func (s Source) consultsRegistries() bool {
	return s == SourceSkill || s == SourceAssist
}

// Cast is the context one effect chain executes in.
type Cast struct {
	Caster *model.Unit
	// Target is the unit the caster chose; TARGET effects land on it.
	Target  *model.Unit
	SkillID string
	// Cost is the resource already paid, reported in SkillUsed.
	Cost   int
	Source Source
	// Depth counts nested chains (reactions, passives, assists).
	Depth       int
	AssistDepth int

	mechanics []string
}

func (c Cast) reason() string {
	if c.Source == SourceSkill {
		return ""
	}
	return c.Source.String()
}

// Deps are the collaborators of an Interpreter.
type Deps struct {
	Lookup     data.Lookup
	Stats      *stats.Aggregator
	Damage     *combat.Engine
	Scheduler  *turn.Scheduler
	SetEffects *mechanic.Registry
	Mechanics  *mechanic.Registry
	Bus        *event.Bus
	Rand       mechanic.Rand
}

// Interpreter executes effects. Not safe for concurrent use; each battle
// owns one.
type Interpreter struct {
	lookup data.Lookup
	stats  *stats.Aggregator
	damage *combat.Engine
	sched  *turn.Scheduler
	sets   *mechanic.Registry
	mechs  *mechanic.Registry
	bus    *event.Bus
	rand   mechanic.Rand
	state  *model.BattleState
}

// New creates an interpreter. Nil registries and bus are replaced by empty
// ones; Lookup, Stats, Damage, Scheduler and Rand are required.
func New(deps Deps) *Interpreter {
	in := &Interpreter{
		lookup: deps.Lookup,
		stats:  deps.Stats,
		damage: deps.Damage,
		sched:  deps.Scheduler,
		sets:   deps.SetEffects,
		mechs:  deps.Mechanics,
		bus:    deps.Bus,
		rand:   deps.Rand,
	}
	if in.sets == nil {
		in.sets = mechanic.NewRegistry("set_effect")
	}
	if in.mechs == nil {
		in.mechs = mechanic.NewRegistry("skill_mechanic")
	}
	if in.bus == nil {
		in.bus = event.NewBus()
	}
	return in
}

// Bind points the interpreter at the state it mutates.
func (in *Interpreter) Bind(state *model.BattleState) {
	in.state = state
}

// State returns the bound state.
func (in *Interpreter) State() *model.BattleState {
	return in.state
}

func (in *Interpreter) round() int {
	if in.state == nil {
		return 0
	}
	return in.state.Round
}

func (in *Interpreter) publish(kind event.Kind, payload any) {
	in.bus.Publish(kind, in.round(), payload)
}

// CastSkill publishes SkillUsed and runs sk's effects for c.
//
// Skill mechanics are asked once with TriggerSkillUsed first: a Hits result
// repeats the skill's damage effects, and assist results make allies cast
// after the skill resolves. Passive listeners of the caster with
// ON_SKILL_USED fire last.
func (in *Interpreter) CastSkill(c Cast, sk *data.Skill) {
	c.SkillID = sk.ID
	c.mechanics = sk.Mechanics

	targetID := ""
	if c.Target != nil {
		targetID = c.Target.InstanceID
	}
	in.publish(event.SkillUsed, event.SkillUsedPayload{
		CasterID: c.Caster.InstanceID,
		SkillID:  sk.ID,
		TargetID: targetID,
		Cost:     c.Cost,
	})

	used := in.invokeMechanics(c.mechanics, &mechanic.Context{
		Trigger: model.TriggerSkillUsed,
		Owner:   c.Caster,
		Other:   c.Target,
		SkillID: sk.ID,
		State:   in.state,
		Rand:    in.rand,
	})
	folded := mechanic.Fold(used)

	for hit := range folded.Hits {
		for _, e := range sk.Effects {
			if _, isDamage := e.(model.Damage); hit > 0 && !isDamage {
				continue
			}
			if !c.Caster.Alive() {
				return
			}
			in.Execute(c, e, in.ResolveTargets(c, e.Selector()))
		}
	}

	for _, a := range folded.Assists {
		in.assist(c, a)
	}

	if c.Caster.Alive() {
		in.FirePassives(c.Caster, model.TriggerSkillUsed, c.Target, c.Depth)
	}
}

// ExecuteAll resolves and executes effects in order.
func (in *Interpreter) ExecuteAll(c Cast, effects []model.Effect) {
	for _, e := range effects {
		in.Execute(c, e, in.ResolveTargets(c, e.Selector()))
	}
}

// Execute applies one effect to targets.
func (in *Interpreter) Execute(c Cast, e model.Effect, targets []*model.Unit) {
	if c.Depth > constants.MaxEffectDepth {
		slog.Debug("effect chain too deep, skipping",
			"caster", c.Caster.InstanceID,
			"effect", e.Kind(),
			"depth", c.Depth)
		return
	}
	e.Accept(&run{in: in, cast: c, targets: targets})
}

func (in *Interpreter) assist(c Cast, a mechanic.Assist) {
	if c.AssistDepth >= constants.MaxAssistDepth {
		return
	}
	ally := in.state.FindUnit(a.UnitID)
	if ally == nil || !ally.Alive() {
		return
	}
	sk, ok := in.lookup.Skill(a.SkillID)
	if !ok {
		slog.Warn("assist skill not found", "unit", a.UnitID, "skill", a.SkillID)
		return
	}

	target := c.Target
	if target == nil || !target.Alive() {
		alive := model.AliveUnits(in.state.Opponents(ally))
		if len(alive) == 0 {
			return
		}
		target = alive[0]
	}

	in.CastSkill(Cast{
		Caster:      ally,
		Target:      target,
		Source:      SourceAssist,
		Depth:       c.Depth + 1,
		AssistDepth: c.AssistDepth + 1,
	}, sk)
}
