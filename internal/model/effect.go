package model

import "fmt"

// TargetType selects which units an effect lands on, relative to the caster
// and the cast's chosen target.
type TargetType uint8

const (
	TargetSelf TargetType = iota
	TargetTarget
	TargetAllAllies
	TargetAllEnemies
	TargetRandomEnemy
	TargetRandomAlly
)

var targetTypeNames = map[TargetType]string{
	TargetSelf:        "SELF",
	TargetTarget:      "TARGET",
	TargetAllAllies:   "ALL_ALLIES",
	TargetAllEnemies:  "ALL_ENEMIES",
	TargetRandomEnemy: "RANDOM_ENEMY",
	TargetRandomAlly:  "RANDOM_ALLY",
}

func (t TargetType) String() string {
	if n, ok := targetTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("TargetType(%d)", uint8(t))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TargetType) UnmarshalText(text []byte) error {
	for k, n := range targetTypeNames {
		if n == string(text) {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("unknown target type %q", text)
}

// MarshalText implements encoding.TextMarshaler.
func (t TargetType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Effect is one immutable opcode of a skill or status.
// The set of variants is closed; new variants must be added to EffectVisitor.
type Effect interface {
	// Selector returns which units the effect targets.
	Selector() TargetType
	// Accept calls the visitor method matching the variant.
	Accept(v EffectVisitor)
	// Kind returns the variant name used in definition files.
	Kind() string

	sealed()
}

// EffectVisitor handles every Effect variant. Implementations get a compile
// error when a variant is added without a matching method.
type EffectVisitor interface {
	VisitDamage(e Damage)
	VisitHeal(e Heal)
	VisitApplyStatus(e ApplyStatus)
	VisitRemoveStatus(e RemoveStatus)
	VisitModifyActionBar(e ModifyActionBar)
	VisitModifyResource(e ModifyResource)
	VisitGrantExtraTurn(e GrantExtraTurn)
	VisitTriggerPseudoTurn(e TriggerPseudoTurn)
}

// Effect kind names as written in definition files.
const (
	KindDamage            = "DAMAGE"
	KindHeal              = "HEAL"
	KindApplyStatus       = "APPLY_STATUS"
	KindRemoveStatus      = "REMOVE_STATUS"
	KindModifyActionBar   = "MODIFY_ACTION_BAR"
	KindModifyResource    = "MODIFY_RESOURCE"
	KindGrantExtraTurn    = "GRANT_EXTRA_TURN"
	KindTriggerPseudoTurn = "TRIGGER_PSEUDO_TURN"
)

// Damage hits targets for Multiplier × BaseStat of the caster.
type Damage struct {
	Target     TargetType
	Multiplier float64
	BaseStat   Stat
}

// Heal restores Multiplier × BaseStat of the caster.
type Heal struct {
	Target     TargetType
	Multiplier float64
	BaseStat   Stat
}

// ApplyStatus attaches StatusID. Duration 0 uses the status definition's
// duration. Chance in (0,1) makes application a roll adjusted by
// EFFECT_HIT / EFFECT_RESIST; 0 or >= 1 always applies.
type ApplyStatus struct {
	Target   TargetType
	StatusID string
	Duration int
	Chance   float64
}

// RemoveStatus strips StatusID from targets.
type RemoveStatus struct {
	Target   TargetType
	StatusID string
}

// ModifyActionBar pushes (positive) or pulls (negative) the action bar by
// Fraction of the current threshold.
type ModifyActionBar struct {
	Target   TargetType
	Fraction float64
}

// ModifyResource adds Amount to the shared pool. Targets are irrelevant.
type ModifyResource struct {
	Target TargetType
	Amount int
}

// GrantExtraTurn queues an immediate extra turn for each target.
type GrantExtraTurn struct {
	Target TargetType
}

// TriggerPseudoTurn queues a pseudo turn that casts SkillID without cost.
type TriggerPseudoTurn struct {
	Target  TargetType
	SkillID string
}

func (e Damage) Selector() TargetType            { return e.Target }
func (e Heal) Selector() TargetType              { return e.Target }
func (e ApplyStatus) Selector() TargetType       { return e.Target }
func (e RemoveStatus) Selector() TargetType      { return e.Target }
func (e ModifyActionBar) Selector() TargetType   { return e.Target }
func (e ModifyResource) Selector() TargetType    { return e.Target }
func (e GrantExtraTurn) Selector() TargetType    { return e.Target }
func (e TriggerPseudoTurn) Selector() TargetType { return e.Target }

func (e Damage) Accept(v EffectVisitor)            { v.VisitDamage(e) }
func (e Heal) Accept(v EffectVisitor)              { v.VisitHeal(e) }
func (e ApplyStatus) Accept(v EffectVisitor)       { v.VisitApplyStatus(e) }
func (e RemoveStatus) Accept(v EffectVisitor)      { v.VisitRemoveStatus(e) }
func (e ModifyActionBar) Accept(v EffectVisitor)   { v.VisitModifyActionBar(e) }
func (e ModifyResource) Accept(v EffectVisitor)    { v.VisitModifyResource(e) }
func (e GrantExtraTurn) Accept(v EffectVisitor)    { v.VisitGrantExtraTurn(e) }
func (e TriggerPseudoTurn) Accept(v EffectVisitor) { v.VisitTriggerPseudoTurn(e) }

func (Damage) Kind() string            { return KindDamage }
func (Heal) Kind() string              { return KindHeal }
func (ApplyStatus) Kind() string       { return KindApplyStatus }
func (RemoveStatus) Kind() string      { return KindRemoveStatus }
func (ModifyActionBar) Kind() string   { return KindModifyActionBar }
func (ModifyResource) Kind() string    { return KindModifyResource }
func (GrantExtraTurn) Kind() string    { return KindGrantExtraTurn }
func (TriggerPseudoTurn) Kind() string { return KindTriggerPseudoTurn }

func (Damage) sealed()            {}
func (Heal) sealed()              {}
func (ApplyStatus) sealed()       {}
func (RemoveStatus) sealed()      {}
func (ModifyActionBar) sealed()   {}
func (ModifyResource) sealed()    {}
func (GrantExtraTurn) sealed()    {}
func (TriggerPseudoTurn) sealed() {}
