package testutil

import (
	"testing"

	"github.com/QirangMilco/TSAuto/internal/data"
	"github.com/QirangMilco/TSAuto/internal/model"
)

// Fixture definition ids.
const (
	SkillStrike = "SK_STRIKE"
	SkillNuke   = "SK_NUKE"
	SkillMend   = "SK_MEND"
	SkillWait   = "SK_WAIT"
	SkillHaste  = "SK_HASTE"
	SkillBurn   = "SK_BURN"
	SkillDouble = "SK_DOUBLE"
	SkillTriple = "SK_TRIPLE"
	SkillDrain  = "SK_DRAIN"
	SkillThorns = "SK_THORNS"
	SkillCall   = "SK_CALL"
	SkillSpread = "SK_SPREAD"
	SkillFocus  = "SK_FOCUS"
	SkillVigil  = "SK_VIGIL"
	SkillRush   = "SK_RUSH"

	StatusATKUp      = "ST_ATK_UP"
	StatusATKUpSmall = "ST_ATK_UP_SMALL"
	StatusDEFDown    = "ST_DEF_DOWN"
	StatusSPDUp      = "ST_SPD_UP"
	StatusBurn       = "ST_BURN"
	StatusGuard      = "ST_GUARD"
	StatusCharge     = "ST_CHARGE"

	SetAlpha = "SET_A"

	EquipBlade  = "EQ_BLADE"
	EquipCloud  = "EQ_CLOUD"
	EquipGourd  = "EQ_GOURD"
	EquipSpark  = "EQ_SPARK"
	EquipOrphan = "EQ_ORPHAN"

	TemplateBlade = "TPL_BLADE"

	GambitBasic = "GB_BASIC"

	CharHero  = "CHAR_HERO"
	CharSlime = "CHAR_SLIME"

	EncounterDuel  = "ENC_DUEL"
	EncounterArmed = "ENC_ARMED"
)

// UnitOption customizes a fixture unit.
type UnitOption func(*model.Unit)

// WithSkills sets the unit's skill list.
func WithSkills(ids ...string) UnitOption {
	return func(u *model.Unit) { u.Skills = ids }
}

// WithEquipment sets the unit's equipment ids.
func WithEquipment(ids ...string) UnitOption {
	return func(u *model.Unit) { u.EquipmentIDs = ids }
}

// WithStatuses attaches status instances.
func WithStatuses(st ...model.StatusInstance) UnitOption {
	return func(u *model.Unit) { u.Statuses = append(u.Statuses, st...) }
}

// WithGambit sets the unit's gambit id.
func WithGambit(id string) UnitOption {
	return func(u *model.Unit) { u.GambitID = id }
}

// WithStat overrides one base (and current) stat.
func WithStat(s model.Stat, v float64) UnitOption {
	return func(u *model.Unit) {
		u.BaseStats.Set(s, v)
		u.CurrentStats.Set(s, v)
	}
}

// WithHP sets current HP, keeping MaxHP.
func WithHP(hp int64) UnitOption {
	return func(u *model.Unit) { u.HP = hp }
}

// NewUnit builds a unit with flat HP/ATK/DEF/SPD. HP and MaxHP follow hp
// unless an option changes them. Skills default to SkillStrike.
func NewUnit(id string, hp, atk, def, spd float64, opts ...UnitOption) *model.Unit {
	var base model.StatTable
	base.Set(model.StatHP, hp)
	base.Set(model.StatATK, atk)
	base.Set(model.StatDEF, def)
	base.Set(model.StatSPD, spd)

	u := model.NewUnit(id, "CHAR_"+id, id, base)
	u.Skills = []string{SkillStrike}
	u.Level = 1
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func statPtr(s model.Stat) *model.Stat { return &s }

// NewStore returns a small, fully cross-referenced definition store.
func NewStore(tb testing.TB) *data.Store {
	tb.Helper()

	s := BuildStore()
	if err := s.Validate(); err != nil {
		tb.Fatalf("fixture store invalid: %v", err)
	}
	return s
}

// BuildStore builds the fixture store without a testing handle. Benchmarks
// and examples use it directly.
func BuildStore() *data.Store {
	s := data.NewStore()

	skills := []*data.Skill{
		{ID: SkillStrike, Name: "Strike", Effects: data.EffectList{
			model.Damage{Target: model.TargetTarget, Multiplier: 1, BaseStat: model.StatATK},
		}},
		{ID: SkillNuke, Name: "Nuke", Cost: 3, Effects: data.EffectList{
			model.Damage{Target: model.TargetAllEnemies, Multiplier: 2, BaseStat: model.StatATK},
		}},
		{ID: SkillMend, Name: "Mend", Cost: 1, Effects: data.EffectList{
			model.Heal{Target: model.TargetTarget, Multiplier: 0.2, BaseStat: model.StatHP},
		}},
		{ID: SkillWait, Name: "Wait"},
		{ID: SkillHaste, Name: "Haste", Effects: data.EffectList{
			model.ApplyStatus{Target: model.TargetSelf, StatusID: StatusSPDUp, Duration: 2},
			model.ModifyActionBar{Target: model.TargetSelf, Fraction: 0.5},
		}},
		{ID: SkillBurn, Name: "Burn", Effects: data.EffectList{
			model.ApplyStatus{Target: model.TargetTarget, StatusID: StatusBurn, Duration: 1},
		}},
		{ID: SkillDouble, Name: "Double", Cost: 1, Effects: data.EffectList{
			model.Damage{Target: model.TargetTarget, Multiplier: 0.5, BaseStat: model.StatATK},
			model.GrantExtraTurn{Target: model.TargetSelf},
		}},
		{ID: SkillTriple, Name: "Triple", Mechanics: []string{"MECH_MULTI_HIT"}, Effects: data.EffectList{
			model.Damage{Target: model.TargetTarget, Multiplier: 0.5, BaseStat: model.StatATK},
			model.ModifyResource{Target: model.TargetSelf, Amount: 1},
		}},
		{ID: SkillDrain, Name: "Drain", Mechanics: []string{"MECH_LIFE_STEAL"}, Effects: data.EffectList{
			model.Damage{Target: model.TargetTarget, Multiplier: 1, BaseStat: model.StatATK},
		}},
		{ID: SkillThorns, Name: "Thorns", Mechanics: []string{"MECH_DAMAGE_REFLECT"}},
		{ID: SkillCall, Name: "Call", Mechanics: []string{"MECH_ASSIST"}, Effects: data.EffectList{
			model.Damage{Target: model.TargetTarget, Multiplier: 1, BaseStat: model.StatATK},
		}},
		{ID: SkillSpread, Name: "Spread", Mechanics: []string{"MECH_STATUS_SPREAD"}, Effects: data.EffectList{
			model.Damage{Target: model.TargetTarget, Multiplier: 0.1, BaseStat: model.StatATK},
		}},
		{ID: SkillFocus, Name: "Focus", Passives: []data.PassiveListener{
			{Trigger: model.TriggerSkillUsed, Effects: data.EffectList{
				model.ModifyResource{Target: model.TargetSelf, Amount: 1},
			}},
		}},
		{ID: SkillVigil, Name: "Vigil", Passives: []data.PassiveListener{
			{Trigger: model.TriggerDamageReceived, Effects: data.EffectList{
				model.ModifyActionBar{Target: model.TargetSelf, Fraction: 0.1},
			}},
		}},
		{ID: SkillRush, Name: "Rush", Passives: []data.PassiveListener{
			{Trigger: model.TriggerBattleStart, Effects: data.EffectList{
				model.ModifyActionBar{Target: model.TargetSelf, Fraction: 0.5},
			}},
		}},
	}
	for _, sk := range skills {
		mustAdd(s.AddSkill(sk))
	}

	statuses := []*data.Status{
		{ID: StatusATKUp, Group: "ATK", Duration: 2, StatModifiers: model.StatMap{model.StatATKPercent: 20}},
		{ID: StatusATKUpSmall, Group: "ATK", Duration: 2, StatModifiers: model.StatMap{model.StatATKPercent: 10}},
		{ID: StatusDEFDown, Duration: 2, StatModifiers: model.StatMap{model.StatDEFPercent: -25}},
		{ID: StatusSPDUp, Duration: 2, StatModifiers: model.StatMap{model.StatSPDPercent: 30}},
		{ID: StatusBurn, Duration: 2, MaxStacks: 3, OnTurnEnd: data.EffectList{
			model.Damage{Target: model.TargetSelf, Multiplier: 0.05, BaseStat: model.StatHP},
		}},
		{ID: StatusGuard, Duration: 1, StatModifiers: model.StatMap{model.StatDEFPercent: 10}},
		{ID: StatusCharge, Duration: 2, OnReceiveDamage: data.EffectList{
			model.ModifyResource{Target: model.TargetSelf, Amount: 1},
		}},
	}
	for _, st := range statuses {
		mustAdd(s.AddStatus(st))
	}

	mustAdd(s.AddEquipmentSet(&data.EquipmentSet{ID: SetAlpha, Name: "Alpha", Bonuses: []data.SetBonus{
		{Pieces: 2, Stat: statPtr(model.StatATKPercent), Value: 15},
		{Pieces: 4, Stat: statPtr(model.StatATKPercent), Value: 30},
		{Pieces: 4, EffectID: "EFF_POSHI"},
	}}))

	equipment := []*data.Equipment{
		{ID: EquipBlade, SetID: SetAlpha, Slot: 1, Level: 15, Grade: 6,
			MainStat: &model.StatValue{Stat: model.StatATK, Value: 100},
			SubStats: []model.StatValue{{Stat: model.StatCrit, Value: 0.05}}},
		{ID: EquipCloud, SetID: SetAlpha, Slot: 2, Level: 15, Grade: 6,
			MainStat: &model.StatValue{Stat: model.StatSPD, Value: 10}},
		{ID: EquipGourd, SetID: SetAlpha, Slot: 3, Level: 15, Grade: 6,
			MainStat: &model.StatValue{Stat: model.StatATKPercent, Value: 20}},
		{ID: EquipSpark, SetID: SetAlpha, Slot: 4, Level: 15, Grade: 6,
			MainStat: &model.StatValue{Stat: model.StatCrit, Value: 0.1}},
		{ID: EquipOrphan, Slot: 5, MainStat: &model.StatValue{Stat: model.StatHP, Value: 500}},
		{ID: TemplateBlade, Name: "Alpha Blade", SetID: SetAlpha, Slot: 1},
	}
	for _, eq := range equipment {
		mustAdd(s.AddEquipment(eq))
	}

	mustAdd(s.AddGambit(&model.Gambit{ID: GambitBasic, Name: "Basic", Rules: []model.Rule{
		{ID: "strike", Priority: 10, Condition: model.Condition{Type: model.CondAlways},
			Target: model.TargetSpec{Type: model.GambitTargetEnemy, Strategy: model.StrategyAny}, SkillID: SkillStrike},
	}}))

	mustAdd(s.AddCharacter(&data.Character{ID: CharHero, Name: "Hero",
		GrowthBeforeAwake: data.Growth{HP: 1, ATK: 2, DEF: 1},
		GrowthAfterAwake:  data.Growth{HP: 1.2, ATK: 2.4, DEF: 1.2},
		BaseBeforeAwake:   data.BaseValues{SPD: 120, Crit: 0.05, CritDmg: 0.5},
		BaseAfterAwake:    data.BaseValues{SPD: 125, Crit: 0.1, CritDmg: 0.5},
		Skills:            []string{SkillStrike, SkillNuke},
		GambitID:          GambitBasic,
	}))
	mustAdd(s.AddCharacter(&data.Character{ID: CharSlime, Name: "Slime",
		GrowthBeforeAwake: data.Growth{HP: 1, ATK: 0.5, DEF: 0.5},
		BaseBeforeAwake:   data.BaseValues{SPD: 90},
		Skills:            []string{SkillStrike},
	}))
	mustAdd(s.AddEncounter(&data.Encounter{ID: EncounterDuel, Name: "Duel",
		Players: []data.UnitSpec{{CharacterID: CharHero, Level: 10, Equipment: []string{EquipBlade, EquipCloud}}},
		Enemies: []data.UnitSpec{
			{CharacterID: CharSlime, Level: 5},
			{CharacterID: CharSlime, Level: 5, Name: "Big Slime", GambitID: GambitBasic},
		},
	}))
	mustAdd(s.AddEncounter(&data.Encounter{ID: EncounterArmed, Name: "Armed duel",
		Players: []data.UnitSpec{{CharacterID: CharHero, Level: 10, Equipment: []string{EquipCloud},
			RolledEquipment: []data.EquipmentRoll{{TemplateID: TemplateBlade, Level: 15}}}},
		Enemies: []data.UnitSpec{{CharacterID: CharSlime, Level: 5}},
	}))

	return s
}

func mustAdd(err error) {
	if err != nil {
		panic("testutil: " + err.Error())
	}
}
