package skill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QirangMilco/TSAuto/internal/constants"
	"github.com/QirangMilco/TSAuto/internal/data"
	"github.com/QirangMilco/TSAuto/internal/event"
	"github.com/QirangMilco/TSAuto/internal/game/combat"
	"github.com/QirangMilco/TSAuto/internal/game/mechanic"
	"github.com/QirangMilco/TSAuto/internal/game/stats"
	"github.com/QirangMilco/TSAuto/internal/game/turn"
	"github.com/QirangMilco/TSAuto/internal/model"
	"github.com/QirangMilco/TSAuto/internal/rng"
	"github.com/QirangMilco/TSAuto/internal/testutil"
)

type harness struct {
	store *data.Store
	in    *Interpreter
	sched *turn.Scheduler
	state *model.BattleState
	rec   *event.Recorder
}

func newHarness(t *testing.T, players, enemies []*model.Unit) *harness {
	t.Helper()

	store := testutil.NewStore(t)
	source := rng.New(1)
	bus := event.NewBus()
	rec := event.NewRecorder()
	bus.Attach(rec)

	h := &harness{
		store: store,
		sched: turn.NewScheduler(),
		state: &model.BattleState{
			Players:  players,
			Enemies:  enemies,
			Round:    1,
			Resource: model.ResourcePool{Current: 4, Max: 8},
		},
		rec: rec,
	}
	h.in = New(Deps{
		Lookup:     store,
		Stats:      stats.NewAggregator(store),
		Damage:     combat.NewEngine(source),
		Scheduler:  h.sched,
		SetEffects: mechanic.NewSetEffectRegistry(),
		Mechanics:  mechanic.NewSkillMechanicRegistry(),
		Bus:        bus,
		Rand:       source,
	})
	h.in.Bind(h.state)
	return h
}

func (h *harness) cast(t *testing.T, caster, target *model.Unit, skillID string) {
	t.Helper()
	sk, ok := h.store.Skill(skillID)
	require.True(t, ok, "skill %s", skillID)
	h.in.CastSkill(Cast{Caster: caster, Target: target, Source: SourceSkill}, sk)
}

func damagePayloads(rec *event.Recorder) []event.DamagePayload {
	var out []event.DamagePayload
	for _, ev := range rec.OfKind(event.DamageDealt) {
		out = append(out, ev.Payload.(event.DamagePayload))
	}
	return out
}

func TestCastSkill_Damage(t *testing.T) {
	p := testutil.NewUnit("p1", 10000, 1000, 0, 100)
	e := testutil.NewUnit("e1", 10000, 100, 300, 100)
	h := newHarness(t, []*model.Unit{p}, []*model.Unit{e})

	h.cast(t, p, e, testutil.SkillStrike)

	assert.Equal(t, int64(9500), e.HP)
	require.Equal(t, 1, h.rec.Count(event.SkillUsed))
	used := h.rec.OfKind(event.SkillUsed)[0].Payload.(event.SkillUsedPayload)
	assert.Equal(t, event.SkillUsedPayload{CasterID: "p1", SkillID: testutil.SkillStrike, TargetID: "e1"}, used)

	dmg := damagePayloads(h.rec)
	require.Len(t, dmg, 1)
	assert.Equal(t, int64(500), dmg[0].Amount)
	assert.Equal(t, int64(9500), dmg[0].TargetHP)
	assert.Empty(t, dmg[0].Reason)
}

func TestCastSkill_KillPublishesDeath(t *testing.T) {
	p := testutil.NewUnit("p1", 10000, 1000, 0, 100)
	e := testutil.NewUnit("e1", 300, 100, 0, 100)
	h := newHarness(t, []*model.Unit{p}, []*model.Unit{e})

	h.cast(t, p, e, testutil.SkillStrike)

	assert.True(t, e.IsDead)
	require.Equal(t, 1, h.rec.Count(event.CharacterDeath))
	death := h.rec.OfKind(event.CharacterDeath)[0].Payload.(event.DeathPayload)
	assert.Equal(t, event.DeathPayload{UnitID: "e1", KillerID: "p1"}, death)
}

func TestCastSkill_AllEnemiesSkipsDead(t *testing.T) {
	p := testutil.NewUnit("p1", 10000, 100, 0, 100)
	e1 := testutil.NewUnit("e1", 10000, 100, 0, 100)
	e2 := testutil.NewUnit("e2", 10000, 100, 0, 100)
	e2.TakeDamage(e2.HP)
	e3 := testutil.NewUnit("e3", 10000, 100, 0, 100)
	h := newHarness(t, []*model.Unit{p}, []*model.Unit{e1, e2, e3})

	h.cast(t, p, e1, testutil.SkillNuke)

	dmg := damagePayloads(h.rec)
	require.Len(t, dmg, 2)
	assert.Equal(t, "e1", dmg[0].TargetID)
	assert.Equal(t, "e3", dmg[1].TargetID)
}

func TestCastSkill_HealAlly(t *testing.T) {
	p1 := testutil.NewUnit("p1", 1000, 100, 0, 100)
	p2 := testutil.NewUnit("p2", 1000, 100, 0, 100, testutil.WithHP(100))
	h := newHarness(t, []*model.Unit{p1, p2}, []*model.Unit{testutil.NewUnit("e1", 1000, 1, 0, 100)})

	h.cast(t, p1, p2, testutil.SkillMend)

	assert.Equal(t, int64(300), p2.HP)
	heals := h.rec.OfKind(event.HealReceived)
	require.Len(t, heals, 1)
	assert.Equal(t, int64(200), heals[0].Payload.(event.HealPayload).Amount)
}

func TestAddStatus_RefreshAndStack(t *testing.T) {
	e := testutil.NewUnit("e1", 1000, 100, 0, 100)
	h := newHarness(t, []*model.Unit{testutil.NewUnit("p1", 1000, 100, 0, 100)}, []*model.Unit{e})
	burn, _ := h.store.Status(testutil.StatusBurn)

	h.in.AddStatus(e, burn, 1, "p1")
	require.Len(t, e.Statuses, 1)
	assert.Equal(t, 1, e.Statuses[0].RemainingTurns)
	assert.Equal(t, 1, e.Statuses[0].Stacks())

	for range 5 {
		h.in.AddStatus(e, burn, 2, "p1")
	}
	require.Len(t, e.Statuses, 1)
	assert.Equal(t, 2, e.Statuses[0].RemainingTurns)
	assert.Equal(t, 3, e.Statuses[0].Stacks(), "stacks capped at MaxStacks")
	assert.Equal(t, 6, h.rec.Count(event.StatusApplied))
}

func TestAddStatus_DefinitionDurationAndPermanent(t *testing.T) {
	u := testutil.NewUnit("p1", 1000, 100, 0, 100)
	h := newHarness(t, []*model.Unit{u}, []*model.Unit{testutil.NewUnit("e1", 1000, 100, 0, 100)})

	atkUp, _ := h.store.Status(testutil.StatusATKUp)
	inst := h.in.AddStatus(u, atkUp, 0, "p1")
	assert.Equal(t, 2, inst.RemainingTurns)
	assert.False(t, inst.Permanent)
	assert.Equal(t, 20.0, u.Stat(model.StatATKPercent), "stats refreshed on apply")

	aura := &data.Status{ID: "ST_AURA", StatModifiers: model.StatMap{model.StatDEFPercent: 5}}
	inst = h.in.AddStatus(u, aura, 0, "p1")
	assert.True(t, inst.Permanent)
}

func TestStatusDecay_OneTurnSurvivesStartRemovedAtEnd(t *testing.T) {
	u := testutil.NewUnit("p1", 1000, 100, 0, 100)
	h := newHarness(t, []*model.Unit{u}, []*model.Unit{testutil.NewUnit("e1", 1000, 100, 0, 100)})
	guard, _ := h.store.Status(testutil.StatusGuard)
	h.in.AddStatus(u, guard, 1, "p1")
	require.Equal(t, 10.0, u.Stat(model.StatDEFPercent))

	h.in.StartOfTurn(u)
	assert.True(t, u.HasStatus(testutil.StatusGuard), "start of turn never decays")

	h.in.EndOfTurn(u)
	assert.False(t, u.HasStatus(testutil.StatusGuard))
	assert.Zero(t, u.Stat(model.StatDEFPercent), "stats refreshed on expiry")
	assert.Equal(t, 1, h.rec.Count(event.StatusRemoved))
}

func TestStatusDecay_PermanentNeverExpires(t *testing.T) {
	u := testutil.NewUnit("p1", 1000, 100, 0, 100,
		testutil.WithStatuses(model.StatusInstance{StatusID: testutil.StatusSPDUp, Permanent: true}))
	h := newHarness(t, []*model.Unit{u}, []*model.Unit{testutil.NewUnit("e1", 1000, 100, 0, 100)})

	for range 10 {
		h.in.EndOfTurn(u)
	}
	assert.True(t, u.HasStatus(testutil.StatusSPDUp))
}

func TestEndOfTurn_BurnTicksPerStack(t *testing.T) {
	u := testutil.NewUnit("e1", 1000, 100, 0, 100)
	h := newHarness(t, []*model.Unit{testutil.NewUnit("p1", 1000, 100, 0, 100)}, []*model.Unit{u})
	burn, _ := h.store.Status(testutil.StatusBurn)
	h.in.AddStatus(u, burn, 2, "p1")
	h.in.AddStatus(u, burn, 2, "p1")

	h.in.EndOfTurn(u)

	dmg := damagePayloads(h.rec)
	require.Len(t, dmg, 2)
	for _, d := range dmg {
		assert.Equal(t, int64(50), d.Amount)
		assert.Equal(t, "status", d.Reason)
	}
	assert.Equal(t, int64(900), u.HP)
	assert.Equal(t, 1, u.Statuses[0].RemainingTurns)
}

func TestRemoveStatus(t *testing.T) {
	u := testutil.NewUnit("p1", 1000, 100, 0, 100)
	h := newHarness(t, []*model.Unit{u}, []*model.Unit{testutil.NewUnit("e1", 1000, 100, 0, 100)})
	def, _ := h.store.Status(testutil.StatusDEFDown)
	h.in.AddStatus(u, def, 2, "e1")

	h.in.Execute(Cast{Caster: u, Target: u}, model.RemoveStatus{Target: model.TargetSelf, StatusID: testutil.StatusDEFDown}, []*model.Unit{u})
	assert.False(t, u.HasStatus(testutil.StatusDEFDown))
	assert.False(t, h.in.RemoveStatus(u, testutil.StatusDEFDown), "second removal is a no-op")
	assert.Equal(t, 1, h.rec.Count(event.StatusRemoved))
}

func TestCastSkill_ActionBarAndStatus(t *testing.T) {
	u := testutil.NewUnit("p1", 1000, 100, 0, 100)
	h := newHarness(t, []*model.Unit{u}, []*model.Unit{testutil.NewUnit("e1", 1000, 100, 0, 200)})
	h.sched.Advance(h.state.AllUnits())
	u.ActionBarPosition = 0

	h.cast(t, u, nil, testutil.SkillHaste)

	assert.InDelta(t, 100, u.ActionBarPosition, 1e-9, "half of the 200 threshold")
	assert.Equal(t, 30.0, u.Stat(model.StatSPDPercent))
}

func TestCastSkill_ExtraTurnQueued(t *testing.T) {
	p := testutil.NewUnit("p1", 1000, 100, 0, 100)
	h := newHarness(t, []*model.Unit{p}, []*model.Unit{testutil.NewUnit("e1", 1000, 100, 0, 100)})

	h.cast(t, p, h.state.Enemies[0], testutil.SkillDouble)

	assert.Equal(t, 1, h.sched.Pending())
	ready := h.sched.Advance(h.state.AllUnits())
	require.Len(t, ready, 1)
	assert.Equal(t, p, ready[0].Unit)
	assert.Equal(t, model.TurnExtra, ready[0].Type)
}

func TestPseudoTurnQueued(t *testing.T) {
	p := testutil.NewUnit("p1", 1000, 100, 0, 100)
	h := newHarness(t, []*model.Unit{p}, []*model.Unit{testutil.NewUnit("e1", 1000, 100, 0, 100)})

	h.in.Execute(Cast{Caster: p}, model.TriggerPseudoTurn{Target: model.TargetSelf, SkillID: testutil.SkillStrike}, []*model.Unit{p})

	ready := h.sched.Advance(h.state.AllUnits())
	require.Len(t, ready, 1)
	assert.Equal(t, model.TurnPseudo, ready[0].Type)
	assert.Equal(t, testutil.SkillStrike, ready[0].SkillID)
}

func TestModifyResource_ClampedWithEvent(t *testing.T) {
	p := testutil.NewUnit("p1", 1000, 100, 0, 100)
	h := newHarness(t, []*model.Unit{p}, []*model.Unit{testutil.NewUnit("e1", 1000, 100, 0, 100)})

	h.in.ModifyResource(10, "test")
	assert.Equal(t, 8, h.state.Resource.Current)
	h.in.ModifyResource(1, "test")
	assert.Equal(t, 1, h.rec.Count(event.ResourceChanged), "no event when the pool does not change")

	h.in.ModifyResource(-20, "test")
	assert.Zero(t, h.state.Resource.Current)
}

func TestCastSkill_SetEffectBoostsDamage(t *testing.T) {
	p := testutil.NewUnit("p1", 10000, 1000, 0, 100, testutil.WithEquipment(
		testutil.EquipBlade, testutil.EquipCloud, testutil.EquipGourd, testutil.EquipSpark))
	e := testutil.NewUnit("e1", 10000, 100, 300, 100)
	h := newHarness(t, []*model.Unit{p}, []*model.Unit{e})

	h.cast(t, p, e, testutil.SkillStrike)

	dmg := damagePayloads(h.rec)
	require.Len(t, dmg, 1)
	assert.Equal(t, int64(700), dmg[0].Amount, "full-HP target takes 40% more")
}

func TestCastSkill_MultiHit(t *testing.T) {
	p := testutil.NewUnit("p1", 10000, 1000, 0, 100)
	e := testutil.NewUnit("e1", 10000, 100, 0, 100)
	h := newHarness(t, []*model.Unit{p}, []*model.Unit{e})

	h.cast(t, p, e, testutil.SkillTriple)

	dmg := damagePayloads(h.rec)
	require.Len(t, dmg, constants.MultiHitCount)
	for _, d := range dmg {
		assert.Equal(t, int64(500), d.Amount)
	}
	assert.Equal(t, 5, h.state.Resource.Current, "non-damage effects run once")
}

func TestCastSkill_LifeSteal(t *testing.T) {
	p := testutil.NewUnit("p1", 10000, 1000, 0, 100, testutil.WithHP(5000))
	e := testutil.NewUnit("e1", 10000, 100, 300, 100)
	h := newHarness(t, []*model.Unit{p}, []*model.Unit{e})

	h.cast(t, p, e, testutil.SkillDrain)

	assert.Equal(t, int64(5100), p.HP)
	heals := h.rec.OfKind(event.HealReceived)
	require.Len(t, heals, 1)
	assert.Equal(t, "life_steal", heals[0].Payload.(event.HealPayload).Reason)
}

func TestCastSkill_DefenderReflects(t *testing.T) {
	p := testutil.NewUnit("p1", 10000, 1000, 0, 100)
	e := testutil.NewUnit("e1", 10000, 100, 300, 100, testutil.WithSkills(testutil.SkillStrike, testutil.SkillThorns))
	h := newHarness(t, []*model.Unit{p}, []*model.Unit{e})

	h.cast(t, p, e, testutil.SkillStrike)

	dmg := damagePayloads(h.rec)
	require.Len(t, dmg, 2)
	assert.Equal(t, "reflect", dmg[1].Reason)
	assert.Equal(t, "p1", dmg[1].TargetID)
	assert.Equal(t, int64(150), dmg[1].Amount)
	assert.Equal(t, int64(9850), p.HP)
}

func TestCastSkill_Assist(t *testing.T) {
	p1 := testutil.NewUnit("p1", 10000, 1000, 0, 100, testutil.WithSkills(testutil.SkillCall))
	p2 := testutil.NewUnit("p2", 10000, 1000, 0, 100, testutil.WithSkills(testutil.SkillCall))
	e := testutil.NewUnit("e1", 100000, 100, 0, 100)
	h := newHarness(t, []*model.Unit{p1, p2}, []*model.Unit{e})

	h.cast(t, p1, e, testutil.SkillCall)

	used := h.rec.OfKind(event.SkillUsed)
	require.Len(t, used, 2, "assist casts once and does not chain")
	second := used[1].Payload.(event.SkillUsedPayload)
	assert.Equal(t, "p2", second.CasterID)
	assert.Equal(t, "e1", second.TargetID)
	assert.Zero(t, second.Cost)

	dmg := damagePayloads(h.rec)
	require.Len(t, dmg, 2)
	assert.Equal(t, "assist", dmg[1].Reason)
}

func TestCastSkill_StatusSpread(t *testing.T) {
	p := testutil.NewUnit("p1", 10000, 1000, 0, 100)
	e1 := testutil.NewUnit("e1", 10000, 100, 0, 100)
	e2 := testutil.NewUnit("e2", 10000, 100, 0, 100)
	h := newHarness(t, []*model.Unit{p}, []*model.Unit{e1, e2})
	burn, _ := h.store.Status(testutil.StatusBurn)
	h.in.AddStatus(e1, burn, 2, "p1")

	h.cast(t, p, e1, testutil.SkillSpread)

	require.True(t, e2.HasStatus(testutil.StatusBurn))
	assert.Equal(t, 2, e2.Statuses[0].RemainingTurns)
	assert.False(t, p.HasStatus(testutil.StatusBurn))
}

func TestPassives(t *testing.T) {
	p := testutil.NewUnit("p1", 10000, 1000, 0, 100, testutil.WithSkills(testutil.SkillStrike, testutil.SkillFocus))
	e := testutil.NewUnit("e1", 10000, 100, 0, 100, testutil.WithSkills(testutil.SkillStrike, testutil.SkillVigil))
	h := newHarness(t, []*model.Unit{p}, []*model.Unit{e})
	h.sched.Advance(h.state.AllUnits())
	e.ActionBarPosition = 0

	h.cast(t, p, e, testutil.SkillStrike)

	assert.Equal(t, 5, h.state.Resource.Current, "ON_SKILL_USED passive of the caster")
	assert.InDelta(t, 10, e.ActionBarPosition, 1e-9, "ON_RECEIVE_DAMAGE passive of the defender")
}

func TestStatusReactsToDamage(t *testing.T) {
	p := testutil.NewUnit("p1", 10000, 100, 0, 100)
	e := testutil.NewUnit("e1", 10000, 100, 0, 100)
	h := newHarness(t, []*model.Unit{p}, []*model.Unit{e})
	charge, _ := h.store.Status(testutil.StatusCharge)
	h.in.AddStatus(e, charge, 2, "e1")

	h.cast(t, p, e, testutil.SkillStrike)
	assert.Equal(t, 5, h.state.Resource.Current)
}

func TestApplyStatus_ResistedChance(t *testing.T) {
	p := testutil.NewUnit("p1", 10000, 100, 0, 100)
	e := testutil.NewUnit("e1", 10000, 100, 0, 100, testutil.WithStat(model.StatEffectResist, 1e12))
	h := newHarness(t, []*model.Unit{p}, []*model.Unit{e})

	for range 100 {
		h.in.Execute(Cast{Caster: p, Target: e},
			model.ApplyStatus{Target: model.TargetTarget, StatusID: testutil.StatusBurn, Chance: 0.5},
			[]*model.Unit{e})
	}
	assert.False(t, e.HasStatus(testutil.StatusBurn))

	h.in.Execute(Cast{Caster: p, Target: e},
		model.ApplyStatus{Target: model.TargetTarget, StatusID: testutil.StatusBurn, Chance: 1},
		[]*model.Unit{e})
	assert.True(t, e.HasStatus(testutil.StatusBurn), "guaranteed statuses ignore resist")
}

func TestExecute_MissingStatusSkipped(t *testing.T) {
	p := testutil.NewUnit("p1", 10000, 100, 0, 100)
	h := newHarness(t, []*model.Unit{p}, []*model.Unit{testutil.NewUnit("e1", 1000, 100, 0, 100)})

	assert.NotPanics(t, func() {
		h.in.Execute(Cast{Caster: p}, model.ApplyStatus{Target: model.TargetSelf, StatusID: "ST_NOPE"}, []*model.Unit{p})
	})
	assert.Empty(t, p.Statuses)
	assert.Zero(t, h.rec.Count(event.StatusApplied))
}

func TestExecute_DepthLimit(t *testing.T) {
	p := testutil.NewUnit("p1", 10000, 100, 0, 100)
	h := newHarness(t, []*model.Unit{p}, []*model.Unit{testutil.NewUnit("e1", 1000, 100, 0, 100)})

	h.in.Execute(Cast{Caster: p, Depth: constants.MaxEffectDepth + 1},
		model.ModifyResource{Target: model.TargetSelf, Amount: 1}, nil)
	assert.Equal(t, 4, h.state.Resource.Current)
}

func TestResolveTargets(t *testing.T) {
	p1 := testutil.NewUnit("p1", 1000, 100, 0, 100)
	p2 := testutil.NewUnit("p2", 1000, 100, 0, 100)
	e1 := testutil.NewUnit("e1", 1000, 100, 0, 100)
	e2 := testutil.NewUnit("e2", 1000, 100, 0, 100)
	e2.TakeDamage(e2.HP)
	h := newHarness(t, []*model.Unit{p1, p2}, []*model.Unit{e1, e2})
	c := Cast{Caster: p1, Target: e1}

	assert.Equal(t, []*model.Unit{p1}, h.in.ResolveTargets(c, model.TargetSelf))
	assert.Equal(t, []*model.Unit{e1}, h.in.ResolveTargets(c, model.TargetTarget))
	assert.Equal(t, []*model.Unit{p1, p2}, h.in.ResolveTargets(c, model.TargetAllAllies))
	assert.Equal(t, []*model.Unit{e1}, h.in.ResolveTargets(c, model.TargetAllEnemies))
	for range 20 {
		assert.Equal(t, []*model.Unit{e1}, h.in.ResolveTargets(c, model.TargetRandomEnemy))
		assert.Len(t, h.in.ResolveTargets(c, model.TargetRandomAlly), 1)
	}

	assert.Empty(t, h.in.ResolveTargets(Cast{Caster: p1, Target: e2}, model.TargetTarget), "dead target")
	assert.Empty(t, h.in.ResolveTargets(Cast{Caster: p1}, model.TargetTarget))
}
