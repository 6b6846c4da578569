package mechanic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QirangMilco/TSAuto/internal/game/combat"
	"github.com/QirangMilco/TSAuto/internal/model"
	"github.com/QirangMilco/TSAuto/internal/rng"
	"github.com/QirangMilco/TSAuto/internal/testutil"
)

type stubRand struct {
	f float64
	n int
}

func (s stubRand) Float64() float64 { return s.f }
func (s stubRand) IntN(int) int     { return s.n }

func TestRegistry_InvokeRecoversPanic(t *testing.T) {
	r := NewRegistry("test")
	r.Register("BOOM", func(*Context) Result { panic("kaboom") })
	r.Register("OK", func(*Context) Result { return Result{DamageMultiplier: 2} })

	res, ok := r.Invoke("BOOM", &Context{})
	assert.False(t, ok)
	assert.True(t, res.Empty())

	res, ok = r.Invoke("OK", &Context{})
	assert.True(t, ok)
	assert.Equal(t, 2.0, res.DamageMultiplier)

	_, ok = r.Invoke("MISSING", &Context{})
	assert.False(t, ok)
}

func TestRegistry_Validate(t *testing.T) {
	r := NewSkillMechanicRegistry()
	assert.NoError(t, r.Validate([]string{MechMultiHit, MechAssist}))

	err := r.Validate([]string{MechMultiHit, "MECH_NOPE"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MECH_NOPE")
}

func TestRegistries_AreIndependent(t *testing.T) {
	a := NewSetEffectRegistry()
	b := NewSetEffectRegistry()
	a.Register("EFF_CUSTOM", func(*Context) Result { return Result{} })

	_, ok := b.Get("EFF_CUSTOM")
	assert.False(t, ok)
	assert.Equal(t, 4, b.Len())
	assert.Equal(t, 6, NewSkillMechanicRegistry().Len())
}

func TestFold(t *testing.T) {
	f := Fold([]Result{
		{DamageMultiplier: 1.4},
		{DamageMultiplier: 1.5, ExtraDamage: 100},
		{ExtraDamage: 50, IgnoreDefense: true},
		{LifeSteal: 0.2, Hits: 3},
		{ReflectDamage: 0.3, SpreadStatus: "ST_BURN"},
		{Assist: &Assist{UnitID: "p2", SkillID: "SK"}, Message: "assist"},
	})

	assert.InDelta(t, 2.1, f.Multiplier, 1e-9)
	assert.Equal(t, 100.0, f.Extra)
	assert.Equal(t, 50.0, f.IgnoreDefense)
	assert.Equal(t, 0.2, f.LifeSteal)
	assert.Equal(t, 0.3, f.Reflect)
	assert.Equal(t, []string{"ST_BURN"}, f.Spread)
	assert.Equal(t, []Assist{{UnitID: "p2", SkillID: "SK"}}, f.Assists)
	assert.Equal(t, 3, f.Hits)
	assert.Equal(t, []string{"assist"}, f.Messages)

	out := f.Outcome()
	assert.Equal(t, combat.Outcome{Multiplier: f.Multiplier, Extra: 100, IgnoreDefense: 50}, out)
}

func TestFold_Empty(t *testing.T) {
	f := Fold(nil)
	assert.Equal(t, 1.0, f.Multiplier)
	assert.Equal(t, 1, f.Hits)
}

func damageCtx(owner, other *model.Unit, hit *combat.Hit) *Context {
	return &Context{
		Trigger: model.TriggerDamageDealt,
		Owner:   owner,
		Other:   other,
		Hit:     hit,
		State:   &model.BattleState{Players: []*model.Unit{owner}, Enemies: []*model.Unit{other}},
		Rand:    rng.New(1),
	}
}

func TestPoShi(t *testing.T) {
	owner := testutil.NewUnit("p1", 1000, 100, 0, 100)
	full := testutil.NewUnit("e1", 1000, 100, 0, 100)
	hurt := testutil.NewUnit("e2", 1000, 100, 0, 100, testutil.WithHP(700))

	assert.Equal(t, 1.4, poShi(damageCtx(owner, full, &combat.Hit{})).DamageMultiplier)
	assert.True(t, poShi(damageCtx(owner, hurt, &combat.Hit{})).Empty(), "70% exactly does not trigger")

	ctx := damageCtx(owner, full, &combat.Hit{})
	ctx.Trigger = model.TriggerTurnStart
	assert.True(t, poShi(ctx).Empty())
}

func TestZhenNv(t *testing.T) {
	owner := testutil.NewUnit("p1", 1000, 100, 0, 100)
	target := testutil.NewUnit("e1", 5000, 100, 0, 100)

	ctx := damageCtx(owner, target, &combat.Hit{Critical: true})
	ctx.Rand = stubRand{f: 0.1}
	res := zhenNv(ctx)
	assert.Equal(t, 500.0, res.ExtraDamage)
	assert.True(t, res.IgnoreDefense)

	ctx.Rand = stubRand{f: 0.5}
	assert.True(t, zhenNv(ctx).Empty(), "roll above 40% fails")

	ctx = damageCtx(owner, target, &combat.Hit{})
	ctx.Rand = stubRand{f: 0}
	assert.True(t, zhenNv(ctx).Empty(), "only critical hits proc")
}

func TestKuangGu(t *testing.T) {
	owner := testutil.NewUnit("p1", 1000, 100, 0, 100)
	target := testutil.NewUnit("e1", 1000, 100, 0, 100)

	ctx := damageCtx(owner, target, &combat.Hit{})
	ctx.State.Resource = model.ResourcePool{Current: 3, Max: 8}
	assert.InDelta(t, 1.24, kuangGu(ctx).DamageMultiplier, 1e-9)

	ctx.State.Resource.Current = 8
	assert.InDelta(t, 1.4, kuangGu(ctx).DamageMultiplier, 1e-9, "capped at 40%")

	ctx.State.Resource.Current = 0
	assert.True(t, kuangGu(ctx).Empty())
}

func TestXinYan(t *testing.T) {
	owner := testutil.NewUnit("p1", 1000, 100, 0, 100)
	tests := []struct {
		hp   int64
		want float64
	}{
		{1000, 0},
		{700, 1.1},
		{500, 1.2},
		{300, 1.3},
		{10, 1.3},
	}
	for _, tt := range tests {
		target := testutil.NewUnit("e1", 1000, 100, 0, 100, testutil.WithHP(tt.hp))
		assert.InDelta(t, tt.want, xinYan(damageCtx(owner, target, &combat.Hit{})).DamageMultiplier, 1e-9, "hp %d", tt.hp)
	}
}

func TestAssist(t *testing.T) {
	owner := testutil.NewUnit("p1", 1000, 100, 0, 100)
	ally := testutil.NewUnit("p2", 1000, 100, 0, 100, testutil.WithSkills(testutil.SkillNuke, testutil.SkillStrike))
	dead := testutil.NewUnit("p3", 1000, 100, 0, 100)
	dead.TakeDamage(dead.HP)
	enemy := testutil.NewUnit("e1", 1000, 100, 0, 100)

	ctx := &Context{
		Trigger: model.TriggerSkillUsed,
		Owner:   owner,
		Other:   enemy,
		State:   &model.BattleState{Players: []*model.Unit{owner, dead, ally}, Enemies: []*model.Unit{enemy}},
		Rand:    rng.New(9),
	}
	res := assist(ctx)
	require.NotNil(t, res.Assist)
	assert.Equal(t, Assist{UnitID: "p2", SkillID: testutil.SkillNuke}, *res.Assist)

	ctx.State.Players = []*model.Unit{owner}
	assert.Nil(t, assist(ctx).Assist, "no ally to call")
}

func TestTriggerGatedMechanics(t *testing.T) {
	owner := testutil.NewUnit("p1", 1000, 100, 0, 100)
	other := testutil.NewUnit("e1", 1000, 100, 0, 100)
	hit := &combat.Hit{Amount: 100}

	used := &Context{Trigger: model.TriggerSkillUsed, Owner: owner, Other: other}
	assert.Equal(t, 3, multiHit(used).Hits)
	assert.True(t, lifeSteal(used).Empty())

	dealt := damageCtx(owner, other, hit)
	assert.Equal(t, 0.2, lifeSteal(dealt).LifeSteal)
	assert.True(t, damageReflect(dealt).Empty())
	assert.True(t, multiHit(dealt).Empty())

	received := damageCtx(other, owner, hit)
	received.Trigger = model.TriggerDamageReceived
	assert.Equal(t, 0.3, damageReflect(received).ReflectDamage)
}

func TestStatusSpread(t *testing.T) {
	owner := testutil.NewUnit("p1", 1000, 100, 0, 100)
	target := testutil.NewUnit("e1", 1000, 100, 0, 100, testutil.WithStatuses(
		model.StatusInstance{StatusID: "PERM", Permanent: true},
		model.StatusInstance{StatusID: testutil.StatusBurn, RemainingTurns: 2},
	))

	res := statusSpread(damageCtx(owner, target, &combat.Hit{}))
	assert.Equal(t, testutil.StatusBurn, res.SpreadStatus)

	bare := testutil.NewUnit("e2", 1000, 100, 0, 100)
	assert.True(t, statusSpread(damageCtx(owner, bare, &combat.Hit{})).Empty())
}

func TestSpiritFireCost(t *testing.T) {
	owner := testutil.NewUnit("p1", 1000, 100, 0, 100)
	other := testutil.NewUnit("e1", 1000, 100, 0, 100)
	ctx := damageCtx(owner, other, &combat.Hit{})
	ctx.State.Resource.Current = 5
	assert.InDelta(t, 1.5, spiritFireCost(ctx).DamageMultiplier, 1e-9)
}
