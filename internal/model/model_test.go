package model

import (
	"errors"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestStat_Percent(t *testing.T) {
	tests := []struct {
		stat   Stat
		want   Stat
		wantOK bool
	}{
		{StatATK, StatATKPercent, true},
		{StatDEF, StatDEFPercent, true},
		{StatHP, StatHPPercent, true},
		{StatSPD, StatSPDPercent, true},
		{StatCrit, 0, false},
		{StatATKPercent, 0, false},
	}
	for _, tt := range tests {
		got, ok := tt.stat.Percent()
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("%s.Percent() = (%s, %v), want (%s, %v)", tt.stat, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestStat_IsPercent(t *testing.T) {
	flat := []Stat{StatHP, StatATK, StatDEF, StatSPD, StatIgnoreDefFlat}
	for _, s := range flat {
		if s.IsPercent() {
			t.Errorf("%s.IsPercent() = true, want false", s)
		}
	}
	pct := []Stat{StatATKPercent, StatCrit, StatCritDmg, StatDmgBonus, StatEffectResist}
	for _, s := range pct {
		if !s.IsPercent() {
			t.Errorf("%s.IsPercent() = false, want true", s)
		}
	}
}

func TestParseStat(t *testing.T) {
	for _, s := range AllStats() {
		got, err := ParseStat(s.String())
		if err != nil {
			t.Fatalf("ParseStat(%q): %v", s, err)
		}
		if got != s {
			t.Errorf("ParseStat(%q) = %s", s, got)
		}
	}
	if got, err := ParseStat(" atk_p "); err != nil || got != StatATKPercent {
		t.Errorf("ParseStat lower-case = (%s, %v)", got, err)
	}
	if _, err := ParseStat("MANA"); err == nil {
		t.Error("ParseStat(MANA) succeeded, want error")
	}
}

func TestStatMap_YAML(t *testing.T) {
	var m StatMap
	if err := yaml.Unmarshal([]byte("ATK_P: 12\nCRIT: 0.05\n"), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	table := m.Table()
	if table.Get(StatATKPercent) != 12 {
		t.Errorf("ATK_P = %v, want 12", table.Get(StatATKPercent))
	}
	if table.Get(StatCrit) != 0.05 {
		t.Errorf("CRIT = %v, want 0.05", table.Get(StatCrit))
	}

	if err := yaml.Unmarshal([]byte("MANA: 1\n"), &m); err == nil {
		t.Error("unknown stat key decoded without error")
	}
}

func TestUnit_TakeDamageAndHeal(t *testing.T) {
	var base StatTable
	base.Set(StatHP, 100)
	u := NewUnit("p1", "hero", "Hero", base)

	if got := u.TakeDamage(30); got != 30 {
		t.Errorf("TakeDamage(30) = %d", got)
	}
	if got := u.Heal(50); got != 30 {
		t.Errorf("Heal(50) = %d, want 30 (capped)", got)
	}
	if got := u.TakeDamage(500); got != 100 {
		t.Errorf("TakeDamage(500) = %d, want 100", got)
	}
	if !u.IsDead || u.HP != 0 {
		t.Errorf("unit should be dead at 0 HP, got dead=%v hp=%d", u.IsDead, u.HP)
	}
	if got := u.Heal(10); got != 0 {
		t.Errorf("healing a dead unit restored %d", got)
	}
}

func TestUnit_CloneIsDeep(t *testing.T) {
	u := NewUnit("p1", "hero", "Hero", StatTable{})
	u.Statuses = []StatusInstance{{StatusID: "burn", RemainingTurns: 2}}
	c := u.Clone()
	c.Statuses[0].RemainingTurns = 9
	if u.Statuses[0].RemainingTurns != 2 {
		t.Error("Clone shares status slice with original")
	}
}

func TestResource_AdvanceOnlyOnNormalTurns(t *testing.T) {
	rules := DefaultResourceRules()
	pool := NewResourcePool(rules)
	if pool.Current != 4 || pool.Max != 8 {
		t.Fatalf("NewResourcePool = %+v", pool)
	}

	if got := AdvanceResource(pool, rules, TurnExtra); got != pool {
		t.Errorf("extra turn advanced pool: %+v", got)
	}
	if got := AdvanceResource(pool, rules, TurnPseudo); got != pool {
		t.Errorf("pseudo turn advanced pool: %+v", got)
	}

	got := AdvanceResource(pool, rules, TurnNormal)
	if got.Current != 5 || got.BarProgress != 1 {
		t.Errorf("normal turn = %+v, want Current 5, BarProgress 1", got)
	}
}

func TestResource_BarWrapsAndClamps(t *testing.T) {
	rules := ResourceRules{Start: 0, Max: 3, PerTurn: 0, BarSegments: 2, BarReward: 5}
	pool := NewResourcePool(rules)
	pool = AdvanceResource(pool, rules, TurnNormal)
	pool = AdvanceResource(pool, rules, TurnNormal)
	if pool.BarProgress != 0 {
		t.Errorf("BarProgress = %d, want wrap to 0", pool.BarProgress)
	}
	if pool.Current != 3 {
		t.Errorf("Current = %d, want clamp to Max 3", pool.Current)
	}
}

func TestResource_Consume(t *testing.T) {
	pool := ResourcePool{Current: 2, Max: 8}

	next, err := ConsumeResource(pool, 3)
	if !errors.Is(err, ErrInsufficientResource) {
		t.Fatalf("ConsumeResource(3) err = %v, want ErrInsufficientResource", err)
	}
	if next != pool {
		t.Errorf("failed consume changed pool: %+v", next)
	}

	next, err = ConsumeResource(pool, 2)
	if err != nil || next.Current != 0 {
		t.Errorf("ConsumeResource(2) = (%+v, %v)", next, err)
	}

	if _, err := ConsumeResource(pool, -1); err == nil {
		t.Error("negative cost accepted")
	}

	if got := AddResource(pool, -10); got.Current != 0 {
		t.Errorf("AddResource(-10).Current = %d, want 0", got.Current)
	}
	if got := AddResource(pool, 10); got.Current != 8 {
		t.Errorf("AddResource(10).Current = %d, want 8", got.Current)
	}
}

func TestGambit_SortedRulesIsStableCopy(t *testing.T) {
	g := Gambit{Rules: []Rule{
		{ID: "wait", Priority: 10},
		{ID: "a", Priority: 1},
		{ID: "b", Priority: 1},
	}}
	sorted := g.SortedRules()
	ids := []string{sorted[0].ID, sorted[1].ID, sorted[2].ID}
	if ids[0] != "a" || ids[1] != "b" || ids[2] != "wait" {
		t.Errorf("SortedRules order = %v", ids)
	}
	if g.Rules[0].ID != "wait" {
		t.Error("SortedRules mutated the gambit")
	}
}

func TestConditionType_Alias(t *testing.T) {
	var c ConditionType
	if err := c.UnmarshalText([]byte("MP_BELOW")); err != nil || c != CondResourceBelow {
		t.Errorf("MP_BELOW decoded to (%s, %v)", c, err)
	}
}

func TestBattleState_CloneAndLookup(t *testing.T) {
	p := NewUnit("p1", "hero", "Hero", StatTable{})
	e := NewUnit("e1", "slime", "Slime", StatTable{})
	s := &BattleState{Players: []*Unit{p}, Enemies: []*Unit{e}}

	if !s.IsPlayer("p1") || s.IsPlayer("e1") {
		t.Error("IsPlayer misclassified units")
	}
	if s.FindUnit("e1") != e {
		t.Error("FindUnit did not return the live pointer")
	}
	if got := s.Opponents(p); len(got) != 1 || got[0] != e {
		t.Error("Opponents(p1) should be the enemy roster")
	}

	c := s.Clone()
	c.Players[0].HP = 0
	if p.HP == 0 {
		t.Error("Clone shares units with original")
	}
}
