package model

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// ConditionType is the predicate a gambit rule checks against the actor or
// global battle state.
type ConditionType uint8

const (
	CondAlways ConditionType = iota
	CondHPBelow
	CondHPAbove
	CondResourceBelow
	CondEnemyCountAbove
	CondHasStatus
	CondAllyDead
)

var conditionNames = map[ConditionType]string{
	CondAlways:          "ALWAYS",
	CondHPBelow:         "HP_BELOW",
	CondHPAbove:         "HP_ABOVE",
	CondResourceBelow:   "RESOURCE_BELOW",
	CondEnemyCountAbove: "ENEMY_COUNT_ABOVE",
	CondHasStatus:       "HAS_STATUS",
	CondAllyDead:        "ALLY_DEAD",
}

func (c ConditionType) String() string {
	if n, ok := conditionNames[c]; ok {
		return n
	}
	return fmt.Sprintf("ConditionType(%d)", uint8(c))
}

// UnmarshalText accepts canonical names plus MP_BELOW as an alias.
func (c *ConditionType) UnmarshalText(text []byte) error {
	name := strings.ToUpper(string(text))
	if name == "MP_BELOW" {
		*c = CondResourceBelow
		return nil
	}
	for k, n := range conditionNames {
		if n == name {
			*c = k
			return nil
		}
	}
	return fmt.Errorf("unknown gambit condition %q", text)
}

// GambitTarget picks the candidate pool.
type GambitTarget uint8

const (
	GambitTargetEnemy GambitTarget = iota
	GambitTargetAlly
	GambitTargetSelf
)

func (t GambitTarget) String() string {
	switch t {
	case GambitTargetEnemy:
		return "ENEMY"
	case GambitTargetAlly:
		return "ALLY"
	case GambitTargetSelf:
		return "SELF"
	}
	return fmt.Sprintf("GambitTarget(%d)", uint8(t))
}

func (t *GambitTarget) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "ENEMY":
		*t = GambitTargetEnemy
	case "ALLY":
		*t = GambitTargetAlly
	case "SELF":
		*t = GambitTargetSelf
	default:
		return fmt.Errorf("unknown gambit target %q", text)
	}
	return nil
}

// Strategy picks one unit from the candidate pool.
type Strategy uint8

const (
	StrategyAny Strategy = iota
	StrategyRandom
	StrategyLowestHPPercent
	StrategyHighestATK
	StrategySelf
)

var strategyNames = map[Strategy]string{
	StrategyAny:             "ANY",
	StrategyRandom:          "RANDOM",
	StrategyLowestHPPercent: "LOWEST_HP_PERCENT",
	StrategyHighestATK:      "HIGHEST_ATK",
	StrategySelf:            "SELF",
}

func (s Strategy) String() string {
	if n, ok := strategyNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Strategy(%d)", uint8(s))
}

func (s *Strategy) UnmarshalText(text []byte) error {
	name := strings.ToUpper(string(text))
	for k, n := range strategyNames {
		if n == name {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown gambit strategy %q", text)
}

// Condition is a rule predicate. Value is a ratio for HP checks and a count
// for resource and enemy checks.
type Condition struct {
	Type     ConditionType `yaml:"type"`
	Value    float64       `yaml:"value"`
	StatusID string        `yaml:"status_id"`
}

// TargetSpec describes how a rule resolves its target.
type TargetSpec struct {
	Type     GambitTarget `yaml:"type"`
	Strategy Strategy     `yaml:"strategy"`
}

// Rule is one entry of a gambit. Lower Priority is evaluated first.
type Rule struct {
	ID        string     `yaml:"id"`
	Name      string     `yaml:"name"`
	Priority  int        `yaml:"priority"`
	Condition Condition  `yaml:"condition"`
	Target    TargetSpec `yaml:"target"`
	SkillID   string     `yaml:"skill_id"`
}

// Gambit is an immutable rule list for AI-controlled units.
type Gambit struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Rules []Rule `yaml:"rules"`
}

// SortedRules returns a copy of the rules ordered by ascending priority.
// Rules with equal priority keep their declared order.
func (g *Gambit) SortedRules() []Rule {
	rules := slices.Clone(g.Rules)
	slices.SortStableFunc(rules, func(a, b Rule) int {
		return cmp.Compare(a.Priority, b.Priority)
	})
	return rules
}

// Action is a resolved decision: cast SkillID at TargetID.
type Action struct {
	SkillID  string
	TargetID string
}
