package model

import (
	"fmt"
	"strings"
)

// Trigger names the battle moment a passive listener or set effect reacts to.
type Trigger uint8

const (
	TriggerBattleStart Trigger = iota + 1
	TriggerTurnStart
	TriggerTurnEnd
	TriggerSkillUsed
	TriggerDamageDealt
	TriggerDamageReceived
)

var triggerNames = map[Trigger]string{
	TriggerBattleStart:    "ON_BATTLE_START",
	TriggerTurnStart:      "ON_TURN_START",
	TriggerTurnEnd:        "ON_TURN_END",
	TriggerSkillUsed:      "ON_SKILL_USED",
	TriggerDamageDealt:    "ON_DAMAGE_DEALT",
	TriggerDamageReceived: "ON_RECEIVE_DAMAGE",
}

func (t Trigger) String() string {
	if n, ok := triggerNames[t]; ok {
		return n
	}
	return fmt.Sprintf("Trigger(%d)", uint8(t))
}

// UnmarshalText accepts names with or without the ON_ prefix.
func (t *Trigger) UnmarshalText(text []byte) error {
	name := strings.ToUpper(string(text))
	if !strings.HasPrefix(name, "ON_") {
		name = "ON_" + name
	}
	for k, n := range triggerNames {
		if n == name {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("unknown trigger %q", text)
}
