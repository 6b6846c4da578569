package event

import "github.com/QirangMilco/TSAuto/internal/model"

// BattleStartPayload lists both rosters by instance id.
type BattleStartPayload struct {
	BattleID string   `json:"battle_id"`
	Seed     int64    `json:"seed"`
	Players  []string `json:"players"`
	Enemies  []string `json:"enemies"`
}

// BattleEndPayload carries the final result.
type BattleEndPayload struct {
	Result       string `json:"result"`
	Rounds       int    `json:"rounds"`
	TotalActions int    `json:"total_actions"`
}

// TurnPayload identifies whose turn it is.
type TurnPayload struct {
	UnitID   string         `json:"unit_id"`
	TurnType model.TurnType `json:"turn_type"`
	SkillID  string         `json:"skill_id,omitempty"`
}

// SkillUsedPayload describes a cast.
type SkillUsedPayload struct {
	CasterID string `json:"caster_id"`
	SkillID  string `json:"skill_id"`
	TargetID string `json:"target_id"`
	Cost     int    `json:"cost"`
}

// DamagePayload describes an HP loss. Source is empty for status ticks.
type DamagePayload struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
	Amount   int64  `json:"amount"`
	Critical bool   `json:"critical"`
	// Reason is empty for skill damage, otherwise "reflect", "status", etc.
	Reason   string `json:"reason,omitempty"`
	TargetHP int64  `json:"target_hp"`
}

// HealPayload describes an HP gain.
type HealPayload struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
	Amount   int64  `json:"amount"`
	Reason   string `json:"reason,omitempty"`
	TargetHP int64  `json:"target_hp"`
}

// StatusPayload describes a status change.
type StatusPayload struct {
	UnitID         string `json:"unit_id"`
	StatusID       string `json:"status_id"`
	SourceID       string `json:"source_id,omitempty"`
	RemainingTurns int    `json:"remaining_turns"`
	Stacks         int    `json:"stacks"`
}

// DeathPayload names the fallen unit and its killer, if any.
type DeathPayload struct {
	UnitID   string `json:"unit_id"`
	KillerID string `json:"killer_id,omitempty"`
}

// ResourcePayload describes a pool change.
type ResourcePayload struct {
	Before      int    `json:"before"`
	After       int    `json:"after"`
	BarProgress int    `json:"bar_progress"`
	Reason      string `json:"reason"`
}
