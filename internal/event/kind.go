package event

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Kind identifies a battle event.
type Kind uint8

const (
	// BattleStart is published once before the first turn.
	// Payload: BattleStartPayload
	BattleStart Kind = iota + 1
	// BattleEnd is published once when a side is wiped out.
	// Payload: BattleEndPayload
	BattleEnd
	// TurnStart opens a unit's turn. Payload: TurnPayload
	TurnStart
	// TurnEnd closes a unit's turn after status decay. Payload: TurnPayload
	TurnEnd
	// SkillUsed is published before a skill's effects run.
	// Payload: SkillUsedPayload
	SkillUsed
	// DamageDealt is published for every HP loss. Payload: DamagePayload
	DamageDealt
	// HealReceived is published for every heal, including zero. Payload: HealPayload
	HealReceived
	// StatusApplied covers both new statuses and refreshes. Payload: StatusPayload
	StatusApplied
	// StatusRemoved covers decay and explicit removal. Payload: StatusPayload
	StatusRemoved
	// CharacterDeath is published when a unit reaches 0 HP. Payload: DeathPayload
	CharacterDeath
	// PseudoTurnStart opens a triggered pseudo turn. Payload: TurnPayload
	PseudoTurnStart
	// PseudoTurnEnd closes a triggered pseudo turn. Payload: TurnPayload
	PseudoTurnEnd
	// ResourceChanged is published whenever the shared pool changes.
	// Payload: ResourcePayload
	ResourceChanged
)

type kindInfo struct {
	name    string
	payload reflect.Type
}

var kinds = map[Kind]kindInfo{}

func register(k Kind, name string, payload any) {
	t := reflect.TypeOf(payload)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	kinds[k] = kindInfo{name: name, payload: t}
}

func init() {
	register(BattleStart, "BattleStart", &BattleStartPayload{})
	register(BattleEnd, "BattleEnd", &BattleEndPayload{})
	register(TurnStart, "TurnStart", &TurnPayload{})
	register(TurnEnd, "TurnEnd", &TurnPayload{})
	register(SkillUsed, "SkillUsed", &SkillUsedPayload{})
	register(DamageDealt, "DamageDealt", &DamagePayload{})
	register(HealReceived, "HealReceived", &HealPayload{})
	register(StatusApplied, "StatusApplied", &StatusPayload{})
	register(StatusRemoved, "StatusRemoved", &StatusPayload{})
	register(CharacterDeath, "CharacterDeath", &DeathPayload{})
	register(PseudoTurnStart, "PseudoTurnStart", &TurnPayload{})
	register(PseudoTurnEnd, "PseudoTurnEnd", &TurnPayload{})
	register(ResourceChanged, "ResourceChanged", &ResourcePayload{})
}

func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind resolves a kind from its name.
func ParseKind(name string) (Kind, bool) {
	for k, info := range kinds {
		if info.name == name {
			return k, true
		}
	}
	return 0, false
}

// NewPayload returns a pointer to a zero payload struct for k, or nil for
// unknown kinds. Used to decode stored event streams.
func NewPayload(k Kind) any {
	info, ok := kinds[k]
	if !ok {
		return nil
	}
	return reflect.New(info.payload).Interface()
}

// Kinds lists every registered kind in ascending order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kinds))
	for k := BattleStart; k <= ResourceChanged; k++ {
		if _, ok := kinds[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// DecodePayload decodes a JSON payload stored for k into its payload struct
// value, the same shape the bus publishes.
func DecodePayload(k Kind, raw []byte) (any, error) {
	p := NewPayload(k)
	if p == nil {
		return nil, fmt.Errorf("decoding payload: unknown kind %d", uint8(k))
	}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("decoding %s payload: %w", k, err)
	}
	return reflect.ValueOf(p).Elem().Interface(), nil
}
