package data

import (
	"cmp"
	"slices"

	"github.com/QirangMilco/TSAuto/internal/model"
)

// Growth is a character's growth multiplier for each scaling stat.
type Growth struct {
	HP  float64 `yaml:"hp"`
	ATK float64 `yaml:"atk"`
	DEF float64 `yaml:"def"`
}

// BaseValues are stats that do not scale with level.
type BaseValues struct {
	SPD     float64 `yaml:"spd"`
	Crit    float64 `yaml:"crit"`
	CritDmg float64 `yaml:"crit_dmg"`
}

// Character is a playable or enemy unit template.
type Character struct {
	ID                string     `yaml:"id"`
	Name              string     `yaml:"name"`
	GrowthBeforeAwake Growth     `yaml:"growth_before_awake"`
	GrowthAfterAwake  Growth     `yaml:"growth_after_awake"`
	BaseBeforeAwake   BaseValues `yaml:"base_before_awake"`
	BaseAfterAwake    BaseValues `yaml:"base_after_awake"`
	Skills            []string   `yaml:"skills"`
	// GambitID is the default AI script when a roster entry names none.
	GambitID string `yaml:"gambit_id"`
}

// PassiveListener fires Effects for the skill owner when Trigger happens to
// that unit.
type PassiveListener struct {
	Trigger model.Trigger `yaml:"event"`
	Effects EffectList    `yaml:"effects"`
}

// Skill is an active ability with optional passive listeners.
type Skill struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Cost        int               `yaml:"cost"`
	Effects     EffectList        `yaml:"effects"`
	Passives    []PassiveListener `yaml:"passives"`
	// Mechanics are skill mechanic registry ids consulted while casting.
	Mechanics []string `yaml:"mechanics"`
}

// HasDamage reports whether any active effect deals damage.
func (s *Skill) HasDamage() bool {
	for _, e := range s.Effects {
		if _, ok := e.(model.Damage); ok {
			return true
		}
	}
	return false
}

// Equipment is both an equipment template and a rolled piece.
// Templates usually leave MainStat and SubStats empty.
type Equipment struct {
	ID               string            `yaml:"id"`
	Name             string            `yaml:"name"`
	SetID            string            `yaml:"set_id"`
	Slot             int               `yaml:"slot"`
	Level            int               `yaml:"level"`
	Grade            int               `yaml:"grade"`
	MainStat         *model.StatValue  `yaml:"main_stat"`
	SubStats         []model.StatValue `yaml:"sub_stats"`
	PossibleSubStats []model.Stat      `yaml:"possible_sub_stats"`
}

// Status is a buff or debuff template.
type Status struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	// Type is a free-form label (ATK_UP, BURNING, ...).
	Type  string `yaml:"type"`
	Group string `yaml:"group"`
	// Duration 0 means permanent.
	Duration  int `yaml:"duration"`
	MaxStacks int `yaml:"max_stacks"`

	StatModifiers   model.StatMap `yaml:"stat_modifiers"`
	OnTurnStart     EffectList    `yaml:"on_turn_start"`
	OnTurnEnd       EffectList    `yaml:"on_turn_end"`
	OnReceiveDamage EffectList    `yaml:"on_receive_damage"`
}

// StackLimit returns MaxStacks, treating 0 as 1.
func (s *Status) StackLimit() int {
	return max(s.MaxStacks, 1)
}

// SetBonus is granted once Pieces items of a set are equipped.
// A bonus carries a stat, an effect id, or both.
type SetBonus struct {
	Pieces      int         `yaml:"pieces"`
	Stat        *model.Stat `yaml:"stat"`
	Value       float64     `yaml:"value"`
	EffectID    string      `yaml:"effect_id"`
	Description string      `yaml:"description"`
}

// EquipmentSet groups equipment pieces that share bonuses.
type EquipmentSet struct {
	ID      string     `yaml:"id"`
	Name    string     `yaml:"name"`
	Bonuses []SetBonus `yaml:"bonuses"`
}

// StatBonus returns the stat-bearing bonus with the largest piece threshold
// not above count.
func (s *EquipmentSet) StatBonus(count int) (SetBonus, bool) {
	var best SetBonus
	found := false
	for _, b := range s.Bonuses {
		if b.Stat == nil || b.Pieces > count {
			continue
		}
		if !found || b.Pieces > best.Pieces {
			best, found = b, true
		}
	}
	return best, found
}

// EffectIDs returns the effect ids of every reached threshold, highest
// threshold first.
func (s *EquipmentSet) EffectIDs(count int) []string {
	var reached []SetBonus
	for _, b := range s.Bonuses {
		if b.EffectID != "" && b.Pieces <= count {
			reached = append(reached, b)
		}
	}
	slices.SortStableFunc(reached, func(a, b SetBonus) int {
		return cmp.Compare(b.Pieces, a.Pieces)
	})
	ids := make([]string, len(reached))
	for i, b := range reached {
		ids[i] = b.EffectID
	}
	return ids
}

// EquipmentRoll asks for a piece rolled from an equipment template when
// the roster is built.
type EquipmentRoll struct {
	TemplateID string `yaml:"template_id"`
	Grade      int    `yaml:"grade"`
	Level      int    `yaml:"level"`
}

// UnitSpec places one character into an encounter roster.
type UnitSpec struct {
	InstanceID      string          `yaml:"instance_id"`
	CharacterID     string          `yaml:"character_id"`
	Name            string          `yaml:"name"`
	Level           float64         `yaml:"level"`
	Grade           int             `yaml:"grade"`
	Awakened        bool            `yaml:"awakened"`
	Equipment       []string        `yaml:"equipment"`
	RolledEquipment []EquipmentRoll `yaml:"rolled_equipment"`
	GambitID        string          `yaml:"gambit_id"`
}

// Encounter is a named pair of rosters.
type Encounter struct {
	ID      string     `yaml:"id"`
	Name    string     `yaml:"name"`
	Players []UnitSpec `yaml:"players"`
	Enemies []UnitSpec `yaml:"enemies"`
}
