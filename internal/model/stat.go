package model

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Stat identifies one attribute of a unit.
// Percent companions are separate enum values, resolved through Percent()
// instead of building names by string concatenation.
type Stat uint8

const (
	StatHP Stat = iota
	StatHPPercent
	StatATK
	StatATKPercent
	StatDEF
	StatDEFPercent
	StatSPD
	StatSPDPercent
	StatCrit          // fraction, 0.15 = 15%
	StatCritDmg       // fraction, 0.5 = +50% on crit
	StatDmgBonus      // percentage points
	StatDmgTakenBonus // percentage points
	StatIgnoreDefPercent
	StatIgnoreDefFlat
	StatHealBonus
	StatReceiveHealBonus
	StatEffectHit
	StatEffectResist

	statCount
)

// StatCount is the number of defined stats.
const StatCount = int(statCount)

var statNames = [statCount]string{
	StatHP:               "HP",
	StatHPPercent:        "HP_P",
	StatATK:              "ATK",
	StatATKPercent:       "ATK_P",
	StatDEF:              "DEF",
	StatDEFPercent:       "DEF_P",
	StatSPD:              "SPD",
	StatSPDPercent:       "SPD_P",
	StatCrit:             "CRIT",
	StatCritDmg:          "CRIT_DMG",
	StatDmgBonus:         "DMG_BONUS",
	StatDmgTakenBonus:    "DMG_TAKEN_BONUS",
	StatIgnoreDefPercent: "IGNORE_DEF_P",
	StatIgnoreDefFlat:    "IGNORE_DEF_FLAT",
	StatHealBonus:        "HEAL_BONUS",
	StatReceiveHealBonus: "RECEIVE_HEAL_BONUS",
	StatEffectHit:        "EFFECT_HIT",
	StatEffectResist:     "EFFECT_RESIST",
}

var percentCompanion = map[Stat]Stat{
	StatHP:  StatHPPercent,
	StatATK: StatATKPercent,
	StatDEF: StatDEFPercent,
	StatSPD: StatSPDPercent,
}

// AllStats lists every stat in table order.
func AllStats() []Stat {
	out := make([]Stat, StatCount)
	for i := range out {
		out[i] = Stat(i)
	}
	return out
}

// String returns the canonical stat name ("ATK_P").
func (s Stat) String() string {
	if s < statCount {
		return statNames[s]
	}
	return fmt.Sprintf("Stat(%d)", uint8(s))
}

// Valid reports whether s is a defined stat.
func (s Stat) Valid() bool {
	return s < statCount
}

// Percent returns the percent companion of a flat stat (ATK -> ATK_P).
func (s Stat) Percent() (Stat, bool) {
	p, ok := percentCompanion[s]
	return p, ok
}

// IsPercent reports whether s is a percent-type stat. Percent-type stats
// are kept fractional by aggregation; flat stats are rounded.
func (s Stat) IsPercent() bool {
	switch s {
	case StatHP, StatATK, StatDEF, StatSPD, StatIgnoreDefFlat:
		return false
	}
	return s.Valid()
}

// ParseStat resolves a canonical stat name, case-insensitively.
func ParseStat(name string) (Stat, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range statNames {
		if n == upper {
			return Stat(i), nil
		}
	}
	return 0, fmt.Errorf("unknown stat %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Stat) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid stat %d", uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Stat) UnmarshalText(text []byte) error {
	v, err := ParseStat(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// UnmarshalYAML decodes a stat from its name.
func (s *Stat) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return fmt.Errorf("line %d: stat must be a string: %w", node.Line, err)
	}
	v, err := ParseStat(name)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*s = v
	return nil
}

// StatTable holds one value per Stat.
type StatTable [statCount]float64

// Get returns the value for s (0 for invalid stats).
func (t StatTable) Get(s Stat) float64 {
	if !s.Valid() {
		return 0
	}
	return t[s]
}

// Set stores v for s. Invalid stats are ignored.
func (t *StatTable) Set(s Stat, v float64) {
	if s.Valid() {
		t[s] = v
	}
}

// Add adds v to s.
func (t *StatTable) Add(s Stat, v float64) {
	if s.Valid() {
		t[s] += v
	}
}

// Merge adds every value of other into t.
func (t *StatTable) Merge(other StatTable) {
	for i := range t {
		t[i] += other[i]
	}
}

// StatValue pairs a stat with an amount. Used for equipment main/sub stats
// and set bonuses.
type StatValue struct {
	Stat  Stat    `yaml:"stat"`
	Value float64 `yaml:"value"`
}

// StatMap is a sparse stat table as written in definition files.
type StatMap map[Stat]float64

// Table converts the sparse map into a StatTable.
func (m StatMap) Table() StatTable {
	var t StatTable
	for s, v := range m {
		t.Add(s, v)
	}
	return t
}
