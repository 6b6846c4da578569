package equipment

import "github.com/QirangMilco/TSAuto/internal/model"

// StatRoll describes how one stat grows as a main stat and rolls as a sub
// stat. CRIT and CRIT_DMG are fractions; every other percent stat is in
// percentage points.
type StatRoll struct {
	Base   float64
	Step   float64
	SubMin float64
	SubMax float64
	// Weight is the main stat weight in slots offering several choices.
	Weight float64
}

var statRolls = map[model.Stat]StatRoll{
	model.StatATKPercent:   {Base: 10, Step: 3, SubMin: 2.4, SubMax: 3.0, Weight: 30},
	model.StatDEFPercent:   {Base: 10, Step: 3, SubMin: 2.4, SubMax: 3.0, Weight: 30},
	model.StatHPPercent:    {Base: 10, Step: 3, SubMin: 2.4, SubMax: 3.0, Weight: 30},
	model.StatCrit:         {Base: 0.10, Step: 0.03, SubMin: 0.024, SubMax: 0.03, Weight: 5},
	model.StatCritDmg:      {Base: 0.14, Step: 0.05, SubMin: 0.032, SubMax: 0.04, Weight: 5},
	model.StatSPD:          {Base: 12, Step: 3, SubMin: 2.4, SubMax: 3.0, Weight: 10},
	model.StatEffectHit:    {Base: 10, Step: 3, SubMin: 3.2, SubMax: 4.0, Weight: 5},
	model.StatEffectResist: {Base: 10, Step: 3, SubMin: 3.2, SubMax: 4.0, Weight: 5},

	model.StatATK: {Base: 81, Step: 27, SubMin: 21.6, SubMax: 27, Weight: 100},
	model.StatDEF: {Base: 14, Step: 6, SubMin: 4, SubMax: 5, Weight: 100},
	model.StatHP:  {Base: 342, Step: 114, SubMin: 91.2, SubMax: 114, Weight: 100},
}

// slotMainStats lists the main stats each slot may roll.
var slotMainStats = map[int][]model.Stat{
	1: {model.StatATK},
	2: {model.StatSPD, model.StatATKPercent, model.StatHPPercent, model.StatDEFPercent, model.StatEffectHit, model.StatEffectResist},
	3: {model.StatATKPercent, model.StatHPPercent, model.StatDEFPercent},
	4: {model.StatCrit, model.StatCritDmg, model.StatATKPercent},
	5: {model.StatHP},
}

// subStatPool is used when a template lists no possible sub stats.
var subStatPool = []model.Stat{
	model.StatATKPercent, model.StatHPPercent, model.StatDEFPercent, model.StatSPD,
	model.StatCrit, model.StatCritDmg, model.StatEffectHit, model.StatEffectResist,
	model.StatATK, model.StatHP, model.StatDEF,
}

// initialSubCounts and their weights: 2, 3 or 4 sub stats on creation.
var (
	initialSubCounts  = []int{2, 3, 4}
	initialSubWeights = []float64{0.3, 0.5, 0.2}
)

// Roll returns the roll table entry for s.
func Roll(s model.Stat) (StatRoll, bool) {
	r, ok := statRolls[s]
	return r, ok
}

// MainStatValue returns the main stat value of s at level.
func MainStatValue(s model.Stat, level int) float64 {
	r, ok := statRolls[s]
	if !ok {
		return 0
	}
	return r.Base + float64(level)*r.Step
}

// SlotMainStats returns the main stats slot may roll.
func SlotMainStats(slot int) []model.Stat {
	return slotMainStats[slot]
}
