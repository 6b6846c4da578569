package data

import (
	"math"
	"slices"

	"github.com/QirangMilco/TSAuto/internal/model"
)

// GrowthPoint holds the per-level growth coefficients.
type GrowthPoint struct {
	ATK float64 `yaml:"atk"`
	HP  float64 `yaml:"hp"`
	DEF float64 `yaml:"def"`
}

// PromotionNode is the coefficient row used at the first level of a grade.
type PromotionNode struct {
	Level float64     `yaml:"level"`
	Stats GrowthPoint `yaml:"stats"`
}

// GrowthTable maps levels to coefficients. Grades map promotion nodes,
// so that "grade 5, level 30" differs from a plain level 30 unit.
type GrowthTable struct {
	Levels     map[int]GrowthPoint   `yaml:"levels"`
	Promotions map[int]PromotionNode `yaml:"promotions"`

	sorted []int
}

// DefaultGrowthTable returns the built-in table for levels 1-40.
// Jumps at 20->21, 25->26, 30->31 and 35->36 include the grade-up bonus.
func DefaultGrowthTable() *GrowthTable {
	return &GrowthTable{
		Levels: map[int]GrowthPoint{
			1: {127, 1066, 75}, 2: {134, 1119, 77}, 3: {142, 1177, 80}, 4: {149, 1228, 82},
			5: {158, 1292, 85}, 6: {166, 1351, 87}, 7: {175, 1413, 90}, 8: {185, 1486, 92},
			9: {195, 1555, 95}, 10: {206, 1634, 97},

			11: {217, 1708, 100}, 12: {229, 1789, 103}, 13: {242, 1882, 105}, 14: {255, 1968, 108},
			15: {269, 2061, 111}, 16: {284, 2160, 114}, 17: {299, 2258, 117}, 18: {316, 2370, 120},
			19: {333, 2479, 123}, 20: {351, 2595, 126},

			21: {471, 3211, 162}, 22: {497, 3366, 165}, 23: {525, 3526, 169}, 24: {553, 3690, 172},
			25: {584, 3864, 176},

			26: {783, 4725, 222}, 27: {826, 4946, 226}, 28: {872, 5172, 231}, 29: {920, 5406, 236},
			30: {970, 5647, 241},

			31: {1302, 6835, 300}, 32: {1373, 7136, 306}, 33: {1449, 7458, 312}, 34: {1528, 7775, 319},
			35: {1612, 8124, 325},

			36: {2164, 9655, 406}, 37: {2283, 10072, 414}, 38: {2408, 10491, 423}, 39: {2540, 10930, 432},
			40: {2680, 11392, 441},
		},
		Promotions: map[int]PromotionNode{
			3: {Level: 20, Stats: GrowthPoint{447, 3074, 158}},
			4: {Level: 25, Stats: GrowthPoint{743, 4526, 217}},
			5: {Level: 30, Stats: GrowthPoint{1234, 6543, 294}},
			6: {Level: 35, Stats: GrowthPoint{2051, 9255, 398}},
		},
	}
}

func (g *GrowthTable) levels() []int {
	if len(g.sorted) != len(g.Levels) {
		g.sorted = make([]int, 0, len(g.Levels))
		for lvl := range g.Levels {
			g.sorted = append(g.sorted, lvl)
		}
		slices.Sort(g.sorted)
	}
	return g.sorted
}

// Coefficients returns the growth row for a (possibly fractional) level.
// A promotion node for grade overrides the row at its level and serves as
// the lower bound when interpolating up to the next level.
func (g *GrowthTable) Coefficients(level float64, grade int) GrowthPoint {
	if promo, ok := g.Promotions[grade]; ok {
		if math.Abs(level-promo.Level) < 0.01 {
			return promo.Stats
		}
		next := math.Floor(level) + 1
		if level > promo.Level && level < next {
			if upper, ok := g.Levels[int(next)]; ok {
				return lerpGrowth(promo.Stats, upper, level-promo.Level)
			}
		}
	}
	return g.plain(level)
}

func (g *GrowthTable) plain(level float64) GrowthPoint {
	if level == math.Trunc(level) {
		if p, ok := g.Levels[int(level)]; ok {
			return p
		}
	}

	lvls := g.levels()
	if len(lvls) == 0 {
		return GrowthPoint{}
	}
	lo, hi := lvls[0], lvls[len(lvls)-1]
	if level < float64(lo) {
		return g.Levels[lo]
	}
	if level > float64(hi) {
		return g.Levels[hi]
	}

	for i := 0; i < len(lvls)-1; i++ {
		lower, upper := lvls[i], lvls[i+1]
		if level > float64(lower) && level < float64(upper) {
			ratio := (level - float64(lower)) / float64(upper-lower)
			return lerpGrowth(g.Levels[lower], g.Levels[upper], ratio)
		}
	}
	return g.Levels[lo]
}

func lerpGrowth(a, b GrowthPoint, ratio float64) GrowthPoint {
	return GrowthPoint{
		ATK: math.Floor(a.ATK + (b.ATK-a.ATK)*ratio),
		HP:  math.Floor(a.HP + (b.HP-a.HP)*ratio),
		DEF: math.Floor(a.DEF + (b.DEF-a.DEF)*ratio),
	}
}

// BaseStats derives a unit's immutable base table from its character
// definition. HP gets +1 so that a zero growth still yields a living unit.
func BaseStats(c *Character, level float64, grade int, awakened bool, growth *GrowthTable) model.StatTable {
	coeff := growth.Coefficients(level, grade)

	g, b := c.GrowthBeforeAwake, c.BaseBeforeAwake
	if awakened {
		g, b = c.GrowthAfterAwake, c.BaseAfterAwake
	}

	var t model.StatTable
	t.Set(model.StatHP, math.Floor(g.HP*coeff.HP)+1)
	t.Set(model.StatATK, math.Floor(g.ATK*coeff.ATK))
	t.Set(model.StatDEF, math.Floor(g.DEF*coeff.DEF))
	t.Set(model.StatSPD, b.SPD)
	t.Set(model.StatCrit, b.Crit)
	t.Set(model.StatCritDmg, b.CritDmg)
	return t
}
