// Package equipment rolls and enhances equipment pieces.
//
// A template (data.Equipment without a main stat) becomes a piece through
// Create; Enhance levels a piece up to MaxEnhanceLevel. All rolls draw from
// the generator's seeded source, so a seed reproduces the same pieces.
package equipment

import (
	"errors"
	"fmt"
	"slices"

	"github.com/QirangMilco/TSAuto/internal/constants"
	"github.com/QirangMilco/TSAuto/internal/data"
	"github.com/QirangMilco/TSAuto/internal/model"
	"github.com/QirangMilco/TSAuto/internal/rng"
)

// DefaultGrade is the grade pieces are created with when none is given.
const DefaultGrade = 6

var (
	// ErrUnknownSlot is returned for templates whose slot has no main stats.
	ErrUnknownSlot = errors.New("unknown equipment slot")
	// ErrNotRolled is returned when enhancing a piece without a main stat.
	ErrNotRolled = errors.New("equipment has no main stat")
)

// Generator creates equipment pieces. Not safe for concurrent use.
type Generator struct {
	rand *rng.Source
	seq  int
}

// NewGenerator creates a generator drawing from source.
func NewGenerator(source *rng.Source) *Generator {
	return &Generator{rand: source}
}

// Create rolls a level 0 piece from template: a weighted main stat for the
// slot and 2-4 distinct sub stats. grade <= 0 uses DefaultGrade.
func (g *Generator) Create(template *data.Equipment, grade int) (*data.Equipment, error) {
	candidates := SlotMainStats(template.Slot)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("create %s: slot %d: %w", template.ID, template.Slot, ErrUnknownSlot)
	}
	if grade <= 0 {
		grade = DefaultGrade
	}

	main := g.rollMainStat(candidates)
	g.seq++
	piece := &data.Equipment{
		ID:               fmt.Sprintf("%s#%d", template.ID, g.seq),
		Name:             template.Name,
		SetID:            template.SetID,
		Slot:             template.Slot,
		Grade:            grade,
		MainStat:         &model.StatValue{Stat: main, Value: MainStatValue(main, 0)},
		PossibleSubStats: slices.Clone(template.PossibleSubStats),
	}

	count := initialSubCounts[max(g.rand.WeightedIndex(initialSubWeights), 0)]
	for len(piece.SubStats) < count {
		sub, ok := g.rollSubStat(piece)
		if !ok {
			break
		}
		piece.SubStats = append(piece.SubStats, sub)
	}
	return piece, nil
}

// Enhance levels piece up to level (capped at MaxEnhanceLevel). Each level
// recomputes the main stat; every SubStatRollInterval-th level adds a new
// sub stat while fewer than MaxSubStats exist, otherwise raises a random
// existing one by a fresh roll.
func (g *Generator) Enhance(piece *data.Equipment, level int) error {
	if piece.MainStat == nil {
		return fmt.Errorf("enhance %s: %w", piece.ID, ErrNotRolled)
	}
	target := min(level, constants.MaxEnhanceLevel)

	for l := piece.Level + 1; l <= target; l++ {
		piece.Level = l
		piece.MainStat.Value = MainStatValue(piece.MainStat.Stat, l)

		if l%constants.SubStatRollInterval != 0 {
			continue
		}
		if len(piece.SubStats) < constants.MaxSubStats {
			if sub, ok := g.rollSubStat(piece); ok {
				piece.SubStats = append(piece.SubStats, sub)
				continue
			}
		}
		if len(piece.SubStats) == 0 {
			continue
		}
		i := g.rand.IntN(len(piece.SubStats))
		piece.SubStats[i].Value += g.rollSubValue(piece.SubStats[i].Stat)
	}
	return nil
}

func (g *Generator) rollMainStat(candidates []model.Stat) model.Stat {
	if len(candidates) == 1 {
		return candidates[0]
	}
	weights := make([]float64, len(candidates))
	for i, s := range candidates {
		weights[i] = statRolls[s].Weight
	}
	idx := g.rand.WeightedIndex(weights)
	if idx < 0 {
		return candidates[0]
	}
	return candidates[idx]
}

// rollSubStat picks a sub stat piece does not carry yet. The main stat is
// not excluded.
func (g *Generator) rollSubStat(piece *data.Equipment) (model.StatValue, bool) {
	pool := piece.PossibleSubStats
	if len(pool) == 0 {
		pool = subStatPool
	}
	available := slices.DeleteFunc(slices.Clone(pool), func(s model.Stat) bool {
		return slices.ContainsFunc(piece.SubStats, func(v model.StatValue) bool { return v.Stat == s })
	})
	s, ok := rng.Pick(g.rand, available)
	if !ok {
		return model.StatValue{}, false
	}
	return model.StatValue{Stat: s, Value: g.rollSubValue(s)}, true
}

func (g *Generator) rollSubValue(s model.Stat) float64 {
	r, ok := statRolls[s]
	if !ok {
		return 0
	}
	v := g.rand.IrwinHall(r.SubMin, r.SubMax, constants.IrwinHallRolls)
	return min(max(v, r.SubMin), r.SubMax)
}
