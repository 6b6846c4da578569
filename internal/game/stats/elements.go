package stats

import (
	"fmt"

	"github.com/QirangMilco/TSAuto/internal/config"
	"github.com/QirangMilco/TSAuto/internal/data"
	"github.com/QirangMilco/TSAuto/internal/model"
)

// Element is one of the five equipment elements.
type Element uint8

const (
	Metal Element = iota + 1
	Water
	Wood
	Fire
	Earth
)

func (e Element) String() string {
	switch e {
	case Metal:
		return "METAL"
	case Water:
		return "WATER"
	case Wood:
		return "WOOD"
	case Fire:
		return "FIRE"
	case Earth:
		return "EARTH"
	}
	return fmt.Sprintf("Element(%d)", uint8(e))
}

// ElementForSlot maps equipment slots 1..5 to elements. Other slots have none.
func ElementForSlot(slot int) (Element, bool) {
	if slot < 1 || slot > 5 {
		return 0, false
	}
	return Element(slot), true
}

// Generates returns the element e feeds (metal feeds water, ...).
func (e Element) Generates() Element {
	switch e {
	case Metal:
		return Water
	case Water:
		return Wood
	case Wood:
		return Fire
	case Fire:
		return Earth
	default:
		return Metal
	}
}

// RestrainedBy returns the element that restrains e.
// Metal restrains wood, wood earth, earth water, water fire, fire metal.
func (e Element) RestrainedBy() Element {
	switch e {
	case Wood:
		return Metal
	case Earth:
		return Wood
	case Water:
		return Earth
	case Fire:
		return Water
	default:
		return Fire
	}
}

// bonusStat is the stat each element strengthens.
func (e Element) bonusStat() model.Stat {
	switch e {
	case Metal:
		return model.StatATKPercent
	case Water:
		return model.StatHPPercent
	case Wood:
		return model.StatHealBonus
	case Fire:
		return model.StatCritDmg
	default:
		return model.StatDEFPercent
	}
}

// ElementState describes how well a slot's element is working.
type ElementState uint8

const (
	Healthy ElementState = iota
	Suppressed
	Starved
)

func (s ElementState) String() string {
	switch s {
	case Healthy:
		return "HEALTHY"
	case Suppressed:
		return "SUPPRESSED"
	case Starved:
		return "STARVED"
	}
	return fmt.Sprintf("ElementState(%d)", uint8(s))
}

// SlotElement is the analysis of one equipped piece.
type SlotElement struct {
	Slot       int
	Element    Element
	Power      float64
	State      ElementState
	Efficiency float64
}

// ElementsResult is the five-elements analysis of a unit's equipment.
type ElementsResult struct {
	Slots      []SlotElement
	TotalPower float64
}

// Count returns how many slots are in state s.
func (r ElementsResult) Count(s ElementState) int {
	n := 0
	for _, slot := range r.Slots {
		if slot.State == s {
			n++
		}
	}
	return n
}

func (r ElementsResult) find(e Element) *SlotElement {
	for i := range r.Slots {
		if r.Slots[i].Element == e {
			return &r.Slots[i]
		}
	}
	return nil
}

// PiecePower converts a piece into element power.
func PiecePower(eq *data.Equipment, cfg config.Elements) float64 {
	power := float64(eq.Level)*cfg.LevelWeight + float64(eq.Grade)*cfg.GradeWeight
	if eq.MainStat != nil {
		power += eq.MainStat.Value * cfg.MainStatWeight
	}
	for _, sub := range eq.SubStats {
		power += sub.Value * cfg.SubStatWeight
	}
	return power
}

// AnalyzeElements computes slot states: a slot is suppressed when the
// element restraining it is more than SuppressionThreshold times stronger,
// and starved when the element feeding it sends less than
// StarvationThreshold power.
func AnalyzeElements(pieces []*data.Equipment, cfg config.Elements) ElementsResult {
	var res ElementsResult
	for _, eq := range pieces {
		el, ok := ElementForSlot(eq.Slot)
		if !ok {
			continue
		}
		power := PiecePower(eq, cfg)
		res.Slots = append(res.Slots, SlotElement{
			Slot:       eq.Slot,
			Element:    el,
			Power:      power,
			State:      Healthy,
			Efficiency: 1,
		})
		res.TotalPower += power
	}

	for i := range res.Slots {
		s := &res.Slots[i]
		if r := res.find(s.Element.RestrainedBy()); r != nil && r.Power > s.Power*cfg.SuppressionThreshold {
			s.State = Suppressed
			s.Efficiency = cfg.SuppressedEfficiency
		}
	}

	for i := range res.Slots {
		src := res.Slots[i]
		inflow := src.Power * src.Efficiency * cfg.GenerateMultiplier
		if t := res.find(src.Element.Generates()); t != nil && inflow < cfg.StarvationThreshold {
			t.State = Starved
		}
	}

	return res
}

// Bonus converts the analysis into stat bonuses. Starved slots grant nothing.
// Fire grants CRIT_DMG, which is a fraction, so its points are scaled by 1/100.
func (r ElementsResult) Bonus(cfg config.Elements) model.StatTable {
	var t model.StatTable
	for _, s := range r.Slots {
		if s.State == Starved {
			continue
		}
		v := s.Power * s.Efficiency * cfg.Ratio
		stat := s.Element.bonusStat()
		if stat == model.StatCritDmg {
			v /= 100
		}
		t.Add(stat, v)
	}
	return t
}
