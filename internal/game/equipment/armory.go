package equipment

import (
	"errors"
	"fmt"

	"github.com/QirangMilco/TSAuto/internal/data"
)

// ErrUnknownTemplate is returned when a roll names an undefined template.
var ErrUnknownTemplate = errors.New("unknown equipment template")

// Armory layers the pieces rolled for one battle over a shared Lookup.
// The shared definitions are never written, so one store can back many
// armories. An Armory itself is not safe for concurrent use.
type Armory struct {
	data.Lookup
	gen    *Generator
	pieces map[string]*data.Equipment
}

// NewArmory creates an armory rolling through gen on top of base.
func NewArmory(base data.Lookup, gen *Generator) *Armory {
	return &Armory{
		Lookup: base,
		gen:    gen,
		pieces: make(map[string]*data.Equipment),
	}
}

// Forge rolls a piece from roll's template, enhances it to roll.Level and
// keeps it for Equipment lookups.
func (a *Armory) Forge(roll data.EquipmentRoll) (*data.Equipment, error) {
	tpl, ok := a.Lookup.Equipment(roll.TemplateID)
	if !ok {
		return nil, fmt.Errorf("forge %q: %w", roll.TemplateID, ErrUnknownTemplate)
	}
	piece, err := a.gen.Create(tpl, roll.Grade)
	if err != nil {
		return nil, err
	}
	if err := a.gen.Enhance(piece, roll.Level); err != nil {
		return nil, err
	}
	a.pieces[piece.ID] = piece
	return piece, nil
}

// Equipment returns a forged piece, falling back to the shared definitions.
func (a *Armory) Equipment(id string) (*data.Equipment, bool) {
	if p, ok := a.pieces[id]; ok {
		return p, true
	}
	return a.Lookup.Equipment(id)
}

// Forged returns the number of pieces rolled so far.
func (a *Armory) Forged() int {
	return len(a.pieces)
}
