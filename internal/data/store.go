package data

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/QirangMilco/TSAuto/internal/model"
)

var (
	// ErrNotFound is returned when a definition id is unknown.
	ErrNotFound = errors.New("definition not found")
	// ErrDuplicate is returned when a definition id is registered twice.
	ErrDuplicate = errors.New("duplicate definition")
	// ErrNotTemplate is returned when a rolled piece names equipment that
	// already carries a main stat.
	ErrNotTemplate = errors.New("equipment is not a template")
)

// Lookup is the read-only definition source the battle core consumes.
// Returned definitions must not be modified.
type Lookup interface {
	Character(id string) (*Character, bool)
	Skill(id string) (*Skill, bool)
	Equipment(id string) (*Equipment, bool)
	Status(id string) (*Status, bool)
	EquipmentSet(id string) (*EquipmentSet, bool)
	Gambit(id string) (*model.Gambit, bool)
}

// Store is an in-memory Lookup. It is filled once at startup and then only
// read, so it may be shared by concurrent battles.
type Store struct {
	characters map[string]*Character
	skills     map[string]*Skill
	equipment  map[string]*Equipment
	statuses   map[string]*Status
	sets       map[string]*EquipmentSet
	gambits    map[string]*model.Gambit
	encounters map[string]*Encounter
	growth     *GrowthTable
}

var _ Lookup = (*Store)(nil)

// NewStore creates an empty store using the default growth table.
func NewStore() *Store {
	return &Store{
		characters: make(map[string]*Character),
		skills:     make(map[string]*Skill),
		equipment:  make(map[string]*Equipment),
		statuses:   make(map[string]*Status),
		sets:       make(map[string]*EquipmentSet),
		gambits:    make(map[string]*model.Gambit),
		encounters: make(map[string]*Encounter),
		growth:     DefaultGrowthTable(),
	}
}

// Character implements Lookup.
func (s *Store) Character(id string) (*Character, bool) {
	v, ok := s.characters[id]
	return v, ok
}

// Skill implements Lookup.
func (s *Store) Skill(id string) (*Skill, bool) {
	v, ok := s.skills[id]
	return v, ok
}

// Equipment implements Lookup.
func (s *Store) Equipment(id string) (*Equipment, bool) {
	v, ok := s.equipment[id]
	return v, ok
}

// Status implements Lookup.
func (s *Store) Status(id string) (*Status, bool) {
	v, ok := s.statuses[id]
	return v, ok
}

// EquipmentSet implements Lookup.
func (s *Store) EquipmentSet(id string) (*EquipmentSet, bool) {
	v, ok := s.sets[id]
	return v, ok
}

// Gambit implements Lookup.
func (s *Store) Gambit(id string) (*model.Gambit, bool) {
	v, ok := s.gambits[id]
	return v, ok
}

// Encounter returns a named encounter.
func (s *Store) Encounter(id string) (*Encounter, bool) {
	v, ok := s.encounters[id]
	return v, ok
}

// EncounterIDs returns every encounter id, sorted.
func (s *Store) EncounterIDs() []string {
	return slices.Sorted(maps.Keys(s.encounters))
}

// Growth returns the active growth table.
func (s *Store) Growth() *GrowthTable {
	return s.growth
}

// SetGrowth replaces the growth table.
func (s *Store) SetGrowth(g *GrowthTable) {
	if g != nil {
		s.growth = g
	}
}

func addUnique[T any](m map[string]*T, kind, id string, v *T) error {
	if id == "" {
		return fmt.Errorf("%s without id", kind)
	}
	if _, ok := m[id]; ok {
		return fmt.Errorf("%s %q: %w", kind, id, ErrDuplicate)
	}
	m[id] = v
	return nil
}

// AddCharacter registers a character definition. Ids must be unique.
func (s *Store) AddCharacter(c *Character) error {
	return addUnique(s.characters, "character", c.ID, c)
}

// AddSkill registers a skill definition.
func (s *Store) AddSkill(v *Skill) error {
	return addUnique(s.skills, "skill", v.ID, v)
}

// AddEquipment registers an equipment piece.
func (s *Store) AddEquipment(v *Equipment) error {
	return addUnique(s.equipment, "equipment", v.ID, v)
}

// AddStatus registers a status definition.
func (s *Store) AddStatus(v *Status) error {
	return addUnique(s.statuses, "status", v.ID, v)
}

// AddEquipmentSet registers an equipment set.
func (s *Store) AddEquipmentSet(v *EquipmentSet) error {
	return addUnique(s.sets, "set", v.ID, v)
}

// AddGambit registers a gambit.
func (s *Store) AddGambit(v *model.Gambit) error {
	return addUnique(s.gambits, "gambit", v.ID, v)
}

// AddEncounter registers an encounter.
func (s *Store) AddEncounter(v *Encounter) error {
	return addUnique(s.encounters, "encounter", v.ID, v)
}

// Stats returns definition counts for logging.
func (s *Store) Stats() map[string]int {
	return map[string]int{
		"characters": len(s.characters),
		"skills":     len(s.skills),
		"equipment":  len(s.equipment),
		"statuses":   len(s.statuses),
		"sets":       len(s.sets),
		"gambits":    len(s.gambits),
		"encounters": len(s.encounters),
	}
}

// Validate checks cross references between definitions and returns every
// dangling reference joined into one error.
func (s *Store) Validate() error {
	var errs []error
	missing := func(owner, kind, id string) {
		errs = append(errs, fmt.Errorf("%s references %s %q: %w", owner, kind, id, ErrNotFound))
	}

	for _, id := range slices.Sorted(maps.Keys(s.characters)) {
		c := s.characters[id]
		for _, sk := range c.Skills {
			if _, ok := s.skills[sk]; !ok {
				missing("character "+id, "skill", sk)
			}
		}
		if c.GambitID != "" {
			if _, ok := s.gambits[c.GambitID]; !ok {
				missing("character "+id, "gambit", c.GambitID)
			}
		}
	}

	for _, id := range slices.Sorted(maps.Keys(s.skills)) {
		sk := s.skills[id]
		refs := collectRefs(sk.Effects)
		for _, p := range sk.Passives {
			refs.add(collectRefs(p.Effects))
		}
		s.checkRefs("skill "+id, refs, missing)
	}

	for _, id := range slices.Sorted(maps.Keys(s.statuses)) {
		st := s.statuses[id]
		refs := collectRefs(st.OnTurnStart)
		refs.add(collectRefs(st.OnTurnEnd))
		refs.add(collectRefs(st.OnReceiveDamage))
		s.checkRefs("status "+id, refs, missing)
	}

	for _, id := range slices.Sorted(maps.Keys(s.equipment)) {
		eq := s.equipment[id]
		if eq.SetID == "" {
			continue
		}
		if _, ok := s.sets[eq.SetID]; !ok {
			missing("equipment "+id, "set", eq.SetID)
		}
	}

	for _, id := range slices.Sorted(maps.Keys(s.gambits)) {
		for _, r := range s.gambits[id].Rules {
			if _, ok := s.skills[r.SkillID]; !ok {
				missing("gambit "+id, "skill", r.SkillID)
			}
		}
	}

	for _, id := range slices.Sorted(maps.Keys(s.encounters)) {
		enc := s.encounters[id]
		for _, spec := range slices.Concat(enc.Players, enc.Enemies) {
			if _, ok := s.characters[spec.CharacterID]; !ok {
				missing("encounter "+id, "character", spec.CharacterID)
			}
			for _, eq := range spec.Equipment {
				if _, ok := s.equipment[eq]; !ok {
					missing("encounter "+id, "equipment", eq)
				}
			}
			for _, roll := range spec.RolledEquipment {
				tpl, ok := s.equipment[roll.TemplateID]
				switch {
				case !ok:
					missing("encounter "+id, "equipment template", roll.TemplateID)
				case tpl.MainStat != nil:
					errs = append(errs, fmt.Errorf("encounter %s rolls %q: %w", id, roll.TemplateID, ErrNotTemplate))
				}
			}
			if spec.GambitID != "" {
				if _, ok := s.gambits[spec.GambitID]; !ok {
					missing("encounter "+id, "gambit", spec.GambitID)
				}
			}
		}
	}

	return errors.Join(errs...)
}

func (s *Store) checkRefs(owner string, refs effectRefs, missing func(owner, kind, id string)) {
	for _, st := range refs.statuses {
		if _, ok := s.statuses[st]; !ok {
			missing(owner, "status", st)
		}
	}
	for _, sk := range refs.skills {
		if _, ok := s.skills[sk]; !ok {
			missing(owner, "skill", sk)
		}
	}
}

// effectRefs collects definition ids referenced by effects.
type effectRefs struct {
	statuses []string
	skills   []string
}

func collectRefs(effects []model.Effect) effectRefs {
	var r effectRefs
	for _, e := range effects {
		e.Accept(&r)
	}
	return r
}

func (r *effectRefs) add(o effectRefs) {
	r.statuses = append(r.statuses, o.statuses...)
	r.skills = append(r.skills, o.skills...)
}

func (r *effectRefs) VisitDamage(model.Damage) {}
func (r *effectRefs) VisitHeal(model.Heal)     {}
func (r *effectRefs) VisitApplyStatus(e model.ApplyStatus) {
	r.statuses = append(r.statuses, e.StatusID)
}
func (r *effectRefs) VisitRemoveStatus(e model.RemoveStatus) {
	r.statuses = append(r.statuses, e.StatusID)
}
func (r *effectRefs) VisitModifyActionBar(model.ModifyActionBar) {}
func (r *effectRefs) VisitModifyResource(model.ModifyResource)   {}
func (r *effectRefs) VisitGrantExtraTurn(model.GrantExtraTurn)   {}
func (r *effectRefs) VisitTriggerPseudoTurn(e model.TriggerPseudoTurn) {
	r.skills = append(r.skills, e.SkillID)
}
