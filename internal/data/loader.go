package data

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/QirangMilco/TSAuto/internal/model"
)

//go:embed content/*.yaml
var defaultContent embed.FS

// Pack is one definition file. A file may hold several YAML documents.
type Pack struct {
	Characters []Character    `yaml:"characters"`
	Skills     []Skill        `yaml:"skills"`
	Statuses   []Status       `yaml:"statuses"`
	Equipment  []Equipment    `yaml:"equipment"`
	Sets       []EquipmentSet `yaml:"sets"`
	Gambits    []model.Gambit `yaml:"gambits"`
	Encounters []Encounter    `yaml:"encounters"`
	Growth     *GrowthTable   `yaml:"growth"`
}

// AddPack registers every definition of p.
func (s *Store) AddPack(p *Pack) error {
	for i := range p.Characters {
		if err := s.AddCharacter(&p.Characters[i]); err != nil {
			return err
		}
	}
	for i := range p.Skills {
		if err := s.AddSkill(&p.Skills[i]); err != nil {
			return err
		}
	}
	for i := range p.Statuses {
		if err := s.AddStatus(&p.Statuses[i]); err != nil {
			return err
		}
	}
	for i := range p.Equipment {
		if err := s.AddEquipment(&p.Equipment[i]); err != nil {
			return err
		}
	}
	for i := range p.Sets {
		if err := s.AddEquipmentSet(&p.Sets[i]); err != nil {
			return err
		}
	}
	for i := range p.Gambits {
		if err := s.AddGambit(&p.Gambits[i]); err != nil {
			return err
		}
	}
	for i := range p.Encounters {
		if err := s.AddEncounter(&p.Encounters[i]); err != nil {
			return err
		}
	}
	if p.Growth != nil {
		s.SetGrowth(p.Growth)
	}
	return nil
}

// DecodePacks decodes every YAML document in r. Unknown keys are errors.
func DecodePacks(r io.Reader) ([]*Pack, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var packs []*Pack
	for {
		var p Pack
		err := dec.Decode(&p)
		if errors.Is(err, io.EOF) {
			return packs, nil
		}
		if err != nil {
			return nil, err
		}
		packs = append(packs, &p)
	}
}

// LoadFS loads every *.yaml / *.yml file at the root of fsys, in name
// order, and validates cross references.
func LoadFS(fsys fs.FS) (*Store, error) {
	var names []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		m, err := fs.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		names = append(names, m...)
	}
	slices.Sort(names)
	if len(names) == 0 {
		return nil, fmt.Errorf("no definition files found: %w", ErrNotFound)
	}

	store := NewStore()
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		packs, err := DecodePacks(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		for _, p := range packs {
			if err := store.AddPack(p); err != nil {
				return nil, fmt.Errorf("load %s: %w", name, err)
			}
		}
	}

	if err := store.Validate(); err != nil {
		return nil, fmt.Errorf("validate definitions: %w", err)
	}

	slog.Info("loaded definitions", "files", len(names), "counts", store.Stats())
	return store, nil
}

// LoadDir loads definitions from a directory on disk.
func LoadDir(dir string) (*Store, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("content dir %s: %w", dir, err)
	}
	return LoadFS(os.DirFS(dir))
}

// LoadDefault loads the definitions embedded in the binary.
func LoadDefault() (*Store, error) {
	sub, err := fs.Sub(defaultContent, "content")
	if err != nil {
		return nil, fmt.Errorf("embedded content: %w", err)
	}
	return LoadFS(sub)
}

// Load loads from dir when it is set, otherwise the embedded pack.
func Load(dir string) (*Store, error) {
	if dir == "" {
		return LoadDefault()
	}
	return LoadDir(dir)
}
