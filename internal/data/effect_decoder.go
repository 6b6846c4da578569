package data

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/QirangMilco/TSAuto/internal/model"
)

// effectSpec is the flat on-disk shape shared by every effect kind.
// Each decoder picks the fields its variant needs.
type effectSpec struct {
	Type     string            `yaml:"type"`
	Target   *model.TargetType `yaml:"target"`
	BaseStat *model.Stat       `yaml:"base_stat"`

	Multiplier float64 `yaml:"multiplier"`
	Amount     float64 `yaml:"amount"`
	StatusID   string  `yaml:"status_id"`
	Duration   int     `yaml:"duration"`
	Chance     float64 `yaml:"chance"`
	SkillID    string  `yaml:"skill_id"`
}

func (s effectSpec) target(def model.TargetType) model.TargetType {
	if s.Target != nil {
		return *s.Target
	}
	return def
}

func (s effectSpec) baseStat(def model.Stat) model.Stat {
	if s.BaseStat != nil {
		return *s.BaseStat
	}
	return def
}

// effectDecoders maps kind name -> decoder.
var effectDecoders = map[string]func(s effectSpec) (model.Effect, error){}

// effectAliases maps legacy kind names onto canonical ones.
var effectAliases = map[string]string{
	"GAIN_EXTRA_TURN": model.KindGrantExtraTurn,
	"EXTRA_TURN":      model.KindGrantExtraTurn,
	"PSEUDO_TURN":     model.KindTriggerPseudoTurn,
}

// registerEffectDecoder registers a decoder for an effect kind.
func registerEffectDecoder(kind string, decode func(s effectSpec) (model.Effect, error)) {
	effectDecoders[kind] = decode
}

// DecodeEffect decodes one effect from a YAML node.
func DecodeEffect(node *yaml.Node) (model.Effect, error) {
	var spec effectSpec
	if err := node.Decode(&spec); err != nil {
		return nil, fmt.Errorf("line %d: decode effect: %w", node.Line, err)
	}

	kind := strings.ToUpper(strings.TrimSpace(spec.Type))
	if alias, ok := effectAliases[kind]; ok {
		kind = alias
	}
	decode, ok := effectDecoders[kind]
	if !ok {
		return nil, fmt.Errorf("line %d: unknown effect type %q", node.Line, spec.Type)
	}

	eff, err := decode(spec)
	if err != nil {
		return nil, fmt.Errorf("line %d: %s: %w", node.Line, kind, err)
	}
	return eff, nil
}

// EffectList decodes a YAML sequence of effects.
type EffectList []model.Effect

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *EffectList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: effects must be a list", node.Line)
	}
	out := make(EffectList, 0, len(node.Content))
	for _, item := range node.Content {
		eff, err := DecodeEffect(item)
		if err != nil {
			return err
		}
		out = append(out, eff)
	}
	*l = out
	return nil
}

func init() {
	registerEffectDecoder(model.KindDamage, decodeDamage)
	registerEffectDecoder(model.KindHeal, decodeHeal)
	registerEffectDecoder(model.KindApplyStatus, decodeApplyStatus)
	registerEffectDecoder(model.KindRemoveStatus, decodeRemoveStatus)
	registerEffectDecoder(model.KindModifyActionBar, decodeModifyActionBar)
	registerEffectDecoder(model.KindModifyResource, decodeModifyResource)
	registerEffectDecoder(model.KindGrantExtraTurn, decodeGrantExtraTurn)
	registerEffectDecoder(model.KindTriggerPseudoTurn, decodeTriggerPseudoTurn)
}

func decodeDamage(s effectSpec) (model.Effect, error) {
	if s.Multiplier <= 0 {
		return nil, fmt.Errorf("multiplier must be positive, got %v", s.Multiplier)
	}
	return model.Damage{
		Target:     s.target(model.TargetTarget),
		Multiplier: s.Multiplier,
		BaseStat:   s.baseStat(model.StatATK),
	}, nil
}

func decodeHeal(s effectSpec) (model.Effect, error) {
	if s.Multiplier <= 0 {
		return nil, fmt.Errorf("multiplier must be positive, got %v", s.Multiplier)
	}
	return model.Heal{
		Target:     s.target(model.TargetSelf),
		Multiplier: s.Multiplier,
		BaseStat:   s.baseStat(model.StatHP),
	}, nil
}

func decodeApplyStatus(s effectSpec) (model.Effect, error) {
	if s.StatusID == "" {
		return nil, fmt.Errorf("status_id is required")
	}
	if s.Duration < 0 {
		return nil, fmt.Errorf("negative duration %d", s.Duration)
	}
	return model.ApplyStatus{
		Target:   s.target(model.TargetTarget),
		StatusID: s.StatusID,
		Duration: s.Duration,
		Chance:   s.Chance,
	}, nil
}

func decodeRemoveStatus(s effectSpec) (model.Effect, error) {
	if s.StatusID == "" {
		return nil, fmt.Errorf("status_id is required")
	}
	return model.RemoveStatus{Target: s.target(model.TargetTarget), StatusID: s.StatusID}, nil
}

func decodeModifyActionBar(s effectSpec) (model.Effect, error) {
	if s.Amount < -1 || s.Amount > 1 {
		return nil, fmt.Errorf("amount %v outside [-1, 1]", s.Amount)
	}
	return model.ModifyActionBar{Target: s.target(model.TargetSelf), Fraction: s.Amount}, nil
}

func decodeModifyResource(s effectSpec) (model.Effect, error) {
	return model.ModifyResource{Target: s.target(model.TargetSelf), Amount: int(s.Amount)}, nil
}

func decodeGrantExtraTurn(s effectSpec) (model.Effect, error) {
	return model.GrantExtraTurn{Target: s.target(model.TargetSelf)}, nil
}

func decodeTriggerPseudoTurn(s effectSpec) (model.Effect, error) {
	if s.SkillID == "" {
		return nil, fmt.Errorf("skill_id is required")
	}
	return model.TriggerPseudoTurn{Target: s.target(model.TargetSelf), SkillID: s.SkillID}, nil
}
