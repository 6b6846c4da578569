// Package battle runs one turn-based battle from start to finish.
//
// The Engine owns the BattleState and wires the stats aggregator, the CTB
// scheduler, the effect interpreter, the gambit evaluator and the registries
// around a single event bus. StartBattle drives the loop until a side is
// wiped out, the context is cancelled, the turn limit is hit, or a player
// unit needs input. In the last case the loop returns and resumes from
// SubmitPlayerAction.
package battle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/QirangMilco/TSAuto/internal/ai"
	"github.com/QirangMilco/TSAuto/internal/data"
	"github.com/QirangMilco/TSAuto/internal/event"
	"github.com/QirangMilco/TSAuto/internal/game/combat"
	"github.com/QirangMilco/TSAuto/internal/game/mechanic"
	"github.com/QirangMilco/TSAuto/internal/game/skill"
	"github.com/QirangMilco/TSAuto/internal/game/stats"
	"github.com/QirangMilco/TSAuto/internal/game/turn"
	"github.com/QirangMilco/TSAuto/internal/model"
	"github.com/QirangMilco/TSAuto/internal/rng"
)

var (
	// ErrEmptyRoster is returned when a side has no alive unit at init.
	ErrEmptyRoster = errors.New("roster has no alive unit")
	// ErrNotInitialized is returned when the battle is started before
	// InitBattleState.
	ErrNotInitialized = errors.New("battle not initialized")
	// ErrNotAwaitingInput is returned by SubmitPlayerAction when no player
	// unit is waiting for an action.
	ErrNotAwaitingInput = errors.New("not awaiting player input")
	// ErrAwaitingInput is returned by StartBattle while a player action is
	// pending.
	ErrAwaitingInput = errors.New("awaiting player input")
	// ErrTurnLimit stops the loop once MaxTurns turns have run.
	ErrTurnLimit = errors.New("turn limit reached")
	// ErrUnknownSkill rejects a player action naming a skill the unit lacks.
	ErrUnknownSkill = errors.New("unknown skill")
	// ErrInvalidTarget rejects a player action with a missing or dead target.
	ErrInvalidTarget = errors.New("invalid target")
	// ErrStalled is returned when both sides are alive but nobody can act.
	ErrStalled = errors.New("no unit can act")
)

// Phase is the engine's lifecycle state.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseAwaitingInput
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "IDLE"
	case PhaseRunning:
		return "RUNNING"
	case PhaseAwaitingInput:
		return "AWAITING_INPUT"
	case PhaseFinished:
		return "FINISHED"
	}
	return fmt.Sprintf("Phase(%d)", uint8(p))
}

// Option configures an Engine.
type Option func(*Engine)

// WithSetEffects replaces the preset set effect registry.
func WithSetEffects(r *mechanic.Registry) Option {
	return func(e *Engine) { e.sets = r }
}

// WithSkillMechanics replaces the preset skill mechanic registry.
func WithSkillMechanics(r *mechanic.Registry) Option {
	return func(e *Engine) { e.mechs = r }
}

// WithSink attaches s to the engine's bus.
func WithSink(s event.Sink) Option {
	return func(e *Engine) { e.bus.Attach(s) }
}

// Engine runs one battle. Not safe for concurrent use: every call must come
// from the goroutine that owns the battle.
type Engine struct {
	lookup data.Lookup
	cfg    Config

	bus      *event.Bus
	recorder *event.Recorder
	digest   *Digest
	sets     *mechanic.Registry
	mechs    *mechanic.Registry

	rand   *rng.Source
	stats  *stats.Aggregator
	sched  *turn.Scheduler
	interp *skill.Interpreter
	eval   *ai.Evaluator

	state   *model.BattleState
	initial *model.BattleState
	phase   Phase
	pending *turn.Ready
	started bool
	turns   int
}

// New creates an engine reading definitions from lookup.
func New(lookup data.Lookup, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		lookup:   lookup,
		cfg:      cfg,
		bus:      event.NewBus(),
		recorder: event.NewRecorder(),
		digest:   NewDigest(),
	}
	e.bus.Attach(e.recorder)
	e.bus.Attach(e.digest)
	for _, opt := range opts {
		opt(e)
	}
	if e.sets == nil {
		e.sets = mechanic.NewSetEffectRegistry()
	}
	if e.mechs == nil {
		e.mechs = mechanic.NewSkillMechanicRegistry()
	}
	e.wire()
	return e
}

// wire builds every seeded component from a fresh random source.
func (e *Engine) wire() {
	e.rand = rng.New(e.cfg.Seed)
	e.stats = stats.NewAggregator(e.lookup, stats.WithElements(e.cfg.Elements))
	e.sched = turn.NewScheduler(turn.WithSpeedLimits(e.cfg.Speed))
	e.interp = skill.New(skill.Deps{
		Lookup:     e.lookup,
		Stats:      e.stats,
		Damage:     combat.NewEngine(e.rand),
		Scheduler:  e.sched,
		SetEffects: e.sets,
		Mechanics:  e.mechs,
		Bus:        e.bus,
		Rand:       e.rand,
	})
	e.eval = ai.NewEvaluator(e.lookup, e.rand)
	if e.state != nil {
		e.interp.Bind(e.state)
	}
}

// InitBattleState installs the rosters. Units are owned by the engine from
// here on; their stats are refreshed and their action bars reset.
func (e *Engine) InitBattleState(players, enemies []*model.Unit) error {
	if model.CountAlive(players) == 0 {
		return fmt.Errorf("players: %w", ErrEmptyRoster)
	}
	if model.CountAlive(enemies) == 0 {
		return fmt.Errorf("enemies: %w", ErrEmptyRoster)
	}

	state := &model.BattleState{
		BattleID: e.cfg.BattleID,
		Seed:     e.cfg.Seed,
		Players:  players,
		Enemies:  enemies,
		Round:    1,
		Resource: model.NewResourcePool(e.cfg.Resource),
	}
	for _, u := range state.AllUnits() {
		u.ActionBarPosition = 0
		e.stats.Refresh(u)
	}

	e.initial = state.Clone()
	e.install(state)
	return nil
}

func (e *Engine) install(state *model.BattleState) {
	e.state = state
	e.interp.Bind(state)
	e.sched.Prime(state.AllUnits())
	e.phase = PhaseIdle
	e.pending = nil
	e.started = false
	e.turns = 0
}

// ResetBattle restores the rosters given to InitBattleState and reseeds
// every random decision. Event subscriptions are kept.
func (e *Engine) ResetBattle() {
	if e.initial == nil {
		return
	}
	e.bus.Reset()
	e.recorder.Reset()
	e.digest.Reset()
	e.wire()
	e.install(e.initial.Clone())
}

// BattleState returns a deep copy of the current state.
func (e *Engine) BattleState() *model.BattleState {
	if e.state == nil {
		return nil
	}
	return e.state.Clone()
}

// Phase returns the engine's lifecycle state.
func (e *Engine) Phase() Phase {
	return e.phase
}

// AwaitingInput returns the unit waiting for a player action.
func (e *Engine) AwaitingInput() (string, bool) {
	if e.phase != PhaseAwaitingInput || e.pending == nil {
		return "", false
	}
	return e.pending.Unit.InstanceID, true
}

// OnEvent subscribes h to kind.
func (e *Engine) OnEvent(kind event.Kind, h event.Handler) {
	e.bus.Subscribe(kind, h)
}

// Events returns every event published since the battle was initialized.
func (e *Engine) Events() []event.Event {
	return e.recorder.Events()
}

// StartBattle publishes BattleStart on the first call and runs the loop.
// It returns nil when the battle ends or pauses for player input.
func (e *Engine) StartBattle(ctx context.Context) error {
	switch {
	case e.state == nil:
		return ErrNotInitialized
	case e.phase == PhaseFinished:
		return nil
	case e.phase == PhaseAwaitingInput:
		return ErrAwaitingInput
	}

	if !e.started {
		e.started = true
		e.publish(event.BattleStart, event.BattleStartPayload{
			BattleID: e.state.BattleID,
			Seed:     e.state.Seed,
			Players:  unitIDs(e.state.Players),
			Enemies:  unitIDs(e.state.Enemies),
		})
		for _, u := range e.state.AllUnits() {
			e.interp.FirePassives(u, model.TriggerBattleStart, nil, 0)
		}
		slog.Debug("battle started",
			"battle", e.state.BattleID,
			"seed", e.state.Seed,
			"players", len(e.state.Players),
			"enemies", len(e.state.Enemies))
	}
	return e.run(ctx)
}

// SubmitPlayerAction resolves the pending player turn with action and
// resumes the loop. A rejected action keeps the turn pending.
func (e *Engine) SubmitPlayerAction(ctx context.Context, action model.Action) error {
	if e.phase != PhaseAwaitingInput || e.pending == nil {
		slog.Warn("player action received while not awaiting input",
			"skill", action.SkillID,
			"target", action.TargetID,
			"phase", e.phase)
		return ErrNotAwaitingInput
	}

	r := *e.pending
	sk, target, err := e.validate(r.Unit, action)
	if err != nil {
		slog.Debug("player action rejected",
			"unit", r.Unit.InstanceID,
			"skill", action.SkillID,
			"target", action.TargetID,
			"error", err)
		return err
	}

	e.pending = nil
	e.phase = PhaseRunning
	e.cast(r, sk, target)
	e.finishTurn(r)
	return e.run(ctx)
}

func (e *Engine) validate(actor *model.Unit, action model.Action) (*data.Skill, *model.Unit, error) {
	if !actor.HasSkill(action.SkillID) {
		return nil, nil, fmt.Errorf("%s: %w", action.SkillID, ErrUnknownSkill)
	}
	sk, ok := e.lookup.Skill(action.SkillID)
	if !ok {
		return nil, nil, fmt.Errorf("%s: %w", action.SkillID, ErrUnknownSkill)
	}
	target := e.state.FindUnit(action.TargetID)
	if target == nil || !target.Alive() {
		return nil, nil, fmt.Errorf("%q: %w", action.TargetID, ErrInvalidTarget)
	}
	if _, err := model.ConsumeResource(e.state.Resource, sk.Cost); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", sk.ID, err)
	}
	return sk, target, nil
}

// run advances the bar and plays turns until the battle ends or pauses.
func (e *Engine) run(ctx context.Context) error {
	e.phase = PhaseRunning
	for {
		if e.state.Finished() {
			e.phase = PhaseFinished
			return nil
		}
		if err := ctx.Err(); err != nil {
			e.phase = PhaseIdle
			return err
		}
		if e.cfg.MaxTurns > 0 && e.turns >= e.cfg.MaxTurns {
			e.phase = PhaseIdle
			slog.Warn("battle stopped at turn limit",
				"battle", e.state.BattleID,
				"turns", e.turns)
			return fmt.Errorf("%d turns: %w", e.turns, ErrTurnLimit)
		}

		ready := e.sched.Advance(e.state.AllUnits())
		if len(ready) == 0 {
			e.checkResult()
			if e.state.Finished() {
				continue
			}
			e.phase = PhaseIdle
			return ErrStalled
		}

		if paused := e.playTurn(ready[0]); paused {
			e.phase = PhaseAwaitingInput
			return nil
		}
	}
}

func (e *Engine) publish(kind event.Kind, payload any) {
	e.bus.Publish(kind, e.state.Round, payload)
}

func unitIDs(units []*model.Unit) []string {
	ids := make([]string, len(units))
	for i, u := range units {
		ids[i] = u.InstanceID
	}
	return ids
}
