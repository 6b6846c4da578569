// Package mechanic holds the two pluggable rule registries consulted while
// damage resolves: set effects (granted by equipment sets) and skill
// mechanics (named by skill definitions).
//
// Registries are plain values injected into the battle engine. Each battle
// may carry its own instances; nothing here is global.
package mechanic

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/QirangMilco/TSAuto/internal/game/combat"
	"github.com/QirangMilco/TSAuto/internal/model"
)

// Rand is the random source mechanics roll with. *rng.Source satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// Context is what a mechanic sees when it is invoked.
//
// Owner is the unit that carries the set or skill. For TriggerDamageReceived
// the owner is the defender and Other is the attacker; otherwise the owner
// is the caster and Other the unit being hit.
type Context struct {
	Trigger model.Trigger
	Owner   *model.Unit
	Other   *model.Unit
	// Targets are every unit the current effect resolves to.
	Targets []*model.Unit
	SkillID string
	// Hit is the pending hit for damage triggers, nil otherwise.
	Hit   *combat.Hit
	State *model.BattleState
	Rand  Rand
}

// Func is one registered mechanic.
type Func func(ctx *Context) Result

// Registry maps mechanic ids to functions.
type Registry struct {
	name  string
	funcs map[string]Func
}

// NewRegistry creates an empty registry. name is only used in logs.
func NewRegistry(name string) *Registry {
	return &Registry{name: name, funcs: make(map[string]Func)}
}

// Register adds or replaces fn under id.
func (r *Registry) Register(id string, fn Func) {
	if id == "" || fn == nil {
		return
	}
	r.funcs[id] = fn
}

// Get returns the function registered under id.
func (r *Registry) Get(id string) (Func, bool) {
	fn, ok := r.funcs[id]
	return fn, ok
}

// IDs returns every registered id, sorted.
func (r *Registry) IDs() []string {
	return slices.Sorted(maps.Keys(r.funcs))
}

// Len returns the number of registered functions.
func (r *Registry) Len() int {
	return len(r.funcs)
}

// Invoke runs the function registered under id. Unknown ids and panicking
// functions yield an empty result and ok=false.
func (r *Registry) Invoke(id string, ctx *Context) (res Result, ok bool) {
	fn, found := r.funcs[id]
	if !found {
		slog.Warn("mechanic not registered", "registry", r.name, "id", id)
		return Result{}, false
	}

	defer func() {
		if p := recover(); p != nil {
			slog.Error("mechanic panicked",
				"registry", r.name,
				"id", id,
				"trigger", ctx.Trigger,
				"panic", fmt.Sprint(p))
			res, ok = Result{}, false
		}
	}()

	return fn(ctx), true
}

// Validate returns an error naming every id in ids that is not registered.
func (r *Registry) Validate(ids []string) error {
	var missing []string
	for _, id := range ids {
		if _, ok := r.funcs[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%s registry: unknown ids %s", r.name, strings.Join(missing, ", "))
}
