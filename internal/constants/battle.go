package constants

// Damage formula
const (
	// DefenseCurve is K in the mitigation factor K/(K+effectiveDefense).
	DefenseCurve = 300.0

	// MinDamage is the floor of any single damage hit.
	MinDamage = 1
)

// CTB scheduling
const (
	// MinEffectiveSpeed and MaxEffectiveSpeed clamp speed before it is used
	// as a divisor.
	MinEffectiveSpeed = 10.0
	MaxEffectiveSpeed = 1000.0

	// ReadyEpsilon absorbs float drift when comparing bar positions against
	// the threshold.
	ReadyEpsilon = 1e-9
)

// Battle loop
const (
	// DefaultMaxTurns stops runaway battles.
	DefaultMaxTurns = 500

	// MaxAssistDepth bounds assist chains triggered from assist casts.
	MaxAssistDepth = 1

	// MaxEffectDepth bounds nested effect execution (passives firing
	// passives, reactions to reactions).
	MaxEffectDepth = 4
)

// Skill mechanic presets
const (
	MultiHitCount        = 3
	ReflectRatio         = 0.3
	LifeStealRatio       = 0.2
	SpiritFireBoostPerPt = 0.1
)

// Set effect presets
const (
	PoShiHPThreshold   = 0.7
	PoShiMultiplier    = 1.4
	ZhenNvChance       = 0.4
	ZhenNvMaxHPRatio   = 0.1
	KuangGuPerResource = 8.0 // percent per resource point
	KuangGuCap         = 40.0
)

// Equipment
const (
	MaxEnhanceLevel     = 15
	SubStatRollInterval = 3
	MaxSubStats         = 4
	IrwinHallRolls      = 3
)
