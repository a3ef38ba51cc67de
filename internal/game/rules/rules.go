// Package rules defines the pluggable ruleset strategy consumed by the
// resolution engine, together with the condition resolver shared across
// rulesets.
package rules

import (
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/dice"
)

// AbilityDef describes one ability score exposed by a ruleset.
type AbilityDef struct {
	Key   string
	Label string
	Order int
}

// ResourceDef describes one depletable resource exposed by a ruleset.
type ResourceDef struct {
	Key   string
	Label string
	Order int
}

// Sheet carries the ability scores a resolution reads. A missing score
// falls back to 10 (modifier 0), so actions resolve even without a full
// character sheet.
type Sheet struct {
	Abilities map[string]int
}

// Score returns the sheet's score for key, or the neutral fallback of 10.
func (s Sheet) Score(key string) int {
	if value, ok := s.Abilities[key]; ok {
		return value
	}
	return 10
}

// Attack describes an attack definition.
type Attack struct {
	Name          string
	Ability       string
	Bonus         int
	DamageFormula string
	// CritRange is the minimum d20 roll that threatens a critical.
	// Zero means the default of 20.
	CritRange int
	// CritMultiplier scales damage on a confirmed critical.
	// Zero means the default of 2.
	CritMultiplier int
}

// Skill describes a skill check definition.
type Skill struct {
	Name    string
	Ability string
	Bonus   int
	DC      int
}

// Spell describes a spell definition.
type Spell struct {
	Name          string
	Ability       string
	Bonus         int
	CostMP        int
	DamageFormula string
	Effects       []string
}

// Modifiers are the numeric deltas the condition resolver derives from
// active status effects. The resolver only returns deltas; callers fold
// them into roll inputs.
type Modifiers struct {
	Attack int
	Damage int
	Skill  int
	Spell  int
	CostMP int
}

// Add returns the element-wise sum of two modifier sets.
func (m Modifiers) Add(other Modifiers) Modifiers {
	return Modifiers{
		Attack: m.Attack + other.Attack,
		Damage: m.Damage + other.Damage,
		Skill:  m.Skill + other.Skill,
		Spell:  m.Spell + other.Spell,
		CostMP: m.CostMP + other.CostMP,
	}
}

// ConditionContext names the active conditions on each side of an action.
type ConditionContext struct {
	Actor  []string
	Target []string
}

// AttackInput carries everything an attack resolution reads.
type AttackInput struct {
	Sheet      Sheet
	Attack     Attack
	Conditions Modifiers
	Roller     dice.Roller
}

// AttackResult is the outcome of an attack roll.
type AttackResult struct {
	D20          int
	Modifier     int
	Total        int
	IsNat20      bool
	IsNat1       bool
	IsCritThreat bool
}

// DamageInput carries everything a damage evaluation reads.
type DamageInput struct {
	Sheet      Sheet
	Attack     Attack
	IsCrit     bool
	Conditions Modifiers
	Roller     dice.Roller
}

// DamageResult is the outcome of a damage evaluation.
type DamageResult struct {
	Total  int
	Detail string
}

// SkillCheckInput carries everything a skill check reads.
type SkillCheckInput struct {
	Sheet      Sheet
	Skill      Skill
	Conditions Modifiers
	Roller     dice.Roller
}

// SkillCheckResult is the outcome of a skill check.
type SkillCheckResult struct {
	D20      int
	Modifier int
	Total    int
	DC       int
	Success  bool
}

// SpellInput carries everything a spell resolution reads.
type SpellInput struct {
	Sheet      Sheet
	Spell      Spell
	Conditions Modifiers
	Roller     dice.Roller
}

// SpellResult is the outcome of a spell resolution.
type SpellResult struct {
	D20          int
	Modifier     int
	Total        int
	CostMP       int
	Damage       int
	DamageDetail string
	Effects      []string
}

// Ruleset is the game-system strategy the resolution engine is
// parameterized over.
type Ruleset interface {
	ID() string
	Abilities() []AbilityDef
	Resources() []ResourceDef
	AbilityMod(score int) int
	Attack(in AttackInput) (AttackResult, error)
	Damage(in DamageInput) (DamageResult, error)
	SkillCheck(in SkillCheckInput) (SkillCheckResult, error)
	Spell(in SpellInput) (SpellResult, error)
	// ConditionModifiers folds active status effects into numeric deltas.
	ConditionModifiers(ctx ConditionContext) Modifiers
}
