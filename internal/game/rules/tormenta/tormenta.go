// Package tormenta implements the Tormenta 20 ruleset, the system this
// server ships as its default.
package tormenta

import (
	"fmt"

	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/dice"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/rules"
)

// RulesetID is the identifier campaigns use to select this system.
const RulesetID = "tormenta20"

const (
	defaultCritRange      = 20
	defaultCritMultiplier = 2

	defaultAttackAbility = "for"
	defaultSpellAbility  = "int"
)

// Ruleset resolves rolls with Tormenta 20 arithmetic. The zero value is
// ready to use.
type Ruleset struct{}

// New returns the Tormenta 20 ruleset.
func New() *Ruleset {
	return &Ruleset{}
}

// ID returns the ruleset identifier.
func (r *Ruleset) ID() string {
	return RulesetID
}

// Abilities lists the six Tormenta 20 ability scores.
func (r *Ruleset) Abilities() []rules.AbilityDef {
	return []rules.AbilityDef{
		{Key: "for", Label: "Força", Order: 1},
		{Key: "des", Label: "Destreza", Order: 2},
		{Key: "con", Label: "Constituição", Order: 3},
		{Key: "int", Label: "Inteligência", Order: 4},
		{Key: "sab", Label: "Sabedoria", Order: 5},
		{Key: "car", Label: "Carisma", Order: 6},
	}
}

// Resources lists the depletable pools: hit points and mana points.
func (r *Ruleset) Resources() []rules.ResourceDef {
	return []rules.ResourceDef{
		{Key: "pv", Label: "Pontos de Vida", Order: 1},
		{Key: "pm", Label: "Pontos de Mana", Order: 2},
	}
}

// AbilityMod converts an ability score into its modifier: (score-10)/2,
// rounded toward negative infinity so a score of 9 yields -1.
func (r *Ruleset) AbilityMod(score int) int {
	diff := score - 10
	if diff >= 0 {
		return diff / 2
	}
	return (diff - 1) / 2
}

// Attack rolls 1d20 and applies the ability modifier, the attack bonus and
// condition deltas. A roll at or above the crit range is a critical threat.
func (r *Ruleset) Attack(in rules.AttackInput) (rules.AttackResult, error) {
	if in.Roller == nil {
		return rules.AttackResult{}, fmt.Errorf("attack roll requires a roller")
	}

	critRange := in.Attack.CritRange
	if critRange <= 0 {
		critRange = defaultCritRange
	}
	ability := in.Attack.Ability
	if ability == "" {
		ability = defaultAttackAbility
	}

	d20 := dice.D20(in.Roller)
	modifier := r.AbilityMod(in.Sheet.Score(ability)) + in.Attack.Bonus + in.Conditions.Attack

	return rules.AttackResult{
		D20:          d20,
		Modifier:     modifier,
		Total:        d20 + modifier,
		IsNat20:      d20 == 20,
		IsNat1:       d20 == 1,
		IsCritThreat: d20 >= critRange,
	}, nil
}

// Damage evaluates the attack's damage formula. On a critical the formula
// total is multiplied by the crit multiplier; condition deltas apply after
// the multiplication. Damage never goes below zero.
func (r *Ruleset) Damage(in rules.DamageInput) (rules.DamageResult, error) {
	if in.Roller == nil {
		return rules.DamageResult{}, fmt.Errorf("damage roll requires a roller")
	}

	formula, err := dice.Parse(in.Attack.DamageFormula)
	if err != nil {
		return rules.DamageResult{}, fmt.Errorf("damage formula for %q: %w", in.Attack.Name, err)
	}

	rolled := formula.Roll(in.Roller)
	total := rolled.Total
	detail := rolled.Detail

	if in.IsCrit {
		multiplier := in.Attack.CritMultiplier
		if multiplier <= 0 {
			multiplier = defaultCritMultiplier
		}
		total *= multiplier
		detail = fmt.Sprintf("(%s)x%d", detail, multiplier)
	}

	total += in.Conditions.Damage
	if total < 0 {
		total = 0
	}

	return rules.DamageResult{Total: total, Detail: detail}, nil
}

// SkillCheck rolls 1d20 plus ability modifier, skill bonus and condition
// deltas, and compares against the DC. A non-positive DC means an open roll
// that always counts as a success.
func (r *Ruleset) SkillCheck(in rules.SkillCheckInput) (rules.SkillCheckResult, error) {
	if in.Roller == nil {
		return rules.SkillCheckResult{}, fmt.Errorf("skill check requires a roller")
	}

	ability := in.Skill.Ability
	if ability == "" {
		ability = "des"
	}

	d20 := dice.D20(in.Roller)
	modifier := r.AbilityMod(in.Sheet.Score(ability)) + in.Skill.Bonus + in.Conditions.Skill
	total := d20 + modifier

	return rules.SkillCheckResult{
		D20:      d20,
		Modifier: modifier,
		Total:    total,
		DC:       in.Skill.DC,
		Success:  in.Skill.DC <= 0 || total >= in.Skill.DC,
	}, nil
}

// Spell rolls the casting check, computes the mana cost with condition
// deltas (never below zero), and evaluates the spell's damage formula when
// it has one.
func (r *Ruleset) Spell(in rules.SpellInput) (rules.SpellResult, error) {
	if in.Roller == nil {
		return rules.SpellResult{}, fmt.Errorf("spell roll requires a roller")
	}

	ability := in.Spell.Ability
	if ability == "" {
		ability = defaultSpellAbility
	}

	d20 := dice.D20(in.Roller)
	modifier := r.AbilityMod(in.Sheet.Score(ability)) + in.Spell.Bonus + in.Conditions.Spell

	cost := in.Spell.CostMP + in.Conditions.CostMP
	if cost < 0 {
		cost = 0
	}

	result := rules.SpellResult{
		D20:      d20,
		Modifier: modifier,
		Total:    d20 + modifier,
		CostMP:   cost,
		Effects:  in.Spell.Effects,
	}

	if in.Spell.DamageFormula != "" {
		formula, err := dice.Parse(in.Spell.DamageFormula)
		if err != nil {
			return rules.SpellResult{}, fmt.Errorf("spell formula for %q: %w", in.Spell.Name, err)
		}
		rolled := formula.Roll(in.Roller)
		result.Damage = rolled.Total
		result.DamageDetail = rolled.Detail
	}

	return result, nil
}

// ConditionModifiers folds the active conditions into numeric deltas using
// the shared catalog.
func (r *Ruleset) ConditionModifiers(ctx rules.ConditionContext) rules.Modifiers {
	return rules.ResolveConditions(ctx)
}
