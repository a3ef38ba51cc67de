package rules

import "strings"

// actorConditions maps a condition on the acting combatant to the deltas it
// imposes on that combatant's own rolls.
var actorConditions = map[string]Modifiers{
	"abalado":    {Attack: -2, Skill: -2, Spell: -2},
	"atordoado":  {Attack: -5, Skill: -5, Spell: -5},
	"caido":      {Attack: -5},
	"cego":       {Attack: -2, Skill: -2},
	"enjoado":    {Attack: -2, Damage: -2},
	"envenenado": {Attack: -2, Skill: -2},
	"exausto":    {Attack: -3, Skill: -3, Spell: -3, CostMP: 1},
	"fraco":      {Attack: -2, Damage: -2, Skill: -2},
	"abencoado":  {Attack: 1, Damage: 1, Skill: 1},
	"inspirado":  {Attack: 2, Skill: 2, Spell: 2},
}

// targetConditions maps a condition on the target to the deltas it grants
// the attacker.
var targetConditions = map[string]Modifiers{
	"caido":     {Attack: 2},
	"atordoado": {Attack: 2},
	"cego":      {Attack: 2},
	"indefeso":  {Attack: 5},
}

// LookupCondition returns the actor-side deltas for a known condition name.
func LookupCondition(name string) (Modifiers, bool) {
	mods, ok := actorConditions[normalizeCondition(name)]
	return mods, ok
}

// KnownCondition reports whether name is in the condition catalog on either
// side.
func KnownCondition(name string) bool {
	key := normalizeCondition(name)
	if _, ok := actorConditions[key]; ok {
		return true
	}
	_, ok := targetConditions[key]
	return ok
}

// ConditionNames lists the catalog's actor-side condition names.
func ConditionNames() []string {
	names := make([]string, 0, len(actorConditions))
	for name := range actorConditions {
		names = append(names, name)
	}
	return names
}

// ResolveConditions sums the deltas of every active condition in ctx.
// Unknown condition names contribute nothing, so homebrew conditions are
// narration-only rather than an error.
func ResolveConditions(ctx ConditionContext) Modifiers {
	var total Modifiers
	for _, name := range ctx.Actor {
		if mods, ok := actorConditions[normalizeCondition(name)]; ok {
			total = total.Add(mods)
		}
	}
	for _, name := range ctx.Target {
		if mods, ok := targetConditions[normalizeCondition(name)]; ok {
			total = total.Add(mods)
		}
	}
	return total
}

func normalizeCondition(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
