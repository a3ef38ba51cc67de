package tormenta

import (
	"testing"

	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/dice"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/rules"
)

func fixedRoller(values ...int) dice.Roller {
	i := 0
	return dice.RollFunc(func(sides int) int {
		value := values[i]
		i++
		return value
	})
}

func TestAbilityMod(t *testing.T) {
	ruleset := New()
	cases := []struct {
		score int
		want  int
	}{
		{18, 4},
		{16, 3},
		{11, 0},
		{10, 0},
		{9, -1},
		{8, -1},
		{7, -2},
		{3, -4},
	}
	for _, tc := range cases {
		if got := ruleset.AbilityMod(tc.score); got != tc.want {
			t.Fatalf("score %d: expected %d, got %d", tc.score, tc.want, got)
		}
	}
}

func TestAbilitiesAndResources(t *testing.T) {
	ruleset := New()
	if got := len(ruleset.Abilities()); got != 6 {
		t.Fatalf("expected 6 abilities, got %d", got)
	}
	resources := ruleset.Resources()
	if len(resources) != 2 || resources[0].Key != "pv" || resources[1].Key != "pm" {
		t.Fatalf("unexpected resources: %+v", resources)
	}
}

func TestAttackAppliesModifiers(t *testing.T) {
	ruleset := New()
	result, err := ruleset.Attack(rules.AttackInput{
		Sheet:      rules.Sheet{Abilities: map[string]int{"for": 16}},
		Attack:     rules.Attack{Name: "espada longa", Ability: "for", Bonus: 2},
		Conditions: rules.Modifiers{Attack: -2},
		Roller:     fixedRoller(12),
	})
	if err != nil {
		t.Fatalf("attack: %v", err)
	}
	if result.D20 != 12 {
		t.Fatalf("expected d20 12, got %d", result.D20)
	}
	if result.Modifier != 3 {
		t.Fatalf("expected modifier 3, got %d", result.Modifier)
	}
	if result.Total != 15 {
		t.Fatalf("expected total 15, got %d", result.Total)
	}
	if result.IsNat20 || result.IsNat1 || result.IsCritThreat {
		t.Fatalf("unexpected flags: %+v", result)
	}
}

func TestAttackCritRange(t *testing.T) {
	ruleset := New()
	attack := rules.Attack{Name: "rapieira", CritRange: 19}

	for roll, want := range map[int]bool{18: false, 19: true, 20: true} {
		result, err := ruleset.Attack(rules.AttackInput{
			Attack: attack,
			Roller: fixedRoller(roll),
		})
		if err != nil {
			t.Fatalf("attack: %v", err)
		}
		if result.IsCritThreat != want {
			t.Fatalf("roll %d: expected crit threat %v, got %v", roll, want, result.IsCritThreat)
		}
	}
}

func TestAttackNaturalRolls(t *testing.T) {
	ruleset := New()

	nat20, err := ruleset.Attack(rules.AttackInput{Attack: rules.Attack{}, Roller: fixedRoller(20)})
	if err != nil {
		t.Fatalf("attack: %v", err)
	}
	if !nat20.IsNat20 || !nat20.IsCritThreat {
		t.Fatalf("expected nat20 crit threat, got %+v", nat20)
	}

	nat1, err := ruleset.Attack(rules.AttackInput{Attack: rules.Attack{}, Roller: fixedRoller(1)})
	if err != nil {
		t.Fatalf("attack: %v", err)
	}
	if !nat1.IsNat1 || nat1.IsCritThreat {
		t.Fatalf("expected nat1 without crit threat, got %+v", nat1)
	}
}

func TestDamageCritMultiplier(t *testing.T) {
	ruleset := New()

	result, err := ruleset.Damage(rules.DamageInput{
		Attack: rules.Attack{Name: "espada", DamageFormula: "1d6+2"},
		IsCrit: true,
		Roller: fixedRoller(4),
	})
	if err != nil {
		t.Fatalf("damage: %v", err)
	}
	if result.Total != 12 {
		t.Fatalf("expected (4+2)x2=12, got %d", result.Total)
	}
	if result.Detail != "(1d6[4]+2)x2" {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestDamageWithoutCrit(t *testing.T) {
	ruleset := New()
	result, err := ruleset.Damage(rules.DamageInput{
		Attack: rules.Attack{Name: "adaga", DamageFormula: "1d4+1"},
		Roller: fixedRoller(3),
	})
	if err != nil {
		t.Fatalf("damage: %v", err)
	}
	if result.Total != 4 {
		t.Fatalf("expected 4, got %d", result.Total)
	}
	if result.Detail != "1d4[3]+1" {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestDamageNeverNegative(t *testing.T) {
	ruleset := New()
	result, err := ruleset.Damage(rules.DamageInput{
		Attack:     rules.Attack{Name: "soco", DamageFormula: "1d4"},
		Conditions: rules.Modifiers{Damage: -10},
		Roller:     fixedRoller(2),
	})
	if err != nil {
		t.Fatalf("damage: %v", err)
	}
	if result.Total != 0 {
		t.Fatalf("expected clamp to 0, got %d", result.Total)
	}
}

func TestDamageRejectsBadFormula(t *testing.T) {
	ruleset := New()
	if _, err := ruleset.Damage(rules.DamageInput{
		Attack: rules.Attack{Name: "espada", DamageFormula: "banana"},
		Roller: fixedRoller(1),
	}); err == nil {
		t.Fatal("expected error for invalid formula")
	}
}

func TestSkillCheckAgainstDC(t *testing.T) {
	ruleset := New()
	result, err := ruleset.SkillCheck(rules.SkillCheckInput{
		Sheet:  rules.Sheet{Abilities: map[string]int{"des": 14}},
		Skill:  rules.Skill{Name: "furtividade", Ability: "des", Bonus: 3, DC: 15},
		Roller: fixedRoller(10),
	})
	if err != nil {
		t.Fatalf("skill check: %v", err)
	}
	if result.Total != 15 {
		t.Fatalf("expected total 15, got %d", result.Total)
	}
	if !result.Success {
		t.Fatal("expected success meeting the DC")
	}

	failed, err := ruleset.SkillCheck(rules.SkillCheckInput{
		Skill:  rules.Skill{Name: "atletismo", Ability: "for", DC: 15},
		Roller: fixedRoller(10),
	})
	if err != nil {
		t.Fatalf("skill check: %v", err)
	}
	if failed.Success {
		t.Fatalf("expected failure, got %+v", failed)
	}
}

func TestSkillCheckOpenRollSucceeds(t *testing.T) {
	ruleset := New()
	result, err := ruleset.SkillCheck(rules.SkillCheckInput{
		Skill:  rules.Skill{Name: "percepcao", Ability: "sab"},
		Roller: fixedRoller(2),
	})
	if err != nil {
		t.Fatalf("skill check: %v", err)
	}
	if !result.Success {
		t.Fatal("expected open roll to succeed")
	}
}

func TestSpellCostAndDamage(t *testing.T) {
	ruleset := New()
	result, err := ruleset.Spell(rules.SpellInput{
		Sheet: rules.Sheet{Abilities: map[string]int{"int": 18}},
		Spell: rules.Spell{
			Name:          "seta infalivel",
			CostMP:        1,
			DamageFormula: "2d4",
			Effects:       []string{"dano de essência"},
		},
		Conditions: rules.Modifiers{CostMP: 1},
		Roller:     fixedRoller(11, 3, 2),
	})
	if err != nil {
		t.Fatalf("spell: %v", err)
	}
	if result.Total != 15 {
		t.Fatalf("expected total 15, got %d", result.Total)
	}
	if result.CostMP != 2 {
		t.Fatalf("expected cost 2, got %d", result.CostMP)
	}
	if result.Damage != 5 {
		t.Fatalf("expected damage 5, got %d", result.Damage)
	}
	if result.DamageDetail != "2d4[3,2]" {
		t.Fatalf("unexpected detail %q", result.DamageDetail)
	}
	if len(result.Effects) != 1 {
		t.Fatalf("expected effects to pass through, got %+v", result.Effects)
	}
}

func TestSpellCostNeverNegative(t *testing.T) {
	ruleset := New()
	result, err := ruleset.Spell(rules.SpellInput{
		Spell:      rules.Spell{Name: "luz", CostMP: 1},
		Conditions: rules.Modifiers{CostMP: -3},
		Roller:     fixedRoller(10),
	})
	if err != nil {
		t.Fatalf("spell: %v", err)
	}
	if result.CostMP != 0 {
		t.Fatalf("expected cost clamp to 0, got %d", result.CostMP)
	}
}

func TestConditionModifiersDelegatesToCatalog(t *testing.T) {
	ruleset := New()
	mods := ruleset.ConditionModifiers(rules.ConditionContext{Actor: []string{"cego"}})
	if mods.Attack != -2 {
		t.Fatalf("expected attack -2, got %d", mods.Attack)
	}
}

func TestRulesetSatisfiesInterface(t *testing.T) {
	var _ rules.Ruleset = New()
}
