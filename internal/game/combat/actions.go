package combat

import (
	"context"
	"errors"
	"fmt"

	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/dispatch"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/event"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/rules"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/storage"
)

// ActionParams scopes an action resolution. CombatID may be empty for
// actions resolved outside an encounter; CampaignID selects the ruleset and
// is read from the combat when a combat is given.
type ActionParams struct {
	WorldID    string
	CampaignID string
	CombatID   string
	SessionID  string
	ActorID    string
	TargetID   string
}

// AttackOutcome is the resolved result of an attack action.
type AttackOutcome struct {
	Event          event.Event
	Roll           rules.AttackResult
	Damage         rules.DamageResult
	TargetHPBefore int
	TargetHPAfter  int
}

// SpellOutcome is the resolved result of a spell action.
type SpellOutcome struct {
	Event          event.Event
	Roll           rules.SpellResult
	ActorMPBefore  int
	ActorMPAfter   int
	TargetHPBefore int
	TargetHPAfter  int
}

// SkillOutcome is the resolved result of a skill check.
type SkillOutcome struct {
	Event event.Event
	Roll  rules.SkillCheckResult
}

// entity is the resolved view of an actor or target: a combatant when one
// exists, otherwise a character projection.
type entity struct {
	id        string
	name      string
	sheet     rules.Sheet
	hpCurrent int
	hpMax     int
	mpCurrent int
	mpMax     int
}

func resolveEntity(ctx context.Context, tx storage.GameStore, entityID string) (entity, error) {
	combatant, err := tx.GetCombatant(ctx, entityID)
	if err == nil {
		e := entity{
			id:        combatant.ID,
			name:      combatant.Name,
			hpCurrent: combatant.HPCurrent,
			hpMax:     combatant.HPMax,
			mpCurrent: combatant.MPCurrent,
			mpMax:     combatant.MPMax,
		}
		if combatant.RefID != "" {
			character, err := tx.GetCharacter(ctx, combatant.RefID)
			if err == nil {
				e.sheet = rules.Sheet{Abilities: character.Abilities}
			} else if !errors.Is(err, storage.ErrNotFound) {
				return entity{}, err
			}
		}
		return e, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return entity{}, err
	}

	character, err := tx.GetCharacter(ctx, entityID)
	if err != nil {
		return entity{}, err
	}
	return entity{
		id:        character.ID,
		name:      character.Name,
		sheet:     rules.Sheet{Abilities: character.Abilities},
		hpCurrent: character.HPCurrent,
		hpMax:     character.HPMax,
		mpCurrent: character.MPCurrent,
		mpMax:     character.MPMax,
	}, nil
}

// rulesetFor picks the ruleset from the campaign scoping the action,
// falling back to the default for unscoped actions.
func (s *Service) rulesetFor(ctx context.Context, tx storage.GameStore, params *ActionParams) (rules.Ruleset, error) {
	if params.CombatID != "" {
		combat, err := tx.GetCombat(ctx, params.CombatID)
		if err != nil {
			return nil, err
		}
		if !combat.IsActive {
			return nil, ErrCombatNotActive
		}
		params.CampaignID = combat.CampaignID
		if params.WorldID == "" {
			params.WorldID = combat.WorldID
		}
	}
	if params.CampaignID == "" {
		return s.rulesets.Default(), nil
	}
	campaign, err := tx.GetCampaign(ctx, params.CampaignID)
	if err != nil {
		return nil, err
	}
	return s.rulesets.Resolve(campaign.RulesetID), nil
}

func conditionContext(ctx context.Context, tx storage.GameStore, actorID, targetID string) (rules.ConditionContext, error) {
	var cc rules.ConditionContext
	if actorID != "" {
		conditions, err := tx.ListConditionsByTarget(ctx, actorID)
		if err != nil {
			return rules.ConditionContext{}, err
		}
		for _, condition := range conditions {
			cc.Actor = append(cc.Actor, condition.Name)
		}
	}
	if targetID != "" {
		conditions, err := tx.ListConditionsByTarget(ctx, targetID)
		if err != nil {
			return rules.ConditionContext{}, err
		}
		for _, condition := range conditions {
			cc.Target = append(cc.Target, condition.Name)
		}
	}
	return cc, nil
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}

// ResolveAttack rolls an attack through the campaign's ruleset, rolls
// damage unless the attack fumbled, applies the result to the target's hit
// points, and records everything as one action.attack_resolved event.
func (s *Service) ResolveAttack(ctx context.Context, params ActionParams, attack rules.Attack) (AttackOutcome, error) {
	if err := s.ready(); err != nil {
		return AttackOutcome{}, err
	}
	if params.ActorID == "" {
		return AttackOutcome{}, &dispatch.ValidationError{Msg: "actor is required"}
	}
	if attack.DamageFormula == "" {
		return AttackOutcome{}, &dispatch.ValidationError{Msg: "attack damage formula is required"}
	}

	var outcome AttackOutcome
	err := s.store.InTx(ctx, func(tx storage.GameStore) error {
		ruleset, err := s.rulesetFor(ctx, tx, &params)
		if err != nil {
			return err
		}
		actor, err := resolveEntity(ctx, tx, params.ActorID)
		if err != nil {
			return err
		}

		cc, err := conditionContext(ctx, tx, params.ActorID, params.TargetID)
		if err != nil {
			return err
		}
		mods := ruleset.ConditionModifiers(cc)

		roll, err := ruleset.Attack(rules.AttackInput{
			Sheet:      actor.sheet,
			Attack:     attack,
			Conditions: mods,
			Roller:     s.roller,
		})
		if err != nil {
			return err
		}
		outcome.Roll = roll

		isCrit := roll.IsCritThreat
		if !roll.IsNat1 {
			damage, err := ruleset.Damage(rules.DamageInput{
				Sheet:      actor.sheet,
				Attack:     attack,
				IsCrit:     isCrit,
				Conditions: mods,
				Roller:     s.roller,
			})
			if err != nil {
				return err
			}
			outcome.Damage = damage
		}

		if params.TargetID != "" && outcome.Damage.Total > 0 {
			target, err := resolveEntity(ctx, tx, params.TargetID)
			if err != nil {
				return err
			}
			outcome.TargetHPBefore = target.hpCurrent
			outcome.TargetHPAfter = clamp(target.hpCurrent-outcome.Damage.Total, 0, target.hpMax)
		}

		payload, err := event.MarshalPayload(event.AttackResolvedPayload{
			CombatID:       params.CombatID,
			AttackName:     attack.Name,
			D20:            roll.D20,
			Modifier:       roll.Modifier,
			Total:          roll.Total,
			IsNat20:        roll.IsNat20,
			IsNat1:         roll.IsNat1,
			IsCritThreat:   roll.IsCritThreat,
			IsCrit:         isCrit,
			Damage:         outcome.Damage.Total,
			DamageDetail:   outcome.Damage.Detail,
			TargetHPBefore: outcome.TargetHPBefore,
			TargetHPAfter:  outcome.TargetHPAfter,
		})
		if err != nil {
			return err
		}

		stored, err := s.dispatcher.DispatchTx(ctx, tx, event.Event{
			WorldID:     params.WorldID,
			CampaignID:  params.CampaignID,
			CombatID:    params.CombatID,
			SessionID:   params.SessionID,
			Type:        event.TypeAttackResolved,
			ActorID:     params.ActorID,
			TargetID:    params.TargetID,
			PayloadJSON: payload,
		})
		if err != nil {
			return err
		}
		outcome.Event = stored
		return nil
	})
	if err != nil {
		return AttackOutcome{}, err
	}
	return outcome, nil
}

// ResolveSpell rolls a spell, deducts its mana cost from the caster, applies
// spell damage to the target when there is one, and records one
// action.spell_resolved event. Casting beyond the caster's mana fails with
// ErrInsufficientMP and leaves the ledger untouched.
func (s *Service) ResolveSpell(ctx context.Context, params ActionParams, spell rules.Spell) (SpellOutcome, error) {
	if err := s.ready(); err != nil {
		return SpellOutcome{}, err
	}
	if params.ActorID == "" {
		return SpellOutcome{}, &dispatch.ValidationError{Msg: "actor is required"}
	}

	var outcome SpellOutcome
	err := s.store.InTx(ctx, func(tx storage.GameStore) error {
		ruleset, err := s.rulesetFor(ctx, tx, &params)
		if err != nil {
			return err
		}
		actor, err := resolveEntity(ctx, tx, params.ActorID)
		if err != nil {
			return err
		}

		cc, err := conditionContext(ctx, tx, params.ActorID, params.TargetID)
		if err != nil {
			return err
		}
		mods := ruleset.ConditionModifiers(cc)

		roll, err := ruleset.Spell(rules.SpellInput{
			Sheet:      actor.sheet,
			Spell:      spell,
			Conditions: mods,
			Roller:     s.roller,
		})
		if err != nil {
			return err
		}
		if roll.CostMP > actor.mpCurrent {
			return fmt.Errorf("%w: need %d, have %d", ErrInsufficientMP, roll.CostMP, actor.mpCurrent)
		}
		outcome.Roll = roll
		outcome.ActorMPBefore = actor.mpCurrent
		outcome.ActorMPAfter = actor.mpCurrent - roll.CostMP

		if params.TargetID != "" && roll.Damage > 0 {
			target, err := resolveEntity(ctx, tx, params.TargetID)
			if err != nil {
				return err
			}
			outcome.TargetHPBefore = target.hpCurrent
			outcome.TargetHPAfter = clamp(target.hpCurrent-roll.Damage, 0, target.hpMax)
		}

		payload, err := event.MarshalPayload(event.SpellResolvedPayload{
			CombatID:       params.CombatID,
			SpellName:      spell.Name,
			D20:            roll.D20,
			Modifier:       roll.Modifier,
			Total:          roll.Total,
			CostMP:         roll.CostMP,
			Damage:         roll.Damage,
			DamageDetail:   roll.DamageDetail,
			Effects:        roll.Effects,
			ActorMPBefore:  outcome.ActorMPBefore,
			ActorMPAfter:   outcome.ActorMPAfter,
			TargetHPBefore: outcome.TargetHPBefore,
			TargetHPAfter:  outcome.TargetHPAfter,
		})
		if err != nil {
			return err
		}

		stored, err := s.dispatcher.DispatchTx(ctx, tx, event.Event{
			WorldID:     params.WorldID,
			CampaignID:  params.CampaignID,
			CombatID:    params.CombatID,
			SessionID:   params.SessionID,
			Type:        event.TypeSpellResolved,
			ActorID:     params.ActorID,
			TargetID:    params.TargetID,
			PayloadJSON: payload,
		})
		if err != nil {
			return err
		}
		outcome.Event = stored
		return nil
	})
	if err != nil {
		return SpellOutcome{}, err
	}
	return outcome, nil
}

// ResolveSkill rolls a skill check and records it. Skill checks change no
// projection state; the ledger entry is the whole effect.
func (s *Service) ResolveSkill(ctx context.Context, params ActionParams, skill rules.Skill) (SkillOutcome, error) {
	if err := s.ready(); err != nil {
		return SkillOutcome{}, err
	}
	if params.ActorID == "" {
		return SkillOutcome{}, &dispatch.ValidationError{Msg: "actor is required"}
	}

	var outcome SkillOutcome
	err := s.store.InTx(ctx, func(tx storage.GameStore) error {
		ruleset, err := s.rulesetFor(ctx, tx, &params)
		if err != nil {
			return err
		}
		actor, err := resolveEntity(ctx, tx, params.ActorID)
		if err != nil {
			return err
		}

		cc, err := conditionContext(ctx, tx, params.ActorID, "")
		if err != nil {
			return err
		}
		mods := ruleset.ConditionModifiers(cc)

		roll, err := ruleset.SkillCheck(rules.SkillCheckInput{
			Sheet:      actor.sheet,
			Skill:      skill,
			Conditions: mods,
			Roller:     s.roller,
		})
		if err != nil {
			return err
		}
		outcome.Roll = roll

		payload, err := event.MarshalPayload(event.SkillResolvedPayload{
			CombatID:  params.CombatID,
			SkillName: skill.Name,
			D20:       roll.D20,
			Modifier:  roll.Modifier,
			Total:     roll.Total,
			DC:        roll.DC,
			Success:   roll.Success,
		})
		if err != nil {
			return err
		}

		stored, err := s.dispatcher.DispatchTx(ctx, tx, event.Event{
			WorldID:     params.WorldID,
			CampaignID:  params.CampaignID,
			CombatID:    params.CombatID,
			SessionID:   params.SessionID,
			Type:        event.TypeSkillResolved,
			ActorID:     params.ActorID,
			PayloadJSON: payload,
		})
		if err != nil {
			return err
		}
		outcome.Event = stored
		return nil
	})
	if err != nil {
		return SkillOutcome{}, err
	}
	return outcome, nil
}
