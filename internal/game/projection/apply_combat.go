package projection

import (
	"context"
	"errors"
	"fmt"

	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/event"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/storage"
)

func (a *Applier) applyCombatStarted(ctx context.Context, evt event.Event) error {
	payload, err := decodePayload[event.CombatStartedPayload](evt)
	if err != nil {
		return err
	}
	if payload.CombatID == "" {
		return fmt.Errorf("%s payload is missing combat_id", evt.Type)
	}

	return a.store.PutCombat(ctx, storage.Combat{
		ID:         payload.CombatID,
		WorldID:    evt.WorldID,
		CampaignID: payload.CampaignID,
		Round:      1,
		TurnIndex:  0,
		IsActive:   true,
		CreatedAt:  evt.Timestamp,
		UpdatedAt:  evt.Timestamp,
	})
}

func (a *Applier) applyCombatEnded(ctx context.Context, evt event.Event) error {
	payload, err := decodePayload[event.CombatEndedPayload](evt)
	if err != nil {
		return err
	}
	if payload.CombatID == "" {
		return fmt.Errorf("%s payload is missing combat_id", evt.Type)
	}

	combat, err := a.store.GetCombat(ctx, payload.CombatID)
	if errors.Is(err, storage.ErrNotFound) {
		combat = storage.Combat{
			ID:         payload.CombatID,
			WorldID:    evt.WorldID,
			CampaignID: evt.CampaignID,
			Round:      1,
			CreatedAt:  evt.Timestamp,
		}
	} else if err != nil {
		return err
	}

	combat.IsActive = false
	if payload.Rounds > 0 {
		combat.Round = payload.Rounds
	}
	combat.UpdatedAt = evt.Timestamp

	return a.store.PutCombat(ctx, combat)
}

func (a *Applier) applyInitiativeRolled(ctx context.Context, evt event.Event) error {
	payload, err := decodePayload[event.InitiativeRolledPayload](evt)
	if err != nil {
		return err
	}
	if payload.CombatID == "" || payload.CombatantID == "" {
		return fmt.Errorf("%s payload is missing combat_id or combatant_id", evt.Type)
	}

	// Tolerate ledgers missing the combat.started row, materializing the
	// combat so the roster insert holds.
	if _, err := a.store.GetCombat(ctx, payload.CombatID); errors.Is(err, storage.ErrNotFound) {
		combat := storage.Combat{
			ID:         payload.CombatID,
			WorldID:    evt.WorldID,
			CampaignID: evt.CampaignID,
			Round:      1,
			IsActive:   true,
			CreatedAt:  evt.Timestamp,
			UpdatedAt:  evt.Timestamp,
		}
		if err := a.store.PutCombat(ctx, combat); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	// The first roll of a batch resets the roster, so re-rolled initiative
	// replays to the latest order instead of accumulating stale combatants.
	if payload.Position == 0 {
		if err := a.store.DeleteCombatants(ctx, payload.CombatID); err != nil {
			return err
		}
	}

	return a.store.PutCombatant(ctx, storage.Combatant{
		ID:         payload.CombatantID,
		CombatID:   payload.CombatID,
		WorldID:    evt.WorldID,
		Name:       payload.Name,
		Kind:       storage.CombatantKind(payload.Kind),
		RefID:      payload.RefID,
		Initiative: payload.Total,
		SortOrder:  payload.Position,
		HPCurrent:  payload.HPCurrent,
		HPMax:      payload.HPMax,
		MPCurrent:  payload.MPCurrent,
		MPMax:      payload.MPMax,
		CreatedAt:  evt.Timestamp,
		UpdatedAt:  evt.Timestamp,
	})
}

func (a *Applier) applyTurnAdvanced(ctx context.Context, evt event.Event) error {
	payload, err := decodePayload[event.TurnAdvancedPayload](evt)
	if err != nil {
		return err
	}
	if payload.CombatID == "" {
		return fmt.Errorf("%s payload is missing combat_id", evt.Type)
	}

	combat, err := a.store.GetCombat(ctx, payload.CombatID)
	if errors.Is(err, storage.ErrNotFound) {
		combat = storage.Combat{
			ID:         payload.CombatID,
			WorldID:    evt.WorldID,
			CampaignID: evt.CampaignID,
			IsActive:   true,
			CreatedAt:  evt.Timestamp,
		}
	} else if err != nil {
		return err
	}

	combat.Round = payload.Round
	combat.TurnIndex = payload.TurnIndex
	combat.UpdatedAt = evt.Timestamp

	return a.store.PutCombat(ctx, combat)
}

func (a *Applier) applyAttackResolved(ctx context.Context, evt event.Event) error {
	payload, err := decodePayload[event.AttackResolvedPayload](evt)
	if err != nil {
		return err
	}
	// A miss or fumble keeps its target for the record but carries no
	// damage, so there is nothing to project.
	if evt.TargetID == "" || payload.Damage <= 0 {
		return nil
	}
	return a.setHP(ctx, evt, evt.TargetID, payload.TargetHPAfter)
}

func (a *Applier) applySpellResolved(ctx context.Context, evt event.Event) error {
	payload, err := decodePayload[event.SpellResolvedPayload](evt)
	if err != nil {
		return err
	}

	if evt.ActorID != "" {
		if err := a.setMP(ctx, evt, evt.ActorID, payload.ActorMPAfter); err != nil {
			return err
		}
	}
	if evt.TargetID != "" && payload.Damage > 0 {
		return a.setHP(ctx, evt, evt.TargetID, payload.TargetHPAfter)
	}
	return nil
}

// setHP writes a resolved hit-point value onto the combatant with the given
// id, falling back to the character projection for out-of-combat targets.
// A target that matches neither is a no-op: the event remains the record.
func (a *Applier) setHP(ctx context.Context, evt event.Event, entityID string, hp int) error {
	combatant, err := a.store.GetCombatant(ctx, entityID)
	if err == nil {
		combatant.HPCurrent = hp
		combatant.UpdatedAt = evt.Timestamp
		return a.store.PutCombatant(ctx, combatant)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	character, err := a.store.GetCharacter(ctx, entityID)
	if err == nil {
		character.HPCurrent = hp
		character.UpdatedAt = evt.Timestamp
		return a.store.PutCharacter(ctx, character)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return nil
}

// setMP mirrors setHP for mana points.
func (a *Applier) setMP(ctx context.Context, evt event.Event, entityID string, mp int) error {
	combatant, err := a.store.GetCombatant(ctx, entityID)
	if err == nil {
		combatant.MPCurrent = mp
		combatant.UpdatedAt = evt.Timestamp
		return a.store.PutCombatant(ctx, combatant)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	character, err := a.store.GetCharacter(ctx, entityID)
	if err == nil {
		character.MPCurrent = mp
		character.UpdatedAt = evt.Timestamp
		return a.store.PutCharacter(ctx, character)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return nil
}
