package projection

import (
	"context"
	"errors"
	"fmt"

	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/event"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/storage"
)

func (a *Applier) applyCharacterCreated(ctx context.Context, evt event.Event) error {
	payload, err := decodePayload[event.CharacterCreatedPayload](evt)
	if err != nil {
		return err
	}
	if payload.CharacterID == "" {
		return fmt.Errorf("%s payload is missing character_id", evt.Type)
	}

	kind := storage.CombatantKind(payload.Kind)
	if kind == "" {
		kind = storage.KindCharacter
	}

	return a.store.PutCharacter(ctx, storage.Character{
		ID:         payload.CharacterID,
		WorldID:    evt.WorldID,
		CampaignID: payload.CampaignID,
		Name:       payload.Name,
		Kind:       kind,
		Abilities:  payload.Abilities,
		HPMax:      payload.HPMax,
		HPCurrent:  payload.HPMax,
		MPMax:      payload.MPMax,
		MPCurrent:  payload.MPMax,
		CreatedAt:  evt.Timestamp,
		UpdatedAt:  evt.Timestamp,
	})
}

func (a *Applier) applyCharacterUpdated(ctx context.Context, evt event.Event) error {
	payload, err := decodePayload[event.CharacterUpdatedPayload](evt)
	if err != nil {
		return err
	}
	if payload.CharacterID == "" {
		return fmt.Errorf("%s payload is missing character_id", evt.Type)
	}

	character, err := a.store.GetCharacter(ctx, payload.CharacterID)
	if errors.Is(err, storage.ErrNotFound) {
		character = storage.Character{
			ID:         payload.CharacterID,
			WorldID:    evt.WorldID,
			CampaignID: evt.CampaignID,
			Kind:       storage.KindCharacter,
			CreatedAt:  evt.Timestamp,
		}
	} else if err != nil {
		return err
	}

	if payload.Name != nil {
		character.Name = *payload.Name
	}
	if payload.Abilities != nil {
		character.Abilities = payload.Abilities
	}
	if payload.HPMax != nil {
		character.HPMax = *payload.HPMax
		if character.HPCurrent > character.HPMax {
			character.HPCurrent = character.HPMax
		}
	}
	if payload.MPMax != nil {
		character.MPMax = *payload.MPMax
		if character.MPCurrent > character.MPMax {
			character.MPCurrent = character.MPMax
		}
	}
	character.UpdatedAt = evt.Timestamp

	return a.store.PutCharacter(ctx, character)
}
