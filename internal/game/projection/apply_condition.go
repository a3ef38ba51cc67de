package projection

import (
	"context"
	"fmt"

	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/event"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/storage"
)

func (a *Applier) applyConditionApplied(ctx context.Context, evt event.Event) error {
	payload, err := decodePayload[event.ConditionAppliedPayload](evt)
	if err != nil {
		return err
	}
	if payload.ConditionID == "" {
		return fmt.Errorf("%s payload is missing condition_id", evt.Type)
	}

	targetID := evt.TargetID
	if targetID == "" {
		targetID = evt.ActorID
	}
	if targetID == "" {
		return fmt.Errorf("%s event is missing a target", evt.Type)
	}

	return a.store.PutCondition(ctx, storage.AppliedCondition{
		ID:        payload.ConditionID,
		WorldID:   evt.WorldID,
		TargetID:  targetID,
		Name:      payload.Name,
		Source:    payload.Source,
		AppliedAt: evt.Timestamp,
	})
}

func (a *Applier) applyConditionRemoved(ctx context.Context, evt event.Event) error {
	payload, err := decodePayload[event.ConditionRemovedPayload](evt)
	if err != nil {
		return err
	}
	if payload.ConditionID == "" {
		return fmt.Errorf("%s payload is missing condition_id", evt.Type)
	}

	// DeleteCondition is a no-op when the row is already gone, so removals
	// replay cleanly.
	return a.store.DeleteCondition(ctx, payload.ConditionID)
}
