package projection

import (
	"context"
	"errors"

	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/event"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/storage"
)

func (a *Applier) applyWorldCreated(ctx context.Context, evt event.Event) error {
	payload, err := decodePayload[event.WorldCreatedPayload](evt)
	if err != nil {
		return err
	}

	return a.store.PutWorld(ctx, storage.World{
		ID:          evt.WorldID,
		Title:       payload.Title,
		Description: payload.Description,
		CreatedAt:   evt.Timestamp,
		UpdatedAt:   evt.Timestamp,
	})
}

func (a *Applier) applyWorldUpdated(ctx context.Context, evt event.Event) error {
	payload, err := decodePayload[event.WorldUpdatedPayload](evt)
	if err != nil {
		return err
	}

	world, err := a.store.GetWorld(ctx, evt.WorldID)
	if errors.Is(err, storage.ErrNotFound) {
		world = storage.World{ID: evt.WorldID, CreatedAt: evt.Timestamp}
	} else if err != nil {
		return err
	}

	if payload.Title != nil {
		world.Title = *payload.Title
	}
	if payload.Description != nil {
		world.Description = *payload.Description
	}
	world.UpdatedAt = evt.Timestamp

	return a.store.PutWorld(ctx, world)
}
