package projection

import (
	"context"
	"errors"
	"fmt"

	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/event"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/storage"
)

func (a *Applier) applyCampaignCreated(ctx context.Context, evt event.Event) error {
	payload, err := decodePayload[event.CampaignCreatedPayload](evt)
	if err != nil {
		return err
	}
	if payload.CampaignID == "" {
		return fmt.Errorf("%s payload is missing campaign_id", evt.Type)
	}

	return a.store.PutCampaign(ctx, storage.Campaign{
		ID:          payload.CampaignID,
		WorldID:     evt.WorldID,
		Name:        payload.Name,
		Description: payload.Description,
		RulesetID:   payload.RulesetID,
		CreatedAt:   evt.Timestamp,
		UpdatedAt:   evt.Timestamp,
	})
}

func (a *Applier) applyCampaignUpdated(ctx context.Context, evt event.Event) error {
	payload, err := decodePayload[event.CampaignUpdatedPayload](evt)
	if err != nil {
		return err
	}
	if payload.CampaignID == "" {
		return fmt.Errorf("%s payload is missing campaign_id", evt.Type)
	}

	campaign, err := a.store.GetCampaign(ctx, payload.CampaignID)
	if errors.Is(err, storage.ErrNotFound) {
		campaign = storage.Campaign{
			ID:        payload.CampaignID,
			WorldID:   evt.WorldID,
			CreatedAt: evt.Timestamp,
		}
	} else if err != nil {
		return err
	}

	if payload.Name != nil {
		campaign.Name = *payload.Name
	}
	if payload.Description != nil {
		campaign.Description = *payload.Description
	}
	if payload.RulesetID != nil {
		campaign.RulesetID = *payload.RulesetID
	}
	campaign.UpdatedAt = evt.Timestamp

	return a.store.PutCampaign(ctx, campaign)
}
