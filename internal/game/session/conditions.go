package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/dispatch"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/event"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/storage"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/platform/id"
)

// ApplyCondition records a condition.applied event on a target. Names
// outside the ruleset catalog are allowed; they carry narrative weight but
// no numeric modifiers.
func (s *Service) ApplyCondition(ctx context.Context, worldID, targetID, name, source string) (storage.AppliedCondition, error) {
	if err := s.ready(); err != nil {
		return storage.AppliedCondition{}, err
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return storage.AppliedCondition{}, &dispatch.ValidationError{Msg: "condition name is required"}
	}
	if strings.TrimSpace(targetID) == "" {
		return storage.AppliedCondition{}, &dispatch.ValidationError{Msg: "condition target is required"}
	}

	conditionID, err := id.NewID()
	if err != nil {
		return storage.AppliedCondition{}, fmt.Errorf("assign condition id: %w", err)
	}

	payload, err := event.MarshalPayload(event.ConditionAppliedPayload{
		ConditionID: conditionID,
		Name:        name,
		Source:      strings.TrimSpace(source),
	})
	if err != nil {
		return storage.AppliedCondition{}, err
	}

	if _, err := s.dispatcher.Dispatch(ctx, event.Event{
		WorldID:     worldID,
		TargetID:    targetID,
		Type:        event.TypeConditionApplied,
		PayloadJSON: payload,
	}); err != nil {
		return storage.AppliedCondition{}, err
	}
	return s.store.GetCondition(ctx, conditionID)
}

// RemoveCondition records a condition.removed event. Removing a condition
// that is already gone still appends the event; the projection side is a
// no-op.
func (s *Service) RemoveCondition(ctx context.Context, worldID, conditionID string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(conditionID) == "" {
		return &dispatch.ValidationError{Msg: "condition id is required"}
	}

	payload, err := event.MarshalPayload(event.ConditionRemovedPayload{ConditionID: conditionID})
	if err != nil {
		return err
	}

	_, err = s.dispatcher.Dispatch(ctx, event.Event{
		WorldID:     worldID,
		Type:        event.TypeConditionRemoved,
		PayloadJSON: payload,
	})
	return err
}

// ListConditions reads the active conditions on a target.
func (s *Service) ListConditions(ctx context.Context, targetID string) ([]storage.AppliedCondition, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.store.ListConditionsByTarget(ctx, targetID)
}
