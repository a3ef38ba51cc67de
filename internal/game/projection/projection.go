// Package projection derives read-model state from ledger events.
//
// Appliers are idempotent: every write is an upsert keyed by ids carried in
// the event payload, so applying the same event twice converges to the same
// state. Unknown event types are no-ops, which keeps replay tolerant of
// ledgers written by newer builds.
package projection

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/event"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/storage"
)

// Applier applies ledger events to projection state.
type Applier struct {
	store storage.GameStore
}

// New creates an applier writing through the given store.
func New(store storage.GameStore) *Applier {
	return &Applier{store: store}
}

// Apply routes an event to its projector. Events with no projection effect
// (notes, skill checks, unknown types) return nil without writing.
func (a *Applier) Apply(ctx context.Context, evt event.Event) error {
	if a == nil || a.store == nil {
		return fmt.Errorf("projection applier is not configured")
	}

	switch evt.Type {
	case event.TypeWorldCreated:
		return a.applyWorldCreated(ctx, evt)
	case event.TypeWorldUpdated:
		return a.applyWorldUpdated(ctx, evt)
	case event.TypeCampaignCreated:
		return a.applyCampaignCreated(ctx, evt)
	case event.TypeCampaignUpdated:
		return a.applyCampaignUpdated(ctx, evt)
	case event.TypeCharacterCreated:
		return a.applyCharacterCreated(ctx, evt)
	case event.TypeCharacterUpdated:
		return a.applyCharacterUpdated(ctx, evt)
	case event.TypeCombatStarted:
		return a.applyCombatStarted(ctx, evt)
	case event.TypeCombatEnded:
		return a.applyCombatEnded(ctx, evt)
	case event.TypeInitiativeRolled:
		return a.applyInitiativeRolled(ctx, evt)
	case event.TypeTurnAdvanced:
		return a.applyTurnAdvanced(ctx, evt)
	case event.TypeAttackResolved:
		return a.applyAttackResolved(ctx, evt)
	case event.TypeSpellResolved:
		return a.applySpellResolved(ctx, evt)
	case event.TypeConditionApplied:
		return a.applyConditionApplied(ctx, evt)
	case event.TypeConditionRemoved:
		return a.applyConditionRemoved(ctx, evt)
	case event.TypeSkillResolved, event.TypeNoteAdded:
		// Ledger-only events; nothing to project.
		return nil
	default:
		// Unknown event types are preserved in the ledger but project nothing.
		return nil
	}
}

func decodePayload[T any](evt event.Event) (T, error) {
	var payload T
	if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
		return payload, fmt.Errorf("decode %s payload: %w", evt.Type, err)
	}
	return payload, nil
}
