package projection

import (
	"context"
	"fmt"

	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/event"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/storage"
)

// replayPageSize bounds how many events a replay loads per query.
const replayPageSize = 200

// ReplayError reports the exact event a replay failed on. Replay is
// fail-fast: state derived from a partially applied ledger is worse than an
// error naming the poisoned event.
type ReplayError struct {
	EventID string
	Type    event.Type
	Err     error
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("replay failed at event %s (%s): %v", e.EventID, e.Type, e.Err)
}

func (e *ReplayError) Unwrap() error {
	return e.Err
}

// Rebuild reconstructs every projection for a world from its ledger. The
// reset and the full replay run in one transaction, so readers never observe
// a half-rebuilt world. Returns the number of events applied.
func Rebuild(ctx context.Context, store storage.GameStore, worldID string) (int, error) {
	if store == nil {
		return 0, fmt.Errorf("store is required")
	}
	if worldID == "" {
		return 0, fmt.Errorf("world id is required")
	}

	var applied int
	err := store.InTx(ctx, func(tx storage.GameStore) error {
		if err := tx.ResetProjections(ctx, worldID); err != nil {
			return err
		}

		applier := New(tx)
		var cursor storage.EventCursor
		for {
			events, err := tx.ListEvents(ctx, worldID, cursor, replayPageSize)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				return nil
			}
			for _, evt := range events {
				if err := applier.Apply(ctx, evt); err != nil {
					return &ReplayError{EventID: evt.ID, Type: evt.Type, Err: err}
				}
				applied++
			}
			cursor = storage.EventCursor{Seq: events[len(events)-1].Seq}
		}
	})
	if err != nil {
		return 0, err
	}
	return applied, nil
}
