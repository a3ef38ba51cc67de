package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/event"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/storage"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/platform/id"
)

const eventColumns = `id, world_id, seq, campaign_id, combat_id, session_id,
event_type, scope, visibility, actor_id, target_id, timestamp, payload_json`

// AppendEvent validates evt, assigns its identity and ledger position, and
// appends it to the world ledger. The ledger owns event identity: IDs, seqs,
// and timestamps presented by the caller are rejected or defaulted by
// normalization. Seq is allocated from a per-world counter, so events
// appended in the same millisecond still carry distinct, ordered positions.
func (s *Store) AppendEvent(ctx context.Context, evt event.Event) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	if err := s.ready(); err != nil {
		return event.Event{}, err
	}

	normalized, err := event.NormalizeForAppend(evt)
	if err != nil {
		return event.Event{}, err
	}
	evt = normalized

	eventID, err := id.NewID()
	if err != nil {
		return event.Event{}, fmt.Errorf("assign event id: %w", err)
	}
	evt.ID = eventID
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	evt.Timestamp = evt.Timestamp.UTC().Truncate(time.Millisecond)

	seq, err := s.nextEventSeq(ctx, evt.WorldID)
	if err != nil {
		return event.Event{}, err
	}
	evt.Seq = seq

	_, err = s.q.ExecContext(
		ctx,
		`INSERT INTO events (`+eventColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		evt.ID,
		evt.WorldID,
		evt.Seq,
		evt.CampaignID,
		evt.CombatID,
		evt.SessionID,
		string(evt.Type),
		string(evt.Scope),
		string(evt.Visibility),
		evt.ActorID,
		evt.TargetID,
		toMillis(evt.Timestamp),
		evt.PayloadJSON,
	)
	if err != nil {
		return event.Event{}, fmt.Errorf("append event: %w", err)
	}
	return evt, nil
}

// nextEventSeq claims the next ledger position for a world.
func (s *Store) nextEventSeq(ctx context.Context, worldID string) (uint64, error) {
	_, err := s.q.ExecContext(
		ctx,
		`INSERT INTO event_seqs (world_id, next_seq) VALUES (?, 1)
		 ON CONFLICT (world_id) DO NOTHING`,
		worldID,
	)
	if err != nil {
		return 0, fmt.Errorf("init event seq: %w", err)
	}

	var seq uint64
	err = s.q.QueryRowContext(
		ctx,
		`SELECT next_seq FROM event_seqs WHERE world_id = ?`,
		worldID,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("get event seq: %w", err)
	}

	_, err = s.q.ExecContext(
		ctx,
		`UPDATE event_seqs SET next_seq = next_seq + 1 WHERE world_id = ?`,
		worldID,
	)
	if err != nil {
		return 0, fmt.Errorf("increment event seq: %w", err)
	}
	return seq, nil
}

// ListEvents returns events strictly after the cursor, ordered by seq asc.
func (s *Store) ListEvents(ctx context.Context, worldID string, after storage.EventCursor, limit int) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	worldID = strings.TrimSpace(worldID)
	if worldID == "" {
		return nil, fmt.Errorf("world id is required")
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.q.QueryContext(
		ctx,
		`SELECT `+eventColumns+`
		 FROM events
		 WHERE world_id = ? AND seq > ?
		 ORDER BY seq ASC
		 LIMIT ?`,
		worldID,
		after.Seq,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		evt, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return events, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (event.Event, error) {
	var evt event.Event
	var eventType, scope, visibility string
	var timestamp int64
	if err := row.Scan(
		&evt.ID,
		&evt.WorldID,
		&evt.Seq,
		&evt.CampaignID,
		&evt.CombatID,
		&evt.SessionID,
		&eventType,
		&scope,
		&visibility,
		&evt.ActorID,
		&evt.TargetID,
		&timestamp,
		&evt.PayloadJSON,
	); err != nil {
		return event.Event{}, fmt.Errorf("scan event: %w", err)
	}
	evt.Type = event.Type(eventType)
	evt.Scope = event.Scope(scope)
	evt.Visibility = event.Visibility(visibility)
	evt.Timestamp = fromMillis(timestamp)
	return evt, nil
}
