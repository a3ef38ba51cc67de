package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/storage"
)

// Combat projection methods.

// PutCombat upserts a combat projection row.
func (s *Store) PutCombat(ctx context.Context, c storage.Combat) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("combat id is required")
	}
	if strings.TrimSpace(c.WorldID) == "" {
		return fmt.Errorf("world id is required")
	}
	if strings.TrimSpace(c.CampaignID) == "" {
		return fmt.Errorf("campaign id is required")
	}

	isActive := 0
	if c.IsActive {
		isActive = 1
	}

	_, err := s.q.ExecContext(
		ctx,
		`INSERT INTO combats (id, world_id, campaign_id, round, turn_index, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   round = excluded.round,
		   turn_index = excluded.turn_index,
		   is_active = excluded.is_active,
		   updated_at = excluded.updated_at`,
		c.ID,
		c.WorldID,
		c.CampaignID,
		c.Round,
		c.TurnIndex,
		isActive,
		toMillis(c.CreatedAt),
		toMillis(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put combat: %w", err)
	}
	return nil
}

// GetCombat fetches a combat projection by id.
func (s *Store) GetCombat(ctx context.Context, combatID string) (storage.Combat, error) {
	if err := ctx.Err(); err != nil {
		return storage.Combat{}, err
	}
	if err := s.ready(); err != nil {
		return storage.Combat{}, err
	}
	combatID = strings.TrimSpace(combatID)
	if combatID == "" {
		return storage.Combat{}, fmt.Errorf("combat id is required")
	}

	row := s.q.QueryRowContext(
		ctx,
		`SELECT id, world_id, campaign_id, round, turn_index, is_active, created_at, updated_at
		 FROM combats WHERE id = ?`,
		combatID,
	)
	return scanCombat(row)
}

// GetActiveCombatByCampaign returns the campaign's active combat.
func (s *Store) GetActiveCombatByCampaign(ctx context.Context, campaignID string) (storage.Combat, error) {
	if err := ctx.Err(); err != nil {
		return storage.Combat{}, err
	}
	if err := s.ready(); err != nil {
		return storage.Combat{}, err
	}
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return storage.Combat{}, fmt.Errorf("campaign id is required")
	}

	row := s.q.QueryRowContext(
		ctx,
		`SELECT id, world_id, campaign_id, round, turn_index, is_active, created_at, updated_at
		 FROM combats WHERE campaign_id = ? AND is_active = 1
		 ORDER BY created_at DESC LIMIT 1`,
		campaignID,
	)
	return scanCombat(row)
}

func scanCombat(row rowScanner) (storage.Combat, error) {
	var c storage.Combat
	var isActive int
	var createdAt, updatedAt int64
	if err := row.Scan(&c.ID, &c.WorldID, &c.CampaignID, &c.Round, &c.TurnIndex, &isActive, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Combat{}, storage.ErrNotFound
		}
		return storage.Combat{}, fmt.Errorf("scan combat: %w", err)
	}
	c.IsActive = isActive != 0
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updatedAt)
	return c, nil
}

// Combatant projection methods.

// PutCombatant upserts a combatant projection row.
func (s *Store) PutCombatant(ctx context.Context, c storage.Combatant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("combatant id is required")
	}
	if strings.TrimSpace(c.CombatID) == "" {
		return fmt.Errorf("combat id is required")
	}

	_, err := s.q.ExecContext(
		ctx,
		`INSERT INTO combatants (id, combat_id, world_id, name, kind, ref_id,
		   initiative, sort_order, hp_current, hp_max, mp_current, mp_max, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   kind = excluded.kind,
		   ref_id = excluded.ref_id,
		   initiative = excluded.initiative,
		   sort_order = excluded.sort_order,
		   hp_current = excluded.hp_current,
		   hp_max = excluded.hp_max,
		   mp_current = excluded.mp_current,
		   mp_max = excluded.mp_max,
		   updated_at = excluded.updated_at`,
		c.ID,
		c.CombatID,
		c.WorldID,
		c.Name,
		string(c.Kind),
		c.RefID,
		c.Initiative,
		c.SortOrder,
		c.HPCurrent,
		c.HPMax,
		c.MPCurrent,
		c.MPMax,
		toMillis(c.CreatedAt),
		toMillis(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put combatant: %w", err)
	}
	return nil
}

// GetCombatant fetches a combatant projection by id.
func (s *Store) GetCombatant(ctx context.Context, combatantID string) (storage.Combatant, error) {
	if err := ctx.Err(); err != nil {
		return storage.Combatant{}, err
	}
	if err := s.ready(); err != nil {
		return storage.Combatant{}, err
	}
	combatantID = strings.TrimSpace(combatantID)
	if combatantID == "" {
		return storage.Combatant{}, fmt.Errorf("combatant id is required")
	}

	row := s.q.QueryRowContext(
		ctx,
		`SELECT id, combat_id, world_id, name, kind, ref_id,
		   initiative, sort_order, hp_current, hp_max, mp_current, mp_max, created_at, updated_at
		 FROM combatants WHERE id = ?`,
		combatantID,
	)
	return scanCombatant(row)
}

// ListCombatants returns a combat's roster in turn order.
func (s *Store) ListCombatants(ctx context.Context, combatID string) ([]storage.Combatant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	combatID = strings.TrimSpace(combatID)
	if combatID == "" {
		return nil, fmt.Errorf("combat id is required")
	}

	rows, err := s.q.QueryContext(
		ctx,
		`SELECT id, combat_id, world_id, name, kind, ref_id,
		   initiative, sort_order, hp_current, hp_max, mp_current, mp_max, created_at, updated_at
		 FROM combatants WHERE combat_id = ?
		 ORDER BY sort_order ASC, id ASC`,
		combatID,
	)
	if err != nil {
		return nil, fmt.Errorf("list combatants: %w", err)
	}
	defer rows.Close()

	var combatants []storage.Combatant
	for rows.Next() {
		c, err := scanCombatant(rows)
		if err != nil {
			return nil, err
		}
		combatants = append(combatants, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read combatants: %w", err)
	}
	return combatants, nil
}

// DeleteCombatants removes a combat's whole roster.
func (s *Store) DeleteCombatants(ctx context.Context, combatID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	combatID = strings.TrimSpace(combatID)
	if combatID == "" {
		return fmt.Errorf("combat id is required")
	}

	if _, err := s.q.ExecContext(ctx, `DELETE FROM combatants WHERE combat_id = ?`, combatID); err != nil {
		return fmt.Errorf("delete combatants: %w", err)
	}
	return nil
}

func scanCombatant(row rowScanner) (storage.Combatant, error) {
	var c storage.Combatant
	var kind string
	var createdAt, updatedAt int64
	if err := row.Scan(
		&c.ID,
		&c.CombatID,
		&c.WorldID,
		&c.Name,
		&kind,
		&c.RefID,
		&c.Initiative,
		&c.SortOrder,
		&c.HPCurrent,
		&c.HPMax,
		&c.MPCurrent,
		&c.MPMax,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Combatant{}, storage.ErrNotFound
		}
		return storage.Combatant{}, fmt.Errorf("scan combatant: %w", err)
	}
	c.Kind = storage.CombatantKind(kind)
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updatedAt)
	return c, nil
}

// Applied condition projection methods.

// PutCondition upserts an applied-condition projection row.
func (s *Store) PutCondition(ctx context.Context, c storage.AppliedCondition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("condition id is required")
	}
	if strings.TrimSpace(c.TargetID) == "" {
		return fmt.Errorf("target id is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("condition name is required")
	}

	_, err := s.q.ExecContext(
		ctx,
		`INSERT INTO applied_conditions (id, world_id, target_id, name, source, applied_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   target_id = excluded.target_id,
		   name = excluded.name,
		   source = excluded.source`,
		c.ID,
		c.WorldID,
		c.TargetID,
		c.Name,
		c.Source,
		toMillis(c.AppliedAt),
	)
	if err != nil {
		return fmt.Errorf("put condition: %w", err)
	}
	return nil
}

// GetCondition fetches an applied condition by id.
func (s *Store) GetCondition(ctx context.Context, conditionID string) (storage.AppliedCondition, error) {
	if err := ctx.Err(); err != nil {
		return storage.AppliedCondition{}, err
	}
	if err := s.ready(); err != nil {
		return storage.AppliedCondition{}, err
	}
	conditionID = strings.TrimSpace(conditionID)
	if conditionID == "" {
		return storage.AppliedCondition{}, fmt.Errorf("condition id is required")
	}

	row := s.q.QueryRowContext(
		ctx,
		`SELECT id, world_id, target_id, name, source, applied_at
		 FROM applied_conditions WHERE id = ?`,
		conditionID,
	)
	var c storage.AppliedCondition
	var appliedAt int64
	if err := row.Scan(&c.ID, &c.WorldID, &c.TargetID, &c.Name, &c.Source, &appliedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.AppliedCondition{}, storage.ErrNotFound
		}
		return storage.AppliedCondition{}, fmt.Errorf("get condition: %w", err)
	}
	c.AppliedAt = fromMillis(appliedAt)
	return c, nil
}

// DeleteCondition removes an applied condition. Deleting a missing condition
// is a no-op so condition.removed replays stay idempotent.
func (s *Store) DeleteCondition(ctx context.Context, conditionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	conditionID = strings.TrimSpace(conditionID)
	if conditionID == "" {
		return fmt.Errorf("condition id is required")
	}

	if _, err := s.q.ExecContext(ctx, `DELETE FROM applied_conditions WHERE id = ?`, conditionID); err != nil {
		return fmt.Errorf("delete condition: %w", err)
	}
	return nil
}

// ListConditionsByTarget returns the active conditions on an entity.
func (s *Store) ListConditionsByTarget(ctx context.Context, targetID string) ([]storage.AppliedCondition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return nil, fmt.Errorf("target id is required")
	}

	rows, err := s.q.QueryContext(
		ctx,
		`SELECT id, world_id, target_id, name, source, applied_at
		 FROM applied_conditions WHERE target_id = ?
		 ORDER BY applied_at ASC, id ASC`,
		targetID,
	)
	if err != nil {
		return nil, fmt.Errorf("list conditions: %w", err)
	}
	defer rows.Close()

	var conditions []storage.AppliedCondition
	for rows.Next() {
		var c storage.AppliedCondition
		var appliedAt int64
		if err := rows.Scan(&c.ID, &c.WorldID, &c.TargetID, &c.Name, &c.Source, &appliedAt); err != nil {
			return nil, fmt.Errorf("scan condition: %w", err)
		}
		c.AppliedAt = fromMillis(appliedAt)
		conditions = append(conditions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read conditions: %w", err)
	}
	return conditions, nil
}
