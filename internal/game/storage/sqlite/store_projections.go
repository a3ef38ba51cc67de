package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/storage"
)

// World projection methods.

// PutWorld upserts a world projection row.
func (s *Store) PutWorld(ctx context.Context, w storage.World) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(w.ID) == "" {
		return fmt.Errorf("world id is required")
	}

	_, err := s.q.ExecContext(
		ctx,
		`INSERT INTO worlds (id, title, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title,
		   description = excluded.description,
		   updated_at = excluded.updated_at`,
		w.ID,
		w.Title,
		w.Description,
		toMillis(w.CreatedAt),
		toMillis(w.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put world: %w", err)
	}
	return nil
}

// GetWorld fetches a world projection by id.
func (s *Store) GetWorld(ctx context.Context, worldID string) (storage.World, error) {
	if err := ctx.Err(); err != nil {
		return storage.World{}, err
	}
	if err := s.ready(); err != nil {
		return storage.World{}, err
	}
	worldID = strings.TrimSpace(worldID)
	if worldID == "" {
		return storage.World{}, fmt.Errorf("world id is required")
	}

	row := s.q.QueryRowContext(
		ctx,
		`SELECT id, title, description, created_at, updated_at
		 FROM worlds WHERE id = ?`,
		worldID,
	)
	var w storage.World
	var createdAt, updatedAt int64
	if err := row.Scan(&w.ID, &w.Title, &w.Description, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.World{}, storage.ErrNotFound
		}
		return storage.World{}, fmt.Errorf("get world: %w", err)
	}
	w.CreatedAt = fromMillis(createdAt)
	w.UpdatedAt = fromMillis(updatedAt)
	return w, nil
}

// EnsureWorld materializes a placeholder world row when none exists, so an
// event's foreign key to its world is satisfiable before projection runs.
func (s *Store) EnsureWorld(ctx context.Context, worldID string, createdAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	worldID = strings.TrimSpace(worldID)
	if worldID == "" {
		return fmt.Errorf("world id is required")
	}
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.q.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO worlds (id, title, description, created_at, updated_at)
		 VALUES (?, '', '', ?, ?)`,
		worldID,
		toMillis(createdAt),
		toMillis(createdAt),
	)
	if err != nil {
		return fmt.Errorf("ensure world: %w", err)
	}
	return nil
}

// ResetProjections deletes the world's projection rows, children first so
// foreign keys hold. The ledger and the world row are untouched.
func (s *Store) ResetProjections(ctx context.Context, worldID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	worldID = strings.TrimSpace(worldID)
	if worldID == "" {
		return fmt.Errorf("world id is required")
	}

	statements := []string{
		`DELETE FROM applied_conditions WHERE world_id = ?`,
		`DELETE FROM combatants WHERE world_id = ?`,
		`DELETE FROM combats WHERE world_id = ?`,
		`DELETE FROM characters WHERE world_id = ?`,
		`DELETE FROM campaigns WHERE world_id = ?`,
	}
	for _, statement := range statements {
		if _, err := s.q.ExecContext(ctx, statement, worldID); err != nil {
			return fmt.Errorf("reset projections: %w", err)
		}
	}
	return nil
}

// Campaign projection methods.

// PutCampaign upserts a campaign projection row.
func (s *Store) PutCampaign(ctx context.Context, c storage.Campaign) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("campaign id is required")
	}
	if strings.TrimSpace(c.WorldID) == "" {
		return fmt.Errorf("world id is required")
	}

	_, err := s.q.ExecContext(
		ctx,
		`INSERT INTO campaigns (id, world_id, name, description, ruleset_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   description = excluded.description,
		   ruleset_id = excluded.ruleset_id,
		   updated_at = excluded.updated_at`,
		c.ID,
		c.WorldID,
		c.Name,
		c.Description,
		c.RulesetID,
		toMillis(c.CreatedAt),
		toMillis(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put campaign: %w", err)
	}
	return nil
}

// GetCampaign fetches a campaign projection by id.
func (s *Store) GetCampaign(ctx context.Context, campaignID string) (storage.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return storage.Campaign{}, err
	}
	if err := s.ready(); err != nil {
		return storage.Campaign{}, err
	}
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return storage.Campaign{}, fmt.Errorf("campaign id is required")
	}

	row := s.q.QueryRowContext(
		ctx,
		`SELECT id, world_id, name, description, ruleset_id, created_at, updated_at
		 FROM campaigns WHERE id = ?`,
		campaignID,
	)
	var c storage.Campaign
	var createdAt, updatedAt int64
	if err := row.Scan(&c.ID, &c.WorldID, &c.Name, &c.Description, &c.RulesetID, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Campaign{}, storage.ErrNotFound
		}
		return storage.Campaign{}, fmt.Errorf("get campaign: %w", err)
	}
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updatedAt)
	return c, nil
}

// Character projection methods.

// PutCharacter upserts a character projection row.
func (s *Store) PutCharacter(ctx context.Context, c storage.Character) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("character id is required")
	}
	if strings.TrimSpace(c.WorldID) == "" {
		return fmt.Errorf("world id is required")
	}

	abilities := c.Abilities
	if abilities == nil {
		abilities = map[string]int{}
	}
	abilitiesJSON, err := json.Marshal(abilities)
	if err != nil {
		return fmt.Errorf("encode abilities: %w", err)
	}

	_, err = s.q.ExecContext(
		ctx,
		`INSERT INTO characters (id, world_id, campaign_id, name, kind, abilities_json,
		   hp_max, hp_current, mp_max, mp_current, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   kind = excluded.kind,
		   abilities_json = excluded.abilities_json,
		   hp_max = excluded.hp_max,
		   hp_current = excluded.hp_current,
		   mp_max = excluded.mp_max,
		   mp_current = excluded.mp_current,
		   updated_at = excluded.updated_at`,
		c.ID,
		c.WorldID,
		c.CampaignID,
		c.Name,
		string(c.Kind),
		abilitiesJSON,
		c.HPMax,
		c.HPCurrent,
		c.MPMax,
		c.MPCurrent,
		toMillis(c.CreatedAt),
		toMillis(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put character: %w", err)
	}
	return nil
}

// GetCharacter fetches a character projection by id.
func (s *Store) GetCharacter(ctx context.Context, characterID string) (storage.Character, error) {
	if err := ctx.Err(); err != nil {
		return storage.Character{}, err
	}
	if err := s.ready(); err != nil {
		return storage.Character{}, err
	}
	characterID = strings.TrimSpace(characterID)
	if characterID == "" {
		return storage.Character{}, fmt.Errorf("character id is required")
	}

	row := s.q.QueryRowContext(
		ctx,
		`SELECT id, world_id, campaign_id, name, kind, abilities_json,
		   hp_max, hp_current, mp_max, mp_current, created_at, updated_at
		 FROM characters WHERE id = ?`,
		characterID,
	)
	c, err := scanCharacter(row)
	if err != nil {
		return storage.Character{}, err
	}
	return c, nil
}

// ListCharactersByCampaign returns a campaign's characters ordered by
// creation time then id, so initiative insertion order is deterministic.
func (s *Store) ListCharactersByCampaign(ctx context.Context, campaignID string) ([]storage.Character, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return nil, fmt.Errorf("campaign id is required")
	}

	rows, err := s.q.QueryContext(
		ctx,
		`SELECT id, world_id, campaign_id, name, kind, abilities_json,
		   hp_max, hp_current, mp_max, mp_current, created_at, updated_at
		 FROM characters WHERE campaign_id = ?
		 ORDER BY created_at ASC, id ASC`,
		campaignID,
	)
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	defer rows.Close()

	var characters []storage.Character
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, err
		}
		characters = append(characters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read characters: %w", err)
	}
	return characters, nil
}

func scanCharacter(row rowScanner) (storage.Character, error) {
	var c storage.Character
	var kind string
	var abilitiesJSON []byte
	var createdAt, updatedAt int64
	if err := row.Scan(
		&c.ID,
		&c.WorldID,
		&c.CampaignID,
		&c.Name,
		&kind,
		&abilitiesJSON,
		&c.HPMax,
		&c.HPCurrent,
		&c.MPMax,
		&c.MPCurrent,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Character{}, storage.ErrNotFound
		}
		return storage.Character{}, fmt.Errorf("scan character: %w", err)
	}
	c.Kind = storage.CombatantKind(kind)
	if len(abilitiesJSON) > 0 {
		if err := json.Unmarshal(abilitiesJSON, &c.Abilities); err != nil {
			return storage.Character{}, fmt.Errorf("decode abilities: %w", err)
		}
	}
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updatedAt)
	return c, nil
}
