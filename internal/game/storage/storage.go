package storage

import (
	"context"
	"errors"
	"time"

	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/event"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// CombatantKind discriminates the origin of a combatant.
type CombatantKind string

const (
	// KindCharacter marks a player character combatant.
	KindCharacter CombatantKind = "character"
	// KindNPC marks a non-player character combatant.
	KindNPC CombatantKind = "npc"
	// KindMonster marks a monster combatant.
	KindMonster CombatantKind = "monster"
)

// World is the top-level projection entity scoping a ledger.
type World struct {
	ID          string
	Title       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Campaign is a projection of campaign state within a world.
type Campaign struct {
	ID          string
	WorldID     string
	Name        string
	Description string
	RulesetID   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Character is a projection of a character sheet within a campaign.
type Character struct {
	ID         string
	WorldID    string
	CampaignID string
	Name       string
	Kind       CombatantKind
	Abilities  map[string]int
	HPMax      int
	HPCurrent  int
	MPMax      int
	MPCurrent  int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Combat is a projection of an initiative-ordered encounter.
//
// Round starts at 1; TurnIndex is 0-based and wraps modulo the combatant
// count.
type Combat struct {
	ID         string
	WorldID    string
	CampaignID string
	Round      int
	TurnIndex  int
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Combatant is a participant row in a combat, independent of its source
// character record. RefID is a non-owning back-reference to that source.
type Combatant struct {
	ID         string
	CombatID   string
	WorldID    string
	Name       string
	Kind       CombatantKind
	RefID      string
	Initiative int
	// SortOrder is the resolved turn position: initiative descending with
	// insertion order breaking ties.
	SortOrder int
	HPCurrent int
	HPMax     int
	MPCurrent int
	MPMax     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AppliedCondition is a projection of an active status effect on an entity.
type AppliedCondition struct {
	ID        string
	WorldID   string
	TargetID  string
	Name      string
	Source    string
	AppliedAt time.Time
}

// EventCursor marks a position in the seq total order of a world's ledger.
// The zero cursor starts before the first event.
type EventCursor struct {
	Seq uint64
}

// EventStore persists the append-only event ledger.
type EventStore interface {
	// AppendEvent assigns identity and a monotonic per-world seq to evt and
	// appends it to the ledger.
	AppendEvent(ctx context.Context, evt event.Event) (event.Event, error)
	// ListEvents returns events strictly after the cursor, ordered by
	// seq asc, up to limit entries.
	ListEvents(ctx context.Context, worldID string, after EventCursor, limit int) ([]event.Event, error)
}

// WorldStore persists world projections.
type WorldStore interface {
	PutWorld(ctx context.Context, w World) error
	GetWorld(ctx context.Context, id string) (World, error)
	// EnsureWorld materializes a placeholder row so events can reference the
	// world before its projection is applied.
	EnsureWorld(ctx context.Context, id string, createdAt time.Time) error
}

// CampaignStore persists campaign projections.
type CampaignStore interface {
	PutCampaign(ctx context.Context, c Campaign) error
	GetCampaign(ctx context.Context, id string) (Campaign, error)
}

// CharacterStore persists character projections.
type CharacterStore interface {
	PutCharacter(ctx context.Context, c Character) error
	GetCharacter(ctx context.Context, id string) (Character, error)
	ListCharactersByCampaign(ctx context.Context, campaignID string) ([]Character, error)
}

// CombatStore persists combat projections.
type CombatStore interface {
	PutCombat(ctx context.Context, c Combat) error
	GetCombat(ctx context.Context, id string) (Combat, error)
	// GetActiveCombatByCampaign returns the campaign's active combat, or
	// ErrNotFound when none is active.
	GetActiveCombatByCampaign(ctx context.Context, campaignID string) (Combat, error)
}

// CombatantStore persists combatant projections.
type CombatantStore interface {
	PutCombatant(ctx context.Context, c Combatant) error
	GetCombatant(ctx context.Context, id string) (Combatant, error)
	// ListCombatants returns a combat's roster ordered by sort order.
	ListCombatants(ctx context.Context, combatID string) ([]Combatant, error)
	DeleteCombatants(ctx context.Context, combatID string) error
}

// ConditionStore persists applied-condition projections.
type ConditionStore interface {
	PutCondition(ctx context.Context, c AppliedCondition) error
	GetCondition(ctx context.Context, id string) (AppliedCondition, error)
	DeleteCondition(ctx context.Context, id string) error
	ListConditionsByTarget(ctx context.Context, targetID string) ([]AppliedCondition, error)
}

// GameStore bundles the ledger and every projection store behind one
// transactional boundary.
type GameStore interface {
	EventStore
	WorldStore
	CampaignStore
	CharacterStore
	CombatStore
	CombatantStore
	ConditionStore

	// ResetProjections deletes every projection row derived from the
	// world's ledger. The world row itself and the ledger stay intact, so
	// a replay can rebuild state from scratch.
	ResetProjections(ctx context.Context, worldID string) error

	// InTx runs fn against a transaction-scoped store. All writes inside fn
	// commit or roll back together. Calling InTx on an already
	// transaction-scoped store reuses the open transaction.
	InTx(ctx context.Context, fn func(GameStore) error) error
}
