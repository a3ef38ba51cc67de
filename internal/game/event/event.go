package event

import (
	"strings"
	"time"
)

// Type identifies the type of a ledger event.
type Type string

// World lifecycle events.
const (
	// TypeWorldCreated records the creation of a world.
	TypeWorldCreated Type = "world.created"
	// TypeWorldUpdated records updates to world metadata.
	TypeWorldUpdated Type = "world.updated"
)

// Campaign lifecycle events.
const (
	// TypeCampaignCreated records the creation of a campaign.
	TypeCampaignCreated Type = "campaign.created"
	// TypeCampaignUpdated records updates to campaign metadata.
	TypeCampaignUpdated Type = "campaign.updated"
)

// Character events.
const (
	// TypeCharacterCreated records the creation of a character.
	TypeCharacterCreated Type = "character.created"
	// TypeCharacterUpdated records updates to character metadata.
	TypeCharacterUpdated Type = "character.updated"
)

// Combat events.
const (
	// TypeCombatStarted records the start of a combat.
	TypeCombatStarted Type = "combat.started"
	// TypeCombatEnded records the end of a combat.
	TypeCombatEnded Type = "combat.ended"
	// TypeInitiativeRolled records one combatant's initiative roll.
	TypeInitiativeRolled Type = "combat.initiative_rolled"
	// TypeTurnAdvanced records the turn order moving to the next combatant.
	TypeTurnAdvanced Type = "combat.turn_advanced"
)

// Action events (gameplay resolutions).
// Events represent facts that have occurred, not commands/requests.
const (
	// TypeAttackResolved records an attack resolution.
	TypeAttackResolved Type = "action.attack_resolved"
	// TypeSpellResolved records a spell resolution.
	TypeSpellResolved Type = "action.spell_resolved"
	// TypeSkillResolved records a skill check resolution.
	TypeSkillResolved Type = "action.skill_resolved"
)

// Condition events.
const (
	// TypeConditionApplied records a status condition being applied.
	TypeConditionApplied Type = "condition.applied"
	// TypeConditionRemoved records a status condition being removed.
	TypeConditionRemoved Type = "condition.removed"
)

// Narrative events.
const (
	// TypeNoteAdded records a GM/player note.
	TypeNoteAdded Type = "note.added"
)

// Scope classifies how wide an event's narrative reach is.
type Scope string

const (
	// ScopeMicro marks moment-to-moment events (rolls, turns, notes).
	ScopeMicro Scope = "micro"
	// ScopeMacro marks campaign-shaping events (creations, combat bounds).
	ScopeMacro Scope = "macro"
)

// Visibility controls who may read an event.
type Visibility string

const (
	// VisibilityMaster restricts an event to the game master.
	VisibilityMaster Visibility = "master"
	// VisibilityPlayers makes an event readable by all players.
	VisibilityPlayers Visibility = "players"
)

// Event represents an immutable entry in the world ledger.
//
// Events are never updated or deleted. Within a world, Seq defines the total
// order used for replay; it is assigned monotonically at append time, so
// events written in the same millisecond still replay in append order.
type Event struct {
	// ID is the event identity. Assigned by storage on append.
	ID string
	// Seq is the event's position in its world's ledger, starting at 1.
	// Assigned by storage on append.
	Seq uint64
	// WorldID is the world this event belongs to.
	WorldID string
	// CampaignID scopes the event to a campaign (empty for world events).
	CampaignID string
	// CombatID scopes the event to a combat (empty outside combat).
	CombatID string
	// SessionID groups events into play sessions (empty for setup events).
	SessionID string
	// Type identifies the kind of event.
	Type Type
	// Scope classifies the event's narrative reach.
	Scope Scope
	// Visibility controls who may read the event.
	Visibility Visibility
	// Timestamp is when the event occurred, truncated to milliseconds.
	Timestamp time.Time
	// ActorID is the entity that caused the event (empty for system events).
	ActorID string
	// TargetID is the entity the event acted on, when there is one.
	TargetID string
	// PayloadJSON holds the event-specific payload as JSON.
	PayloadJSON []byte
}

// knownTypes is the closed set of event types this engine understands.
// Unknown types are still storable; projection treats them as no-ops.
var knownTypes = map[Type]bool{
	TypeWorldCreated:     true,
	TypeWorldUpdated:     true,
	TypeCampaignCreated:  true,
	TypeCampaignUpdated:  true,
	TypeCharacterCreated: true,
	TypeCharacterUpdated: true,
	TypeCombatStarted:    true,
	TypeCombatEnded:      true,
	TypeInitiativeRolled: true,
	TypeTurnAdvanced:     true,
	TypeAttackResolved:   true,
	TypeSpellResolved:    true,
	TypeSkillResolved:    true,
	TypeConditionApplied: true,
	TypeConditionRemoved: true,
	TypeNoteAdded:        true,
}

// IsValid reports whether the event type is usable.
func (t Type) IsValid() bool {
	return strings.TrimSpace(string(t)) != ""
}

// IsKnown reports whether the event type belongs to the closed enumeration.
func (t Type) IsKnown() bool {
	return knownTypes[t]
}

// IsCreation reports whether the event type creates a projection entity and
// therefore requires a payload at dispatch time.
func (t Type) IsCreation() bool {
	switch t {
	case TypeWorldCreated, TypeCampaignCreated, TypeCharacterCreated:
		return true
	}
	return false
}

// Domain returns the domain prefix of the event type (e.g., "world", "combat").
func (t Type) Domain() string {
	for i, c := range t {
		if c == '.' {
			return string(t[:i])
		}
	}
	return string(t)
}
