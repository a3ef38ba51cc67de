package event

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NormalizeForAppend validates and normalizes an event before storage assigns
// its identity.
func NormalizeForAppend(evt Event) (Event, error) {
	evt.WorldID = strings.TrimSpace(evt.WorldID)
	if evt.WorldID == "" {
		return Event{}, fmt.Errorf("world id is required")
	}
	if strings.TrimSpace(evt.ID) != "" {
		return Event{}, fmt.Errorf("event id must be assigned by storage")
	}
	if evt.Seq != 0 {
		return Event{}, fmt.Errorf("event seq must be assigned by storage")
	}

	evt.Type = Type(strings.TrimSpace(string(evt.Type)))
	if !evt.Type.IsValid() {
		return Event{}, fmt.Errorf("event type is required")
	}

	evt.Scope = Scope(strings.TrimSpace(string(evt.Scope)))
	if evt.Scope == "" {
		evt.Scope = ScopeMicro
	}
	switch evt.Scope {
	case ScopeMicro, ScopeMacro:
		// allowed
	default:
		return Event{}, fmt.Errorf("scope must be micro or macro")
	}

	evt.Visibility = Visibility(strings.TrimSpace(string(evt.Visibility)))
	if evt.Visibility == "" {
		evt.Visibility = VisibilityPlayers
	}
	switch evt.Visibility {
	case VisibilityMaster, VisibilityPlayers:
		// allowed
	default:
		return Event{}, fmt.Errorf("visibility must be master or players")
	}

	evt.CampaignID = strings.TrimSpace(evt.CampaignID)
	evt.CombatID = strings.TrimSpace(evt.CombatID)
	evt.SessionID = strings.TrimSpace(evt.SessionID)
	evt.ActorID = strings.TrimSpace(evt.ActorID)
	evt.TargetID = strings.TrimSpace(evt.TargetID)

	if len(evt.PayloadJSON) == 0 {
		evt.PayloadJSON = []byte("{}")
	}
	if !json.Valid(evt.PayloadJSON) {
		return Event{}, fmt.Errorf("payload json must be valid JSON")
	}

	return evt, nil
}

// MarshalPayload encodes a typed payload struct for an event.
func MarshalPayload(payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return data, nil
}
