package server

import (
	"encoding/json"
	"time"

	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/event"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/storage"
)

type worldResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toWorldResponse(w storage.World) worldResponse {
	return worldResponse{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

type campaignResponse struct {
	ID          string    `json:"id"`
	WorldID     string    `json:"world_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	RulesetID   string    `json:"ruleset_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toCampaignResponse(c storage.Campaign) campaignResponse {
	return campaignResponse{
		ID:          c.ID,
		WorldID:     c.WorldID,
		Name:        c.Name,
		Description: c.Description,
		RulesetID:   c.RulesetID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

type characterResponse struct {
	ID         string         `json:"id"`
	WorldID    string         `json:"world_id"`
	CampaignID string         `json:"campaign_id"`
	Name       string         `json:"name"`
	Kind       string         `json:"kind"`
	Abilities  map[string]int `json:"abilities,omitempty"`
	HPMax      int            `json:"hp_max"`
	HPCurrent  int            `json:"hp_current"`
	MPMax      int            `json:"mp_max"`
	MPCurrent  int            `json:"mp_current"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

func toCharacterResponse(c storage.Character) characterResponse {
	return characterResponse{
		ID:         c.ID,
		WorldID:    c.WorldID,
		CampaignID: c.CampaignID,
		Name:       c.Name,
		Kind:       string(c.Kind),
		Abilities:  c.Abilities,
		HPMax:      c.HPMax,
		HPCurrent:  c.HPCurrent,
		MPMax:      c.MPMax,
		MPCurrent:  c.MPCurrent,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

type combatResponse struct {
	ID         string    `json:"id"`
	WorldID    string    `json:"world_id"`
	CampaignID string    `json:"campaign_id"`
	Round      int       `json:"round"`
	TurnIndex  int       `json:"turn_index"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toCombatResponse(c storage.Combat) combatResponse {
	return combatResponse{
		ID:         c.ID,
		WorldID:    c.WorldID,
		CampaignID: c.CampaignID,
		Round:      c.Round,
		TurnIndex:  c.TurnIndex,
		IsActive:   c.IsActive,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

type combatantResponse struct {
	ID         string `json:"id"`
	CombatID   string `json:"combat_id"`
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	RefID      string `json:"ref_id,omitempty"`
	Initiative int    `json:"initiative"`
	SortOrder  int    `json:"sort_order"`
	HPCurrent  int    `json:"hp_current"`
	HPMax      int    `json:"hp_max"`
	MPCurrent  int    `json:"mp_current"`
	MPMax      int    `json:"mp_max"`
}

func toCombatantResponse(c storage.Combatant) combatantResponse {
	return combatantResponse{
		ID:         c.ID,
		CombatID:   c.CombatID,
		Name:       c.Name,
		Kind:       string(c.Kind),
		RefID:      c.RefID,
		Initiative: c.Initiative,
		SortOrder:  c.SortOrder,
		HPCurrent:  c.HPCurrent,
		HPMax:      c.HPMax,
		MPCurrent:  c.MPCurrent,
		MPMax:      c.MPMax,
	}
}

func toCombatantResponses(combatants []storage.Combatant) []combatantResponse {
	out := make([]combatantResponse, 0, len(combatants))
	for _, c := range combatants {
		out = append(out, toCombatantResponse(c))
	}
	return out
}

type conditionResponse struct {
	ID        string    `json:"id"`
	TargetID  string    `json:"target_id"`
	Name      string    `json:"name"`
	Source    string    `json:"source,omitempty"`
	AppliedAt time.Time `json:"applied_at"`
}

func toConditionResponse(c storage.AppliedCondition) conditionResponse {
	return conditionResponse{
		ID:        c.ID,
		TargetID:  c.TargetID,
		Name:      c.Name,
		Source:    c.Source,
		AppliedAt: c.AppliedAt,
	}
}

type eventResponse struct {
	ID         string          `json:"id"`
	Seq        uint64          `json:"seq"`
	WorldID    string          `json:"world_id"`
	CampaignID string          `json:"campaign_id,omitempty"`
	CombatID   string          `json:"combat_id,omitempty"`
	SessionID  string          `json:"session_id,omitempty"`
	Type       string          `json:"type"`
	Scope      string          `json:"scope"`
	Visibility string          `json:"visibility"`
	Timestamp  time.Time       `json:"timestamp"`
	ActorID    string          `json:"actor_id,omitempty"`
	TargetID   string          `json:"target_id,omitempty"`
	Payload    json.RawMessage `json:"payload"`
}

func toEventResponse(e event.Event) eventResponse {
	return eventResponse{
		ID:         e.ID,
		Seq:        e.Seq,
		WorldID:    e.WorldID,
		CampaignID: e.CampaignID,
		CombatID:   e.CombatID,
		SessionID:  e.SessionID,
		Type:       string(e.Type),
		Scope:      string(e.Scope),
		Visibility: string(e.Visibility),
		Timestamp:  e.Timestamp,
		ActorID:    e.ActorID,
		TargetID:   e.TargetID,
		Payload:    json.RawMessage(e.PayloadJSON),
	}
}

type timelineResponse struct {
	Events []eventResponse `json:"events"`
	// NextSeq is the cursor for the following page.
	NextSeq uint64 `json:"next_seq,omitempty"`
}

func toTimelineResponse(events []event.Event) timelineResponse {
	response := timelineResponse{Events: make([]eventResponse, 0, len(events))}
	for _, e := range events {
		response.Events = append(response.Events, toEventResponse(e))
	}
	if len(events) > 0 {
		response.NextSeq = events[len(events)-1].Seq
	}
	return response
}
