// Package session exposes the table-facing operations outside combat:
// world, campaign and character lifecycle, notes, conditions, the event
// timeline, and projection rebuilds.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/dispatch"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/event"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/projection"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/storage"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/platform/id"
)

// Service wires the dispatcher and store into campaign-table operations.
// Every mutation goes through the ledger; reads come from projections.
type Service struct {
	store      storage.GameStore
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
}

// NewService creates a session service.
func NewService(store storage.GameStore, dispatcher *dispatch.Dispatcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, dispatcher: dispatcher, logger: logger}
}

func (s *Service) ready() error {
	if s == nil || s.store == nil || s.dispatcher == nil {
		return fmt.Errorf("session service is not configured")
	}
	return nil
}

// CreateWorld starts a new world ledger with a world.created event.
func (s *Service) CreateWorld(ctx context.Context, title, description string) (storage.World, error) {
	if err := s.ready(); err != nil {
		return storage.World{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return storage.World{}, &dispatch.ValidationError{Msg: "world title is required"}
	}

	worldID, err := id.NewID()
	if err != nil {
		return storage.World{}, fmt.Errorf("assign world id: %w", err)
	}

	payload, err := event.MarshalPayload(event.WorldCreatedPayload{
		Title:       title,
		Description: strings.TrimSpace(description),
	})
	if err != nil {
		return storage.World{}, err
	}

	if _, err := s.dispatcher.Dispatch(ctx, event.Event{
		WorldID:     worldID,
		Type:        event.TypeWorldCreated,
		Scope:       event.ScopeMacro,
		PayloadJSON: payload,
	}); err != nil {
		return storage.World{}, err
	}

	s.logger.InfoContext(ctx, "world created", "world_id", worldID, "title", title)
	return s.store.GetWorld(ctx, worldID)
}

// UpdateWorld records a world.updated event. Nil fields stay untouched.
func (s *Service) UpdateWorld(ctx context.Context, worldID string, title, description *string) (storage.World, error) {
	if err := s.ready(); err != nil {
		return storage.World{}, err
	}
	if title == nil && description == nil {
		return storage.World{}, &dispatch.ValidationError{Msg: "nothing to update"}
	}

	payload, err := event.MarshalPayload(event.WorldUpdatedPayload{Title: title, Description: description})
	if err != nil {
		return storage.World{}, err
	}

	if _, err := s.dispatcher.Dispatch(ctx, event.Event{
		WorldID:     worldID,
		Type:        event.TypeWorldUpdated,
		Scope:       event.ScopeMacro,
		PayloadJSON: payload,
	}); err != nil {
		return storage.World{}, err
	}
	return s.store.GetWorld(ctx, worldID)
}

// GetWorld reads a world projection.
func (s *Service) GetWorld(ctx context.Context, worldID string) (storage.World, error) {
	if err := s.ready(); err != nil {
		return storage.World{}, err
	}
	return s.store.GetWorld(ctx, worldID)
}

// CreateCampaign records a campaign.created event within a world.
func (s *Service) CreateCampaign(ctx context.Context, worldID, name, description, rulesetID string) (storage.Campaign, error) {
	if err := s.ready(); err != nil {
		return storage.Campaign{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return storage.Campaign{}, &dispatch.ValidationError{Msg: "campaign name is required"}
	}

	campaignID, err := id.NewID()
	if err != nil {
		return storage.Campaign{}, fmt.Errorf("assign campaign id: %w", err)
	}

	payload, err := event.MarshalPayload(event.CampaignCreatedPayload{
		CampaignID:  campaignID,
		Name:        name,
		Description: strings.TrimSpace(description),
		RulesetID:   strings.TrimSpace(rulesetID),
	})
	if err != nil {
		return storage.Campaign{}, err
	}

	if _, err := s.dispatcher.Dispatch(ctx, event.Event{
		WorldID:     worldID,
		CampaignID:  campaignID,
		Type:        event.TypeCampaignCreated,
		Scope:       event.ScopeMacro,
		PayloadJSON: payload,
	}); err != nil {
		return storage.Campaign{}, err
	}

	s.logger.InfoContext(ctx, "campaign created", "world_id", worldID, "campaign_id", campaignID, "name", name)
	return s.store.GetCampaign(ctx, campaignID)
}

// UpdateCampaign records a campaign.updated event. Nil fields stay untouched.
func (s *Service) UpdateCampaign(ctx context.Context, worldID, campaignID string, name, description, rulesetID *string) (storage.Campaign, error) {
	if err := s.ready(); err != nil {
		return storage.Campaign{}, err
	}
	if name == nil && description == nil && rulesetID == nil {
		return storage.Campaign{}, &dispatch.ValidationError{Msg: "nothing to update"}
	}
	if _, err := s.store.GetCampaign(ctx, campaignID); err != nil {
		return storage.Campaign{}, err
	}

	payload, err := event.MarshalPayload(event.CampaignUpdatedPayload{
		CampaignID:  campaignID,
		Name:        name,
		Description: description,
		RulesetID:   rulesetID,
	})
	if err != nil {
		return storage.Campaign{}, err
	}

	if _, err := s.dispatcher.Dispatch(ctx, event.Event{
		WorldID:     worldID,
		CampaignID:  campaignID,
		Type:        event.TypeCampaignUpdated,
		Scope:       event.ScopeMacro,
		PayloadJSON: payload,
	}); err != nil {
		return storage.Campaign{}, err
	}
	return s.store.GetCampaign(ctx, campaignID)
}

// GetCampaign reads a campaign projection.
func (s *Service) GetCampaign(ctx context.Context, campaignID string) (storage.Campaign, error) {
	if err := s.ready(); err != nil {
		return storage.Campaign{}, err
	}
	return s.store.GetCampaign(ctx, campaignID)
}

// CharacterParams carries the fields for creating a character.
type CharacterParams struct {
	Name      string
	Kind      string
	Abilities map[string]int
	HPMax     int
	MPMax     int
}

// CreateCharacter records a character.created event within a campaign.
func (s *Service) CreateCharacter(ctx context.Context, worldID, campaignID string, params CharacterParams) (storage.Character, error) {
	if err := s.ready(); err != nil {
		return storage.Character{}, err
	}
	params.Name = strings.TrimSpace(params.Name)
	if params.Name == "" {
		return storage.Character{}, &dispatch.ValidationError{Msg: "character name is required"}
	}
	if params.HPMax < 0 || params.MPMax < 0 {
		return storage.Character{}, &dispatch.ValidationError{Msg: "resource maximums cannot be negative"}
	}
	if _, err := s.store.GetCampaign(ctx, campaignID); err != nil {
		return storage.Character{}, err
	}

	characterID, err := id.NewID()
	if err != nil {
		return storage.Character{}, fmt.Errorf("assign character id: %w", err)
	}

	kind := params.Kind
	if kind == "" {
		kind = string(storage.KindCharacter)
	}

	payload, err := event.MarshalPayload(event.CharacterCreatedPayload{
		CharacterID: characterID,
		CampaignID:  campaignID,
		Name:        params.Name,
		Kind:        kind,
		Abilities:   params.Abilities,
		HPMax:       params.HPMax,
		MPMax:       params.MPMax,
	})
	if err != nil {
		return storage.Character{}, err
	}

	if _, err := s.dispatcher.Dispatch(ctx, event.Event{
		WorldID:     worldID,
		CampaignID:  campaignID,
		Type:        event.TypeCharacterCreated,
		Scope:       event.ScopeMacro,
		PayloadJSON: payload,
	}); err != nil {
		return storage.Character{}, err
	}
	return s.store.GetCharacter(ctx, characterID)
}

// UpdateCharacter records a character.updated event. Nil fields stay
// untouched; a nil abilities map leaves abilities alone.
func (s *Service) UpdateCharacter(ctx context.Context, worldID, characterID string, name *string, abilities map[string]int, hpMax, mpMax *int) (storage.Character, error) {
	if err := s.ready(); err != nil {
		return storage.Character{}, err
	}
	if name == nil && abilities == nil && hpMax == nil && mpMax == nil {
		return storage.Character{}, &dispatch.ValidationError{Msg: "nothing to update"}
	}
	character, err := s.store.GetCharacter(ctx, characterID)
	if err != nil {
		return storage.Character{}, err
	}

	payload, err := event.MarshalPayload(event.CharacterUpdatedPayload{
		CharacterID: characterID,
		Name:        name,
		Abilities:   abilities,
		HPMax:       hpMax,
		MPMax:       mpMax,
	})
	if err != nil {
		return storage.Character{}, err
	}

	if _, err := s.dispatcher.Dispatch(ctx, event.Event{
		WorldID:     worldID,
		CampaignID:  character.CampaignID,
		Type:        event.TypeCharacterUpdated,
		Scope:       event.ScopeMacro,
		PayloadJSON: payload,
	}); err != nil {
		return storage.Character{}, err
	}
	return s.store.GetCharacter(ctx, characterID)
}

// GetCharacter reads a character projection.
func (s *Service) GetCharacter(ctx context.Context, characterID string) (storage.Character, error) {
	if err := s.ready(); err != nil {
		return storage.Character{}, err
	}
	return s.store.GetCharacter(ctx, characterID)
}

// ListCharacters reads a campaign's characters.
func (s *Service) ListCharacters(ctx context.Context, campaignID string) ([]storage.Character, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.store.ListCharactersByCampaign(ctx, campaignID)
}

// AddNote records a narrative note in the ledger. Notes project nothing;
// the ledger itself is the record.
func (s *Service) AddNote(ctx context.Context, worldID, campaignID, text string, visibility event.Visibility) (event.Event, error) {
	if err := s.ready(); err != nil {
		return event.Event{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return event.Event{}, &dispatch.ValidationError{Msg: "note text is required"}
	}

	payload, err := event.MarshalPayload(event.NoteAddedPayload{Text: text})
	if err != nil {
		return event.Event{}, err
	}

	return s.dispatcher.Dispatch(ctx, event.Event{
		WorldID:     worldID,
		CampaignID:  campaignID,
		Type:        event.TypeNoteAdded,
		Visibility:  visibility,
		PayloadJSON: payload,
	})
}

// Timeline returns ledger events after the cursor in replay order.
func (s *Service) Timeline(ctx context.Context, worldID string, after storage.EventCursor, limit int) ([]event.Event, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.store.ListEvents(ctx, worldID, after, limit)
}

// Rebuild replays the world's ledger into fresh projections and returns the
// number of events applied.
func (s *Service) Rebuild(ctx context.Context, worldID string) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	applied, err := projection.Rebuild(ctx, s.store, worldID)
	if err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "projections rebuilt", "world_id", worldID, "events_applied", applied)
	return applied, nil
}
