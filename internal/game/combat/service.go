// Package combat drives the encounter state machine: starting combats,
// rolling initiative, advancing turns, ending combats, and resolving
// attacks, spells and skill checks through the campaign's ruleset.
package combat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/dice"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/dispatch"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/event"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/rules"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/storage"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/platform/id"
)

var (
	// ErrCombatNotActive indicates an operation on a combat that has ended.
	ErrCombatNotActive = errors.New("combat is not active")
	// ErrEmptyRoster indicates a turn operation on a combat with no combatants.
	ErrEmptyRoster = errors.New("combat has no combatants")
	// ErrInsufficientMP indicates a spell whose cost exceeds the caster's mana.
	ErrInsufficientMP = errors.New("not enough mana points")
)

// initiativeAbility is the ability score initiative rolls are keyed on.
const initiativeAbility = "des"

// Service runs combat operations. All mutations flow through the dispatcher
// inside one transaction per operation, so the roster, the combat row and
// the ledger never diverge.
type Service struct {
	store      storage.GameStore
	dispatcher *dispatch.Dispatcher
	rulesets   *rules.Registry
	roller     dice.Roller
	clock      func() time.Time
	logger     *slog.Logger
}

// NewService creates a combat service. A nil roller gets a time-seeded one;
// tests inject a deterministic roller instead.
func NewService(store storage.GameStore, dispatcher *dispatch.Dispatcher, rulesets *rules.Registry, roller dice.Roller, logger *slog.Logger) *Service {
	if roller == nil {
		roller = dice.NewSeeded(time.Now().UnixNano())
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:      store,
		dispatcher: dispatcher,
		rulesets:   rulesets,
		roller:     roller,
		clock:      time.Now,
		logger:     logger,
	}
}

func (s *Service) ready() error {
	if s == nil || s.store == nil || s.dispatcher == nil || s.rulesets == nil {
		return fmt.Errorf("combat service is not configured")
	}
	return nil
}

// Start begins a combat for a campaign. Starting while a combat is already
// active returns the active combat without appending anything.
func (s *Service) Start(ctx context.Context, worldID, campaignID string) (storage.Combat, error) {
	if err := s.ready(); err != nil {
		return storage.Combat{}, err
	}

	if _, err := s.store.GetCampaign(ctx, campaignID); err != nil {
		return storage.Combat{}, err
	}

	existing, err := s.store.GetActiveCombatByCampaign(ctx, campaignID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return storage.Combat{}, err
	}

	combatID, err := id.NewID()
	if err != nil {
		return storage.Combat{}, fmt.Errorf("assign combat id: %w", err)
	}

	payload, err := event.MarshalPayload(event.CombatStartedPayload{
		CombatID:   combatID,
		CampaignID: campaignID,
	})
	if err != nil {
		return storage.Combat{}, err
	}

	if _, err := s.dispatcher.Dispatch(ctx, event.Event{
		WorldID:     worldID,
		CampaignID:  campaignID,
		CombatID:    combatID,
		Type:        event.TypeCombatStarted,
		Scope:       event.ScopeMacro,
		PayloadJSON: payload,
	}); err != nil {
		return storage.Combat{}, err
	}

	s.logger.InfoContext(ctx, "combat started", "world_id", worldID, "campaign_id", campaignID, "combat_id", combatID)
	return s.store.GetCombat(ctx, combatID)
}

// RollInitiative rolls 1d20 plus the dexterity modifier for every character
// in the combat's campaign and records one event per roll. The roster is
// ordered by total descending; ties keep the characters' insertion order.
// Rolling again replaces the previous roster.
func (s *Service) RollInitiative(ctx context.Context, worldID, combatID string) ([]storage.Combatant, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	err := s.store.InTx(ctx, func(tx storage.GameStore) error {
		combat, err := tx.GetCombat(ctx, combatID)
		if err != nil {
			return err
		}
		if !combat.IsActive {
			return ErrCombatNotActive
		}

		campaign, err := tx.GetCampaign(ctx, combat.CampaignID)
		if err != nil {
			return err
		}
		characters, err := tx.ListCharactersByCampaign(ctx, campaign.ID)
		if err != nil {
			return err
		}
		if len(characters) == 0 {
			return ErrEmptyRoster
		}

		ruleset := s.rulesets.Resolve(campaign.RulesetID)

		type rolled struct {
			character storage.Character
			d20       int
			modifier  int
			total     int
		}
		entries := make([]rolled, 0, len(characters))
		for _, character := range characters {
			sheet := rules.Sheet{Abilities: character.Abilities}
			d20 := dice.D20(s.roller)
			modifier := ruleset.AbilityMod(sheet.Score(initiativeAbility))
			entries = append(entries, rolled{
				character: character,
				d20:       d20,
				modifier:  modifier,
				total:     d20 + modifier,
			})
		}

		// Stable sort keeps insertion order as the tie-break.
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].total > entries[j].total
		})

		rolledAt := s.clock().UTC().Truncate(time.Millisecond)
		for i, entry := range entries {
			combatantID, err := id.NewID()
			if err != nil {
				return fmt.Errorf("assign combatant id: %w", err)
			}
			payload, err := event.MarshalPayload(event.InitiativeRolledPayload{
				CombatID:    combatID,
				CombatantID: combatantID,
				Name:        entry.character.Name,
				Kind:        string(entry.character.Kind),
				RefID:       entry.character.ID,
				Position:    i,
				D20:         entry.d20,
				Modifier:    entry.modifier,
				Total:       entry.total,
				HPMax:       entry.character.HPMax,
				HPCurrent:   entry.character.HPCurrent,
				MPMax:       entry.character.MPMax,
				MPCurrent:   entry.character.MPCurrent,
			})
			if err != nil {
				return err
			}

			if _, err := s.dispatcher.DispatchTx(ctx, tx, event.Event{
				WorldID:     worldID,
				CampaignID:  campaign.ID,
				CombatID:    combatID,
				Type:        event.TypeInitiativeRolled,
				Timestamp:   rolledAt,
				ActorID:     entry.character.ID,
				PayloadJSON: payload,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.store.ListCombatants(ctx, combatID)
}

// NextTurn advances the combat to the next combatant, wrapping to the top
// of the order and incrementing the round at the end of the roster.
func (s *Service) NextTurn(ctx context.Context, worldID, combatID string) (storage.Combat, error) {
	if err := s.ready(); err != nil {
		return storage.Combat{}, err
	}

	err := s.store.InTx(ctx, func(tx storage.GameStore) error {
		combat, err := tx.GetCombat(ctx, combatID)
		if err != nil {
			return err
		}
		if !combat.IsActive {
			return ErrCombatNotActive
		}

		roster, err := tx.ListCombatants(ctx, combatID)
		if err != nil {
			return err
		}
		if len(roster) == 0 {
			return ErrEmptyRoster
		}

		round := combat.Round
		next := combat.TurnIndex + 1
		if next >= len(roster) {
			next = 0
			round++
		}
		active := roster[next]

		payload, err := event.MarshalPayload(event.TurnAdvancedPayload{
			CombatID:          combatID,
			Round:             round,
			TurnIndex:         next,
			ActiveCombatantID: active.ID,
			ActiveName:        active.Name,
		})
		if err != nil {
			return err
		}

		_, err = s.dispatcher.DispatchTx(ctx, tx, event.Event{
			WorldID:     worldID,
			CampaignID:  combat.CampaignID,
			CombatID:    combatID,
			Type:        event.TypeTurnAdvanced,
			PayloadJSON: payload,
		})
		return err
	})
	if err != nil {
		return storage.Combat{}, err
	}

	return s.store.GetCombat(ctx, combatID)
}

// End closes a combat. Ending an already-ended or unknown combat is a
// no-op, so retried requests stay safe.
func (s *Service) End(ctx context.Context, worldID, combatID string) error {
	if err := s.ready(); err != nil {
		return err
	}

	combat, err := s.store.GetCombat(ctx, combatID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !combat.IsActive {
		return nil
	}

	payload, err := event.MarshalPayload(event.CombatEndedPayload{
		CombatID: combatID,
		Rounds:   combat.Round,
	})
	if err != nil {
		return err
	}

	if _, err := s.dispatcher.Dispatch(ctx, event.Event{
		WorldID:     worldID,
		CampaignID:  combat.CampaignID,
		CombatID:    combatID,
		Type:        event.TypeCombatEnded,
		Scope:       event.ScopeMacro,
		PayloadJSON: payload,
	}); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "combat ended", "world_id", worldID, "combat_id", combatID, "rounds", combat.Round)
	return nil
}

// Get reads a combat projection.
func (s *Service) Get(ctx context.Context, combatID string) (storage.Combat, error) {
	if err := s.ready(); err != nil {
		return storage.Combat{}, err
	}
	return s.store.GetCombat(ctx, combatID)
}

// Active returns a campaign's active combat, or storage.ErrNotFound.
func (s *Service) Active(ctx context.Context, campaignID string) (storage.Combat, error) {
	if err := s.ready(); err != nil {
		return storage.Combat{}, err
	}
	return s.store.GetActiveCombatByCampaign(ctx, campaignID)
}

// Roster reads a combat's combatants in turn order.
func (s *Service) Roster(ctx context.Context, combatID string) ([]storage.Combatant, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.store.ListCombatants(ctx, combatID)
}
