package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/dispatch"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/event"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/storage"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/storage/sqlite"
)

func newTestService(t *testing.T) (*Service, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "game.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return NewService(store, dispatch.New(store, nil), nil), store
}

func TestCreateWorld(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()

	world, err := service.CreateWorld(ctx, "Arton", "high fantasy")
	if err != nil {
		t.Fatalf("create world: %v", err)
	}
	if world.ID == "" || world.Title != "Arton" {
		t.Fatalf("unexpected world: %+v", world)
	}

	events, err := store.ListEvents(ctx, world.ID, storage.EventCursor{}, 10)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 || events[0].Type != event.TypeWorldCreated {
		t.Fatalf("expected one world.created event, got %+v", events)
	}
}

func TestCreateWorldRequiresTitle(t *testing.T) {
	service, _ := newTestService(t)
	if _, err := service.CreateWorld(context.Background(), "  ", ""); !dispatch.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateWorldPartialFields(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	world, err := service.CreateWorld(ctx, "Arton", "high fantasy")
	if err != nil {
		t.Fatalf("create world: %v", err)
	}

	title := "Arton Reborn"
	updated, err := service.UpdateWorld(ctx, world.ID, &title, nil)
	if err != nil {
		t.Fatalf("update world: %v", err)
	}
	if updated.Title != "Arton Reborn" || updated.Description != "high fantasy" {
		t.Fatalf("unexpected world after update: %+v", updated)
	}
}

func TestCreateCampaignAndCharacter(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	world, err := service.CreateWorld(ctx, "Arton", "")
	if err != nil {
		t.Fatalf("create world: %v", err)
	}
	campaign, err := service.CreateCampaign(ctx, world.ID, "Saga", "a long one", "tormenta20")
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	if campaign.RulesetID != "tormenta20" {
		t.Fatalf("unexpected campaign: %+v", campaign)
	}

	character, err := service.CreateCharacter(ctx, world.ID, campaign.ID, CharacterParams{
		Name:      "Valkaria",
		Abilities: map[string]int{"for": 16, "des": 14},
		HPMax:     24,
		MPMax:     8,
	})
	if err != nil {
		t.Fatalf("create character: %v", err)
	}
	if character.HPCurrent != 24 || character.MPCurrent != 8 {
		t.Fatalf("expected full resources at creation, got %+v", character)
	}
	if character.Kind != storage.KindCharacter {
		t.Fatalf("expected default kind character, got %s", character.Kind)
	}

	listed, err := service.ListCharacters(ctx, campaign.ID)
	if err != nil {
		t.Fatalf("list characters: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != character.ID {
		t.Fatalf("unexpected characters: %+v", listed)
	}
}

func TestCreateCharacterRequiresCampaign(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	world, err := service.CreateWorld(ctx, "Arton", "")
	if err != nil {
		t.Fatalf("create world: %v", err)
	}
	_, err = service.CreateCharacter(ctx, world.ID, "ghost", CharacterParams{Name: "Valkaria"})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing campaign, got %v", err)
	}
}

func TestUpdateCharacter(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	world, _ := service.CreateWorld(ctx, "Arton", "")
	campaign, _ := service.CreateCampaign(ctx, world.ID, "Saga", "", "tormenta20")
	character, err := service.CreateCharacter(ctx, world.ID, campaign.ID, CharacterParams{Name: "Valkaria", HPMax: 24})
	if err != nil {
		t.Fatalf("create character: %v", err)
	}

	hpMax := 30
	updated, err := service.UpdateCharacter(ctx, world.ID, character.ID, nil, nil, &hpMax, nil)
	if err != nil {
		t.Fatalf("update character: %v", err)
	}
	if updated.HPMax != 30 {
		t.Fatalf("expected hp max 30, got %d", updated.HPMax)
	}
	if updated.Name != "Valkaria" {
		t.Fatalf("expected untouched name, got %q", updated.Name)
	}
}

func TestAddNoteIsLedgerOnly(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()

	world, err := service.CreateWorld(ctx, "Arton", "")
	if err != nil {
		t.Fatalf("create world: %v", err)
	}

	note, err := service.AddNote(ctx, world.ID, "", "o dragão fugiu", event.VisibilityMaster)
	if err != nil {
		t.Fatalf("add note: %v", err)
	}
	if note.Visibility != event.VisibilityMaster {
		t.Fatalf("expected master visibility, got %s", note.Visibility)
	}

	events, err := store.ListEvents(ctx, world.ID, storage.EventCursor{}, 10)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected world.created plus note, got %d events", len(events))
	}
}

func TestConditionLifecycle(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	world, _ := service.CreateWorld(ctx, "Arton", "")
	campaign, _ := service.CreateCampaign(ctx, world.ID, "Saga", "", "tormenta20")
	character, err := service.CreateCharacter(ctx, world.ID, campaign.ID, CharacterParams{Name: "Valkaria"})
	if err != nil {
		t.Fatalf("create character: %v", err)
	}

	condition, err := service.ApplyCondition(ctx, world.ID, character.ID, "Cego", "areia")
	if err != nil {
		t.Fatalf("apply condition: %v", err)
	}
	if condition.Name != "cego" {
		t.Fatalf("expected normalized name cego, got %q", condition.Name)
	}

	active, err := service.ListConditions(ctx, character.ID)
	if err != nil {
		t.Fatalf("list conditions: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 active condition, got %d", len(active))
	}

	if err := service.RemoveCondition(ctx, world.ID, condition.ID); err != nil {
		t.Fatalf("remove condition: %v", err)
	}
	active, err = service.ListConditions(ctx, character.ID)
	if err != nil {
		t.Fatalf("list conditions: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active conditions, got %+v", active)
	}
}

func TestTimelinePagination(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	world, err := service.CreateWorld(ctx, "Arton", "")
	if err != nil {
		t.Fatalf("create world: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := service.AddNote(ctx, world.ID, "", "nota", event.VisibilityPlayers); err != nil {
			t.Fatalf("add note: %v", err)
		}
	}

	page, err := service.Timeline(ctx, world.ID, storage.EventCursor{}, 2)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 events, got %d", len(page))
	}

	last := page[len(page)-1]
	rest, err := service.Timeline(ctx, world.ID, storage.EventCursor{Seq: last.Seq}, 10)
	if err != nil {
		t.Fatalf("timeline rest: %v", err)
	}
	if len(page)+len(rest) != 4 {
		t.Fatalf("expected 4 events total, got %d", len(page)+len(rest))
	}
}

func TestRebuildThroughService(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()

	world, err := service.CreateWorld(ctx, "Arton", "")
	if err != nil {
		t.Fatalf("create world: %v", err)
	}
	if _, err := service.CreateCampaign(ctx, world.ID, "Saga", "", "tormenta20"); err != nil {
		t.Fatalf("create campaign: %v", err)
	}

	// Corrupt the projection; rebuild must restore it from the ledger.
	broken := storage.World{ID: world.ID, Title: "Broken", CreatedAt: world.CreatedAt, UpdatedAt: world.UpdatedAt}
	if err := store.PutWorld(ctx, broken); err != nil {
		t.Fatalf("corrupt world: %v", err)
	}

	applied, err := service.Rebuild(ctx, world.ID)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if applied != 2 {
		t.Fatalf("expected 2 events applied, got %d", applied)
	}

	restored, err := service.GetWorld(ctx, world.ID)
	if err != nil {
		t.Fatalf("get world: %v", err)
	}
	if restored.Title != "Arton" {
		t.Fatalf("expected restored title, got %q", restored.Title)
	}
}
