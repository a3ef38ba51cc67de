package combat

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/dice"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/dispatch"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/projection"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/rules"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/rules/tormenta"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/session"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/storage"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/storage/sqlite"
)

// queueRoller returns the given values in order, cycling when exhausted.
func queueRoller(values ...int) dice.Roller {
	i := 0
	return dice.RollFunc(func(sides int) int {
		value := values[i%len(values)]
		i++
		return value
	})
}

type fixture struct {
	store    *sqlite.Store
	sessions *session.Service
	combat   *Service
	worldID  string
	campaign storage.Campaign
}

func newFixture(t *testing.T, roller dice.Roller) *fixture {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "game.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	registry, err := rules.NewRegistry(tormenta.New())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	dispatcher := dispatch.New(store, nil)
	sessions := session.NewService(store, dispatcher, nil)

	ctx := context.Background()
	world, err := sessions.CreateWorld(ctx, "Arton", "")
	if err != nil {
		t.Fatalf("create world: %v", err)
	}
	campaign, err := sessions.CreateCampaign(ctx, world.ID, "Saga", "", tormenta.RulesetID)
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}

	return &fixture{
		store:    store,
		sessions: sessions,
		combat:   NewService(store, dispatcher, registry, roller, nil),
		worldID:  world.ID,
		campaign: campaign,
	}
}

// addCharacter creates a character and waits out the millisecond clock so
// insertion order is unambiguous.
func (f *fixture) addCharacter(t *testing.T, name string, des, hpMax, mpMax int) storage.Character {
	t.Helper()
	character, err := f.sessions.CreateCharacter(context.Background(), f.worldID, f.campaign.ID, session.CharacterParams{
		Name:      name,
		Abilities: map[string]int{"des": des},
		HPMax:     hpMax,
		MPMax:     mpMax,
	})
	if err != nil {
		t.Fatalf("create character %s: %v", name, err)
	}
	time.Sleep(2 * time.Millisecond)
	return character
}

func TestStartIsIdempotent(t *testing.T) {
	f := newFixture(t, queueRoller(10))
	ctx := context.Background()

	first, err := f.combat.Start(ctx, f.worldID, f.campaign.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !first.IsActive || first.Round != 1 || first.TurnIndex != 0 {
		t.Fatalf("unexpected combat: %+v", first)
	}

	second, err := f.combat.Start(ctx, f.worldID, f.campaign.ID)
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same combat, got %s and %s", first.ID, second.ID)
	}

	events, err := f.store.ListEvents(ctx, f.worldID, storage.EventCursor{}, 50)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	started := 0
	for _, evt := range events {
		if evt.Type == "combat.started" {
			started++
		}
	}
	if started != 1 {
		t.Fatalf("expected 1 combat.started event, got %d", started)
	}
}

func TestStartRequiresCampaign(t *testing.T) {
	f := newFixture(t, queueRoller(10))
	if _, err := f.combat.Start(context.Background(), f.worldID, "ghost"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRollInitiativeOrdersByTotalDescending(t *testing.T) {
	// Ana rolls 8, Bruno rolls 18, Cora rolls 12.
	f := newFixture(t, queueRoller(8, 18, 12))
	ctx := context.Background()

	ana := f.addCharacter(t, "Ana", 14, 20, 0)   // +2 -> 10
	bruno := f.addCharacter(t, "Bruno", 10, 22, 0) // +0 -> 18
	cora := f.addCharacter(t, "Cora", 16, 18, 0)  // +3 -> 15

	combat, err := f.combat.Start(ctx, f.worldID, f.campaign.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	roster, err := f.combat.RollInitiative(ctx, f.worldID, combat.ID)
	if err != nil {
		t.Fatalf("roll initiative: %v", err)
	}
	if len(roster) != 3 {
		t.Fatalf("expected 3 combatants, got %d", len(roster))
	}

	wantOrder := []struct {
		name  string
		refID string
		total int
	}{
		{"Bruno", bruno.ID, 18},
		{"Cora", cora.ID, 15},
		{"Ana", ana.ID, 10},
	}
	for i, want := range wantOrder {
		got := roster[i]
		if got.Name != want.name || got.RefID != want.refID {
			t.Fatalf("position %d: expected %s, got %s", i, want.name, got.Name)
		}
		if got.Initiative != want.total {
			t.Fatalf("position %d: expected total %d, got %d", i, want.total, got.Initiative)
		}
		if got.SortOrder != i {
			t.Fatalf("position %d: expected sort order %d, got %d", i, i, got.SortOrder)
		}
	}
	if roster[0].HPMax != 22 || roster[0].HPCurrent != 22 {
		t.Fatalf("expected hit points copied onto combatant, got %+v", roster[0])
	}
}

func TestRollInitiativeTiesKeepInsertionOrder(t *testing.T) {
	// Same d20 and same dexterity: both total 12.
	f := newFixture(t, queueRoller(12, 12))
	ctx := context.Background()

	f.addCharacter(t, "Primeira", 10, 10, 0)
	f.addCharacter(t, "Segunda", 10, 10, 0)

	combat, err := f.combat.Start(ctx, f.worldID, f.campaign.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	roster, err := f.combat.RollInitiative(ctx, f.worldID, combat.ID)
	if err != nil {
		t.Fatalf("roll initiative: %v", err)
	}
	if roster[0].Name != "Primeira" || roster[1].Name != "Segunda" {
		t.Fatalf("expected insertion order on tie, got %s then %s", roster[0].Name, roster[1].Name)
	}
}

func TestRollInitiativeReplacesRoster(t *testing.T) {
	f := newFixture(t, queueRoller(10, 15))
	ctx := context.Background()

	f.addCharacter(t, "Ana", 10, 20, 0)

	combat, err := f.combat.Start(ctx, f.worldID, f.campaign.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	first, err := f.combat.RollInitiative(ctx, f.worldID, combat.ID)
	if err != nil {
		t.Fatalf("first roll: %v", err)
	}
	second, err := f.combat.RollInitiative(ctx, f.worldID, combat.ID)
	if err != nil {
		t.Fatalf("second roll: %v", err)
	}

	if len(second) != 1 {
		t.Fatalf("expected re-roll to replace roster, got %d combatants", len(second))
	}
	if second[0].ID == first[0].ID {
		t.Fatal("expected a fresh combatant id on re-roll")
	}
	if second[0].Initiative != 15 {
		t.Fatalf("expected new roll 15, got %d", second[0].Initiative)
	}
}

func TestRollInitiativeRequiresActiveCombat(t *testing.T) {
	f := newFixture(t, queueRoller(10))
	ctx := context.Background()

	f.addCharacter(t, "Ana", 10, 20, 0)
	combat, err := f.combat.Start(ctx, f.worldID, f.campaign.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := f.combat.End(ctx, f.worldID, combat.ID); err != nil {
		t.Fatalf("end: %v", err)
	}

	if _, err := f.combat.RollInitiative(ctx, f.worldID, combat.ID); !errors.Is(err, ErrCombatNotActive) {
		t.Fatalf("expected ErrCombatNotActive, got %v", err)
	}
}

func TestRollInitiativeEmptyCampaign(t *testing.T) {
	f := newFixture(t, queueRoller(10))
	ctx := context.Background()

	combat, err := f.combat.Start(ctx, f.worldID, f.campaign.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := f.combat.RollInitiative(ctx, f.worldID, combat.ID); !errors.Is(err, ErrEmptyRoster) {
		t.Fatalf("expected ErrEmptyRoster, got %v", err)
	}
}

func TestNextTurnWrapsAndIncrementsRound(t *testing.T) {
	f := newFixture(t, queueRoller(18, 10))
	ctx := context.Background()

	f.addCharacter(t, "Ana", 10, 20, 0)
	f.addCharacter(t, "Bruno", 10, 20, 0)

	combat, err := f.combat.Start(ctx, f.worldID, f.campaign.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := f.combat.RollInitiative(ctx, f.worldID, combat.ID); err != nil {
		t.Fatalf("roll initiative: %v", err)
	}

	advanced, err := f.combat.NextTurn(ctx, f.worldID, combat.ID)
	if err != nil {
		t.Fatalf("next turn: %v", err)
	}
	if advanced.TurnIndex != 1 || advanced.Round != 1 {
		t.Fatalf("expected turn 1 round 1, got turn %d round %d", advanced.TurnIndex, advanced.Round)
	}

	wrapped, err := f.combat.NextTurn(ctx, f.worldID, combat.ID)
	if err != nil {
		t.Fatalf("wrap turn: %v", err)
	}
	if wrapped.TurnIndex != 0 || wrapped.Round != 2 {
		t.Fatalf("expected wrap to turn 0 round 2, got turn %d round %d", wrapped.TurnIndex, wrapped.Round)
	}
}

func TestNextTurnRequiresActiveCombat(t *testing.T) {
	f := newFixture(t, queueRoller(10))
	ctx := context.Background()

	f.addCharacter(t, "Ana", 10, 20, 0)
	combat, err := f.combat.Start(ctx, f.worldID, f.campaign.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := f.combat.End(ctx, f.worldID, combat.ID); err != nil {
		t.Fatalf("end: %v", err)
	}
	if _, err := f.combat.NextTurn(ctx, f.worldID, combat.ID); !errors.Is(err, ErrCombatNotActive) {
		t.Fatalf("expected ErrCombatNotActive, got %v", err)
	}
}

func TestNextTurnRequiresRoster(t *testing.T) {
	f := newFixture(t, queueRoller(10))
	ctx := context.Background()

	combat, err := f.combat.Start(ctx, f.worldID, f.campaign.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := f.combat.NextTurn(ctx, f.worldID, combat.ID); !errors.Is(err, ErrEmptyRoster) {
		t.Fatalf("expected ErrEmptyRoster, got %v", err)
	}
}

func TestEndIsIdempotent(t *testing.T) {
	f := newFixture(t, queueRoller(10))
	ctx := context.Background()

	combat, err := f.combat.Start(ctx, f.worldID, f.campaign.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := f.combat.End(ctx, f.worldID, combat.ID); err != nil {
		t.Fatalf("end: %v", err)
	}
	if err := f.combat.End(ctx, f.worldID, combat.ID); err != nil {
		t.Fatalf("re-end: %v", err)
	}
	if err := f.combat.End(ctx, f.worldID, "ghost"); err != nil {
		t.Fatalf("end unknown combat: %v", err)
	}

	if _, err := f.combat.Active(ctx, f.campaign.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected no active combat, got %v", err)
	}
}

func TestRebuildRestoresCombatState(t *testing.T) {
	f := newFixture(t, queueRoller(18, 10))
	ctx := context.Background()

	f.addCharacter(t, "Ana", 10, 20, 0)
	f.addCharacter(t, "Bruno", 10, 20, 0)

	combat, err := f.combat.Start(ctx, f.worldID, f.campaign.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	roster, err := f.combat.RollInitiative(ctx, f.worldID, combat.ID)
	if err != nil {
		t.Fatalf("roll initiative: %v", err)
	}
	if _, err := f.combat.NextTurn(ctx, f.worldID, combat.ID); err != nil {
		t.Fatalf("next turn: %v", err)
	}

	if _, err := projection.Rebuild(ctx, f.store, f.worldID); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	rebuilt, err := f.combat.Get(ctx, combat.ID)
	if err != nil {
		t.Fatalf("get combat: %v", err)
	}
	if !rebuilt.IsActive || rebuilt.TurnIndex != 1 || rebuilt.Round != 1 {
		t.Fatalf("unexpected rebuilt combat: %+v", rebuilt)
	}

	rebuiltRoster, err := f.combat.Roster(ctx, combat.ID)
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	if len(rebuiltRoster) != len(roster) {
		t.Fatalf("expected %d combatants after rebuild, got %d", len(roster), len(rebuiltRoster))
	}
	for i := range roster {
		if rebuiltRoster[i].ID != roster[i].ID || rebuiltRoster[i].Initiative != roster[i].Initiative {
			t.Fatalf("position %d diverged after rebuild: %+v vs %+v", i, roster[i], rebuiltRoster[i])
		}
	}
}
