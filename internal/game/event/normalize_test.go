package event

import (
	"strings"
	"testing"
)

func validEvent() Event {
	return Event{
		WorldID:     "w1",
		Type:        TypeNoteAdded,
		PayloadJSON: []byte(`{"text":"hello"}`),
	}
}

func TestNormalizeForAppendDefaults(t *testing.T) {
	evt, err := NormalizeForAppend(validEvent())
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if evt.Scope != ScopeMicro {
		t.Fatalf("expected default scope micro, got %q", evt.Scope)
	}
	if evt.Visibility != VisibilityPlayers {
		t.Fatalf("expected default visibility players, got %q", evt.Visibility)
	}
}

func TestNormalizeForAppendRequiresWorldID(t *testing.T) {
	evt := validEvent()
	evt.WorldID = "  "
	if _, err := NormalizeForAppend(evt); err == nil {
		t.Fatal("expected error for missing world id")
	}
}

func TestNormalizeForAppendRejectsPresetID(t *testing.T) {
	evt := validEvent()
	evt.ID = "evt-1"
	_, err := NormalizeForAppend(evt)
	if err == nil {
		t.Fatal("expected error for preset event id")
	}
	if !strings.Contains(err.Error(), "assigned by storage") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNormalizeForAppendRejectsPresetSeq(t *testing.T) {
	evt := validEvent()
	evt.Seq = 7
	_, err := NormalizeForAppend(evt)
	if err == nil {
		t.Fatal("expected error for preset event seq")
	}
	if !strings.Contains(err.Error(), "assigned by storage") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNormalizeForAppendRequiresType(t *testing.T) {
	evt := validEvent()
	evt.Type = "  "
	if _, err := NormalizeForAppend(evt); err == nil {
		t.Fatal("expected error for missing type")
	}
}

func TestNormalizeForAppendRejectsBadScope(t *testing.T) {
	evt := validEvent()
	evt.Scope = "galactic"
	if _, err := NormalizeForAppend(evt); err == nil {
		t.Fatal("expected error for invalid scope")
	}
}

func TestNormalizeForAppendRejectsBadVisibility(t *testing.T) {
	evt := validEvent()
	evt.Visibility = "nobody"
	if _, err := NormalizeForAppend(evt); err == nil {
		t.Fatal("expected error for invalid visibility")
	}
}

func TestNormalizeForAppendDefaultsEmptyPayload(t *testing.T) {
	evt := validEvent()
	evt.PayloadJSON = nil
	normalized, err := NormalizeForAppend(evt)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if string(normalized.PayloadJSON) != "{}" {
		t.Fatalf("expected empty object payload, got %q", normalized.PayloadJSON)
	}
}

func TestNormalizeForAppendRejectsInvalidJSON(t *testing.T) {
	evt := validEvent()
	evt.PayloadJSON = []byte("{not json")
	if _, err := NormalizeForAppend(evt); err == nil {
		t.Fatal("expected error for invalid payload json")
	}
}

func TestNormalizeForAppendTrimsFields(t *testing.T) {
	evt := validEvent()
	evt.CampaignID = " c1 "
	evt.ActorID = " a1 "
	normalized, err := NormalizeForAppend(evt)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if normalized.CampaignID != "c1" || normalized.ActorID != "a1" {
		t.Fatalf("expected trimmed fields, got %q %q", normalized.CampaignID, normalized.ActorID)
	}
}
