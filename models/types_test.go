// ABOUTME: Tests for CRM data models
// ABOUTME: Validates enum parsing, phase ordering, patches and calendar task validation
package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestSellerPhaseIndex(t *testing.T) {
	tests := []struct {
		phase SellerPhase
		want  int
	}{
		{"", 0},
		{PhaseProspect, 0},
		{PhaseProspectQualifie, 1},
		{PhaseClient, 2},
		{PhaseApresVente, 3},
		{"ARCHIVED", -1},
	}

	for _, tt := range tests {
		if got := tt.phase.Index(); got != tt.want {
			t.Errorf("Index(%q) = %d, want %d", tt.phase, got, tt.want)
		}
	}
}

func TestEffectivePhaseDefaultsToProspect(t *testing.T) {
	lead := SellerLead{SellerName: "Karim"}
	if lead.EffectivePhase() != PhaseProspect {
		t.Errorf("expected PROSPECT for unset phase, got %s", lead.EffectivePhase())
	}

	lead.Phase = PhaseClient
	if lead.EffectivePhase() != PhaseClient {
		t.Errorf("expected CLIENT, got %s", lead.EffectivePhase())
	}
}

func TestParseBuyerStage(t *testing.T) {
	stage, err := ParseBuyerStage("negociation")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stage != StageNegociation {
		t.Errorf("expected NEGOCIATION, got %s", stage)
	}

	if _, err := ParseBuyerStage("SOLD"); !errors.Is(err, ErrInvalidStage) {
		t.Errorf("expected ErrInvalidStage, got %v", err)
	}
}

func TestParseMandatTypeAcceptsShortForm(t *testing.T) {
	for raw, want := range map[string]MandatType{
		"SIMPLE":           MandatSimple,
		"exclusif":         MandatExclusif,
		"MANDAT_RECHERCHE": MandatRecherche,
	} {
		got, err := ParseMandatType(raw)
		if err != nil {
			t.Fatalf("ParseMandatType(%q) failed: %v", raw, err)
		}
		if got != want {
			t.Errorf("ParseMandatType(%q) = %s, want %s", raw, got, want)
		}
	}

	if _, err := ParseMandatType("LOCATION"); !errors.Is(err, ErrInvalidMandatType) {
		t.Errorf("expected ErrInvalidMandatType, got %v", err)
	}
}

func TestParseSeniorityToleratesAccents(t *testing.T) {
	got, err := ParseSeniority("confirme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != SeniorityConfirme {
		t.Errorf("expected Confirmé, got %s", got)
	}

	if _, err := ParseSeniority("Intern"); !errors.Is(err, ErrInvalidSeniority) {
		t.Errorf("expected ErrInvalidSeniority, got %v", err)
	}
}

func TestMandatPatchLeavesUnsetFields(t *testing.T) {
	m := Mandat{Name: "Villa Gammarth", Stage: StageLead, Value: 450000}
	stage := StageVisites
	MandatPatch{Stage: &stage}.Apply(&m)

	if m.Stage != StageVisites {
		t.Errorf("expected stage VISITES, got %s", m.Stage)
	}
	if m.Name != "Villa Gammarth" || m.Value != 450000 {
		t.Errorf("patch modified unrelated fields: %+v", m)
	}
}

func TestEmptyPatchIsNoop(t *testing.T) {
	lead := SellerLead{SellerName: "Sami", Photos: []string{"a.jpg"}, Contacted: true}
	before := lead
	SellerLeadPatch{}.Apply(&lead)

	if lead.SellerName != before.SellerName || lead.Contacted != before.Contacted || len(lead.Photos) != 1 {
		t.Errorf("empty patch changed the lead: %+v", lead)
	}
}

func TestCalendarTaskValidate(t *testing.T) {
	tests := []struct {
		name    string
		task    CalendarTask
		wantErr bool
	}{
		{"valid", CalendarTask{Date: "2026-03-14", StartTime: "09:00", EndTime: "10:30"}, false},
		{"same start and end", CalendarTask{Date: "2026-03-14", StartTime: "09:00", EndTime: "09:00"}, false},
		{"bad date", CalendarTask{Date: "14/03/2026", StartTime: "09:00", EndTime: "10:00"}, true},
		{"bad time", CalendarTask{Date: "2026-03-14", StartTime: "9h", EndTime: "10:00"}, true},
		{"ends before start", CalendarTask{Date: "2026-03-14", StartTime: "11:00", EndTime: "10:00"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidSchedule) {
				t.Errorf("expected ErrInvalidSchedule, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestRecordJSONIsFlattened(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := Contact{FirstName: "Leila", LastName: "Ben Ali"}
	c.Stamp("c-1", created)

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if raw["id"] != "c-1" {
		t.Errorf("expected top-level id, got %v", raw["id"])
	}
	if raw["createdAt"] != "2026-01-02T03:04:05Z" {
		t.Errorf("expected ISO-8601 createdAt, got %v", raw["createdAt"])
	}
	if c.FullName() != "Leila Ben Ali" {
		t.Errorf("unexpected full name %q", c.FullName())
	}
}
