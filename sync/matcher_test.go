package sync

import (
	"testing"

	"github.com/harperreed/immo/models"
)

func TestMatchContactByEmail(t *testing.T) {
	existing := []models.Contact{
		{Record: models.Record{ID: "c1"}, FirstName: "Alice", Email: "alice@example.com"},
		{Record: models.Record{ID: "c2"}, FirstName: "Bob", Email: "bob@example.com"},
	}

	matcher := NewContactMatcher(existing)

	match, found := matcher.FindMatch("Alice@Example.com ", "")
	if !found {
		t.Fatal("expected to find match for alice@example.com")
	}
	if match.ID != "c1" {
		t.Errorf("expected c1, got %s", match.ID)
	}

	_, found = matcher.FindMatch("charlie@example.com", "")
	if found {
		t.Error("expected no match for charlie@example.com")
	}
}

func TestMatchContactByFoldedName(t *testing.T) {
	matcher := NewContactMatcher([]models.Contact{
		{Record: models.Record{ID: "c1"}, FirstName: "Hélène", LastName: "Dupré"},
	})

	match, found := matcher.FindMatch("", "helene dupre")
	if !found || match.ID != "c1" {
		t.Errorf("expected accent-insensitive name match, got %v %v", match.ID, found)
	}

	if _, found := matcher.FindMatch("", ""); found {
		t.Error("empty email and name must not match")
	}
}

func TestAddContactMatchesLaterRecords(t *testing.T) {
	matcher := NewContactMatcher(nil)
	matcher.AddContact(models.Contact{Record: models.Record{ID: "new"}, FirstName: "Omar", Email: "omar@example.com"})

	if _, found := matcher.FindMatch("omar@example.com", ""); !found {
		t.Error("expected contact added during the run to match")
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Alice@Example.com", "alice@example.com"},
		{"alice.smith@example.com", "alice.smith@example.com"},
		{"  ALICE@EXAMPLE.COM ", "alice@example.com"},
	}

	for _, tt := range tests {
		result := normalizeEmail(tt.input)
		if result != tt.expected {
			t.Errorf("normalizeEmail(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}
