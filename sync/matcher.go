// ABOUTME: Contact deduplication for imports
// ABOUTME: Matches by normalised email first, then by accent-folded full name
package sync

import (
	"strings"

	"github.com/harperreed/immo/models"
	"github.com/harperreed/immo/store"
)

type ContactMatcher struct {
	byEmail map[string]models.Contact
	byName  map[string]models.Contact
}

func NewContactMatcher(contacts []models.Contact) *ContactMatcher {
	m := &ContactMatcher{
		byEmail: make(map[string]models.Contact),
		byName:  make(map[string]models.Contact),
	}
	for _, c := range contacts {
		m.AddContact(c)
	}
	return m
}

// FindMatch looks up a contact by email, falling back to the full name.
func (m *ContactMatcher) FindMatch(email, fullName string) (models.Contact, bool) {
	if e := normalizeEmail(email); e != "" {
		if c, ok := m.byEmail[e]; ok {
			return c, true
		}
	}
	if n := store.Fold(fullName); n != "" {
		c, ok := m.byName[n]
		return c, ok
	}
	return models.Contact{}, false
}

// AddContact registers a contact so later records in the same run match it.
func (m *ContactMatcher) AddContact(c models.Contact) {
	if e := normalizeEmail(c.Email); e != "" {
		m.byEmail[e] = c
	}
	if n := store.Fold(c.FullName()); n != "" {
		m.byName[n] = c
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
