// ABOUTME: Contact, Mandat and Buyer stores with their derived queries
// ABOUTME: Queries filter the in-memory collection on every call
package store

import (
	"fmt"
	"sort"

	"github.com/harperreed/immo/models"
)

type Contacts struct {
	*Collection[models.Contact, *models.Contact]
}

func (s *Contacts) Update(id string, patch models.ContactPatch) (models.Contact, bool, error) {
	return s.Modify(id, patch.Apply)
}

// Search matches names, email and phone, ignoring case and accents.
func (s *Contacts) Search(query string) []models.Contact {
	return s.Filter(func(c models.Contact) bool {
		return matchesAny(query, c.FirstName, c.LastName, c.FullName(), c.Email, c.Phone)
	})
}

// FindByEmail returns the first contact whose email matches case-insensitively.
func (s *Contacts) FindByEmail(email string) (models.Contact, bool) {
	want := Fold(email)
	if want == "" {
		return models.Contact{}, false
	}
	found := s.Filter(func(c models.Contact) bool { return Fold(c.Email) == want })
	if len(found) == 0 {
		return models.Contact{}, false
	}
	return found[0], true
}

type Mandats struct {
	*Collection[models.Mandat, *models.Mandat]
}

// Add defaults the type to MANDAT_SIMPLE and the stage to LEAD, then rejects unknown values.
func (s *Mandats) Add(m models.Mandat) (models.Mandat, error) {
	if m.Type == "" {
		m.Type = models.MandatSimple
	}
	if m.Stage == "" {
		m.Stage = models.StageLead
	}
	if !m.Type.IsValid() {
		return models.Mandat{}, fmt.Errorf("%w: %q", models.ErrInvalidMandatType, m.Type)
	}
	if !m.Stage.IsValid() {
		return models.Mandat{}, fmt.Errorf("%w: %q", models.ErrInvalidStage, m.Stage)
	}
	return s.Collection.Add(m)
}

func (s *Mandats) Update(id string, patch models.MandatPatch) (models.Mandat, bool, error) {
	if patch.Stage != nil && !patch.Stage.IsValid() {
		return models.Mandat{}, false, fmt.Errorf("%w: %q", models.ErrInvalidStage, *patch.Stage)
	}
	if patch.Type != nil && !patch.Type.IsValid() {
		return models.Mandat{}, false, fmt.Errorf("%w: %q", models.ErrInvalidMandatType, *patch.Type)
	}
	return s.Modify(id, patch.Apply)
}

func (s *Mandats) ByStage(stage models.BuyerStage) []models.Mandat {
	return s.Filter(func(m models.Mandat) bool { return m.Stage == stage })
}

func (s *Mandats) ByContact(contactID string) []models.Mandat {
	return s.Filter(func(m models.Mandat) bool { return m.ContactID == contactID })
}

// StageCounts counts mandats per stage; every stage is present.
func (s *Mandats) StageCounts() map[models.BuyerStage]int {
	counts := make(map[models.BuyerStage]int, len(models.BuyerStages))
	for _, stage := range models.BuyerStages {
		counts[stage] = 0
	}
	for _, m := range s.All() {
		counts[m.Stage]++
	}
	return counts
}

// Search matches mandat names and notes.
func (s *Mandats) Search(query string) []models.Mandat {
	return s.Filter(func(m models.Mandat) bool { return matchesAny(query, m.Name, m.Notes) })
}

type Buyers struct {
	*Collection[models.Buyer, *models.Buyer]
}

func (s *Buyers) Add(b models.Buyer) (models.Buyer, error) {
	if b.Stage == "" {
		b.Stage = models.StageLead
	}
	if !b.Stage.IsValid() {
		return models.Buyer{}, fmt.Errorf("%w: %q", models.ErrInvalidStage, b.Stage)
	}
	return s.Collection.Add(b)
}

func (s *Buyers) Update(id string, patch models.BuyerPatch) (models.Buyer, bool, error) {
	if patch.Stage != nil && !patch.Stage.IsValid() {
		return models.Buyer{}, false, fmt.Errorf("%w: %q", models.ErrInvalidStage, *patch.Stage)
	}
	return s.Modify(id, patch.Apply)
}

// ByMandat lists the buyers attached to a mandat, oldest first.
func (s *Buyers) ByMandat(mandatID string) []models.Buyer {
	out := s.Filter(func(b models.Buyer) bool { return b.MandatID == mandatID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// ByMandatAndStage is one column of a mandat's buyer board.
func (s *Buyers) ByMandatAndStage(mandatID string, stage models.BuyerStage) []models.Buyer {
	return s.Filter(func(b models.Buyer) bool { return b.MandatID == mandatID && b.Stage == stage })
}
