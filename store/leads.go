// ABOUTME: Seller lead store; phases are normalised to PROSPECT when written or loaded
// ABOUTME: Phase changes bypass the phase rules here and must come through the crm workspace
package store

import (
	"fmt"

	"github.com/harperreed/immo/models"
)

type SellerLeads struct {
	*Collection[models.SellerLead, *models.SellerLead]
}

func newSellerLeads(deps Deps) (*SellerLeads, error) {
	c, err := loadCollection[models.SellerLead](KeySellerLeads, deps)
	if err != nil {
		return nil, err
	}
	for i := range c.items {
		normaliseLead(&c.items[i])
	}
	return &SellerLeads{c}, nil
}

func normaliseLead(l *models.SellerLead) {
	if l.Phase == "" {
		l.Phase = models.PhaseProspect
	}
	if l.Photos == nil {
		l.Photos = []string{}
	}
}

// Add stores a new lead, not yet contacted nor converted, in phase PROSPECT unless one is given.
func (s *SellerLeads) Add(l models.SellerLead) (models.SellerLead, error) {
	normaliseLead(&l)
	if !l.Phase.IsValid() {
		return models.SellerLead{}, fmt.Errorf("%w: %q", models.ErrInvalidPhase, l.Phase)
	}
	if l.PropertyType != "" {
		if _, err := models.ParsePropertyType(string(l.PropertyType)); err != nil {
			return models.SellerLead{}, err
		}
	}
	l.Photos = append([]string{}, l.Photos...)
	l.Contacted = false
	l.ConvertedToContact = false
	return s.Collection.Add(l)
}

func (s *SellerLeads) Update(id string, patch models.SellerLeadPatch) (models.SellerLead, bool, error) {
	return s.Modify(id, patch.Apply)
}

// SetPhase writes a phase without checking transition rules.
func (s *SellerLeads) SetPhase(id string, phase models.SellerPhase) (models.SellerLead, bool, error) {
	if !phase.IsValid() {
		return models.SellerLead{}, false, fmt.Errorf("%w: %q", models.ErrInvalidPhase, phase)
	}
	return s.Modify(id, func(l *models.SellerLead) { l.Phase = phase })
}

func (s *SellerLeads) MarkContacted(id string) (models.SellerLead, bool, error) {
	return s.Modify(id, func(l *models.SellerLead) { l.Contacted = true })
}

// ByPhase lists leads in a phase; a lead without a phase counts as PROSPECT.
func (s *SellerLeads) ByPhase(phase models.SellerPhase) []models.SellerLead {
	return s.Filter(func(l models.SellerLead) bool { return l.EffectivePhase() == phase })
}

// PhaseCounts counts leads per phase; every phase is present.
func (s *SellerLeads) PhaseCounts() map[models.SellerPhase]int {
	counts := make(map[models.SellerPhase]int, len(models.SellerPhases))
	for _, p := range models.SellerPhases {
		counts[p] = 0
	}
	for _, l := range s.All() {
		counts[l.EffectivePhase()]++
	}
	return counts
}

// Search matches seller name, title, region and phone, ignoring case and accents.
func (s *SellerLeads) Search(query string) []models.SellerLead {
	return s.Filter(func(l models.SellerLead) bool {
		return matchesAny(query, l.SellerName, l.Title, l.Region, l.Phone)
	})
}

// NotContacted lists leads still waiting for a first call.
func (s *SellerLeads) NotContacted() []models.SellerLead {
	return s.Filter(func(l models.SellerLead) bool { return !l.Contacted })
}
