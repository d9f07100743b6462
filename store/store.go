// ABOUTME: Opens every entity store over one Storage backend
// ABOUTME: Also exports and restores raw collections for backups and legacy imports
package store

import (
	"encoding/json"
	"fmt"

	"github.com/harperreed/immo/models"
)

// Store groups the entity stores. Each one is an independent collection.
type Store struct {
	Contacts    *Contacts
	Mandats     *Mandats
	Buyers      *Buyers
	SellerLeads *SellerLeads
	Tasks       *CalendarTasks
	Annonces    *Annonces
	Stages      *PipelineStages
	Deals       *Deals
	Goals       *Goals

	deps Deps
}

// Open reads every collection once; afterwards storage is only written.
func Open(deps Deps) (*Store, error) {
	deps = deps.withDefaults()
	s := &Store{deps: deps}

	contacts, err := loadCollection[models.Contact](KeyContacts, deps)
	if err != nil {
		return nil, err
	}
	mandats, err := loadCollection[models.Mandat](KeyMandats, deps)
	if err != nil {
		return nil, err
	}
	buyers, err := loadCollection[models.Buyer](KeyBuyers, deps)
	if err != nil {
		return nil, err
	}
	tasks, err := loadCollection[models.CalendarTask](KeyCalendarTasks, deps)
	if err != nil {
		return nil, err
	}
	annonces, err := loadCollection[models.Annonce](KeyAnnonces, deps)
	if err != nil {
		return nil, err
	}
	deals, err := loadCollection[models.Deal](KeyDeals, deps)
	if err != nil {
		return nil, err
	}

	s.Contacts = &Contacts{contacts}
	s.Mandats = &Mandats{mandats}
	s.Buyers = &Buyers{buyers}
	s.Tasks = &CalendarTasks{tasks}
	s.Annonces = &Annonces{annonces}

	if s.SellerLeads, err = newSellerLeads(deps); err != nil {
		return nil, err
	}
	if s.Stages, err = newPipelineStages(deps); err != nil {
		return nil, err
	}
	s.Deals = &Deals{Collection: deals, stages: s.Stages}
	if s.Goals, err = newGoals(deps); err != nil {
		return nil, err
	}
	return s, nil
}

// Clock returns the clock shared by the stores.
func (s *Store) Clock() Clock {
	return s.deps.Now
}

// IDs returns the identifier generator shared by the stores.
func (s *Store) IDs() IDGenerator {
	return s.deps.IDs
}

// Export returns every collection keyed by its persisted key.
func (s *Store) Export() map[string]any {
	out := map[string]any{
		KeyContacts:       s.Contacts.All(),
		KeyMandats:        s.Mandats.All(),
		KeyBuyers:         s.Buyers.All(),
		KeySellerLeads:    s.SellerLeads.All(),
		KeyCalendarTasks:  s.Tasks.All(),
		KeyAnnonces:       s.Annonces.All(),
		KeyPipelineStages: s.Stages.All(),
		KeyDeals:          s.Deals.All(),
	}
	if goal, ok := s.Goals.Current(); ok {
		out[KeyAnnualGoal] = goal
	}
	return out
}

// Restore replaces one collection from raw JSON, enveloped or legacy. Records keep their ids.
func (s *Store) Restore(key string, data []byte) (int, error) {
	switch key {
	case KeyContacts:
		return restore(s.Contacts.Collection, data)
	case KeyMandats:
		return restore(s.Mandats.Collection, data)
	case KeyBuyers:
		return restore(s.Buyers.Collection, data)
	case KeySellerLeads:
		var leads []models.SellerLead
		if err := decodeSnapshot(data, &leads); err != nil {
			return 0, fmt.Errorf("failed to decode %s: %w", key, err)
		}
		for i := range leads {
			normaliseLead(&leads[i])
		}
		return len(leads), s.SellerLeads.Replace(leads)
	case KeyCalendarTasks:
		return restore(s.Tasks.Collection, data)
	case KeyAnnonces:
		return restore(s.Annonces.Collection, data)
	case KeyPipelineStages:
		return restore(s.Stages.Collection, data)
	case KeyDeals:
		return restore(s.Deals.Collection, data)
	case KeyAnnualGoal:
		var goal *models.AnnualGoal
		if err := decodeSnapshot(data, &goal); err != nil {
			return 0, fmt.Errorf("failed to decode %s: %w", key, err)
		}
		if goal == nil {
			return 0, s.Goals.Clear()
		}
		return 1, s.Goals.Set(*goal)
	}
	return 0, fmt.Errorf("unknown collection key %q", key)
}

func restore[T any, P entity[T]](c *Collection[T, P], data []byte) (int, error) {
	var items []T
	if err := decodeSnapshot(data, &items); err != nil {
		return 0, fmt.Errorf("failed to decode %s: %w", c.Key(), err)
	}
	if err := c.Replace(items); err != nil {
		return 0, err
	}
	return len(items), nil
}

// MarshalJSON lets a whole store be written as one backup document.
func (s *Store) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Export())
}
