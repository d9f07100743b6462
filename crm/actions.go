// ABOUTME: Workspace operations: stage moves, scoring, lead conversion and goal generation
// ABOUTME: Each wraps one or more store calls and reports unknown ids as errors
package crm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/harperreed/immo/models"
	"github.com/harperreed/immo/pipeline"
	"github.com/harperreed/immo/scoring"
)

// MoveMandat drops a mandat on any stage; stage moves are not restricted.
func (w *Workspace) MoveMandat(id string, target models.BuyerStage) (models.Mandat, error) {
	current, ok := w.Store.Mandats.Get(id)
	if !ok {
		return models.Mandat{}, fmt.Errorf("%w: %s", ErrMandatNotFound, id)
	}
	next, err := pipeline.MoveStage(current.Stage, target)
	if err != nil {
		return current, err
	}
	updated, _, err := w.Store.Mandats.Update(id, models.MandatPatch{Stage: &next})
	if err != nil {
		return current, fmt.Errorf("failed to move mandat: %w", err)
	}
	return updated, nil
}

// MoveBuyer drops a buyer on any stage.
func (w *Workspace) MoveBuyer(id string, target models.BuyerStage) (models.Buyer, error) {
	current, ok := w.Store.Buyers.Get(id)
	if !ok {
		return models.Buyer{}, fmt.Errorf("%w: %s", ErrBuyerNotFound, id)
	}
	next, err := pipeline.MoveStage(current.Stage, target)
	if err != nil {
		return current, err
	}
	updated, _, err := w.Store.Buyers.Update(id, models.BuyerPatch{Stage: &next})
	if err != nil {
		return current, fmt.Errorf("failed to move buyer: %w", err)
	}
	return updated, nil
}

// ScoreMandat runs the seller questionnaire and stores the result on the mandat.
func (w *Workspace) ScoreMandat(id string, answers scoring.Answers) (models.Mandat, error) {
	score, err := scoring.Score(answers)
	if err != nil {
		return models.Mandat{}, err
	}
	updated, found, err := w.Store.Mandats.Update(id, models.MandatPatch{Score: &score})
	if err != nil {
		return models.Mandat{}, fmt.Errorf("failed to save score: %w", err)
	}
	if !found {
		return models.Mandat{}, fmt.Errorf("%w: %s", ErrMandatNotFound, id)
	}
	return updated, nil
}

// ScoreDeal stores a questionnaire score on a deal.
func (w *Workspace) ScoreDeal(id string, answers scoring.Answers) (models.Deal, error) {
	score, err := scoring.Score(answers)
	if err != nil {
		return models.Deal{}, err
	}
	updated, found, err := w.Store.Deals.Update(id, models.DealPatch{Score: &score})
	if err != nil {
		return models.Deal{}, fmt.Errorf("failed to save score: %w", err)
	}
	if !found {
		return models.Deal{}, fmt.Errorf("%w: %s", ErrDealNotFound, id)
	}
	return updated, nil
}

// MoveDeal puts a deal on another stage of its pipeline.
func (w *Workspace) MoveDeal(id, stageID string) (models.Deal, error) {
	updated, found, err := w.Store.Deals.Move(id, stageID)
	if err != nil {
		return models.Deal{}, err
	}
	if !found {
		return models.Deal{}, fmt.Errorf("%w: %s", ErrDealNotFound, id)
	}
	return updated, nil
}

// MarkContacted flags a lead as called.
func (w *Workspace) MarkContacted(leadID string) (models.SellerLead, error) {
	updated, found, err := w.Store.SellerLeads.MarkContacted(leadID)
	if err != nil {
		return models.SellerLead{}, fmt.Errorf("failed to mark contacted: %w", err)
	}
	if !found {
		return models.SellerLead{}, fmt.Errorf("%w: %s", ErrLeadNotFound, leadID)
	}
	return updated, nil
}

// SplitName splits a seller name at the first space into first and last name.
func SplitName(full string) (first, last string) {
	fields := strings.Fields(full)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

// ConvertLeadToContact creates a Contact from a lead and links it. Converting twice
// returns the contact linked the first time and creates nothing.
func (w *Workspace) ConvertLeadToContact(leadID string) (models.Contact, models.SellerLead, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	lead, ok := w.Store.SellerLeads.Get(leadID)
	if !ok {
		return models.Contact{}, models.SellerLead{}, fmt.Errorf("%w: %s", ErrLeadNotFound, leadID)
	}
	if lead.ConvertedToContact {
		contact, _ := w.Store.Contacts.Get(lead.ContactID)
		return contact, lead, nil
	}

	first, last := SplitName(lead.SellerName)
	contact, err := w.Store.Contacts.Add(models.Contact{
		FirstName: first,
		LastName:  last,
		Phone:     lead.Phone,
		Notes:     lead.Notes,
	})
	if err != nil {
		return models.Contact{}, lead, fmt.Errorf("failed to create contact: %w", err)
	}

	converted := true
	updated, _, err := w.Store.SellerLeads.Update(leadID, models.SellerLeadPatch{
		ContactID:          &contact.ID,
		ConvertedToContact: &converted,
	})
	if err != nil {
		if _, rbErr := w.Store.Contacts.Delete(contact.ID); rbErr != nil {
			return models.Contact{}, lead, errors.Join(fmt.Errorf("failed to link contact: %w", err), rbErr)
		}
		return models.Contact{}, lead, fmt.Errorf("failed to link contact: %w", err)
	}

	log.Info("lead converted to contact", "lead", leadID, "contact", contact.ID)
	return contact, updated, nil
}

// GenerateGoal plans a year and replaces the current annual goal with it.
func (w *Workspace) GenerateGoal(year int, revenue float64, seniority models.SeniorityLevel) (models.AnnualGoal, error) {
	goal, err := w.planner.Generate(year, revenue, seniority)
	if err != nil {
		return models.AnnualGoal{}, err
	}
	if err := w.Store.Goals.Set(*goal); err != nil {
		return models.AnnualGoal{}, fmt.Errorf("failed to save goal: %w", err)
	}
	return *goal, nil
}
