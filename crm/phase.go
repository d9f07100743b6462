// ABOUTME: Seller lead phase transitions, including the CLIENT promotion that creates a Mandat
// ABOUTME: Mandat creation and the phase change commit together or not at all
package crm

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/harperreed/immo/models"
	"github.com/harperreed/immo/pipeline"
)

// MandatConfirmer reviews the pre-filled Mandat for a CLIENT promotion.
// Returning false abandons the promotion and leaves the lead untouched.
type MandatConfirmer func(draft models.Mandat) (models.Mandat, bool)

// AcceptDraft confirms the pre-filled Mandat unchanged.
func AcceptDraft(draft models.Mandat) (models.Mandat, bool) {
	return draft, true
}

// DeclineDraft abandons every CLIENT promotion.
func DeclineDraft(models.Mandat) (models.Mandat, bool) {
	return models.Mandat{}, false
}

// PhaseOutcome reports what a transition request did.
type PhaseOutcome struct {
	Lead     models.SellerLead
	Decision pipeline.Decision
	Applied  bool
	Mandat   *models.Mandat
}

// MandatDraft pre-fills the Mandat created when lead becomes a client.
func MandatDraft(lead models.SellerLead, today string) models.Mandat {
	return models.Mandat{
		Name:      "Mandat pour " + lead.Title,
		ContactID: lead.ContactID,
		Type:      models.MandatSimple,
		Stage:     models.StageLead,
		Value:     0,
		Date:      today,
		Notes:     "Créé à partir du lead vendeur: " + lead.SellerName,
	}
}

// MandatDraftFor returns the draft for a stored lead.
func (w *Workspace) MandatDraftFor(leadID string) (models.Mandat, error) {
	lead, ok := w.Store.SellerLeads.Get(leadID)
	if !ok {
		return models.Mandat{}, fmt.Errorf("%w: %s", ErrLeadNotFound, leadID)
	}
	return MandatDraft(lead, w.today()), nil
}

// RequestPhaseTransition moves a lead to target following the phase rules.
// Demoting a CLIENT or APRES_VENTE lead is ignored without error. Promoting to CLIENT
// asks confirm for the Mandat to create; a nil confirm accepts the draft.
func (w *Workspace) RequestPhaseTransition(leadID string, target models.SellerPhase, confirm MandatConfirmer) (PhaseOutcome, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	lead, ok := w.Store.SellerLeads.Get(leadID)
	if !ok {
		return PhaseOutcome{}, fmt.Errorf("%w: %s", ErrLeadNotFound, leadID)
	}

	decision, err := pipeline.DecidePhase(lead.Phase, target)
	if err != nil {
		return PhaseOutcome{Lead: lead}, err
	}
	out := PhaseOutcome{Lead: lead, Decision: decision}

	switch decision {
	case pipeline.Reject:
		log.Debug("phase demotion ignored", "lead", leadID, "from", lead.Phase, "to", target)
		return out, nil

	case pipeline.Commit:
		updated, _, err := w.Store.SellerLeads.SetPhase(leadID, target)
		if err != nil {
			return out, fmt.Errorf("failed to set phase: %w", err)
		}
		out.Lead, out.Applied = updated, true
		return out, nil
	}

	if confirm == nil {
		confirm = AcceptDraft
	}
	draft, accepted := confirm(MandatDraft(lead, w.today()))
	if !accepted {
		log.Debug("client promotion abandoned", "lead", leadID)
		return out, nil
	}

	mandat, err := w.Store.Mandats.Add(draft)
	if err != nil {
		return out, fmt.Errorf("failed to create mandat: %w", err)
	}

	updated, _, err := w.Store.SellerLeads.SetPhase(leadID, target)
	if err != nil {
		if _, rbErr := w.Store.Mandats.Delete(mandat.ID); rbErr != nil {
			log.Error("failed to roll back mandat", "mandat", mandat.ID, "err", rbErr)
			return out, errors.Join(fmt.Errorf("failed to set phase: %w", err), rbErr)
		}
		return out, fmt.Errorf("failed to set phase: %w", err)
	}

	log.Info("lead promoted to client", "lead", leadID, "mandat", mandat.ID)
	out.Lead, out.Applied, out.Mandat = updated, true, &mandat
	return out, nil
}
