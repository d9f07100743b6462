// ABOUTME: Realized monthly activity measured from record timestamps
// ABOUTME: Feeds goals.Report so the annual plan can be compared with what happened
package crm

import (
	"time"

	"github.com/harperreed/immo/goals"
	"github.com/harperreed/immo/models"
)

// stageRank orders buyer stages so "reached OFFRE or later" can be tested.
func stageRank(s models.BuyerStage) int {
	for i, st := range models.BuyerStages {
		if st == s {
			return i
		}
	}
	return -1
}

func reached(s, floor models.BuyerStage) bool {
	return stageRank(s) >= stageRank(floor)
}

// Realized counts activity per month of year.
// Creation months count contacts, leads, mandats, buyers and annonces. A mandat's last
// update month counts offers, accepted offers and transactions by the stage it reached.
func (w *Workspace) Realized(year int) []models.MonthlyGoal {
	months := make([]models.MonthlyGoal, 12)
	for i := range months {
		months[i].Month = i + 1
	}
	slot := func(t time.Time) *models.MonthlyGoal {
		if t.Year() != year {
			return nil
		}
		return &months[int(t.Month())-1]
	}

	for _, c := range w.Store.Contacts.All() {
		if m := slot(c.CreatedAt); m != nil {
			m.Contacts++
		}
	}
	for _, l := range w.Store.SellerLeads.All() {
		if m := slot(l.CreatedAt); m != nil {
			m.Prospects++
		}
	}
	for _, b := range w.Store.Buyers.All() {
		if m := slot(b.CreatedAt); m != nil {
			m.NewBuyerRequests++
		}
	}
	for _, a := range w.Store.Annonces.All() {
		if m := slot(a.CreatedAt); m != nil {
			m.ActiveProperties++
		}
	}
	for _, md := range w.Store.Mandats.All() {
		if m := slot(md.CreatedAt); m != nil {
			m.NewMandates++
		}
		m := slot(md.UpdatedAt)
		if m == nil {
			continue
		}
		if reached(md.Stage, models.StageOffre) {
			m.Offers++
		}
		if reached(md.Stage, models.StageNegociation) {
			m.AcceptedOffers++
		}
		if reached(md.Stage, models.StagePurchased) {
			m.Transactions++
			m.Revenue += md.Value
		}
	}
	return months
}

// GoalProgress compares the current annual goal with realized activity for its year.
func (w *Workspace) GoalProgress() ([]goals.KPI, error) {
	goal, ok := w.Store.Goals.Current()
	if !ok {
		return nil, ErrNoGoal
	}
	return goals.Report(&goal, w.Realized(goal.Year)), nil
}
