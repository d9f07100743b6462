// ABOUTME: Dashboard statistics computed from mandats, seller leads and the annual goal
// ABOUTME: Everything is derived on each call from the in-memory collections
package crm

import (
	"math"

	"github.com/harperreed/immo/models"
)

// DefaultRevenueGoal is shown when no annual goal has been generated.
const DefaultRevenueGoal = 100000.0

type DashboardStats struct {
	TotalMandatValue     float64                       `json:"totalMandatValue"`
	RevenueGoal          float64                       `json:"revenueGoal"`
	RevenuePercent       float64                       `json:"revenuePercent"`
	TransactionsYTD      int                           `json:"transactionsYtd"`
	Prospects            int                           `json:"prospects"`
	ProspectToMandatRate float64                       `json:"prospectToMandatRate"`
	MandatToSaleRate     float64                       `json:"mandatToSaleRate"`
	AvgDaysToSell        float64                       `json:"avgDaysToSell"`
	MandatsByStage       map[models.BuyerStage]int     `json:"mandatsByStage"`
	LeadsByPhase         map[models.SellerPhase]int    `json:"leadsByPhase"`
	Buyers               int                           `json:"buyers"`
	ScoredMandats        map[models.Classification]int `json:"scoredMandats"`
}

// Dashboard computes the headline figures shown on the home screen.
func (w *Workspace) Dashboard() DashboardStats {
	mandats := w.Store.Mandats.All()
	leads := w.Store.SellerLeads.PhaseCounts()

	stats := DashboardStats{
		RevenueGoal:    DefaultRevenueGoal,
		MandatsByStage: w.Store.Mandats.StageCounts(),
		LeadsByPhase:   leads,
		Buyers:         w.Store.Buyers.Len(),
		ScoredMandats:  map[models.Classification]int{},
	}
	if goal, ok := w.Store.Goals.Current(); ok && goal.RevenueTarget > 0 {
		stats.RevenueGoal = goal.RevenueTarget
	}

	var soldDays float64
	for _, m := range mandats {
		stats.TotalMandatValue += m.Value
		if m.Stage == models.StagePurchased {
			stats.TransactionsYTD++
			soldDays += math.Ceil(math.Abs(m.UpdatedAt.Sub(m.CreatedAt).Hours()) / 24)
		}
		if m.Score != nil {
			stats.ScoredMandats[m.Score.Classification]++
		}
	}

	stats.RevenuePercent = percent(stats.TotalMandatValue, stats.RevenueGoal)
	stats.Prospects = leads[models.PhaseProspect] + leads[models.PhaseProspectQualifie]
	if stats.Prospects > 0 {
		stats.ProspectToMandatRate = float64(len(mandats)) / float64(stats.Prospects) * 100
	}
	if len(mandats) > 0 {
		stats.MandatToSaleRate = float64(stats.TransactionsYTD) / float64(len(mandats)) * 100
	}
	if stats.TransactionsYTD > 0 {
		stats.AvgDaysToSell = soldDays / float64(stats.TransactionsYTD)
	}
	return stats
}

// percent is value/target as a percentage capped at 100; zero when target is not positive.
func percent(value, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return math.Min(value/target*100, 100)
}
