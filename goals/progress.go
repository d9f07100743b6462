// ABOUTME: Goal tracking: compares realized activity against an annual plan
// ABOUTME: Produces per-KPI percentage and On Track / At Risk / Behind status
package goals

import (
	"math"

	"github.com/harperreed/immo/models"
)

type Status string

const (
	StatusOnTrack Status = "On Track"
	StatusAtRisk  Status = "At Risk"
	StatusBehind  Status = "Behind"
)

// AtRiskThreshold is the percentage below which a KPI is Behind.
const AtRiskThreshold = 65.0

// KPI is one tracked indicator of an annual goal.
type KPI struct {
	Name    string  `json:"name"`
	Target  float64 `json:"target"`
	Current float64 `json:"current"`
	Percent float64 `json:"percent"`
	Status  Status  `json:"status"`
}

// Progress builds a KPI with its percentage clamped to [0, 100].
func Progress(name string, current, target float64) KPI {
	percent := 0.0
	if target > 0 {
		percent = math.Min(100, math.Max(0, current/target*100))
	} else if current > 0 {
		percent = 100
	}

	status := StatusBehind
	switch {
	case percent >= 100:
		status = StatusOnTrack
	case percent >= AtRiskThreshold:
		status = StatusAtRisk
	}

	return KPI{Name: name, Target: target, Current: current, Percent: percent, Status: status}
}

// Totals sums the monthly goals of a plan. Month is left at zero.
func Totals(months []models.MonthlyGoal) models.MonthlyGoal {
	var total models.MonthlyGoal
	for _, m := range months {
		total.Contacts += m.Contacts
		total.Prospects += m.Prospects
		total.NewMandates += m.NewMandates
		total.NewBuyerRequests += m.NewBuyerRequests
		total.ActiveProperties += m.ActiveProperties
		total.Offers += m.Offers
		total.AcceptedOffers += m.AcceptedOffers
		total.Transactions += m.Transactions
		total.Revenue += m.Revenue
	}
	return total
}

// Report compares realized months against the plan for the annual KPIs.
func Report(goal *models.AnnualGoal, realized []models.MonthlyGoal) []KPI {
	target := Totals(goal.MonthlyGoals)
	done := Totals(realized)

	return []KPI{
		Progress("Annual Revenue", done.Revenue, goal.RevenueTarget),
		Progress("Transactions", float64(done.Transactions), float64(target.Transactions)),
		Progress("New Mandates", float64(done.NewMandates), float64(target.NewMandates)),
		Progress("Contacts", float64(done.Contacts), float64(target.Contacts)),
	}
}

// ForMonth returns the plan for a month number (1-12).
func ForMonth(goal *models.AnnualGoal, month int) (models.MonthlyGoal, bool) {
	for _, m := range goal.MonthlyGoals {
		if m.Month == month {
			return m, true
		}
	}
	return models.MonthlyGoal{}, false
}
