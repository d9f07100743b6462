// ABOUTME: Terminal dashboard rendering for the CRM overview
// ABOUTME: Pipeline bars per stage, lead phases and annual goal progress
package viz

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/harperreed/immo/crm"
	"github.com/harperreed/immo/goals"
	"github.com/harperreed/immo/models"
)

const barWidth = 10

// FormatMoney renders an amount in whole euros with space-grouped thousands.
func FormatMoney(v float64) string {
	d := decimal.NewFromFloat(v).Round(0)
	neg := d.IsNegative()
	digits := d.Abs().String()

	var grouped strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped.WriteByte(' ')
		}
		grouped.WriteRune(r)
	}
	if neg {
		return "-" + grouped.String() + " €"
	}
	return grouped.String() + " €"
}

func bar(count, max int) string {
	if max <= 0 {
		max = 1
	}
	n := count * barWidth / max
	return strings.Repeat("█", n) + strings.Repeat("░", barWidth-n)
}

func RenderDashboard(stats crm.DashboardStats, kpis []goals.KPI) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  IMMO CRM DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("CHIFFRE D'AFFAIRES\n")
	out.WriteString(fmt.Sprintf("  %s / %s  %s %.0f%%\n\n",
		FormatMoney(stats.TotalMandatValue), FormatMoney(stats.RevenueGoal),
		bar(int(stats.RevenuePercent), 100), stats.RevenuePercent))

	out.WriteString("MANDATS PAR ÉTAPE\n")
	renderStages(&out, stats.MandatsByStage)
	out.WriteString("\n")

	out.WriteString("LEADS VENDEURS\n")
	renderPhases(&out, stats.LeadsByPhase)
	out.WriteString("\n")

	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  %d transactions  %d prospects  %d acquéreurs\n",
		stats.TransactionsYTD, stats.Prospects, stats.Buyers))
	out.WriteString(fmt.Sprintf("  prospect→mandat %.1f%%  mandat→vente %.1f%%  %.0f jours pour vendre\n",
		stats.ProspectToMandatRate, stats.MandatToSaleRate, stats.AvgDaysToSell))
	if len(stats.ScoredMandats) > 0 {
		out.WriteString(fmt.Sprintf("  scores: %d chauds  %d tièdes  %d froids\n",
			stats.ScoredMandats[models.ClassificationChaud],
			stats.ScoredMandats[models.ClassificationTiede],
			stats.ScoredMandats[models.ClassificationFroid]))
	}

	if len(kpis) > 0 {
		out.WriteString("\nOBJECTIFS\n")
		RenderKPIs(&out, kpis)
	}
	return out.String()
}

func renderStages(out *strings.Builder, counts map[models.BuyerStage]int) {
	max := 0
	for _, n := range counts {
		if n > max {
			max = n
		}
	}
	for _, stage := range models.BuyerStages {
		out.WriteString(fmt.Sprintf("  %-14s %s  %2d\n", stage.Label(), bar(counts[stage], max), counts[stage]))
	}
}

func renderPhases(out *strings.Builder, counts map[models.SellerPhase]int) {
	max := 0
	for _, n := range counts {
		if n > max {
			max = n
		}
	}
	for _, phase := range models.SellerPhases {
		out.WriteString(fmt.Sprintf("  %-18s %s  %2d\n", phase.Label(), bar(counts[phase], max), counts[phase]))
	}
}

// RenderKPIs writes one progress line per KPI.
func RenderKPIs(out *strings.Builder, kpis []goals.KPI) {
	for _, k := range kpis {
		current, target := fmt.Sprintf("%.0f", k.Current), fmt.Sprintf("%.0f", k.Target)
		if k.Name == "Annual Revenue" {
			current, target = FormatMoney(k.Current), FormatMoney(k.Target)
		}
		out.WriteString(fmt.Sprintf("  %-15s %s %5.1f%%  %s / %s  (%s)\n",
			k.Name, bar(int(k.Percent), 100), k.Percent, current, target, k.Status))
	}
}
