// ABOUTME: Goal planning and seller scoring CLI commands
// ABOUTME: Plans the reverse funnel, shows it per month and tracks progress against it
package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/immo/crm"
	"github.com/harperreed/immo/goals"
	"github.com/harperreed/immo/models"
	"github.com/harperreed/immo/scoring"
	"github.com/harperreed/immo/viz"
)

// GoalPlanCommand generates and stores the annual goal. Without --seniority one is suggested from revenue.
func GoalPlanCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("goal plan", flag.ExitOnError)
	year := fs.Int("year", ws.Store.Clock()().Year(), "Year to plan")
	revenue := fs.Float64("revenue", 0, "Annual revenue target (required)")
	seniority := fs.String("seniority", "", "DEBUTANT, JUNIOR, CONFIRME, SENIOR, LEADER or EXPERT")
	_ = fs.Parse(args)

	level := goals.SuggestSeniority(*revenue)
	if *seniority != "" {
		parsed, err := models.ParseSeniority(*seniority)
		if err != nil {
			return err
		}
		level = parsed
	}

	goal, err := ws.GenerateGoal(*year, *revenue, level)
	if err != nil {
		return fmt.Errorf("failed to plan goal: %w", err)
	}
	fmt.Printf("✓ Goal planned for %d: %s (%s)\n\n", goal.Year, viz.FormatMoney(goal.RevenueTarget), goal.Seniority)
	printMonth(goal.MonthlyGoals[0], models.MonthlyGoal{}, false)
	return nil
}

// GoalShowCommand prints the plan of the current goal, for one month or all twelve.
func GoalShowCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("goal show", flag.ExitOnError)
	month := fs.Int("month", 0, "Month to show (1-12, default: all)")
	_ = fs.Parse(args)

	goal, ok := ws.Store.Goals.Current()
	if !ok {
		fmt.Println("No annual goal set. Run 'immo goal plan --revenue <amount>'.")
		return nil
	}
	fmt.Printf("Goal %d: %s (%s)\n\n", goal.Year, viz.FormatMoney(goal.RevenueTarget), goal.Seniority)

	realized := ws.Realized(goal.Year)
	if *month != 0 {
		plan, ok := goals.ForMonth(&goal, *month)
		if !ok {
			return fmt.Errorf("month %d not in plan (want 1-12)", *month)
		}
		printMonth(plan, realized[*month-1], true)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	_, _ = fmt.Fprintln(w, "MONTH\tCONTACTS\tPROSPECTS\tMANDATS\tBIENS\tACQUÉREURS\tOFFRES\tACCEPTÉES\tVENTES\tCA\t")
	for _, m := range goal.MonthlyGoals {
		_, _ = fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%s\t\n",
			m.Month, m.Contacts, m.Prospects, m.NewMandates, m.ActiveProperties,
			m.NewBuyerRequests, m.Offers, m.AcceptedOffers, m.Transactions, viz.FormatMoney(m.Revenue))
	}
	return w.Flush()
}

func printMonth(plan, realized models.MonthlyGoal, withRealized bool) {
	fmt.Printf("Monthly funnel (revenue %s):\n", viz.FormatMoney(plan.Revenue))
	for _, step := range viz.FunnelSteps(plan, realized) {
		if withRealized {
			fmt.Printf("  %-20s %4d / %d\n", step.Name, step.Current, step.Target)
		} else {
			fmt.Printf("  %-20s %4d\n", step.Name, step.Target)
		}
	}
}

// GoalProgressCommand compares realized activity with the annual goal.
func GoalProgressCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("goal progress", flag.ExitOnError)
	_ = fs.Parse(args)

	kpis, err := ws.GoalProgress()
	if err != nil {
		return err
	}
	var out strings.Builder
	viz.RenderKPIs(&out, kpis)
	fmt.Print(out.String())
	return nil
}

// SuggestSeniorityCommand prints the seniority level matching a revenue target.
func SuggestSeniorityCommand(args []string) error {
	fs := flag.NewFlagSet("goal suggest", flag.ExitOnError)
	revenue := fs.Float64("revenue", 0, "Annual revenue target")
	_ = fs.Parse(args)

	level := goals.SuggestSeniority(*revenue)
	fmt.Printf("%s → %s (multiplier %.1f)\n", viz.FormatMoney(*revenue), level, goals.SeniorityMultiplier(level))
	return nil
}

// ScoreCommand scores a seller questionnaire without storing it.
func ScoreCommand(args []string) error {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	answers := scoreFlags(fs)
	_ = fs.Parse(args)

	a, err := answers()
	if err != nil {
		return err
	}
	s, err := scoring.Score(a)
	if err != nil {
		return err
	}
	printScore(s)
	return nil
}
