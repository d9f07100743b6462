// ABOUTME: Visualization CLI commands
// ABOUTME: Handles viz dashboard and graph generation commands
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/harperreed/immo/crm"
	"github.com/harperreed/immo/viz"
)

func writeDOT(output, dot string) error {
	if output != "" {
		return os.WriteFile(output, []byte(dot), 0644)
	}
	fmt.Println(dot)
	return nil
}

// VizFunnelCommand generates the monthly goal funnel graph.
func VizFunnelCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("viz funnel", flag.ExitOnError)
	output := fs.String("output", "", "Output file (default: stdout)")
	month := fs.Int("month", int(ws.Store.Clock()().Month()), "Month (1-12)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	graph, err := viz.NewGraphGenerator(ws).GenerateFunnelGraph(*month)
	if err != nil {
		return err
	}
	return writeDOT(*output, graph.DOT)
}

// VizPipelineCommand generates the lead to mandat to buyer graph.
func VizPipelineCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("viz pipeline", flag.ExitOnError)
	output := fs.String("output", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	graph, err := viz.NewGraphGenerator(ws).GeneratePipelineGraph()
	if err != nil {
		return err
	}
	return writeDOT(*output, graph.DOT)
}

// VizDashboardCommand prints the terminal dashboard.
func VizDashboardCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("viz dashboard", flag.ExitOnError)
	_ = fs.Parse(args)

	kpis, err := ws.GoalProgress()
	if err != nil {
		log.Debug("dashboard without goal progress", "err", err)
	}
	fmt.Print(viz.RenderDashboard(ws.Dashboard(), kpis))
	return nil
}
