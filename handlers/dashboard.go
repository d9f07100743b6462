// ABOUTME: Dashboard, hygiene and graph MCP tool handlers
// ABOUTME: Implements dashboard, find_orphans and generate_graph tools
package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/immo/crm"
	"github.com/harperreed/immo/goals"
	"github.com/harperreed/immo/viz"
)

type DashboardHandlers struct {
	ws *crm.Workspace
}

func NewDashboardHandlers(ws *crm.Workspace) *DashboardHandlers {
	return &DashboardHandlers{ws: ws}
}

type DashboardInput struct{}

type DashboardOutput struct {
	TotalMandatValue     float64        `json:"total_mandat_value"`
	RevenueGoal          float64        `json:"revenue_goal"`
	RevenuePercent       float64        `json:"revenue_percent"`
	TransactionsYTD      int            `json:"transactions_ytd"`
	Prospects            int            `json:"prospects"`
	ProspectToMandatRate float64        `json:"prospect_to_mandat_rate"`
	MandatToSaleRate     float64        `json:"mandat_to_sale_rate"`
	AvgDaysToSell        float64        `json:"avg_days_to_sell"`
	MandatsByStage       map[string]int `json:"mandats_by_stage"`
	LeadsByPhase         map[string]int `json:"leads_by_phase"`
	Buyers               int            `json:"buyers"`
	Goal                 []goals.KPI    `json:"goal,omitempty"`
}

func (h *DashboardHandlers) Dashboard(_ context.Context, _ *mcp.CallToolRequest, _ DashboardInput) (*mcp.CallToolResult, DashboardOutput, error) {
	stats := h.ws.Dashboard()
	out := DashboardOutput{
		TotalMandatValue:     stats.TotalMandatValue,
		RevenueGoal:          stats.RevenueGoal,
		RevenuePercent:       stats.RevenuePercent,
		TransactionsYTD:      stats.TransactionsYTD,
		Prospects:            stats.Prospects,
		ProspectToMandatRate: stats.ProspectToMandatRate,
		MandatToSaleRate:     stats.MandatToSaleRate,
		AvgDaysToSell:        stats.AvgDaysToSell,
		MandatsByStage:       make(map[string]int, len(stats.MandatsByStage)),
		LeadsByPhase:         make(map[string]int, len(stats.LeadsByPhase)),
		Buyers:               stats.Buyers,
	}
	for stage, n := range stats.MandatsByStage {
		out.MandatsByStage[string(stage)] = n
	}
	for phase, n := range stats.LeadsByPhase {
		out.LeadsByPhase[string(phase)] = n
	}

	kpis, err := h.ws.GoalProgress()
	if err != nil && !errors.Is(err, crm.ErrNoGoal) {
		return nil, DashboardOutput{}, err
	}
	out.Goal = kpis
	return nil, out, nil
}

type OrphansOutput struct {
	Orphans []crm.OrphanReference `json:"orphans"`
}

func (h *DashboardHandlers) FindOrphans(_ context.Context, _ *mcp.CallToolRequest, _ DashboardInput) (*mcp.CallToolResult, OrphansOutput, error) {
	orphans := h.ws.OrphanReferences()
	if orphans == nil {
		orphans = []crm.OrphanReference{}
	}
	return nil, OrphansOutput{Orphans: orphans}, nil
}

type GenerateGraphInput struct {
	Type  string `json:"type" jsonschema:"Graph type: funnel or pipeline"`
	Month int    `json:"month,omitempty" jsonschema:"Month 1-12 for the funnel graph (default: current month)"`
}

type GenerateGraphOutput struct {
	GraphType string `json:"graph_type"`
	DOTSource string `json:"dot_source"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

func (h *DashboardHandlers) GenerateGraph(_ context.Context, _ *mcp.CallToolRequest, input GenerateGraphInput) (*mcp.CallToolResult, GenerateGraphOutput, error) {
	generator := viz.NewGraphGenerator(h.ws)

	var graph *viz.Graph
	var err error
	switch input.Type {
	case "funnel":
		month := input.Month
		if month == 0 {
			month = int(h.ws.Store.Clock()().Month())
		}
		graph, err = generator.GenerateFunnelGraph(month)
	case "pipeline":
		graph, err = generator.GeneratePipelineGraph()
	case "":
		return nil, GenerateGraphOutput{}, fmt.Errorf("type is required")
	default:
		return nil, GenerateGraphOutput{}, fmt.Errorf("unknown graph type: %s (valid types: funnel, pipeline)", input.Type)
	}
	if err != nil {
		return nil, GenerateGraphOutput{}, fmt.Errorf("failed to generate graph: %w", err)
	}

	return nil, GenerateGraphOutput{
		GraphType: input.Type,
		DOTSource: graph.DOT,
		NodeCount: graph.Nodes,
		EdgeCount: graph.Edges,
	}, nil
}
