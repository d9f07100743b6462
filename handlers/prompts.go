// ABOUTME: MCP prompt handlers for reusable CRM workflow templates
// ABOUTME: Seller qualification, weekly planning and pipeline review prompts built from live data
package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/immo/crm"
	"github.com/harperreed/immo/models"
	"github.com/harperreed/immo/viz"
)

// StaleAfter is how long a mandat may sit on a stage before the review flags it.
const StaleAfter = 30 * 24 * time.Hour

type PromptHandlers struct {
	ws *crm.Workspace
}

func NewPromptHandlers(ws *crm.Workspace) *PromptHandlers {
	return &PromptHandlers{ws: ws}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(_ context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	switch request.Params.Name {
	case "seller-qualification":
		return h.sellerQualification(request.Params.Arguments)
	case "weekly-plan":
		return h.weeklyPlan()
	case "pipeline-review":
		return h.pipelineReview()
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{Role: "user", Content: &mcp.TextContent{Text: text}},
		},
	}
}

func (h *PromptHandlers) sellerQualification(args map[string]string) (*mcp.GetPromptResult, error) {
	id, ok := args["lead_id"]
	if !ok {
		return nil, fmt.Errorf("lead_id is required")
	}
	lead, ok := h.ws.Store.SellerLeads.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", crm.ErrLeadNotFound, id)
	}

	var b strings.Builder
	b.WriteString("Help me qualify this seller before I call them:\n\n")
	b.WriteString(fmt.Sprintf("Seller: %s\n", lead.SellerName))
	if lead.Title != "" {
		b.WriteString(fmt.Sprintf("Listing: %s\n", lead.Title))
	}
	if lead.Region != "" {
		b.WriteString(fmt.Sprintf("Region: %s\n", lead.Region))
	}
	if lead.PropertyType != "" {
		b.WriteString(fmt.Sprintf("Property: %s\n", lead.PropertyType))
	}
	b.WriteString(fmt.Sprintf("Phase: %s\n", lead.EffectivePhase().Label()))
	if lead.Description != "" {
		b.WriteString(fmt.Sprintf("\nDescription: %s\n", lead.Description))
	}

	b.WriteString("\nPrepare questions that settle the four scoring answers:")
	b.WriteString("\n1. Timeframe: IMMEDIATE, 3_MONTHS, 6_MONTHS or UNCERTAIN")
	b.WriteString("\n2. Motivation: MUST_SELL, WANT_SELL or CURIOUS")
	b.WriteString("\n3. Price expectation: MARKET, ABOVE_MARKET or UNREALISTIC")
	b.WriteString("\n4. Exclusivity: YES, MAYBE or NO")
	b.WriteString("\n\nOnce answered, record them with the score_seller tool.")

	return userPrompt(fmt.Sprintf("Qualification for %s", lead.SellerName), b.String()), nil
}

func (h *PromptHandlers) weeklyPlan() (*mcp.GetPromptResult, error) {
	now := h.ws.Store.Clock()()
	from := now.Format(models.DateLayout)
	to := now.AddDate(0, 0, 6).Format(models.DateLayout)

	var b strings.Builder
	b.WriteString("Plan my week as a real-estate agent.\n\n")
	if goal, ok := h.ws.Store.Goals.Current(); ok {
		plan := goal.MonthlyGoals[now.Month()-1]
		b.WriteString(fmt.Sprintf("Monthly targets (%s revenue):\n", viz.FormatMoney(plan.Revenue)))
		for _, step := range viz.FunnelSteps(plan, h.ws.Realized(goal.Year)[now.Month()-1]) {
			b.WriteString(fmt.Sprintf("- %s: %d of %d\n", step.Name, step.Current, step.Target))
		}
	} else {
		b.WriteString("No annual goal is set yet.\n")
	}

	tasks := h.ws.Store.Tasks.Between(from, to)
	b.WriteString(fmt.Sprintf("\nScheduled (%s to %s): %d task(s)\n", from, to, len(tasks)))
	for _, t := range tasks {
		b.WriteString(fmt.Sprintf("- %s %s-%s %s\n", t.Date, t.StartTime, t.EndTime, t.Title))
	}

	pending := h.ws.Store.SellerLeads.NotContacted()
	b.WriteString(fmt.Sprintf("\nLeads not yet contacted: %d\n", len(pending)))

	b.WriteString("\nSuggest how many calls, visits and follow-ups to add so the month stays on track.")
	return userPrompt("Weekly plan", b.String()), nil
}

func (h *PromptHandlers) pipelineReview() (*mcp.GetPromptResult, error) {
	now := h.ws.Store.Clock()()
	var b strings.Builder
	b.WriteString("Review my mandat pipeline and tell me where to push:\n\n")

	for _, stage := range models.BuyerStages {
		mandats := h.ws.Store.Mandats.ByStage(stage)
		if len(mandats) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("%s (%d):\n", stage.Label(), len(mandats)))
		for _, m := range mandats {
			line := fmt.Sprintf("- %s, %s, %d buyer(s)", m.Name, viz.FormatMoney(m.Value), len(h.ws.Store.Buyers.ByMandat(m.ID)))
			if m.Score != nil {
				line += fmt.Sprintf(", seller %s", m.Score.Classification)
			}
			if now.Sub(m.UpdatedAt) > StaleAfter {
				line += fmt.Sprintf(", untouched for %d days", int(now.Sub(m.UpdatedAt).Hours()/24))
			}
			b.WriteString(line + "\n")
		}
	}

	b.WriteString("\nFlag stalled mandats, buyers worth a visit and sellers to re-qualify.")
	return userPrompt("Pipeline review", b.String()), nil
}
