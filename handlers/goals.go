// ABOUTME: Scoring and goal planning MCP tool handlers
// ABOUTME: Implements score_seller, plan_goal, suggest_seniority, get_goal and goal_progress tools
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/immo/crm"
	"github.com/harperreed/immo/goals"
	"github.com/harperreed/immo/models"
	"github.com/harperreed/immo/scoring"
)

type GoalHandlers struct {
	ws *crm.Workspace
}

func NewGoalHandlers(ws *crm.Workspace) *GoalHandlers {
	return &GoalHandlers{ws: ws}
}

type ScoreSellerInput struct {
	Timeframe        string `json:"timeframe" jsonschema:"When the seller wants to sell: IMMEDIATE, 3_MONTHS, 6_MONTHS or UNCERTAIN"`
	Motivation       string `json:"motivation" jsonschema:"MUST_SELL, WANT_SELL or CURIOUS"`
	PriceExpectation string `json:"price_expectation" jsonschema:"MARKET, ABOVE_MARKET or UNREALISTIC"`
	Exclusivity      string `json:"exclusivity" jsonschema:"Open to an exclusive mandate: YES, MAYBE or NO"`
	MandatID         string `json:"mandat_id,omitempty" jsonschema:"Store the score on this mandat"`
}

type ScoreSellerOutput struct {
	Score    models.SellerScore `json:"score"`
	MandatID string             `json:"mandat_id,omitempty"`
}

func (h *GoalHandlers) ScoreSeller(_ context.Context, _ *mcp.CallToolRequest, input ScoreSellerInput) (*mcp.CallToolResult, ScoreSellerOutput, error) {
	answers, err := scoring.ParseAnswers(input.Timeframe, input.Motivation, input.PriceExpectation, input.Exclusivity)
	if err != nil {
		return nil, ScoreSellerOutput{}, err
	}
	if input.MandatID != "" {
		m, err := h.ws.ScoreMandat(input.MandatID, answers)
		if err != nil {
			return nil, ScoreSellerOutput{}, err
		}
		return nil, ScoreSellerOutput{Score: *m.Score, MandatID: m.ID}, nil
	}
	score, err := scoring.Score(answers)
	if err != nil {
		return nil, ScoreSellerOutput{}, err
	}
	return nil, ScoreSellerOutput{Score: score}, nil
}

type PlanGoalInput struct {
	Year      int     `json:"year,omitempty" jsonschema:"Year to plan (default: current year)"`
	Revenue   float64 `json:"revenue" jsonschema:"Annual revenue target"`
	Seniority string  `json:"seniority,omitempty" jsonschema:"DEBUTANT, JUNIOR, CONFIRME, SENIOR, LEADER or EXPERT (default: suggested from revenue)"`
}

type GoalOutput struct {
	Goal *models.AnnualGoal `json:"goal,omitempty"`
}

func (h *GoalHandlers) PlanGoal(_ context.Context, _ *mcp.CallToolRequest, input PlanGoalInput) (*mcp.CallToolResult, GoalOutput, error) {
	year := input.Year
	if year == 0 {
		year = h.ws.Store.Clock()().Year()
	}
	level := goals.SuggestSeniority(input.Revenue)
	if input.Seniority != "" {
		parsed, err := models.ParseSeniority(input.Seniority)
		if err != nil {
			return nil, GoalOutput{}, err
		}
		level = parsed
	}
	goal, err := h.ws.GenerateGoal(year, input.Revenue, level)
	if err != nil {
		return nil, GoalOutput{}, err
	}
	return nil, GoalOutput{Goal: &goal}, nil
}

type SuggestSeniorityInput struct {
	Revenue float64 `json:"revenue" jsonschema:"Annual revenue target"`
}

type SuggestSeniorityOutput struct {
	Seniority  models.SeniorityLevel `json:"seniority"`
	Multiplier float64               `json:"multiplier"`
}

func (h *GoalHandlers) SuggestSeniority(_ context.Context, _ *mcp.CallToolRequest, input SuggestSeniorityInput) (*mcp.CallToolResult, SuggestSeniorityOutput, error) {
	level := goals.SuggestSeniority(input.Revenue)
	return nil, SuggestSeniorityOutput{Seniority: level, Multiplier: goals.SeniorityMultiplier(level)}, nil
}

type GetGoalInput struct{}

func (h *GoalHandlers) GetGoal(_ context.Context, _ *mcp.CallToolRequest, _ GetGoalInput) (*mcp.CallToolResult, GoalOutput, error) {
	goal, ok := h.ws.Store.Goals.Current()
	if !ok {
		return nil, GoalOutput{}, nil
	}
	return nil, GoalOutput{Goal: &goal}, nil
}

type GoalProgressOutput struct {
	KPIs []goals.KPI `json:"kpis"`
}

func (h *GoalHandlers) GoalProgress(_ context.Context, _ *mcp.CallToolRequest, _ GetGoalInput) (*mcp.CallToolResult, GoalProgressOutput, error) {
	kpis, err := h.ws.GoalProgress()
	if err != nil {
		return nil, GoalProgressOutput{}, fmt.Errorf("failed to compute progress: %w", err)
	}
	return nil, GoalProgressOutput{KPIs: kpis}, nil
}
