// ABOUTME: Tests for the MCP tool, resource and prompt handlers
// ABOUTME: Runs handlers against an in-memory workspace and an in-memory MCP session
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/immo/crm"
	"github.com/harperreed/immo/models"
	"github.com/harperreed/immo/store"
)

type seqIDs struct{ n int }

func (s *seqIDs) NewID() string {
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

func setupWorkspace(t *testing.T) *crm.Workspace {
	t.Helper()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	ws, err := crm.Open(store.Deps{
		Storage: store.NewMemoryStorage(),
		IDs:     &seqIDs{},
		Now:     func() time.Time { return now },
	})
	require.NoError(t, err)
	return ws
}

func TestScoreSeller(t *testing.T) {
	ws := setupWorkspace(t)
	h := NewGoalHandlers(ws)
	ctx := context.Background()

	_, out, err := h.ScoreSeller(ctx, nil, ScoreSellerInput{
		Timeframe:        "immediate",
		Motivation:       "MUST_SELL",
		PriceExpectation: "MARKET",
		Exclusivity:      "YES",
	})
	require.NoError(t, err)
	assert.Equal(t, 100, out.Score.TotalScore)
	assert.Equal(t, models.ClassificationChaud, out.Score.Classification)
	assert.Empty(t, out.MandatID)

	_, _, err = h.ScoreSeller(ctx, nil, ScoreSellerInput{Timeframe: "SOON", Motivation: "MUST_SELL", PriceExpectation: "MARKET", Exclusivity: "YES"})
	assert.Error(t, err)
}

func TestScoreSellerStoresOnMandat(t *testing.T) {
	ws := setupWorkspace(t)
	ctx := context.Background()
	_, created, err := NewMandatHandlers(ws).CreateMandat(ctx, nil, CreateMandatInput{Name: "Villa Anfa", Value: 2500000})
	require.NoError(t, err)

	_, out, err := NewGoalHandlers(ws).ScoreSeller(ctx, nil, ScoreSellerInput{
		Timeframe:        "UNCERTAIN",
		Motivation:       "CURIOUS",
		PriceExpectation: "UNREALISTIC",
		Exclusivity:      "NO",
		MandatID:         created.Mandat.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, created.Mandat.ID, out.MandatID)
	assert.Equal(t, models.ClassificationFroid, out.Score.Classification)

	stored, ok := ws.Store.Mandats.Get(created.Mandat.ID)
	require.True(t, ok)
	require.NotNil(t, stored.Score)
	assert.Equal(t, out.Score.TotalScore, stored.Score.TotalScore)
}

func TestPlanGoalAndProgress(t *testing.T) {
	ws := setupWorkspace(t)
	h := NewGoalHandlers(ws)
	ctx := context.Background()

	_, _, err := h.GoalProgress(ctx, nil, GetGoalInput{})
	require.ErrorIs(t, err, crm.ErrNoGoal)

	_, planned, err := h.PlanGoal(ctx, nil, PlanGoalInput{Revenue: 120000, Seniority: "CONFIRME"})
	require.NoError(t, err)
	require.NotNil(t, planned.Goal)
	assert.Equal(t, 2026, planned.Goal.Year)
	assert.Len(t, planned.Goal.MonthlyGoals, 12)

	_, got, err := h.GetGoal(ctx, nil, GetGoalInput{})
	require.NoError(t, err)
	require.NotNil(t, got.Goal)
	assert.Equal(t, planned.Goal.ID, got.Goal.ID)

	_, progress, err := h.GoalProgress(ctx, nil, GetGoalInput{})
	require.NoError(t, err)
	assert.NotEmpty(t, progress.KPIs)
}

func TestMoveSellerLeadTwoStep(t *testing.T) {
	ws := setupWorkspace(t)
	h := NewLeadHandlers(ws)
	ctx := context.Background()

	_, created, err := h.CreateSellerLead(ctx, nil, CreateSellerLeadInput{SellerName: "Karim Alaoui", Title: "Villa Californie", PropertyType: "villa"})
	require.NoError(t, err)
	id := created.Lead.ID
	assert.Equal(t, models.PhaseProspect, created.Lead.EffectivePhase())

	_, drafted, err := h.MoveSellerLead(ctx, nil, MoveSellerLeadInput{LeadID: id, Phase: "CLIENT", MandatValue: 3000000})
	require.NoError(t, err)
	assert.False(t, drafted.Applied)
	require.NotNil(t, drafted.MandatDraft)
	assert.Equal(t, 3000000.0, drafted.MandatDraft.Value)
	assert.Equal(t, 0, ws.Store.Mandats.Len())

	lead, _ := ws.Store.SellerLeads.Get(id)
	assert.Equal(t, models.PhaseProspect, lead.EffectivePhase())

	_, moved, err := h.MoveSellerLead(ctx, nil, MoveSellerLeadInput{LeadID: id, Phase: "CLIENT", ConfirmMandat: true, MandatType: "EXCLUSIF"})
	require.NoError(t, err)
	assert.True(t, moved.Applied)
	require.NotNil(t, moved.Mandat)
	assert.Equal(t, models.MandatExclusif, moved.Mandat.Type)
	assert.Equal(t, 1, ws.Store.Mandats.Len())

	_, back, err := h.MoveSellerLead(ctx, nil, MoveSellerLeadInput{LeadID: id, Phase: "PROSPECT"})
	require.NoError(t, err)
	assert.False(t, back.Applied)
	assert.Equal(t, "reject", back.Decision)
	assert.Equal(t, models.PhaseClient, back.Lead.EffectivePhase())
}

func TestMoveSellerLeadErrors(t *testing.T) {
	ws := setupWorkspace(t)
	h := NewLeadHandlers(ws)
	ctx := context.Background()

	_, _, err := h.MoveSellerLead(ctx, nil, MoveSellerLeadInput{LeadID: "missing", Phase: "CLIENT"})
	assert.ErrorIs(t, err, crm.ErrLeadNotFound)

	_, _, err = h.MoveSellerLead(ctx, nil, MoveSellerLeadInput{LeadID: "missing", Phase: "NOWHERE"})
	assert.Error(t, err)

	_, _, err = h.CreateSellerLead(ctx, nil, CreateSellerLeadInput{})
	assert.Error(t, err)
}

func TestListSellerLeads(t *testing.T) {
	ws := setupWorkspace(t)
	h := NewLeadHandlers(ws)
	ctx := context.Background()

	_, a, err := h.CreateSellerLead(ctx, nil, CreateSellerLeadInput{SellerName: "Hélène Dubois", Region: "Marrakech"})
	require.NoError(t, err)
	_, _, err = h.CreateSellerLead(ctx, nil, CreateSellerLeadInput{SellerName: "Omar Bennani", Region: "Rabat"})
	require.NoError(t, err)

	_, _, err = h.MarkContacted(ctx, nil, LeadIDInput{LeadID: a.Lead.ID})
	require.NoError(t, err)

	_, all, err := h.ListSellerLeads(ctx, nil, ListSellerLeadsInput{})
	require.NoError(t, err)
	assert.Len(t, all.Leads, 2)
	assert.Equal(t, 2, all.PhaseCounts[string(models.PhaseProspect)])

	_, found, err := h.ListSellerLeads(ctx, nil, ListSellerLeadsInput{Query: "helene"})
	require.NoError(t, err)
	require.Len(t, found.Leads, 1)
	assert.Equal(t, a.Lead.ID, found.Leads[0].ID)

	_, pending, err := h.ListSellerLeads(ctx, nil, ListSellerLeadsInput{NotContacted: true})
	require.NoError(t, err)
	require.Len(t, pending.Leads, 1)
	assert.Equal(t, "Omar Bennani", pending.Leads[0].SellerName)
}

func TestConvertLead(t *testing.T) {
	ws := setupWorkspace(t)
	h := NewLeadHandlers(ws)
	ctx := context.Background()

	_, created, err := h.CreateSellerLead(ctx, nil, CreateSellerLeadInput{SellerName: "Sara El Idrissi", Phone: "0600000000"})
	require.NoError(t, err)

	_, out, err := h.ConvertLead(ctx, nil, LeadIDInput{LeadID: created.Lead.ID})
	require.NoError(t, err)
	assert.Equal(t, "Sara", out.Contact.FirstName)
	assert.Equal(t, "El Idrissi", out.Contact.LastName)
	assert.Equal(t, out.Contact.ID, out.Lead.ContactID)
}

func TestMandatAndBuyerHandlers(t *testing.T) {
	ws := setupWorkspace(t)
	h := NewMandatHandlers(ws)
	ctx := context.Background()

	_, m, err := h.CreateMandat(ctx, nil, CreateMandatInput{Name: "Riad Médina", Type: "EXCLUSIF", Value: 1800000})
	require.NoError(t, err)
	assert.Equal(t, models.StageLead, m.Mandat.Stage)

	_, moved, err := h.MoveMandat(ctx, nil, MoveMandatInput{MandatID: m.Mandat.ID, Stage: "VISITES"})
	require.NoError(t, err)
	assert.Equal(t, models.StageVisites, moved.Mandat.Stage)

	_, _, err = h.MoveMandat(ctx, nil, MoveMandatInput{MandatID: "missing", Stage: "VISITES"})
	assert.ErrorIs(t, err, crm.ErrMandatNotFound)

	_, _, err = h.CreateBuyer(ctx, nil, CreateBuyerInput{MandatID: "missing", Name: "Paul"})
	assert.Error(t, err)

	_, b, err := h.CreateBuyer(ctx, nil, CreateBuyerInput{MandatID: m.Mandat.ID, Name: "Paul Martin"})
	require.NoError(t, err)

	_, mb, err := h.MoveBuyer(ctx, nil, MoveBuyerInput{BuyerID: b.Buyer.ID, Stage: "OFFRE"})
	require.NoError(t, err)
	assert.Equal(t, models.StageOffre, mb.Buyer.Stage)

	_, list, err := h.ListBuyers(ctx, nil, ListBuyersInput{MandatID: m.Mandat.ID})
	require.NoError(t, err)
	assert.Len(t, list.Buyers, 1)

	_, visites, err := h.ListMandats(ctx, nil, ListMandatsInput{Stage: "VISITES"})
	require.NoError(t, err)
	assert.Len(t, visites.Mandats, 1)

	_, none, err := h.ListMandats(ctx, nil, ListMandatsInput{Stage: "OFFRE"})
	require.NoError(t, err)
	assert.Empty(t, none.Mandats)
}

func TestContactAndTaskHandlers(t *testing.T) {
	ws := setupWorkspace(t)
	h := NewContactHandlers(ws)
	ctx := context.Background()

	_, c, err := h.CreateContact(ctx, nil, CreateContactInput{Name: "Jean-Luc Picard", Email: "jl@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Jean-Luc", c.Contact.FirstName)
	assert.Equal(t, "Picard", c.Contact.LastName)

	_, found, err := h.FindContacts(ctx, nil, FindContactsInput{Query: "PICARD"})
	require.NoError(t, err)
	assert.Len(t, found.Contacts, 1)

	_, _, err = h.CreateTask(ctx, nil, CreateTaskInput{Title: "Visite", Date: "2026-03-10", StartTime: "11:00", EndTime: "10:00"})
	assert.Error(t, err)

	_, _, err = h.CreateTask(ctx, nil, CreateTaskInput{Title: "Visite", Date: "2026-03-10", StartTime: "14:00", EndTime: "15:00"})
	require.NoError(t, err)
	_, _, err = h.CreateTask(ctx, nil, CreateTaskInput{Title: "Appel", Date: "2026-03-10", StartTime: "09:30", EndTime: "09:45"})
	require.NoError(t, err)

	_, today, err := h.TasksForDate(ctx, nil, TasksForDateInput{})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", today.Date)
	require.Len(t, today.Tasks, 2)
	assert.Equal(t, "Appel", today.Tasks[0].Title)
}

func TestDashboardAndGraphHandlers(t *testing.T) {
	ws := setupWorkspace(t)
	h := NewDashboardHandlers(ws)
	ctx := context.Background()

	_, _, err := NewMandatHandlers(ws).CreateMandat(ctx, nil, CreateMandatInput{Name: "Appartement Gauthier", Value: 900000, ContactID: "gone"})
	require.NoError(t, err)

	_, dash, err := h.Dashboard(ctx, nil, DashboardInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, dash.MandatsByStage[string(models.StageLead)])

	_, orphans, err := h.FindOrphans(ctx, nil, DashboardInput{})
	require.NoError(t, err)
	assert.Len(t, orphans.Orphans, 1)

	_, graph, err := h.GenerateGraph(ctx, nil, GenerateGraphInput{Type: "pipeline"})
	require.NoError(t, err)
	assert.Contains(t, graph.DOTSource, "Appartement Gauthier")
	assert.Equal(t, 1, graph.NodeCount)

	_, _, err = h.GenerateGraph(ctx, nil, GenerateGraphInput{Type: "funnel"})
	assert.ErrorIs(t, err, crm.ErrNoGoal)

	_, _, err = h.GenerateGraph(ctx, nil, GenerateGraphInput{Type: "sunburst"})
	assert.Error(t, err)
}

func connect(t *testing.T, ws *crm.Workspace) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	server := mcp.NewServer(&mcp.Implementation{Name: "immo", Version: "test"}, nil)
	Register(server, ws)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	_, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func TestRegisterExposesTools(t *testing.T) {
	session := connect(t, setupWorkspace(t))

	tools, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"score_seller", "plan_goal", "move_seller_lead", "create_mandat", "tasks_for_date", "generate_graph"} {
		assert.True(t, names[want], "missing tool %s", want)
	}
}

func TestReadResource(t *testing.T) {
	ws := setupWorkspace(t)
	m, err := ws.Store.Mandats.Add(models.Mandat{Name: "Villa Anfa"})
	require.NoError(t, err)
	session := connect(t, ws)
	ctx := context.Background()

	res, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: ResourceScheme + "mandats/" + m.ID})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)

	var got struct {
		Mandat models.Mandat  `json:"mandat"`
		Buyers []models.Buyer `json:"buyers"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &got))
	assert.Equal(t, "Villa Anfa", got.Mandat.Name)
	assert.Empty(t, got.Buyers)

	_, err = session.ReadResource(ctx, &mcp.ReadResourceParams{URI: ResourceScheme + "mandats/missing"})
	assert.Error(t, err)
}

func TestPrompts(t *testing.T) {
	ws := setupWorkspace(t)
	lead, err := ws.Store.SellerLeads.Add(models.SellerLead{SellerName: "Nadia Tazi", Region: "Tanger"})
	require.NoError(t, err)
	h := NewPromptHandlers(ws)
	ctx := context.Background()

	res, err := h.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{
		Name:      "seller-qualification",
		Arguments: map[string]string{"lead_id": lead.ID},
	}})
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	text := res.Messages[0].Content.(*mcp.TextContent).Text
	assert.Contains(t, text, "Nadia Tazi")
	assert.Contains(t, text, "Tanger")

	res, err = h.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Name: "weekly-plan"}})
	require.NoError(t, err)
	assert.True(t, strings.Contains(res.Messages[0].Content.(*mcp.TextContent).Text, "No annual goal"))

	_, err = h.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Name: "unknown"}})
	assert.Error(t, err)
}
