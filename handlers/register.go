// ABOUTME: Registers every immo tool, resource and prompt on an MCP server
// ABOUTME: Shared by the stdio server command and the handler tests
package handlers

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/immo/crm"
)

// Register adds the CRM tools, resources and prompts to server.
func Register(server *mcp.Server, ws *crm.Workspace) {
	goalHandlers := NewGoalHandlers(ws)
	leadHandlers := NewLeadHandlers(ws)
	mandatHandlers := NewMandatHandlers(ws)
	contactHandlers := NewContactHandlers(ws)
	dashboardHandlers := NewDashboardHandlers(ws)
	resourceHandlers := NewResourceHandlers(ws)
	promptHandlers := NewPromptHandlers(ws)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "score_seller",
		Description: "Score a seller questionnaire (0-100, CHAUD/TIÈDE/FROID); optionally store it on a mandat",
	}, goalHandlers.ScoreSeller)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "plan_goal",
		Description: "Generate the annual goal and its monthly reverse funnel from a revenue target",
	}, goalHandlers.PlanGoal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "suggest_seniority",
		Description: "Suggest the agent seniority level matching a revenue target",
	}, goalHandlers.SuggestSeniority)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_goal",
		Description: "Get the current annual goal",
	}, goalHandlers.GetGoal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "goal_progress",
		Description: "Compare realized activity with the annual goal KPIs",
	}, goalHandlers.GoalProgress)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_seller_lead",
		Description: "Add a seller lead, starting in the PROSPECT phase",
	}, leadHandlers.CreateSellerLead)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "move_seller_lead",
		Description: "Move a seller lead to another phase. CLIENT and APRES_VENTE leads cannot move back; promoting to CLIENT creates a mandat once confirm_mandat is true",
	}, leadHandlers.MoveSellerLead)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_seller_leads",
		Description: "List seller leads with phase counts",
	}, leadHandlers.ListSellerLeads)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "mark_lead_contacted",
		Description: "Mark a seller lead as contacted",
	}, leadHandlers.MarkContacted)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "convert_lead_to_contact",
		Description: "Create a contact from a seller lead and link them",
	}, leadHandlers.ConvertLead)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_mandat",
		Description: "Create a mandat",
	}, mandatHandlers.CreateMandat)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "move_mandat",
		Description: "Move a mandat to any pipeline stage",
	}, mandatHandlers.MoveMandat)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_mandats",
		Description: "List mandats, optionally by stage or search query",
	}, mandatHandlers.ListMandats)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_buyer",
		Description: "Add a buyer interested in a mandat",
	}, mandatHandlers.CreateBuyer)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "move_buyer",
		Description: "Move a buyer to any pipeline stage",
	}, mandatHandlers.MoveBuyer)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_buyers",
		Description: "List buyers, optionally for one mandat or stage",
	}, mandatHandlers.ListBuyers)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_contact",
		Description: "Add a new contact to the CRM",
	}, contactHandlers.CreateContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_contacts",
		Description: "Search contacts by name, email or phone, ignoring case and accents",
	}, contactHandlers.FindContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_task",
		Description: "Schedule an agenda task (date YYYY-MM-DD, times HH:mm)",
	}, contactHandlers.CreateTask)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "tasks_for_date",
		Description: "List the agenda of one day in start-time order",
	}, contactHandlers.TasksForDate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "dashboard",
		Description: "Headline statistics: mandat value, revenue goal, conversion rates, stage and phase counts",
	}, dashboardHandlers.Dashboard)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_orphans",
		Description: "List records pointing at a missing contact or mandat",
	}, dashboardHandlers.FindOrphans)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_graph",
		Description: "Generate a GraphViz DOT graph: the monthly goal funnel or the lead/mandat/buyer pipeline",
	}, dashboardHandlers.GenerateGraph)

	for _, name := range ResourceNames {
		server.AddResource(&mcp.Resource{
			URI:      ResourceScheme + name,
			Name:     name,
			MIMEType: "application/json",
		}, resourceHandlers.ReadResource)
	}
	for _, name := range []string{"contacts", "seller-leads", "mandats"} {
		server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: ResourceScheme + name + "/{id}",
			Name:        name + "-by-id",
			MIMEType:    "application/json",
		}, resourceHandlers.ReadResource)
	}

	server.AddPrompt(&mcp.Prompt{
		Name:        "seller-qualification",
		Description: "Prepare the scoring questionnaire for a seller lead",
		Arguments:   []*mcp.PromptArgument{{Name: "lead_id", Description: "Seller lead ID", Required: true}},
	}, promptHandlers.GetPrompt)

	server.AddPrompt(&mcp.Prompt{
		Name:        "weekly-plan",
		Description: "Plan the week against the monthly funnel targets",
	}, promptHandlers.GetPrompt)

	server.AddPrompt(&mcp.Prompt{
		Name:        "pipeline-review",
		Description: "Review mandats stage by stage and flag stalled ones",
	}, promptHandlers.GetPrompt)
}
