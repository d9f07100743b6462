// ABOUTME: Seller lead MCP tool handlers
// ABOUTME: Promotion to CLIENT is two-step: the first call returns the mandat draft, the second confirms it
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/immo/crm"
	"github.com/harperreed/immo/models"
)

type LeadHandlers struct {
	ws *crm.Workspace
}

func NewLeadHandlers(ws *crm.Workspace) *LeadHandlers {
	return &LeadHandlers{ws: ws}
}

type CreateSellerLeadInput struct {
	SellerName   string `json:"seller_name" jsonschema:"Seller name (required)"`
	Title        string `json:"title,omitempty" jsonschema:"Listing title"`
	Description  string `json:"description,omitempty" jsonschema:"Listing description"`
	Phone        string `json:"phone,omitempty" jsonschema:"Seller phone"`
	Region       string `json:"region,omitempty" jsonschema:"Region"`
	Source       string `json:"source,omitempty" jsonschema:"Where the listing was found"`
	ListingDate  string `json:"listing_date,omitempty" jsonschema:"Listing date YYYY-MM-DD"`
	PropertyType string `json:"property_type,omitempty" jsonschema:"Villa, Appartement, Maison, Studio, Terrain, Bureau, Local Commercial or Autre"`
	ContactID    string `json:"contact_id,omitempty" jsonschema:"Linked contact ID"`
	Notes        string `json:"notes,omitempty" jsonschema:"Notes"`
}

type LeadOutput struct {
	Lead models.SellerLead `json:"lead"`
}

func (h *LeadHandlers) CreateSellerLead(_ context.Context, _ *mcp.CallToolRequest, input CreateSellerLeadInput) (*mcp.CallToolResult, LeadOutput, error) {
	if input.SellerName == "" {
		return nil, LeadOutput{}, fmt.Errorf("seller_name is required")
	}
	lead := models.SellerLead{
		SellerName:  input.SellerName,
		Title:       input.Title,
		Description: input.Description,
		Phone:       input.Phone,
		Region:      input.Region,
		Source:      input.Source,
		ListingDate: input.ListingDate,
		ContactID:   input.ContactID,
		Notes:       input.Notes,
	}
	if input.PropertyType != "" {
		pt, err := models.ParsePropertyType(input.PropertyType)
		if err != nil {
			return nil, LeadOutput{}, err
		}
		lead.PropertyType = pt
	}
	added, err := h.ws.Store.SellerLeads.Add(lead)
	if err != nil {
		return nil, LeadOutput{}, fmt.Errorf("failed to create lead: %w", err)
	}
	return nil, LeadOutput{Lead: added}, nil
}

type MoveSellerLeadInput struct {
	LeadID        string  `json:"lead_id" jsonschema:"Lead ID (required)"`
	Phase         string  `json:"phase" jsonschema:"PROSPECT, PROSPECT_QUALIFIE, CLIENT or APRES_VENTE"`
	ConfirmMandat bool    `json:"confirm_mandat,omitempty" jsonschema:"Set to true to create the mandat when promoting to CLIENT; without it the draft is returned and nothing changes"`
	MandatName    string  `json:"mandat_name,omitempty" jsonschema:"Override the drafted mandat name"`
	MandatValue   float64 `json:"mandat_value,omitempty" jsonschema:"Mandat value"`
	MandatType    string  `json:"mandat_type,omitempty" jsonschema:"SIMPLE, EXCLUSIF or RECHERCHE"`
}

type MoveSellerLeadOutput struct {
	Lead        models.SellerLead `json:"lead"`
	Decision    string            `json:"decision"`
	Applied     bool              `json:"applied"`
	Mandat      *models.Mandat    `json:"mandat,omitempty"`
	MandatDraft *models.Mandat    `json:"mandat_draft,omitempty"`
	Message     string            `json:"message"`
}

func (h *LeadHandlers) MoveSellerLead(_ context.Context, _ *mcp.CallToolRequest, input MoveSellerLeadInput) (*mcp.CallToolResult, MoveSellerLeadOutput, error) {
	target, err := models.ParseSellerPhase(input.Phase)
	if err != nil {
		return nil, MoveSellerLeadOutput{}, err
	}
	var mandatType models.MandatType
	if input.MandatType != "" {
		if mandatType, err = models.ParseMandatType(input.MandatType); err != nil {
			return nil, MoveSellerLeadOutput{}, err
		}
	}

	var draft *models.Mandat
	confirm := func(d models.Mandat) (models.Mandat, bool) {
		if input.MandatName != "" {
			d.Name = input.MandatName
		}
		if input.MandatValue > 0 {
			d.Value = input.MandatValue
		}
		if mandatType != "" {
			d.Type = mandatType
		}
		draft = &d
		return d, input.ConfirmMandat
	}

	result, err := h.ws.RequestPhaseTransition(input.LeadID, target, confirm)
	if err != nil {
		return nil, MoveSellerLeadOutput{}, err
	}

	out := MoveSellerLeadOutput{
		Lead:     result.Lead,
		Decision: result.Decision.String(),
		Applied:  result.Applied,
		Mandat:   result.Mandat,
	}
	switch {
	case result.Applied && result.Mandat != nil:
		out.Message = fmt.Sprintf("lead moved to %s and mandat %s created", target, result.Mandat.ID)
	case result.Applied:
		out.Message = fmt.Sprintf("lead moved to %s", target)
	case draft != nil:
		out.MandatDraft = draft
		out.Message = "promotion to CLIENT creates this mandat; call again with confirm_mandat=true to proceed"
	default:
		out.Message = fmt.Sprintf("lead stays in %s: clients cannot move back", result.Lead.EffectivePhase())
	}
	return nil, out, nil
}

type ListSellerLeadsInput struct {
	Query        string `json:"query,omitempty" jsonschema:"Search seller name, title, region or phone (accents ignored)"`
	Phase        string `json:"phase,omitempty" jsonschema:"Filter by phase"`
	NotContacted bool   `json:"not_contacted,omitempty" jsonschema:"Only leads not yet contacted"`
}

type ListSellerLeadsOutput struct {
	Leads       []models.SellerLead `json:"leads"`
	PhaseCounts map[string]int      `json:"phase_counts"`
}

func (h *LeadHandlers) ListSellerLeads(_ context.Context, _ *mcp.CallToolRequest, input ListSellerLeadsInput) (*mcp.CallToolResult, ListSellerLeadsOutput, error) {
	var want models.SellerPhase
	if input.Phase != "" {
		p, err := models.ParseSellerPhase(input.Phase)
		if err != nil {
			return nil, ListSellerLeadsOutput{}, err
		}
		want = p
	}

	out := ListSellerLeadsOutput{Leads: []models.SellerLead{}, PhaseCounts: map[string]int{}}
	for _, l := range h.ws.Store.SellerLeads.Search(input.Query) {
		if want != "" && l.EffectivePhase() != want {
			continue
		}
		if input.NotContacted && l.Contacted {
			continue
		}
		out.Leads = append(out.Leads, l)
	}
	for phase, n := range h.ws.Store.SellerLeads.PhaseCounts() {
		out.PhaseCounts[string(phase)] = n
	}
	return nil, out, nil
}

type LeadIDInput struct {
	LeadID string `json:"lead_id" jsonschema:"Lead ID (required)"`
}

func (h *LeadHandlers) MarkContacted(_ context.Context, _ *mcp.CallToolRequest, input LeadIDInput) (*mcp.CallToolResult, LeadOutput, error) {
	lead, err := h.ws.MarkContacted(input.LeadID)
	if err != nil {
		return nil, LeadOutput{}, err
	}
	return nil, LeadOutput{Lead: lead}, nil
}

type ConvertLeadOutput struct {
	Lead    models.SellerLead `json:"lead"`
	Contact models.Contact    `json:"contact"`
}

func (h *LeadHandlers) ConvertLead(_ context.Context, _ *mcp.CallToolRequest, input LeadIDInput) (*mcp.CallToolResult, ConvertLeadOutput, error) {
	contact, lead, err := h.ws.ConvertLeadToContact(input.LeadID)
	if err != nil {
		return nil, ConvertLeadOutput{}, err
	}
	return nil, ConvertLeadOutput{Lead: lead, Contact: contact}, nil
}
