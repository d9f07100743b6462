// ABOUTME: Mandat and buyer MCP tool handlers
// ABOUTME: Implements create/move/list tools for mandats and the buyers attached to them
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/immo/crm"
	"github.com/harperreed/immo/models"
)

type MandatHandlers struct {
	ws *crm.Workspace
}

func NewMandatHandlers(ws *crm.Workspace) *MandatHandlers {
	return &MandatHandlers{ws: ws}
}

type CreateMandatInput struct {
	Name      string  `json:"name" jsonschema:"Mandat name (required)"`
	ContactID string  `json:"contact_id,omitempty" jsonschema:"Seller contact ID"`
	Type      string  `json:"type,omitempty" jsonschema:"SIMPLE, EXCLUSIF or RECHERCHE (default SIMPLE)"`
	Stage     string  `json:"stage,omitempty" jsonschema:"Initial stage (default LEAD)"`
	Value     float64 `json:"value,omitempty" jsonschema:"Property value"`
	Date      string  `json:"date,omitempty" jsonschema:"Signature date YYYY-MM-DD"`
	Notes     string  `json:"notes,omitempty" jsonschema:"Notes"`
}

type MandatOutput struct {
	Mandat models.Mandat `json:"mandat"`
}

func (h *MandatHandlers) CreateMandat(_ context.Context, _ *mcp.CallToolRequest, input CreateMandatInput) (*mcp.CallToolResult, MandatOutput, error) {
	if input.Name == "" {
		return nil, MandatOutput{}, fmt.Errorf("name is required")
	}
	m := models.Mandat{
		Name:      input.Name,
		ContactID: input.ContactID,
		Value:     input.Value,
		Date:      input.Date,
		Notes:     input.Notes,
	}
	var err error
	if input.Type != "" {
		if m.Type, err = models.ParseMandatType(input.Type); err != nil {
			return nil, MandatOutput{}, err
		}
	}
	if input.Stage != "" {
		if m.Stage, err = models.ParseBuyerStage(input.Stage); err != nil {
			return nil, MandatOutput{}, err
		}
	}
	added, err := h.ws.Store.Mandats.Add(m)
	if err != nil {
		return nil, MandatOutput{}, fmt.Errorf("failed to create mandat: %w", err)
	}
	return nil, MandatOutput{Mandat: added}, nil
}

type MoveMandatInput struct {
	MandatID string `json:"mandat_id" jsonschema:"Mandat ID (required)"`
	Stage    string `json:"stage" jsonschema:"LEAD, PROSPECT, VISITES, OFFRE, NEGOCIATION, PURCHASED or APRES_VENTE"`
}

func (h *MandatHandlers) MoveMandat(_ context.Context, _ *mcp.CallToolRequest, input MoveMandatInput) (*mcp.CallToolResult, MandatOutput, error) {
	stage, err := models.ParseBuyerStage(input.Stage)
	if err != nil {
		return nil, MandatOutput{}, err
	}
	m, err := h.ws.MoveMandat(input.MandatID, stage)
	if err != nil {
		return nil, MandatOutput{}, err
	}
	return nil, MandatOutput{Mandat: m}, nil
}

type ListMandatsInput struct {
	Stage string `json:"stage,omitempty" jsonschema:"Filter by stage"`
	Query string `json:"query,omitempty" jsonschema:"Search names and notes"`
}

type ListMandatsOutput struct {
	Mandats []models.Mandat `json:"mandats"`
}

func (h *MandatHandlers) ListMandats(_ context.Context, _ *mcp.CallToolRequest, input ListMandatsInput) (*mcp.CallToolResult, ListMandatsOutput, error) {
	var want models.BuyerStage
	if input.Stage != "" {
		s, err := models.ParseBuyerStage(input.Stage)
		if err != nil {
			return nil, ListMandatsOutput{}, err
		}
		want = s
	}
	out := ListMandatsOutput{Mandats: []models.Mandat{}}
	for _, m := range h.ws.Store.Mandats.Search(input.Query) {
		if want == "" || m.Stage == want {
			out.Mandats = append(out.Mandats, m)
		}
	}
	return nil, out, nil
}

type CreateBuyerInput struct {
	MandatID string `json:"mandat_id" jsonschema:"Mandat the buyer is interested in (required)"`
	Name     string `json:"name" jsonschema:"Buyer name (required)"`
	Phone    string `json:"phone,omitempty" jsonschema:"Phone number"`
	Email    string `json:"email,omitempty" jsonschema:"Email address"`
	Stage    string `json:"stage,omitempty" jsonschema:"Initial stage (default LEAD)"`
}

type BuyerOutput struct {
	Buyer models.Buyer `json:"buyer"`
}

func (h *MandatHandlers) CreateBuyer(_ context.Context, _ *mcp.CallToolRequest, input CreateBuyerInput) (*mcp.CallToolResult, BuyerOutput, error) {
	if input.Name == "" || input.MandatID == "" {
		return nil, BuyerOutput{}, fmt.Errorf("name and mandat_id are required")
	}
	if _, ok := h.ws.Store.Mandats.Get(input.MandatID); !ok {
		return nil, BuyerOutput{}, fmt.Errorf("%w: %s", crm.ErrMandatNotFound, input.MandatID)
	}
	b := models.Buyer{MandatID: input.MandatID, Name: input.Name, Phone: input.Phone, Email: input.Email}
	if input.Stage != "" {
		s, err := models.ParseBuyerStage(input.Stage)
		if err != nil {
			return nil, BuyerOutput{}, err
		}
		b.Stage = s
	}
	added, err := h.ws.Store.Buyers.Add(b)
	if err != nil {
		return nil, BuyerOutput{}, fmt.Errorf("failed to create buyer: %w", err)
	}
	return nil, BuyerOutput{Buyer: added}, nil
}

type MoveBuyerInput struct {
	BuyerID string `json:"buyer_id" jsonschema:"Buyer ID (required)"`
	Stage   string `json:"stage" jsonschema:"LEAD, PROSPECT, VISITES, OFFRE, NEGOCIATION, PURCHASED or APRES_VENTE"`
}

func (h *MandatHandlers) MoveBuyer(_ context.Context, _ *mcp.CallToolRequest, input MoveBuyerInput) (*mcp.CallToolResult, BuyerOutput, error) {
	stage, err := models.ParseBuyerStage(input.Stage)
	if err != nil {
		return nil, BuyerOutput{}, err
	}
	b, err := h.ws.MoveBuyer(input.BuyerID, stage)
	if err != nil {
		return nil, BuyerOutput{}, err
	}
	return nil, BuyerOutput{Buyer: b}, nil
}

type ListBuyersInput struct {
	MandatID string `json:"mandat_id,omitempty" jsonschema:"Only buyers of this mandat"`
	Stage    string `json:"stage,omitempty" jsonschema:"Filter by stage"`
}

type ListBuyersOutput struct {
	Buyers []models.Buyer `json:"buyers"`
}

func (h *MandatHandlers) ListBuyers(_ context.Context, _ *mcp.CallToolRequest, input ListBuyersInput) (*mcp.CallToolResult, ListBuyersOutput, error) {
	var want models.BuyerStage
	if input.Stage != "" {
		s, err := models.ParseBuyerStage(input.Stage)
		if err != nil {
			return nil, ListBuyersOutput{}, err
		}
		want = s
	}
	buyers := h.ws.Store.Buyers.All()
	if input.MandatID != "" {
		buyers = h.ws.Store.Buyers.ByMandat(input.MandatID)
	}
	out := ListBuyersOutput{Buyers: []models.Buyer{}}
	for _, b := range buyers {
		if want == "" || b.Stage == want {
			out.Buyers = append(out.Buyers, b)
		}
	}
	return nil, out, nil
}
