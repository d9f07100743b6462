// ABOUTME: MCP resource handlers for exposing CRM data
// ABOUTME: Provides read-only access to contacts, leads, mandats, buyers, the goal and the dashboard via URI
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/immo/crm"
)

// ResourceScheme prefixes every resource URI.
const ResourceScheme = "immo://"

type ResourceHandlers struct {
	ws *crm.Workspace
}

func NewResourceHandlers(ws *crm.Workspace) *ResourceHandlers {
	return &ResourceHandlers{ws: ws}
}

// ResourceNames lists the collection resources served at immo://<name>.
var ResourceNames = []string{"contacts", "seller-leads", "mandats", "buyers", "tasks", "goal", "dashboard"}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(_ context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, ResourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", ResourceScheme)
	}
	parts := strings.Split(strings.TrimPrefix(uri, ResourceScheme), "/")
	s := h.ws.Store

	var v any
	switch parts[0] {
	case "contacts":
		v = s.Contacts.All()
		if len(parts) > 1 {
			c, ok := s.Contacts.Get(parts[1])
			if !ok {
				return nil, fmt.Errorf("%w: %s", crm.ErrContactNotFound, parts[1])
			}
			v = c
		}
	case "seller-leads":
		v = s.SellerLeads.All()
		if len(parts) > 1 {
			l, ok := s.SellerLeads.Get(parts[1])
			if !ok {
				return nil, fmt.Errorf("%w: %s", crm.ErrLeadNotFound, parts[1])
			}
			v = l
		}
	case "mandats":
		v = s.Mandats.All()
		if len(parts) > 1 {
			m, ok := s.Mandats.Get(parts[1])
			if !ok {
				return nil, fmt.Errorf("%w: %s", crm.ErrMandatNotFound, parts[1])
			}
			v = map[string]any{"mandat": m, "buyers": s.Buyers.ByMandat(m.ID), "tasks": s.Tasks.ByMandat(m.ID)}
		}
	case "buyers":
		v = s.Buyers.All()
	case "tasks":
		v = s.Tasks.All()
	case "goal":
		goal, ok := s.Goals.Current()
		if !ok {
			return nil, crm.ErrNoGoal
		}
		v = goal
	case "dashboard":
		v = h.ws.Dashboard()
	default:
		return nil, fmt.Errorf("unknown resource: %s", parts[0])
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", parts[0], err)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
