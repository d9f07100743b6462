// ABOUTME: Contact and agenda MCP tool handlers
// ABOUTME: Implements create_contact, find_contacts, create_task and tasks_for_date tools
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/immo/crm"
	"github.com/harperreed/immo/models"
)

type ContactHandlers struct {
	ws *crm.Workspace
}

func NewContactHandlers(ws *crm.Workspace) *ContactHandlers {
	return &ContactHandlers{ws: ws}
}

type CreateContactInput struct {
	Name      string `json:"name,omitempty" jsonschema:"Full name, split at the first space when first_name and last_name are empty"`
	FirstName string `json:"first_name,omitempty" jsonschema:"First name"`
	LastName  string `json:"last_name,omitempty" jsonschema:"Last name"`
	Email     string `json:"email,omitempty" jsonschema:"Contact email address"`
	Phone     string `json:"phone,omitempty" jsonschema:"Contact phone number"`
	Notes     string `json:"notes,omitempty" jsonschema:"Additional notes about the contact"`
}

type ContactOutput struct {
	Contact models.Contact `json:"contact"`
}

func (h *ContactHandlers) CreateContact(_ context.Context, _ *mcp.CallToolRequest, input CreateContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	first, last := input.FirstName, input.LastName
	if first == "" && last == "" {
		first, last = crm.SplitName(input.Name)
	}
	if first == "" && last == "" {
		return nil, ContactOutput{}, fmt.Errorf("name is required")
	}
	contact, err := h.ws.Store.Contacts.Add(models.Contact{
		FirstName: first,
		LastName:  last,
		Email:     input.Email,
		Phone:     input.Phone,
		Notes:     input.Notes,
	})
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to create contact: %w", err)
	}
	return nil, ContactOutput{Contact: contact}, nil
}

type FindContactsInput struct {
	Query string `json:"query,omitempty" jsonschema:"Search query (name, email or phone; case and accents ignored)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 10)"`
}

type FindContactsOutput struct {
	Contacts []models.Contact `json:"contacts"`
}

func (h *ContactHandlers) FindContacts(_ context.Context, _ *mcp.CallToolRequest, input FindContactsInput) (*mcp.CallToolResult, FindContactsOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = 10
	}
	contacts := h.ws.Store.Contacts.Search(input.Query)
	if len(contacts) > limit {
		contacts = contacts[:limit]
	}
	if contacts == nil {
		contacts = []models.Contact{}
	}
	return nil, FindContactsOutput{Contacts: contacts}, nil
}

type CreateTaskInput struct {
	Title       string `json:"title" jsonschema:"Task title (required)"`
	Description string `json:"description,omitempty" jsonschema:"Description"`
	Date        string `json:"date" jsonschema:"Date YYYY-MM-DD (required)"`
	StartTime   string `json:"start_time" jsonschema:"Start time HH:mm (required)"`
	EndTime     string `json:"end_time" jsonschema:"End time HH:mm, not before start (required)"`
	Color       string `json:"color,omitempty" jsonschema:"Display color"`
	ContactID   string `json:"contact_id,omitempty" jsonschema:"Contact ID"`
	MandatID    string `json:"mandat_id,omitempty" jsonschema:"Mandat ID"`
}

type TaskOutput struct {
	Task models.CalendarTask `json:"task"`
}

func (h *ContactHandlers) CreateTask(_ context.Context, _ *mcp.CallToolRequest, input CreateTaskInput) (*mcp.CallToolResult, TaskOutput, error) {
	if input.Title == "" {
		return nil, TaskOutput{}, fmt.Errorf("title is required")
	}
	task := models.CalendarTask{
		Title:       input.Title,
		Description: input.Description,
		Date:        input.Date,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		Color:       input.Color,
		ContactID:   input.ContactID,
		MandatID:    input.MandatID,
	}
	if err := task.Validate(); err != nil {
		return nil, TaskOutput{}, err
	}
	added, err := h.ws.Store.Tasks.Add(task)
	if err != nil {
		return nil, TaskOutput{}, fmt.Errorf("failed to create task: %w", err)
	}
	return nil, TaskOutput{Task: added}, nil
}

type TasksForDateInput struct {
	Date string `json:"date,omitempty" jsonschema:"Date YYYY-MM-DD (default today)"`
}

type TasksForDateOutput struct {
	Date  string                `json:"date"`
	Tasks []models.CalendarTask `json:"tasks"`
}

func (h *ContactHandlers) TasksForDate(_ context.Context, _ *mcp.CallToolRequest, input TasksForDateInput) (*mcp.CallToolResult, TasksForDateOutput, error) {
	date := input.Date
	if date == "" {
		date = h.ws.Store.Clock()().Format(models.DateLayout)
	}
	tasks := h.ws.Store.Tasks.ByDate(date)
	if tasks == nil {
		tasks = []models.CalendarTask{}
	}
	return nil, TasksForDateOutput{Date: date, Tasks: tasks}, nil
}
