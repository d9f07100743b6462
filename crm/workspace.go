// ABOUTME: Workspace wires the entity stores to the scoring, goal and stage engines
// ABOUTME: Cross-entity operations live here so each store stays independent
package crm

import (
	"errors"
	"sync"

	"github.com/harperreed/immo/goals"
	"github.com/harperreed/immo/store"
)

var (
	ErrLeadNotFound    = errors.New("seller lead not found")
	ErrMandatNotFound  = errors.New("mandat not found")
	ErrBuyerNotFound   = errors.New("buyer not found")
	ErrDealNotFound    = errors.New("deal not found")
	ErrContactNotFound = errors.New("contact not found")
	ErrNoGoal          = errors.New("no annual goal set")
)

// Workspace is the dependency container handed to the CLI, MCP server and TUI.
type Workspace struct {
	Store   *store.Store
	planner *goals.Planner

	// mu serialises operations that touch more than one collection.
	mu sync.Mutex
}

func New(s *store.Store) *Workspace {
	return &Workspace{
		Store:   s,
		planner: goals.NewPlanner(s.IDs().NewID),
	}
}

// Open loads every collection from deps.Storage and returns a ready workspace.
func Open(deps store.Deps) (*Workspace, error) {
	s, err := store.Open(deps)
	if err != nil {
		return nil, err
	}
	return New(s), nil
}

// today formats the workspace clock as YYYY-MM-DD.
func (w *Workspace) today() string {
	return w.Store.Clock()().Format("2006-01-02")
}
