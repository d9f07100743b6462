// ABOUTME: Holds the single current annual goal
// ABOUTME: Setting a goal replaces the previous one; there is no history
package store

import (
	"fmt"
	"sync"

	"github.com/harperreed/immo/models"
)

type Goals struct {
	deps    Deps
	mu      sync.RWMutex
	current *models.AnnualGoal
}

func newGoals(deps Deps) (*Goals, error) {
	g := &Goals{deps: deps}
	data, ok, err := deps.Storage.Load(KeyAnnualGoal)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", KeyAnnualGoal, err)
	}
	if ok {
		var goal *models.AnnualGoal
		if err := decodeSnapshot(data, &goal); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", KeyAnnualGoal, err)
		}
		g.current = goal
	}
	return g, nil
}

// Current returns a copy of the active goal.
func (g *Goals) Current() (models.AnnualGoal, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.current == nil {
		return models.AnnualGoal{}, false
	}
	return copyGoal(*g.current), true
}

// Set replaces the active goal.
func (g *Goals) Set(goal models.AnnualGoal) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	next := copyGoal(goal)
	if err := g.save(&next); err != nil {
		return err
	}
	g.current = &next
	return nil
}

// Clear removes the active goal.
func (g *Goals) Clear() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.save(nil); err != nil {
		return err
	}
	g.current = nil
	return nil
}

func (g *Goals) save(goal *models.AnnualGoal) error {
	data, err := encodeSnapshot(goal)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", KeyAnnualGoal, err)
	}
	if err := g.deps.Storage.Save(KeyAnnualGoal, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", KeyAnnualGoal, err)
	}
	return nil
}

func copyGoal(goal models.AnnualGoal) models.AnnualGoal {
	goal.MonthlyGoals = append([]models.MonthlyGoal(nil), goal.MonthlyGoals...)
	return goal
}
