// ABOUTME: Calendar task and annonce stores
// ABOUTME: Tasks are listed per day in start-time order; annonces get a URL slug from their title
package store

import (
	"sort"

	"github.com/gosimple/slug"

	"github.com/harperreed/immo/models"
)

type CalendarTasks struct {
	*Collection[models.CalendarTask, *models.CalendarTask]
}

func (s *CalendarTasks) Update(id string, patch models.CalendarTaskPatch) (models.CalendarTask, bool, error) {
	return s.Modify(id, patch.Apply)
}

// ByDate lists the tasks of one YYYY-MM-DD day sorted by start time.
func (s *CalendarTasks) ByDate(date string) []models.CalendarTask {
	out := s.Filter(func(t models.CalendarTask) bool { return t.Date == date })
	sortTasks(out)
	return out
}

// Between lists tasks with from <= date <= to, in date then start-time order.
func (s *CalendarTasks) Between(from, to string) []models.CalendarTask {
	out := s.Filter(func(t models.CalendarTask) bool { return t.Date >= from && t.Date <= to })
	sortTasks(out)
	return out
}

func (s *CalendarTasks) ByMandat(mandatID string) []models.CalendarTask {
	out := s.Filter(func(t models.CalendarTask) bool { return t.MandatID == mandatID })
	sortTasks(out)
	return out
}

func sortTasks(tasks []models.CalendarTask) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Date != tasks[j].Date {
			return tasks[i].Date < tasks[j].Date
		}
		return tasks[i].StartTime < tasks[j].StartTime
	})
}

type Annonces struct {
	*Collection[models.Annonce, *models.Annonce]
}

func (s *Annonces) Add(a models.Annonce) (models.Annonce, error) {
	a.Slug = slug.Make(a.Title)
	if a.Photos == nil {
		a.Photos = []string{}
	}
	return s.Collection.Add(a)
}

func (s *Annonces) Update(id string, patch models.AnnoncePatch) (models.Annonce, bool, error) {
	return s.Modify(id, func(a *models.Annonce) {
		patch.Apply(a)
		if patch.Title != nil {
			a.Slug = slug.Make(a.Title)
		}
	})
}

// ByMandat returns the annonce published for a mandat.
func (s *Annonces) ByMandat(mandatID string) (models.Annonce, bool) {
	found := s.Filter(func(a models.Annonce) bool { return a.MandatID == mandatID })
	if len(found) == 0 {
		return models.Annonce{}, false
	}
	return found[0], true
}

func (s *Annonces) BySlug(value string) (models.Annonce, bool) {
	found := s.Filter(func(a models.Annonce) bool { return a.Slug == value })
	if len(found) == 0 {
		return models.Annonce{}, false
	}
	return found[0], true
}
