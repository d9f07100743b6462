// ABOUTME: Google Calendar importer turning timed events into calendar tasks
// ABOUTME: Uses sync tokens for incremental runs and links attendees to known contacts
package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"github.com/harperreed/immo/models"
)

const (
	calendarService = "calendar"
	maxResults      = 250 // Google Calendar API max per page
)

// DefaultTaskColor is used when an event has no color of its own.
const DefaultTaskColor = "#3b82f6"

// eventColors maps Google Calendar event color ids to hex colors.
var eventColors = map[string]string{
	"1": "#7986cb", "2": "#33b679", "3": "#8e24aa", "4": "#e67c73",
	"5": "#f6bf26", "6": "#f4511e", "7": "#039be5", "8": "#616161",
	"9": "#3f51b5", "10": "#0b8043", "11": "#d50000",
}

// shouldSkipEvent reports whether an event cannot become a task, and why.
func shouldSkipEvent(event *calendar.Event) (bool, string) {
	if event == nil {
		return true, "nil event"
	}
	if event.Status == "cancelled" {
		return true, "cancelled"
	}
	if event.Start == nil || event.End == nil {
		return true, "missing time"
	}
	if event.Start.Date != "" {
		return true, "all-day"
	}
	for _, a := range event.Attendees {
		if a.Self && a.ResponseStatus == "declined" {
			return true, "declined"
		}
	}
	return false, ""
}

// eventToTask converts a timed event. Times keep the offset the event was written with.
func (im *Importer) eventToTask(event *calendar.Event) (models.CalendarTask, error) {
	start, err := time.Parse(time.RFC3339, event.Start.DateTime)
	if err != nil {
		return models.CalendarTask{}, fmt.Errorf("bad start time: %w", err)
	}
	end, err := time.Parse(time.RFC3339, event.End.DateTime)
	if err != nil {
		return models.CalendarTask{}, fmt.Errorf("bad end time: %w", err)
	}
	end = end.In(start.Location())
	if end.Format(models.DateLayout) != start.Format(models.DateLayout) {
		end = time.Date(start.Year(), start.Month(), start.Day(), 23, 59, 0, 0, start.Location())
	}

	color, ok := eventColors[event.ColorId]
	if !ok {
		color = DefaultTaskColor
	}

	task := models.CalendarTask{
		Title:       event.Summary,
		Description: event.Description,
		Date:        start.Format(models.DateLayout),
		StartTime:   start.Format(models.TimeLayout),
		EndTime:     end.Format(models.TimeLayout),
		Color:       color,
	}
	if task.Title == "" {
		task.Title = "(sans titre)"
	}
	for _, a := range event.Attendees {
		if a.Self {
			continue
		}
		if c, found := im.matcher.FindMatch(a.Email, a.DisplayName); found {
			task.ContactID = c.ID
			break
		}
	}
	return task, task.Validate()
}

// ImportEvents imports one page of events.
func (im *Importer) ImportEvents(events []*calendar.Event, sum *Summary) {
	for _, event := range events {
		sum.Fetched++
		if skip, reason := shouldSkipEvent(event); skip {
			sum.Skipped[reason]++
			continue
		}

		done, err := im.log.Imported(calendarService, event.Id)
		if err != nil {
			log.Warn("failed to check sync log", "event", event.Id, "err", err)
			continue
		}
		if done {
			sum.Skipped["already imported"]++
			continue
		}

		task, err := im.eventToTask(event)
		if err != nil {
			sum.Skipped["invalid time"]++
			continue
		}
		stored, err := im.tasks.Add(task)
		if err != nil {
			log.Warn("failed to create task", "event", event.Id, "err", err)
			continue
		}
		if err := im.log.Record(calendarService, event.Id, "calendarTask", stored.ID); err != nil {
			log.Warn("failed to log sync", "event", event.Id, "err", err)
		}
		sum.Created++
	}
}

// ImportCalendar fetches events from the primary calendar. The first run, or
// initial=true, covers the last six months; later runs resume from the sync token.
func (im *Importer) ImportCalendar(ctx context.Context, client *calendar.Service, initial bool) (Summary, error) {
	sum := newSummary()
	if err := im.log.SetStatus(calendarService, "syncing", ""); err != nil {
		return sum, fmt.Errorf("failed to update sync status: %w", err)
	}

	state, err := im.log.State(calendarService)
	if err != nil {
		return sum, im.fail(calendarService, fmt.Errorf("failed to get sync state: %w", err))
	}

	sixMonthsAgo := time.Now().AddDate(0, -6, 0)
	newCall := func(since time.Time) *calendar.EventsListCall {
		return client.Events.List("primary").
			Context(ctx).
			MaxResults(maxResults).
			SingleEvents(true).
			TimeMin(since.Format(time.RFC3339))
	}

	var call *calendar.EventsListCall
	if !initial && state != nil && state.LastSyncToken != nil && *state.LastSyncToken != "" {
		call = client.Events.List("primary").Context(ctx).MaxResults(maxResults).SingleEvents(true).
			SyncToken(*state.LastSyncToken)
	} else {
		call = newCall(sixMonthsAgo)
	}

	pageToken := ""
	for {
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		events, err := call.Do()
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == 410 {
			log.Info("sync token expired, falling back to time-based sync")
			since := sixMonthsAgo
			if state != nil && state.LastSyncTime != nil {
				since = *state.LastSyncTime
			}
			call, pageToken = newCall(since), ""
			events, err = call.Do()
		}
		if err != nil {
			return sum, im.fail(calendarService, fmt.Errorf("failed to fetch calendar events: %w", err))
		}

		im.ImportEvents(events.Items, &sum)

		pageToken = events.NextPageToken
		if pageToken == "" {
			if err := im.log.Finish(calendarService, events.NextSyncToken); err != nil {
				return sum, fmt.Errorf("failed to update sync token: %w", err)
			}
			break
		}
	}
	return sum, nil
}

// Report prints the run summary the way every import command does.
func (s Summary) Report(what string) {
	fmt.Printf("\n✓ Fetched %d %s\n", s.Fetched, what)
	if s.Created > 0 {
		fmt.Printf("  ✓ Created %d\n", s.Created)
	}
	if s.Updated > 0 {
		fmt.Printf("  ✓ Updated %d existing\n", s.Updated)
	}
	for reason, count := range s.Skipped {
		fmt.Printf("  ✓ Skipped %d %s record%s\n", count, reason, pluralize(count))
	}
}
