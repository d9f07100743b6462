// ABOUTME: Calendar task and annonce CLI commands
// ABOUTME: Tasks are validated here before they reach the store
package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/harperreed/immo/crm"
	"github.com/harperreed/immo/models"
)

// AddTaskCommand schedules a task. Date defaults to today.
func AddTaskCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("add-task", flag.ExitOnError)
	title := fs.String("title", "", "Task title (required)")
	description := fs.String("description", "", "Description")
	date := fs.String("date", "", "Date (YYYY-MM-DD, default today)")
	start := fs.String("start", "09:00", "Start time (HH:mm)")
	end := fs.String("end", "10:00", "End time (HH:mm)")
	color := fs.String("color", "", "Display color")
	contactID := fs.String("contact", "", "Contact ID")
	mandatID := fs.String("mandat", "", "Mandat ID")
	_ = fs.Parse(args)

	if *title == "" {
		return fmt.Errorf("--title is required")
	}
	if *date == "" {
		*date = ws.Store.Clock()().Format(models.DateLayout)
	}
	task := models.CalendarTask{
		Title:       *title,
		Description: *description,
		Date:        *date,
		StartTime:   *start,
		EndTime:     *end,
		Color:       *color,
		ContactID:   *contactID,
		MandatID:    *mandatID,
	}
	if err := task.Validate(); err != nil {
		return err
	}

	added, err := ws.Store.Tasks.Add(task)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	fmt.Printf("✓ Task scheduled: %s on %s %s-%s (ID: %s)\n",
		added.Title, added.Date, added.StartTime, added.EndTime, added.ID)
	return nil
}

// ListTasksCommand shows the agenda for a day or a date range.
func ListTasksCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("list-tasks", flag.ExitOnError)
	date := fs.String("date", "", "Day (YYYY-MM-DD, default today)")
	from := fs.String("from", "", "Range start (YYYY-MM-DD)")
	to := fs.String("to", "", "Range end (YYYY-MM-DD)")
	week := fs.Bool("week", false, "Seven days starting at --date")
	_ = fs.Parse(args)

	if *date == "" {
		*date = ws.Store.Clock()().Format(models.DateLayout)
	}
	day, err := time.Parse(models.DateLayout, *date)
	if err != nil {
		return fmt.Errorf("%w: date %q must be YYYY-MM-DD", models.ErrInvalidSchedule, *date)
	}

	var tasks []models.CalendarTask
	switch {
	case *from != "" || *to != "":
		if *from == "" || *to == "" {
			return fmt.Errorf("--from and --to go together")
		}
		tasks = ws.Store.Tasks.Between(*from, *to)
	case *week:
		tasks = ws.Store.Tasks.Between(*date, day.AddDate(0, 0, 6).Format(models.DateLayout))
	default:
		tasks = ws.Store.Tasks.ByDate(*date)
	}
	if len(tasks) == 0 {
		fmt.Println("No tasks scheduled")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DATE\tTIME\tTITLE\tWITH\tID")
	_, _ = fmt.Fprintln(w, "----\t----\t-----\t----\t--")
	for _, t := range tasks {
		with := "-"
		if c, ok := ws.Store.Contacts.Get(t.ContactID); ok {
			with = c.FullName()
		}
		_, _ = fmt.Fprintf(w, "%s\t%s-%s\t%s\t%s\t%s\n", t.Date, t.StartTime, t.EndTime, t.Title, with, t.ID)
	}
	_ = w.Flush()

	fmt.Printf("\nTotal: %d task(s)\n", len(tasks))
	return nil
}

// DeleteTaskCommand removes a task.
func DeleteTaskCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("delete-task", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("task ID is required")
	}
	found, err := ws.Store.Tasks.Delete(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if !found {
		return fmt.Errorf("task not found: %s", fs.Arg(0))
	}
	fmt.Printf("✓ Task deleted: %s\n", fs.Arg(0))
	return nil
}

// AddAnnonceCommand publishes a listing for a mandat.
func AddAnnonceCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("add-annonce", flag.ExitOnError)
	mandatID := fs.String("mandat", "", "Mandat ID (required)")
	title := fs.String("title", "", "Listing title (required)")
	description := fs.String("description", "", "Listing text")
	photos := fs.String("photos", "", "Comma-separated photo URLs")
	_ = fs.Parse(args)

	if *mandatID == "" || *title == "" {
		return fmt.Errorf("--mandat and --title are required")
	}
	if _, ok := ws.Store.Mandats.Get(*mandatID); !ok {
		return fmt.Errorf("%w: %s", crm.ErrMandatNotFound, *mandatID)
	}

	var urls []string
	for _, p := range strings.Split(*photos, ",") {
		if p = strings.TrimSpace(p); p != "" {
			urls = append(urls, p)
		}
	}
	a, err := ws.Store.Annonces.Add(models.Annonce{
		MandatID:    *mandatID,
		Title:       *title,
		Description: *description,
		Photos:      urls,
	})
	if err != nil {
		return fmt.Errorf("failed to create annonce: %w", err)
	}
	if _, _, err := ws.Store.Mandats.Update(*mandatID, models.MandatPatch{AnnonceID: &a.ID}); err != nil {
		return fmt.Errorf("failed to link annonce: %w", err)
	}
	fmt.Printf("✓ Annonce published: %s (slug: %s, ID: %s)\n", a.Title, a.Slug, a.ID)
	return nil
}

// ListAnnoncesCommand lists published annonces.
func ListAnnoncesCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("list-annonces", flag.ExitOnError)
	_ = fs.Parse(args)

	annonces := ws.Store.Annonces.All()
	if len(annonces) == 0 {
		fmt.Println("No annonces found")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TITLE\tSLUG\tMANDAT\tPHOTOS\tID")
	_, _ = fmt.Fprintln(w, "-----\t----\t------\t------\t--")
	for _, a := range annonces {
		mandat := "-"
		if m, ok := ws.Store.Mandats.Get(a.MandatID); ok {
			mandat = m.Name
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", a.Title, a.Slug, mandat, len(a.Photos), a.ID)
	}
	return w.Flush()
}
