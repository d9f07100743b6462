// ABOUTME: Seller lead CLI commands
// ABOUTME: Phase moves go through the phase machine and prompt before creating a mandat
package cli

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/immo/crm"
	"github.com/harperreed/immo/models"
	"github.com/harperreed/immo/pipeline"
	"github.com/harperreed/immo/viz"
)

// PromptConfirmer shows the mandat draft on out and reads a y/n answer from in.
// Anything but y or yes declines. edit runs on the draft before it is shown.
func PromptConfirmer(in io.Reader, out io.Writer, edit func(*models.Mandat)) crm.MandatConfirmer {
	return func(draft models.Mandat) (models.Mandat, bool) {
		if edit != nil {
			edit(&draft)
		}
		_, _ = fmt.Fprintln(out, "Promoting to CLIENT creates this mandat:")
		_, _ = fmt.Fprintf(out, "  Name:  %s\n", draft.Name)
		_, _ = fmt.Fprintf(out, "  Type:  %s\n", draft.Type)
		_, _ = fmt.Fprintf(out, "  Value: %s\n", viz.FormatMoney(draft.Value))
		_, _ = fmt.Fprintf(out, "  Date:  %s\n", draft.Date)
		_, _ = fmt.Fprintf(out, "  Notes: %s\n", draft.Notes)
		_, _ = fmt.Fprint(out, "Create mandat? [y/N] ")

		answer, _ := bufio.NewReader(in).ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes", "o", "oui":
			return draft, true
		}
		return draft, false
	}
}

// AddLeadCommand adds a seller lead in PROSPECT unless --phase says otherwise.
func AddLeadCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("add-lead", flag.ExitOnError)
	seller := fs.String("seller", "", "Seller name (required)")
	title := fs.String("title", "", "Listing title")
	description := fs.String("description", "", "Listing description")
	phone := fs.String("phone", "", "Seller phone")
	region := fs.String("region", "", "Region")
	source := fs.String("source", "", "Where the listing was found")
	listed := fs.String("listed", "", "Listing date (YYYY-MM-DD)")
	propertyType := fs.String("property-type", "", "Villa, Appartement, Maison, Studio, Terrain, Bureau, Local Commercial or Autre")
	contactID := fs.String("contact", "", "Linked contact ID")
	phase := fs.String("phase", "", "Initial phase (default PROSPECT)")
	notes := fs.String("notes", "", "Notes")
	_ = fs.Parse(args)

	if *seller == "" {
		return fmt.Errorf("--seller is required")
	}
	lead := models.SellerLead{
		SellerName:  *seller,
		Title:       *title,
		Description: *description,
		Phone:       *phone,
		Region:      *region,
		Source:      *source,
		ListingDate: *listed,
		ContactID:   *contactID,
		Notes:       *notes,
	}
	if *phase != "" {
		p, err := models.ParseSellerPhase(*phase)
		if err != nil {
			return err
		}
		lead.Phase = p
	}
	if *propertyType != "" {
		pt, err := models.ParsePropertyType(*propertyType)
		if err != nil {
			return err
		}
		lead.PropertyType = pt
	}

	added, err := ws.Store.SellerLeads.Add(lead)
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	fmt.Printf("✓ Lead created: %s (ID: %s)\n", added.SellerName, added.ID)
	fmt.Printf("  Phase: %s\n", added.Phase.Label())
	return nil
}

// ListLeadsCommand lists seller leads with phase and contact state.
func ListLeadsCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("list-leads", flag.ExitOnError)
	query := fs.String("query", "", "Search by seller, title, region or phone")
	phase := fs.String("phase", "", "Filter by phase")
	pending := fs.Bool("not-contacted", false, "Only leads not yet contacted")
	_ = fs.Parse(args)

	var want models.SellerPhase
	if *phase != "" {
		p, err := models.ParseSellerPhase(*phase)
		if err != nil {
			return err
		}
		want = p
	}

	var leads []models.SellerLead
	for _, l := range ws.Store.SellerLeads.Search(*query) {
		if want != "" && l.EffectivePhase() != want {
			continue
		}
		if *pending && l.Contacted {
			continue
		}
		leads = append(leads, l)
	}
	if len(leads) == 0 {
		fmt.Println("No leads found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SELLER\tTITLE\tPHASE\tCONTACTED\tREGION\tID")
	_, _ = fmt.Fprintln(w, "------\t-----\t-----\t---------\t------\t--")
	for _, l := range leads {
		contacted := "no"
		if l.Contacted {
			contacted = "yes"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			l.SellerName, dash(l.Title), l.EffectivePhase().Label(), contacted, dash(l.Region), l.ID)
	}
	_ = w.Flush()

	fmt.Printf("\nTotal: %d lead(s)\n", len(leads))
	return nil
}

// MoveLeadCommand requests a phase change. Promoting to CLIENT asks before creating the mandat.
func MoveLeadCommand(ws *crm.Workspace, args []string) error {
	return moveLead(ws, args, os.Stdin, os.Stdout)
}

func moveLead(ws *crm.Workspace, args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("move-lead", flag.ExitOnError)
	yes := fs.Bool("yes", false, "Create the mandat without asking")
	name := fs.String("mandat-name", "", "Override the mandat name")
	value := fs.Float64("mandat-value", 0, "Mandat value")
	kind := fs.String("mandat-type", "", "SIMPLE, EXCLUSIF or RECHERCHE")
	_ = fs.Parse(args)

	if fs.NArg() < 2 {
		return fmt.Errorf("usage: move-lead [flags] <lead-id> <phase>")
	}
	target, err := models.ParseSellerPhase(fs.Arg(1))
	if err != nil {
		return err
	}
	var mandatType models.MandatType
	if *kind != "" {
		if mandatType, err = models.ParseMandatType(*kind); err != nil {
			return err
		}
	}

	edit := func(m *models.Mandat) {
		if *name != "" {
			m.Name = *name
		}
		if *value > 0 {
			m.Value = *value
		}
		if mandatType != "" {
			m.Type = mandatType
		}
	}
	confirm := PromptConfirmer(in, out, edit)
	if *yes {
		confirm = func(draft models.Mandat) (models.Mandat, bool) {
			edit(&draft)
			return draft, true
		}
	}

	result, err := ws.RequestPhaseTransition(fs.Arg(0), target, confirm)
	if err != nil {
		return fmt.Errorf("failed to move lead: %w", err)
	}

	switch {
	case result.Decision == pipeline.Reject:
		_, _ = fmt.Fprintf(out, "Lead stays in %s: a client cannot go back to %s\n",
			result.Lead.EffectivePhase().Label(), target.Label())
	case !result.Applied:
		_, _ = fmt.Fprintln(out, "Cancelled, nothing changed")
	default:
		_, _ = fmt.Fprintf(out, "✓ Lead %s moved to %s\n", result.Lead.SellerName, result.Lead.Phase.Label())
		if result.Mandat != nil {
			_, _ = fmt.Fprintf(out, "✓ Mandat created: %s (ID: %s)\n", result.Mandat.Name, result.Mandat.ID)
		}
	}
	return nil
}

// ContactedCommand marks a lead as contacted.
func ContactedCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("contacted", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("lead ID is required")
	}
	lead, err := ws.MarkContacted(fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Printf("✓ %s marked as contacted\n", lead.SellerName)
	return nil
}

// ConvertLeadCommand turns a lead into a contact.
func ConvertLeadCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("convert-lead", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("lead ID is required")
	}
	contact, lead, err := ws.ConvertLeadToContact(fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Printf("✓ %s linked to contact %s (ID: %s)\n", lead.SellerName, contact.FullName(), contact.ID)
	return nil
}

// DeleteLeadCommand deletes a seller lead.
func DeleteLeadCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("delete-lead", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("lead ID is required")
	}
	found, err := ws.Store.SellerLeads.Delete(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: %s", crm.ErrLeadNotFound, fs.Arg(0))
	}
	fmt.Printf("✓ Lead deleted: %s\n", fs.Arg(0))
	return nil
}
