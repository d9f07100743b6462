// ABOUTME: Mandat and buyer CLI commands
// ABOUTME: Stage moves are permissive; scoring stores the questionnaire result on the mandat
package cli

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/harperreed/immo/crm"
	"github.com/harperreed/immo/models"
	"github.com/harperreed/immo/scoring"
	"github.com/harperreed/immo/viz"
)

// AddMandatCommand adds a mandat in LEAD unless --stage is given.
func AddMandatCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("add-mandat", flag.ExitOnError)
	name := fs.String("name", "", "Mandat name (required)")
	contactID := fs.String("contact", "", "Seller contact ID")
	kind := fs.String("type", "SIMPLE", "SIMPLE, EXCLUSIF or RECHERCHE")
	stage := fs.String("stage", "", "Initial stage (default LEAD)")
	value := fs.Float64("value", 0, "Property value")
	date := fs.String("date", "", "Signature date (YYYY-MM-DD)")
	notes := fs.String("notes", "", "Notes")
	_ = fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("--name is required")
	}
	mandatType, err := models.ParseMandatType(*kind)
	if err != nil {
		return err
	}
	m := models.Mandat{
		Name:      *name,
		ContactID: *contactID,
		Type:      mandatType,
		Value:     *value,
		Date:      *date,
		Notes:     *notes,
	}
	if *stage != "" {
		if m.Stage, err = models.ParseBuyerStage(*stage); err != nil {
			return err
		}
	}

	added, err := ws.Store.Mandats.Add(m)
	if err != nil {
		return fmt.Errorf("failed to create mandat: %w", err)
	}
	fmt.Printf("✓ Mandat created: %s (ID: %s)\n", added.Name, added.ID)
	fmt.Printf("  Stage: %s  Value: %s\n", added.Stage.Label(), viz.FormatMoney(added.Value))
	return nil
}

// ListMandatsCommand lists mandats, optionally by stage or query.
func ListMandatsCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("list-mandats", flag.ExitOnError)
	stage := fs.String("stage", "", "Filter by stage")
	query := fs.String("query", "", "Search names and notes")
	_ = fs.Parse(args)

	var want models.BuyerStage
	if *stage != "" {
		s, err := models.ParseBuyerStage(*stage)
		if err != nil {
			return err
		}
		want = s
	}

	var mandats []models.Mandat
	for _, m := range ws.Store.Mandats.Search(*query) {
		if want == "" || m.Stage == want {
			mandats = append(mandats, m)
		}
	}
	if len(mandats) == 0 {
		fmt.Println("No mandats found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tTYPE\tSTAGE\tVALUE\tSCORE\tBUYERS\tID")
	_, _ = fmt.Fprintln(w, "----\t----\t-----\t-----\t-----\t------\t--")
	for _, m := range mandats {
		score := "-"
		if m.Score != nil {
			score = fmt.Sprintf("%d %s", m.Score.TotalScore, m.Score.Classification)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			m.Name, m.Type, m.Stage.Label(), viz.FormatMoney(m.Value), score,
			len(ws.Store.Buyers.ByMandat(m.ID)), m.ID)
	}
	_ = w.Flush()

	fmt.Printf("\nTotal: %d mandat(s)\n", len(mandats))
	return nil
}

// MoveMandatCommand moves a mandat to any stage.
func MoveMandatCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("move-mandat", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: move-mandat <mandat-id> <stage>")
	}
	stage, err := models.ParseBuyerStage(fs.Arg(1))
	if err != nil {
		return err
	}
	m, err := ws.MoveMandat(fs.Arg(0), stage)
	if err != nil {
		return err
	}
	fmt.Printf("✓ %s moved to %s\n", m.Name, m.Stage.Label())
	return nil
}

// scoreFlags registers the four questionnaire answers on fs.
func scoreFlags(fs *flag.FlagSet) func() (scoring.Answers, error) {
	timeframe := fs.String("timeframe", "", "IMMEDIATE, 3_MONTHS, 6_MONTHS or UNCERTAIN")
	motivation := fs.String("motivation", "", "MUST_SELL, WANT_SELL or CURIOUS")
	price := fs.String("price", "", "MARKET, ABOVE_MARKET or UNREALISTIC")
	exclusivity := fs.String("exclusivity", "", "YES, MAYBE or NO")
	return func() (scoring.Answers, error) {
		return scoring.ParseAnswers(*timeframe, *motivation, *price, *exclusivity)
	}
}

func printScore(s models.SellerScore) {
	fmt.Printf("  Score: %d/100 (%s)\n", s.TotalScore, s.Classification)
	fmt.Printf("  Motivation %d  Prix %d  Légal %d\n",
		s.Breakdown.Motivation, s.Breakdown.PriceRealism, s.Breakdown.Legal)
}

// ScoreMandatCommand scores the seller of a mandat.
func ScoreMandatCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("score-mandat", flag.ExitOnError)
	answers := scoreFlags(fs)
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("mandat ID is required")
	}
	a, err := answers()
	if err != nil {
		return err
	}
	m, err := ws.ScoreMandat(fs.Arg(0), a)
	if err != nil {
		return err
	}
	fmt.Printf("✓ %s scored\n", m.Name)
	printScore(*m.Score)
	return nil
}

// DeleteMandatCommand deletes a mandat. Its buyers become orphans.
func DeleteMandatCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("delete-mandat", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("mandat ID is required")
	}
	found, err := ws.Store.Mandats.Delete(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("failed to delete mandat: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: %s", crm.ErrMandatNotFound, fs.Arg(0))
	}
	fmt.Printf("✓ Mandat deleted: %s\n", fs.Arg(0))
	return nil
}

// AddBuyerCommand adds a buyer interested in a mandat.
func AddBuyerCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("add-buyer", flag.ExitOnError)
	name := fs.String("name", "", "Buyer name (required)")
	mandatID := fs.String("mandat", "", "Mandat ID (required)")
	phone := fs.String("phone", "", "Phone number")
	email := fs.String("email", "", "Email address")
	stage := fs.String("stage", "", "Initial stage (default LEAD)")
	_ = fs.Parse(args)

	if *name == "" || *mandatID == "" {
		return fmt.Errorf("--name and --mandat are required")
	}
	if _, ok := ws.Store.Mandats.Get(*mandatID); !ok {
		return fmt.Errorf("%w: %s", crm.ErrMandatNotFound, *mandatID)
	}
	b := models.Buyer{Name: *name, MandatID: *mandatID, Phone: *phone, Email: *email}
	if *stage != "" {
		s, err := models.ParseBuyerStage(*stage)
		if err != nil {
			return err
		}
		b.Stage = s
	}

	added, err := ws.Store.Buyers.Add(b)
	if err != nil {
		return fmt.Errorf("failed to create buyer: %w", err)
	}
	fmt.Printf("✓ Buyer created: %s (ID: %s)\n", added.Name, added.ID)
	return nil
}

// ListBuyersCommand lists buyers, optionally for one mandat.
func ListBuyersCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("list-buyers", flag.ExitOnError)
	mandatID := fs.String("mandat", "", "Only buyers of this mandat")
	stage := fs.String("stage", "", "Filter by stage")
	_ = fs.Parse(args)

	buyers := ws.Store.Buyers.All()
	if *mandatID != "" {
		buyers = ws.Store.Buyers.ByMandat(*mandatID)
	}
	if *stage != "" {
		want, err := models.ParseBuyerStage(*stage)
		if err != nil {
			return err
		}
		var kept []models.Buyer
		for _, b := range buyers {
			if b.Stage == want {
				kept = append(kept, b)
			}
		}
		buyers = kept
	}
	if len(buyers) == 0 {
		fmt.Println("No buyers found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tSTAGE\tMANDAT\tPHONE\tID")
	_, _ = fmt.Fprintln(w, "----\t-----\t------\t-----\t--")
	for _, b := range buyers {
		mandat := "-"
		if m, ok := ws.Store.Mandats.Get(b.MandatID); ok {
			mandat = m.Name
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", b.Name, b.Stage.Label(), mandat, dash(b.Phone), b.ID)
	}
	_ = w.Flush()

	fmt.Printf("\nTotal: %d buyer(s)\n", len(buyers))
	return nil
}

// MoveBuyerCommand moves a buyer to any stage.
func MoveBuyerCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("move-buyer", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: move-buyer <buyer-id> <stage>")
	}
	stage, err := models.ParseBuyerStage(fs.Arg(1))
	if err != nil {
		return err
	}
	b, err := ws.MoveBuyer(fs.Arg(0), stage)
	if err != nil {
		return err
	}
	fmt.Printf("✓ %s moved to %s\n", b.Name, b.Stage.Label())
	return nil
}
