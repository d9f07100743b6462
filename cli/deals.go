// ABOUTME: Deal and pipeline stage CLI commands
// ABOUTME: Deals live on a BUYER or SELLER pipeline and move between its stages
package cli

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/harperreed/immo/crm"
	"github.com/harperreed/immo/models"
	"github.com/harperreed/immo/viz"
)

// AddDealCommand adds a deal; without --stage it lands on the first stage of its pipeline.
func AddDealCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("add-deal", flag.ExitOnError)
	title := fs.String("title", "", "Deal title (required)")
	kind := fs.String("type", "SELLER", "Pipeline: BUYER or SELLER")
	contactID := fs.String("contact", "", "Contact ID")
	value := fs.Float64("value", 0, "Deal value")
	stageID := fs.String("stage", "", "Stage ID (default: first stage)")
	_ = fs.Parse(args)

	if *title == "" {
		return fmt.Errorf("--title is required")
	}
	pipelineType, err := models.ParsePipelineType(*kind)
	if err != nil {
		return err
	}

	deal, err := ws.Store.Deals.Add(models.Deal{
		Title:     *title,
		Type:      pipelineType,
		ContactID: *contactID,
		Value:     *value,
		StageID:   *stageID,
	})
	if err != nil {
		return fmt.Errorf("failed to create deal: %w", err)
	}

	fmt.Printf("✓ Deal created: %s (ID: %s)\n", deal.Title, deal.ID)
	fmt.Printf("  Pipeline: %s\n", deal.Type)
	fmt.Printf("  Value: %s\n", viz.FormatMoney(deal.Value))
	fmt.Printf("  Stage: %s\n", stageName(ws, deal.StageID))
	return nil
}

func stageName(ws *crm.Workspace, id string) string {
	if st, ok := ws.Store.Stages.Get(id); ok {
		return st.Name
	}
	return "-"
}

// ListDealsCommand lists deals.
func ListDealsCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("list-deals", flag.ExitOnError)
	kind := fs.String("type", "", "Filter by pipeline: BUYER or SELLER")
	stageID := fs.String("stage", "", "Filter by stage ID")
	_ = fs.Parse(args)

	deals := ws.Store.Deals.All()
	if *kind != "" {
		pipelineType, err := models.ParsePipelineType(*kind)
		if err != nil {
			return err
		}
		deals = ws.Store.Deals.ByType(pipelineType)
	}
	if *stageID != "" {
		var kept []models.Deal
		for _, d := range deals {
			if d.StageID == *stageID {
				kept = append(kept, d)
			}
		}
		deals = kept
	}
	if len(deals) == 0 {
		fmt.Println("No deals found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TITLE\tPIPELINE\tSTAGE\tVALUE\tID")
	_, _ = fmt.Fprintln(w, "-----\t--------\t-----\t-----\t--")
	var total float64
	for _, d := range deals {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			d.Title, d.Type, stageName(ws, d.StageID), viz.FormatMoney(d.Value), d.ID)
		total += d.Value
	}
	_ = w.Flush()

	fmt.Printf("\nTotal: %d deal(s), %s\n", len(deals), viz.FormatMoney(total))
	return nil
}

// MoveDealCommand moves a deal to another stage of the same pipeline.
func MoveDealCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("move-deal", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: move-deal <deal-id> <stage-id>")
	}
	deal, err := ws.MoveDeal(fs.Arg(0), fs.Arg(1))
	if err != nil {
		return err
	}
	fmt.Printf("✓ %s moved to %s\n", deal.Title, stageName(ws, deal.StageID))
	return nil
}

// ScoreDealCommand scores the seller behind a deal.
func ScoreDealCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("score-deal", flag.ExitOnError)
	answers := scoreFlags(fs)
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("deal ID is required")
	}
	a, err := answers()
	if err != nil {
		return err
	}
	deal, err := ws.ScoreDeal(fs.Arg(0), a)
	if err != nil {
		return err
	}
	fmt.Printf("✓ %s scored\n", deal.Title)
	printScore(*deal.Score)
	return nil
}

// DeleteDealCommand deletes a deal.
func DeleteDealCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("delete-deal", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("deal ID is required")
	}
	found, err := ws.Store.Deals.Delete(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("failed to delete deal: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: %s", crm.ErrDealNotFound, fs.Arg(0))
	}
	fmt.Printf("✓ Deal deleted: %s\n", fs.Arg(0))
	return nil
}

// ListStagesCommand prints the stages of both pipelines in order.
func ListStagesCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("list-stages", flag.ExitOnError)
	_ = fs.Parse(args)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PIPELINE\tORDER\tNAME\tDEALS\tID")
	_, _ = fmt.Fprintln(w, "--------\t-----\t----\t-----\t--")
	for _, kind := range []models.PipelineType{models.PipelineBuyer, models.PipelineSeller} {
		for _, st := range ws.Store.Stages.ByType(kind) {
			_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%s\n",
				kind, st.Order, st.Name, len(ws.Store.Deals.ByStage(st.ID)), st.ID)
		}
	}
	return w.Flush()
}
