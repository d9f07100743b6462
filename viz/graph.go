// ABOUTME: GraphViz generation for the goal funnel and the lead/mandat/buyer pipeline
// ABOUTME: Produces DOT source that can be piped into dot or xdot
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/harperreed/immo/crm"
	"github.com/harperreed/immo/goals"
	"github.com/harperreed/immo/models"
)

type GraphGenerator struct {
	ws *crm.Workspace
}

func NewGraphGenerator(ws *crm.Workspace) *GraphGenerator {
	return &GraphGenerator{ws: ws}
}

// Graph is rendered DOT source with its size.
type Graph struct {
	DOT   string
	Nodes int
	Edges int
}

// builder counts what it adds to the underlying graph.
type builder struct {
	g     *cgraph.Graph
	nodes int
	edges int
}

func (b *builder) node(name string) (*cgraph.Node, error) {
	n, err := b.g.CreateNodeByName(name)
	if err != nil {
		return nil, fmt.Errorf("failed to create node %s: %w", name, err)
	}
	b.nodes++
	return n, nil
}

func (b *builder) edge(name string, from, to *cgraph.Node) (*cgraph.Edge, error) {
	e, err := b.g.CreateEdgeByName(name, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to create edge %s: %w", name, err)
	}
	b.edges++
	return e, nil
}

// render builds a graph with fn and returns its DOT source.
func render(label string, fn func(*builder) error) (*Graph, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create graphviz: %w", err)
	}
	defer func() {
		if err := gv.Close(); err != nil {
			log.Warn("failed to close graphviz", "err", err)
		}
	}()

	graph, err := gv.Graph()
	if err != nil {
		return nil, fmt.Errorf("failed to create graph: %w", err)
	}
	defer func() { _ = graph.Close() }()

	graph.SetLabel(label)
	graph.SetRankDir(cgraph.LRRank)
	b := &builder{g: graph}
	if err := fn(b); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return nil, fmt.Errorf("failed to render graph: %w", err)
	}
	return &Graph{DOT: buf.String(), Nodes: b.nodes, Edges: b.edges}, nil
}

// FunnelStep is one stage of the monthly reverse funnel.
type FunnelStep struct {
	Name    string
	Target  int
	Current int
}

// FunnelSteps lists a month's funnel from contacts down to transactions.
// realized may be the zero value when no activity is tracked.
func FunnelSteps(plan, realized models.MonthlyGoal) []FunnelStep {
	return []FunnelStep{
		{"Contacts", plan.Contacts, realized.Contacts},
		{"Prospects", plan.Prospects, realized.Prospects},
		{"Nouveaux mandats", plan.NewMandates, realized.NewMandates},
		{"Biens actifs", plan.ActiveProperties, realized.ActiveProperties},
		{"Demandes acquéreurs", plan.NewBuyerRequests, realized.NewBuyerRequests},
		{"Offres", plan.Offers, realized.Offers},
		{"Offres acceptées", plan.AcceptedOffers, realized.AcceptedOffers},
		{"Transactions", plan.Transactions, realized.Transactions},
	}
}

// GenerateFunnelGraph draws the funnel of one month of the current goal.
func (g *GraphGenerator) GenerateFunnelGraph(month int) (*Graph, error) {
	goal, ok := g.ws.Store.Goals.Current()
	if !ok {
		return nil, crm.ErrNoGoal
	}
	plan, ok := goals.ForMonth(&goal, month)
	if !ok {
		return nil, fmt.Errorf("month %d not in plan (want 1-12)", month)
	}
	realized := g.ws.Realized(goal.Year)[month-1]

	label := fmt.Sprintf("Objectifs %02d/%d", month, goal.Year)
	return render(label, func(b *builder) error {
		var prev *cgraph.Node
		for i, step := range FunnelSteps(plan, realized) {
			node, err := b.node(fmt.Sprintf("step_%d", i))
			if err != nil {
				return err
			}
			p := goals.Progress(step.Name, float64(step.Current), float64(step.Target))
			node.SetLabel(fmt.Sprintf("%s\n%d / %d", step.Name, step.Current, step.Target))
			node.SetShape("box")
			node.SetStyle("filled")
			node.SetFillColor(statusColor(p.Status))
			if prev != nil {
				if _, err := b.edge(fmt.Sprintf("funnel_%d", i), prev, node); err != nil {
					return err
				}
			}
			prev = node
		}
		return nil
	})
}

func statusColor(s goals.Status) string {
	switch s {
	case goals.StatusOnTrack:
		return "palegreen"
	case goals.StatusAtRisk:
		return "khaki"
	}
	return "lightpink"
}

// GeneratePipelineGraph links seller leads to the mandats of the same contact,
// and mandats to their buyers and annonce.
func (g *GraphGenerator) GeneratePipelineGraph() (*Graph, error) {
	s := g.ws.Store
	return render("Pipeline", func(b *builder) error {
		mandatNodes := make(map[string]*cgraph.Node)
		byContact := make(map[string][]*cgraph.Node)
		for _, m := range s.Mandats.All() {
			node, err := b.node("mandat_" + m.ID)
			if err != nil {
				return err
			}
			node.SetLabel(fmt.Sprintf("%s\n%s\n%s", m.Name, m.Stage.Label(), FormatMoney(m.Value)))
			node.SetShape("box")
			node.SetStyle("filled")
			node.SetFillColor("lightblue")
			mandatNodes[m.ID] = node
			if m.ContactID != "" {
				byContact[m.ContactID] = append(byContact[m.ContactID], node)
			}
		}

		for _, l := range s.SellerLeads.All() {
			node, err := b.node("lead_" + l.ID)
			if err != nil {
				return err
			}
			node.SetLabel(fmt.Sprintf("%s\n%s", l.SellerName, l.EffectivePhase().Label()))
			node.SetShape("ellipse")
			node.SetStyle("filled")
			node.SetFillColor("lightyellow")
			for i, target := range byContact[l.ContactID] {
				edge, err := b.edge(fmt.Sprintf("signed_%s_%d", l.ID, i), node, target)
				if err != nil {
					return err
				}
				edge.SetLabel("mandat")
			}
		}

		for _, buyer := range s.Buyers.All() {
			node, err := b.node("buyer_" + buyer.ID)
			if err != nil {
				return err
			}
			node.SetLabel(fmt.Sprintf("%s\n%s", buyer.Name, buyer.Stage.Label()))
			node.SetShape("ellipse")
			node.SetStyle("filled")
			node.SetFillColor("lightgreen")
			if m, ok := mandatNodes[buyer.MandatID]; ok {
				edge, err := b.edge("interest_"+buyer.ID, m, node)
				if err != nil {
					return err
				}
				edge.SetStyle("dashed")
			}
		}

		for _, a := range s.Annonces.All() {
			m, ok := mandatNodes[a.MandatID]
			if !ok {
				continue
			}
			node, err := b.node("annonce_" + a.ID)
			if err != nil {
				return err
			}
			node.SetLabel(a.Title)
			node.SetShape("note")
			if _, err := b.edge("listed_"+a.ID, m, node); err != nil {
				return err
			}
		}
		return nil
	})
}
