// ABOUTME: Kanban board rendering and navigation
// ABOUTME: Moving a card applies the stage or phase rules of its pipeline
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/immo/models"
	"github.com/harperreed/immo/pipeline"
	"github.com/harperreed/immo/store"
	"github.com/harperreed/immo/viz"
)

var (
	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	activeColumnStyle = columnStyle.
				BorderForeground(lipgloss.Color("170"))

	columnTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("252"))

	cardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedCardStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("170"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))
)

type card struct {
	id       string
	title    string
	subtitle string
}

type column struct {
	name  string
	cards []card
}

func (m Model) columns() []column {
	query := store.Fold(m.search.Value())
	keep := func(c card) bool {
		return query == "" || strings.Contains(store.Fold(c.title+" "+c.subtitle), query)
	}
	s := m.ws.Store

	var cols []column
	switch m.board {
	case BoardSellers:
		for _, phase := range models.SellerPhases {
			col := column{name: phase.Label()}
			for _, l := range s.SellerLeads.All() {
				if l.EffectivePhase() != phase {
					continue
				}
				sub := l.Title
				if l.Region != "" {
					sub = strings.TrimSpace(sub + " · " + l.Region)
				}
				title := l.SellerName
				if l.Contacted {
					title = "✓ " + title
				}
				if c := (card{id: l.ID, title: title, subtitle: sub}); keep(c) {
					col.cards = append(col.cards, c)
				}
			}
			cols = append(cols, col)
		}
	case BoardMandats:
		for _, stage := range models.BuyerStages {
			col := column{name: stage.Label()}
			for _, mandat := range s.Mandats.ByStage(stage) {
				sub := viz.FormatMoney(mandat.Value)
				if mandat.Score != nil {
					sub += " · " + string(mandat.Score.Classification)
				}
				if c := (card{id: mandat.ID, title: mandat.Name, subtitle: sub}); keep(c) {
					col.cards = append(col.cards, c)
				}
			}
			cols = append(cols, col)
		}
	case BoardBuyers:
		for _, stage := range models.BuyerStages {
			col := column{name: stage.Label()}
			for _, b := range s.Buyers.Filter(func(b models.Buyer) bool { return b.Stage == stage }) {
				sub := ""
				if mandat, ok := s.Mandats.Get(b.MandatID); ok {
					sub = mandat.Name
				}
				if c := (card{id: b.ID, title: b.Name, subtitle: sub}); keep(c) {
					col.cards = append(col.cards, c)
				}
			}
			cols = append(cols, col)
		}
	}
	return cols
}

func (m Model) selected() (card, bool) {
	cols := m.columns()
	if m.column >= len(cols) || m.row >= len(cols[m.column].cards) {
		return card{}, false
	}
	return cols[m.column].cards[m.row], true
}

func (m Model) renderBoardView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("IMMO CRM"))
	s.WriteString("\n")
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	cols := m.columns()
	width := m.width/len(cols) - 4
	if width < 14 {
		width = 14
	}
	rendered := make([]string, 0, len(cols))
	for i, col := range cols {
		rendered = append(rendered, m.renderColumn(col, i == m.column, width))
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	s.WriteString("\n")

	if m.searching || m.search.Value() != "" {
		s.WriteString(m.search.View())
		s.WriteString("\n")
	}
	if m.message != "" {
		s.WriteString(messageStyle.Render(m.message))
		s.WriteString("\n")
	}
	s.WriteString(m.renderBoardHelp())
	return s.String()
}

func (m Model) renderTabs() string {
	var rendered []string
	for i, name := range boardNames {
		if Board(i) == m.board {
			rendered = append(rendered, tabActiveStyle.Render(name))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderColumn(col column, active bool, width int) string {
	var s strings.Builder
	s.WriteString(columnTitleStyle.Render(fmt.Sprintf("%s (%d)", col.name, len(col.cards))))
	for i, c := range col.cards {
		s.WriteString("\n")
		line := truncate(c.title, width)
		if active && i == m.row {
			s.WriteString(selectedCardStyle.Render(line))
		} else {
			s.WriteString(cardStyle.Render(line))
		}
		if c.subtitle != "" {
			s.WriteString("\n")
			s.WriteString(subtleStyle.Render(truncate(c.subtitle, width)))
		}
	}

	style := columnStyle
	if active {
		style = activeColumnStyle
	}
	return style.Width(width).Render(s.String())
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

func (m Model) renderBoardHelp() string {
	help := []string{
		"←/→ ↑/↓: Navigate",
		"H/L: Move card",
		"Tab: Switch board",
		"Enter: Details",
		"/: Search",
		"d: Delete",
	}
	if m.board == BoardSellers {
		help = append(help, "c: Contacted")
	}
	help = append(help, "g: Dashboard", "q: Quit")
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleBoardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cols := m.columns()
	switch msg.String() {
	case "left", "h":
		if m.column > 0 {
			m.column--
			m.row = 0
		}
	case "right", "l":
		if m.column < len(cols)-1 {
			m.column++
			m.row = 0
		}
	case "up", "k":
		if m.row > 0 {
			m.row--
		}
	case "down", "j":
		if m.row < len(cols[m.column].cards)-1 {
			m.row++
		}
	case "shift+left", "H":
		return m.moveCard(-1)
	case "shift+right", "L":
		return m.moveCard(1)
	case "tab":
		m.board = (m.board + 1) % Board(len(boardNames))
		m.column, m.row = 0, 0
		m.message = ""
	case "enter":
		if _, ok := m.selected(); ok {
			m.viewMode = ViewDetail
		}
	case "d":
		if _, ok := m.selected(); ok {
			m.viewMode = ViewConfirmDelete
		}
	case "c":
		return m.markContacted()
	case "g":
		m.viewMode = ViewDashboard
	case "/":
		m.searching = true
		m.search.Focus()
		return m, textinput.Blink
	case "esc":
		m.search.SetValue("")
		m.message = ""
	}
	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.searching = false
		m.search.Blur()
		if msg.String() == "esc" {
			m.search.SetValue("")
		}
		m.row = 0
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.row = 0
	return m, cmd
}

// moveCard moves the selected card delta columns to the left or right.
func (m Model) moveCard(delta int) (tea.Model, tea.Cmd) {
	c, ok := m.selected()
	if !ok {
		return m, nil
	}
	target := m.column + delta
	if target < 0 || target >= len(m.columns()) {
		return m, nil
	}

	var err error
	switch m.board {
	case BoardSellers:
		return m.moveLead(c, models.SellerPhases[target])
	case BoardMandats:
		_, err = m.ws.MoveMandat(c.id, models.BuyerStages[target])
	case BoardBuyers:
		_, err = m.ws.MoveBuyer(c.id, models.BuyerStages[target])
	}
	if err != nil {
		m.message = err.Error()
		return m, nil
	}
	m.message = fmt.Sprintf("%s → %s", c.title, m.columns()[target].name)
	m.follow(c.id, target)
	return m, nil
}

func (m Model) moveLead(c card, target models.SellerPhase) (tea.Model, tea.Cmd) {
	lead, ok := m.ws.Store.SellerLeads.Get(c.id)
	if !ok {
		m.message = "lead not found"
		return m, nil
	}
	decision, err := pipeline.DecidePhase(lead.Phase, target)
	if err != nil {
		m.message = err.Error()
		return m, nil
	}

	switch decision {
	case pipeline.Reject:
		m.message = fmt.Sprintf("%s reste en %s: un client ne revient pas en arrière", lead.SellerName, lead.EffectivePhase().Label())
		return m, nil
	case pipeline.RequireMandat:
		draft, err := m.ws.MandatDraftFor(lead.ID)
		if err != nil {
			m.message = err.Error()
			return m, nil
		}
		m.pendingLead, m.pendingDraft = lead.ID, draft
		m.viewMode = ViewConfirmClient
		return m, nil
	}

	if _, err := m.ws.RequestPhaseTransition(lead.ID, target, nil); err != nil {
		m.message = err.Error()
		return m, nil
	}
	m.message = fmt.Sprintf("%s → %s", lead.SellerName, target.Label())
	m.follow(lead.ID, indexOfPhase(target))
	return m, nil
}

func (m Model) markContacted() (tea.Model, tea.Cmd) {
	if m.board != BoardSellers {
		return m, nil
	}
	c, ok := m.selected()
	if !ok {
		return m, nil
	}
	lead, err := m.ws.MarkContacted(c.id)
	if err != nil {
		m.message = err.Error()
		return m, nil
	}
	m.message = fmt.Sprintf("%s marqué contacté", lead.SellerName)
	return m, nil
}

// follow puts the cursor on card id in column col.
func (m *Model) follow(id string, col int) {
	m.column, m.row = col, 0
	for i, c := range m.columns()[col].cards {
		if c.id == id {
			m.row = i
			return
		}
	}
}

func indexOfPhase(p models.SellerPhase) int {
	for i, phase := range models.SellerPhases {
		if phase == p {
			return i
		}
	}
	return 0
}
