// ABOUTME: Confirmation dialogs for CLIENT promotion and deletion
// ABOUTME: A declined promotion leaves the lead and the mandats untouched
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/immo/models"
	"github.com/harperreed/immo/viz"
)

var (
	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("170")).
			Padding(1, 2).
			Width(64)

	deleteBoxStyle = confirmBoxStyle.
			BorderForeground(lipgloss.Color("9"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	confirmButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("170")).
				Padding(0, 2).
				MarginRight(2)

	deleteButtonStyle = confirmButtonStyle.
				Background(lipgloss.Color("9"))

	cancelButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("8")).
				Padding(0, 2)
)

func (m Model) renderConfirmClientView() string {
	d := m.pendingDraft
	var s strings.Builder
	s.WriteString(titleStyle.Render("PASSAGE EN CLIENT"))
	s.WriteString("\nCe lead devient client. Le mandat suivant sera créé:\n\n")
	s.WriteString(m.renderField("Nom", d.Name))
	s.WriteString(m.renderField("Type", string(d.Type)))
	s.WriteString(m.renderField("Étape", d.Stage.Label()))
	s.WriteString(m.renderField("Valeur", viz.FormatMoney(d.Value)))
	s.WriteString(m.renderField("Date", d.Date))
	s.WriteString(m.renderField("Notes", d.Notes))
	s.WriteString("\n")
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Left,
		confirmButtonStyle.Render("Créer (y)"),
		cancelButtonStyle.Render("Annuler (n/esc)"),
	))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, confirmBoxStyle.Render(s.String()))
}

func (m Model) handleConfirmClientKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "o", "O":
		draft := m.pendingDraft
		out, err := m.ws.RequestPhaseTransition(m.pendingLead, models.PhaseClient, func(models.Mandat) (models.Mandat, bool) {
			return draft, true
		})
		switch {
		case err != nil:
			m.message = err.Error()
		case out.Mandat != nil:
			m.message = fmt.Sprintf("%s est client, mandat %q créé", out.Lead.SellerName, out.Mandat.Name)
			m.follow(out.Lead.ID, indexOfPhase(models.PhaseClient))
		}
		m.clearPending()
	case "n", "N", "esc":
		m.message = "passage en client annulé"
		m.clearPending()
	}
	return m, nil
}

func (m *Model) clearPending() {
	m.pendingLead = ""
	m.pendingDraft = models.Mandat{}
	m.viewMode = ViewBoard
}

func (m Model) renderConfirmDeleteView() string {
	c, ok := m.selected()
	if !ok {
		return "Nothing selected"
	}

	var s strings.Builder
	s.WriteString(warningStyle.Render("⚠  SUPPRESSION  ⚠"))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("Supprimer %s ?\n", c.title))
	s.WriteString("\nCette action est définitive.\n\n")
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Left,
		deleteButtonStyle.Render("Supprimer (y)"),
		cancelButtonStyle.Render("Annuler (n/esc)"),
	))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, deleteBoxStyle.Render(s.String()))
}

func (m Model) handleConfirmDeleteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		c, ok := m.selected()
		if ok {
			if err := m.deleteCard(c.id); err != nil {
				m.message = err.Error()
			} else {
				m.message = fmt.Sprintf("%s supprimé", c.title)
				if m.row > 0 {
					m.row--
				}
			}
		}
		m.viewMode = ViewBoard
	case "n", "N", "esc":
		m.viewMode = ViewBoard
	}
	return m, nil
}

func (m Model) deleteCard(id string) error {
	s := m.ws.Store
	var err error
	switch m.board {
	case BoardSellers:
		_, err = s.SellerLeads.Delete(id)
	case BoardMandats:
		_, err = s.Mandats.Delete(id)
	case BoardBuyers:
		_, err = s.Buyers.Delete(id)
	}
	return err
}
