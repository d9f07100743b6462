// ABOUTME: Detail view for the selected kanban card
// ABOUTME: Shows every field of a lead, mandat or buyer with its linked records
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/immo/viz"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(20)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

func (m Model) renderDetailView() string {
	var s strings.Builder

	c, ok := m.selected()
	if !ok {
		return "Nothing selected"
	}

	s.WriteString(titleStyle.Render(strings.ToUpper(boardNames[m.board])))
	s.WriteString("\n\n")

	switch m.board {
	case BoardSellers:
		s.WriteString(m.renderLeadDetail(c.id))
	case BoardMandats:
		s.WriteString(m.renderMandatDetail(c.id))
	case BoardBuyers:
		s.WriteString(m.renderBuyerDetail(c.id))
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("Esc: Back • q: Quit"))
	return s.String()
}

func (m Model) renderLeadDetail(id string) string {
	lead, ok := m.ws.Store.SellerLeads.Get(id)
	if !ok {
		return "Lead not found"
	}

	var s strings.Builder
	s.WriteString(m.renderField("Vendeur", lead.SellerName))
	s.WriteString(m.renderField("Annonce", lead.Title))
	s.WriteString(m.renderField("Phase", lead.EffectivePhase().Label()))
	s.WriteString(m.renderField("Téléphone", lead.Phone))
	s.WriteString(m.renderField("Région", lead.Region))
	s.WriteString(m.renderField("Type de bien", string(lead.PropertyType)))
	s.WriteString(m.renderField("Source", lead.Source))
	s.WriteString(m.renderField("Date annonce", lead.ListingDate))
	s.WriteString(m.renderField("Contacté", yesNo(lead.Contacted)))
	if contact, ok := m.ws.Store.Contacts.Get(lead.ContactID); ok {
		s.WriteString(m.renderField("Contact", contact.FullName()))
	}
	s.WriteString(m.renderField("Notes", lead.Notes))
	return s.String()
}

func (m Model) renderMandatDetail(id string) string {
	mandat, ok := m.ws.Store.Mandats.Get(id)
	if !ok {
		return "Mandat not found"
	}

	var s strings.Builder
	s.WriteString(m.renderField("Nom", mandat.Name))
	s.WriteString(m.renderField("Type", string(mandat.Type)))
	s.WriteString(m.renderField("Étape", mandat.Stage.Label()))
	s.WriteString(m.renderField("Valeur", viz.FormatMoney(mandat.Value)))
	s.WriteString(m.renderField("Date", mandat.Date))
	if contact, ok := m.ws.Store.Contacts.Get(mandat.ContactID); ok {
		s.WriteString(m.renderField("Vendeur", contact.FullName()))
	}
	if mandat.Score != nil {
		s.WriteString(m.renderField("Score", fmt.Sprintf("%d/100 %s", mandat.Score.TotalScore, mandat.Score.Classification)))
	}
	if annonce, ok := m.ws.Store.Annonces.ByMandat(mandat.ID); ok {
		s.WriteString(m.renderField("Annonce", annonce.Title))
	}
	s.WriteString(m.renderField("Notes", mandat.Notes))

	buyers := m.ws.Store.Buyers.ByMandat(mandat.ID)
	if len(buyers) > 0 {
		s.WriteString("\n")
		s.WriteString(columnTitleStyle.Render(fmt.Sprintf("Acquéreurs (%d)", len(buyers))))
		s.WriteString("\n")
		for _, b := range buyers {
			s.WriteString(fmt.Sprintf("  • %s (%s)\n", b.Name, b.Stage.Label()))
		}
	}
	return s.String()
}

func (m Model) renderBuyerDetail(id string) string {
	buyer, ok := m.ws.Store.Buyers.Get(id)
	if !ok {
		return "Buyer not found"
	}

	var s strings.Builder
	s.WriteString(m.renderField("Nom", buyer.Name))
	s.WriteString(m.renderField("Étape", buyer.Stage.Label()))
	s.WriteString(m.renderField("Téléphone", buyer.Phone))
	s.WriteString(m.renderField("Email", buyer.Email))
	if mandat, ok := m.ws.Store.Mandats.Get(buyer.MandatID); ok {
		s.WriteString(m.renderField("Mandat", mandat.Name))
	}
	return s.String()
}

func (m Model) renderField(label, value string) string {
	if value == "" {
		return ""
	}
	return fieldLabelStyle.Render(label+":") + " " + fieldValueStyle.Render(value) + "\n"
}

func yesNo(b bool) string {
	if b {
		return "oui"
	}
	return "non"
}
