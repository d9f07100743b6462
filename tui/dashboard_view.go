// ABOUTME: Dashboard view for TUI
// ABOUTME: Shows the text dashboard with goal progress when a goal is set
package tui

import (
	"strings"

	"github.com/harperreed/immo/viz"
)

func (m Model) renderDashboardView() string {
	var s strings.Builder
	kpis, _ := m.ws.GoalProgress()
	s.WriteString(viz.RenderDashboard(m.ws.Dashboard(), kpis))
	s.WriteString(helpStyle.Render("Esc: Back • q: Quit"))
	return s.String()
}
