// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Kanban boards for seller leads, mandats and buyers with phase-rule aware moves
package tui

import (
	"errors"
	"os"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/harperreed/immo/crm"
	"github.com/harperreed/immo/models"
)

var ErrNotTerminal = errors.New("the board needs an interactive terminal")

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewBoard ViewMode = iota
	ViewDetail
	ViewConfirmClient
	ViewConfirmDelete
	ViewDashboard
)

// Board selects which pipeline is shown
type Board int

const (
	BoardSellers Board = iota
	BoardMandats
	BoardBuyers
)

var boardNames = []string{"Vendeurs", "Mandats", "Acquéreurs"}

// Model is the main bubbletea model
type Model struct {
	ws       *crm.Workspace
	viewMode ViewMode
	board    Board

	column int
	row    int

	searching bool
	search    textinput.Model

	// Pending CLIENT promotion
	pendingLead  string
	pendingDraft models.Mandat

	message string
	width   int
	height  int
}

// NewModel creates a new TUI model
func NewModel(ws *crm.Workspace) Model {
	search := textinput.New()
	search.Placeholder = "rechercher"
	search.Prompt = "/ "
	search.CharLimit = 64

	return Model{
		ws:       ws,
		viewMode: ViewBoard,
		board:    BoardSellers,
		search:   search,
		width:    120,
		height:   30,
	}
}

// Run starts the full-screen board on the current terminal.
func Run(ws *crm.Workspace) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return ErrNotTerminal
	}
	_, err := tea.NewProgram(NewModel(ws), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewBoard:
		return m.renderBoardView()
	case ViewDetail:
		return m.renderDetailView()
	case ViewConfirmClient:
		return m.renderConfirmClientView()
	case ViewConfirmDelete:
		return m.renderConfirmDeleteView()
	case ViewDashboard:
		return m.renderDashboardView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKeys(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}

	switch m.viewMode {
	case ViewBoard:
		return m.handleBoardKeys(msg)
	case ViewDetail, ViewDashboard:
		if msg.String() == "esc" || msg.String() == "enter" {
			m.viewMode = ViewBoard
		}
		return m, nil
	case ViewConfirmClient:
		return m.handleConfirmClientKeys(msg)
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	}

	return m, nil
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)
