package views

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rhystmorgan/veContacts/internal/utils"
	"rhystmorgan/veContacts/internal/wallet"
)

type ErrorMsg struct {
	Err error
}

// WalletSession tracks user activity for the wallet's inactivity lock.
type WalletSession interface {
	RecordActivity()
	TimeRemaining() time.Duration
	Status() wallet.SessionStatus
}

// AppModel frames the contact book with a header and handles global keys.
type AppModel struct {
	contacts *ContactsModel
	session  WalletSession
	network  string
	width    int
	height   int
	err      error
}

func NewAppModel(contacts *ContactsModel, network string) *AppModel {
	return &AppModel{
		contacts: contacts,
		network:  network,
	}
}

func (m *AppModel) SetSession(session WalletSession) {
	m.session = session
}

func (m *AppModel) Init() tea.Cmd {
	return m.contacts.Init()
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Leave room for the header
		msg.Height -= 2
		_, cmd := m.contacts.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.session != nil {
			m.session.RecordActivity()
		}

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	_, cmd := m.contacts.Update(msg)
	return m, cmd
}

func (m *AppModel) View() string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(utils.Colours.Text)).
		Background(lipgloss.Color(utils.Colours.Surface0)).
		Padding(0, 1).
		Width(m.width)

	networkStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Green))
	if m.network == "testnet" {
		networkStyle = networkStyle.Foreground(lipgloss.Color(utils.Colours.Peach))
	}

	header := "veterm contacts " + networkStyle.Render("● "+m.network)
	if m.session != nil {
		header += " " + m.renderSessionStatus()
	}

	var content strings.Builder
	content.WriteString(headerStyle.Render(header))
	content.WriteString("\n")

	if m.err != nil {
		errorStyle := utils.ErrorStyle().Padding(0, 1)
		content.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		content.WriteString("\n")
	}

	content.WriteString(m.contacts.View())
	return content.String()
}

func (m *AppModel) renderSessionStatus() string {
	switch m.session.Status() {
	case wallet.SessionStatusLocked:
		return utils.Fg(utils.Colours.Overlay1).Render("wallet locked")
	case wallet.SessionStatusExpiring:
		return utils.Fg(utils.Colours.Yellow).Render(fmt.Sprintf("wallet locks in %ds", int(m.session.TimeRemaining().Seconds())))
	default:
		return utils.Fg(utils.Colours.Green).Render("wallet unlocked")
	}
}
