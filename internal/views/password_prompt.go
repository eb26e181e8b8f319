package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rhystmorgan/veContacts/internal/utils"
)

// PasswordPromptModel is an overlay that collects the wallet password.
type PasswordPromptModel struct {
	input       textinput.Model
	visible     bool
	error       string
	title       string
	description string
}

type UnlockSubmittedMsg struct {
	Password string
}

type UnlockCancelledMsg struct{}

func NewPasswordPromptModel() *PasswordPromptModel {
	input := textinput.New()
	input.Prompt = "Password: "
	input.EchoMode = textinput.EchoPassword
	input.EchoCharacter = '*'
	input.CharLimit = 128
	input.PromptStyle = utils.Fg(utils.Colours.Blue)
	input.TextStyle = utils.Fg(utils.Colours.Text)

	return &PasswordPromptModel{input: input}
}

func (m *PasswordPromptModel) Show(title, description string) tea.Cmd {
	m.visible = true
	m.title = title
	m.description = description
	m.error = ""
	m.input.Reset()
	return m.input.Focus()
}

func (m *PasswordPromptModel) Hide() {
	m.visible = false
	m.error = ""
	m.input.Reset()
	m.input.Blur()
}

func (m *PasswordPromptModel) IsVisible() bool {
	return m.visible
}

func (m *PasswordPromptModel) Update(msg tea.Msg) tea.Cmd {
	if !m.visible {
		return nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			m.Hide()
			return func() tea.Msg { return UnlockCancelledMsg{} }

		case "enter":
			password := m.input.Value()
			if password == "" {
				m.error = "Password cannot be empty"
				return nil
			}
			m.Hide()
			return func() tea.Msg { return UnlockSubmittedMsg{Password: password} }

		case "ctrl+u":
			m.input.Reset()
			return nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *PasswordPromptModel) View() string {
	if !m.visible {
		return ""
	}

	overlayStyle := lipgloss.NewStyle().
		Width(60).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(utils.Colours.Blue)).
		Padding(1).
		Align(lipgloss.Center)

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Blue)).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Text)).
		Margin(1, 0)

	errorStyle := utils.ErrorStyle()

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Subtext0)).
		Italic(true)

	var content strings.Builder
	content.WriteString(titleStyle.Render(m.title))
	content.WriteString("\n")

	if m.description != "" {
		content.WriteString(descStyle.Render(m.description))
		content.WriteString("\n")
	}

	content.WriteString(m.input.View())
	content.WriteString("\n\n")

	if m.error != "" {
		content.WriteString(errorStyle.Render(m.error))
		content.WriteString("\n\n")
	}

	content.WriteString(helpStyle.Render("Enter: unlock • Esc: cancel • Ctrl+U: clear"))

	return overlayStyle.Render(content.String())
}
