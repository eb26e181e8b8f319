package views

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rhystmorgan/veContacts/internal/contacttable"
	"rhystmorgan/veContacts/internal/storage"
	"rhystmorgan/veContacts/internal/utils"
	"rhystmorgan/veContacts/internal/validation"
)

type ContactView int

const (
	ContactViewList ContactView = iota
	ContactViewCreate
	ContactViewEdit
	ContactViewDeleteConfirm
)

// WalletLock tells the view whether to ask for the wallet password before generating an address.
type WalletLock interface {
	IsLocked() bool
}

// StoreChangedMsg carries one change made by another writer to the contact store.
type StoreChangedMsg struct {
	Event storage.ChangeEvent
}

type StoreClosedMsg struct{}

// waitForChange blocks on the subscription; Update re-arms it after every event.
func waitForChange(sub *storage.Subscription) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-sub.Events()
		if !ok {
			return StoreClosedMsg{}
		}
		return StoreChangedMsg{Event: ev}
	}
}

var columnWidths = []int{20, 44, 24, 24}

const typeColumnWidth = 10

type ContactForm struct {
	// Indexed by table column.
	inputs       []textinput.Model
	editable     []bool
	currentField int
	error        string
}

type ContactsModel struct {
	contacts *contacttable.Model
	sub      *storage.Subscription
	wallet   WalletLock
	log      *slog.Logger

	grid        table.Model
	currentView ContactView
	form        ContactForm
	unlock      *PasswordPromptModel

	// The contact being edited or deleted. Rows shift under backend updates.
	targetAddress string

	// Answer to the last unlock prompt, handed to the keyring once by PendingPassword.
	pendingPassword string
	unlockAnswered  bool
	unlockAccepted  bool

	defaultAddress string
	lastChange     time.Time
	stale          bool
	selectAfter    string
	successMessage string
	error          error

	width          int
	height         int
	removeListener func()
}

// NewContactsModel builds the contact book view. sub and wallet may be nil.
func NewContactsModel(contacts *contacttable.Model, sub *storage.Subscription, wallet WalletLock, logger *slog.Logger) *ContactsModel {
	if logger == nil {
		logger = slog.Default()
	}

	m := &ContactsModel{
		contacts:       contacts,
		sub:            sub,
		wallet:         wallet,
		log:            logger.WithGroup("view"),
		unlock:         NewPasswordPromptModel(),
		defaultAddress: contacts.DefaultAddress(),
	}

	m.grid = table.New(
		table.WithColumns(m.columns()),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(utils.Colours.Surface1)).
		BorderBottom(true).
		Bold(true).
		Foreground(lipgloss.Color(utils.Colours.Blue))
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color(utils.Colours.Base)).
		Background(lipgloss.Color(utils.Colours.Lavender)).
		Bold(false)
	m.grid.SetStyles(styles)

	m.removeListener = contacts.AddListener(m.onTableEvent)
	m.syncRows()
	return m
}

func (m *ContactsModel) columns() []table.Column {
	cols := make([]table.Column, 0, m.contacts.ColumnCount()+1)
	for col := 0; col < m.contacts.ColumnCount(); col++ {
		width := 20
		if col < len(columnWidths) {
			width = columnWidths[col]
		}
		cols = append(cols, table.Column{Title: m.contacts.HeaderData(col), Width: width})
	}
	return append(cols, table.Column{Title: "Type", Width: typeColumnWidth})
}

func (m *ContactsModel) onTableEvent(ev contacttable.Event) {
	m.stale = true
	if ev.Kind == contacttable.EventDefaultAddressChanged {
		m.defaultAddress = ev.Address
	}
}

// PendingPassword answers the keyring's password prompt with what the user typed.
// The answer is consumed by the first call.
func (m *ContactsModel) PendingPassword() (string, bool) {
	if !m.unlockAnswered {
		return "", false
	}
	password, ok := m.pendingPassword, m.unlockAccepted
	m.pendingPassword = ""
	m.unlockAnswered = false
	m.unlockAccepted = false
	return password, ok
}

// Close detaches the view from the table and the store.
func (m *ContactsModel) Close() {
	if m.removeListener != nil {
		m.removeListener()
	}
	if m.sub != nil {
		m.sub.Close()
	}
}

func (m *ContactsModel) Init() tea.Cmd {
	if m.sub == nil {
		return nil
	}
	return waitForChange(m.sub)
}

func (m *ContactsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.grid.SetWidth(msg.Width)
		if h := msg.Height - 6; h > 3 {
			m.grid.SetHeight(h)
		}

	case StoreChangedMsg:
		m.contacts.ApplyChange(msg.Event)
		m.lastChange = msg.Event.Time
		cmd = waitForChange(m.sub)

	case StoreClosedMsg:
		m.log.Info("contact store subscription closed")

	case UnlockSubmittedMsg:
		m.pendingPassword = msg.Password
		m.unlockAnswered = true
		m.unlockAccepted = true
		cmd = m.submitCreateForm()

	case UnlockCancelledMsg:
		m.unlockAnswered = true
		m.unlockAccepted = false
		cmd = m.submitCreateForm()

	case ErrorMsg:
		m.error = msg.Err

	case tea.KeyMsg:
		if m.unlock.IsVisible() {
			cmd = m.unlock.Update(msg)
			break
		}

		switch m.currentView {
		case ContactViewList:
			cmd = m.updateListView(msg)
		case ContactViewCreate, ContactViewEdit:
			cmd = m.updateFormView(msg)
		case ContactViewDeleteConfirm:
			cmd = m.updateDeleteConfirmView(msg)
		}

	default:
		// Cursor blink and similar input housekeeping
		if m.unlock.IsVisible() {
			cmd = m.unlock.Update(msg)
		} else if m.currentView == ContactViewCreate || m.currentView == ContactViewEdit {
			cmd = m.form.updateCurrent(msg)
		}
	}

	if m.stale {
		m.syncRows()
	}
	return m, cmd
}

func (m *ContactsModel) updateListView(msg tea.KeyMsg) tea.Cmd {
	m.clearMessages()

	switch msg.String() {
	case "q":
		return tea.Quit

	case "a", "ctrl+n":
		m.form = newContactForm(nil)
		m.currentView = ContactViewCreate
		return m.form.focusCurrentField()

	case "e", "enter":
		row := m.grid.Cursor()
		if row < 0 || row >= m.contacts.RowCount() {
			return nil
		}
		m.form = m.populateEditForm(row)
		m.targetAddress, _ = m.contacts.Data(row, contacttable.ColumnAddress)
		m.currentView = ContactViewEdit
		return m.form.focusCurrentField()

	case "d", "delete":
		row := m.grid.Cursor()
		if row < 0 || row >= m.contacts.RowCount() {
			return nil
		}
		m.targetAddress, _ = m.contacts.Data(row, contacttable.ColumnAddress)
		m.currentView = ContactViewDeleteConfirm

	case "r":
		if err := m.contacts.RefreshContactTable(); err != nil {
			m.error = err
			return nil
		}
		m.successMessage = fmt.Sprintf("Reloaded %s", utils.FormatCount(m.contacts.RowCount(), "contact", "contacts"))

	case "*":
		row := m.grid.Cursor()
		address, ok := m.contacts.Data(row, contacttable.ColumnAddress)
		if !ok {
			return nil
		}
		if !m.contacts.SetDefaultAddress(address) {
			m.error = errors.New("only your own receiving addresses can be the default")
			return nil
		}
		label, _ := m.contacts.LabelForAddress(address)
		m.successMessage = fmt.Sprintf("Default address is now %s", utils.FormatAddressWithName(address, label))

	default:
		var cmd tea.Cmd
		m.grid, cmd = m.grid.Update(msg)
		return cmd
	}

	return nil
}

func (m *ContactsModel) updateFormView(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.currentView = ContactViewList
		m.targetAddress = ""
		return nil

	case "tab", "down":
		m.form.nextField()
		return m.form.focusCurrentField()

	case "shift+tab", "up":
		m.form.prevField()
		return m.form.focusCurrentField()

	case "enter":
		if m.currentView == ContactViewCreate {
			return m.submitCreateForm()
		}
		return m.submitEditForm()
	}

	return m.form.updateCurrent(msg)
}

func (m *ContactsModel) updateDeleteConfirmView(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		row := m.contacts.LookupAddress(m.targetAddress)
		switch {
		case row < 0:
			m.error = errors.New("contact was removed by another writer")
		case !m.contacts.RemoveRows(row, 1):
			m.error = fmt.Errorf("failed to delete %s", utils.FormatAddress(m.targetAddress, 6, 4))
		default:
			m.successMessage = "Contact deleted"
		}
		m.targetAddress = ""
		m.currentView = ContactViewList

	case "n", "N", "esc":
		m.targetAddress = ""
		m.currentView = ContactViewList
	}
	return nil
}

func (m *ContactsModel) submitCreateForm() tea.Cmd {
	label := m.form.value(contacttable.ColumnLabel)
	// Checksummed form, so case variants of one address are duplicates.
	address := validation.Normalize(strings.TrimSpace(m.form.value(contacttable.ColumnAddress)))
	email := m.form.value(contacttable.ColumnEmail)
	url := m.form.value(contacttable.ColumnURL)

	// Generating an address needs the wallet; ask for the password first.
	if address == "" && m.wallet != nil && m.wallet.IsLocked() && !m.unlockAnswered {
		return m.unlock.Show("Unlock Wallet", "A new receiving address will be derived from your wallet.")
	}

	added := m.contacts.AddRow(label, address, email, url)

	// Drop an answer the keyring did not ask for.
	m.pendingPassword = ""
	m.unlockAnswered = false
	m.unlockAccepted = false

	if added == "" {
		m.form.error = m.contacts.EditStatus().Message()
		return nil
	}

	m.successMessage = fmt.Sprintf("Contact %s added", utils.FormatAddressWithName(added, strings.TrimSpace(label)))
	m.selectAfter = added
	m.currentView = ContactViewList
	return nil
}

func (m *ContactsModel) submitEditForm() tea.Cmd {
	row := m.contacts.LookupAddress(m.targetAddress)
	if row < 0 {
		m.form.error = "This contact was removed by another writer"
		return nil
	}

	for col := range m.form.inputs {
		if !m.form.editable[col] {
			continue
		}
		if !m.contacts.SetData(row, col, m.form.value(col)) {
			m.form.error = fmt.Sprintf("Failed to save %s", strings.ToLower(m.contacts.HeaderData(col)))
			return nil
		}
	}

	m.successMessage = "Contact updated"
	m.selectAfter = m.targetAddress
	m.targetAddress = ""
	m.currentView = ContactViewList
	return nil
}

func (m *ContactsModel) populateEditForm(row int) ContactForm {
	values := make([]string, m.contacts.ColumnCount())
	for col := range values {
		values[col], _ = m.contacts.Data(row, col)
	}

	form := newContactForm(values)
	for col := range form.editable {
		form.editable[col] = m.contacts.Flags(row, col).Has(contacttable.FlagEditable)
	}
	form.currentField = -1
	form.nextField()
	return form
}

func (m *ContactsModel) clearMessages() {
	m.error = nil
	m.successMessage = ""
}

// syncRows rebuilds the grid from the table model, keeping the cursor on the same contact.
func (m *ContactsModel) syncRows() {
	selected := m.selectAfter
	if selected == "" {
		if row := m.grid.SelectedRow(); len(row) > contacttable.ColumnAddress {
			selected = row[contacttable.ColumnAddress]
		}
	}
	m.selectAfter = ""
	m.stale = false

	count := m.contacts.RowCount()
	rows := make([]table.Row, 0, count)
	for row := 0; row < count; row++ {
		cells := make(table.Row, 0, m.contacts.ColumnCount()+1)
		for col := 0; col < m.contacts.ColumnCount(); col++ {
			value, _ := m.contacts.Data(row, col)
			if col != contacttable.ColumnAddress && col < len(columnWidths) {
				value = utils.TruncateString(value, columnWidths[col])
			}
			cells = append(cells, value)
		}

		marker := ""
		if typ, ok := m.contacts.Type(row); ok {
			marker = typ.String()
		}
		if address, _ := m.contacts.Data(row, contacttable.ColumnAddress); address != "" && address == m.defaultAddress {
			marker += " ★"
		}
		rows = append(rows, append(cells, marker))
	}
	m.grid.SetRows(rows)

	if row := m.contacts.LookupAddress(selected); row >= 0 {
		m.grid.SetCursor(row)
	} else if count > 0 && m.grid.Cursor() >= count {
		m.grid.SetCursor(count - 1)
	}
}

func (m *ContactsModel) View() string {
	if m.unlock.IsVisible() {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.unlock.View())
	}

	switch m.currentView {
	case ContactViewCreate:
		return m.renderFormView("New Contact", "Leave the address empty to generate a new receiving address.")
	case ContactViewEdit:
		return m.renderFormView("Edit Contact", "")
	case ContactViewDeleteConfirm:
		return m.renderDeleteConfirmView()
	default:
		return m.renderListView()
	}
}

func (m *ContactsModel) renderListView() string {
	var content strings.Builder

	content.WriteString(m.grid.View())
	content.WriteString("\n")

	statusStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Subtext1)).
		Padding(0, 1)

	status := []string{utils.FormatCount(m.contacts.RowCount(), "contact", "contacts")}
	if m.defaultAddress != "" {
		label, _ := m.contacts.LabelForAddress(m.defaultAddress)
		status = append(status, "default "+utils.FormatAddressWithName(m.defaultAddress, label))
	}
	if !m.lastChange.IsZero() {
		status = append(status, "last external change "+utils.FormatTimeAgo(m.lastChange))
	}
	content.WriteString(statusStyle.Render(strings.Join(status, " • ")))
	content.WriteString("\n")

	content.WriteString(m.renderMessages())

	controlsStyle := utils.HintStyle().Padding(0, 1)
	content.WriteString(controlsStyle.Render(utils.FormatKeyHelp([][2]string{
		{"a", "Add"},
		{"e", "Edit"},
		{"d", "Delete"},
		{"*", "Set Default"},
		{"r", "Reload"},
		{"q", "Quit"},
	})))

	return content.String()
}

func (m *ContactsModel) renderMessages() string {
	var content strings.Builder

	if m.error != nil {
		errorStyle := utils.ErrorStyle().Padding(0, 1)
		content.WriteString(errorStyle.Render(m.error.Error()))
		content.WriteString("\n")
	}

	if m.successMessage != "" {
		successStyle := utils.SuccessStyle().Padding(0, 1)
		content.WriteString(successStyle.Render(m.successMessage))
		content.WriteString("\n")
	}

	return content.String()
}

func (m *ContactsModel) renderFormView(title, hint string) string {
	var content strings.Builder

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(utils.Colours.Text)).
		Background(lipgloss.Color(utils.Colours.Surface0)).
		Padding(0, 1).
		Width(m.width)

	content.WriteString(headerStyle.Render(title))
	content.WriteString("\n\n")

	fieldStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Text)).
		Padding(0, 2)
	activeStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Blue)).
		Bold(true)
	readOnlyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Overlay1))

	for col, input := range m.form.inputs {
		label := m.contacts.HeaderData(col) + ":"
		if col == m.form.currentField {
			label = activeStyle.Render("▶ " + label)
		} else {
			label = "  " + label
		}
		content.WriteString(fieldStyle.Render(label))
		content.WriteString("\n")

		if m.form.editable[col] {
			content.WriteString(fieldStyle.Render(input.View()))
		} else {
			content.WriteString(fieldStyle.Render(readOnlyStyle.Render(input.Value())))
		}
		content.WriteString("\n\n")
	}

	if hint != "" {
		hintStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(utils.Colours.Subtext0)).
			Italic(true).
			Padding(0, 2)
		content.WriteString(hintStyle.Render(hint))
		content.WriteString("\n\n")
	}

	if m.form.error != "" {
		errorStyle := utils.ErrorStyle().Padding(0, 2)
		content.WriteString(errorStyle.Render(m.form.error))
		content.WriteString("\n\n")
	}

	controlsStyle := utils.HintStyle().Padding(0, 1)
	content.WriteString(controlsStyle.Render("[Tab] Next Field [Shift+Tab] Previous [Enter] Save [Esc] Cancel"))

	return content.String()
}

func (m *ContactsModel) renderDeleteConfirmView() string {
	label, _ := m.contacts.LabelForAddress(m.targetAddress)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(utils.Colours.Red)).
		Padding(1, 2)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Red)).
		Bold(true)

	body := warningStyle.Render("Delete contact?") + "\n\n" +
		utils.FormatAddressWithName(m.targetAddress, label) + "\n\n" +
		"[y] Delete [n] Cancel"

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, boxStyle.Render(body))
}

func newContactForm(values []string) ContactForm {
	placeholders := []string{
		"Label",
		"0x... (empty to generate)",
		"Email (optional)",
		"URL (optional)",
	}
	limits := []int{64, 42, 128, 256}

	form := ContactForm{
		inputs:   make([]textinput.Model, len(placeholders)),
		editable: make([]bool, len(placeholders)),
	}
	for i := range form.inputs {
		input := textinput.New()
		input.Placeholder = placeholders[i]
		input.CharLimit = limits[i]
		input.PromptStyle = utils.Fg(utils.Colours.Blue)
		input.TextStyle = utils.Fg(utils.Colours.Text)
		if i < len(values) {
			input.SetValue(values[i])
		}
		form.inputs[i] = input
		form.editable[i] = true
	}
	return form
}

func (f *ContactForm) value(col int) string {
	if col < 0 || col >= len(f.inputs) {
		return ""
	}
	return f.inputs[col].Value()
}

func (f *ContactForm) nextField() {
	for i := f.currentField + 1; i < len(f.inputs); i++ {
		if f.editable[i] {
			f.currentField = i
			return
		}
	}
}

func (f *ContactForm) prevField() {
	for i := f.currentField - 1; i >= 0; i-- {
		if f.editable[i] {
			f.currentField = i
			return
		}
	}
}

func (f *ContactForm) focusCurrentField() tea.Cmd {
	var cmd tea.Cmd
	for i := range f.inputs {
		if i == f.currentField {
			cmd = f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
	return cmd
}

func (f *ContactForm) updateCurrent(msg tea.Msg) tea.Cmd {
	if f.currentField < 0 || f.currentField >= len(f.inputs) {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.currentField], cmd = f.inputs[f.currentField].Update(msg)
	return cmd
}
