package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zcrypto"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zacct/internal/account"
	"github.com/zarlcorp/zacct/internal/store"
)

// form columns, in traversal order
const (
	colLabels = iota
	colType
	colLogin
	colPassword
)

// saveRowMsg requests persisting a validated, normalized row.
type saveRowMsg struct {
	index   int
	account account.Account
}

// rowAddedMsg carries the result of a create.
type rowAddedMsg struct {
	index   int
	account *account.Account
	err     error
}

// rowUpdatedMsg carries the result of an update.
type rowUpdatedMsg struct {
	index int
	err   error
}

// removeAccountMsg requests deletion of a persisted row.
type removeAccountMsg struct {
	index int
	id    string
}

// rowRemovedMsg carries the result of a delete.
type rowRemovedMsg struct {
	index int
	err   error
}

// noticeMsg carries a store notice into the UI.
type noticeMsg struct {
	notice store.Notice
}

// flashMsg clears the flash after a timeout.
type flashMsg struct{}

func clearFlashAfter() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return flashMsg{}
	})
}

// accountRow is one editable account. id is empty until the server has
// persisted it; form state and store state meet only at save points.
type accountRow struct {
	id       string
	typ      account.Type
	labels   textinput.Model
	login    textinput.Model
	password textinput.Model
	errs     account.FieldErrors
	reveal   bool
	dirty    bool
}

func newAccountRow(a account.Account) accountRow {
	r := blankRow()
	r.apply(a)
	r.dirty = false
	return r
}

func blankRow() accountRow {
	labels := textinput.New()
	labels.CharLimit = 50
	labels.Width = 22
	labels.Prompt = ""

	login := textinput.New()
	login.CharLimit = 100
	login.Width = 18
	login.Prompt = ""

	password := textinput.New()
	password.CharLimit = 100
	password.Width = 18
	password.Prompt = ""
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	return accountRow{
		typ:      account.TypeLocal,
		labels:   labels,
		login:    login,
		password: password,
	}
}

// apply overwrites the row's form state from a stored record, labels
// re-joined into their editable form.
func (r *accountRow) apply(a account.Account) {
	in := account.ToForm(a)
	r.id = a.ID
	r.typ = in.Type
	r.labels.SetValue(in.Labels)
	r.login.SetValue(in.Login)
	r.password.SetValue(in.Password)
	r.errs = account.FieldErrors{}
	r.dirty = false
}

func (r accountRow) formInput() account.FormInput {
	return account.FormInput{
		Login:    r.login.Value(),
		Password: r.password.Value(),
		Labels:   r.labels.Value(),
		Type:     r.typ,
	}
}

// input returns the text input behind an editable column; the type
// column has none.
func (r *accountRow) input(col int) *textinput.Model {
	switch col {
	case colLabels:
		return &r.labels
	case colLogin:
		return &r.login
	case colPassword:
		return &r.password
	}
	return nil
}

// cols lists the focusable columns for this row. LDAP rows have no
// password cell.
func (r accountRow) cols() []int {
	if r.typ == account.TypeLDAP {
		return []int{colLabels, colType, colLogin}
	}
	return []int{colLabels, colType, colLogin, colPassword}
}

// accountsModel renders one editable row per account.
type accountsModel struct {
	rows       []accountRow
	row, col   int
	loading    bool
	confirm    bool
	confirmRow int
	flash      string
	flashErr   bool
}

func newAccountsModel(accounts []account.Account) accountsModel {
	rows := make([]accountRow, len(accounts))
	for i, a := range accounts {
		rows[i] = newAccountRow(a)
	}

	m := accountsModel{rows: rows}
	if len(rows) > 0 {
		m.rows[0].labels.Focus()
	}
	return m
}

func (m accountsModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m accountsModel) Update(msg tea.Msg) (accountsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case rowAddedMsg:
		return m.handleAdded(msg), nil

	case rowUpdatedMsg:
		if msg.err != nil && msg.index < len(m.rows) {
			// let a later blur retry
			m.rows[msg.index].dirty = true
		}
		return m, nil

	case rowRemovedMsg:
		// the form row goes away whether or not the API call succeeded
		return m.removeRow(msg.index), nil

	case noticeMsg:
		m.flash = msg.notice.Text
		m.flashErr = msg.notice.Level == store.LevelError
		return m, nil

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m.updateInput(msg)
}

func (m accountsModel) handleAdded(msg rowAddedMsg) accountsModel {
	if msg.index >= len(m.rows) {
		return m
	}
	if msg.err != nil || msg.account == nil {
		m.rows[msg.index].dirty = true
		return m
	}

	// the server record carries the assigned id and any normalization
	m.rows[msg.index].apply(*msg.account)
	return m
}

func (m accountsModel) handleKey(msg tea.KeyMsg) (accountsModel, tea.Cmd) {
	if m.confirm {
		return m.handleConfirm(msg)
	}

	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if msg.Type == tea.KeyEsc {
		return m, func() tea.Msg { return navigateMsg{view: viewSettings} }
	}

	switch msg.String() {
	case "tab":
		m, cmd := m.blurSave()
		return m.moveFocus(1, 0), cmd

	case "shift+tab":
		m, cmd := m.blurSave()
		return m.moveFocus(-1, 0), cmd

	case "down":
		m, cmd := m.blurSave()
		return m.moveFocus(0, 1), cmd

	case "up":
		m, cmd := m.blurSave()
		return m.moveFocus(0, -1), cmd

	case "enter":
		return m.trySave(m.row)

	case "ctrl+n":
		return m.addRow()

	case "ctrl+d":
		if len(m.rows) == 0 {
			return m, nil
		}
		m.confirm = true
		m.confirmRow = m.row
		return m, nil

	case "ctrl+r":
		return m.toggleReveal(), nil

	case "ctrl+g":
		return m.generatePassword(), nil

	case " ":
		if m.col == colType {
			return m.cycleType()
		}
	}

	return m.updateInput(msg)
}

func (m accountsModel) handleConfirm(msg tea.KeyMsg) (accountsModel, tea.Cmd) {
	m.confirm = false
	if msg.String() != "y" {
		return m, nil
	}

	i := m.confirmRow
	if i >= len(m.rows) {
		return m, nil
	}

	id := m.rows[i].id
	if id == "" {
		// unsaved row: discard locally, no backend call
		return m.removeRow(i), nil
	}

	return m, func() tea.Msg { return removeAccountMsg{index: i, id: id} }
}

// blurSave runs the row save protocol for the focused row before the
// focus moves away. Untouched rows are left alone.
func (m accountsModel) blurSave() (accountsModel, tea.Cmd) {
	return m.trySave(m.row)
}

// trySave validates the row and, when it passes, emits a normalized
// save request. An invalid row aborts silently; the field messages
// stay inline.
func (m accountsModel) trySave(i int) (accountsModel, tea.Cmd) {
	if i < 0 || i >= len(m.rows) {
		return m, nil
	}

	r := m.rows[i]
	if !r.dirty {
		return m, nil
	}

	in := r.formInput()
	r.errs = account.Validate(in)
	if !r.errs.OK() {
		m.rows[i] = r
		return m, nil
	}

	a := account.FromForm(r.id, in)
	r.dirty = false
	m.rows[i] = r

	return m, func() tea.Msg { return saveRowMsg{index: i, account: a} }
}

func (m accountsModel) addRow() (accountsModel, tea.Cmd) {
	m, cmd := m.blurSave()

	m.rows = append(m.rows, blankRow())
	m = m.focusCell(len(m.rows)-1, colLabels)
	return m, tea.Batch(cmd, textinput.Blink)
}

func (m accountsModel) removeRow(i int) accountsModel {
	if i < 0 || i >= len(m.rows) {
		return m
	}

	m.rows = append(m.rows[:i], m.rows[i+1:]...)
	if m.row >= len(m.rows) {
		m.row = len(m.rows) - 1
	}
	if m.row < 0 {
		m.row = 0
	}
	if len(m.rows) > 0 {
		m = m.focusCell(m.row, colLabels)
	}
	return m
}

func (m accountsModel) toggleReveal() accountsModel {
	if len(m.rows) == 0 {
		return m
	}

	r := &m.rows[m.row]
	r.reveal = !r.reveal
	if r.reveal {
		r.password.EchoMode = textinput.EchoNormal
	} else {
		r.password.EchoMode = textinput.EchoPassword
		r.password.EchoCharacter = '*'
	}
	return m
}

func (m accountsModel) generatePassword() accountsModel {
	if len(m.rows) == 0 {
		return m
	}

	r := &m.rows[m.row]
	if r.typ != account.TypeLocal {
		return m
	}

	r.password.SetValue(zcrypto.GeneratePassword(16))
	r.dirty = true
	return m
}

// cycleType flips local <-> ldap and commits the row, matching the
// save-on-change behavior of the type selector.
func (m accountsModel) cycleType() (accountsModel, tea.Cmd) {
	if len(m.rows) == 0 {
		return m, nil
	}

	r := &m.rows[m.row]
	if r.typ == account.TypeLocal {
		r.typ = account.TypeLDAP
	} else {
		r.typ = account.TypeLocal
	}
	r.dirty = true

	return m.trySave(m.row)
}

// moveFocus shifts focus by one cell (dc) or one row (dr), clamping at
// the edges and skipping cells the target row does not have.
func (m accountsModel) moveFocus(dc, dr int) accountsModel {
	if len(m.rows) == 0 {
		return m
	}

	row, col := m.row, m.col

	switch {
	case dr != 0:
		row += dr
		if row < 0 {
			row = 0
		}
		if row >= len(m.rows) {
			row = len(m.rows) - 1
		}
		col = nearestCol(m.rows[row], col)

	case dc > 0:
		row, col = nextCell(m.rows, row, col)

	case dc < 0:
		row, col = prevCell(m.rows, row, col)
	}

	return m.focusCell(row, col)
}

// nextCell advances in row-major order, wrapping to the first cell.
func nextCell(rows []accountRow, row, col int) (int, int) {
	cols := rows[row].cols()
	for i, c := range cols {
		if c == col && i+1 < len(cols) {
			return row, cols[i+1]
		}
	}
	row++
	if row >= len(rows) {
		row = 0
	}
	return row, rows[row].cols()[0]
}

// prevCell is the reverse traversal.
func prevCell(rows []accountRow, row, col int) (int, int) {
	cols := rows[row].cols()
	for i, c := range cols {
		if c == col && i > 0 {
			return row, cols[i-1]
		}
	}
	row--
	if row < 0 {
		row = len(rows) - 1
	}
	prev := rows[row].cols()
	return row, prev[len(prev)-1]
}

// nearestCol keeps the column when the target row has it, otherwise
// falls back to login (ldap rows have no password cell).
func nearestCol(r accountRow, col int) int {
	for _, c := range r.cols() {
		if c == col {
			return col
		}
	}
	return colLogin
}

func (m accountsModel) focusCell(row, col int) accountsModel {
	if cur := m.rows[m.row].input(m.col); cur != nil {
		cur.Blur()
	}

	m.row, m.col = row, col
	if in := m.rows[row].input(col); in != nil {
		in.Focus()
	}
	return m
}

func (m accountsModel) updateInput(msg tea.Msg) (accountsModel, tea.Cmd) {
	if len(m.rows) == 0 || m.col == colType {
		return m, nil
	}

	r := &m.rows[m.row]
	in := r.input(m.col)
	before := in.Value()

	var cmd tea.Cmd
	*in, cmd = in.Update(msg)

	// labels are edited upper-case
	if m.col == colLabels {
		if up := strings.ToUpper(in.Value()); up != in.Value() {
			in.SetValue(up)
			in.CursorEnd()
		}
	}

	if in.Value() != before {
		r.dirty = true
	}

	return m, cmd
}

func (m accountsModel) View() string {
	title := zstyle.Title.Render(fmt.Sprintf("accounts (%d)", len(m.rows)))
	s := fmt.Sprintf("\n  %s\n\n", title)

	if m.loading {
		s += "  " + zstyle.MutedText.Render("loading accounts...") + "\n"
		return s
	}

	if len(m.rows) == 0 {
		s += "  " + zstyle.MutedText.Render("no accounts yet, ctrl+n to add one") + "\n"
		s += "\n"
		s += m.statusLine()
		return s
	}

	header := fmt.Sprintf("    %-24s %-7s %-20s %s", "labels", "type", "login", "password")
	s += zstyle.MutedText.Render(header) + "\n"

	for i := range m.rows {
		s += m.renderRow(i)
	}

	s += "\n"
	s += m.statusLine()
	return s
}

func (m accountsModel) renderRow(i int) string {
	r := m.rows[i]

	cursor := "  "
	if i == m.row {
		cursor = "> "
	}

	typeCell := string(r.typ)
	if i == m.row && m.col == colType {
		typeCell = zstyle.Highlight.Render("[" + typeCell + "]")
	} else {
		typeCell = "[" + typeCell + "]"
	}

	passwordCell := r.password.View()
	if r.typ == account.TypeLDAP {
		passwordCell = zstyle.MutedText.Render("—")
	}

	line := fmt.Sprintf("  %s%-24s %-7s %-20s %s\n",
		cursor, r.labels.View(), typeCell, r.login.View(), passwordCell)

	if msgs := fieldErrorTexts(r.errs); len(msgs) > 0 {
		line += "      " + zstyle.StatusErr.Render(strings.Join(msgs, "  ")) + "\n"
	}

	return line
}

func (m accountsModel) statusLine() string {
	if m.confirm && m.confirmRow < len(m.rows) {
		name := m.rows[m.confirmRow].login.Value()
		if name == "" {
			name = "(new)"
		}
		prompt := fmt.Sprintf("delete account %q? this cannot be undone. (y/n)", name)
		return "  " + zstyle.StatusWarn.Render(prompt) + "\n"
	}

	if m.flash != "" {
		style := zstyle.StatusOK
		if m.flashErr {
			style = zstyle.StatusErr
		}
		return "  " + style.Render(m.flash) + "\n"
	}

	return "\n"
}

func fieldErrorTexts(e account.FieldErrors) []string {
	var msgs []string
	for _, msg := range []string{e.Login, e.Password, e.Labels, e.Type} {
		if msg != "" {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}
