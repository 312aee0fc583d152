package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"
)

// unlockModel prompts for the vault master password.
type unlockModel struct {
	input      textinput.Model
	firstRun   bool
	confirming bool
	firstPass  string
	errText    string
}

// unlockSubmitMsg is sent when the user submits a password.
type unlockSubmitMsg struct {
	password string
}

// unlockErrMsg is sent when opening the vault fails.
type unlockErrMsg struct {
	err error
}

func newUnlockModel(firstRun bool) unlockModel {
	ti := textinput.New()
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '*'
	ti.CharLimit = 128
	ti.Width = 40
	ti.Focus()

	return unlockModel{
		input:    ti,
		firstRun: firstRun,
	}
}

func (m unlockModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m unlockModel) Update(msg tea.Msg) (unlockModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if key.Matches(msg, zstyle.KeyEnter) {
			return m.submit()
		}

	case unlockErrMsg:
		m.errText = msg.err.Error()
		m.confirming = false
		m.firstPass = ""
		m.input.SetValue("")
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m unlockModel) submit() (unlockModel, tea.Cmd) {
	val := m.input.Value()
	if val == "" {
		return m, nil
	}

	if m.firstRun {
		if !m.confirming {
			// first pass: hold it and ask again
			m.firstPass = val
			m.confirming = true
			m.errText = ""
			m.input.SetValue("")
			return m, nil
		}
		if val != m.firstPass {
			m.errText = "passwords do not match"
			m.confirming = false
			m.firstPass = ""
			m.input.SetValue("")
			return m, nil
		}
	}

	m.errText = ""
	return m, func() tea.Msg { return unlockSubmitMsg{password: val} }
}

func (m unlockModel) View() string {
	indent := lipgloss.NewStyle().MarginLeft(2)
	logo := indent.Render(
		zstyle.StyledLogo(lipgloss.NewStyle().Foreground(zacctAccent)),
	)
	toolName := indent.Render(zstyle.MutedText.Render("zacct"))

	prompt := "vault password:"
	if m.firstRun {
		prompt = "create vault password:"
		if m.confirming {
			prompt = "confirm vault password:"
		}
	}

	s := fmt.Sprintf("\n%s\n%s\n\n  %s\n  %s\n", logo, toolName, prompt, m.input.View())

	if m.errText != "" {
		s += "\n  " + zstyle.StatusErr.Render(m.errText)
	}

	s += "\n"
	return s
}
