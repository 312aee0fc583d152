package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zacct/internal/api"
	"github.com/zarlcorp/zacct/internal/config"
)

type settingsField int

const (
	settingsURL settingsField = iota
	settingsToken
	settingsFieldCount
)

var settingsLabels = [settingsFieldCount]string{
	"server url",
	"api token",
}

// saveSettingsMsg requests persisting the server settings.
type saveSettingsMsg struct {
	settings config.Server
}

// settingsCheckMsg carries the result of the connection check.
type settingsCheckMsg struct {
	count int
	err   error
}

// settingsModel is the form for configuring the directory server.
type settingsModel struct {
	inputs     []textinput.Model
	focus      int
	flash      string
	checking   bool
	configured bool // a working config exists; esc returns to accounts
	checkFn    func(ctx context.Context, cfg api.Config) (int, error)
}

func newSettingsModel(cfg config.Server) settingsModel {
	inputs := make([]textinput.Model, settingsFieldCount)

	for i := range inputs {
		ti := textinput.New()
		ti.CharLimit = 256
		ti.Width = 50
		inputs[i] = ti
	}

	inputs[settingsURL].Placeholder = "https://directory.example.com/api"
	inputs[settingsURL].SetValue(cfg.BaseURL)

	inputs[settingsToken].Placeholder = "token"
	inputs[settingsToken].SetValue(cfg.Token)
	inputs[settingsToken].EchoMode = textinput.EchoPassword
	inputs[settingsToken].EchoCharacter = '*'

	inputs[0].Focus()

	return settingsModel{
		inputs:     inputs,
		configured: cfg.Configured(),
	}
}

func (m settingsModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m settingsModel) Update(msg tea.Msg) (settingsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.checking {
			return m, nil
		}

		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		if msg.Type == tea.KeyEsc {
			if m.configured {
				return m, func() tea.Msg { return navigateMsg{view: viewAccounts} }
			}
			return m, nil
		}

		if key.Matches(msg, zstyle.KeyTab) || msg.Type == tea.KeyDown {
			return m.nextField(), nil
		}

		if msg.Type == tea.KeyUp || msg.Type == tea.KeyShiftTab {
			return m.prevField(), nil
		}

		if key.Matches(msg, zstyle.KeyEnter) {
			// enter on last field saves; otherwise advance
			if m.focus == int(settingsFieldCount)-1 {
				return m.startCheck()
			}
			return m.nextField(), nil
		}

		if msg.String() == "ctrl+s" {
			return m.startCheck()
		}

	case settingsCheckMsg:
		m.checking = false
		if msg.err != nil {
			m.flash = msg.err.Error()
			return m, clearFlashAfter()
		}
		s := config.Server{
			BaseURL: strings.TrimRight(strings.TrimSpace(m.inputs[settingsURL].Value()), "/"),
			Token:   strings.TrimSpace(m.inputs[settingsToken].Value()),
		}
		m.flash = fmt.Sprintf("connected, %d accounts", msg.count)
		m.configured = true
		return m, func() tea.Msg { return saveSettingsMsg{settings: s} }

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m.updateInput(msg)
}

func (m settingsModel) startCheck() (settingsModel, tea.Cmd) {
	baseURL := strings.TrimRight(strings.TrimSpace(m.inputs[settingsURL].Value()), "/")
	token := strings.TrimSpace(m.inputs[settingsToken].Value())

	if baseURL == "" {
		m.flash = "server url is required"
		return m, clearFlashAfter()
	}

	m.checking = true
	m.flash = "checking..."

	cfg := api.Config{BaseURL: baseURL, Token: token}

	check := m.checkFn
	if check == nil {
		check = defaultCheck
	}

	return m, func() tea.Msg {
		count, err := check(context.Background(), cfg)
		return settingsCheckMsg{count: count, err: err}
	}
}

func defaultCheck(ctx context.Context, cfg api.Config) (int, error) {
	accounts, err := api.NewClient(cfg).List(ctx)
	if err != nil {
		return 0, err
	}
	return len(accounts), nil
}

func (m settingsModel) nextField() settingsModel {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + 1) % int(settingsFieldCount)
	m.inputs[m.focus].Focus()
	return m
}

func (m settingsModel) prevField() settingsModel {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus - 1 + int(settingsFieldCount)) % int(settingsFieldCount)
	m.inputs[m.focus].Focus()
	return m
}

func (m settingsModel) updateInput(msg tea.Msg) (settingsModel, tea.Cmd) {
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m settingsModel) View() string {
	title := zstyle.Title.Render("directory server")
	s := fmt.Sprintf("\n  %s\n\n", title)

	for i := range m.inputs {
		label := zstyle.MutedText.Render(fmt.Sprintf("  %-12s", settingsLabels[i]))
		cursor := "  "
		if i == m.focus {
			cursor = "> "
		}
		s += fmt.Sprintf("  %s%s %s\n", cursor, label, m.inputs[i].View())
	}

	s += "\n"

	if m.flash != "" {
		s += "  " + zstyle.StatusWarn.Render(m.flash) + "\n"
	} else {
		s += "\n"
	}

	return s
}
