package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/wippyai/script-bridge/interop"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const historyLimit = 20

type replModel struct {
	err     error
	bridge  *interop.Registry
	verbose bool
	input   textinput.Model
	history []replEntry
}

type replEntry struct {
	input  string
	output string
	isErr  bool
}

func newReplModel(verbose bool) *replModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.PromptStyle = promptStyle
	ti.Placeholder = "expression, .modules, .drain"
	ti.Width = 72
	ti.Focus()
	return &replModel{verbose: verbose, input: ti}
}

type bridgeReadyMsg struct {
	err    error
	bridge *interop.Registry
}

type evalDoneMsg struct {
	input  string
	output string
	err    error
}

func (m *replModel) Init() tea.Cmd {
	return m.installBridge
}

func (m *replModel) installBridge() tea.Msg {
	var opts []interop.Option
	if m.verbose {
		log, err := zap.NewDevelopment()
		if err != nil {
			return bridgeReadyMsg{err: err}
		}
		opts = append(opts, interop.WithLogger(log))
	}
	bridge, err := interop.New(opts...)
	return bridgeReadyMsg{bridge: bridge, err: err}
}

func (m *replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			if m.bridge != nil {
				m.bridge.Teardown()
			}
			return m, tea.Quit

		case "enter":
			src := strings.TrimSpace(m.input.Value())
			if src == "" || m.bridge == nil {
				return m, nil
			}
			m.input.SetValue("")
			return m, m.evaluate(src)
		}

	case bridgeReadyMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.bridge = msg.bridge

	case evalDoneMsg:
		entry := replEntry{input: msg.input, output: msg.output}
		if msg.err != nil {
			entry.output = msg.err.Error()
			entry.isErr = true
		}
		m.history = append(m.history, entry)
		if len(m.history) > historyLimit {
			m.history = m.history[len(m.history)-historyLimit:]
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *replModel) evaluate(src string) tea.Cmd {
	return func() tea.Msg {
		switch src {
		case ".modules":
			names, err := m.bridge.GetModuleNames()
			if err != nil {
				return evalDoneMsg{input: src, err: err}
			}
			return evalDoneMsg{input: src, output: strings.Join(names, ", ")}

		case ".drain":
			if err := m.bridge.DrainEventLoop(); err != nil {
				return evalDoneMsg{input: src, err: err}
			}
			return evalDoneMsg{input: src, output: "drained"}
		}

		v, err := m.bridge.EvaluateScript(src)
		if err != nil {
			return evalDoneMsg{input: src, err: err}
		}
		out := v.String()
		v.Release()
		return evalDoneMsg{input: src, output: out}
	}
}

func (m *replModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress esc to quit.", m.err))
	}
	if m.bridge == nil {
		return "Installing bridge..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Script Bridge"))
	b.WriteString("\n\n")

	for _, e := range m.history {
		b.WriteString(promptStyle.Render("> "))
		b.WriteString(e.input)
		b.WriteString("\n")
		if e.isErr {
			b.WriteString(errorStyle.Render(e.output))
		} else {
			b.WriteString(resultStyle.Render(e.output))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter evaluate • .modules list • .drain run tasks • esc quit"))
	return b.String()
}

func runInteractive(verbose bool) error {
	p := tea.NewProgram(newReplModel(verbose), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
