// This file implements the interactive console using bubbletea.
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type consoleEntry struct {
	line   string // what the user typed, empty for banner output
	output string
	isErr  bool
	time   time.Time
}

// consoleModel is the bubbletea model for the interactive console.
type consoleModel struct {
	app       *app
	textinput textinput.Model
	viewport  viewport.Model
	history   []consoleEntry
	width     int
	height    int
	ready     bool
}

func newConsole(a *app) consoleModel {
	ti := textinput.New()
	ti.Placeholder = "task add ... | ls | help  (Ctrl+C to exit)"
	ti.Focus()
	ti.Prompt = "› "
	ti.CharLimit = 1024
	ti.Width = 80
	ti.PromptStyle = a.styles.Prompt
	ti.TextStyle = a.styles.UserLine

	vp := viewport.New(80, 20)
	vp.SetContent("")

	banner := a.styles.Title.Render("taskdeck "+version) + "\n" +
		a.styles.Muted.Render("type a command, or help for the guide")

	return consoleModel{
		app:       a,
		textinput: ti,
		viewport:  vp,
		history:   []consoleEntry{{output: banner, time: time.Now()}},
	}
}

func (m consoleModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.handleSubmit()
		}
		m.textinput, tiCmd = m.textinput.Update(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 1
		inputHeight := 3
		if !m.ready {
			m.viewport = viewport.New(msg.Width-2, msg.Height-headerHeight-inputHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 2
			m.viewport.Height = msg.Height - headerHeight - inputHeight
		}
		m.textinput.Width = msg.Width - 4
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
	}

	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

// handleSubmit runs the submitted line through the interpreter. Commands are
// synchronous; the result is appended to the history immediately.
func (m consoleModel) handleSubmit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.textinput.Value())
	if line == "" {
		return m, nil
	}
	if line == "quit" || line == "exit" {
		return m, tea.Quit
	}

	entry := consoleEntry{line: line, time: time.Now()}
	out, err := m.app.execute(line)
	if err != nil {
		entry.output = err.Error()
		entry.isErr = true
	} else {
		entry.output = out
	}
	m.history = append(m.history, entry)

	m.textinput.Reset()
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
	return m, nil
}

func (m consoleModel) renderHistory() string {
	var sb strings.Builder
	for _, e := range m.history {
		if e.line != "" {
			sb.WriteString(m.app.styles.Prompt.Render("› "))
			sb.WriteString(m.app.styles.UserLine.Render(e.line))
			sb.WriteString("\n")
		}
		if e.output != "" {
			if e.isErr {
				sb.WriteString(m.app.styles.Error.Render(e.output))
			} else {
				sb.WriteString(e.output)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m consoleModel) View() string {
	if !m.ready {
		return "loading..."
	}
	return fmt.Sprintf("%s\n%s\n%s",
		m.viewport.View(),
		m.app.styles.RenderDivider(m.width),
		m.textinput.View())
}

// runConsole starts the interactive console and blocks until exit.
func runConsole(a *app) error {
	p := tea.NewProgram(newConsole(a), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("console error: %w", err)
	}
	return nil
}
