package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/leofalp/calcagent/patterns/react"
)

// maxVisible bounds how many history entries View renders.
const maxVisible = 30

type entryKind int

const (
	entryQuestion entryKind = iota
	entryAnswer
	entryFailure
	entryInfo
)

type historyEntry struct {
	kind entryKind
	text string
}

// answerMsg carries the outcome of one agent run back into Update.
type answerMsg struct {
	result *react.Result
	err    error
}

type askFunc func(ctx context.Context, question string) (*react.Result, error)

type replModel struct {
	ctx      context.Context
	input    textinput.Model
	spinner  spinner.Model
	ask      askFunc
	tools    func() string
	history  []historyEntry
	verbose  bool
	busy     bool
	quitting bool
}

type keyMap struct {
	Enter key.Binding
	Quit  key.Binding
}

var keys = keyMap{
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "preguntar"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "ctrl+d"),
		key.WithHelp("ctrl+c", "salir"),
	),
}

func newREPLModel(ctx context.Context, ask askFunc, tools func() string, verbose bool) replModel {
	ti := textinput.New()
	ti.Placeholder = "escribe tu pregunta..."
	ti.Prompt = "👤 Tú: "
	ti.PromptStyle = promptStyle
	ti.CharLimit = 1000
	ti.Width = 80
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = mutedStyle

	return replModel{
		ctx:     ctx,
		input:   ti,
		spinner: sp,
		ask:     ask,
		tools:   tools,
		verbose: verbose,
	}
}

func (m replModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.input.Width = max(msg.Width-10, 20)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		if key.Matches(msg, keys.Enter) {
			return m.submit()
		}

	case answerMsg:
		m.busy = false
		m.record(msg)
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m replModel) submit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	if input == "" {
		return m, nil
	}

	switch strings.ToLower(input) {
	case "salir", "exit", "quit", "q":
		m.quitting = true
		return m, tea.Quit
	case "ayuda", "help", "?":
		m.history = append(m.history, historyEntry{kind: entryInfo, text: helpText})
		return m, nil
	case "tools":
		m.history = append(m.history, historyEntry{kind: entryInfo, text: m.tools()})
		return m, nil
	}

	m.history = append(m.history, historyEntry{kind: entryQuestion, text: input})
	m.busy = true
	ctx, ask := m.ctx, m.ask
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		result, err := ask(ctx, input)
		return answerMsg{result: result, err: err}
	})
}

func (m *replModel) record(msg answerMsg) {
	if msg.err != nil {
		m.history = append(m.history, historyEntry{kind: entryFailure, text: msg.err.Error()})
		return
	}
	if m.verbose {
		for _, step := range msg.result.Steps {
			m.history = append(m.history, historyEntry{kind: entryInfo, text: formatStep(step)})
		}
	}
	m.history = append(m.history, historyEntry{kind: entryAnswer, text: msg.result.Answer})
	if m.verbose {
		m.history = append(m.history, historyEntry{kind: entryInfo, text: mutedStyle.Render("   " + msg.result.Summary.String())})
	}
}

func (m replModel) View() string {
	if m.quitting {
		return mutedStyle.Render("👋 ¡Hasta luego!") + "\n"
	}

	var b strings.Builder
	start := max(len(m.history)-maxVisible, 0)
	for _, e := range m.history[start:] {
		switch e.kind {
		case entryQuestion:
			b.WriteString(promptStyle.Render("👤 Tú: ") + e.text + "\n")
		case entryAnswer:
			b.WriteString(answerStyle.Render("🤖 Agente: "+e.text) + "\n" + mutedStyle.Render(strings.Repeat("─", 50)) + "\n")
		case entryFailure:
			b.WriteString(errorStyle.Render("❌ Error: "+e.text) + "\n")
		case entryInfo:
			b.WriteString(e.text + "\n")
		}
	}

	if m.busy {
		b.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), mutedStyle.Render("Pensando...")))
	} else {
		b.WriteString(m.input.View() + "\n")
	}
	b.WriteString(mutedStyle.Render("'ayuda' ejemplos · 'tools' herramientas · 'salir' terminar"))
	return b.String()
}

func runREPL(ctx context.Context, a *app) error {
	fmt.Println(banner())
	fmt.Println("\n💬 Escribe tu pregunta (o 'salir' para terminar):")
	fmt.Println()

	p := tea.NewProgram(newREPLModel(ctx, a.ask, a.toolsText, a.verbose), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
