package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ksteinfeldt/gitid/internal/style"
)

type pickerKeys struct {
	Up        key.Binding
	Down      key.Binding
	Choose    key.Binding
	Add       key.Binding
	Keep      key.Binding
	Interrupt key.Binding
}

var defaultPickerKeys = pickerKeys{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Choose: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "choose"),
	),
	Add: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add identity"),
	),
	Keep: key.NewBinding(
		key.WithKeys("esc", "q"),
		key.WithHelp("esc/q", "keep current"),
	),
	Interrupt: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "abort commit"),
	),
}

// pickerModel is a cursor list of identities followed by the two reserved
// rows: add and keep.
type pickerModel struct {
	view        MenuView
	cursor      int
	choice      Choice
	done        bool
	interrupted bool
	keys        pickerKeys
}

func newPickerModel(view MenuView) pickerModel {
	m := pickerModel{view: view, keys: defaultPickerKeys}
	if view.Current != nil {
		for i, id := range view.Identities {
			if id.Seq == view.Current.Seq {
				m.cursor = i
				break
			}
		}
	}
	return m
}

func (m pickerModel) rows() int {
	return len(m.view.Identities) + 2
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Interrupt):
		m.interrupted = true
		m.done = true
		return m, tea.Interrupt
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < m.rows()-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Add):
		m.choice = Choice{Action: ActionAdd, Input: "a"}
		m.done = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Keep):
		m.choice = Choice{Action: ActionKeep}
		m.done = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Choose):
		m.choice = m.choiceAtCursor()
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m pickerModel) choiceAtCursor() Choice {
	n := len(m.view.Identities)
	switch {
	case m.cursor < n:
		seq := m.view.Identities[m.cursor].Seq
		return Choice{Action: ActionSelect, Seq: seq, Input: fmt.Sprint(seq)}
	case m.cursor == n:
		return Choice{Action: ActionAdd, Input: "a"}
	default:
		return Choice{Action: ActionKeep}
	}
}

func (m pickerModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(style.Bold.Render("Select git identity for this commit"))
	b.WriteString("\n")
	if m.view.CurrentEmail != "" {
		b.WriteString(style.Dim.Render("  current: "+m.view.CurrentEmail) + "\n")
	}
	b.WriteString("\n")

	row := func(i int, text string) {
		if i == m.cursor {
			b.WriteString(style.Selected.Render("> " + text))
		} else {
			b.WriteString("  " + text)
		}
		b.WriteString("\n")
	}

	for i, id := range m.view.Identities {
		row(i, fmt.Sprintf("%d) %s <%s> %s", id.Seq, id.Name, id.Email, style.Tag(id.Label)))
	}
	row(len(m.view.Identities), "Add a new identity")
	row(len(m.view.Identities)+1, "Keep current configuration")

	help := []string{}
	for _, k := range []key.Binding{m.keys.Up, m.keys.Down, m.keys.Choose, m.keys.Add, m.keys.Keep} {
		h := k.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	b.WriteString("\n" + style.Dim.Render(strings.Join(help, " • ")) + "\n")
	return b.String()
}

// Picker is an inline bubbletea cursor list drawn on the terminal.
type Picker struct {
	Term *Terminal
}

// Choose runs the picker until the user picks a row or backs out. Ctrl+c
// returns ErrInterrupted so the commit is aborted rather than let through.
func (p *Picker) Choose(ctx context.Context, view MenuView) (Choice, error) {
	program := tea.NewProgram(
		newPickerModel(view),
		tea.WithContext(ctx),
		tea.WithInput(p.Term.In),
		tea.WithOutput(p.Term.Out),
	)

	final, err := program.Run()
	if errors.Is(err, tea.ErrInterrupted) {
		return Choice{}, ErrInterrupted
	}
	if err != nil {
		return Choice{}, fmt.Errorf("running identity picker: %w", err)
	}

	m, ok := final.(pickerModel)
	if ok && m.interrupted {
		return Choice{}, ErrInterrupted
	}
	if !ok || !m.done {
		return Choice{Action: ActionKeep}, nil
	}
	return m.choice, nil
}

var (
	_ Chooser = (*LineMenu)(nil)
	_ Chooser = (*Picker)(nil)
)
