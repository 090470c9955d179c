// Package ui provides the interactive terminal picker for choosing a
// connection profile from probe results.
package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("10"))

	listStyle = lipgloss.NewStyle().Margin(1, 2)
)

// Choice is one selectable profile, annotated with its measured latency.
type Choice struct {
	Profile string
	Target  string
	Ping    float64
	// HasPing distinguishes a measured zero from an unreachable server.
	HasPing bool
}

func (c Choice) Title() string { return c.Profile }

func (c Choice) Description() string {
	if !c.HasPing {
		return fmt.Sprintf("%s (unreachable)", c.Target)
	}
	return fmt.Sprintf("%s  %.2f ms", c.Target, c.Ping)
}

func (c Choice) FilterValue() string { return c.Profile }

type pickerModel struct {
	list     list.Model
	selected *Choice
	aborted  bool
}

func newPickerModel(choices []Choice) pickerModel {
	items := make([]list.Item, 0, len(choices))
	for _, c := range choices {
		items = append(items, c)
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Select a PIA server"
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(false)

	return pickerModel{list: l}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Ignore keys while the filter input is active, except escape.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "enter":
			if choice, ok := m.list.SelectedItem().(Choice); ok {
				m.selected = &choice
			}
			return m, tea.Quit
		case "q", "esc", "ctrl+c":
			m.aborted = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		h, v := listStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	return listStyle.Render(m.list.View())
}

// Pick runs the interactive picker and returns the chosen profile.
// Returns ok=false when the user aborts without choosing.
func Pick(choices []Choice) (Choice, bool, error) {
	model := newPickerModel(choices)
	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		return Choice{}, false, fmt.Errorf("running picker: %w", err)
	}

	result, ok := final.(pickerModel)
	if !ok || result.aborted || result.selected == nil {
		return Choice{}, false, nil
	}
	return *result.selected, true, nil
}
