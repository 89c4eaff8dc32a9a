package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	logoStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	itemStyle         = lipgloss.NewStyle().PaddingLeft(2)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("12")).Bold(true)
	descStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	helpStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).PaddingLeft(2)
)

const logo = `
 _            _                        _
| |_ __ _ ___| | ___ __ ___   __ _ ___| |_ ___ _ __
| __/ _` + "`" + ` / __| |/ / '_ ` + "`" + ` _ \ / _` + "`" + ` / __| __/ _ \ '__|
| || (_| \__ \   <| | | | | | (_| \__ \ ||  __/ |
 \__\__,_|___/_|\_\_| |_| |_|\__,_|___/\__\___|_|
`

type menuEntry struct {
	command string
	desc    string
}

type MenuModel struct {
	entries  []menuEntry
	cursor   int
	selected string
	quitting bool
}

func NewMenuModel() MenuModel {
	return MenuModel{
		entries: []menuEntry{
			{"mcp", "serve the tool interface over stdio"},
			{"list-tasks", "print all tasks"},
			{"list-events", "print all calendar events"},
			{"list-tags", "print all tags"},
			{"status", "collection counts and history state"},
			{"export", "write a JSON export"},
		},
	}
}

func (m MenuModel) Init() tea.Cmd {
	return nil
}

func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}

		case "enter":
			m.selected = m.entries[m.cursor].command
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder

	s.WriteString(logoStyle.Render(logo))
	s.WriteString("\n\n")

	for i, entry := range m.entries {
		line := fmt.Sprintf("%-13s %s", entry.command, descStyle.Render(entry.desc))
		if m.cursor == i {
			s.WriteString(selectedItemStyle.Render("> " + line))
		} else {
			s.WriteString(itemStyle.Render("  " + line))
		}
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("j/k move · enter run · q quit"))
	s.WriteString("\n")

	return s.String()
}

func (m MenuModel) Selected() string {
	return m.selected
}

func RunMenu() (string, error) {
	m := NewMenuModel()
	p := tea.NewProgram(m)
	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}
	return finalModel.(MenuModel).Selected(), nil
}
