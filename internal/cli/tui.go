package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dmgrok/mcp-mother-skills/pkg/sync"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// changePickerModel is the bubbletea model for interactively selecting
// which pending sync changes to apply. All changes start approved; space
// toggles the one under the cursor, "a" toggles everything.
type changePickerModel struct {
	changes  []sync.Change
	approved []bool
	cursor   int
	aborted  bool
	confirm  bool
}

// newChangePicker creates a picker with every change pre-approved.
func newChangePicker(changes []sync.Change) changePickerModel {
	approved := make([]bool, len(changes))
	for i := range approved {
		approved[i] = true
	}
	return changePickerModel{changes: changes, approved: approved}
}

func (m changePickerModel) Init() tea.Cmd {
	return nil
}

func (m changePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		m.aborted = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.changes)-1 {
			m.cursor++
		}
	case " ":
		m.approved[m.cursor] = !m.approved[m.cursor]
	case "a":
		all := true
		for _, v := range m.approved {
			if !v {
				all = false
				break
			}
		}
		for i := range m.approved {
			m.approved[i] = !all
		}
	case "enter":
		m.confirm = true
		return m, tea.Quit
	}
	return m, nil
}

func (m changePickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Changes"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ␣ toggle  a all  ⏎ apply  q abort"))
	b.WriteString("\n\n")

	rows := [][]string{}
	for i, change := range m.changes {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		mark := " "
		if m.approved[i] {
			mark = iconSuccess
		}
		version := change.Match.Skill.Version
		if change.Action == sync.ActionUpdate {
			version = change.OldVersion + " " + iconArrow + " " + version
		}
		rows = append(rows, []string{cursor, mark, string(change.Action), change.Name(), version, change.Reason})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Action", "Skill", "Version", "Reason").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row >= len(m.changes) {
				return lipgloss.NewStyle()
			}
			if row == m.cursor {
				return listSelectedStyle
			}
			if !m.approved[row] {
				return listDimStyle
			}
			if col == 2 {
				return actionStyle(string(m.changes[row].Action))
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d approved]", m.approvedCount(), len(m.changes))))
	return b.String()
}

func (m changePickerModel) approvedCount() int {
	n := 0
	for _, v := range m.approved {
		if v {
			n++
		}
	}
	return n
}

// approvedNames returns the names of the approved changes, or nil when the
// picker was aborted or nothing is approved.
func (m changePickerModel) approvedNames() []string {
	if m.aborted || !m.confirm {
		return nil
	}
	var names []string
	for i, change := range m.changes {
		if m.approved[i] {
			names = append(names, change.Name())
		}
	}
	return names
}
