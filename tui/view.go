package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("86")).
			Padding(0, 1)

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("220")).
			Padding(1, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)

	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// View renders the screen. Modals replace the main layout.
func (m *model) View() string {
	if m.quitting {
		return ""
	}

	if m.question != nil {
		return m.place(m.renderQuestion())
	}
	if len(m.notices) > 0 {
		return m.place(m.renderNotice(m.notices[0]))
	}

	parts := []string{
		titleStyle.Render("KDE Theme Backup") + "  " + subtitleStyle.Render(m.root),
		"",
		sectionStyle.Render(m.renderBackups()),
	}
	if m.mode != modeBrowse {
		parts = append(parts, m.renderInput())
	}
	parts = append(parts,
		subtitleStyle.Render("Output / Log:"),
		sectionStyle.Render(m.logView.View()),
		m.renderStatus(),
		m.renderHelp(),
	)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// place centres a modal when the terminal size is known.
func (m *model) place(content string) string {
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

// renderBackups shows a window of the list around the cursor.
func (m *model) renderBackups() string {
	if len(m.backups) == 0 {
		return subtitleStyle.Render("No backups yet. Press n to create one.")
	}

	rows := m.listHeight()
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	end := min(start+rows, len(m.backups))

	var b strings.Builder
	for i := start; i < end; i++ {
		if i > start {
			b.WriteString("\n")
		}
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("› " + m.backups[i]))
		} else {
			b.WriteString(normalStyle.Render("  " + m.backups[i]))
		}
	}
	if len(m.backups) > rows {
		b.WriteString("\n")
		b.WriteString(subtitleStyle.Render(fmt.Sprintf("%d/%d", m.cursor+1, len(m.backups))))
	}
	return b.String()
}

func (m *model) renderInput() string {
	label := "New backup name:"
	if m.mode == modeImport {
		label = "Import archive:"
	}
	return inputStyle.Render(label + " " + m.input.View())
}

func (m *model) renderStatus() string {
	if m.busy {
		return m.spin.View() + " " + progressStyle.Render(m.status)
	}
	return subtitleStyle.Render(m.status)
}

func (m *model) renderHelp() string {
	if m.mode != modeBrowse {
		return helpStyle.Render("enter: confirm • esc: cancel")
	}
	return helpStyle.Render(
		"n: new • r: restore theme • l: layout • a: theme + layout • d: delete\n" +
			"i: import • h: history • f5: refresh • u: uninstall • q: quit")
}

func (m *model) renderQuestion() string {
	q := m.question
	return dialogStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		warnStyle.Render(q.title),
		"",
		normalStyle.Render(q.message),
		"",
		helpStyle.Render("y: yes • n: no"),
	))
}

func (m *model) renderNotice(n notice) string {
	style := successStyle
	switch n.kind {
	case noticeWarn:
		style = warnStyle
	case noticeError:
		style = errorStyle
	}
	return dialogStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		style.Render(n.title),
		"",
		normalStyle.Render(n.message),
		"",
		helpStyle.Render("enter: OK"),
	))
}
