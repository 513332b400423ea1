package editor

import (
	"github.com/charmbracelet/lipgloss"
)

const aboutText = "Marknote\n\n" +
	"Write markdown notes and generate summaries,\n" +
	"locally or with an LLM provider.\n\n" +
	"Press any key to close."

const helpText = "ctrl+r summarize • ctrl+s save • ctrl+o open • ctrl+n new • tab focus • f1 about • ctrl+q quit"

var (
	accent = lipgloss.Color("#7D56F4")
	muted  = lipgloss.Color("#626262")

	titleStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted)

	focusedPaneStyle = paneStyle.BorderForeground(accent)

	placeholderStyle = lipgloss.NewStyle().Foreground(muted).Italic(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#3C3C3C")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().Foreground(muted).Padding(0, 1)

	aboutStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(accent).
			Padding(1, 3)
)

// View implements tea.Model.
func (m Model) View() string {
	if m.showAbout {
		box := aboutStyle.Render(aboutText)
		if m.width > 0 && m.height > 0 {
			return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
		}
		return box
	}

	notesPane, summaryPane := paneStyle, paneStyle
	if m.focus == focusNotes {
		notesPane = focusedPaneStyle
	} else {
		summaryPane = focusedPaneStyle
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Markdown Notes"),
		notesPane.Render(m.notes.View()),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Summary"),
		summaryPane.Render(m.summary.View()),
	)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	var bottom string
	if m.prompt != promptNone {
		bottom = statusStyle.Width(m.width).Render(m.input.View())
	} else {
		bottom = lipgloss.JoinVertical(lipgloss.Left,
			statusStyle.Width(m.width).Render(m.status),
			helpStyle.Render(helpText),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, bottom)
}
