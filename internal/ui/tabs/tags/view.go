package tags

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/shlink-dashboard-tui/internal/app"
	"github.com/j-veylop/shlink-dashboard-tui/internal/ui/styles"
)

// View renders the tags tab.
func (m *Model) View() string {
	if !m.state.IsConnected() {
		return m.renderMessage("Not Connected", "Connect to a server to manage its tags.")
	}

	tags := m.state.GetTags()
	if len(tags) == 0 && m.state.IsLoading(app.ResourceTags) {
		return m.spinner.ViewCentered(m.width, m.height)
	}

	m.refreshRows()

	sections := []string{m.renderTitle(len(tags))}

	switch {
	case len(tags) == 0:
		sections = append(sections, m.renderMessage("No Tags", "Tags added to short URLs show up here."))
	case m.mode == modeRename:
		sections = append(sections, m.renderRename(), m.renderTable())
	case m.mode == modeConfirmDelete:
		sections = append(sections, m.renderDeleteConfirm(), m.renderTable())
	default:
		sections = append(sections, m.renderTable(), m.renderShare())
	}

	sections = append(sections, m.renderFooter())

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 106)
}

func (m *Model) renderTitle(count int) string {
	title := styles.TitleStyle.Render("Tags")
	subtitle := styles.HelpStyle.Render(fmt.Sprintf("%d tags · by %s", count, m.sortBy))
	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderMessage(title, text string) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		styles.SubTitleStyle.Render(title),
		"",
		styles.HelpStyle.Render(text),
		"",
	)
	return styles.CardStyle.Width(m.cardWidth()).Render(content)
}

func (m *Model) renderTable() string {
	return styles.CardStyle.Width(m.cardWidth()).Render(m.table.View())
}

// renderShare renders the selected tag's part of all tagged visits.
func (m *Model) renderShare() string {
	tag, ok := m.selected()
	if !ok {
		return ""
	}
	total := totalVisits(m.state.GetTags())

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TagStyle.Render(tag.Tag)+" "+
			styles.HelpStyle.Render(fmt.Sprintf("%d of %d tagged visits", tag.VisitsCount, total)),
		m.shareBar.View(tag.VisitsCount, total),
	)
	return styles.CardStyle.Width(m.cardWidth()).Render(content)
}

func (m *Model) renderRename() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.CardTitleStyle.Render("Rename Tag "+m.target),
		"",
		styles.FocusedBorderStyle.Width(46).Render(m.renameInput.View()),
		"",
		styles.HelpStyle.Render("Spaces become dashes. Enter: save | Esc: cancel"),
	)
	return styles.CenterHorizontal(styles.ModalContentStyle.Width(56).Render(content), m.width)
}

// renderDeleteConfirm renders the delete confirmation dialog.
func (m *Model) renderDeleteConfirm() string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		styles.WarningTextStyle.Bold(true).Render("Delete Tag?"),
		"",
		"Are you sure you want to delete:",
		styles.ErrorTextStyle.Render(m.target),
		"",
		"Short URLs keep existing without it.",
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			styles.ButtonActiveStyle.Render(" (Y)es "),
			"  ",
			styles.ButtonInactiveStyle.Render(" (N)o "),
		),
		"",
	)
	return styles.CenterHorizontal(styles.ModalContentStyle.Width(50).Render(content), m.width)
}

// renderFooter renders the footer with keyboard shortcuts.
func (m *Model) renderFooter() string {
	var shortcuts []string

	switch m.mode {
	case modeRename:
		shortcuts = []string{
			styles.HelpKeyStyle.Render("Enter") + " save",
			styles.HelpKeyStyle.Render("Esc") + " cancel",
		}
	case modeConfirmDelete:
		shortcuts = []string{
			styles.HelpKeyStyle.Render("Y") + " confirm",
			styles.HelpKeyStyle.Render("N") + " cancel",
		}
	default:
		shortcuts = []string{
			styles.HelpKeyStyle.Render("Enter") + " short URLs",
			styles.HelpKeyStyle.Render("o") + " order",
			styles.HelpKeyStyle.Render("e") + " rename",
			styles.HelpKeyStyle.Render("d") + " delete",
		}
	}

	return lipgloss.NewStyle().
		MarginTop(1).
		Foreground(styles.TextMuted).
		Render(strings.Join(shortcuts, styles.HelpSeparatorStyle.Render(" | ")))
}
