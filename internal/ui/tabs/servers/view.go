package servers

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/shlink-dashboard-tui/internal/app"
	"github.com/j-veylop/shlink-dashboard-tui/internal/models"
	"github.com/j-veylop/shlink-dashboard-tui/internal/ui/styles"
)

// View renders the servers tab.
func (m *Model) View() string {
	m.refreshRows()

	sections := []string{m.renderTitle()}

	switch {
	case m.adding:
		sections = append(sections, m.renderAddForm())
	case m.confirmDelete:
		sections = append(sections, m.renderDeleteConfirm(), m.renderTable())
	default:
		sections = append(sections, m.renderTable())
		if s, ok := m.selected(); ok {
			sections = append(sections, m.renderDetails(s))
		}
	}

	sections = append(sections, m.renderFooter())

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 60), 110)
}

// renderTitle renders the servers tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Servers")

	subtitle := styles.HelpStyle.Render(fmt.Sprintf("%d servers configured", m.state.GetServerCount()))
	if m.state.IsLoading(app.ResourceConnect) {
		subtitle += "  " + m.spinner.ViewWithLabel()
	} else if server, _, ok := m.state.GetConnection(); ok {
		subtitle += "  " + styles.SuccessTextStyle.Render("connected to "+server.Name)
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

// renderTable renders the servers table.
func (m *Model) renderTable() string {
	if m.state.GetServerCount() == 0 {
		return m.renderEmptyState()
	}
	return styles.CardStyle.Width(m.cardWidth()).Render(m.table.View())
}

// renderEmptyState renders the empty state when no servers exist.
func (m *Model) renderEmptyState() string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		styles.SubTitleStyle.Render("No Servers Configured"),
		"",
		styles.HelpStyle.Render("Add a Shlink server to start tracking its visits."),
		"",
		styles.InfoTextStyle.Render("Press 'n' to add a new server"),
		"",
	)
	return styles.CardStyle.Width(m.cardWidth()).Render(content)
}

// renderDetails renders the selected server profile and its last status.
func (m *Model) renderDetails(s models.ServerWithStatus) string {
	rows := []string{
		styles.CardTitleStyle.Render(s.Name),
		detailRow("URL", styles.LinkStyle.Render(s.NormalizedURL())),
		detailRow("API key", s.MaskedAPIKey()),
	}
	if !s.AddedAt.IsZero() {
		rows = append(rows, detailRow("Added", s.AddedAt.Local().Format("2006-01-02 15:04")))
	}

	statusStyle := styles.GetStatusStyle(s.Status)
	switch {
	case s.Status == nil:
		rows = append(rows, detailRow("Status", statusStyle.Render("never connected")))
	case s.Status.Error != "":
		rows = append(rows, detailRow("Status", statusStyle.Render(s.Status.Error)))
	default:
		rows = append(rows, detailRow("Status", statusStyle.Render(statusText(s.Status))))
		if s.Status.Version != "" {
			rows = append(rows, detailRow("Version", s.Status.Version))
		}
		if !s.Status.ConnectedAt.IsZero() {
			rows = append(rows, detailRow("Connected", s.Status.ConnectedAt.Local().Format("2006-01-02 15:04:05")))
		}
	}
	if s.IsSelected {
		rows = append(rows, "", styles.HelpStyle.Render("Connected automatically on start"))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func detailRow(label, value string) string {
	return styles.HelpStyle.Width(12).Render(label) + value
}

// renderAddForm renders the add server form.
func (m *Model) renderAddForm() string {
	cardWidth := min(max(m.width-10, 50), 80)

	labels := []string{"Name:", "URL:", "API Key:"}

	rows := []string{styles.CardTitleStyle.Render("Add New Server"), ""}
	for i, label := range labels {
		labelStyle, inputStyle := styles.BlurredStyle, styles.BlurredBorderStyle
		prefix := "  "
		if m.focusedField == formField(i) {
			labelStyle, inputStyle = styles.FocusedStyle, styles.FocusedBorderStyle
			prefix = "> "
		}
		rows = append(rows,
			labelStyle.Render(prefix+label),
			inputStyle.Width(cardWidth-10).Render(m.inputs[i].View()),
			"",
		)
	}

	submitStyle := styles.ButtonInactiveStyle
	cancelStyle := styles.ButtonInactiveStyle
	if m.focusedField == fieldSubmit {
		submitStyle = styles.ButtonActiveStyle
	}
	if m.focusedField == fieldCancel {
		cancelStyle = styles.ButtonActiveStyle
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Center,
		submitStyle.Render(" Add Server "),
		"  ",
		cancelStyle.Render(" Cancel "),
	))

	if m.formErr != nil {
		rows = append(rows, "", styles.ErrorTextStyle.Render(m.formErr.Error()))
	}

	rows = append(rows, "", styles.HelpStyle.Render("Tab: next field | Enter: submit | Esc: cancel"))

	return styles.ModalContentStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderDeleteConfirm renders the delete confirmation dialog.
func (m *Model) renderDeleteConfirm() string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		styles.WarningTextStyle.Bold(true).Render("Delete Server?"),
		"",
		"Are you sure you want to delete:",
		styles.ErrorTextStyle.Render(m.pendingDelete.Name),
		"",
		"Its stored visits history is kept.",
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

	switch {
	case m.adding:
		shortcuts = []string{
			styles.HelpKeyStyle.Render("Tab") + " next",
			styles.HelpKeyStyle.Render("Enter") + " submit",
			styles.HelpKeyStyle.Render("Esc") + " cancel",
		}
	case m.confirmDelete:
		shortcuts = []string{
			styles.HelpKeyStyle.Render("Y") + " confirm",
			styles.HelpKeyStyle.Render("N") + " cancel",
		}
	default:
		shortcuts = []string{
			styles.HelpKeyStyle.Render("Enter") + " connect",
			styles.HelpKeyStyle.Render("n") + " add",
			styles.HelpKeyStyle.Render("d") + " delete",
			styles.HelpKeyStyle.Render("c") + " copy URL",
			styles.HelpKeyStyle.Render("r") + " refresh",
		}
	}

	return lipgloss.NewStyle().
		MarginTop(1).
		Foreground(styles.TextMuted).
		Render(strings.Join(shortcuts, styles.HelpSeparatorStyle.Render(" | ")))
}
