package shorturls

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/shlink-dashboard-tui/internal/app"
	"github.com/j-veylop/shlink-dashboard-tui/internal/models"
	"github.com/j-veylop/shlink-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/shlink-dashboard-tui/internal/ui/styles"
)

const visitsShown = 10

var orderLabels = map[models.OrderField]string{
	models.OrderByDateCreated: "newest",
	models.OrderByVisits:      "most visited",
	models.OrderByShortCode:   "short code",
	models.OrderByLongURL:     "long URL",
	models.OrderByTitle:       "title",
}

// View renders the short URLs tab.
func (m *Model) View() string {
	if !m.state.IsConnected() {
		return m.renderDisconnected()
	}

	list := m.state.GetShortURLs()
	if list == nil && m.state.IsLoading(app.ResourceShortURLs) {
		return m.spinner.ViewCentered(m.width, m.height)
	}

	m.refreshRows()

	sections := []string{m.renderTitle(list)}

	switch m.mode {
	case modeCreate:
		sections = append(sections, m.renderCreateForm())
	case modeConfirmDelete:
		sections = append(sections, m.renderDeleteConfirm(), m.renderTable(list))
	case modeVisits:
		sections = append(sections, m.renderVisits())
	default:
		if m.mode == modeSearch {
			sections = append(sections, m.search.View())
		}
		sections = append(sections, m.renderTable(list))
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
	return max(m.width-6, 60)
}

func (m *Model) renderDisconnected() string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		styles.SubTitleStyle.Render("Not Connected"),
		"",
		styles.HelpStyle.Render("Connect to a server to manage its short URLs."),
		"",
	)
	return styles.CenterHorizontal(styles.CardStyle.Width(min(m.cardWidth(), 80)).Render(content), m.width)
}

func (m *Model) renderTitle(list *models.ShortURLsList) string {
	title := styles.TitleStyle.Render("Short URLs")

	params := m.state.GetShortURLsParams()
	var info []string
	if list != nil {
		p := list.Pagination
		info = append(info,
			fmt.Sprintf("%d short URLs", p.TotalItems),
			fmt.Sprintf("page %d/%d", p.CurrentPage, max(p.PagesCount, 1)),
		)
	}
	if label, ok := orderLabels[params.OrderBy.Field]; ok {
		info = append(info, "by "+label)
	}
	subtitle := styles.HelpStyle.Render(strings.Join(info, " · "))

	var filters []string
	if params.SearchTerm != "" {
		filters = append(filters, fmt.Sprintf("search %q", params.SearchTerm))
	}
	for _, tag := range params.Tags {
		filters = append(filters, styles.TagStyle.Render(tag))
	}
	if len(filters) > 0 {
		subtitle += "  " + styles.InfoTextStyle.Render("filtered: ") + strings.Join(filters, " ")
	}
	if m.state.IsLoading(app.ResourceShortURLs) {
		subtitle += "  " + m.spinner.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderTable(list *models.ShortURLsList) string {
	if list == nil || len(list.Data) == 0 {
		return m.renderEmptyState()
	}
	return styles.CardStyle.Width(m.cardWidth()).Render(m.table.View())
}

func (m *Model) renderEmptyState() string {
	hint := "Press 'n' to create a short URL"
	params := m.state.GetShortURLsParams()
	if params.SearchTerm != "" || len(params.Tags) > 0 {
		hint = "Press esc to clear the filters"
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		styles.SubTitleStyle.Render("No Short URLs"),
		"",
		styles.InfoTextStyle.Render(hint),
		"",
	)
	return styles.CardStyle.Width(m.cardWidth()).Render(content)
}

// renderDetails renders the selected short URL with its QR code URL.
func (m *Model) renderDetails(s models.ShortURL) string {
	width := m.cardWidth() - 20
	rows := []string{
		styles.CardTitleStyle.Render(s.ShortCode),
		detailRow("Short URL", styles.LinkStyle.Render(s.ShortURL)),
		detailRow("Long URL", components.Truncate(s.LongURL, width)),
	}
	if s.Title != nil && *s.Title != "" {
		rows = append(rows, detailRow("Title", components.Truncate(*s.Title, width)))
	}
	if len(s.Tags) > 0 {
		tags := make([]string, len(s.Tags))
		for i, tag := range s.Tags {
			tags[i] = styles.TagStyle.Render(tag)
		}
		rows = append(rows, detailRow("Tags", strings.Join(tags, " ")))
	}
	if s.Meta.MaxVisits != nil {
		rows = append(rows, detailRow("Max visits", fmt.Sprintf("%d/%d", s.VisitsCount, *s.Meta.MaxVisits)))
	}
	if s.IsExpired(time.Now()) {
		rows = append(rows, detailRow("Status", styles.WarningTextStyle.Render("expired")))
	}
	rows = append(rows, detailRow("QR code", components.Truncate(m.state.QRCodeURL(s.ShortURL), width)))

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func detailRow(label, value string) string {
	return styles.HelpStyle.Width(12).Render(label) + value
}

// renderCreateForm renders the create short URL form.
func (m *Model) renderCreateForm() string {
	cardWidth := min(max(m.width-10, 50), 80)

	labels := []string{"Long URL:", "Custom slug:", "Tags:", "Max visits:"}

	rows := []string{styles.CardTitleStyle.Render("New Short URL"), ""}
	for i, label := range labels {
		focused := m.focusedField == formField(i)

		labelStyle, inputStyle := styles.BlurredStyle, styles.BlurredBorderStyle
		prefix := "  "
		if focused {
			labelStyle, inputStyle = styles.FocusedStyle, styles.FocusedBorderStyle
			prefix = "> "
		}
		rows = append(rows,
			labelStyle.Render(prefix+label),
			inputStyle.Width(cardWidth-10).Render(m.inputs[i].View()),
		)
	}
	rows = append(rows, "")

	submitStyle := styles.ButtonInactiveStyle
	cancelStyle := styles.ButtonInactiveStyle
	if m.focusedField == fieldSubmit {
		submitStyle = styles.ButtonActiveStyle
	}
	if m.focusedField == fieldCancel {
		cancelStyle = styles.ButtonActiveStyle
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Center,
		submitStyle.Render(" Create "),
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
		styles.WarningTextStyle.Bold(true).Render("Delete Short URL?"),
		"",
		"Are you sure you want to delete:",
		styles.ErrorTextStyle.Render(m.pendingDelete.ShortURL),
		"",
		"Its visits will be lost. This action cannot be undone.",
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			styles.ButtonActiveStyle.Render(" (Y)es "),
			"  ",
			styles.ButtonInactiveStyle.Render(" (N)o "),
		),
		"",
	)

	return styles.CenterHorizontal(styles.ModalContentStyle.Width(60).Render(content), m.width)
}

// renderVisits renders the latest visits of a short URL.
func (m *Model) renderVisits() string {
	rows := []string{styles.CardTitleStyle.Render("Visits of " + m.visitsFor)}

	switch {
	case m.visits == nil:
		rows = append(rows, m.spinner.View()+" "+styles.HelpStyle.Render("Loading visits..."))
	case len(m.visits.Data) == 0:
		rows = append(rows, styles.HelpStyle.Render("No visits yet"))
	default:
		rows = append(rows, styles.HelpStyle.Render(
			fmt.Sprintf("%d visits in total, latest first", m.visits.Pagination.TotalItems)), "")

		width := m.cardWidth() - 6
		for i, v := range m.visits.Data {
			if i == visitsShown {
				break
			}
			rows = append(rows, components.Truncate(formatVisit(v), width))
		}
	}

	rows = append(rows, "", styles.HelpStyle.Render("Esc: back"))
	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatVisit(v models.Visit) string {
	parts := []string{v.Date.Local().Format("2006-01-02 15:04")}
	if loc := v.VisitLocation; loc != nil && !loc.IsEmpty {
		place := loc.CountryName
		if loc.CityName != "" {
			place = loc.CityName + ", " + place
		}
		parts = append(parts, place)
	}
	if v.Referer != "" {
		parts = append(parts, "from "+v.Referer)
	}
	if v.UserAgent != "" {
		parts = append(parts, v.UserAgent)
	}
	return strings.Join(parts, "  ")
}

// renderFooter renders the footer with keyboard shortcuts.
func (m *Model) renderFooter() string {
	var shortcuts []string

	switch m.mode {
	case modeCreate:
		shortcuts = []string{
			styles.HelpKeyStyle.Render("Tab") + " next",
			styles.HelpKeyStyle.Render("Enter") + " submit",
			styles.HelpKeyStyle.Render("Esc") + " cancel",
		}
	case modeConfirmDelete:
		shortcuts = []string{
			styles.HelpKeyStyle.Render("Y") + " confirm",
			styles.HelpKeyStyle.Render("N") + " cancel",
		}
	case modeSearch:
		shortcuts = []string{
			styles.HelpKeyStyle.Render("Enter") + " search",
			styles.HelpKeyStyle.Render("Esc") + " cancel",
		}
	case modeVisits:
		shortcuts = []string{styles.HelpKeyStyle.Render("Esc") + " back"}
	default:
		shortcuts = []string{
			styles.HelpKeyStyle.Render("/") + " search",
			styles.HelpKeyStyle.Render("o") + " order",
			styles.HelpKeyStyle.Render("[ ]") + " page",
			styles.HelpKeyStyle.Render("n") + " new",
			styles.HelpKeyStyle.Render("d") + " delete",
			styles.HelpKeyStyle.Render("v") + " visits",
			styles.HelpKeyStyle.Render("c") + " copy",
			styles.HelpKeyStyle.Render("x") + " copy QR",
		}
	}

	return lipgloss.NewStyle().
		MarginTop(1).
		Foreground(styles.TextMuted).
		Render(strings.Join(shortcuts, styles.HelpSeparatorStyle.Render(" | ")))
}
