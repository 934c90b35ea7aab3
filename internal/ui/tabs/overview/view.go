package overview

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

const (
	topShortCodesShown = 5
	chartHeight        = 8
)

// View renders the overview tab.
func (m *Model) View() string {
	if m.state.IsLoading(app.ResourceConnect) && !m.state.IsConnected() {
		return m.spinner.ViewCentered(m.width, m.height)
	}
	if !m.state.IsConnected() {
		return m.renderDisconnected()
	}

	sections := []string{
		m.renderTitle(),
		m.renderVisitsCard(),
		m.renderHistoryCard(),
	}
	if history := m.state.GetHistory(); history != nil && len(history.Hourly) > 0 {
		sections = append(sections, m.renderActivityCard(history))
	}
	if history := m.state.GetHistory(); history != nil && len(history.TopShortCodes) > 0 {
		sections = append(sections, m.renderTopShortCodesCard(history))
	}
	if recent := m.state.GetRecentVisits(); len(recent) > 0 {
		sections = append(sections, m.renderRecentVisitsCard(recent))
	}

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 100)
}

func (m *Model) renderDisconnected() string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		styles.SubTitleStyle.Render("Not Connected"),
		"",
		styles.HelpStyle.Render("Pick a server in the Servers tab to see its visits."),
		"",
		styles.InfoTextStyle.Render("Press '4' to open the Servers tab"),
		"",
	)
	return styles.CenterHorizontal(styles.CardStyle.Width(m.cardWidth()).Render(content), m.width)
}

func (m *Model) renderTitle() string {
	server, status, _ := m.state.GetConnection()

	title := styles.TitleStyle.Render(server.Name)

	info := []string{server.NormalizedURL()}
	if status.Version != "" {
		info = append(info, "v"+status.Version)
	}
	subtitle := styles.HelpStyle.Render(strings.Join(info, " · "))
	if m.state.IsLive() {
		subtitle += "  " + styles.LiveStyle.Render("● live")
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

// renderVisitsCard renders the aggregated visits counter.
func (m *Model) renderVisitsCard() string {
	overview := m.state.GetOverview()

	var count string
	switch {
	case overview.Loading:
		count = m.spinner.View() + " " + styles.HelpStyle.Render("Loading...")
	case overview.Error:
		count = styles.ErrorTextStyle.Render("Failed to load visits")
	default:
		count = styles.CountStyle.Render(formatCount(m.displayedCount(overview.VisitsCount)))
	}

	rows := []string{
		styles.CardTitleStyle.Render("Visits"),
		count,
	}

	if history := m.state.GetHistory(); history != nil && !overview.Loading && !overview.Error {
		if growth := history.Growth(); growth != 0 {
			rows = append(rows, styles.SuccessTextStyle.Render(
				fmt.Sprintf("+%s in the last %s", formatCount(growth), strings.ToLower(history.Range.String()))))
		}
	}

	if since := m.state.TimeSinceUpdate(); since > 0 {
		rows = append(rows, styles.HelpStyle.Render("Updated "+formatAgo(since)))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderHistoryCard() string {
	timeRange := m.state.GetTimeRange()
	title := styles.CardTitleStyle.Render("Visits History") + "  " +
		styles.HelpStyle.Render(fmt.Sprintf("[%s] press t to change", timeRange))

	history := m.state.GetHistory()
	var chart string
	if history == nil || len(history.Snapshots) == 0 {
		chart = styles.HelpStyle.Render("No snapshots recorded for this range yet")
	} else {
		chart = components.RenderLineChart(history.Series(), m.cardWidth()-16, chartHeight,
			fmt.Sprintf("total visits, %d snapshots", len(history.Snapshots)))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, title, chart))
}

// renderActivityCard renders when the pushed visits happened.
func (m *Model) renderActivityCard(history *models.VisitsHistory) string {
	rows := []string{styles.CardTitleStyle.Render("Live Activity")}

	counts := make([]float64, len(history.Hourly))
	total := 0
	for i, hv := range history.Hourly {
		counts[i] = float64(hv.Visits)
		total += hv.Visits
	}

	rows = append(rows,
		fmt.Sprintf("%s  %s", components.RenderColoredSparkline(counts, m.cardWidth()-20),
			styles.HelpStyle.Render(fmt.Sprintf("%d visits", total))),
		"",
		styles.HelpStyle.Render("By hour"),
		components.RenderHourlyHeatmap(components.HourOfDayDistribution(history.Hourly, m.location)),
	)

	if history.Range != models.TimeRange24Hours {
		rows = append(rows,
			"",
			styles.HelpStyle.Render("By weekday"),
			components.RenderWeeklyPattern(components.WeekdayDistribution(history.Hourly, m.location), nil),
		)
	}

	if peak, ok := history.PeakHour(); ok {
		rows = append(rows, "", styles.HelpStyle.Render(fmt.Sprintf("Peak: %d visits at %s",
			peak.Visits, peak.Hour.In(m.location).Format("Jan 2 15:04"))))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderTopShortCodesCard(history *models.VisitsHistory) string {
	top := history.TopShortCodes
	if len(top) > topShortCodesShown {
		top = top[:topShortCodesShown]
	}

	values := make([]float64, len(top))
	labels := make([]string, len(top))
	for i, sc := range top {
		values[i] = float64(sc.Visits)
		labels[i] = sc.ShortCode
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left,
		styles.CardTitleStyle.Render("Top Short URLs"),
		components.RenderBarChart(values, labels, m.cardWidth()-6),
	))
}

func (m *Model) renderRecentVisitsCard(recent []models.VisitEvent) string {
	rows := []string{styles.CardTitleStyle.Render("Recent Visits")}
	width := m.cardWidth() - 6

	for _, v := range recent {
		line := fmt.Sprintf("%s  %s", styles.HelpStyle.Render(v.VisitedAt.In(m.location).Format("15:04:05")),
			styles.LinkStyle.Render(v.ShortCode))
		if v.Referer != "" {
			line += "  " + styles.HelpStyle.Render("from "+v.Referer)
		}
		rows = append(rows, components.Truncate(line, width))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// formatCount renders n with thousands separators.
func formatCount(n int) string {
	if n < 0 {
		return "-" + formatCount(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func formatAgo(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
}
