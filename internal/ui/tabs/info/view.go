package info

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/shlink-dashboard-tui/internal/config"
	"github.com/j-veylop/shlink-dashboard-tui/internal/shlink"
	"github.com/j-veylop/shlink-dashboard-tui/internal/ui/styles"
	"github.com/j-veylop/shlink-dashboard-tui/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	sections := []string{
		m.renderTitle(),
		m.renderConfigCard(),
		m.renderServerCard(),
		m.renderAboutCard(),
	}

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 80)
}

// renderTitle renders the info tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration, server capabilities and build information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

// renderConfigCard renders the configuration paths and settings.
func (m *Model) renderConfigCard() string {
	rows := []string{styles.CardTitleStyle.Render("Configuration"), ""}

	if m.config != nil {
		rows = append(rows,
			configRow("Servers File", m.config.ServersPath),
			configRow("Database", m.config.DatabasePath),
			configRow("Log File", m.config.LogPath),
			configRow("Log Level", m.config.LogLevel),
			configRow("HTTP Timeout", m.config.HTTPTimeout.String()),
			configRow("Visits Refresh", m.config.VisitsRefreshInterval.String()),
			configRow("Real-time Updates", enabled(m.config.RealTimeUpdates)),
			configRow("Event Batching", batching(m.config)),
			configRow("History Retention", retention(m.config)),
			configRow("Validate URLs", enabled(m.config.ValidateURLs)),
		)
	} else {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	}

	opts := m.state.GetQROptions()
	rows = append(rows,
		configRow("QR Code", fmt.Sprintf("%dpx %s, margin %d", opts.Size, opts.Format, opts.Margin)),
		"",
		styles.HelpStyle.Render("Press 'c' or 's' to copy paths"),
	)

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderServerCard renders the features available on the connected server.
func (m *Model) renderServerCard() string {
	rows := []string{styles.CardTitleStyle.Render("Server"), ""}

	server, status, ok := m.state.GetConnection()
	if !ok {
		rows = append(rows, styles.HelpStyle.Render("Not connected"))
		return styles.CardStyle.Width(m.cardWidth()).Render(
			lipgloss.JoinVertical(lipgloss.Left, rows...),
		)
	}

	live := "polling"
	if m.state.IsLive() {
		live = styles.SuccessTextStyle.Render("live")
	}

	caps := m.state.QRCapabilities()
	rows = append(rows,
		configRow("Name", server.Name),
		configRow("URL", server.NormalizedURL()),
		configRow("Version", status.Version),
		configRow("Updates", live),
		"",
		configRow("Short code length", supported(shlink.SupportsShortCodeLength(status.Version))),
		configRow("Domains", supported(shlink.SupportsListingDomains(status.Version))),
		configRow("QR svg", supported(caps.SvgIsSupported)),
		configRow("QR margin", supported(caps.MarginIsSupported)),
		configRow("QR size", qrSizeMode(caps.UseSizeInPath)),
	)

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderAboutCard renders the version information card.
func (m *Model) renderAboutCard() string {
	rows := []string{
		styles.CardTitleStyle.Render("About Shlink Dashboard TUI"),
		"",
		configRow("Version", version.GetVersion()),
		configRow("Build Date", version.GetDate()),
		configRow("Git Commit", version.GetCommit()),
		configRow("Go Version", runtime.Version()),
		configRow("Platform", runtime.GOOS+"/"+runtime.GOARCH),
		"",
		"Servers: " + styles.InfoTextStyle.Render(strconv.Itoa(m.state.GetServerCount())),
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// configRow renders a key-value row.
func configRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(20).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

func enabled(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func supported(b bool) string {
	if b {
		return styles.SuccessTextStyle.Render("yes")
	}
	return styles.HelpStyle.Render("no")
}

func qrSizeMode(inPath bool) string {
	if inPath {
		return "path segment"
	}
	return "query parameter"
}

func batching(cfg *config.Config) string {
	if cfg.MercureBatchInterval <= 0 {
		return "off"
	}
	return cfg.MercureBatchInterval.String()
}

func retention(cfg *config.Config) string {
	if cfg.HistoryRetention <= 0 {
		return "forever"
	}
	return fmt.Sprintf("%d days", int(cfg.HistoryRetention.Hours()/24))
}
