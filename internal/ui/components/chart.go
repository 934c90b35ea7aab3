// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/shlink-dashboard-tui/internal/models"
	"github.com/j-veylop/shlink-dashboard-tui/internal/ui/styles"
)

// HeatmapBlocks are Unicode block characters for heatmaps (low to high intensity).
var HeatmapBlocks = []rune{'░', '▒', '▓', '█'}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// DefaultDayNames labels RenderWeeklyPattern when no names are given.
var DefaultDayNames = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	// A single point renders as a flat line.
	if len(data) == 1 {
		data = []float64{data[0], data[0]}
	}

	width = max(width, 20)
	height = max(height, 3)

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(0),
		asciigraph.SeriesColors(asciigraph.Blue),
		asciigraph.Caption(caption),
	)
}

// RenderBarChart creates a simple horizontal bar chart.
func RenderBarChart(values []float64, labels []string, width int) string {
	if len(values) == 0 {
		return ""
	}

	maxVal := maxOf(values)

	maxLabelLen := 0
	for _, l := range labels {
		maxLabelLen = max(maxLabelLen, lipgloss.Width(l))
	}

	// Leave room for the label and the value.
	barWidth := max(width-maxLabelLen-10, 10)

	var lines []string
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}

		barLen := max(int((v/maxVal)*float64(barWidth)), 0)
		bar := lipgloss.NewStyle().Foreground(styles.Primary).Render(strings.Repeat("█", barLen))

		lines = append(lines, fmt.Sprintf("%*s │%s %.0f", maxLabelLen, label, bar, v))
	}

	return strings.Join(lines, "\n")
}

// RenderHourlyHeatmap creates a 24-hour heatmap, one cell per hour of the day.
func RenderHourlyHeatmap(patterns []float64) string {
	if len(patterns) != 24 {
		padded := make([]float64, 24)
		copy(padded, patterns)
		patterns = padded
	}

	maxVal := maxOf(patterns)

	var result strings.Builder
	result.WriteString("00 ")

	for i, v := range patterns {
		intensity := scale(v, maxVal, len(HeatmapBlocks))
		result.WriteString(intensityStyle(intensity).Render(string(HeatmapBlocks[intensity])))

		if i == 11 {
			result.WriteString(" ")
		}
	}

	result.WriteString(" 23")
	return result.String()
}

// RenderWeeklyPattern renders one spark per weekday, starting on Sunday.
func RenderWeeklyPattern(patterns []float64, dayNames []string) string {
	if len(patterns) != 7 {
		padded := make([]float64, 7)
		copy(padded, patterns)
		patterns = padded
	}
	if len(dayNames) != 7 {
		dayNames = DefaultDayNames
	}

	maxVal := maxOf(patterns)

	parts := make([]string, 0, len(patterns))
	for i, v := range patterns {
		spark := string(sparkChars[scale(v, maxVal, len(sparkChars))])
		parts = append(parts, fmt.Sprintf("%s %s", dayNames[i], spark))
	}

	return strings.Join(parts, " ")
}

// RenderSparkline creates a compact inline sparkline chart.
func RenderSparkline(values []float64, width int) string {
	return renderSparkline(values, width, false)
}

// RenderColoredSparkline creates a sparkline colored by intensity.
func RenderColoredSparkline(values []float64, width int) string {
	return renderSparkline(values, width, true)
}

func renderSparkline(values []float64, width int, colored bool) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	maxVal := maxOf(values)

	// Sample values to fit width
	var result strings.Builder
	step := max(float64(len(values))/float64(width), 1)

	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		val := values[int(float64(i)*step)]
		spark := string(sparkChars[scale(val, maxVal, len(sparkChars))])
		if colored {
			spark = intensityStyle(scale(val, maxVal, len(HeatmapBlocks))).Render(spark)
		}
		result.WriteString(spark)
	}

	return result.String()
}

// HourOfDayDistribution folds hourly buckets into 24 hour-of-day totals in loc.
func HourOfDayDistribution(hourly []models.HourlyVisits, loc *time.Location) []float64 {
	if loc == nil {
		loc = time.Local
	}
	dist := make([]float64, 24)
	for _, hv := range hourly {
		dist[hv.Hour.In(loc).Hour()] += float64(hv.Visits)
	}
	return dist
}

// WeekdayDistribution folds hourly buckets into 7 weekday totals in loc.
func WeekdayDistribution(hourly []models.HourlyVisits, loc *time.Location) []float64 {
	if loc == nil {
		loc = time.Local
	}
	dist := make([]float64, 7)
	for _, hv := range hourly {
		dist[hv.Hour.In(loc).Weekday()] += float64(hv.Visits)
	}
	return dist
}

func maxOf(values []float64) float64 {
	maxVal := 0.0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		return 1
	}
	return maxVal
}

// scale maps v in [0, maxVal] onto [0, levels).
func scale(v, maxVal float64, levels int) int {
	return min(max(int((v/maxVal)*float64(levels-1)), 0), levels-1)
}

func intensityStyle(intensity int) lipgloss.Style {
	switch intensity {
	case 0:
		return lipgloss.NewStyle().Foreground(styles.Subtle)
	case 1:
		return lipgloss.NewStyle().Foreground(styles.Secondary)
	case 2:
		return lipgloss.NewStyle().Foreground(styles.Primary)
	default:
		return lipgloss.NewStyle().Foreground(styles.Success)
	}
}
