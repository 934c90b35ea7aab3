package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/shlink-dashboard-tui/internal/ui/styles"
)

const percentWidth = 5

// ShareBar renders the share of a whole, such as a tag's part of all visits.
type ShareBar struct {
	progress progress.Model
}

// NewShareBar creates a share bar with the bar part width set to width.
func NewShareBar(width int) ShareBar {
	return ShareBar{
		progress: progress.New(
			progress.WithScaledGradient("#2d5f9e", "#4696e5"),
			progress.WithWidth(max(width, 5)),
			progress.WithoutPercentage(),
		),
	}
}

// Width returns the width of the bar part.
func (s ShareBar) Width() int {
	return s.progress.Width
}

// View renders part/total as a bar followed by its percentage.
func (s ShareBar) View(part, total int) string {
	ratio := Ratio(part, total)
	pct := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Width(percentWidth).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.0f%%", ratio*100))
	return s.progress.ViewAs(ratio) + pct
}

// Ratio returns part/total clamped to [0, 1], or 0 when total is not positive.
func Ratio(part, total int) float64 {
	if total <= 0 || part <= 0 {
		return 0
	}
	return min(float64(part)/float64(total), 1)
}
