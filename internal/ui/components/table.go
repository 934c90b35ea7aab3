package components

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/shlink-dashboard-tui/internal/ui/styles"
)

// NewTable creates a focused table using the application table styles.
func NewTable(columns []table.Column, height int) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(height, 3)),
	)

	s := table.DefaultStyles()
	s.Header = styles.TableHeaderStyle.Padding(0, 1)
	s.Selected = styles.TableSelectedStyle
	t.SetStyles(s)

	return t
}

// SetRowsKeepingCursor replaces the rows and clamps the cursor to the new size.
func SetRowsKeepingCursor(t *table.Model, rows []table.Row) {
	cursor := t.Cursor()
	t.SetRows(rows)
	if len(rows) > 0 {
		t.SetCursor(min(cursor, len(rows)-1))
	}
}

// FlexWidth splits width across the flexible columns after the fixed ones.
// Columns with a zero width are flexible.
func FlexWidth(columns []table.Column, width int) []table.Column {
	fixed, flex := 0, 0
	for _, c := range columns {
		if c.Width == 0 {
			flex++
		}
		// Each cell carries one column of padding on both sides.
		fixed += c.Width + 2
	}
	if flex == 0 {
		return columns
	}

	each := max((width-fixed)/flex, 10)
	out := make([]table.Column, len(columns))
	for i, c := range columns {
		if c.Width == 0 {
			c.Width = each
		}
		out[i] = c
	}
	return out
}

// Truncate shortens s to width cells, ending with an ellipsis when cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}
