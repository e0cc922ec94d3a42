// Package static provides non-interactive terminal output components.
package static

import (
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/deepesdl/deep-code/internal/history"
	"github.com/deepesdl/deep-code/internal/ui/styles"
)

// HistoryHeaders are the columns of HistoryTableRow.
var HistoryHeaders = []string{"TIME", "KIND", "ID", "BRANCH", "STATUS"}

// HistoryTableRow formats a ledger entry as a table row.
func HistoryTableRow(e history.Entry) []string {
	return []string{
		e.Time.Local().Format(time.DateTime),
		string(e.Kind),
		e.ID,
		e.Branch,
		entryStatus(e),
	}
}

func entryStatus(e history.Entry) string {
	switch {
	case e.Orphaned:
		return styles.WarningStyle.Render("orphaned branch")
	case e.FailedStep != "":
		return styles.ErrorStyle.Render("failed at " + e.FailedStep)
	case e.Error != "":
		return styles.ErrorStyle.Render("failed")
	case e.PRURL != "":
		return e.PRURL
	default:
		return styles.MutedStyle.Render("unknown")
	}
}

// RenderTable creates a borderless table with bold headers. Column widths
// follow the content.
func RenderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	var output strings.Builder

	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		BorderRow(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.HeaderStyle.PaddingRight(2)
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})

	output.WriteString(t.String())
	output.WriteString("\n")

	return output.String()
}
