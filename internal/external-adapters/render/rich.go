package render

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ochairo/wheelsize/internal/domain/entities"
)

// Rich writes the summary and breakdown as styled lipgloss tables
func Rich(w io.Writer, report *entities.Report) error {
	st := newStyles(lipgloss.NewRenderer(w))

	summary := summaryRows(report)
	totalRow := len(summary) - 1
	if err := writeRichTable(w, st, summaryTitle, summaryHeaders, summary, summaryNumeric, totalRow); err != nil {
		return err
	}

	if len(report.SharedObjects) > 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		if err := writeRichTable(w, st, breakdownTitle, breakdownHeaders, breakdownRows(report), breakdownNumeric, -1); err != nil {
			return err
		}
	}

	if note := footnote(report); note != "" {
		if _, err := fmt.Fprintln(w, st.warning.Render(note)); err != nil {
			return err
		}
	}
	return nil
}

// writeRichTable renders one titled table; boldRow (if >= 0) is emphasized
func writeRichTable(
	w io.Writer,
	st styles,
	title string,
	headers []string,
	rows [][]string,
	numeric map[int]bool,
	boldRow int,
) error {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(st.border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			var s lipgloss.Style
			switch {
			case row == table.HeaderRow:
				s = st.header
			case row == boldRow:
				s = st.total
			default:
				s = st.cell
			}
			if numeric[col] {
				s = s.Align(lipgloss.Right)
			}
			return s
		})

	_, err := fmt.Fprintf(w, "%s\n%s\n", st.title.Render(title), t.Render())
	return err
}
