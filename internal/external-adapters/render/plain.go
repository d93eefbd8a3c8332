package render

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ochairo/wheelsize/internal/domain/entities"
)

// Plain writes the same tables as Rich using only ASCII, for pipes, logs and
// terminals without color
func Plain(w io.Writer, report *entities.Report) error {
	r := lipgloss.NewRenderer(w)

	if _, err := fmt.Fprintf(w, "%s\n%s\n", summaryTitle, plainTable(r, summaryHeaders, summaryRows(report), summaryNumeric)); err != nil {
		return err
	}

	if len(report.SharedObjects) > 0 {
		if _, err := fmt.Fprintf(w, "\n%s\n%s\n", breakdownTitle, plainTable(r, breakdownHeaders, breakdownRows(report), breakdownNumeric)); err != nil {
			return err
		}
	}

	if note := footnote(report); note != "" {
		if _, err := fmt.Fprintln(w, note); err != nil {
			return err
		}
	}
	return nil
}

// plainTable renders a +---+ bordered table without colors or text attributes
func plainTable(r *lipgloss.Renderer, headers []string, rows [][]string, numeric map[int]bool) string {
	cell := r.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.ASCIIBorder()).
		BorderStyle(r.NewStyle()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row != table.HeaderRow && numeric[col] {
				return cell.Align(lipgloss.Right)
			}
			return cell
		}).
		Render()
}
