package render

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/ochairo/wheelsize/internal/domain/entities"
)

var toolHeaders = []string{"Tool", "Status", "Path"}

// Tools writes the tool probe results as an ASCII table
func Tools(w io.Writer, statuses []entities.ToolStatus) error {
	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		state, path := "missing", noData
		if s.Available {
			state, path = "found", s.Path
		}
		rows = append(rows, []string{s.Name, state, path})
	}

	_, err := fmt.Fprintln(w, plainTable(lipgloss.NewRenderer(w), toolHeaders, rows, nil))
	return err
}
