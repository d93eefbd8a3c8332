package render

import "github.com/charmbracelet/lipgloss"

// Color palette for rich output, tuned for dark terminal backgrounds
const (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6B7280")
	colorWarning = lipgloss.Color("#F59E0B")
)

// styles are bound to one lipgloss renderer so color detection follows the
// destination writer rather than stdout
type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	cell    lipgloss.Style
	total   lipgloss.Style
	border  lipgloss.Style
	warning lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(colorPrimary),
		header:  r.NewStyle().Bold(true).Padding(0, 1),
		cell:    r.NewStyle().Padding(0, 1),
		total:   r.NewStyle().Bold(true).Padding(0, 1),
		border:  r.NewStyle().Foreground(colorMuted),
		warning: r.NewStyle().Foreground(colorWarning),
	}
}
