package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Label = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888899"))

	Value = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#00ccff")).
		Bold(true)

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	High = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	Mid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	Low  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// Field is one labelled line of a summary panel.
type Field struct {
	Label string
	Value string
}

func F(label, format string, args ...any) Field {
	return Field{Label: label, Value: fmt.Sprintf(format, args...)}
}

// Summary renders a titled panel with aligned label/value rows.
func Summary(title string, fields ...Field) string {
	width := 0
	for _, f := range fields {
		width = max(width, len(f.Label))
	}

	var b strings.Builder
	b.WriteString(Title.Render(title))
	for _, f := range fields {
		b.WriteString("\n")
		b.WriteString(Label.Render(f.Label + strings.Repeat(" ", width-len(f.Label))))
		b.WriteString("  ")
		b.WriteString(Value.Render(f.Value))
	}
	return Panel.Render(b.String())
}

// Efficiency renders a fraction in [0, 1] as a percentage coloured by
// magnitude.
func Efficiency(v float64) string {
	s := fmt.Sprintf("%.2f%%", 100*v)
	switch {
	case v > 0.8:
		return High.Render(s)
	case v > 0.4:
		return Mid.Render(s)
	}
	return Low.Render(s)
}

// Bar renders a fraction in [0, 1] as a coloured bar of the given width.
func Bar(v float64, width int) string {
	filled := int(v * float64(width))
	filled = min(max(filled, 0), width)

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	switch {
	case v > 0.8:
		return High.Render(bar)
	case v > 0.4:
		return Mid.Render(bar)
	}
	return Low.Render(bar)
}
