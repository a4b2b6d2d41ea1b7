// Package ui renders the interactive list and the styled CLI output.
package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme bundles palette + symbols. All UI helpers pull from `current`.
type Theme struct {
	Title    lipgloss.Style
	Success  lipgloss.Style
	Pending  lipgloss.Style
	Accent   lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Selected lipgloss.Style
	Done     lipgloss.Style
	Help     lipgloss.Style
	Border   lipgloss.Style

	BoxUnchecked, BoxChecked string
	SymDone, SymPending      string
}

var current = classicTheme()

// SetTheme switches the active theme by name. Unknown names fall
// back to classic.
func SetTheme(name string) {
	switch strings.ToLower(name) {
	case "neon":
		t := classicTheme()
		t.Title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
		t.Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
		t.Pending = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
		t.BoxUnchecked, t.BoxChecked = "◻", "◼"
		current = t
	case "mono":
		var plain lipgloss.Style
		current = Theme{
			Title: plain, Success: plain, Pending: plain, Accent: plain,
			Muted: plain, Error: plain, Selected: plain, Done: plain,
			Help: plain, Border: lipgloss.NewStyle(),
			BoxUnchecked: "[ ]", BoxChecked: "[x]",
			SymDone: "x", SymPending: "-",
		}
	default:
		current = classicTheme()
	}
}

func classicTheme() Theme {
	return Theme{
		Title:    lipgloss.NewStyle().Bold(true),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Pending:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Accent:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Muted:    lipgloss.NewStyle().Faint(true),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Selected: lipgloss.NewStyle().Bold(true).Reverse(true),
		Done:     lipgloss.NewStyle().Faint(true).Strikethrough(true),
		Help:     lipgloss.NewStyle().Faint(true),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1),
		BoxUnchecked: "☐", BoxChecked: "☑",
		SymDone: "✔", SymPending: "•",
	}
}

// Current returns the active theme.
func Current() Theme { return current }

// OK prints a success line to stdout.
func OK(msg string) {
	fmt.Println(current.Success.Render("✔ " + msg))
}

// Fail prints an error line to stderr.
func Fail(msg string) {
	fmt.Fprintln(os.Stderr, current.Error.Render("✖ "+msg))
}

// Hint prints a muted helper line to stderr.
func Hint(msg string) {
	fmt.Fprintln(os.Stderr, current.Muted.Render(msg))
}

// Panel prints content inside the themed frame.
func Panel(lines []string) {
	fmt.Println(current.Border.Render(strings.Join(lines, "\n")))
}

// ProgressBar renders a Unicode completion bar. The label always
// shows the caller's real counts; only the fill math guards against
// an empty list.
func ProgressBar(done, total, width int) string {
	if width < 5 {
		width = 28
	}
	div := total
	if div <= 0 {
		div = 1
	}
	filled := int(float64(done) / float64(div) * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) +
		fmt.Sprintf("] %d/%d", done, total)
}
