package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/modelsketch/pkg/graph"
	"github.com/matzehuels/modelsketch/pkg/pipeline"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success, satisfied constraints
	colorYellow = lipgloss.Color("220") // Amber - warnings, the drag cursor
	colorRed    = lipgloss.Color("167") // Soft red - errors, violated constraints
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	// StyleError for violated constraints.
	StyleError = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+msg)
}

// printWarning prints a warning message.
func printWarning(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+msg)
}

// printDetail prints a detail line (indented).
func printDetail(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, "  "+StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printNextStep prints a suggested next command.
func printNextStep(w io.Writer, description, cmd string) {
	fmt.Fprintln(w, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// =============================================================================
// Stats Display
// =============================================================================

// printStats prints solve statistics on a single line.
func printStats(w io.Writer, s pipeline.Stats, cached bool) {
	parts := []string{
		fmt.Sprintf("%d nodes", s.NodeCount),
		fmt.Sprintf("%d constraints", s.ConstraintCount),
		fmt.Sprintf("%d frames", s.Frames),
	}
	if s.Settled {
		parts = append(parts, "at rest")
	}

	status, statusStyle := iconFresh, styleComputed
	if cached {
		status, statusStyle = iconCached, styleCached
	}

	var line strings.Builder
	line.WriteString("  ")
	for i, part := range parts {
		if i > 0 {
			line.WriteString(StyleDim.Render(" · "))
		}
		line.WriteString(StyleDim.Render(part))
	}
	line.WriteString(StyleDim.Render(" · ") + statusStyle.Render(status))
	fmt.Fprintln(w, line.String())
}

// =============================================================================
// Snapshot Tables
// =============================================================================

// printPositions prints the node positions of a snapshot as a table.
func printPositions(w io.Writer, snap *graph.Snapshot) {
	rows := make([][]string, 0, len(snap.Nodes))
	for _, n := range snap.Nodes {
		pin := ""
		if n.Fixed {
			pin = "fixed"
		}
		rows = append(rows, []string{n.ID, fmt.Sprintf("%.2f", n.X), fmt.Sprintf("%.2f", n.Y), pin})
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("Node", "X", "Y", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case col == 1 || col == 2:
				return StyleNumber
			case col == 3:
				return StyleDim
			}
			return StyleValue
		})
	fmt.Fprintln(w, t.Render())
}

// printConstraints prints every constraint with its quantity and whether
// its bounds hold.
func printConstraints(w io.Writer, snap *graph.Snapshot) {
	if len(snap.Constraints) == 0 {
		return
	}
	rows := make([][]string, 0, len(snap.Constraints))
	for _, c := range snap.Constraints {
		state := iconSuccess
		if !c.Satisfied() {
			state = iconError
		}
		rows = append(rows, []string{c.ID, c.Kind, fmt.Sprintf("%.2f", c.Quantity), bounds(c), state})
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("Constraint", "Kind", "Value", "Bounds", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case col == 2:
				return StyleNumber
			case col == 4 && snap.Constraints[row].Satisfied():
				return StyleSuccess
			case col == 4:
				return StyleError
			}
			return StyleValue
		})
	fmt.Fprintln(w, t.Render())
}

// bounds formats a constraint's bounds for display.
func bounds(c graph.Constraint) string {
	side := func(v *float64, ref string) string {
		switch {
		case ref != "":
			return ref
		case v != nil:
			return fmt.Sprintf("%.2f", *v)
		}
		return "-"
	}
	if c.Kind == graph.KindRail {
		return strings.Join(c.Captives(), ", ")
	}
	lo, hi := side(c.Min, c.MinRef), side(c.Max, c.MaxRef)
	if lo == hi {
		return "= " + lo
	}
	return "[" + lo + ", " + hi + "]"
}
