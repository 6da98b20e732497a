package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"go.trai.ch/zerr"

	realign "github.com/albertocavalcante/go-realign"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			MarginTop(1)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	headerCellStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle       = lipgloss.NewStyle().Padding(0, 1)
)

// WriteText renders r as a summary line followed by one table per
// non-empty section.
func WriteText(w io.Writer, r *realign.Result) error {
	rep := New(r)
	var sb strings.Builder

	s := rep.Summary
	sb.WriteString(titleStyle.Render("Alignment " + rep.RunID))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%d projects, %d changed, %d aligned, %d skipped, %d injected, %d violations, %d properties, %d conflicts\n",
		s.Projects, s.Changed, s.Aligned, s.Skipped, s.Injected, s.Violations, s.Properties, s.Conflicts)

	var projects [][]string
	for _, p := range rep.Projects {
		if p.Old != p.New {
			projects = append(projects, []string{p.Project, p.Old, p.New})
		}
	}
	section(&sb, "Projects", []string{"PROJECT", "OLD", "NEW"}, projects)

	var decisions [][]string
	for _, d := range rep.Decisions {
		detail := d.Reason
		if d.Property != "" {
			detail = "${" + d.Property + "}"
		}
		decisions = append(decisions, []string{d.Project, d.Kind, d.Coordinate, d.Location, d.Action, d.Old, d.New, detail})
	}
	section(&sb, "Declarations", []string{"PROJECT", "KIND", "COORDINATE", "LOCATION", "ACTION", "OLD", "NEW", "DETAIL"}, decisions)

	var props [][]string
	for _, p := range rep.Properties {
		owner := p.Project
		if p.Profile != "" {
			owner += " (profile:" + p.Profile + ")"
		}
		old := p.Old
		if p.Injected {
			old = "(injected)"
		}
		props = append(props, []string{owner, p.Name, old, p.New, strings.Join(p.Drivers, ", ")})
	}
	section(&sb, "Properties", []string{"PROJECT", "PROPERTY", "OLD", "NEW", "DRIVERS"}, props)

	var conflicts [][]string
	for _, c := range rep.Conflicts {
		conflicts = append(conflicts, []string{c.Project, c.Name, c.Kept, c.Rejected, c.Driver, c.Policy})
	}
	section(&sb, "Property conflicts", []string{"PROJECT", "PROPERTY", "KEPT", "REJECTED", "DRIVER", "POLICY"}, conflicts)

	var violations [][]string
	for _, v := range rep.Violations {
		violations = append(violations, []string{v.Project, v.Kind, v.Coordinate, v.Old, v.New})
	}
	section(&sb, "Strict violations", []string{"PROJECT", "KIND", "COORDINATE", "CURRENT", "REJECTED"}, violations)

	if len(rep.Warnings) > 0 {
		sb.WriteString(headingStyle.Render("Warnings"))
		sb.WriteString("\n")
		for _, warning := range rep.Warnings {
			sb.WriteString(warningStyle.Render("! " + warning))
			sb.WriteString("\n")
		}
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return zerr.Wrap(err, "write report")
	}
	return nil
}

func section(sb *strings.Builder, title string, headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCellStyle
			}
			return cellStyle
		})
	sb.WriteString(headingStyle.Render(title))
	sb.WriteString("\n")
	sb.WriteString(t.String())
	sb.WriteString("\n")
}
