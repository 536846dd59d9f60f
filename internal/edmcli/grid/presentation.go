package grid

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/dimasma0305/edmcli/internal/edmcli/member"
)

// Style is the visual tone of a label
type Style string

const (
	StyleSuccess Style = "success"
	StyleDanger  Style = "danger"
	StyleMuted   Style = "muted"
)

// Label is the display form of a value
type Label struct {
	Text  string
	Style Style
}

// StatusLabel maps a member or group status to its badge
func StatusLabel(s member.Status) Label {
	switch s {
	case member.StatusActive:
		return Label{Text: "已啟用", Style: StyleSuccess}
	case member.StatusInactive:
		return Label{Text: "已禁用", Style: StyleDanger}
	default:
		return Label{Text: string(s), Style: StyleMuted}
	}
}

// Render colors the label text for a terminal
func (l Label) Render() string {
	switch l.Style {
	case StyleSuccess:
		return color.GreenString(l.Text)
	case StyleDanger:
		return color.RedString(l.Text)
	default:
		return color.HiBlackString(l.Text)
	}
}

// FormatRow renders one member as a single table line
func FormatRow(m member.Member) string {
	mobile := m.Mobile
	if mobile == "" {
		mobile = "-"
	}
	return fmt.Sprintf("%-8s %-20s %-32s %-16s %s", m.ID, m.Name, m.Email, mobile, StatusLabel(m.Status).Render())
}

// FormatPage renders a snapshot as a table with a footer line
func FormatPage(s Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-8s %-20s %-32s %-16s %s\n", "ID", "NAME", "EMAIL", "MOBILE", "STATUS")
	for _, m := range s.Rows {
		b.WriteString(FormatRow(m))
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "page %d/%d, %d members", s.Query.Page, pageCount(s.Total, s.Query.PageSize), s.Total)
	if len(s.Query.Filters) > 0 {
		fmt.Fprintf(&b, ", filters %v", s.Query.Filters)
	}
	if s.State == StateQueryFailed || s.State == StateMutateFailed {
		fmt.Fprintf(&b, " (last action failed: %v)", s.LastErr)
	}
	return b.String()
}
