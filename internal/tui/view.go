package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/roadplan/internal/models"
	"github.com/julianstephens/roadplan/internal/tui/components/planlist"
	"github.com/julianstephens/roadplan/internal/utils"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch {
	case m.state == StateReject && m.form != nil:
		content = m.form.View()
	case m.state == StateDetail:
		content = m.detail.View()
	case len(m.tabs) == 0:
		content = "Nothing to show for your role."
	default:
		switch m.ActiveTab() {
		case TabPlans:
			content = m.planList.View()
		case TabWeekly:
			content = m.weekly.View()
		case TabCalendar:
			content = m.calendar.View()
		case TabBlocked:
			content = m.blocked.View()
		}
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		docStyle.Render(content),
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, t := range m.tabs {
		if i == m.active {
			tabs = append(tabs, activeTabStyle.Render(t.Title()))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(t.Title()))
		}
	}
	tabs = append(tabs, userStyle.Render(fmt.Sprintf("%s (%s)", m.session.User.Email, m.session.User.Role.Label())))
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return dangerStyle.Render("✗ " + m.status)
	}
	return successStyle.Render("✓ " + m.status)
}

func renderBlocked(blocked models.DaySet) string {
	keys := blocked.Sorted()
	if len(keys) == 0 {
		return "No blocked dates."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Blocked dates (%d):\n\n", len(keys))
	for _, key := range keys {
		fmt.Fprintf(&b, "  %s\n", utils.LabelForKey(key))
	}
	return b.String()
}

func renderDetail(p models.WorkPlan) string {
	var b strings.Builder
	row := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "%s%s\n", labelStyle.Render(label), value)
	}

	b.WriteString(lipgloss.NewStyle().Bold(true).Render(p.Title()) + "\n\n")
	row("Status", p.Status.Label())
	row("Rejection comment", p.RejectionComment)
	row("Work type", p.WorkType)
	row("Highway", p.Highway)
	if p.KmStart != "" || p.KmEnd != "" {
		row("Km", p.KmStart+" - "+p.KmEnd)
	}
	row("Period", planlist.Period(p))
	row("Supervision", strings.TrimSpace(p.Supervision.Name+" "+p.Supervision.Phone))
	row("Contractor", strings.TrimSpace(p.Contractor.Name+" "+p.Contractor.Phone))
	row("Signage", strings.TrimSpace(p.Signage.Name+" "+p.Signage.Phone))
	row("Submitted by", p.SubmittedBy)

	for i, a := range p.Activities {
		fmt.Fprintf(&b, "\n%d. %s (%s - %s)\n", i+1, a.Description,
			utils.LabelForKey(a.Period.From), utils.LabelForKey(a.Period.To))
		for _, key := range a.Period.DayKeys() {
			d, ok := a.DailyDetails[key]
			if !ok {
				fmt.Fprintf(&b, "   %s  %s\n", utils.LabelForKey(key), dangerStyle.Render("no details"))
				continue
			}
			window := d.TimeStart + "-" + d.TimeEnd
			if d.FullDay {
				window = "full day"
			}
			fmt.Fprintf(&b, "   %s  %-11s  %s  PK %s-%s\n", utils.LabelForKey(key), window,
				strings.Join(d.WorkTypes, ", "), d.PkStart, d.PkEnd)
		}
	}
	return b.String()
}
