package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/roadplan/internal/availability"
	"github.com/julianstephens/roadplan/internal/constants"
	"github.com/julianstephens/roadplan/internal/models"
	"github.com/julianstephens/roadplan/internal/utils"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)

	blockedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	busyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

type KeyMap struct {
	PrevMonth key.Binding
	NextMonth key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		PrevMonth: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prev month"),
		),
		NextMonth: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next month"),
		),
	}
}

type Model struct {
	viewport viewport.Model
	keys     KeyMap
	month    time.Time
	plans    []models.WorkPlan
	blocked  models.DaySet
}

// New shows the month (YYYY-MM); an invalid month falls back to the current one.
func New(month string, width, height int) Model {
	first, err := time.Parse(constants.MonthFormat, month)
	if err != nil {
		now := time.Now()
		first = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return Model{
		viewport: viewport.New(width, height),
		keys:     DefaultKeyMap(),
		month:    first,
		blocked:  models.NewDaySet(),
	}
}

func (m Model) Keys() []key.Binding {
	return []key.Binding{m.keys.PrevMonth, m.keys.NextMonth}
}

func (m Model) Month() string {
	return m.month.Format(constants.MonthFormat)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.PrevMonth):
			m.month = m.month.AddDate(0, -1, 0)
			m.Render()
			return m, nil
		case key.Matches(msg, m.keys.NextMonth):
			m.month = m.month.AddDate(0, 1, 0)
			m.Render()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

func (m *Model) SetData(plans []models.WorkPlan, blocked models.DaySet) {
	m.plans = plans
	m.blocked = blocked
	m.Render()
}

func (m *Model) Render() {
	m.viewport.SetContent(Render(m.plans, m.blocked, m.Month()))
}

// Render draws the month grid. Blocked days are red, days with other plans amber.
func Render(plans []models.WorkPlan, blocked models.DaySet, month string) string {
	grid, err := availability.CalendarMonth(plans, month, availability.Filter{})
	if err != nil {
		return err.Error()
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(month) + "\n")
	b.WriteString(" Sun Mon Tue Wed Thu Fri Sat\n")
	for i, cell := range grid {
		day := " " + cell.Day[8:] + " "
		switch {
		case !cell.InMonth:
			day = dimStyle.Render(day)
		case blocked.Has(cell.Day):
			day = blockedStyle.Render(day)
		case len(cell.Plans) > 0:
			day = busyStyle.Render(day)
		}
		b.WriteString(day)
		if i%7 == 6 || i == len(grid)-1 {
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	for _, cell := range grid {
		if !cell.InMonth || len(cell.Plans) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s\n", utils.LabelForKey(cell.Day))
		for _, p := range cell.Plans {
			fmt.Fprintf(&b, "  [%s] %s  %s\n", p.Status.Label(), p.Title(), p.WorkType)
		}
	}
	return b.String()
}
