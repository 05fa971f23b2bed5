package weekly

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/roadplan/internal/availability"
	"github.com/julianstephens/roadplan/internal/models"
	"github.com/julianstephens/roadplan/internal/utils"
)

var (
	weekStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	externalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))
)

type Model struct {
	viewport viewport.Model
	plans    []models.WorkPlan
	counts   map[string]int
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
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

func (m *Model) SetData(plans []models.WorkPlan, counts map[string]int) {
	m.plans = plans
	m.counts = counts
	m.Render()
}

func (m *Model) Render() {
	m.viewport.SetContent(Render(m.plans, m.counts))
}

// Render lists every week with confirmed plans, oldest first, with its plans.
func Render(plans []models.WorkPlan, counts map[string]int) string {
	rows := availability.SortedBuckets(counts)
	if len(rows) == 0 {
		return "No confirmed plans."
	}

	var b strings.Builder
	for _, row := range rows {
		title := row.Bucket
		if row.Week > 0 {
			title = utils.WeekTitle(row.Year, row.Week)
		}
		fmt.Fprintf(&b, "%s %s\n", weekStyle.Render(title), countStyle.Render(fmt.Sprintf("(%d)", row.Count)))
		for _, p := range availability.PlansForWeek(plans, row.Bucket) {
			mark := "  "
			if p.InExternalSystem {
				mark = externalStyle.Render("✓ ")
			}
			fmt.Fprintf(&b, "  %s%s  %s\n", mark, p.Title(), p.WorkType)
		}
		b.WriteString("\n")
	}
	return b.String()
}
