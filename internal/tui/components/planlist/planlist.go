package planlist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/roadplan/internal/models"
	"github.com/julianstephens/roadplan/internal/utils"
)

type ApproveMsg struct {
	ID string
}

type RejectMsg struct {
	ID string
}

type ToggleExternalMsg struct {
	ID string
}

type ShowMsg struct {
	Plan models.WorkPlan
}

type Item struct {
	Plan models.WorkPlan
}

func (i Item) Title() string {
	title := fmt.Sprintf("[%s] %s", i.Plan.Status.Label(), i.Plan.Title())
	if i.Plan.Urgent {
		title += " ⚡"
	}
	if i.Plan.InExternalSystem {
		title += " ✓ external"
	}
	return title
}

func (i Item) Description() string {
	return fmt.Sprintf("%s | %s | %s", Period(i.Plan), i.Plan.WorkType, i.Plan.SubmittedBy)
}

func (i Item) FilterValue() string {
	return i.Plan.Number + " " + i.Plan.WorkType + " " + string(i.Plan.Status)
}

// Period spans the earliest start to the latest end over the plan's complete activities.
func Period(p models.WorkPlan) string {
	var from, to string
	for _, a := range p.Activities {
		if !a.Period.Complete() {
			continue
		}
		if from == "" || a.Period.From < from {
			from = a.Period.From
		}
		if a.Period.To > to {
			to = a.Period.To
		}
	}
	if from == "" {
		return "no dates"
	}
	return utils.LabelForKey(from) + " - " + utils.LabelForKey(to)
}

type KeyMap struct {
	Approve  key.Binding
	Reject   key.Binding
	External key.Binding
	Show     key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Approve: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "approve"),
		),
		Reject: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reject"),
		),
		External: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "toggle external"),
		),
		Show: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(plans []models.WorkPlan, width, height int) Model {
	l := list.New(items(plans), list.NewDefaultDelegate(), width, height)
	l.Title = "Plans"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Show, keys.Approve, keys.Reject, keys.External}
	}
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys

	return Model{list: l, keys: keys}
}

func items(plans []models.WorkPlan) []list.Item {
	out := make([]list.Item, len(plans))
	for i, p := range plans {
		out[i] = Item{Plan: p}
	}
	return out
}

func (m *Model) SetPlans(plans []models.WorkPlan) {
	m.list.SetItems(items(plans))
}

// Selected returns the highlighted plan.
func (m Model) Selected() (models.WorkPlan, bool) {
	i, ok := m.list.SelectedItem().(Item)
	if !ok {
		return models.WorkPlan{}, false
	}
	return i.Plan, true
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && !m.Filtering() {
		if p, selected := m.Selected(); selected {
			switch {
			case key.Matches(msg, m.keys.Approve):
				return m, func() tea.Msg { return ApproveMsg{ID: p.ID} }
			case key.Matches(msg, m.keys.Reject):
				return m, func() tea.Msg { return RejectMsg{ID: p.ID} }
			case key.Matches(msg, m.keys.External):
				return m, func() tea.Msg { return ToggleExternalMsg{ID: p.ID} }
			case key.Matches(msg, m.keys.Show):
				return m, func() tea.Msg { return ShowMsg{Plan: p} }
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && !m.Filtering() {
		return "\n  No plans yet."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
