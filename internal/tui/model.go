package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/roadplan/internal/models"
	"github.com/julianstephens/roadplan/internal/notifier"
	"github.com/julianstephens/roadplan/internal/planstore"
	"github.com/julianstephens/roadplan/internal/session"
	"github.com/julianstephens/roadplan/internal/tui/components/calendar"
	"github.com/julianstephens/roadplan/internal/tui/components/planlist"
	"github.com/julianstephens/roadplan/internal/tui/components/weekly"
)

type Tab int

const (
	TabPlans Tab = iota
	TabWeekly
	TabCalendar
	TabBlocked
)

func (t Tab) Title() string {
	switch t {
	case TabWeekly:
		return "Weekly"
	case TabCalendar:
		return "Calendar"
	case TabBlocked:
		return "Blocked"
	default:
		return "Plans"
	}
}

// operation gates each tab on the signed-in role.
func (t Tab) operation() session.Operation {
	switch t {
	case TabWeekly:
		return session.OpWeekly
	case TabCalendar:
		return session.OpCalendar
	case TabBlocked:
		return session.OpBlocked
	default:
		return session.OpList
	}
}

type SessionState int

const (
	StateBrowse SessionState = iota
	StateDetail
	StateReject
)

type RejectFormModel struct {
	PlanID  string
	Comment string
}

type Model struct {
	plans      *planstore.Store
	session    session.Session
	notifier   *notifier.Notifier
	tabs       []Tab
	active     int
	state      SessionState
	keys       KeyMap
	help       help.Model
	planList   planlist.Model
	weekly     weekly.Model
	calendar   calendar.Model
	blocked    viewport.Model
	detail     viewport.Model
	form       *huh.Form
	rejectForm *RejectFormModel
	status     string
	statusErr  bool
	quitting   bool
	width      int
	height     int
}

// NewModel builds the dashboard for the signed-in user. month (YYYY-MM) is
// the calendar's starting month.
func NewModel(plans *planstore.Store, s session.Session, n *notifier.Notifier, month string) Model {
	var tabs []Tab
	for _, t := range []Tab{TabPlans, TabWeekly, TabCalendar, TabBlocked} {
		if s.Require(t.operation()) == nil {
			tabs = append(tabs, t)
		}
	}

	m := Model{
		plans:    plans,
		session:  s,
		notifier: n,
		tabs:     tabs,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		planList: planlist.New(nil, 0, 0),
		weekly:   weekly.New(0, 0),
		calendar: calendar.New(month, 0, 0),
		blocked:  viewport.New(0, 0),
		detail:   viewport.New(0, 0),
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) ActiveTab() Tab {
	if len(m.tabs) == 0 {
		return TabPlans
	}
	return m.tabs[m.active]
}

// visiblePlans hides other providers' plans from a provider.
func (m Model) visiblePlans() []models.WorkPlan {
	all := m.plans.Plans()
	if m.session.User.Role != models.RoleProvider {
		return all
	}
	var own []models.WorkPlan
	for _, p := range all {
		if p.SubmittedBy == m.session.User.Email {
			own = append(own, p)
		}
	}
	return own
}

// refresh reloads every view from the plan store.
func (m *Model) refresh() {
	plans := m.visiblePlans()
	m.planList.SetPlans(plans)
	m.weekly.SetData(m.plans.Plans(), m.plans.WeeklyCounts())
	m.calendar.SetData(m.plans.Plans(), m.plans.BlockedDates())
	m.blocked.SetContent(renderBlocked(m.plans.BlockedDates()))
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusErr = isErr
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	if m.state != StateBrowse {
		keys = append(keys, m.keys.Back)
	}
	if m.ActiveTab() == TabCalendar {
		keys = append(keys, m.calendar.Keys()...)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help, m.keys.Back}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}
	var actions []key.Binding
	if m.ActiveTab() == TabCalendar {
		actions = m.calendar.Keys()
	}
	return [][]key.Binding{global, navigation, actions}
}
