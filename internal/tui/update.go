package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/roadplan/internal/logger"
	"github.com/julianstephens/roadplan/internal/models"
	"github.com/julianstephens/roadplan/internal/notifier"
	"github.com/julianstephens/roadplan/internal/session"
	"github.com/julianstephens/roadplan/internal/tui/components/planlist"
)

// notifiedMsg reports the outcome of a background publish.
type notifiedMsg struct {
	err error
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == StateReject {
		return m.updateReject(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case notifiedMsg:
		if msg.err != nil {
			logger.Warn("Some notifications were not delivered", "error", msg.err)
		}
		return m, nil

	case planlist.ApproveMsg:
		return m, m.approve(msg.ID)

	case planlist.RejectMsg:
		return m.startReject(msg.ID)

	case planlist.ToggleExternalMsg:
		m.toggleExternal(msg.ID)
		return m, nil

	case planlist.ShowMsg:
		m.detail.SetContent(renderDetail(msg.Plan))
		m.detail.GotoTop()
		m.state = StateDetail
		return m, nil

	case tea.KeyMsg:
		filtering := m.ActiveTab() == TabPlans && m.planList.Filtering()
		if !filtering {
			switch {
			case key.Matches(msg, m.keys.Quit):
				m.quitting = true
				return m, tea.Quit
			case key.Matches(msg, m.keys.Help):
				m.help.ShowAll = !m.help.ShowAll
				return m, nil
			case key.Matches(msg, m.keys.Back) && m.state == StateDetail:
				m.state = StateBrowse
				return m, nil
			case key.Matches(msg, m.keys.Tab):
				m.switchTab(1)
				return m, nil
			case key.Matches(msg, m.keys.ShiftTab):
				m.switchTab(-1)
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	if m.state == StateDetail {
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}
	switch m.ActiveTab() {
	case TabPlans:
		m.planList, cmd = m.planList.Update(msg)
	case TabWeekly:
		m.weekly, cmd = m.weekly.Update(msg)
	case TabCalendar:
		m.calendar, cmd = m.calendar.Update(msg)
	case TabBlocked:
		m.blocked, cmd = m.blocked.Update(msg)
	}
	return m, cmd
}

func (m *Model) switchTab(step int) {
	if len(m.tabs) == 0 {
		return
	}
	m.active = (m.active + step + len(m.tabs)) % len(m.tabs)
	m.state = StateBrowse
	m.status = ""
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width

	h, v := docStyle.GetFrameSize()
	// tabs, status line and help
	contentHeight := height - v - 4
	if contentHeight < 1 {
		contentHeight = 1
	}
	m.planList.SetSize(width-h, contentHeight)
	m.weekly.SetSize(width-h, contentHeight)
	m.calendar.SetSize(width-h, contentHeight)
	m.blocked.Width, m.blocked.Height = width-h, contentHeight
	m.detail.Width, m.detail.Height = width-h, contentHeight
}

func (m *Model) approve(id string) tea.Cmd {
	if err := m.session.Require(session.OpApprove); err != nil {
		m.setStatus(err.Error(), true)
		return nil
	}
	plan, err := m.plans.Approve(id)
	if err != nil {
		m.setStatus(err.Error(), true)
		return nil
	}
	return m.changed(plan)
}

func (m Model) startReject(id string) (tea.Model, tea.Cmd) {
	if err := m.session.Require(session.OpReject); err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}
	plan, err := m.plans.Plan(id)
	if err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}
	if plan.Status != models.PlanStatusPending {
		m.setStatus(fmt.Sprintf("only pending plans can be rejected (%s is %s)", plan.Title(), plan.Status.Label()), true)
		return m, nil
	}

	m.rejectForm = &RejectFormModel{PlanID: id}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title(fmt.Sprintf("Reject %s", plan.Title())).
				Description("Reason shown to the provider").
				Value(&m.rejectForm.Comment),
		),
	)
	m.state = StateReject
	return m, m.form.Init()
}

func (m Model) updateReject(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = StateBrowse
		m.form = nil
		return m, nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		cmds = append(cmds, m.reject(m.rejectForm.PlanID, m.rejectForm.Comment))
		m.state = StateBrowse
		m.form = nil
	case huh.StateAborted:
		m.state = StateBrowse
		m.form = nil
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) reject(id, comment string) tea.Cmd {
	if err := m.session.Require(session.OpReject); err != nil {
		m.setStatus(err.Error(), true)
		return nil
	}
	plan, err := m.plans.Reject(id, comment)
	if err != nil {
		m.setStatus(err.Error(), true)
		return nil
	}
	return m.changed(plan)
}

func (m *Model) toggleExternal(id string) {
	if err := m.session.Require(session.OpToggleExternal); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	plan, err := m.plans.ToggleExternalSystem(id)
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.refresh()
	if plan.InExternalSystem {
		m.setStatus(fmt.Sprintf("%s marked as inserted in the external system", plan.Title()), false)
	} else {
		m.setStatus(fmt.Sprintf("%s no longer marked as inserted in the external system", plan.Title()), false)
	}
}

// changed refreshes the views after a status change and publishes it in the background.
func (m *Model) changed(plan models.WorkPlan) tea.Cmd {
	m.refresh()
	e := notifier.NewEvent(plan, m.session.User.Email)
	m.setStatus(fmt.Sprintf("%s %s", e.Title, plan.Title()), false)
	if m.notifier == nil {
		return nil
	}
	n := m.notifier
	return func() tea.Msg {
		return notifiedMsg{err: n.Notify(context.Background(), e)}
	}
}
