package tui

import (
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/roadplan/internal/models"
	"github.com/julianstephens/roadplan/internal/notifier"
	"github.com/julianstephens/roadplan/internal/planstore"
	"github.com/julianstephens/roadplan/internal/session"
	"github.com/julianstephens/roadplan/internal/tui/components/planlist"
)

type seedRepo struct {
	plans []models.WorkPlan
}

func (r *seedRepo) SavePlan(models.WorkPlan) error { return nil }

func (r *seedRepo) GetAllPlans() ([]models.WorkPlan, error) {
	return r.plans, nil
}

func plan(id, by string, status models.PlanStatus, from, to string) models.WorkPlan {
	return models.WorkPlan{
		ID:          id,
		Number:      strings.ToUpper(id),
		WorkType:    "mowing",
		Kind:        models.PlanKindVegetation,
		Status:      status,
		SubmittedBy: by,
		Activities: []models.Activity{{
			ID:          id + "-a1",
			Description: "Verge mowing",
			Period:      models.DateRange{From: from, To: to},
		}},
	}
}

func newTestModel(t *testing.T, email string) Model {
	t.Helper()
	repo := &seedRepo{plans: []models.WorkPlan{
		plan("p1", "prestador@teste.pt", models.PlanStatusPending, "2025-03-10", "2025-03-11"),
		plan("p2", "prestador@teste.pt", models.PlanStatusConfirmed, "2025-03-20", "2025-03-20"),
		plan("p3", "other@teste.pt", models.PlanStatusPending, "2025-03-25", "2025-03-25"),
	}}
	store, err := planstore.Load(repo, planstore.WithRepository(repo))
	if err != nil {
		t.Fatalf("failed to load plans: %v", err)
	}
	s, err := session.DefaultDirectory().Resolve(email)
	if err != nil {
		t.Fatalf("failed to resolve session: %v", err)
	}
	m := NewModel(store, s, notifier.New(), "2025-03")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(Model)
}

func status(t *testing.T, m Model, id string) models.WorkPlan {
	t.Helper()
	p, err := m.plans.Plan(id)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestNewModel_TabsFollowRole(t *testing.T) {
	tests := []struct {
		email string
		tabs  []Tab
	}{
		{"prestador@teste.pt", []Tab{TabPlans, TabBlocked}},
		{"go@teste.pt", []Tab{TabPlans, TabCalendar, TabBlocked}},
		{"cco@teste.pt", []Tab{TabPlans, TabWeekly, TabBlocked}},
		{"admin@teste.pt", []Tab{TabPlans, TabBlocked}},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			m := newTestModel(t, tt.email)
			if !reflect.DeepEqual(m.tabs, tt.tabs) {
				t.Errorf("expected tabs %v, got %v", tt.tabs, m.tabs)
			}
		})
	}
}

func TestVisiblePlans(t *testing.T) {
	if got := len(newTestModel(t, "prestador@teste.pt").visiblePlans()); got != 2 {
		t.Errorf("provider should see own 2 plans, got %d", got)
	}
	if got := len(newTestModel(t, "go@teste.pt").visiblePlans()); got != 3 {
		t.Errorf("manager should see all 3 plans, got %d", got)
	}
}

func TestApprove(t *testing.T) {
	m := newTestModel(t, "go@teste.pt")

	next, cmd := m.Update(planlist.ApproveMsg{ID: "p1"})
	m = next.(Model)

	if got := status(t, m, "p1").Status; got != models.PlanStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", got)
	}
	if m.statusErr || !strings.Contains(m.status, "Plan approved!") {
		t.Errorf("unexpected status line %q (err=%t)", m.status, m.statusErr)
	}
	if !m.plans.BlockedDates().Has("2025-03-10") {
		t.Error("approved dates should be blocked")
	}
	if cmd == nil {
		t.Fatal("expected a notification command")
	}
	if msg, ok := cmd().(notifiedMsg); !ok || msg.err != nil {
		t.Errorf("unexpected notification result %#v", msg)
	}
}

func TestApprove_Forbidden(t *testing.T) {
	m := newTestModel(t, "cco@teste.pt")

	next, cmd := m.Update(planlist.ApproveMsg{ID: "p1"})
	m = next.(Model)

	if cmd != nil {
		t.Error("forbidden approval should not notify")
	}
	if !m.statusErr || !strings.Contains(m.status, "cannot approve") {
		t.Errorf("expected forbidden status, got %q", m.status)
	}
	if got := status(t, m, "p1").Status; got != models.PlanStatusPending {
		t.Errorf("plan should stay pending, got %s", got)
	}
}

func TestReject(t *testing.T) {
	m := newTestModel(t, "go@teste.pt")

	next, _ := m.Update(planlist.RejectMsg{ID: "p1"})
	m = next.(Model)
	if m.state != StateReject || m.form == nil {
		t.Fatalf("expected rejection form, state=%d", m.state)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	if m.state != StateBrowse {
		t.Fatalf("esc should close the form, state=%d", m.state)
	}

	if cmd := m.reject("p1", "missing signage plan"); cmd == nil {
		t.Error("expected a notification command")
	}
	p := status(t, m, "p1")
	if p.Status != models.PlanStatusRejected || p.RejectionComment != "missing signage plan" {
		t.Errorf("unexpected plan after rejection: %s %q", p.Status, p.RejectionComment)
	}
}

func TestReject_OnlyPending(t *testing.T) {
	m := newTestModel(t, "go@teste.pt")

	next, _ := m.Update(planlist.RejectMsg{ID: "p2"})
	m = next.(Model)
	if m.state != StateBrowse || !m.statusErr {
		t.Errorf("confirmed plan should not open the form, state=%d status=%q", m.state, m.status)
	}
}

func TestToggleExternal(t *testing.T) {
	m := newTestModel(t, "cco@teste.pt")

	next, _ := m.Update(planlist.ToggleExternalMsg{ID: "p2"})
	m = next.(Model)
	if !status(t, m, "p2").InExternalSystem {
		t.Fatal("expected plan marked as external")
	}

	next, _ = m.Update(planlist.ToggleExternalMsg{ID: "p1"})
	m = next.(Model)
	if !m.statusErr {
		t.Error("pending plan cannot be marked external")
	}
}

func TestTabSwitching(t *testing.T) {
	m := newTestModel(t, "go@teste.pt")

	tab := tea.KeyMsg{Type: tea.KeyTab}
	expected := []Tab{TabCalendar, TabBlocked, TabPlans}
	for _, want := range expected {
		next, _ := m.Update(tab)
		m = next.(Model)
		if got := m.ActiveTab(); got != want {
			t.Fatalf("expected %s, got %s", want.Title(), got.Title())
		}
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = next.(Model)
	if m.ActiveTab() != TabBlocked {
		t.Errorf("shift+tab should wrap to Blocked, got %s", m.ActiveTab().Title())
	}
}

func TestShowDetail(t *testing.T) {
	m := newTestModel(t, "admin@teste.pt")

	next, _ := m.Update(planlist.ShowMsg{Plan: status(t, m, "p2")})
	m = next.(Model)
	if m.state != StateDetail {
		t.Fatalf("expected detail state, got %d", m.state)
	}
	if !strings.Contains(m.View(), "P2") {
		t.Error("detail view should show the plan title")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	if m.state != StateBrowse {
		t.Errorf("esc should return to the list, got %d", m.state)
	}
}

func TestView(t *testing.T) {
	m := newTestModel(t, "go@teste.pt")
	view := m.View()
	for _, want := range []string{"Plans", "Calendar", "Blocked", "go@teste.pt"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view", want)
		}
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if next.(Model).View() != "" {
		t.Error("view should be empty after quitting")
	}
}

func TestRenderBlocked(t *testing.T) {
	if got := renderBlocked(models.NewDaySet()); got != "No blocked dates." {
		t.Errorf("unexpected empty render %q", got)
	}
	got := renderBlocked(models.NewDaySet("2025-03-11", "2025-03-10"))
	if strings.Index(got, "10/03/2025") > strings.Index(got, "11/03/2025") {
		t.Errorf("blocked dates out of order:\n%s", got)
	}
}
