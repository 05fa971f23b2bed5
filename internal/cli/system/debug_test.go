package system

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/julianstephens/roadplan/internal/cli/clitest"
	"github.com/julianstephens/roadplan/internal/models"
)

func TestDebugDumpPlanCmd(t *testing.T) {
	ctx, out := clitest.Setup(t)
	saveConfirmed(t, ctx, "p1", "2025-03-10", "2025-03-11")

	if err := (&DebugDumpPlanCmd{ID: "p1"}).Run(ctx); err != nil {
		t.Fatalf("dump-plan failed: %v", err)
	}

	var got struct {
		Plan    models.WorkPlan       `json:"plan"`
		History []models.StatusChange `json:"history"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if got.Plan.ID != "p1" || got.Plan.Status != models.PlanStatusConfirmed {
		t.Errorf("unexpected plan: %+v", got.Plan)
	}
	if len(got.History) != 1 {
		t.Errorf("expected 1 history entry, got %d", len(got.History))
	}
}

func TestDebugDumpPlanCmd_NotFound(t *testing.T) {
	ctx, _ := clitest.Setup(t)

	err := (&DebugDumpPlanCmd{ID: "missing"}).Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "plan not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestDebugDumpSettingsCmd(t *testing.T) {
	ctx, out := clitest.Setup(t)

	if err := (&DebugDumpSettingsCmd{}).Run(ctx); err != nil {
		t.Fatalf("dump-settings failed: %v", err)
	}
	var got models.Settings
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if got.FullDayStart == "" || got.FullDayEnd == "" {
		t.Errorf("expected full-day window in settings: %+v", got)
	}
}

func TestDebugAvailabilityCmd(t *testing.T) {
	ctx, out := clitest.Setup(t)
	saveConfirmed(t, ctx, "p1", "2025-03-10", "2025-03-11")

	if err := (&DebugAvailabilityCmd{}).Run(ctx); err != nil {
		t.Fatalf("availability failed: %v", err)
	}
	var got struct {
		BlockedDates []string       `json:"blocked_dates"`
		WeeklyCounts map[string]int `json:"weekly_counts"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if strings.Join(got.BlockedDates, ",") != "2025-03-10,2025-03-11" {
		t.Errorf("unexpected blocked dates: %v", got.BlockedDates)
	}
	if got.WeeklyCounts["2025-Semana-11"] != 1 {
		t.Errorf("unexpected weekly counts: %v", got.WeeklyCounts)
	}
}

func TestDebugDBPathCmd(t *testing.T) {
	ctx, out := clitest.Setup(t)

	if err := (&DebugDBPathCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), ctx.Store.GetConfigPath()) {
		t.Errorf("expected db path in output:\n%s", out.String())
	}
}
