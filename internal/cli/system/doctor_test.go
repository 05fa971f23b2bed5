package system

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/roadplan/internal/backup"
	"github.com/julianstephens/roadplan/internal/cli"
	"github.com/julianstephens/roadplan/internal/cli/clitest"
	"github.com/julianstephens/roadplan/internal/models"
	"github.com/julianstephens/roadplan/internal/storage/sqlite"
)

func saveConfirmed(t *testing.T, ctx *cli.Context, id, from, to string) {
	t.Helper()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	err := ctx.Store.SavePlan(models.WorkPlan{
		ID:     id,
		Kind:   models.PlanKindGeneral,
		Status: models.PlanStatusConfirmed,
		Activities: []models.Activity{{
			ID:     id + "-a1",
			Period: models.DateRange{From: from, To: to},
		}},
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("failed to save plan: %v", err)
	}
}

func TestDoctorCmd_HealthyDB(t *testing.T) {
	ctx, out := clitest.Setup(t)
	saveConfirmed(t, ctx, "p1", "2025-03-10", "2025-03-11")

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("doctor failed on healthy database: %v\n%s", err, out.String())
	}
	// Missing backups is a warning, not a failure
	if !strings.Contains(out.String(), "⚠ Backups present: WARNING") {
		t.Errorf("expected backup warning:\n%s", out.String())
	}
}

func TestDoctorCmd_WithBackup(t *testing.T) {
	ctx, out := clitest.Setup(t)
	if _, err := backup.NewManager(ctx.Store.GetConfigPath()).Create(); err != nil {
		t.Fatal(err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("doctor failed: %v", err)
	}
	if !strings.Contains(out.String(), "✓ Backups present: OK") {
		t.Errorf("expected backups OK:\n%s", out.String())
	}
}

func TestDoctorCmd_OverlappingConfirmedPlans(t *testing.T) {
	ctx, out := clitest.Setup(t)
	saveConfirmed(t, ctx, "p1", "2025-03-10", "2025-03-12")
	saveConfirmed(t, ctx, "p2", "2025-03-12", "2025-03-14")

	err := (&DoctorCmd{}).Run(ctx)
	if !errors.Is(err, errHealthCheck) {
		t.Fatalf("expected health check failure, got %v", err)
	}
	if !strings.Contains(out.String(), "❌ Confirmed dates: FAIL") || !strings.Contains(out.String(), "12/03/2025") {
		t.Errorf("expected overlap report:\n%s", out.String())
	}
}

func TestDoctorCmd_UnknownSessionUser(t *testing.T) {
	ctx, out := clitest.Setup(t)
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		t.Fatal(err)
	}
	settings.SessionEmail = "ghost@teste.pt"
	if err := ctx.Store.SaveSettings(settings); err != nil {
		t.Fatal(err)
	}

	if err := (&DoctorCmd{}).Run(ctx); !errors.Is(err, errHealthCheck) {
		t.Fatalf("expected health check failure, got %v", err)
	}
	if !strings.Contains(out.String(), "❌ Settings: FAIL") {
		t.Errorf("expected settings failure:\n%s", out.String())
	}
}

func TestDoctorCmd_UnreachableDB(t *testing.T) {
	var out strings.Builder
	ctx := &cli.Context{
		Store: sqlite.NewStore(t.TempDir() + "/missing.db"),
		Out:   &out,
	}

	if err := (&DoctorCmd{}).Run(ctx); !errors.Is(err, errHealthCheck) {
		t.Fatalf("expected health check failure, got %v", err)
	}
	if !strings.Contains(out.String(), "⊘ Migrations complete: SKIPPED") {
		t.Errorf("expected dependent checks to be skipped:\n%s", out.String())
	}
}
