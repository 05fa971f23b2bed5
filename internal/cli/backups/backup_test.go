package backups

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/roadplan/internal/cli"
	"github.com/julianstephens/roadplan/internal/cli/clitest"
	"github.com/julianstephens/roadplan/internal/models"
)

func savePlan(t *testing.T, ctx *cli.Context, id string) {
	t.Helper()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	plan := models.WorkPlan{
		ID:        id,
		Number:    id,
		Kind:      models.PlanKindGeneral,
		Status:    models.PlanStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := ctx.Store.SavePlan(plan); err != nil {
		t.Fatalf("failed to save plan: %v", err)
	}
}

func TestBackupListCmd_Empty(t *testing.T) {
	ctx, out := clitest.Setup(t)
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "No backups found.") {
		t.Errorf("expected empty notice, got %q", out.String())
	}
}

func TestBackupCreateAndList(t *testing.T) {
	ctx, out := clitest.Setup(t)
	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !strings.Contains(out.String(), "✓ Backup created: roadplan-") {
		t.Errorf("unexpected create output %q", out.String())
	}

	out.Reset()
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "Available backups (1 total") {
		t.Errorf("unexpected list output %q", out.String())
	}
}

func TestBackupRestoreCmd(t *testing.T) {
	ctx, out := clitest.Setup(t)
	savePlan(t, ctx, "before")

	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	name := strings.TrimSpace(strings.TrimPrefix(out.String(), "✓ Backup created: "))

	savePlan(t, ctx, "after")

	out.Reset()
	if err := (&BackupRestoreCmd{BackupFile: name, Yes: true}).Run(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if !strings.Contains(out.String(), "Database restored successfully") {
		t.Errorf("unexpected restore output %q", out.String())
	}
	if !strings.Contains(out.String(), "Previous database saved as") {
		t.Errorf("expected pre-restore snapshot notice, got %q", out.String())
	}

	plans, err := ctx.Store.GetAllPlans()
	if err != nil {
		t.Fatalf("store unusable after restore: %v", err)
	}
	if len(plans) != 1 || plans[0].ID != "before" {
		t.Errorf("expected only the backed-up plan, got %+v", plans)
	}
}

func TestBackupRestoreCmd_Missing(t *testing.T) {
	ctx, _ := clitest.Setup(t)
	err := (&BackupRestoreCmd{BackupFile: filepath.Join(t.TempDir(), "nope.db"), Yes: true}).Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "backup file not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}
