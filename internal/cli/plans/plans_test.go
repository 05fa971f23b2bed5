package plans

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/roadplan/internal/cli"
	"github.com/julianstephens/roadplan/internal/cli/clitest"
	"github.com/julianstephens/roadplan/internal/models"
	"github.com/julianstephens/roadplan/internal/plandoc"
	"github.com/julianstephens/roadplan/internal/planstore"
	"github.com/julianstephens/roadplan/internal/session"
	"github.com/julianstephens/roadplan/internal/validation"
)

const planDoc = `
number: VM-7
work_type: mowing
highway: A2
activities:
  - description: Verge mowing
    from: 2025-03-10
    to: 2025-03-11
    defaults:
      time_start: "08:00"
      time_end: "17:00"
      profile_type: full profile
      work_types: [mowing]
      pk_start: 1+000
      pk_end: 2+000
      km_start: "1"
      km_end: "2"
      directions: [south]
      intervention_location: verge
      restrictions: none
      scheme: "1.1"
      notes: none
`

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

// submitPlan submits planDoc as the provider and returns the new plan id.
func submitPlan(t *testing.T, ctx *cli.Context) string {
	t.Helper()
	clitest.SignIn(t, ctx, clitest.Provider)
	if err := (&SubmitCmd{File: writeDoc(t, planDoc)}).Run(ctx); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	store, err := ctx.Plans()
	if err != nil {
		t.Fatal(err)
	}
	plans := store.Plans()
	return plans[len(plans)-1].ID
}

func TestSubmitCmd(t *testing.T) {
	ctx, out := clitest.Setup(t)
	id := submitPlan(t, ctx)

	if !strings.Contains(out.String(), "Plan submitted") {
		t.Errorf("expected submission notice, got %q", out.String())
	}
	stored, err := ctx.Store.GetPlan(id)
	if err != nil {
		t.Fatalf("plan not persisted: %v", err)
	}
	if stored.Status != models.PlanStatusPending || stored.SubmittedBy != clitest.Provider {
		t.Errorf("unexpected stored plan: status=%s by=%s", stored.Status, stored.SubmittedBy)
	}
	if len(stored.Activities) != 1 || len(stored.Activities[0].DailyDetails) != 2 {
		t.Errorf("activities not persisted: %+v", stored.Activities)
	}
}

func TestSubmitCmd_RequiresProvider(t *testing.T) {
	ctx, _ := clitest.Setup(t)
	clitest.SignIn(t, ctx, clitest.Manager)

	err := (&SubmitCmd{File: writeDoc(t, planDoc)}).Run(ctx)
	if !errors.Is(err, session.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestSubmitCmd_SignedOut(t *testing.T) {
	ctx, _ := clitest.Setup(t)

	err := (&SubmitCmd{File: writeDoc(t, planDoc)}).Run(ctx)
	if !errors.Is(err, session.ErrNotSignedIn) {
		t.Errorf("expected ErrNotSignedIn, got %v", err)
	}
}

func TestSubmitCmd_BlockedDates(t *testing.T) {
	ctx, _ := clitest.Setup(t)
	id := submitPlan(t, ctx)

	clitest.SignIn(t, ctx, clitest.Manager)
	if err := (&ApproveCmd{ID: id}).Run(ctx); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	clitest.SignIn(t, ctx, clitest.Provider)
	err := (&SubmitCmd{File: writeDoc(t, planDoc)}).Run(ctx)
	if !errors.Is(err, validation.ErrDateRangeBlocked) {
		t.Fatalf("expected ErrDateRangeBlocked, got %v", err)
	}

	plans, err := ctx.Store.GetAllPlans()
	if err != nil {
		t.Fatal(err)
	}
	if len(plans) != 1 {
		t.Errorf("refused submission was persisted: %d plans", len(plans))
	}
}

func TestSubmitCmd_NoActivities(t *testing.T) {
	ctx, _ := clitest.Setup(t)
	clitest.SignIn(t, ctx, clitest.Provider)

	err := (&SubmitCmd{File: writeDoc(t, "number: X\nactivities: []\n")}).Run(ctx)
	if !errors.Is(err, validation.ErrNoActivities) {
		t.Errorf("expected ErrNoActivities, got %v", err)
	}
}

func TestReviewFlow(t *testing.T) {
	ctx, out := clitest.Setup(t)
	id := submitPlan(t, ctx)

	clitest.SignIn(t, ctx, clitest.Manager)
	if err := (&RejectCmd{ID: id, Comment: "missing signage"}).Run(ctx); err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	stored, _ := ctx.Store.GetPlan(id)
	if stored.Status != models.PlanStatusRejected || stored.RejectionComment != "missing signage" {
		t.Errorf("unexpected plan after reject: %s %q", stored.Status, stored.RejectionComment)
	}

	if err := (&ApproveCmd{ID: id}).Run(ctx); !errors.Is(err, planstore.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition approving a rejected plan, got %v", err)
	}

	clitest.SignIn(t, ctx, clitest.Provider)
	if err := (&ResubmitCmd{ID: id, File: writeDoc(t, planDoc)}).Run(ctx); err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	stored, _ = ctx.Store.GetPlan(id)
	if stored.Status != models.PlanStatusPending || stored.RejectionComment != "" {
		t.Errorf("resubmission did not reset the plan: %s %q", stored.Status, stored.RejectionComment)
	}

	clitest.SignIn(t, ctx, clitest.Manager)
	if err := (&ApproveCmd{ID: id}).Run(ctx); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if !strings.Contains(out.String(), "Plan approved!") {
		t.Errorf("expected approval notice, got %q", out.String())
	}

	clitest.SignIn(t, ctx, clitest.Coordinator)
	if err := (&ExternalCmd{ID: id}).Run(ctx); err != nil {
		t.Fatalf("external failed: %v", err)
	}
	stored, _ = ctx.Store.GetPlan(id)
	if !stored.InExternalSystem {
		t.Error("expected plan marked as inserted in the external system")
	}

	history, err := ctx.Store.GetPlanHistory(id)
	if err != nil {
		t.Fatal(err)
	}
	var statuses []string
	for _, h := range history {
		statuses = append(statuses, string(h.Status))
	}
	if got := strings.Join(statuses, ","); got != "pending,rejected,pending,confirmed" {
		t.Errorf("history = %s", got)
	}
}

func TestExternalCmd_RequiresConfirmed(t *testing.T) {
	ctx, _ := clitest.Setup(t)
	id := submitPlan(t, ctx)

	clitest.SignIn(t, ctx, clitest.Coordinator)
	if err := (&ExternalCmd{ID: id}).Run(ctx); !errors.Is(err, planstore.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestListCmd(t *testing.T) {
	ctx, out := clitest.Setup(t)
	id := submitPlan(t, ctx)

	tests := []struct {
		name   string
		cmd    ListCmd
		expect bool
	}{
		{"all", ListCmd{}, true},
		{"pending", ListCmd{Status: "pending"}, true},
		{"confirmed", ListCmd{Status: "confirmed"}, false},
		{"work type", ListCmd{WorkType: "mowing"}, true},
		{"other work type", ListCmd{WorkType: "paving"}, false},
		{"mine", ListCmd{Mine: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			if err := tt.cmd.Run(ctx); err != nil {
				t.Fatalf("list failed: %v", err)
			}
			if got := strings.Contains(out.String(), id); got != tt.expect {
				t.Errorf("plan listed = %v, want %v; output %q", got, tt.expect, out.String())
			}
		})
	}

	if err := (&ListCmd{Status: "bogus"}).Run(ctx); err == nil {
		t.Error("expected error for invalid status")
	}
}

func TestShowCmd(t *testing.T) {
	ctx, out := clitest.Setup(t)
	id := submitPlan(t, ctx)
	out.Reset()

	if err := (&ShowCmd{ID: id}).Run(ctx); err != nil {
		t.Fatalf("show failed: %v", err)
	}
	for _, want := range []string{"VM-7", "Verge mowing", "10/03/2025", "History:"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected %q in output:\n%s", want, out.String())
		}
	}

	if err := (&ShowCmd{ID: "missing"}).Run(ctx); !errors.Is(err, planstore.ErrPlanNotFound) {
		t.Errorf("expected ErrPlanNotFound, got %v", err)
	}
}

func TestExportCmd_RoundTrip(t *testing.T) {
	ctx, _ := clitest.Setup(t)
	id := submitPlan(t, ctx)

	path := filepath.Join(t.TempDir(), "export.yaml")
	if err := (&ExportCmd{ID: id, Output: path}).Run(ctx); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	doc, err := plandoc.Load(path)
	if err != nil {
		t.Fatalf("exported document does not load: %v", err)
	}
	if doc.Number != "VM-7" || len(doc.Activities) != 1 {
		t.Errorf("unexpected exported document: %+v", doc)
	}

	if err := (&ResubmitCmd{ID: id, File: path}).Run(ctx); err != nil {
		t.Errorf("resubmitting exported document failed: %v", err)
	}
}

func TestResubmitCmd_Ownership(t *testing.T) {
	tests := []struct {
		name    string
		owner   string
		wantErr error
	}{
		{"own plan", clitest.Provider, nil},
		{"another provider's plan", "other@teste.pt", session.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := clitest.Setup(t)
			const id = "p1"
			now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
			err := ctx.Store.SavePlan(models.WorkPlan{
				ID:          id,
				Number:      "VM-7",
				Kind:        models.PlanKindVegetation,
				Status:      models.PlanStatusRejected,
				SubmittedBy: tt.owner,
				Activities: []models.Activity{{
					ID:          "a1",
					Description: "Verge mowing",
					Period:      models.DateRange{From: "2025-03-10", To: "2025-03-11"},
				}},
				CreatedAt: now,
				UpdatedAt: now,
			})
			if err != nil {
				t.Fatal(err)
			}
			clitest.SignIn(t, ctx, clitest.Provider)

			updated := strings.Replace(planDoc, "number: VM-7", "number: VM-8", 1)
			err = (&ResubmitCmd{ID: id, File: writeDoc(t, updated)}).Run(ctx)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("resubmit error = %v, want %v", err, tt.wantErr)
			}

			got, err := ctx.Store.GetPlan(id)
			if err != nil {
				t.Fatal(err)
			}
			wantNumber := "VM-8"
			if tt.wantErr != nil {
				wantNumber = "VM-7"
			}
			if got.Number != wantNumber {
				t.Errorf("Number = %q, want %q", got.Number, wantNumber)
			}
		})
	}
}
