package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/roadplan/internal/backup"
	"github.com/julianstephens/roadplan/internal/cli"
	"github.com/julianstephens/roadplan/internal/models"
	"github.com/julianstephens/roadplan/internal/storage/sqlite"
	"github.com/julianstephens/roadplan/internal/utils"
)

var errHealthCheck = errors.New("one or more health checks failed")

type DoctorCmd struct{}

type check struct {
	name    string
	run     func(*cli.Context) error
	needsDB bool
	warn    bool
}

var checks = []check{
	{name: "Database reachable", run: checkDBReachable},
	{name: "Migrations complete", run: checkMigrations, needsDB: true},
	{name: "Settings", run: checkSettings, needsDB: true},
	{name: "Plan integrity", run: checkPlanIntegrity, needsDB: true},
	{name: "Confirmed dates", run: checkConfirmedOverlap, needsDB: true},
	{name: "Backups present", run: checkBackupsPresent, warn: true},
	{name: "Clock", run: checkClock},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	dbReachable := true
	for _, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warn:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
			if c.name == "Database reachable" {
				dbReachable = false
			}
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return errHealthCheck
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if _, err := ctx.Store.GetSettings(); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func checkMigrations(ctx *cli.Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		return nil
	}
	st, err := m.MigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}
	if st.Current > st.Latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", st.Current, st.Latest)
	}
	if len(st.Pending) > 0 {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d; run 'roadplan migrate'", st.Current, st.Latest)
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}
	if !utils.ValidateTimezone(settings.Timezone) {
		return fmt.Errorf("unknown timezone %q", settings.Timezone)
	}
	if !utils.ValidateTimeFormat(settings.FullDayStart) || !utils.ValidateTimeFormat(settings.FullDayEnd) {
		return fmt.Errorf("invalid full day window %q - %q", settings.FullDayStart, settings.FullDayEnd)
	}
	if _, err := ctx.Session(); err != nil {
		return fmt.Errorf("signed-in user is not in the directory: %w", err)
	}
	return nil
}

// checkPlanIntegrity looks for statuses and periods no operation could have produced.
func checkPlanIntegrity(ctx *cli.Context) error {
	plans, err := ctx.Store.GetAllPlans()
	if err != nil {
		return fmt.Errorf("failed to get plans: %w", err)
	}
	for _, p := range plans {
		if !p.Status.Valid() {
			return fmt.Errorf("plan %s has unknown status %q", p.ID, p.Status)
		}
		if len(p.Activities) == 0 {
			return fmt.Errorf("plan %s has no activities", p.ID)
		}
		for _, a := range p.Activities {
			if a.Period.Complete() && a.Period.DayKeys() == nil {
				return fmt.Errorf("plan %s activity %s has an invalid period %s - %s", p.ID, a.ID, a.Period.From, a.Period.To)
			}
		}
	}
	return nil
}

// checkConfirmedOverlap reports days claimed by more than one confirmed plan.
func checkConfirmedOverlap(ctx *cli.Context) error {
	plans, err := ctx.Store.GetAllPlans()
	if err != nil {
		return fmt.Errorf("failed to get plans: %w", err)
	}
	owner := make(map[string]string)
	for _, p := range plans {
		if p.Status != models.PlanStatusConfirmed {
			continue
		}
		for _, a := range p.Activities {
			for _, key := range a.Period.DayKeys() {
				if other, ok := owner[key]; ok && other != p.ID {
					return fmt.Errorf("%s is confirmed for both %s and %s", utils.LabelForKey(key), other, p.ID)
				}
				owner[key] = p.ID
			}
		}
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return nil
	}
	backups, err := backup.NewManager(ctx.Store.GetConfigPath()).List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return errors.New("no backups found - consider creating one with 'roadplan backup create'")
	}
	return nil
}

func checkClock(*cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
