package system

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/julianstephens/roadplan/internal/availability"
	"github.com/julianstephens/roadplan/internal/cli"
	"github.com/julianstephens/roadplan/internal/models"
	"github.com/julianstephens/roadplan/internal/storage"
)

type DebugCmd struct {
	DBPath       DebugDBPathCmd       `cmd:"" name:"db-path" help:"Show database path."`
	DumpPlan     DebugDumpPlanCmd     `cmd:"" help:"Dump a plan with its status history as JSON."`
	DumpSettings DebugDumpSettingsCmd `cmd:"" help:"Dump settings as JSON."`
	Availability DebugAvailabilityCmd `cmd:"" help:"Dump blocked dates and weekly counts as JSON."`
}

func printJSON(ctx *cli.Context, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(jsonBytes))
	return nil
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(ctx, map[string]string{"path": ctx.Store.GetConfigPath()})
}

type DebugDumpPlanCmd struct {
	ID string `arg:"" help:"ID of the plan to dump."`
}

func (cmd *DebugDumpPlanCmd) Run(ctx *cli.Context) error {
	plan, err := ctx.Store.GetPlan(cmd.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("plan not found: %s", cmd.ID)
		}
		return fmt.Errorf("failed to get plan: %w", err)
	}
	history, err := ctx.Store.GetPlanHistory(cmd.ID)
	if err != nil {
		return fmt.Errorf("failed to get plan history: %w", err)
	}

	return printJSON(ctx, struct {
		Plan    models.WorkPlan       `json:"plan"`
		History []models.StatusChange `json:"history"`
	}{plan, history})
}

type DebugDumpSettingsCmd struct{}

func (cmd *DebugDumpSettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	return printJSON(ctx, settings)
}

type DebugAvailabilityCmd struct{}

// Run derives availability straight from storage, bypassing the plan store.
func (cmd *DebugAvailabilityCmd) Run(ctx *cli.Context) error {
	plans, err := ctx.Store.GetAllPlans()
	if err != nil {
		return fmt.Errorf("failed to get plans: %w", err)
	}
	avail := availability.Derive(plans)
	return printJSON(ctx, struct {
		BlockedDates []string       `json:"blocked_dates"`
		WeeklyCounts map[string]int `json:"weekly_counts"`
	}{avail.BlockedDates.Sorted(), avail.WeeklyCounts})
}
