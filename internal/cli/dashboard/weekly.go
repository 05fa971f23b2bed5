package dashboard

import (
	"github.com/fatih/color"

	"github.com/julianstephens/roadplan/internal/availability"
	"github.com/julianstephens/roadplan/internal/cli"
	"github.com/julianstephens/roadplan/internal/models"
	"github.com/julianstephens/roadplan/internal/session"
	"github.com/julianstephens/roadplan/internal/utils"
)

// WeeklyCmd summarises confirmed plans per week, or lists one week's plans
type WeeklyCmd struct {
	Bucket string `arg:"" optional:"" help:"Week to drill into, e.g. 2025-Semana-10."`
}

func (c *WeeklyCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.Require(session.OpWeekly); err != nil {
		return err
	}
	store, err := ctx.Plans()
	if err != nil {
		return err
	}

	if c.Bucket != "" {
		return c.week(ctx, store.Plans())
	}

	rows := availability.SortedBuckets(store.WeeklyCounts())
	if len(rows) == 0 {
		ctx.Println("No confirmed plans.")
		return nil
	}
	for _, row := range rows {
		title := row.Bucket
		if row.Week > 0 {
			title = utils.WeekTitle(row.Year, row.Week)
		}
		ctx.Printf("  %-18s  %-28s  %d confirmed\n", row.Bucket, title, row.Count)
	}
	return nil
}

func (c *WeeklyCmd) week(ctx *cli.Context, all []models.WorkPlan) error {
	year, week, err := utils.ParseWeekBucket(c.Bucket)
	if err != nil {
		return err
	}
	plans := availability.PlansForWeek(all, c.Bucket)

	ctx.Println(color.New(color.Bold).Sprint(utils.WeekTitle(year, week)))
	if len(plans) == 0 {
		ctx.Println("  No confirmed plans this week.")
		return nil
	}
	for _, p := range plans {
		ext := ""
		if p.InExternalSystem {
			ext = color.CyanString(" [external]")
		}
		ctx.Printf("  %s  %-36s  %s%s\n", p.ID, p.Title(), p.WorkType, ext)
	}
	return nil
}
