package dashboard

import (
	"strings"

	"github.com/fatih/color"

	"github.com/julianstephens/roadplan/internal/availability"
	"github.com/julianstephens/roadplan/internal/cli"
	"github.com/julianstephens/roadplan/internal/models"
	"github.com/julianstephens/roadplan/internal/session"
	"github.com/julianstephens/roadplan/internal/utils"
)

// CalendarCmd renders a month grid of plans
type CalendarCmd struct {
	Month    string `arg:"" optional:"" help:"Month to show (YYYY-MM). Defaults to the current month."`
	Status   string `help:"Only show plans with this status."`
	WorkType string `name:"work-type" help:"Only show plans of this work type."`
}

func (c *CalendarCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.Require(session.OpCalendar); err != nil {
		return err
	}

	month := c.Month
	if month == "" {
		settings, err := ctx.Store.GetSettings()
		if err != nil {
			return err
		}
		today, err := utils.TodayIn(settings.Timezone)
		if err != nil {
			return err
		}
		month = today[:7]
	}

	filter := availability.Filter{WorkType: c.WorkType}
	if c.Status != "" {
		status, err := models.ParsePlanStatus(c.Status)
		if err != nil {
			return err
		}
		filter.Status = status
	}

	store, err := ctx.Plans()
	if err != nil {
		return err
	}
	plans := store.Plans()
	grid, err := availability.CalendarMonth(plans, month, filter)
	if err != nil {
		return err
	}

	ctx.Println(color.New(color.Bold).Sprint(month))
	ctx.Println(" Sun Mon Tue Wed Thu Fri Sat")
	var line strings.Builder
	for i, cell := range grid {
		switch {
		case !cell.InMonth:
			line.WriteString("    ")
		case len(cell.Plans) > 0:
			line.WriteString(color.YellowString(" %2s*", cell.Day[8:]))
		default:
			line.WriteString(" " + cell.Day[8:] + " ")
		}
		if i%7 == 6 || i == len(grid)-1 {
			ctx.Println(strings.TrimRight(line.String(), " "))
			line.Reset()
		}
	}

	var busy bool
	for _, cell := range grid {
		if !cell.InMonth || len(cell.Plans) == 0 {
			continue
		}
		if !busy {
			ctx.Println()
			busy = true
		}
		ctx.Printf("%s\n", utils.LabelForKey(cell.Day))
		for _, p := range cell.Plans {
			ctx.Printf("  %s  %-30s  %s\n", cli.StatusString(p.Status), p.Title(), p.WorkType)
		}
	}

	if types := availability.UniqueWorkTypes(plans); len(types) > 0 {
		ctx.Printf("\nWork types: %s\n", strings.Join(types, ", "))
	}
	return nil
}
