package plans

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/julianstephens/roadplan/internal/availability"
	"github.com/julianstephens/roadplan/internal/cli"
	"github.com/julianstephens/roadplan/internal/models"
	"github.com/julianstephens/roadplan/internal/plandoc"
	"github.com/julianstephens/roadplan/internal/session"
	"github.com/julianstephens/roadplan/internal/utils"
)

type ListCmd struct {
	Status   string `help:"Only plans with this status (pending, confirmed, rejected)."`
	WorkType string `help:"Only plans of this work type."`
	Mine     bool   `help:"Only plans submitted by the signed-in user."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	s, err := ctx.Require(session.OpList)
	if err != nil {
		return err
	}

	f := availability.Filter{WorkType: c.WorkType}
	if c.Status != "" {
		if f.Status, err = models.ParsePlanStatus(c.Status); err != nil {
			return err
		}
	}

	store, err := ctx.Plans()
	if err != nil {
		return err
	}

	var shown []models.WorkPlan
	for _, p := range store.Plans() {
		if !f.Match(p) {
			continue
		}
		if c.Mine && !strings.EqualFold(p.SubmittedBy, s.User.Email) {
			continue
		}
		shown = append(shown, p)
	}

	if len(shown) == 0 {
		ctx.Println("No plans found.")
		return nil
	}

	for _, p := range shown {
		ext := ""
		if p.InExternalSystem {
			ext = color.CyanString(" [external]")
		}
		ctx.Printf("%s  %-36s  %s  %-25s  %s%s\n",
			p.ID, p.Title(), StatusLabel(p), periodOf(p), p.WorkType, ext)
	}
	return nil
}

// StatusLabel pads before colouring so columns stay aligned.
func StatusLabel(p models.WorkPlan) string {
	return strings.Replace(fmt.Sprintf("%-22s", p.Status.Label()), p.Status.Label(), cli.StatusString(p.Status), 1)
}

// periodOf spans the earliest start to the latest end over all activities.
func periodOf(p models.WorkPlan) string {
	var from, to string
	for _, a := range p.Activities {
		if !a.Period.Complete() {
			continue
		}
		if from == "" || a.Period.From < from {
			from = a.Period.From
		}
		if a.Period.To > to {
			to = a.Period.To
		}
	}
	if from == "" {
		return "-"
	}
	return utils.LabelForKey(from) + " - " + utils.LabelForKey(to)
}

type ShowCmd struct {
	ID string `arg:"" help:"Plan to show."`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.Require(session.OpList); err != nil {
		return err
	}
	store, err := ctx.Plans()
	if err != nil {
		return err
	}
	p, err := store.Plan(c.ID)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	ctx.Printf("%s\n", bold.Sprint(p.Title()))
	ctx.Printf("  ID:          %s\n", p.ID)
	ctx.Printf("  Status:      %s\n", cli.StatusString(p.Status))
	if p.RejectionComment != "" {
		ctx.Printf("  Comment:     %s\n", p.RejectionComment)
	}
	ctx.Printf("  Work type:   %s\n", p.WorkType)
	if p.Highway != "" {
		ctx.Printf("  Highway:     %s (km %s - %s)\n", p.Highway, p.KmStart, p.KmEnd)
	}
	ctx.Printf("  Flags:       fixed=%t mobile=%t urgent=%t external=%t\n", p.FixedWork, p.MobileWork, p.Urgent, p.InExternalSystem)
	for _, ct := range []struct {
		label string
		c     models.Contact
	}{
		{"Supervision", p.Supervision},
		{"Contractor", p.Contractor},
		{"Signage", p.Signage},
	} {
		if ct.c.Name != "" || ct.c.Phone != "" {
			ctx.Printf("  %-12s %s %s\n", ct.label+":", ct.c.Name, ct.c.Phone)
		}
	}
	ctx.Printf("  Submitted:   %s by %s\n", p.CreatedAt.Format("2006-01-02 15:04"), p.SubmittedBy)

	for i, a := range p.Activities {
		ctx.Printf("\n  %d. %s  (%s - %s)\n", i+1, a.Description, utils.LabelForKey(a.Period.From), utils.LabelForKey(a.Period.To))
		if a.PkStart != "" || a.PkEnd != "" {
			ctx.Printf("     PK %s - %s  %s\n", a.PkStart, a.PkEnd, a.Direction)
		}
		for _, key := range a.Period.DayKeys() {
			d, ok := a.DailyDetails[key]
			if !ok {
				ctx.Printf("     %s  %s\n", utils.LabelForKey(key), color.RedString("no details"))
				continue
			}
			window := d.TimeStart + "-" + d.TimeEnd
			if d.FullDay {
				window = "full day"
			}
			ctx.Printf("     %s  %-11s  %s\n", utils.LabelForKey(key), window, strings.Join(d.WorkTypes, ", "))
		}
	}

	history, err := ctx.Store.GetPlanHistory(p.ID)
	if err != nil {
		return err
	}
	if len(history) > 0 {
		ctx.Println("\n  History:")
		for _, h := range history {
			line := fmt.Sprintf("    %s  %s", h.ChangedAt.Local().Format("2006-01-02 15:04"), h.Status.Label())
			if h.Comment != "" {
				line += "  (" + h.Comment + ")"
			}
			ctx.Println(line)
		}
	}
	return nil
}

// ExportCmd writes a plan as a YAML document, ready to edit and resubmit
type ExportCmd struct {
	ID     string `arg:"" help:"Plan to export."`
	Output string `short:"o" help:"Write to this file instead of stdout."`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.Require(session.OpList); err != nil {
		return err
	}
	store, err := ctx.Plans()
	if err != nil {
		return err
	}
	p, err := store.Plan(c.ID)
	if err != nil {
		return err
	}

	doc := plandoc.FromPlan(p)
	if c.Output == "" {
		return plandoc.Encode(ctx.Writer(), doc)
	}

	f, err := os.Create(c.Output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", c.Output, err)
	}
	defer f.Close()
	if err := plandoc.Encode(f, doc); err != nil {
		return err
	}
	ctx.Printf("✓ Exported %s to %s\n", p.Title(), c.Output)
	return nil
}
