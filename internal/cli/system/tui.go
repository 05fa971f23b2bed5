package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/roadplan/internal/cli"
	"github.com/julianstephens/roadplan/internal/session"
	"github.com/julianstephens/roadplan/internal/tui"
	"github.com/julianstephens/roadplan/internal/utils"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	s, err := ctx.Require(session.OpList)
	if err != nil {
		return err
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}
	today, err := utils.TodayIn(settings.Timezone)
	if err != nil {
		return err
	}

	ctx.PerformAutomaticBackup()

	// The dashboard mutates plans for as long as it runs.
	return ctx.Exclusive(func() error {
		plans, err := ctx.Plans()
		if err != nil {
			return err
		}
		p := tea.NewProgram(tui.NewModel(plans, s, ctx.Notifier, today[:7]), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("dashboard failed: %w", err)
		}
		return nil
	})
}
