package settings

import (
	"fmt"

	"github.com/julianstephens/roadplan/internal/cli"
	"github.com/julianstephens/roadplan/internal/utils"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Timezone     *string `help:"IANA timezone used for today's date, or Local."`
	FullDayStart *string `name:"full-day-start" help:"Start of the full-day window (HH:MM)."`
	FullDayEnd   *string `name:"full-day-end" help:"End of the full-day window (HH:MM)."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.List {
		ctx.Println("Current Settings:")
		ctx.Printf("  Timezone:        %s\n", settings.Timezone)
		ctx.Printf("  Full day window: %s - %s\n", settings.FullDayStart, settings.FullDayEnd)
		if settings.SessionEmail != "" {
			ctx.Printf("  Signed in as:    %s\n", settings.SessionEmail)
		}
		return nil
	}

	updated := false
	if c.Timezone != nil {
		if !utils.ValidateTimezone(*c.Timezone) {
			return fmt.Errorf("invalid timezone %q", *c.Timezone)
		}
		settings.Timezone = *c.Timezone
		updated = true
	}
	if c.FullDayStart != nil {
		if !utils.ValidateTimeFormat(*c.FullDayStart) {
			return fmt.Errorf("invalid full day start %q (expected HH:MM)", *c.FullDayStart)
		}
		settings.FullDayStart = *c.FullDayStart
		updated = true
	}
	if c.FullDayEnd != nil {
		if !utils.ValidateTimeFormat(*c.FullDayEnd) {
			return fmt.Errorf("invalid full day end %q (expected HH:MM)", *c.FullDayEnd)
		}
		settings.FullDayEnd = *c.FullDayEnd
		updated = true
	}
	if settings.FullDayStart >= settings.FullDayEnd {
		return fmt.Errorf("full day window must end after it starts (%s - %s)", settings.FullDayStart, settings.FullDayEnd)
	}

	if !updated {
		ctx.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	ctx.Println("Settings updated successfully.")
	return nil
}
