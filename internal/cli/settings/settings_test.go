package settings

import (
	"strings"
	"testing"

	"github.com/julianstephens/roadplan/internal/cli/clitest"
	"github.com/julianstephens/roadplan/internal/constants"
)

func ptr(s string) *string { return &s }

func TestSettingsCmd_List(t *testing.T) {
	ctx, out := clitest.Setup(t)

	if err := (&SettingsCmd{List: true}).Run(ctx); err != nil {
		t.Fatalf("settings list failed: %v", err)
	}
	for _, want := range []string{"Timezone:        " + constants.DefaultTimezone, constants.FullDayStart + " - " + constants.FullDayEnd} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected %q in output:\n%s", want, out.String())
		}
	}
}

func TestSettingsCmd_Update(t *testing.T) {
	ctx, _ := clitest.Setup(t)

	cmd := &SettingsCmd{
		Timezone:     ptr("UTC"),
		FullDayStart: ptr("06:00"),
		FullDayEnd:   ptr("22:00"),
	}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("settings update failed: %v", err)
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		t.Fatal(err)
	}
	if settings.Timezone != "UTC" || settings.FullDayStart != "06:00" || settings.FullDayEnd != "22:00" {
		t.Errorf("settings not saved: %+v", settings)
	}
}

func TestSettingsCmd_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cmd  SettingsCmd
	}{
		{"unknown timezone", SettingsCmd{Timezone: ptr("Mars/Olympus")}},
		{"bad start", SettingsCmd{FullDayStart: ptr("6am")}},
		{"bad end", SettingsCmd{FullDayEnd: ptr("25:00")}},
		{"inverted window", SettingsCmd{FullDayStart: ptr("20:00"), FullDayEnd: ptr("08:00")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := clitest.Setup(t)
			if err := tt.cmd.Run(ctx); err == nil {
				t.Fatal("expected an error")
			}
			settings, err := ctx.Store.GetSettings()
			if err != nil {
				t.Fatal(err)
			}
			if settings.FullDayStart != constants.FullDayStart || settings.Timezone != constants.DefaultTimezone {
				t.Errorf("invalid update was saved: %+v", settings)
			}
		})
	}
}

func TestSettingsCmd_NoChanges(t *testing.T) {
	ctx, out := clitest.Setup(t)
	if err := (&SettingsCmd{}).Run(ctx); err != nil {
		t.Fatalf("settings failed: %v", err)
	}
	if !strings.Contains(out.String(), "No changes specified") {
		t.Errorf("unexpected output %q", out.String())
	}
}
