package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/roadplan/internal/cli"
	"github.com/julianstephens/roadplan/internal/cli/backups"
	"github.com/julianstephens/roadplan/internal/cli/dashboard"
	"github.com/julianstephens/roadplan/internal/cli/plans"
	"github.com/julianstephens/roadplan/internal/cli/settings"
	"github.com/julianstephens/roadplan/internal/cli/system"
	"github.com/julianstephens/roadplan/internal/constants"
	"github.com/julianstephens/roadplan/internal/errors"
	"github.com/julianstephens/roadplan/internal/keyring"
	"github.com/julianstephens/roadplan/internal/logger"
	"github.com/julianstephens/roadplan/internal/notifier"
	"github.com/julianstephens/roadplan/internal/session"
	"github.com/julianstephens/roadplan/internal/storage"
	"github.com/julianstephens/roadplan/internal/storage/postgres"
	"github.com/julianstephens/roadplan/internal/storage/sqlite"
)

var CLI struct {
	Version    kong.VersionFlag
	Config     string `help:"Database path or PostgreSQL connection string. Credentials must NOT be embedded in the connection string; use the OS keyring, ${env_db} or .pgpass instead." default:"${default_config}"`
	Debug      bool   `help:"Mirror debug logs to stderr."`
	NatsURL    string `name:"nats-url" help:"NATS server to publish plan status changes to." env:"ROADPLAN_NATS_URL"`
	WebhookURL string `name:"webhook-url" help:"HTTP endpoint to POST plan status changes to." env:"ROADPLAN_WEBHOOK_URL"`

	Init    system.InitCmd    `cmd:"" help:"Initialize roadplan storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Tui     system.TuiCmd     `cmd:"" help:"Launch the interactive dashboard." default:"1"`
	Login   system.LoginCmd   `cmd:"" help:"Sign in as a user."`
	Logout  system.LogoutCmd  `cmd:"" help:"Sign out."`
	Whoami  system.WhoamiCmd  `cmd:"" help:"Show the signed-in user."`
	Users   system.UsersCmd   `cmd:"" help:"List the users that can sign in."`
	Keyring struct {
		Set           system.KeyringSetCmd     `cmd:"" help:"Store the PostgreSQL connection string in the OS keyring."`
		Get           system.KeyringGetCmd     `cmd:"" help:"Show the stored connection string (password masked)."`
		Delete        system.KeyringDeleteCmd  `cmd:"" help:"Remove the stored connection string."`
		Status        system.KeyringStatusCmd  `cmd:"" help:"Check OS keyring availability."`
		WebhookSecret system.KeyringWebhookCmd `cmd:"" name:"webhook-secret" help:"Store the shared secret sent with webhook notifications."`
	} `cmd:"" help:"Manage credentials in the OS keyring."`
	Plan struct {
		Submit   plans.SubmitCmd   `cmd:"" help:"Submit a new plan from a YAML document."`
		Resubmit plans.ResubmitCmd `cmd:"" help:"Edit and resubmit a pending or rejected plan."`
		List     plans.ListCmd     `cmd:"" help:"List plans." default:"1"`
		Show     plans.ShowCmd     `cmd:"" help:"Show a plan with its activities and history."`
		Export   plans.ExportCmd   `cmd:"" help:"Export a plan as a YAML document."`
		Approve  plans.ApproveCmd  `cmd:"" help:"Approve a pending plan."`
		Reject   plans.RejectCmd   `cmd:"" help:"Reject a pending plan."`
		External plans.ExternalCmd `cmd:"" help:"Toggle the external system mark on a confirmed plan."`
	} `cmd:"" help:"Submit and review work plans."`
	Blocked  dashboard.BlockedCmd  `cmd:"" help:"List the days taken by confirmed plans."`
	Weekly   dashboard.WeeklyCmd   `cmd:"" help:"Show confirmed plans per week."`
	Calendar dashboard.CalendarCmd `cmd:"" help:"Show a month calendar of plans."`
	Backup   struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`
	Inspect  system.DebugCmd      `cmd:"" help:"Debug commands for troubleshooting."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Road maintenance work plan submission and review"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":        constants.Version,
			"default_config": constants.DefaultConfigPath,
			"env_db":         constants.EnvDBConnection,
		},
	)

	store, configDir, err := openStore(CLI.Config)
	if err != nil {
		errors.Fatal(err)
	}

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: configDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	n := newNotifier()

	appCtx := &cli.Context{
		Store:     store,
		Directory: session.DefaultDirectory(),
		Notifier:  n,
		ConfigDir: configDir,
	}

	// Init handles its own storage setup.
	if !strings.HasPrefix(ctx.Command(), "init") {
		if err := store.Load(); err != nil {
			errors.Fatal(err)
		}
	}

	err = ctx.Run(appCtx)
	if closeErr := n.Close(); closeErr != nil {
		logger.Warn("Failed to close notifier", "error", closeErr)
	}
	if closeErr := store.Close(); closeErr != nil {
		logger.Warn("Failed to close storage", "error", closeErr)
	}
	errors.Fatal(err)
}

// openStore picks the backend for config. A PostgreSQL connection string
// selects PostgreSQL; with the default config, a connection string from the
// environment or the keyring does too. Anything else is a sqlite path.
func openStore(config string) (storage.Provider, string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	defaultDir := filepath.Join(home, ".config", constants.AppName)

	if isPostgres(config) {
		if _, err := postgres.ValidateConnString(config); err != nil {
			return nil, "", fmt.Errorf("%w\n       Store the connection string with 'roadplan keyring set' or export %s instead", err, constants.EnvDBConnection)
		}
		return postgres.New(config), defaultDir, nil
	}

	if config == constants.DefaultConfigPath {
		if connStr := keyring.Lookup(os.Getenv(constants.EnvDBConnection), keyring.KeyConnection); isPostgres(connStr) {
			return postgres.New(connStr), defaultDir, nil
		}
	}

	path := config
	if path == "~" || strings.HasPrefix(path, "~/") {
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return sqlite.NewStore(path), filepath.Dir(path), nil
}

func isPostgres(s string) bool {
	return strings.HasPrefix(s, "postgres://") ||
		strings.HasPrefix(s, "postgresql://") ||
		strings.Contains(s, "host=")
}

func newNotifier() *notifier.Notifier {
	publishers := []notifier.Publisher{notifier.LogPublisher{}}

	if CLI.NatsURL != "" {
		p, err := notifier.ConnectNATS(CLI.NatsURL)
		if err != nil {
			logger.Warn("NATS notifications disabled", "error", err)
		} else {
			publishers = append(publishers, p)
		}
	}

	if CLI.WebhookURL != "" {
		publishers = append(publishers, &notifier.WebhookPublisher{
			URL:    CLI.WebhookURL,
			Secret: keyring.Lookup(os.Getenv(constants.EnvWebhookSecret), keyring.KeyWebhookSecret),
		})
	}

	return notifier.New(publishers...)
}
