package backups

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/fatih/color"

	"github.com/julianstephens/roadplan/internal/backup"
	"github.com/julianstephens/roadplan/internal/cli"
	"github.com/julianstephens/roadplan/internal/constants"
	"github.com/julianstephens/roadplan/internal/storage/sqlite"
)

var errUnsupported = errors.New("backups are only supported for the sqlite backend; use pg_dump for PostgreSQL")

func manager(ctx *cli.Context) (*backup.Manager, error) {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return nil, errUnsupported
	}
	return backup.NewManager(ctx.Store.GetConfigPath()), nil
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	path, err := mgr.Create()
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	ctx.Printf("✓ Backup created: %s\n", filepath.Base(path))
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		ctx.Println("No backups found.")
		ctx.Printf("Backups are stored in: %s\n", mgr.Dir())
		return nil
	}

	ctx.Printf("Available backups (%d total, keeping most recent %d):\n\n", len(backups), constants.MaxBackups)
	for _, b := range backups {
		ctx.Printf("  %s  %s  (%.1f KB)\n", b.Timestamp.Format("2006-01-02 15:04:05"), b.Name, float64(b.Size)/1024.0)
	}
	ctx.Printf("\nBackup directory: %s\n", mgr.Dir())
	return nil
}

type BackupRestoreCmd struct {
	BackupFile string `arg:"" help:"Path or filename of the backup to restore."`
	Yes        bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}

	path := mgr.Resolve(c.BackupFile)
	if _, err := os.Stat(path); err != nil {
		if _, cwdErr := os.Stat(c.BackupFile); cwdErr != nil {
			return fmt.Errorf("backup file not found: tried %s and %s", c.BackupFile, mgr.Dir())
		}
		path = c.BackupFile
	}

	if !c.Yes {
		ok, err := confirm(ctx, path)
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Restore cancelled.")
			return nil
		}
	}

	return ctx.Exclusive(func() error {
		if err := ctx.Store.Close(); err != nil {
			ctx.Printf("%s\n", color.YellowString("Warning: failed to close database connection: %v", err))
		}

		previous, err := mgr.Restore(path)
		if err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}
		if err := ctx.Store.Load(); err != nil {
			return fmt.Errorf("restored database could not be opened: %w", err)
		}

		ctx.Println("✓ Database restored successfully!")
		if previous != "" {
			ctx.Printf("  Previous database saved as %s\n", filepath.Base(previous))
		}
		return nil
	})
}

func confirm(ctx *cli.Context, path string) (bool, error) {
	ctx.Printf("%s\n", color.YellowString("⚠️  This will replace your current database with the backup."))
	ctx.Println("A backup of your current database will be created before restoring.")

	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Restore from %s?", path)).
				Affirmative("Restore").
				Negative("Cancel").
				Value(&ok),
		),
	).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}
