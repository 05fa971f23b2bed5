package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/roadplan/internal/cli"
	"github.com/julianstephens/roadplan/internal/migration"
)

type migrator interface {
	MigrationStatus() (migration.Status, error)
}

type MigrateCmd struct {
	Status bool `help:"Only report the schema version and pending migrations."`
}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		return errors.New("storage backend does not support migrations")
	}

	st, err := m.MigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}
	ctx.Printf("Schema version: %d (latest %d)\n", st.Current, st.Latest)

	if len(st.Pending) == 0 {
		ctx.Println("No migrations to apply. Database is up to date.")
		return nil
	}
	for _, p := range st.Pending {
		ctx.Printf("  pending: %03d %s\n", p.Version, p.Name)
	}
	if c.Status {
		return nil
	}

	// Init applies pending migrations and is idempotent otherwise.
	if err := ctx.Store.Init(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	ctx.Printf("\nSuccessfully applied %d migration(s).\n", len(st.Pending))
	return nil
}
